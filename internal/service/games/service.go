package games

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/rbac"
	redisrepo "github.com/kirinyoku/cartodesk/internal/repository/redis"
	"github.com/shopspring/decimal"
)

// Limiter throttles game creation per client address.
type Limiter interface {
	Allow(ctx context.Context, id string) (redisrepo.Decision, error)
}

type Service struct {
	store   *gamestore.Store
	catalog *catalog.Catalog
	limiter Limiter
	log     *slog.Logger
}

// New wires the service. limiter may be nil to disable throttling.
func New(store *gamestore.Store, cat *catalog.Catalog, limiter Limiter, log *slog.Logger) *Service {
	return &Service{
		store:   store,
		catalog: cat,
		limiter: limiter,
		log:     log,
	}
}

type CreateInput struct {
	ClientName     string
	GameTypeID     string
	PractitionerID string
	// Value defaults to the game type base price when nil.
	Value            *decimal.Decimal
	Date             string
	PaymentTime      string
	Status           string
	Campaign         string
	ConversationLink string
}

type Filter struct {
	Status         domain.GameStatus
	Date           string
	PractitionerID string
}

// Create records a paid game.
//
// Parameters:
//   - ctx: request-scoped context.
//   - in: the game fields; status may be empty, "waiting" or "paid_only".
//   - rlKey: caller address used for throttling; empty skips the limiter.
//
// Returns:
//   - domain.Game: the stored game.
//   - error: games.ErrValidation for unknown catalog ids or malformed fields.
//   - error: games.RateLimitedError when the caller exceeded its quota.
func (s *Service) Create(ctx context.Context, in CreateInput, rlKey string) (domain.Game, error) {
	const op = "service.games.Create"

	if s.limiter != nil && rlKey != "" {
		d, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			// fail open
			s.log.Warn("rate limiter unavailable", slog.String("op", op), slog.Any("err", err))
		} else if !d.Allowed {
			return domain.Game{}, fmt.Errorf("%s: %w", op, RateLimitedError{RetryAfter: d.RetryAfter})
		}
	}

	gt, ok := s.catalog.GameType(in.GameTypeID)
	if !ok {
		return domain.Game{}, fmt.Errorf("%s: %w: unknown game type %q", op, ErrValidation, in.GameTypeID)
	}
	if _, ok := s.catalog.Practitioner(in.PractitionerID); !ok {
		return domain.Game{}, fmt.Errorf("%s: %w: unknown practitioner %q", op, ErrValidation, in.PractitionerID)
	}

	status := domain.StatusWaiting
	if v := strings.TrimSpace(in.Status); v != "" {
		st, err := domain.ParseStatus(v)
		if err != nil || (st != domain.StatusWaiting && st != domain.StatusPaidOnly) {
			return domain.Game{}, fmt.Errorf("%s: %w: status must be waiting or paid_only", op, ErrValidation)
		}
		status = st
	}

	value := gt.BasePrice
	if in.Value != nil {
		value = *in.Value
	}

	g, err := s.store.Add(ctx, gamestore.NewGame{
		ClientName:       in.ClientName,
		GameTypeID:       gt.ID,
		PractitionerID:   in.PractitionerID,
		Value:            value,
		Date:             in.Date,
		PaymentTime:      in.PaymentTime,
		Status:           status,
		Campaign:         in.Campaign,
		ConversationLink: in.ConversationLink,
	})
	if err != nil {
		if errors.Is(err, gamestore.ErrValidation) {
			return domain.Game{}, fmt.Errorf("%s: %w: %v", op, ErrValidation, err)
		}
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("game created",
		slog.String("game_id", g.ID),
		slog.String("practitioner_id", g.PractitionerID),
		slog.String("status", string(g.Status)),
	)

	return g, nil
}

// List returns the games matching f. A practitioner caller only sees their own games.
func (s *Service) List(ctx context.Context, f Filter) []domain.Game {
	if pid := rbac.OwnPractitioner(ctx); pid != "" {
		f.PractitionerID = pid
	}

	var src []domain.Game
	switch {
	case f.Status != "":
		src = s.store.GetByStatus(f.Status)
	case f.Date != "":
		src = s.store.GetByDate(f.Date)
	default:
		src = s.store.GetAll()
	}

	out := src[:0]
	for _, g := range src {
		if f.Date != "" && g.Date != f.Date {
			continue
		}
		if f.PractitionerID != "" && g.PractitionerID != f.PractitionerID {
			continue
		}
		out = append(out, g)
	}

	return out
}

// Get returns one game.
//
// Returns:
//   - error: games.ErrNotFound for unknown ids.
//   - error: games.ErrForbidden when a practitioner asks for another's game.
func (s *Service) Get(ctx context.Context, id string) (domain.Game, error) {
	const op = "service.games.Get"

	g, err := s.store.Get(id)
	if err != nil {
		if errors.Is(err, gamestore.ErrNotFound) {
			return domain.Game{}, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	if pid := rbac.OwnPractitioner(ctx); pid != "" && g.PractitionerID != pid {
		return domain.Game{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	return g, nil
}

func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

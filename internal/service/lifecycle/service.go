package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/queue"
	"github.com/kirinyoku/cartodesk/internal/rbac"
)

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service moves games through their lifecycle and answers queue questions.
type Service struct {
	store   *gamestore.Store
	catalog *catalog.Catalog
	log     *slog.Logger
	now     func() time.Time

	// mu serialises read-check-write sequences such as the busy check in Start.
	mu sync.Mutex
}

func New(store *gamestore.Store, cat *catalog.Catalog, log *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: cat,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartResult is the started game and the conversation the operator should open.
type StartResult struct {
	Game     domain.Game `json:"game"`
	OpenLink string      `json:"open_link,omitempty"`
}

// Start begins attending a waiting game.
//
// Parameters:
//   - ctx: request-scoped context carrying the caller identity.
//   - id: game id.
//   - version: the version the caller saw; 0 skips the check.
//
// Returns:
//   - StartResult: the game in progress and its conversation link.
//   - error: lifecycle.ErrInvalidTransition unless the game is waiting.
//   - error: lifecycle.ErrPractitionerBusy if the practitioner is attending another game.
func (s *Service) Start(ctx context.Context, id string, version int64) (StartResult, error) {
	const op = "service.lifecycle.Start"

	s.mu.Lock()
	defer s.mu.Unlock()

	g, status, err := s.load(ctx, id, version, ActionStart)
	if err != nil {
		return StartResult{}, fmt.Errorf("%s: %w", op, err)
	}

	if active, busy := queue.Active(s.store.GetAll(), g.PractitionerID); busy {
		return StartResult{}, fmt.Errorf("%s: game %s in progress: %w", op, active.ID, ErrPractitionerBusy)
	}

	now := s.now()
	started, err := s.store.Update(ctx, g.ID, gamestore.Patch{
		Status:             &status,
		StartedAt:          &now,
		ClearFinishedAt:    true,
		ClearQueuePosition: true,
		ExpectedVersion:    g.Version,
	})
	if err != nil {
		return StartResult{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	s.log.Info("game started", slog.String("game_id", started.ID), slog.String("practitioner_id", started.PractitionerID))

	return StartResult{Game: started, OpenLink: started.ConversationLink}, nil
}

// Finish closes a game in progress.
//
// Returns:
//   - error: lifecycle.ErrInvalidTransition unless the game is in progress.
func (s *Service) Finish(ctx context.Context, id string, version int64) (domain.Game, error) {
	const op = "service.lifecycle.Finish"

	s.mu.Lock()
	defer s.mu.Unlock()

	g, status, err := s.load(ctx, id, version, ActionFinish)
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	if g.StartedAt != nil && now.Before(*g.StartedAt) {
		now = *g.StartedAt
	}

	finished, err := s.store.Update(ctx, g.ID, gamestore.Patch{
		Status:          &status,
		FinishedAt:      &now,
		ExpectedVersion: g.Version,
	})
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	s.log.Info("game finished", slog.String("game_id", finished.ID))

	return finished, nil
}

// Revert reopens a finished game. Only admins may revert; the start time is kept.
//
// Returns:
//   - error: lifecycle.ErrForbidden for non-admin callers.
//   - error: lifecycle.ErrPractitionerBusy if the practitioner already attends another game.
func (s *Service) Revert(ctx context.Context, id string, version int64) (domain.Game, error) {
	const op = "service.lifecycle.Revert"

	role, err := auth.Role(ctx)
	if err != nil || !rbac.IsAdmin(role) {
		return domain.Game{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, status, err := s.load(ctx, id, version, ActionRevert)
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	if active, busy := queue.Active(s.store.GetAll(), g.PractitionerID); busy {
		return domain.Game{}, fmt.Errorf("%s: game %s in progress: %w", op, active.ID, ErrPractitionerBusy)
	}

	reverted, err := s.store.Update(ctx, g.ID, gamestore.Patch{
		Status:          &status,
		ClearFinishedAt: true,
		ExpectedVersion: g.Version,
	})
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	s.log.Info("game reverted", slog.String("game_id", reverted.ID))

	return reverted, nil
}

// Reorder swaps a waiting game with its neighbour in the practitioner's list.
//
// The whole list gets explicit positions 1..n in its current order, the two
// games trade places, and every game whose position changed is written in a
// single store transaction.
//
// Returns:
//   - []queue.Entry: the practitioner's list after the move.
//   - error: lifecycle.ErrInvalidMove at the list boundary; nothing is written.
func (s *Service) Reorder(ctx context.Context, id string, dir Direction) ([]queue.Entry, error) {
	const op = "service.lifecycle.Reorder"

	if !dir.Valid() {
		return nil, fmt.Errorf("%s: direction %q: %w", op, dir, ErrInvalidMove)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err := s.get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if g.Status != domain.StatusWaiting {
		return nil, fmt.Errorf("%s: game is %s: %w", op, g.Status, ErrInvalidMove)
	}

	list := queue.Waiting(s.store.GetAll(), g.PractitionerID)
	idx := -1
	for i, w := range list {
		if w.ID == id {
			idx = i
			break
		}
	}

	neighbour := idx - 1
	if dir == DirectionDown {
		neighbour = idx + 1
	}
	if idx < 0 || neighbour < 0 || neighbour >= len(list) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidMove)
	}

	list[idx], list[neighbour] = list[neighbour], list[idx]

	var changes []gamestore.Change
	for i, w := range list {
		want := i + 1
		if w.QueuePosition != nil && *w.QueuePosition == want {
			continue
		}
		changes = append(changes, gamestore.Change{
			ID:    w.ID,
			Patch: gamestore.Patch{QueuePosition: &want, ExpectedVersion: w.Version},
		})
	}

	if _, err := s.store.UpdateMany(ctx, changes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapStoreErr(err))
	}

	s.log.Info("game moved",
		slog.String("game_id", id),
		slog.String("direction", string(dir)),
		slog.Int("writes", len(changes)),
	)

	return queue.Entries(s.store.GetAll(), g.PractitionerID, s.catalog), nil
}

// Queue returns the waiting list with positions and estimated waits.
// An empty practitionerID lists every practitioner.
func (s *Service) Queue(ctx context.Context, practitionerID string) []queue.Entry {
	return queue.Entries(s.store.GetAll(), s.scope(ctx, practitionerID), s.catalog)
}

func (s *Service) Board(ctx context.Context, practitionerID string) queue.Board {
	return queue.BuildBoard(s.store.GetAll(), s.scope(ctx, practitionerID))
}

func (s *Service) Next(ctx context.Context, practitionerID string) (domain.Game, bool) {
	return queue.Next(s.store.GetAll(), s.scope(ctx, practitionerID))
}

func (s *Service) Active(ctx context.Context, practitionerID string) (domain.Game, bool) {
	return queue.Active(s.store.GetAll(), s.scope(ctx, practitionerID))
}

// Position returns the 1-based place of a game in its waiting list, 0 once it left the queue.
func (s *Service) Position(ctx context.Context, id string) (int, error) {
	if _, err := s.get(ctx, id); err != nil {
		return 0, fmt.Errorf("service.lifecycle.Position: %w", err)
	}
	return queue.Position(s.store.GetAll(), id), nil
}

// Wait returns the estimated minutes before a game starts.
func (s *Service) Wait(ctx context.Context, id string) (int, error) {
	if _, err := s.get(ctx, id); err != nil {
		return 0, fmt.Errorf("service.lifecycle.Wait: %w", err)
	}
	return queue.EstimateWait(s.store.GetAll(), id, s.catalog), nil
}

func (s *Service) Optimizations(ctx context.Context) []queue.Optimization {
	out := queue.Optimize(s.store.GetAll(), s.catalog.Practitioners(), s.catalog)
	if pid := rbac.OwnPractitioner(ctx); pid != "" {
		mine := out[:0]
		for _, o := range out {
			if o.PractitionerID == pid {
				mine = append(mine, o)
			}
		}
		out = mine
	}
	return out
}

// scope narrows practitionerID to the caller's own practitioner when bound to one.
func (s *Service) scope(ctx context.Context, practitionerID string) string {
	if pid := rbac.OwnPractitioner(ctx); pid != "" {
		return pid
	}
	return practitionerID
}

func (s *Service) get(ctx context.Context, id string) (domain.Game, error) {
	g, err := s.store.Get(id)
	if err != nil {
		return domain.Game{}, mapStoreErr(err)
	}

	if pid := rbac.OwnPractitioner(ctx); pid != "" && pid != g.PractitionerID {
		return domain.Game{}, ErrForbidden
	}

	return g, nil
}

// load fetches the game and checks ownership, version and the transition table.
// load fetches the game action applies to and the status it moves to.
func (s *Service) load(ctx context.Context, id string, version int64, action Action) (domain.Game, domain.GameStatus, error) {
	g, err := s.get(ctx, id)
	if err != nil {
		return domain.Game{}, "", err
	}

	if version != 0 && version != g.Version {
		return domain.Game{}, "", fmt.Errorf("version %d, current %d: %w", version, g.Version, ErrConflict)
	}

	to, ok := Target(action)
	if !ok || !ValidTransition(action, g.Status) {
		return domain.Game{}, "", fmt.Errorf("%s from %s: %w", action, g.Status, ErrInvalidTransition)
	}

	return g, to, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, gamestore.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, gamestore.ErrConflict):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}

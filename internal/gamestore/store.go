package gamestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/repository"
	"github.com/shopspring/decimal"
)

// NewGame holds the caller supplied fields of a record being created.
type NewGame struct {
	ClientName       string
	GameTypeID       string
	PractitionerID   string
	Value            decimal.Decimal
	Date             string
	PaymentTime      string
	Status           domain.GameStatus
	Campaign         string
	ConversationLink string
	QueuePosition    *int
}

// Patch lists the fields Update may change. Nil fields are left untouched.
// Value and PractitionerID are immutable and therefore absent.
type Patch struct {
	ClientName       *string
	Status           *domain.GameStatus
	Campaign         *string
	ConversationLink *string
	QueuePosition    *int
	StartedAt        *time.Time
	FinishedAt       *time.Time

	ClearQueuePosition bool
	ClearFinishedAt    bool

	// ExpectedVersion rejects the patch with ErrConflict unless the stored
	// game has this version. Zero accepts any version.
	ExpectedVersion int64
}

// Change pairs a game id with the patch to apply to it.
type Change struct {
	ID    string
	Patch Patch
}

type Option func(*Store)

func WithLogger(log *slog.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store owns the canonical in-memory snapshot of all games. Every mutation is
// persisted first, then applied, then announced to subscribers.
type Store struct {
	persister Persister
	log       *slog.Logger
	now       func() time.Time

	mu    sync.RWMutex
	games []domain.Game
	index map[string]int

	// notifyMu is taken before mu is released so events go out in mutation order.
	notifyMu sync.Mutex

	subsMu  sync.Mutex
	subs    map[uint64]func(Event)
	nextSub uint64
}

func New(persister Persister, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		log:       slog.Default(),
		now:       time.Now,
		index:     make(map[string]int),
		subs:      make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the snapshot with the persisted games without notifying.
func (s *Store) Load(ctx context.Context) error {
	const op = "gamestore.Store.Load"

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("games loaded", slog.Int("count", len(s.games)))

	return nil
}

// Reload replaces the snapshot with the persisted games and broadcasts EventReloaded.
func (s *Store) Reload(ctx context.Context) error {
	const op = "gamestore.Store.Reload"

	s.mu.Lock()
	if err := s.loadLocked(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%s: %w", op, err)
	}
	s.publishAndUnlock(Event{Kind: EventReloaded, At: s.now().UTC()})

	return nil
}

func (s *Store) loadLocked(ctx context.Context) error {
	games, err := s.persister.ListGames(ctx)
	if err != nil {
		return err
	}

	s.games = make([]domain.Game, 0, len(games))
	s.index = make(map[string]int, len(games))
	for _, g := range games {
		s.index[g.ID] = len(s.games)
		s.games = append(s.games, g.Clone())
	}

	return nil
}

// Add assigns an id to ng, persists it and appends it to the snapshot.
//
// Returns:
//   - domain.Game: the stored record with id, version and timestamps set.
//   - error: ErrValidation for malformed input; persistence errors leave the
//     snapshot untouched.
func (s *Store) Add(ctx context.Context, ng NewGame) (domain.Game, error) {
	const op = "gamestore.Store.Add"

	if ng.Status == "" {
		ng.Status = domain.StatusWaiting
	}
	if err := validateNew(ng); err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: id: %w", op, err)
	}

	now := s.now().UTC()
	g := domain.Game{
		ID:               id.String(),
		ClientName:       strings.TrimSpace(ng.ClientName),
		GameTypeID:       ng.GameTypeID,
		PractitionerID:   ng.PractitionerID,
		Value:            ng.Value,
		Date:             ng.Date,
		PaymentTime:      ng.PaymentTime,
		Status:           ng.Status,
		Campaign:         strings.TrimSpace(ng.Campaign),
		ConversationLink: strings.TrimSpace(ng.ConversationLink),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if ng.QueuePosition != nil {
		p := *ng.QueuePosition
		g.QueuePosition = &p
	}
	if g.Status == domain.StatusInProgress {
		g.StartedAt = &now
	}

	s.mu.Lock()
	if err := s.persister.SaveGames(ctx, g); err != nil {
		s.mu.Unlock()
		return domain.Game{}, s.persistErr(ctx, op, err)
	}

	s.index[g.ID] = len(s.games)
	s.games = append(s.games, g)
	s.publishAndUnlock(Event{Kind: EventAdded, GameIDs: []string{g.ID}, At: now})

	return g.Clone(), nil
}

// Update merges p into the game with the given id.
//
// Returns:
//   - domain.Game: the record after the merge.
//   - error: ErrNotFound for an unknown id, ErrConflict when the version does
//     not match, or the wrapped persistence error.
func (s *Store) Update(ctx context.Context, id string, p Patch) (domain.Game, error) {
	const op = "gamestore.Store.Update"

	out, err := s.UpdateMany(ctx, []Change{{ID: id, Patch: p}})
	if err != nil {
		return domain.Game{}, fmt.Errorf("%s: %w", op, err)
	}

	return out[0], nil
}

// UpdateMany applies several patches as one unit: either every game is
// persisted and applied, or none is.
func (s *Store) UpdateMany(ctx context.Context, changes []Change) ([]domain.Game, error) {
	const op = "gamestore.Store.UpdateMany"

	if len(changes) == 0 {
		return nil, nil
	}

	s.mu.Lock()

	now := s.now().UTC()
	merged := make([]domain.Game, 0, len(changes))
	seen := make(map[string]struct{}, len(changes))
	for _, ch := range changes {
		if _, dup := seen[ch.ID]; dup {
			s.mu.Unlock()
			return nil, fmt.Errorf("%s: game %s changed twice: %w", op, ch.ID, ErrValidation)
		}
		seen[ch.ID] = struct{}{}

		i, ok := s.index[ch.ID]
		if !ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("%s: game %s: %w", op, ch.ID, ErrNotFound)
		}

		cur := s.games[i]
		if ch.Patch.ExpectedVersion != 0 && ch.Patch.ExpectedVersion != cur.Version {
			s.mu.Unlock()
			return nil, fmt.Errorf("%s: game %s at version %d, expected %d: %w",
				op, ch.ID, cur.Version, ch.Patch.ExpectedVersion, ErrConflict)
		}

		g, err := apply(cur.Clone(), ch.Patch)
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("%s: game %s: %w", op, ch.ID, err)
		}
		g.Version = cur.Version + 1
		g.UpdatedAt = now
		merged = append(merged, g)
	}

	if err := s.persister.SaveGames(ctx, merged...); err != nil {
		s.mu.Unlock()
		return nil, s.persistErr(ctx, op, err)
	}

	ids := make([]string, len(merged))
	out := make([]domain.Game, len(merged))
	for k, g := range merged {
		s.games[s.index[g.ID]] = g
		ids[k] = g.ID
		out[k] = g.Clone()
	}
	s.publishAndUnlock(Event{Kind: EventUpdated, GameIDs: ids, At: now})

	return out, nil
}

// persistErr handles a failed save. Stale versions mean another instance
// wrote first: the snapshot is refreshed and the caller gets ErrConflict.
// Called without s.mu held.
func (s *Store) persistErr(ctx context.Context, op string, err error) error {
	if errors.Is(err, repository.ErrStaleVersion) || errors.Is(err, repository.ErrConflict) {
		if rerr := s.Reload(ctx); rerr != nil {
			s.log.Error("reload after conflict", slog.String("op", op), slog.Any("err", rerr))
		}
		return fmt.Errorf("%s: %w: %v", op, ErrConflict, err)
	}

	s.log.Error("persist games", slog.String("op", op), slog.Any("err", err))

	return fmt.Errorf("%s: persist: %w", op, err)
}

// GetAll returns a copy of every game in snapshot order.
func (s *Store) GetAll() []domain.Game {
	return s.filter(func(domain.Game) bool { return true })
}

func (s *Store) Get(id string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Game{}, fmt.Errorf("gamestore.Store.Get: game %s: %w", id, ErrNotFound)
	}

	return s.games[i].Clone(), nil
}

func (s *Store) GetByStatus(status domain.GameStatus) []domain.Game {
	return s.filter(func(g domain.Game) bool { return g.Status == status })
}

func (s *Store) GetByDate(date string) []domain.Game {
	return s.filter(func(g domain.Game) bool { return g.Date == date })
}

func (s *Store) filter(keep func(domain.Game) bool) []domain.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Game, 0, len(s.games))
	for _, g := range s.games {
		if keep(g) {
			out = append(out, g.Clone())
		}
	}
	return out
}

// Subscribe registers fn to run after every successful mutation. Calls are
// synchronous and ordered; fn must not mutate the store from the same goroutine.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

// publishAndUnlock releases s.mu and delivers ev. The caller must hold s.mu.
func (s *Store) publishAndUnlock(ev Event) {
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	s.subsMu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func validateNew(ng NewGame) error {
	switch {
	case strings.TrimSpace(ng.ClientName) == "":
		return fmt.Errorf("%w: client name is required", ErrValidation)
	case ng.GameTypeID == "":
		return fmt.Errorf("%w: game type is required", ErrValidation)
	case ng.PractitionerID == "":
		return fmt.Errorf("%w: practitioner is required", ErrValidation)
	case ng.Value.IsNegative():
		return fmt.Errorf("%w: value is negative", ErrValidation)
	case !domain.MoneyFits(ng.Value):
		return fmt.Errorf("%w: value %s out of range", ErrValidation, ng.Value)
	case !ng.Status.Valid():
		return fmt.Errorf("%w: unknown status %q", ErrValidation, ng.Status)
	case ng.Status == domain.StatusFinished:
		return fmt.Errorf("%w: a new game cannot be finished", ErrValidation)
	case ng.QueuePosition != nil && *ng.QueuePosition < 1:
		return fmt.Errorf("%w: queue position must be positive", ErrValidation)
	}

	if _, err := time.Parse(domain.DateLayout, ng.Date); err != nil {
		return fmt.Errorf("%w: date %q", ErrValidation, ng.Date)
	}
	if _, err := time.Parse(domain.TimeLayout, ng.PaymentTime); err != nil {
		return fmt.Errorf("%w: payment time %q", ErrValidation, ng.PaymentTime)
	}

	return nil
}

func apply(g domain.Game, p Patch) (domain.Game, error) {
	if p.ClientName != nil {
		name := strings.TrimSpace(*p.ClientName)
		if name == "" {
			return g, fmt.Errorf("%w: client name is required", ErrValidation)
		}
		g.ClientName = name
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return g, fmt.Errorf("%w: unknown status %q", ErrValidation, *p.Status)
		}
		g.Status = *p.Status
	}
	if p.Campaign != nil {
		g.Campaign = strings.TrimSpace(*p.Campaign)
	}
	if p.ConversationLink != nil {
		g.ConversationLink = strings.TrimSpace(*p.ConversationLink)
	}
	switch {
	case p.ClearQueuePosition:
		g.QueuePosition = nil
	case p.QueuePosition != nil:
		if *p.QueuePosition < 1 {
			return g, fmt.Errorf("%w: queue position must be positive", ErrValidation)
		}
		v := *p.QueuePosition
		g.QueuePosition = &v
	}
	if p.StartedAt != nil {
		v := p.StartedAt.UTC()
		g.StartedAt = &v
	}
	switch {
	case p.ClearFinishedAt:
		g.FinishedAt = nil
	case p.FinishedAt != nil:
		v := p.FinishedAt.UTC()
		g.FinishedAt = &v
	}

	return g, nil
}

package lifecycle

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/cartodesk/internal/auth"
	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/queue"
	"github.com/kirinyoku/cartodesk/internal/rbac"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	store     *gamestore.Store
	persister *gamestore.MemoryPersister
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	cat, err := catalog.New(
		[]domain.Practitioner{
			{ID: "P", Name: "Vanessa", CommissionMultiplier: decimal.NewFromInt(1)},
			{ID: "Q", Name: "Alana", CommissionMultiplier: decimal.RequireFromString("0.5")},
		},
		[]domain.GameType{
			{ID: "short", Name: "Short", BasePrice: decimal.NewFromInt(10), DurationMinutes: 10},
			{ID: "long", Name: "Long", BasePrice: decimal.NewFromInt(25), DurationMinutes: 15},
		},
	)
	require.NoError(t, err)

	clock := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Minute)
		return clock
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := gamestore.NewMemoryPersister()
	store := gamestore.New(p, gamestore.WithLogger(log), gamestore.WithClock(now))

	return fixture{
		svc:       New(store, cat, log, WithClock(now)),
		store:     store,
		persister: p,
	}
}

func (f fixture) add(t *testing.T, client, practitioner, gameType, paid string) domain.Game {
	t.Helper()
	g, err := f.store.Add(context.Background(), gamestore.NewGame{
		ClientName:       client,
		GameTypeID:       gameType,
		PractitionerID:   practitioner,
		Value:            decimal.NewFromInt(25),
		Date:             "2024-01-01",
		PaymentTime:      paid,
		ConversationLink: "https://wa.me/" + client,
	})
	require.NoError(t, err)
	return g
}

func adminCtx() context.Context {
	return auth.WithIdentity(context.Background(), auth.Identity{UserID: "boss", Role: rbac.RoleAdmin})
}

func entryIDs(entries []queue.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Game.ClientName
	}
	return out
}

func waits(entries []queue.Entry) []int {
	out := make([]int, len(entries))
	for i, e := range entries {
		out[i] = e.WaitMinutes
	}
	return out
}

func TestScenario_StartRecomputesWaits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, "A", "P", "short", "09:00")
	b := f.add(t, "B", "P", "long", "09:05")
	c := f.add(t, "C", "P", "long", "09:10")

	for id, want := range map[string]int{a.ID: 0, b.ID: 10, c.ID: 25} {
		got, err := f.svc.Wait(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	res, err := f.svc.Start(ctx, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/A", res.OpenLink)
	assert.Equal(t, domain.StatusInProgress, res.Game.Status)
	require.NotNil(t, res.Game.StartedAt)

	active, ok := f.svc.Active(ctx, "P")
	require.True(t, ok)
	assert.Equal(t, a.ID, active.ID)

	q := f.svc.Queue(ctx, "P")
	assert.Equal(t, []string{"B", "C"}, entryIDs(q))
	assert.Equal(t, []int{0, 15}, waits(q))

	next, ok := f.svc.Next(ctx, "P")
	require.True(t, ok)
	assert.Equal(t, b.ID, next.ID)
}

func TestStartFinishRevert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.add(t, "A", "P", "short", "09:00")

	_, err := f.svc.Finish(ctx, g.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	started, err := f.svc.Start(ctx, g.ID, 0)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, g.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	finished, err := f.svc.Finish(ctx, g.ID, started.Game.Version)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFinished, finished.Status)
	require.NotNil(t, finished.StartedAt)
	require.NotNil(t, finished.FinishedAt)
	assert.False(t, finished.FinishedAt.Before(*finished.StartedAt))
	assert.True(t, finished.Value.Equal(g.Value))

	_, err = f.svc.Revert(ctx, g.ID, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	practitioner := auth.WithIdentity(ctx, auth.Identity{UserID: "p", Role: rbac.RolePractitioner, PractitionerID: "P"})
	_, err = f.svc.Revert(practitioner, g.ID, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	reverted, err := f.svc.Revert(adminCtx(), g.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, reverted.Status)
	assert.Nil(t, reverted.FinishedAt)
	require.NotNil(t, reverted.StartedAt)
	assert.True(t, reverted.StartedAt.Equal(*finished.StartedAt))
}

func TestStart_PractitionerBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, "A", "P", "short", "09:00")
	b := f.add(t, "B", "P", "short", "09:05")
	other := f.add(t, "C", "Q", "short", "09:05")

	_, err := f.svc.Start(ctx, a.ID, 0)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, b.ID, 0)
	assert.ErrorIs(t, err, ErrPractitionerBusy)

	_, err = f.svc.Start(ctx, other.ID, 0)
	assert.NoError(t, err)
}

func TestRevert_BlockedWhilePractitionerBusy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, "A", "P", "short", "09:00")
	b := f.add(t, "B", "P", "short", "09:05")

	_, err := f.svc.Start(ctx, a.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.Finish(ctx, a.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.Start(ctx, b.ID, 0)
	require.NoError(t, err)

	_, err = f.svc.Revert(adminCtx(), a.ID, 0)
	assert.ErrorIs(t, err, ErrPractitionerBusy)
}

func TestTransitions_StaleVersionAndUnknownID(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.add(t, "A", "P", "short", "09:00")

	_, err := f.svc.Start(ctx, g.ID, g.Version+1)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.Start(ctx, "missing", 0)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Wait(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitions_PersistFailureLeavesStateUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.add(t, "A", "P", "short", "09:00")

	f.persister.FailNext(errors.New("db down"))
	_, err := f.svc.Start(ctx, g.ID, 0)
	require.Error(t, err)

	got, err := f.store.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, got.Status)
	assert.Nil(t, got.StartedAt)
}

func TestPractitionerCannotTouchOthersGames(t *testing.T) {
	f := newFixture(t)
	g := f.add(t, "A", "Q", "short", "09:00")

	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "p", Role: rbac.RolePractitioner, PractitionerID: "P"})
	_, err := f.svc.Start(ctx, g.ID, 0)
	assert.ErrorIs(t, err, ErrForbidden)

	assert.Empty(t, f.svc.Queue(ctx, "Q"))
}

func TestReorder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, "A", "P", "short", "09:00")
	b := f.add(t, "B", "P", "long", "09:05")
	c := f.add(t, "C", "P", "long", "09:10")
	f.add(t, "X", "Q", "long", "08:00")

	_, err := f.svc.Reorder(ctx, a.ID, DirectionUp)
	assert.ErrorIs(t, err, ErrInvalidMove)
	_, err = f.svc.Reorder(ctx, c.ID, DirectionDown)
	assert.ErrorIs(t, err, ErrInvalidMove)
	for _, g := range f.store.GetAll() {
		assert.Nil(t, g.QueuePosition, "boundary move must not write")
	}

	saves := f.persister.Saves()
	entries, err := f.svc.Reorder(ctx, b.ID, DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "C"}, entryIDs(entries))
	assert.Equal(t, []int{0, 15, 25}, waits(entries))
	assert.Equal(t, saves+1, f.persister.Saves(), "one transaction per move")

	entries, err = f.svc.Reorder(ctx, b.ID, DirectionDown)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, entryIDs(entries))

	// C already holds position 3, so only A and B are rewritten
	got, err := f.store.Get(c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.QueuePosition)
	assert.Equal(t, 3, *got.QueuePosition)
	assert.EqualValues(t, 2, got.Version)

	_, err = f.svc.Reorder(ctx, b.ID, Direction("sideways"))
	assert.ErrorIs(t, err, ErrInvalidMove)

	_, err = f.svc.Start(ctx, a.ID, 0)
	require.NoError(t, err)
	_, err = f.svc.Reorder(ctx, a.ID, DirectionDown)
	assert.ErrorIs(t, err, ErrInvalidMove)
}

func TestPositionBoardAndOptimizations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.add(t, "A", "P", "short", "09:00")
	b := f.add(t, "B", "P", "long", "09:05")
	f.add(t, "C", "Q", "long", "09:10")

	pos, err := f.svc.Position(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, pos)

	_, err = f.svc.Start(ctx, a.ID, 0)
	require.NoError(t, err)

	board := f.svc.Board(ctx, "P")
	assert.Len(t, board.Waiting, 1)
	assert.Len(t, board.InProgress, 1)
	assert.Empty(t, board.Finished)

	opts := f.svc.Optimizations(ctx)
	require.Len(t, opts, 2)
	assert.Equal(t, "P", opts[0].PractitionerID)
	assert.Equal(t, 1, opts[0].QueueLength)

	scoped := auth.WithIdentity(ctx, auth.Identity{UserID: "q", Role: rbac.RolePractitioner, PractitionerID: "Q"})
	mine := f.svc.Optimizations(scoped)
	require.Len(t, mine, 1)
	assert.Equal(t, "Q", mine[0].PractitionerID)
}

package gamestore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGame(client, paid string) NewGame {
	return NewGame{
		ClientName:     client,
		GameTypeID:     "1",
		PractitionerID: "p",
		Value:          decimal.NewFromInt(10),
		Date:           "2024-01-01",
		PaymentTime:    paid,
	}
}

func fixedClock() func() time.Time {
	t := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func TestStore_AddAssignsUniqueIDs(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryPersister(), WithClock(fixedClock()))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		g, err := s.Add(ctx, newGame("Client", "09:00"))
		require.NoError(t, err)
		require.NotEmpty(t, g.ID)
		assert.False(t, seen[g.ID], "duplicate id %s", g.ID)
		seen[g.ID] = true

		assert.Equal(t, domain.StatusWaiting, g.Status)
		assert.EqualValues(t, 1, g.Version)
	}

	all := s.GetAll()
	assert.Len(t, all, 20)
	for _, g := range all {
		assert.True(t, seen[g.ID])
	}
}

func TestStore_AddValidation(t *testing.T) {
	s := New(NewMemoryPersister())

	bad := []NewGame{
		func() NewGame { g := newGame("", "09:00"); return g }(),
		func() NewGame { g := newGame("A", "9h"); return g }(),
		func() NewGame { g := newGame("A", "09:00"); g.Date = "01/01/2024"; return g }(),
		func() NewGame { g := newGame("A", "09:00"); g.Status = domain.StatusFinished; return g }(),
		func() NewGame { g := newGame("A", "09:00"); g.Value = decimal.NewFromInt(-1); return g }(),
		func() NewGame { g := newGame("A", "09:00"); g.Value = decimal.RequireFromString("25.505"); return g }(),
		func() NewGame { g := newGame("A", "09:00"); g.Value = decimal.New(1, 10); return g }(),
	}
	for _, ng := range bad {
		_, err := s.Add(context.Background(), ng)
		assert.ErrorIs(t, err, ErrValidation)
	}
	assert.Empty(t, s.GetAll())
}

func TestStore_AddAcceptsStorableValues(t *testing.T) {
	s := New(NewMemoryPersister())

	for _, v := range []string{"0", "25.50", "25.500", "9999999999.99"} {
		ng := newGame("A", "09:00")
		ng.Value = decimal.RequireFromString(v)
		_, err := s.Add(context.Background(), ng)
		assert.NoError(t, err, v)
	}
}

func TestStore_PersistFailureRejectsMutation(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := New(p)

	var events []Event
	s.Subscribe(func(ev Event) { events = append(events, ev) })

	boom := errors.New("db down")
	p.FailNext(boom)
	_, err := s.Add(ctx, newGame("A", "09:00"))
	require.ErrorIs(t, err, boom)
	assert.Empty(t, s.GetAll())
	assert.Empty(t, events)

	g, err := s.Add(ctx, newGame("A", "09:00"))
	require.NoError(t, err)

	p.FailNext(boom)
	name := "B"
	_, err = s.Update(ctx, g.ID, Patch{ClientName: &name})
	require.ErrorIs(t, err, boom)

	got, err := s.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.ClientName)
	assert.EqualValues(t, 1, got.Version)
	assert.Len(t, events, 1)
}

func TestStore_UpdateUnknownID(t *testing.T) {
	s := New(NewMemoryPersister())

	status := domain.StatusInProgress
	_, err := s.Update(context.Background(), "missing", Patch{Status: &status})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_UpdateMergesAndBumpsVersion(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryPersister(), WithClock(fixedClock()))

	g, err := s.Add(ctx, newGame("A", "09:00"))
	require.NoError(t, err)

	pos := 3
	campaign := " spring "
	up, err := s.Update(ctx, g.ID, Patch{QueuePosition: &pos, Campaign: &campaign, ExpectedVersion: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, up.Version)
	require.NotNil(t, up.QueuePosition)
	assert.Equal(t, 3, *up.QueuePosition)
	assert.Equal(t, "spring", up.Campaign)
	assert.True(t, up.Value.Equal(g.Value))
	assert.True(t, up.UpdatedAt.After(g.UpdatedAt))

	_, err = s.Update(ctx, g.ID, Patch{ClearQueuePosition: true, ExpectedVersion: 1})
	assert.ErrorIs(t, err, ErrConflict)

	cleared, err := s.Update(ctx, g.ID, Patch{ClearQueuePosition: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.QueuePosition)
}

func TestStore_StaleWriterGetsConflictAndFreshState(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	a := New(p)
	b := New(p)

	g, err := a.Add(ctx, newGame("A", "09:00"))
	require.NoError(t, err)
	require.NoError(t, b.Load(ctx))

	nameA := "from a"
	_, err = a.Update(ctx, g.ID, Patch{ClientName: &nameA})
	require.NoError(t, err)

	var reloaded bool
	b.Subscribe(func(ev Event) {
		if ev.Kind == EventReloaded {
			reloaded = true
		}
	})

	nameB := "from b"
	_, err = b.Update(ctx, g.ID, Patch{ClientName: &nameB})
	require.ErrorIs(t, err, ErrConflict)
	assert.True(t, reloaded)

	fresh, err := b.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, "from a", fresh.ClientName)
	assert.EqualValues(t, 2, fresh.Version)

	_, err = b.Update(ctx, g.ID, Patch{ClientName: &nameB})
	require.NoError(t, err)
}

func TestStore_UpdateManyIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	p := NewMemoryPersister()
	s := New(p)

	a, err := s.Add(ctx, newGame("A", "09:00"))
	require.NoError(t, err)
	b, err := s.Add(ctx, newGame("B", "09:05"))
	require.NoError(t, err)

	one, two := 1, 2
	_, err = s.UpdateMany(ctx, []Change{
		{ID: a.ID, Patch: Patch{QueuePosition: &two}},
		{ID: "missing", Patch: Patch{QueuePosition: &one}},
	})
	require.ErrorIs(t, err, ErrNotFound)

	p.FailNext(errors.New("tx aborted"))
	_, err = s.UpdateMany(ctx, []Change{
		{ID: a.ID, Patch: Patch{QueuePosition: &two}},
		{ID: b.ID, Patch: Patch{QueuePosition: &one}},
	})
	require.Error(t, err)

	for _, g := range s.GetAll() {
		assert.Nil(t, g.QueuePosition)
		assert.EqualValues(t, 1, g.Version)
	}

	out, err := s.UpdateMany(ctx, []Change{
		{ID: a.ID, Patch: Patch{QueuePosition: &two}},
		{ID: b.ID, Patch: Patch{QueuePosition: &one}},
	})
	require.NoError(t, err)
	require.Len(t, out, 2)

	stored, err := p.ListGames(ctx)
	require.NoError(t, err)
	for _, g := range stored {
		require.NotNil(t, g.QueuePosition)
	}
}

func TestStore_SubscribersSeeEventsInOrder(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryPersister())

	var (
		mu    sync.Mutex
		kinds []EventKind
	)
	unsubscribe := s.Subscribe(func(ev Event) {
		mu.Lock()
		kinds = append(kinds, ev.Kind)
		mu.Unlock()
	})

	g, err := s.Add(ctx, newGame("A", "09:00"))
	require.NoError(t, err)

	status := domain.StatusInProgress
	_, err = s.Update(ctx, g.ID, Patch{Status: &status})
	require.NoError(t, err)
	require.NoError(t, s.Reload(ctx))

	unsubscribe()
	unsubscribe()
	_, err = s.Add(ctx, newGame("B", "09:05"))
	require.NoError(t, err)

	assert.Equal(t, []EventKind{EventAdded, EventUpdated, EventReloaded}, kinds)
}

func TestStore_Filters(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryPersister())

	_, err := s.Add(ctx, newGame("A", "09:00"))
	require.NoError(t, err)

	paid := newGame("B", "10:00")
	paid.Status = domain.StatusPaidOnly
	paid.Date = "2024-01-02"
	_, err = s.Add(ctx, paid)
	require.NoError(t, err)

	assert.Len(t, s.GetByStatus(domain.StatusWaiting), 1)
	assert.Len(t, s.GetByStatus(domain.StatusPaidOnly), 1)
	assert.Len(t, s.GetByDate("2024-01-02"), 1)
	assert.Empty(t, s.GetByDate("2023-12-31"))
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryPersister())

	pos := 1
	ng := newGame("A", "09:00")
	ng.QueuePosition = &pos
	g, err := s.Add(ctx, ng)
	require.NoError(t, err)

	all := s.GetAll()
	*all[0].QueuePosition = 99
	all[0].ClientName = "mutated"

	got, err := s.Get(g.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.QueuePosition)
	assert.Equal(t, "A", got.ClientName)
}

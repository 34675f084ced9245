package gamestore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/repository"
)

// MemoryPersister keeps games in process memory. It applies the same version
// rules as the postgres repository and can be told to fail the next save.
type MemoryPersister struct {
	mu       sync.Mutex
	games    map[string]domain.Game
	failNext error
	saves    int
}

func NewMemoryPersister(seed ...domain.Game) *MemoryPersister {
	p := &MemoryPersister{games: make(map[string]domain.Game, len(seed))}
	for _, g := range seed {
		p.games[g.ID] = g.Clone()
	}
	return p
}

// FailNext makes the next SaveGames call return err without writing anything.
func (p *MemoryPersister) FailNext(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failNext = err
}

// Saves returns the number of successful SaveGames calls.
func (p *MemoryPersister) Saves() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func (p *MemoryPersister) ListGames(ctx context.Context) ([]domain.Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]domain.Game, 0, len(p.games))
	for _, g := range p.games {
		out = append(out, g.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.PaymentTime != b.PaymentTime {
			return a.PaymentTime < b.PaymentTime
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	return out, nil
}

func (p *MemoryPersister) SaveGames(ctx context.Context, games ...domain.Game) error {
	const op = "gamestore.MemoryPersister.SaveGames"

	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failNext != nil {
		err := p.failNext
		p.failNext = nil
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, g := range games {
		stored, exists := p.games[g.ID]
		switch {
		case g.Version <= 1 && exists:
			return fmt.Errorf("%s: game %s: %w", op, g.ID, repository.ErrConflict)
		case g.Version > 1 && (!exists || stored.Version != g.Version-1):
			return fmt.Errorf("%s: game %s: %w", op, g.ID, repository.ErrStaleVersion)
		}
	}

	for _, g := range games {
		p.games[g.ID] = g.Clone()
	}
	p.saves++

	return nil
}

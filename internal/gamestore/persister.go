package gamestore

import (
	"context"

	"github.com/kirinyoku/cartodesk/internal/domain"
)

// Persister is the durable side of the store.
//
// SaveGames must write all games atomically. A game with Version 1 is new;
// any other game must replace a stored row whose version is exactly one lower,
// otherwise repository.ErrStaleVersion is returned.
type Persister interface {
	ListGames(ctx context.Context) ([]domain.Game, error)
	SaveGames(ctx context.Context, games ...domain.Game) error
}

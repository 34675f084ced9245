package gamestore

import (
	"context"
	"log/slog"

	"github.com/kirinyoku/cartodesk/internal/domain"
	postgresrepo "github.com/kirinyoku/cartodesk/internal/repository/postgres"
	"github.com/kirinyoku/cartodesk/internal/uow"
)

const maxSaveAttempts = 3

// PostgresPersister stores games in the games table. Each SaveGames call
// runs in its own transaction and is retried on serialization failures.
type PostgresPersister struct {
	games *postgresrepo.GameRepo
	uow   *uow.UoW
	log   *slog.Logger
}

func NewPostgresPersister(store *postgresrepo.Store, u *uow.UoW, log *slog.Logger) *PostgresPersister {
	return &PostgresPersister{games: store.Games(), uow: u, log: log}
}

func (p *PostgresPersister) ListGames(ctx context.Context) ([]domain.Game, error) {
	return p.games.List(ctx)
}

func (p *PostgresPersister) SaveGames(ctx context.Context, games ...domain.Game) error {
	if len(games) == 0 {
		return nil
	}

	var err error
	for attempt := 1; attempt <= maxSaveAttempts; attempt++ {
		err = p.uow.Do(ctx, func(ctx context.Context, s *uow.Scope) error {
			if err := s.Games.Save(ctx, games...); err != nil {
				return err
			}
			s.After(func(context.Context) {
				p.log.Debug("games saved", slog.Int("count", len(games)), slog.Int("attempt", attempt))
			})
			return nil
		})
		if err == nil || !postgresrepo.IsRetryable(err) {
			return err
		}
		p.log.Warn("retrying games save", slog.Int("attempt", attempt), slog.Any("err", err))
	}

	return err
}

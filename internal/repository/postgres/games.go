package postgresrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/repository"
	"github.com/shopspring/decimal"
)

type GameRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *GameRepo) With(db DB) *GameRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *GameRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

const selectGames = `
SELECT id::text, client_name, game_type_id, cartomante_id, value::text,
       game_date::text, to_char(payment_time, 'HH24:MI'), status,
       coalesce(campaign, ''), coalesce(conversation_link, ''), queue_position,
       started_at, finished_at, version, created_at, updated_at
  FROM games`

// List returns every game ordered by payment moment.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//
// Returns:
//   - []domain.Game: all stored games.
//   - error: if the query or a row conversion fails.
func (r *GameRepo) List(ctx context.Context) ([]domain.Game, error) {
	const op = "postgresrepo.GameRepo.List"

	rows, err := r.handle().Query(ctx, selectGames+`
 ORDER BY game_date, payment_time, created_at, id`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Game
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, g)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// Get returns a single game.
//
// Returns:
//   - error: repository.ErrNotFound if no game has the id.
func (r *GameRepo) Get(ctx context.Context, id string) (domain.Game, error) {
	const op = "postgresrepo.GameRepo.Get"

	g, err := scanGame(r.handle().QueryRow(ctx, selectGames+` WHERE id = $1`, id))
	if err != nil {
		return domain.Game{}, wrapDBErr(op, err)
	}

	return g, nil
}

// Save writes games in one batch. A game with version 1 is inserted; any other
// version updates the row only if the stored version is exactly one behind.
//
// Parameters:
//   - ctx: request-scoped context for cancellation and timeouts.
//   - games: the games to persist, already carrying their new version.
//
// Returns:
//   - error: repository.ErrStaleVersion if a row changed since it was read.
//   - error: repository.ErrConflict if an inserted id already exists.
func (r *GameRepo) Save(ctx context.Context, games ...domain.Game) error {
	const op = "postgresrepo.GameRepo.Save"

	if len(games) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, g := range games {
		args := []any{
			g.ID,
			g.ClientName,
			g.GameTypeID,
			g.PractitionerID,
			g.Value.String(),
			g.Date,
			g.PaymentTime,
			g.Status.StorageCode(),
			nullString(g.Campaign),
			nullString(g.ConversationLink),
			g.QueuePosition,
			g.StartedAt,
			g.FinishedAt,
			g.Version,
			g.CreatedAt,
			g.UpdatedAt,
		}

		if g.Version <= 1 {
			batch.Queue(
				`INSERT INTO games(id, client_name, game_type_id, cartomante_id, value,
                   game_date, payment_time, status, campaign, conversation_link,
                   queue_position, started_at, finished_at, version, created_at, updated_at)
                 VALUES ($1, $2, $3, $4, $5::numeric, $6::date, $7::time, $8, $9, $10,
                   $11, $12, $13, $14, $15, $16)`,
				args...,
			)
			continue
		}

		batch.Queue(
			`UPDATE games
                SET client_name = $2, game_type_id = $3, cartomante_id = $4,
                    value = $5::numeric, game_date = $6::date, payment_time = $7::time,
                    status = $8, campaign = $9, conversation_link = $10,
                    queue_position = $11, started_at = $12, finished_at = $13,
                    version = $14, created_at = $15, updated_at = $16
              WHERE id = $1 AND version = $14 - 1`,
			args...,
		)
	}

	br := r.handle().SendBatch(ctx, batch)
	defer br.Close()

	for _, g := range games {
		tag, err := br.Exec()
		if err != nil {
			return wrapDBErr(op, err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%s: game %s: %w", op, g.ID, repository.ErrStaleVersion)
		}
	}

	return nil
}

func scanGame(row pgx.Row) (domain.Game, error) {
	var (
		g        domain.Game
		value    string
		status   string
		position *int32
	)

	err := row.Scan(
		&g.ID,
		&g.ClientName,
		&g.GameTypeID,
		&g.PractitionerID,
		&value,
		&g.Date,
		&g.PaymentTime,
		&status,
		&g.Campaign,
		&g.ConversationLink,
		&position,
		&g.StartedAt,
		&g.FinishedAt,
		&g.Version,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return domain.Game{}, err
	}

	g.Value, err = decimal.NewFromString(value)
	if err != nil {
		return domain.Game{}, fmt.Errorf("game %s value: %w", g.ID, err)
	}

	g.Status, err = domain.StatusFromStorageCode(status)
	if err != nil {
		return domain.Game{}, fmt.Errorf("game %s: %w", g.ID, err)
	}

	if position != nil {
		p := int(*position)
		g.QueuePosition = &p
	}

	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	g.StartedAt = utcPtr(g.StartedAt)
	g.FinishedAt = utcPtr(g.FinishedAt)

	return g, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

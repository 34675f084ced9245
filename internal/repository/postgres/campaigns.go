package postgresrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
)

type CampaignRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *CampaignRepo) With(db DB) *CampaignRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *CampaignRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// ListSpend returns the recorded advertising spend of every campaign.
func (r *CampaignRepo) ListSpend(ctx context.Context) ([]domain.CampaignSpend, error) {
	const op = "postgresrepo.CampaignRepo.ListSpend"

	rows, err := r.handle().Query(ctx,
		`SELECT name, spend::text, updated_at
           FROM campaign_spend
          ORDER BY name`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.CampaignSpend
	for rows.Next() {
		var (
			cs    domain.CampaignSpend
			spend string
		)
		if err := rows.Scan(&cs.Name, &spend, &cs.UpdatedAt); err != nil {
			return nil, wrapDBErr(op, err)
		}
		cs.Spend, err = decimal.NewFromString(spend)
		if err != nil {
			return nil, fmt.Errorf("%s: campaign %q spend: %w", op, cs.Name, err)
		}
		out = append(out, cs)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// UpsertSpend records the total spend of a campaign, replacing any earlier figure.
func (r *CampaignRepo) UpsertSpend(
	ctx context.Context,
	name string,
	spend decimal.Decimal,
	at time.Time,
) error {
	const op = "postgresrepo.CampaignRepo.UpsertSpend"

	_, err := r.handle().Exec(ctx,
		`INSERT INTO campaign_spend(name, spend, updated_at)
         VALUES ($1, $2::numeric, $3)
         ON CONFLICT (name) DO UPDATE
            SET spend = EXCLUDED.spend, updated_at = EXCLUDED.updated_at`,
		name, spend.String(), at,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	postgresrepo "github.com/kirinyoku/cartodesk/internal/repository/postgres"
)

// AfterCommit is a function that runs after a successful transaction commit.
type AfterCommit func(ctx context.Context)

// Scope exposes repositories bound to the running transaction.
type Scope struct {
	Games     *postgresrepo.GameRepo
	Campaigns *postgresrepo.CampaignRepo

	hooks []AfterCommit
}

// After registers h to run once the transaction has committed.
// Hooks do not run when the transaction is rolled back.
func (s *Scope) After(h AfterCommit) {
	if h != nil {
		s.hooks = append(s.hooks, h)
	}
}

// UoW represents a unit of work.
type UoW struct {
	store *postgresrepo.Store
	opts  *pgx.TxOptions
}

func NewUoW(store *postgresrepo.Store) *UoW {
	return &UoW{store: store}
}

// WithOpts returns a copy of u that begins transactions with opts.
func (u *UoW) WithOpts(opts pgx.TxOptions) *UoW {
	cp := *u
	cp.opts = &opts
	return &cp
}

// Do runs fn inside one transaction and then executes the registered hooks in order.
func (u *UoW) Do(ctx context.Context, fn func(ctx context.Context, s *Scope) error) error {
	var scope *Scope

	err := u.store.RunTx(ctx, u.opts, func(ctx context.Context, tx postgresrepo.DB) error {
		scope = &Scope{
			Games:     u.store.Games().With(tx),
			Campaigns: u.store.Campaigns().With(tx),
		}
		return fn(ctx, scope)
	})
	if err != nil {
		return err
	}

	for _, h := range scope.hooks {
		h(ctx)
	}

	return nil
}

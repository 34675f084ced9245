package reports

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirinyoku/cartodesk/internal/catalog"
	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/kirinyoku/cartodesk/internal/gamestore"
	"github.com/kirinyoku/cartodesk/internal/rbac"
	"github.com/kirinyoku/cartodesk/internal/report"
	redisrepo "github.com/kirinyoku/cartodesk/internal/repository/redis"
	"github.com/shopspring/decimal"
)

type Config struct {
	Scope    report.Scope
	CacheTTL time.Duration
	Location *time.Location
}

type Service struct {
	store   *gamestore.Store
	catalog *catalog.Catalog
	spend   SpendSource
	cache   *redisrepo.Cache
	log     *slog.Logger
	cfg     Config
	now     func() time.Time
}

// New wires the reports service. cache may be nil.
func New(
	store *gamestore.Store,
	cat *catalog.Catalog,
	spend SpendSource,
	cache *redisrepo.Cache,
	log *slog.Logger,
	cfg Config,
) *Service {
	if cfg.Scope == "" {
		cfg.Scope = report.ScopeFinished
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}

	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Service{
		store:   store,
		catalog: cat,
		spend:   spend,
		cache:   cache,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *Service) Scope() report.Scope { return s.cfg.Scope }

// Clients ranks clients by total spent.
func (s *Service) Clients(ctx context.Context) []domain.Client {
	return report.Clients(s.games(ctx), s.cfg.Scope)
}

// Financial summarises revenue within period.
//
// Returns:
//   - error: reports.ErrValidation for malformed or inverted dates.
func (s *Service) Financial(ctx context.Context, period report.Period) (report.Financial, error) {
	const op = "service.reports.Financial"

	if err := validatePeriod(period); err != nil {
		return report.Financial{}, fmt.Errorf("%s: %w", op, err)
	}

	return report.BuildFinancial(s.games(ctx), s.cfg.Scope, period, s.catalog), nil
}

// Profit nets revenue in period against affiliate payouts and recorded ad spend.
func (s *Service) Profit(ctx context.Context, period report.Period) (report.Profit, error) {
	const op = "service.reports.Profit"

	if err := validatePeriod(period); err != nil {
		return report.Profit{}, fmt.Errorf("%s: %w", op, err)
	}

	spend, err := s.loadSpend(ctx)
	if err != nil {
		return report.Profit{}, fmt.Errorf("%s: %w", op, err)
	}

	return report.BuildProfit(s.games(ctx), s.cfg.Scope, period, s.catalog, spend), nil
}

// Campaigns returns revenue, spend and ROAS per campaign.
func (s *Service) Campaigns(ctx context.Context, period report.Period) ([]report.CampaignROI, error) {
	const op = "service.reports.Campaigns"

	if err := validatePeriod(period); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	spend, err := s.loadSpend(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return report.Campaigns(s.games(ctx), s.cfg.Scope, period, spend), nil
}

// Dashboard reports today's operation in the configured time zone.
func (s *Service) Dashboard(ctx context.Context) report.Dashboard {
	return report.BuildDashboard(s.games(ctx), s.now().In(s.cfg.Location), s.cfg.Scope, s.catalog)
}

// ExportFinished hands finished games to the document exporter.
//
// Parameters:
//   - period: inclusive date range, open bounds allowed.
//   - practitionerID: optional practitioner filter.
func (s *Service) ExportFinished(ctx context.Context, period report.Period, practitionerID string) ([]domain.Game, error) {
	const op = "service.reports.ExportFinished"

	if err := validatePeriod(period); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if pid := rbac.OwnPractitioner(ctx); pid != "" {
		if practitionerID != "" && practitionerID != pid {
			return nil, fmt.Errorf("%s: %w", op, ErrForbidden)
		}
		practitionerID = pid
	}

	return report.ExportFinished(s.store.GetAll(), period, practitionerID), nil
}

// SetSpend records the total spend of a campaign and drops the cached figures.
func (s *Service) SetSpend(ctx context.Context, name string, spend decimal.Decimal) (domain.CampaignSpend, error) {
	const op = "service.reports.SetSpend"

	name = strings.TrimSpace(name)
	if name == "" {
		return domain.CampaignSpend{}, fmt.Errorf("%s: %w: campaign name is required", op, ErrValidation)
	}
	if spend.IsNegative() {
		return domain.CampaignSpend{}, fmt.Errorf("%s: %w: spend is negative", op, ErrValidation)
	}
	if !domain.MoneyFits(spend) {
		return domain.CampaignSpend{}, fmt.Errorf("%s: %w: spend %s out of range", op, ErrValidation, spend)
	}

	at := s.now().UTC()
	if err := s.spend.UpsertSpend(ctx, name, spend, at); err != nil {
		return domain.CampaignSpend{}, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if err := s.cache.InvalidateCampaigns(ctx); err != nil {
			s.log.Warn("invalidate campaign cache", slog.String("op", op), slog.Any("err", err))
		}
	}

	return domain.CampaignSpend{Name: name, Spend: spend, UpdatedAt: at}, nil
}

func (s *Service) loadSpend(ctx context.Context) ([]domain.CampaignSpend, error) {
	if s.cache == nil {
		return s.spend.ListSpend(ctx)
	}

	return redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		redisrepo.KeyCampaignSpend(),
		s.cfg.CacheTTL,
		func(ctx context.Context) ([]domain.CampaignSpend, error) {
			return s.spend.ListSpend(ctx)
		},
	)
}

// games returns the snapshot visible to the caller.
func (s *Service) games(ctx context.Context) []domain.Game {
	all := s.store.GetAll()

	pid := rbac.OwnPractitioner(ctx)
	if pid == "" {
		return all
	}

	out := all[:0]
	for _, g := range all {
		if g.PractitionerID == pid {
			out = append(out, g)
		}
	}
	return out
}

func validatePeriod(p report.Period) error {
	for _, d := range []string{p.From, p.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, d); err != nil {
			return fmt.Errorf("%w: date %q", ErrValidation, d)
		}
	}

	if p.From != "" && p.To != "" && p.From > p.To {
		return fmt.Errorf("%w: from after to", ErrValidation)
	}

	return nil
}

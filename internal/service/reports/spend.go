package reports

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
)

// SpendSource stores advertising spend per campaign.
// *postgresrepo.CampaignRepo satisfies it.
type SpendSource interface {
	ListSpend(ctx context.Context) ([]domain.CampaignSpend, error)
	UpsertSpend(ctx context.Context, name string, spend decimal.Decimal, at time.Time) error
}

// MemorySpend is a SpendSource for running without a database.
type MemorySpend struct {
	mu    sync.Mutex
	spend map[string]domain.CampaignSpend
}

func NewMemorySpend() *MemorySpend {
	return &MemorySpend{spend: make(map[string]domain.CampaignSpend)}
}

func (m *MemorySpend) ListSpend(ctx context.Context) ([]domain.CampaignSpend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.CampaignSpend, 0, len(m.spend))
	for _, cs := range m.spend {
		out = append(out, cs)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out, nil
}

func (m *MemorySpend) UpsertSpend(ctx context.Context, name string, spend decimal.Decimal, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.spend[strings.TrimSpace(name)] = domain.CampaignSpend{Name: strings.TrimSpace(name), Spend: spend, UpdatedAt: at}

	return nil
}

package report

import (
	"sort"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
)

// Catalog is the lookup the rollups need; *catalog.Catalog satisfies it.
type Catalog interface {
	Practitioner(id string) (domain.Practitioner, bool)
	PractitionerName(id string) string
	GameTypeName(id string) string
	Duration(gameTypeID string) int
}

type Breakdown struct {
	Key     string          `json:"key"`
	Name    string          `json:"name"`
	Games   int             `json:"games"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Financial struct {
	Period         Period          `json:"period"`
	Scope          Scope           `json:"scope"`
	Games          int             `json:"games"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	AverageTicket  decimal.Decimal `json:"average_ticket"`
	ByPractitioner []Breakdown     `json:"by_practitioner"`
	ByGameType     []Breakdown     `json:"by_game_type"`
	ByDate         []Breakdown     `json:"by_date"`
	TopClients     []domain.Client `json:"top_clients"`
}

const topClients = 5

func BuildFinancial(games []domain.Game, scope Scope, period Period, cat Catalog) Financial {
	sel := Select(games, scope, period)

	f := Financial{
		Period:        period,
		Scope:         scope,
		Games:         len(sel),
		TotalRevenue:  decimal.Zero,
		AverageTicket: decimal.Zero,
	}

	practitioners := newGrouping()
	gameTypes := newGrouping()
	dates := newGrouping()
	for _, g := range sel {
		f.TotalRevenue = f.TotalRevenue.Add(g.Value)
		practitioners.add(g.PractitionerID, cat.PractitionerName(g.PractitionerID), g.Value)
		gameTypes.add(g.GameTypeID, cat.GameTypeName(g.GameTypeID), g.Value)
		dates.add(g.Date, g.Date, g.Value)
	}

	if f.Games > 0 {
		f.AverageTicket = f.TotalRevenue.DivRound(decimal.NewFromInt(int64(f.Games)), 2)
	}

	f.ByPractitioner = practitioners.byRevenue()
	f.ByGameType = gameTypes.byRevenue()
	f.ByDate = dates.byKey()

	f.TopClients = Clients(sel, ScopeAll)
	if len(f.TopClients) > topClients {
		f.TopClients = f.TopClients[:topClients]
	}

	return f
}

type PractitionerShare struct {
	PractitionerID string          `json:"practitioner_id"`
	Name           string          `json:"name"`
	Games          int             `json:"games"`
	Revenue        decimal.Decimal `json:"revenue"`
	Payout         decimal.Decimal `json:"payout"`
	Retained       decimal.Decimal `json:"retained"`
}

type Profit struct {
	Period          Period          `json:"period"`
	Scope           Scope           `json:"scope"`
	Revenue         decimal.Decimal `json:"revenue"`
	AffiliatePayout decimal.Decimal `json:"affiliate_payout"`
	AdSpend         decimal.Decimal `json:"ad_spend"`
	TotalCosts      decimal.Decimal `json:"total_costs"`
	NetProfit       decimal.Decimal `json:"net_profit"`
	// MarginPercent is NetProfit over Revenue in percent, 0 without revenue.
	MarginPercent  decimal.Decimal     `json:"margin_percent"`
	ByPractitioner []PractitionerShare `json:"by_practitioner"`
}

// BuildProfit nets revenue against affiliate payouts and advertising spend.
// Games of practitioners missing from the catalog pay out nothing.
func BuildProfit(
	games []domain.Game,
	scope Scope,
	period Period,
	cat Catalog,
	spend []domain.CampaignSpend,
) Profit {
	p := Profit{
		Period:          period,
		Scope:           scope,
		Revenue:         decimal.Zero,
		AffiliatePayout: decimal.Zero,
		AdSpend:         decimal.Zero,
		MarginPercent:   decimal.Zero,
	}

	shares := make(map[string]*PractitionerShare)
	var order []string
	for _, g := range Select(games, scope, period) {
		payout := decimal.Zero
		if pr, ok := cat.Practitioner(g.PractitionerID); ok {
			payout = pr.Payout(g.Value)
		}

		p.Revenue = p.Revenue.Add(g.Value)
		p.AffiliatePayout = p.AffiliatePayout.Add(payout)

		s, ok := shares[g.PractitionerID]
		if !ok {
			s = &PractitionerShare{
				PractitionerID: g.PractitionerID,
				Name:           cat.PractitionerName(g.PractitionerID),
				Revenue:        decimal.Zero,
				Payout:         decimal.Zero,
				Retained:       decimal.Zero,
			}
			shares[g.PractitionerID] = s
			order = append(order, g.PractitionerID)
		}
		s.Games++
		s.Revenue = s.Revenue.Add(g.Value)
		s.Payout = s.Payout.Add(payout)
		s.Retained = s.Revenue.Sub(s.Payout)
	}

	for _, cs := range spend {
		p.AdSpend = p.AdSpend.Add(cs.Spend)
	}

	p.TotalCosts = p.AffiliatePayout.Add(p.AdSpend)
	p.NetProfit = p.Revenue.Sub(p.TotalCosts)
	if p.Revenue.IsPositive() {
		p.MarginPercent = p.NetProfit.Mul(decimal.NewFromInt(100)).DivRound(p.Revenue, 2)
	}

	sort.Strings(order)
	p.ByPractitioner = make([]PractitionerShare, 0, len(order))
	for _, id := range order {
		p.ByPractitioner = append(p.ByPractitioner, *shares[id])
	}

	return p
}

type grouping struct {
	rows  map[string]*Breakdown
	order []string
}

func newGrouping() *grouping {
	return &grouping{rows: make(map[string]*Breakdown)}
}

func (g *grouping) add(key, name string, value decimal.Decimal) {
	b, ok := g.rows[key]
	if !ok {
		b = &Breakdown{Key: key, Name: name, Revenue: decimal.Zero}
		g.rows[key] = b
		g.order = append(g.order, key)
	}
	b.Games++
	b.Revenue = b.Revenue.Add(value)
}

func (g *grouping) list() []Breakdown {
	out := make([]Breakdown, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, *g.rows[k])
	}
	return out
}

func (g *grouping) byRevenue() []Breakdown {
	out := g.list()
	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].Revenue.Cmp(out[j].Revenue); cmp != 0 {
			return cmp > 0
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (g *grouping) byKey() []Breakdown {
	out := g.list()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

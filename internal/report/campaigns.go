package report

import (
	"sort"
	"strings"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
)

type CampaignROI struct {
	Campaign    string          `json:"campaign"`
	Conversions int             `json:"conversions"`
	Revenue     decimal.Decimal `json:"revenue"`
	Spend       decimal.Decimal `json:"spend"`
	// ROAS is Revenue over Spend; nil when no spend is recorded.
	ROAS *decimal.Decimal `json:"roas"`
}

// Campaigns computes the return of every campaign with recorded spend and of
// every campaign label found on games without a spend match.
//
// A game belongs to a spend record when its campaign label contains the
// record's name, ignoring case.
func Campaigns(games []domain.Game, scope Scope, period Period, spend []domain.CampaignSpend) []CampaignROI {
	sel := Select(games, scope, period)

	out := make([]CampaignROI, 0, len(spend))
	matched := make([]bool, len(sel))

	for _, cs := range spend {
		name := strings.ToLower(strings.TrimSpace(cs.Name))
		r := CampaignROI{Campaign: cs.Name, Revenue: decimal.Zero, Spend: cs.Spend}
		for i, g := range sel {
			if name == "" || g.Campaign == "" {
				continue
			}
			if strings.Contains(strings.ToLower(g.Campaign), name) {
				r.Conversions++
				r.Revenue = r.Revenue.Add(g.Value)
				matched[i] = true
			}
		}
		r.ROAS = roas(r.Revenue, r.Spend)
		out = append(out, r)
	}

	unmatched := make(map[string]*CampaignROI)
	var labels []string
	for i, g := range sel {
		if matched[i] || g.Campaign == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(g.Campaign))
		r, ok := unmatched[key]
		if !ok {
			r = &CampaignROI{Campaign: g.Campaign, Revenue: decimal.Zero, Spend: decimal.Zero}
			unmatched[key] = r
			labels = append(labels, key)
		}
		r.Conversions++
		r.Revenue = r.Revenue.Add(g.Value)
	}

	sort.Strings(labels)
	for _, k := range labels {
		out = append(out, *unmatched[k])
	}

	return out
}

func roas(revenue, spend decimal.Decimal) *decimal.Decimal {
	if !spend.IsPositive() {
		return nil
	}
	v := revenue.DivRound(spend, 2)
	return &v
}

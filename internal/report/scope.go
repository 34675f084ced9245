// Package report computes rollups over a snapshot of games: client ranking,
// financial and profit summaries, campaign return and the live dashboard.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kirinyoku/cartodesk/internal/domain"
)

// Scope selects which games count towards money rollups.
type Scope string

const (
	// ScopeFinished counts only finished games.
	ScopeFinished Scope = "finished"
	// ScopeAll counts every recorded game regardless of status.
	ScopeAll Scope = "all"
)

func ParseScope(v string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(v))) {
	case "", ScopeFinished:
		return ScopeFinished, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", fmt.Errorf("report: unknown scope %q", v)
}

func (s Scope) Includes(g domain.Game) bool {
	if s == ScopeAll {
		return true
	}
	return g.Status == domain.StatusFinished
}

// Period is an inclusive date range. Empty bounds are open.
type Period struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

func (p Period) Contains(date string) bool {
	if p.From != "" && date < p.From {
		return false
	}
	if p.To != "" && date > p.To {
		return false
	}
	return true
}

// Select returns the games inside the scope and period, ordered by payment moment.
func Select(games []domain.Game, scope Scope, period Period) []domain.Game {
	out := make([]domain.Game, 0, len(games))
	for _, g := range games {
		if scope.Includes(g) && period.Contains(g.Date) {
			out = append(out, g)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].PaymentTime < out[j].PaymentTime
	})

	return out
}

// ExportFinished returns finished games within period, optionally limited to
// one practitioner, ordered by date and payment time.
func ExportFinished(games []domain.Game, period Period, practitionerID string) []domain.Game {
	finished := Select(games, ScopeFinished, period)
	if practitionerID == "" {
		return finished
	}

	out := finished[:0]
	for _, g := range finished {
		if g.PractitionerID == practitionerID {
			out = append(out, g)
		}
	}
	return out
}

package report

import (
	"sort"
	"strings"
	"time"

	"github.com/kirinyoku/cartodesk/internal/domain"
	"github.com/shopspring/decimal"
)

// ClientKey is the identity used to group games of the same client.
func ClientKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Clients ranks clients by total spent, highest first. Games outside scope
// are ignored. Ties are ordered by key.
func Clients(games []domain.Game, scope Scope) []domain.Client {
	byKey := make(map[string]*domain.Client)
	var keys []string

	for _, g := range Select(games, scope, Period{}) {
		key := ClientKey(g.ClientName)
		if key == "" {
			continue
		}

		c, ok := byKey[key]
		if !ok {
			c = &domain.Client{Key: key, Name: strings.TrimSpace(g.ClientName), TotalSpent: decimal.Zero}
			byKey[key] = c
			keys = append(keys, key)
		}

		c.TotalGames++
		c.TotalSpent = c.TotalSpent.Add(g.Value)
		c.GameDates = append(c.GameDates, g.Date)
		if g.Date > c.LastGame {
			c.LastGame = g.Date
		}
	}

	out := make([]domain.Client, 0, len(keys))
	for _, k := range keys {
		c := byKey[k]
		sort.Strings(c.GameDates)
		c.AverageFrequency = averageInterval(c.GameDates)
		out = append(out, *c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if cmp := out[i].TotalSpent.Cmp(out[j].TotalSpent); cmp != 0 {
			return cmp > 0
		}
		return out[i].Key < out[j].Key
	})

	return out
}

// averageInterval is the mean gap in days between consecutive sorted dates,
// nil with fewer than two dates.
func averageInterval(dates []string) *float64 {
	if len(dates) < 2 {
		return nil
	}

	var total float64
	var gaps int
	prev, err := time.Parse(domain.DateLayout, dates[0])
	if err != nil {
		return nil
	}
	for _, d := range dates[1:] {
		cur, err := time.Parse(domain.DateLayout, d)
		if err != nil {
			continue
		}
		total += cur.Sub(prev).Hours() / 24
		gaps++
		prev = cur
	}

	if gaps == 0 {
		return nil
	}

	avg := total / float64(gaps)
	return &avg
}

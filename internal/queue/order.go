// Package queue derives waiting lists, boards and wait estimates from a
// snapshot of games. Every function is pure and never mutates its input.
package queue

import (
	"sort"

	"github.com/kirinyoku/cartodesk/internal/domain"
)

// Durations resolves the expected minutes of a game type.
type Durations interface {
	Duration(gameTypeID string) int
}

// Waiting returns the waiting games of practitionerID in service order.
// An empty practitionerID selects every practitioner: each list is ordered
// on its own and the lists follow one another by practitioner id.
//
// Games are first ranked by payment moment (date, payment time, creation, id).
// A game's sort key is its QueuePosition when set, otherwise its rank plus one;
// equal keys fall back to the rank, which keeps the order total.
func Waiting(games []domain.Game, practitionerID string) []domain.Game {
	byPractitioner := make(map[string][]domain.Game)
	for _, g := range games {
		if g.Status != domain.StatusWaiting {
			continue
		}
		if practitionerID != "" && g.PractitionerID != practitionerID {
			continue
		}
		byPractitioner[g.PractitionerID] = append(byPractitioner[g.PractitionerID], g)
	}

	pids := make([]string, 0, len(byPractitioner))
	for pid := range byPractitioner {
		pids = append(pids, pid)
	}
	sort.Strings(pids)

	out := make([]domain.Game, 0, len(games))
	for _, pid := range pids {
		out = append(out, serviceOrder(byPractitioner[pid])...)
	}

	return out
}

// serviceOrder sorts one practitioner's waiting games in place.
func serviceOrder(list []domain.Game) []domain.Game {
	sort.SliceStable(list, func(i, j int) bool { return paidBefore(list[i], list[j]) })

	type keyed struct {
		g    domain.Game
		key  int
		rank int
	}
	ks := make([]keyed, len(list))
	for r, g := range list {
		k := r + 1
		if g.QueuePosition != nil {
			k = *g.QueuePosition
		}
		ks[r] = keyed{g: g, key: k, rank: r}
	}

	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].key != ks[j].key {
			return ks[i].key < ks[j].key
		}
		return ks[i].rank < ks[j].rank
	})

	for i := range ks {
		list[i] = ks[i].g
	}

	return list
}

func paidBefore(a, b domain.Game) bool {
	if pa, pb := a.PaidAt(), b.PaidAt(); !pa.Equal(pb) {
		return pa.Before(pb)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

// Board groups one practitioner's games by lifecycle stage.
type Board struct {
	Waiting    []domain.Game `json:"waiting"`
	InProgress []domain.Game `json:"in_progress"`
	Finished   []domain.Game `json:"finished"`
}

// BuildBoard splits games into the board columns. Waiting is in service
// order, finished games are most recent first.
func BuildBoard(games []domain.Game, practitionerID string) Board {
	b := Board{
		Waiting:    Waiting(games, practitionerID),
		InProgress: []domain.Game{},
		Finished:   []domain.Game{},
	}

	for _, g := range games {
		if practitionerID != "" && g.PractitionerID != practitionerID {
			continue
		}
		switch g.Status {
		case domain.StatusInProgress:
			b.InProgress = append(b.InProgress, g)
		case domain.StatusFinished:
			b.Finished = append(b.Finished, g)
		}
	}

	sort.SliceStable(b.InProgress, func(i, j int) bool {
		return startedBefore(b.InProgress[i], b.InProgress[j])
	})
	sort.SliceStable(b.Finished, func(i, j int) bool {
		return finishedAfter(b.Finished[i], b.Finished[j])
	})

	return b
}

func startedBefore(a, b domain.Game) bool {
	switch {
	case a.StartedAt == nil:
		return false
	case b.StartedAt == nil:
		return true
	}
	return a.StartedAt.Before(*b.StartedAt)
}

func finishedAfter(a, b domain.Game) bool {
	switch {
	case a.FinishedAt == nil:
		return false
	case b.FinishedAt == nil:
		return true
	}
	return a.FinishedAt.After(*b.FinishedAt)
}

// Active returns the game the practitioner is currently attending.
func Active(games []domain.Game, practitionerID string) (domain.Game, bool) {
	for _, g := range games {
		if g.Status == domain.StatusInProgress && g.PractitionerID == practitionerID {
			return g, true
		}
	}
	return domain.Game{}, false
}

// Next returns the first game in the practitioner's waiting list.
func Next(games []domain.Game, practitionerID string) (domain.Game, bool) {
	w := Waiting(games, practitionerID)
	if len(w) == 0 {
		return domain.Game{}, false
	}
	return w[0], true
}

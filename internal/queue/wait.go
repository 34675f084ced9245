package queue

import "github.com/kirinyoku/cartodesk/internal/domain"

// Entry is one row of a practitioner's waiting list.
type Entry struct {
	Game        domain.Game `json:"game"`
	Position    int         `json:"position"`
	WaitMinutes int         `json:"wait_minutes"`
}

// Entries returns the waiting list with 1-based positions and the minutes
// each game should wait. With an empty practitionerID every practitioner's
// list is returned, each estimated independently.
func Entries(games []domain.Game, practitionerID string, d Durations) []Entry {
	waiting := Waiting(games, practitionerID)
	out := make([]Entry, 0, len(waiting))

	ahead := make(map[string]int)
	positions := make(map[string]int)
	for _, g := range waiting {
		positions[g.PractitionerID]++
		out = append(out, Entry{
			Game:        g,
			Position:    positions[g.PractitionerID],
			WaitMinutes: ahead[g.PractitionerID],
		})
		ahead[g.PractitionerID] += d.Duration(g.GameTypeID)
	}

	return out
}

// EstimateWait returns the minutes before gameID is expected to start: the
// sum of durations of the games ahead of it in its practitioner's list.
// It returns 0 for games that are not waiting.
func EstimateWait(games []domain.Game, gameID string, d Durations) int {
	target, ok := find(games, gameID)
	if !ok || target.Status != domain.StatusWaiting {
		return 0
	}

	total := 0
	for _, g := range Waiting(games, target.PractitionerID) {
		if g.ID == gameID {
			return total
		}
		total += d.Duration(g.GameTypeID)
	}

	return 0
}

// Position returns the 1-based place of gameID in its practitioner's
// waiting list, or 0 when it is not waiting.
func Position(games []domain.Game, gameID string) int {
	target, ok := find(games, gameID)
	if !ok || target.Status != domain.StatusWaiting {
		return 0
	}

	for i, g := range Waiting(games, target.PractitionerID) {
		if g.ID == gameID {
			return i + 1
		}
	}

	return 0
}

func find(games []domain.Game, id string) (domain.Game, bool) {
	for _, g := range games {
		if g.ID == id {
			return g, true
		}
	}
	return domain.Game{}, false
}

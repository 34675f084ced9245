package queue

import (
	"math"

	"github.com/kirinyoku/cartodesk/internal/domain"
)

type Action string

const (
	ActionNormal       Action = "normal"
	ActionPriority     Action = "priority"
	ActionRedistribute Action = "redistribute"
)

// LongWaitMinutes is the wait above which a queue asks for priority.
const LongWaitMinutes = 60

// Optimization summarises the load of one practitioner's queue.
type Optimization struct {
	PractitionerID     string `json:"practitioner_id"`
	PractitionerName   string `json:"practitioner_name"`
	QueueLength        int    `json:"queue_length"`
	AverageWaitMinutes int    `json:"average_wait_minutes"`
	// Efficiency is 100 when the waiting games are spread evenly and drops as
	// this queue deviates from the even share.
	Efficiency      int    `json:"efficiency"`
	SuggestedAction Action `json:"suggested_action"`
}

// Optimize computes one Optimization per practitioner, in catalog order.
func Optimize(games []domain.Game, practitioners []domain.Practitioner, d Durations) []Optimization {
	entries := Entries(games, "", d)

	byPractitioner := make(map[string][]Entry, len(practitioners))
	for _, e := range entries {
		byPractitioner[e.Game.PractitionerID] = append(byPractitioner[e.Game.PractitionerID], e)
	}

	out := make([]Optimization, 0, len(practitioners))
	if len(practitioners) == 0 {
		return out
	}

	ideal := float64(len(entries)) / float64(len(practitioners))

	for _, p := range practitioners {
		list := byPractitioner[p.ID]

		o := Optimization{
			PractitionerID:   p.ID,
			PractitionerName: p.Name,
			QueueLength:      len(list),
			Efficiency:       100,
			SuggestedAction:  ActionNormal,
		}

		var sum int
		longWait := false
		for _, e := range list {
			sum += e.WaitMinutes
			if e.WaitMinutes > LongWaitMinutes {
				longWait = true
			}
		}
		if len(list) > 0 {
			o.AverageWaitMinutes = int(math.Round(float64(sum) / float64(len(list))))
		}

		if ideal > 0 {
			deviation := math.Abs(float64(len(list)) - ideal)
			o.Efficiency = int(math.Round(math.Max(0, 100-deviation/ideal*50)))
		}

		switch {
		case float64(len(list)) > ideal*1.5:
			o.SuggestedAction = ActionRedistribute
		case longWait:
			o.SuggestedAction = ActionPriority
		}

		out = append(out, o)
	}

	return out
}

package gamestore

import "time"

type EventKind string

const (
	EventAdded    EventKind = "added"
	EventUpdated  EventKind = "updated"
	EventReloaded EventKind = "reloaded"
)

// Event describes one successful mutation of the store.
// GameIDs is empty for EventReloaded.
type Event struct {
	Kind    EventKind `json:"kind"`
	GameIDs []string  `json:"game_ids,omitempty"`
	At      time.Time `json:"at"`
}

package lifecycle

import "github.com/kirinyoku/cartodesk/internal/domain"

type Action string

const (
	ActionStart  Action = "start"
	ActionFinish Action = "finish"
	ActionRevert Action = "revert"
)

type transition struct {
	from []domain.GameStatus
	to   domain.GameStatus
}

var transitions = map[Action]transition{
	ActionStart:  {from: []domain.GameStatus{domain.StatusWaiting}, to: domain.StatusInProgress},
	ActionFinish: {from: []domain.GameStatus{domain.StatusInProgress}, to: domain.StatusFinished},
	ActionRevert: {from: []domain.GameStatus{domain.StatusFinished}, to: domain.StatusInProgress},
}

func ValidTransition(action Action, from domain.GameStatus) bool {
	t, ok := transitions[action]
	if !ok {
		return false
	}
	for _, s := range t.from {
		if s == from {
			return true
		}
	}
	return false
}

// Target returns the status a game reaches through action.
func Target(action Action) (domain.GameStatus, bool) {
	t, ok := transitions[action]
	return t.to, ok
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

func (d Direction) Valid() bool {
	return d == DirectionUp || d == DirectionDown
}

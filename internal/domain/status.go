package domain

import "fmt"

type GameStatus string

const (
	StatusWaiting    GameStatus = "waiting"
	StatusPaidOnly   GameStatus = "paid_only"
	StatusInProgress GameStatus = "in_progress"
	StatusFinished   GameStatus = "finished"
)

var statusLabels = map[GameStatus]string{
	StatusWaiting:    "Na fila",
	StatusPaidOnly:   "Apenas pago",
	StatusInProgress: "Em Jogo",
	StatusFinished:   "Jogo finalizado",
}

var statusCodes = map[GameStatus]string{
	StatusWaiting:    "na_fila",
	StatusPaidOnly:   "apenas_pago",
	StatusInProgress: "em_jogo",
	StatusFinished:   "jogo_finalizado",
}

func (s GameStatus) Valid() bool {
	_, ok := statusCodes[s]
	return ok
}

// StorageCode is the value persisted in the games.status column.
func (s GameStatus) StorageCode() string {
	return statusCodes[s]
}

func StatusFromStorageCode(code string) (GameStatus, error) {
	for s, c := range statusCodes {
		if c == code {
			return s, nil
		}
	}
	return "", fmt.Errorf("domain: unknown status code %q", code)
}

// ParseStatus accepts a status name, its label or its storage code.
func ParseStatus(v string) (GameStatus, error) {
	s := GameStatus(v)
	if s.Valid() {
		return s, nil
	}
	for st, label := range statusLabels {
		if label == v {
			return st, nil
		}
	}
	return StatusFromStorageCode(v)
}

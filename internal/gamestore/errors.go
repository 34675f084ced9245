package gamestore

import "errors"

var (
	ErrNotFound   = errors.New("game not found")
	ErrConflict   = errors.New("game was changed concurrently")
	ErrValidation = errors.New("invalid game")
)

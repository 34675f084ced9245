package games

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound   = errors.New("game not found")
	ErrValidation = errors.New("invalid game")
	ErrForbidden  = errors.New("forbidden")
)

type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry in %s", e.RetryAfter)
}

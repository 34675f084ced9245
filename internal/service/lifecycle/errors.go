package lifecycle

import "errors"

var (
	ErrNotFound          = errors.New("game not found")
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrInvalidMove       = errors.New("game cannot move further in that direction")
	ErrPractitionerBusy  = errors.New("practitioner already has a game in progress")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("game was changed by someone else")
)

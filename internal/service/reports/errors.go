package reports

import "errors"

var (
	ErrValidation = errors.New("invalid report request")
	ErrForbidden  = errors.New("forbidden")
)

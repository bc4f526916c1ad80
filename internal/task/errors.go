package task

import "errors"

// Forbidden and NotFound carry distinct, non-leaking messages: a denial
// must not reveal whether the task exists in a foreign organization.
var (
	ErrForbidden    = errors.New("not permitted")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
)

// ErrInvalidToken indicates the bearer token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// Package common defines shared constants and sentinel errors used across
// fintrack components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorUnauthorized    = errors.New("unauthorized")
	ErrorForbidden       = errors.New("forbidden")
	ErrorBadRequest      = errors.New("bad request")
	ErrorTooManyRequests = errors.New("too many requests")

	// Input rejected before reaching the services.
	ErrorValidation = errors.New("validation error")

	// Auth errors (malformed, expired, badly signed or already consumed token).
	ErrInvalidToken = errors.New("invalid token")
)

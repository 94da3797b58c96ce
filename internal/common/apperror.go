package common

import "errors"

// AppError is a classified failure carrying a message that is safe to show
// to the end user. Kind is one of the sentinel errors of this package.
type AppError struct {
	Kind    error
	Message string
}

// NewAppError builds an AppError of the given kind.
func NewAppError(kind error, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Kind
}

// Message returns the user-facing message of err if it is an AppError,
// otherwise fallback.
func Message(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

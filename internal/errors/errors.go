package errors

import (
	"errors"
	"fmt"
)

// Common error types for the Ledgrio API client
var (
	// Session errors
	ErrNoSession      = errors.New("no active session")
	ErrNoRefreshToken = errors.New("no refresh token")
	ErrPartialSession = errors.New("partial session")
	ErrSessionExpired = errors.New("session expired")

	// Request classification errors
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrValidation   = errors.New("validation error")
	ErrServer       = errors.New("internal server error")
	ErrNetwork      = errors.New("network error")
	ErrUnexpected   = errors.New("unexpected error")

	// Lifecycle errors
	ErrClientClosed = errors.New("client closed")

	// General errors
	ErrInternal    = errors.New("internal error")
	ErrUnsupported = errors.New("unsupported operation")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

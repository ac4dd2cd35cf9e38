package transport

import "fmt"

// Error is a classified terminal request failure. Callers can match the
// sentinel with errors.Is and read the user-facing message that was (or,
// for silent classes, would have been) notified.
type Error struct {
	Status  int    // HTTP status, 0 when no response arrived
	Message string // user-facing message after classification
	err     error  // classification sentinel from internal/errors
	cause   error  // underlying transport error, if any
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.err != nil {
		errs = append(errs, e.err)
	}
	if e.cause != nil {
		errs = append(errs, e.cause)
	}
	return errs
}

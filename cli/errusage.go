package cli

import (
	"errors"
	"fmt"
)

// UsageError signals that the user should be shown usage information along with the error.
type UsageError struct {
	wrapped error
}

func (e *UsageError) Error() string {
	if e.wrapped == nil {
		return "usage error"
	}
	return "usage error: " + e.wrapped.Error()
}

func (e *UsageError) Is(err error) bool {
	_, ok := err.(*UsageError)
	return ok
}

func (e *UsageError) Unwrap() error {
	return e.wrapped
}

// NewUsageError creates a [UsageError], passing format and args to [fmt.Errorf].
func NewUsageError(format string, args ...any) error {
	return &UsageError{wrapped: fmt.Errorf(format, args...)}
}

// IsUsageError reports whether err is or wraps a [UsageError].
func IsUsageError(err error) bool {
	return errors.Is(err, new(UsageError))
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a create/update input breaks a domain rule.
	// Nothing is mutated when it is returned.
	ErrValidation = errors.New("validation failed")

	// ErrPersistence marks a failed snapshot write. The in-memory mutation that
	// triggered the write is kept, so callers should treat it as a warning.
	ErrPersistence = errors.New("persistence failed")

	// ErrUnreadable is returned by writes to a snapshot whose last read failed.
	// Nothing is written, so the stored state is never replaced by a default.
	ErrUnreadable = errors.New("stored state could not be read")

	// ErrFeatureLocked is returned when the current plan does not include a feature.
	ErrFeatureLocked = errors.New("feature not available on current plan")

	// ErrGoalLimit is returned when the plan's goal quota is exhausted.
	ErrGoalLimit = errors.New("goal limit reached for current plan")

	// ErrNotFound is only used by single-record reads; update and delete on a
	// missing record are no-ops.
	ErrNotFound = errors.New("record not found")
)

// invalid builds an ErrValidation carrying the offending rule.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// IsWarning reports whether err only signals a lost durable write.
func IsWarning(err error) bool {
	return err != nil && errors.Is(err, ErrPersistence)
}

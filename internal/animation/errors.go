package animation

import (
	"errors"
	"fmt"
)

var (
	ErrNotAnimation = errors.New("value is not a playable animation")
	ErrUnknownLayer = errors.New("no such layer")
)

// ValidationError describes why an animation could not be constructed. Stop is the
// index of the offending color stop, or -1 when the problem is not tied to a stop.
type ValidationError struct {
	Stop   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Stop >= 0 {
		return fmt.Sprintf("invalid animation: stop %d: %s %s", e.Stop, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid animation: %s %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Stop: -1, Field: field, Reason: reason}
}

func invalidStop(stop int, field, reason string) *ValidationError {
	return &ValidationError{Stop: stop, Field: field, Reason: reason}
}

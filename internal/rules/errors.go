package rules

import "fmt"

// ValidationError reports malformed or out-of-domain input. It is returned
// before any computation runs; callers never receive partial numbers
// alongside one.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InvariantViolation signals a defect in the engine itself: a negative
// subtotal or a buffer multiplier outside [1.0, 1.5] after clamping. It
// should be unreachable and is non-recoverable.
type InvariantViolation struct {
	Component string `json:"component"`
	Message   string `json:"message"`
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("arithmetic invariant violated in %s: %s", e.Component, e.Message)
}

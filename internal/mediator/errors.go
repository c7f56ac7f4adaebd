package mediator

import "errors"

// Sentinel errors for execution mediation.
var (
	// ErrEmptyCommand is returned when the command is empty after
	// trimming whitespace.
	ErrEmptyCommand = errors.New("command cannot be empty")
	// ErrPolicyViolation is the sentinel wrapped by every
	// *PolicyViolationError.
	ErrPolicyViolation = errors.New("command denied by policy")
)

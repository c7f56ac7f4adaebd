package inventory

import "errors"

// Sentinel errors for inventory loading and lookup.
var (
	// ErrMachineNotFound is returned by Find for an unknown machine id.
	ErrMachineNotFound = errors.New("machine not found")
	// ErrMissingID is returned when a descriptor has an empty machine_id.
	ErrMissingID = errors.New("machine_id is required")
	// ErrMissingHost is returned when a descriptor has an empty host.
	ErrMissingHost = errors.New("host is required")
	// ErrMissingUsername is returned when a descriptor has an empty username.
	ErrMissingUsername = errors.New("username is required")
	// ErrNoCredential is returned when no credential mechanism is set.
	ErrNoCredential = errors.New("exactly one of password, key_file or use_agent is required")
	// ErrMultipleCredentials is returned when more than one credential mechanism is set.
	ErrMultipleCredentials = errors.New("only one of password, key_file or use_agent may be set")
	// ErrDuplicateID is returned when two descriptors share a machine_id.
	ErrDuplicateID = errors.New("duplicate machine_id")
)

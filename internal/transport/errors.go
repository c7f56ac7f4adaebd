package transport

import "errors"

// Sentinel errors for connection and execution failures.
var (
	// ErrConnect is wrapped by any dial, authentication, or handshake
	// failure.
	ErrConnect = errors.New("connection failed")
	// ErrExec is wrapped by channel-level failures during command
	// execution. A plain non-zero exit status is not an ErrExec.
	ErrExec = errors.New("remote execution failed")
	// ErrNoAgent is returned when agent auth is requested but no agent
	// socket is available.
	ErrNoAgent = errors.New("ssh agent not available (SSH_AUTH_SOCK unset)")
)

// Package transport opens remote shells and runs commands over them.
//
// The Dialer/Conn interfaces are the seam between the session registry and
// the network: production code uses SSHDialer, tests substitute fakes. A
// Conn is exclusively owned by one session and runs one command at a time;
// serialization is the caller's responsibility.
package transport

import "context"

// Spec names a remote endpoint and how to authenticate against it.
type Spec struct {
	// Addr is the host:port dial address.
	Addr string

	// Username is the remote login user.
	Username string

	// Password authenticates with a plain password when non-empty.
	Password string

	// KeyFile is a path to a private key file when non-empty.
	KeyFile string

	// Passphrase unlocks an encrypted KeyFile.
	Passphrase string

	// UseAgent authenticates via the local SSH agent.
	UseAgent bool

	// KnownHostsFile verifies host keys against the given file. Empty
	// means accept any host key (the reference deployment default).
	KnownHostsFile string
}

// Result carries the fully collected output of one remote command.
type Result struct {
	// Stdout is the accumulated standard output.
	Stdout string

	// Stderr is the accumulated standard error.
	Stderr string

	// ExitCode is the remote command's numeric exit status.
	ExitCode int
}

// Conn is a live remote shell connection.
type Conn interface {
	// Run executes one command and blocks until it terminates, the
	// context is done, or the channel fails. A non-zero remote exit
	// status is reported via Result.ExitCode, not as an error; an error
	// return means the command's outcome is unknown.
	Run(ctx context.Context, command string) (Result, error)

	// Close tears down the connection. Safe to call while a Run is in
	// flight; the Run will surface a channel error.
	Close() error
}

// Dialer establishes connections to remote endpoints.
type Dialer interface {
	// Dial connects and authenticates against spec. Failures are
	// reported wrapped in ErrConnect.
	Dial(ctx context.Context, spec Spec) (Conn, error)
}

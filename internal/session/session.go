// Package session tracks live remote shell sessions.
//
// The Registry is the single source of truth for what sessions exist: no
// other component creates or removes entries. Each Session exclusively owns
// its transport connection and serializes command execution on it, since one
// remote shell channel processes one command at a time.
package session

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/vilasone455/ssh-mcp-server/internal/transport"
)

// Session is a live remote shell bound to one machine.
//
// ConnectionID, MachineID, and Title are immutable after creation. The
// cached working directory is guarded and read through CurrentPath.
type Session struct {
	// ConnectionID is the process-unique identifier, never reused.
	ConnectionID string

	// MachineID references the inventory machine this session targets.
	MachineID string

	// Title is the caller-supplied display title.
	Title string

	conn   transport.Conn
	logger *zap.Logger

	// mu serializes executions on the underlying channel and guards
	// currentPath. Held across the whole command-plus-probe sequence so
	// the directory probe cannot interleave with another command.
	mu          sync.Mutex
	currentPath string
}

// CurrentPath returns the best-effort cached remote working directory.
// It is seeded at creation and refreshed only after commands that begin
// with a textual "cd"; anything changing directory by other means leaves
// it stale.
func (s *Session) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPath
}

// Exec runs one command on this session's channel. Concurrent calls on the
// same session are serialized; a second caller blocks until the first
// command (and its directory probe, if any) completes.
//
// A failed command never mutates the cached working directory.
func (s *Session) Exec(ctx context.Context, command string) (transport.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.conn.Run(ctx, command)
	if err != nil {
		return result, err
	}

	if isChdir(command) {
		s.refreshPathLocked(ctx)
	}
	return result, nil
}

// refreshPathLocked issues one pwd round-trip and updates currentPath.
// Best effort: probe failures keep the previous value. Caller holds mu.
func (s *Session) refreshPathLocked(ctx context.Context) {
	probe, err := s.conn.Run(ctx, "pwd")
	if err != nil || probe.ExitCode != 0 {
		s.logger.Warn("working directory probe failed; keeping cached path",
			zap.String("connection_id", s.ConnectionID),
			zap.Error(err))
		return
	}
	if path := strings.TrimSpace(probe.Stdout); path != "" {
		s.currentPath = path
	}
}

// isChdir reports whether the command textually begins with a directory
// change. Subshells, aliases, and chained forms are not detected; the
// cached path is allowed to go stale in those cases.
func isChdir(command string) bool {
	fields := strings.Fields(command)
	return len(fields) > 0 && fields[0] == "cd"
}

func (s *Session) close() error {
	return s.conn.Close()
}

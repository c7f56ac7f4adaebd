package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vilasone455/ssh-mcp-server/internal/inventory"
	"github.com/vilasone455/ssh-mcp-server/internal/metrics"
	"github.com/vilasone455/ssh-mcp-server/internal/transport"
)

// Options configures a Registry.
type Options struct {
	// ConnectTimeout bounds each dial-and-handshake sequence.
	ConnectTimeout time.Duration

	// KnownHostsFile enables host key verification when non-empty.
	KnownHostsFile string

	// Logger may be nil.
	Logger *zap.Logger

	// Metrics may be nil.
	Metrics *metrics.Metrics
}

// Registry is the concurrency-safe set of live sessions, keyed by
// connection id. Construct one with NewRegistry and pass it by reference;
// there is no package-level instance.
type Registry struct {
	dialer  transport.Dialer
	opts    Options
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry that dials through dialer.
func NewRegistry(dialer transport.Dialer, opts Options) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		dialer:   dialer,
		opts:     opts,
		logger:   logger,
		metrics:  opts.Metrics,
		sessions: make(map[string]*Session),
	}
}

// Create connects to machine, probes the initial working directory, and
// registers the new session under a fresh connection id.
//
// On any failure the half-open connection is torn down and nothing is
// registered: a session that fails to establish never enters the registry.
func (r *Registry) Create(ctx context.Context, machine inventory.Machine, title string) (*Session, error) {
	if r.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ConnectTimeout)
		defer cancel()
	}

	conn, err := r.dialer.Dial(ctx, transport.Spec{
		Addr:           machine.Addr(),
		Username:       machine.Username,
		Password:       machine.Password,
		KeyFile:        machine.KeyFile,
		Passphrase:     machine.Passphrase,
		UseAgent:       machine.UseAgent,
		KnownHostsFile: r.opts.KnownHostsFile,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", machine.ID, err)
	}

	probe, err := conn.Run(ctx, "pwd")
	if err != nil || probe.ExitCode != 0 {
		conn.Close()
		if err == nil {
			err = fmt.Errorf("%w: initial directory probe exited %d", transport.ErrConnect, probe.ExitCode)
		}
		return nil, fmt.Errorf("connect to %s: %w", machine.ID, err)
	}

	sess := &Session{
		ConnectionID: uuid.NewString(),
		MachineID:    machine.ID,
		Title:        title,
		conn:         conn,
		logger:       r.logger,
		currentPath:  strings.TrimSpace(probe.Stdout),
	}

	r.mu.Lock()
	r.sessions[sess.ConnectionID] = sess
	r.mu.Unlock()

	r.metrics.SessionOpened()
	r.logger.Info("session opened",
		zap.String("connection_id", sess.ConnectionID),
		zap.String("machine_id", machine.ID),
		zap.String("title", title))
	return sess, nil
}

// List returns a snapshot of all live sessions at the instant of the call.
func (r *Registry) List() []*Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	return out
}

// Get returns the session with the given connection id, or
// ErrSessionNotFound.
func (r *Registry) Get(connectionID string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[connectionID]
	if !ok {
		return nil, fmt.Errorf("connection %q: %w", connectionID, ErrSessionNotFound)
	}
	return s, nil
}

// Remove closes the session's transport and deletes the entry. Returns
// ErrSessionNotFound for an unknown id. After Remove the id never resolves
// again; connection ids are not reused.
//
// The transport is closed even if an execution is in flight on the session;
// that execution surfaces a channel error.
func (r *Registry) Remove(connectionID string) error {
	r.mu.Lock()
	s, ok := r.sessions[connectionID]
	if ok {
		delete(r.sessions, connectionID)
	}
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("connection %q: %w", connectionID, ErrSessionNotFound)
	}

	if err := s.close(); err != nil {
		// The entry is already gone; the stale handle just gets logged.
		r.logger.Warn("closing session transport",
			zap.String("connection_id", connectionID),
			zap.Error(err))
	}
	r.metrics.SessionClosed()
	r.logger.Info("session closed", zap.String("connection_id", connectionID))
	return nil
}

// CloseAll removes every session, for shutdown.
func (r *Registry) CloseAll() {
	for _, s := range r.List() {
		_ = r.Remove(s.ConnectionID)
	}
}

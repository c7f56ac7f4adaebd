// Package mediator orchestrates command execution against live sessions.
//
// It is the only path from a caller's command string to a remote shell:
// input validation, the restricted-mode policy gate, audit recording, and
// the execution timeout all live here. The mediator never interprets exit
// codes; a remote command that exits non-zero is still a successful
// mediation.
package mediator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vilasone455/ssh-mcp-server/internal/audit"
	"github.com/vilasone455/ssh-mcp-server/internal/metrics"
	"github.com/vilasone455/ssh-mcp-server/internal/policy"
	"github.com/vilasone455/ssh-mcp-server/internal/session"
	"github.com/vilasone455/ssh-mcp-server/internal/transport"
)

// Mode selects the policy tier for one execution.
type Mode int

const (
	// Unrestricted bypasses the classifier entirely.
	Unrestricted Mode = iota

	// Restricted gates the command through the classifier and records
	// the decision in the audit trail.
	Restricted
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	switch m {
	case Unrestricted:
		return "unrestricted"
	case Restricted:
		return "restricted"
	default:
		return "unknown"
	}
}

// Options configures a Mediator.
type Options struct {
	// Timeout bounds each remote execution, including the directory
	// probe. Zero disables the bound.
	Timeout time.Duration

	// Audit may be nil (auditing disabled).
	Audit *audit.Store

	// Metrics may be nil.
	Metrics *metrics.Metrics

	// Logger may be nil.
	Logger *zap.Logger
}

// Mediator routes commands to sessions under the configured policy tier.
type Mediator struct {
	registry   *session.Registry
	classifier *policy.Classifier
	opts       Options
	logger     *zap.Logger
}

// New creates a mediator over registry and classifier.
func New(registry *session.Registry, classifier *policy.Classifier, opts Options) *Mediator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mediator{
		registry:   registry,
		classifier: classifier,
		opts:       opts,
		logger:     logger,
	}
}

// Execute runs command on the session named by connectionID.
//
// Restricted mode classifies the command first; a denied command never
// reaches the transport and surfaces as a *PolicyViolationError. The
// returned Result is verbatim transport output.
func (m *Mediator) Execute(ctx context.Context, connectionID, command string, mode Mode) (transport.Result, error) {
	if strings.TrimSpace(command) == "" {
		return transport.Result{}, ErrEmptyCommand
	}

	sess, err := m.registry.Get(connectionID)
	if err != nil {
		return transport.Result{}, err
	}

	if mode == Restricted {
		verdict := m.classifier.Classify(command)
		m.record(sess, command, verdict)

		if verdict.Decision == policy.Denied {
			m.opts.Metrics.PolicyDenial(string(verdict.Category))
			m.logger.Info("command denied by policy",
				zap.String("connection_id", connectionID),
				zap.String("rule", verdict.Rule),
				zap.String("category", string(verdict.Category)))
			return transport.Result{}, &PolicyViolationError{
				Command:  command,
				Rule:     verdict.Rule,
				Category: verdict.Category,
			}
		}
	}

	if m.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.Timeout)
		defer cancel()
	}

	m.opts.Metrics.Execution(mode.String())
	result, err := sess.Exec(ctx, command)
	if err != nil {
		m.opts.Metrics.ExecutionError()
		return result, err
	}
	return result, nil
}

// record appends the classification decision to the audit trail.
// Audit failures are logged and dropped; they never fail the execution.
func (m *Mediator) record(sess *session.Session, command string, verdict policy.Verdict) {
	rec := audit.Record{
		Time:         time.Now().UTC(),
		ConnectionID: sess.ConnectionID,
		MachineID:    sess.MachineID,
		Command:      command,
		Decision:     verdict.Decision.String(),
		Category:     string(verdict.Category),
		Rule:         verdict.Rule,
	}
	if err := m.opts.Audit.Append(rec); err != nil {
		m.logger.Warn("audit append failed", zap.Error(err))
	}
}

// PolicyViolationError reports a restricted-mode denial. It wraps
// ErrPolicyViolation for errors.Is checks.
type PolicyViolationError struct {
	// Command is the denied command, original casing.
	Command string

	// Rule is the deny rule that matched, empty when denied by a
	// fail-closed default.
	Rule string

	// Category is the deny rule's category.
	Category policy.Category
}

// Error describes the denial without echoing the full command; callers see
// which rule fired, logs carry the rest.
func (e *PolicyViolationError) Error() string {
	if e.Rule == "" {
		return "command denied by policy: no allow rule matched"
	}
	return fmt.Sprintf("command denied by policy: rule %s (%s)", e.Rule, e.Category)
}

// Unwrap lets errors.Is(err, ErrPolicyViolation) succeed.
func (e *PolicyViolationError) Unwrap() error {
	return ErrPolicyViolation
}

// AsPolicyViolation extracts a *PolicyViolationError from an error chain.
func AsPolicyViolation(err error) (*PolicyViolationError, bool) {
	var pv *PolicyViolationError
	if errors.As(err, &pv) {
		return pv, true
	}
	return nil, false
}

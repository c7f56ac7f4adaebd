// Package transporttest provides in-memory Dialer and Conn fakes for
// registry and mediator tests.
package transporttest

import (
	"context"
	"fmt"
	"sync"

	"github.com/vilasone455/ssh-mcp-server/internal/transport"
)

// Script decides the outcome of one Run call.
type Script func(command string) (transport.Result, error)

// FakeConn is an in-memory transport.Conn that answers Run calls from a
// script and counts everything for assertions.
type FakeConn struct {
	mu       sync.Mutex
	script   Script
	commands []string
	closed   bool
	closeCh  chan struct{}
	running  int
	maxRun   int
}

// NewFakeConn creates a connection answering from script. A nil script
// echoes the command on stdout with exit code 0.
func NewFakeConn(script Script) *FakeConn {
	if script == nil {
		script = func(command string) (transport.Result, error) {
			return transport.Result{Stdout: command + "\n"}, nil
		}
	}
	return &FakeConn{script: script, closeCh: make(chan struct{})}
}

// Run answers from the script unless the connection is closed.
func (c *FakeConn) Run(ctx context.Context, command string) (transport.Result, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return transport.Result{}, fmt.Errorf("%w: connection closed", transport.ErrExec)
	}
	c.commands = append(c.commands, command)
	c.running++
	if c.running > c.maxRun {
		c.maxRun = c.running
	}
	script := c.script
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.running--
		c.mu.Unlock()
	}()

	// Honor cancellation and teardown the way the SSH transport does:
	// the script keeps running, but the caller gets an ErrExec-wrapped
	// error as soon as the context ends or the connection is closed.
	type outcome struct {
		result transport.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := script(command)
		done <- outcome{result, err}
	}()

	select {
	case <-ctx.Done():
		return transport.Result{}, fmt.Errorf("%w: %w", transport.ErrExec, ctx.Err())
	case <-c.closeCh:
		return transport.Result{}, fmt.Errorf("%w: connection closed", transport.ErrExec)
	case out := <-done:
		return out.result, out.err
	}
}

// Close marks the connection closed and aborts in-flight Run calls.
// Idempotent.
func (c *FakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.closeCh)
	}
	return nil
}

// Closed reports whether Close was called.
func (c *FakeConn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Commands returns every command passed to Run, in order.
func (c *FakeConn) Commands() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.commands))
	copy(out, c.commands)
	return out
}

// RunCount returns the number of Run calls.
func (c *FakeConn) RunCount() int {
	return len(c.Commands())
}

// MaxConcurrent returns the peak number of simultaneous Run calls, for
// asserting per-session serialization.
func (c *FakeConn) MaxConcurrent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.maxRun
}

// FakeDialer hands out FakeConns and records dial attempts.
type FakeDialer struct {
	mu      sync.Mutex
	script  Script
	dialErr error
	conns   []*FakeConn
}

// NewFakeDialer creates a dialer whose connections answer from script.
func NewFakeDialer(script Script) *FakeDialer {
	return &FakeDialer{script: script}
}

// FailWith makes every subsequent Dial return err.
func (d *FakeDialer) FailWith(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dialErr = err
}

// Dial returns a fresh FakeConn, or the configured dial error.
func (d *FakeDialer) Dial(ctx context.Context, spec transport.Spec) (transport.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, fmt.Errorf("%w: %w", transport.ErrConnect, d.dialErr)
	}
	conn := NewFakeConn(d.script)
	d.conns = append(d.conns, conn)
	return conn, nil
}

// Conns returns every connection handed out so far.
func (d *FakeDialer) Conns() []*FakeConn {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*FakeConn, len(d.conns))
	copy(out, d.conns)
	return out
}

// LastConn returns the most recently dialed connection, or nil.
func (d *FakeDialer) LastConn() *FakeConn {
	conns := d.Conns()
	if len(conns) == 0 {
		return nil
	}
	return conns[len(conns)-1]
}

// TotalRuns sums Run calls across all connections: the observable
// "did anything reach the transport" count.
func (d *FakeDialer) TotalRuns() int {
	total := 0
	for _, c := range d.Conns() {
		total += c.RunCount()
	}
	return total
}

// PwdScript answers "pwd" with path and everything else with fallback.
func PwdScript(path string, fallback Script) Script {
	if fallback == nil {
		fallback = func(command string) (transport.Result, error) {
			return transport.Result{}, nil
		}
	}
	return func(command string) (transport.Result, error) {
		if command == "pwd" {
			return transport.Result{Stdout: path + "\n"}, nil
		}
		return fallback(command)
	}
}

package transport

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHDialer is the production Dialer backed by golang.org/x/crypto/ssh.
type SSHDialer struct {
	logger *zap.Logger

	// DialTimeout bounds the TCP connect and SSH handshake. Zero means
	// no bound beyond the context.
	DialTimeout time.Duration
}

// NewSSHDialer creates a dialer. logger may be nil.
func NewSSHDialer(logger *zap.Logger, dialTimeout time.Duration) *SSHDialer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SSHDialer{logger: logger, DialTimeout: dialTimeout}
}

// Dial connects to spec.Addr, authenticates, and returns a live Conn.
func (d *SSHDialer) Dial(ctx context.Context, spec Spec) (Conn, error) {
	auth, err := authMethods(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	hostKeys, err := hostKeyCallback(spec, d.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnect, err)
	}

	cfg := &ssh.ClientConfig{
		User:            spec.Username,
		Auth:            auth,
		HostKeyCallback: hostKeys,
		Timeout:         d.DialTimeout,
	}

	netDialer := net.Dialer{Timeout: d.DialTimeout}
	netConn, err := netDialer.DialContext(ctx, "tcp", spec.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnect, spec.Addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(netConn, spec.Addr, cfg)
	if err != nil {
		netConn.Close()
		return nil, fmt.Errorf("%w: handshake with %s: %v", ErrConnect, spec.Addr, err)
	}

	d.logger.Debug("ssh connection established",
		zap.String("addr", spec.Addr),
		zap.String("user", spec.Username))

	return &sshConn{client: ssh.NewClient(clientConn, chans, reqs)}, nil
}

// authMethods builds the auth chain from the single configured credential.
func authMethods(spec Spec) ([]ssh.AuthMethod, error) {
	switch {
	case spec.Password != "":
		return []ssh.AuthMethod{ssh.Password(spec.Password)}, nil

	case spec.KeyFile != "":
		key, err := os.ReadFile(spec.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %v", err)
		}
		var signer ssh.Signer
		if spec.Passphrase != "" {
			signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(spec.Passphrase))
		} else {
			signer, err = ssh.ParsePrivateKey(key)
		}
		if err != nil {
			return nil, fmt.Errorf("parse key file %s: %v", spec.KeyFile, err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil

	case spec.UseAgent:
		sock := os.Getenv("SSH_AUTH_SOCK")
		if sock == "" {
			return nil, ErrNoAgent
		}
		conn, err := net.Dial("unix", sock)
		if err != nil {
			return nil, fmt.Errorf("connect ssh agent: %v", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeysCallback(agent.NewClient(conn).Signers)}, nil

	default:
		return nil, fmt.Errorf("no credential configured")
	}
}

// hostKeyCallback returns the host key policy: known_hosts verification
// when a file is configured, otherwise accept-any with a warning.
func hostKeyCallback(spec Spec, logger *zap.Logger) (ssh.HostKeyCallback, error) {
	if spec.KnownHostsFile != "" {
		cb, err := knownhosts.New(spec.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("load known_hosts %s: %v", spec.KnownHostsFile, err)
		}
		return cb, nil
	}
	logger.Warn("host key verification disabled; set known_hosts to enable",
		zap.String("addr", spec.Addr))
	return ssh.InsecureIgnoreHostKey(), nil
}

// sshConn runs commands over one *ssh.Client. One ssh.Session is opened
// per command; the registry serializes callers so sessions never overlap.
type sshConn struct {
	client *ssh.Client
}

func (c *sshConn) Run(ctx context.Context, command string) (Result, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return Result{}, fmt.Errorf("%w: open session: %v", ErrExec, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- sess.Run(command)
	}()

	select {
	case <-ctx.Done():
		// Best effort: kill the remote process and abandon the channel.
		_ = sess.Signal(ssh.SIGKILL)
		sess.Close()
		return Result{}, fmt.Errorf("%w: %w", ErrExec, ctx.Err())

	case err := <-done:
		result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
		if err == nil {
			return result, nil
		}
		if exitErr, ok := err.(*ssh.ExitError); ok {
			result.ExitCode = exitErr.ExitStatus()
			return result, nil
		}
		return Result{}, fmt.Errorf("%w: %v", ErrExec, err)
	}
}

func (c *sshConn) Close() error {
	return c.client.Close()
}

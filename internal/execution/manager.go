package execution

import (
	"context"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"

	"sshgate/internal/config"
)

// Manager owns at most one live SSH connection and mediates all access to
// it. Callers may be concurrent; command execution is serialized because a
// single transport cannot be multiplexed safely without per-channel
// isolation guarantees.
type Manager struct {
	cfg *config.Config

	mu     sync.Mutex
	client *ssh.Client
	state  State
}

var _ Client = (*Manager)(nil)

// NewManager validates the configuration and returns a disconnected manager.
// No network activity happens until the first command or status check.
func NewManager(cfg *config.Config) (*Manager, error) {
	if _, err := ResolveAuthKind(cfg); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg, state: StateDisconnected}, nil
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run executes one command over the managed connection. A channel fault
// invalidates the held connection so the next call dials again.
func (m *Manager) Run(ctx context.Context, req CommandRequest) CommandResult {
	if strings.TrimSpace(req.Command) == "" {
		return failureResult("empty command")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	client, err := m.ensureConnectedLocked()
	if err != nil {
		return failureResult(readableError(err))
	}
	result, execErr := execute(client, req)
	if errors.Is(execErr, ErrChannelFailure) {
		m.invalidateLocked()
	}
	return result
}

// CheckStatus runs a short diagnostic command to confirm end-to-end
// usability. It never fails; problems land in the Error field.
func (m *Manager) CheckStatus(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{
		Host:     m.cfg.Host,
		Port:     m.cfg.Port,
		Username: m.cfg.Username,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	client, err := m.ensureConnectedLocked()
	if err != nil {
		status.Error = readableError(err)
		return status
	}
	result, execErr := execute(client, CommandRequest{Command: statusProbeCommand, Timeout: statusProbeTimeout})
	if errors.Is(execErr, ErrChannelFailure) {
		m.invalidateLocked()
	}
	if !result.Success {
		status.Error = statusFailureMessage(result)
		return status
	}
	status.Connected = true
	status.TestOutput = strings.TrimSpace(result.Stdout)
	return status
}

// Close is idempotent and safe on a never-connected manager.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}

// ensureConnectedLocked returns a live client, dialing if necessary. A held
// connection is probed before reuse; on probe failure it is discarded and
// exactly one reconnect is attempted.
func (m *Manager) ensureConnectedLocked() (*ssh.Client, error) {
	if m.client != nil {
		if m.probeLocked() {
			return m.client, nil
		}
		m.state = StateFailed
		_ = m.closeLocked()
	}

	m.state = StateConnecting
	client, err := m.dial()
	if err != nil {
		m.state = StateDisconnected
		return nil, err
	}
	m.client = client
	m.state = StateConnected
	return client, nil
}

// probeLocked checks transport liveness with a keepalive request. Any
// response, including a refusal, proves the transport is alive.
func (m *Manager) probeLocked() bool {
	_, _, err := m.client.SendRequest("keepalive@openssh.com", true, nil)
	return err == nil
}

func (m *Manager) dial() (*ssh.Client, error) {
	auth, err := authMethods(m.cfg)
	if err != nil {
		return nil, err
	}
	sshCfg := &ssh.ClientConfig{
		User:            m.cfg.Username,
		Auth:            auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         connectTimeout,
	}
	client, err := ssh.Dial("tcp", m.cfg.Addr(), sshCfg)
	if err != nil {
		return nil, classifyDialError(err)
	}
	return client, nil
}

func (m *Manager) invalidateLocked() {
	m.state = StateFailed
	if m.client != nil {
		_ = m.client.Close()
		m.client = nil
	}
}

func (m *Manager) closeLocked() error {
	if m.client == nil {
		m.state = StateDisconnected
		return nil
	}
	err := m.client.Close()
	m.client = nil
	m.state = StateDisconnected
	return err
}

package execution

import (
	"context"
	"time"
)

const (
	// DefaultTimeout bounds a command when the caller does not supply one.
	DefaultTimeout = 30 * time.Second

	// connectTimeout bounds the TCP dial and SSH handshake.
	connectTimeout = 10 * time.Second

	// transferTimeout bounds the auxiliary commands run during file transfers.
	transferTimeout = 60 * time.Second

	statusProbeTimeout = 5 * time.Second
)

// statusProbeCommand is run end-to-end to confirm the connection is usable,
// not just that the transport is alive.
const statusProbeCommand = "echo 'connection test successful'"

// State describes the connection lifecycle of a Manager.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CommandRequest describes one command invocation on the target host.
type CommandRequest struct {
	Command string        // shell invocation to run
	Input   string        // optional payload written to stdin, after which stdin is closed
	Timeout time.Duration // defaults to DefaultTimeout
	UsePTY  bool          // request a PTY for commands that refuse to run without one
}

// CommandResult describes the outcome of a command invocation.
// Success is true exactly when the command ran to completion with exit code 0
// and no transport-level error occurred. ExitCode is nil when the process
// never produced an exit status (start failure, timeout, broken channel).
type CommandResult struct {
	Success  bool   `json:"success"`
	ExitCode *int   `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	Error    string `json:"error,omitempty"`
}

// ConnectionStatus reports end-to-end usability of the managed connection.
type ConnectionStatus struct {
	Connected  bool   `json:"connected"`
	Host       string `json:"host"`
	Port       int    `json:"port,omitempty"`
	Username   string `json:"username,omitempty"`
	TestOutput string `json:"test_output,omitempty"`
	Error      string `json:"error,omitempty"`
}

// TransferResult describes the outcome of a file transfer.
type TransferResult struct {
	Success    bool   `json:"success"`
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	FileSize   int64  `json:"file_size"`
	Error      string `json:"error,omitempty"`
}

// Client executes commands and transfers files on a single target host.
type Client interface {
	// Run executes one command. Failures are reported in the result, never
	// as an error value, so callers can always inspect exit code and output.
	Run(ctx context.Context, req CommandRequest) CommandResult
	// CheckStatus verifies the connection by running a diagnostic command.
	// It never fails; problems are reported in the Error field.
	CheckStatus(ctx context.Context) ConnectionStatus
	// Upload copies a local file to the target host.
	Upload(ctx context.Context, localPath, remotePath string) TransferResult
	// Download copies a file from the target host to the local machine.
	Download(ctx context.Context, remotePath, localPath string) TransferResult
	// Close releases the connection. Safe to call more than once.
	Close() error
}

package execution

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"sshgate/internal/config"
)

func testConfig(srv *testSSHServer) *config.Config {
	return &config.Config{
		Host:     "127.0.0.1",
		Port:     srv.Port(),
		Username: testUser,
		Password: testPassword,
	}
}

func newTestManager(t *testing.T, cfg *config.Config) *Manager {
	t.Helper()
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("failed to create manager: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr
}

func TestNewManagerInvalidConfig(t *testing.T) {
	_, err := NewManager(&config.Config{Host: "example.com", Port: 22, Username: "root"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRunEcho(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	result := mgr.Run(context.Background(), CommandRequest{Command: "echo hello"})

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.ExitCode == nil || *result.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %v", result.ExitCode)
	}
	if result.Stdout != "hello\n" {
		t.Errorf("expected stdout %q, got %q", "hello\n", result.Stdout)
	}
	if result.Stderr != "" {
		t.Errorf("expected empty stderr, got %q", result.Stderr)
	}
	if result.Error != "" {
		t.Errorf("expected no error, got %q", result.Error)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	result := mgr.Run(context.Background(), CommandRequest{Command: "exit 7"})

	if result.Success {
		t.Fatal("expected failure for non-zero exit")
	}
	if result.ExitCode == nil || *result.ExitCode != 7 {
		t.Errorf("expected exit code 7, got %v", result.ExitCode)
	}
	if result.Error != "" {
		t.Errorf("expected no error for a plain exit, got %q", result.Error)
	}
}

func TestRunCapturesStderr(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	result := mgr.Run(context.Background(), CommandRequest{Command: "echo oops >&2; exit 3"})

	if result.ExitCode == nil || *result.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %v", result.ExitCode)
	}
	if result.Stderr != "oops\n" {
		t.Errorf("expected stderr %q, got %q", "oops\n", result.Stderr)
	}
	if result.Stdout != "" {
		t.Errorf("expected empty stdout, got %q", result.Stdout)
	}
}

func TestRunTimeout(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	start := time.Now()
	result := mgr.Run(context.Background(), CommandRequest{Command: "sleep 3", Timeout: time.Second})
	elapsed := time.Since(start)

	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if result.ExitCode != nil {
		t.Errorf("expected absent exit code on timeout, got %d", *result.ExitCode)
	}
	if result.Error != "execution timed out after 1s" {
		t.Errorf("unexpected timeout error message: %q", result.Error)
	}
	if elapsed >= 2500*time.Millisecond {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestRunInteractiveInput(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	result := mgr.Run(context.Background(), CommandRequest{Command: "cat", Input: "hello interactive\n"})

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.Stdout != "hello interactive\n" {
		t.Errorf("expected input echoed back, got %q", result.Stdout)
	}
}

func TestRunInteractiveMissingInputTimesOut(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	result := mgr.Run(context.Background(), CommandRequest{Command: "head -n 1", Timeout: time.Second})

	if result.Success {
		t.Fatal("expected timeout failure when input is required but omitted")
	}
	if !strings.Contains(result.Error, "timed out") {
		t.Errorf("expected timeout error, got %q", result.Error)
	}
	if result.ExitCode != nil {
		t.Errorf("expected absent exit code, got %d", *result.ExitCode)
	}
}

func TestRunEmptyCommand(t *testing.T) {
	// No server needed: validation happens before any network activity.
	mgr := newTestManager(t, &config.Config{Host: "127.0.0.1", Port: 22, Username: testUser, Password: testPassword})

	result := mgr.Run(context.Background(), CommandRequest{Command: "   "})

	if result.Success {
		t.Fatal("expected failure for empty command")
	}
	if result.Error != "empty command" {
		t.Errorf("unexpected error message: %q", result.Error)
	}
}

func TestRunAuthFailure(t *testing.T) {
	srv := startTestSSHServer(t)
	cfg := testConfig(srv)
	cfg.Password = "wrong-password"
	mgr := newTestManager(t, cfg)

	result := mgr.Run(context.Background(), CommandRequest{Command: "echo hello"})

	if result.Success {
		t.Fatal("expected auth failure")
	}
	if !strings.Contains(result.Error, "authentication failed") {
		t.Errorf("expected authentication failure message, got %q", result.Error)
	}
}

func TestCheckStatus(t *testing.T) {
	srv := startTestSSHServer(t)
	cfg := testConfig(srv)
	mgr := newTestManager(t, cfg)

	status := mgr.CheckStatus(context.Background())

	if !status.Connected {
		t.Fatalf("expected connected status, got error %q", status.Error)
	}
	if status.Host != cfg.Host || status.Port != cfg.Port || status.Username != cfg.Username {
		t.Errorf("status does not echo config: %+v", status)
	}
	if status.TestOutput != "connection test successful" {
		t.Errorf("unexpected test output %q", status.TestOutput)
	}
	if status.Error != "" {
		t.Errorf("expected no error, got %q", status.Error)
	}
}

func TestCheckStatusInvalidCredentials(t *testing.T) {
	srv := startTestSSHServer(t)
	cfg := testConfig(srv)
	cfg.Password = "wrong-password"
	mgr := newTestManager(t, cfg)

	status := mgr.CheckStatus(context.Background())

	if status.Connected {
		t.Fatal("expected disconnected status for bad credentials")
	}
	if !strings.Contains(status.Error, "authentication failed") {
		t.Errorf("expected authentication failure message, got %q", status.Error)
	}
}

func TestCheckStatusNoServer(t *testing.T) {
	// Grab a port that nothing listens on.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	mgr := newTestManager(t, &config.Config{Host: "127.0.0.1", Port: port, Username: testUser, Password: testPassword})

	status := mgr.CheckStatus(context.Background())

	if status.Connected {
		t.Fatal("expected disconnected status")
	}
	if status.Error == "" {
		t.Error("expected populated error")
	}
}

func TestCloseIdempotent(t *testing.T) {
	mgr := newTestManager(t, &config.Config{Host: "127.0.0.1", Port: 22, Username: testUser, Password: testPassword})

	if err := mgr.Close(); err != nil {
		t.Fatalf("close on never-connected manager failed: %v", err)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestCloseAfterUse(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	if result := mgr.Run(context.Background(), CommandRequest{Command: "true"}); !result.Success {
		t.Fatalf("setup command failed: %q", result.Error)
	}
	if got := mgr.State(); got != StateConnected {
		t.Errorf("expected connected state, got %s", got)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := mgr.State(); got != StateDisconnected {
		t.Errorf("expected disconnected state after close, got %s", got)
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
}

func TestReconnectAfterConnectionDrop(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	if result := mgr.Run(context.Background(), CommandRequest{Command: "echo one"}); !result.Success {
		t.Fatalf("first command failed: %q", result.Error)
	}

	// Kill the server side of the connection. The next call must detect
	// the stale session via the liveness probe and reconnect.
	srv.CloseConns()

	result := mgr.Run(context.Background(), CommandRequest{Command: "echo two"})
	if !result.Success {
		t.Fatalf("expected reconnect and success, got error %q", result.Error)
	}
	if result.Stdout != "two\n" {
		t.Errorf("expected stdout %q, got %q", "two\n", result.Stdout)
	}
}

func TestSequentialCommandsDoNotShareOutput(t *testing.T) {
	srv := startTestSSHServer(t)
	mgr := newTestManager(t, testConfig(srv))

	first := mgr.Run(context.Background(), CommandRequest{Command: "echo first"})
	second := mgr.Run(context.Background(), CommandRequest{Command: "echo second"})

	if first.Stdout != "first\n" {
		t.Errorf("first command output contaminated: %q", first.Stdout)
	}
	if second.Stdout != "second\n" {
		t.Errorf("second command output contaminated: %q", second.Stdout)
	}
}

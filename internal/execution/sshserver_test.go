package execution

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"net"
	"os/exec"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"
)

const (
	testUser     = "testuser"
	testPassword = "sekret"
)

// testSSHServer speaks just enough of the protocol to exercise the manager
// and executor: password auth, session channels, exec requests, exit-status.
type testSSHServer struct {
	listener net.Listener

	mu    sync.Mutex
	conns []net.Conn
}

func startTestSSHServer(t *testing.T) *testSSHServer {
	t.Helper()

	cfg := &ssh.ServerConfig{
		PasswordCallback: func(meta ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if meta.User() == testUser && string(pass) == testPassword {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for user %q", meta.User())
		},
	}
	cfg.AddHostKey(testHostKey(t))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := &testSSHServer{listener: listener}
	go srv.acceptLoop(cfg)
	t.Cleanup(srv.Close)
	return srv
}

func testHostKey(t *testing.T) ssh.Signer {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		t.Fatalf("failed to build host signer: %v", err)
	}
	return signer
}

func (s *testSSHServer) Port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *testSSHServer) acceptLoop(cfg *ssh.ServerConfig) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.conns = append(s.conns, conn)
		s.mu.Unlock()
		go handleTestConn(conn, cfg)
	}
}

func handleTestConn(conn net.Conn, cfg *ssh.ServerConfig) {
	serverConn, chans, reqs, err := ssh.NewServerConn(conn, cfg)
	if err != nil {
		return
	}
	defer serverConn.Close()
	// Also answers the keepalive probes the manager sends before reuse.
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}
		go handleTestSession(channel, requests)
	}
}

func handleTestSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	for req := range requests {
		switch req.Type {
		case "exec":
			var payload struct{ Command string }
			if err := ssh.Unmarshal(req.Payload, &payload); err != nil {
				_ = req.Reply(false, nil)
				continue
			}
			_ = req.Reply(true, nil)
			go runTestExec(channel, payload.Command)
		case "pty-req", "env":
			_ = req.Reply(true, nil)
		default:
			if req.WantReply {
				_ = req.Reply(false, nil)
			}
		}
	}
}

func runTestExec(channel ssh.Channel, command string) {
	defer channel.Close()

	cmd := exec.Command("sh", "-c", command)
	cmd.Stdout = channel
	cmd.Stderr = channel.Stderr()

	// Feed channel data to the process without making Wait block on a
	// client that keeps its stdin open.
	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return
	}
	go func() {
		_, _ = io.Copy(stdinPipe, channel)
		_ = stdinPipe.Close()
	}()

	exitCode := 0
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 127
		}
	}
	status := struct{ Status uint32 }{uint32(exitCode)}
	_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(&status))
}

// CloseConns drops every accepted connection while keeping the listener, so
// a held client session goes stale but reconnecting still works.
func (s *testSSHServer) CloseConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = nil
}

func (s *testSSHServer) Close() {
	_ = s.listener.Close()
	s.CloseConns()
}

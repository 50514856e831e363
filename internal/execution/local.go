package execution

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/creack/pty"

	"sshgate/internal/config"
)

// localClient executes commands on the gateway host itself. Selected when
// the configured host is "local"; it keeps the same contract as the SSH
// manager so the tool surface does not care which one it talks to.
type localClient struct{}

var _ Client = (*localClient)(nil)

// NewLocalClient returns a Client that executes on the local machine.
func NewLocalClient() Client {
	return &localClient{}
}

// Run executes a command locally using the shell.
func (c *localClient) Run(ctx context.Context, req CommandRequest) CommandResult {
	if strings.TrimSpace(req.Command) == "" {
		return failureResult("empty command")
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "sh", "-c", req.Command)

	if req.UsePTY {
		return runLocalWithPTY(runCtx, cmd, req.Input, timeout)
	}

	if req.Input != "" {
		cmd.Stdin = strings.NewReader(req.Input)
	}
	stdout := newCaptureBuffer()
	stderr := newCaptureBuffer()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		msg := "execution timed out after " + timeout.String()
		return shapeResult(nil, stdout.String(), stderr.String(), msg)
	}
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return shapeResult(intPtr(exitError.ExitCode()), stdout.String(), stderr.String(), "")
		}
		return shapeResult(nil, stdout.String(), stderr.String(), readableError(err))
	}
	return shapeResult(intPtr(0), stdout.String(), stderr.String(), "")
}

func runLocalWithPTY(ctx context.Context, cmd *exec.Cmd, input string, timeout time.Duration) CommandResult {
	capture := newCaptureBuffer()

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return failureResult("error starting pty: " + err.Error())
	}
	defer ptmx.Close()
	if os.Stdout != nil {
		_ = pty.InheritSize(os.Stdout, ptmx)
	}

	// The child's stdio is wired to the tty, so input goes through ptmx.
	if input != "" {
		go func() {
			_, _ = io.WriteString(ptmx, input)
		}()
	}

	copyDone := make(chan struct{})
	go func() {
		_, _ = io.Copy(capture, ptmx)
		close(copyDone)
	}()

	err = cmd.Wait()
	<-copyDone

	if ctx.Err() == context.DeadlineExceeded {
		msg := "execution timed out after " + timeout.String()
		return shapeResult(nil, capture.String(), "", msg)
	}
	// The PTY merges both streams; everything lands in stdout.
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			return shapeResult(intPtr(exitError.ExitCode()), capture.String(), "", "")
		}
		return shapeResult(nil, capture.String(), "", readableError(err))
	}
	return shapeResult(intPtr(0), capture.String(), "", "")
}

// CheckStatus runs the diagnostic command locally.
func (c *localClient) CheckStatus(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{Host: config.LocalHost}
	result := c.Run(ctx, CommandRequest{Command: statusProbeCommand, Timeout: statusProbeTimeout})
	if !result.Success {
		status.Error = statusFailureMessage(result)
		return status
	}
	status.Connected = true
	status.TestOutput = strings.TrimSpace(result.Stdout)
	return status
}

// Upload copies a file locally.
func (c *localClient) Upload(ctx context.Context, localPath, remotePath string) TransferResult {
	return copyLocalFile(ctx, localPath, remotePath, localPath, remotePath)
}

// Download copies a file locally.
func (c *localClient) Download(ctx context.Context, remotePath, localPath string) TransferResult {
	return copyLocalFile(ctx, remotePath, localPath, localPath, remotePath)
}

func copyLocalFile(ctx context.Context, src, dst, localPath, remotePath string) TransferResult {
	res := TransferResult{LocalPath: localPath, RemotePath: remotePath}

	info, err := os.Stat(src)
	if err != nil {
		res.Error = "source file not accessible: " + err.Error()
		return res
	}
	res.FileSize = info.Size()

	if dir := filepath.Dir(dst); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			res.Error = "error creating directory: " + err.Error()
			return res
		}
	}
	if err := exec.CommandContext(ctx, "cp", src, dst).Run(); err != nil {
		res.Error = "error copying file: " + err.Error()
		return res
	}
	res.Success = true
	return res
}

// Close closes the local client (no-op for local execution).
func (c *localClient) Close() error {
	return nil
}

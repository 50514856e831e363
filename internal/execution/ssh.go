package execution

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"
)

// execute runs one command on a fresh session so that sequential commands
// never share a channel or cross-contaminate output buffers. The returned
// error is non-nil only for channel/transport faults that should invalidate
// the held connection; command-level failures are fully described by the
// CommandResult.
func execute(client *ssh.Client, req CommandRequest) (CommandResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	session, err := client.NewSession()
	if err != nil {
		err = channelError("creating session", err)
		return failureResult(readableError(err)), err
	}
	defer session.Close()

	if req.UsePTY {
		modes := ssh.TerminalModes{
			ssh.ECHO:          0,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		width, height := termSize()
		if err := session.RequestPty("xterm-256color", height, width, modes); err != nil {
			err = channelError("requesting pty", err)
			return failureResult(readableError(err)), err
		}
	}

	// Stdin stays open when no input payload is given, matching what an
	// interactive remote process expects: a command that requires input
	// blocks until the timeout instead of seeing an immediate EOF.
	stdin, err := session.StdinPipe()
	if err != nil {
		err = channelError("opening stdin", err)
		return failureResult(readableError(err)), err
	}
	stdoutPipe, err := session.StdoutPipe()
	if err != nil {
		err = channelError("opening stdout", err)
		return failureResult(readableError(err)), err
	}
	stderrPipe, err := session.StderrPipe()
	if err != nil {
		err = channelError("opening stderr", err)
		return failureResult(readableError(err)), err
	}

	if err := session.Start(req.Command); err != nil {
		err = channelError("starting command", err)
		return failureResult(readableError(err)), err
	}

	// Input is fully written and the write side closed before output is
	// drained, so commands waiting for EOF-terminated input cannot hang.
	if req.Input != "" {
		if _, err := io.WriteString(stdin, req.Input); err != nil {
			_ = stdin.Close()
			err = channelError("writing input", err)
			return failureResult(readableError(err)), err
		}
		_ = stdin.Close()
	}

	stdout := newCaptureBuffer()
	stderr := newCaptureBuffer()
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = io.Copy(stdout, stdoutPipe)
	}()
	go func() {
		defer wg.Done()
		_, _ = io.Copy(stderr, stderrPipe)
	}()

	done := make(chan error, 1)
	go func() {
		done <- session.Wait()
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		// Abort the channel; whatever was captured so far is returned.
		_ = session.Signal(ssh.SIGINT)
		_ = session.Close()
		wg.Wait()
		msg := fmt.Sprintf("execution timed out after %s", timeout)
		return shapeResult(nil, stdout.String(), stderr.String(), msg), nil
	case waitErr := <-done:
		wg.Wait()
		return shapeWaitResult(waitErr, stdout.String(), stderr.String())
	}
}

// shapeWaitResult maps the session wait error onto the result contract:
// a remote exit status is data, anything else is a channel fault.
func shapeWaitResult(waitErr error, stdout, stderr string) (CommandResult, error) {
	if waitErr == nil {
		return shapeResult(intPtr(0), stdout, stderr, ""), nil
	}
	var exitErr *ssh.ExitError
	if errors.As(waitErr, &exitErr) {
		return shapeResult(intPtr(exitErr.ExitStatus()), stdout, stderr, ""), nil
	}
	var missingErr *ssh.ExitMissingError
	if errors.As(waitErr, &missingErr) {
		return shapeResult(nil, stdout, stderr, "command exited without status"), nil
	}
	err := channelError("waiting for command", waitErr)
	return shapeResult(nil, stdout, stderr, readableError(err)), err
}

// termSize returns the terminal size, falling back to 80x40.
func termSize() (width, height int) {
	width, height = 80, 40
	if os.Stdout != nil {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				return w, h
			}
		}
	}
	return width, height
}

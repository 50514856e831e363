package execution

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig means the connection configuration cannot produce a
	// usable authentication strategy. Never retried.
	ErrInvalidConfig = errors.New("invalid connection configuration")
	// ErrAuthFailed means the remote host rejected the credentials.
	ErrAuthFailed = errors.New("authentication failed")
	// ErrNetworkFailure means the transport could not be established or was lost.
	ErrNetworkFailure = errors.New("connection failed")
	// ErrChannelFailure means an execution channel broke while a command was
	// in flight. The held session is invalidated when this occurs.
	ErrChannelFailure = errors.New("execution channel failed")
)

// classifyDialError separates rejected credentials from transport faults.
// x/crypto/ssh reports both through the handshake error, so the distinction
// has to be made on the error text.
func classifyDialError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "unable to authenticate") || strings.Contains(msg, "no supported methods remain") {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
}

func channelError(context string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrChannelFailure, context, err)
}

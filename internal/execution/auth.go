package execution

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/ssh"

	"sshgate/internal/config"
)

// AuthKind identifies the authentication strategy resolved from a config.
type AuthKind string

const (
	AuthPublicKey AuthKind = "publickey"
	AuthPassword  AuthKind = "password"
)

// ResolveAuthKind picks the authentication strategy for a configuration.
// Key-based auth wins when both a password and a key path are present.
// It never touches the filesystem; an unreadable key file surfaces later
// as a connection error.
func ResolveAuthKind(cfg *config.Config) (AuthKind, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return "", fmt.Errorf("%w: host must be set", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.Username) == "" {
		return "", fmt.Errorf("%w: username must be set", ErrInvalidConfig)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return "", fmt.Errorf("%w: port %d is out of range 1-65535", ErrInvalidConfig, cfg.Port)
	}
	if cfg.KeyPath != "" {
		return AuthPublicKey, nil
	}
	if cfg.Password != "" {
		return AuthPassword, nil
	}
	return "", fmt.Errorf("%w: one of password or key_path must be set", ErrInvalidConfig)
}

// authMethods materializes the resolved strategy. Called at connect time so
// that key file problems are reported as connection errors, not config errors.
func authMethods(cfg *config.Config) ([]ssh.AuthMethod, error) {
	kind, err := ResolveAuthKind(cfg)
	if err != nil {
		return nil, err
	}
	if kind == AuthPassword {
		return []ssh.AuthMethod{ssh.Password(cfg.Password)}, nil
	}

	keyFile, err := os.ReadFile(ExpandTilde(cfg.KeyPath))
	if err != nil {
		return nil, fmt.Errorf("%w: reading key file: %v", ErrNetworkFailure, err)
	}
	var signer ssh.Signer
	if cfg.KeyPassphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(keyFile, []byte(cfg.KeyPassphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(keyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing key file: %v", ErrNetworkFailure, err)
	}
	return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
}

// ExpandTilde expands environment variables and a leading ~ in a path.
// Only the first tilde is expanded.
func ExpandTilde(path string) string {
	path = os.ExpandEnv(path)
	if strings.HasPrefix(path, "~") {
		path = os.Getenv("HOME") + path[1:]
	}
	return path
}

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// DefaultPort is used when no port is configured.
const DefaultPort = 22

// LocalHost selects the local fallback client instead of an SSH connection.
const LocalHost = "local"

// Config describes the single target host the gateway talks to.
// It is built once at startup and treated as immutable afterwards.
type Config struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port,omitempty" json:"port,omitempty" jsonschema:"minimum=1,maximum=65535"`
	// Username is the login identity on the target host.
	Username string `yaml:"username" json:"username"`
	// Password credential. Ignored when a key path is set.
	Password string `yaml:"password,omitempty" json:"password,omitempty"`
	// KeyPath points at a private key file. Takes precedence over Password.
	// Supports ~ and $VAR expansion.
	KeyPath       string `yaml:"key_path,omitempty" json:"key_path,omitempty"`
	KeyPassphrase string `yaml:"key_passphrase,omitempty" json:"key_passphrase,omitempty"`
	// Logging configuration for the gateway process.
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty"`
}

// LoggingConfig holds the logging configuration. If no path is provided, logs are written to stderr.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty" json:"level,omitempty"`
	Path  string `yaml:"path,omitempty" json:"path,omitempty"`
}

// ParseYAML decodes a configuration file using strict decoding.
// Unknown keys are rejected so typos do not silently disable auth options.
func ParseYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load builds the effective configuration from an optional YAML file and the
// SSH_* environment variables. Environment values override file values.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		cfg, err = ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SSH_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("SSH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SSH_PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("SSH_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("SSH_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("SSH_KEY_PATH"); v != "" {
		c.KeyPath = v
	}
	if v := os.Getenv("SSH_KEY_PASSPHRASE"); v != "" {
		c.KeyPassphrase = v
	}
	return nil
}

// Validate checks the configuration and fills in the default port.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Host) == "" {
		errs = append(errs, "host must be set (SSH_HOST)")
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port %d is out of range 1-65535", c.Port))
	}

	// The local fallback needs no credentials.
	if !c.IsLocal() {
		if strings.TrimSpace(c.Username) == "" {
			errs = append(errs, "username must be set (SSH_USERNAME)")
		}
		if c.Password == "" && c.KeyPath == "" {
			errs = append(errs, "one of password (SSH_PASSWORD) or key_path (SSH_KEY_PATH) must be set")
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid configuration: " + strings.Join(errs, "; "))
	}
	return nil
}

// IsLocal reports whether the gateway should execute on the local machine.
func (c *Config) IsLocal() bool {
	return c.Host == LocalHost
}

// Addr returns the dial address for the target host.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

package gateway

import (
	"log"
	"os"

	"sshgate/internal/config"
)

// NewLogger creates the process logger from the logging configuration.
// Defaults to stderr: the stdio transport owns stdout.
func NewLogger(cfg *config.Config) *log.Logger {
	if cfg.Logging != nil && cfg.Logging.Path != "" {
		file, err := os.OpenFile(cfg.Logging.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatalf("error opening log file: %v", err)
		}
		return log.New(file, "", log.LstdFlags)
	}
	return log.New(os.Stderr, "", log.LstdFlags)
}

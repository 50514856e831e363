// Package gateway exposes the execution core as MCP tools over stdio.
package gateway

import (
	"context"
	"log"

	"github.com/mark3labs/mcp-go/server"

	"sshgate/internal/config"
	"sshgate/internal/execution"
)

// Version is reported to MCP clients during initialization.
const Version = "0.2.0"

// Server forwards tool calls to the execution client. Operational failures
// are encoded into the structured results, never returned as tool errors.
type Server struct {
	cfg    *config.Config
	client execution.Client
	logger *log.Logger
	mcp    *server.MCPServer
}

// New builds a gateway server around an execution client.
func New(cfg *config.Config, client execution.Client, logger *log.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		client: client,
		logger: logger,
		mcp:    server.NewMCPServer("sshgate", Version, server.WithToolCapabilities(true)),
	}
	s.registerTools()
	return s
}

// ServeStdio verifies the connection once, logs the outcome and serves
// until stdin closes. A failed verification is not fatal: the target may
// come up later and every tool call reconnects on demand.
func (s *Server) ServeStdio() error {
	status := s.client.CheckStatus(context.Background())
	if status.Connected {
		s.logger.Printf("connected to %s@%s:%d", s.cfg.Username, s.cfg.Host, s.cfg.Port)
	} else {
		s.logger.Printf("warning: connection check failed: %s", status.Error)
	}
	return server.ServeStdio(s.mcp, server.WithErrorLogger(s.logger))
}

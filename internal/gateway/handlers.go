package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"sshgate/internal/execution"
)

func (s *Server) handleExecuteCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := mcp.ParseString(req, "command", "")
	timeout := mcp.ParseInt(req, "timeout", 30)
	if strings.TrimSpace(command) == "" {
		return mcp.NewToolResultError("command is required"), nil
	}

	result := s.client.Run(ctx, execution.CommandRequest{
		Command: command,
		Timeout: time.Duration(timeout) * time.Second,
	})
	s.logCommand(command, result)
	return jsonResult(result)
}

func (s *Server) handleGetCommandOutput(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := mcp.ParseString(req, "command", "")
	timeout := mcp.ParseInt(req, "timeout", 30)
	if strings.TrimSpace(command) == "" {
		return mcp.NewToolResultError("command is required"), nil
	}

	result := s.client.Run(ctx, execution.CommandRequest{
		Command: command,
		Timeout: time.Duration(timeout) * time.Second,
	})
	s.logCommand(command, result)
	if result.Success {
		return mcp.NewToolResultText(result.Stdout), nil
	}
	return mcp.NewToolResultText(failureText(result)), nil
}

func (s *Server) handleCheckConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.client.CheckStatus(ctx)
	if status.Connected {
		s.logger.Printf("connection check succeeded for %s", status.Host)
	} else {
		s.logger.Printf("connection check failed for %s: %s", status.Host, status.Error)
	}
	return jsonResult(status)
}

func (s *Server) handleExecuteInteractiveCommand(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	command := mcp.ParseString(req, "command", "")
	inputData := mcp.ParseString(req, "input_data", "")
	timeout := mcp.ParseInt(req, "timeout", 30)
	if strings.TrimSpace(command) == "" {
		return mcp.NewToolResultError("command is required"), nil
	}

	result := s.client.Run(ctx, execution.CommandRequest{
		Command: command,
		Input:   inputData,
		Timeout: time.Duration(timeout) * time.Second,
	})
	s.logCommand(command, result)
	return jsonResult(result)
}

func (s *Server) handleUploadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	localPath := mcp.ParseString(req, "local_path", "")
	remotePath := mcp.ParseString(req, "remote_path", "")
	if localPath == "" || remotePath == "" {
		return mcp.NewToolResultError("local_path and remote_path are required"), nil
	}

	result := s.client.Upload(ctx, localPath, remotePath)
	s.logTransfer("upload", result)
	return jsonResult(result)
}

func (s *Server) handleDownloadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	remotePath := mcp.ParseString(req, "remote_path", "")
	localPath := mcp.ParseString(req, "local_path", "")
	if localPath == "" || remotePath == "" {
		return mcp.NewToolResultError("remote_path and local_path are required"), nil
	}

	result := s.client.Download(ctx, remotePath, localPath)
	s.logTransfer("download", result)
	return jsonResult(result)
}

// failureText folds a failed result into a readable message, mirroring what
// callers of get_command_output expect instead of a raw error.
func failureText(result execution.CommandResult) string {
	var b strings.Builder
	if result.ExitCode != nil {
		fmt.Fprintf(&b, "command failed (exit code: %d)", *result.ExitCode)
	} else {
		b.WriteString("command failed")
	}
	if result.Stderr != "" {
		b.WriteString("\nstderr: " + result.Stderr)
	}
	if result.Error != "" {
		b.WriteString("\nerror: " + result.Error)
	}
	return b.String()
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError("encoding result: " + err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) logCommand(command string, result execution.CommandResult) {
	switch {
	case result.Error != "":
		s.logger.Printf("command failed on %s: %q: %s", s.cfg.Host, command, result.Error)
	case result.ExitCode != nil:
		s.logger.Printf("command completed on %s: %q exit=%d", s.cfg.Host, command, *result.ExitCode)
	default:
		s.logger.Printf("command completed on %s: %q", s.cfg.Host, command)
	}
}

func (s *Server) logTransfer(direction string, result execution.TransferResult) {
	if result.Success {
		s.logger.Printf("%s completed: %s -> %s (%d bytes)", direction, result.LocalPath, result.RemotePath, result.FileSize)
	} else {
		s.logger.Printf("%s failed: %s -> %s: %s", direction, result.LocalPath, result.RemotePath, result.Error)
	}
}

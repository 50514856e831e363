package execution

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	scp "github.com/bramvdbogaerde/go-scp"
)

// Upload copies a local file to the target host over the managed connection.
func (m *Manager) Upload(ctx context.Context, localPath, remotePath string) TransferResult {
	res := TransferResult{LocalPath: localPath, RemotePath: remotePath}

	info, err := os.Stat(localPath)
	if err != nil {
		res.Error = "local file not accessible: " + err.Error()
		return res
	}
	res.FileSize = info.Size()

	m.mu.Lock()
	defer m.mu.Unlock()

	client, err := m.ensureConnectedLocked()
	if err != nil {
		res.Error = readableError(err)
		return res
	}

	// Make sure the remote parent directory exists before copying.
	if dir := path.Dir(remotePath); dir != "" && dir != "." && dir != "/" {
		mkdir := CommandRequest{Command: fmt.Sprintf("mkdir -p %q", dir), Timeout: transferTimeout}
		if _, execErr := execute(client, mkdir); errors.Is(execErr, ErrChannelFailure) {
			m.invalidateLocked()
			res.Error = readableError(execErr)
			return res
		}
	}

	scpClient, err := scp.NewClientBySSH(client)
	if err != nil {
		res.Error = "error creating scp client: " + err.Error()
		return res
	}
	file, err := os.Open(localPath)
	if err != nil {
		res.Error = "error opening local file: " + err.Error()
		return res
	}
	defer file.Close()

	if err := scpClient.CopyFile(ctx, file, remotePath, "0644"); err != nil {
		res.Error = "error uploading file: " + err.Error()
		return res
	}
	res.Success = true
	return res
}

// Download copies a file from the target host to the local machine.
func (m *Manager) Download(ctx context.Context, remotePath, localPath string) TransferResult {
	res := TransferResult{LocalPath: localPath, RemotePath: remotePath}

	if dir := filepath.Dir(localPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			res.Error = "error creating local directory: " + err.Error()
			return res
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	client, err := m.ensureConnectedLocked()
	if err != nil {
		res.Error = readableError(err)
		return res
	}

	scpClient, err := scp.NewClientBySSH(client)
	if err != nil {
		res.Error = "error creating scp client: " + err.Error()
		return res
	}
	file, err := os.Create(localPath)
	if err != nil {
		res.Error = "error creating local file: " + err.Error()
		return res
	}
	defer file.Close()

	if err := scpClient.CopyFromRemote(ctx, file, remotePath); err != nil {
		res.Error = "error downloading file: " + err.Error()
		return res
	}
	if info, err := file.Stat(); err == nil {
		res.FileSize = info.Size()
	}
	res.Success = true
	return res
}

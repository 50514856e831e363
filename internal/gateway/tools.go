package gateway

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools registers the callable operations with the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(executeCommandTool(), s.handleExecuteCommand)
	s.mcp.AddTool(getCommandOutputTool(), s.handleGetCommandOutput)
	s.mcp.AddTool(checkConnectionTool(), s.handleCheckConnection)
	s.mcp.AddTool(executeInteractiveCommandTool(), s.handleExecuteInteractiveCommand)
	s.mcp.AddTool(uploadFileTool(), s.handleUploadFile)
	s.mcp.AddTool(downloadFileTool(), s.handleDownloadFile)
}

func executeCommandTool() mcp.Tool {
	return mcp.NewTool("execute_command",
		mcp.WithDescription("Execute a shell command on the remote server and return exit code, stdout and stderr"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The shell command to execute"),
		),
		mcp.WithNumber("timeout",
			mcp.DefaultNumber(30),
			mcp.Description("Command timeout in seconds"),
		),
	)
}

func getCommandOutputTool() mcp.Tool {
	return mcp.NewTool("get_command_output",
		mcp.WithDescription("Execute a shell command on the remote server and return only its standard output"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The shell command to execute"),
		),
		mcp.WithNumber("timeout",
			mcp.DefaultNumber(30),
			mcp.Description("Command timeout in seconds"),
		),
	)
}

func checkConnectionTool() mcp.Tool {
	return mcp.NewTool("check_ssh_connection",
		mcp.WithDescription("Verify that the configured SSH connection is usable and report its status"),
	)
}

func executeInteractiveCommandTool() mcp.Tool {
	return mcp.NewTool("execute_interactive_command",
		mcp.WithDescription("Execute a shell command on the remote server, feeding data to its standard input"),
		mcp.WithString("command",
			mcp.Required(),
			mcp.Description("The shell command to execute"),
		),
		mcp.WithString("input_data",
			mcp.DefaultString(""),
			mcp.Description("Data written to the command's standard input before it is closed"),
		),
		mcp.WithNumber("timeout",
			mcp.DefaultNumber(30),
			mcp.Description("Command timeout in seconds"),
		),
	)
}

func uploadFileTool() mcp.Tool {
	return mcp.NewTool("upload_file",
		mcp.WithDescription("Upload a local file to the remote server"),
		mcp.WithString("local_path",
			mcp.Required(),
			mcp.Description("Path of the file on the local machine"),
		),
		mcp.WithString("remote_path",
			mcp.Required(),
			mcp.Description("Destination path on the remote server"),
		),
	)
}

func downloadFileTool() mcp.Tool {
	return mcp.NewTool("download_file",
		mcp.WithDescription("Download a file from the remote server to the local machine"),
		mcp.WithString("remote_path",
			mcp.Required(),
			mcp.Description("Path of the file on the remote server"),
		),
		mcp.WithString("local_path",
			mcp.Required(),
			mcp.Description("Destination path on the local machine"),
		),
	)
}

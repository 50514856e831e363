package execution

import (
	"fmt"
	"strings"
)

// shapeResult builds a CommandResult that always satisfies the invariant:
// success iff exit code 0 and no error message.
func shapeResult(exitCode *int, stdout, stderr, errMsg string) CommandResult {
	return CommandResult{
		Success:  errMsg == "" && exitCode != nil && *exitCode == 0,
		ExitCode: exitCode,
		Stdout:   stdout,
		Stderr:   stderr,
		Error:    errMsg,
	}
}

func failureResult(msg string) CommandResult {
	return shapeResult(nil, "", "", msg)
}

func intPtr(v int) *int {
	return &v
}

// readableError flattens an error chain into a single human-readable line.
func readableError(err error) string {
	if err == nil {
		return ""
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}

// statusFailureMessage summarizes a failed probe for the status error field.
func statusFailureMessage(res CommandResult) string {
	if res.Error != "" {
		return res.Error
	}
	if res.ExitCode != nil {
		return fmt.Sprintf("status command exited with code %d", *res.ExitCode)
	}
	return "status command failed"
}

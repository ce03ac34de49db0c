package device

import (
	"fmt"
	"strings"
)

// CommandError reports a command rejected by the device after the connection
// was accepted. The remote executes a batch fail-fast: commands before the
// failing one ran and their outputs are in Passed; commands after it were
// never attempted and are listed in NotExec.
type CommandError struct {
	Device  string
	Failed  string        // text of the rejected command
	Errors  []string      // structured error details for that command
	Message string        // human error message from the response envelope
	Passed  []interface{} // outputs for commands that ran, in order
	NotExec []string      // command texts never attempted
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed on %s: %s", e.Failed, e.Device, e.Message)
	if len(e.Errors) > 0 {
		msg += " (" + strings.Join(e.Errors, "; ") + ")"
	}
	return msg
}

// unsupportedPatterns is the allow-list of error substrings that mark a
// command as statically unsupported by the platform rather than a runtime
// fault. The vendor firmware owns this text, so keep every pattern here and
// nowhere else.
var unsupportedPatterns = []string{
	"not supported on this hardware platform",
	"Unavailable command (controller not ready)",
	"unavailable in this hardware configuration",
}

// Unsupported reports whether this failure is a recognized soft error: the
// command is valid but the platform does not support it. The harness turns
// these into skipped rather than errored results.
func (e *CommandError) Unsupported() bool {
	for _, detail := range e.Errors {
		for _, pattern := range unsupportedPatterns {
			if strings.Contains(detail, pattern) {
				return true
			}
		}
	}
	return false
}

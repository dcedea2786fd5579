package remedy

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"

	"al.essio.dev/pkg/shellescape"
)

// Runner triggers one remediation attempt. Implementations must be
// synchronous and honor ctx cancellation.
type Runner interface {
	Remediate(ctx context.Context) error
}

// Command runs an external recovery executable. One invocation per
// triggering cycle, no retries — the monitor logs the outcome and moves on.
type Command struct {
	path    string
	args    []string
	timeout time.Duration
}

// NewCommand creates a Command runner for path with the given arguments.
// timeout bounds each attempt so a hung script cannot stall the monitor loop.
func NewCommand(path string, args []string, timeout time.Duration) *Command {
	return &Command{path: path, args: args, timeout: timeout}
}

// Remediate executes the command and waits for it to exit.
// Success is a zero exit status; anything else, including a timeout kill,
// is returned as an error with the command line attached.
func (c *Command) Remediate(ctx context.Context) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmdline := shellescape.QuoteCommand(append([]string{c.path}, c.args...))
	slog.Info("remedy: running recovery command", "cmd", cmdline)

	out, err := exec.CommandContext(cctx, c.path, c.args...).CombinedOutput()
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("remedy: %s: timed out after %v", cmdline, c.timeout)
		}
		return fmt.Errorf("remedy: %s: %w (output: %s)", cmdline, err, truncate(out, 512))
	}
	return nil
}

// truncate clips command output for error messages.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// None is a Runner used when no remediation command is configured.
// It logs that the alert had no paired recovery action and succeeds.
type None struct{}

func (None) Remediate(context.Context) error {
	slog.Info("remedy: no recovery command configured, skipping")
	return nil
}

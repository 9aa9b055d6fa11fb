package yccli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"ycensure/internal/logging"

	"go.uber.org/zap"
)

// ErrToolNotFound is returned when the yc binary cannot be located on the
// executing host. No provider calls are attempted in that case.
var ErrToolNotFound = errors.New("yc CLI not found in PATH")

// CommandError carries the diagnostic output of a failed yc invocation.
type CommandError struct {
	Args     []string
	ExitCode int
	Output   string // stderr, or stdout when stderr was empty
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	return fmt.Sprintf("command failed: yc %s (exit code %d)", strings.Join(e.Args, " "), e.ExitCode)
}

// Runner executes the provisioning tool with an argument vector and returns
// captured stdout. Implementations other than CLI exist only in tests.
type Runner interface {
	Run(ctx context.Context, args ...string) ([]byte, error)
}

// CLI runs the real yc binary.
type CLI struct {
	path string
}

// New resolves the binary on PATH up front so a missing tool is reported
// before any reconciliation work starts. An empty name means "yc".
func New(binary string) (*CLI, error) {
	if binary == "" {
		binary = "yc"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: install it and run `yc init` (or set SA env) first", ErrToolNotFound)
	}
	return &CLI{path: path}, nil
}

// Run spawns the tool, blocks until it exits and returns captured stdout.
// A non-zero exit yields a *CommandError with the tool's own diagnostics.
func (c *CLI) Run(ctx context.Context, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, c.path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.Logger().Debug("running yc command",
		zap.Strings("args", logging.TruncateSlice(args, 32)))

	if err := cmd.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(stdout.String())
		}
		return nil, &CommandError{Args: args, ExitCode: exitCode, Output: msg}
	}

	logging.Logger().Debug("yc command finished",
		zap.String("stdout", logging.Truncate(stdout.String())))

	return stdout.Bytes(), nil
}

package mdpress

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/alnah/go-mdpress/internal/process"
)

// maxStderrBytes bounds how much tool stderr is carried in a ToolError.
const maxStderrBytes = 2048

// waitDelay bounds how long Wait blocks on open pipes after the process group is killed.
const waitDelay = 5 * time.Second

// CommandRunner abstracts command execution to enable testing without real subprocesses.
// Run returns the captured output even when the command fails; the error is a *ToolError.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (*CommandResult, error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct {
	// Dir is the working directory for child processes. Empty means the caller's.
	Dir string

	// LookPath resolves executables. Nil uses exec.LookPath.
	LookPath func(file string) (string, error)
}

// Run resolves name, runs it in its own process group and captures stdout and stderr.
// Cancelling ctx kills the whole group.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (*CommandResult, error) {
	lookPath := r.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(name)
	if err != nil {
		return nil, &ToolError{Tool: name, Kind: FailureNotFound, ExitCode: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204 -- tool binaries come from configuration
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	process.SetProcessGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return nil
	}
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()
	res := &CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if runErr == nil {
		return res, nil
	}

	res.ExitCode = -1
	if ctxErr := ctx.Err(); ctxErr != nil {
		kind := FailureExecution
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			kind = FailureTimeout
		}
		return res, &ToolError{Tool: name, Kind: kind, ExitCode: -1, Stderr: cleanStderr(res.Stderr), Err: ctxErr}
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	return res, &ToolError{
		Tool:     name,
		Kind:     FailureExecution,
		ExitCode: res.ExitCode,
		Stderr:   cleanStderr(res.Stderr),
		Err:      runErr,
	}
}

// cleanStderr strips terminal escapes and keeps the tail of long output,
// where tools usually print the actual failure.
func cleanStderr(s string) string {
	s = strings.TrimSpace(ansi.Strip(s))
	if len(s) <= maxStderrBytes {
		return s
	}
	tail := s[len(s)-maxStderrBytes:]
	if i := strings.IndexByte(tail, '\n'); i >= 0 && i < len(tail)-1 {
		tail = tail[i+1:]
	}
	return "..." + tail
}

// runTool runs a tool and normalizes any non-ToolError failure into one.
func runTool(ctx context.Context, runner CommandRunner, name string, args ...string) (*CommandResult, error) {
	res, err := runner.Run(ctx, name, args...)
	if err == nil {
		return res, nil
	}
	var toolErr *ToolError
	if errors.As(err, &toolErr) {
		return res, err
	}
	kind := FailureExecution
	switch {
	case errors.Is(err, exec.ErrNotFound):
		kind = FailureNotFound
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimeout
	}
	exitCode := -1
	stderr := ""
	if res != nil {
		if res.ExitCode > 0 {
			exitCode = res.ExitCode
		}
		stderr = cleanStderr(res.Stderr)
	}
	return res, &ToolError{Tool: name, Kind: kind, ExitCode: exitCode, Stderr: stderr, Err: err}
}

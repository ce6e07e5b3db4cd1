package mdpress

// Notes:
// - ExecRunner tests spawn /bin/sh and are skipped where it is unavailable.
// - cleanStderr: we test escape stripping and tail truncation.

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Mock runner
// ---------------------------------------------------------------------------

// mockRunner records invocations and returns a canned result.
type mockRunner struct {
	result *CommandResult
	err    error
	calls  [][]string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) (*CommandResult, error) {
	m.calls = append(m.calls, append([]string{name}, args...))
	if m.result == nil {
		m.result = &CommandResult{}
	}
	return m.result, m.err
}

func (m *mockRunner) lastArgs(t *testing.T) []string {
	t.Helper()
	if len(m.calls) == 0 {
		t.Fatal("runner was not called")
	}
	return m.calls[len(m.calls)-1]
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// ---------------------------------------------------------------------------
// TestExecRunner_Run - Exit status classification
// ---------------------------------------------------------------------------

func TestExecRunner_Run_NotFound(t *testing.T) {
	t.Parallel()

	r := &ExecRunner{LookPath: func(string) (string, error) { return "", exec.ErrNotFound }}
	_, err := r.Run(context.Background(), "pandoc", "--version")

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v, want *ToolError", err)
	}
	if toolErr.Kind != FailureNotFound || toolErr.Tool != "pandoc" {
		t.Errorf("ToolError = %+v, want pandoc not found", toolErr)
	}
	if !errors.Is(err, ErrToolUnavailable) {
		t.Error("errors.Is(err, ErrToolUnavailable) should be true")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Error("cause should be preserved")
	}
}

func TestExecRunner_Run_Success(t *testing.T) {
	t.Parallel()
	requireShell(t)

	res, err := (&ExecRunner{}).Run(context.Background(), "sh", "-c", "echo out; echo err >&2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ExitCode != 0 || strings.TrimSpace(res.Stdout) != "out" || strings.TrimSpace(res.Stderr) != "err" {
		t.Errorf("result = %+v", res)
	}
}

func TestExecRunner_Run_NonZeroExit(t *testing.T) {
	t.Parallel()
	requireShell(t)

	res, err := (&ExecRunner{}).Run(context.Background(), "sh", "-c", "echo 'engine missing' >&2; exit 3")

	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v, want *ToolError", err)
	}
	if toolErr.Kind != FailureExecution || toolErr.ExitCode != 3 {
		t.Errorf("ToolError = %+v, want execution error with status 3", toolErr)
	}
	if toolErr.Stderr != "engine missing" {
		t.Errorf("Stderr = %q, want trimmed stderr", toolErr.Stderr)
	}
	if res == nil || res.ExitCode != 3 {
		t.Errorf("result = %+v, want captured exit code", res)
	}
	if !errors.Is(err, ErrToolExecution) {
		t.Error("errors.Is(err, ErrToolExecution) should be true")
	}
}

func TestExecRunner_Run_Timeout(t *testing.T) {
	t.Parallel()
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := (&ExecRunner{}).Run(ctx, "sh", "-c", "sleep 30")

	var toolErr *ToolError
	if !errors.As(err, &toolErr) || toolErr.Kind != FailureTimeout {
		t.Fatalf("error = %v, want timeout ToolError", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("process group was not killed promptly (%s)", elapsed)
	}
}

// ---------------------------------------------------------------------------
// TestRunTool - Normalization of foreign runner errors
// ---------------------------------------------------------------------------

func TestRunTool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantKind FailureKind
	}{
		{"not found", exec.ErrNotFound, FailureNotFound},
		{"deadline", context.DeadlineExceeded, FailureTimeout},
		{"other", errors.New("broken pipe"), FailureExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := runTool(context.Background(), &mockRunner{err: tt.err}, "wkhtmltopdf")

			var toolErr *ToolError
			if !errors.As(err, &toolErr) {
				t.Fatalf("error = %v, want *ToolError", err)
			}
			if toolErr.Kind != tt.wantKind || toolErr.Tool != "wkhtmltopdf" {
				t.Errorf("ToolError = %+v, want kind %s", toolErr, tt.wantKind)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestCleanStderr - Escapes and truncation
// ---------------------------------------------------------------------------

func TestCleanStderr(t *testing.T) {
	t.Parallel()

	if got := cleanStderr("  \x1b[31merror\x1b[0m: bad input\n"); got != "error: bad input" {
		t.Errorf("cleanStderr() = %q, want escapes stripped", got)
	}

	long := strings.Repeat("noise line\n", 500) + "final: real cause"
	got := cleanStderr(long)
	if !strings.HasPrefix(got, "...") || !strings.HasSuffix(got, "final: real cause") {
		t.Errorf("cleanStderr() should keep the tail, got %q...", got[:min(len(got), 40)])
	}
	if len(got) > maxStderrBytes+3 {
		t.Errorf("len = %d, want at most %d", len(got), maxStderrBytes+3)
	}
}

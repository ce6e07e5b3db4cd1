package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	mdpress "github.com/alnah/go-mdpress"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake tools and environment
// ---------------------------------------------------------------------------

// toolbox simulates pandoc, its PDF engine, and the HTML printers.
// Each successful step writes its output file so the converter sees real artifacts.
type toolbox struct {
	directOK bool // pandoc --pdf-engine succeeds
	htmlOK   bool // pandoc -t html5 succeeds
	printOK  bool // weasyprint or wkhtmltopdf succeeds
	version  string

	mu    sync.Mutex
	calls [][]string
}

func (tb *toolbox) Run(_ context.Context, name string, args ...string) (*mdpress.CommandResult, error) {
	tb.mu.Lock()
	tb.calls = append(tb.calls, append([]string{name}, args...))
	tb.mu.Unlock()

	switch filepath.Base(name) {
	case "pandoc":
		if slices.Contains(args, "--version") {
			return &mdpress.CommandResult{Stdout: tb.version + "\nCompiled with pandoc-types"}, nil
		}
		if slices.ContainsFunc(args, func(a string) bool { return strings.HasPrefix(a, "--pdf-engine=") }) {
			if !tb.directOK {
				return failed("pandoc", 47, "weasyprint not found. Please select a different --pdf-engine")
			}
			return writeTarget(args[slices.Index(args, "-o")+1], "%PDF-1.7 direct")
		}
		if !tb.htmlOK {
			return failed("pandoc", 64, "Unknown extension: fancy")
		}
		return writeTarget(args[slices.Index(args, "-o")+1], "<html></html>")
	case "weasyprint", "wkhtmltopdf":
		if !tb.printOK {
			return nil, &mdpress.ToolError{Tool: name, Kind: mdpress.FailureNotFound, ExitCode: -1, Err: exec.ErrNotFound}
		}
		return writeTarget(args[len(args)-1], "%PDF-1.4 fallback")
	}
	return nil, &mdpress.ToolError{Tool: name, Kind: mdpress.FailureNotFound, ExitCode: -1, Err: exec.ErrNotFound}
}

func (tb *toolbox) callCount() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return len(tb.calls)
}

// lastCall returns the most recent invocation, tool name first.
func (tb *toolbox) lastCall() []string {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if len(tb.calls) == 0 {
		return nil
	}
	return tb.calls[len(tb.calls)-1]
}

func failed(tool string, code int, stderr string) (*mdpress.CommandResult, error) {
	return &mdpress.CommandResult{ExitCode: code, Stderr: stderr}, &mdpress.ToolError{
		Tool:     tool,
		Kind:     mdpress.FailureExecution,
		ExitCode: code,
		Stderr:   stderr,
		Err:      fmt.Errorf("exit status %d", code),
	}
}

func writeTarget(path, content string) (*mdpress.CommandResult, error) {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, err
	}
	return &mdpress.CommandResult{}, nil
}

// testEnv holds an Environment wired to buffers and fakes.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

// newTestEnv returns an environment with no real processes, an empty
// environment and a fixed clock. found lists executables LookPath resolves.
func newTestEnv(runner mdpress.CommandRunner, vars map[string]string, found ...string) *testEnv {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	return &testEnv{
		Environment: &Environment{
			Now:    func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
			Stdout: stdout,
			Stderr: stderr,
			Getenv: func(k string) string { return vars[k] },
			Runner: runner,
			LookPath: func(name string) (string, error) {
				if slices.Contains(found, name) {
					return "/usr/bin/" + name, nil
				}
				return "", exec.ErrNotFound
			},
			BrowserPath: func() (string, bool) {
				if slices.Contains(found, "chrome") {
					return "/usr/bin/chromium", true
				}
				return "", false
			},
		},
		stdout: stdout,
		stderr: stderr,
	}
}

// writeMarkdown creates a Markdown source in a temp dir and returns its path.
func writeMarkdown(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("# Report\n\nA) first\nB) second\n"), 0o644); err != nil {
		t.Fatalf("writing markdown: %v", err)
	}
	return path
}

// assertExists fails if path is missing.
func assertExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

// assertMissing fails if path exists.
func assertMissing(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected %s to be absent, stat err = %v", path, err)
	}
}

// writeFile writes content to path or fails the test.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

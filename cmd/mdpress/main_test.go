package main

// Notes:
// - runMain: we test dispatch and exit codes end to end with a fake runner
//   that writes the files each tool would produce. Real binaries are covered
//   by integration tests.
// - isCommand: we test command name matching.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestIsCommand - Command name detection
// ---------------------------------------------------------------------------

func TestIsCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"version", true},
		{"help", true},
		{"doctor", true},
		{"convert", false}, // implicit, never a subcommand
		{"Report.md", false},
		{"", false},
		{"VERSION", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := isCommand(tt.input); got != tt.want {
				t.Errorf("isCommand(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Commands - Non-conversion commands
// ---------------------------------------------------------------------------

func TestRunMain_Commands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
		wantOut  string
	}{
		{"version", []string{"mdpress", "version"}, ExitSuccess, "mdpress dev"},
		{"help", []string{"mdpress", "help"}, ExitSuccess, "Commands:"},
		{"help convert", []string{"mdpress", "help", "convert"}, ExitSuccess, "--no-direct"},
		{"convert -h", []string{"mdpress", "-h"}, ExitSuccess, "--html-engine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(&toolbox{}, nil)
			if got := runMain(tt.args, env.Environment); got != tt.wantCode {
				t.Errorf("runMain() = %d, want %d", got, tt.wantCode)
			}
			if !strings.Contains(env.stdout.String(), tt.wantOut) {
				t.Errorf("stdout should contain %q, got:\n%s", tt.wantOut, env.stdout.String())
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_UsageErrors - Invalid invocations never start a process
// ---------------------------------------------------------------------------

func TestRunMain_UsageErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     func(src string) []string
		wantCode int
		wantErr  string
	}{
		{
			name:     "unknown flag",
			args:     func(src string) []string { return []string{"mdpress", "--bogus", src} },
			wantCode: ExitUsage,
			wantErr:  "invalid flag",
		},
		{
			name:     "too many arguments",
			args:     func(src string) []string { return []string{"mdpress", src, "a.pdf", "b.pdf"} },
			wantCode: ExitUsage,
			wantErr:  "too many arguments",
		},
		{
			name:     "no input",
			args:     func(string) []string { return []string{"mdpress"} },
			wantCode: ExitIO,
			wantErr:  "no input specified",
		},
		{
			name:     "missing source",
			args:     func(src string) []string { return []string{"mdpress", filepath.Join(filepath.Dir(src), "Missing.md")} },
			wantCode: ExitIO,
			wantErr:  "source file not found",
		},
		{
			name:     "invalid engine",
			args:     func(src string) []string { return []string{"mdpress", "--engine", "word", src} },
			wantCode: ExitUsage,
			wantErr:  "invalid PDF engine",
		},
		{
			name:     "invalid renderer",
			args:     func(src string) []string { return []string{"mdpress", "--renderer", "prince", src} },
			wantCode: ExitUsage,
			wantErr:  "invalid renderer",
		},
		{
			name:     "invalid timeout",
			args:     func(src string) []string { return []string{"mdpress", "-t", "soon", src} },
			wantCode: ExitUsage,
			wantErr:  "invalid timeout",
		},
		{
			name:     "missing config",
			args:     func(src string) []string { return []string{"mdpress", "-c", "/nonexistent/mdpress.yaml", src} },
			wantCode: ExitUsage,
			wantErr:  "config file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := writeMarkdown(t, "Report.md")
			tools := &toolbox{directOK: true, htmlOK: true, printOK: true}
			env := newTestEnv(tools, nil)

			if got := runMain(tt.args(src), env.Environment); got != tt.wantCode {
				t.Errorf("runMain() = %d, want %d\nstderr: %s", got, tt.wantCode, env.stderr.String())
			}
			if !strings.Contains(env.stderr.String(), tt.wantErr) {
				t.Errorf("stderr should contain %q, got:\n%s", tt.wantErr, env.stderr.String())
			}
			if !strings.Contains(env.stderr.String(), markerError) {
				t.Errorf("stderr should carry %s marker, got:\n%s", markerError, env.stderr.String())
			}
			if n := tools.callCount(); n != 0 {
				t.Errorf("expected no tool invocation, got %d", n)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRunMain_Outcomes - The four observable conversion outcomes
// ---------------------------------------------------------------------------

func TestRunMain_DirectSuccess(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	dir := filepath.Dir(src)
	tools := &toolbox{directOK: true}
	env := newTestEnv(tools, nil)

	if got := runMain([]string{"mdpress", src}, env.Environment); got != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", got, ExitSuccess, env.stderr.String())
	}

	assertExists(t, filepath.Join(dir, "Report.pdf"))
	assertMissing(t, filepath.Join(dir, "Report.html"))
	if !strings.Contains(env.stdout.String(), markerOK) {
		t.Errorf("stdout should carry %s, got:\n%s", markerOK, env.stdout.String())
	}
	if env.stderr.Len() != 0 {
		t.Errorf("stderr should be empty on direct success, got:\n%s", env.stderr.String())
	}
	if n := tools.callCount(); n != 1 {
		t.Errorf("expected 1 tool invocation, got %d", n)
	}
}

func TestRunMain_FallbackSuccess(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	dir := filepath.Dir(src)
	env := newTestEnv(&toolbox{htmlOK: true, printOK: true}, nil)

	if got := runMain([]string{"mdpress", src}, env.Environment); got != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", got, ExitSuccess, env.stderr.String())
	}

	assertExists(t, filepath.Join(dir, "Report.pdf"))
	assertMissing(t, filepath.Join(dir, "Report.html"))
	if !strings.Contains(env.stderr.String(), markerWarn) ||
		!strings.Contains(env.stderr.String(), "exited with status 47") {
		t.Errorf("stderr should report the direct failure, got:\n%s", env.stderr.String())
	}
}

func TestRunMain_PartialSuccess(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	dir := filepath.Dir(src)
	env := newTestEnv(&toolbox{htmlOK: true}, nil)

	if got := runMain([]string{"mdpress", src}, env.Environment); got != ExitPartial {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", got, ExitPartial, env.stderr.String())
	}

	html := filepath.Join(dir, "Report.html")
	assertExists(t, html)
	assertMissing(t, filepath.Join(dir, "Report.pdf"))

	stderr := env.stderr.String()
	for _, want := range []string{markerWarn, "final PDF rendering failed", html, "--renderer chrome"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr should contain %q, got:\n%s", want, stderr)
		}
	}
}

func TestRunMain_RendererSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		flags    []string
		wantTool string
		wantArg  string
	}{
		{"weasyprint by default", nil, "weasyprint", ""},
		{"wkhtmltopdf ignores load errors", []string{"--renderer", "wkhtmltopdf"}, "wkhtmltopdf", "--load-error-handling"},
		{"custom weasyprint binary", []string{"--renderer-bin", "/opt/weasy/weasyprint"}, "/opt/weasy/weasyprint", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := writeMarkdown(t, "Report.md")
			tb := &toolbox{htmlOK: true, printOK: true}
			env := newTestEnv(tb, nil)

			args := append([]string{"mdpress"}, tt.flags...)
			if got := runMain(append(args, src), env.Environment); got != ExitSuccess {
				t.Fatalf("runMain() = %d, want %d\nstderr: %s", got, ExitSuccess, env.stderr.String())
			}

			call := tb.lastCall()
			if len(call) == 0 || call[0] != tt.wantTool {
				t.Fatalf("last call = %q, want %s", call, tt.wantTool)
			}
			if tt.wantArg != "" && !slices.Contains(call, tt.wantArg) {
				t.Errorf("call %q should contain %q", call, tt.wantArg)
			}
			assertExists(t, filepath.Join(filepath.Dir(src), "Report.pdf"))
		})
	}
}

func TestRunMain_Failure(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	dir := filepath.Dir(src)
	env := newTestEnv(&toolbox{printOK: true}, nil)

	if got := runMain([]string{"mdpress", src}, env.Environment); got != ExitFailure {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", got, ExitFailure, env.stderr.String())
	}

	assertMissing(t, filepath.Join(dir, "Report.html"))
	assertMissing(t, filepath.Join(dir, "Report.pdf"))
	if !strings.Contains(env.stderr.String(), "intermediate HTML rendering failed") {
		t.Errorf("stderr should name the failed stage, got:\n%s", env.stderr.String())
	}
}

func TestRunMain_QuietSuppressesSuccess(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	env := newTestEnv(&toolbox{htmlOK: true, printOK: true}, nil)

	if got := runMain([]string{"mdpress", "-q", src}, env.Environment); got != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d", got, ExitSuccess)
	}
	if env.stdout.Len() != 0 || env.stderr.Len() != 0 {
		t.Errorf("quiet success should print nothing, got stdout=%q stderr=%q", env.stdout.String(), env.stderr.String())
	}
}

func TestRunMain_OutputAndKeepHTML(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	out := filepath.Join(t.TempDir(), "nested", "out.pdf")
	env := newTestEnv(&toolbox{htmlOK: true, printOK: true}, nil)

	code := runMain([]string{"mdpress", "--no-direct", "--keep-html", "-o", out, src}, env.Environment)
	if code != ExitSuccess {
		t.Fatalf("runMain() = %d, want %d\nstderr: %s", code, ExitSuccess, env.stderr.String())
	}

	assertExists(t, out)
	assertExists(t, filepath.Join(filepath.Dir(src), "Report.html"))
	if strings.Contains(env.stderr.String(), "direct conversion skipped") {
		t.Errorf("--no-direct should not report a direct failure, got:\n%s", env.stderr.String())
	}
	if !strings.Contains(env.stdout.String(), "html: ") {
		t.Errorf("kept HTML should be reported, got:\n%s", env.stdout.String())
	}
}

func TestRunMain_Idempotent(t *testing.T) {
	t.Parallel()

	src := writeMarkdown(t, "Report.md")
	dir := filepath.Dir(src)

	for i := range 2 {
		env := newTestEnv(&toolbox{htmlOK: true, printOK: true}, nil)
		if got := runMain([]string{"mdpress", src}, env.Environment); got != ExitSuccess {
			t.Fatalf("run %d: runMain() = %d, want %d", i+1, got, ExitSuccess)
		}
		assertExists(t, filepath.Join(dir, "Report.pdf"))
		assertMissing(t, filepath.Join(dir, "Report.html"))
	}
}

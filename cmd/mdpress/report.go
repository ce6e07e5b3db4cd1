package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	mdpress "github.com/alnah/go-mdpress"
	"github.com/alnah/go-mdpress/internal/hints"
	"github.com/charmbracelet/lipgloss"
)

// Status markers shared by the convert report and doctor.
const (
	markerOK    = "[OK]"
	markerWarn  = "[WARN]"
	markerError = "[ERROR]"
)

// markers renders status markers for one writer.
// Colors are dropped automatically when the writer is not a terminal.
type markers struct {
	ok, warn, err lipgloss.Style
}

func newMarkers(w io.Writer) markers {
	r := lipgloss.NewRenderer(w)
	return markers{
		ok:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		warn: r.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		err:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
	}
}

func (m markers) OK() string    { return m.ok.Render(markerOK) }
func (m markers) Warn() string  { return m.warn.Render(markerWarn) }
func (m markers) Error() string { return m.err.Render(markerError) }

// reporter prints conversion outcomes.
// Success lines go to stdout, warnings and errors to stderr.
type reporter struct {
	stdout, stderr io.Writer
	out, errOut    markers
	quiet, verbose bool
}

func newReporter(env *Environment, quiet, verbose bool) *reporter {
	return &reporter{
		stdout:  env.Stdout,
		stderr:  env.Stderr,
		out:     newMarkers(env.Stdout),
		errOut:  newMarkers(env.Stderr),
		quiet:   quiet,
		verbose: verbose,
	}
}

// result prints a finished conversion.
func (r *reporter) result(req *mdpress.Request, res *mdpress.Result) {
	if res.DirectErr != nil && !r.quiet {
		fmt.Fprintf(r.stderr, "%s direct conversion skipped: %v\n", r.errOut.Warn(), res.DirectErr)
	}

	switch res.Outcome {
	case mdpress.OutcomeSuccess:
		if r.quiet {
			return
		}
		fmt.Fprintf(r.stdout, "%s %s -> %s", r.out.OK(), req.Source, res.Output)
		if r.verbose {
			fmt.Fprintf(r.stdout, " (%s, %s)", res.Route, formatDuration(res.Duration))
		}
		fmt.Fprintln(r.stdout)
		if res.Intermediate != "" {
			fmt.Fprintf(r.stdout, "  html: %s\n", res.Intermediate)
		}
	case mdpress.OutcomePartialSuccess:
		fmt.Fprintf(r.stderr, "%s %s: %v%s%s\n", r.errOut.Warn(), req.Source, res.FinalErr,
			hints.ForPartialSuccess(res.Intermediate), hintFor(res.FinalErr))
	}
}

// failure prints an error that ended the run.
func (r *reporter) failure(err error) {
	fmt.Fprintf(r.stderr, "%s %v%s\n", r.errOut.Error(), err, hintFor(err))
}

// hintFor returns an actionable hint for known failure causes, or "".
func hintFor(err error) string {
	var toolErr *mdpress.ToolError
	if errors.As(err, &toolErr) {
		switch {
		case toolErr.Kind == mdpress.FailureNotFound:
			return hints.ForToolNotFound(toolErr.Tool)
		case toolErr.Kind == mdpress.FailureTimeout:
			return hints.ForTimeout()
		case errors.Is(err, mdpress.ErrBrowserConnect):
			return hints.ForBrowserConnect()
		}
	}
	if errors.Is(err, mdpress.ErrOutputDir) {
		return hints.ForOutputDirectory()
	}
	return ""
}

// formatDuration rounds to a readable precision.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

package mdpress

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Request describes one conversion: a Markdown source and a PDF destination.
type Request struct {
	Source      string
	Destination string
}

// Validate checks that both paths are set and that the source is an existing file.
// It touches the filesystem but never spawns a process.
func (r Request) Validate() error {
	if r.Source == "" {
		return ErrEmptySource
	}
	if r.Destination == "" {
		return ErrEmptyDestination
	}
	info, err := os.Stat(r.Source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSourceNotFound, r.Source)
		}
		return fmt.Errorf("checking source %s: %w", r.Source, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrSourceIsDir, r.Source)
	}
	return nil
}

// Outcome classifies a finished conversion.
type Outcome int

// The zero value is OutcomeFailure so an unset Result never reads as success.
const (
	OutcomeFailure Outcome = iota
	OutcomeSuccess
	OutcomePartialSuccess
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartialSuccess:
		return "partial-success"
	default:
		return "failure"
	}
}

// Route identifies which conversion path produced, or tried to produce, the PDF.
type Route int

const (
	RouteNone Route = iota
	RouteDirect
	RouteFallback
)

func (r Route) String() string {
	switch r {
	case RouteDirect:
		return "direct"
	case RouteFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Result reports what a conversion did.
type Result struct {
	Outcome Outcome
	Route   Route

	// Output is the PDF path when one was produced.
	Output string

	// Intermediate is the HTML path left on disk, set only when it was retained
	// (partial success or WithKeepIntermediate).
	Intermediate string

	// DirectErr explains why the direct path was skipped or failed.
	// Nil when the direct path succeeded or was disabled.
	DirectErr error

	// FinalErr holds the final-stage failure behind a partial success.
	FinalErr error

	Duration time.Duration
}

// FailureKind tags why an external tool call did not succeed.
type FailureKind int

const (
	FailureNotFound FailureKind = iota + 1
	FailureExecution
	FailureTimeout
)

func (k FailureKind) String() string {
	switch k {
	case FailureNotFound:
		return "not found"
	case FailureExecution:
		return "execution error"
	case FailureTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// ToolError is the structured failure of one external tool invocation.
type ToolError struct {
	Tool     string
	Kind     FailureKind
	ExitCode int    // -1 when the process did not exit normally
	Stderr   string // trimmed, possibly empty
	Err      error
}

func (e *ToolError) Error() string {
	switch e.Kind {
	case FailureNotFound:
		return fmt.Sprintf("%s: not installed or not in PATH", e.Tool)
	case FailureTimeout:
		return fmt.Sprintf("%s: timed out", e.Tool)
	}
	if e.ExitCode < 0 && e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Tool, e.Err)
	}
	msg := fmt.Sprintf("%s: exited with status %d", e.Tool, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// Is matches ErrToolUnavailable for missing tools and ErrToolExecution otherwise.
func (e *ToolError) Is(target error) bool {
	switch target {
	case ErrToolUnavailable:
		return e.Kind == FailureNotFound
	case ErrToolExecution:
		return e.Kind == FailureExecution || e.Kind == FailureTimeout
	}
	return false
}

// CommandResult holds the captured output of a finished process.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

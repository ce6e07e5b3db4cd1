package main

import (
	"errors"
	"os"

	mdpress "github.com/alnah/go-mdpress"
	"github.com/alnah/go-mdpress/internal/config"
)

// Exit codes for the mdpress CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // PDF produced
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or settings
	ExitIO      = 3 // Source not found, output not writable
	ExitFailure = 4 // Intermediate rendering failed, no artifact produced
	ExitPartial = 5 // HTML produced, PDF rendering failed
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Conversion failures (exit 4)
	if errors.Is(err, mdpress.ErrIntermediateRender) {
		return ExitFailure
	}

	// Partial success (exit 5)
	if errors.Is(err, mdpress.ErrFinalRender) {
		return ExitPartial
	}

	// I/O errors (exit 3)
	if errors.Is(err, mdpress.ErrSourceNotFound) ||
		errors.Is(err, mdpress.ErrSourceIsDir) ||
		errors.Is(err, mdpress.ErrOutputDir) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidConfig) ||
		errors.Is(err, mdpress.ErrEmptySource) ||
		errors.Is(err, mdpress.ErrEmptyDestination) ||
		errors.Is(err, mdpress.ErrInvalidEngine) ||
		errors.Is(err, mdpress.ErrInvalidMargin) ||
		errors.Is(err, mdpress.ErrInvalidFontSize) ||
		errors.Is(err, mdpress.ErrInvalidStylesheet) ||
		errors.Is(err, ErrInvalidHTMLEngine) ||
		errors.Is(err, ErrInvalidRenderer) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrTooManyArgs) ||
		errors.Is(err, ErrInvalidFlag) {
		return ExitUsage
	}

	return ExitGeneral
}

// exitCodeForResult maps a finished conversion to an exit code.
func exitCodeForResult(res *mdpress.Result) int {
	switch res.Outcome {
	case mdpress.OutcomeSuccess:
		return ExitSuccess
	case mdpress.OutcomePartialSuccess:
		return ExitPartial
	default:
		return ExitFailure
	}
}

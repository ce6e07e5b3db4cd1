package mdpress

import "errors"

// Sentinel errors for library operations.
var (
	// Request validation errors.
	ErrEmptySource      = errors.New("source path cannot be empty")
	ErrEmptyDestination = errors.New("destination path cannot be empty")
	ErrSourceNotFound   = errors.New("source file not found")
	ErrSourceIsDir      = errors.New("source path is a directory")
	ErrOutputDir        = errors.New("cannot create output directory")

	// External tool errors.
	ErrToolUnavailable = errors.New("tool not available")
	ErrToolExecution   = errors.New("tool execution failed")

	// Pipeline stage errors.
	ErrIntermediateRender = errors.New("intermediate HTML rendering failed")
	ErrFinalRender        = errors.New("final PDF rendering failed")

	// Settings validation errors.
	ErrInvalidEngine     = errors.New("invalid PDF engine")
	ErrInvalidMargin     = errors.New("invalid margin")
	ErrInvalidFontSize   = errors.New("invalid font size")
	ErrInvalidStylesheet = errors.New("invalid stylesheet reference")
	ErrNoRenderer        = errors.New("no renderer configured")
)

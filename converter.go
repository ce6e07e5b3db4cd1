package mdpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/alnah/go-mdpress/internal/fileutil"
)

// DefaultTimeout bounds each external stage.
const DefaultTimeout = 2 * time.Minute

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Converter runs the two-tier conversion: a direct Markdown-to-PDF attempt,
// then Markdown to HTML to PDF when the direct path is unavailable.
// Create with NewConverter, use Convert, and Close when done.
type Converter struct {
	direct   DirectRenderer
	markdown MarkdownRenderer
	printer  HTMLPrinter

	pandoc           *Pandoc
	noDirect         bool
	timeout          time.Duration
	naming           IntermediateNaming
	keepIntermediate bool
	logger           Logger
	now              func() time.Time
}

// Option configures a Converter.
type Option func(*Converter)

// WithRunner sets the command runner used by pandoc and the CLI-driven printers.
func WithRunner(r CommandRunner) Option {
	return func(c *Converter) {
		c.pandoc.Runner = r
		switch p := c.printer.(type) {
		case *Weasyprint:
			p.Runner = r
		case *Wkhtmltopdf:
			p.Runner = r
		}
	}
}

// WithPandoc replaces the default pandoc settings. The same instance serves
// as direct renderer and markdown renderer unless those are set explicitly.
func WithPandoc(p *Pandoc) Option {
	return func(c *Converter) {
		if c.direct == DirectRenderer(c.pandoc) {
			c.direct = p
		}
		if c.markdown == MarkdownRenderer(c.pandoc) {
			c.markdown = p
		}
		c.pandoc = p
	}
}

// WithDirectRenderer sets the one-step Markdown-to-PDF renderer.
func WithDirectRenderer(r DirectRenderer) Option {
	return func(c *Converter) { c.direct = r }
}

// WithMarkdownRenderer sets the renderer producing the intermediate HTML.
func WithMarkdownRenderer(r MarkdownRenderer) Option {
	return func(c *Converter) { c.markdown = r }
}

// WithHTMLPrinter sets the renderer turning the intermediate HTML into a PDF.
func WithHTMLPrinter(p HTMLPrinter) Option {
	return func(c *Converter) { c.printer = p }
}

// WithoutDirect skips the direct attempt and always takes the fallback path.
func WithoutDirect() Option {
	return func(c *Converter) { c.noDirect = true }
}

// WithTimeout sets the deadline applied to each external stage.
// Panics if d is not positive (programmer error).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("mdpress: WithTimeout duration must be positive")
	}
	return func(c *Converter) { c.timeout = d }
}

// WithIntermediateNaming selects how the fallback HTML file is named.
func WithIntermediateNaming(n IntermediateNaming) Option {
	return func(c *Converter) { c.naming = n }
}

// WithKeepIntermediate keeps the fallback HTML file after a successful conversion.
func WithKeepIntermediate() Option {
	return func(c *Converter) { c.keepIntermediate = true }
}

// WithLogger sets the diagnostic logger. Nil restores the no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Converter) {
		if l == nil {
			l = noopLogger{}
		}
		c.logger = l
	}
}

// NewConverter creates a Converter using pandoc for both Markdown stages and
// weasyprint as HTML printer. Returns an error if the pandoc settings are invalid.
func NewConverter(opts ...Option) (*Converter, error) {
	p := NewPandoc()
	c := &Converter{
		direct:   p,
		markdown: p,
		printer:  NewWeasyprint(),
		pandoc:   p,
		timeout:  DefaultTimeout,
		logger:   noopLogger{},
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.pandoc.Validate(); err != nil {
		return nil, err
	}
	if c.markdown == nil || c.printer == nil {
		return nil, ErrNoRenderer
	}
	return c, nil
}

// Convert produces req.Destination from req.Source.
//
// A request error (missing source, empty path) is returned before any process starts.
// A failed intermediate render returns OutcomeFailure with an error wrapping
// ErrIntermediateRender. A failed final render is not an error: the result is
// OutcomePartialSuccess with the HTML kept on disk and FinalErr set.
func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	start := c.now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := fileutil.EnsureDir(filepath.Dir(req.Destination), dirPermissions); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputDir, err)
	}

	res := &Result{}
	finish := func(r *Result, err error) (*Result, error) {
		r.Duration = c.now().Sub(start)
		return r, err
	}

	if c.direct != nil && !c.noDirect {
		res.Route = RouteDirect
		before := snapshotFile(req.Destination)
		err := c.stage(ctx, func(ctx context.Context) error {
			return c.direct.RenderPDF(ctx, req.Source, req.Destination)
		})
		if err == nil {
			c.logger.Info("direct conversion succeeded", "source", req.Source, "output", req.Destination)
			res.Outcome = OutcomeSuccess
			res.Output = req.Destination
			return finish(res, nil)
		}
		c.discardLeftover(req.Destination, before)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return finish(res, ctxErr)
		}
		res.DirectErr = err
		c.logDirectFailure(err)
	}

	res.Route = RouteFallback
	htmlPath := IntermediatePath(req.Source, c.naming)
	c.logger.Debug("rendering intermediate HTML", "source", req.Source, "html", htmlPath)

	err := c.stage(ctx, func(ctx context.Context) error {
		return c.markdown.RenderHTML(ctx, req.Source, htmlPath)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return finish(res, ctxErr)
		}
		c.logger.Error("intermediate rendering failed", "html", htmlPath, "error", err)
		return finish(res, fmt.Errorf("%w: %w", ErrIntermediateRender, err))
	}

	before := snapshotFile(req.Destination)
	err = c.stage(ctx, func(ctx context.Context) error {
		return c.printer.PrintPDF(ctx, htmlPath, req.Destination)
	})
	if err != nil {
		c.discardLeftover(req.Destination, before)
		c.logger.Warn("final rendering failed, keeping intermediate HTML", "html", htmlPath, "error", err)
		res.Outcome = OutcomePartialSuccess
		res.Intermediate = htmlPath
		res.FinalErr = fmt.Errorf("%w: %w", ErrFinalRender, err)
		return finish(res, nil)
	}

	res.Outcome = OutcomeSuccess
	res.Output = req.Destination
	if c.keepIntermediate {
		res.Intermediate = htmlPath
	} else if rmErr := os.Remove(htmlPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		c.logger.Debug("could not remove intermediate HTML", "html", htmlPath, "error", rmErr)
	}
	c.logger.Info("fallback conversion succeeded", "source", req.Source, "output", req.Destination)
	return finish(res, nil)
}

// Close releases renderers that hold resources, such as a running browser.
func (c *Converter) Close() error {
	var errs []error
	seen := map[any]bool{}
	for _, r := range []any{c.direct, c.markdown, c.printer} {
		closer, ok := r.(io.Closer)
		if !ok || seen[r] {
			continue
		}
		seen[r] = true
		if err := closer.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// fileState is what a path looked like before a stage wrote to it.
type fileState struct {
	exists  bool
	size    int64
	modTime time.Time
}

func snapshotFile(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{exists: true, size: info.Size(), modTime: info.ModTime()}
}

// discardLeftover removes a destination that a failed stage created or rewrote,
// so a failed stage never leaves a PDF behind. An untouched file is kept.
func (c *Converter) discardLeftover(path string, before fileState) {
	after := snapshotFile(path)
	if !after.exists {
		return
	}
	if before.exists && after.size == before.size && after.modTime.Equal(before.modTime) {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		c.logger.Debug("could not remove partial output", "output", path, "error", err)
		return
	}
	c.logger.Debug("removed partial output", "output", path)
}

// stage runs fn under the per-stage deadline.
func (c *Converter) stage(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return fn(ctx)
}

// logDirectFailure reports why the direct path was abandoned. Both causes fall back,
// but the log keeps them apart.
func (c *Converter) logDirectFailure(err error) {
	var toolErr *ToolError
	if !errors.As(err, &toolErr) {
		c.logger.Warn("direct conversion failed, falling back", "error", err)
		return
	}
	switch toolErr.Kind {
	case FailureNotFound:
		c.logger.Warn("direct conversion unavailable, falling back", "tool", toolErr.Tool)
	default:
		c.logger.Warn("direct conversion failed, falling back",
			"tool", toolErr.Tool, "kind", toolErr.Kind.String(), "exit_code", toolErr.ExitCode, "stderr", toolErr.Stderr)
	}
}

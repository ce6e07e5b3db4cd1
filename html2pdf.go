package mdpress

import (
	"context"
	"fmt"
)

// HTML-to-PDF renderers used by the fallback path.
const (
	DefaultWeasyprintBin  = "weasyprint"
	DefaultWkhtmltopdfBin = "wkhtmltopdf"
)

// millimetersPerInch converts margins for wkhtmltopdf, which expects unit lengths.
const millimetersPerInch = 25.4

// HTMLPrinter renders an HTML file to a PDF file.
type HTMLPrinter interface {
	PrintPDF(ctx context.Context, htmlPath, destination string) error
}

var (
	_ HTMLPrinter = (*Weasyprint)(nil)
	_ HTMLPrinter = (*Wkhtmltopdf)(nil)
)

// Weasyprint drives the weasyprint CLI. Page size and margins come from the
// linked stylesheet (@page rules).
type Weasyprint struct {
	Bin    string
	Runner CommandRunner
}

// NewWeasyprint creates a Weasyprint with a real runner.
func NewWeasyprint() *Weasyprint {
	return &Weasyprint{Bin: DefaultWeasyprintBin, Runner: &ExecRunner{}}
}

// PrintPDF renders htmlPath to destination.
func (w *Weasyprint) PrintPDF(ctx context.Context, htmlPath, destination string) error {
	bin := w.Bin
	if bin == "" {
		bin = DefaultWeasyprintBin
	}
	_, err := runTool(ctx, runnerOrDefault(w.Runner), bin, htmlPath, destination)
	return err
}

// Wkhtmltopdf drives the wkhtmltopdf CLI.
type Wkhtmltopdf struct {
	Bin          string
	MarginInches float64
	Runner       CommandRunner
}

// NewWkhtmltopdf creates a Wkhtmltopdf with default margins and a real runner.
func NewWkhtmltopdf() *Wkhtmltopdf {
	return &Wkhtmltopdf{
		Bin:          DefaultWkhtmltopdfBin,
		MarginInches: DefaultMarginInches,
		Runner:       &ExecRunner{},
	}
}

// PrintPDF renders htmlPath to destination.
// Local file access is enabled so the linked stylesheet next to the HTML resolves,
// and load errors are ignored so a missing stylesheet does not fail the render.
func (w *Wkhtmltopdf) PrintPDF(ctx context.Context, htmlPath, destination string) error {
	bin := w.Bin
	if bin == "" {
		bin = DefaultWkhtmltopdfBin
	}
	_, err := runTool(ctx, runnerOrDefault(w.Runner), bin, w.args(htmlPath, destination)...)
	return err
}

func (w *Wkhtmltopdf) args(htmlPath, destination string) []string {
	margin := w.MarginInches
	if margin == 0 {
		margin = DefaultMarginInches
	}
	mm := fmt.Sprintf("%gmm", margin*millimetersPerInch)
	return []string{
		"--quiet",
		"--enable-local-file-access",
		"--load-error-handling", "ignore",
		"--margin-top", mm,
		"--margin-right", mm,
		"--margin-bottom", mm,
		"--margin-left", mm,
		htmlPath,
		destination,
	}
}

func runnerOrDefault(r CommandRunner) CommandRunner {
	if r == nil {
		return &ExecRunner{}
	}
	return r
}

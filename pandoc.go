package mdpress

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Presentation defaults for the direct path.
const (
	DefaultPandocBin     = "pandoc"
	DefaultEngine        = "weasyprint"
	DefaultMarginInches  = 1.0
	DefaultFontSizePt    = 11
	DefaultStylesheet    = "style.css"
	minMarginInches      = 0.25
	maxMarginInches      = 3.0
	minFontSizePt        = 6
	maxFontSizePt        = 72
	markdownInputFormat  = "markdown-fancy_lists"
	htmlOutputFormat     = "html5"
	pdfEngineFlagPrefix  = "--pdf-engine="
	standaloneFlag       = "--standalone"
	stylesheetFlag       = "-c"
	variableFlag         = "-V"
	metadataFlag         = "--metadata"
	outputFlag           = "-o"
	fromFlag             = "-f"
	toFlag               = "-t"
	versionFlag          = "--version"
	pageTitleMetadataKey = "pagetitle="
)

// engineFamily groups pandoc PDF engines by how they take page margins.
type engineFamily int

const (
	familyOther engineFamily = iota
	familyLaTeX
	familyHTML
)

// pdfEngines lists the engines pandoc accepts for --pdf-engine.
var pdfEngines = map[string]engineFamily{
	"pdflatex":    familyLaTeX,
	"lualatex":    familyLaTeX,
	"xelatex":     familyLaTeX,
	"latexmk":     familyLaTeX,
	"tectonic":    familyLaTeX,
	"weasyprint":  familyHTML,
	"wkhtmltopdf": familyHTML,
	"prince":      familyHTML,
	"pagedjs-cli": familyHTML,
	"context":     familyOther,
	"groff":       familyOther,
	"pdfroff":     familyOther,
	"typst":       familyOther,
}

// DirectRenderer renders Markdown straight to PDF in one step.
type DirectRenderer interface {
	RenderPDF(ctx context.Context, source, destination string) error
}

// MarkdownRenderer renders Markdown to a standalone HTML file.
type MarkdownRenderer interface {
	RenderHTML(ctx context.Context, source, destination string) error
}

// Compile-time interface checks.
var (
	_ DirectRenderer   = (*Pandoc)(nil)
	_ MarkdownRenderer = (*Pandoc)(nil)
)

// Pandoc drives the pandoc CLI for both the direct and the intermediate stage.
type Pandoc struct {
	Bin          string
	Engine       string
	MarginInches float64
	FontSizePt   int
	Stylesheet   string
	Runner       CommandRunner
}

// NewPandoc creates a Pandoc with default presentation settings and a real runner.
func NewPandoc() *Pandoc {
	return &Pandoc{
		Bin:          DefaultPandocBin,
		Engine:       DefaultEngine,
		MarginInches: DefaultMarginInches,
		FontSizePt:   DefaultFontSizePt,
		Stylesheet:   DefaultStylesheet,
		Runner:       &ExecRunner{},
	}
}

// Validate checks the presentation settings.
func (p *Pandoc) Validate() error {
	if _, ok := pdfEngines[p.Engine]; !ok {
		return fmt.Errorf("%w: %q (available: %s)", ErrInvalidEngine, p.Engine, strings.Join(PDFEngines(), ", "))
	}
	if err := validateMargin(p.MarginInches); err != nil {
		return err
	}
	if p.FontSizePt < minFontSizePt || p.FontSizePt > maxFontSizePt {
		return fmt.Errorf("%w: %dpt (must be between %d and %d)", ErrInvalidFontSize, p.FontSizePt, minFontSizePt, maxFontSizePt)
	}
	return validateStylesheet(p.Stylesheet)
}

// RenderPDF converts source to destination with the configured PDF engine.
// It reads the same Markdown dialect as RenderHTML so both paths render alike.
func (p *Pandoc) RenderPDF(ctx context.Context, source, destination string) error {
	_, err := runTool(ctx, p.runner(), p.bin(), p.pdfArgs(source, destination)...)
	return err
}

// RenderHTML converts source to a standalone HTML document that links the stylesheet.
// Uses -f markdown-fancy_lists so letter markers (A), B)) stay literal text.
func (p *Pandoc) RenderHTML(ctx context.Context, source, destination string) error {
	_, err := runTool(ctx, p.runner(), p.bin(), p.htmlArgs(source, destination)...)
	return err
}

// Version returns the first line of `pandoc --version`.
func (p *Pandoc) Version(ctx context.Context) (string, error) {
	res, err := runTool(ctx, p.runner(), p.bin(), versionFlag)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(res.Stdout, "\n")
	return strings.TrimSpace(line), nil
}

func (p *Pandoc) pdfArgs(source, destination string) []string {
	margin := formatInches(p.MarginInches)
	args := []string{
		source,
		fromFlag, markdownInputFormat,
		outputFlag, destination,
		standaloneFlag,
		pdfEngineFlagPrefix + p.Engine,
		variableFlag, fmt.Sprintf("fontsize=%dpt", p.FontSizePt),
	}

	family := pdfEngines[p.Engine]
	if family == familyLaTeX || family == familyOther {
		args = append(args, variableFlag, "geometry:margin="+margin)
	}
	if family == familyHTML || family == familyOther {
		for _, side := range []string{"top", "right", "bottom", "left"} {
			args = append(args, variableFlag, "margin-"+side+"="+margin)
		}
	}
	return args
}

func (p *Pandoc) htmlArgs(source, destination string) []string {
	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	return []string{
		source,
		fromFlag, markdownInputFormat,
		toFlag, htmlOutputFormat,
		outputFlag, destination,
		standaloneFlag,
		stylesheetFlag, p.stylesheet(),
		metadataFlag, pageTitleMetadataKey + stem,
	}
}

func (p *Pandoc) bin() string {
	if p.Bin == "" {
		return DefaultPandocBin
	}
	return p.Bin
}

func (p *Pandoc) stylesheet() string {
	if p.Stylesheet == "" {
		return DefaultStylesheet
	}
	return p.Stylesheet
}

func (p *Pandoc) runner() CommandRunner {
	if p.Runner == nil {
		return &ExecRunner{}
	}
	return p.Runner
}

// PDFEngines returns the accepted --pdf-engine names in alphabetical order.
func PDFEngines() []string {
	names := make([]string, 0, len(pdfEngines))
	for name := range pdfEngines {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func validateMargin(inches float64) error {
	if inches < minMarginInches || inches > maxMarginInches {
		return fmt.Errorf("%w: %.2fin (must be between %.2f and %.2f)", ErrInvalidMargin, inches, minMarginInches, maxMarginInches)
	}
	return nil
}

func validateStylesheet(ref string) error {
	if strings.ContainsRune(ref, 0) {
		return fmt.Errorf("%w: contains null byte", ErrInvalidStylesheet)
	}
	return nil
}

// formatInches renders a length the way pandoc variables expect, e.g. "1in", "0.75in".
func formatInches(v float64) string {
	return fmt.Sprintf("%gin", v)
}

package main

import (
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// pageFlags holds presentation flags passed to the direct engine and renderers.
type pageFlags struct {
	margin   float64
	fontSize int
}

// pipelineFlags selects the tools used by each stage.
type pipelineFlags struct {
	engine      string
	noDirect    bool
	htmlEngine  string
	stylesheet  string
	renderer    string
	rendererBin string
	pandocBin   string
}

// intermediateFlags controls the fallback HTML file.
type intermediateFlags struct {
	keep   bool
	unique bool
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common       commonFlags
	output       string
	timeout      string
	page         pageFlags
	pipeline     pipelineFlags
	intermediate intermediateFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log each conversion step")
}

// addPageFlags adds presentation flags to a FlagSet.
// Zero values mean "not set" so config and defaults apply.
func addPageFlags(fs *flag.FlagSet, f *pageFlags) {
	fs.Float64Var(&f.margin, "margin", 0, "page margin in inches (0.25-3.0)")
	fs.IntVar(&f.fontSize, "font-size", 0, "base font size in points (6-72)")
}

// addPipelineFlags adds tool selection flags to a FlagSet.
func addPipelineFlags(fs *flag.FlagSet, f *pipelineFlags) {
	fs.StringVar(&f.engine, "engine", "", "pandoc --pdf-engine for the direct path")
	fs.BoolVar(&f.noDirect, "no-direct", false, "skip the direct path")
	fs.StringVar(&f.htmlEngine, "html-engine", "", "intermediate HTML engine: pandoc, goldmark")
	fs.StringVar(&f.stylesheet, "stylesheet", "", "stylesheet linked from the intermediate HTML")
	fs.StringVar(&f.renderer, "renderer", "", "HTML-to-PDF renderer: weasyprint, wkhtmltopdf, chrome")
	fs.StringVar(&f.rendererBin, "renderer-bin", "", "renderer executable path")
	fs.StringVar(&f.pandocBin, "pandoc-bin", "", "pandoc executable path")
}

// addIntermediateFlags adds intermediate file flags to a FlagSet.
func addIntermediateFlags(fs *flag.FlagSet, f *intermediateFlags) {
	fs.BoolVar(&f.keep, "keep-html", false, "keep the intermediate HTML after success")
	fs.BoolVar(&f.unique, "unique-html", false, "add a random suffix to the intermediate HTML name")
}

// parseConvertFlags parses convert flags and returns positional args.
// Usage goes to usageOut on parse errors and -h.
func parseConvertFlags(args []string, usageOut io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("mdpress", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output PDF path")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-stage timeout (e.g., 30s, 2m)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addPageFlags(fs, &f.page)
	addPipelineFlags(fs, &f.pipeline)
	addIntermediateFlags(fs, &f.intermediate)

	fs.Usage = func() { printConvertUsage(usageOut) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

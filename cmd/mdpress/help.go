package main

import (
	"fmt"
	"io"
	"strings"

	mdpress "github.com/alnah/go-mdpress"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpress [flags] <input.md> [output.pdf]")
	fmt.Fprintln(w, "       mdpress <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  doctor     Check which conversion tools are available")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'mdpress help convert' for conversion flags.")
}

// printConvertUsage prints usage for the default convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpress [flags] <input.md> [output.pdf]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Convert a Markdown file to PDF. Tries pandoc with a PDF engine first,")
	fmt.Fprintln(w, "then falls back to Markdown -> HTML -> PDF.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input     Markdown file (optional if config has input.path)")
	fmt.Fprintln(w, "  output    PDF file (default: input with .pdf extension)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output PDF path")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-stage timeout (default 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Direct path:")
	fmt.Fprintln(w, "      --engine <name>       pandoc --pdf-engine (default weasyprint)")
	fmt.Fprintf(w, "                            One of: %s\n", strings.Join(mdpress.PDFEngines(), ", "))
	fmt.Fprintln(w, "      --no-direct           Skip the direct path")
	fmt.Fprintln(w, "      --pandoc-bin <path>   pandoc executable")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Fallback path:")
	fmt.Fprintln(w, "      --html-engine <s>     Markdown to HTML: pandoc, goldmark")
	fmt.Fprintln(w, "      --stylesheet <ref>    Stylesheet linked from the HTML (default style.css)")
	fmt.Fprintln(w, "      --renderer <s>        HTML to PDF: weasyprint, wkhtmltopdf, chrome")
	fmt.Fprintln(w, "      --renderer-bin <path> Renderer executable")
	fmt.Fprintln(w, "      --keep-html           Keep the intermediate HTML after success")
	fmt.Fprintln(w, "      --unique-html         Random suffix on the intermediate HTML name")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "      --margin <f>          Margin in inches (0.25-3.0, default 1)")
	fmt.Fprintln(w, "      --font-size <n>       Base font size in points (6-72, default 11)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Log each conversion step")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 general error, 2 usage or config error, 3 I/O error,")
	fmt.Fprintln(w, "  4 conversion failed, 5 HTML produced but PDF rendering failed")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: mdpress doctor [--json] [-c <config>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check pandoc, the PDF engine, and HTML renderers.")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "convert":
		printConvertUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: mdpress version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: mdpress help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}

// Package mdpress converts Markdown files to PDF by driving external tools,
// with a two-tier strategy that degrades instead of failing outright.
//
// # Quick Start
//
//	conv, err := mdpress.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	res, err := conv.Convert(ctx, mdpress.Request{
//	    Source:      "docs/Report.md",
//	    Destination: "docs/Report.pdf",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Outcome) // success, partial-success
//
// # Conversion Paths
//
// The direct path runs pandoc with --pdf-engine (weasyprint by default).
// When it fails for any reason, the fallback path runs:
//
//  1. Markdown to HTML next to the source, linking style.css
//  2. HTML to PDF with weasyprint (default), wkhtmltopdf or headless Chrome
//
// # Outcomes
//
// A Result is one of:
//
//   - OutcomeSuccess: the PDF exists at Request.Destination.
//   - OutcomePartialSuccess: the final stage failed; the HTML is kept and
//     Result.Intermediate names it. Convert returns a nil error.
//   - OutcomeFailure: the HTML stage failed; the error wraps ErrIntermediateRender.
//
// Request problems (empty or missing source, unwritable output directory) are
// returned as errors before any process starts. A PDF written by a stage that
// then failed is removed, so only OutcomeSuccess leaves a PDF behind.
//
// # Configuration
//
//	conv, err := mdpress.NewConverter(
//	    mdpress.WithTimeout(30*time.Second),
//	    mdpress.WithMarkdownRenderer(mdpress.NewGoldmark("style.css")),
//	    mdpress.WithHTMLPrinter(mdpress.NewChrome()),
//	    mdpress.WithIntermediateNaming(mdpress.NamingUnique),
//	)
//
// External tools are found on PATH. A missing tool is reported as a
// *ToolError matching ErrToolUnavailable; a tool that ran and failed matches
// ErrToolExecution.
package mdpress

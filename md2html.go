package mdpress

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// htmlTemplate wraps goldmark's fragment output in a complete HTML5 document.
// Arguments: title, stylesheet href, body.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<link rel="stylesheet" href="%s">
</head>
<body>
%s
</body>
</html>
`

var _ MarkdownRenderer = (*Goldmark)(nil)

// Goldmark renders Markdown to HTML in-process, so the fallback path
// can run on machines without pandoc.
type Goldmark struct {
	Stylesheet string
	md         goldmark.Markdown
}

// NewGoldmark creates a Goldmark renderer with GFM, footnotes and syntax highlighting.
func NewGoldmark(stylesheet string) *Goldmark {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // styled by the external stylesheet
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
		),
	)
	if stylesheet == "" {
		stylesheet = DefaultStylesheet
	}
	return &Goldmark{Stylesheet: stylesheet, md: md}
}

// RenderHTML reads source and writes a standalone HTML document to destination.
func (g *Goldmark) RenderHTML(ctx context.Context, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateStylesheet(g.Stylesheet); err != nil {
		return err
	}

	content, err := os.ReadFile(source) // #nosec G304 -- source is the user's input document
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}

	var body bytes.Buffer
	if err := g.md.Convert(content, &body); err != nil {
		return fmt.Errorf("converting %s: %w", source, err)
	}

	stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	doc := fmt.Sprintf(htmlTemplate, html.EscapeString(stem), html.EscapeString(g.Stylesheet), body.String())

	if err := os.WriteFile(destination, []byte(doc), filePermissions); err != nil { // #nosec G306 -- HTML output is meant to be shared
		return fmt.Errorf("writing %s: %w", destination, err)
	}
	return nil
}

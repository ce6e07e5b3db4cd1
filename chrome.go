package mdpress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// ChromeToolName identifies the headless browser in ToolError values.
const ChromeToolName = "chrome"

// US Letter page size in inches.
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
)

// Sentinel errors for browser rendering failures.
var (
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
)

var _ HTMLPrinter = (*Chrome)(nil)

// Chrome prints HTML to PDF with a headless Chrome/Chromium driven by go-rod.
// The browser is launched lazily and reused until Close.
type Chrome struct {
	// Bin is the browser executable. Empty means ROD_BROWSER_BIN, then a PATH lookup.
	Bin          string
	MarginInches float64
	Timeout      time.Duration

	lookPath func() (string, bool)
	browser  *rod.Browser
	launch   *launcher.Launcher
}

// NewChrome creates a Chrome printer with default margins.
func NewChrome() *Chrome {
	return &Chrome{
		MarginInches: DefaultMarginInches,
		Timeout:      DefaultTimeout,
		lookPath:     launcher.LookPath,
	}
}

// PrintPDF loads htmlPath as a file:// URL and writes the printed PDF to destination.
func (c *Chrome) PrintPDF(ctx context.Context, htmlPath, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	absPath, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", htmlPath, err)
	}
	if err := c.ensureBrowser(); err != nil {
		return err
	}

	page, err := c.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "file://" + filepath.ToSlash(absPath)})
	if err != nil {
		return c.toolError(ErrPageLoad, err)
	}
	defer func() { _ = page.Close() }()

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return &ToolError{Tool: ChromeToolName, Kind: FailureTimeout, ExitCode: -1, Err: context.DeadlineExceeded}
		}
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return c.toolError(ErrPageLoad, err)
	}

	reader, err := page.PDF(c.pdfOptions())
	if err != nil {
		return c.toolError(ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return c.toolError(ErrPDFGeneration, err)
	}

	if err := os.WriteFile(destination, pdf, filePermissions); err != nil { // #nosec G306 -- PDF output is meant to be shared
		return fmt.Errorf("writing %s: %w", destination, err)
	}
	return nil
}

// Close shuts down the browser if one was launched.
func (c *Chrome) Close() error {
	var err error
	if c.browser != nil {
		err = c.browser.Close()
		c.browser = nil
	}
	if c.launch != nil {
		c.launch.Kill()
		c.launch = nil
	}
	return err
}

// ensureBrowser launches and connects to the browser on first use.
// A missing browser is reported as FailureNotFound; rod's auto-download is never used.
func (c *Chrome) ensureBrowser() error {
	if c.browser != nil {
		return nil
	}

	bin, ok := c.resolveBin()
	if !ok {
		return &ToolError{
			Tool:     ChromeToolName,
			Kind:     FailureNotFound,
			ExitCode: -1,
			Err:      fmt.Errorf("%w: no Chrome/Chromium found (set ROD_BROWSER_BIN)", ErrBrowserConnect),
		}
	}

	l := launcher.New().Bin(bin).Headless(true)
	if os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("CI") == "true" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return c.toolError(ErrBrowserConnect, err)
	}

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return c.toolError(ErrBrowserConnect, err)
	}
	c.browser = browser
	c.launch = l
	return nil
}

func (c *Chrome) resolveBin() (string, bool) {
	if c.Bin != "" {
		return c.Bin, true
	}
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		return bin, true
	}
	lookPath := c.lookPath
	if lookPath == nil {
		lookPath = launcher.LookPath
	}
	return lookPath()
}

func (c *Chrome) pdfOptions() *proto.PagePrintToPDF {
	margin := c.MarginInches
	if margin == 0 {
		margin = DefaultMarginInches
	}
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(margin),
		MarginBottom:    floatPtr(margin),
		MarginLeft:      floatPtr(margin),
		MarginRight:     floatPtr(margin),
		PrintBackground: true,
	}
}

func (c *Chrome) toolError(sentinel, err error) error {
	return &ToolError{
		Tool:     ChromeToolName,
		Kind:     FailureExecution,
		ExitCode: -1,
		Err:      fmt.Errorf("%w: %v", sentinel, err),
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

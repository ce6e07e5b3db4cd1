package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	mdpress "github.com/alnah/go-mdpress"
	"github.com/alnah/go-mdpress/internal/config"
	"github.com/alnah/go-mdpress/internal/fileutil"
	flag "github.com/spf13/pflag"
)

// doctorVersionTimeout bounds the `pandoc --version` probe.
const doctorVersionTimeout = 10 * time.Second

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string     `json:"status"`
	Pandoc   toolInfo   `json:"pandoc"`
	Engine   toolInfo   `json:"engine"`
	Renderer toolInfo   `json:"renderer"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

// toolInfo holds detection results for one executable.
type toolInfo struct {
	Name    string `json:"name"`
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags or config.
func runDoctorCmd(args []string, env *Environment) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	jsonOutput := fs.Bool("json", false, "print results as JSON")
	configName := fs.StringP("config", "c", "", "config file name or path")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "%s %v\n", newMarkers(env.Stderr).Error(), err)
		printDoctorUsage(env.Stderr)
		return ExitUsage
	}

	cfg, err := loadConfig(*configName, env)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%s %v\n", newMarkers(env.Stderr).Error(), err)
		return exitCodeFor(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), doctorVersionTimeout)
	defer cancel()
	result := runDoctor(ctx, cfg, env)

	if *jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(ctx context.Context, cfg *config.Config, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkPandoc(ctx, result, cfg, env)
	checkEngine(result, cfg, env)
	checkRenderer(result, cfg, env)
	checkEnvironment(result, env)
	checkSystem(result)

	// Determine final status
	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}

	return result
}

// checkPandoc locates pandoc and reads its version.
// Missing pandoc is fatal unless goldmark renders the intermediate HTML.
func checkPandoc(ctx context.Context, result *doctorResult, cfg *config.Config, env *Environment) {
	result.Pandoc.Name = cfg.Pandoc.Bin
	path, err := env.LookPath(cfg.Pandoc.Bin)
	if err != nil {
		if strings.EqualFold(cfg.HTML.Engine, config.HTMLEngineGoldmark) {
			result.Warnings = append(result.Warnings,
				"pandoc not found: direct path unavailable, goldmark renders the HTML")
		} else {
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s not found: install pandoc or set pandoc.bin", cfg.Pandoc.Bin))
		}
		return
	}
	result.Pandoc.Found = true
	result.Pandoc.Path = path

	p := &mdpress.Pandoc{Bin: path, Runner: env.Runner}
	version, err := p.Version(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get pandoc version: %v", err))
		return
	}
	result.Pandoc.Version = version
}

// checkEngine locates the direct-path PDF engine.
// A missing engine only disables the direct path.
func checkEngine(result *doctorResult, cfg *config.Config, env *Environment) {
	result.Engine.Name = cfg.Direct.Engine
	if cfg.Direct.Disabled {
		return
	}
	path, err := env.LookPath(cfg.Direct.Engine)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("PDF engine %s not found: conversions will use the HTML fallback", cfg.Direct.Engine))
		return
	}
	result.Engine.Found = true
	result.Engine.Path = path
}

// checkRenderer locates the configured HTML-to-PDF renderer.
// A missing renderer is an error only when the direct path cannot run either.
func checkRenderer(result *doctorResult, cfg *config.Config, env *Environment) {
	name := strings.ToLower(cfg.Renderer.Name)
	if name == "" {
		name = config.RendererWeasyprint
	}
	result.Renderer.Name = name

	var path string
	var found bool
	switch name {
	case config.RendererChrome:
		path, found = cfg.Renderer.Bin, cfg.Renderer.Bin != ""
		if !found && result.Env.BrowserBin != "" {
			path, found = result.Env.BrowserBin, true
		}
		if !found {
			path, found = env.BrowserPath()
		}
	default:
		bin := cfg.Renderer.Bin
		if bin == "" {
			bin = name
		}
		var err error
		path, err = env.LookPath(bin)
		found = err == nil
	}

	if !found {
		msg := fmt.Sprintf("%s not found: the HTML fallback can only produce HTML", name)
		if result.Pandoc.Found && result.Engine.Found {
			result.Warnings = append(result.Warnings, msg)
		} else {
			result.Errors = append(result.Errors, msg)
		}
		return
	}
	result.Renderer.Found = true
	result.Renderer.Path = path
}

// checkEnvironment detects container and CI environments.
func checkEnvironment(result *doctorResult, env *Environment) {
	// Detect container (multi-signal approach)
	result.Env.Container, result.Env.ContainerHint = isContainer(env.Getenv)

	// Detect CI environments
	ciVars := []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}
	for _, v := range ciVars {
		if env.Getenv(v) != "" {
			result.Env.CI = true
			break
		}
	}

	// The sandbox only matters when chrome renders
	if result.Renderer.Name == config.RendererChrome &&
		(result.Env.Container || result.Env.CI) && result.Env.NoSandbox != "1" {
		result.Warnings = append(result.Warnings,
			"Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(getenv func(string) string) (bool, string) {
	// Explicit override (highest priority)
	if getenv("MDPRESS_CONTAINER") == "1" {
		return true, "MDPRESS_CONTAINER=1"
	}
	// Docker
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	// Podman / systemd-nspawn / general container indicator
	if v := getenv("container"); v != "" {
		return true, "container=" + v
	}
	// Kubernetes
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory is writable.
func checkSystem(result *doctorResult) {
	_, cleanup, err := fileutil.WriteTempFile("doctor", "txt")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", os.TempDir()))
		return
	}
	cleanup()
	result.System.TempWritable = true
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	m := newMarkers(w)

	fmt.Fprintln(w, "mdpress doctor")
	fmt.Fprintln(w)

	printTool(w, m, "Pandoc", r.Pandoc)
	printTool(w, m, "PDF engine", r.Engine)
	printTool(w, m, "HTML renderer", r.Renderer)

	// Environment section
	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  %s Platform: %s/%s\n", m.OK(), r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		fmt.Fprintf(w, "  %s Container: detected (%s)\n", m.OK(), r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintf(w, "  %s CI: detected\n", m.OK())
	}
	fmt.Fprintln(w)

	// System section
	fmt.Fprintln(w, "System")
	if r.System.TempWritable {
		fmt.Fprintf(w, "  %s Temp directory: writable\n", m.OK())
	} else {
		fmt.Fprintf(w, "  %s Temp directory: not writable\n", m.Error())
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  %s %s\n", m.Warn(), warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  %s %s\n", m.Error(), err)
		}
		fmt.Fprintln(w)
	}

	// Final status
	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}

// printTool prints one tool section.
func printTool(w io.Writer, m markers, title string, t toolInfo) {
	fmt.Fprintf(w, "%s (%s)\n", title, t.Name)
	if t.Found {
		fmt.Fprintf(w, "  %s Found at %s\n", m.OK(), t.Path)
		if t.Version != "" {
			fmt.Fprintf(w, "  %s Version: %s\n", m.OK(), t.Version)
		}
	} else {
		fmt.Fprintf(w, "  %s Not found\n", m.Warn())
	}
	fmt.Fprintln(w)
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	mdpress "github.com/alnah/go-mdpress"
	"github.com/alnah/go-mdpress/internal/config"
	"github.com/alnah/go-mdpress/internal/fileutil"
	"github.com/alnah/go-mdpress/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput           = errors.New("no input specified")
	ErrTooManyArgs       = errors.New("too many arguments")
	ErrInvalidFlag       = errors.New("invalid flag")
	ErrInvalidHTMLEngine = errors.New("invalid HTML engine")
	ErrInvalidRenderer   = errors.New("invalid renderer")
	ErrInvalidTimeout    = errors.New("invalid timeout")
)

// Environment variables read by the convert command.
const (
	envConfig  = "MDPRESS_CONFIG"  // config name or path when --config is absent
	envTimeout = "MDPRESS_TIMEOUT" // per-stage timeout when --timeout is absent
)

// runConvert converts one Markdown file.
// A returned error means no conversion outcome was reached, except for
// ErrIntermediateRender which comes with an OutcomeFailure result.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) (*mdpress.Request, *mdpress.Result, error) {
	if len(positionalArgs) > 2 {
		return nil, nil, fmt.Errorf("%w: got %d, want [input] [output]", ErrTooManyArgs, len(positionalArgs))
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return nil, nil, err
	}

	// Merge CLI flags into config (CLI wins)
	mergeFlags(flags, cfg)

	inputPath, err := resolveInputPath(positionalArgs, cfg)
	if err != nil {
		return nil, nil, err
	}
	req := &mdpress.Request{
		Source:      inputPath,
		Destination: resolveOutputPath(positionalArgs, flags.output, cfg, inputPath),
	}

	timeout, err := resolveTimeout(flags.timeout, env.Getenv(envTimeout), cfg.Timeout)
	if err != nil {
		return req, nil, err
	}

	logger := newLogger(flags.common.verbose)
	if logger != nil && !fileutil.IsMarkdown(inputPath) {
		logger.Warn("input has no Markdown extension, converting anyway", "source", inputPath)
	}

	opts, err := buildConverterOptions(cfg, timeout, env, logger)
	if err != nil {
		return req, nil, err
	}

	conv, err := mdpress.NewConverter(opts...)
	if err != nil {
		return req, nil, err
	}
	defer func() { _ = conv.Close() }()

	res, err := conv.Convert(ctx, *req)
	return req, res, err
}

// loadConfig loads the named config, or returns defaults when none is given.
// The flag takes precedence over MDPRESS_CONFIG.
func loadConfig(name string, env *Environment) (*config.Config, error) {
	if name == "" {
		name = env.Getenv(envConfig)
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && !fileutil.IsFilePath(name) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// mergeFlags overrides config values with explicitly set CLI flags.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	p := flags.pipeline
	if p.engine != "" {
		cfg.Direct.Engine = p.engine
	}
	if p.noDirect {
		cfg.Direct.Disabled = true
	}
	if p.htmlEngine != "" {
		cfg.HTML.Engine = p.htmlEngine
	}
	if p.stylesheet != "" {
		cfg.HTML.Stylesheet = p.stylesheet
	}
	if p.renderer != "" {
		cfg.Renderer.Name = p.renderer
	}
	if p.rendererBin != "" {
		cfg.Renderer.Bin = p.rendererBin
	}
	if p.pandocBin != "" {
		cfg.Pandoc.Bin = p.pandocBin
	}

	if flags.page.margin != 0 {
		cfg.Page.Margin = flags.page.margin
	}
	if flags.page.fontSize != 0 {
		cfg.Page.FontSize = flags.page.fontSize
	}

	if flags.intermediate.keep {
		cfg.Intermediate.Keep = true
	}
	if flags.intermediate.unique {
		cfg.Intermediate.Unique = true
	}
}

// resolveInputPath picks the source: first positional arg, then input.path.
func resolveInputPath(args []string, cfg *config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.Input.Path != "" {
		return cfg.Input.Path, nil
	}
	return "", ErrNoInput
}

// resolveOutputPath picks the destination: --output, second positional arg,
// output.path, then the input path with a .pdf extension.
func resolveOutputPath(args []string, flagOutput string, cfg *config.Config, inputPath string) string {
	if flagOutput != "" {
		return flagOutput
	}
	if len(args) > 1 && args[1] != "" {
		return args[1]
	}
	if cfg.Output.Path != "" {
		return cfg.Output.Path
	}
	return fileutil.ReplaceExt(inputPath, ".pdf")
}

// resolveTimeout applies precedence flag > environment > config > library default.
// An invalid flag value is an error; an invalid environment value is ignored.
func resolveTimeout(flagValue, envValue, cfgValue string) (time.Duration, error) {
	if flagValue != "" {
		d, err := time.ParseDuration(flagValue)
		if err != nil {
			return 0, fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flagValue, err)
		}
		if d <= 0 {
			return 0, fmt.Errorf("%w: must be positive, got %s", ErrInvalidTimeout, flagValue)
		}
		return d, nil
	}
	if envValue != "" {
		if d, err := time.ParseDuration(envValue); err == nil && d > 0 {
			return d, nil
		}
	}
	if cfgValue != "" {
		// Validated by config.LoadConfig.
		if d, err := time.ParseDuration(cfgValue); err == nil && d > 0 {
			return d, nil
		}
	}
	return mdpress.DefaultTimeout, nil
}

// buildConverterOptions translates the merged config into converter options.
func buildConverterOptions(cfg *config.Config, timeout time.Duration, env *Environment, logger mdpress.Logger) ([]mdpress.Option, error) {
	pandoc := mdpress.NewPandoc()
	pandoc.Bin = cfg.Pandoc.Bin
	pandoc.Engine = cfg.Direct.Engine
	pandoc.MarginInches = cfg.Page.Margin
	pandoc.FontSizePt = cfg.Page.FontSize
	pandoc.Stylesheet = cfg.HTML.Stylesheet
	pandoc.Runner = env.Runner

	opts := []mdpress.Option{
		mdpress.WithPandoc(pandoc),
		mdpress.WithTimeout(timeout),
		mdpress.WithLogger(logger),
	}

	switch strings.ToLower(cfg.HTML.Engine) {
	case "", config.HTMLEnginePandoc:
	case config.HTMLEngineGoldmark:
		opts = append(opts, mdpress.WithMarkdownRenderer(mdpress.NewGoldmark(pandoc.Stylesheet)))
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrInvalidHTMLEngine, cfg.HTML.Engine, config.HTMLEnginePandoc, config.HTMLEngineGoldmark)
	}

	switch strings.ToLower(cfg.Renderer.Name) {
	case "", config.RendererWeasyprint:
		w := mdpress.NewWeasyprint()
		if cfg.Renderer.Bin != "" {
			w.Bin = cfg.Renderer.Bin
		}
		w.Runner = env.Runner
		opts = append(opts, mdpress.WithHTMLPrinter(w))
	case config.RendererWkhtmltopdf:
		w := mdpress.NewWkhtmltopdf()
		if cfg.Renderer.Bin != "" {
			w.Bin = cfg.Renderer.Bin
		}
		w.MarginInches = cfg.Page.Margin
		w.Runner = env.Runner
		opts = append(opts, mdpress.WithHTMLPrinter(w))
	case config.RendererChrome:
		c := mdpress.NewChrome()
		c.Bin = cfg.Renderer.Bin
		c.MarginInches = cfg.Page.Margin
		c.Timeout = timeout
		opts = append(opts, mdpress.WithHTMLPrinter(c))
	default:
		return nil, fmt.Errorf("%w: %q (must be %s, %s or %s)", ErrInvalidRenderer, cfg.Renderer.Name, config.RendererWeasyprint, config.RendererWkhtmltopdf, config.RendererChrome)
	}

	if cfg.Direct.Disabled {
		opts = append(opts, mdpress.WithoutDirect())
	}
	if cfg.Intermediate.Unique {
		opts = append(opts, mdpress.WithIntermediateNaming(mdpress.NamingUnique))
	}
	if cfg.Intermediate.Keep {
		opts = append(opts, mdpress.WithKeepIntermediate())
	}

	return opts, nil
}

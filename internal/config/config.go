// Package config loads and validates mdpress YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-mdpress/internal/fileutil"
	"github.com/alnah/go-mdpress/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidConfig   = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength   = 4096 // PATH_MAX on Linux
	MaxEngineLength = 32   // "pagedjs-cli"
)

// Accepted values for enum fields.
const (
	HTMLEnginePandoc    = "pandoc"
	HTMLEngineGoldmark  = "goldmark"
	RendererWeasyprint  = "weasyprint"
	RendererWkhtmltopdf = "wkhtmltopdf"
	RendererChrome      = "chrome"
)

// Default values, matching the library defaults.
const (
	DefaultEngine     = "weasyprint"
	DefaultMargin     = 1.0
	DefaultFontSize   = 11
	DefaultStylesheet = "style.css"
	DefaultPandocBin  = "pandoc"
)

// configDirName is the directory searched under the user config dir.
const configDirName = "mdpress"

// Config holds all configuration for a conversion run.
type Config struct {
	Input        InputConfig        `yaml:"input"`
	Output       OutputConfig       `yaml:"output"`
	Pandoc       PandocConfig       `yaml:"pandoc"`
	Direct       DirectConfig       `yaml:"direct"`
	Page         PageConfig         `yaml:"page"`
	HTML         HTMLConfig         `yaml:"html"`
	Renderer     RendererConfig     `yaml:"renderer"`
	Intermediate IntermediateConfig `yaml:"intermediate"`
	Timeout      string             `yaml:"timeout"` // Go duration, e.g. "90s" (empty = library default)
}

// InputConfig defines the Markdown source.
type InputConfig struct {
	Path string `yaml:"path"` // Used when no positional argument is given
}

// OutputConfig defines the PDF destination.
type OutputConfig struct {
	Path string `yaml:"path"` // Empty = source path with .pdf
}

// PandocConfig locates the pandoc executable.
type PandocConfig struct {
	Bin string `yaml:"bin"`
}

// DirectConfig controls the one-step Markdown-to-PDF attempt.
type DirectConfig struct {
	Disabled bool   `yaml:"disabled"`
	Engine   string `yaml:"engine"` // pandoc --pdf-engine value
}

// PageConfig defines presentation parameters.
type PageConfig struct {
	Margin   float64 `yaml:"margin"`   // inches
	FontSize int     `yaml:"fontSize"` // points
}

// HTMLConfig controls the intermediate HTML stage.
type HTMLConfig struct {
	Engine     string `yaml:"engine"`     // "pandoc" or "goldmark"
	Stylesheet string `yaml:"stylesheet"` // Linked relative to the HTML file
}

// RendererConfig selects the HTML-to-PDF renderer.
type RendererConfig struct {
	Name string `yaml:"name"` // "weasyprint", "wkhtmltopdf" or "chrome"
	Bin  string `yaml:"bin"`  // Empty = look up by name
}

// IntermediateConfig controls the fallback HTML file.
type IntermediateConfig struct {
	Unique bool `yaml:"unique"` // Random suffix, safe for concurrent runs on one source
	Keep   bool `yaml:"keep"`   // Keep after a successful conversion
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Pandoc:   PandocConfig{Bin: DefaultPandocBin},
		Direct:   DirectConfig{Engine: DefaultEngine},
		Page:     PageConfig{Margin: DefaultMargin, FontSize: DefaultFontSize},
		HTML:     HTMLConfig{Engine: HTMLEnginePandoc, Stylesheet: DefaultStylesheet},
		Renderer: RendererConfig{Name: RendererWeasyprint},
	}
}

// Validate checks field lengths and enum values.
// Engine names, margin and font size ranges are checked by the converter itself.
func (c *Config) Validate() error {
	paths := []struct{ name, value string }{
		{"input.path", c.Input.Path},
		{"output.path", c.Output.Path},
		{"pandoc.bin", c.Pandoc.Bin},
		{"html.stylesheet", c.HTML.Stylesheet},
		{"renderer.bin", c.Renderer.Bin},
	}
	for _, p := range paths {
		if err := validateFieldLength(p.name, p.value, MaxPathLength); err != nil {
			return err
		}
	}
	if err := validateFieldLength("direct.engine", c.Direct.Engine, MaxEngineLength); err != nil {
		return err
	}

	switch strings.ToLower(c.HTML.Engine) {
	case "", HTMLEnginePandoc, HTMLEngineGoldmark:
	default:
		return fmt.Errorf("%w: html.engine %q (must be %s or %s)", ErrInvalidConfig, c.HTML.Engine, HTMLEnginePandoc, HTMLEngineGoldmark)
	}

	switch strings.ToLower(c.Renderer.Name) {
	case "", RendererWeasyprint, RendererWkhtmltopdf, RendererChrome:
	default:
		return fmt.Errorf("%w: renderer.name %q (must be %s, %s or %s)", ErrInvalidConfig, c.Renderer.Name, RendererWeasyprint, RendererWkhtmltopdf, RendererChrome)
	}

	if c.Page.Margin < 0 {
		return fmt.Errorf("%w: page.margin must not be negative, got %.2f", ErrInvalidConfig, c.Page.Margin)
	}
	if c.Page.FontSize < 0 {
		return fmt.Errorf("%w: page.fontSize must not be negative, got %d", ErrInvalidConfig, c.Page.FontSize)
	}

	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil {
			return fmt.Errorf("%w: timeout %q: %v", ErrInvalidConfig, c.Timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidConfig, c.Timeout)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.ReadFileStrict(configPath, cfg); err != nil {
		var pathErr *os.PathError
		switch {
		case os.IsNotExist(err):
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		case errors.As(err, &pathErr):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the locations tried for a config name, in order.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, configDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath searches for a config file by name.
// Tries the current directory first, then ~/.config/mdpress/, .yaml before .yml.
func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

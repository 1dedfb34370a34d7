// Package config loads document-generation configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nkosior/docforge/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
)

// Config holds all configuration for document generation.
type Config struct {
	Document DocumentConfig `yaml:"document"`
	TOC      TOCConfig      `yaml:"toc"`
	Renderer RendererConfig `yaml:"renderer"`
}

// DocumentConfig defines document-level metadata shown on the title
// page, in PDF metadata and in the page footer.
type DocumentConfig struct {
	Title    string `yaml:"title"`    // default "Technical Design Document"
	Subtitle string `yaml:"subtitle"` // shown under the title
	Author   string `yaml:"author"`   // PDF author metadata
	Version  string `yaml:"version"`  // shown in the title-page info table
}

// TOCConfig tunes the table-of-contents page. Page numbers are
// estimates only; they never drive actual pagination.
type TOCConfig struct {
	BasePage    int `yaml:"basePage"`    // first estimated body page (default 3)
	PageStep    int `yaml:"pageStep"`    // entries per estimated page (default 3)
	MaxTitleLen int `yaml:"maxTitleLen"` // display-title truncation (default 45)
	LineWidth   int `yaml:"lineWidth"`   // leader-dot target width (default 55)
}

// RendererConfig defines how the external diagram renderer is invoked.
type RendererConfig struct {
	Command        string `yaml:"command"`        // renderer binary (default "mmdc")
	Theme          string `yaml:"theme"`          // -t flag (default "neutral")
	Background     string `yaml:"background"`     // -b flag (default "white")
	Width          int    `yaml:"width"`          // viewport width (default 1200)
	Height         int    `yaml:"height"`         // viewport height (default 900)
	ConfigFile     string `yaml:"configFile"`     // optional --configFile path
	PuppeteerFile  string `yaml:"puppeteerFile"`  // optional -p path
	BrowserBin     string `yaml:"browserBin"`     // chromium executable for the child env
	HomeDir        string `yaml:"homeDir"`        // HOME for the child process
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // primary attempt bound (default 60)
}

// DefaultConfig returns the configuration used when no file is loaded.
func DefaultConfig() *Config {
	return &Config{
		Document: DocumentConfig{
			Title:    "Technical Design Document",
			Subtitle: "Comprehensive System Architecture & Implementation Guide",
			Author:   "docforge",
			Version:  "1.0.0",
		},
		TOC: TOCConfig{
			BasePage:    3,
			PageStep:    3,
			MaxTitleLen: 45,
			LineWidth:   55,
		},
		Renderer: RendererConfig{
			Command:        "mmdc",
			Theme:          "neutral",
			Background:     "white",
			Width:          1200,
			Height:         900,
			BrowserBin:     "/usr/bin/chromium-browser",
			HomeDir:        os.TempDir(),
			TimeoutSeconds: 60,
		},
	}
}

// Validate checks configuration invariants. Zero values are allowed and
// filled from defaults by the consumer.
func (c *Config) Validate() error {
	if c.TOC.BasePage < 0 {
		return fmt.Errorf("toc.basePage: must not be negative, got %d", c.TOC.BasePage)
	}
	if c.TOC.PageStep < 0 {
		return fmt.Errorf("toc.pageStep: must not be negative, got %d", c.TOC.PageStep)
	}
	if c.Renderer.Width < 0 || c.Renderer.Height < 0 {
		return fmt.Errorf("renderer: viewport must not be negative, got %dx%d",
			c.Renderer.Width, c.Renderer.Height)
	}
	if c.Renderer.TimeoutSeconds < 0 {
		return fmt.Errorf("renderer.timeoutSeconds: must not be negative, got %d",
			c.Renderer.TimeoutSeconds)
	}
	return nil
}

// FillDefaults replaces zero values with defaults so a sparse YAML file
// only has to name the fields it changes.
func (c *Config) FillDefaults() {
	def := DefaultConfig()
	if c.Document.Title == "" {
		c.Document.Title = def.Document.Title
	}
	if c.Document.Subtitle == "" {
		c.Document.Subtitle = def.Document.Subtitle
	}
	if c.Document.Author == "" {
		c.Document.Author = def.Document.Author
	}
	if c.Document.Version == "" {
		c.Document.Version = def.Document.Version
	}
	if c.TOC.BasePage == 0 {
		c.TOC.BasePage = def.TOC.BasePage
	}
	if c.TOC.PageStep == 0 {
		c.TOC.PageStep = def.TOC.PageStep
	}
	if c.TOC.MaxTitleLen == 0 {
		c.TOC.MaxTitleLen = def.TOC.MaxTitleLen
	}
	if c.TOC.LineWidth == 0 {
		c.TOC.LineWidth = def.TOC.LineWidth
	}
	if c.Renderer.Command == "" {
		c.Renderer.Command = def.Renderer.Command
	}
	if c.Renderer.Theme == "" {
		c.Renderer.Theme = def.Renderer.Theme
	}
	if c.Renderer.Background == "" {
		c.Renderer.Background = def.Renderer.Background
	}
	if c.Renderer.Width == 0 {
		c.Renderer.Width = def.Renderer.Width
	}
	if c.Renderer.Height == 0 {
		c.Renderer.Height = def.Renderer.Height
	}
	if c.Renderer.BrowserBin == "" {
		c.Renderer.BrowserBin = def.Renderer.BrowserBin
	}
	if c.Renderer.HomeDir == "" {
		c.Renderer.HomeDir = def.Renderer.HomeDir
	}
	if c.Renderer.TimeoutSeconds == 0 {
		c.Renderer.TimeoutSeconds = def.Renderer.TimeoutSeconds
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched as a name in standard locations.
// Returns an error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		resolved, err := resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
		configPath = resolved
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.FillDefaults()

	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path.
func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath searches for a config file by name, trying .yaml
// then .yml, first in the current directory and then under the user
// config directory.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		localPath := name + ext
		if fileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "docforge", name+ext)
			if fileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

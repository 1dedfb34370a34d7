package docforge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nkosior/docforge/internal/config"
	"github.com/nkosior/docforge/internal/raster"
	"github.com/nkosior/docforge/internal/scratch"
)

// DiagramRenderer turns diagram source text into a raster ready for
// layout. Implementations must never panic past the caller: a diagram
// that cannot render is reported as an error and the document builds
// around it.
type DiagramRenderer interface {
	Render(ctx context.Context, block DiagramBlock, sessionID string) (*ResolvedDiagram, error)
	Available(ctx context.Context) bool
}

// Compile-time interface check.
var _ DiagramRenderer = (*mmdcRenderer)(nil)

// runCommand executes one external render invocation. Extracted so
// tests can fake the renderer process.
type runCommand func(ctx context.Context, timeout time.Duration, name string, args, env []string) error

// Default dimensions when the output is a recognized raster whose
// header carries no readable size (JPEG/GIF).
const (
	defaultPixelWidth  = 800
	defaultPixelHeight = 600
)

// fallbackSourceLimit bounds the raw source shown when rendering fails.
const fallbackSourceLimit = 200

// mmdcRenderer invokes the mermaid CLI as an external process. Each
// render walks a fixed three-attempt state machine with progressively
// simpler process configuration.
type mmdcRenderer struct {
	cfg    config.RendererConfig
	logger *zap.Logger
	run    runCommand

	probeMu sync.Mutex
	probed  bool
	probeOK bool
}

func newMmdcRenderer(cfg config.RendererConfig, timeout time.Duration, logger *zap.Logger) *mmdcRenderer {
	if timeout > 0 {
		cfg.TimeoutSeconds = int(timeout / time.Second)
	}
	return &mmdcRenderer{
		cfg:    cfg,
		logger: logger,
		run:    runProcess,
	}
}

// runProcess is the real runCommand: it executes the renderer under a
// per-attempt deadline and maps a deadline hit to ErrDiagramTimeout.
func runProcess(ctx context.Context, timeout time.Duration, name string, args, env []string) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = env

	out, err := cmd.CombinedOutput()
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrDiagramTimeout, timeout)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrRendererNotFound, name)
	}
	return fmt.Errorf("renderer exited: %w (output: %s)", err, truncate(string(out), 300))
}

// Available probes the renderer by running its version command and
// caches the outcome. A failure caused by the caller's context is not
// cached; a dead context says nothing about the renderer, so the next
// call probes again.
func (r *mmdcRenderer) Available(ctx context.Context) bool {
	r.probeMu.Lock()
	defer r.probeMu.Unlock()
	if r.probed {
		return r.probeOK
	}

	err := r.run(ctx, 10*time.Second, r.cfg.Command, []string{"--version"}, r.childEnv())
	if err != nil && ctx.Err() != nil {
		return false
	}

	r.probed = true
	r.probeOK = err == nil
	if err != nil {
		r.logger.Warn("diagram renderer unavailable, diagrams degrade to text",
			zap.String("command", r.cfg.Command),
			zap.Error(err))
	}
	return r.probeOK
}

// renderAttempt is one rung of the fallback ladder.
type renderAttempt struct {
	name    string
	args    []string
	timeout time.Duration
}

// Render writes the diagram source to a scratch file, walks the attempt
// ladder and decodes the produced raster. The scratch pair is removed on
// every exit path once bytes are in memory.
func (r *mmdcRenderer) Render(ctx context.Context, block DiagramBlock, sessionID string) (*ResolvedDiagram, error) {
	source := strings.TrimSpace(block.Source)

	pair, cleanup, err := scratch.NewPair(source, sessionID, "mmd", "png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	defer cleanup()

	attempts, attemptCleanup, err := r.attempts(pair)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiagramRender, err)
	}
	defer attemptCleanup()

	var lastErr error
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := r.run(ctx, attempt.timeout, r.cfg.Command, attempt.args, r.childEnv()); err != nil {
			lastErr = err
			r.logger.Warn("diagram render attempt failed",
				zap.Int("ordinal", block.Ordinal),
				zap.String("attempt", attempt.name),
				zap.Error(err))
			continue
		}

		resolved, decodeErr := r.readOutput(pair.Output)
		if decodeErr != nil {
			// A bad raster is no better than a failed render.
			lastErr = decodeErr
			r.logger.Warn("diagram output rejected",
				zap.Int("ordinal", block.Ordinal),
				zap.String("attempt", attempt.name),
				zap.Error(decodeErr))
			continue
		}

		r.logger.Info("diagram rendered",
			zap.Int("ordinal", block.Ordinal),
			zap.String("attempt", attempt.name),
			zap.Int("pixelWidth", resolved.PixelWidth),
			zap.Int("pixelHeight", resolved.PixelHeight))
		return resolved, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %v", ErrDiagramRender, len(attempts), lastErr)
}

// attempts builds the fixed fallback ladder: full configuration, then a
// permissive sandbox-disabled configuration, then engine defaults.
func (r *mmdcRenderer) attempts(pair scratch.Pair) ([]renderAttempt, func(), error) {
	primaryTimeout := time.Duration(r.cfg.TimeoutSeconds) * time.Second
	if primaryTimeout <= 0 {
		primaryTimeout = defaultRenderTimeout
	}

	base := []string{"-i", pair.Source, "-o", pair.Output}

	primary := append([]string{}, base...)
	primary = append(primary,
		"-t", r.cfg.Theme,
		"-b", r.cfg.Background,
		"--width", strconv.Itoa(r.cfg.Width),
		"--height", strconv.Itoa(r.cfg.Height),
	)
	switch {
	case r.cfg.ConfigFile != "" && fileExists(r.cfg.ConfigFile):
		primary = append(primary, "--configFile", r.cfg.ConfigFile)
	case r.cfg.PuppeteerFile != "" && fileExists(r.cfg.PuppeteerFile):
		primary = append(primary, "-p", r.cfg.PuppeteerFile)
	}

	sidecarPath, sidecarCleanup, err := scratch.WriteSidecar(pair, "puppeteer.json", r.puppeteerConfig())
	if err != nil {
		return nil, nil, err
	}

	permissive := append([]string{}, base...)
	permissive = append(permissive, "-b", r.cfg.Background, "-p", sidecarPath)

	ladder := []renderAttempt{
		{name: "primary", args: primary, timeout: primaryTimeout},
		{name: "permissive", args: permissive, timeout: primaryTimeout},
		{name: "defaults", args: base, timeout: primaryTimeout / 2},
	}
	return ladder, sidecarCleanup, nil
}

// puppeteerConfig is the generated configuration for the permissive
// attempt: headless browser with sandboxing disabled, suited to
// containers where the renderer's bundled defaults cannot start.
func (r *mmdcRenderer) puppeteerConfig() string {
	cfg := struct {
		Headless       string   `json:"headless"`
		Args           []string `json:"args"`
		ExecutablePath string   `json:"executablePath,omitempty"`
	}{
		Headless: "new",
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			"--disable-extensions",
			"--disable-web-security",
			"--allow-running-insecure-content",
			"--disable-background-timer-throttling",
			"--disable-backgrounding-occluded-windows",
			"--disable-renderer-backgrounding",
		},
		ExecutablePath: r.cfg.BrowserBin,
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return "{}" // marshal of a static struct cannot realistically fail
	}
	return string(data)
}

// childEnv is the environment handed to the renderer process. The
// renderer drives a browser internally; these variables keep it inside
// the configured executable and a writable home.
func (r *mmdcRenderer) childEnv() []string {
	flags := "--no-sandbox --disable-setuid-sandbox --disable-dev-shm-usage --disable-gpu --disable-extensions"
	env := os.Environ()
	env = append(env,
		"PUPPETEER_SKIP_CHROMIUM_DOWNLOAD=true",
		"PUPPETEER_EXECUTABLE_PATH="+r.cfg.BrowserBin,
		"CHROME_BIN="+r.cfg.BrowserBin,
		"CHROMIUM_FLAGS="+flags,
		"PUPPETEER_ARGS="+flags,
		"HOME="+r.cfg.HomeDir,
		"TMPDIR="+r.cfg.HomeDir,
	)
	return env
}

// readOutput validates and decodes the produced raster file.
func (r *mmdcRenderer) readOutput(path string) (*ResolvedDiagram, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- scratch path owned by this invocation
	if err != nil {
		return nil, fmt.Errorf("%w: output file missing: %v", ErrImageDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: output file empty", ErrImageDecode)
	}

	format, err := raster.DetectFormat(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	pixelW, pixelH := defaultPixelWidth, defaultPixelHeight
	if format == raster.FormatPNG {
		pixelW, pixelH, err = raster.PNGDimensions(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
		}
	}

	displayW, displayH := fitDimensions(pixelW, pixelH)
	return &ResolvedDiagram{
		Raster:        data,
		Format:        format,
		PixelWidth:    pixelW,
		PixelHeight:   pixelH,
		DisplayWidth:  displayW,
		DisplayHeight: displayH,
	}, nil
}

// diagramFallbackText is the code-style stand-in for a diagram that
// could not render: the raw source, truncated.
func diagramFallbackText(block DiagramBlock) string {
	return "[Diagram]\n" + truncate(strings.TrimSpace(block.Source), fallbackSourceLimit)
}

// truncate shortens s to at most limit runes, appending an ellipsis
// when anything was cut.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

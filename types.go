package docforge

import (
	"time"

	"go.uber.org/zap"

	"github.com/nkosior/docforge/internal/config"
)

// Heading is a single markdown heading extracted from a document.
// Headings are created once per parse pass and never mutated.
type Heading struct {
	Level  int    // 1..6, count of leading '#'
	Title  string // heading text with surrounding whitespace trimmed
	Slug   string // URL-safe anchor id derived from Title; never empty
	Offset int    // byte offset of the heading line in the source text
}

// TableBlock is a parsed markdown table. Every row is normalized to
// len(Headers) columns before rendering.
type TableBlock struct {
	Headers []string
	Rows    [][]string
}

// DiagramBlock is the source text of one fenced diagram, in document order.
// Ordinal drives the placeholder token substituted into the content stream.
type DiagramBlock struct {
	Source  string
	Ordinal int
}

// ResolvedDiagram is a successfully rendered diagram ready for page layout.
// Display dimensions are in points and already aspect-fitted.
type ResolvedDiagram struct {
	Raster        []byte
	Format        string // "png", "jpeg", "gif"
	PixelWidth    int
	PixelHeight   int
	DisplayWidth  float64
	DisplayHeight float64
}

// TocEntry is one line of the table of contents. EstimatedPage is a
// display-only heuristic; actual pagination is decided by the PDF engine.
type TocEntry struct {
	Heading       Heading
	IndentLevel   int
	DisplayTitle  string
	EstimatedPage int
}

// Input contains generation parameters.
type Input struct {
	Markdown  string // markdown content (required)
	SessionID string // optional; used only to namespace scratch files
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	timeout time.Duration
	cfg     *config.Config
	logger  *zap.Logger
}

// defaultRenderTimeout bounds the primary diagram render attempt.
const defaultRenderTimeout = 60 * time.Second

// WithTimeout sets the primary diagram render timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("docforge: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}

// WithLogger sets the structured logger. Defaults to zap.NewNop().
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.cfg.logger = logger
		}
	}
}

// WithConfig applies a loaded configuration (document metadata, TOC
// tuning, diagram renderer settings).
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		if cfg != nil {
			s.cfg.cfg = cfg
		}
	}
}

// WithDiagramRenderer injects a diagram renderer (e.g., a fake in tests).
func WithDiagramRenderer(r DiagramRenderer) Option {
	return func(s *Service) {
		s.diagrams = r
	}
}

// WithPDFRenderer injects a layout-block renderer (e.g., a fake in tests).
func WithPDFRenderer(r pdfRenderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

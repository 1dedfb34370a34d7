package docforge

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/nkosior/docforge/internal/config"
)

// Service orchestrates the document compilation pipeline: structural
// parsing, TOC derivation, diagram resolution, composition and page
// rendering. A Service is safe for concurrent Generate calls; all
// per-document state lives on the call stack.
type Service struct {
	cfg      serviceConfig
	parser   structuralParser
	toc      tocBuilder
	diagrams DiagramRenderer
	renderer pdfRenderer
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithConfig, WithLogger).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			cfg:    config.DefaultConfig(),
			logger: zap.NewNop(),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.toc = tocBuilderFromConfig(s.cfg.cfg.TOC)

	// Create real collaborators if not injected (e.g., by tests)
	if s.diagrams == nil {
		s.diagrams = newMmdcRenderer(s.cfg.cfg.Renderer, s.cfg.timeout, s.cfg.logger)
	}
	if s.renderer == nil {
		s.renderer = newFpdfRenderer()
	}

	return s
}

// Generate runs the full pipeline and returns the PDF as bytes.
// A diagram that fails to render degrades to a textual fallback inside
// the document; only whole-document assembly errors are returned.
func (s *Service) Generate(ctx context.Context, input Input) ([]byte, error) {
	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}

	content := input.Markdown
	headings := s.parser.extractHeadings(content)
	s.cfg.logger.Info("starting document generation",
		zap.Int("headings", len(headings)),
		zap.String("session", input.SessionID))

	// Excise diagram fences first; their source may contain anything,
	// including table-shaped lines.
	diagramBlocks := s.parser.extractDiagrams(content)
	for _, d := range diagramBlocks {
		fenced := "```mermaid\n" + d.Source + "\n```"
		token := fmt.Sprintf(diagramPlaceholderFmt, d.Ordinal)
		content = strings.Replace(content, fenced, token, 1)
	}

	tables := s.parser.parseTables(content)
	for i, t := range tables {
		content = strings.Replace(content, t.Raw, fmt.Sprintf(tablePlaceholderFmt, i), 1)
	}

	diagrams, err := s.resolveDiagrams(ctx, diagramBlocks, input.SessionID)
	if err != nil {
		return nil, err
	}

	comp := newCompositor(s.cfg.cfg.Document, s.toc, s.cfg.logger)
	blocks := comp.compose(content, headings, tables, diagrams)

	pdfBytes, err := s.renderer.Render(blocks, documentMeta{
		Title:  s.cfg.cfg.Document.Title,
		Author: s.cfg.cfg.Document.Author,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering document: %w", err)
	}

	s.cfg.logger.Info("document generation completed",
		zap.Int("blocks", len(blocks)),
		zap.Int("bytes", len(pdfBytes)))
	return pdfBytes, nil
}

// resolveDiagrams renders every diagram block, mapping placeholder
// tokens to results. Render failures are kept as explicit fallbacks;
// only context cancellation aborts the pipeline.
func (s *Service) resolveDiagrams(ctx context.Context, blocks []DiagramBlock, sessionID string) (map[string]diagramResult, error) {
	results := make(map[string]diagramResult, len(blocks))
	if len(blocks) == 0 {
		return results, nil
	}

	available := s.diagrams.Available(ctx)
	for _, block := range blocks {
		token := fmt.Sprintf(diagramPlaceholderFmt, block.Ordinal)
		result := diagramResult{block: block}

		if available {
			resolved, err := s.diagrams.Render(ctx, block, sessionID)
			switch {
			case err == nil:
				result.resolved = resolved
			case ctx.Err() != nil:
				return nil, ctx.Err()
			default:
				s.cfg.logger.Warn("diagram degraded to text fallback",
					zap.Int("ordinal", block.Ordinal),
					zap.Error(err))
			}
		}
		results[token] = result
	}
	return results, nil
}

// RendererAvailable reports whether the external diagram renderer can
// be invoked. When false, diagrams degrade to text fallbacks.
func (s *Service) RendererAvailable(ctx context.Context) bool {
	return s.diagrams.Available(ctx)
}

// tocBuilderFromConfig overlays configured TOC tuning on the defaults.
func tocBuilderFromConfig(cfg config.TOCConfig) tocBuilder {
	b := newTocBuilder()
	if cfg.BasePage > 0 {
		b.basePage = cfg.BasePage
	}
	if cfg.PageStep > 0 {
		b.pageStep = cfg.PageStep
	}
	if cfg.MaxTitleLen > 0 {
		b.maxTitleLen = cfg.MaxTitleLen
	}
	if cfg.LineWidth > 0 {
		b.lineWidth = cfg.LineWidth
	}
	return b
}

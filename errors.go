package docforge

import "errors"

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown = errors.New("markdown content cannot be empty")
	ErrPDFGeneration = errors.New("PDF generation failed")

	// Diagram rendering errors.
	ErrDiagramRender    = errors.New("diagram rendering failed")
	ErrDiagramTimeout   = errors.New("diagram rendering timed out")
	ErrImageDecode      = errors.New("rendered image could not be decoded")
	ErrRendererNotFound = errors.New("diagram renderer command not found")

	// TOC rewriting errors.
	ErrInvalidTOCPosition = errors.New("invalid TOC position")
)

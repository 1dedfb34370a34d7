// Package docforge compiles markdown-like technical documents into
// paginated PDFs with rendered diagrams and a derived table of contents.
//
// # Quick Start
//
// Create a service and generate a document:
//
//	svc := docforge.New()
//	pdf, err := svc.Generate(ctx, docforge.Input{
//	    Markdown: "# Design Document\n\n## Overview\n\nSome text.",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("output.pdf", pdf, 0644)
//
// # Pipeline
//
// Generation follows these stages:
//
//  1. Structural parsing (headings with slugs, tables, diagram fences)
//  2. Block excision: tables and diagram sources are replaced by unique
//     placeholder tokens
//  3. Diagram rendering via the external mermaid CLI, with a bounded
//     three-attempt fallback ladder and a textual stand-in on failure
//  4. Inline normalization (bold, italic, code, links, strikethrough)
//  5. Composition into an ordered layout-block sequence: title page,
//     table of contents, body
//  6. Page rendering via fpdf (headers, footers, page numbering)
//
// A diagram that cannot render never fails the document; it degrades to
// its truncated source in a code panel. Malformed markdown never fails
// parsing; it degrades to plain paragraphs.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	cfg, err := config.LoadConfig("docforge")
//	svc := docforge.New(
//	    docforge.WithConfig(cfg),
//	    docforge.WithLogger(logger),
//	    docforge.WithTimeout(2*time.Minute),
//	)
//
// # Lower-level helpers
//
// ParseHeadings, ParseTables, BuildTOC and AddTOC are usable without
// PDF generation, e.g. to embed a markdown table of contents:
//
//	toc := docforge.BuildTOC(content)
//
// # Diagram Renderer Requirements
//
// Rendering diagrams requires the mermaid CLI (mmdc) and a Chromium
// binary for its internal browser. Both are configurable via the
// renderer section of the YAML config. Without them, documents still
// build with textual diagram fallbacks.
package docforge

package docforge

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nkosior/docforge/internal/config"
)

// Placeholder token formats substituted for block-level elements so the
// section walk never has to re-find them by text search.
const (
	diagramPlaceholderFmt = "[MERMAID_DIAGRAM_%d]"
	tablePlaceholderFmt   = "[TABLE_%d]"
)

var numberedItemPattern = regexp.MustCompile(`^\d+\.\s`)

// diagramResult is one diagram after the render bridge ran: either a
// resolved raster or the block kept for its textual fallback.
type diagramResult struct {
	block    DiagramBlock
	resolved *ResolvedDiagram // nil when rendering failed
}

// compositor walks normalized content plus resolved block elements and
// emits the ordered LayoutBlock sequence for the page renderer.
type compositor struct {
	doc    config.DocumentConfig
	toc    tocBuilder
	logger *zap.Logger
}

func newCompositor(doc config.DocumentConfig, toc tocBuilder, logger *zap.Logger) compositor {
	return compositor{doc: doc, toc: toc, logger: logger}
}

// compose produces the full document: title page, TOC page, then body,
// each of the first two forced onto its own page.
func (c compositor) compose(content string, headings []Heading, tables []tableSpan, diagrams map[string]diagramResult) []LayoutBlock {
	blocks := c.titlePage()
	blocks = append(blocks, PageBreakBlock{})
	blocks = append(blocks, c.tocPage(headings)...)
	blocks = append(blocks, PageBreakBlock{})
	blocks = append(blocks, c.body(content, tables, diagrams)...)
	return blocks
}

// titlePage lays out the fixed document template cover.
func (c compositor) titlePage() []LayoutBlock {
	info := TableBlock{
		Headers: []string{"", ""},
		Rows: [][]string{
			{"Document Type:", "Technical Specification"},
			{"Generated By:", c.doc.Author},
			{"Date:", time.Now().Format("January 2, 2006")},
			{"Version:", c.doc.Version},
		},
	}

	return []LayoutBlock{
		SpacerBlock{Height: 100},
		HeadingBlock{Level: 0, Text: c.doc.Title},
		SubtitleBlock{Text: c.doc.Subtitle},
		SpacerBlock{Height: 80},
		TableLayoutBlock{Table: info, Plain: true},
		SpacerBlock{Height: 60},
		QuoteBlock{Text: "This document contains technical specifications and architectural " +
			"details generated by automated analysis of the source material."},
	}
}

// tocPage renders the table of contents from actual headings, or the
// fixed placeholder entries when the content has none.
func (c compositor) tocPage(headings []Heading) []LayoutBlock {
	blocks := []LayoutBlock{
		HeadingBlock{Level: 1, Text: "Table of Contents"},
		SpacerBlock{Height: 20},
	}

	entries := c.toc.entries(headings)
	if len(entries) == 0 {
		c.logger.Warn("no headings found, using TOC placeholder")
		for _, e := range c.toc.placeholderEntries() {
			blocks = append(blocks, TocLineBlock{Text: c.toc.formatEntry(e), Level: 1})
		}
		return blocks
	}

	for _, e := range entries {
		blocks = append(blocks, TocLineBlock{
			Text:  c.toc.formatEntry(e),
			Level: e.Heading.Level,
		})
	}
	return blocks
}

// body splits content into blank-line sections and dispatches each into
// layout blocks. Placeholder sections resolve to their table or diagram;
// fenced code survives verbatim; everything else goes line-by-line.
func (c compositor) body(content string, tables []tableSpan, diagrams map[string]diagramResult) []LayoutBlock {
	tableByToken := make(map[string]TableBlock, len(tables))
	for i, t := range tables {
		tableByToken[fmt.Sprintf(tablePlaceholderFmt, i)] = t.Table
	}

	var blocks []LayoutBlock
	var codeBuf []string
	var codeLang string
	inCode := false

	for _, section := range strings.Split(content, "\n\n") {
		section = strings.TrimSpace(section)

		if table, ok := tableByToken[section]; ok {
			blocks = append(blocks,
				SpacerBlock{Height: 12},
				TableLayoutBlock{Table: normalizeTableCells(table)},
				SpacerBlock{Height: 12},
			)
			continue
		}

		if result, ok := diagrams[section]; ok {
			blocks = append(blocks, c.diagramBlocks(result)...)
			continue
		}

		if inCode {
			if strings.HasSuffix(section, "```") {
				inCode = false
				codeBuf = append(codeBuf, strings.TrimSuffix(section, "```"))
				code := strings.TrimSpace(strings.Join(codeBuf, "\n\n"))
				if code != "" {
					blocks = append(blocks,
						SpacerBlock{Height: 8},
						CodeBlock{Language: codeLang, Text: code},
						SpacerBlock{Height: 8},
					)
				}
			} else {
				codeBuf = append(codeBuf, section)
			}
			continue
		}

		switch {
		case strings.HasPrefix(section, "```") && strings.HasSuffix(section, "```") && len(section) > 3 && strings.Contains(section, "\n"):
			// Code block contained in a single section.
			lines := strings.Split(section, "\n")
			lang := strings.TrimSpace(strings.TrimPrefix(lines[0], "```"))
			code := strings.Join(lines[1:len(lines)-1], "\n")
			if strings.TrimSpace(code) != "" {
				blocks = append(blocks,
					SpacerBlock{Height: 8},
					CodeBlock{Language: lang, Text: code},
					SpacerBlock{Height: 8},
				)
			}
			continue
		case strings.HasPrefix(section, "```"):
			inCode = true
			first, rest, _ := strings.Cut(section[3:], "\n")
			codeLang = strings.TrimSpace(first)
			codeBuf = codeBuf[:0]
			if rest != "" {
				codeBuf = append(codeBuf, rest)
			}
			continue
		}

		if section == "" {
			continue
		}
		blocks = append(blocks, c.dispatchLines(strings.Split(section, "\n"))...)
	}

	// A fence that never closed still flushes its buffer; malformed
	// input degrades to visible text instead of disappearing.
	if inCode {
		code := strings.TrimSpace(strings.Join(codeBuf, "\n\n"))
		if code != "" {
			blocks = append(blocks,
				SpacerBlock{Height: 8},
				CodeBlock{Language: codeLang, Text: code},
				SpacerBlock{Height: 8},
			)
		}
	}

	return blocks
}

// diagramBlocks emits a captioned image for a resolved diagram, or the
// code-style textual fallback when rendering failed. A failed diagram
// never fails the document.
func (c compositor) diagramBlocks(result diagramResult) []LayoutBlock {
	if result.resolved == nil {
		return []LayoutBlock{
			SpacerBlock{Height: 12},
			CodeBlock{Text: diagramFallbackText(result.block)},
			SpacerBlock{Height: 12},
		}
	}
	return []LayoutBlock{
		SpacerBlock{Height: 16},
		HeadingBlock{Level: 3, Text: fmt.Sprintf("Figure %d", result.block.Ordinal+1)},
		SpacerBlock{Height: 8},
		ImageBlock{
			Diagram: result.resolved,
			Name:    fmt.Sprintf("diagram-%d", result.block.Ordinal),
		},
		SpacerBlock{Height: 16},
	}
}

// dispatchLines sniffs each line's prefix and emits the matching block.
func (c compositor) dispatchLines(lines []string) []LayoutBlock {
	var blocks []LayoutBlock
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#### "):
			blocks = append(blocks,
				SpacerBlock{Height: 10},
				HeadingBlock{Level: 4, Text: normalizeInline(line[5:])},
				SpacerBlock{Height: 6},
			)
		case strings.HasPrefix(line, "### "):
			blocks = append(blocks,
				SpacerBlock{Height: 12},
				HeadingBlock{Level: 3, Text: normalizeInline(line[4:])},
				SpacerBlock{Height: 8},
			)
		case strings.HasPrefix(line, "## "):
			blocks = append(blocks,
				SpacerBlock{Height: 16},
				HeadingBlock{Level: 2, Text: normalizeInline(line[3:])},
				SpacerBlock{Height: 12},
			)
		case strings.HasPrefix(line, "# "):
			blocks = append(blocks,
				SpacerBlock{Height: 20},
				HeadingBlock{Level: 1, Text: normalizeInline(line[2:])},
				SpacerBlock{Height: 16},
			)
		case strings.HasPrefix(raw, "  - "), strings.HasPrefix(raw, "  * "):
			// Two-space-indented items stay in the same flat list with
			// a distinct marker; this is not a nested list model.
			blocks = append(blocks, BulletBlock{Text: normalizeInline(raw[4:]), Indented: true})
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			blocks = append(blocks, BulletBlock{Text: normalizeInline(line[2:])})
		case numberedItemPattern.MatchString(line):
			blocks = append(blocks, NumberedBlock{Text: normalizeInline(line)})
		case strings.HasPrefix(line, "```"):
			// Stray fence without a match degrades to nothing.
		default:
			blocks = append(blocks,
				ParagraphBlock{Text: normalizeInline(line)},
				SpacerBlock{Height: 4},
			)
		}
	}
	return blocks
}

// normalizeTableCells applies inline normalization to every cell.
func normalizeTableCells(t TableBlock) TableBlock {
	out := TableBlock{
		Headers: make([]string, len(t.Headers)),
		Rows:    make([][]string, len(t.Rows)),
	}
	for i, h := range t.Headers {
		out.Headers[i] = normalizeInline(h)
	}
	for i, row := range t.Rows {
		out.Rows[i] = make([]string, len(row))
		for j, cell := range row {
			out.Rows[i][j] = normalizeInline(cell)
		}
	}
	return out
}

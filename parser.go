package docforge

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for structural parsing.
var (
	headingPattern = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

	// Diagram source fenced with the mermaid language tag.
	diagramPattern = regexp.MustCompile("(?s)```mermaid\n(.*?)\n```")

	// Slug sanitization steps.
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugWhitespace   = regexp.MustCompile(`\s+`)
	slugHyphenRuns   = regexp.MustCompile(`-+`)

	tableSeparatorCell = regexp.MustCompile(`^[-:]+$`)
)

// fallbackSlug is used when a title sanitizes to nothing.
const fallbackSlug = "heading"

// structuralParser tokenizes raw markdown into headings, tables and
// diagram blocks. It is stateless; the zero value is ready to use.
type structuralParser struct{}

// ParseHeadings extracts all headings from markdown content in document
// order. Duplicate titles (and therefore duplicate slugs) are permitted.
func ParseHeadings(content string) []Heading {
	return structuralParser{}.extractHeadings(content)
}

// ParseTables extracts all well-formed tables from markdown content.
// Rows are normalized to the header column count.
func ParseTables(content string) []TableBlock {
	spans := structuralParser{}.parseTables(content)
	tables := make([]TableBlock, len(spans))
	for i, s := range spans {
		tables[i] = s.Table
	}
	return tables
}

func (structuralParser) extractHeadings(content string) []Heading {
	matches := headingPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return nil
	}

	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		level := m[3] - m[2] // width of the '#' run
		title := strings.TrimSpace(content[m[4]:m[5]])
		headings = append(headings, Heading{
			Level:  level,
			Title:  title,
			Slug:   slugify(title),
			Offset: m[0],
		})
	}
	return headings
}

// slugify derives a URL-safe anchor id from a heading title.
// The output is deterministic and never empty.
func slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugInvalidChars.ReplaceAllString(slug, "")
	slug = slugWhitespace.ReplaceAllString(slug, "-")
	slug = slugHyphenRuns.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fallbackSlug
	}
	return slug
}

// tableSpan pairs a parsed table with the exact source lines it came
// from, so the compositor can substitute a placeholder by literal text.
type tableSpan struct {
	Table TableBlock
	Raw   string
}

// parseTables scans line-by-line for markdown tables. A table needs a
// header row and at least one data row; anything less is left in place
// and later degrades to paragraph text.
func (structuralParser) parseTables(content string) []tableSpan {
	var tables []tableSpan
	lines := strings.Split(content, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if !isTableRow(line) {
			i++
			continue
		}

		start := i
		headers := parseTableRow(line)
		i++

		// Separator row is consumed but not stored.
		if i < len(lines) && isTableSeparator(lines[i]) {
			i++
		}

		var rows [][]string
		for i < len(lines) && isTableRow(strings.TrimSpace(lines[i])) {
			rows = append(rows, parseTableRow(strings.TrimSpace(lines[i])))
			i++
		}

		if len(rows) == 0 {
			continue // header-only table is discarded
		}

		tables = append(tables, tableSpan{
			Table: TableBlock{Headers: headers, Rows: normalizeRows(rows, len(headers))},
			Raw:   strings.Join(lines[start:i], "\n"),
		})
	}
	return tables
}

// isTableRow reports whether a line is a markdown table row: it starts
// and ends with '|' and has at least one more '|' in its interior.
func isTableRow(line string) bool {
	return strings.HasPrefix(line, "|") &&
		strings.HasSuffix(line, "|") &&
		strings.Contains(line[1:len(line)-1], "|")
}

// isTableSeparator reports whether a line is a header separator: outer
// pipes with every cell made solely of '-' and ':' characters.
func isTableSeparator(line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") {
		return false
	}
	for _, cell := range strings.Split(line[1:len(line)-1], "|") {
		if !tableSeparatorCell.MatchString(strings.TrimSpace(cell)) {
			return false
		}
	}
	return true
}

// parseTableRow splits a table row into trimmed cell contents.
func parseTableRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	cells := strings.Split(line, "|")
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}

// normalizeRows pads short rows with empty cells and truncates long ones
// so every row has exactly width columns.
func normalizeRows(rows [][]string, width int) [][]string {
	for i, row := range rows {
		for len(row) < width {
			row = append(row, "")
		}
		rows[i] = row[:width]
	}
	return rows
}

// extractDiagrams pulls fenced diagram blocks out in document order.
// The enclosed source is kept verbatim; no syntax validation happens here.
func (structuralParser) extractDiagrams(content string) []DiagramBlock {
	matches := diagramPattern.FindAllStringSubmatch(content, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]DiagramBlock, 0, len(matches))
	for i, m := range matches {
		blocks = append(blocks, DiagramBlock{Source: m[1], Ordinal: i})
	}
	return blocks
}

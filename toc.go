package docforge

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TOC insertion positions for AddTOC.
const (
	TOCAfterTitle = "after-title"
	TOCBeginning  = "beginning"
	TOCEnd        = "end"
)

// genericTitleWords marks a level-1 heading as the document's own title.
// Such headings are excluded from the TOC so the title page does not
// duplicate into it.
var genericTitleWords = []string{"technical", "design", "document", "title"}

// TOC layout defaults. Page estimates are cosmetic; real pagination is
// decided by the PDF engine.
const (
	defaultTOCBasePage     = 3  // first body page, after title and TOC pages
	defaultTOCPageStep     = 3  // entries per estimated page
	defaultTOCMaxTitleLen  = 45 // longer display titles get an ellipsis
	defaultTOCLineWidth    = 55 // leader-dot target line width
	tocMinDots             = 3
	tocTruncatedTitleWidth = 42
)

// tocBuilder derives table-of-contents models from parsed headings.
type tocBuilder struct {
	basePage    int
	pageStep    int
	maxTitleLen int
	lineWidth   int
}

func newTocBuilder() tocBuilder {
	return tocBuilder{
		basePage:    defaultTOCBasePage,
		pageStep:    defaultTOCPageStep,
		maxTitleLen: defaultTOCMaxTitleLen,
		lineWidth:   defaultTOCLineWidth,
	}
}

// BuildTOC generates an embeddable markdown table of contents for the
// given markdown content. Returns "" when the content has no headings.
func BuildTOC(content string) string {
	headings := ParseHeadings(content)
	if len(headings) == 0 {
		return ""
	}

	lines := []string{"# Table of Contents\n"}
	for _, h := range headings {
		if isDocumentTitle(h) {
			continue
		}
		indent := strings.Repeat("  ", h.Level-1)
		lines = append(lines, fmt.Sprintf("%s- [%s](#%s)", indent, h.Title, h.Slug))
	}
	return strings.Join(lines, "\n") + "\n"
}

// AddTOC inserts a markdown table of contents into content at the given
// position (TOCAfterTitle, TOCBeginning or TOCEnd). Content without
// headings is returned unchanged.
func AddTOC(content, position string) (string, error) {
	toc := BuildTOC(content)
	if toc == "" {
		return content, nil
	}

	switch position {
	case TOCAfterTitle:
		lines := strings.Split(content, "\n")
		insertAt := 0
		for i, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), "#") {
				insertAt = i + 1
				break
			}
		}
		inserted := make([]string, 0, len(lines)+3)
		inserted = append(inserted, lines[:insertAt]...)
		inserted = append(inserted, "", strings.TrimSpace(toc), "")
		inserted = append(inserted, lines[insertAt:]...)
		return strings.Join(inserted, "\n"), nil
	case TOCBeginning:
		return toc + "\n" + content, nil
	case TOCEnd:
		return content + "\n" + toc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTOCPosition, position)
	}
}

// isDocumentTitle reports whether a heading looks like the document's
// own title. Only level-1 headings qualify.
func isDocumentTitle(h Heading) bool {
	if h.Level != 1 {
		return false
	}
	lower := strings.ToLower(h.Title)
	for _, word := range genericTitleWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// entries builds the paginated TOC model. Page numbers are estimates:
// they start at basePage and advance every pageStep included entries.
func (b tocBuilder) entries(headings []Heading) []TocEntry {
	var entries []TocEntry
	for _, h := range headings {
		if isDocumentTitle(h) {
			continue
		}
		indent := h.Level - 1
		if indent < 0 {
			indent = 0
		}
		entries = append(entries, TocEntry{
			Heading:       h,
			IndentLevel:   indent,
			DisplayTitle:  b.displayTitle(h.Title),
			EstimatedPage: b.basePage + len(entries)/b.pageStep,
		})
	}
	return entries
}

// displayTitle truncates long titles with an ellipsis.
func (b tocBuilder) displayTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= b.maxTitleLen {
		return title
	}
	return string(runes[:tocTruncatedTitleWidth]) + "..."
}

// formatEntry renders one TOC line with leader dots aligned to the
// configured line width. At least tocMinDots dots are always emitted.
func (b tocBuilder) formatEntry(e TocEntry) string {
	page := strconv.Itoa(e.EstimatedPage)
	used := utf8.RuneCountInString(e.DisplayTitle) + len(page) + e.IndentLevel*2
	dots := b.lineWidth - used
	if dots < tocMinDots {
		dots = tocMinDots
	}
	indent := strings.Repeat("  ", e.IndentLevel)
	return fmt.Sprintf("%s%s %s %s", indent, e.DisplayTitle, strings.Repeat(".", dots), page)
}

// placeholderEntries is the documented fallback for content with no
// headings: a fixed, illustrative TOC instead of an empty section.
func (b tocBuilder) placeholderEntries() []TocEntry {
	fixtures := []struct {
		title string
		page  int
	}{
		{"1. Project Overview", 3},
		{"2. System Architecture", 5},
		{"3. Technical Implementation", 8},
		{"4. Data Flow Diagrams", 12},
		{"5. Code Examples", 15},
		{"6. Deployment Strategy", 18},
	}

	entries := make([]TocEntry, 0, len(fixtures))
	for _, f := range fixtures {
		entries = append(entries, TocEntry{
			DisplayTitle:  f.title,
			EstimatedPage: f.page,
		})
	}
	return entries
}

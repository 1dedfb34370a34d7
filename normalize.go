package docforge

import "regexp"

// Inline markup patterns. Bold runs first so the italic pattern never
// has to see a '**' pair; the remaining patterns are disjoint.
var (
	boldPattern   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern = regexp.MustCompile(`\*([^*]+)\*`)
	codePattern   = regexp.MustCompile("`([^`]+)`")
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	strikePattern = regexp.MustCompile(`~~(.+?)~~`)
)

// normalizeInline rewrites inline markdown emphasis into the
// presentation markup consumed by the layout renderer. Text with no
// matching constructs passes through unchanged.
//
// Links degrade to their label; URLs have no home in a printed page.
func normalizeInline(text string) string {
	text = boldPattern.ReplaceAllString(text, "<b>$1</b>")
	text = italicPattern.ReplaceAllString(text, "<i>$1</i>")
	text = codePattern.ReplaceAllString(text, "<code>$1</code>")
	text = linkPattern.ReplaceAllString(text, "$1")
	text = strikePattern.ReplaceAllString(text, "<strike>$1</strike>")
	return text
}

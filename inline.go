package docforge

import "strings"

// Tags produced by the content normalizer. The run parser is a plain
// scanner: unknown or unbalanced tags pass through as literal text.
var inlineTags = []struct {
	open, close string
}{
	{"<b>", "</b>"},
	{"<i>", "</i>"},
	{"<code>", "</code>"},
	{"<strike>", "</strike>"},
}

// parseInlineRuns splits normalized text into styled runs. Nesting is
// not modeled; each tagged span carries exactly its own style, which
// matches what the normalizer can emit.
func parseInlineRuns(text string) []inlineRun {
	var runs []inlineRun
	for text != "" {
		openIdx := -1
		tagIdx := -1
		for i, tag := range inlineTags {
			if idx := strings.Index(text, tag.open); idx >= 0 && (openIdx < 0 || idx < openIdx) {
				openIdx = idx
				tagIdx = i
			}
		}
		if openIdx < 0 {
			runs = append(runs, inlineRun{text: text})
			break
		}

		if openIdx > 0 {
			runs = append(runs, inlineRun{text: text[:openIdx]})
		}

		tag := inlineTags[tagIdx]
		rest := text[openIdx+len(tag.open):]
		closeIdx := strings.Index(rest, tag.close)
		if closeIdx < 0 {
			// Unbalanced tag: keep it visible rather than eat text.
			runs = append(runs, inlineRun{text: text[openIdx:]})
			break
		}

		run := inlineRun{text: rest[:closeIdx]}
		switch tag.open {
		case "<b>":
			run.bold = true
		case "<i>":
			run.italic = true
		case "<code>":
			run.code = true
		case "<strike>":
			run.strike = true
		}
		if run.text != "" {
			runs = append(runs, run)
		}
		text = rest[closeIdx+len(tag.close):]
	}
	return runs
}

// stripInlineTags flattens normalized markup to plain text, for spots
// that render a single style (table cells, centered titles).
func stripInlineTags(text string) string {
	var b strings.Builder
	for _, run := range parseInlineRuns(text) {
		b.WriteString(run.text)
	}
	return b.String()
}

// headerHasText reports whether any header cell carries visible text.
func headerHasText(headers []string) bool {
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			return true
		}
	}
	return false
}

package docforge

import (
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/nkosior/docforge/internal/config"
)

func testCompositor() compositor {
	return newCompositor(config.DefaultConfig().Document, newTocBuilder(), zap.NewNop())
}

func TestComposeStructure(t *testing.T) {
	t.Parallel()

	c := testCompositor()
	blocks := c.compose("Some body text.", []Heading{{Level: 2, Title: "Intro", Slug: "intro"}}, nil, nil)

	var breaks int
	for _, b := range blocks {
		if _, ok := b.(PageBreakBlock); ok {
			breaks++
		}
	}
	if breaks != 2 {
		t.Errorf("expected 2 page breaks (after title and TOC pages), got %d", breaks)
	}

	// Title page opens the document.
	if _, ok := blocks[0].(SpacerBlock); !ok {
		t.Errorf("first block = %T, want SpacerBlock", blocks[0])
	}
	title, ok := blocks[1].(HeadingBlock)
	if !ok || title.Level != 0 {
		t.Errorf("second block = %#v, want level-0 HeadingBlock", blocks[1])
	}
}

func TestTitlePage(t *testing.T) {
	t.Parallel()

	blocks := testCompositor().titlePage()

	var info *TableLayoutBlock
	for _, b := range blocks {
		if tb, ok := b.(TableLayoutBlock); ok {
			info = &tb
			break
		}
	}
	if info == nil {
		t.Fatal("title page has no metadata table")
	}
	if !info.Plain {
		t.Error("title page metadata table must be plain")
	}
	if got := info.Table.Rows[0][0]; got != "Document Type:" {
		t.Errorf("first metadata label = %q", got)
	}

	last := blocks[len(blocks)-1]
	if _, ok := last.(QuoteBlock); !ok {
		t.Errorf("title page must end with the generation note, got %T", last)
	}
}

func TestTocPage(t *testing.T) {
	t.Parallel()

	c := testCompositor()

	t.Run("real headings", func(t *testing.T) {
		t.Parallel()

		headings := []Heading{
			{Level: 2, Title: "Setup", Slug: "setup"},
			{Level: 3, Title: "Install", Slug: "install"},
		}
		blocks := c.tocPage(headings)

		var lines []TocLineBlock
		for _, b := range blocks {
			if l, ok := b.(TocLineBlock); ok {
				lines = append(lines, l)
			}
		}
		if len(lines) != 2 {
			t.Fatalf("expected 2 TOC lines, got %d", len(lines))
		}
		if lines[0].Level != 2 || lines[1].Level != 3 {
			t.Errorf("TOC levels = %d, %d, want 2, 3", lines[0].Level, lines[1].Level)
		}
		if !strings.Contains(lines[0].Text, "Setup") || !strings.Contains(lines[0].Text, ".") {
			t.Errorf("TOC line missing title or leader dots: %q", lines[0].Text)
		}
	})

	t.Run("placeholder when no headings", func(t *testing.T) {
		t.Parallel()

		blocks := c.tocPage(nil)
		var lines int
		for _, b := range blocks {
			if _, ok := b.(TocLineBlock); ok {
				lines++
			}
		}
		if lines != 6 {
			t.Errorf("expected 6 placeholder TOC lines, got %d", lines)
		}
	})
}

func TestBodyTablePlaceholder(t *testing.T) {
	t.Parallel()

	c := testCompositor()
	spans := []tableSpan{{
		Table: TableBlock{Headers: []string{"**H1**", "H2"}, Rows: [][]string{{"a", "b"}}},
	}}
	blocks := c.body("intro line\n\n[TABLE_0]\n\noutro line", spans, nil)

	var table *TableLayoutBlock
	for _, b := range blocks {
		if tb, ok := b.(TableLayoutBlock); ok {
			table = &tb
		}
	}
	if table == nil {
		t.Fatal("table placeholder not resolved")
	}
	if table.Table.Headers[0] != "<b>H1</b>" {
		t.Errorf("cell not normalized: %q", table.Table.Headers[0])
	}
	if !reflect.DeepEqual(table.Table.Rows, [][]string{{"a", "b"}}) {
		t.Errorf("unexpected rows %#v", table.Table.Rows)
	}
}

func TestBodyDiagramPlaceholder(t *testing.T) {
	t.Parallel()

	c := testCompositor()

	t.Run("resolved diagram becomes captioned image", func(t *testing.T) {
		t.Parallel()

		resolved := &ResolvedDiagram{Format: "png", PixelWidth: 640, PixelHeight: 480}
		diagrams := map[string]diagramResult{
			"[MERMAID_DIAGRAM_0]": {block: DiagramBlock{Ordinal: 0}, resolved: resolved},
		}
		blocks := c.body("[MERMAID_DIAGRAM_0]", nil, diagrams)

		var caption *HeadingBlock
		var image *ImageBlock
		for _, b := range blocks {
			switch v := b.(type) {
			case HeadingBlock:
				caption = &v
			case ImageBlock:
				image = &v
			}
		}
		if caption == nil || caption.Text != "Figure 1" {
			t.Errorf("missing or wrong caption: %#v", caption)
		}
		if image == nil || image.Diagram != resolved || image.Name != "diagram-0" {
			t.Errorf("unexpected image block: %#v", image)
		}
	})

	t.Run("failed diagram degrades to source text", func(t *testing.T) {
		t.Parallel()

		diagrams := map[string]diagramResult{
			"[MERMAID_DIAGRAM_0]": {block: DiagramBlock{Source: "graph TD\nA-->B"}},
		}
		blocks := c.body("[MERMAID_DIAGRAM_0]", nil, diagrams)

		var code *CodeBlock
		for _, b := range blocks {
			if cb, ok := b.(CodeBlock); ok {
				code = &cb
			}
		}
		if code == nil {
			t.Fatal("expected a code-style fallback block")
		}
		if !strings.HasPrefix(code.Text, "[Diagram]\n") || !strings.Contains(code.Text, "graph TD") {
			t.Errorf("unexpected fallback text %q", code.Text)
		}
	})
}

func TestBodyCodeFences(t *testing.T) {
	t.Parallel()

	c := testCompositor()

	t.Run("fence within one section", func(t *testing.T) {
		t.Parallel()

		blocks := c.body("```go\nfunc main() {}\n```", nil, nil)
		code := onlyCodeBlock(t, blocks)
		if code.Language != "go" || code.Text != "func main() {}" {
			t.Errorf("unexpected code block %#v", code)
		}
	})

	t.Run("fence spanning blank lines", func(t *testing.T) {
		t.Parallel()

		blocks := c.body("```python\ndef a():\n    pass\n\ndef b():\n    pass\n```", nil, nil)
		code := onlyCodeBlock(t, blocks)
		if code.Language != "python" {
			t.Errorf("language = %q, want python", code.Language)
		}
		if code.Text != "def a():\n    pass\n\ndef b():\n    pass" {
			t.Errorf("blank line inside fence lost: %q", code.Text)
		}
	})

	t.Run("unterminated fence keeps trailing text", func(t *testing.T) {
		t.Parallel()

		blocks := c.body("Intro\n\n```\n\nHello world\n\nMore text", nil, nil)

		var para *ParagraphBlock
		for _, b := range blocks {
			if p, ok := b.(ParagraphBlock); ok && para == nil {
				para = &p
			}
		}
		if para == nil || para.Text != "Intro" {
			t.Errorf("leading paragraph lost: %#v", para)
		}

		code := onlyCodeBlock(t, blocks)
		if !strings.Contains(code.Text, "Hello world") || !strings.Contains(code.Text, "More text") {
			t.Errorf("text after stray fence dropped: %q", code.Text)
		}
	})

	t.Run("text after fence still dispatched", func(t *testing.T) {
		t.Parallel()

		blocks := c.body("```sh\nls\n```\n\nafterwards", nil, nil)
		var para *ParagraphBlock
		for _, b := range blocks {
			if p, ok := b.(ParagraphBlock); ok {
				para = &p
			}
		}
		if para == nil || para.Text != "afterwards" {
			t.Errorf("trailing paragraph lost: %#v", para)
		}
	})
}

func onlyCodeBlock(t *testing.T, blocks []LayoutBlock) CodeBlock {
	t.Helper()
	var found []CodeBlock
	for _, b := range blocks {
		if cb, ok := b.(CodeBlock); ok {
			found = append(found, cb)
		}
	}
	if len(found) != 1 {
		t.Fatalf("expected exactly 1 code block, got %d", len(found))
	}
	return found[0]
}

func TestDispatchLines(t *testing.T) {
	t.Parallel()

	c := testCompositor()

	tests := []struct {
		name  string
		lines []string
		check func(t *testing.T, blocks []LayoutBlock)
	}{
		{
			name:  "heading levels",
			lines: []string{"## Section", "#### Detail"},
			check: func(t *testing.T, blocks []LayoutBlock) {
				var hs []HeadingBlock
				for _, b := range blocks {
					if h, ok := b.(HeadingBlock); ok {
						hs = append(hs, h)
					}
				}
				if len(hs) != 2 || hs[0].Level != 2 || hs[1].Level != 4 {
					t.Errorf("unexpected headings %#v", hs)
				}
			},
		},
		{
			name:  "flat and indented bullets",
			lines: []string{"- top", "  - nested", "* star"},
			check: func(t *testing.T, blocks []LayoutBlock) {
				want := []BulletBlock{
					{Text: "top"},
					{Text: "nested", Indented: true},
					{Text: "star"},
				}
				var got []BulletBlock
				for _, b := range blocks {
					if bb, ok := b.(BulletBlock); ok {
						got = append(got, bb)
					}
				}
				if !reflect.DeepEqual(got, want) {
					t.Errorf("bullets = %#v, want %#v", got, want)
				}
			},
		},
		{
			name:  "numbered items keep their prefix",
			lines: []string{"1. first", "2. second"},
			check: func(t *testing.T, blocks []LayoutBlock) {
				n, ok := blocks[0].(NumberedBlock)
				if !ok || n.Text != "1. first" {
					t.Errorf("unexpected numbered block %#v", blocks[0])
				}
			},
		},
		{
			name:  "paragraph gets inline markup and trailing spacer",
			lines: []string{"Some *italic* and **bold** text."},
			check: func(t *testing.T, blocks []LayoutBlock) {
				p, ok := blocks[0].(ParagraphBlock)
				if !ok {
					t.Fatalf("block 0 = %T, want ParagraphBlock", blocks[0])
				}
				if p.Text != "Some <i>italic</i> and <b>bold</b> text." {
					t.Errorf("inline markup = %q", p.Text)
				}
				if _, ok := blocks[1].(SpacerBlock); !ok {
					t.Errorf("paragraph not followed by spacer, got %T", blocks[1])
				}
			},
		},
		{
			name:  "stray fence dropped",
			lines: []string{"```"},
			check: func(t *testing.T, blocks []LayoutBlock) {
				if len(blocks) != 0 {
					t.Errorf("expected no blocks, got %#v", blocks)
				}
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tt.check(t, c.dispatchLines(tt.lines))
		})
	}
}

func TestNormalizeTableCells(t *testing.T) {
	t.Parallel()

	in := TableBlock{
		Headers: []string{"`code`", "plain"},
		Rows:    [][]string{{"**bold**", "[link](http://x)"}},
	}
	out := normalizeTableCells(in)
	if out.Headers[0] != "<code>code</code>" {
		t.Errorf("header cell = %q", out.Headers[0])
	}
	if out.Rows[0][0] != "<b>bold</b>" || out.Rows[0][1] != "link" {
		t.Errorf("row cells = %#v", out.Rows[0])
	}
	// Input must stay untouched.
	if in.Rows[0][0] != "**bold**" {
		t.Error("normalizeTableCells mutated its input")
	}
}

package docforge

// LayoutBlock is the single unit of composed content consumed by the
// page renderer. The compositor's whole job is producing a valid,
// ordered sequence of these.
type LayoutBlock interface {
	layoutBlock()
}

// HeadingBlock is a section heading. Level 0 is reserved for the
// document title on the title page.
type HeadingBlock struct {
	Level int
	Text  string
}

// ParagraphBlock is body text with inline presentation markup.
type ParagraphBlock struct {
	Text string
}

// BulletBlock is one flat list item. Indented items carry a distinct
// marker rather than opening a nested list structure.
type BulletBlock struct {
	Text     string
	Indented bool
}

// NumberedBlock is one item of a numbered list, text still carrying its
// own number prefix.
type NumberedBlock struct {
	Text string
}

// SubtitleBlock is the muted line under the document title.
type SubtitleBlock struct {
	Text string
}

// CodeBlock is preformatted text, optionally tagged with a language.
type CodeBlock struct {
	Language string
	Text     string
}

// TableLayoutBlock renders a parsed table. Plain tables (title-page
// metadata) skip the colored header row.
type TableLayoutBlock struct {
	Table TableBlock
	Plain bool
}

// ImageBlock places a resolved diagram at its fitted display size.
type ImageBlock struct {
	Diagram *ResolvedDiagram
	Name    string // unique registration name for the PDF engine
}

// TocLineBlock is one dot-filled table-of-contents line.
type TocLineBlock struct {
	Text  string
	Level int // 1-based heading level driving the TOC style
}

// PageBreakBlock forces a new page.
type PageBreakBlock struct{}

// SpacerBlock inserts vertical whitespace, in points.
type SpacerBlock struct {
	Height float64
}

// QuoteBlock is indented, emphasized text (title-page note).
type QuoteBlock struct {
	Text string
}

func (HeadingBlock) layoutBlock()     {}
func (SubtitleBlock) layoutBlock()    {}
func (ParagraphBlock) layoutBlock()   {}
func (BulletBlock) layoutBlock()      {}
func (NumberedBlock) layoutBlock()    {}
func (CodeBlock) layoutBlock()        {}
func (TableLayoutBlock) layoutBlock() {}
func (ImageBlock) layoutBlock()       {}
func (TocLineBlock) layoutBlock()     {}
func (PageBreakBlock) layoutBlock()   {}
func (SpacerBlock) layoutBlock()      {}
func (QuoteBlock) layoutBlock()       {}

package docforge

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// pdfRenderer abstracts layout-block rendering to allow a fake in tests.
type pdfRenderer interface {
	Render(blocks []LayoutBlock, meta documentMeta) ([]byte, error)
}

// Compile-time interface check.
var _ pdfRenderer = (*fpdfRenderer)(nil)

// documentMeta is the document-level metadata stamped into the PDF and
// its page furniture.
type documentMeta struct {
	Title  string
	Author string
}

// Page geometry in points (US Letter).
const (
	pageMarginSide   = 72.0
	pageMarginTop    = 90.0 // extra room for the header rule
	pageMarginBottom = 72.0
	headerRuleY      = 50.0
	footerY          = 30.0
)

// styleRole is the closed set of presentation roles. The style table is
// built once at renderer construction and never mutated.
type styleRole int

const (
	roleTitle styleRole = iota
	roleSubtitle
	roleH1
	roleH2
	roleH3
	roleH4
	roleBody
	roleBullet
	roleCode
	roleQuote
	roleTOC1
	roleTOC2
	roleTOC3
	roleTableHeader
	roleTableCell
)

// rgb is a plain 8-bit color triple.
type rgb struct{ r, g, b int }

// Palette shared with the header rule and table chrome.
var (
	colorAccent    = rgb{34, 211, 238}  // #22D3EE
	colorInk       = rgb{26, 26, 26}    // #1a1a1a
	colorBody      = rgb{45, 55, 72}    // #2d3748
	colorMuted     = rgb{74, 85, 104}   // #4a5568
	colorFaint     = rgb{102, 102, 102} // #666666
	colorCodeFill  = rgb{247, 250, 252} // #f7fafc
	colorGridLine  = rgb{226, 232, 240} // #e2e8f0
	colorTableRowA = rgb{255, 255, 255} // #ffffff
	colorTableRowB = rgb{248, 249, 250} // #f8f9fa
)

// textStyle is one immutable entry of the style table.
type textStyle struct {
	family string
	weight string // "", "B", "I", "BI"
	size   float64
	color  rgb
	lineH  float64 // leading in points
	indent float64
}

// buildStyleTable populates the full role table. Adding a role means
// adding it here; nothing mutates the table afterwards.
func buildStyleTable() map[styleRole]textStyle {
	return map[styleRole]textStyle{
		roleTitle:       {family: "Helvetica", weight: "B", size: 28, color: colorInk, lineH: 34},
		roleSubtitle:    {family: "Helvetica", size: 16, color: colorFaint, lineH: 20},
		roleH1:          {family: "Helvetica", weight: "B", size: 24, color: colorAccent, lineH: 28},
		roleH2:          {family: "Helvetica", weight: "B", size: 18, color: colorBody, lineH: 22},
		roleH3:          {family: "Helvetica", weight: "B", size: 14, color: colorMuted, lineH: 18},
		roleH4:          {family: "Helvetica", weight: "B", size: 12, color: colorMuted, lineH: 16},
		roleBody:        {family: "Helvetica", size: 11, color: colorBody, lineH: 14},
		roleBullet:      {family: "Helvetica", size: 11, color: colorBody, lineH: 14, indent: 20},
		roleCode:        {family: "Courier", weight: "B", size: 9, color: colorBody, lineH: 11},
		roleQuote:       {family: "Helvetica", weight: "I", size: 11, color: colorMuted, lineH: 14, indent: 30},
		roleTOC1:        {family: "Helvetica", weight: "B", size: 11, color: colorBody, lineH: 15},
		roleTOC2:        {family: "Helvetica", size: 10, color: colorMuted, lineH: 13, indent: 15},
		roleTOC3:        {family: "Helvetica", size: 9, color: colorFaint, lineH: 11, indent: 30},
		roleTableHeader: {family: "Helvetica", weight: "B", size: 10, color: rgb{255, 255, 255}, lineH: 12},
		roleTableCell:   {family: "Helvetica", size: 9, color: colorBody, lineH: 11},
	}
}

// fpdfRenderer drives the external PDF engine over the block sequence.
type fpdfRenderer struct {
	styles map[styleRole]textStyle
}

func newFpdfRenderer() *fpdfRenderer {
	return &fpdfRenderer{styles: buildStyleTable()}
}

// Render lays the block sequence into a paginated PDF. Any engine error
// is fatal for the whole document; no partial output is returned.
func (r *fpdfRenderer) Render(blocks []LayoutBlock, meta documentMeta) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetTitle(meta.Title, true)
	pdf.SetAuthor(meta.Author, true)
	pdf.SetMargins(pageMarginSide, pageMarginTop, pageMarginSide)
	pdf.SetAutoPageBreak(true, pageMarginBottom)
	pdf.AliasNbPages("")

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	generated := time.Now().Format("January 2, 2006")

	pdf.SetHeaderFunc(func() {
		r.setDraw(pdf, colorAccent)
		pdf.SetLineWidth(2)
		pdf.Line(pageMarginSide, headerRuleY, pageW-pageMarginSide, headerRuleY)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-(footerY + 10))
		pdf.SetFont("Helvetica", "", 8)
		r.setText(pdf, colorFaint)
		third := (pageW - 2*pageMarginSide) / 3
		pdf.CellFormat(third, 10, tr("Generated on "+generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(third, 10, tr(meta.Title), "", 0, "C", false, 0, "")
		pdf.CellFormat(third, 10, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	for _, block := range blocks {
		r.renderBlock(pdf, tr, block)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	return buf.Bytes(), nil
}

// renderBlock dispatches one layout block onto the page.
func (r *fpdfRenderer) renderBlock(pdf *fpdf.Fpdf, tr func(string) string, block LayoutBlock) {
	switch b := block.(type) {
	case PageBreakBlock:
		pdf.AddPage()
	case SpacerBlock:
		pdf.Ln(b.Height)
	case HeadingBlock:
		r.renderHeading(pdf, tr, b)
	case SubtitleBlock:
		st := r.styles[roleSubtitle]
		r.applyStyle(pdf, st)
		pdf.MultiCell(0, st.lineH, tr(stripInlineTags(b.Text)), "", "C", false)
	case ParagraphBlock:
		r.writeInline(pdf, tr, b.Text, r.styles[roleBody])
		pdf.Ln(r.styles[roleBody].lineH)
	case BulletBlock:
		r.renderBullet(pdf, tr, b)
	case NumberedBlock:
		st := r.styles[roleBullet]
		pdf.SetX(pageMarginSide + st.indent)
		r.writeInline(pdf, tr, b.Text, st)
		pdf.Ln(st.lineH)
	case QuoteBlock:
		r.renderQuote(pdf, tr, b)
	case TocLineBlock:
		r.renderTocLine(pdf, tr, b)
	case CodeBlock:
		r.renderCode(pdf, tr, b)
	case TableLayoutBlock:
		r.renderTable(pdf, tr, b)
	case ImageBlock:
		r.renderImage(pdf, b)
	}
}

func (r *fpdfRenderer) renderHeading(pdf *fpdf.Fpdf, tr func(string) string, b HeadingBlock) {
	role := roleH1
	switch b.Level {
	case 0:
		role = roleTitle
	case 2:
		role = roleH2
	case 3:
		role = roleH3
	case 4:
		role = roleH4
	}
	st := r.styles[role]

	if role == roleTitle {
		r.applyStyle(pdf, st)
		pdf.MultiCell(0, st.lineH, tr(stripInlineTags(b.Text)), "", "C", false)
		return
	}
	r.writeInline(pdf, tr, b.Text, st)
	pdf.Ln(st.lineH)
}

func (r *fpdfRenderer) renderBullet(pdf *fpdf.Fpdf, tr func(string) string, b BulletBlock) {
	st := r.styles[roleBullet]
	marker := "• " // bullet
	indent := st.indent
	if b.Indented {
		marker = "– " // distinct marker for indented items, flat list
		indent += 16
	}
	pdf.SetX(pageMarginSide + indent)
	r.applyStyle(pdf, st)
	pdf.Write(st.lineH, tr(marker))
	r.writeInline(pdf, tr, b.Text, st)
	pdf.Ln(st.lineH)
}

func (r *fpdfRenderer) renderQuote(pdf *fpdf.Fpdf, tr func(string) string, b QuoteBlock) {
	st := r.styles[roleQuote]
	left, _, right, _ := pdf.GetMargins()
	pdf.SetLeftMargin(left + st.indent)
	pdf.SetRightMargin(right + st.indent)
	r.applyStyle(pdf, st)
	pdf.MultiCell(0, st.lineH, tr(b.Text), "", "L", false)
	pdf.SetLeftMargin(left)
	pdf.SetRightMargin(right)
}

func (r *fpdfRenderer) renderTocLine(pdf *fpdf.Fpdf, tr func(string) string, b TocLineBlock) {
	role := roleTOC1
	switch {
	case b.Level == 2:
		role = roleTOC2
	case b.Level >= 3:
		role = roleTOC3
	}
	st := r.styles[role]
	pdf.SetX(pageMarginSide + st.indent)
	r.applyStyle(pdf, st)
	pdf.CellFormat(0, st.lineH, tr(b.Text), "", 1, "L", false, 0, "")
	pdf.Ln(4)
}

// renderCode paints a filled panel and writes syntax-colored lines over
// it. Tokens come from chroma; the lexer falls back to content analysis
// when the fence carried no language tag.
func (r *fpdfRenderer) renderCode(pdf *fpdf.Fpdf, tr func(string) string, b CodeBlock) {
	st := r.styles[roleCode]
	const pad = 6.0

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMarginSide
	breakY := pageH - pageMarginBottom

	lines := tokenizeCode(b.Language, b.Text)
	r.setFill(pdf, colorCodeFill)
	r.setDraw(pdf, colorGridLine)
	pdf.SetLineWidth(0.5)
	pdf.SetFont(st.family, st.weight, st.size)

	for _, line := range lines {
		y := pdf.GetY()
		if y+st.lineH+pad > breakY {
			pdf.AddPage()
			y = pdf.GetY()
		}
		pdf.SetXY(pageMarginSide, y)
		pdf.CellFormat(contentW, st.lineH+2, "", "", 0, "", true, 0, "")
		pdf.SetXY(pageMarginSide+pad, y+1)
		for _, seg := range line {
			r.setText(pdf, seg.color)
			pdf.Write(st.lineH, tr(seg.text))
		}
		pdf.SetXY(pageMarginSide, y+st.lineH+2)
	}
	r.setText(pdf, st.color)
}

// renderTable draws a grid table: colored header row, alternating data
// rows, cells wrapped to a uniform column width.
func (r *fpdfRenderer) renderTable(pdf *fpdf.Fpdf, tr func(string) string, b TableLayoutBlock) {
	cols := len(b.Table.Headers)
	if cols == 0 {
		return
	}

	pageW, pageH := pdf.GetPageSize()
	contentW := pageW - 2*pageMarginSide
	colW := contentW / float64(cols)
	breakY := pageH - pageMarginBottom
	const pad = 4.0

	if !b.Plain && headerHasText(b.Table.Headers) {
		r.setFill(pdf, colorAccent)
		r.drawTableRow(pdf, tr, b.Table.Headers, r.styles[roleTableHeader], colW, pad, true, "C", breakY, false)
	}

	cellStyle := r.styles[roleTableCell]
	for i, row := range b.Table.Rows {
		if i%2 == 0 {
			r.setFill(pdf, colorTableRowA)
		} else {
			r.setFill(pdf, colorTableRowB)
		}
		r.drawTableRow(pdf, tr, row, cellStyle, colW, pad, !b.Plain, "L", breakY, b.Plain)
	}
	pdf.Ln(4)
}

// drawTableRow renders one row at a shared height derived from the
// tallest wrapped cell.
func (r *fpdfRenderer) drawTableRow(pdf *fpdf.Fpdf, tr func(string) string, cells []string, st textStyle, colW, pad float64, fill bool, align string, breakY float64, boldFirstCol bool) {
	wrapped := make([][]string, len(cells))
	maxLines := 1
	for i, cell := range cells {
		pdf.SetFont(st.family, cellWeight(st.weight, boldFirstCol && i == 0), st.size)
		wrapped[i] = pdf.SplitText(tr(stripInlineTags(cell)), colW-2*pad)
		if len(wrapped[i]) > maxLines {
			maxLines = len(wrapped[i])
		}
	}
	rowH := float64(maxLines)*st.lineH + 2*pad

	y := pdf.GetY()
	if y+rowH > breakY {
		pdf.AddPage()
		y = pdf.GetY()
	}

	r.setDraw(pdf, colorGridLine)
	pdf.SetLineWidth(1)
	x := pageMarginSide
	for i := range cells {
		mode := "D"
		if fill {
			mode = "FD"
		}
		pdf.Rect(x, y, colW, rowH, mode)
		r.setText(pdf, st.color)
		pdf.SetFont(st.family, cellWeight(st.weight, boldFirstCol && i == 0), st.size)
		for j, line := range wrapped[i] {
			pdf.SetXY(x+pad, y+pad+float64(j)*st.lineH)
			pdf.CellFormat(colW-2*pad, st.lineH, line, "", 0, align, false, 0, "")
		}
		x += colW
	}
	pdf.SetXY(pageMarginSide, y+rowH)
}

// renderImage centers the fitted raster and advances the cursor.
func (r *fpdfRenderer) renderImage(pdf *fpdf.Fpdf, b ImageBlock) {
	d := b.Diagram
	if d == nil || len(d.Raster) == 0 {
		return
	}

	pageW, pageH := pdf.GetPageSize()
	if pdf.GetY()+d.DisplayHeight > pageH-pageMarginBottom {
		pdf.AddPage()
	}

	opts := fpdf.ImageOptions{ImageType: strings.ToUpper(d.Format), ReadDpi: false}
	pdf.RegisterImageOptionsReader(b.Name, opts, bytes.NewReader(d.Raster))
	x := (pageW - d.DisplayWidth) / 2
	pdf.ImageOptions(b.Name, x, pdf.GetY(), d.DisplayWidth, d.DisplayHeight, true, opts, 0, "")
}

func (r *fpdfRenderer) applyStyle(pdf *fpdf.Fpdf, st textStyle) {
	pdf.SetFont(st.family, st.weight, st.size)
	r.setText(pdf, st.color)
}

func (r *fpdfRenderer) setText(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
func (r *fpdfRenderer) setFill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func (r *fpdfRenderer) setDraw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }

// codeSegment is a colored run of one code line.
type codeSegment struct {
	text  string
	color rgb
}

// tokenizeCode splits code into per-line colored segments using chroma.
func tokenizeCode(language, code string) [][]codeSegment {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get("github")
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		// Tokenization is cosmetic; fall back to flat color.
		var lines [][]codeSegment
		for _, line := range strings.Split(code, "\n") {
			lines = append(lines, []codeSegment{{text: line, color: colorBody}})
		}
		return lines
	}

	lines := [][]codeSegment{{}}
	for _, tok := range iterator.Tokens() {
		color := colorBody
		if entry := style.Get(tok.Type); entry.Colour.IsSet() {
			color = rgb{
				int(entry.Colour.Red()),
				int(entry.Colour.Green()),
				int(entry.Colour.Blue()),
			}
		}
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				lines = append(lines, []codeSegment{})
			}
			if part == "" {
				continue
			}
			last := len(lines) - 1
			lines[last] = append(lines[last], codeSegment{text: part, color: color})
		}
	}
	// Tokens for code ending in a newline leave a trailing empty line.
	if len(lines) > 1 && len(lines[len(lines)-1]) == 0 {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// cellWeight promotes a cell to bold for plain-table label columns.
func cellWeight(weight string, bold bool) string {
	if bold && !strings.Contains(weight, "B") {
		return weight + "B"
	}
	return weight
}

// inlineRun is a styled fragment of one text line.
type inlineRun struct {
	text   string
	bold   bool
	italic bool
	code   bool
	strike bool
}

// writeInline writes text carrying <b>/<i>/<code>/<strike> markup as
// styled runs, flowing and wrapping at the right margin.
func (r *fpdfRenderer) writeInline(pdf *fpdf.Fpdf, tr func(string) string, text string, base textStyle) {
	for _, run := range parseInlineRuns(text) {
		family, weight := base.family, base.weight
		if run.code {
			family, weight = "Courier", "B"
		} else {
			if run.bold {
				weight += "B"
			}
			if run.italic {
				weight += "I"
			}
		}
		pdf.SetFont(family, normalizeWeight(weight), base.size)
		r.setText(pdf, base.color)

		startX, startY := pdf.GetX(), pdf.GetY()
		pdf.Write(base.lineH, tr(run.text))
		if run.strike && pdf.GetY() == startY {
			// Struck runs that stayed on one line get a mid-height rule.
			r.setDraw(pdf, base.color)
			pdf.SetLineWidth(0.7)
			pdf.Line(startX, startY+base.lineH/2, pdf.GetX(), startY+base.lineH/2)
		}
	}
}

// normalizeWeight deduplicates accumulated font style letters.
func normalizeWeight(w string) string {
	bold := strings.Contains(w, "B")
	italic := strings.Contains(w, "I")
	switch {
	case bold && italic:
		return "BI"
	case bold:
		return "B"
	case italic:
		return "I"
	default:
		return ""
	}
}

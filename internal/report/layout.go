package report

import (
	"fmt"
)

// epsilon absorbs float drift when comparing accumulated row heights.
const epsilon = 1e-9

// Measurer splits text into the lines it occupies inside a given width.
type Measurer interface {
	SplitLines(text string, width float64) []string
}

// Layout is the paginated form of a Table.
type Layout struct {
	Header    []string  // truncated column headers
	Widths    []float64 // column widths, label first
	Pages     []Page
	End       float64   // cursor Y after the last row
	Signature Placement // where a signature block would go after the table
	Overflow  bool      // some row extends past the safe boundary
}

// Page is the table fragment drawn on one page.
type Page struct {
	Number  int     // 1-based, relative to the page the table starts on
	Break   bool    // a new page must be started before drawing
	HeaderY float64 // Y of the repeated header row
	Rows    []Row
}

// Row is one placed table row.
type Row struct {
	Index   int // position in Table.Rows
	Y       float64
	Height  float64
	Label   []string // wrapped label lines
	Cells   []string // truncated sibling cells
	Clipped bool     // label lines were dropped to fit a fresh page
}

// Placement locates a block that follows the table.
type Placement struct {
	Page    int
	Y       float64
	NewPage bool
}

// PageCount counts the pages touched by the table and its signature.
func (l *Layout) PageCount() int {
	n := len(l.Pages)
	if l.Signature.NewPage {
		n++
	}
	return n
}

// ClippedRows lists the indexes of rows whose label was cut to fit a page.
func (l *Layout) ClippedRows() []int {
	var out []int
	for _, pg := range l.Pages {
		for _, r := range pg.Rows {
			if r.Clipped {
				out = append(out, r.Index)
			}
		}
	}
	return out
}

// Paginator places tables on pages. It keeps no state between calls.
type Paginator struct {
	cfg     Config
	geom    Geometry
	measure Measurer
}

func NewPaginator(cfg Config, geom Geometry, m Measurer) *Paginator {
	return &Paginator{cfg: cfg.withDefaults(), geom: geom, measure: m}
}

func (p *Paginator) Config() Config     { return p.cfg }
func (p *Paginator) Geometry() Geometry { return p.geom }

// ColumnWidths gives the label column its fixed width and splits the rest of
// the usable width evenly among the other n-1 columns.
func (p *Paginator) ColumnWidths(n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewColumns, n)
	}
	shared := (p.geom.UsableWidth() - p.cfg.LabelWidth) / float64(n-1)
	if shared <= 0 {
		return nil, fmt.Errorf("%w: label %.1f, usable %.1f", ErrLabelTooWide, p.cfg.LabelWidth, p.geom.UsableWidth())
	}
	widths := make([]float64, n)
	widths[0] = p.cfg.LabelWidth
	for i := 1; i < n; i++ {
		widths[i] = shared
	}
	return widths, nil
}

// Layout paginates t starting at cursor Y startY on the current page. Row
// heights follow the wrapped label; every page starts with the header row.
func (p *Paginator) Layout(t Table, startY float64) (*Layout, error) {
	l, err := p.begin(t)
	if err != nil {
		return nil, err
	}
	lh := p.cfg.LineHeight
	safe := p.geom.SafeBottom()
	top := p.geom.ContentTop

	page := p.headerPage(1, startY)
	y := page.HeaderY + lh

	for i, src := range t.Rows {
		lines := p.labelLines(src[0])
		h := float64(len(lines)) * lh

		fresh := len(page.Rows) == 0 && page.HeaderY <= top+epsilon
		if y+h > safe+epsilon && !fresh {
			l.Pages = append(l.Pages, page)
			page = Page{Number: page.Number + 1, Break: true, HeaderY: top}
			y = top + lh
		}

		row := Row{Index: i, Y: y, Label: lines, Cells: p.siblingCells(src)}
		if y+h > safe+epsilon {
			if p.cfg.Overflow == OverflowClip {
				fit := max(int((safe-y+epsilon)/lh), 1)
				if fit < len(lines) {
					row.Label = clipLines(lines, fit)
					row.Clipped = true
					h = float64(fit) * lh
				}
			}
			if y+h > safe+epsilon {
				l.Overflow = true
			}
		}
		row.Height = h
		page.Rows = append(page.Rows, row)
		y += h
	}

	l.Pages = append(l.Pages, page)
	l.End = y
	l.Signature = p.PlaceSignature(page.Number, y)
	return l, nil
}

// LayoutFixed is the header-only variant: every row is one line high, labels
// are cut to a single line and the table never breaks across pages. Rows that
// run past the safe boundary set Overflow.
func (p *Paginator) LayoutFixed(t Table, startY float64) (*Layout, error) {
	l, err := p.begin(t)
	if err != nil {
		return nil, err
	}
	lh := p.cfg.LineHeight
	budget := p.cfg.LabelBudget
	if budget <= 0 {
		budget = p.cfg.HeaderBudget
	}

	page := p.headerPage(1, startY)
	y := page.HeaderY + lh
	for i, src := range t.Rows {
		page.Rows = append(page.Rows, Row{
			Index:  i,
			Y:      y,
			Height: lh,
			Label:  []string{Truncate(src[0], budget, true)},
			Cells:  p.siblingCells(src),
		})
		y += lh
	}
	if y > p.geom.SafeBottom()+epsilon {
		l.Overflow = true
	}

	l.Pages = append(l.Pages, page)
	l.End = y
	l.Signature = p.PlaceSignature(page.Number, y)
	return l, nil
}

// PlaceSignature puts the signature block below y on the given page, or at
// the top of the next page when it would cross the safe boundary.
func (p *Paginator) PlaceSignature(page int, y float64) Placement {
	if y+p.cfg.SignatureHeight() > p.geom.SafeBottom()+epsilon {
		return Placement{Page: page + 1, Y: p.geom.ContentTop + p.cfg.SignatureGap, NewPage: true}
	}
	return Placement{Page: page, Y: y + p.cfg.SignatureGap}
}

func (p *Paginator) begin(t Table) (*Layout, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	widths, err := p.ColumnWidths(len(t.Columns))
	if err != nil {
		return nil, err
	}
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = Truncate(c, p.cfg.HeaderBudget, false)
	}
	return &Layout{Header: header, Widths: widths}, nil
}

// headerPage opens the first fragment, moving the header to a new page when
// it does not fit below startY.
func (p *Paginator) headerPage(number int, startY float64) Page {
	if startY+p.cfg.LineHeight > p.geom.SafeBottom()+epsilon {
		return Page{Number: number, Break: true, HeaderY: p.geom.ContentTop}
	}
	return Page{Number: number, HeaderY: startY}
}

func (p *Paginator) labelLines(label string) []string {
	text := Truncate(label, p.cfg.LabelBudget, p.cfg.LabelEllipsis)
	lines := p.measure.SplitLines(text, p.cfg.LabelWidth)
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func (p *Paginator) siblingCells(row []string) []string {
	cells := make([]string, len(row)-1)
	for i, c := range row[1:] {
		cells[i] = Truncate(c, p.cfg.CellBudget, false)
	}
	return cells
}

func clipLines(lines []string, keep int) []string {
	out := make([]string, keep)
	copy(out, lines[:keep])
	last := []rune(out[keep-1])
	if len(last) > len(ellipsis) {
		last = last[:len(last)-len(ellipsis)]
	}
	out[keep-1] = string(last) + ellipsis
	return out
}

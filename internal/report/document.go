package report

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

const (
	fontFamily    = "Arial"
	tableFontSize = 7
	bodyFontSize  = 10
	bodyLine      = 6
	titleLine     = 10
	logoMaxHeight = 30
)

// Signature is the closing block of a report.
type Signature struct {
	Name string
	Role string
}

// Options configures a Document.
type Options struct {
	Orientation string // "L" (default) or "P"
	Title       string
	LogoPath    string
	Signature   Signature
	Layout      Config
	// BottomMargin overrides the page's distance to the safe boundary.
	BottomMargin float64
	CreatedAt    time.Time // fixed creation date; zero uses fpdf's clock
	ReportID     string
}

// Document is an A4 report with a logo/title header, a page-number footer
// and tables laid out by a Paginator. It is not safe for concurrent use.
type Document struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	opts Options
	geom Geometry
	pag  *Paginator
	body *FontMeasurer
	logo *logoImage
}

type logoImage struct {
	name string
	w, h float64
}

func NewDocument(opts Options) *Document {
	geom := A4Landscape()
	if strings.EqualFold(opts.Orientation, "P") {
		opts.Orientation = "P"
		geom = A4Portrait()
	} else {
		opts.Orientation = "L"
	}
	if opts.BottomMargin > 0 {
		geom.BottomMargin = opts.BottomMargin
	}

	pdf := fpdf.New(opts.Orientation, "mm", "A4", "")
	pdf.SetMargins(geom.MarginLeft, 10, geom.MarginRight)
	// Page breaks come from the paginator, never from fpdf.
	pdf.SetAutoPageBreak(false, 0)

	d := &Document{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		opts: opts,
		geom: geom,
		pag:  NewPaginator(opts.Layout, geom, NewFontMeasurer(pdf, fontFamily, "B", tableFontSize)),
		body: NewFontMeasurer(pdf, fontFamily, "", bodyFontSize),
	}

	pdf.SetTitle(opts.Title, true)
	pdf.SetCreator("feedbackdash", true)
	if opts.Signature.Name != "" {
		pdf.SetAuthor(opts.Signature.Name, true)
	}
	if opts.ReportID != "" {
		pdf.SetKeywords(opts.ReportID, true)
	}
	if !opts.CreatedAt.IsZero() {
		pdf.SetCreationDate(opts.CreatedAt)
		pdf.SetModificationDate(opts.CreatedAt)
	}

	d.logo = d.registerLogo(opts.LogoPath)
	pdf.SetHeaderFunc(d.header)
	pdf.SetFooterFunc(d.footer)
	pdf.AddPage()
	return d
}

// Paginator exposes the layout engine bound to this document's page and fonts.
func (d *Document) Paginator() *Paginator { return d.pag }

// registerLogo loads the logo if it exists and decodes; a missing or broken
// logo leaves the header without one.
func (d *Document) registerLogo(path string) *logoImage {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		return nil
	}
	name := "logo-" + filepath.Base(path)
	d.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: format}, bytes.NewReader(data))

	w := 200.0
	if w > d.geom.UsableWidth() {
		w = d.geom.UsableWidth()
	}
	h := w * float64(cfg.Height) / float64(cfg.Width)
	if h > logoMaxHeight {
		h = logoMaxHeight
		w = h * float64(cfg.Width) / float64(cfg.Height)
	}
	return &logoImage{name: name, w: w, h: h}
}

func (d *Document) header() {
	if d.logo != nil {
		x := (d.geom.Width - d.logo.w) / 2
		d.pdf.ImageOptions(d.logo.name, x, 5, d.logo.w, d.logo.h, false, fpdf.ImageOptions{}, 0, "")
	}
	d.pdf.SetFont(fontFamily, "B", 12)
	d.pdf.SetXY(d.geom.MarginLeft, 40)
	d.pdf.CellFormat(0, titleLine, d.tr(latin1(d.opts.Title)), "", 1, "C", false, 0, "")
	d.pdf.SetXY(d.geom.MarginLeft, d.geom.ContentTop)
}

func (d *Document) footer() {
	d.pdf.SetY(-15)
	d.pdf.SetFont(fontFamily, "I", 8)
	d.pdf.CellFormat(0, 10, d.tr(fmt.Sprintf("Página %d", d.pdf.PageNo())), "", 0, "C", false, 0, "")
}

// ensure starts a new page when h does not fit below the cursor.
func (d *Document) ensure(h float64) {
	if d.pdf.GetY()+h > d.geom.SafeBottom()+epsilon {
		d.pdf.AddPage()
	}
}

// Chapter writes a bold section title.
func (d *Document) Chapter(title string) {
	d.pdf.SetFont(fontFamily, "B", 12)
	lines := d.pdf.SplitText(latin1(title), d.geom.UsableWidth())
	d.ensure(float64(len(lines)) * titleLine)
	for _, line := range lines {
		d.pdf.SetX(d.geom.MarginLeft)
		d.pdf.CellFormat(0, titleLine, d.tr(line), "", 1, "L", false, 0, "")
	}
	d.pdf.Ln(2)
}

// Paragraph writes wrapped body text, breaking pages between lines.
func (d *Document) Paragraph(text string) {
	for _, para := range strings.Split(text, "\n") {
		lines := d.body.SplitLines(para, d.geom.UsableWidth())
		if len(lines) == 0 {
			lines = []string{""}
		}
		d.pdf.SetFont(fontFamily, "", bodyFontSize)
		for _, line := range lines {
			d.ensure(bodyLine)
			d.pdf.SetX(d.geom.MarginLeft)
			d.pdf.CellFormat(0, bodyLine, d.tr(line), "", 1, "L", false, 0, "")
		}
	}
	d.pdf.Ln(2)
}

// Table paginates t from the cursor and draws it.
func (d *Document) Table(t Table) (*Layout, error) {
	l, err := d.pag.Layout(t, d.pdf.GetY())
	if err != nil {
		return nil, err
	}
	d.draw(l)
	return l, nil
}

// FixedTable draws t with the header-only layout. Use it for short tables
// whose labels fit on one line. A table that does not fit below the cursor
// is moved whole to a new page.
func (d *Document) FixedTable(t Table) (*Layout, error) {
	l, err := d.pag.LayoutFixed(t, d.pdf.GetY())
	if err != nil {
		return nil, err
	}
	if l.Overflow && d.pdf.GetY() > d.geom.ContentTop+epsilon {
		d.pdf.AddPage()
		if l, err = d.pag.LayoutFixed(t, d.pdf.GetY()); err != nil {
			return nil, err
		}
	}
	d.draw(l)
	return l, nil
}

func (d *Document) draw(l *Layout) {
	lh := d.pag.cfg.LineHeight
	for _, pg := range l.Pages {
		if pg.Break {
			d.pdf.AddPage()
		}
		d.pdf.SetFont(fontFamily, "", tableFontSize)
		x := d.geom.MarginLeft
		for i, h := range l.Header {
			d.pdf.SetXY(x, pg.HeaderY)
			d.pdf.CellFormat(l.Widths[i], lh, d.tr(latin1(h)), "1", 0, "", false, 0, "")
			x += l.Widths[i]
		}
		for _, row := range pg.Rows {
			d.drawRow(l, row)
		}
	}
	d.pdf.SetXY(d.geom.MarginLeft, l.End)
}

func (d *Document) drawRow(l *Layout, row Row) {
	lh := d.pag.cfg.LineHeight
	x := d.geom.MarginLeft

	d.pdf.Rect(x, row.Y, l.Widths[0], row.Height, "D")
	d.pdf.SetFont(fontFamily, "B", tableFontSize)
	for i, line := range row.Label {
		d.pdf.SetXY(x, row.Y+float64(i)*lh)
		d.pdf.CellFormat(l.Widths[0], lh, d.tr(latin1(line)), "", 0, "L", false, 0, "")
	}
	x += l.Widths[0]

	d.pdf.SetFont(fontFamily, "", tableFontSize)
	for i, cell := range row.Cells {
		d.pdf.SetXY(x, row.Y)
		d.pdf.CellFormat(l.Widths[i+1], row.Height, d.tr(latin1(cell)), "1", 0, "", false, 0, "")
		x += l.Widths[i+1]
	}
}

// Image embeds a PNG at the given width, keeping its aspect ratio.
func (d *Document) Image(name string, png []byte, width float64) error {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(png))
	if err != nil {
		return fmt.Errorf("decode image %s: %w", name, err)
	}
	if width <= 0 || width > d.geom.UsableWidth() {
		width = d.geom.UsableWidth()
	}
	h := width * float64(cfg.Height) / float64(cfg.Width)
	if room := d.geom.SafeBottom() - d.geom.ContentTop; h > room {
		h = room
		width = h * float64(cfg.Width) / float64(cfg.Height)
	}
	d.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	d.ensure(h)
	y := d.pdf.GetY()
	x := d.geom.MarginLeft + (d.geom.UsableWidth()-width)/2
	d.pdf.ImageOptions(name, x, y, width, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	d.pdf.SetXY(d.geom.MarginLeft, y+h+5)
	return d.pdf.Error()
}

// Signature appends the closing name/role block below the cursor, on a new
// page when it does not fit.
func (d *Document) Signature() {
	place := d.pag.PlaceSignature(d.pdf.PageNo(), d.pdf.GetY())
	if place.NewPage {
		d.pdf.AddPage()
	}
	lh := d.pag.cfg.SignatureLineHeight
	d.pdf.SetXY(d.geom.MarginLeft, place.Y)
	d.pdf.SetFont(fontFamily, "B", bodyFontSize)
	d.pdf.CellFormat(0, lh, d.tr(latin1(d.opts.Signature.Name)), "", 1, "", false, 0, "")
	d.pdf.SetFont(fontFamily, "", bodyFontSize)
	d.pdf.CellFormat(0, lh, d.tr(latin1(d.opts.Signature.Role)), "", 1, "", false, 0, "")
}

func (d *Document) PageCount() int { return d.pdf.PageCount() }

// Bytes finalizes the document. Any error recorded while drawing fails the
// whole document.
func (d *Document) Bytes() ([]byte, error) {
	if err := d.pdf.Error(); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

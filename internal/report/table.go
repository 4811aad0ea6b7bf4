// Package report lays out summary tables across fixed-size pages and renders
// them into PDF documents.
package report

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

var (
	ErrTooFewColumns = errors.New("table needs at least two columns")
	ErrRaggedRow     = errors.New("row cell count does not match columns")
	ErrLabelTooWide  = errors.New("label column leaves no room for other columns")
)

// Table is a rectangular table handed to the paginator. Columns[0] is the
// label column; it is the only column whose text wraps.
type Table struct {
	Columns []string
	Rows    [][]string
}

func (t Table) validate() error {
	if len(t.Columns) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewColumns, len(t.Columns))
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrRaggedRow, i, len(row), len(t.Columns))
		}
	}
	return nil
}

// Geometry describes a page in user units (mm).
type Geometry struct {
	Width        float64
	Height       float64
	MarginLeft   float64
	MarginRight  float64
	ContentTop   float64 // cursor Y on a fresh page, below the page header
	BottomMargin float64 // distance from the page bottom to the safe boundary
}

// A4Landscape matches the page used by the satisfaction report: 1cm side
// margins, a logo/title header and a 3cm bottom reserve for the footer.
func A4Landscape() Geometry {
	return Geometry{
		Width:        297,
		Height:       210,
		MarginLeft:   10,
		MarginRight:  10,
		ContentTop:   55,
		BottomMargin: 30,
	}
}

// A4Portrait is A4Landscape rotated.
func A4Portrait() Geometry {
	g := A4Landscape()
	g.Width, g.Height = g.Height, g.Width
	return g
}

func (g Geometry) UsableWidth() float64 {
	return g.Width - g.MarginLeft - g.MarginRight
}

// SafeBottom is the lowest Y a row's bottom edge may reach.
func (g Geometry) SafeBottom() float64 {
	return g.Height - g.BottomMargin
}

// OverflowPolicy decides what happens to a row too tall for a fresh page.
type OverflowPolicy int

const (
	// OverflowClip keeps the label lines that fit and ends the last one with
	// an ellipsis.
	OverflowClip OverflowPolicy = iota
	// OverflowDraw draws the whole row past the safe boundary.
	OverflowDraw
)

// ParseOverflowPolicy accepts "clip" or "draw".
func ParseOverflowPolicy(s string) (OverflowPolicy, error) {
	switch s {
	case "", "clip":
		return OverflowClip, nil
	case "draw":
		return OverflowDraw, nil
	}
	return OverflowClip, fmt.Errorf("unknown overflow policy %q", s)
}

// Config controls table layout.
type Config struct {
	LabelWidth    float64 // absolute width of the label column
	LineHeight    float64 // base line height; rows are a multiple of it
	HeaderBudget  int     // max runes per header cell
	CellBudget    int     // max runes per data cell
	LabelBudget   int     // max runes per label; 0 lets labels wrap freely
	LabelEllipsis bool    // end truncated labels with "..."

	SignatureGap        float64
	SignatureLineHeight float64

	Overflow OverflowPolicy
}

// DefaultConfig returns the layout used by the area summary report.
func DefaultConfig() Config {
	return Config{
		LabelWidth:          30,
		LineHeight:          6,
		HeaderBudget:        20,
		CellBudget:          15,
		SignatureGap:        30,
		SignatureLineHeight: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LabelWidth <= 0 {
		c.LabelWidth = d.LabelWidth
	}
	if c.LineHeight <= 0 {
		c.LineHeight = d.LineHeight
	}
	if c.HeaderBudget <= 0 {
		c.HeaderBudget = d.HeaderBudget
	}
	if c.CellBudget <= 0 {
		c.CellBudget = d.CellBudget
	}
	if c.SignatureGap <= 0 {
		c.SignatureGap = d.SignatureGap
	}
	if c.SignatureLineHeight <= 0 {
		c.SignatureLineHeight = d.SignatureLineHeight
	}
	return c
}

// SignatureHeight is the vertical space the signature block needs.
func (c Config) SignatureHeight() float64 {
	return c.SignatureGap + 2*c.SignatureLineHeight
}

const ellipsis = "..."

// Truncate cuts s to at most budget runes. With mark set, a cut string ends
// in "..." and still fits the budget. A budget <= 0 disables truncation.
func Truncate(s string, budget int, mark bool) string {
	if budget <= 0 || utf8.RuneCountInString(s) <= budget {
		return s
	}
	r := []rune(s)
	if mark && budget > len(ellipsis) {
		return string(r[:budget-len(ellipsis)]) + ellipsis
	}
	return string(r[:budget])
}

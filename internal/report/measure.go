package report

import (
	"strings"

	"github.com/go-pdf/fpdf"
)

// FontMeasurer wraps text with the metrics of an fpdf core font.
type FontMeasurer struct {
	pdf    *fpdf.Fpdf
	family string
	style  string
	size   float64
}

func NewFontMeasurer(pdf *fpdf.Fpdf, family, style string, size float64) *FontMeasurer {
	return &FontMeasurer{pdf: pdf, family: family, style: style, size: size}
}

// SplitLines selects the measurer's font and lets fpdf break text at word
// boundaries inside width, cell margins included.
func (m *FontMeasurer) SplitLines(text string, width float64) []string {
	m.pdf.SetFont(m.family, m.style, m.size)
	return m.pdf.SplitText(latin1(text), width)
}

var latin1Replacer = strings.NewReplacer(
	"–", "-", "—", "-",
	"‘", "'", "’", "'",
	"“", "\"", "”", "\"",
	"…", "...",
)

// latin1 maps text onto the Latin-1 range covered by the core font width
// tables. Runes outside it become '?'.
func latin1(s string) string {
	s = latin1Replacer.Replace(s)
	for _, r := range s {
		if r > 0xff {
			return strings.Map(func(r rune) rune {
				if r > 0xff {
					return '?'
				}
				return r
			}, s)
		}
	}
	return s
}

package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/feedbackdash/internal/report"
)

// tableWidth is the usable width of an A4 page in twips.
const tableWidth = 9638

// DOCX writes a title, an optional list of paragraphs and the table with a
// bold header row.
func DOCX(title string, t report.Table, paragraphs ...string) ([]byte, error) {
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("docx: %w", report.ErrTooFewColumns)
	}
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().Justification("center").AddText(title).Bold().Size("28")
	for _, p := range paragraphs {
		w.AddParagraph().AddText(p).Size("22")
	}

	tbl := w.AddTable(len(t.Rows)+1, len(t.Columns), tableWidth, nil)
	for j, c := range t.Columns {
		tbl.TableRows[0].TableCells[j].AddParagraph().AddText(c).Bold().Size("18")
	}
	for i, row := range t.Rows {
		for j := range t.Columns {
			v := ""
			if j < len(row) {
				v = row[j]
			}
			run := tbl.TableRows[i+1].TableCells[j].AddParagraph().AddText(v).Size("18")
			if j == 0 {
				run.Bold()
			}
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}
	return buf.Bytes(), nil
}

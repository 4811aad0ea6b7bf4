package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dgallion1/feedbackdash/internal/report"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

func TestFileNames(t *testing.T) {
	tests := []struct {
		p     survey.Period
		areas string
		pdf   string
	}{
		{survey.Period{Year: 2025, Month: time.March}, "areas_atendidas_marco_2025.xlsx", "relatorio_marco_2025.pdf"},
		{survey.Period{Year: 2024, Month: time.February}, "areas_atendidas_fevereiro_2024.xlsx", "relatorio_fevereiro_2024.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.areas, AreasFileName(tt.p))
		assert.Equal(t, tt.pdf, ReportFileName(tt.p))
	}
	assert.Equal(t, "relatorio_marco_2025.docx", DocumentFileName(survey.Period{Year: 2025, Month: time.March}))
}

func TestXLSX_RoundTrip(t *testing.T) {
	cols := []string{"Resposta", "Quantidade", "Percentual (%)"}
	recs := [][]any{{"Excelente", 3, 75.0}, {"Bom", 1, 25.0}}
	data, err := XLSX(cols, recs)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, cols, rows[0])
	assert.Equal(t, []string{"Excelente", "3", "75"}, rows[1])

	typ, err := f.GetCellType(SheetName, "B2")
	require.NoError(t, err)
	assert.NotEqual(t, excelize.CellTypeSharedString, typ, "counts should be stored as numbers")
}

func docxText(t *testing.T, data []byte) string {
	t.Helper()
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var buf strings.Builder
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			buf.WriteString(paragraphText(it) + "\n")
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, c := range row.TableCells {
					for _, p := range c.Paragraphs {
						buf.WriteString(paragraphText(p) + "|")
					}
				}
				buf.WriteString("\n")
			}
		}
	}
	return buf.String()
}

func paragraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

func TestDOCX(t *testing.T) {
	tbl := report.Table{
		Columns: []string{"Área", "Qt Respostas", "% Excelente"},
		Rows: [][]string{
			{"Serviço Social", "4", "50%"},
			{"TOTAL GERAL", "", "50%"},
		},
	}
	data, err := DOCX("Resumo de Áreas Atendidas - Março/2025", tbl, "Total de respostas: 4")
	require.NoError(t, err)

	text := docxText(t, data)
	assert.Contains(t, text, "Resumo de Áreas Atendidas - Março/2025")
	assert.Contains(t, text, "Total de respostas: 4")
	assert.Contains(t, text, "Área|Qt Respostas|% Excelente|")
	assert.Contains(t, text, "Serviço Social|4|50%|")
}

func TestDOCX_NoColumns(t *testing.T) {
	_, err := DOCX("x", report.Table{})
	assert.ErrorIs(t, err, report.ErrTooFewColumns)
}

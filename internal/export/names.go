// Package export writes summaries as spreadsheets and documents and names
// the downloads.
package export

import (
	"fmt"
	"strings"

	"github.com/dgallion1/feedbackdash/internal/survey"
)

// CountsFileName is the download name of a single-question spreadsheet.
const CountsFileName = "resumo_areas.xlsx"

// MonthSlug is the lower-case, accent-free month name ("marco").
func MonthSlug(p survey.Period) string {
	return strings.ReplaceAll(survey.Fold(p.MonthName()), " ", "_")
}

// AreasFileName names the all-questions spreadsheet.
func AreasFileName(p survey.Period) string {
	return fmt.Sprintf("areas_atendidas_%s_%d.xlsx", MonthSlug(p), p.Year)
}

// ReportFileName names the PDF report.
func ReportFileName(p survey.Period) string {
	return fmt.Sprintf("relatorio_%s_%d.pdf", MonthSlug(p), p.Year)
}

// DocumentFileName names the DOCX report.
func DocumentFileName(p survey.Period) string {
	return fmt.Sprintf("relatorio_%s_%d.docx", MonthSlug(p), p.Year)
}

// Package summary aggregates survey answers into counts, per-area tables and
// indicators.
package summary

import (
	"cmp"
	"math"
	"slices"
	"strconv"

	"github.com/dgallion1/feedbackdash/internal/report"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

// TotalLabel names the closing row of an area summary.
const TotalLabel = "TOTAL GERAL"

// PositiveAnswers count as a favourable evaluation.
var PositiveAnswers = []string{"Excelente", "Bom"}

// Count is one distinct answer.
type Count struct {
	Answer  string  `json:"answer"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Counts tallies the non-blank values, most frequent first. Ties keep the
// order in which the answers first appear. Percentages are of the non-blank
// total, rounded to two decimals.
func Counts(values []string) []Count {
	var out []Count
	index := map[string]int{}
	total := 0
	for _, v := range values {
		if v == "" {
			continue
		}
		total++
		if i, ok := index[v]; ok {
			out[i].Count++
			continue
		}
		index[v] = len(out)
		out = append(out, Count{Answer: v, Count: 1})
	}
	slices.SortStableFunc(out, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	for i := range out {
		out[i].Percent = percent(out[i].Count, total)
	}
	return out
}

// Indicator is the share of positive answers.
type Indicator struct {
	Total           int     `json:"total"`
	Positive        int     `json:"positive"`
	PositivePercent float64 `json:"positive_percent"`
}

// Indicators sums the counts and the Excelente/Bom answers among them.
func Indicators(counts []Count) Indicator {
	var ind Indicator
	for _, c := range counts {
		ind.Total += c.Count
		for _, p := range PositiveAnswers {
			if survey.Fold(c.Answer) == survey.Fold(p) {
				ind.Positive += c.Count
				break
			}
		}
	}
	ind.PositivePercent = percent(ind.Positive, ind.Total)
	return ind
}

// CountsColumns heads every counts table and spreadsheet.
func CountsColumns() []string {
	return []string{"Resposta", "Quantidade", "Percentual (%)"}
}

// CountsTable renders counts as the Resposta/Quantidade/Percentual table.
func CountsTable(counts []Count) report.Table {
	t := report.Table{Columns: CountsColumns()}
	for _, c := range counts {
		t.Rows = append(t.Rows, []string{c.Answer, strconv.Itoa(c.Count), formatNumber(c.Percent)})
	}
	return t
}

// CountsRecords is the spreadsheet form of counts.
func CountsRecords(counts []Count) [][]any {
	out := make([][]any, len(counts))
	for i, c := range counts {
		out[i] = []any{c.Answer, c.Count, c.Percent}
	}
	return out
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(n) / float64(total) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// FormatPercent renders 33.33 as "33.33%" and 60 as "60%".
func FormatPercent(f float64) string {
	return formatNumber(f) + "%"
}

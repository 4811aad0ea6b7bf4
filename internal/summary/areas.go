package summary

import (
	"strconv"

	"github.com/dgallion1/feedbackdash/internal/report"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

// AreaRow summarizes one question.
type AreaRow struct {
	Area     string    `json:"area"`
	Question string    `json:"question"`
	Total    int       `json:"total"` // non-blank answers
	Counts   []int     `json:"counts"`
	Percents []float64 `json:"percents"`
}

// AreaSummary is the per-area table with its closing totals.
type AreaSummary struct {
	Expected      []string  `json:"expected"`
	Rows          []AreaRow `json:"rows"`
	TotalPercents []float64 `json:"total_percents"`
}

// Areas counts the expected answers of every question. Answers match after
// trimming, lower-casing and stripping accents; anything else only adds to
// the row total. The totals row holds each expected answer's share of all
// expected answers given.
func Areas(d *survey.Dataset, questions []survey.Question, expected []string) *AreaSummary {
	s := &AreaSummary{Expected: expected}
	folded := make([]string, len(expected))
	for i, e := range expected {
		folded[i] = survey.Fold(e)
	}

	sums := make([]int, len(expected))
	for _, q := range questions {
		row := AreaRow{
			Area:     q.Area,
			Question: q.Title,
			Counts:   make([]int, len(expected)),
			Percents: make([]float64, len(expected)),
		}
		for _, v := range d.Values(q.Column) {
			if v == "" {
				continue
			}
			row.Total++
			fv := survey.Fold(v)
			for i, e := range folded {
				if fv == e {
					row.Counts[i]++
					break
				}
			}
		}
		for i, n := range row.Counts {
			row.Percents[i] = percent(n, row.Total)
			sums[i] += n
		}
		s.Rows = append(s.Rows, row)
	}

	grand := 0
	for _, n := range sums {
		grand += n
	}
	s.TotalPercents = make([]float64, len(expected))
	for i, n := range sums {
		s.TotalPercents[i] = percent(n, grand)
	}
	return s
}

// Columns lists "Área", "Qt Respostas", then each answer and its "% answer".
func (s *AreaSummary) Columns() []string {
	cols := []string{"Área", "Qt Respostas"}
	for _, e := range s.Expected {
		cols = append(cols, e, "% "+e)
	}
	return cols
}

// Table renders the summary with percent cells formatted as "N%", followed
// by the totals row.
func (s *AreaSummary) Table() report.Table {
	t := report.Table{Columns: s.Columns()}
	for _, r := range s.Rows {
		row := []string{r.Area, strconv.Itoa(r.Total)}
		for i := range s.Expected {
			row = append(row, strconv.Itoa(r.Counts[i]), FormatPercent(r.Percents[i]))
		}
		t.Rows = append(t.Rows, row)
	}
	total := []string{TotalLabel, ""}
	for i := range s.Expected {
		total = append(total, "", FormatPercent(s.TotalPercents[i]))
	}
	t.Rows = append(t.Rows, total)
	return t
}

// Records is the spreadsheet form of the summary: counts and percentages as
// numbers, the totals row with blank cells.
func (s *AreaSummary) Records() [][]any {
	var out [][]any
	for _, r := range s.Rows {
		rec := []any{r.Area, r.Total}
		for i := range s.Expected {
			rec = append(rec, r.Counts[i], r.Percents[i])
		}
		out = append(out, rec)
	}
	total := []any{TotalLabel, ""}
	for i := range s.Expected {
		total = append(total, "", s.TotalPercents[i])
	}
	return append(out, total)
}

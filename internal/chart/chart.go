// Package chart draws answer distributions as bar chart PNGs.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/dgallion1/feedbackdash/internal/summary"
	"github.com/dgallion1/feedbackdash/internal/survey"
)

const (
	Width  = 1024
	Height = 512
)

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("no answers to chart")

var palette = map[string]drawing.Color{
	"excelente":     drawing.ColorFromHex("22c55e"),
	"bom":           drawing.ColorFromHex("3b82f6"),
	"regular":       drawing.ColorFromHex("f59e0b"),
	"ruim":          drawing.ColorFromHex("ef4444"),
	"nao se aplica": drawing.ColorFromHex("6b7280"),
}

var fallback = drawing.ColorFromHex("9ca3af")

// ColorFor returns the bar colour of an answer, matched without regard to
// case or accents.
func ColorFor(answer string) drawing.Color {
	if c, ok := palette[survey.Fold(answer)]; ok {
		return c
	}
	return fallback
}

// Bars renders one bar per answer, labelled "answer: count (pct%)".
func Bars(title string, counts []summary.Count) ([]byte, error) {
	if len(counts) == 0 {
		return nil, ErrEmpty
	}
	top := 0
	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		top = max(top, c.Count)
		col := ColorFor(c.Answer)
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s: %d (%s)", c.Answer, c.Count, summary.FormatPercent(c.Percent)),
			Value: float64(c.Count),
			Style: chart.Style{FillColor: col, StrokeColor: col, StrokeWidth: 1},
		})
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		BarWidth:   barWidth(len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: yMax(top)},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// yMax leaves headroom above the tallest bar.
func yMax(top int) float64 {
	return math.Max(1, math.Ceil(float64(top)*1.15))
}

func barWidth(n int) int {
	w := (Width - 64) / (n * 2)
	return min(max(w, 12), 120)
}

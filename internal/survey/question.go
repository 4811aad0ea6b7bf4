package survey

import (
	"fmt"
	"strings"
)

// Question is one answerable column of the form.
type Question struct {
	Column   int    `json:"column"`   // index in the sheet header
	Position int    `json:"position"` // index within the question range
	Title    string `json:"title"`
	Area     string `json:"area"`
}

// Questions lists the columns of the layout's question range, skipping the
// excluded ones and the timestamp and suggestion columns.
func (d *Dataset) Questions() []Question {
	l := d.layout
	end := min(l.QuestionEnd, len(d.Header))
	skip := map[int]bool{d.Column(l.TimestampColumn): true, d.Column(l.SuggestionColumn): true}
	var out []Question
	for c := l.QuestionStart; c < end; c++ {
		title := d.Header[c]
		if skip[c] || excluded(title, l.Exclude) {
			continue
		}
		pos := c - l.QuestionStart
		out = append(out, Question{Column: c, Position: pos, Title: title, Area: l.AreaName(pos, title)})
	}
	return out
}

// Question finds a question by column title or area name.
func (d *Dataset) Question(name string) (Question, error) {
	name = strings.TrimSpace(name)
	for _, q := range d.Questions() {
		if q.Title == name || q.Area == name {
			return q, nil
		}
	}
	return Question{}, fmt.Errorf("%w: %q", ErrUnknownQuestion, name)
}

func excluded(title string, patterns []string) bool {
	t := strings.ToLower(title)
	for _, p := range patterns {
		if p != "" && strings.Contains(t, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Suggestions returns the non-blank free-text suggestions, trimmed, in
// response order. A sheet without the suggestion column has none.
func (d *Dataset) Suggestions() []string {
	c := d.Column(d.layout.SuggestionColumn)
	if c < 0 {
		return nil
	}
	var out []string
	for _, r := range d.Responses {
		if v := r.Value(c); v != "" {
			out = append(out, v)
		}
	}
	return out
}

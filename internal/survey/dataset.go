package survey

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Response is one dated record.
type Response struct {
	At     time.Time
	Values []string
}

// Value returns the answer in column c, trimmed.
func (r Response) Value(c int) string {
	return strings.TrimSpace(cell(r.Values, c))
}

// Dataset is a sheet whose records all carry a parsed timestamp.
type Dataset struct {
	Header    []string
	Responses []Response
	Dropped   int // records whose timestamp did not parse
	layout    Layout
}

// NewDataset parses the timestamp column of every record. Records with a
// blank or unparseable timestamp are dropped and counted.
func NewDataset(s *Sheet, l Layout) (*Dataset, error) {
	tc := s.Column(l.TimestampColumn)
	if tc < 0 {
		return nil, fmt.Errorf("%w: %q", ErrNoTimestamp, l.TimestampColumn)
	}
	d := &Dataset{Header: s.Header, layout: l}
	for _, rec := range s.Records {
		at, ok := ParseTimestamp(cell(rec, tc))
		if !ok {
			d.Dropped++
			continue
		}
		d.Responses = append(d.Responses, Response{At: at, Values: rec})
	}
	return d, nil
}

func (d *Dataset) Layout() Layout { return d.layout }

// Len is the number of dated responses.
func (d *Dataset) Len() int { return len(d.Responses) }

// Column returns the index of the named header, or -1.
func (d *Dataset) Column(name string) int {
	for i, h := range d.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Values returns column c of every response, trimmed. Blank answers stay "".
func (d *Dataset) Values(c int) []string {
	out := make([]string, len(d.Responses))
	for i, r := range d.Responses {
		out[i] = r.Value(c)
	}
	return out
}

// Span returns the first and last response times.
func (d *Dataset) Span() (first, last time.Time) {
	for i, r := range d.Responses {
		if i == 0 || r.At.Before(first) {
			first = r.At
		}
		if i == 0 || r.At.After(last) {
			last = r.At
		}
	}
	return first, last
}

var timestampLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// ParseTimestamp reads form timestamps. Day-first dates are tried before ISO
// ones; a bare number is taken as a spreadsheet date serial.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		if t, err := excelize.ExcelDateToTime(f, false); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

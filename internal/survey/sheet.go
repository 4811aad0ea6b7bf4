package survey

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownQuestion  = errors.New("unknown question")
	ErrNoData           = errors.New("no responses for period")
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrNoTimestamp      = errors.New("timestamp column not found")
	ErrEmptySheet       = errors.New("sheet has no header row")
	ErrUnsupportedInput = errors.New("unsupported source file")
)

// Source loads the raw response sheet.
type Source interface {
	Load(ctx context.Context) (*Sheet, error)
}

// Sheet is a header row plus string records, as every source returns them.
// Records may be shorter than the header; missing cells read as blank.
type Sheet struct {
	Header  []string
	Records [][]string
}

// newSheet takes the first non-empty row as the header and drops rows with no
// content at all.
func newSheet(rows [][]string) (*Sheet, error) {
	var s *Sheet
	for _, row := range rows {
		if isBlankRow(row) {
			continue
		}
		if s == nil {
			header := make([]string, len(row))
			for i, h := range row {
				header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
			}
			s = &Sheet{Header: header}
			continue
		}
		s.Records = append(s.Records, row)
	}
	if s == nil {
		return nil, ErrEmptySheet
	}
	return s, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Column returns the index of the named header, or -1.
func (s *Sheet) Column(name string) int {
	for i, h := range s.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Cell returns the value at record r, column c, blank when the record is short.
func (s *Sheet) Cell(r, c int) string {
	return cell(s.Records[r], c)
}

func cell(rec []string, c int) string {
	if c < 0 || c >= len(rec) {
		return ""
	}
	return rec[c]
}

func (s *Sheet) String() string {
	return fmt.Sprintf("sheet(%d columns, %d records)", len(s.Header), len(s.Records))
}

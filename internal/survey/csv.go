package survey

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// CSVSource reads a sheet exported as CSV.
type CSVSource struct {
	Path string
}

func (s *CSVSource) Load(ctx context.Context) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses CSV with a header row. Rows may have differing lengths.
func ReadCSV(r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return newSheet(records)
}

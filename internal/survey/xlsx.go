package survey

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
)

// XLSXSource reads a sheet exported as an Excel workbook. An empty SheetName
// reads the first worksheet.
type XLSXSource struct {
	Path      string
	SheetName string
}

func (s *XLSXSource) Load(ctx context.Context) (*Sheet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	return ReadXLSX(f, s.SheetName)
}

// ReadXLSX reads one worksheet with raw cell values, so dates come back as
// serial numbers that ParseTimestamp understands.
func ReadXLSX(r io.Reader, sheetName string) (*Sheet, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse xlsx: %w", err)
	}
	defer wb.Close()

	if sheetName == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptySheet
		}
		sheetName = sheets[0]
	}
	rows, err := wb.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", sheetName, err)
	}
	return newSheet(rows)
}

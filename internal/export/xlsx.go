package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet every export writes to.
const SheetName = "Resumo"

// XLSX writes a single worksheet: the header row, then one row per record.
// Numeric values stay numeric.
func XLSX(columns []string, records [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	if len(columns) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
			return nil, fmt.Errorf("style header: %w", err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(columns))
		if err := f.SetColWidth(SheetName, "A", lastCol, 16); err != nil {
			return nil, fmt.Errorf("column width: %w", err)
		}
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := rec
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

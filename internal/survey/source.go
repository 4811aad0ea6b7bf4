package survey

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SupportedExtensions lists the exported sheet formats OpenFile can read.
var SupportedExtensions = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".html": true,
	".htm":  true,
}

// OpenFile returns the source for an exported sheet file, chosen by
// extension. sheetName selects the worksheet of an XLSX file.
func OpenFile(path, sheetName string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return &CSVSource{Path: path}, nil
	case ".xlsx":
		return &XLSXSource{Path: path, SheetName: sheetName}, nil
	case ".html", ".htm":
		return &HTMLSource{Path: path}, nil
	default:
		return nil, fmt.Errorf("%w: extension %q", ErrUnsupportedInput, ext)
	}
}

package output

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Writer exports the statistics table of a Summary.
type Writer interface {
	Write(path string, summary Summary) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// DetectFormat picks the export format from the output extension; anything
// that is not a workbook is written as CSV.
func DetectFormat(path string) string {
	switch normalizeFormat(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "xlsx", "xlsm", "xls":
		return "excel"
	default:
		return "csv"
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}

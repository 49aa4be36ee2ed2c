package importer

import (
	"fmt"
	"strings"

	"goplot/internal/failure"
)

type Reader interface {
	Read(path string) (*Table, error)
}

// Options tune how a source is turned into a Table. The zero value sniffs
// delimiters in the default order, auto-detects the header row and reads the
// first sheet of a workbook.
type Options struct {
	Header     HeaderMode
	Sheet      string
	Candidates []Delimiter
}

func ReaderForFormat(format string, options Options) (Reader, error) {
	switch canonicalFormat(format) {
	case FormatText:
		return &TextReader{Header: options.Header, Candidates: options.Candidates}, nil
	case FormatExcel:
		return &ExcelReader{Header: options.Header, Sheet: options.Sheet}, nil
	default:
		return nil, fmt.Errorf("unsupported input format %q: %w", format, failure.ErrUnreadableFormat)
	}
}

const (
	FormatText  = "text"
	FormatExcel = "excel"
)

func canonicalFormat(format string) string {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".") {
	case "text", "txt", "csv", "tsv", "dat":
		return FormatText
	case "excel", "xlsx", "xlsm", "xls":
		return FormatExcel
	default:
		return ""
	}
}

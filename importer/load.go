package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// InferFormat returns the canonical format for path. An explicit format wins;
// otherwise the extension decides and anything unknown is read as text.
func InferFormat(path, format string) string {
	if strings.TrimSpace(format) != "" {
		return format
	}
	if canonical := canonicalFormat(filepath.Ext(path)); canonical != "" {
		return canonical
	}
	return FormatText
}

// Load reads path into a Table. Missing files wrap failure.ErrFileNotFound
// and parse problems wrap failure.ErrUnreadableFormat.
func Load(path, format string, options Options) (*Table, error) {
	path = strings.TrimSpace(path)
	if _, err := os.Stat(path); err != nil {
		return nil, openError(path, err)
	}

	sourceFormat := InferFormat(path, format)
	reader, err := ReaderForFormat(sourceFormat, options)
	if err != nil {
		return nil, err
	}

	table, err := reader.Read(path)
	if err != nil {
		return nil, err
	}
	table.Source = path
	table.Format = canonicalFormat(sourceFormat)
	if table.Format == "" {
		table.Format = sourceFormat
	}
	return table, nil
}

// Describe is a one-line description of where a table came from.
func (t *Table) Describe() string {
	if t.Format == FormatExcel {
		return fmt.Sprintf("%s (excel, %d rows x %d columns)", filepath.Base(t.Source), t.NumRows(), t.NumColumns())
	}
	return fmt.Sprintf("%s (delimiter: %s, %d rows x %d columns)", filepath.Base(t.Source), t.Delimiter, t.NumRows(), t.NumColumns())
}

package importer

import (
	"fmt"
	"strings"

	"goplot/internal/failure"

	"github.com/xuri/excelize/v2"
)

type ExcelReader struct {
	Header HeaderMode
	// Sheet defaults to the first sheet of the workbook.
	Sheet string
}

func (r *ExcelReader) Read(path string) (*Table, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open excel file %s: %w: %w", path, failure.ErrUnreadableFormat, err)
	}
	defer file.Close()

	sheetName := strings.TrimSpace(r.Sheet)
	if sheetName == "" {
		sheetName = file.GetSheetName(0)
	}
	if sheetName == "" {
		return nil, fmt.Errorf("excel file has no sheets: %s: %w", path, failure.ErrUnreadableFormat)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w: %w", sheetName, failure.ErrUnreadableFormat, err)
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 || isCommentLine(row[0]) {
			continue
		}
		kept = append(kept, row)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("sheet %s is empty: %w", sheetName, failure.ErrUnreadableFormat)
	}

	table, err := NewTable(kept, r.Header)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", sheetName, err)
	}
	return table, nil
}

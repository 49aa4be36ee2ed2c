package output

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

// Write stores the statistics on the first sheet and the head rows on a
// second "Head" sheet. Numeric cells are written as numbers.
func (w *ExcelWriter) Write(path string, summary Summary) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	if err := file.SetSheetName(sheet, "Statistics"); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}
	sheet = "Statistics"

	if err := writeExcelRow(file, sheet, 1, statsHeader()); err != nil {
		return err
	}
	for i, row := range statsRows(summary) {
		if err := writeExcelRow(file, sheet, i+2, row); err != nil {
			return err
		}
	}

	if len(summary.Head) > 0 {
		if _, err := file.NewSheet("Head"); err != nil {
			return fmt.Errorf("create head sheet: %w", err)
		}
		if err := writeExcelRow(file, "Head", 1, summary.Names); err != nil {
			return err
		}
		for i, row := range summary.Head {
			if err := writeExcelRow(file, "Head", i+2, row); err != nil {
				return err
			}
		}
	}

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}

	return nil
}

func writeExcelRow(file *excelize.File, sheet string, row int, values []string) error {
	for col, value := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		var err error
		if number, parseErr := strconv.ParseFloat(value, 64); parseErr == nil {
			err = file.SetCellValue(sheet, cell, number)
		} else {
			err = file.SetCellValue(sheet, cell, value)
		}
		if err != nil {
			return fmt.Errorf("set excel value %s: %w", cell, err)
		}
	}
	return nil
}

package tables

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named table for workbook export
type Sheet struct {
	Name  string
	Table *Table
}

// WriteWorkbook saves the sheets into one xlsx file. Header rows are bold and
// numeric cells are stored as numbers.
func WriteWorkbook(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		name := sheetName(s.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}

		r := 1
		for _, header := range s.Table.Headers {
			if err := writeRow(f, name, r, header, false); err != nil {
				return err
			}
			last, _ := excelize.CoordinatesToCellName(max(len(header), 1), r)
			if err := f.SetCellStyle(name, fmt.Sprintf("A%d", r), last, bold); err != nil {
				return fmt.Errorf("failed to style header: %w", err)
			}
			r++
		}
		for _, row := range s.Table.Rows {
			if err := writeRow(f, name, r, row, true); err != nil {
				return err
			}
			r++
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, r int, cells []string, numeric bool) error {
	for c, v := range cells {
		ref, err := excelize.CoordinatesToCellName(c+1, r)
		if err != nil {
			return err
		}
		var value interface{} = v
		if numeric {
			if n, err := strconv.ParseFloat(v, 64); err == nil {
				value = n
			}
		}
		if err := f.SetCellValue(sheet, ref, value); err != nil {
			return fmt.Errorf("failed to set cell %s!%s: %w", sheet, ref, err)
		}
	}
	return nil
}

// ReadWorkbookSheet reads one sheet back as a table with headerRows header rows
func ReadWorkbookSheet(path, sheet string, headerRows int) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName(sheet))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	if len(rows) < headerRows {
		return nil, fmt.Errorf("sheet %s has %d rows, expected at least %d header rows", sheet, len(rows), headerRows)
	}
	return &Table{Headers: rows[:headerRows], Rows: rows[headerRows:]}, nil
}

// Excel limits sheet names to 31 characters
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

package export

import (
	"fmt"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet holding the entries.
const SheetName = "Entries"

// WriteXLSX writes t to path as a single-sheet workbook with a bold,
// frozen header row. Cells longer than excelize.TotalCellChars are cut to
// that limit; the number of cut cells is returned so callers can report
// that the spreadsheet is shorter than the JSON export.
func WriteXLSX(path string, t Table) (int, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return 0, fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("header style: %w", err)
	}
	if len(t.Columns) > 0 {
		last, err := excelize.CoordinatesToCellName(len(t.Columns), 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellStyle(SheetName, "A1", last, bold); err != nil {
			return 0, fmt.Errorf("apply header style: %w", err)
		}
		if err := f.SetPanes(SheetName, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return 0, fmt.Errorf("freeze header: %w", err)
		}
	}

	truncated := 0
	for i, row := range t.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			if utf8.RuneCountInString(v) > excelize.TotalCellChars {
				v = string([]rune(v)[:excelize.TotalCellChars])
				truncated++
			}
			values[j] = v
		}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return 0, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("save %s: %w", path, err)
	}
	return truncated, nil
}

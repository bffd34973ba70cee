// Package export writes entries to a spreadsheet and a mirrored JSON file.
package export

import "github.com/dgallion1/notegest/internal/extract"

// alwaysPresent columns appear even when every value is empty.
var alwaysPresent = map[string]bool{
	"source_notebook": true,
	"source_section":  true,
	"source_page":     true,
	"raw_content":     true,
}

// Table is the rectangular form of a set of entries.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable lays entries out under the union of the columns they carry,
// in canonical order. Missing values are empty cells.
func NewTable(entries []extract.Entry) Table {
	var cols []string
	for _, col := range extract.Columns {
		if alwaysPresent[col] {
			cols = append(cols, col)
			continue
		}
		for _, e := range entries {
			if _, ok := e.Field(col); ok {
				cols = append(cols, col)
				break
			}
		}
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		row := make([]string, len(cols))
		for i, col := range cols {
			row[i], _ = e.Field(col)
		}
		rows = append(rows, row)
	}
	return Table{Columns: cols, Rows: rows}
}

package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/notegest/internal/notebook"
)

// CSVParser handles tabular exports. Each data row becomes a page whose
// lines are "Header: value" pairs, so labeled columns read like labeled
// note lines.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) ([]notebook.PageContent, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// First row is headers.
	headers := records[0]
	b := newPageBuilder(filename)

	for i, row := range records[1:] {
		b.heading(2, fmt.Sprintf("Row %d", i+2)) // 1-indexed, header is row 1
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
				b.text(strings.TrimSpace(headers[j]) + ": " + cell)
			} else {
				b.text(cell)
			}
		}
	}
	return b.finish(), nil
}

package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles CSV files by rendering each row as header-labeled text.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	d := &Document{Title: titleFromFilename(filename)}
	if len(records) == 0 {
		return d, nil
	}

	// First row is headers.
	headers := records[0]

	var text strings.Builder
	text.WriteString("Headers: " + strings.Join(headers, ", "))
	for _, row := range records[1:] {
		text.WriteString("\n")
		for j, cell := range row {
			if j < len(headers) {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
			if j < len(row)-1 {
				text.WriteString(", ")
			}
		}
	}

	d.Text = text.String()
	return d, nil
}

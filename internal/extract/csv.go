package extract

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// extractCSV renders a CSV as "header: value" lines, one row per line, so
// the cell contents survive translation in a readable layout.
func extractCSV(r io.Reader) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var paragraphs []string
	paragraphs = append(paragraphs, strings.Join(headers, ", "))

	for _, row := range records[1:] {
		var line strings.Builder
		for j, cell := range row {
			if j > 0 {
				line.WriteString(", ")
			}
			if j < len(headers) {
				line.WriteString(headers[j] + ": " + cell)
			} else {
				line.WriteString(cell)
			}
		}
		paragraphs = append(paragraphs, line.String())
	}

	return joinParagraphs(paragraphs), nil
}

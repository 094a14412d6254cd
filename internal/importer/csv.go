package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

var spaceRunPattern = regexp.MustCompile(`\s+`)

// ReadCSV parses a CSV export with a header row into rows. Cells are trimmed,
// stripped of one pair of wrapping quotes and whitespace-collapsed. Lines whose
// cells are all blank are skipped. A short line only carries the columns it has.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}

		row := make(Row, len(header))
		blank := true
		for i, cell := range record {
			if i >= len(header) || header[i] == "" {
				continue
			}
			cell = cleanCell(cell)
			if cell != "" {
				blank = false
			}
			row[header[i]] = cell
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = s[1 : len(s)-1]
	}
	return spaceRunPattern.ReplaceAllString(s, " ")
}

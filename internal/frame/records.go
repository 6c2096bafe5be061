package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FromRecords builds a frame from a header row and text rows, as produced by
// CSV and spreadsheet readers. A column is numeric when it has at least one
// non-empty cell and every non-empty cell parses as a number. Short rows are
// padded with empty cells.
func FromRecords(header []string, records [][]string) (*Frame, error) {
	f := New()
	for j, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("column_%d", j)
		}

		cells := make([]string, len(records))
		for i, rec := range records {
			if j < len(rec) {
				cells[i] = strings.TrimSpace(rec[j])
			}
		}

		if numbers, ok := parseNumbers(cells); ok {
			if err := f.AddNumbers(name, numbers); err != nil {
				return nil, err
			}
			continue
		}
		if err := f.AddStrings(name, cells); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func parseNumbers(cells []string) ([]float64, bool) {
	numbers := make([]float64, len(cells))
	seen := false
	for i, cell := range cells {
		if cell == "" {
			numbers[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, false
		}
		numbers[i] = v
		seen = true
	}
	return numbers, seen
}

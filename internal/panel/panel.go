// Package panel reshapes downloaded series into the wide, year-indexed
// table the extraction writes out, and builds the companion metadata table.
package panel

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

// Panel is a wide table: one row per period, one column per indicator.
type Panel struct {
	// Headers starts with "Year" followed by one "{label} [{code}]"
	// column per indicator, sorted alphabetically by label.
	Headers []string
	// Rows are sorted ascending by period. A missing (period, indicator)
	// pair is the empty string, never zero.
	Rows [][]string
}

// Empty reports whether the panel has no data rows.
func (p *Panel) Empty() bool { return len(p.Rows) == 0 }

// Build reshapes {code: series} into a Panel. Only indicators with at
// least one observation contribute a column; the row set is the sorted
// union of periods across those indicators. Ordering is enforced here by
// sorting, never inherited from fetch order.
func Build(data map[string]provider.Series, labels map[string]string) *Panel {
	type column struct {
		code  string
		label string
	}

	columns := make([]column, 0, len(data))
	periodSet := make(map[string]struct{})
	for code, series := range data {
		if len(series) == 0 {
			continue
		}
		label := labels[code]
		if label == "" {
			label = code
		}
		columns = append(columns, column{code: code, label: label})
		for period := range series {
			periodSet[period] = struct{}{}
		}
	}

	sort.Slice(columns, func(i, j int) bool {
		if columns[i].label != columns[j].label {
			return columns[i].label < columns[j].label
		}
		return columns[i].code < columns[j].code
	})

	periods := make([]string, 0, len(periodSet))
	for period := range periodSet {
		periods = append(periods, period)
	}
	sort.Strings(periods)

	headers := make([]string, 0, len(columns)+1)
	headers = append(headers, "Year")
	for _, col := range columns {
		headers = append(headers, fmt.Sprintf("%s [%s]", col.label, col.code))
	}

	rows := make([][]string, 0, len(periods))
	for _, period := range periods {
		row := make([]string, 0, len(columns)+1)
		row = append(row, period)
		for _, col := range columns {
			if value, ok := data[col.code][period]; ok {
				row = append(row, formatValue(value))
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, row)
	}

	return &Panel{Headers: headers, Rows: rows}
}

// formatValue renders a value with the shortest representation that
// round-trips, matching what the upstream JSON carried.
func formatValue(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// MetadataTable flattens metadata records into headers and rows for the
// metadata CSV. Field order follows the record's declaration order, with
// code and label first and the coverage span last. Records are sorted by
// label, matching the panel's column order.
func MetadataTable(records []provider.Metadata, coverage map[string]string) ([]string, [][]string) {
	if len(records) == 0 {
		return nil, nil
	}

	sorted := make([]provider.Metadata, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Label != sorted[j].Label {
			return sorted[i].Label < sorted[j].Label
		}
		return sorted[i].Code < sorted[j].Code
	})

	headers := []string{"code", "label"}
	for _, field := range sorted[0].Fields {
		headers = append(headers, field.Key)
	}
	headers = append(headers, "years_available")

	rows := make([][]string, 0, len(sorted))
	for _, record := range sorted {
		row := make([]string, 0, len(headers))
		row = append(row, record.Code, record.Label)
		for _, field := range record.Fields {
			row = append(row, field.Value)
		}
		row = append(row, coverage[record.Code])
		rows = append(rows, row)
	}

	return headers, rows
}

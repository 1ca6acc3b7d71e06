package etl

import (
	"fmt"

	"OrcaBI/internal/config"
	"OrcaBI/internal/normalize"
	"OrcaBI/internal/workbook"
)

// RawRecord is one data row keyed by header label, before any typing.
type RawRecord struct {
	SheetRow int
	fields   map[string]normalize.Cell
}

// Get returns the cell under label, or an empty cell when the sheet has no
// such column.
func (r RawRecord) Get(label string) normalize.Cell {
	return r.fields[label]
}

// Headers reads the label row, skipping the reserved leading column.
func Headers(grid workbook.Grid) ([]string, error) {
	if len(grid) <= config.HeaderRowIndex {
		return nil, fmt.Errorf("%w: sheet has %d rows, header expected on row %d",
			ErrUnreadableInput, len(grid), config.HeaderRowIndex+1)
	}
	row := grid[config.HeaderRowIndex]
	if len(row) <= config.SkippedColumns {
		return nil, fmt.Errorf("%w: header row is empty", ErrUnreadableInput)
	}
	labels := make([]string, 0, len(row)-config.SkippedColumns)
	named := 0
	for _, c := range row[config.SkippedColumns:] {
		l := normalize.String(c)
		if l != "" {
			named++
		}
		labels = append(labels, l)
	}
	if named == 0 {
		return nil, fmt.Errorf("%w: header row is empty", ErrUnreadableInput)
	}
	return labels, nil
}

// Extract turns every data row into a RawRecord and keeps only the rows whose
// year column holds a positive integer. Banner, blank and subtotal rows fall
// out here.
func Extract(grid workbook.Grid) ([]RawRecord, int, error) {
	labels, err := Headers(grid)
	if err != nil {
		return nil, 0, err
	}

	read := 0
	records := make([]RawRecord, 0, len(grid))
	for i := config.FirstDataRowIndex; i < len(grid); i++ {
		read++
		rec := toRecord(i, labels, grid[i])
		if normalize.Int(rec.Get(config.ColYear)) <= 0 {
			continue
		}
		records = append(records, rec)
	}
	return records, read, nil
}

func toRecord(sheetRow int, labels []string, row []normalize.Cell) RawRecord {
	fields := make(map[string]normalize.Cell, len(labels))
	for j, label := range labels {
		if label == "" {
			continue
		}
		col := j + config.SkippedColumns
		var c normalize.Cell
		if col < len(row) {
			c = row[col]
		}
		// a repeated label keeps the right-most column
		fields[label] = c
	}
	return RawRecord{SheetRow: sheetRow, fields: fields}
}

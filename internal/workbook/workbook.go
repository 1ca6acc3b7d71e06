// Package workbook turns uploaded spreadsheet bytes into a grid of raw cells.
package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"OrcaBI/internal/normalize"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Grid is a rectangular-ish view of the first sheet. Rows may be ragged.
type Grid [][]normalize.Cell

var (
	ErrUnsupportedFormat = errors.New("unsupported file type, expected .xlsx, .xls or .csv")
	ErrNoSheet           = errors.New("workbook has no sheets")
)

var (
	zipMagic = []byte("PK\x03\x04")
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// Format identifies how the bytes are decoded.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// Detect picks a decoder from the file signature, falling back to the file
// extension for plain-text inputs.
func Detect(filename string, data []byte) (Format, error) {
	switch {
	case bytes.HasPrefix(data, zipMagic):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, oleMagic):
		return FormatXLS, nil
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt", "":
		return FormatCSV, nil
	}
	return "", ErrUnsupportedFormat
}

// Read decodes the first sheet of the given file.
func Read(filename string, data []byte) (Grid, error) {
	format, err := Detect(filename, data)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatXLSX:
		return readXLSX(data)
	case FormatXLS:
		return readXLS(data)
	default:
		return readCSV(data)
	}
}

func readXLSX(data []byte) (Grid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheet
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read rows of %q: %w", sheet, err)
	}

	grid := make(Grid, len(rows))
	for i, row := range rows {
		grid[i] = make([]normalize.Cell, len(row))
		for j, raw := range row {
			if raw == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				grid[i][j] = normalize.TextCell(raw)
				continue
			}
			typ, err := f.GetCellType(sheet, axis)
			if err != nil {
				grid[i][j] = normalize.TextCell(raw)
				continue
			}
			grid[i][j] = xlsxCell(typ, raw)
		}
	}
	return grid, nil
}

// xlsxCell keeps numbers typed so they bypass the Brazilian text parsing.
func xlsxCell(typ excelize.CellType, raw string) normalize.Cell {
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return normalize.NumberCell(f)
		}
	}
	return normalize.TextCell(raw)
}

func readXLS(data []byte) (grid Grid, err error) {
	// extrame/xls panics on some truncated BIFF streams
	defer func() {
		if r := recover(); r != nil {
			grid, err = nil, fmt.Errorf("open xls: corrupt workbook: %v", r)
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("open xls: %w", err)
	}
	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoSheet
	}

	grid = make(Grid, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]normalize.Cell, row.LastCol())
		for j := range cells {
			cells[j] = xlsCell(row.Col(j))
		}
		grid = append(grid, cells)
	}
	return grid, nil
}

// xlsRow returns nil for rows the sheet has no record of. WorkSheet.Row
// dereferences the missing entry instead of reporting it.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// xlsCell recovers the type extrame/xls drops when it renders cells as text.
// NUMBER and RK records come out as strconv.FormatFloat(f, 'f', -1, 64), so a
// value that round-trips through that format is a stored number. Anything
// else ("1.234,56", zero-padded codes like "0101") stays text.
func xlsCell(raw string) normalize.Cell {
	if f, err := strconv.ParseFloat(raw, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == raw {
		return normalize.NumberCell(f)
	}
	return normalize.TextCell(raw)
}

func readCSV(data []byte) (Grid, error) {
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	grid := make(Grid, len(records))
	for i, rec := range records {
		grid[i] = make([]normalize.Cell, len(rec))
		for j, v := range rec {
			grid[i][j] = normalize.TextCell(v)
		}
	}
	return grid, nil
}

// sniffDelimiter prefers ';' when the leading lines use it more than ','.
// Brazilian exports use ';' because ',' is the decimal mark.
func sniffDelimiter(data []byte) rune {
	head := data
	for n, i := 0, 0; i < len(data); i++ {
		if data[i] == '\n' {
			n++
			if n == 2 {
				head = data[:i]
				break
			}
		}
	}
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		return ';'
	}
	return ','
}

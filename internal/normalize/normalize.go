package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags the origin of a spreadsheet cell value.
type Kind uint8

const (
	Empty Kind = iota
	Text
	Number
)

// Cell is one raw spreadsheet value. Text cells keep the string exactly as the
// workbook stored it; Number cells carry the stored numeric value.
type Cell struct {
	Kind Kind
	Text string
	Num  float64
}

func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: Text, Text: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: Number, Num: f}
}

// missing markers written by dataframe exports when a cell had no value
var missingMarkers = map[string]bool{
	"nan":  true,
	"none": true,
	"nat":  true,
	"null": true,
}

// IsMissing reports whether the cell should be treated as absent.
func (c Cell) IsMissing() bool {
	switch c.Kind {
	case Empty:
		return true
	case Number:
		return math.IsNaN(c.Num)
	}
	t := strings.TrimSpace(c.Text)
	return t == "" || missingMarkers[strings.ToLower(t)]
}

// Int converts a cell to an integer. Missing or unparsable values yield 0 and
// fractional values are truncated toward zero ("12.7" -> 12). Values outside
// the int range also yield 0, since the float conversion is undefined there.
func Int(c Cell) int {
	if c.IsMissing() {
		return 0
	}
	f := c.Num
	if c.Kind == Text {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(c.Text), 64)
		if err != nil {
			return 0
		}
		f = parsed
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	if f >= math.MaxInt || f < math.MinInt {
		return 0
	}
	return int(f)
}

// Float converts a cell to a float. Text is read in Brazilian notation:
// "." groups thousands and "," marks decimals, so "1.234,56" is 1234.56.
// Missing or unparsable values yield 0.
func Float(c Cell) float64 {
	if c.IsMissing() {
		return 0
	}
	if c.Kind == Number {
		if math.IsInf(c.Num, 0) {
			return 0
		}
		return c.Num
	}
	d, ok := ParseBRL(c.Text)
	if !ok {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParseBRL parses a Brazilian-formatted amount into an exact decimal.
func ParseBRL(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	s = strings.TrimPrefix(s, "+")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// String renders a cell as trimmed text. Missing values become "" and whole
// numbers are written without a fractional part.
func String(c Cell) string {
	if c.IsMissing() {
		return ""
	}
	if c.Kind == Number {
		if c.Num == math.Trunc(c.Num) && math.Abs(c.Num) < 1e15 {
			return strconv.FormatFloat(c.Num, 'f', 0, 64)
		}
		return strconv.FormatFloat(c.Num, 'f', -1, 64)
	}
	return strings.TrimSpace(c.Text)
}

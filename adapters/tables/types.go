package tables

import (
	"math"
	"strconv"
	"strings"
)

// Table is a rectangular grid of text cells with one or more header rows.
// Multi-level headers (metric over statistic) keep one row per level.
type Table struct {
	Headers [][]string // Header rows, outermost level first
	Rows    [][]string // Data rows
}

// New creates a table with a single header row
func New(columns ...string) *Table {
	return &Table{Headers: [][]string{append([]string(nil), columns...)}}
}

// NewMultiLevel creates a table with several header rows of equal width
func NewMultiLevel(levels ...[]string) *Table {
	t := &Table{}
	for _, l := range levels {
		t.Headers = append(t.Headers, append([]string(nil), l...))
	}
	return t
}

// Columns returns the innermost header row
func (t *Table) Columns() []string {
	if len(t.Headers) == 0 {
		return nil
	}
	return t.Headers[len(t.Headers)-1]
}

// Width is the number of columns
func (t *Table) Width() int {
	w := 0
	for _, h := range t.Headers {
		if len(h) > w {
			w = len(h)
		}
	}
	for _, r := range t.Rows {
		if len(r) > w {
			w = len(r)
		}
	}
	return w
}

// AddRow appends a data row
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, append([]string(nil), cells...))
}

// ColumnIndex finds a column whose header cells equal key, one entry per header level
func (t *Table) ColumnIndex(key ...string) int {
	if len(key) != len(t.Headers) {
		return -1
	}
	for c := 0; c < t.Width(); c++ {
		match := true
		for level, want := range key {
			if cell(t.Headers[level], c) != want {
				match = false
				break
			}
		}
		if match {
			return c
		}
	}
	return -1
}

// Cell returns a data cell, empty when out of range
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	return cell(t.Rows[row], col)
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// FormatFloat renders a float for CSV output; NaN becomes an empty cell
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ParseFloat reads a numeric cell; an empty or "nan" cell is NaN
func ParseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

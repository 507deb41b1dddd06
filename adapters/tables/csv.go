package tables

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadCSV reads a CSV file whose first headerRows rows are headers.
// Rows may be ragged; cells are trimmed.
func ReadCSV(path string, headerRows int) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file %s: %w", path, err)
	}
	if len(rows) < headerRows {
		return nil, fmt.Errorf("CSV file %s has %d rows, expected at least %d header rows", path, len(rows), headerRows)
	}

	for _, row := range rows {
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
	}

	return &Table{Headers: rows[:headerRows], Rows: rows[headerRows:]}, nil
}

// WriteCSV writes headers then rows, creating parent directories as needed
func WriteCSV(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	width := t.Width()
	for _, row := range append(append([][]string(nil), t.Headers...), t.Rows...) {
		if err := w.Write(pad(row, width)); err != nil {
			return fmt.Errorf("failed to write CSV file %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write CSV file %s: %w", path, err)
	}
	return file.Close()
}

func pad(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}

package aggregate

import (
	"fmt"

	"ednelkit/adapters/tables"
	"ednelkit/domain/metrics"
)

// FoldResult is one (dataset, sample, fold) result file: ensemble rows by metric columns.
// Cells hold numbers or Python-literal text.
type FoldResult struct {
	Convention metrics.HeaderConvention
	Ensembles  []string

	columns map[string]int
	rows    map[string][]string
}

// ReadFoldResult reads a fold file whose first column names the ensemble and
// detects which metric-name convention its header uses
func ReadFoldResult(path string, registry *metrics.Registry) (*FoldResult, error) {
	t, err := tables.ReadCSV(path, 1)
	if err != nil {
		return nil, err
	}

	header := t.Columns()
	convention, err := registry.DetectConvention(header)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	fr := &FoldResult{
		Convention: convention,
		columns:    make(map[string]int, len(header)),
		rows:       make(map[string][]string, len(t.Rows)),
	}
	for i, h := range header {
		if i > 0 {
			fr.columns[h] = i
		}
	}
	for _, row := range t.Rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if _, dup := fr.rows[row[0]]; dup {
			return nil, fmt.Errorf("%s: ensemble %q listed twice", path, row[0])
		}
		fr.Ensembles = append(fr.Ensembles, row[0])
		fr.rows[row[0]] = row
	}
	if len(fr.Ensembles) == 0 {
		return nil, fmt.Errorf("%s: no ensemble rows", path)
	}
	return fr, nil
}

// HasEnsemble reports whether the file has a row for ensemble
func (fr *FoldResult) HasEnsemble(ensemble string) bool {
	_, ok := fr.rows[ensemble]
	return ok
}

// HasMetric reports whether the header has a column for m
func (fr *FoldResult) HasMetric(m metrics.Metric) bool {
	_, ok := fr.columns[m.Column(fr.Convention)]
	return ok
}

// Value returns the raw cell of an ensemble for a metric
func (fr *FoldResult) Value(ensemble string, m metrics.Metric) (string, bool) {
	row, ok := fr.rows[ensemble]
	if !ok {
		return "", false
	}
	col, ok := fr.columns[m.Column(fr.Convention)]
	if !ok {
		return "", false
	}
	if col >= len(row) {
		return "", true
	}
	return row[col], true
}

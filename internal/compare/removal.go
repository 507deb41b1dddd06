package compare

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"ednelkit/adapters/tables"
)

// DefaultAlpha is the significance level
const DefaultAlpha = 0.05

// Matrix holds one score per (dataset, algorithm)
type Matrix struct {
	Datasets   []string
	Algorithms []string
	Values     [][]float64 // Values[dataset][algorithm]
}

// ReadMatrix reads a CSV with datasets as rows and algorithms as columns. A
// two-level (algorithm, statistic) header keeps only the mean columns.
func ReadMatrix(path string) (*Matrix, error) {
	t, err := tables.ReadCSV(path, 1)
	if err != nil {
		return nil, err
	}

	meanOnly := len(t.Rows) > 0 && len(t.Rows[0]) > 0 && strings.HasPrefix(t.Rows[0][0], "statistic")
	if meanOnly {
		if t, err = tables.ReadCSV(path, 2); err != nil {
			return nil, err
		}
	}

	var cols []int
	m := &Matrix{}
	for c, name := range t.Headers[0] {
		if c == 0 || (meanOnly && t.Headers[1][c] != "mean") {
			continue
		}
		cols = append(cols, c)
		m.Algorithms = append(m.Algorithms, name)
	}

	for i, row := range t.Rows {
		values := make([]float64, len(cols))
		for j, c := range cols {
			v, err := tables.ParseFloat(t.Cell(i, c))
			if err != nil {
				return nil, fmt.Errorf("%s: dataset %s, %s: %w", path, row[0], m.Algorithms[j], err)
			}
			values[j] = v
		}
		m.Datasets = append(m.Datasets, row[0])
		m.Values = append(m.Values, values)
	}
	return m, nil
}

func (m *Matrix) column(name string) (int, error) {
	for i, a := range m.Algorithms {
		if a == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no column %q", name)
}

// Removal is the outcome of removing datasets for one (algorithm, baseline) pair
type Removal struct {
	Algorithm string
	Baseline  string
	PValue    float64
	Removed   []string
}

// RemoveUntilSignificant sorts the datasets by algorithm-baseline difference and
// drops them from the smallest difference up while the test is not significant.
// It stops once too few datasets remain for the test.
func (m *Matrix) RemoveUntilSignificant(algorithm, baseline string, alpha float64) (Removal, error) {
	a, err := m.column(algorithm)
	if err != nil {
		return Removal{}, err
	}
	b, err := m.column(baseline)
	if err != nil {
		return Removal{}, err
	}

	type diff struct {
		dataset string
		value   float64
	}
	var diffs []diff
	for i, ds := range m.Datasets {
		v := m.Values[i][a] - m.Values[i][b]
		if !math.IsNaN(v) {
			diffs = append(diffs, diff{ds, v})
		}
	}
	sort.SliceStable(diffs, func(i, j int) bool { return diffs[i].value < diffs[j].value })

	values := func(ds []diff) []float64 {
		out := make([]float64, len(ds))
		for i, d := range ds {
			out[i] = d.value
		}
		return out
	}

	res := Removal{Algorithm: algorithm, Baseline: baseline}
	test, err := Wilcoxon(values(diffs))
	res.PValue = test.PValue
	for err == nil && test.PValue >= alpha && len(diffs) > 0 {
		res.Removed = append(res.Removed, diffs[0].dataset)
		diffs = diffs[1:]
		next, nextErr := Wilcoxon(values(diffs))
		if errors.Is(nextErr, ErrTooFewSamples) {
			break
		}
		test, err = next, nextErr
		res.PValue = test.PValue
	}
	return res, nil
}

// Analyze compares every non-baseline algorithm against every baseline
func (m *Matrix) Analyze(baselines []string, alpha float64) ([]Removal, error) {
	isBaseline := map[string]bool{}
	for _, b := range baselines {
		if _, err := m.column(b); err != nil {
			return nil, err
		}
		isBaseline[b] = true
	}

	var algorithms []string
	for _, a := range m.Algorithms {
		if !isBaseline[a] {
			algorithms = append(algorithms, a)
		}
	}
	sort.Strings(algorithms)

	var out []Removal
	for _, a := range algorithms {
		for _, b := range baselines {
			r, err := m.RemoveUntilSignificant(a, b, alpha)
			if err != nil {
				return nil, err
			}
			out = append(out, r)
		}
	}
	return out, nil
}

// RemovalTable lays removals out as removed.csv
func RemovalTable(removals []Removal) *tables.Table {
	t := tables.New("algorithm", "baseline", "p value", "n_removed", "removed datasets")
	for _, r := range removals {
		t.AddRow(r.Algorithm, r.Baseline, tables.FormatFloat(r.PValue), strconv.Itoa(len(r.Removed)), strings.Join(r.Removed, ";"))
	}
	return t
}

// DatasetCount is how often a dataset was removed over all pairs
type DatasetCount struct {
	Dataset string
	Count   int
}

// RemovalCounts tallies removed datasets, most removed first
func RemovalCounts(removals []Removal) []DatasetCount {
	counts := map[string]int{}
	for _, r := range removals {
		for _, ds := range r.Removed {
			counts[ds]++
		}
	}
	out := make([]DatasetCount, 0, len(counts))
	for ds, c := range counts {
		out = append(out, DatasetCount{ds, c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Dataset < out[j].Dataset
	})
	return out
}

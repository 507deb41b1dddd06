package aggregate

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"ednelkit/adapters/tables"
	"ednelkit/domain/literal"
	"ednelkit/domain/metrics"
)

const (
	// SummaryFile is written into every aggregated overall directory
	SummaryFile = "summary.csv"
	// MeanOfMeans labels the per-ensemble row aggregated across samples
	MeanOfMeans = "mean-of-means"
)

// Stat is one aggregated (mean, std) cell. Structural metrics carry the summed
// structure and no std.
type Stat struct {
	Mean      float64
	Std       float64
	Structure *literal.Value
}

// MeanText renders the mean cell as written to summary.csv
func (s Stat) MeanText() string {
	if s.Structure != nil {
		return s.Structure.String()
	}
	return tables.FormatFloat(s.Mean)
}

func nanStat() Stat {
	return Stat{Mean: math.NaN(), Std: math.NaN()}
}

// Row is one summary line: an ensemble in one sample, or its mean-of-means
type Row struct {
	Label    string
	Ensemble string
	Sample   int // 0 for the mean-of-means row
	Stats    []Stat
}

// Summary is the aggregated result of one dataset of one experiment
type Summary struct {
	Experiment string
	Dataset    string
	Metrics    []metrics.Metric
	Ensembles  []string
	Rows       []Row
}

// LabeledValue is one value of a summary column
type LabeledValue struct {
	Label    string
	Ensemble string
	Value    float64
}

func (s *Summary) metricIndex(name string) int {
	for i, m := range s.Metrics {
		if m.Name == name {
			return i
		}
	}
	return -1
}

// Row finds a row by label
func (s *Summary) Row(label string) (Row, bool) {
	for _, r := range s.Rows {
		if r.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

// MeanOfMeans returns the mean of metric in every mean-of-means row, in ensemble order
func (s *Summary) MeanOfMeans(metric string) ([]LabeledValue, error) {
	idx := s.metricIndex(metric)
	if idx < 0 {
		return nil, fmt.Errorf("metric %q not in summary", metric)
	}
	var out []LabeledValue
	for _, r := range s.Rows {
		if r.Sample == 0 {
			out = append(out, LabeledValue{Label: r.Label, Ensemble: r.Ensemble, Value: r.Stats[idx].Mean})
		}
	}
	return out, nil
}

// Table lays the summary out with a two-level header: metric over {mean, std}
func (s *Summary) Table() *tables.Table {
	top := []string{"metric"}
	bottom := []string{"statistics"}
	for _, m := range s.Metrics {
		top = append(top, m.Name, m.Name)
		bottom = append(bottom, "mean", "std")
	}
	t := tables.NewMultiLevel(top, bottom)

	for _, r := range s.Rows {
		cells := []string{r.Label}
		for _, st := range r.Stats {
			cells = append(cells, st.MeanText(), tables.FormatFloat(st.Std))
		}
		t.AddRow(cells...)
	}
	return t
}

// Write saves the summary as summary.csv inside dir
func (s *Summary) Write(dir string) error {
	return tables.WriteCSV(filepath.Join(dir, SummaryFile), s.Table())
}

// ReadMeanOfMeans reads the mean-of-means values of metric back from a summary.csv
func ReadMeanOfMeans(path, metric string) ([]LabeledValue, error) {
	t, err := tables.ReadCSV(path, 2)
	if err != nil {
		return nil, err
	}
	col := t.ColumnIndex(metric, "mean")
	if col < 0 {
		return nil, fmt.Errorf("%s has no (%s, mean) column", path, metric)
	}

	var out []LabeledValue
	suffix := "-" + MeanOfMeans
	for i, row := range t.Rows {
		if len(row) == 0 || !strings.HasSuffix(row[0], suffix) {
			continue
		}
		v, err := tables.ParseFloat(t.Cell(i, col))
		if err != nil {
			return nil, fmt.Errorf("%s row %s: %w", path, row[0], err)
		}
		out = append(out, LabeledValue{Label: row[0], Ensemble: strings.TrimSuffix(row[0], suffix), Value: v})
	}
	return out, nil
}

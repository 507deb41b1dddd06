// Package aggregate collapses per-fold cross-validation results of EDNEL
// experiments into per-dataset summaries and cross-experiment comparison tables.
package aggregate

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"ednelkit/domain/literal"
	"ednelkit/domain/metrics"
	"ednelkit/internal"

	"github.com/montanaflynn/stats"
)

// DefaultMetric is the metric collected into the comparison tables
const DefaultMetric = "unweighted_area_under_roc"

// Options tunes an Aggregator
type Options struct {
	// NSamples and NFolds fix the expected fold grid; zero means infer from the files
	NSamples int
	NFolds   int
	// Metric is the metric of interest for final_summary.csv
	Metric string
}

// Aggregator turns fold result files into summaries
type Aggregator struct {
	registry *metrics.Registry
	logger   *internal.Logger
	opts     Options
}

// NewAggregator creates an aggregator over the given metric registry
func NewAggregator(registry *metrics.Registry, logger *internal.Logger, opts Options) *Aggregator {
	if opts.Metric == "" {
		opts.Metric = DefaultMetric
	}
	return &Aggregator{registry: registry, logger: logger, opts: opts}
}

// incomplete marks a dataset that must be skipped
type incomplete struct{ reason string }

func (e *incomplete) Error() string { return e.reason }

func skip(format string, args ...interface{}) error {
	return &incomplete{reason: fmt.Sprintf(format, args...)}
}

// AggregateDataset summarizes the nSamples x nFolds result files of one overall
// directory and writes summary.csv next to them. An incomplete or unreadable
// fold set is logged and yields (nil, nil).
func (a *Aggregator) AggregateDataset(overallDir string, nSamples, nFolds int) (*Summary, error) {
	dataset := filepath.Base(filepath.Dir(overallDir))
	experiment := filepath.Base(filepath.Dir(filepath.Dir(overallDir)))

	s, reason, err := a.aggregateDataset(overallDir, experiment, dataset, nSamples, nFolds)
	if err != nil || reason != "" {
		return nil, err
	}
	return s, nil
}

// aggregateDataset returns a non-empty reason when the dataset was skipped
func (a *Aggregator) aggregateDataset(overallDir, experiment, dataset string, nSamples, nFolds int) (*Summary, string, error) {
	if nSamples <= 0 || nFolds <= 0 {
		return nil, "", fmt.Errorf("invalid fold grid %d x %d", nSamples, nFolds)
	}

	s, err := a.summarize(overallDir, experiment, dataset, nSamples, nFolds)
	var inc *incomplete
	if errors.As(err, &inc) {
		return nil, a.skipDataset(overallDir, experiment, dataset, inc.reason), nil
	}
	if err != nil {
		return nil, "", err
	}

	if err := s.Write(overallDir); err != nil {
		return nil, "", err
	}
	a.logger.Debug("wrote %s", filepath.Join(overallDir, SummaryFile))
	return s, "", nil
}

// skipDataset logs the skip and removes a stale summary.csv; it returns reason
func (a *Aggregator) skipDataset(overallDir, experiment, dataset, reason string) string {
	a.logger.Warn("skipping dataset %s of experiment %s: %s", dataset, experiment, reason)
	if err := os.Remove(filepath.Join(overallDir, SummaryFile)); err != nil && !os.IsNotExist(err) {
		a.logger.Debug("could not remove stale summary in %s: %v", overallDir, err)
	}
	return reason
}

func (a *Aggregator) summarize(overallDir, experiment, dataset string, nSamples, nFolds int) (*Summary, error) {
	var missing []string
	for sample := 1; sample <= nSamples; sample++ {
		for fold := 1; fold <= nFolds; fold++ {
			name := FoldFileName(sample, fold)
			if _, err := os.Stat(filepath.Join(overallDir, name)); err != nil {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		return nil, skip("%d of %d fold files missing (%s)", len(missing), nSamples*nFolds, strings.Join(missing, ", "))
	}

	folds := make([][]*FoldResult, nSamples)
	for sample := 1; sample <= nSamples; sample++ {
		for fold := 1; fold <= nFolds; fold++ {
			fr, err := ReadFoldResult(filepath.Join(overallDir, FoldFileName(sample, fold)), a.registry)
			if err != nil {
				return nil, skip("unreadable fold file: %v", err)
			}
			folds[sample-1] = append(folds[sample-1], fr)
		}
	}

	ensembles := folds[0][0].Ensembles
	for _, sampleFolds := range folds {
		for _, fr := range sampleFolds {
			for _, ens := range ensembles {
				if !fr.HasEnsemble(ens) {
					return nil, skip("ensemble %s missing from a fold file", ens)
				}
			}
		}
	}

	ms := a.registry.Metrics()
	var absent []string
	for _, m := range ms {
		if !folds[0][0].HasMetric(m) {
			absent = append(absent, m.Column(folds[0][0].Convention))
		}
	}
	if len(absent) > 0 {
		a.logger.Debug("%s/%s: no column for %s", experiment, dataset, strings.Join(absent, ", "))
	}

	summary := &Summary{Experiment: experiment, Dataset: dataset, Metrics: ms, Ensembles: ensembles}
	perSample := make(map[string][][]Stat, len(ensembles))

	for sample, sampleFolds := range folds {
		for _, ens := range ensembles {
			row := Row{Label: ens + "-" + sampleLabel(sample+1), Ensemble: ens, Sample: sample + 1}
			for _, m := range ms {
				st, err := foldStat(sampleFolds, ens, m)
				if err != nil {
					return nil, skip("sample %d, ensemble %s: %v", sample+1, ens, err)
				}
				row.Stats = append(row.Stats, st)
			}
			summary.Rows = append(summary.Rows, row)
			perSample[ens] = append(perSample[ens], row.Stats)
		}
	}

	for _, ens := range ensembles {
		row := Row{Label: ens + "-" + MeanOfMeans, Ensemble: ens}
		for i, m := range ms {
			st, err := meanOfMeans(perSample[ens], i, m)
			if err != nil {
				return nil, skip("mean-of-means of %s for %s: %v", m.Name, ens, err)
			}
			row.Stats = append(row.Stats, st)
		}
		summary.Rows = append(summary.Rows, row)
	}

	return summary, nil
}

// foldStat combines the fold values of one ensemble and metric within a sample
func foldStat(folds []*FoldResult, ensemble string, m metrics.Metric) (Stat, error) {
	if m.Operator == metrics.Structural {
		return structuralSum(folds, ensemble, m)
	}

	values := make([]float64, 0, len(folds))
	for _, fr := range folds {
		raw, _ := fr.Value(ensemble, m)
		v, err := parseNumber(raw)
		if err != nil {
			return Stat{}, fmt.Errorf("%s: %w", m.Name, err)
		}
		values = append(values, v)
	}

	st := Stat{Std: sampleStd(values)}
	if m.Operator == metrics.Sum {
		st.Mean, _ = stats.Sum(values)
	} else {
		st.Mean, _ = stats.Mean(values)
	}
	return st, nil
}

func structuralSum(folds []*FoldResult, ensemble string, m metrics.Metric) (Stat, error) {
	var sum *literal.Value
	for _, fr := range folds {
		raw, _ := fr.Value(ensemble, m)
		if isMissing(raw) {
			return nanStat(), nil
		}
		v, err := literal.Parse(raw)
		if err != nil {
			return Stat{}, fmt.Errorf("%s: %w", m.Name, err)
		}
		if sum == nil {
			sum = &v
			continue
		}
		added, err := literal.Add(*sum, v)
		if err != nil {
			return Stat{}, fmt.Errorf("%s: %w", m.Name, err)
		}
		sum = &added
	}
	return Stat{Mean: math.NaN(), Std: math.NaN(), Structure: sum}, nil
}

// meanOfMeans aggregates column i of the per-sample stats of one ensemble
func meanOfMeans(samples [][]Stat, i int, m metrics.Metric) (Stat, error) {
	if m.Operator == metrics.Structural {
		var sum *literal.Value
		for _, st := range samples {
			if st[i].Structure == nil {
				return nanStat(), nil
			}
			if sum == nil {
				v := *st[i].Structure
				sum = &v
				continue
			}
			added, err := literal.Add(*sum, *st[i].Structure)
			if err != nil {
				return Stat{}, err
			}
			sum = &added
		}
		mean := sum.Scale(1 / float64(len(samples)))
		return Stat{Mean: math.NaN(), Std: math.NaN(), Structure: &mean}, nil
	}

	values := make([]float64, len(samples))
	for j, st := range samples {
		values[j] = st[i].Mean
	}
	mean, _ := stats.Mean(values)
	return Stat{Mean: mean, Std: sampleStd(values)}, nil
}

// sampleStd is the n-1 standard deviation; fewer than two values give NaN
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	sd, err := stats.StandardDeviationSample(values)
	if err != nil {
		return math.NaN()
	}
	return sd
}

func isMissing(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || strings.EqualFold(raw, "nan")
}

func parseNumber(raw string) (float64, error) {
	if isMissing(raw) {
		return math.NaN(), nil
	}
	v, err := literal.Parse(raw)
	if err != nil {
		return 0, err
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("expected a number, got %s", v.Kind())
	}
	return f, nil
}

package aggregate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"ednelkit/adapters/tables"
	apperrors "ednelkit/internal/errors"

	"github.com/tidwall/gjson"
)

const (
	FinalSummaryFile    = "final_summary.csv"
	ForComparisonFile   = "for_comparison.csv"
	HyperparametersFile = "hyperparameters.csv"
	ParametersFile      = "parameters.json"
)

// Skipped records a dataset left out of the comparison
type Skipped struct {
	Experiment string
	Dataset    string
	Reason     string
}

// WalkResult holds everything WalkAndAggregate produced
type WalkResult struct {
	NSamples        int
	NFolds          int
	Summaries       []*Summary
	Skipped         []Skipped
	FinalSummary    *tables.Table
	ForComparison   *tables.Table
	Hyperparameters *tables.Table
}

// experimentDir is one experiment folder of a tree
type experimentDir struct {
	name string
	path string
}

// experiments resolves the experiment folders of root from its depth:
// 2 means root is one experiment, 3 means root holds experiments
func experiments(root string) ([]experimentDir, error) {
	depth, err := DiscoverDepth(root)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	switch depth {
	case 2:
		return []experimentDir{{name: filepath.Base(abs), path: root}}, nil
	case 3:
		names, err := subdirs(root)
		if err != nil {
			return nil, err
		}
		var out []experimentDir
		for _, n := range names {
			out = append(out, experimentDir{name: n, path: filepath.Join(root, n)})
		}
		return out, nil
	default:
		return nil, apperrors.InvalidInput(fmt.Sprintf(
			"%s is %d levels above its overall directories; expected an experiment (2) or a folder of experiments (3)", root, depth))
	}
}

// datasets lists the dataset folders of an experiment that hold an overall directory
func (a *Aggregator) datasets(exp experimentDir) ([]string, error) {
	names, err := subdirs(exp.path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		info, err := os.Stat(filepath.Join(exp.path, n, OverallDir))
		if err != nil || !info.IsDir() {
			a.logger.Debug("%s/%s has no overall directory, ignored", exp.name, n)
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

// WalkAndAggregate aggregates every dataset under root, then writes
// final_summary.csv, for_comparison.csv and hyperparameters.csv into root.
// Incomplete datasets are skipped and reported in the result.
func (a *Aggregator) WalkAndAggregate(root string) (*WalkResult, error) {
	exps, err := experiments(root)
	if err != nil {
		return nil, err
	}

	nSamples, nFolds := a.opts.NSamples, a.opts.NFolds
	noGrid := false
	if nSamples <= 0 || nFolds <= 0 {
		inferredSamples, inferredFolds, err := a.InferShape(root)
		switch {
		case errors.Is(err, ErrNoFoldFiles):
			a.logger.Warn("%v: every dataset is incomplete", err)
			noGrid = true
		case err != nil:
			return nil, err
		}
		if nSamples <= 0 {
			nSamples = inferredSamples
		}
		if nFolds <= 0 {
			nFolds = inferredFolds
		}
	}
	if !noGrid {
		a.logger.Info("aggregating %d experiment(s) with %d samples x %d folds", len(exps), nSamples, nFolds)
	}

	res := &WalkResult{NSamples: nSamples, NFolds: nFolds}
	for _, exp := range exps {
		dss, err := a.datasets(exp)
		if err != nil {
			return nil, err
		}
		for _, ds := range dss {
			overall := filepath.Join(exp.path, ds, OverallDir)
			if noGrid {
				reason := a.skipDataset(overall, exp.name, ds, "no fold result files")
				res.Skipped = append(res.Skipped, Skipped{Experiment: exp.name, Dataset: ds, Reason: reason})
				continue
			}
			s, reason, err := a.aggregateDataset(overall, exp.name, ds, nSamples, nFolds)
			if err != nil {
				return nil, err
			}
			if reason != "" {
				res.Skipped = append(res.Skipped, Skipped{Experiment: exp.name, Dataset: ds, Reason: reason})
				continue
			}
			res.Summaries = append(res.Summaries, s)
		}
	}

	res.FinalSummary, err = a.finalSummary(res.Summaries)
	if err != nil {
		return nil, err
	}
	res.ForComparison = forComparison(res.FinalSummary)
	res.Hyperparameters = a.hyperparameters(exps)

	for name, t := range map[string]*tables.Table{
		FinalSummaryFile:    res.FinalSummary,
		ForComparisonFile:   res.ForComparison,
		HyperparametersFile: res.Hyperparameters,
	} {
		if err := tables.WriteCSV(filepath.Join(root, name), t); err != nil {
			return nil, err
		}
	}

	a.logger.Info("aggregated %d dataset(s), skipped %d", len(res.Summaries), len(res.Skipped))
	return res, nil
}

// finalSummary has one row per (experiment, dataset) and one column per mean-of-means label
func (a *Aggregator) finalSummary(summaries []*Summary) (*tables.Table, error) {
	type line struct {
		experiment, dataset string
		values              []LabeledValue
	}
	var lines []line
	for _, s := range summaries {
		values, err := s.MeanOfMeans(a.opts.Metric)
		if err != nil {
			return nil, apperrors.InvalidInput(err.Error())
		}
		lines = append(lines, line{s.Experiment, s.Dataset, values})
	}

	var labels []string
	seen := map[string]bool{}
	for _, l := range lines {
		for _, v := range l.values {
			if !seen[v.Label] {
				seen[v.Label] = true
				labels = append(labels, v.Label)
			}
		}
	}

	t := tables.New(append([]string{"experiment_name", "dataset_name"}, labels...)...)
	for _, l := range lines {
		byLabel := make(map[string]float64, len(l.values))
		for _, v := range l.values {
			byLabel[v.Label] = v.Value
		}
		cells := []string{l.experiment, l.dataset}
		for _, label := range labels {
			if v, ok := byLabel[label]; ok {
				cells = append(cells, tables.FormatFloat(v))
			} else {
				cells = append(cells, "")
			}
		}
		t.AddRow(cells...)
	}
	return t, nil
}

// forComparison pivots final_summary into one row per dataset and one column per
// <experiment>_<ensemble>
func forComparison(final *tables.Table) *tables.Table {
	cols := final.Columns()
	suffix := "-" + MeanOfMeans

	experimentSet := map[string]bool{}
	datasetSet := map[string]bool{}
	values := map[[2]string]map[string]string{}
	for _, row := range final.Rows {
		key := [2]string{row[0], row[1]}
		experimentSet[row[0]] = true
		datasetSet[row[1]] = true
		values[key] = map[string]string{}
		for c := 2; c < len(cols) && c < len(row); c++ {
			if row[c] != "" {
				values[key][strings.TrimSuffix(cols[c], suffix)] = row[c]
			}
		}
	}

	exps := sortedKeys(experimentSet)
	dss := sortedKeys(datasetSet)

	type column struct{ experiment, ensemble string }
	var columns []column
	header := []string{"dataset_name"}
	for _, exp := range exps {
		for c := 2; c < len(cols); c++ {
			ens := strings.TrimSuffix(cols[c], suffix)
			for _, ds := range dss {
				if _, ok := values[[2]string{exp, ds}][ens]; ok {
					columns = append(columns, column{exp, ens})
					header = append(header, exp+"_"+ens)
					break
				}
			}
		}
	}

	t := tables.New(header...)
	for _, ds := range dss {
		cells := []string{ds}
		for _, c := range columns {
			cells = append(cells, values[[2]string{c.experiment, ds}][c.ensemble])
		}
		t.AddRow(cells...)
	}
	return t
}

// hyperparameters has one row per experiment, columns from its parameters.json
func (a *Aggregator) hyperparameters(exps []experimentDir) *tables.Table {
	type record struct {
		name   string
		values map[string]string
	}
	var records []record
	keySet := map[string]bool{}

	for _, exp := range exps {
		path := filepath.Join(exp.path, ParametersFile)
		data, err := os.ReadFile(path)
		if err != nil {
			a.logger.Warn("no %s for experiment %s: %v", ParametersFile, exp.name, err)
			continue
		}
		if !gjson.ValidBytes(data) {
			a.logger.Warn("%s is not valid JSON, experiment %s left out of %s", path, exp.name, HyperparametersFile)
			continue
		}
		r := record{name: exp.name, values: map[string]string{}}
		gjson.ParseBytes(data).ForEach(func(k, v gjson.Result) bool {
			keySet[k.String()] = true
			r.values[k.String()] = v.String()
			return true
		})
		records = append(records, r)
	}

	keys := sortedKeys(keySet)
	t := tables.New(append([]string{"experiment_name"}, keys...)...)
	for _, r := range records {
		cells := []string{r.name}
		for _, k := range keys {
			cells = append(cells, r.values[k])
		}
		t.AddRow(cells...)
	}
	return t
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

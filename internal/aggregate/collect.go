package aggregate

import (
	"path/filepath"

	"ednelkit/adapters/tables"
	"ednelkit/domain/metrics"
)

// Collect rebuilds final_summary.csv from the summary.csv files already present
// under root. Datasets without a readable summary are skipped with a warning.
func (a *Aggregator) Collect(root string) (*tables.Table, error) {
	exps, err := experiments(root)
	if err != nil {
		return nil, err
	}

	var summaries []*Summary
	for _, exp := range exps {
		dss, err := a.datasets(exp)
		if err != nil {
			return nil, err
		}
		for _, ds := range dss {
			path := filepath.Join(exp.path, ds, OverallDir, SummaryFile)
			values, err := ReadMeanOfMeans(path, a.opts.Metric)
			if err != nil {
				a.logger.Warn("skipping dataset %s of experiment %s: %v", ds, exp.name, err)
				continue
			}
			summaries = append(summaries, fromMeanOfMeans(exp.name, ds, a.opts.Metric, values))
		}
	}

	final, err := a.finalSummary(summaries)
	if err != nil {
		return nil, err
	}
	if err := tables.WriteCSV(filepath.Join(root, FinalSummaryFile), final); err != nil {
		return nil, err
	}
	a.logger.Info("collected %d dataset(s) into %s", len(summaries), FinalSummaryFile)
	return final, nil
}

// fromMeanOfMeans rebuilds a one-metric summary holding only mean-of-means rows
func fromMeanOfMeans(experiment, dataset, metric string, values []LabeledValue) *Summary {
	s := &Summary{Experiment: experiment, Dataset: dataset, Metrics: []metrics.Metric{{Name: metric}}}
	for _, v := range values {
		s.Ensembles = append(s.Ensembles, v.Ensemble)
		s.Rows = append(s.Rows, Row{Label: v.Label, Ensemble: v.Ensemble, Stats: []Stat{{Mean: v.Value}}})
	}
	return s
}

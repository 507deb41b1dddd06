package main

import (
	"path/filepath"

	"ednelkit/adapters/java"
	"ednelkit/adapters/tables"
	"ednelkit/domain/metrics"
	"ednelkit/internal/aggregate"
	"ednelkit/internal/hyperparams"
	"ednelkit/internal/nestedcv"
	"ednelkit/internal/report"

	"github.com/spf13/cobra"
)

func newPostprocessCmd(e *env) *cobra.Command {
	var experimentPath, metric, xlsxPath, markdownPath string
	var nSamples, nFolds int

	cmd := &cobra.Command{
		Use:   "postprocess",
		Short: "Aggregate fold results into per-dataset summaries and comparison tables",
		Long: `Walk an experiment tree, write summary.csv into every complete dataset's
overall folder and write final_summary.csv, for_comparison.csv and
hyperparameters.csv into the tree root.

The tree is either one experiment ({dataset}/overall/...) or a folder of
experiments ({experiment}/{dataset}/overall/...). Incomplete datasets are
reported on stderr and skipped.

Example: ednelkit postprocess --experiment-path results/ --n-samples 10 --n-folds 10`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireDir("experiment-path", experimentPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			agg := aggregate.NewAggregator(metrics.Default(), e.logger, aggregate.Options{
				NSamples: nSamples,
				NFolds:   nFolds,
				Metric:   metric,
			})
			res, err := agg.WalkAndAggregate(experimentPath)
			if err != nil {
				return err
			}

			if err := report.NewPrinter(cmd.OutOrStdout()).Table(res.FinalSummary); err != nil {
				return err
			}

			if xlsxPath != "" {
				sheets := []tables.Sheet{
					{Name: "final_summary", Table: res.FinalSummary},
					{Name: "for_comparison", Table: res.ForComparison},
					{Name: "hyperparameters", Table: res.Hyperparameters},
				}
				for _, s := range res.Summaries {
					sheets = append(sheets, tables.Sheet{Name: s.Experiment + "_" + s.Dataset, Table: s.Table()})
				}
				if err := tables.WriteWorkbook(xlsxPath, sheets); err != nil {
					return err
				}
				e.logger.Info("workbook written to %s", xlsxPath)
			}
			if markdownPath != "" {
				htmlPath, err := report.WriteMarkdown(markdownPath, "Final summary", res.FinalSummary)
				if err != nil {
					return err
				}
				e.logger.Info("report written to %s and %s", markdownPath, htmlPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&experimentPath, "experiment-path", "", "Experiment tree to aggregate")
	cmd.Flags().IntVar(&nSamples, "n-samples", e.cfg.Postprocess.NSamples, "External samples per dataset (0 infers from file names)")
	cmd.Flags().IntVar(&nFolds, "n-folds", e.cfg.Postprocess.NFolds, "Folds per sample (0 infers from file names)")
	cmd.Flags().StringVar(&metric, "metric", e.cfg.Postprocess.Metric, "Metric collected into final_summary.csv")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also export every table to this workbook")
	cmd.Flags().StringVar(&markdownPath, "markdown", "", "Also render the final summary as markdown (plus .html)")
	cmd.MarkFlagRequired("experiment-path")

	return cmd
}

func newCollectMetricsCmd(e *env) *cobra.Command {
	var experimentsPath, metric string

	cmd := &cobra.Command{
		Use:   "collect-metrics",
		Short: "Rebuild final_summary.csv from existing summary.csv files",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireDir("experiments-path", experimentsPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			agg := aggregate.NewAggregator(metrics.Default(), e.logger, aggregate.Options{Metric: metric})
			final, err := agg.Collect(experimentsPath)
			if err != nil {
				return err
			}
			return report.NewPrinter(cmd.OutOrStdout()).Table(final)
		},
	}

	cmd.Flags().StringVar(&experimentsPath, "experiments-path", "", "Experiment tree holding summary.csv files")
	cmd.Flags().StringVar(&metric, "metric", e.cfg.Postprocess.Metric, "Metric to collect")
	cmd.MarkFlagRequired("experiments-path")

	return cmd
}

func newNestedCVCmd(e *env) *cobra.Command {
	var experimentPath string
	opts := nestedcv.Options{}

	cmd := &cobra.Command{
		Use:   "nestedcv-postprocess",
		Short: "Compile nested cross-validation predictions with the Java toolkit",
		Long: `For every {experiment}/{dataset}/overall folder holding a complete set of
.preds files, run the EDNEL prediction compiler and collect the per-classifier
mean and standard deviation into nestedcv_summarized.csv.

Example: ednelkit nestedcv-postprocess --experiment-path nested/ --jar ednel.jar`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requireDir("experiment-path", experimentPath); err != nil {
				return err
			}
			return requireFile("jar", opts.Jar)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Metric = e.cfg.NestedCV.Metric
			compiler := nestedcv.NewCompiler(java.NewExecRunner(e.logger), e.logger, opts)
			res, err := compiler.Run(cmd.Context(), experimentPath)
			if err != nil {
				return err
			}
			return report.NewPrinter(cmd.OutOrStdout()).Table(res.Table())
		},
	}

	cmd.Flags().StringVar(&experimentPath, "experiment-path", "", "Nested cross-validation output tree")
	cmd.Flags().StringVar(&opts.Jar, "jar", e.cfg.Java.Jar, "EDNEL jar holding the prediction compiler")
	cmd.Flags().StringVar(&opts.JavaBin, "java", e.cfg.Java.Bin, "Java executable")
	cmd.Flags().StringVar(&opts.HeapSize, "heap-size", e.cfg.Java.HeapSize, "JVM maximum heap (-Xmx)")
	cmd.Flags().IntVar(&opts.ExpectedFolds, "n-folds", e.cfg.NestedCV.ExpectedFolds, "Expected outer folds per dataset")
	cmd.MarkFlagRequired("experiment-path")

	return cmd
}

func newInterpretParamsCmd(e *env) *cobra.Command {
	var experimentPath string

	cmd := &cobra.Command{
		Use:   "interpret-params",
		Short: "Count the hyper-parameter values that vary across datasets",
		Long: `Read every *parameters.json under {experiment-path}/{experiment}/{dataset}/
and write ultra_parameters.csv into experiment-path: one row per dataset, one
column per (parameter, value) pair of the parameters that take more than one
value across all datasets.`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireDir("experiment-path", experimentPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := hyperparams.Load(experimentPath)
			if err != nil {
				return err
			}
			t := hyperparams.Extract(records)
			if err := t.Write(experimentPath); err != nil {
				return err
			}
			e.logger.Info("%d varying parameter values over %d dataset(s) written to %s",
				len(t.Columns), len(t.Datasets), filepath.Join(experimentPath, hyperparams.OutputFile))
			return report.NewPrinter(cmd.OutOrStdout()).Table(t.Table())
		},
	}

	cmd.Flags().StringVar(&experimentPath, "experiment-path", "", "Folder of experiments, each holding one folder per dataset")
	cmd.MarkFlagRequired("experiment-path")

	return cmd
}

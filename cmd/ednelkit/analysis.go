package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"ednelkit/adapters/tables"
	"ednelkit/internal/compare"
	"ednelkit/internal/population"
	"ednelkit/internal/report"
	"ednelkit/internal/sweep"

	"github.com/spf13/cobra"
)

func newCompareCmd(e *env) *cobra.Command {
	var csvPath, out string
	var baselines []string
	var alpha float64

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Find the datasets that keep an algorithm from beating a baseline",
		Long: `For every (algorithm, baseline) pair of a dataset x algorithm score table,
remove datasets from the one where the algorithm fares worst until a Wilcoxon
signed-rank test finds a significant difference. Writes removed.csv.

Accepts for_comparison.csv and nestedcv_summarized.csv.

Example: ednelkit compare --csv-path for_comparison.csv --baseline j48 --baseline randomforest`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if len(baselines) == 0 {
				return fmt.Errorf("at least one --baseline is required")
			}
			if alpha <= 0 || alpha >= 1 {
				return fmt.Errorf("--alpha must be in (0, 1), got %g", alpha)
			}
			return requireFile("csv-path", csvPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := compare.ReadMatrix(csvPath)
			if err != nil {
				return err
			}
			removals, err := m.Analyze(baselines, alpha)
			if err != nil {
				return err
			}

			if out == "" {
				out = filepath.Join(filepath.Dir(csvPath), "removed.csv")
			}
			if err := tables.WriteCSV(out, compare.RemovalTable(removals)); err != nil {
				return err
			}
			e.logger.Info("%d comparison(s) written to %s", len(removals), out)

			counts := tables.New("dataset", "times removed")
			for _, c := range compare.RemovalCounts(removals) {
				counts.AddRow(c.Dataset, strconv.Itoa(c.Count))
			}
			return report.NewPrinter(cmd.OutOrStdout()).Table(counts)
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv-path", "", "Score table: one row per dataset, one column per algorithm")
	cmd.Flags().StringArrayVar(&baselines, "baseline", nil, "Baseline algorithm column (repeatable)")
	cmd.Flags().Float64Var(&alpha, "alpha", compare.DefaultAlpha, "Significance level")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV (default removed.csv next to the input)")
	cmd.MarkFlagRequired("csv-path")

	return cmd
}

func newPCACmd(e *env) *cobra.Command {
	var csvPath, out string

	cmd := &cobra.Command{
		Use:   "pca",
		Short: "Project population characteristics onto their first two principal components",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return requireFile("csv-path", csvPath)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := tables.ReadCSV(csvPath, 1)
			if err != nil {
				return err
			}
			c, err := population.Encode(t)
			if err != nil {
				return err
			}
			points, err := population.Project(c)
			if err != nil {
				return err
			}

			if out == "" {
				out = strings.TrimSuffix(csvPath, filepath.Ext(csvPath)) + "_pca.csv"
			}
			if err := tables.WriteCSV(out, population.Table(points)); err != nil {
				return err
			}
			e.logger.Info("%d individual(s) projected to %s", len(points), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&csvPath, "csv-path", "", "Characteristics CSV, one individual per row")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV (default <input>_pca.csv)")
	cmd.MarkFlagRequired("csv-path")

	return cmd
}

func newSweepCmd(e *env) *cobra.Command {
	var configPath, outDir string
	var seed int64
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Generate random-search shell scripts",
		Long: `Sample hyper-parameter values and write one bash script per dataset set,
each holding one filled-in command line per trial.

Without --config the built-in EDNEL random search is used; --print-config
prints it as YAML to start a custom config from.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := sweep.DefaultConfig()
			if configPath != "" {
				loaded, err := sweep.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			if printConfig {
				b, err := cfg.Marshal()
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}

			if cmd.Flags().Changed("seed") {
				cfg.Seed = seed
			}
			paths, err := sweep.Generate(cfg, cfg.Seed, outDir)
			if err != nil {
				return err
			}
			for _, p := range paths {
				e.logger.Info("wrote %d trial(s) to %s", cfg.NSamples, p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML sweep config (default: built-in EDNEL search)")
	cmd.Flags().StringVar(&outDir, "out-dir", ".", "Directory for the generated scripts")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (overrides the config's seed)")
	cmd.Flags().BoolVar(&printConfig, "print-config", false, "Print the effective config as YAML and exit")

	return cmd
}

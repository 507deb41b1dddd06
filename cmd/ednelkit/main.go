package main

import (
	"fmt"
	"os"

	"ednelkit/internal"
	"ednelkit/internal/config"
	apperrors "ednelkit/internal/errors"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// env carries what every subcommand needs once flags are parsed
type env struct {
	cfg    *config.Config
	logger *internal.Logger
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		if apperrors.IsAppError(err) {
			fmt.Fprintf(os.Stderr, "error [%s]: %v\n", apperrors.GetCode(err), err)
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	e := &env{cfg: cfg, logger: internal.NewDefaultLogger()}
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "ednelkit",
		Short:         "Post-processing and analysis tools for EDNEL experiment runs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			e.logger.SetLevel(internal.ParseLogLevel(logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", cfg.LogLevel, "Diagnostic verbosity: ERROR, WARN, INFO, DEBUG or TRACE")

	rootCmd.AddCommand(
		newPostprocessCmd(e),
		newCollectMetricsCmd(e),
		newNestedCVCmd(e),
		newInterpretParamsCmd(e),
		newNetworkCmd(e),
		newServeCmd(e),
		newCompareCmd(e),
		newPCACmd(e),
		newSweepCmd(e),
	)
	return rootCmd
}

// requireDir fails when path is not an existing directory
func requireDir(flag, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeConfigInvalid, fmt.Errorf("--%s: %w", flag, err))
	}
	if !info.IsDir() {
		return apperrors.ConfigInvalid(fmt.Sprintf("--%s: %s is not a directory", flag, path))
	}
	return nil
}

// requireFile fails when path does not exist or is a directory
func requireFile(flag, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeConfigInvalid, fmt.Errorf("--%s: %w", flag, err))
	}
	if info.IsDir() {
		return apperrors.ConfigInvalid(fmt.Sprintf("--%s: %s is a directory", flag, path))
	}
	return nil
}

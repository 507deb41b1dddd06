package main

import (
	"fmt"
	"os"
	"path/filepath"

	"ednelkit/adapters/generations"
	"ednelkit/adapters/tables"
	"ednelkit/domain/network"
	"ednelkit/internal/dashboard"
	"ednelkit/internal/report"

	"github.com/spf13/cobra"
)

// loadStructures reads a generations file and builds every generation's network
func loadStructures(jsonPath, deterministicPath string) ([]*network.Structure, error) {
	raw, err := generations.ReadFile(jsonPath)
	if err != nil {
		return nil, err
	}
	base, err := generations.ReadDeterministic(deterministicPath)
	if err != nil {
		return nil, err
	}
	return network.BuildAll(raw, base)
}

func newNetworkCmd(e *env) *cobra.Command {
	var jsonPath, deterministicPath, generation, dotOut string

	cmd := &cobra.Command{
		Use:   "network",
		Short: "Print the dependency network of each generation and optionally render it as DOT",
		Long: `Decode the CPTs stored in a generations file (.json or a .zip holding one)
and list the edges of each generation's dependency network. With --dot-out,
one generation_NNN.dot file per generation is written for Graphviz.

Example: ednelkit network --json-path gm_0.json --generation 12 --dot-out graphs/`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFile("json-path", jsonPath); err != nil {
				return err
			}
			if deterministicPath != "" {
				return requireFile("deterministic-path", deterministicPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			structures, err := loadStructures(jsonPath, deterministicPath)
			if err != nil {
				return err
			}

			if generation != "" {
				want, err := network.ParseGeneration(generation)
				if err != nil {
					return err
				}
				var picked []*network.Structure
				for _, s := range structures {
					if got, err := network.ParseGeneration(s.Generation); err == nil && got == want {
						picked = append(picked, s)
					}
				}
				if len(picked) == 0 {
					return fmt.Errorf("generation %s not found in %s", network.FormatGeneration(want), jsonPath)
				}
				structures = picked
			}

			printer := report.NewPrinter(cmd.OutOrStdout())
			for _, s := range structures {
				edges := tables.New("generation "+s.Generation, "parent", "kind")
				for _, edge := range s.Edges() {
					edges.AddRow(edge.From, edge.To, edge.Kind.String())
				}
				if err := printer.Table(edges); err != nil {
					return err
				}

				if dotOut == "" {
					continue
				}
				b, err := network.MarshalDOT(s)
				if err != nil {
					return err
				}
				if err := os.MkdirAll(dotOut, 0755); err != nil {
					return err
				}
				path := filepath.Join(dotOut, "generation_"+s.Generation+".dot")
				if err := os.WriteFile(path, b, 0644); err != nil {
					return fmt.Errorf("failed to write %s: %w", path, err)
				}
				e.logger.Debug("wrote %s", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json-path", "", "Generations file (.json or .zip)")
	cmd.Flags().StringVar(&deterministicPath, "deterministic-path", "", "Optional JSON of deterministic dependencies")
	cmd.Flags().StringVar(&generation, "generation", "", "Only this generation (e.g. 7 or 007)")
	cmd.Flags().StringVar(&dotOut, "dot-out", "", "Directory for generation_NNN.dot files")
	cmd.MarkFlagRequired("json-path")

	return cmd
}

func newServeCmd(e *env) *cobra.Command {
	var jsonPath, deterministicPath, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve an interactive viewer over the generations file",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if err := requireFile("json-path", jsonPath); err != nil {
				return err
			}
			if deterministicPath != "" {
				return requireFile("deterministic-path", deterministicPath)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			structures, err := loadStructures(jsonPath, deterministicPath)
			if err != nil {
				return err
			}
			e.logger.Info("loaded %d generation(s) from %s", len(structures), jsonPath)

			app, err := dashboard.NewApp(structures, e.logger)
			if err != nil {
				return err
			}
			return app.Start(port)
		},
	}

	cmd.Flags().StringVar(&jsonPath, "json-path", "", "Generations file (.json or .zip)")
	cmd.Flags().StringVar(&deterministicPath, "deterministic-path", "", "Optional JSON of deterministic dependencies")
	cmd.Flags().StringVar(&port, "port", e.cfg.Dashboard.Port, "Port to listen on")
	cmd.MarkFlagRequired("json-path")

	return cmd
}

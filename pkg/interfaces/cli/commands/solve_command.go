package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/config"
	"github.com/vsinha/capplan/pkg/interfaces/cli/output"
)

func newSolveCmd(app *App) *cobra.Command {
	var record, chart bool

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Build and solve the expansion model and export the plan",
		Example: `  capplan solve --data-dir data
  capplan solve --scenario scenarios/linea.yaml --format json
  capplan solve --initial-capacity 50000 --record --chart`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSolve(commandContext(cmd), cmd, record, chart)
		},
	}

	cmd.Flags().String("output-dir", "results", "Directory for the result files (empty to skip)")
	cmd.Flags().String("format", "text", "Output format: text, json, csv")
	cmd.Flags().BoolVar(&record, "record", false, "Record the run in the plan history")
	cmd.Flags().BoolVar(&chart, "chart", false, "Also write an SVG capacity timeline")
	bindFlags(app.Viper, cmd.Flags(), map[string]string{
		config.KeyOutputDir:    "output-dir",
		config.KeyOutputFormat: "format",
	})

	return cmd
}

func (a *App) runSolve(ctx context.Context, cmd *cobra.Command, record, chart bool) error {
	ds, capacity, files, err := a.loadDataset(cmd)
	if err != nil {
		return err
	}
	if a.verbose {
		a.printHeader(files, capacity)
	}
	a.Logger.Info("planning data loaded",
		zap.Int("years", ds.NumYears()),
		zap.Int("expansions", ds.NumExpansions()),
		zap.Int("initial_capacity", capacity))

	orchestrator, err := a.newOrchestrator(record)
	if err != nil {
		return err
	}

	planned, err := orchestrator.RunCompletePlanning(ctx, ds, capacity)
	if err != nil {
		return err
	}
	result := planned.Result
	a.Logger.Info("plan solved",
		zap.String("run", result.RunID),
		zap.String("termination", result.Termination),
		zap.Float64("objective", result.Objective),
		zap.Duration("solve_time", result.SolveTime))

	outputConfig := output.Config{
		Format:    a.Config.Output.Format,
		OutputDir: a.Config.Output.Dir,
		Verbose:   a.verbose,
		Chart:     chart,
		Stdout:    a.Stdout,
	}
	if err := output.Generate(result, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	if a.verbose && a.Config.Output.Format == "text" {
		if err := a.printEventLog(result.RunID); err != nil {
			return err
		}
	}
	if planned.Recorded && a.Config.Output.Format == "text" {
		fmt.Fprintf(a.Stdout, "Recorded run %s\n", result.RunID)
	}
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/interfaces/cli/output"
)

func newSweepCmd(app *App) *cobra.Command {
	var (
		capacities  []int
		parallelism int
		record      bool
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:     "sweep",
		Short:   "Solve the plan for several initial capacities",
		Example: "  capplan sweep --capacities 30000,40000,50000 --parallel 2",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			if len(capacities) == 0 {
				return fmt.Errorf("--capacities is required")
			}
			for _, c := range capacities {
				if c < 0 {
					return fmt.Errorf("initial capacity must be non negative, got %d", c)
				}
			}

			ds, _, files, err := app.loadDataset(cmd)
			if err != nil {
				return err
			}
			if app.verbose {
				app.printHeader(files, capacities[0])
			}

			orchestrator, err := app.newOrchestrator(record)
			if err != nil {
				return err
			}
			rows, err := orchestrator.RunSweep(ctx, ds, capacities, parallelism)
			if err != nil {
				return err
			}

			if jsonOut {
				return output.WriteJSON(app.Stdout, sweepJSON(rows))
			}
			return output.WriteSweepTable(app.Stdout, rows)
		},
	}

	cmd.Flags().IntSliceVar(&capacities, "capacities", nil, "Comma-separated initial capacities to plan for")
	cmd.Flags().IntVar(&parallelism, "parallel", 0, "Scenarios solved at once (0 for one per CPU)")
	cmd.Flags().BoolVar(&record, "record", false, "Record successful scenarios in the plan history")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the sweep as JSON")
	return cmd
}

type sweepRowJSON struct {
	InitialCapacity int             `json:"initial_capacity"`
	Result          *dto.PlanResult `json:"result,omitempty"`
	Error           string          `json:"error,omitempty"`
}

func sweepJSON(rows []dto.SweepRow) []sweepRowJSON {
	out := make([]sweepRowJSON, len(rows))
	for i, row := range rows {
		out[i] = sweepRowJSON{InitialCapacity: row.InitialCapacity, Result: row.Result}
		if row.Err != nil {
			out[i].Error = row.Err.Error()
		}
	}
	return out
}

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vsinha/capplan/pkg/application/services/planning"
	"github.com/vsinha/capplan/pkg/infrastructure/solver"
)

func newModelCmd(app *App) *cobra.Command {
	var lpPath string

	cmd := &cobra.Command{
		Use:   "model",
		Short: "Build the expansion model and write it in LP format",
		Long:  "Build the expansion model and write it in CPLEX LP format for external solvers such as glpsol or highs. Use --lp - for stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, capacity, _, err := app.loadDataset(cmd)
			if err != nil {
				return err
			}
			m, err := planning.BuildModel(ds, capacity)
			if err != nil {
				return fmt.Errorf("building model: %w", err)
			}

			var w io.Writer = app.Stdout
			if lpPath != "-" {
				f, err := os.Create(lpPath)
				if err != nil {
					return fmt.Errorf("failed to create LP file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := solver.WriteLP(w, m); err != nil {
				return fmt.Errorf("failed to write LP model: %w", err)
			}
			if lpPath != "-" {
				fmt.Fprintf(app.Stdout, "Wrote %d variables and %d constraints to %s\n", m.NumVariables(), len(m.Constraints), lpPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&lpPath, "lp", "-", "LP output file")
	return cmd
}

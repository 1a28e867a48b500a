package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/capplan/pkg/application/services/planning"
	"github.com/vsinha/capplan/pkg/domain/model"
	"github.com/vsinha/capplan/pkg/interfaces/cli/output"
)

func newValidateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the planning data without solving",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, capacity, files, err := app.loadDataset(cmd)
			if err != nil {
				return err
			}
			if app.verbose {
				app.printHeader(files, capacity)
			}

			m, err := planning.BuildModel(ds, capacity)
			if err != nil {
				return fmt.Errorf("building model: %w", err)
			}

			if err := output.WriteDatasetReport(app.Stdout, ds); err != nil {
				return err
			}
			fmt.Fprintf(app.Stdout, "\nModel: %d binary variables, %d constraints (%d one-time, %d demand, %d budget)\n",
				m.NumVariables(),
				len(m.Constraints),
				len(m.ConstraintsOf(model.OneTimeExpansion)),
				len(m.ConstraintsOf(model.DemandSatisfaction)),
				len(m.ConstraintsOf(model.BudgetLimit)))
			fmt.Fprintln(app.Stdout, "Planning data is valid")
			return nil
		},
	}
}

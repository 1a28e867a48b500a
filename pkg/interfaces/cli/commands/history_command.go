package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vsinha/capplan/pkg/interfaces/cli/output"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded plan runs",
	}

	cmd.AddCommand(
		newHistoryListCmd(app),
		newHistoryShowCmd(app),
	)

	return cmd
}

func newHistoryListCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded plan runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.openHistory()
			if err != nil {
				return err
			}
			runs, err := repo.List(commandContext(cmd), limit)
			if err != nil {
				return err
			}
			return output.WriteRunList(app.Stdout, runs)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list (0 for all)")
	return cmd
}

func newHistoryShowCmd(app *App) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one recorded plan run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := app.openHistory()
			if err != nil {
				return err
			}
			run, err := repo.Get(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			if jsonOut {
				return output.WriteJSON(app.Stdout, run)
			}
			return output.WriteRun(app.Stdout, run)
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

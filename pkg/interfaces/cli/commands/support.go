package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/application/services/orchestration"
	"github.com/vsinha/capplan/pkg/application/services/planning"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/repositories"
	"github.com/vsinha/capplan/pkg/infrastructure/events"
	"github.com/vsinha/capplan/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/capplan/pkg/infrastructure/repositories/sqlite"
	"github.com/vsinha/capplan/pkg/infrastructure/repositories/yaml"
	"github.com/vsinha/capplan/pkg/infrastructure/solver"
	"github.com/vsinha/capplan/pkg/interfaces/cli/output"
)

// inputFiles names the tables a dataset was loaded from
type inputFiles struct {
	Scenario  string
	Business  string
	Expansion string
}

// resolveInputFiles determines the actual file paths to use
func (a *App) resolveInputFiles() (inputFiles, error) {
	var files inputFiles
	if a.Config.Data.ScenarioFile != "" {
		files.Scenario = a.Config.Data.ScenarioFile
	} else {
		files.Business = a.Config.BusinessPath()
		files.Expansion = a.Config.ExpansionPath()
	}

	for name, path := range map[string]string{
		"scenario":        files.Scenario,
		"business data":   files.Business,
		"expansion costs": files.Expansion,
	} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return files, entities.NewDataValidationError("", "%s file not found: %s", name, path)
		}
	}
	return files, nil
}

// loadDataset loads the planning data and resolves the initial capacity. A
// scenario file's initial_capacity applies unless --initial-capacity was
// given on the command line.
func (a *App) loadDataset(cmd *cobra.Command) (*entities.PlanningDataset, int, inputFiles, error) {
	files, err := a.resolveInputFiles()
	if err != nil {
		return nil, 0, files, fmt.Errorf("failed to resolve input files: %w", err)
	}

	capacity := a.Config.InitialCapacity
	if files.Scenario != "" {
		scenario, err := yaml.LoadScenario(files.Scenario)
		if err != nil {
			return nil, 0, files, fmt.Errorf("error loading scenario: %w", err)
		}
		if scenario.InitialCapacity != nil && !cmd.Flags().Changed("initial-capacity") {
			capacity = *scenario.InitialCapacity
		}
		return scenario.Dataset, capacity, files, nil
	}

	ds, err := csv.NewLoader().LoadDataset(files.Business, files.Expansion)
	if err != nil {
		return nil, 0, files, fmt.Errorf("error loading planning data: %w", err)
	}
	return ds, capacity, files, nil
}

// newPlanner wires the configured solver backend and an event store that
// logs every planning event. The store is kept on the App so a finished run's
// events can be replayed.
func (a *App) newPlanner() (*planning.Planner, error) {
	backend := solver.New(a.Config.Solver.Backend, solver.Options{
		MaxNodes:             a.Config.Solver.MaxNodes,
		FeasibilityTolerance: a.Config.Solver.Tolerance,
		RelaxationTimeout:    a.Config.Solver.RelaxationTimeout,
	}, a.Logger.Named("solver"))

	store := events.NewMemoryStore()
	if err := store.Subscribe(events.AllPlanningEvents, events.NewLogHandler(a.Logger.Named("events"))); err != nil {
		return nil, fmt.Errorf("subscribing event log: %w", err)
	}
	a.events = store

	return planning.NewPlanner(backend,
		planning.WithEventStore(store),
		planning.WithLogger(a.Logger.Named("planner")),
		planning.WithIntegralityTolerance(a.Config.Solver.IntegralityTolerance),
	), nil
}

// newOrchestrator builds the orchestrator, opening the history when record is set
func (a *App) newOrchestrator(record bool) (*orchestration.PlanningOrchestrator, error) {
	planner, err := a.newPlanner()
	if err != nil {
		return nil, err
	}
	var runs repositories.PlanRunRepository
	if record {
		repo, err := a.openHistory()
		if err != nil {
			return nil, err
		}
		runs = repo
	}
	return orchestration.NewPlanningOrchestrator(planner, runs, a.Logger), nil
}

// printEventLog replays a finished run's events from the App's store
func (a *App) printEventLog(runID string) error {
	if a.events == nil {
		return nil
	}
	stream, err := a.events.Stream(runID, 1)
	if err != nil {
		return fmt.Errorf("reading run events: %w", err)
	}
	return output.WriteEventLog(a.Stdout, stream)
}

func (a *App) openHistory() (*sqlite.PlanRunRepository, error) {
	path, err := a.Config.HistoryPath()
	if err != nil {
		return nil, err
	}
	if a.db == nil {
		db, err := sqlite.OpenDB(path)
		if err != nil {
			return nil, fmt.Errorf("opening plan history: %w", err)
		}
		a.db = db
		a.Logger.Debug("plan history opened", zap.String("path", path))
	}
	return sqlite.NewPlanRunRepository(a.db), nil
}

// printHeader prints the command header information
func (a *App) printHeader(files inputFiles, capacity int) {
	w := a.Stdout
	fmt.Fprintf(w, "capplan\n")
	fmt.Fprintf(w, "Input files:\n")
	if files.Scenario != "" {
		fmt.Fprintf(w, "  Scenario: %s\n", files.Scenario)
	} else {
		fmt.Fprintf(w, "  Business data: %s\n", files.Business)
		fmt.Fprintf(w, "  Expansion costs: %s\n", files.Expansion)
	}
	fmt.Fprintf(w, "Initial capacity: %d\n", capacity)
	fmt.Fprintf(w, "Solver: %s\n\n", a.Config.Solver.Backend)
}

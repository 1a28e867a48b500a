package commands

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/config"
	"github.com/vsinha/capplan/pkg/infrastructure/events"
	"github.com/vsinha/capplan/pkg/infrastructure/logging"
)

// App holds state shared by every command. Config and Logger are populated
// before any subcommand runs.
type App struct {
	Viper  *viper.Viper
	Stdout io.Writer
	Stderr io.Writer

	Config *config.Config
	Logger *zap.Logger

	configFile string
	verbose    bool
	db         *sql.DB
	events     events.Store
}

// NewApp creates an App writing to the process streams
func NewApp() *App {
	return &App{
		Viper:  config.NewViper(),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Close releases resources opened by commands
func (a *App) Close() error {
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// NewRootCmd creates the top-level "capplan" command and registers all
// subcommands against the provided App
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "capplan",
		Short:         "Multi-year capacity expansion planner",
		Long:          "capplan chooses which plant expansions to commit to, and when, so that yearly demand is met within budget at minimum total cost.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.configFile, "config", "", "Path to a YAML config file")
	flags.BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	flags.String("data-dir", "data", "Directory containing the input tables")
	flags.String("business-file", config.DefaultBusinessFile, "Business planning table (CSV)")
	flags.String("expansion-file", config.DefaultExpansionFile, "Expansion cost table (CSV)")
	flags.String("scenario", "", "YAML scenario file used instead of the CSV tables")
	flags.Int("initial-capacity", config.DefaultInitialCapacity, "Installed capacity before the first planning year")
	flags.String("solver", "branch-and-bound", "MILP solver backend")
	flags.Int("max-nodes", 0, "Branch-and-bound node limit (0 for no limit)")
	flags.String("history-db", "", "Plan history database (default ~/.capplan/history.db)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "auto", "Log format: auto, console, json")

	bindFlags(app.Viper, flags, map[string]string{
		config.KeyDataDir:         "data-dir",
		config.KeyBusinessFile:    "business-file",
		config.KeyExpansionFile:   "expansion-file",
		config.KeyScenarioFile:    "scenario",
		config.KeyInitialCapacity: "initial-capacity",
		config.KeySolverBackend:   "solver",
		config.KeySolverMaxNodes:  "max-nodes",
		config.KeyHistoryDBPath:   "history-db",
		config.KeyLogLevel:        "log-level",
		config.KeyLogFormat:       "log-format",
	})

	root.AddCommand(
		newSolveCmd(app),
		newValidateCmd(app),
		newModelCmd(app),
		newSweepCmd(app),
		newHistoryCmd(app),
	)

	return root
}

// bindFlags maps config keys onto flags so that a flag set on the command line
// overrides the environment and the config file
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) {
	for key, name := range bindings {
		_ = v.BindPFlag(key, flags.Lookup(name))
	}
}

func (a *App) setup() error {
	cfg, err := config.Load(a.Viper, a.configFile)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, a.Stderr)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.Config = cfg
	a.Logger = logger
	return nil
}

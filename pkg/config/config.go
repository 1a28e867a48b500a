// Package config resolves capplan settings from defaults, an optional config
// file, CAPPLAN_* environment variables (a .env file is honoured) and
// command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. CAPPLAN_INITIAL_CAPACITY
const EnvPrefix = "CAPPLAN"

// Configuration keys
const (
	KeyInitialCapacity      = "initial_capacity"
	KeyDataDir              = "data.dir"
	KeyBusinessFile         = "data.business_file"
	KeyExpansionFile        = "data.expansion_file"
	KeyScenarioFile         = "data.scenario_file"
	KeyOutputDir            = "output.dir"
	KeyOutputFormat         = "output.format"
	KeySolverBackend        = "solver.backend"
	KeySolverMaxNodes       = "solver.max_nodes"
	KeySolverTolerance      = "solver.tolerance"
	KeySolverIntegralityTol = "solver.integrality_tolerance"
	KeySolverRelaxTimeout   = "solver.relaxation_timeout"
	KeyHistoryDBPath        = "history.db_path"
	KeyLogLevel             = "log.level"
	KeyLogFormat            = "log.format"
)

// Defaults
const (
	DefaultInitialCapacity      = 40000
	DefaultBusinessFile         = "business_planning.csv"
	DefaultExpansionFile        = "expansion_costs.csv"
	DefaultIntegralityTolerance = 1e-5
	DefaultFeasibilityTolerance = 1e-9
	DefaultRelaxationTimeout    = 2 * time.Second
)

// Config holds every resolved setting
type Config struct {
	InitialCapacity int           `mapstructure:"initial_capacity"`
	Data            DataConfig    `mapstructure:"data"`
	Output          OutputConfig  `mapstructure:"output"`
	Solver          SolverConfig  `mapstructure:"solver"`
	History         HistoryConfig `mapstructure:"history"`
	Log             LogConfig     `mapstructure:"log"`
}

// DataConfig locates the input tables
type DataConfig struct {
	Dir           string `mapstructure:"dir"`
	BusinessFile  string `mapstructure:"business_file"`
	ExpansionFile string `mapstructure:"expansion_file"`
	ScenarioFile  string `mapstructure:"scenario_file"`
}

// OutputConfig controls where and how results are written
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Format string `mapstructure:"format"`
}

// SolverConfig tunes the MILP backend and extraction
type SolverConfig struct {
	Backend              string        `mapstructure:"backend"`
	MaxNodes             int           `mapstructure:"max_nodes"`
	Tolerance            float64       `mapstructure:"tolerance"`
	IntegralityTolerance float64       `mapstructure:"integrality_tolerance"`
	RelaxationTimeout    time.Duration `mapstructure:"relaxation_timeout"`
}

// HistoryConfig locates the plan history database
type HistoryConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var (
	validFormats    = []string{"text", "json", "csv"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"auto", "console", "json"}
)

// NewViper returns a viper instance with defaults and environment binding.
// Callers bind flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyInitialCapacity, DefaultInitialCapacity)
	v.SetDefault(KeyDataDir, "data")
	v.SetDefault(KeyBusinessFile, DefaultBusinessFile)
	v.SetDefault(KeyExpansionFile, DefaultExpansionFile)
	v.SetDefault(KeyScenarioFile, "")
	v.SetDefault(KeyOutputDir, "results")
	v.SetDefault(KeyOutputFormat, "text")
	v.SetDefault(KeySolverBackend, "branch-and-bound")
	v.SetDefault(KeySolverMaxNodes, 0)
	v.SetDefault(KeySolverTolerance, DefaultFeasibilityTolerance)
	v.SetDefault(KeySolverIntegralityTol, DefaultIntegralityTolerance)
	v.SetDefault(KeySolverRelaxTimeout, DefaultRelaxationTimeout)
	v.SetDefault(KeyHistoryDBPath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "auto")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load resolves the configuration. A .env file in the working directory is
// loaded first when present; configFile may be empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value ranges and enumerations
func (c *Config) Validate() error {
	if c.InitialCapacity < 0 {
		return fmt.Errorf("invalid config: %s must be non negative, got %d", KeyInitialCapacity, c.InitialCapacity)
	}
	if !oneOf(c.Output.Format, validFormats) {
		return fmt.Errorf("invalid config: %s must be one of %v, got %q", KeyOutputFormat, validFormats, c.Output.Format)
	}
	if c.Solver.MaxNodes < 0 {
		return fmt.Errorf("invalid config: %s must be non negative, got %d", KeySolverMaxNodes, c.Solver.MaxNodes)
	}
	if c.Solver.Tolerance <= 0 {
		return fmt.Errorf("invalid config: %s must be positive, got %g", KeySolverTolerance, c.Solver.Tolerance)
	}
	if c.Solver.IntegralityTolerance <= 0 || c.Solver.IntegralityTolerance >= 0.5 {
		return fmt.Errorf("invalid config: %s must be in (0, 0.5), got %g", KeySolverIntegralityTol, c.Solver.IntegralityTolerance)
	}
	if c.Solver.RelaxationTimeout <= 0 {
		return fmt.Errorf("invalid config: %s must be positive, got %v", KeySolverRelaxTimeout, c.Solver.RelaxationTimeout)
	}
	if !oneOf(c.Log.Level, validLogLevels) {
		return fmt.Errorf("invalid config: %s must be one of %v, got %q", KeyLogLevel, validLogLevels, c.Log.Level)
	}
	if !oneOf(c.Log.Format, validLogFormats) {
		return fmt.Errorf("invalid config: %s must be one of %v, got %q", KeyLogFormat, validLogFormats, c.Log.Format)
	}
	return nil
}

// BusinessPath resolves the business table against the data directory
func (c *Config) BusinessPath() string {
	return c.resolve(c.Data.BusinessFile)
}

// ExpansionPath resolves the expansion table against the data directory
func (c *Config) ExpansionPath() string {
	return c.resolve(c.Data.ExpansionFile)
}

// HistoryPath returns the history database path, defaulting to
// ~/.capplan/history.db
func (c *Config) HistoryPath() (string, error) {
	if c.History.DBPath != "" {
		return c.History.DBPath, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".capplan", "history.db"), nil
}

func (c *Config) resolve(file string) string {
	if file == "" || filepath.IsAbs(file) || c.Data.Dir == "" {
		return file
	}
	return filepath.Join(c.Data.Dir, file)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/capplan/pkg/config"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/interfaces/cli/output"
)

// runCLI executes the root command against the LineA fixtures in testdata
// and returns what was printed to stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{Viper: config.NewViper(), Stdout: &stdout, Stderr: &stderr}
	defer app.Close()

	root := NewRootCmd(app)
	root.SetArgs(append([]string{"--data-dir", "testdata", "--log-format", "json"}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestSolveCommand_Text(t *testing.T) {
	out, err := runCLI(t, "solve", "--initial-capacity", "400", "--output-dir", "")
	require.NoError(t, err)

	assert.Contains(t, out, "Capacity Expansion Plan 2020-2022")
	assert.Contains(t, out, "Expansions Committed: 1")
	assert.Regexp(t, `(?m)^2020\s+LineA\s`, out)
	assert.Contains(t, out, "Total cost: 2,020")
	assert.NotContains(t, out, "Recorded run")
}

func TestSolveCommand_VerbosePrintsRunEvents(t *testing.T) {
	out, err := runCLI(t, "--verbose", "solve", "--initial-capacity", "400", "--output-dir", "")
	require.NoError(t, err)

	assert.Contains(t, out, "Run Events")
	assert.Regexp(t, `(?m)^\s+1\s+model\.built\s.*3 variables`, out)
	assert.Regexp(t, `(?m)^\s+2\s+solve\.completed\s.*optimal after`, out)
	assert.Regexp(t, `(?m)^\s+3\s+plan\.extracted\s.*1 expansions selected`, out)

	quiet, err := runCLI(t, "solve", "--initial-capacity", "400", "--output-dir", "")
	require.NoError(t, err)
	assert.NotContains(t, quiet, "Run Events")
}

func TestSolveCommand_CSVWithHistory(t *testing.T) {
	dir := t.TempDir()
	resultsDir := filepath.Join(dir, "results")
	historyDB := filepath.Join(dir, "history.db")

	_, err := runCLI(t, "solve",
		"--initial-capacity", "400",
		"--format", "csv",
		"--output-dir", resultsDir,
		"--chart",
		"--record",
		"--history-db", historyDB)
	require.NoError(t, err)

	for _, name := range []string{output.ExpansionPlanFile, output.CostBreakdownFile, output.SummaryFile, output.CapacityChartFile} {
		assert.FileExists(t, filepath.Join(resultsDir, name))
	}
	summary, err := os.ReadFile(filepath.Join(resultsDir, output.SummaryFile))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Total budget savings: 27,980")

	list, err := runCLI(t, "history", "list", "--history-db", historyDB)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(list), "\n")
	require.Len(t, lines, 3)
	runID := strings.Fields(lines[2])[0]

	shown, err := runCLI(t, "history", "show", runID, "--json", "--history-db", historyDB)
	require.NoError(t, err)
	var run entities.PlanRun
	require.NoError(t, json.Unmarshal([]byte(shown), &run))
	assert.Equal(t, runID, run.ID)
	assert.Equal(t, 400, run.InitialCapacity)
	assert.Equal(t, []entities.ExpansionName{"LineA"}, run.Plans[0].SelectedExpansions)

	_, err = runCLI(t, "history", "show", "no-such-run", "--history-db", historyDB)
	assert.ErrorContains(t, err, "plan run not found")
}

func TestSolveCommand_JSON(t *testing.T) {
	out, err := runCLI(t, "solve", "--initial-capacity", "1000", "--format", "json", "--output-dir", "")
	require.NoError(t, err)

	var result struct {
		InitialCapacity int    `json:"initial_capacity"`
		Termination     string `json:"termination"`
		Commitments     []any  `json:"commitments"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 1000, result.InitialCapacity)
	assert.Equal(t, "optimal", result.Termination)
	assert.Empty(t, result.Commitments)
}

func TestSolveCommand_Scenario(t *testing.T) {
	scenario := filepath.Join("testdata", "linea.yaml")

	out, err := runCLI(t, "solve", "--scenario", scenario, "--format", "json", "--output-dir", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"initial_capacity": 400`)
	assert.Contains(t, out, `"commit_year": 2020`)

	out, err = runCLI(t, "solve", "--scenario", scenario, "--initial-capacity", "900", "--format", "json", "--output-dir", "")
	require.NoError(t, err)
	assert.Contains(t, out, `"initial_capacity": 900`, "the flag overrides the scenario")
	assert.Contains(t, out, `"commitments": null`)
}

func TestSolveCommand_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		args     []string
		sentinel error
	}{
		{"missing data file", []string{"solve", "--business-file", "absent.csv"}, entities.ErrDataValidation},
		{"infeasible", []string{"solve", "--initial-capacity", "0", "--output-dir", ""}, entities.ErrSolverNonOptimal},
		{"unknown solver", []string{"solve", "--solver", "gurobi", "--initial-capacity", "400", "--output-dir", ""}, entities.ErrSolverUnavailable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runCLI(t, tc.args...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.sentinel)
		})
	}

	_, err := runCLI(t, "solve", "--format", "xml")
	assert.ErrorContains(t, err, "output.format must be one of")
}

func TestValidateCommand(t *testing.T) {
	out, err := runCLI(t, "validate", "--initial-capacity", "400")
	require.NoError(t, err)

	assert.Contains(t, out, "Years: 3 (2020-2022)")
	assert.Contains(t, out, "Expansion Options: 1")
	assert.Contains(t, out, "Model: 3 binary variables, 7 constraints (1 one-time, 3 demand, 3 budget)")
	assert.Contains(t, out, "Planning data is valid")
}

func TestModelCommand(t *testing.T) {
	out, err := runCLI(t, "model", "--initial-capacity", "400")
	require.NoError(t, err)
	assert.Contains(t, out, "Subject To")
	assert.Contains(t, out, "DemandSatisfaction_2021: 500 Select_2020_LineA >= 500")

	lpPath := filepath.Join(t.TempDir(), "capplan.lp")
	out, err = runCLI(t, "model", "--initial-capacity", "400", "--lp", lpPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 variables and 7 constraints")

	lp, err := os.ReadFile(lpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(lp), "End\n"))
}

func TestSweepCommand(t *testing.T) {
	out, err := runCLI(t, "sweep", "--capacities", "400,0,1000", "--parallel", "2", "--json")
	require.NoError(t, err)

	var rows []sweepRowJSON
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	require.Len(t, rows, 3)

	assert.Equal(t, 400, rows[0].InitialCapacity)
	require.NotNil(t, rows[0].Result)
	assert.Equal(t, 1, rows[0].Result.SelectedCount())

	assert.Nil(t, rows[1].Result)
	assert.Contains(t, rows[1].Error, "infeasible")

	assert.Equal(t, 0, rows[2].Result.SelectedCount())

	table, err := runCLI(t, "sweep", "--capacities", "400")
	require.NoError(t, err)
	assert.Contains(t, table, "LineA@2020")

	_, err = runCLI(t, "sweep")
	assert.ErrorContains(t, err, "--capacities is required")

	_, err = runCLI(t, "sweep", "--capacities=-5")
	assert.ErrorContains(t, err, "non negative")
}

func TestHistoryList_Empty(t *testing.T) {
	out, err := runCLI(t, "history", "list", "--history-db", filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	assert.Equal(t, "No recorded plan runs\n", out)
}

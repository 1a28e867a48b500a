package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/infrastructure/events"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleResult() *dto.PlanResult {
	return &dto.PlanResult{
		RunID:           "3f1c2a9e-run",
		InitialCapacity: 400,
		FirstYear:       2020,
		LastYear:        2021,
		Termination:     "optimal",
		Objective:       1680.5,
		Nodes:           3,
		SolveTime:       2 * time.Millisecond,
		Plans: []entities.PlanRecord{
			{
				Year:                2020,
				SelectedExpansions:  []entities.ExpansionName{"LineA", "Retrofit"},
				AnnualBudget:        dec("10000"),
				AnnualTotalCost:     dec("1340.5"),
				AnnualBudgetSavings: dec("8659.5"),
				Demand:              400,
				AvailableCapacity:   400,
			},
			{
				Year:                2021,
				AnnualBudget:        dec("10000"),
				AnnualTotalCost:     dec("340"),
				AnnualBudgetSavings: dec("9660"),
				Demand:              900,
				AvailableCapacity:   1200,
			},
		},
		Costs: []entities.CostBreakdown{
			{
				Year:                        2020,
				ExpansionSpend:              dec("1000.5"),
				OperationalCost:             dec("100"),
				LaborCost:                   dec("50"),
				MachineryCost:               dec("20"),
				RawMaterialCost:             dec("30"),
				ComplianceCost:              dec("5"),
				EnvironmentalComplianceCost: dec("5"),
				LaborLawImpactCost:          dec("5"),
				TechnologyInvestmentCost:    dec("125"),
				TotalCost:                   dec("1340.5"),
			},
			{Year: 2021, TotalCost: dec("340")},
		},
		Summary: entities.Summary{
			TotalRevenue: dec("10000"),
			TotalBudget:  dec("20000"),
			TotalCost:    dec("1680.5"),
			TotalSavings: dec("18319.5"),
		},
		Commitments: []dto.Commitment{
			{Expansion: "LineA", CommitYear: 2020, AvailableYear: 2021, AddedCapacity: 500},
			{Expansion: "Retrofit", CommitYear: 2020, AvailableYear: 2021, AddedCapacity: 300},
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestSummaryText(t *testing.T) {
	text := SummaryText(entities.Summary{
		TotalRevenue: dec("1234567.49"),
		TotalBudget:  dec("2000000"),
		TotalCost:    dec("1233.5"),
		TotalSavings: dec("-2.5"),
	})

	assert.Equal(t, strings.Join([]string{
		SummaryTitle,
		"Total revenue: 1,234,567",
		"Total budget: 2,000,000",
		"Total cost: 1,234",
		"Total budget savings: -3",
	}, "\n"), text)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")

	files, err := WriteFiles(dir, sampleResult())
	require.NoError(t, err)
	require.Len(t, files, 3)

	plans := readCSV(t, filepath.Join(dir, ExpansionPlanFile))
	assert.Equal(t, PlanColumns, plans[0])
	assert.Equal(t, []string{"2020", "LineA, Retrofit", "10000", "1340.5", "8659.5"}, plans[1])
	assert.Equal(t, []string{"2021", entities.NoExpansionsSelected, "10000", "340", "9660"}, plans[2])

	costs := readCSV(t, filepath.Join(dir, CostBreakdownFile))
	assert.Equal(t, CostColumns, costs[0])
	assert.Equal(t, []string{"2020", "1000.5", "100", "50", "20", "30", "5", "5", "5", "125", "1340.5"}, costs[1])
	require.Len(t, costs[2], len(CostColumns))
	assert.Equal(t, "340", costs[2][len(CostColumns)-1])

	summary, err := os.ReadFile(filepath.Join(dir, SummaryFile))
	require.NoError(t, err)
	assert.Equal(t, SummaryText(sampleResult().Summary), string(summary))
	assert.Contains(t, string(summary), "Total cost: 1,681")
}

func TestGenerate_Formats(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Generate(sampleResult(), Config{Format: "text", Stdout: &out}))

		text := out.String()
		assert.Contains(t, text, "Capacity Expansion Plan 2020-2021")
		assert.Contains(t, text, "LineA, Retrofit")
		assert.Contains(t, text, "Expansions Committed: 2")
		assert.Contains(t, text, "Total budget savings: 18,320")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Generate(sampleResult(), Config{Format: "json", Stdout: &out}))

		var decoded dto.PlanResult
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		assert.Equal(t, "3f1c2a9e-run", decoded.RunID)
		assert.True(t, decoded.Summary.TotalCost.Equal(dec("1680.5")))
		assert.Len(t, decoded.Commitments, 2)
	})

	t.Run("csv needs a directory", func(t *testing.T) {
		err := Generate(sampleResult(), Config{Format: "csv", Stdout: &bytes.Buffer{}})
		assert.ErrorContains(t, err, "output directory required")
	})

	t.Run("csv with chart", func(t *testing.T) {
		dir := t.TempDir()
		var out bytes.Buffer
		require.NoError(t, Generate(sampleResult(), Config{Format: "csv", OutputDir: dir, Chart: true, Verbose: true, Stdout: &out}))

		for _, name := range []string{ExpansionPlanFile, CostBreakdownFile, SummaryFile, CapacityChartFile} {
			assert.FileExists(t, filepath.Join(dir, name))
			assert.Contains(t, out.String(), name)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		assert.ErrorContains(t, Generate(sampleResult(), Config{Format: "xml"}), "unsupported output format")
	})

	t.Run("nil result", func(t *testing.T) {
		assert.Error(t, Generate(nil, Config{Format: "text"}))
	})
}

func TestCapacityChart(t *testing.T) {
	result := sampleResult()
	result.Commitments[0].Expansion = "Line <A>"

	svg := NewCapacityChart(result).GenerateSVG(result)

	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "initial capacity 400")
	assert.Contains(t, svg, "Line &lt;A&gt; built 2020-2020")
	assert.Contains(t, svg, "+500 units from 2021")
	assert.Contains(t, svg, "2021: capacity 1,200, demand 900")
	assert.Contains(t, svg, `class="demand-line"`)
	assert.NotContains(t, svg, "Line <A>")

	empty := &dto.PlanResult{}
	assert.Contains(t, NewCapacityChart(empty).GenerateSVG(empty), "No planning years to display")
}

func TestCapacityChart_ExtendsToLastOnlineYear(t *testing.T) {
	result := sampleResult()
	result.Commitments = append(result.Commitments, dto.Commitment{Expansion: "LineB", CommitYear: 2021, AvailableYear: 2023, AddedCapacity: 300})

	chart := NewCapacityChart(result)
	assert.Equal(t, 2023, chart.LastYear)
	assert.Equal(t, chart.MarginTop+3*chart.RowHeight+40+chart.PanelHeight+chart.MarginBottom, chart.Height(3))
}

func TestReports(t *testing.T) {
	result := sampleResult()

	t.Run("sweep table", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteSweepTable(&out, []dto.SweepRow{
			{InitialCapacity: 400, Result: result},
			{InitialCapacity: 0, Err: errors.New("solver did not reach an optimal solution: termination infeasible")},
		}))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[2], "LineA@2020, Retrofit@2020")
		assert.Contains(t, lines[2], "1,681")
		assert.Contains(t, lines[3], "failed")
		assert.Contains(t, lines[3], "termination infeasible")
	})

	t.Run("run list", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteRunList(&out, nil))
		assert.Equal(t, "No recorded plan runs\n", out.String())

		out.Reset()
		run := result.ToPlanRun(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
		require.NoError(t, WriteRunList(&out, []*entities.PlanRun{run}))
		assert.Contains(t, out.String(), "3f1c2a9e-run")
		assert.Contains(t, out.String(), "2020-2021")
	})

	t.Run("run detail", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, WriteRun(&out, result.ToPlanRun(time.Now().Add(-time.Hour))))
		assert.Contains(t, out.String(), "Run: 3f1c2a9e-run")
		assert.Contains(t, out.String(), "1 hour ago")
		assert.Contains(t, out.String(), "Total revenue: 10,000")
	})
}

func TestWriteEventLog(t *testing.T) {
	store := events.NewMemoryStore()
	require.NoError(t, store.Append(events.NewModelBuiltEvent("run", events.ModelBuilt{InitialCapacity: 40000, Variables: 3, Constraints: 7})))
	require.NoError(t, store.Append(events.NewSolveCompletedEvent("run", events.SolveCompleted{Termination: "optimal", Nodes: 1200, Duration: 3 * time.Millisecond})))
	require.NoError(t, store.Append(events.NewSolveFailedEvent("run", events.SolveFailed{Reason: "extraction failed"})))
	require.NoError(t, store.Append(events.NewPlanExtractedEvent("run", events.PlanExtracted{Years: 2, Selected: 1, Summary: entities.Summary{TotalCost: dec("2020.4")}})))
	stream, err := store.Stream("run", 1)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteEventLog(&out, stream))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	testCases := []struct {
		line   string
		prefix string
		detail string
	}{
		{lines[2], "  1  model.built", "initial capacity 40,000, 3 variables, 7 constraints"},
		{lines[3], "  2  solve.completed", "optimal after 1,200 nodes in 3ms"},
		{lines[4], "  3  solve.failed", "extraction failed"},
		{lines[5], "  4  plan.extracted", "2 years, 1 expansions selected, total cost 2,020"},
	}
	for _, tc := range testCases {
		assert.True(t, strings.HasPrefix(tc.line, tc.prefix), tc.line)
		assert.True(t, strings.HasSuffix(tc.line, tc.detail), tc.line)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

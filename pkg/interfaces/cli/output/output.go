package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/domain/entities"
)

// Result file names
const (
	ExpansionPlanFile = "expansion_plan.csv"
	CostBreakdownFile = "annual_cost_breakdown.csv"
	SummaryFile       = "summary_metrics.txt"
	SummaryTitle      = "OptiManu capacity planning summary"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Chart     bool // also write the SVG capacity timeline
	Stdout    io.Writer
}

func (c Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Generate renders result in the configured format. Text and JSON print to
// stdout; every format writes the result files when OutputDir is set, and
// csv requires it.
func Generate(result *dto.PlanResult, config Config) error {
	if result == nil {
		return fmt.Errorf("no plan result to output")
	}
	switch config.Format {
	case "text":
		if err := WriteText(config.stdout(), result); err != nil {
			return err
		}
	case "json":
		if err := WriteJSON(config.stdout(), result); err != nil {
			return err
		}
	case "csv":
		if config.OutputDir == "" {
			return fmt.Errorf("output directory required for CSV format")
		}
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}

	if config.OutputDir == "" {
		return nil
	}
	files, err := WriteFiles(config.OutputDir, result)
	if err != nil {
		return err
	}
	if config.Chart {
		chartPath, err := WriteChart(config.OutputDir, result)
		if err != nil {
			return err
		}
		files = append(files, chartPath)
	}
	if config.Verbose {
		w := config.stdout()
		fmt.Fprintf(w, "Results saved to %s:\n", config.OutputDir)
		for _, f := range files {
			fmt.Fprintf(w, "  %s\n", f)
		}
	}
	return nil
}

// WriteFiles writes the expansion plan, cost breakdown and summary into dir
// and returns the written paths
func WriteFiles(dir string, result *dto.PlanResult) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	planPath := filepath.Join(dir, ExpansionPlanFile)
	if err := writeFile(planPath, func(w io.Writer) error { return WritePlanCSV(w, result.Plans) }); err != nil {
		return nil, fmt.Errorf("failed to write expansion plan CSV: %w", err)
	}

	costPath := filepath.Join(dir, CostBreakdownFile)
	if err := writeFile(costPath, func(w io.Writer) error { return WriteCostCSV(w, result.Costs) }); err != nil {
		return nil, fmt.Errorf("failed to write cost breakdown CSV: %w", err)
	}

	summaryPath := filepath.Join(dir, SummaryFile)
	if err := os.WriteFile(summaryPath, []byte(SummaryText(result.Summary)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary: %w", err)
	}

	return []string{planPath, costPath, summaryPath}, nil
}

// WriteChart writes the capacity timeline SVG into dir
func WriteChart(dir string, result *dto.PlanResult) (string, error) {
	path := filepath.Join(dir, CapacityChartFile)
	svg := NewCapacityChart(result).GenerateSVG(result)
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return "", fmt.Errorf("failed to write capacity chart: %w", err)
	}
	return path, nil
}

// SummaryText renders the four totals as thousands-separated whole numbers
func SummaryText(s entities.Summary) string {
	return strings.Join([]string{
		SummaryTitle,
		"Total revenue: " + formatWhole(s.TotalRevenue),
		"Total budget: " + formatWhole(s.TotalBudget),
		"Total cost: " + formatWhole(s.TotalCost),
		"Total budget savings: " + formatWhole(s.TotalSavings),
	}, "\n")
}

// WriteText prints a human-readable plan
func WriteText(w io.Writer, result *dto.PlanResult) error {
	fmt.Fprintf(w, "Capacity Expansion Plan %d-%d\n", result.FirstYear, result.LastYear)
	fmt.Fprintf(w, "================================\n\n")
	fmt.Fprintf(w, "Run: %s\n", result.RunID)
	fmt.Fprintf(w, "Initial Capacity: %s\n", humanize.Comma(int64(result.InitialCapacity)))
	fmt.Fprintf(w, "Solver: %s after %d nodes in %v\n", result.Termination, result.Nodes, result.SolveTime)
	fmt.Fprintf(w, "Expansions Committed: %d\n\n", result.SelectedCount())

	fmt.Fprintf(w, "%-6s %-30s %15s %15s %15s %12s %12s\n",
		"Year", "Selected Expansions", "Budget", "Total Cost", "Savings", "Demand", "Capacity")
	fmt.Fprintf(w, "%-6s %-30s %15s %15s %15s %12s %12s\n",
		"------", "------------------------------", "---------------", "---------------", "---------------", "------------", "------------")
	for _, p := range result.Plans {
		fmt.Fprintf(w, "%-6d %-30s %15s %15s %15s %12s %12s\n",
			p.Year,
			truncate(p.SelectedLabel(), 30),
			formatWhole(p.AnnualBudget),
			formatWhole(p.AnnualTotalCost),
			formatWhole(p.AnnualBudgetSavings),
			humanize.Commaf(p.Demand),
			humanize.Commaf(p.AvailableCapacity))
	}
	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, SummaryText(result.Summary))
	return err
}

// WriteJSON prints the full result as indented JSON
func WriteJSON(w io.Writer, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonData))
	return err
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// formatWhole rounds half away from zero and inserts thousands separators
func formatWhole(d decimal.Decimal) string {
	return humanize.Comma(d.Round(0).IntPart())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

package output

import (
	"fmt"
	"io"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/infrastructure/events"
)

// WriteDatasetReport prints the shape of a loaded dataset
func WriteDatasetReport(w io.Writer, ds *entities.PlanningDataset) error {
	fmt.Fprintf(w, "Planning Data\n")
	fmt.Fprintf(w, "=============\n\n")
	fmt.Fprintf(w, "Years: %d (%d-%d)\n", ds.NumYears(), ds.FirstYear(), ds.LastYear())
	fmt.Fprintf(w, "Expansion Options: %d\n\n", ds.NumExpansions())

	fmt.Fprintf(w, "%-6s %12s %18s %18s\n", "Year", "Demand", "Fixed Cost", "Budget")
	fmt.Fprintf(w, "%-6s %12s %18s %18s\n", "------", "------------", "------------------", "------------------")
	for _, y := range ds.YearParameters() {
		fmt.Fprintf(w, "%-6d %12s %18s %18s\n",
			y.Year,
			humanize.Commaf(y.Demand),
			humanize.Commaf(math.Round(y.FixedCost())),
			humanize.Commaf(math.Round(y.AnnualBudget)))
	}

	if ds.NumExpansions() > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%-24s %18s %12s %14s\n", "Expansion", "Cost", "Build Years", "Added Capacity")
		fmt.Fprintf(w, "%-24s %18s %12s %14s\n", "------------------------", "------------------", "------------", "--------------")
		for _, e := range ds.Expansions() {
			fmt.Fprintf(w, "%-24s %18s %12d %14s\n",
				truncate(string(e.Name), 24),
				humanize.Commaf(math.Round(e.Cost)),
				e.BuildTimeYears,
				humanize.Commaf(e.AddedCapacity))
		}
	}
	return nil
}

// WriteSweepTable prints one line per sweep scenario
func WriteSweepTable(w io.Writer, rows []dto.SweepRow) error {
	fmt.Fprintf(w, "%-16s %-12s %18s %18s %10s  %s\n", "Initial Capacity", "Status", "Total Cost", "Savings", "Committed", "Detail")
	fmt.Fprintf(w, "%-16s %-12s %18s %18s %10s  %s\n", "----------------", "------------", "------------------", "------------------", "----------", "------")
	for _, row := range rows {
		capacity := humanize.Comma(int64(row.InitialCapacity))
		if row.Err != nil {
			fmt.Fprintf(w, "%-16s %-12s %18s %18s %10s  %v\n", capacity, "failed", "-", "-", "-", row.Err)
			continue
		}
		r := row.Result
		fmt.Fprintf(w, "%-16s %-12s %18s %18s %10d  %s\n",
			capacity,
			r.Termination,
			formatWhole(r.Summary.TotalCost),
			formatWhole(r.Summary.TotalSavings),
			r.SelectedCount(),
			commitmentLabel(r.Commitments))
	}
	return nil
}

// WriteRunList prints stored plan runs, newest first
func WriteRunList(w io.Writer, runs []*entities.PlanRun) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No recorded plan runs")
		return err
	}
	fmt.Fprintf(w, "%-36s %-20s %-11s %16s %18s\n", "Run", "Created", "Years", "Initial Capacity", "Total Cost")
	fmt.Fprintf(w, "%-36s %-20s %-11s %16s %18s\n",
		"------------------------------------", "--------------------", "-----------", "----------------", "------------------")
	for _, run := range runs {
		fmt.Fprintf(w, "%-36s %-20s %-11s %16s %18s\n",
			run.ID,
			run.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d-%d", run.FirstYear, run.LastYear),
			humanize.Comma(int64(run.InitialCapacity)),
			formatWhole(run.Summary.TotalCost))
	}
	return nil
}

// WriteRun prints one stored plan run in full
func WriteRun(w io.Writer, run *entities.PlanRun) error {
	fmt.Fprintf(w, "Run: %s\n", run.ID)
	fmt.Fprintf(w, "Created: %s (%s)\n", run.CreatedAt.Local().Format("2006-01-02 15:04:05"), humanize.Time(run.CreatedAt))
	fmt.Fprintf(w, "Initial Capacity: %s\n\n", humanize.Comma(int64(run.InitialCapacity)))

	fmt.Fprintf(w, "%-6s %-30s %15s %15s %15s\n", "Year", "Selected Expansions", "Budget", "Total Cost", "Savings")
	fmt.Fprintf(w, "%-6s %-30s %15s %15s %15s\n",
		"------", "------------------------------", "---------------", "---------------", "---------------")
	for _, p := range run.Plans {
		fmt.Fprintf(w, "%-6d %-30s %15s %15s %15s\n",
			p.Year,
			truncate(p.SelectedLabel(), 30),
			formatWhole(p.AnnualBudget),
			formatWhole(p.AnnualTotalCost),
			formatWhole(p.AnnualBudgetSavings))
	}
	fmt.Fprintln(w)
	_, err := fmt.Fprintln(w, SummaryText(run.Summary))
	return err
}

// WriteEventLog prints a run's event stream in sequence order
func WriteEventLog(w io.Writer, stream []events.Event) error {
	fmt.Fprintf(w, "Run Events\n")
	fmt.Fprintf(w, "==========\n")
	for _, e := range stream {
		fmt.Fprintf(w, "%3d  %-16s %s  %s\n", e.Sequence(), e.Type(), e.At().Local().Format("15:04:05.000"), eventDetail(e.Payload()))
	}
	_, err := fmt.Fprintln(w)
	return err
}

func eventDetail(payload any) string {
	switch p := payload.(type) {
	case events.ModelBuilt:
		return fmt.Sprintf("initial capacity %s, %d variables, %d constraints",
			humanize.Comma(int64(p.InitialCapacity)), p.Variables, p.Constraints)
	case events.SolveCompleted:
		return fmt.Sprintf("%s after %s nodes in %v", p.Termination, humanize.Comma(int64(p.Nodes)), p.Duration)
	case events.SolveFailed:
		if p.Termination == "" {
			return p.Reason
		}
		return fmt.Sprintf("%s: %s", p.Termination, p.Reason)
	case events.PlanExtracted:
		return fmt.Sprintf("%d years, %d expansions selected, total cost %s", p.Years, p.Selected, formatWhole(p.Summary.TotalCost))
	default:
		return fmt.Sprint(p)
	}
}

func commitmentLabel(commitments []dto.Commitment) string {
	if len(commitments) == 0 {
		return entities.NoExpansionsSelected
	}
	label := ""
	for i, c := range commitments {
		if i > 0 {
			label += ", "
		}
		label += fmt.Sprintf("%s@%d", c.Expansion, c.CommitYear)
	}
	return label
}

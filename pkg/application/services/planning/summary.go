package planning

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

// Summarize reduces per-year plan records and cost breakdowns to horizon
// totals. Revenue comes from the dataset; every year of the dataset must have
// exactly one plan record and one cost breakdown.
func Summarize(ds *entities.PlanningDataset, plans []entities.PlanRecord, costs []entities.CostBreakdown) (entities.Summary, error) {
	if ds == nil {
		return entities.Summary{}, fmt.Errorf("summarize: planning dataset is nil")
	}
	if len(plans) != ds.NumYears() || len(costs) != ds.NumYears() {
		return entities.Summary{}, fmt.Errorf("summarize: expected %d years, got %d plan records and %d cost breakdowns",
			ds.NumYears(), len(plans), len(costs))
	}

	summary := entities.Summary{
		TotalRevenue: decimal.Zero,
		TotalBudget:  decimal.Zero,
		TotalCost:    decimal.Zero,
		TotalSavings: decimal.Zero,
	}

	for i, plan := range plans {
		year, err := ds.Year(plan.Year)
		if err != nil {
			return entities.Summary{}, fmt.Errorf("summarize plan record %d: %w", i, err)
		}
		if costs[i].Year != plan.Year {
			return entities.Summary{}, fmt.Errorf("summarize: cost breakdown %d is for year %d, plan record is for %d", i, costs[i].Year, plan.Year)
		}
		summary.TotalRevenue = summary.TotalRevenue.Add(decimal.NewFromFloat(year.ExpectedTotalRevenue))
		summary.TotalBudget = summary.TotalBudget.Add(plan.AnnualBudget)
		summary.TotalCost = summary.TotalCost.Add(costs[i].TotalCost)
		summary.TotalSavings = summary.TotalSavings.Add(plan.AnnualBudgetSavings)
	}

	return summary, nil
}

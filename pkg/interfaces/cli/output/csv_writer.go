package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

// PlanColumns is the header of expansion_plan.csv
var PlanColumns = []string{
	"Year",
	"Selected_Expansions",
	"Annual_Budget",
	"Annual_Total_Cost",
	"Annual_Budget_Savings",
}

// CostColumns is the header of annual_cost_breakdown.csv
var CostColumns = []string{
	"Year",
	"Expansion_Spend",
	"Operational_Cost",
	"Labor_Cost",
	"Machinery_Cost",
	"Raw_Material_Cost",
	"Compliance_Cost",
	"Environmental_Compliance_Cost",
	"Labor_Law_Impact_Cost",
	"Technology_Investment_Cost",
	"Total_Cost",
}

// WritePlanCSV writes one row per planning year
func WritePlanCSV(w io.Writer, plans []entities.PlanRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PlanColumns); err != nil {
		return err
	}
	for _, p := range plans {
		record := []string{
			strconv.Itoa(p.Year),
			p.SelectedLabel(),
			p.AnnualBudget.String(),
			p.AnnualTotalCost.String(),
			p.AnnualBudgetSavings.String(),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCostCSV writes one cost breakdown row per planning year
func WriteCostCSV(w io.Writer, costs []entities.CostBreakdown) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CostColumns); err != nil {
		return err
	}
	for _, c := range costs {
		record := []string{strconv.Itoa(c.Year)}
		for _, v := range c.Components() {
			record = append(record, v.String())
		}
		record = append(record, c.TotalCost.String())
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

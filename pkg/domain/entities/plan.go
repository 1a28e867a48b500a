package entities

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NoExpansionsSelected is how an empty selection is rendered in reports
const NoExpansionsSelected = "None"

// PlanRecord is one year of the solved expansion plan
type PlanRecord struct {
	Year                int             `json:"year"`
	SelectedExpansions  []ExpansionName `json:"selected_expansions"`
	AnnualBudget        decimal.Decimal `json:"annual_budget"`
	AnnualTotalCost     decimal.Decimal `json:"annual_total_cost"`
	AnnualBudgetSavings decimal.Decimal `json:"annual_budget_savings"`
	Demand              float64         `json:"demand"`
	AvailableCapacity   float64         `json:"available_capacity"`
}

// SelectedLabel joins the selected expansion names with ", ", or returns
// NoExpansionsSelected when nothing was committed that year
func (p PlanRecord) SelectedLabel() string {
	if len(p.SelectedExpansions) == 0 {
		return NoExpansionsSelected
	}
	names := make([]string, len(p.SelectedExpansions))
	for i, n := range p.SelectedExpansions {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}

// CostBreakdown isolates each cost component of one planning year
type CostBreakdown struct {
	Year                        int             `json:"year"`
	ExpansionSpend              decimal.Decimal `json:"expansion_spend"`
	OperationalCost             decimal.Decimal `json:"operational_cost"`
	LaborCost                   decimal.Decimal `json:"labor_cost"`
	MachineryCost               decimal.Decimal `json:"machinery_cost"`
	RawMaterialCost             decimal.Decimal `json:"raw_material_cost"`
	ComplianceCost              decimal.Decimal `json:"compliance_cost"`
	EnvironmentalComplianceCost decimal.Decimal `json:"environmental_compliance_cost"`
	LaborLawImpactCost          decimal.Decimal `json:"labor_law_impact_cost"`
	TechnologyInvestmentCost    decimal.Decimal `json:"technology_investment_cost"`
	TotalCost                   decimal.Decimal `json:"total_cost"`
}

// Components returns the cost components in report column order, excluding the total
func (c CostBreakdown) Components() []decimal.Decimal {
	return []decimal.Decimal{
		c.ExpansionSpend,
		c.OperationalCost,
		c.LaborCost,
		c.MachineryCost,
		c.RawMaterialCost,
		c.ComplianceCost,
		c.EnvironmentalComplianceCost,
		c.LaborLawImpactCost,
		c.TechnologyInvestmentCost,
	}
}

// Summary aggregates a plan over the whole horizon
type Summary struct {
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalBudget  decimal.Decimal `json:"total_budget"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

// PlanRun is a recorded planning run kept in the plan history
type PlanRun struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	InitialCapacity int             `json:"initial_capacity"`
	FirstYear       int             `json:"first_year"`
	LastYear        int             `json:"last_year"`
	Objective       float64         `json:"objective"`
	Summary         Summary         `json:"summary"`
	Plans           []PlanRecord    `json:"plans"`
	Costs           []CostBreakdown `json:"costs"`
}

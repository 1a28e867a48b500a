package planning

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/model"
)

const (
	// SelectionThreshold is the value above which a Select variable counts as committed
	SelectionThreshold = 0.5

	// DefaultIntegralityTolerance bounds how far a reported binary value may sit from 0 or 1
	DefaultIntegralityTolerance = 1e-5

	// feasibilityTolerance is relative to demand when checking available capacity
	feasibilityTolerance = 1e-6
)

// Extractor turns a solved model into per-year plan records and cost breakdowns
type Extractor struct {
	IntegralityTolerance float64
}

// NewExtractor creates an Extractor. A non-positive tolerance selects the default.
func NewExtractor(integralityTolerance float64) *Extractor {
	if integralityTolerance <= 0 {
		integralityTolerance = DefaultIntegralityTolerance
	}
	return &Extractor{IntegralityTolerance: integralityTolerance}
}

// ExtractPlan extracts with the default integrality tolerance
func ExtractPlan(m *model.Model, ds *entities.PlanningDataset, sol *model.Solution) ([]entities.PlanRecord, []entities.CostBreakdown, error) {
	return NewExtractor(DefaultIntegralityTolerance).Extract(m, ds, sol)
}

// Extract reads the committed expansions from sol and recomputes every cost
// figure from the dataset. Reported totals follow the budget constraint's
// left-hand side and never the solver's objective value. Values the solver
// should have ruled out are reported as ExtractionInconsistencyError.
func (x *Extractor) Extract(m *model.Model, ds *entities.PlanningDataset, sol *model.Solution) ([]entities.PlanRecord, []entities.CostBreakdown, error) {
	if m == nil || ds == nil || sol == nil {
		return nil, nil, entities.NewExtractionInconsistencyError(0, "model, dataset and solution are all required")
	}
	if !sol.Status.IsOptimal() {
		return nil, nil, &entities.SolverNonOptimalError{Termination: sol.Status.String(), Message: sol.Message}
	}
	if len(sol.Values) != m.NumVariables() {
		return nil, nil, entities.NewExtractionInconsistencyError(0, "solution has %d values for %d variables", len(sol.Values), m.NumVariables())
	}

	rounded, err := x.roundSelections(m, sol)
	if err != nil {
		return nil, nil, err
	}

	years := ds.YearParameters()
	expansions := ds.Expansions()

	if err := checkCommitOnce(m, years, expansions, rounded); err != nil {
		return nil, nil, err
	}

	demandRows := make(map[int]model.Constraint, len(years))
	for _, c := range m.ConstraintsOf(model.DemandSatisfaction) {
		demandRows[c.Year] = c
	}

	plans := make([]entities.PlanRecord, 0, len(years))
	costs := make([]entities.CostBreakdown, 0, len(years))

	for _, y := range years {
		selected := make([]entities.ExpansionName, 0)
		spend := decimal.Zero
		for _, e := range expansions {
			v, ok := m.SelectVar(y.Year, string(e.Name))
			if !ok {
				return nil, nil, entities.NewExtractionInconsistencyError(y.Year, "no variable for expansion %s", e.Name)
			}
			if rounded[v] == 1 {
				selected = append(selected, e.Name)
				spend = spend.Add(decimal.NewFromFloat(e.Cost))
			}
		}

		breakdown := costBreakdown(y, spend)
		budget := decimal.NewFromFloat(y.AnnualBudget)
		savings := budget.Sub(breakdown.TotalCost)
		if savings.IsNegative() {
			return nil, nil, entities.NewExtractionInconsistencyError(y.Year, "negative budget savings %s", savings.String())
		}

		row, ok := demandRows[y.Year]
		if !ok {
			return nil, nil, entities.NewExtractionInconsistencyError(y.Year, "no demand constraint in model")
		}
		capacity := row.Expr.Evaluate(rounded)
		if capacity < y.Demand-feasibilityTolerance*math.Max(1, y.Demand) {
			return nil, nil, entities.NewExtractionInconsistencyError(y.Year, "available capacity %.2f below demand %.2f", capacity, y.Demand)
		}

		plans = append(plans, entities.PlanRecord{
			Year:                y.Year,
			SelectedExpansions:  selected,
			AnnualBudget:        budget,
			AnnualTotalCost:     breakdown.TotalCost,
			AnnualBudgetSavings: savings,
			Demand:              y.Demand,
			AvailableCapacity:   capacity,
		})
		costs = append(costs, breakdown)
	}

	return plans, costs, nil
}

// roundSelections maps every solver value to exactly 0 or 1
func (x *Extractor) roundSelections(m *model.Model, sol *model.Solution) ([]float64, error) {
	rounded := make([]float64, m.NumVariables())
	for _, v := range m.Variables {
		value := sol.Value(v.Index)
		if math.IsNaN(value) || (math.Abs(value) > x.IntegralityTolerance && math.Abs(value-1) > x.IntegralityTolerance) {
			return nil, entities.NewExtractionInconsistencyError(v.Year, "%s has non-binary value %g", v.Name, value)
		}
		if value > SelectionThreshold {
			rounded[v.Index] = 1
		}
	}
	return rounded, nil
}

func checkCommitOnce(m *model.Model, years []entities.YearParameters, expansions []entities.ExpansionOption, rounded []float64) error {
	for _, e := range expansions {
		first, committed := 0, false
		for _, y := range years {
			v, ok := m.SelectVar(y.Year, string(e.Name))
			if !ok || rounded[v] == 0 {
				continue
			}
			if committed {
				return entities.NewExtractionInconsistencyError(y.Year, "expansion %s committed in both %d and %d", e.Name, first, y.Year)
			}
			first, committed = y.Year, true
		}
	}
	return nil
}

// costBreakdown isolates each cost component of a year given its expansion spend
func costBreakdown(y entities.YearParameters, spend decimal.Decimal) entities.CostBreakdown {
	wage := decimal.NewFromFloat(y.AverageWage)
	c := entities.CostBreakdown{
		Year:                        y.Year,
		ExpansionSpend:              spend,
		OperationalCost:             decimal.NewFromFloat(y.OperationalCost),
		LaborCost:                   decimal.NewFromFloat(y.RequiredLaborHours).Mul(wage),
		MachineryCost:               decimal.NewFromFloat(y.RequiredMachineHours).Mul(wage),
		RawMaterialCost:             decimal.NewFromFloat(y.RawMaterialCost),
		ComplianceCost:              decimal.NewFromFloat(y.ComplianceCost),
		EnvironmentalComplianceCost: decimal.NewFromFloat(y.EnvironmentalComplianceCost),
		LaborLawImpactCost:          decimal.NewFromFloat(y.LaborLawCost),
		TechnologyInvestmentCost:    decimal.NewFromFloat(y.TechnologyInvestmentCost),
	}
	c.TotalCost = decimal.Sum(decimal.Zero, c.Components()...)
	return c
}

package planning

import (
	"fmt"

	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/model"
)

// BuildModel formulates the capacity expansion program for a dataset.
//
// One binary Select[y,e] is declared per (year, expansion) pair. The objective
// is total expansion spend plus every fixed yearly cost. Three constraint
// families are added: each expansion is committed at most once, available
// capacity covers demand every year, and each year's spend stays within its
// budget. An expansion committed in y0 adds capacity to every year
// y >= y0 + build time.
func BuildModel(ds *entities.PlanningDataset, initialCapacity int) (*model.Model, error) {
	if ds == nil {
		return nil, entities.NewModelConstructionError("planning dataset is nil")
	}
	if ds.NumYears() == 0 {
		return nil, entities.NewModelConstructionError("planning dataset has no years")
	}
	if initialCapacity < 0 {
		return nil, entities.NewModelConstructionError("initial capacity must be non negative, got %d", initialCapacity)
	}

	years := ds.YearParameters()
	expansions := ds.Expansions()

	expansionNames := make([]string, len(expansions))
	for i, e := range expansions {
		expansionNames[i] = string(e.Name)
	}

	m := model.New("CapacityExpansion", ds.Years(), expansionNames)

	for _, y := range years {
		for _, e := range expansions {
			if _, err := m.AddSelectVar(y.Year, string(e.Name)); err != nil {
				return nil, entities.NewModelConstructionError("%v", err)
			}
		}
	}

	objective, err := buildObjective(m, years, expansions)
	if err != nil {
		return nil, err
	}
	m.Objective = model.Objective{Name: "TotalCost", Sense: model.Minimize, Expr: *objective}

	builders := []func(*model.Model, []entities.YearParameters, []entities.ExpansionOption, int) error{
		addOneTimeExpansion,
		addDemandSatisfaction,
		addBudgetLimit,
	}
	for _, build := range builders {
		if err := build(m, years, expansions, initialCapacity); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func buildObjective(m *model.Model, years []entities.YearParameters, expansions []entities.ExpansionOption) (*model.LinearExpr, error) {
	expr := model.NewLinearExpr()
	for _, y := range years {
		for _, e := range expansions {
			v, err := selectVar(m, y.Year, e.Name)
			if err != nil {
				return nil, err
			}
			expr.AddTerm(v, e.Cost)
		}
		expr.AddConstant(y.FixedCost())
	}
	return expr, nil
}

func addOneTimeExpansion(m *model.Model, years []entities.YearParameters, expansions []entities.ExpansionOption, _ int) error {
	for _, e := range expansions {
		expr := model.NewLinearExpr()
		for _, y := range years {
			v, err := selectVar(m, y.Year, e.Name)
			if err != nil {
				return err
			}
			expr.AddTerm(v, 1)
		}
		if err := addConstraint(m, model.Constraint{
			Kind:      model.OneTimeExpansion,
			Name:      fmt.Sprintf("OneTimeExpansion[%s]", e.Name),
			Expansion: string(e.Name),
			Expr:      *expr,
			Sense:     model.LessOrEqual,
			RHS:       1,
		}); err != nil {
			return err
		}
	}
	return nil
}

func addDemandSatisfaction(m *model.Model, years []entities.YearParameters, expansions []entities.ExpansionOption, initialCapacity int) error {
	for _, y := range years {
		expr, err := availableCapacityExpr(m, y.Year, years, expansions, initialCapacity)
		if err != nil {
			return err
		}
		if err := addConstraint(m, model.Constraint{
			Kind:  model.DemandSatisfaction,
			Name:  fmt.Sprintf("DemandSatisfaction[%d]", y.Year),
			Year:  y.Year,
			Expr:  *expr,
			Sense: model.GreaterOrEqual,
			RHS:   y.Demand,
		}); err != nil {
			return err
		}
	}
	return nil
}

// availableCapacityExpr sums the initial capacity and the added capacity of
// every commitment in any year y0 with y0 + build time <= year
func availableCapacityExpr(m *model.Model, year int, years []entities.YearParameters, expansions []entities.ExpansionOption, initialCapacity int) (*model.LinearExpr, error) {
	expr := model.NewLinearExpr().AddConstant(float64(initialCapacity))
	for _, e := range expansions {
		for _, y0 := range years {
			if e.AvailableFrom(y0.Year) > year {
				continue
			}
			v, err := selectVar(m, y0.Year, e.Name)
			if err != nil {
				return nil, err
			}
			expr.AddTerm(v, e.AddedCapacity)
		}
	}
	return expr, nil
}

func addBudgetLimit(m *model.Model, years []entities.YearParameters, expansions []entities.ExpansionOption, _ int) error {
	for _, y := range years {
		expr := model.NewLinearExpr()
		for _, e := range expansions {
			v, err := selectVar(m, y.Year, e.Name)
			if err != nil {
				return err
			}
			expr.AddTerm(v, e.Cost)
		}
		expr.AddConstant(y.FixedCost())
		if err := addConstraint(m, model.Constraint{
			Kind:  model.BudgetLimit,
			Name:  fmt.Sprintf("BudgetLimit[%d]", y.Year),
			Year:  y.Year,
			Expr:  *expr,
			Sense: model.LessOrEqual,
			RHS:   y.AnnualBudget,
		}); err != nil {
			return err
		}
	}
	return nil
}

func selectVar(m *model.Model, year int, name entities.ExpansionName) (model.VarIndex, error) {
	v, ok := m.SelectVar(year, string(name))
	if !ok {
		return 0, entities.NewModelConstructionError("no variable indexed for %s", model.SelectName(year, string(name)))
	}
	return v, nil
}

func addConstraint(m *model.Model, c model.Constraint) error {
	if err := m.AddConstraint(c); err != nil {
		return entities.NewModelConstructionError("%v", err)
	}
	return nil
}

package entities

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testYear(year int) YearParameters {
	return YearParameters{
		Year:                        year,
		Demand:                      100,
		OperationalCost:             10,
		RequiredLaborHours:          2,
		RequiredMachineHours:        3,
		AverageWage:                 4,
		RawMaterialCost:             1,
		ComplianceCost:              1,
		EnvironmentalComplianceCost: 1,
		LaborLawCost:                1,
		TechnologyInvestmentCost:    1,
		AnnualBudget:                1000,
	}
}

func TestYearParameters_FixedCost(t *testing.T) {
	y := testYear(2020)

	assert.Equal(t, 8.0, y.LaborCost())
	assert.Equal(t, 12.0, y.MachineCost())
	assert.Equal(t, 35.0, y.FixedCost())
}

func TestNewPlanningDataset_SortsYears(t *testing.T) {
	ds, err := NewPlanningDataset(
		[]YearParameters{testYear(2022), testYear(2020), testYear(2021)},
		[]ExpansionOption{{Name: "B", Cost: 1, AddedCapacity: 1}, {Name: "A", Cost: 1, AddedCapacity: 1}},
	)
	require.NoError(t, err)

	assert.Equal(t, []int{2020, 2021, 2022}, ds.Years())
	assert.Equal(t, 2020, ds.FirstYear())
	assert.Equal(t, 2022, ds.LastYear())
	assert.Equal(t, 3, ds.NumYears())
	assert.Equal(t, 2, ds.NumExpansions())
	assert.Equal(t, ExpansionName("B"), ds.Expansions()[0].Name, "expansions keep their given order")

	y, err := ds.Year(2021)
	require.NoError(t, err)
	assert.Equal(t, 2021, y.Year)

	_, err = ds.Year(1999)
	assert.Error(t, err)

	_, err = ds.Expansion("missing")
	assert.Error(t, err)
}

func TestNewPlanningDataset_ReturnsCopies(t *testing.T) {
	ds, err := NewPlanningDataset([]YearParameters{testYear(2020)}, nil)
	require.NoError(t, err)

	years := ds.YearParameters()
	years[0].Demand = 1e9

	y, err := ds.Year(2020)
	require.NoError(t, err)
	assert.Equal(t, 100.0, y.Demand)
}

func TestNewPlanningDataset_Validation(t *testing.T) {
	negative := func(mutate func(*YearParameters)) []YearParameters {
		y := testYear(2020)
		mutate(&y)
		return []YearParameters{y}
	}

	testCases := []struct {
		name        string
		years       []YearParameters
		expansions  []ExpansionOption
		expectField string
	}{
		{"no years", nil, nil, "years"},
		{"duplicate year", []YearParameters{testYear(2020), testYear(2020)}, nil, "years"},
		{"negative demand", negative(func(y *YearParameters) { y.Demand = -1 }), nil, "demand"},
		{"negative budget", negative(func(y *YearParameters) { y.AnnualBudget = -5 }), nil, "annual_budget"},
		{"nan wage", negative(func(y *YearParameters) { y.AverageWage = math.NaN() }), nil, "average_wage"},
		{"infinite revenue", negative(func(y *YearParameters) { y.ExpectedTotalRevenue = math.Inf(1) }), nil, "expected_total_revenue"},
		{
			"duplicate expansion",
			[]YearParameters{testYear(2020)},
			[]ExpansionOption{{Name: "A", Cost: 1}, {Name: "A", Cost: 2}},
			"expansions",
		},
		{
			"empty expansion name",
			[]YearParameters{testYear(2020)},
			[]ExpansionOption{{Name: "", Cost: 1}},
			"expansion",
		},
		{
			"negative build time",
			[]YearParameters{testYear(2020)},
			[]ExpansionOption{{Name: "A", Cost: 1, BuildTimeYears: -1}},
			"build_time_years",
		},
		{
			"negative cost",
			[]YearParameters{testYear(2020)},
			[]ExpansionOption{{Name: "A", Cost: -1}},
			"cost",
		},
		{
			"negative added capacity",
			[]YearParameters{testYear(2020)},
			[]ExpansionOption{{Name: "A", AddedCapacity: -10}},
			"added_capacity",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewPlanningDataset(tc.years, tc.expansions)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDataValidation)

			var dve *DataValidationError
			require.True(t, errors.As(err, &dve))
			assert.Equal(t, tc.expectField, dve.Field)
		})
	}
}

func TestExpansionOption_AvailableFrom(t *testing.T) {
	opt, err := NewExpansionOption("LineA", 1000, 2, 500, 0.1)
	require.NoError(t, err)

	assert.Equal(t, 2022, opt.AvailableFrom(2020))

	instant, err := NewExpansionOption("Automation", 10, 0, 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 2020, instant.AvailableFrom(2020))
}

func TestPlanRecord_SelectedLabel(t *testing.T) {
	assert.Equal(t, NoExpansionsSelected, PlanRecord{}.SelectedLabel())
	assert.Equal(t, "LineA", PlanRecord{SelectedExpansions: []ExpansionName{"LineA"}}.SelectedLabel())
	assert.Equal(t, "LineA, LineB", PlanRecord{SelectedExpansions: []ExpansionName{"LineA", "LineB"}}.SelectedLabel())
}

func TestCostBreakdown_Components(t *testing.T) {
	c := CostBreakdown{
		ExpansionSpend:           decimal.NewFromInt(1),
		OperationalCost:          decimal.NewFromInt(2),
		TechnologyInvestmentCost: decimal.NewFromInt(9),
	}

	components := c.Components()
	require.Len(t, components, 9)
	assert.True(t, components[0].Equal(decimal.NewFromInt(1)))
	assert.True(t, components[8].Equal(decimal.NewFromInt(9)))
	assert.True(t, decimal.Sum(decimal.Zero, components...).Equal(decimal.NewFromInt(12)))
}

func TestTypedErrors_MatchSentinels(t *testing.T) {
	cause := errors.New("exec: not found")

	testCases := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{"data validation", NewDataValidationError("demand", "year %d: bad", 2020), ErrDataValidation, "data validation failed: demand: year 2020: bad"},
		{"model construction", NewModelConstructionError("nil dataset"), ErrModelConstruction, "model construction failed: nil dataset"},
		{"solver unavailable", &SolverUnavailableError{Backend: "glpk", Cause: cause}, ErrSolverUnavailable, "solver unavailable: glpk: exec: not found"},
		{"non optimal", &SolverNonOptimalError{Termination: "infeasible"}, ErrSolverNonOptimal, "solver did not reach an optimal solution: termination infeasible"},
		{"extraction", NewExtractionInconsistencyError(2021, "bad value"), ErrExtractionInconsistency, "solution extraction inconsistency: year 2021: bad value"},
	}

	sentinels := []error{ErrDataValidation, ErrModelConstruction, ErrSolverUnavailable, ErrSolverNonOptimal, ErrExtractionInconsistency}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.message, tc.err.Error())
			for _, s := range sentinels {
				assert.Equal(t, s == tc.sentinel, errors.Is(tc.err, s), "errors.Is(%v)", s)
			}
		})
	}

	assert.ErrorIs(t, &SolverUnavailableError{Backend: "glpk", Cause: cause}, cause)
}

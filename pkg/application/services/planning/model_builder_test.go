package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vsinha/capplan/pkg/application/services/testing"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/model"
)

func TestBuildModel_Shape(t *testing.T) {
	ds := testhelpers.BuildChoiceScenario()

	m, err := BuildModel(ds, testhelpers.LineAInitialCapacity)
	require.NoError(t, err)

	assert.Equal(t, ds.NumYears()*ds.NumExpansions(), m.NumVariables())
	assert.Len(t, m.ConstraintsOf(model.OneTimeExpansion), ds.NumExpansions())
	assert.Len(t, m.ConstraintsOf(model.DemandSatisfaction), ds.NumYears())
	assert.Len(t, m.ConstraintsOf(model.BudgetLimit), ds.NumYears())

	for _, v := range m.Variables {
		assert.Equal(t, model.Binary, v.Kind)
		assert.Equal(t, model.SelectName(v.Year, v.Expansion), v.Name)
	}

	assert.Equal(t, model.Minimize, m.Objective.Sense)
	assert.InDelta(t, 4*testhelpers.YearFixedCost, m.Objective.Expr.Constant, 1e-9)
}

func TestBuildModel_DemandRespectsBuildTime(t *testing.T) {
	ds := testhelpers.BuildLineAScenario()

	m, err := BuildModel(ds, testhelpers.LineAInitialCapacity)
	require.NoError(t, err)

	demand := m.ConstraintsOf(model.DemandSatisfaction)
	require.Len(t, demand, 3)

	testCases := []struct {
		year        int
		commitYears []int
	}{
		{2020, nil},
		{2021, []int{2020}},
		{2022, []int{2020, 2021}},
	}

	for i, tc := range testCases {
		c := demand[i]
		assert.Equal(t, tc.year, c.Year)
		assert.Equal(t, model.GreaterOrEqual, c.Sense)
		assert.Equal(t, float64(testhelpers.LineAInitialCapacity), c.Expr.Constant)

		var got []int
		for _, term := range c.Expr.Terms {
			assert.Equal(t, 500.0, term.Coeff)
			got = append(got, m.Variables[term.Var].Year)
		}
		assert.Equal(t, tc.commitYears, got, "year %d", tc.year)
	}
}

func TestBuildModel_ZeroBuildTimeCountsSameYear(t *testing.T) {
	ds := testhelpers.MustCreateDataset(
		[]entities.YearParameters{testhelpers.Year(2020, 500, 10000)},
		[]entities.ExpansionOption{testhelpers.MustCreateExpansion("Automation", 100, 0, 200)},
	)

	m, err := BuildModel(ds, 400)
	require.NoError(t, err)

	demand := m.ConstraintsOf(model.DemandSatisfaction)
	require.Len(t, demand, 1)
	require.Len(t, demand[0].Expr.Terms, 1)
	assert.Equal(t, 600.0, demand[0].Expr.Evaluate([]float64{1}))
}

func TestBuildModel_NoExpansions(t *testing.T) {
	ds := testhelpers.BuildNoExpansionScenario(100)

	m, err := BuildModel(ds, 400)
	require.NoError(t, err)

	assert.Equal(t, 0, m.NumVariables())
	assert.Empty(t, m.ConstraintsOf(model.OneTimeExpansion))
	for _, c := range m.ConstraintsOf(model.DemandSatisfaction) {
		assert.Empty(t, c.Expr.Terms)
		assert.Equal(t, 400.0, c.Expr.Constant)
	}
}

func TestBuildModel_Errors(t *testing.T) {
	_, err := BuildModel(nil, 0)
	assert.ErrorIs(t, err, entities.ErrModelConstruction)

	_, err = BuildModel(testhelpers.BuildLineAScenario(), -1)
	assert.ErrorIs(t, err, entities.ErrModelConstruction)
}

func TestBuildModel_BudgetMatchesObjective(t *testing.T) {
	ds := testhelpers.BuildChoiceScenario()
	m, err := BuildModel(ds, 400)
	require.NoError(t, err)

	values := make([]float64, m.NumVariables())
	for i := range values {
		if i%2 == 0 {
			values[i] = 1
		}
	}

	total := 0.0
	for _, c := range m.ConstraintsOf(model.BudgetLimit) {
		assert.Equal(t, model.LessOrEqual, c.Sense)
		assert.Equal(t, 10000.0, c.RHS)
		total += c.Expr.Evaluate(values)
	}
	assert.InDelta(t, m.Objective.Expr.Evaluate(values), total, 1e-9)
}

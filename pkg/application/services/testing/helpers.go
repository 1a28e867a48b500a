package testing

import (
	"github.com/vsinha/capplan/pkg/domain/entities"
)

// LineAInitialCapacity is the starting capacity of the LineA scenario
const LineAInitialCapacity = 400

// MustCreateExpansion is a helper for tests - panics on validation error
func MustCreateExpansion(name string, cost float64, buildTime int, addedCapacity float64) entities.ExpansionOption {
	option, err := entities.NewExpansionOption(entities.ExpansionName(name), cost, buildTime, addedCapacity, 0)
	if err != nil {
		panic(err)
	}
	return *option
}

// MustCreateDataset is a helper for tests - panics on validation error
func MustCreateDataset(years []entities.YearParameters, expansions []entities.ExpansionOption) *entities.PlanningDataset {
	ds, err := entities.NewPlanningDataset(years, expansions)
	if err != nil {
		panic(err)
	}
	return ds
}

// Year builds a planning year with modest fixed costs: operational 100,
// 10 labor hours and 4 machine hours at wage 5, raw material 30 and 5 for
// each compliance, labor-law and technology line, for a fixed cost of 340
func Year(year int, demand, budget float64) entities.YearParameters {
	return entities.YearParameters{
		Year:                        year,
		Demand:                      demand,
		OperationalCost:             100,
		RequiredLaborHours:          10,
		RequiredMachineHours:        4,
		AverageWage:                 5,
		WorkforceSize:               12,
		LaborMarketTightness:        0.4,
		ExpectedTotalRevenue:        5000,
		RawMaterialCost:             30,
		ComplianceCost:              5,
		EnvironmentalComplianceCost: 5,
		LaborLawCost:                5,
		TechnologyInvestmentCost:    125,
		AnnualBudget:                budget,
	}
}

// YearFixedCost is the fixed cost of every year built by Year
const YearFixedCost = 340.0

// BuildLineAScenario returns three years with demand 400, 900, 900 and a
// single expansion LineA (cost 1000, one year to build, +500 units). With an
// initial capacity of 400 the only feasible plan commits LineA in 2020.
func BuildLineAScenario() *entities.PlanningDataset {
	return MustCreateDataset(
		[]entities.YearParameters{
			Year(2020, 400, 10000),
			Year(2021, 900, 10000),
			Year(2022, 900, 10000),
		},
		[]entities.ExpansionOption{
			MustCreateExpansion("LineA", 1000, 1, 500),
		},
	)
}

// BuildNoExpansionScenario returns two years with the given demand and no
// expansion options
func BuildNoExpansionScenario(demand float64) *entities.PlanningDataset {
	return MustCreateDataset(
		[]entities.YearParameters{
			Year(2020, demand, 10000),
			Year(2021, demand, 10000),
		},
		nil,
	)
}

// BuildChoiceScenario needs two of three 300-unit expansions online by 2023
// from an initial capacity of 400. The optimum commits Retrofit and LineB for
// a spend of 2300; the commit years are not unique.
func BuildChoiceScenario() *entities.PlanningDataset {
	return MustCreateDataset(
		[]entities.YearParameters{
			Year(2020, 400, 10000),
			Year(2021, 400, 10000),
			Year(2022, 700, 10000),
			Year(2023, 1000, 10000),
		},
		[]entities.ExpansionOption{
			MustCreateExpansion("Automation", 2500, 0, 300),
			MustCreateExpansion("LineB", 1500, 2, 300),
			MustCreateExpansion("Retrofit", 800, 1, 300),
		},
	)
}

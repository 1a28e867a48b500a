// Package yaml loads planning scenarios written as a single YAML document.
package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

// Scenario is a planning dataset plus an optional initial capacity override
type Scenario struct {
	// InitialCapacity is nil when the file does not set one.
	InitialCapacity *int
	Dataset         *entities.PlanningDataset
}

type scenarioFile struct {
	InitialCapacity *int            `yaml:"initial_capacity"`
	Years           []yearEntry     `yaml:"years"`
	Expansions      []expansionItem `yaml:"expansions"`
}

type yearEntry struct {
	Year                        *int     `yaml:"year"`
	Demand                      *float64 `yaml:"demand"`
	OperationalCost             *float64 `yaml:"operational_cost"`
	RequiredLaborHours          *float64 `yaml:"required_labor_hours"`
	RequiredMachineHours        *float64 `yaml:"required_machine_hours"`
	AverageWage                 *float64 `yaml:"average_wage"`
	WorkforceSize               float64  `yaml:"workforce_size"`
	LaborMarketTightness        float64  `yaml:"labor_market_tightness"`
	ExpectedTotalRevenue        float64  `yaml:"expected_total_revenue"`
	RawMaterialCost             *float64 `yaml:"raw_material_cost"`
	ComplianceCost              *float64 `yaml:"compliance_cost"`
	EnvironmentalComplianceCost *float64 `yaml:"environmental_compliance_cost"`
	LaborLawCost                *float64 `yaml:"labor_law_cost"`
	TechnologyInvestmentCost    *float64 `yaml:"technology_investment_cost"`
	AnnualBudget                *float64 `yaml:"annual_budget"`
}

type expansionItem struct {
	Name           string   `yaml:"name"`
	Cost           *float64 `yaml:"cost"`
	BuildTimeYears *int     `yaml:"build_time_years"`
	AddedCapacity  *float64 `yaml:"added_capacity"`
	EfficiencyGain float64  `yaml:"efficiency_gain"`
}

// LoadScenario reads a scenario file from disk
func LoadScenario(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", filename, err)
	}
	scenario, err := ParseScenario(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", filename, err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario document. Unknown keys are rejected so
// misspelled fields do not silently default to zero.
func ParseScenario(r io.Reader) (*Scenario, error) {
	var file scenarioFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, entities.NewDataValidationError("", "scenario document is empty")
		}
		return nil, entities.NewDataValidationError("", "invalid scenario YAML: %v", err)
	}

	if file.InitialCapacity != nil && *file.InitialCapacity < 0 {
		return nil, entities.NewDataValidationError("initial_capacity", "must be non negative, got %d", *file.InitialCapacity)
	}

	years := make([]entities.YearParameters, 0, len(file.Years))
	for i, y := range file.Years {
		params, err := y.toParameters(i)
		if err != nil {
			return nil, err
		}
		years = append(years, params)
	}
	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })

	expansions := make([]entities.ExpansionOption, 0, len(file.Expansions))
	for i, e := range file.Expansions {
		option, err := e.toOption(i)
		if err != nil {
			return nil, err
		}
		expansions = append(expansions, *option)
	}

	ds, err := entities.NewPlanningDataset(years, expansions)
	if err != nil {
		return nil, fmt.Errorf("building planning dataset: %w", err)
	}
	return &Scenario{InitialCapacity: file.InitialCapacity, Dataset: ds}, nil
}

func (y yearEntry) toParameters(index int) (entities.YearParameters, error) {
	if y.Year == nil {
		return entities.YearParameters{}, entities.NewDataValidationError("year", "years[%d]: missing year", index)
	}
	required := []struct {
		name  string
		value *float64
	}{
		{"demand", y.Demand},
		{"operational_cost", y.OperationalCost},
		{"required_labor_hours", y.RequiredLaborHours},
		{"required_machine_hours", y.RequiredMachineHours},
		{"average_wage", y.AverageWage},
		{"raw_material_cost", y.RawMaterialCost},
		{"compliance_cost", y.ComplianceCost},
		{"environmental_compliance_cost", y.EnvironmentalComplianceCost},
		{"labor_law_cost", y.LaborLawCost},
		{"technology_investment_cost", y.TechnologyInvestmentCost},
		{"annual_budget", y.AnnualBudget},
	}
	for _, r := range required {
		if r.value == nil {
			return entities.YearParameters{}, entities.NewDataValidationError(r.name, "years[%d] (year %d): missing value", index, *y.Year)
		}
	}

	return entities.YearParameters{
		Year:                        *y.Year,
		Demand:                      *y.Demand,
		OperationalCost:             *y.OperationalCost,
		RequiredLaborHours:          *y.RequiredLaborHours,
		RequiredMachineHours:        *y.RequiredMachineHours,
		AverageWage:                 *y.AverageWage,
		WorkforceSize:               y.WorkforceSize,
		LaborMarketTightness:        y.LaborMarketTightness,
		ExpectedTotalRevenue:        y.ExpectedTotalRevenue,
		RawMaterialCost:             *y.RawMaterialCost,
		ComplianceCost:              *y.ComplianceCost,
		EnvironmentalComplianceCost: *y.EnvironmentalComplianceCost,
		LaborLawCost:                *y.LaborLawCost,
		TechnologyInvestmentCost:    *y.TechnologyInvestmentCost,
		AnnualBudget:                *y.AnnualBudget,
	}, nil
}

func (e expansionItem) toOption(index int) (*entities.ExpansionOption, error) {
	if e.Name == "" {
		return nil, entities.NewDataValidationError("name", "expansions[%d]: missing name", index)
	}
	switch {
	case e.Cost == nil:
		return nil, entities.NewDataValidationError("cost", "expansion %s: missing value", e.Name)
	case e.BuildTimeYears == nil:
		return nil, entities.NewDataValidationError("build_time_years", "expansion %s: missing value", e.Name)
	case e.AddedCapacity == nil:
		return nil, entities.NewDataValidationError("added_capacity", "expansion %s: missing value", e.Name)
	}
	return entities.NewExpansionOption(entities.ExpansionName(e.Name), *e.Cost, *e.BuildTimeYears, *e.AddedCapacity, e.EfficiencyGain)
}

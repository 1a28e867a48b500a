package entities

// YearParameters holds the business parameters forecast for one planning year
type YearParameters struct {
	Year                        int
	Demand                      float64
	OperationalCost             float64
	RequiredLaborHours          float64
	RequiredMachineHours        float64
	AverageWage                 float64
	WorkforceSize               float64
	LaborMarketTightness        float64
	ExpectedTotalRevenue        float64
	RawMaterialCost             float64
	ComplianceCost              float64
	EnvironmentalComplianceCost float64
	LaborLawCost                float64
	TechnologyInvestmentCost    float64
	AnnualBudget                float64
}

// LaborCost is the cost of the year's required labor hours at the year's average wage
func (y YearParameters) LaborCost() float64 {
	return y.RequiredLaborHours * y.AverageWage
}

// MachineCost is the cost of the year's required machinery hours. Machinery
// hours are priced at the same average wage as labor.
func (y YearParameters) MachineCost() float64 {
	return y.RequiredMachineHours * y.AverageWage
}

// FixedCost is every cost of the year that does not depend on expansion decisions
func (y YearParameters) FixedCost() float64 {
	return y.LaborCost() +
		y.MachineCost() +
		y.OperationalCost +
		y.RawMaterialCost +
		y.ComplianceCost +
		y.EnvironmentalComplianceCost +
		y.LaborLawCost +
		y.TechnologyInvestmentCost
}

// validate checks that every cost, hour and capacity field is a non-negative number
func (y YearParameters) validate() error {
	fields := []struct {
		name  string
		value float64
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
	for _, f := range fields {
		if err := checkNonNegative(f.value); err != "" {
			return NewDataValidationError(f.name, "year %d: %s", y.Year, err)
		}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"workforce_size", y.WorkforceSize},
		{"labor_market_tightness", y.LaborMarketTightness},
		{"expected_total_revenue", y.ExpectedTotalRevenue},
	} {
		if !isFinite(f.value) {
			return NewDataValidationError(f.name, "year %d: value must be a finite number", y.Year)
		}
	}
	return nil
}

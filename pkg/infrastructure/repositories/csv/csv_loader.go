package csv

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

// Business planning table columns
const (
	ColYear                        = "Year"
	ColDemand                      = "Forecasted Demand"
	ColOperationalCost             = "Operational Cost (USD)"
	ColRequiredLaborHours          = "Required Labor Hours"
	ColRequiredMachineryHours      = "Required Machinery Hours"
	ColAverageWage                 = "Average Wage (USD)"
	ColWorkforceSize               = "Workforce Size"
	ColLaborMarketTightness        = "Labor Market Tightness"
	ColExpectedTotalRevenue        = "Expected Total Revenue (USD)"
	ColRawMaterialCost             = "Expected Raw Material Cost (USD)"
	ColComplianceCost              = "Expected Compliance Cost (USD)"
	ColEnvironmentalComplianceCost = "Expected Environmental Compliance Cost (USD)"
	ColLaborLawCost                = "Expected Labor Law Changes Impact Cost (USD)"
	ColTechnologyInvestmentCost    = "Expected Technology Investment Cost (USD)"
	ColAnnualBudget                = "Annual Budget (USD)"
)

// Expansion cost table columns
const (
	ColProposedExpansion = "Proposed Expansion"
	ColCost              = "Cost (USD)"
	ColTimeToBuild       = "Time to Build (year)"
	ColAdditionalCap     = "Additional Capacity (units)"
	ColEfficiencyGain    = "Efficiency Gain"
)

// BusinessColumns lists the required business columns besides Year
var BusinessColumns = []string{
	ColDemand,
	ColOperationalCost,
	ColRequiredLaborHours,
	ColRequiredMachineryHours,
	ColAverageWage,
	ColWorkforceSize,
	ColLaborMarketTightness,
	ColExpectedTotalRevenue,
	ColRawMaterialCost,
	ColComplianceCost,
	ColEnvironmentalComplianceCost,
	ColLaborLawCost,
	ColTechnologyInvestmentCost,
	ColAnnualBudget,
}

// ExpansionColumns lists the required expansion columns besides the name
var ExpansionColumns = []string{
	ColCost,
	ColTimeToBuild,
	ColAdditionalCap,
	ColEfficiencyGain,
}

// Loader handles loading planning data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadDataset loads both tables and builds a validated PlanningDataset
func (l *Loader) LoadDataset(businessFile, expansionFile string) (*entities.PlanningDataset, error) {
	years, err := l.LoadBusinessData(businessFile)
	if err != nil {
		return nil, err
	}
	expansions, err := l.LoadExpansions(expansionFile)
	if err != nil {
		return nil, err
	}
	ds, err := entities.NewPlanningDataset(years, expansions)
	if err != nil {
		return nil, fmt.Errorf("building planning dataset: %w", err)
	}
	return ds, nil
}

// LoadBusinessData loads the year-indexed business planning table. Rows with
// a blank Year are skipped; the result is sorted by year.
func (l *Loader) LoadBusinessData(filename string) ([]entities.YearParameters, error) {
	header, records, err := readTable(filename, "business data")
	if err != nil {
		return nil, err
	}

	cols, err := indexColumns(header, ColYear, BusinessColumns, "business data")
	if err != nil {
		return nil, err
	}

	seen := make(map[int]int)
	var years []entities.YearParameters
	for i, record := range records {
		row := i + 2
		if strings.TrimSpace(field(record, cols[ColYear])) == "" {
			continue
		}

		year, err := parseInteger(field(record, cols[ColYear]))
		if err != nil {
			return nil, entities.NewDataValidationError(ColYear, "business data row %d: %v", row, err)
		}
		if prev, dup := seen[year]; dup {
			return nil, entities.NewDataValidationError(ColYear, "business data contains duplicate year %d (rows %d and %d)", year, prev, row)
		}
		seen[year] = row

		values := make(map[string]float64, len(BusinessColumns))
		for _, col := range BusinessColumns {
			v, err := parseNumber(field(record, cols[col]))
			if err != nil {
				return nil, entities.NewDataValidationError(col, "business data row %d: %v", row, err)
			}
			values[col] = v
		}

		years = append(years, entities.YearParameters{
			Year:                        year,
			Demand:                      values[ColDemand],
			OperationalCost:             values[ColOperationalCost],
			RequiredLaborHours:          values[ColRequiredLaborHours],
			RequiredMachineHours:        values[ColRequiredMachineryHours],
			AverageWage:                 values[ColAverageWage],
			WorkforceSize:               values[ColWorkforceSize],
			LaborMarketTightness:        values[ColLaborMarketTightness],
			ExpectedTotalRevenue:        values[ColExpectedTotalRevenue],
			RawMaterialCost:             values[ColRawMaterialCost],
			ComplianceCost:              values[ColComplianceCost],
			EnvironmentalComplianceCost: values[ColEnvironmentalComplianceCost],
			LaborLawCost:                values[ColLaborLawCost],
			TechnologyInvestmentCost:    values[ColTechnologyInvestmentCost],
			AnnualBudget:                values[ColAnnualBudget],
		})
	}

	if len(years) == 0 {
		return nil, entities.NewDataValidationError(ColYear, "business data has no rows with a year")
	}

	sort.Slice(years, func(i, j int) bool { return years[i].Year < years[j].Year })
	return years, nil
}

// LoadExpansions loads the expansion cost table sorted by expansion name.
// Any blank cell rejects the file.
func (l *Loader) LoadExpansions(filename string) ([]entities.ExpansionOption, error) {
	header, records, err := readTable(filename, "expansion costs")
	if err != nil {
		return nil, err
	}

	cols, err := indexColumns(header, ColProposedExpansion, ExpansionColumns, "expansion costs")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]int)
	var expansions []entities.ExpansionOption
	for i, record := range records {
		row := i + 2
		name := strings.TrimSpace(field(record, cols[ColProposedExpansion]))
		if name == "" {
			return nil, entities.NewDataValidationError(ColProposedExpansion, "expansion costs row %d: missing value", row)
		}
		if prev, dup := seen[name]; dup {
			return nil, entities.NewDataValidationError(ColProposedExpansion, "expansion costs contain duplicate expansion %q (rows %d and %d)", name, prev, row)
		}
		seen[name] = row

		cost, err := parseNumber(field(record, cols[ColCost]))
		if err != nil {
			return nil, entities.NewDataValidationError(ColCost, "expansion costs row %d: %v", row, err)
		}
		buildTime, err := parseInteger(field(record, cols[ColTimeToBuild]))
		if err != nil {
			return nil, entities.NewDataValidationError(ColTimeToBuild, "expansion costs row %d: %v", row, err)
		}
		if buildTime < 0 {
			return nil, entities.NewDataValidationError(ColTimeToBuild, "expansion costs row %d: time to build must be non negative, got %d", row, buildTime)
		}
		capacity, err := parseNumber(field(record, cols[ColAdditionalCap]))
		if err != nil {
			return nil, entities.NewDataValidationError(ColAdditionalCap, "expansion costs row %d: %v", row, err)
		}
		gain, err := parseNumber(field(record, cols[ColEfficiencyGain]))
		if err != nil {
			return nil, entities.NewDataValidationError(ColEfficiencyGain, "expansion costs row %d: %v", row, err)
		}

		option, err := entities.NewExpansionOption(entities.ExpansionName(name), cost, buildTime, capacity, gain)
		if err != nil {
			return nil, fmt.Errorf("expansion costs row %d: %w", row, err)
		}
		expansions = append(expansions, *option)
	}

	sort.Slice(expansions, func(i, j int) bool { return expansions[i].Name < expansions[j].Name })
	return expansions, nil
}

// Helper functions for parsing CSV records

func readTable(filename, table string) ([]string, [][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s file %s: %w", table, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, entities.NewDataValidationError("", "failed to read %s CSV: %v", table, err)
	}

	if len(records) < 1 {
		return nil, nil, entities.NewDataValidationError("", "%s CSV must have a header row", table)
	}

	return records[0], records[1:], nil
}

// indexColumns maps each required column to its position. The key column is
// checked first so its absence gets a dedicated message.
func indexColumns(header []string, key string, required []string, table string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, col := range header {
		positions[normalizeHeader(col)] = i
	}

	cols := make(map[string]int, len(required)+1)
	idx, ok := positions[normalizeHeader(key)]
	if !ok {
		return nil, entities.NewDataValidationError(key, "%s must contain a %s column", table, key)
	}
	cols[key] = idx

	var missing []string
	for _, col := range required {
		idx, ok := positions[normalizeHeader(col)]
		if !ok {
			missing = append(missing, col)
			continue
		}
		cols[col] = idx
	}
	if len(missing) > 0 {
		return nil, entities.NewDataValidationError("", "%s missing columns: %v", table, missing)
	}
	return cols, nil
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\ufeff")))
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || strings.EqualFold(s, "nan") {
		return 0, fmt.Errorf("missing value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	return v, nil
}

// parseInteger accepts "2020" as well as integral floats such as "2020.0"
func parseInteger(s string) (int, error) {
	v, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) {
		return 0, fmt.Errorf("expected an integer, got %s", strings.TrimSpace(s))
	}
	return int(v), nil
}

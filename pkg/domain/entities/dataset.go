package entities

import (
	"fmt"
	"sort"
)

// PlanningDataset is the validated, read-only input to model building.
// Years are kept in ascending order; expansions keep the order they were given in.
type PlanningDataset struct {
	years          []YearParameters
	yearIndex      map[int]int
	expansions     []ExpansionOption
	expansionIndex map[ExpansionName]int
}

// NewPlanningDataset validates years and expansions and indexes them.
// Years may be passed in any order but must be distinct; an empty expansion
// list is allowed.
func NewPlanningDataset(years []YearParameters, expansions []ExpansionOption) (*PlanningDataset, error) {
	if len(years) == 0 {
		return nil, NewDataValidationError("years", "at least one planning year is required")
	}

	ds := &PlanningDataset{
		years:          make([]YearParameters, len(years)),
		yearIndex:      make(map[int]int, len(years)),
		expansions:     make([]ExpansionOption, len(expansions)),
		expansionIndex: make(map[ExpansionName]int, len(expansions)),
	}

	copy(ds.years, years)
	sort.SliceStable(ds.years, func(i, j int) bool { return ds.years[i].Year < ds.years[j].Year })
	for i, y := range ds.years {
		if _, dup := ds.yearIndex[y.Year]; dup {
			return nil, NewDataValidationError("years", "duplicate year %d", y.Year)
		}
		if err := y.validate(); err != nil {
			return nil, err
		}
		ds.yearIndex[y.Year] = i
	}

	copy(ds.expansions, expansions)
	for i, e := range ds.expansions {
		if _, dup := ds.expansionIndex[e.Name]; dup {
			return nil, NewDataValidationError("expansions", "duplicate expansion %s", e.Name)
		}
		if err := e.validate(); err != nil {
			return nil, err
		}
		ds.expansionIndex[e.Name] = i
	}

	return ds, nil
}

// Years returns the planning years in ascending order
func (d *PlanningDataset) Years() []int {
	out := make([]int, len(d.years))
	for i, y := range d.years {
		out[i] = y.Year
	}
	return out
}

// YearParameters returns a copy of all year records in ascending order
func (d *PlanningDataset) YearParameters() []YearParameters {
	out := make([]YearParameters, len(d.years))
	copy(out, d.years)
	return out
}

// Year returns the parameters for a single year
func (d *PlanningDataset) Year(year int) (YearParameters, error) {
	i, ok := d.yearIndex[year]
	if !ok {
		return YearParameters{}, fmt.Errorf("year not found: %d", year)
	}
	return d.years[i], nil
}

// Expansions returns a copy of the expansion options in iteration order
func (d *PlanningDataset) Expansions() []ExpansionOption {
	out := make([]ExpansionOption, len(d.expansions))
	copy(out, d.expansions)
	return out
}

// Expansion returns a single expansion option by name
func (d *PlanningDataset) Expansion(name ExpansionName) (ExpansionOption, error) {
	i, ok := d.expansionIndex[name]
	if !ok {
		return ExpansionOption{}, fmt.Errorf("expansion not found: %s", name)
	}
	return d.expansions[i], nil
}

// FirstYear returns the earliest planning year
func (d *PlanningDataset) FirstYear() int { return d.years[0].Year }

// LastYear returns the latest planning year
func (d *PlanningDataset) LastYear() int { return d.years[len(d.years)-1].Year }

// NumYears returns the number of planning years
func (d *PlanningDataset) NumYears() int { return len(d.years) }

// NumExpansions returns the number of expansion options
func (d *PlanningDataset) NumExpansions() int { return len(d.expansions) }

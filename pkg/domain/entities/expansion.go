package entities

import "math"

// ExpansionName identifies a proposed expansion option
type ExpansionName string

// ExpansionOption is a one-time capacity-adding project. Construction starts in
// the year the option is committed and the added capacity becomes available
// BuildTimeYears later.
type ExpansionOption struct {
	Name           ExpansionName
	Cost           float64
	BuildTimeYears int
	AddedCapacity  float64
	EfficiencyGain float64 // carried through to reports, not constrained
}

// NewExpansionOption creates a validated ExpansionOption
func NewExpansionOption(name ExpansionName, cost float64, buildTimeYears int, addedCapacity, efficiencyGain float64) (*ExpansionOption, error) {
	e := &ExpansionOption{
		Name:           name,
		Cost:           cost,
		BuildTimeYears: buildTimeYears,
		AddedCapacity:  addedCapacity,
		EfficiencyGain: efficiencyGain,
	}
	if err := e.validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// AvailableFrom returns the first year in which an option committed in
// commitYear contributes capacity
func (e ExpansionOption) AvailableFrom(commitYear int) int {
	return commitYear + e.BuildTimeYears
}

func (e ExpansionOption) validate() error {
	if e.Name == "" {
		return NewDataValidationError("expansion", "name cannot be empty")
	}
	if e.BuildTimeYears < 0 {
		return NewDataValidationError("build_time_years", "expansion %s: build time must be non negative, got %d", e.Name, e.BuildTimeYears)
	}
	if err := checkNonNegative(e.Cost); err != "" {
		return NewDataValidationError("cost", "expansion %s: %s", e.Name, err)
	}
	if err := checkNonNegative(e.AddedCapacity); err != "" {
		return NewDataValidationError("added_capacity", "expansion %s: %s", e.Name, err)
	}
	if !isFinite(e.EfficiencyGain) {
		return NewDataValidationError("efficiency_gain", "expansion %s: value must be a finite number", e.Name)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// checkNonNegative returns a description of the problem, or "" when v is valid
func checkNonNegative(v float64) string {
	if !isFinite(v) {
		return "value must be a finite number"
	}
	if v < 0 {
		return "value cannot be negative"
	}
	return ""
}

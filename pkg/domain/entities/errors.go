package entities

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying each failure class. Every typed error below
// matches exactly one of these with errors.Is.
var (
	ErrDataValidation          = errors.New("data validation failed")
	ErrModelConstruction       = errors.New("model construction failed")
	ErrSolverUnavailable       = errors.New("solver unavailable")
	ErrSolverNonOptimal        = errors.New("solver did not reach an optimal solution")
	ErrExtractionInconsistency = errors.New("solution extraction inconsistency")
)

// DataValidationError reports malformed or missing planning input
type DataValidationError struct {
	Field  string
	Reason string
}

func (e *DataValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrDataValidation, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrDataValidation, e.Field, e.Reason)
}

func (e *DataValidationError) Unwrap() error { return ErrDataValidation }

// NewDataValidationError creates a DataValidationError for the given field
func NewDataValidationError(field, format string, args ...any) error {
	return &DataValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ModelConstructionError reports an internal contract violation while
// declaring variables or constraints
type ModelConstructionError struct {
	Reason string
}

func (e *ModelConstructionError) Error() string {
	return fmt.Sprintf("%v: %s", ErrModelConstruction, e.Reason)
}

func (e *ModelConstructionError) Unwrap() error { return ErrModelConstruction }

// NewModelConstructionError creates a ModelConstructionError
func NewModelConstructionError(format string, args ...any) error {
	return &ModelConstructionError{Reason: fmt.Sprintf(format, args...)}
}

// SolverUnavailableError reports that the solver backend could not be invoked
type SolverUnavailableError struct {
	Backend string
	Cause   error
}

func (e *SolverUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", ErrSolverUnavailable, e.Backend, e.Cause)
	}
	return fmt.Sprintf("%v: %s", ErrSolverUnavailable, e.Backend)
}

func (e *SolverUnavailableError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrSolverUnavailable, e.Cause}
	}
	return []error{ErrSolverUnavailable}
}

// SolverNonOptimalError reports a completed solve whose termination status
// is anything other than optimal or locally optimal
type SolverNonOptimalError struct {
	Termination string
	Message     string
}

func (e *SolverNonOptimalError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v: termination %s: %s", ErrSolverNonOptimal, e.Termination, e.Message)
	}
	return fmt.Sprintf("%v: termination %s", ErrSolverNonOptimal, e.Termination)
}

func (e *SolverNonOptimalError) Unwrap() error { return ErrSolverNonOptimal }

// ExtractionInconsistencyError reports a solved value that breaks an invariant
// the solver is expected to guarantee. It signals a bug, never a valid plan.
type ExtractionInconsistencyError struct {
	Year   int
	Reason string
}

func (e *ExtractionInconsistencyError) Error() string {
	if e.Year == 0 {
		return fmt.Sprintf("%v: %s", ErrExtractionInconsistency, e.Reason)
	}
	return fmt.Sprintf("%v: year %d: %s", ErrExtractionInconsistency, e.Year, e.Reason)
}

func (e *ExtractionInconsistencyError) Unwrap() error { return ErrExtractionInconsistency }

// NewExtractionInconsistencyError creates an ExtractionInconsistencyError for a
// year; year 0 marks a problem not tied to a single year
func NewExtractionInconsistencyError(year int, format string, args ...any) error {
	return &ExtractionInconsistencyError{Year: year, Reason: fmt.Sprintf(format, args...)}
}

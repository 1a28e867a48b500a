package model

// TerminationStatus is the solver's verdict on a solve attempt
type TerminationStatus int

const (
	StatusUnknown TerminationStatus = iota
	StatusOptimal
	StatusLocallyOptimal
	StatusInfeasible
	StatusUnbounded
	StatusNodeLimit
	StatusInterrupted
	StatusError
)

func (s TerminationStatus) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusLocallyOptimal:
		return "locallyOptimal"
	case StatusInfeasible:
		return "infeasible"
	case StatusUnbounded:
		return "unbounded"
	case StatusNodeLimit:
		return "nodeLimit"
	case StatusInterrupted:
		return "interrupted"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// IsOptimal reports whether the status is accepted as a solved plan
func (s TerminationStatus) IsOptimal() bool {
	return s == StatusOptimal || s == StatusLocallyOptimal
}

// Solution is what a solver returns for a model
type Solution struct {
	// Status indicates the outcome of the solve.
	Status TerminationStatus

	// Values holds one value per model variable. Only meaningful when
	// Status.IsOptimal().
	Values []float64

	// Objective is the objective value at Values, including its constant.
	Objective float64

	// Nodes is the number of search nodes the solver explored.
	Nodes int

	// Message carries solver detail for non-optimal outcomes.
	Message string
}

// Value returns the value of a variable, or 0 if the index is out of range
func (s *Solution) Value(v VarIndex) float64 {
	if v < 0 || int(v) >= len(s.Values) {
		return 0
	}
	return s.Values[v]
}

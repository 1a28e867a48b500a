// Package model holds the solver-neutral representation of the capacity
// expansion program: binary decision variables, one linear objective, and a
// list of tagged linear constraints.
package model

import (
	"fmt"
	"math"
)

// VarKind is the domain of a decision variable
type VarKind int

const (
	Binary VarKind = iota
)

func (k VarKind) String() string {
	switch k {
	case Binary:
		return "Binary"
	default:
		return "Unknown"
	}
}

// Variable is a Select[year, expansion] decision
type Variable struct {
	Index     VarIndex
	Name      string
	Year      int
	Expansion string
	Kind      VarKind
}

// SelectName is the naming contract for decision variables shared by the
// builder, the extractor and LP emission
func SelectName(year int, expansion string) string {
	return fmt.Sprintf("Select[%d,%s]", year, expansion)
}

// ObjectiveSense is the optimization direction
type ObjectiveSense int

const (
	Minimize ObjectiveSense = iota
	Maximize
)

func (s ObjectiveSense) String() string {
	if s == Maximize {
		return "Maximize"
	}
	return "Minimize"
}

// Objective is the linear function handed to the solver
type Objective struct {
	Name  string
	Sense ObjectiveSense
	Expr  LinearExpr
}

// ConstraintKind tags which family a constraint belongs to
type ConstraintKind int

const (
	OneTimeExpansion ConstraintKind = iota
	DemandSatisfaction
	BudgetLimit
)

func (k ConstraintKind) String() string {
	switch k {
	case OneTimeExpansion:
		return "OneTimeExpansion"
	case DemandSatisfaction:
		return "DemandSatisfaction"
	case BudgetLimit:
		return "BudgetLimit"
	default:
		return "Unknown"
	}
}

// Sense is the relation between a constraint's expression and its right-hand side
type Sense int

const (
	LessOrEqual Sense = iota
	GreaterOrEqual
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessOrEqual:
		return "<="
	case GreaterOrEqual:
		return ">="
	case Equal:
		return "="
	default:
		return "?"
	}
}

// Constraint is one row of the program: Expr <sense> RHS. Year is set for
// DemandSatisfaction and BudgetLimit, Expansion for OneTimeExpansion.
type Constraint struct {
	Kind      ConstraintKind
	Name      string
	Year      int
	Expansion string
	Expr      LinearExpr
	Sense     Sense
	RHS       float64
}

// Slack returns how far the constraint is from being violated at the given
// values; negative means violated
func (c *Constraint) Slack(values []float64) float64 {
	lhs := c.Expr.Evaluate(values)
	switch c.Sense {
	case LessOrEqual:
		return c.RHS - lhs
	case GreaterOrEqual:
		return lhs - c.RHS
	default:
		return -math.Abs(lhs - c.RHS)
	}
}

// Satisfied reports whether the constraint holds within a tolerance scaled by
// the magnitude of its right-hand side
func (c *Constraint) Satisfied(values []float64, tol float64) bool {
	return c.Slack(values) >= -tol*math.Max(1, math.Abs(c.RHS))
}

type selectKey struct {
	year      int
	expansion string
}

// Model is the complete optimization program
type Model struct {
	Name        string
	Years       []int
	Expansions  []string
	Variables   []Variable
	Objective   Objective
	Constraints []Constraint

	selectIndex map[selectKey]VarIndex
}

// New creates an empty model over the given index sets
func New(name string, years []int, expansions []string) *Model {
	return &Model{
		Name:        name,
		Years:       years,
		Expansions:  expansions,
		selectIndex: make(map[selectKey]VarIndex, len(years)*len(expansions)),
	}
}

// AddSelectVar declares the binary variable Select[year, expansion]
func (m *Model) AddSelectVar(year int, expansion string) (VarIndex, error) {
	key := selectKey{year: year, expansion: expansion}
	if _, exists := m.selectIndex[key]; exists {
		return 0, fmt.Errorf("variable %s already declared", SelectName(year, expansion))
	}
	idx := VarIndex(len(m.Variables))
	m.Variables = append(m.Variables, Variable{
		Index:     idx,
		Name:      SelectName(year, expansion),
		Year:      year,
		Expansion: expansion,
		Kind:      Binary,
	})
	m.selectIndex[key] = idx
	return idx, nil
}

// SelectVar looks up the index of Select[year, expansion]
func (m *Model) SelectVar(year int, expansion string) (VarIndex, bool) {
	idx, ok := m.selectIndex[selectKey{year: year, expansion: expansion}]
	return idx, ok
}

// AddConstraint appends a constraint after checking its terms reference
// declared variables
func (m *Model) AddConstraint(c Constraint) error {
	for _, t := range c.Expr.Terms {
		if t.Var < 0 || int(t.Var) >= len(m.Variables) {
			return fmt.Errorf("constraint %s references undeclared variable %d", c.Name, t.Var)
		}
	}
	m.Constraints = append(m.Constraints, c)
	return nil
}

// ConstraintsOf returns the constraints of one family in declaration order
func (m *Model) ConstraintsOf(kind ConstraintKind) []Constraint {
	var out []Constraint
	for _, c := range m.Constraints {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// NumVariables returns the number of decision variables
func (m *Model) NumVariables() int { return len(m.Variables) }

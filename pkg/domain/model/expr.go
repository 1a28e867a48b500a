package model

// VarIndex is the position of a decision variable in Model.Variables
type VarIndex int

// Term is a single coefficient·variable product
type Term struct {
	Var   VarIndex
	Coeff float64
}

// LinearExpr is a linear expression Σ coeff·var + constant
type LinearExpr struct {
	Terms    []Term
	Constant float64
}

// NewLinearExpr creates an empty expression
func NewLinearExpr() *LinearExpr {
	return &LinearExpr{}
}

// AddTerm appends coeff·v to the expression and returns it. Zero
// coefficients are dropped.
func (e *LinearExpr) AddTerm(v VarIndex, coeff float64) *LinearExpr {
	if coeff == 0 {
		return e
	}
	e.Terms = append(e.Terms, Term{Var: v, Coeff: coeff})
	return e
}

// AddConstant adds c to the constant part of the expression and returns it
func (e *LinearExpr) AddConstant(c float64) *LinearExpr {
	e.Constant += c
	return e
}

// Evaluate computes the expression for the given variable values.
// Variables beyond the end of values evaluate to 0.
func (e *LinearExpr) Evaluate(values []float64) float64 {
	total := e.Constant
	for _, t := range e.Terms {
		if int(t.Var) < len(values) {
			total += t.Coeff * values[t.Var]
		}
	}
	return total
}

// Coefficients returns the dense coefficient vector over n variables,
// summing repeated terms
func (e *LinearExpr) Coefficients(n int) []float64 {
	out := make([]float64, n)
	for _, t := range e.Terms {
		if int(t.Var) < n {
			out[t.Var] += t.Coeff
		}
	}
	return out
}

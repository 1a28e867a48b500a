package solver

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"

	"github.com/vsinha/capplan/pkg/domain/model"
)

const (
	free int8 = -1

	// simplexTolerance is handed to lp.Simplex for its pivoting decisions
	simplexTolerance = 1e-10
)

type relaxationStatus int

const (
	relaxationFeasible relaxationStatus = iota
	relaxationInfeasible
	// relaxationUnknown means the LP could not be solved reliably; the node
	// must be branched without a bound
	relaxationUnknown
)

type relaxation struct {
	status relaxationStatus
	bound  float64
	values []float64
}

// relax solves the LP relaxation of m with the variables in fixed pinned to
// 0 or 1 and every free variable bounded to [0, 1].
//
// The problem is rewritten in the standard form lp.Simplex expects,
// min cᵀx s.t. Ax = b, x >= 0, with columns
//
//	[ free variables | one slack per inequality row | one upper-bound slack per free variable ]
//
// Constraints whose terms are all fixed are checked directly instead of
// becoming rows, so A never has an all-zero row or column. Each row is scaled
// so its largest coefficient is 1, and the objective so its largest cost is 1;
// money coefficients next to unit slacks otherwise leave the simplex basis
// numerically singular.
func relax(m *model.Model, fixed []int8, tol float64) relaxation {
	freeCols := make([]int, len(fixed))
	var freeVars []int
	for i, f := range fixed {
		freeCols[i] = -1
		if f == free {
			freeCols[i] = len(freeVars)
			freeVars = append(freeVars, i)
		}
	}
	nf := len(freeVars)

	type row struct {
		coeffs map[int]float64
		sense  model.Sense
		rhs    float64
	}
	rows := make([]row, 0, len(m.Constraints))
	slacks := 0
	for i := range m.Constraints {
		c := &m.Constraints[i]
		r := row{coeffs: make(map[int]float64), sense: c.Sense, rhs: c.RHS - c.Expr.Constant}
		for _, t := range c.Expr.Terms {
			if col := freeCols[t.Var]; col >= 0 {
				r.coeffs[col] += t.Coeff
			} else {
				r.rhs -= t.Coeff * float64(fixed[t.Var])
			}
		}
		for col, v := range r.coeffs {
			if v == 0 {
				delete(r.coeffs, col)
			}
		}
		if len(r.coeffs) == 0 {
			if !constantRowHolds(r.sense, r.rhs, tol) {
				return relaxation{status: relaxationInfeasible}
			}
			continue
		}
		if r.sense != model.Equal {
			slacks++
		}
		rows = append(rows, r)
	}

	objective := m.Objective.Expr.Constant
	for _, t := range m.Objective.Expr.Terms {
		if freeCols[t.Var] < 0 {
			objective += t.Coeff * float64(fixed[t.Var])
		}
	}

	if nf == 0 {
		return relaxation{status: relaxationFeasible, bound: objective, values: expand(fixed, nil, nil)}
	}

	nRows := len(rows) + nf
	nCols := nf + slacks + nf
	if nRows > nCols {
		return relaxation{status: relaxationUnknown}
	}

	a := mat.NewDense(nRows, nCols, nil)
	b := make([]float64, nRows)
	c := make([]float64, nCols)

	sign := 1.0
	if m.Objective.Sense == model.Maximize {
		sign = -1
	}
	for _, t := range m.Objective.Expr.Terms {
		if col := freeCols[t.Var]; col >= 0 {
			c[col] += sign * t.Coeff
		}
	}
	costScale := maxAbs(c)
	if costScale == 0 {
		costScale = 1
	}
	for j := range c {
		c[j] /= costScale
	}

	slack := nf
	for i, r := range rows {
		scale := 0.0
		for _, v := range r.coeffs {
			scale = math.Max(scale, math.Abs(v))
		}
		for col, v := range r.coeffs {
			a.Set(i, col, v/scale)
		}
		switch r.sense {
		case model.LessOrEqual:
			a.Set(i, slack, 1)
			slack++
		case model.GreaterOrEqual:
			a.Set(i, slack, -1)
			slack++
		}
		b[i] = r.rhs / scale
	}
	for j := 0; j < nf; j++ {
		i := len(rows) + j
		a.Set(i, j, 1)
		a.Set(i, nf+slacks+j, 1)
		b[i] = 1
	}

	opt, x, err := simplex(c, a, b)
	switch {
	case errors.Is(err, lp.ErrInfeasible):
		return relaxation{status: relaxationInfeasible}
	case err != nil:
		return relaxation{status: relaxationUnknown}
	}

	return relaxation{
		status: relaxationFeasible,
		bound:  sign*opt*costScale + objective,
		values: expand(fixed, freeVars, x),
	}
}

// simplex runs lp.Simplex, turning its panics on singular bases into errors
func simplex(c []float64, a mat.Matrix, b []float64) (opt float64, x []float64, err error) {
	defer func() {
		if p := recover(); p != nil {
			opt, x, err = 0, nil, fmt.Errorf("simplex: %v", p)
		}
	}()
	return lp.Simplex(c, a, b, simplexTolerance, nil)
}

// screen bounds a node by activity ranges alone: every free variable may take
// any value in [0, 1]. It reports false when some constraint cannot be met by
// any completion of fixed, and otherwise returns a valid bound on the
// objective of every completion. Unlike relax it involves no linear algebra.
func screen(m *model.Model, fixed []int8, tol float64) (bool, float64) {
	for i := range m.Constraints {
		c := &m.Constraints[i]
		lo, hi := activity(&c.Expr, fixed)
		eps := tol * math.Max(1, math.Abs(c.RHS))
		switch c.Sense {
		case model.LessOrEqual:
			if lo > c.RHS+eps {
				return false, 0
			}
		case model.GreaterOrEqual:
			if hi < c.RHS-eps {
				return false, 0
			}
		default:
			if lo > c.RHS+eps || hi < c.RHS-eps {
				return false, 0
			}
		}
	}

	lo, hi := activity(&m.Objective.Expr, fixed)
	if m.Objective.Sense == model.Maximize {
		return true, hi
	}
	return true, lo
}

// activity returns the smallest and largest values expr can take over every
// completion of fixed
func activity(expr *model.LinearExpr, fixed []int8) (float64, float64) {
	lo, hi := expr.Constant, expr.Constant
	for _, t := range expr.Terms {
		if f := fixed[t.Var]; f != free {
			lo += t.Coeff * float64(f)
			hi += t.Coeff * float64(f)
			continue
		}
		if t.Coeff < 0 {
			lo += t.Coeff
		} else {
			hi += t.Coeff
		}
	}
	return lo, hi
}

func maxAbs(values []float64) float64 {
	out := 0.0
	for _, v := range values {
		out = math.Max(out, math.Abs(v))
	}
	return out
}

// expand merges pinned values and the LP's free-variable values into one
// vector indexed like the model's variables
func expand(fixed []int8, freeVars []int, x []float64) []float64 {
	values := make([]float64, len(fixed))
	for i, f := range fixed {
		if f != free {
			values[i] = float64(f)
		}
	}
	for col, v := range freeVars {
		values[v] = math.Min(1, math.Max(0, x[col]))
	}
	return values
}

func constantRowHolds(sense model.Sense, rhs, tol float64) bool {
	eps := tol * math.Max(1, math.Abs(rhs))
	switch sense {
	case model.LessOrEqual:
		return 0 <= rhs+eps
	case model.GreaterOrEqual:
		return 0 >= rhs-eps
	default:
		return math.Abs(rhs) <= eps
	}
}

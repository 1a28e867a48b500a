// Package solver provides MILP backends for capacity expansion models and an
// LP-format writer for handing models to external solvers.
package solver

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/domain/model"
)

const (
	// DefaultFeasibilityTolerance is relative to each constraint's right-hand side
	DefaultFeasibilityTolerance = 1e-9

	// DefaultRelaxationTimeout bounds a single node's LP relaxation
	DefaultRelaxationTimeout = 2 * time.Second

	integralTolerance = 1e-6

	// boundSlack is the relative margin an LP bound must clear before it
	// prunes a node
	boundSlack = 1e-7
)

// Options tunes the branch-and-bound search
type Options struct {
	// MaxNodes stops the search with StatusNodeLimit once exceeded; 0 means no limit.
	MaxNodes int

	// FeasibilityTolerance is used when verifying candidate solutions.
	FeasibilityTolerance float64

	// RelaxationTimeout bounds each node's LP relaxation. After the first
	// timeout the rest of the search prunes by activity ranges only.
	RelaxationTimeout time.Duration
}

// BranchAndBound is an exact solver for models whose variables are all binary.
// It explores the search tree depth first, bounding each node by activity
// ranges and then by the LP relaxation. Candidates are always verified against
// the exact constraints, so a relaxation that fails or stalls only costs
// nodes. It holds no per-solve state and is safe for concurrent use.
type BranchAndBound struct {
	opts   Options
	logger *zap.Logger
}

// NewBranchAndBound creates a branch-and-bound solver
func NewBranchAndBound(opts Options, logger *zap.Logger) *BranchAndBound {
	if opts.FeasibilityTolerance <= 0 {
		opts.FeasibilityTolerance = DefaultFeasibilityTolerance
	}
	if opts.RelaxationTimeout <= 0 {
		opts.RelaxationTimeout = DefaultRelaxationTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BranchAndBound{opts: opts, logger: logger}
}

type node struct {
	fixed []int8
}

type search struct {
	m         *model.Model
	tol       float64
	sign      float64
	incumbent []float64
	bestObj   float64
	nodes     int

	// lpStalled is set once a relaxation times out
	lpStalled bool
}

// Solve searches for a provably optimal assignment. The returned error is
// reserved for malformed input; infeasibility, limits and cancellation are
// reported through the solution status.
func (s *BranchAndBound) Solve(ctx context.Context, m *model.Model) (*model.Solution, error) {
	if m == nil {
		return nil, fmt.Errorf("branch and bound: model is nil")
	}
	for _, v := range m.Variables {
		if v.Kind != model.Binary {
			return &model.Solution{
				Status:  model.StatusError,
				Message: fmt.Sprintf("variable %s has unsupported kind %s", v.Name, v.Kind),
			}, nil
		}
	}

	sr := &search{m: m, tol: s.opts.FeasibilityTolerance, sign: 1, bestObj: math.Inf(1)}
	if m.Objective.Sense == model.Maximize {
		sr.sign = -1
	}

	root := make([]int8, m.NumVariables())
	for i := range root {
		root[i] = free
	}
	stack := []node{{fixed: root}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return sr.stopped(model.StatusInterrupted, err.Error()), nil
		}
		if s.opts.MaxNodes > 0 && sr.nodes >= s.opts.MaxNodes {
			return sr.stopped(model.StatusNodeLimit, fmt.Sprintf("node limit %d reached", s.opts.MaxNodes)), nil
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sr.nodes++

		ok, bound := screen(m, n.fixed, sr.tol)
		if !ok || (sr.incumbent != nil && !sr.improves(bound)) {
			continue
		}

		r, err := s.relaxNode(ctx, sr, n.fixed)
		if err != nil {
			return sr.stopped(model.StatusInterrupted, err.Error()), nil
		}
		if r.status == relaxationInfeasible {
			continue
		}
		if r.status == relaxationFeasible && sr.incumbent != nil && !sr.improves(r.bound-sr.sign*boundSlack*math.Max(1, math.Abs(r.bound))) {
			continue
		}

		branchVar := -1
		preferOne := false
		if r.status == relaxationFeasible {
			branchVar, preferOne = mostFractional(n.fixed, r.values)
			if branchVar < 0 {
				// LP optimum is integral, so it is the best point in this subtree.
				candidate := roundAll(r.values)
				if sr.accept(candidate) {
					continue
				}
			}
		}
		if branchVar < 0 {
			branchVar = firstFree(n.fixed)
		}
		if branchVar < 0 {
			// Every variable is pinned; the leaf is its own assignment.
			sr.accept(expand(n.fixed, nil, nil))
			continue
		}

		first, second := int8(0), int8(1)
		if preferOne {
			first, second = 1, 0
		}
		// LIFO: push the preferred branch last so it is explored first.
		stack = append(stack, child(n, branchVar, second), child(n, branchVar, first))
	}

	if sr.incumbent == nil {
		s.logger.Debug("search exhausted without a feasible assignment", zap.Int("nodes", sr.nodes))
		return &model.Solution{Status: model.StatusInfeasible, Nodes: sr.nodes, Message: "no assignment satisfies every constraint"}, nil
	}

	s.logger.Debug("search complete",
		zap.Int("nodes", sr.nodes),
		zap.Float64("objective", sr.bestObj))

	return &model.Solution{
		Status:    model.StatusOptimal,
		Values:    sr.incumbent,
		Objective: sr.bestObj,
		Nodes:     sr.nodes,
	}, nil
}

// relaxNode solves a node's LP relaxation on its own goroutine so that
// cancellation and the per-node timeout are honoured while lp.Simplex runs.
// A solve abandoned on timeout or cancellation finishes into the buffered
// channel and is discarded. The returned error is non-nil only when ctx is
// done.
func (s *BranchAndBound) relaxNode(ctx context.Context, sr *search, fixed []int8) (relaxation, error) {
	if sr.lpStalled {
		return relaxation{status: relaxationUnknown}, nil
	}

	done := make(chan relaxation, 1)
	go func() {
		done <- relax(sr.m, fixed, sr.tol)
	}()

	timer := time.NewTimer(s.opts.RelaxationTimeout)
	defer timer.Stop()

	select {
	case r := <-done:
		return r, nil
	case <-ctx.Done():
		return relaxation{}, ctx.Err()
	case <-timer.C:
		sr.lpStalled = true
		s.logger.Warn("LP relaxation timed out, continuing without LP bounds",
			zap.Duration("timeout", s.opts.RelaxationTimeout),
			zap.Int("nodes", sr.nodes))
		return relaxation{status: relaxationUnknown}, nil
	}
}

// improves reports whether an objective bound can still beat the incumbent
func (sr *search) improves(bound float64) bool {
	eps := 1e-9 * math.Max(1, math.Abs(sr.bestObj))
	return sr.sign*bound < sr.sign*sr.bestObj-eps
}

// accept makes values the incumbent if it is feasible and better. It reports
// whether values was feasible.
func (sr *search) accept(values []float64) bool {
	for i := range sr.m.Constraints {
		if !sr.m.Constraints[i].Satisfied(values, sr.tol) {
			return false
		}
	}
	obj := sr.m.Objective.Expr.Evaluate(values)
	if sr.incumbent == nil || sr.improves(obj) {
		sr.incumbent = values
		sr.bestObj = obj
	}
	return true
}

// stopped reports an early termination. Any incumbent is discarded since it
// is not proven optimal.
func (sr *search) stopped(status model.TerminationStatus, msg string) *model.Solution {
	return &model.Solution{Status: status, Nodes: sr.nodes, Message: msg}
}

func child(parent node, v int, value int8) node {
	fixed := make([]int8, len(parent.fixed))
	copy(fixed, parent.fixed)
	fixed[v] = value
	return node{fixed: fixed}
}

// mostFractional returns the free variable whose relaxed value is closest to
// 0.5, and whether its value leans towards 1. It returns -1 when every free
// variable is integral.
func mostFractional(fixed []int8, values []float64) (int, bool) {
	best, bestDist := -1, 0.0
	for i, f := range fixed {
		if f != free {
			continue
		}
		frac := values[i] - math.Floor(values[i])
		dist := math.Min(frac, 1-frac)
		if dist > integralTolerance && dist > bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return -1, false
	}
	return best, values[best] >= 0.5
}

func firstFree(fixed []int8) int {
	for i, f := range fixed {
		if f == free {
			return i
		}
	}
	return -1
}

func roundAll(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = math.Round(v)
	}
	return out
}

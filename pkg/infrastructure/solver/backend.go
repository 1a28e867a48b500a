package solver

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/model"
)

// BackendBranchAndBound names the bundled solver
const BackendBranchAndBound = "branch-and-bound"

// Unavailable stands in for a backend that cannot be invoked. Every solve
// fails with a SolverUnavailableError.
type Unavailable struct {
	Backend string
	Reason  string
}

func (u Unavailable) Solve(context.Context, *model.Model) (*model.Solution, error) {
	return nil, &entities.SolverUnavailableError{Backend: u.Backend, Cause: errors.New(u.Reason)}
}

// Backend is anything that can solve a model
type Backend interface {
	Solve(ctx context.Context, m *model.Model) (*model.Solution, error)
}

// New returns the named backend. Unknown names yield an Unavailable backend
// so the failure surfaces at solve time as a SolverUnavailableError.
func New(name string, opts Options, logger *zap.Logger) Backend {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendBranchAndBound, "bnb":
		return NewBranchAndBound(opts, logger)
	default:
		return Unavailable{Backend: name, Reason: "unknown solver backend"}
	}
}

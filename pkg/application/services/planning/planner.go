package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/model"
	"github.com/vsinha/capplan/pkg/infrastructure/events"
)

// Solver is the MILP backend contract. Solve blocks until the backend
// terminates or ctx is done. Non-optimal outcomes are reported through
// Solution.Status; an error means the backend could not produce a verdict.
type Solver interface {
	Solve(ctx context.Context, m *model.Model) (*model.Solution, error)
}

// Planner runs the build, solve, extract and summarize pipeline for a dataset
type Planner struct {
	solver    Solver
	extractor *Extractor
	events    events.Store
	logger    *zap.Logger
}

// Option configures a Planner
type Option func(*Planner)

// WithEventStore makes the planner append run events to store
func WithEventStore(store events.Store) Option {
	return func(p *Planner) { p.events = store }
}

// WithLogger sets the planner's logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Planner) { p.logger = logger }
}

// WithIntegralityTolerance overrides the extractor's binary tolerance
func WithIntegralityTolerance(tol float64) Option {
	return func(p *Planner) { p.extractor = NewExtractor(tol) }
}

// NewPlanner creates a Planner backed by solver
func NewPlanner(solver Solver, opts ...Option) *Planner {
	p := &Planner{
		solver:    solver,
		extractor: NewExtractor(DefaultIntegralityTolerance),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan builds the model for ds, solves it and extracts the plan. Only an
// optimal solve yields a result; every other outcome is returned as one of the
// typed errors in entities and no partial plan is produced.
func (p *Planner) Plan(ctx context.Context, ds *entities.PlanningDataset, initialCapacity int) (*dto.PlanResult, error) {
	if p.solver == nil {
		return nil, &entities.SolverUnavailableError{Backend: "none", Cause: errors.New("no solver configured")}
	}

	runID := uuid.NewString()
	logger := p.logger.With(zap.String("run", runID), zap.Int("initial_capacity", initialCapacity))

	m, err := BuildModel(ds, initialCapacity)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	p.emit(logger, events.NewModelBuiltEvent(runID, events.ModelBuilt{
		InitialCapacity: initialCapacity,
		Variables:       m.NumVariables(),
		Constraints:     len(m.Constraints),
	}))

	start := time.Now()
	sol, err := p.solver.Solve(ctx, m)
	elapsed := time.Since(start)
	if err != nil {
		p.emit(logger, events.NewSolveFailedEvent(runID, events.SolveFailed{Reason: err.Error()}))
		if !errors.Is(err, entities.ErrSolverUnavailable) && !errors.Is(err, entities.ErrSolverNonOptimal) {
			err = &entities.SolverNonOptimalError{Termination: model.StatusError.String(), Message: err.Error()}
		}
		return nil, fmt.Errorf("solving model: %w", err)
	}
	if sol == nil {
		return nil, fmt.Errorf("solving model: %w", &entities.SolverNonOptimalError{
			Termination: model.StatusUnknown.String(),
			Message:     "solver returned no solution",
		})
	}
	if !sol.Status.IsOptimal() {
		p.emit(logger, events.NewSolveFailedEvent(runID, events.SolveFailed{
			Termination: sol.Status.String(),
			Reason:      sol.Message,
		}))
		return nil, fmt.Errorf("solving model: %w", &entities.SolverNonOptimalError{
			Termination: sol.Status.String(),
			Message:     sol.Message,
		})
	}
	p.emit(logger, events.NewSolveCompletedEvent(runID, events.SolveCompleted{
		Termination: sol.Status.String(),
		Objective:   sol.Objective,
		Nodes:       sol.Nodes,
		Duration:    elapsed,
	}))

	plans, costs, err := p.extractor.Extract(m, ds, sol)
	if err != nil {
		return nil, fmt.Errorf("extracting plan: %w", err)
	}

	summary, err := Summarize(ds, plans, costs)
	if err != nil {
		return nil, fmt.Errorf("summarizing plan: %w", err)
	}
	commitments, err := Commitments(ds, plans)
	if err != nil {
		return nil, fmt.Errorf("extracting plan: %w", err)
	}

	result := &dto.PlanResult{
		RunID:           runID,
		InitialCapacity: initialCapacity,
		FirstYear:       ds.FirstYear(),
		LastYear:        ds.LastYear(),
		Termination:     sol.Status.String(),
		Objective:       sol.Objective,
		Nodes:           sol.Nodes,
		SolveTime:       elapsed,
		Plans:           plans,
		Costs:           costs,
		Summary:         summary,
		Commitments:     commitments,
	}
	p.emit(logger, events.NewPlanExtractedEvent(runID, events.PlanExtracted{
		Years:    len(plans),
		Selected: result.SelectedCount(),
		Summary:  summary,
	}))

	return result, nil
}

func (p *Planner) emit(logger *zap.Logger, event events.Event) {
	if p.events == nil {
		return
	}
	if err := p.events.Append(event); err != nil {
		logger.Warn("event handler failed", zap.String("event", event.Type()), zap.Error(err))
	}
}

// Commitments lists every selected expansion in commit order with the year
// its capacity comes online. A selected expansion missing from ds is an
// extraction inconsistency.
func Commitments(ds *entities.PlanningDataset, plans []entities.PlanRecord) ([]dto.Commitment, error) {
	var out []dto.Commitment
	for _, p := range plans {
		for _, name := range p.SelectedExpansions {
			exp, err := ds.Expansion(name)
			if err != nil {
				return nil, entities.NewExtractionInconsistencyError(p.Year, "selected expansion %s is not in the dataset", name)
			}
			out = append(out, dto.Commitment{
				Expansion:     name,
				CommitYear:    p.Year,
				AvailableYear: exp.AvailableFrom(p.Year),
				AddedCapacity: exp.AddedCapacity,
			})
		}
	}
	return out, nil
}

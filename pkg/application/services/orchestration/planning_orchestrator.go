package orchestration

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/application/services/planning"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/repositories"
)

// PlanningOrchestrator coordinates the planner with the plan history
type PlanningOrchestrator struct {
	planner *planning.Planner
	runs    repositories.PlanRunRepository
	now     func() time.Time
	logger  *zap.Logger
}

// NewPlanningOrchestrator creates a new planning orchestrator. runs may be nil
// when history is disabled.
func NewPlanningOrchestrator(
	planner *planning.Planner,
	runs repositories.PlanRunRepository,
	logger *zap.Logger,
) *PlanningOrchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanningOrchestrator{
		planner: planner,
		runs:    runs,
		now:     time.Now,
		logger:  logger,
	}
}

// PlanningResult is a planning run plus its bookkeeping
type PlanningResult struct {
	Result       *dto.PlanResult
	PlanningDate time.Time
	Recorded     bool
}

// RunCompletePlanning plans ds and records the run in the history when one is
// configured. A failed plan is never recorded.
func (po *PlanningOrchestrator) RunCompletePlanning(
	ctx context.Context,
	ds *entities.PlanningDataset,
	initialCapacity int,
) (*PlanningResult, error) {
	result, err := po.planner.Plan(ctx, ds, initialCapacity)
	if err != nil {
		return nil, err
	}

	out := &PlanningResult{Result: result, PlanningDate: po.now()}
	if po.runs == nil {
		return out, nil
	}
	if err := po.runs.Save(ctx, result.ToPlanRun(out.PlanningDate)); err != nil {
		return nil, fmt.Errorf("failed to record plan run: %w", err)
	}
	out.Recorded = true
	po.logger.Info("plan run recorded", zap.String("run", result.RunID))
	return out, nil
}

// RunSweep plans ds for every initial capacity and records each successful
// scenario in the history when one is configured
func (po *PlanningOrchestrator) RunSweep(
	ctx context.Context,
	ds *entities.PlanningDataset,
	capacities []int,
	parallelism int,
) ([]dto.SweepRow, error) {
	if len(capacities) == 0 {
		return nil, fmt.Errorf("no initial capacities provided for sweep")
	}

	rows, err := po.planner.Sweep(ctx, ds, capacities, parallelism)
	if err != nil {
		return nil, err
	}
	if po.runs == nil {
		return rows, nil
	}

	recordedAt := po.now()
	for _, row := range rows {
		if row.Err != nil {
			continue
		}
		if err := po.runs.Save(ctx, row.Result.ToPlanRun(recordedAt)); err != nil {
			return nil, fmt.Errorf("failed to record sweep run for capacity %d: %w", row.InitialCapacity, err)
		}
	}
	return rows, nil
}

// History returns the configured plan history, or nil
func (po *PlanningOrchestrator) History() repositories.PlanRunRepository {
	return po.runs
}

package orchestration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/capplan/pkg/application/services/planning"
	testhelpers "github.com/vsinha/capplan/pkg/application/services/testing"
	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/repositories"
	"github.com/vsinha/capplan/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/capplan/pkg/infrastructure/solver"
)

type failingRuns struct {
	repositories.PlanRunRepository
}

func (failingRuns) Save(context.Context, *entities.PlanRun) error {
	return errors.New("disk full")
}

func newTestOrchestrator(runs repositories.PlanRunRepository) *PlanningOrchestrator {
	planner := planning.NewPlanner(solver.NewBranchAndBound(solver.Options{}, nil))
	po := NewPlanningOrchestrator(planner, runs, nil)
	po.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return po
}

func TestRunCompletePlanning_Records(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewPlanRunRepository(4)
	po := newTestOrchestrator(runs)

	out, err := po.RunCompletePlanning(ctx, testhelpers.BuildLineAScenario(), testhelpers.LineAInitialCapacity)
	require.NoError(t, err)
	assert.True(t, out.Recorded)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), out.PlanningDate)

	run, err := runs.Get(ctx, out.Result.RunID)
	require.NoError(t, err)
	assert.Equal(t, testhelpers.LineAInitialCapacity, run.InitialCapacity)
	assert.True(t, run.CreatedAt.Equal(out.PlanningDate))
	assert.Equal(t, []entities.ExpansionName{"LineA"}, run.Plans[0].SelectedExpansions)
	assert.Same(t, runs, po.History())
}

func TestRunCompletePlanning_WithoutHistory(t *testing.T) {
	po := newTestOrchestrator(nil)

	out, err := po.RunCompletePlanning(context.Background(), testhelpers.BuildLineAScenario(), testhelpers.LineAInitialCapacity)
	require.NoError(t, err)
	assert.False(t, out.Recorded)
	assert.Nil(t, po.History())
}

func TestRunCompletePlanning_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("failed plan is not recorded", func(t *testing.T) {
		runs := memory.NewPlanRunRepository(1)
		_, err := newTestOrchestrator(runs).RunCompletePlanning(ctx, testhelpers.BuildLineAScenario(), 0)
		assert.ErrorIs(t, err, entities.ErrSolverNonOptimal)

		recorded, err := runs.List(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, recorded)
	})

	t.Run("history save error", func(t *testing.T) {
		_, err := newTestOrchestrator(failingRuns{}).RunCompletePlanning(ctx, testhelpers.BuildLineAScenario(), testhelpers.LineAInitialCapacity)
		assert.ErrorContains(t, err, "failed to record plan run: disk full")
	})
}

func TestRunSweep(t *testing.T) {
	ctx := context.Background()
	runs := memory.NewPlanRunRepository(4)
	po := newTestOrchestrator(runs)

	rows, err := po.RunSweep(ctx, testhelpers.BuildLineAScenario(), []int{400, 0, 1000}, 2)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Error(t, rows[1].Err)

	recorded, err := runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 2)
	capacities := []int{recorded[0].InitialCapacity, recorded[1].InitialCapacity}
	assert.ElementsMatch(t, []int{400, 1000}, capacities)
}

func TestRunSweep_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := newTestOrchestrator(nil).RunSweep(ctx, testhelpers.BuildLineAScenario(), nil, 1)
	assert.ErrorContains(t, err, "no initial capacities provided")

	_, err = newTestOrchestrator(failingRuns{}).RunSweep(ctx, testhelpers.BuildLineAScenario(), []int{400}, 1)
	assert.ErrorContains(t, err, "failed to record sweep run for capacity 400")
}

package planning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testhelpers "github.com/vsinha/capplan/pkg/application/services/testing"
	"github.com/vsinha/capplan/pkg/domain/entities"
)

func TestSweep_KeepsInputOrder(t *testing.T) {
	capacities := []int{400, 0, 1000, 650}

	rows, err := newTestPlanner().Sweep(context.Background(), testhelpers.BuildLineAScenario(), capacities, 2)
	require.NoError(t, err)
	require.Len(t, rows, len(capacities))

	for i, row := range rows {
		assert.Equal(t, capacities[i], row.InitialCapacity)
	}

	require.NoError(t, rows[0].Err)
	assert.Equal(t, 1, rows[0].Result.SelectedCount())
	assert.Equal(t, 2020, rows[0].Result.Commitments[0].CommitYear)

	assert.Nil(t, rows[1].Result)
	assert.ErrorIs(t, rows[1].Err, entities.ErrSolverNonOptimal)

	require.NoError(t, rows[2].Err)
	assert.Equal(t, 0, rows[2].Result.SelectedCount())

	require.NoError(t, rows[3].Err)
	assert.Equal(t, 1, rows[3].Result.SelectedCount())
	assert.Equal(t, 2020, rows[3].Result.Commitments[0].CommitYear, "LineA must be online for 2021")

	assert.NotEqual(t, rows[0].Result.RunID, rows[3].Result.RunID)
}

func TestSweep_DefaultParallelism(t *testing.T) {
	rows, err := newTestPlanner().Sweep(context.Background(), testhelpers.BuildChoiceScenario(), []int{400, 700, 1000}, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, 2, rows[0].Result.SelectedCount())
	assert.Equal(t, 1, rows[1].Result.SelectedCount())
	assert.Equal(t, 0, rows[2].Result.SelectedCount())
}

func TestSweep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, err := newTestPlanner().Sweep(ctx, testhelpers.BuildLineAScenario(), []int{400, 500}, 1)
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSweep_NilDataset(t *testing.T) {
	_, err := newTestPlanner().Sweep(context.Background(), nil, []int{400}, 1)
	assert.ErrorIs(t, err, entities.ErrModelConstruction)
}

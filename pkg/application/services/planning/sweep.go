package planning

import (
	"context"
	"fmt"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/capplan/pkg/application/dto"
	"github.com/vsinha/capplan/pkg/domain/entities"
)

// Sweep plans ds once per initial capacity, running at most parallelism
// scenarios at a time (parallelism <= 0 means GOMAXPROCS). Each scenario
// builds its own model. A failed scenario is reported in its row and does not
// stop the others; only cancellation of ctx aborts the sweep. Rows are
// returned in the order of capacities.
func (p *Planner) Sweep(ctx context.Context, ds *entities.PlanningDataset, capacities []int, parallelism int) ([]dto.SweepRow, error) {
	if ds == nil {
		return nil, entities.NewModelConstructionError("planning dataset is nil")
	}
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}

	rows := make([]dto.SweepRow, len(capacities))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)

	for i, capacity := range capacities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := p.Plan(gctx, ds, capacity)
			rows[i] = dto.SweepRow{InitialCapacity: capacity, Result: result, Err: err}
			if err != nil {
				p.logger.Debug("sweep scenario failed", zap.Int("initial_capacity", capacity), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("capacity sweep: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("capacity sweep: %w", err)
	}
	return rows, nil
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/capplan/pkg/domain/entities"
	"github.com/vsinha/capplan/pkg/domain/repositories"
)

// PlanRunRepository provides in-memory plan history storage
type PlanRunRepository struct {
	mu      sync.RWMutex
	runs    []entities.PlanRun
	runsMap map[string]int
}

// NewPlanRunRepository creates a new in-memory plan run repository
func NewPlanRunRepository(expectedRuns int) *PlanRunRepository {
	return &PlanRunRepository{
		runs:    make([]entities.PlanRun, 0, expectedRuns),
		runsMap: make(map[string]int, expectedRuns),
	}
}

// Verify interface compliance
var _ repositories.PlanRunRepository = (*PlanRunRepository)(nil)

// Save stores run, replacing any run with the same ID
func (r *PlanRunRepository) Save(_ context.Context, run *entities.PlanRun) error {
	if run == nil {
		return fmt.Errorf("plan run is nil")
	}
	if run.ID == "" {
		return fmt.Errorf("plan run ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyRun(run)
	if index, exists := r.runsMap[run.ID]; exists {
		r.runs[index] = stored
		return nil
	}
	r.runsMap[run.ID] = len(r.runs)
	r.runs = append(r.runs, stored)
	return nil
}

// Get returns the run with the given ID
func (r *PlanRunRepository) Get(_ context.Context, id string) (*entities.PlanRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	index, exists := r.runsMap[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", repositories.ErrPlanRunNotFound, id)
	}
	run := copyRun(&r.runs[index])
	return &run, nil
}

// List returns runs newest first
func (r *PlanRunRepository) List(_ context.Context, limit int) ([]*entities.PlanRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*entities.PlanRun, 0, len(r.runs))
	for i := range r.runs {
		run := copyRun(&r.runs[i])
		runs = append(runs, &run)
	}
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// copyRun detaches the stored run from caller-owned slices
func copyRun(run *entities.PlanRun) entities.PlanRun {
	out := *run
	out.Plans = make([]entities.PlanRecord, len(run.Plans))
	for i, p := range run.Plans {
		p.SelectedExpansions = append([]entities.ExpansionName(nil), p.SelectedExpansions...)
		out.Plans[i] = p
	}
	out.Costs = append([]entities.CostBreakdown(nil), run.Costs...)
	return out
}

package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

// ErrPlanRunNotFound is returned when a run ID is not in the history
var ErrPlanRunNotFound = errors.New("plan run not found")

// PlanRunRepository stores completed planning runs
type PlanRunRepository interface {
	Save(ctx context.Context, run *entities.PlanRun) error
	Get(ctx context.Context, id string) (*entities.PlanRun, error)
	// List returns runs newest first; limit <= 0 returns every run.
	List(ctx context.Context, limit int) ([]*entities.PlanRun, error)
}

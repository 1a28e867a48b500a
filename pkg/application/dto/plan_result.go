package dto

import (
	"time"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

// PlanResult contains the complete output of one planning run
type PlanResult struct {
	RunID           string                   `json:"run_id"`
	InitialCapacity int                      `json:"initial_capacity"`
	FirstYear       int                      `json:"first_year"`
	LastYear        int                      `json:"last_year"`
	Termination     string                   `json:"termination"`
	Objective       float64                  `json:"objective"`
	Nodes           int                      `json:"nodes"`
	SolveTime       time.Duration            `json:"solve_time"`
	Plans           []entities.PlanRecord    `json:"plans"`
	Costs           []entities.CostBreakdown `json:"costs"`
	Summary         entities.Summary         `json:"summary"`
	Commitments     []Commitment             `json:"commitments"`
}

// Commitment is one selected expansion with its build window
type Commitment struct {
	Expansion     entities.ExpansionName `json:"expansion"`
	CommitYear    int                    `json:"commit_year"`
	AvailableYear int                    `json:"available_year"`
	AddedCapacity float64                `json:"added_capacity"`
}

// SelectedCount returns the number of expansions committed over the horizon
func (r *PlanResult) SelectedCount() int {
	n := 0
	for _, p := range r.Plans {
		n += len(p.SelectedExpansions)
	}
	return n
}

// ToPlanRun converts the result into a history record
func (r *PlanResult) ToPlanRun(createdAt time.Time) *entities.PlanRun {
	return &entities.PlanRun{
		ID:              r.RunID,
		CreatedAt:       createdAt,
		InitialCapacity: r.InitialCapacity,
		FirstYear:       r.FirstYear,
		LastYear:        r.LastYear,
		Objective:       r.Objective,
		Summary:         r.Summary,
		Plans:           r.Plans,
		Costs:           r.Costs,
	}
}

// SweepRow is the outcome of one scenario in a capacity sweep. Exactly one of
// Result and Err is set.
type SweepRow struct {
	InitialCapacity int
	Result          *PlanResult
	Err             error
}

package events

import (
	"time"

	"github.com/vsinha/capplan/pkg/domain/entities"
)

const (
	ModelBuiltEvent     = "model.built"
	SolveCompletedEvent = "solve.completed"
	SolveFailedEvent    = "solve.failed"
	PlanExtractedEvent  = "plan.extracted"
)

// AllPlanningEvents lists every event type a planning run can emit
var AllPlanningEvents = []string{
	ModelBuiltEvent,
	SolveCompletedEvent,
	SolveFailedEvent,
	PlanExtractedEvent,
}

type ModelBuilt struct {
	InitialCapacity int `json:"initial_capacity"`
	Variables       int `json:"variables"`
	Constraints     int `json:"constraints"`
}

type SolveCompleted struct {
	Termination string        `json:"termination"`
	Objective   float64       `json:"objective"`
	Nodes       int           `json:"nodes"`
	Duration    time.Duration `json:"duration"`
}

type SolveFailed struct {
	Termination string `json:"termination,omitempty"`
	Reason      string `json:"reason"`
}

type PlanExtracted struct {
	Years    int              `json:"years"`
	Selected int              `json:"selected"`
	Summary  entities.Summary `json:"summary"`
}

func NewModelBuiltEvent(runID string, data ModelBuilt) Event {
	return newRunEvent(ModelBuiltEvent, runID, data)
}

func NewSolveCompletedEvent(runID string, data SolveCompleted) Event {
	return newRunEvent(SolveCompletedEvent, runID, data)
}

func NewSolveFailedEvent(runID string, data SolveFailed) Event {
	return newRunEvent(SolveFailedEvent, runID, data)
}

func NewPlanExtractedEvent(runID string, data PlanExtracted) Event {
	return newRunEvent(PlanExtractedEvent, runID, data)
}

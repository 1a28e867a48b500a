package events

import (
	"go.uber.org/zap"
)

// LogHandler writes every planning event it receives to a structured logger
type LogHandler struct {
	logger *zap.Logger
}

func NewLogHandler(logger *zap.Logger) *LogHandler {
	return &LogHandler{logger: logger}
}

func (h *LogHandler) Accepts(string) bool { return true }

func (h *LogHandler) Handle(event Event) error {
	fields := []zap.Field{
		zap.String("run", event.RunID()),
		zap.Int("seq", event.Sequence()),
	}

	switch data := event.Payload().(type) {
	case ModelBuilt:
		fields = append(fields,
			zap.Int("initial_capacity", data.InitialCapacity),
			zap.Int("variables", data.Variables),
			zap.Int("constraints", data.Constraints))
	case SolveCompleted:
		fields = append(fields,
			zap.String("termination", data.Termination),
			zap.Float64("objective", data.Objective),
			zap.Int("nodes", data.Nodes),
			zap.Duration("duration", data.Duration))
	case SolveFailed:
		fields = append(fields,
			zap.String("termination", data.Termination),
			zap.String("reason", data.Reason))
	case PlanExtracted:
		fields = append(fields,
			zap.Int("years", data.Years),
			zap.Int("selected", data.Selected),
			zap.String("total_cost", data.Summary.TotalCost.StringFixed(0)))
	default:
		fields = append(fields, zap.Any("data", data))
	}

	h.logger.Debug(event.Type(), fields...)
	return nil
}

// Package events records what happens during planning runs. Every run is a
// stream keyed by its run ID, numbered from 1 in append order.
package events

import (
	"time"
)

// Event is one fact recorded about a planning run
type Event interface {
	Type() string
	RunID() string
	Payload() any
	At() time.Time
	// Sequence is the event's 1-based position in its run's stream
	Sequence() int
}

// Handler reacts to events as they are appended
type Handler interface {
	Accepts(eventType string) bool
	Handle(event Event) error
}

// Store appends events to per-run streams and replays them.
//
// Append notifies subscribed handlers synchronously; a handler error is
// returned after the event has been stored.
type Store interface {
	Append(event Event) error
	Stream(runID string, fromSequence int) ([]Event, error)
	Subscribe(eventTypes []string, handler Handler) error
}

// RunEvent is the Event the planner emits
type RunEvent struct {
	Kind string
	Run  string
	Data any
	Time time.Time
	Seq  int
}

func (e RunEvent) Type() string { return e.Kind }
func (e RunEvent) RunID() string { return e.Run }
func (e RunEvent) Payload() any { return e.Data }
func (e RunEvent) At() time.Time { return e.Time }
func (e RunEvent) Sequence() int { return e.Seq }

// newRunEvent stamps an event with the current time. Its sequence is
// assigned by the store on append.
func newRunEvent(kind, runID string, data any) RunEvent {
	return RunEvent{Kind: kind, Run: runID, Data: data, Time: time.Now()}
}

package events

import (
	"errors"
	"fmt"
	"sync"
)

// MemoryStore keeps run streams in memory for the life of the process
type MemoryStore struct {
	mu       sync.RWMutex
	runs     map[string][]Event
	handlers map[string][]Handler
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:     make(map[string][]Event),
		handlers: make(map[string][]Handler),
	}
}

// Append stores the event at the next sequence of its run, then notifies
// handlers once the store lock is released
func (s *MemoryStore) Append(event Event) error {
	if event.RunID() == "" {
		return errors.New("event has no run ID")
	}

	s.mu.Lock()
	stored := RunEvent{
		Kind: event.Type(),
		Run:  event.RunID(),
		Data: event.Payload(),
		Time: event.At(),
		Seq:  len(s.runs[event.RunID()]) + 1,
	}
	s.runs[stored.Run] = append(s.runs[stored.Run], stored)
	handlers := append([]Handler(nil), s.handlers[stored.Kind]...)
	s.mu.Unlock()

	for _, h := range handlers {
		if !h.Accepts(stored.Kind) {
			continue
		}
		if err := h.Handle(stored); err != nil {
			return fmt.Errorf("handling event %s: %w", stored.Kind, err)
		}
	}
	return nil
}

// Stream returns a run's events from fromSequence on. Values below 1 read
// the whole stream; an unknown run has an empty stream.
func (s *MemoryStore) Stream(runID string, fromSequence int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stream := s.runs[runID]
	if fromSequence < 1 {
		fromSequence = 1
	}
	if fromSequence > len(stream) {
		return []Event{}, nil
	}
	return append([]Event(nil), stream[fromSequence-1:]...), nil
}

func (s *MemoryStore) Subscribe(eventTypes []string, handler Handler) error {
	if handler == nil {
		return errors.New("subscribing a nil handler")
	}
	if len(eventTypes) == 0 {
		return errors.New("subscribing to no event types")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range eventTypes {
		s.handlers[t] = append(s.handlers[t], handler)
	}
	return nil
}

package diag

import (
	"context"
	"sync"
)

// MemorySink keeps events in memory. Used in tests and when running
// without a database.
type MemorySink struct {
	mu     sync.Mutex
	events []*Event
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Append implements Sink.
func (s *MemorySink) Append(_ context.Context, event *Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of the appended events.
func (s *MemorySink) Events() []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Event, len(s.events))
	copy(out, s.events)
	return out
}

// ByStep returns appended events with the given step tag.
func (s *MemorySink) ByStep(step string) []*Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*Event
	for _, e := range s.events {
		if e.Step == step {
			out = append(out, e)
		}
	}
	return out
}

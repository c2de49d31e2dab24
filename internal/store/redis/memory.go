package redis

import (
	"context"
	"sync"

	"github.com/kodax/bulkpay/internal/domain/event"
)

// InMemoryStream is a process-local event log used when no Redis is
// configured (dev, tests). Same append-only contract as Stream.
type InMemoryStream struct {
	mu      sync.Mutex
	entries []event.Envelope
}

var _ event.Publisher = (*InMemoryStream)(nil)

func NewInMemoryStream() *InMemoryStream {
	return &InMemoryStream{}
}

func (s *InMemoryStream) Publish(_ context.Context, env event.Envelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, env)
	return nil
}

// Entries returns a snapshot of the log in append order.
func (s *InMemoryStream) Entries() []event.Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Envelope, len(s.entries))
	copy(out, s.entries)
	return out
}

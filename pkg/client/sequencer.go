package client

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/platinummonkey/gaslink/pkg/observability"
)

// RequestTicket identifies one in-flight request for a screen key
type RequestTicket struct {
	Key string
	ID  uuid.UUID
}

type inflight struct {
	id     uuid.UUID
	cancel context.CancelFunc
}

// Sequencer makes the latest request for a key win. Beginning a new request
// cancels the previous one for the same key, and Apply refuses results from
// any ticket that is no longer the latest.
type Sequencer struct {
	mu      sync.Mutex
	latest  map[string]inflight
	metrics *observability.Metrics
}

// NewSequencer creates a Sequencer. metrics may be nil.
func NewSequencer(metrics *observability.Metrics) *Sequencer {
	return &Sequencer{
		latest:  make(map[string]inflight),
		metrics: metrics,
	}
}

// Begin starts a request for key and returns its context and ticket. The
// returned cancel must be called once the request is finished.
func (s *Sequencer) Begin(ctx context.Context, key string) (context.Context, RequestTicket, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	t := RequestTicket{Key: key, ID: uuid.New()}

	s.mu.Lock()
	if prev, ok := s.latest[key]; ok {
		prev.cancel()
	}
	s.latest[key] = inflight{id: t.ID, cancel: cancel}
	s.mu.Unlock()

	return ctx, t, func() {
		cancel()
		s.mu.Lock()
		if cur, ok := s.latest[key]; ok && cur.id == t.ID {
			delete(s.latest, key)
		}
		s.mu.Unlock()
	}
}

// Apply runs fn if t is still the latest ticket for its key, otherwise it
// returns ErrStale. fn runs under the sequencer lock and must not call back
// into the Sequencer.
func (s *Sequencer) Apply(t RequestTicket, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.latest[t.Key]
	if !ok || cur.id != t.ID {
		if s.metrics != nil {
			s.metrics.StaleResponsesTotal.WithLabelValues(t.Key).Inc()
		}
		return ErrStale
	}
	fn()
	return nil
}

// Latest reports whether t is still the latest ticket for its key
func (s *Sequencer) Latest(t RequestTicket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.latest[t.Key]
	return ok && cur.id == t.ID
}

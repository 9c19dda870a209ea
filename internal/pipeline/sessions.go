package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/infra"
)

// Factory builds the coordinator for a new session id.
type Factory func(id string) (*Coordinator, error)

// SessionsOptions configures a Sessions registry.
type SessionsOptions struct {
	Factory  Factory
	IdleTTL  time.Duration
	Observer Observer
	Logger   *infra.Logger
	Now      func() time.Time
}

// Sessions maps session ids to coordinators. Each entry owns its own store;
// nothing is shared between sessions.
type Sessions struct {
	factory  Factory
	idleTTL  time.Duration
	observer Observer
	logger   *infra.Logger
	now      func() time.Time

	mu    sync.RWMutex
	items map[string]*Coordinator
}

// NewSessions returns an empty registry.
func NewSessions(opts SessionsOptions) *Sessions {
	s := &Sessions{
		factory:  opts.Factory,
		idleTTL:  opts.IdleTTL,
		observer: opts.Observer,
		logger:   opts.Logger,
		now:      opts.Now,
		items:    make(map[string]*Coordinator),
	}
	if s.observer == nil {
		s.observer = nopObserver{}
	}
	if s.logger == nil {
		s.logger = infra.NopLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Create registers a fresh session.
func (s *Sessions) Create() (*Coordinator, error) {
	if s.factory == nil {
		return nil, fmt.Errorf("pipeline: sessions: no factory configured")
	}
	id := uuid.NewString()
	c, err := s.factory(id)
	if err != nil {
		return nil, fmt.Errorf("pipeline: create session: %w", err)
	}
	s.mu.Lock()
	s.items[id] = c
	n := len(s.items)
	s.mu.Unlock()

	s.observer.SessionsChanged(n)
	s.logger.Debug().Str("session", id).Msg("pipeline: session created")
	return c, nil
}

// Get looks a session up by id.
func (s *Sessions) Get(id string) (*Coordinator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("pipeline: session %q: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

// Delete abandons a session and any run it has in flight.
func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	c, ok := s.items[id]
	delete(s.items, id)
	n := len(s.items)
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("pipeline: session %q: %w", id, domain.ErrNotFound)
	}
	c.Reset()
	s.observer.SessionsChanged(n)
	return nil
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep drops sessions idle for longer than the TTL. Sessions that are
// still submitting are kept.
func (s *Sessions) Sweep() int {
	if s.idleTTL <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.idleTTL)
	var evicted []*Coordinator

	s.mu.Lock()
	for id, c := range s.items {
		if c.State() == StateSubmitting || c.IdleSince().After(cutoff) {
			continue
		}
		delete(s.items, id)
		evicted = append(evicted, c)
	}
	n := len(s.items)
	s.mu.Unlock()

	for _, c := range evicted {
		c.Reset()
	}
	if len(evicted) > 0 {
		s.observer.SessionsChanged(n)
		s.logger.Info().Int("evicted", len(evicted)).Int("active", n).Msg("pipeline: idle sessions swept")
	}
	return len(evicted)
}

// RunJanitor sweeps every interval until ctx is done.
func (s *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 || s.idleTTL <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

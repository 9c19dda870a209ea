// Package session holds the per-user state that travels between pipeline
// stages.
package session

import (
	"sync"

	"hairfluencer/internal/domain"
)

// Store exclusively owns a domain.SessionState. Writes go through the setter
// methods; readers get a copy from Snapshot.
//
// The store does not check that a selection and source photo exist before a
// result is recorded. The pipeline coordinator is responsible for ordering.
type Store struct {
	mu    sync.RWMutex
	state domain.SessionState
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetSelection replaces the selected hairstyle.
func (s *Store) SetSelection(h domain.Hairstyle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectedHairstyle = &h
}

// SetSourcePhoto replaces the source photo.
func (s *Store) SetSourcePhoto(ref domain.PhotoRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SourcePhoto = ref
}

// SetResultPhoto replaces the edited photo.
func (s *Store) SetResultPhoto(ref domain.PhotoRef) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ResultPhoto = ref
}

// Reset clears every field in one step.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = domain.SessionState{}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() domain.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

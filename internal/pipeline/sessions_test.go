package pipeline

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hairfluencer/internal/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestSessions(t *testing.T, clock *fakeClock, ttl time.Duration, obs Observer) *Sessions {
	t.Helper()
	return NewSessions(SessionsOptions{
		IdleTTL:  ttl,
		Observer: obs,
		Now:      clock.Now,
		Factory: func(id string) (*Coordinator, error) {
			return NewCoordinator(Options{
				ID:      id,
				Encoder: passthroughEncoder,
				Editor:  newBlockingEditor(),
				Now:     clock.Now,
			})
		},
	})
}

func TestSessions_CreateGetDelete(t *testing.T) {
	obs := &observerRecorder{}
	s := newTestSessions(t, &fakeClock{now: time.Unix(0, 0)}, 0, obs)

	a, err := s.Create()
	require.NoError(t, err)
	b, err := s.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 2, s.Len())

	got, err := s.Get(a.ID())
	require.NoError(t, err)
	assert.Same(t, a, got)

	require.NoError(t, s.Delete(a.ID()))
	_, err = s.Get(a.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.Delete(a.ID()), domain.ErrNotFound)

	assert.Equal(t, []int{1, 2, 1}, obs.active)
}

func TestSessions_AreIsolated(t *testing.T) {
	s := newTestSessions(t, &fakeClock{now: time.Unix(0, 0)}, 0, nil)
	a, _ := s.Create()
	b, _ := s.Create()

	require.NoError(t, a.Select(pixie))
	assert.Nil(t, b.Snapshot().SelectedHairstyle)
}

func TestSessions_SweepEvictsIdle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestSessions(t, clock, time.Minute, nil)

	stale, _ := s.Create()
	clock.Advance(45 * time.Second)
	fresh, _ := s.Create()
	clock.Advance(30 * time.Second)

	assert.Equal(t, 1, s.Sweep())
	_, err := s.Get(stale.ID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestSessions_SweepDisabledWithoutTTL(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestSessions(t, clock, 0, nil)
	_, _ = s.Create()
	clock.Advance(24 * time.Hour)
	assert.Zero(t, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestSessions_CreateWithoutFactory(t *testing.T) {
	_, err := NewSessions(SessionsOptions{}).Create()
	assert.Error(t, err)
}

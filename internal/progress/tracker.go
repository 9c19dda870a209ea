package progress

import "sync"

const subscriberBuffer = 16

// Tracker remembers the latest checkpoint of a run and fans updates out to
// subscribers. It ignores any checkpoint lower than the current one so that
// observers only ever see progress move forward.
type Tracker struct {
	mu      sync.RWMutex
	current Checkpoint
	history []Checkpoint
	subs    map[int]chan Checkpoint
	nextID  int
	closed  bool
}

// NewTracker starts at Initial.
func NewTracker() *Tracker {
	return &Tracker{current: Initial, subs: make(map[int]chan Checkpoint)}
}

// Report implements Sink.
func (t *Tracker) Report(cp Checkpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed || cp.Percent < t.current.Percent {
		return
	}
	t.current = cp
	t.history = append(t.history, cp)
	for _, ch := range t.subs {
		select {
		case ch <- cp:
		default:
		}
	}
}

// Current returns the latest checkpoint.
func (t *Tracker) Current() Checkpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// History returns every checkpoint accepted so far.
func (t *Tracker) History() []Checkpoint {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]Checkpoint(nil), t.history...)
}

// Done reports whether the run has finished.
func (t *Tracker) Done() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Subscribe returns a channel of future checkpoints and a cancel func. The
// channel is closed when the tracker is closed or the subscription cancelled.
func (t *Tracker) Subscribe() (<-chan Checkpoint, func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan Checkpoint, subscriberBuffer)
	if t.closed {
		close(ch)
		return ch, func() {}
	}
	id := t.nextID
	t.nextID++
	t.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			if sub, ok := t.subs[id]; ok {
				delete(t.subs, id)
				close(sub)
			}
		})
	}
}

// Close ends the run and releases subscribers.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for id, ch := range t.subs {
		delete(t.subs, id)
		close(ch)
	}
}

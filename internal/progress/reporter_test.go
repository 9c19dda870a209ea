package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu  sync.Mutex
	got []Checkpoint
}

func (r *recorder) Report(cp Checkpoint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, cp)
}

func (r *recorder) all() []Checkpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Checkpoint(nil), r.got...)
}

func TestDefaultCheckpointTable(t *testing.T) {
	want := []Checkpoint{
		{20, "Analyzing your face..."},
		{40, "Loading hairstyle..."},
		{60, "Applying AI magic..."},
		{80, "Finalizing your new look..."},
		{90, "Processing with AI..."},
		{100, "Complete!"},
	}
	assert.Equal(t, want, DefaultCheckpoints)
	assert.Equal(t, Checkpoint{0, "Preparing your photo..."}, Initial)
}

func TestReporter_RunEmitsAllInOrder(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(Options{})

	require.NoError(t, r.Run(context.Background(), nil, rec))
	assert.Equal(t, DefaultCheckpoints, rec.all())
}

func TestReporter_FinalCheckpointWaitsForReady(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(Options{})
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() { done <- r.Run(context.Background(), ready, rec) }()

	require.Eventually(t, func() bool { return len(rec.all()) == len(DefaultCheckpoints)-1 }, time.Second, time.Millisecond)
	select {
	case <-done:
		t.Fatal("Run returned before ready was closed")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, 90, rec.all()[len(rec.all())-1].Percent)

	close(ready)
	require.NoError(t, <-done)
	assert.Equal(t, 100, rec.all()[len(rec.all())-1].Percent)
}

func TestReporter_CancelStopsEarly(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(Options{Dwell: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx, nil, rec)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.all())
}

func TestReporter_DwellIsObserved(t *testing.T) {
	rec := &recorder{}
	r := NewReporter(Options{Dwell: 5 * time.Millisecond, FinalHold: 10 * time.Millisecond})

	start := time.Now()
	require.NoError(t, r.Run(context.Background(), nil, rec))
	assert.GreaterOrEqual(t, time.Since(start), 6*5*time.Millisecond+10*time.Millisecond)
}

func TestReporter_CustomTableIsCopied(t *testing.T) {
	table := []Checkpoint{{50, "half"}, {100, "done"}}
	r := NewReporter(Options{Checkpoints: table})
	table[0].Status = "changed"
	assert.Equal(t, "half", r.Checkpoints()[0].Status)
}

func TestTracker_MonotonicAndFanOut(t *testing.T) {
	tr := NewTracker()
	assert.Equal(t, Initial, tr.Current())

	ch, cancel := tr.Subscribe()
	defer cancel()

	tr.Report(Checkpoint{40, "b"})
	tr.Report(Checkpoint{20, "a"})
	tr.Report(Checkpoint{60, "c"})

	assert.Equal(t, Checkpoint{60, "c"}, tr.Current())
	assert.Equal(t, []Checkpoint{{40, "b"}, {60, "c"}}, tr.History())
	assert.Equal(t, Checkpoint{40, "b"}, <-ch)
	assert.Equal(t, Checkpoint{60, "c"}, <-ch)

	tr.Close()
	_, open := <-ch
	assert.False(t, open)
	assert.True(t, tr.Done())

	tr.Report(Checkpoint{100, "late"})
	assert.Equal(t, Checkpoint{60, "c"}, tr.Current())
}

func TestTracker_SubscribeAfterClose(t *testing.T) {
	tr := NewTracker()
	tr.Close()
	ch, cancel := tr.Subscribe()
	defer cancel()
	_, open := <-ch
	assert.False(t, open)
}

func TestTracker_CancelIsIdempotent(t *testing.T) {
	tr := NewTracker()
	_, cancel := tr.Subscribe()
	cancel()
	cancel()
	tr.Close()
}

func TestMultiSink(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	MultiSink{a, nil, b}.Report(Checkpoint{20, "x"})
	assert.Len(t, a.all(), 1)
	assert.Len(t, b.all(), 1)
}

// Package progress drives the cosmetic progress indicator shown while a photo
// is being edited. Checkpoints are timed; they do not measure real work.
package progress

import (
	"context"
	"time"
)

// Checkpoint is a fixed (percentage, status text) pair.
type Checkpoint struct {
	Percent int    `json:"percent"`
	Status  string `json:"status"`
}

// Initial is shown before the first checkpoint.
var Initial = Checkpoint{Percent: 0, Status: "Preparing your photo..."}

// DefaultCheckpoints is the sequence every processing run walks through.
var DefaultCheckpoints = []Checkpoint{
	{Percent: 20, Status: "Analyzing your face..."},
	{Percent: 40, Status: "Loading hairstyle..."},
	{Percent: 60, Status: "Applying AI magic..."},
	{Percent: 80, Status: "Finalizing your new look..."},
	{Percent: 90, Status: "Processing with AI..."},
	{Percent: 100, Status: "Complete!"},
}

const (
	DefaultDwell     = 800 * time.Millisecond
	DefaultFinalHold = time.Second
)

// Sink receives checkpoints.
type Sink interface {
	Report(cp Checkpoint)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(cp Checkpoint)

// Report implements Sink.
func (f SinkFunc) Report(cp Checkpoint) { f(cp) }

// MultiSink forwards every checkpoint to each sink in order.
type MultiSink []Sink

// Report implements Sink.
func (m MultiSink) Report(cp Checkpoint) {
	for _, s := range m {
		if s != nil {
			s.Report(cp)
		}
	}
}

// Options configures a Reporter. Zero durations are honoured, which tests use
// to run the sequence without waiting.
type Options struct {
	Checkpoints []Checkpoint
	Dwell       time.Duration
	FinalHold   time.Duration
}

// DefaultOptions mirrors the timings of the mobile app.
func DefaultOptions() Options {
	return Options{Checkpoints: DefaultCheckpoints, Dwell: DefaultDwell, FinalHold: DefaultFinalHold}
}

// Reporter walks a checkpoint table on a timer.
type Reporter struct {
	checkpoints []Checkpoint
	dwell       time.Duration
	finalHold   time.Duration
}

// NewReporter builds a reporter. An empty table falls back to
// DefaultCheckpoints.
func NewReporter(opts Options) *Reporter {
	cps := opts.Checkpoints
	if len(cps) == 0 {
		cps = DefaultCheckpoints
	}
	return &Reporter{
		checkpoints: append([]Checkpoint(nil), cps...),
		dwell:       opts.Dwell,
		finalHold:   opts.FinalHold,
	}
}

// Checkpoints returns a copy of the table.
func (r *Reporter) Checkpoints() []Checkpoint {
	return append([]Checkpoint(nil), r.checkpoints...)
}

// Run reports each checkpoint after the dwell time. The last checkpoint is
// held back until ready is closed, so "complete" is never shown before the
// real work has finished; it is then held for FinalHold before Run returns.
// A nil ready channel does not gate the last checkpoint.
func (r *Reporter) Run(ctx context.Context, ready <-chan struct{}, sink Sink) error {
	for i, cp := range r.checkpoints {
		if err := sleep(ctx, r.dwell); err != nil {
			return err
		}
		if i == len(r.checkpoints)-1 && ready != nil {
			select {
			case <-ready:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		sink.Report(cp)
	}
	return sleep(ctx, r.finalHold)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

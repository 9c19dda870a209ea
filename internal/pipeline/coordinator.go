package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hairfluencer/internal/domain"
	"hairfluencer/internal/imagegen"
	"hairfluencer/internal/infra"
	"hairfluencer/internal/progress"
	"hairfluencer/internal/session"
)

// PhotoEncoder turns a source photo into the payload sent to the editor.
type PhotoEncoder interface {
	Encode(ctx context.Context, ref domain.PhotoRef) (imagegen.EncodedPhoto, error)
}

// Observer receives run and registry events, typically for metrics.
type Observer interface {
	EditFinished(outcome string, elapsed time.Duration)
	SessionsChanged(active int)
}

type nopObserver struct{}

func (nopObserver) EditFinished(string, time.Duration) {}
func (nopObserver) SessionsChanged(int)                {}

// Options configures a Coordinator.
type Options struct {
	ID       string
	Store    *session.Store
	Encoder  PhotoEncoder
	Editor   imagegen.Editor
	Reporter *progress.Reporter
	Observer Observer
	Logger   *infra.Logger
	Now      func() time.Time
}

// Coordinator drives one session through select, photo, process and
// reset. All methods are safe for concurrent use.
type Coordinator struct {
	id       string
	store    *session.Store
	encoder  PhotoEncoder
	editor   imagegen.Editor
	reporter *progress.Reporter
	observer Observer
	logger   *infra.Logger
	now      func() time.Time

	mu         sync.Mutex
	machine    *Machine
	gen        uint64
	cancel     context.CancelFunc
	done       chan struct{}
	tracker    *progress.Tracker
	failure    *Failure
	lastActive time.Time
}

// NewCoordinator wires a coordinator. Editor and Encoder are required.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if opts.Editor == nil {
		return nil, errors.New("pipeline: editor is required")
	}
	if opts.Encoder == nil {
		return nil, errors.New("pipeline: encoder is required")
	}
	c := &Coordinator{
		id:       opts.ID,
		store:    opts.Store,
		encoder:  opts.Encoder,
		editor:   opts.Editor,
		reporter: opts.Reporter,
		observer: opts.Observer,
		logger:   opts.Logger,
		now:      opts.Now,
		machine:  NewMachine(),
	}
	if c.store == nil {
		c.store = session.NewStore()
	}
	if c.reporter == nil {
		c.reporter = progress.NewReporter(progress.DefaultOptions())
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.logger == nil {
		c.logger = infra.NopLogger()
	}
	if c.now == nil {
		c.now = time.Now
	}
	c.tracker = progress.NewTracker()
	c.tracker.Close()
	c.lastActive = c.now()
	return c, nil
}

// ID returns the session identifier, empty for standalone coordinators.
func (c *Coordinator) ID() string { return c.id }

// State returns the current flow state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Snapshot returns a detached copy of the session data.
func (c *Coordinator) Snapshot() domain.SessionState {
	return c.store.Snapshot()
}

// Failure returns the notification of the last failed run, if any.
func (c *Coordinator) Failure() *Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// Progress returns the tracker of the current or most recent run.
func (c *Coordinator) Progress() *progress.Tracker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker
}

// IdleSince reports when the session was last touched.
func (c *Coordinator) IdleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Select records the chosen hairstyle.
func (c *Coordinator) Select(h domain.Hairstyle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()
	if err := c.guardBusy(); err != nil {
		return err
	}
	if err := c.machine.Fire(EventSelect); err != nil {
		return err
	}
	c.store.SetSelection(h)
	c.failure = nil
	if c.machine.State() == StateSelected && !c.store.Snapshot().SourcePhoto.IsZero() {
		_ = c.machine.Fire(EventPhoto)
	}
	c.logger.Debug().Str("session", c.id).Str("hairstyle", h.ID).Msg("pipeline: hairstyle selected")
	return nil
}

// SupplyPhoto records the source photo.
func (c *Coordinator) SupplyPhoto(ref domain.PhotoRef) error {
	if ref.IsZero() {
		return domain.ErrMissingSourcePhoto
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()
	if err := c.guardBusy(); err != nil {
		return err
	}
	if err := c.machine.Fire(EventPhoto); err != nil {
		return err
	}
	c.store.SetSourcePhoto(ref)
	c.failure = nil
	return nil
}

// AcquirePhoto pulls a photo from src. A refused permission yields a Notice
// and leaves the session untouched.
func (c *Coordinator) AcquirePhoto(ctx context.Context, src domain.PhotoSource) (*Notice, error) {
	ref, err := src.Acquire(ctx)
	if err != nil {
		if n := NoticeFor(err); n != nil {
			c.logger.Info().Str("session", c.id).Err(err).Msg("pipeline: photo source refused")
			return n, nil
		}
		return nil, fmt.Errorf("pipeline: acquire photo: %w", err)
	}
	return nil, c.SupplyPhoto(ref)
}

func (c *Coordinator) guardBusy() error {
	if c.machine.State() == StateSubmitting {
		return domain.ErrBusy
	}
	return nil
}

// Process runs one edit synchronously. Checkpoints go to the run's tracker
// and to sink when it is non-nil.
func (c *Coordinator) Process(ctx context.Context, sink progress.Sink) (domain.PhotoRef, error) {
	r, err := c.begin(ctx)
	if err != nil {
		return "", err
	}
	return c.execute(r, sink)
}

// Start runs one edit in the background. ctx bounds the run, so callers
// pass a long-lived context rather than a request context.
func (c *Coordinator) Start(ctx context.Context) error {
	r, err := c.begin(ctx)
	if err != nil {
		return err
	}
	go func() { _, _ = c.execute(r, nil) }()
	return nil
}

// Wait blocks until the current run, if any, has finished.
func (c *Coordinator) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel aborts an in-flight run. It reports whether there was one.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()
	if c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// Reset clears the session and abandons any in-flight run.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.gen++
	c.store.Reset()
	c.machine = NewMachine()
	c.failure = nil
}

type run struct {
	gen     uint64
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	tracker *progress.Tracker
	state   domain.SessionState
}

func (c *Coordinator) begin(ctx context.Context) (*run, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastActive = c.now()
	if err := c.guardBusy(); err != nil {
		return nil, err
	}
	snap := c.store.Snapshot()
	switch {
	case snap.SelectedHairstyle == nil:
		return nil, fmt.Errorf("pipeline: %s: %w", MissingInputMessage, domain.ErrMissingSelection)
	case snap.SourcePhoto.IsZero():
		return nil, fmt.Errorf("pipeline: %s: %w", MissingInputMessage, domain.ErrMissingSourcePhoto)
	}
	if err := c.machine.Fire(EventSubmit); err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.gen++
	c.cancel = cancel
	c.done = make(chan struct{})
	c.tracker = progress.NewTracker()
	c.failure = nil
	return &run{
		gen:     c.gen,
		ctx:     runCtx,
		cancel:  cancel,
		done:    c.done,
		tracker: c.tracker,
		state:   snap,
	}, nil
}

// execute runs the progress sequence and the edit as two tasks and joins
// them. The terminal checkpoint is released only once the edit succeeded.
func (c *Coordinator) execute(r *run, sink progress.Sink) (domain.PhotoRef, error) {
	defer close(r.done)
	defer r.cancel()

	start := c.now()
	ready := make(chan struct{})
	var result domain.PhotoRef

	g, gctx := errgroup.WithContext(r.ctx)
	g.Go(func() error {
		return c.reporter.Run(gctx, ready, progress.MultiSink{r.tracker, sink})
	})
	g.Go(func() error {
		ref, err := c.edit(gctx, r.state)
		if err != nil {
			return err
		}
		result = ref
		close(ready)
		return nil
	})
	err := g.Wait()
	r.tracker.Close()

	outcome := c.finish(r, result, err)
	c.observer.EditFinished(outcome, c.now().Sub(start))
	if err != nil {
		return "", err
	}
	return result, nil
}

func (c *Coordinator) edit(ctx context.Context, state domain.SessionState) (domain.PhotoRef, error) {
	encoded, err := c.encoder.Encode(ctx, state.SourcePhoto)
	if err != nil {
		return "", err
	}
	req, err := imagegen.NewEditRequest(state.SelectedHairstyle, encoded.Data)
	if err != nil {
		return "", err
	}
	res, err := c.editor.Submit(ctx, req.EncodedPhoto, req.Style.Name, req.Style.Description)
	if err != nil {
		return "", err
	}
	return res.DataURI(), nil
}

func (c *Coordinator) finish(r *run, result domain.PhotoRef, err error) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.logger.With().Str("session", c.id).Logger()
	if r.gen != c.gen {
		log.Debug().Msg("pipeline: run superseded by reset")
		return "abandoned"
	}
	c.cancel = nil

	switch {
	case err == nil:
		c.store.SetResultPhoto(result)
		_ = c.machine.Fire(EventSucceed)
		log.Info().Str("hairstyle", r.state.SelectedHairstyle.Name).Msg("pipeline: edit complete")
		return "success"
	case r.ctx.Err() != nil:
		_ = c.machine.Fire(EventCancel)
		log.Info().Msg("pipeline: edit cancelled")
		return "cancelled"
	case errors.Is(err, domain.ErrEncoding):
		c.store.SetSourcePhoto("")
		_ = c.machine.Fire(EventEncodingFail)
		c.failure = Classify(err)
	default:
		_ = c.machine.Fire(EventFail)
		c.failure = Classify(err)
	}
	log.Warn().Err(err).Str("kind", c.failure.Kind).Msg("pipeline: edit failed")
	return c.failure.Kind
}

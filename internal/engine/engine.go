// Package engine runs the D-pad profile on a single goroutine and feeds it
// input, timer expirations and housekeeping work.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/button"
	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/gamepad"
	"github.com/soar/padmapper/internal/logging"
	"github.com/soar/padmapper/internal/output"
	"github.com/soar/padmapper/internal/profile"
	"github.com/soar/padmapper/internal/timer"
)

// ErrStopped is returned by Do once the engine loop has exited.
var ErrStopped = errors.New("engine stopped")

const (
	defaultQueueSize    = 256
	defaultMoveInterval = 10 * time.Millisecond
	// Watcher events this soon after our own save are ignored.
	selfWriteWindow = 2 * time.Second
)

// Options configures an Engine. Zero values pick defaults.
type Options struct {
	ProfilePath      string
	AutosaveInterval time.Duration
	Watch            bool
	MoveInterval     time.Duration
	QueueSize        int
	Clock            clockwork.Clock
	Registry         *prometheus.Registry
	Listener         dpad.Listener
}

// Engine owns the profile and everything that touches it.
type Engine struct {
	opts    Options
	clock   clockwork.Clock
	queue   *timer.Queue
	sink    output.Sink
	mover   *output.Mover
	device  *profile.Device
	metrics *metrics
	log     *zerolog.Logger

	inbox   chan func()
	stopped chan struct{}

	lastSave  time.Time
	lastTick  time.Time
	committed map[[2]int]dpad.Direction

	snapMu sync.RWMutex
	snap   Snapshot
}

// New creates an engine emitting through sink.
func New(sink output.Sink, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MoveInterval <= 0 {
		opts.MoveInterval = defaultMoveInterval
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	e := &Engine{
		opts:      opts,
		clock:     opts.Clock,
		queue:     timer.NewQueue(opts.Clock),
		sink:      sink,
		mover:     output.NewMover(sink),
		metrics:   newMetrics(opts.Registry),
		log:       logging.Subsystem("engine"),
		inbox:     make(chan func(), opts.QueueSize),
		stopped:   make(chan struct{}),
		committed: make(map[[2]int]dpad.Direction),
	}
	env := &button.Env{Sink: sink, Mover: e.mover, Observer: e.observe}
	e.device = profile.NewDevice("", env, e.queue, opts.Listener)
	e.publish()
	return e
}

// Registry holds the engine's metrics.
func (e *Engine) Registry() *prometheus.Registry { return e.opts.Registry }

// Submit queues a hat reading. When the queue is full a held direction is
// dropped and false is returned. A centered reading is never dropped, since
// losing it would leave buttons held; it waits for room instead and only
// fails once the engine has stopped.
func (e *Engine) Submit(ev gamepad.HatEvent) bool {
	f := func() { e.dispatch(ev) }
	select {
	case e.inbox <- f:
		return true
	default:
	}
	if ev.Direction != dpad.Centered {
		e.metrics.dropped.Inc()
		return false
	}
	select {
	case e.inbox <- f:
		return true
	case <-e.stopped:
		return false
	}
}

// Do runs f on the engine goroutine and waits for it to finish. Work is
// handled in submission order, after any hat readings submitted earlier.
func (e *Engine) Do(ctx context.Context, f func(d *profile.Device)) error {
	done := make(chan struct{})
	call := func() {
		defer close(done)
		f(e.device)
	}
	select {
	case e.inbox <- call:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	}
}

// post queues f without waiting.
func (e *Engine) post(f func()) {
	select {
	case e.inbox <- f:
	case <-e.stopped:
	}
}

// Snapshot returns the state published after the last loop iteration.
func (e *Engine) Snapshot() Snapshot {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snap
}

// SwitchSet switches the active set from another goroutine.
func (e *Engine) SwitchSet(ctx context.Context, set int) error {
	var err error
	if doErr := e.Do(ctx, func(d *profile.Device) { err = d.SwitchSet(set) }); doErr != nil {
		return doErr
	}
	return err
}

// Save writes the profile now.
func (e *Engine) Save(ctx context.Context) error {
	var err error
	if doErr := e.Do(ctx, func(*profile.Device) { err = e.save() }); doErr != nil {
		return doErr
	}
	return err
}

// Run loads the profile and processes work until ctx is cancelled. On exit
// every button is released and unsaved edits are written.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.stopped)

	e.load()

	if e.opts.AutosaveInterval > 0 && e.opts.ProfilePath != "" {
		sched, err := e.startAutosave()
		if err != nil {
			return err
		}
		defer func() {
			if err := sched.Shutdown(); err != nil {
				e.log.Warn().Err(err).Msg("autosave scheduler shutdown")
			}
		}()
	}

	if e.opts.Watch && e.opts.ProfilePath != "" {
		go func() {
			err := profile.Watch(ctx, e.opts.ProfilePath, func() { e.post(e.reload) })
			if err != nil {
				e.log.Warn().Err(err).Msg("profile watcher stopped")
			}
		}()
	}

	deadline := e.clock.NewTimer(time.Hour)
	defer deadline.Stop()
	ticker := e.clock.NewTicker(e.opts.MoveInterval)
	defer ticker.Stop()
	e.lastTick = e.clock.Now()

	e.log.Info().Str("profile", e.opts.ProfilePath).Msg("engine started")
	for {
		e.arm(deadline)

		select {
		case <-ctx.Done():
			e.shutdown()
			return nil
		case f := <-e.inbox:
			f()
		case <-e.queue.Wake():
		case <-deadline.Chan():
			e.queue.RunDue()
		case now := <-ticker.Chan():
			e.step(now)
			continue
		}
		e.publish()
	}
}

// arm points the deadline timer at the earliest queued callback.
func (e *Engine) arm(t clockwork.Timer) {
	next, ok := e.queue.Next()
	if !ok {
		t.Stop()
		return
	}
	d := next.Sub(e.clock.Now())
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}

func (e *Engine) dispatch(ev gamepad.HatEvent) {
	e.metrics.inputs.Inc()
	e.device.Dispatch(ev.Hat, ev.Direction)
}

func (e *Engine) step(now time.Time) {
	dt := now.Sub(e.lastTick)
	e.lastTick = now
	if !e.mover.Active() {
		return
	}
	if err := e.mover.Step(dt); err != nil {
		e.log.Warn().Err(err).Msg("pointer move failed")
	}
}

func (e *Engine) observe(b *button.Button, pressed bool) {
	state := "release"
	if pressed {
		state = "press"
	}
	e.metrics.buttonEvents.WithLabelValues(state).Inc()
}

// publish copies the state for other goroutines and counts committed
// direction changes.
func (e *Engine) publish() {
	snap := takeSnapshot(e.device, e.opts.ProfilePath)
	for _, r := range e.device.Resolvers(e.device.ActiveSet()) {
		key := [2]int{r.OriginSet(), r.Index()}
		if dir := r.CurrentDirection(); e.committed[key] != dir {
			e.committed[key] = dir
			e.metrics.transitions.Inc()
		}
	}
	e.metrics.activeSet.Set(float64(snap.ActiveSet))

	e.snapMu.Lock()
	e.snap = snap
	e.snapMu.Unlock()
}

func (e *Engine) load() {
	if e.opts.ProfilePath == "" {
		return
	}
	err := e.device.LoadFile(e.opts.ProfilePath)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		e.log.Info().Str("path", e.opts.ProfilePath).Msg("profile does not exist yet, starting empty")
	default:
		e.log.Warn().Err(err).Msg("profile load failed, keeping the current profile")
	}
	e.publish()
}

func (e *Engine) reload() {
	if e.clock.Since(e.lastSave) < selfWriteWindow {
		return
	}
	e.log.Info().Str("path", e.opts.ProfilePath).Msg("profile changed on disk, reloading")
	e.load()
}

func (e *Engine) save() error {
	if e.opts.ProfilePath == "" {
		return fmt.Errorf("save: no profile path configured")
	}
	e.lastSave = e.clock.Now()
	if err := e.device.SaveFile(e.opts.ProfilePath); err != nil {
		e.metrics.saves.WithLabelValues("error").Inc()
		return err
	}
	e.metrics.saves.WithLabelValues("ok").Inc()
	return nil
}

func (e *Engine) autosave() {
	if !e.device.Edited() {
		return
	}
	if err := e.save(); err != nil {
		e.log.Error().Err(err).Msg("autosave failed")
	}
}

func (e *Engine) startAutosave() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(e.clock))
	if err != nil {
		return nil, fmt.Errorf("autosave scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(e.opts.AutosaveInterval),
		gocron.NewTask(func() { e.post(e.autosave) }),
		gocron.WithName("autosave"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("autosave job: %w", err)
	}
	sched.Start()
	return sched, nil
}

func (e *Engine) shutdown() {
	e.device.ReleaseAll()
	e.publish()
	if e.opts.ProfilePath != "" && e.device.Edited() {
		if err := e.save(); err != nil {
			e.log.Error().Err(err).Msg("final save failed")
		}
	}
	e.log.Info().Msg("engine stopped")
}

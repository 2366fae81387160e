package dpad

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/logging"
)

const (
	// DefaultDelay disables debouncing.
	DefaultDelay = 0
	MinDelay     = 10
	MaxDelay     = 1000

	maxNameLength = 20
)

// ValidDelay reports whether ms may be used as a debounce delay.
func ValidDelay(ms int) bool {
	return ms == 0 || (ms >= MinDelay && ms <= MaxDelay)
}

type pendingEvent struct {
	queued     bool
	direction  Direction
	ignoreSets bool
}

// Resolver turns raw D-pad directions into press and release events on its
// eight direction buttons. It is not safe for concurrent use: input, timer
// expiry and configuration must all arrive on the same goroutine.
type Resolver struct {
	index     int
	originSet int

	name        string
	defaultName string

	buttons        map[Direction]Button
	activeDiagonal Button

	previous Direction
	pending  Direction
	mode     Mode
	delay    int

	queued pendingEvent

	sched    Scheduler
	debounce Timer
	listener Listener
	log      *zerolog.Logger
}

// New creates the resolver for D-pad index in set originSet. All eight
// buttons are built up front. A nil scheduler makes every commit immediate.
func New(index, originSet int, factory ButtonFactory, sched Scheduler, l Listener) *Resolver {
	if l == nil {
		l = NopListener{}
	}
	r := &Resolver{
		index:     index,
		originSet: originSet,
		buttons:   make(map[Direction]Button, len(AllDirections)),
		delay:     DefaultDelay,
		sched:     sched,
		listener:  l,
		log:       logging.Subsystem("dpad"),
	}
	for _, dir := range AllDirections {
		r.buttons[dir] = factory(dir, originSet)
	}
	return r
}

func (r *Resolver) Index() int     { return r.index }
func (r *Resolver) OriginSet() int { return r.originSet }

// SetListener replaces the notification target. nil detaches.
func (r *Resolver) SetListener(l Listener) {
	if l == nil {
		l = NopListener{}
	}
	r.listener = l
}

// Button returns the button for dir. Centered and invalid directions have
// no button.
func (r *Resolver) Button(dir Direction) (Button, bool) {
	b, ok := r.buttons[dir]
	return b, ok
}

// Buttons returns all eight buttons in config index order.
func (r *Resolver) Buttons() []Button {
	out := make([]Button, 0, len(AllDirections))
	for _, dir := range AllDirections {
		out = append(out, r.buttons[dir])
	}
	return out
}

// CurrentDirection is the last committed direction.
func (r *Resolver) CurrentDirection() Direction { return r.previous }

// PendingDirection is the most recent raw direction, committed or not.
func (r *Resolver) PendingDirection() Direction { return r.pending }

func (r *Resolver) Mode() Mode { return r.mode }

// SetMode switches interpretation mode. Buttons already held are left
// alone; the new mode applies from the next committed transition.
func (r *Resolver) SetMode(mode Mode) {
	r.mode = mode
	r.listener.OnModeChanged(r)
	r.listener.OnPropertyUpdated(r)
}

func (r *Resolver) Delay() int { return r.delay }

// SetDelay sets the debounce delay in milliseconds. Values outside 0 or
// 10..1000 are ignored and false is returned.
func (r *Resolver) SetDelay(ms int) bool {
	if !ValidDelay(ms) {
		return false
	}
	r.delay = ms
	r.listener.OnDelayChanged(r, ms)
	r.listener.OnPropertyUpdated(r)
	return true
}

func (r *Resolver) Name() string        { return r.name }
func (r *Resolver) DefaultName() string { return r.defaultName }

// SetName sets the user label. Names longer than 20 characters are rejected.
func (r *Resolver) SetName(name string) bool {
	if len([]rune(name)) > maxNameLength {
		return false
	}
	if name == r.name {
		return true
	}
	r.name = name
	r.listener.OnNameChanged(r)
	r.listener.OnPropertyUpdated(r)
	return true
}

func (r *Resolver) SetDefaultName(name string) {
	r.defaultName = name
	r.listener.OnNameChanged(r)
}

// SubmitRawDirection feeds one raw reading. Repeating the pending direction
// is a no-op.
func (r *Resolver) SubmitRawDirection(dir Direction, ignoreSets bool) {
	if dir == r.pending {
		return
	}
	if !dir.Valid() {
		r.log.Warn().Int("dpad", r.index).Uint8("value", uint8(dir)).Msg("dropping invalid direction")
		return
	}

	if dir != Centered {
		if r.previous == Centered {
			r.listener.OnActivityStarted(r, dir)
		}
		r.pending = dir
		switch {
		case ignoreSets || r.delay == 0 || r.sched == nil:
			r.stopDebounce()
			r.resolveTransition(ignoreSets)
		case r.pending != r.previous:
			r.startDebounce()
		default:
			r.stopDebounce()
		}
		return
	}

	r.listener.OnReleased(r, Centered)
	r.pending = Centered
	switch {
	case ignoreSets || r.delay == 0 || r.sched == nil:
		r.stopDebounce()
		r.resolveTransition(ignoreSets)
	case r.pending != r.previous:
		r.startDebounce()
	default:
		r.stopDebounce()
	}
}

func (r *Resolver) startDebounce() {
	r.stopDebounce()
	var t Timer
	t = r.sched.AfterFunc(time.Duration(r.delay)*time.Millisecond, func() {
		if r.debounce == t {
			r.debounce = nil
		}
		r.resolveTransition(false)
	})
	r.debounce = t
}

func (r *Resolver) stopDebounce() {
	if r.debounce != nil {
		r.debounce.Stop()
		r.debounce = nil
	}
}

// Debouncing reports whether a delayed commit is waiting.
func (r *Resolver) Debouncing() bool {
	return r.debounce != nil
}

// QueuePendingEvent stores a raw reading to be replayed after a set switch.
// A later call overwrites an unconsumed one.
func (r *Resolver) QueuePendingEvent(dir Direction, ignoreSets bool) {
	r.queued = pendingEvent{queued: true, direction: dir, ignoreSets: ignoreSets}
}

// ActivatePendingEvent replays the queued reading, if any.
func (r *Resolver) ActivatePendingEvent() {
	if !r.queued.queued {
		return
	}
	ev := r.queued
	r.ClearPendingEvent()
	r.SubmitRawDirection(ev.direction, ev.ignoreSets)
}

func (r *Resolver) HasPendingEvent() bool {
	return r.queued.queued
}

func (r *Resolver) ClearPendingEvent() {
	r.queued = pendingEvent{}
}

// resolveTransition commits the pending direction: first release what
// should no longer be held, then press what is newly held.
func (r *Resolver) resolveTransition(ignoreSets bool) {
	if r.pending == r.previous {
		return
	}
	prev, next := r.previous, r.pending

	r.log.Debug().
		Int("dpad", r.index).
		Int("set", r.originSet).
		Stringer("mode", r.mode).
		Stringer("from", prev).
		Stringer("to", next).
		Msg("direction change")

	r.releasePhase(prev, next, ignoreSets)
	r.pressPhase(prev, next, ignoreSets)
	r.previous = next
}

func (r *Resolver) releasePhase(prev, next Direction, ignoreSets bool) {
	if r.activeDiagonal != nil {
		r.activeDiagonal.JoyEvent(false, ignoreSets)
		r.activeDiagonal = nil
		return
	}

	switch r.mode {
	case StandardMode:
		for _, c := range cardinals {
			if prev.Has(c) && !next.Has(c) {
				r.buttons[c].JoyEvent(false, ignoreSets)
			}
		}
	case EightWayMode:
		if prev != Centered {
			r.buttons[prev].JoyEvent(false, ignoreSets)
		}
	case FourWayCardinal:
		if prev == Centered {
			return
		}
		// RightUp belongs to Up, LeftDown to Down, LeftUp to Left and
		// RightDown to Right.
		for _, c := range cardinals {
			if fourWayOwner(prev) == c && fourWayOwner(next) != c {
				r.buttons[c].JoyEvent(false, ignoreSets)
				return
			}
		}
	case FourWayDiagonal:
		if prev.IsDiagonal() {
			r.buttons[prev].JoyEvent(false, ignoreSets)
		}
	}
}

func (r *Resolver) pressPhase(prev, next Direction, ignoreSets bool) {
	switch r.mode {
	case StandardMode:
		for _, c := range cardinals {
			if next.Has(c) && !prev.Has(c) {
				r.buttons[c].JoyEvent(true, ignoreSets)
			}
		}
	case EightWayMode:
		if next == Centered {
			return
		}
		b := r.buttons[next]
		if next.IsDiagonal() {
			r.activeDiagonal = b
		}
		b.JoyEvent(true, ignoreSets)
	case FourWayCardinal:
		if c := fourWayOwner(next); c != Centered && c != fourWayOwner(prev) {
			r.buttons[c].JoyEvent(true, ignoreSets)
		}
	case FourWayDiagonal:
		if next.IsDiagonal() {
			r.activeDiagonal = r.buttons[next]
			r.activeDiagonal.JoyEvent(true, ignoreSets)
		}
	}
}

// fourWayOwner maps a direction to the cardinal button that represents it
// in four-way cardinal mode.
func fourWayOwner(d Direction) Direction {
	switch d {
	case Up, RightUp:
		return Up
	case Down, LeftDown:
		return Down
	case Left, LeftUp:
		return Left
	case Right, RightDown:
		return Right
	}
	return Centered
}

// ReleaseButtonEvents releases every button without touching the committed
// direction.
func (r *Resolver) ReleaseButtonEvents() {
	for _, b := range r.Buttons() {
		b.JoyEvent(false, true)
	}
}

// Reset drops any running debounce and pending reading and forgets the
// committed direction. Buttons should be released first.
func (r *Resolver) Reset() {
	r.stopDebounce()
	r.ClearPendingEvent()
	r.activeDiagonal = nil
	r.previous = Centered
	r.pending = Centered
}

// EventReset resets transient state of the applicable buttons.
func (r *Resolver) EventReset() {
	for _, b := range r.ApplicableButtons() {
		b.EventReset()
	}
}

// IsDefault reports whether the resolver carries no configuration.
func (r *Resolver) IsDefault() bool {
	if r.mode != StandardMode || r.delay != DefaultDelay {
		return false
	}
	for _, b := range r.buttons {
		if !b.IsDefault() {
			return false
		}
	}
	return true
}

// CopyConfigurationTo copies mode, delay, direction state and every button
// assignment into dst.
func (r *Resolver) CopyConfigurationTo(dst *Resolver) {
	dst.mode = r.mode
	dst.delay = r.delay
	dst.previous = r.previous
	dst.pending = r.previous
	dst.activeDiagonal = nil
	if r.activeDiagonal != nil {
		dst.activeDiagonal = dst.buttons[r.activeDiagonal.Direction()]
	}
	for _, dir := range AllDirections {
		r.buttons[dir].CopyAssignments(dst.buttons[dir])
	}
	if !dst.IsDefault() {
		dst.listener.OnPropertyUpdated(dst)
	}
}

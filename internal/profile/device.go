// Package profile holds a controller's D-pad configuration across sets and
// handles switching between them.
package profile

import (
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/button"
	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/logging"
)

// NumSets is the number of button sets a profile can hold.
const NumSets = 8

// ErrNoSuchSet is returned for a set number outside 0..NumSets-1.
var ErrNoSuchSet = errors.New("no such set")

// Device is one controller's profile: resolvers for every set and D-pad
// index plus the active set. Like dpad.Resolver it must only be used from a
// single goroutine.
type Device struct {
	name    string
	sets    [NumSets]map[int]*dpad.Resolver
	active  int
	env     *button.Env
	sched   dpad.Scheduler
	notify  dpad.Listener
	log     *zerolog.Logger
	edited  bool
	onEdit  func()
	pending []int
	depth   int
}

// NewDevice creates an empty profile. Buttons emit through env, whose Sets
// field is pointed at the device. sched drives debouncing and may be nil.
// l receives every resolver notification and may be nil.
func NewDevice(name string, env *button.Env, sched dpad.Scheduler, l dpad.Listener) *Device {
	if env == nil {
		env = &button.Env{}
	}
	if l == nil {
		l = dpad.NopListener{}
	}
	d := &Device{
		name:   name,
		env:    env,
		sched:  sched,
		notify: l,
		log:    logging.Subsystem("profile"),
	}
	env.Sets = d
	d.reset()
	return d
}

func (d *Device) reset() {
	for i := range d.sets {
		d.sets[i] = make(map[int]*dpad.Resolver)
	}
	d.active = 0
	d.pending = nil
}

func (d *Device) Name() string { return d.name }

func (d *Device) SetName(name string) {
	if name == d.name {
		return
	}
	d.name = name
	d.markEdited()
}

// ActiveSet is the set that receives input.
func (d *Device) ActiveSet() int { return d.active }

// Resolver returns the resolver for index in set, creating it on first use.
func (d *Device) Resolver(set, index int) (*dpad.Resolver, error) {
	if set < 0 || set >= NumSets {
		return nil, ErrNoSuchSet
	}
	if r, ok := d.sets[set][index]; ok {
		return r, nil
	}
	r := d.newResolver(set, index, listener{d})
	d.sets[set][index] = r
	return r, nil
}

func (d *Device) newResolver(set, index int, l dpad.Listener) *dpad.Resolver {
	var sched dpad.Scheduler
	if d.sched != nil {
		sched = d
	}
	r := dpad.New(index, set, button.Factory(d.env), sched, l)
	r.SetDefaultName(defaultName(index))
	return r
}

func defaultName(index int) string {
	return "D-pad " + strconv.Itoa(index+1)
}

// Resolvers returns the resolvers created for set, ordered by index.
func (d *Device) Resolvers(set int) []*dpad.Resolver {
	if set < 0 || set >= NumSets {
		return nil
	}
	out := make([]*dpad.Resolver, 0, len(d.sets[set]))
	for _, r := range d.sets[set] {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index() < out[j].Index() })
	return out
}

// Dispatch feeds a raw reading for D-pad index into the active set. A set
// change requested while handling the reading runs after it.
func (d *Device) Dispatch(index int, dir dpad.Direction) {
	r, _ := d.Resolver(d.active, index)
	d.guard(func() { r.SubmitRawDirection(dir, false) })
}

// AfterFunc wraps sched so that set changes requested from a debounce
// commit are deferred the same way as during Dispatch.
func (d *Device) AfterFunc(delay time.Duration, f func()) dpad.Timer {
	return d.sched.AfterFunc(delay, func() { d.guard(f) })
}

func (d *Device) guard(f func()) {
	d.depth++
	f()
	d.depth--
	if d.depth == 0 {
		d.flushSetChanges()
	}
}

// RequestSetChange asks for a switch to set. Inside Dispatch or a debounce
// commit the switch is deferred until the resolver is done.
func (d *Device) RequestSetChange(set int) {
	d.pending = append(d.pending, set)
	if d.depth == 0 {
		d.flushSetChanges()
	}
}

func (d *Device) flushSetChanges() {
	for len(d.pending) > 0 {
		set := d.pending[0]
		d.pending = d.pending[1:]
		if err := d.SwitchSet(set); err != nil {
			d.log.Warn().Err(err).Int("set", set).Msg("set change ignored")
		}
	}
}

// SwitchSet makes set active. Directions held in the old set are replayed
// into the new one so a held D-pad keeps acting across the switch.
func (d *Device) SwitchSet(set int) error {
	if set < 0 || set >= NumSets {
		return ErrNoSuchSet
	}
	if set == d.active {
		return nil
	}
	old := d.active
	d.log.Debug().Int("from", old).Int("to", set).Msg("switching set")

	d.depth++
	var targets []*dpad.Resolver
	for _, r := range d.Resolvers(old) {
		if dir := r.PendingDirection(); dir != dpad.Centered {
			target, _ := d.Resolver(set, r.Index())
			target.QueuePendingEvent(dir, true)
			targets = append(targets, target)
		}
		r.ReleaseButtonEvents()
		r.Reset()
	}
	d.active = set
	for _, r := range targets {
		r.ActivatePendingEvent()
	}
	d.depth--
	return nil
}

// ReleaseAll releases every button in every set and forgets held
// directions.
func (d *Device) ReleaseAll() {
	for set := range d.sets {
		for _, r := range d.sets[set] {
			r.ReleaseButtonEvents()
			r.Reset()
		}
	}
}

// IsDefault reports whether no resolver carries configuration.
func (d *Device) IsDefault() bool {
	for set := range d.sets {
		if !d.setIsDefault(set) {
			return false
		}
	}
	return true
}

func (d *Device) setIsDefault(set int) bool {
	for _, r := range d.sets[set] {
		if !r.IsDefault() {
			return false
		}
	}
	return true
}

// Edited reports whether the profile changed since the last load or save.
func (d *Device) Edited() bool { return d.edited }

func (d *Device) ClearEdited() { d.edited = false }

// OnEdited registers a callback run whenever the profile is edited.
func (d *Device) OnEdited(f func()) { d.onEdit = f }

func (d *Device) markEdited() {
	d.edited = true
	if d.onEdit != nil {
		d.onEdit()
	}
}

// listener forwards resolver notifications and tracks edits.
type listener struct{ d *Device }

func (l listener) OnActivityStarted(r *dpad.Resolver, dir dpad.Direction) {
	l.d.notify.OnActivityStarted(r, dir)
}

func (l listener) OnReleased(r *dpad.Resolver, dir dpad.Direction) {
	l.d.notify.OnReleased(r, dir)
}

func (l listener) OnModeChanged(r *dpad.Resolver) { l.d.notify.OnModeChanged(r) }

func (l listener) OnDelayChanged(r *dpad.Resolver, ms int) { l.d.notify.OnDelayChanged(r, ms) }

func (l listener) OnNameChanged(r *dpad.Resolver) { l.d.notify.OnNameChanged(r) }

func (l listener) OnPropertyUpdated(r *dpad.Resolver) {
	l.d.markEdited()
	l.d.notify.OnPropertyUpdated(r)
}

package profile

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmapper/internal/button"
	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/joy"
	"github.com/soar/padmapper/internal/output"
	"github.com/soar/padmapper/internal/timer"
)

type fixture struct {
	clock  *clockwork.FakeClock
	queue  *timer.Queue
	sink   *output.Recorder
	device *Device
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: clockwork.NewFakeClock(), sink: output.NewRecorder()}
	f.queue = timer.NewQueue(f.clock)
	f.device = NewDevice("pad", &button.Env{Sink: f.sink}, f.queue, nil)
	return f
}

func (f *fixture) assign(t *testing.T, set, index int, dir dpad.Direction, slot joy.Slot) {
	t.Helper()
	r, err := f.device.Resolver(set, index)
	require.NoError(t, err)
	b, ok := r.Button(dir)
	require.True(t, ok)
	b.AssignSlot(slot)
}

func (f *fixture) events() []string {
	var out []string
	for _, e := range f.sink.Events() {
		out = append(out, e.String())
	}
	return out
}

func key(name string) joy.Slot {
	code, _ := output.KeyCode(name)
	return joy.Slot{Code: code, Mode: joy.KeyboardSlot}
}

func setChange(set int) joy.Slot {
	return joy.Slot{Code: set, Mode: joy.SetChangeSlot}
}

func TestResolverCreatedOnDemand(t *testing.T) {
	f := newFixture(t)

	r, err := f.device.Resolver(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, r.OriginSet())
	assert.Equal(t, 1, r.Index())
	assert.Equal(t, "D-pad 2", r.DefaultName())

	again, err := f.device.Resolver(2, 1)
	require.NoError(t, err)
	assert.Same(t, r, again)

	_, err = f.device.Resolver(NumSets, 0)
	assert.True(t, errors.Is(err, ErrNoSuchSet))
	_, err = f.device.Resolver(-1, 0)
	assert.ErrorIs(t, err, ErrNoSuchSet)
}

func TestDispatchEmitsThroughActiveSet(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Up, key("w"))
	f.assign(t, 1, 0, dpad.Up, key("i"))

	f.device.Dispatch(0, dpad.Up)
	f.device.Dispatch(0, dpad.Centered)

	assert.Equal(t, []string{"keydown(w)", "keyup(w)"}, f.events())
}

func TestSetChangeReplaysHeldDirection(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Up, setChange(1))
	f.assign(t, 1, 0, dpad.Up, key("a"))

	f.device.Dispatch(0, dpad.Up)
	assert.Equal(t, 1, f.device.ActiveSet())
	assert.Equal(t, []string{"keydown(a)"}, f.events())

	old, _ := f.device.Resolver(0, 0)
	assert.Equal(t, dpad.Centered, old.CurrentDirection())
	for _, b := range old.Buttons() {
		assert.False(t, b.Pressed())
	}

	f.device.Dispatch(0, dpad.Centered)
	assert.Equal(t, []string{"keydown(a)", "keyup(a)"}, f.events())
}

func TestSetChangeReleasesOldSet(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Left, key("leftshift"))
	f.assign(t, 0, 1, dpad.Down, setChange(3))

	f.device.Dispatch(0, dpad.Left)
	f.device.Dispatch(1, dpad.Down)

	assert.Equal(t, 3, f.device.ActiveSet())
	assert.Equal(t, []string{"keydown(leftshift)", "keyup(leftshift)"}, f.events())

	// Both D-pads were held, so both carry their direction into set 3.
	moved, _ := f.device.Resolver(3, 0)
	assert.Equal(t, dpad.Left, moved.CurrentDirection())
	trigger, _ := f.device.Resolver(3, 1)
	assert.Equal(t, dpad.Down, trigger.CurrentDirection())
}

func TestSetChangeAfterDebounce(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Right, setChange(2))
	f.assign(t, 2, 0, dpad.Right, key("d"))
	r, _ := f.device.Resolver(0, 0)
	require.True(t, r.SetDelay(30))

	f.device.Dispatch(0, dpad.Right)
	assert.Equal(t, 0, f.device.ActiveSet())

	f.clock.Advance(30 * time.Millisecond)
	f.queue.RunDue()

	assert.Equal(t, 2, f.device.ActiveSet())
	assert.Equal(t, []string{"keydown(d)"}, f.events())
}

func TestReplayIgnoresSetChangeSlots(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Up, setChange(1))
	f.assign(t, 1, 0, dpad.Up, setChange(0))

	f.device.Dispatch(0, dpad.Up)
	assert.Equal(t, 1, f.device.ActiveSet())
}

func TestSwitchSet(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.device.SwitchSet(NumSets), ErrNoSuchSet)
	assert.NoError(t, f.device.SwitchSet(0))
	assert.NoError(t, f.device.SwitchSet(7))
	assert.Equal(t, 7, f.device.ActiveSet())
}

func TestEditedTracking(t *testing.T) {
	f := newFixture(t)
	calls := 0
	f.device.OnEdited(func() { calls++ })
	assert.False(t, f.device.Edited())

	r, _ := f.device.Resolver(0, 0)
	r.SetMode(dpad.EightWayMode)
	assert.True(t, f.device.Edited())
	assert.Equal(t, 1, calls)

	f.device.ClearEdited()
	assert.False(t, f.device.Edited())
	f.device.SetName("arcade")
	assert.True(t, f.device.Edited())
	assert.Equal(t, 2, calls)
}

type countingListener struct {
	dpad.NopListener
	activity int
}

func (l *countingListener) OnActivityStarted(*dpad.Resolver, dpad.Direction) { l.activity++ }

func TestNotificationsForwarded(t *testing.T) {
	l := &countingListener{}
	d := NewDevice("pad", nil, nil, l)

	d.Dispatch(0, dpad.Up)
	d.Dispatch(0, dpad.Centered)
	d.Dispatch(1, dpad.Left)

	assert.Equal(t, 2, l.activity)
}

func TestIsDefault(t *testing.T) {
	f := newFixture(t)
	_, _ = f.device.Resolver(0, 0)
	assert.True(t, f.device.IsDefault())

	f.assign(t, 5, 0, dpad.Up, key("a"))
	assert.False(t, f.device.IsDefault())
}

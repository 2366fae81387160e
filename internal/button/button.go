// Package button implements the mapped action behind one D-pad direction.
package button

import (
	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/joy"
	"github.com/soar/padmapper/internal/logging"
	"github.com/soar/padmapper/internal/output"
)

// SetChanger receives set change requests from set change slots.
type SetChanger interface {
	RequestSetChange(set int)
}

// Observer is told about every press and release that reaches the sink.
type Observer func(b *Button, pressed bool)

// Env is the shared environment buttons emit through.
type Env struct {
	Sink     output.Sink
	Mover    *output.Mover
	Sets     SetChanger
	Observer Observer
}

// Button is a dpad.Button with slot assignments.
type Button struct {
	dir       dpad.Direction
	originSet int
	env       *Env
	log       *zerolog.Logger

	slots   []joy.Slot
	pressed bool
	props   properties
}

type properties struct {
	mouseMode        joy.MouseMode
	mouseCurve       joy.MouseCurve
	springWidth      int
	springHeight     int
	relativeSpring   bool
	sensitivity      float64
	wheelSpeedX      int
	wheelSpeedY      int
	mouseSpeedX      int
	mouseSpeedY      int
	easingDuration   float64
	springDeadCircle int
	accelCurve       joy.AccelCurve
}

func defaultProperties() properties {
	return properties{
		mouseMode:        joy.DefaultMouseMode,
		mouseCurve:       joy.DefaultMouseCurve,
		springWidth:      joy.DefaultSpringWidth,
		springHeight:     joy.DefaultSpringHeight,
		sensitivity:      joy.DefaultSensitivity,
		wheelSpeedX:      joy.DefaultWheelSpeed,
		wheelSpeedY:      joy.DefaultWheelSpeed,
		mouseSpeedX:      joy.DefaultMouseSpeed,
		mouseSpeedY:      joy.DefaultMouseSpeed,
		easingDuration:   joy.DefaultEasingDuration,
		springDeadCircle: joy.DefaultSpringDeadCircle,
		accelCurve:       joy.DefaultAccelCurve,
	}
}

// New creates an unassigned button. env may be nil, in which case presses
// only change state.
func New(dir dpad.Direction, originSet int, env *Env) *Button {
	if env == nil {
		env = &Env{}
	}
	return &Button{
		dir:       dir,
		originSet: originSet,
		env:       env,
		log:       logging.Subsystem("button"),
		props:     defaultProperties(),
	}
}

// Factory returns a dpad.ButtonFactory building buttons in env.
func Factory(env *Env) dpad.ButtonFactory {
	return func(dir dpad.Direction, originSet int) dpad.Button {
		return New(dir, originSet, env)
	}
}

func (b *Button) Direction() dpad.Direction { return b.dir }
func (b *Button) OriginSet() int            { return b.originSet }
func (b *Button) Pressed() bool             { return b.pressed }

// JoyEvent presses or releases every assigned slot. Repeating the current
// state does nothing. Set change slots are skipped when ignoreSets is true.
func (b *Button) JoyEvent(pressed, ignoreSets bool) {
	if pressed == b.pressed {
		return
	}
	b.pressed = pressed

	if b.env.Observer != nil {
		b.env.Observer(b, pressed)
	}

	for i, slot := range b.slots {
		if err := b.emit(i, slot, pressed, ignoreSets); err != nil {
			b.log.Warn().Err(err).
				Stringer("direction", b.dir).
				Stringer("slot", slot).
				Bool("pressed", pressed).
				Msg("slot output failed")
		}
	}
}

type moveKey struct {
	b    *Button
	slot int
}

func (b *Button) emit(i int, slot joy.Slot, pressed, ignoreSets bool) error {
	sink := b.env.Sink
	switch slot.Mode {
	case joy.KeyboardSlot:
		if sink == nil {
			return nil
		}
		if pressed {
			return sink.KeyDown(slot.Code)
		}
		return sink.KeyUp(slot.Code)
	case joy.MouseButtonSlot:
		if sink == nil {
			return nil
		}
		if pressed {
			return sink.ButtonDown(slot.Code)
		}
		return sink.ButtonUp(slot.Code)
	case joy.MouseWheelSlot:
		if sink == nil || !pressed {
			return nil
		}
		dx, dy := axis(slot.Code)
		// Wheel up is a positive REL_WHEEL value.
		return sink.Wheel(dx, -dy)
	case joy.MouseMovementSlot:
		if b.env.Mover == nil {
			return nil
		}
		key := moveKey{b: b, slot: i}
		if !pressed {
			b.env.Mover.Release(key)
			return nil
		}
		dx, dy := axis(slot.Code)
		b.env.Mover.Hold(key, dx, dy, float64(b.props.mouseSpeedX), float64(b.props.mouseSpeedY), b.props.sensitivity)
	case joy.SetChangeSlot:
		if pressed && !ignoreSets && b.env.Sets != nil {
			b.env.Sets.RequestSetChange(slot.Code)
		}
	}
	return nil
}

// axis converts a movement or wheel slot code into a screen direction.
func axis(code int) (dx, dy int) {
	switch code {
	case joy.MoveUp:
		return 0, -1
	case joy.MoveDown:
		return 0, 1
	case joy.MoveLeft:
		return -1, 0
	case joy.MoveRight:
		return 1, 0
	}
	return 0, 0
}

// EventReset forgets the pressed state and any held movement without
// emitting a release.
func (b *Button) EventReset() {
	b.pressed = false
	if b.env.Mover != nil {
		for i := range b.slots {
			b.env.Mover.Release(moveKey{b: b, slot: i})
		}
	}
}

func (b *Button) IsDefault() bool {
	return len(b.slots) == 0 && b.props == defaultProperties()
}

func (b *Button) AssignedSlots() []joy.Slot {
	return append([]joy.Slot(nil), b.slots...)
}

func (b *Button) AssignSlot(s joy.Slot) {
	b.slots = append(b.slots, s)
}

func (b *Button) ClearSlots() {
	b.slots = nil
}

// CopyAssignments replaces dst's slots and properties with a copy of b's.
func (b *Button) CopyAssignments(dst dpad.Button) {
	if d, ok := dst.(*Button); ok {
		d.slots = b.AssignedSlots()
		d.props = b.props
		return
	}
	dst.ClearSlots()
	for _, s := range b.slots {
		dst.AssignSlot(s)
	}
	dst.SetMouseMode(b.props.mouseMode)
	dst.SetMouseCurve(b.props.mouseCurve)
	dst.SetSpringWidth(b.props.springWidth)
	dst.SetSpringHeight(b.props.springHeight)
	dst.SetRelativeSpring(b.props.relativeSpring)
	dst.SetSensitivity(b.props.sensitivity)
	dst.SetWheelSpeedX(b.props.wheelSpeedX)
	dst.SetWheelSpeedY(b.props.wheelSpeedY)
	dst.SetEasingDuration(b.props.easingDuration)
	dst.SetSpringDeadCircleMultiplier(b.props.springDeadCircle)
	dst.SetExtraAccelerationCurve(b.props.accelCurve)
}

func (b *Button) MouseMode() joy.MouseMode        { return b.props.mouseMode }
func (b *Button) SetMouseMode(m joy.MouseMode)    { b.props.mouseMode = m }
func (b *Button) MouseCurve() joy.MouseCurve      { return b.props.mouseCurve }
func (b *Button) SetMouseCurve(c joy.MouseCurve)  { b.props.mouseCurve = c }
func (b *Button) SpringWidth() int                { return b.props.springWidth }
func (b *Button) SpringHeight() int               { return b.props.springHeight }
func (b *Button) RelativeSpring() bool            { return b.props.relativeSpring }
func (b *Button) SetRelativeSpring(v bool)        { b.props.relativeSpring = v }
func (b *Button) Sensitivity() float64            { return b.props.sensitivity }
func (b *Button) WheelSpeedX() int                { return b.props.wheelSpeedX }
func (b *Button) WheelSpeedY() int                { return b.props.wheelSpeedY }
func (b *Button) MouseSpeedX() int                { return b.props.mouseSpeedX }
func (b *Button) MouseSpeedY() int                { return b.props.mouseSpeedY }
func (b *Button) EasingDuration() float64         { return b.props.easingDuration }
func (b *Button) SpringDeadCircleMultiplier() int { return b.props.springDeadCircle }
func (b *Button) ExtraAccelerationCurve() joy.AccelCurve {
	return b.props.accelCurve
}

func (b *Button) SetExtraAccelerationCurve(c joy.AccelCurve) { b.props.accelCurve = c }

func (b *Button) SetSpringWidth(v int) {
	if v >= 0 {
		b.props.springWidth = v
	}
}

func (b *Button) SetSpringHeight(v int) {
	if v >= 0 {
		b.props.springHeight = v
	}
}

func (b *Button) SetSensitivity(v float64) {
	if v >= 0.001 && v <= 1000 {
		b.props.sensitivity = v
	}
}

func (b *Button) SetWheelSpeedX(v int) {
	if v >= 1 && v <= 100 {
		b.props.wheelSpeedX = v
	}
}

func (b *Button) SetWheelSpeedY(v int) {
	if v >= 1 && v <= 100 {
		b.props.wheelSpeedY = v
	}
}

func (b *Button) SetMouseSpeedX(v int) {
	if v >= 1 && v <= 300 {
		b.props.mouseSpeedX = v
	}
}

func (b *Button) SetMouseSpeedY(v int) {
	if v >= 1 && v <= 300 {
		b.props.mouseSpeedY = v
	}
}

func (b *Button) SetEasingDuration(v float64) {
	if v >= 0 && v <= 5 {
		b.props.easingDuration = v
	}
}

func (b *Button) SetSpringDeadCircleMultiplier(v int) {
	if v >= 0 && v <= 100 {
		b.props.springDeadCircle = v
	}
}

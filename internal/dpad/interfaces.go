package dpad

import (
	"encoding/xml"
	"time"

	"github.com/soar/padmapper/internal/joy"
)

// Button is the mapped action behind one direction of a D-pad.
type Button interface {
	Direction() Direction
	JoyEvent(pressed, ignoreSets bool)
	Pressed() bool
	IsDefault() bool
	EventReset()

	MouseMode() joy.MouseMode
	SetMouseMode(joy.MouseMode)
	MouseCurve() joy.MouseCurve
	SetMouseCurve(joy.MouseCurve)
	SpringWidth() int
	SetSpringWidth(int)
	SpringHeight() int
	SetSpringHeight(int)
	RelativeSpring() bool
	SetRelativeSpring(bool)
	Sensitivity() float64
	SetSensitivity(float64)
	WheelSpeedX() int
	SetWheelSpeedX(int)
	WheelSpeedY() int
	SetWheelSpeedY(int)
	EasingDuration() float64
	SetEasingDuration(float64)
	SpringDeadCircleMultiplier() int
	SetSpringDeadCircleMultiplier(int)
	ExtraAccelerationCurve() joy.AccelCurve
	SetExtraAccelerationCurve(joy.AccelCurve)

	AssignedSlots() []joy.Slot
	AssignSlot(joy.Slot)
	ClearSlots()
	CopyAssignments(dst Button)

	ReadConfig(dec *xml.Decoder, start xml.StartElement) error
	WriteConfig(enc *xml.Encoder) error
}

// ButtonFactory builds the button for one direction of a D-pad in a set.
type ButtonFactory func(dir Direction, originSet int) Button

// Timer is a pending one-shot callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d on the goroutine that owns the resolver.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Listener receives resolver notifications. They are delivered
// synchronously, before the triggering call returns.
type Listener interface {
	OnActivityStarted(r *Resolver, dir Direction)
	OnReleased(r *Resolver, dir Direction)
	OnModeChanged(r *Resolver)
	OnDelayChanged(r *Resolver, delay int)
	OnNameChanged(r *Resolver)
	OnPropertyUpdated(r *Resolver)
}

// NopListener can be embedded to implement only part of Listener.
type NopListener struct{}

func (NopListener) OnActivityStarted(*Resolver, Direction) {}
func (NopListener) OnReleased(*Resolver, Direction)        {}
func (NopListener) OnModeChanged(*Resolver)                {}
func (NopListener) OnDelayChanged(*Resolver, int)          {}
func (NopListener) OnNameChanged(*Resolver)                {}
func (NopListener) OnPropertyUpdated(*Resolver)            {}

// Listeners fans a notification out to several listeners in order.
type Listeners []Listener

func (ls Listeners) OnActivityStarted(r *Resolver, dir Direction) {
	for _, l := range ls {
		l.OnActivityStarted(r, dir)
	}
}

func (ls Listeners) OnReleased(r *Resolver, dir Direction) {
	for _, l := range ls {
		l.OnReleased(r, dir)
	}
}

func (ls Listeners) OnModeChanged(r *Resolver) {
	for _, l := range ls {
		l.OnModeChanged(r)
	}
}

func (ls Listeners) OnDelayChanged(r *Resolver, delay int) {
	for _, l := range ls {
		l.OnDelayChanged(r, delay)
	}
}

func (ls Listeners) OnNameChanged(r *Resolver) {
	for _, l := range ls {
		l.OnNameChanged(r)
	}
}

func (ls Listeners) OnPropertyUpdated(r *Resolver) {
	for _, l := range ls {
		l.OnPropertyUpdated(r)
	}
}

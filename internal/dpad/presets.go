package dpad

import (
	"math"

	"github.com/soar/padmapper/internal/joy"
)

// ApplicableButtons returns the buttons that take part in the current mode,
// in config index order.
func (r *Resolver) ApplicableButtons() []Button {
	var out []Button
	for _, dir := range AllDirections {
		if r.applicable(dir) {
			out = append(out, r.buttons[dir])
		}
	}
	return out
}

func (r *Resolver) applicable(dir Direction) bool {
	if dir.IsDiagonal() {
		return r.mode == EightWayMode || r.mode == FourWayDiagonal
	}
	return r.mode != FourWayDiagonal
}

// DirectionButtons returns the buttons that dir would press in the current
// mode.
func (r *Resolver) DirectionButtons(dir Direction) []Button {
	switch r.mode {
	case StandardMode:
		var out []Button
		for _, c := range dir.Cardinals() {
			out = append(out, r.buttons[c])
		}
		return out
	case EightWayMode:
		if dir != Centered {
			return []Button{r.buttons[dir]}
		}
	case FourWayCardinal:
		if dir != Centered && !dir.IsDiagonal() {
			return []Button{r.buttons[dir]}
		}
	case FourWayDiagonal:
		if dir.IsDiagonal() {
			return []Button{r.buttons[dir]}
		}
	}
	return nil
}

// HasSlotsAssigned reports whether any applicable button has a slot.
func (r *Resolver) HasSlotsAssigned() bool {
	for _, b := range r.ApplicableButtons() {
		if len(b.AssignedSlots()) > 0 {
			return true
		}
	}
	return false
}

// shared returns the value every applicable button agrees on, or def.
func shared[T any](r *Resolver, get func(Button) T, eq func(a, b T) bool, def T) T {
	buttons := r.ApplicableButtons()
	if len(buttons) == 0 {
		return def
	}
	first := get(buttons[0])
	for _, b := range buttons[1:] {
		if !eq(first, get(b)) {
			return def
		}
	}
	return first
}

func same[T comparable](a, b T) bool { return a == b }

func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

func (r *Resolver) setAll(set func(Button)) {
	for _, b := range r.ApplicableButtons() {
		set(b)
	}
	r.listener.OnPropertyUpdated(r)
}

func (r *Resolver) SetButtonsMouseMode(mode joy.MouseMode) {
	r.setAll(func(b Button) { b.SetMouseMode(mode) })
}

func (r *Resolver) ButtonsPresetMouseMode() joy.MouseMode {
	return shared(r, Button.MouseMode, same[joy.MouseMode], joy.MouseCursor)
}

func (r *Resolver) HasSameButtonsMouseMode() bool {
	return agree(r, Button.MouseMode, same[joy.MouseMode])
}

func (r *Resolver) SetButtonsMouseCurve(curve joy.MouseCurve) {
	r.setAll(func(b Button) { b.SetMouseCurve(curve) })
}

func (r *Resolver) ButtonsPresetMouseCurve() joy.MouseCurve {
	return shared(r, Button.MouseCurve, same[joy.MouseCurve], joy.LinearCurve)
}

func (r *Resolver) HasSameButtonsMouseCurve() bool {
	return agree(r, Button.MouseCurve, same[joy.MouseCurve])
}

func (r *Resolver) SetButtonsSpringWidth(v int) {
	r.setAll(func(b Button) { b.SetSpringWidth(v) })
}

func (r *Resolver) ButtonsPresetSpringWidth() int {
	return shared(r, Button.SpringWidth, same[int], 0)
}

func (r *Resolver) SetButtonsSpringHeight(v int) {
	r.setAll(func(b Button) { b.SetSpringHeight(v) })
}

func (r *Resolver) ButtonsPresetSpringHeight() int {
	return shared(r, Button.SpringHeight, same[int], 0)
}

func (r *Resolver) SetButtonsRelativeSpring(v bool) {
	r.setAll(func(b Button) { b.SetRelativeSpring(v) })
}

func (r *Resolver) IsRelativeSpring() bool {
	return shared(r, Button.RelativeSpring, same[bool], false)
}

func (r *Resolver) SetButtonsSensitivity(v float64) {
	r.setAll(func(b Button) { b.SetSensitivity(v) })
}

func (r *Resolver) ButtonsPresetSensitivity() float64 {
	return shared(r, Button.Sensitivity, fuzzyEqual, joy.DefaultSensitivity)
}

func (r *Resolver) SetButtonsWheelSpeedX(v int) {
	r.setAll(func(b Button) { b.SetWheelSpeedX(v) })
}

func (r *Resolver) ButtonsPresetWheelSpeedX() int {
	return shared(r, Button.WheelSpeedX, same[int], joy.DefaultWheelSpeed)
}

func (r *Resolver) SetButtonsWheelSpeedY(v int) {
	r.setAll(func(b Button) { b.SetWheelSpeedY(v) })
}

func (r *Resolver) ButtonsPresetWheelSpeedY() int {
	return shared(r, Button.WheelSpeedY, same[int], joy.DefaultWheelSpeed)
}

func (r *Resolver) SetButtonsEasingDuration(v float64) {
	r.setAll(func(b Button) { b.SetEasingDuration(v) })
}

func (r *Resolver) ButtonsEasingDuration() float64 {
	return shared(r, Button.EasingDuration, fuzzyEqual, joy.DefaultEasingDuration)
}

func (r *Resolver) SetButtonsSpringDeadCircleMultiplier(v int) {
	r.setAll(func(b Button) { b.SetSpringDeadCircleMultiplier(v) })
}

func (r *Resolver) ButtonsSpringDeadCircleMultiplier() int {
	return shared(r, Button.SpringDeadCircleMultiplier, same[int], joy.DefaultSpringDeadCircle)
}

func (r *Resolver) SetButtonsExtraAccelerationCurve(c joy.AccelCurve) {
	r.setAll(func(b Button) { b.SetExtraAccelerationCurve(c) })
}

func (r *Resolver) ButtonsExtraAccelerationCurve() joy.AccelCurve {
	return shared(r, Button.ExtraAccelerationCurve, same[joy.AccelCurve], joy.LinearAccelCurve)
}

func agree[T any](r *Resolver, get func(Button) T, eq func(a, b T) bool) bool {
	buttons := r.ApplicableButtons()
	for i := 1; i < len(buttons); i++ {
		if !eq(get(buttons[0]), get(buttons[i])) {
			return false
		}
	}
	return true
}

// Package joy holds the mapping vocabulary shared by D-pads and their
// buttons: slot assignments and the mouse tuning properties.
package joy

import (
	"fmt"
	"strings"
)

type MouseMode int

const (
	MouseCursor MouseMode = iota
	MouseSpring
)

func (m MouseMode) String() string {
	if m == MouseSpring {
		return "spring"
	}
	return "cursor"
}

type MouseCurve int

const (
	EnhancedPrecisionCurve MouseCurve = iota
	LinearCurve
	QuadraticCurve
	CubicCurve
	QuadraticExtremeCurve
	PowerCurve
	EasingQuadraticCurve
	EasingCubicCurve
)

var curveNames = map[MouseCurve]string{
	EnhancedPrecisionCurve: "enhanced-precision",
	LinearCurve:            "linear",
	QuadraticCurve:         "quadratic",
	CubicCurve:             "cubic",
	QuadraticExtremeCurve:  "quadratic-extreme",
	PowerCurve:             "power",
	EasingQuadraticCurve:   "easing-quadratic",
	EasingCubicCurve:       "easing-cubic",
}

func (c MouseCurve) String() string {
	if s, ok := curveNames[c]; ok {
		return s
	}
	return "unknown"
}

func ParseMouseCurve(s string) (MouseCurve, bool) {
	for c, name := range curveNames {
		if name == s {
			return c, true
		}
	}
	return EnhancedPrecisionCurve, false
}

// AccelCurve shapes the extra acceleration applied on fast movement.
type AccelCurve int

const (
	LinearAccelCurve AccelCurve = iota
	EaseOutSineCurve
	EaseOutQuadAccelCurve
	EaseOutCubicAccelCurve
)

var accelNames = map[AccelCurve]string{
	LinearAccelCurve:       "linear",
	EaseOutSineCurve:       "easeoutsine",
	EaseOutQuadAccelCurve:  "easeoutquad",
	EaseOutCubicAccelCurve: "easeoutcubic",
}

func (c AccelCurve) String() string {
	if s, ok := accelNames[c]; ok {
		return s
	}
	return "unknown"
}

func ParseAccelCurve(s string) (AccelCurve, bool) {
	for c, name := range accelNames {
		if name == s {
			return c, true
		}
	}
	return LinearAccelCurve, false
}

// Factory defaults for button properties.
const (
	DefaultMouseMode        = MouseCursor
	DefaultMouseCurve       = EnhancedPrecisionCurve
	DefaultSpringWidth      = 0
	DefaultSpringHeight     = 0
	DefaultSensitivity      = 1.0
	DefaultWheelSpeed       = 20
	DefaultEasingDuration   = 0.5
	DefaultSpringDeadCircle = 0
	DefaultAccelCurve       = LinearAccelCurve
	DefaultMouseSpeed       = 50
)

// SlotMode tells how a slot code is interpreted.
type SlotMode int

const (
	KeyboardSlot SlotMode = iota
	MouseButtonSlot
	MouseMovementSlot
	MouseWheelSlot
	SetChangeSlot
)

var slotModeNames = map[SlotMode]string{
	KeyboardSlot:      "keyboard",
	MouseButtonSlot:   "mousebutton",
	MouseMovementSlot: "mousemovement",
	MouseWheelSlot:    "mousewheel",
	SetChangeSlot:     "setchange",
}

func (m SlotMode) String() string {
	if s, ok := slotModeNames[m]; ok {
		return s
	}
	return "unknown"
}

func ParseSlotMode(s string) (SlotMode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range slotModeNames {
		if name == s {
			return m, true
		}
	}
	return KeyboardSlot, false
}

// Movement and wheel slot codes.
const (
	MoveUp = iota + 1
	MoveDown
	MoveLeft
	MoveRight
)

// Slot is one action assigned to a button.
type Slot struct {
	Code int
	Mode SlotMode
}

func (s Slot) String() string {
	return fmt.Sprintf("%s:%d", s.Mode, s.Code)
}

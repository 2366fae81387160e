package dpad

import "strings"

// Direction is the composite state of a D-pad. The four cardinal bits match
// the SDL/evdev hat layout.
type Direction uint8

const (
	Centered Direction = 0
	Up       Direction = 1
	Right    Direction = 2
	Down     Direction = 4
	Left     Direction = 8

	RightUp   = Up | Right
	RightDown = Down | Right
	LeftDown  = Down | Left
	LeftUp    = Up | Left
)

// AllDirections lists every non-centered direction in config index order.
var AllDirections = []Direction{Up, Right, RightUp, Down, RightDown, Left, LeftUp, LeftDown}

var cardinals = [...]Direction{Up, Down, Left, Right}

// Compose builds a direction from four switch states. Opposite switches
// cancel each other so an impossible Up|Down is never produced.
func Compose(up, down, left, right bool) Direction {
	var d Direction
	if up != down {
		if up {
			d |= Up
		} else {
			d |= Down
		}
	}
	if left != right {
		if left {
			d |= Left
		} else {
			d |= Right
		}
	}
	return d
}

// Valid reports whether d is one of the nine meaningful values.
func (d Direction) Valid() bool {
	if d > Left|Down|Right|Up {
		return false
	}
	return d&(Up|Down) != Up|Down && d&(Left|Right) != Left|Right
}

// IsDiagonal reports whether d combines a vertical and a horizontal bit.
func (d Direction) IsDiagonal() bool {
	return d&(Up|Down) != 0 && d&(Left|Right) != 0
}

// Has reports whether the cardinal c is part of d.
func (d Direction) Has(c Direction) bool {
	return d&c != 0
}

// Cardinals decomposes d into its cardinal components.
func (d Direction) Cardinals() []Direction {
	var out []Direction
	for _, c := range cardinals {
		if d.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

func (d Direction) String() string {
	switch d {
	case Centered:
		return "centered"
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case RightUp:
		return "right-up"
	case RightDown:
		return "right-down"
	case LeftDown:
		return "left-down"
	case LeftUp:
		return "left-up"
	default:
		return "invalid"
	}
}

// Mode selects how raw directions map to the eight buttons.
type Mode int

const (
	StandardMode Mode = iota
	EightWayMode
	FourWayCardinal
	FourWayDiagonal
)

func (m Mode) String() string {
	switch m {
	case EightWayMode:
		return "eight-way"
	case FourWayCardinal:
		return "four-way"
	case FourWayDiagonal:
		return "diagonal"
	default:
		return "standard"
	}
}

// ParseMode accepts the config spelling of a mode. Only the three
// non-standard literals are recognised; anything else reports false.
func ParseMode(s string) (Mode, bool) {
	switch strings.TrimSpace(s) {
	case "eight-way":
		return EightWayMode, true
	case "four-way":
		return FourWayCardinal, true
	case "diagonal":
		return FourWayDiagonal, true
	}
	return StandardMode, false
}

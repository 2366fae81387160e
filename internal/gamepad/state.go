// Package gamepad reads D-pad hats from physical controllers. It has no
// SDL dependency; the SDL3 reader lives in gamepad/sdlpad.
package gamepad

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"github.com/soar/padmapper/internal/dpad"
)

// ErrNoDevice is returned when no controller with a D-pad can be found.
var ErrNoDevice = errors.New("no controller with a d-pad found")

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// HatEvent is one D-pad reading. Hat is the D-pad index on the controller.
type HatEvent struct {
	Hat       int
	Direction dpad.Direction
}

// DeviceInfo describes the controller a source is reading.
type DeviceInfo struct {
	Connected      bool   `json:"connected"`
	Name           string `json:"name"`
	ControllerType string `json:"controllerType"`
	Hats           int    `json:"hats"`
	Source         string `json:"source"`
}

// Source delivers hat readings until Run returns.
type Source interface {
	Run(ctx context.Context) error
	Events() <-chan HatEvent
	Info() DeviceInfo
}

// DirectionFromHat converts an SDL hat bitmask. Opposite bits cancel.
func DirectionFromHat(value uint8) dpad.Direction {
	return dpad.Compose(value&hatUp != 0, value&hatDown != 0, value&hatLeft != 0, value&hatRight != 0)
}

// DirectionFromAxes converts an evdev hat axis pair, where negative is up
// or left.
func DirectionFromAxes(x, y int32) dpad.Direction {
	return dpad.Compose(y < 0, y > 0, x < 0, x > 0)
}

// dpadButtons is a D-pad reported as four separate buttons.
type dpadButtons struct {
	up, down, left, right bool
}

func (b dpadButtons) direction() dpad.Direction {
	return dpad.Compose(b.up, b.down, b.left, b.right)
}

// Hats tracks the direction of every hat on one controller. Changes are
// coalesced per hat until Run hands them to the consumer, so a slow
// consumer sees the latest reading of each hat instead of losing one.
type Hats struct {
	mu     sync.Mutex
	last   map[int]dpad.Direction
	dirty  []int
	ready  chan struct{}
	events chan HatEvent
}

func NewHats() *Hats {
	return &Hats{
		last:   make(map[int]dpad.Direction),
		ready:  make(chan struct{}, 1),
		events: make(chan HatEvent),
	}
}

// Events returns the channel Run delivers readings on.
func (h *Hats) Events() <-chan HatEvent { return h.events }

// Update records dir for hat and reports whether it changed.
func (h *Hats) Update(hat int, dir dpad.Direction) bool {
	h.mu.Lock()
	if h.last[hat] == dir {
		h.mu.Unlock()
		return false
	}
	h.set(hat, dir)
	h.mu.Unlock()
	h.signal()
	return true
}

// CenterAll reports every held hat as centered, used when a controller
// goes away so that nothing stays pressed.
func (h *Hats) CenterAll() {
	h.mu.Lock()
	held := make([]int, 0, len(h.last))
	for hat := range h.last {
		held = append(held, hat)
	}
	sort.Ints(held)
	for _, hat := range held {
		h.set(hat, dpad.Centered)
	}
	h.mu.Unlock()
	if len(held) > 0 {
		h.signal()
	}
}

func (h *Hats) set(hat int, dir dpad.Direction) {
	if dir == dpad.Centered {
		delete(h.last, hat)
	} else {
		h.last[hat] = dir
	}
	if !slices.Contains(h.dirty, hat) {
		h.dirty = append(h.dirty, hat)
	}
}

func (h *Hats) signal() {
	select {
	case h.ready <- struct{}{}:
	default:
	}
}

// take returns the current reading of every hat changed since the last
// call, in the order the hats first changed.
func (h *Hats) take() []HatEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HatEvent, 0, len(h.dirty))
	for _, hat := range h.dirty {
		out = append(out, HatEvent{Hat: hat, Direction: h.last[hat]})
	}
	h.dirty = h.dirty[:0]
	return out
}

// Run delivers pending readings on Events until ctx is cancelled. Readings
// that arrive while the consumer is busy replace older ones of the same hat.
func (h *Hats) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-h.ready:
		}
		for _, ev := range h.take() {
			select {
			case h.events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// InfoBox guards the DeviceInfo a source publishes.
type InfoBox struct {
	mu   sync.RWMutex
	info DeviceInfo
}

func (b *InfoBox) Get() DeviceInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.info
}

func (b *InfoBox) Set(info DeviceInfo) {
	b.mu.Lock()
	b.info = info
	b.mu.Unlock()
}

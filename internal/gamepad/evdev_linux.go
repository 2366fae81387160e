//go:build linux

package gamepad

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/holoplot/go-evdev"
	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/logging"
)

// hatAxes lists the X/Y axis codes of the four hats evdev can report.
var hatAxes = [][2]evdev.EvCode{
	{evdev.ABS_HAT0X, evdev.ABS_HAT0Y},
	{evdev.ABS_HAT1X, evdev.ABS_HAT1Y},
	{evdev.ABS_HAT2X, evdev.ABS_HAT2Y},
	{evdev.ABS_HAT3X, evdev.ABS_HAT3Y},
}

// EvdevSource reads hats from a Linux input device. Controllers that report
// their D-pad as BTN_DPAD_* keys are read as hat 0.
//
// Readings are applied per SYN_REPORT frame, so a roll from one direction
// to its neighbour reported as two axis changes is a single transition.
type EvdevSource struct {
	path string
	dev  *evdev.InputDevice
	hats *Hats
	info InfoBox
	log  *zerolog.Logger

	axes     map[int][2]int32
	buttons  dpadButtons
	keyHat   bool
	touched  map[int]bool
	dropping bool
}

// NewEvdevSource reads path, or the first device with a D-pad when path is
// empty.
func NewEvdevSource(path string) *EvdevSource {
	return &EvdevSource{
		path:    path,
		hats:    NewHats(),
		log:     logging.Subsystem("evdev"),
		axes:    make(map[int][2]int32),
		touched: make(map[int]bool),
	}
}

func (s *EvdevSource) Events() <-chan HatEvent { return s.hats.Events() }

func (s *EvdevSource) Info() DeviceInfo { return s.info.Get() }

// Run reads events until ctx is cancelled or the device goes away.
func (s *EvdevSource) Run(ctx context.Context) error {
	dev, err := s.open()
	if err != nil {
		return err
	}
	s.dev = dev
	go s.hats.Run(ctx)

	name, _ := dev.Name()
	mapping := GuessMapping(name)
	if id, err := dev.InputID(); err == nil {
		if m := GetMapping(id.Vendor, id.Product); m != genericMapping {
			mapping = m
		}
	}
	s.info.Set(DeviceInfo{
		Connected:      true,
		Name:           name,
		ControllerType: mapping.Name,
		Hats:           countHats(dev),
		Source:         "evdev",
	})
	s.log.Info().Str("name", name).Str("mapping", mapping.Name).Msg("evdev device opened")
	s.resync()
	s.flush()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		dev.Close()
	}()

	defer func() {
		s.hats.CenterAll()
		s.info.Set(DeviceInfo{Source: "evdev"})
	}()

	for {
		ev, err := dev.ReadOne()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read %s: %w", s.path, err)
		}
		s.handle(ev)
	}
}

func (s *EvdevSource) open() (*evdev.InputDevice, error) {
	if s.path != "" {
		dev, err := evdev.Open(s.path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", s.path, err)
		}
		return dev, nil
	}

	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			if !errors.Is(err, os.ErrPermission) {
				s.log.Debug().Err(err).Str("path", p.Path).Msg("skipping device")
			}
			continue
		}
		if countHats(dev) > 0 || hasDpadButtons(dev) {
			s.path = p.Path
			return dev, nil
		}
		dev.Close()
	}
	return nil, ErrNoDevice
}

func countHats(dev *evdev.InputDevice) int {
	n := 0
	abs := dev.CapableEvents(evdev.EV_ABS)
	for _, pair := range hatAxes {
		for _, code := range abs {
			if code == pair[0] {
				n++
				break
			}
		}
	}
	if n == 0 && hasDpadButtons(dev) {
		n = 1
	}
	return n
}

func hasDpadButtons(dev *evdev.InputDevice) bool {
	for _, code := range dev.CapableEvents(evdev.EV_KEY) {
		if code == evdev.BTN_DPAD_UP {
			return true
		}
	}
	return false
}

func (s *EvdevSource) handle(ev *evdev.InputEvent) {
	switch ev.Type {
	case evdev.EV_SYN:
		switch ev.Code {
		case evdev.SYN_REPORT:
			if s.dropping {
				s.dropping = false
				s.resync()
			}
			s.flush()
		case evdev.SYN_DROPPED:
			// The kernel lost events; ignore the partial frame and everything
			// up to the next report, then read the device state instead.
			s.dropping = true
			clear(s.touched)
		}
		return
	}
	if s.dropping {
		return
	}

	switch ev.Type {
	case evdev.EV_ABS:
		for hat, pair := range hatAxes {
			xy := s.axes[hat]
			switch ev.Code {
			case pair[0]:
				xy[0] = ev.Value
			case pair[1]:
				xy[1] = ev.Value
			default:
				continue
			}
			s.axes[hat] = xy
			s.touched[hat] = true
			return
		}
	case evdev.EV_KEY:
		pressed := ev.Value != 0
		switch ev.Code {
		case evdev.BTN_DPAD_UP:
			s.buttons.up = pressed
		case evdev.BTN_DPAD_DOWN:
			s.buttons.down = pressed
		case evdev.BTN_DPAD_LEFT:
			s.buttons.left = pressed
		case evdev.BTN_DPAD_RIGHT:
			s.buttons.right = pressed
		default:
			return
		}
		s.keyHat = true
		s.touched[0] = true
	}
}

// direction is the reading of hat. Hat 0 follows the D-pad buttons once
// the device has reported any.
func (s *EvdevSource) direction(hat int) dpad.Direction {
	if hat == 0 && s.keyHat {
		return s.buttons.direction()
	}
	xy := s.axes[hat]
	return DirectionFromAxes(xy[0], xy[1])
}

// flush hands the hats changed in the current frame to the consumer.
func (s *EvdevSource) flush() {
	for hat := range hatAxes {
		if s.touched[hat] {
			s.hats.Update(hat, s.direction(hat))
			delete(s.touched, hat)
		}
	}
}

// resync reads the hat axes and D-pad keys straight from the device.
func (s *EvdevSource) resync() {
	if s.dev == nil {
		return
	}
	hatAxesFound := false
	if abs, err := s.dev.AbsInfos(); err == nil {
		for hat, pair := range hatAxes {
			x, okX := abs[pair[0]]
			y, okY := abs[pair[1]]
			if okX || okY {
				s.axes[hat] = [2]int32{x.Value, y.Value}
				s.touched[hat] = true
				hatAxesFound = true
			}
		}
	} else {
		s.log.Debug().Err(err).Msg("read abs state")
	}
	if !s.keyHat && (hatAxesFound || !hasDpadButtons(s.dev)) {
		return
	}
	keys, err := s.dev.State(evdev.EV_KEY)
	if err != nil {
		s.log.Debug().Err(err).Msg("read key state")
		return
	}
	s.buttons = dpadButtons{
		up:    keys[evdev.BTN_DPAD_UP],
		down:  keys[evdev.BTN_DPAD_DOWN],
		left:  keys[evdev.BTN_DPAD_LEFT],
		right: keys[evdev.BTN_DPAD_RIGHT],
	}
	s.keyHat = true
	s.touched[0] = true
}

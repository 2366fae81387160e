//go:build linux

package output

import (
	"fmt"
	"sync"
	"syscall"

	"github.com/holoplot/go-evdev"
)

const (
	busUSB        = 0x03
	virtualVendor = 0x1d6b
	virtualProd   = 0x0104
)

// Virtual is a uinput device that can type keys and move the pointer.
type Virtual struct {
	mu  sync.Mutex
	dev *evdev.InputDevice
}

// NewVirtual registers a combined keyboard and mouse with the kernel.
func NewVirtual(name string) (*Virtual, error) {
	keys, buttons := KeyCodes()
	keyCodes := make([]evdev.EvCode, 0, len(keys)+len(buttons))
	for _, k := range keys {
		keyCodes = append(keyCodes, evdev.EvCode(k))
	}
	for _, b := range buttons {
		keyCodes = append(keyCodes, evdev.EvCode(b))
	}

	dev, err := evdev.CreateDevice(name, evdev.InputID{
		BusType: busUSB,
		Vendor:  virtualVendor,
		Product: virtualProd,
		Version: 1,
	}, map[evdev.EvType][]evdev.EvCode{
		evdev.EV_KEY: keyCodes,
		evdev.EV_REL: {evdev.REL_X, evdev.REL_Y, evdev.REL_WHEEL, evdev.REL_HWHEEL},
	})
	if err != nil {
		return nil, fmt.Errorf("create uinput device: %w. Ensure 'modprobe uinput' and permissions", err)
	}
	return &Virtual{dev: dev}, nil
}

func (v *Virtual) write(events ...evdev.InputEvent) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dev == nil {
		return syscall.EBADF
	}
	for i := range events {
		if err := v.dev.WriteOne(&events[i]); err != nil {
			return err
		}
	}
	return v.dev.WriteOne(&evdev.InputEvent{Type: evdev.EV_SYN, Code: evdev.SYN_REPORT})
}

func (v *Virtual) key(code int, value int32) error {
	return v.write(evdev.InputEvent{Type: evdev.EV_KEY, Code: evdev.EvCode(code), Value: value})
}

func (v *Virtual) KeyDown(code int) error    { return v.key(code, 1) }
func (v *Virtual) KeyUp(code int) error      { return v.key(code, 0) }
func (v *Virtual) ButtonDown(code int) error { return v.key(code, 1) }
func (v *Virtual) ButtonUp(code int) error   { return v.key(code, 0) }

func (v *Virtual) Move(dx, dy int) error {
	var events []evdev.InputEvent
	if dx != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_X, Value: int32(dx)})
	}
	if dy != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_Y, Value: int32(dy)})
	}
	if len(events) == 0 {
		return nil
	}
	return v.write(events...)
}

func (v *Virtual) Wheel(dx, dy int) error {
	var events []evdev.InputEvent
	if dx != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_HWHEEL, Value: int32(dx)})
	}
	if dy != 0 {
		events = append(events, evdev.InputEvent{Type: evdev.EV_REL, Code: evdev.REL_WHEEL, Value: int32(dy)})
	}
	if len(events) == 0 {
		return nil
	}
	return v.write(events...)
}

func (v *Virtual) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.dev == nil {
		return nil
	}
	err := v.dev.Close()
	v.dev = nil
	return err
}

// Package sdlpad reads D-pad hats through SDL3. Importing it loads libSDL3
// at init, so it is linked only into builds that want the SDL backend.
package sdlpad

import (
	"context"
	"fmt"
	"runtime"

	"github.com/jupiterrider/purego-sdl3/sdl"
	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/gamepad"
	"github.com/soar/padmapper/internal/logging"
)

// Events are drained at roughly 120Hz.
const pollDelayNS = 8_000_000

type joystickInfo struct {
	joystick *sdl.Joystick
	mapping  *gamepad.DeviceMapping
	name     string
	id       sdl.JoystickID
}

var _ gamepad.Source = (*Reader)(nil)

// Reader reads D-pad hats through the SDL3 joystick API.
type Reader struct {
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	hats      *gamepad.Hats
	info      gamepad.InfoBox
	log       *zerolog.Logger
}

func NewReader() *Reader {
	return &Reader{
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		hats:      gamepad.NewHats(),
		log:       logging.Subsystem("sdl"),
	}
}

// Events returns the channel hat changes are sent on.
func (r *Reader) Events() <-chan gamepad.HatEvent {
	return r.hats.Events()
}

// Info returns the active joystick.
func (r *Reader) Info() gamepad.DeviceInfo {
	return r.info.Get()
}

// Run initializes SDL and polls until ctx is cancelled. SDL requires the
// same OS thread for the whole session, so Run locks it.
func (r *Reader) Run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	go r.hats.Run(ctx)

	if !sdl.Init(sdl.InitJoystick) {
		return fmt.Errorf("sdl init: %s", sdl.GetError())
	}
	defer sdl.Quit()

	r.log.Info().Msg("SDL3 joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return nil
		default:
		}

		r.processEvents()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		case sdl.EventJoystickHatMotion:
			he := event.JHat()
			if !r.hasActive || he.Which != r.activeID {
				continue
			}
			if info := r.joysticks[he.Which]; info != nil && info.mapping.HasHat {
				r.hats.Update(int(he.Hat), gamepad.DirectionFromHat(uint8(he.Value)))
			}
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		r.log.Warn().Uint32("id", uint32(instanceID)).Str("error", sdl.GetError()).Msg("failed to open joystick")
		return
	}

	jsID := sdl.GetJoystickID(js)
	vendorID := sdl.GetJoystickVendor(js)
	productID := sdl.GetJoystickProduct(js)
	name := sdl.GetJoystickName(js)
	mapping := gamepad.GetMapping(vendorID, productID)

	r.joysticks[jsID] = &joystickInfo{
		joystick: js,
		mapping:  mapping,
		name:     name,
		id:       jsID,
	}

	numHats := sdl.GetNumJoystickHats(js)
	r.log.Info().
		Str("name", name).
		Str("vid", fmt.Sprintf("%04X", vendorID)).
		Str("pid", fmt.Sprintf("%04X", productID)).
		Str("mapping", mapping.Name).
		Int("hats", int(numHats)).
		Msg("joystick connected")

	if !r.hasActive {
		r.activate(r.joysticks[jsID])
	}
}

func (r *Reader) activate(info *joystickInfo) {
	r.activeID = info.id
	r.hasActive = true
	r.log.Info().Str("name", info.name).Uint32("id", uint32(info.id)).Msg("active joystick set")
	r.info.Set(gamepad.DeviceInfo{
		Connected:      true,
		Name:           info.name,
		ControllerType: info.mapping.Name,
		Hats:           int(sdl.GetNumJoystickHats(info.joystick)),
		Source:         "sdl",
	})
	r.syncHats(info)
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	r.log.Info().Str("name", info.name).Msg("joystick disconnected")
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)
	if !r.hasActive || r.activeID != instanceID {
		return
	}

	// Held directions belong to the pad that left.
	r.hasActive = false
	r.hats.CenterAll()
	r.info.Set(gamepad.DeviceInfo{Source: "sdl"})
	if next := r.nextJoystick(); next != nil {
		r.activate(next)
	}
}

// nextJoystick picks the connected joystick with the lowest instance id.
func (r *Reader) nextJoystick() *joystickInfo {
	var best *joystickInfo
	for _, js := range r.joysticks {
		if !sdl.JoystickConnected(js.joystick) {
			continue
		}
		if best == nil || js.id < best.id {
			best = js
		}
	}
	return best
}

func (r *Reader) closeAll() {
	r.hats.CenterAll()
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

// syncHats reads the hat positions of a newly active pad.
func (r *Reader) syncHats(info *joystickInfo) {
	if !info.mapping.HasHat {
		return
	}
	n := sdl.GetNumJoystickHats(info.joystick)
	for hat := int32(0); hat < n; hat++ {
		r.hats.Update(int(hat), gamepad.DirectionFromHat(sdl.GetJoystickHat(info.joystick, hat)))
	}
}

//go:build nosdl

package main

import (
	"errors"

	"github.com/soar/padmapper/internal/gamepad"
)

// Built with -tags nosdl the binary does not link libSDL3 and only the evdev
// input is available.
func newSDLSource() (gamepad.Source, error) {
	return nil, errors.New("built without SDL support, use --input=evdev")
}

//go:build !nosdl

package main

import (
	"github.com/soar/padmapper/internal/gamepad"
	"github.com/soar/padmapper/internal/gamepad/sdlpad"
)

func newSDLSource() (gamepad.Source, error) {
	return sdlpad.NewReader(), nil
}

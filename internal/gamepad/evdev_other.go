//go:build !linux

package gamepad

import (
	"context"
	"errors"
)

// EvdevSource is only available on Linux.
type EvdevSource struct{ path string }

func NewEvdevSource(path string) *EvdevSource { return &EvdevSource{path: path} }

func (s *EvdevSource) Events() <-chan HatEvent { return nil }

func (s *EvdevSource) Info() DeviceInfo { return DeviceInfo{Source: "evdev"} }

func (s *EvdevSource) Run(context.Context) error {
	return errors.Join(ErrNoDevice, errors.New("evdev is only supported on linux"))
}

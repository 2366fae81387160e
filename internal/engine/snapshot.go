package engine

import (
	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/profile"
)

// Snapshot is a copy of the engine state taken on the engine goroutine.
type Snapshot struct {
	Profile   string      `json:"profile,omitempty"`
	ActiveSet int         `json:"activeSet"`
	Edited    bool        `json:"edited"`
	DPads     []DPadState `json:"dpads"`
}

// DPadState describes one resolver of the active set.
type DPadState struct {
	Index     int      `json:"index"`
	Set       int      `json:"set"`
	Name      string   `json:"name"`
	Mode      string   `json:"mode"`
	Delay     int      `json:"delay"`
	Direction string   `json:"direction"`
	Pending   string   `json:"pending"`
	Pressed   []string `json:"pressed"`
}

func takeSnapshot(d *profile.Device, path string) Snapshot {
	s := Snapshot{
		Profile:   path,
		ActiveSet: d.ActiveSet(),
		Edited:    d.Edited(),
		DPads:     []DPadState{},
	}
	for _, r := range d.Resolvers(d.ActiveSet()) {
		s.DPads = append(s.DPads, resolverState(r))
	}
	return s
}

func resolverState(r *dpad.Resolver) DPadState {
	name := r.Name()
	if name == "" {
		name = r.DefaultName()
	}
	st := DPadState{
		Index:     r.Index(),
		Set:       r.OriginSet(),
		Name:      name,
		Mode:      r.Mode().String(),
		Delay:     r.Delay(),
		Direction: r.CurrentDirection().String(),
		Pending:   r.PendingDirection().String(),
		Pressed:   []string{},
	}
	for _, b := range r.Buttons() {
		if b.Pressed() {
			st.Pressed = append(st.Pressed, b.Direction().String())
		}
	}
	return st
}

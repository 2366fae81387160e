// Package output synthesizes keyboard and mouse events.
package output

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrUnsupported is returned by backends that do not exist on this platform.
var ErrUnsupported = errors.New("output backend not supported on this platform")

// Sink receives synthesized input. Codes are Linux input event codes.
type Sink interface {
	KeyDown(code int) error
	KeyUp(code int) error
	ButtonDown(code int) error
	ButtonUp(code int) error
	Move(dx, dy int) error
	Wheel(dx, dy int) error
	Close() error
}

// EventKind names a recorded event.
type EventKind string

const (
	KeyDown    EventKind = "keydown"
	KeyUp      EventKind = "keyup"
	ButtonDown EventKind = "buttondown"
	ButtonUp   EventKind = "buttonup"
	Move       EventKind = "move"
	Wheel      EventKind = "wheel"
)

type Event struct {
	Kind EventKind
	Code int
	DX   int
	DY   int
}

func (e Event) String() string {
	switch e.Kind {
	case Move, Wheel:
		return fmt.Sprintf("%s(%d,%d)", e.Kind, e.DX, e.DY)
	default:
		return fmt.Sprintf("%s(%s)", e.Kind, KeyName(e.Code))
	}
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) add(e Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) KeyDown(code int) error    { return r.add(Event{Kind: KeyDown, Code: code}) }
func (r *Recorder) KeyUp(code int) error      { return r.add(Event{Kind: KeyUp, Code: code}) }
func (r *Recorder) ButtonDown(code int) error { return r.add(Event{Kind: ButtonDown, Code: code}) }
func (r *Recorder) ButtonUp(code int) error   { return r.add(Event{Kind: ButtonUp, Code: code}) }
func (r *Recorder) Move(dx, dy int) error     { return r.add(Event{Kind: Move, DX: dx, DY: dy}) }
func (r *Recorder) Wheel(dx, dy int) error    { return r.add(Event{Kind: Wheel, DX: dx, DY: dy}) }
func (r *Recorder) Close() error              { return nil }

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// LogSink writes every event to a logger instead of a device.
type LogSink struct {
	log *zerolog.Logger
}

func NewLogSink(l *zerolog.Logger) *LogSink {
	return &LogSink{log: l}
}

func (s *LogSink) key(kind EventKind, code int) error {
	s.log.Info().Str("event", string(kind)).Str("key", KeyName(code)).Int("code", code).Msg("output")
	return nil
}

func (s *LogSink) KeyDown(code int) error    { return s.key(KeyDown, code) }
func (s *LogSink) KeyUp(code int) error      { return s.key(KeyUp, code) }
func (s *LogSink) ButtonDown(code int) error { return s.key(ButtonDown, code) }
func (s *LogSink) ButtonUp(code int) error   { return s.key(ButtonUp, code) }

func (s *LogSink) Move(dx, dy int) error {
	s.log.Debug().Int("dx", dx).Int("dy", dy).Msg("output move")
	return nil
}

func (s *LogSink) Wheel(dx, dy int) error {
	s.log.Info().Int("dx", dx).Int("dy", dy).Msg("output wheel")
	return nil
}

func (s *LogSink) Close() error { return nil }

package hub

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/atomic"

	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/engine"
)

const fullSyncInterval = 5 * time.Second

// StateSource provides snapshots for full syncs.
type StateSource interface {
	Snapshot() engine.Snapshot
}

// Broadcaster turns resolver notifications into websocket messages. Its
// dpad.Listener methods run on the engine goroutine and never block.
type Broadcaster struct {
	hub    *Hub
	source StateSource
	seq    atomic.Int64
	events atomic.Int64
}

func NewBroadcaster(h *Hub) *Broadcaster {
	return &Broadcaster{hub: h}
}

// SetSource attaches the snapshot provider. It must be called before Run.
func (b *Broadcaster) SetSource(s StateSource) {
	b.source = s
}

// Events is the number of resolver events broadcast so far.
func (b *Broadcaster) Events() int64 {
	return b.events.Load()
}

// Run sends a full snapshot every few seconds until ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context) {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if b.source == nil || b.hub.Count() == 0 {
				continue
			}
			if data, ok := b.fullMessage(); ok {
				b.hub.Broadcast(data)
			}
		}
	}
}

// SendInitialState queues the current snapshot for a client. Call it before
// Register so the snapshot precedes any broadcast.
func (b *Broadcaster) SendInitialState(c *Client) {
	if b.source == nil {
		return
	}
	if data, ok := b.fullMessage(); ok {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (b *Broadcaster) fullMessage() ([]byte, bool) {
	state := b.source.Snapshot()
	data, err := json.Marshal(NewFullMessage(b.seq.Inc(), &state))
	if err != nil {
		b.hub.log.Error().Err(err).Msg("marshal full message")
		return nil, false
	}
	return data, true
}

func (b *Broadcaster) send(event string, r *dpad.Resolver, fill func(*DPadEvent)) {
	if b.hub.Count() == 0 {
		return
	}
	ev := &DPadEvent{Index: r.Index(), Set: r.OriginSet()}
	if fill != nil {
		fill(ev)
	}
	data, err := json.Marshal(NewEventMessage(b.seq.Inc(), event, ev))
	if err != nil {
		b.hub.log.Error().Err(err).Msg("marshal event message")
		return
	}
	b.events.Inc()
	b.hub.Broadcast(data)
}

func (b *Broadcaster) OnActivityStarted(r *dpad.Resolver, dir dpad.Direction) {
	b.send("activity", r, func(ev *DPadEvent) { ev.Direction = dir.String() })
}

func (b *Broadcaster) OnReleased(r *dpad.Resolver, dir dpad.Direction) {
	b.send("released", r, func(ev *DPadEvent) { ev.Direction = dir.String() })
}

func (b *Broadcaster) OnModeChanged(r *dpad.Resolver) {
	b.send("mode", r, func(ev *DPadEvent) { ev.Mode = r.Mode().String() })
}

func (b *Broadcaster) OnDelayChanged(r *dpad.Resolver, delay int) {
	b.send("delay", r, func(ev *DPadEvent) { ev.Delay = &delay })
}

func (b *Broadcaster) OnNameChanged(r *dpad.Resolver) {
	b.send("name", r, func(ev *DPadEvent) { ev.Name = r.Name() })
}

func (b *Broadcaster) OnPropertyUpdated(r *dpad.Resolver) {
	b.send("edited", r, nil)
}

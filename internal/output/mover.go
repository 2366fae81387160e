package output

import (
	"math"
	"time"
)

// pixelsPerSpeedUnit converts a mouse speed setting into pixels per second.
const pixelsPerSpeedUnit = 20.0

type velocity struct{ x, y float64 }

// Mover turns held mouse movement slots into relative pointer motion.
type Mover struct {
	sink Sink
	held map[any]velocity
	remX float64
	remY float64
}

func NewMover(sink Sink) *Mover {
	return &Mover{sink: sink, held: make(map[any]velocity)}
}

// Hold starts movement for key. Speeds are in config units; dirX and dirY
// are -1, 0 or 1.
func (m *Mover) Hold(key any, dirX, dirY int, speedX, speedY, sensitivity float64) {
	m.held[key] = velocity{
		x: float64(dirX) * speedX * sensitivity * pixelsPerSpeedUnit,
		y: float64(dirY) * speedY * sensitivity * pixelsPerSpeedUnit,
	}
}

// Release stops movement for key.
func (m *Mover) Release(key any) {
	delete(m.held, key)
	if len(m.held) == 0 {
		m.remX, m.remY = 0, 0
	}
}

// Active reports whether anything is being held.
func (m *Mover) Active() bool {
	return len(m.held) > 0
}

// Step emits the motion accumulated over dt.
func (m *Mover) Step(dt time.Duration) error {
	if len(m.held) == 0 {
		return nil
	}
	var vx, vy float64
	for _, v := range m.held {
		vx += v.x
		vy += v.y
	}
	secs := dt.Seconds()
	m.remX += vx * secs
	m.remY += vy * secs

	dx, dy := math.Trunc(m.remX), math.Trunc(m.remY)
	m.remX -= dx
	m.remY -= dy
	if dx == 0 && dy == 0 {
		return nil
	}
	return m.sink.Move(int(dx), int(dy))
}

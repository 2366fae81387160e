package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueRunsInDeadlineOrder(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock)

	var order []string
	q.Schedule(30*time.Millisecond, func() { order = append(order, "c") })
	q.Schedule(10*time.Millisecond, func() { order = append(order, "a") })
	q.Schedule(20*time.Millisecond, func() { order = append(order, "b") })

	assert.Equal(t, 0, q.RunDue())

	clock.Advance(20 * time.Millisecond)
	assert.Equal(t, 2, q.RunDue())
	assert.Equal(t, []string{"a", "b"}, order)

	clock.Advance(10 * time.Millisecond)
	assert.Equal(t, 1, q.RunDue())
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 0, q.Len())
}

func TestQueueStop(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock)

	fired := false
	e := q.Schedule(5*time.Millisecond, func() { fired = true })
	assert.True(t, e.Stop())
	assert.False(t, e.Stop(), "second stop is a no-op")

	clock.Advance(time.Second)
	assert.Equal(t, 0, q.RunDue())
	assert.False(t, fired)
}

func TestQueueStopAfterRun(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock)

	e := q.Schedule(time.Millisecond, func() {})
	clock.Advance(time.Millisecond)
	require.Equal(t, 1, q.RunDue())
	assert.False(t, e.Stop())
}

func TestQueueNextAndWake(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock)

	_, ok := q.Next()
	assert.False(t, ok)

	q.Schedule(50*time.Millisecond, func() {})
	select {
	case <-q.Wake():
	default:
		t.Fatal("expected wake signal for first entry")
	}

	next, ok := q.Next()
	require.True(t, ok)
	assert.Equal(t, clock.Now().Add(50*time.Millisecond), next)

	q.Schedule(80*time.Millisecond, func() {})
	select {
	case <-q.Wake():
		t.Fatal("later entry must not wake the loop")
	default:
	}
}

func TestQueueCallbackMayReschedule(t *testing.T) {
	clock := clockwork.NewFakeClock()
	q := NewQueue(clock)

	count := 0
	var tick func()
	tick = func() {
		count++
		if count < 3 {
			q.Schedule(0, tick)
		}
	}
	q.Schedule(0, tick)
	assert.Equal(t, 3, q.RunDue())
	assert.Equal(t, 3, count)
}

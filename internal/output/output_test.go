package output

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyCode(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"a", KEY_A, true},
		{"A", KEY_A, true},
		{" up ", KEY_UP, true},
		{"1", KEY_1, true},
		{"0", KEY_0, true},
		{"f10", KEY_F1 + 9, true},
		{"mouse1", BTN_LEFT, true},
		{"30", 30, true},
		{"0x110", BTN_LEFT, true},
		{"nonsense", 0, false},
		{"-4", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := KeyCode(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyName(t *testing.T) {
	assert.Equal(t, "a", KeyName(KEY_A))
	assert.Equal(t, "9", KeyName(KEY_1+8))
	assert.Equal(t, "mouse3", KeyName(BTN_RIGHT))
	assert.Equal(t, "9999", KeyName(9999))
}

func TestKeyCodesSplitsButtons(t *testing.T) {
	keys, buttons := KeyCodes()
	assert.ElementsMatch(t, []int{BTN_LEFT, BTN_RIGHT, BTN_MIDDLE, BTN_SIDE, BTN_EXTRA}, buttons)
	assert.Contains(t, keys, KEY_SPACE)
	assert.NotContains(t, keys, BTN_LEFT)
}

func TestMoverAccumulatesFractions(t *testing.T) {
	rec := NewRecorder()
	m := NewMover(rec)

	// 1 speed unit at sensitivity 1 is 20px/s; 10ms steps give 0.2px each.
	m.Hold("right", 1, 0, 1, 1, 1)
	require.True(t, m.Active())
	for i := 0; i < 4; i++ {
		require.NoError(t, m.Step(10*time.Millisecond))
	}
	assert.Empty(t, rec.Events())

	require.NoError(t, m.Step(10*time.Millisecond))
	assert.Equal(t, []Event{{Kind: Move, DX: 1}}, rec.Events())

	m.Release("right")
	assert.False(t, m.Active())
	require.NoError(t, m.Step(time.Second))
	assert.Len(t, rec.Events(), 1)
}

func TestMoverCombinesHeldDirections(t *testing.T) {
	rec := NewRecorder()
	m := NewMover(rec)

	m.Hold("up", 0, -1, 50, 50, 1)
	m.Hold("left", -1, 0, 50, 50, 2)
	require.NoError(t, m.Step(100*time.Millisecond))

	assert.Equal(t, []Event{{Kind: Move, DX: -200, DY: -100}}, rec.Events())
}

func TestRecorderReset(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.KeyDown(KEY_A))
	require.NoError(t, rec.Wheel(0, 1))
	assert.Equal(t, "keydown(a)", rec.Events()[0].String())
	assert.Equal(t, "wheel(0,1)", rec.Events()[1].String())

	rec.Reset()
	assert.Empty(t, rec.Events())
}

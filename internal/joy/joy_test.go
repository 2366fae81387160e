package joy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNames(t *testing.T) {
	for c, name := range curveNames {
		got, ok := ParseMouseCurve(name)
		assert.True(t, ok, name)
		assert.Equal(t, c, got)
	}
	for c, name := range accelNames {
		got, ok := ParseAccelCurve(name)
		assert.True(t, ok, name)
		assert.Equal(t, c, got)
	}

	m, ok := ParseSlotMode(" MouseWheel ")
	assert.True(t, ok)
	assert.Equal(t, MouseWheelSlot, m)

	_, ok = ParseMouseCurve("bezier")
	assert.False(t, ok)
	_, ok = ParseSlotMode("joystick")
	assert.False(t, ok)
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "spring", MouseSpring.String())
	assert.Equal(t, "cursor", MouseCursor.String())
	assert.Equal(t, "unknown", MouseCurve(99).String())
	assert.Equal(t, "setchange:3", Slot{Code: 3, Mode: SetChangeSlot}.String())
}

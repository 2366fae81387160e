package dpad_test

import (
	"bytes"
	"encoding/xml"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/joy"
)

func writeResolver(t *testing.T, r *dpad.Resolver) string {
	t.Helper()
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	require.NoError(t, r.WriteConfig(enc))
	require.NoError(t, enc.Flush())
	return buf.String()
}

func readResolver(t *testing.T, r *dpad.Resolver, doc string) {
	t.Helper()
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		require.NoError(t, err)
		if start, ok := tok.(xml.StartElement); ok {
			require.Equal(t, dpad.XMLName, start.Name.Local)
			require.NoError(t, r.ReadConfig(dec, start))
			return
		}
	}
}

func TestWriteDefaultResolverIsEmpty(t *testing.T) {
	h := newHarness(t, dpad.StandardMode)
	assert.Empty(t, writeResolver(t, h.resolver))
}

func TestWriteConfigLayout(t *testing.T) {
	h := newHarness(t, dpad.EightWayMode)
	require.True(t, h.resolver.SetDelay(60))
	up, _ := h.resolver.Button(dpad.Up)
	up.AssignSlot(joy.Slot{Code: 30, Mode: joy.KeyboardSlot})
	diag, _ := h.resolver.Button(dpad.LeftDown)
	diag.AssignSlot(joy.Slot{Code: joy.MoveDown, Mode: joy.MouseMovementSlot})

	got := writeResolver(t, h.resolver)
	want := `<dpad index="1">` +
		`<mode>eight-way</mode>` +
		`<dpadDelay>60</dpadDelay>` +
		`<dpadbutton index="1"><slots><slot><code>a</code><mode>keyboard</mode></slot></slots></dpadbutton>` +
		`<dpadbutton index="12"><slots><slot><code>2</code><mode>mousemovement</mode></slot></slots></dpadbutton>` +
		`</dpad>`
	assert.Equal(t, want, got)
}

func TestConfigRoundTrip(t *testing.T) {
	src := newHarness(t, dpad.FourWayDiagonal)
	require.True(t, src.resolver.SetDelay(250))
	src.resolver.SetButtonsSensitivity(2.5)
	rd, _ := src.resolver.Button(dpad.RightDown)
	rd.AssignSlot(joy.Slot{Code: 3, Mode: joy.SetChangeSlot})

	doc := writeResolver(t, src.resolver)

	dst := newHarness(t, dpad.StandardMode)
	readResolver(t, dst.resolver, doc)

	assert.Equal(t, dpad.FourWayDiagonal, dst.resolver.Mode())
	assert.Equal(t, 250, dst.resolver.Delay())
	assert.Equal(t, 2.5, dst.resolver.ButtonsPresetSensitivity())
	got, _ := dst.resolver.Button(dpad.RightDown)
	assert.Equal(t, []joy.Slot{{Code: 3, Mode: joy.SetChangeSlot}}, got.AssignedSlots())
	assert.Equal(t, doc, writeResolver(t, dst.resolver))
}

func TestReadConfigSkipsBadValues(t *testing.T) {
	h := newHarness(t, dpad.StandardMode)
	readResolver(t, h.resolver, `<dpad index="1">
		<mode>sideways</mode>
		<dpadDelay>5</dpadDelay>
		<dpadbutton index="5"><slots><slot><code>a</code><mode>keyboard</mode></slot></slots></dpadbutton>
		<dpadbutton index="0"><slots><slot><code>a</code><mode>keyboard</mode></slot></slots></dpadbutton>
		<dpadbutton index="x"/>
		<unknown><nested>1</nested></unknown>
		<dpadbutton index="8"><slots><slot><code>b</code><mode>keyboard</mode></slot></slots></dpadbutton>
	</dpad>`)

	assert.Equal(t, dpad.StandardMode, h.resolver.Mode())
	assert.Equal(t, 0, h.resolver.Delay())
	for _, b := range h.resolver.Buttons() {
		if b.Direction() == dpad.Left {
			assert.Len(t, b.AssignedSlots(), 1)
			continue
		}
		assert.Empty(t, b.AssignedSlots(), b.Direction().String())
	}
}

func TestReadConfigMalformed(t *testing.T) {
	h := newHarness(t, dpad.StandardMode)
	dec := xml.NewDecoder(strings.NewReader(`<dpad index="1"><mode>eight-way</dpad>`))
	tok, err := dec.Token()
	require.NoError(t, err)
	assert.Error(t, h.resolver.ReadConfig(dec, tok.(xml.StartElement)))
}

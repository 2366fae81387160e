package profile

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soar/padmapper/internal/dpad"
	"github.com/soar/padmapper/internal/joy"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.device.SetName("arcade")
	f.assign(t, 0, 0, dpad.Up, key("w"))
	f.assign(t, 0, 0, dpad.Up, setChange(2))
	r, _ := f.device.Resolver(2, 1)
	r.SetMode(dpad.FourWayCardinal)
	require.True(t, r.SetDelay(80))
	_, _ = f.device.Resolver(4, 0)

	var buf bytes.Buffer
	require.NoError(t, f.device.Save(&buf))
	doc := buf.String()

	assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, doc, `<gamecontroller configversion="19" appversion="`+AppVersion+`">`)
	assert.Contains(t, doc, `<set index="1">`)
	assert.Contains(t, doc, `<set index="3">`)
	assert.NotContains(t, doc, `<set index="5">`)
	assert.Contains(t, doc, `<mode>four-way</mode>`)

	g := newFixture(t)
	require.NoError(t, g.device.Load(strings.NewReader(doc)))
	assert.False(t, g.device.Edited())
	assert.Equal(t, "arcade", g.device.Name())

	up, _ := g.device.Resolver(0, 0)
	b, _ := up.Button(dpad.Up)
	assert.Equal(t, []joy.Slot{key("w"), setChange(2)}, b.AssignedSlots())

	loaded, _ := g.device.Resolver(2, 1)
	assert.Equal(t, dpad.FourWayCardinal, loaded.Mode())
	assert.Equal(t, 80, loaded.Delay())

	var again bytes.Buffer
	require.NoError(t, g.device.Save(&again))
	assert.Equal(t, doc, again.String())
}

func TestSaveEmptyProfile(t *testing.T) {
	f := newFixture(t)
	var buf bytes.Buffer
	require.NoError(t, f.device.Save(&buf))
	assert.Contains(t, buf.String(), "<sets></sets>")
}

func TestLoadReplacesState(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Down, key("s"))
	f.assign(t, 0, 0, dpad.Left, setChange(6))
	f.device.Dispatch(0, dpad.Left)
	require.Equal(t, 6, f.device.ActiveSet())
	f.device.Dispatch(0, dpad.Down)
	f.sink.Reset()

	require.NoError(t, f.device.Load(strings.NewReader(`<gamecontroller><sets/></gamecontroller>`)))

	assert.Equal(t, 0, f.device.ActiveSet())
	assert.True(t, f.device.IsDefault())
	assert.Empty(t, f.events(), "set 6 had nothing to release")
}

func TestLoadReleasesHeldButtons(t *testing.T) {
	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Down, key("s"))
	f.device.Dispatch(0, dpad.Down)

	require.NoError(t, f.device.Load(strings.NewReader(`<gamecontroller/>`)))
	assert.Equal(t, []string{"keydown(s)", "keyup(s)"}, f.events())
}

func TestLoadSkipsUnknownContent(t *testing.T) {
	f := newFixture(t)
	err := f.device.Load(strings.NewReader(`<?xml version="1.0"?>
<gamecontroller configversion="19" appversion="99.0.0">
  <stickAxisAssociation/>
  <sets>
    <set index="0"><dpad index="1"><mode>eight-way</mode></dpad></set>
    <set index="9"><dpad index="1"><mode>eight-way</mode></dpad></set>
    <set index="two"/>
    <other/>
    <set index="8">
      <dpad index="0"><mode>eight-way</mode></dpad>
      <dpad index="2"><mode>diagonal</mode><dpadDelay>40</dpadDelay></dpad>
      <trigger index="1"/>
    </set>
  </sets>
  <dpad index="1"><mode>four-way</mode></dpad>
</gamecontroller>`))
	require.NoError(t, err)

	last, _ := f.device.Resolver(7, 1)
	assert.Equal(t, dpad.FourWayDiagonal, last.Mode())
	assert.Equal(t, 40, last.Delay())

	top, _ := f.device.Resolver(0, 0)
	assert.Equal(t, dpad.FourWayCardinal, top.Mode())

	for set := 1; set < 7; set++ {
		assert.Empty(t, f.device.Resolvers(set))
	}
	assert.Len(t, f.device.Resolvers(7), 1)
}

func TestLoadErrors(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.device.Load(strings.NewReader(`<profile/>`)))
	assert.Error(t, f.device.Load(strings.NewReader(``)))
	assert.Error(t, f.device.Load(strings.NewReader(`<gamecontroller><sets>`)))
}

func TestFailedLoadKeepsProfile(t *testing.T) {
	f := newFixture(t)
	r, err := f.device.Resolver(0, 0)
	require.NoError(t, err)
	require.True(t, r.SetDelay(50))
	f.assign(t, 0, 0, dpad.Up, key("w"))
	f.device.ClearEdited()

	err = f.device.Load(strings.NewReader(
		`<gamecontroller><sets><set index="1"><dpad index="1"><mode>eight-way</mode>`))
	require.Error(t, err)

	kept, err := f.device.Resolver(0, 0)
	require.NoError(t, err)
	assert.Same(t, r, kept)
	assert.Equal(t, dpad.StandardMode, kept.Mode())
	assert.Equal(t, 50, kept.Delay())
	up, _ := kept.Button(dpad.Up)
	assert.Equal(t, []joy.Slot{key("w")}, up.AssignedSlots())
	assert.False(t, f.device.Edited(), "a failed load is not an edit")

	f.device.Dispatch(0, dpad.Up)
	f.clock.Advance(50 * time.Millisecond)
	f.queue.RunDue()
	f.device.Dispatch(0, dpad.Centered)
	f.clock.Advance(50 * time.Millisecond)
	f.queue.RunDue()
	assert.Equal(t, []string{"keydown(w)", "keyup(w)"}, f.events())
}

func TestLoadedResolversReportEdits(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.device.Load(strings.NewReader(
		`<gamecontroller><sets><set index="1"><dpad index="1"><mode>eight-way</mode></dpad></set></sets></gamecontroller>`)))
	require.False(t, f.device.Edited())

	r, err := f.device.Resolver(0, 0)
	require.NoError(t, err)
	assert.Equal(t, dpad.EightWayMode, r.Mode())
	require.True(t, r.SetDelay(30))
	assert.True(t, f.device.Edited())
}

func TestSaveFileCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "padmapper", "profile.gamecontroller.xml")

	f := newFixture(t)
	f.assign(t, 0, 0, dpad.Down, key("s"))
	require.NoError(t, f.device.SaveFile(path))

	g := newFixture(t)
	require.NoError(t, g.device.LoadFile(path))
	r, _ := g.device.Resolver(0, 0)
	down, _ := r.Button(dpad.Down)
	assert.Equal(t, []joy.Slot{key("s")}, down.AssignedSlots())
}

func TestSaveFileAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.xml")

	f := newFixture(t)
	f.assign(t, 1, 0, dpad.RightUp, key("e"))
	r, _ := f.device.Resolver(1, 0)
	r.SetMode(dpad.EightWayMode)
	require.True(t, f.device.Edited())

	require.NoError(t, f.device.SaveFile(path))
	assert.False(t, f.device.Edited())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file is gone")

	g := newFixture(t)
	require.NoError(t, g.device.LoadFile(path))
	loaded, _ := g.device.Resolver(1, 0)
	assert.Equal(t, dpad.EightWayMode, loaded.Mode())
}

func TestLoadFileMissing(t *testing.T) {
	f := newFixture(t)
	err := f.device.LoadFile(filepath.Join(t.TempDir(), "missing.xml"))

	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.Contains(t, err.Error(), "missing.xml")
}

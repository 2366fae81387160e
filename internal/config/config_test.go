package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into an empty directory so no stray padmapper.yaml is found.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", dir)
	return dir
}

func TestDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("padmapper", nil)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, InputSDL, cfg.Input)
	assert.Equal(t, OutputUinput, cfg.Output)
	assert.Equal(t, 30*time.Second, cfg.Autosave)
	assert.True(t, cfg.Watch)
	assert.False(t, cfg.Tray)
	assert.Equal(t, 256, cfg.QueueSize)
	assert.NotEmpty(t, cfg.Profile)
	assert.Empty(t, cfg.File)
	assert.Equal(t, "http://localhost:8080", cfg.URL())
}

func TestFlags(t *testing.T) {
	chdir(t)

	cfg, err := Load("padmapper", []string{
		"-p", "pad.xml", "--listen", "127.0.0.1:9000", "--input", "EVDEV",
		"--evdev-device", "/dev/input/event3", "--output", "log", "--autosave", "0", "--watch=false",
	})
	require.NoError(t, err)
	assert.Equal(t, "pad.xml", cfg.Profile)
	assert.Equal(t, InputEvdev, cfg.Input)
	assert.Equal(t, "/dev/input/event3", cfg.EvdevDevice)
	assert.Equal(t, OutputLog, cfg.Output)
	assert.Zero(t, cfg.Autosave)
	assert.False(t, cfg.Watch)
	assert.Equal(t, "http://127.0.0.1:9000", cfg.URL())
}

func TestEnvironment(t *testing.T) {
	chdir(t)
	t.Setenv("PADMAPPER_LOG_LEVEL", "debug")
	t.Setenv("PADMAPPER_OUTPUT", "none")

	cfg, err := Load("padmapper", []string{"--output", "log"})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, OutputLog, cfg.Output, "flags win over the environment")
}

func TestConfigFile(t *testing.T) {
	dir := chdir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "padmapper.yaml"), []byte(
		"profile: from-file.xml\nautosave: 1m\ntray: true\n"), 0o644))

	cfg, err := Load("padmapper", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-file.xml", cfg.Profile)
	assert.Equal(t, time.Minute, cfg.Autosave)
	assert.True(t, cfg.Tray)
	assert.NotEmpty(t, cfg.File)

	toml := filepath.Join(dir, "other.toml")
	require.NoError(t, os.WriteFile(toml, []byte("listen = \":9090\"\n"), 0o644))
	cfg, err = Load("padmapper", []string{"--config", toml})
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
}

func TestInvalid(t *testing.T) {
	chdir(t)

	_, err := Load("padmapper", []string{"--input", "xinput"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load("padmapper", []string{"--output", "midi"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load("padmapper", []string{"--queue-size", "0"})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = Load("padmapper", []string{"--config", "missing.yaml"})
	assert.Error(t, err)

	_, err = Load("padmapper", []string{"--help"})
	assert.ErrorIs(t, err, pflag.ErrHelp)
}

// Package config merges command line flags, PADMAPPER_* environment
// variables and an optional padmapper.{yaml,toml,json} file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	InputSDL   = "sdl"
	InputEvdev = "evdev"

	OutputUinput = "uinput"
	OutputLog    = "log"
	OutputNone   = "none"
)

const envPrefix = "PADMAPPER"

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Profile      string
	Listen       string
	LogLevel     string
	Input        string
	EvdevDevice  string
	Output       string
	Autosave     time.Duration
	Watch        bool
	Tray         bool
	MoveInterval time.Duration
	QueueSize    int

	// File is the config file that was read, if any.
	File string
}

// DefaultProfile is the profile path used when none is configured.
func DefaultProfile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "profile.gamecontroller.xml"
	}
	return filepath.Join(dir, "padmapper", "profile.gamecontroller.xml")
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "config file (default: padmapper.yaml in . or $HOME/.config/padmapper)")
	fs.StringP("profile", "p", DefaultProfile(), "profile file to load and save")
	fs.StringP("listen", "l", ":8080", "address of the web monitor")
	fs.String("log-level", "info", "trace, debug, info, warn, error or off")
	fs.String("input", InputSDL, "controller backend: sdl or evdev")
	fs.String("evdev-device", "", "evdev node to read; empty picks the first pad with a hat")
	fs.String("output", OutputUinput, "where button events go: uinput, log or none")
	fs.Duration("autosave", 30*time.Second, "save interval for edited profiles, 0 disables")
	fs.Bool("watch", true, "reload the profile when it changes on disk")
	fs.Bool("tray", false, "show a tray icon even when started from a terminal")
	fs.Duration("move-interval", 10*time.Millisecond, "pointer movement tick")
	fs.Int("queue-size", 256, "input events buffered ahead of the engine")
	return fs
}

// Load parses args (without the program name) and merges them over the
// environment and config file. pflag.ErrHelp is returned for -h.
func Load(name string, args []string) (*Config, error) {
	fs := newFlagSet(name)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("padmapper")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "padmapper"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Profile:      v.GetString("profile"),
		Listen:       v.GetString("listen"),
		LogLevel:     v.GetString("log-level"),
		Input:        strings.ToLower(v.GetString("input")),
		EvdevDevice:  v.GetString("evdev-device"),
		Output:       strings.ToLower(v.GetString("output")),
		Autosave:     v.GetDuration("autosave"),
		Watch:        v.GetBool("watch"),
		Tray:         v.GetBool("tray"),
		MoveInterval: v.GetDuration("move-interval"),
		QueueSize:    v.GetInt("queue-size"),
		File:         v.ConfigFileUsed(),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.Input {
	case InputSDL, InputEvdev:
	default:
		return fmt.Errorf("%w: input %q", ErrInvalid, c.Input)
	}
	switch c.Output {
	case OutputUinput, OutputLog, OutputNone:
	default:
		return fmt.Errorf("%w: output %q", ErrInvalid, c.Output)
	}
	if c.Autosave < 0 {
		return fmt.Errorf("%w: autosave %s", ErrInvalid, c.Autosave)
	}
	if c.MoveInterval <= 0 {
		return fmt.Errorf("%w: move-interval %s", ErrInvalid, c.MoveInterval)
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("%w: queue-size %d", ErrInvalid, c.QueueSize)
	}
	return nil
}

// URL is the address a local browser should open for the monitor.
func (c *Config) URL() string {
	host := c.Listen
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host
}

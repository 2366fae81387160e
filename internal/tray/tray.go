// Package tray shows a system tray icon for builds started without a terminal.
package tray

import (
	"os/exec"
	"runtime"
	"sync"
	"sync/atomic"

	"fyne.io/systray"
	"github.com/rs/zerolog"

	"github.com/soar/padmapper/internal/logging"
)

// Actions are the callbacks behind the tray menu.
type Actions struct {
	// Save writes the profile. The menu item is hidden when nil.
	Save func() error
	// Shutdown is called once when "Exit" is clicked.
	Shutdown func()
}

// Tray manages the system tray icon and menu
type Tray struct {
	url          string
	actions      Actions
	once         sync.Once
	shuttingDown atomic.Bool
	menuOpen     *systray.MenuItem
	menuSave     *systray.MenuItem
	menuExit     *systray.MenuItem
	log          *zerolog.Logger
}

// New creates a tray that opens url from its menu.
func New(url string, actions Actions) *Tray {
	return &Tray{
		url:     url,
		actions: actions,
		log:     logging.Subsystem("tray"),
	}
}

// Run initializes and runs the system tray (blocks until Quit())
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the icon and makes Run return.
func (t *Tray) Quit() {
	t.shuttingDown.Store(true)
	systray.Quit()
}

func (t *Tray) onReady() {
	if icon, err := Icon(runtime.GOOS == "windows"); err == nil {
		systray.SetIcon(icon)
	} else {
		t.log.Warn().Err(err).Msg("tray icon")
	}
	systray.SetTitle("padmapper")
	systray.SetTooltip("padmapper - " + t.url)

	t.menuOpen = systray.AddMenuItem("Open monitor", "Open the web monitor")
	if t.actions.Save != nil {
		t.menuSave = systray.AddMenuItem("Save profile", "Write the profile to disk")
	}
	systray.AddSeparator()
	t.menuExit = systray.AddMenuItem("Exit", "Quit application")

	go t.handleMenuClicks()

	t.log.Info().Msg("system tray initialized")
}

func (t *Tray) handleMenuClicks() {
	var saveCh <-chan struct{}
	if t.menuSave != nil {
		saveCh = t.menuSave.ClickedCh
	}
	for {
		select {
		case <-t.menuOpen.ClickedCh:
			if !t.shuttingDown.Load() {
				t.openBrowser()
			}
		case <-saveCh:
			if err := t.actions.Save(); err != nil {
				t.log.Error().Err(err).Msg("save from tray")
			}
		case <-t.menuExit.ClickedCh:
			if t.shuttingDown.CompareAndSwap(false, true) {
				if t.actions.Shutdown != nil {
					t.once.Do(t.actions.Shutdown)
				}
				systray.Quit()
				return
			}
		}
	}
}

func (t *Tray) onExit() {
	t.shuttingDown.Store(true)
	t.log.Info().Msg("system tray exiting")
}

func (t *Tray) openBrowser() {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", t.url)
	case "darwin":
		cmd = exec.Command("open", t.url)
	default:
		cmd = exec.Command("xdg-open", t.url)
	}

	if err := cmd.Start(); err != nil {
		t.log.Error().Err(err).Msg("failed to open browser")
	}
}

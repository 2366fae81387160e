// Package console reports whether the process was started from a terminal.
// A double-clicked build gets no terminal and falls back to the tray.
package console

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Interactive reports whether stderr is a terminal, including Cygwin and
// MSYS pseudo terminals on Windows.
func Interactive() bool {
	return IsTerminal(os.Stderr)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package cmd

import (
	"os"

	isatty "github.com/mattn/go-isatty"
)

// StandardErrorIsTerminal reports whether or not standard error is attached to
// a terminal (including mintty consoles on Windows).
func StandardErrorIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

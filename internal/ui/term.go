package ui

import (
	"os"

	"github.com/mattn/go-isatty"
)

// IsInteractive reports whether stdout is attached to a terminal.
// Prompts are skipped in non-interactive runs (CI, pipes) so scripted
// invocations proceed without blocking.
func IsInteractive() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Package color names the terminal colors used by the command line.
package color

import "github.com/charmbracelet/lipgloss"

// ANSI colors follow the user's terminal theme.
const (
	Red      = lipgloss.Color("1")
	Green    = lipgloss.Color("2")
	Yellow   = lipgloss.Color("3")
	Blue     = lipgloss.Color("4")
	Purple   = lipgloss.Color("5")
	Cyan     = lipgloss.Color("6")
	HiPurple = lipgloss.Color("13")
)

// Orange highlights keys in help text.
const Orange = lipgloss.Color("#ffb703")

package style

import "github.com/charmbracelet/lipgloss"

// Catppuccin Mocha.
var (
	Base     = lipgloss.Color("#1e1e2e")
	Surface  = lipgloss.Color("#313244")
	Overlay  = lipgloss.Color("#6c7086")
	Text     = lipgloss.Color("#cdd6f4")
	Red      = lipgloss.Color("#f38ba8")
	Peach    = lipgloss.Color("#fab387")
	Yellow   = lipgloss.Color("#f9e2af")
	Green    = lipgloss.Color("#a6e3a1")
	Blue     = lipgloss.Color("#89b4fa")
	Lavender = lipgloss.Color("#b4befe")
	Mauve    = lipgloss.Color("#cba6f7")
)

var (
	AccentColor = Mauve
	LikedColor  = Red
	ErrorColor  = Red
	TitleColor  = lipgloss.Color("62")
)

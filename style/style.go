// Package style holds small render helpers over lipgloss.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

func New() lipgloss.Style {
	return lipgloss.NewStyle()
}

// Fg renders with the foreground color c.
func Fg(c lipgloss.Color) func(string) string {
	return func(s string) string { return New().Foreground(c).Render(s) }
}

// Badge is a padded block on a colored background, used for titles.
func Badge(bg lipgloss.Color) lipgloss.Style {
	return New().Foreground(Base).Background(bg).Padding(0, 1)
}

// Truncate cuts rendered text to width cells, ending with an ellipsis when cut.
func Truncate(width int) func(string) string {
	return func(s string) string {
		if width <= 0 {
			return s
		}
		return truncate.StringWithTail(s, uint(width), "…")
	}
}

var (
	Faint  = func(s string) string { return New().Faint(true).Render(s) }
	Bold   = func(s string) string { return New().Bold(true).Render(s) }
	Italic = func(s string) string { return New().Italic(true).Render(s) }

	Title      = func(s string) string { return New().Foreground(lipgloss.Color("230")).Background(TitleColor).Padding(0, 1).Render(s) }
	ErrorTitle = func(s string) string { return New().Foreground(lipgloss.Color("230")).Background(ErrorColor).Padding(0, 1).Render(s) }
)

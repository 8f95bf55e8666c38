package tui

import tea "github.com/charmbracelet/bubbletea"

// Init spawns the playback surfaces. The feed loads once they are up.
func (b *statefulBubble) Init() tea.Cmd {
	return tea.Batch(b.spinnerC.Tick, b.openSurfaces())
}

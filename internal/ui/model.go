// Package ui renders short-lived notices under the main view.
package ui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jellytok/jellytok/style"
)

// Lifetime is how long a notice stays on screen.
const Lifetime = 3 * time.Second

// Notice is a message shown until it expires or a newer notice replaces it.
type Notice string

type expiredMsg struct{ id int }

// Model holds the current notice.
type Model struct {
	text string
	id   int
}

// Notify returns a command that shows text.
func Notify(text string) tea.Cmd {
	return func() tea.Msg { return Notice(text) }
}

// Text is the notice on screen, or empty.
func (m *Model) Text() string {
	return m.text
}

// Update consumes notices and their expiry ticks. Other messages are ignored.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case Notice:
		m.id++
		m.text = string(msg)
		id := m.id
		return tea.Tick(Lifetime, func(time.Time) tea.Msg { return expiredMsg{id: id} })
	case expiredMsg:
		// an older tick must not clear a newer notice
		if msg.id == m.id {
			m.text = ""
		}
	}
	return nil
}

// View appends the notice to the last line of content.
func (m *Model) View(content string) string {
	if m.text == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.text)
	return strings.Join(lines, "\n")
}

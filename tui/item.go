package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/style"
)

// listItem wraps filters, sort modes and libraries for the pickers.
type listItem struct {
	internal any
	marked   bool
}

func (t *listItem) toggleMark() {
	t.marked = !t.marked
}

func (t *listItem) Title() (title string) {
	switch e := t.internal.(type) {
	case jellyfin.Filter:
		title = e.Label()
	case jellyfin.SortMode:
		title = e.Label()
	case jellyfin.Library:
		title = e.Name
	case string:
		title = e
	}

	if t.marked {
		mark := lipgloss.NewStyle().Bold(true).Foreground(style.AccentColor).Render(icon.Get(icon.Success))
		title = fmt.Sprintf("%s %s", title, mark)
	}
	return
}

func (t *listItem) Description() string {
	switch e := t.internal.(type) {
	case jellyfin.Filter:
		return string(e)
	case jellyfin.Library:
		if e.CollectionType == "" {
			return "mixed"
		}
		return e.CollectionType
	default:
		return ""
	}
}

func (t *listItem) FilterValue() string {
	switch e := t.internal.(type) {
	case jellyfin.Filter:
		return e.Label()
	case jellyfin.SortMode:
		return e.Label()
	case jellyfin.Library:
		return e.Name
	case string:
		return e
	default:
		return ""
	}
}

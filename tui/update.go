package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := b.update(msg)
	return b, tea.Batch(cmd, b.notifier.Update(msg), b.flush())
}

func (b *statefulBubble) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loopMsg:
		msg()
		return nil
	case surfacesReadyMsg:
		b.surfacesReady(msg.err)
		return nil
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
		return nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		b.spinnerC, cmd = b.spinnerC.Update(msg)
		return tea.Batch(cmd, b.updateList(msg))
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return tea.Quit
		}

		switch b.state {
		case feedState:
			return b.updateFeed(msg)
		case filtersState:
			return b.updateFilters(msg)
		case sortState:
			return b.updateSort(msg)
		case librariesState:
			return b.updateLibraries(msg)
		case errorState:
			return b.updateError(msg)
		}
		return nil
	}

	return b.updateList(msg)
}

// updateList forwards msg to the picker on screen, if any.
func (b *statefulBubble) updateList(msg tea.Msg) (cmd tea.Cmd) {
	switch b.state {
	case filtersState:
		b.filtersC, cmd = b.filtersC.Update(msg)
	case sortState:
		b.sortC, cmd = b.sortC.Update(msg)
	case librariesState:
		b.librariesC, cmd = b.librariesC.Update(msg)
	}
	return
}

func (b *statefulBubble) updateFeed(msg tea.KeyMsg) tea.Cmd {
	session, ok := b.feed.ActiveSession()

	switch {
	case key.Matches(msg, b.keymap.quit):
		return tea.Quit
	case key.Matches(msg, b.keymap.next):
		b.feed.Next()
	case key.Matches(msg, b.keymap.prev):
		b.feed.Prev()
	case key.Matches(msg, b.keymap.tap):
		if ok {
			session.Tap()
		}
	case key.Matches(msg, b.keymap.like):
		if ok {
			session.ToggleFavorite()
		}
	case key.Matches(msg, b.keymap.seekBack):
		if ok {
			session.SeekBy(-seekStep)
		}
	case key.Matches(msg, b.keymap.seekForward):
		if ok {
			session.SeekBy(seekStep)
		}
	case key.Matches(msg, b.keymap.seekPercent):
		if ok {
			session.SeekTo(float64(msg.String()[0]-'0') * 10)
		}
	case key.Matches(msg, b.keymap.filters):
		b.showFilters()
	case key.Matches(msg, b.keymap.sort):
		b.showSort()
	case key.Matches(msg, b.keymap.libraries):
		return b.showLibraries()
	case key.Matches(msg, b.keymap.openURL):
		if ok {
			b.openInBrowser(session.Item())
		}
	case key.Matches(msg, b.keymap.reload):
		b.feed.Reload()
	case key.Matches(msg, b.keymap.showHelp):
		b.helpC.ShowAll = !b.helpC.ShowAll
	}
	return nil
}

func (b *statefulBubble) updateFilters(msg tea.KeyMsg) (cmd tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.back):
		b.previousState()
	case key.Matches(msg, b.keymap.mark):
		if item, ok := b.filtersC.SelectedItem().(*listItem); ok {
			item.toggleMark()
		}
	case key.Matches(msg, b.keymap.confirm):
		b.applyFilters()
		b.previousState()
	default:
		b.filtersC, cmd = b.filtersC.Update(msg)
	}
	return
}

func (b *statefulBubble) updateSort(msg tea.KeyMsg) (cmd tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.back):
		b.previousState()
	case key.Matches(msg, b.keymap.confirm):
		b.applySort()
		b.previousState()
	default:
		b.sortC, cmd = b.sortC.Update(msg)
	}
	return
}

func (b *statefulBubble) updateLibraries(msg tea.KeyMsg) (cmd tea.Cmd) {
	switch {
	case key.Matches(msg, b.keymap.back):
		b.previousState()
	case key.Matches(msg, b.keymap.confirm):
		b.applyLibrary()
		b.previousState()
	default:
		b.librariesC, cmd = b.librariesC.Update(msg)
	}
	return
}

func (b *statefulBubble) updateError(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, b.keymap.quit):
		return tea.Quit
	case key.Matches(msg, b.keymap.reload):
		if !b.prefs.LoggedIn() {
			return nil
		}
		if !b.ready {
			b.setState(loadingState)
			return tea.Batch(b.spinnerC.Tick, b.openSurfaces())
		}
		b.previousState()
		b.feed.Reload()
	case key.Matches(msg, b.keymap.back):
		b.previousState()
	}
	return nil
}

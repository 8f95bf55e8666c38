package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jellytok/jellytok/feed"
	"github.com/jellytok/jellytok/icon"
	"github.com/jellytok/jellytok/internal/ui"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/key"
	"github.com/jellytok/jellytok/log"
	"github.com/jellytok/jellytok/prefs"
	"github.com/jellytok/jellytok/stream"
	"github.com/jellytok/jellytok/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

const (
	// seekStep is how far the arrow keys seek, in percent of the video.
	seekStep = 5

	surfacesTimeout = 30 * time.Second
)

var errSignedOut = errors.New("signed out, run the login command to continue")

// loopMsg carries a loop callback into Update.
type loopMsg func()

type surfacesReadyMsg struct {
	err error
}

func (b *statefulBubble) openSurfaces() tea.Cmd {
	open := b.env.surfaces.Open
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), surfacesTimeout)
		defer cancel()
		return surfacesReadyMsg{err: open(ctx)}
	}
}

func (b *statefulBubble) surfacesReady(err error) {
	if err != nil {
		b.raiseError(fmt.Errorf("start player: %w", err))
		return
	}

	b.ready = true
	b.setState(feedState)
	b.feed.Reconfigure(feedConfig(b.prefs))
}

func feedConfig(p prefs.Preferences) feed.Config {
	return feed.Config{
		UserID:    p.UserID(),
		LibraryID: p.LibraryID,
		Filters:   p.Filters.Selected,
		Sort:      p.Filters.Sorting,
	}
}

func sameStream(a, b stream.Options) bool {
	return a.BaseURL == b.BaseURL &&
		a.Token == b.Token &&
		a.DirectPlayFirst == b.DirectPlayFirst &&
		a.MaxBitrate == b.MaxBitrate &&
		a.ForceAudioCodec == b.ForceAudioCodec
}

// preferencesChanged reloads the feed when the item selection changed and
// re-resolves sources when playback options changed.
func (b *statefulBubble) preferencesChanged(p prefs.Preferences) {
	b.prefs = p

	if !p.LoggedIn() {
		b.raiseError(errSignedOut)
		return
	}

	if opts := p.StreamOptions(viper.GetString(key.PlayerForceAudioCodec)); !sameStream(opts, b.streamOptions) {
		if b.env.connect != nil && (opts.BaseURL != b.streamOptions.BaseURL || opts.Token != b.streamOptions.Token) {
			b.catalog.set(b.env.connect(p))
		}
		b.streamOptions = opts
		b.feed.SetStreamOptions(opts)
	}

	if !b.ready {
		return
	}

	if cfg := feedConfig(p); !cfg.Equal(b.feed.Config()) {
		log.Infof("feed configuration changed, reloading")
		b.feed.Reconfigure(cfg)
	}
}

func (b *statefulBubble) savePreferences(fn func(p *prefs.Preferences)) {
	if err := b.store.Update(fn); err != nil {
		log.Error(err)
		b.queue(ui.Notify(icon.Get(icon.Fail) + " Could not save preferences"))
	}
}

func (b *statefulBubble) onFavorite(item *jellyfin.Item, favorite bool) {
	if favorite {
		b.queue(ui.Notify(icon.Get(icon.Heart) + " Liked " + item.Name))
		return
	}
	b.queue(ui.Notify(icon.Get(icon.HeartEmpty) + " Unliked " + item.Name))
}

func (b *statefulBubble) openInBrowser(item *jellyfin.Item) {
	if err := b.env.open(b.catalog.WebURL(item.ID)); err != nil {
		log.Error(err)
		b.queue(ui.Notify(icon.Get(icon.Fail) + " Could not open the browser"))
	}
}

func (b *statefulBubble) showFilters() {
	items := lo.Map(jellyfin.Filters, func(f jellyfin.Filter, _ int) list.Item {
		return &listItem{internal: f, marked: b.prefs.Filters.Has(f)}
	})
	b.queue(b.filtersC.SetItems(items))
	b.filtersC.ResetSelected()
	b.newState(filtersState)
}

func (b *statefulBubble) applyFilters() {
	selected := lo.FilterMap(b.filtersC.Items(), func(item list.Item, _ int) (jellyfin.Filter, bool) {
		li := item.(*listItem)
		return li.internal.(jellyfin.Filter), li.marked
	})

	b.savePreferences(func(p *prefs.Preferences) {
		p.Filters.Selected = selected
	})
}

func (b *statefulBubble) showSort() {
	items := lo.Map(jellyfin.SortModes, func(m jellyfin.SortMode, _ int) list.Item {
		return &listItem{internal: m, marked: b.prefs.Filters.Sorting == m}
	})
	b.queue(b.sortC.SetItems(items))
	b.sortC.Select(lo.IndexOf(jellyfin.SortModes, b.prefs.Filters.Sorting))
	b.newState(sortState)
}

func (b *statefulBubble) applySort() {
	item, ok := b.sortC.SelectedItem().(*listItem)
	if !ok {
		return
	}

	mode := item.internal.(jellyfin.SortMode)
	b.savePreferences(func(p *prefs.Preferences) {
		p.Filters.Sorting = mode
	})
}

// allLibraries is the picker entry that clears the library selection.
const allLibraries = "All libraries"

func (b *statefulBubble) showLibraries() tea.Cmd {
	b.queue(b.librariesC.SetItems(nil))
	b.newState(librariesState)

	userID := b.prefs.UserID()
	libraries := b.catalog.Libraries
	b.env.loop.Go(func(ctx context.Context) func() {
		libs, err := libraries(ctx, userID)
		return func() { b.librariesLoaded(libs, err) }
	})

	return b.librariesC.StartSpinner()
}

func (b *statefulBubble) librariesLoaded(libs []jellyfin.Library, err error) {
	b.librariesC.StopSpinner()
	if b.state != librariesState {
		return
	}

	if err != nil {
		log.Error(err)
		b.queue(ui.Notify(icon.Get(icon.Fail) + " Could not load libraries"))
		b.previousState()
		return
	}

	items := []list.Item{&listItem{internal: allLibraries, marked: b.prefs.LibraryID == ""}}
	for _, lib := range libs {
		items = append(items, &listItem{internal: lib, marked: lib.ID == b.prefs.LibraryID})
	}

	b.queue(b.librariesC.SetItems(items))
	_, index, _ := lo.FindIndexOf(items, func(item list.Item) bool { return item.(*listItem).marked })
	b.librariesC.Select(util.Max(index, 0))
}

func (b *statefulBubble) applyLibrary() {
	item, ok := b.librariesC.SelectedItem().(*listItem)
	if !ok {
		return
	}

	var id string
	if lib, ok := item.internal.(jellyfin.Library); ok {
		id = lib.ID
	}

	b.savePreferences(func(p *prefs.Preferences) {
		p.LibraryID = id
	})
}

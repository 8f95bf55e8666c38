package tui

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jellytok/jellytok/filesystem"
	"github.com/jellytok/jellytok/internal/fake"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/loop"
	"github.com/jellytok/jellytok/prefs"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/zalando/go-keyring"
)

func items(n int) []*jellyfin.Item {
	out := make([]*jellyfin.Item, n)
	for i := range out {
		out[i] = &jellyfin.Item{
			ID:           fmt.Sprintf("v%d", i),
			Name:         fmt.Sprintf("Video %d", i),
			RunTimeTicks: 60 * jellyfin.TicksPerSecond,
			MediaSources: []jellyfin.MediaSource{{ID: fmt.Sprintf("ms%d", i), Container: "mp4", SupportsDirectStream: true}},
		}
	}
	return out
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

type harness struct {
	bubble  *statefulBubble
	loop    *loop.Manual
	catalog *fake.Catalog
	pool    *fake.Pool
	store   *prefs.Store
	opened  []string

	connected *fake.Catalog
}

func newHarness() *harness {
	filesystem.SetMemMapFs()
	keyring.MockInit()

	store, err := prefs.Open("/jellytok/preferences.json", false)
	So(err, ShouldBeNil)
	So(store.Update(func(p *prefs.Preferences) {
		p.ServerURL = "https://media.example.com"
		p.User = &jellyfin.User{ID: "u1", Name: "alice", AccessToken: "secret"}
	}), ShouldBeNil)

	h := &harness{
		loop:    loop.NewManual(time.Unix(0, 0)),
		catalog: &fake.Catalog{Pages: map[int][]*jellyfin.Item{0: items(3)}},
		pool:    &fake.Pool{Limit: 3},
		store:   store,
	}
	h.bubble = newBubble(&Options{Store: store}, environment{
		loop:     h.loop,
		catalog:  h.catalog,
		surfaces: h.pool,
		open: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		connect: func(p prefs.Preferences) catalog {
			h.connected = &fake.Catalog{Base: p.ServerURL, Libs: []jellyfin.Library{{ID: "lib9", Name: "Elsewhere"}}}
			return h.connected
		},
	})
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	_, cmd := h.bubble.Update(msg)
	return cmd
}

// start brings the surfaces up and loads the first page.
func (h *harness) start() {
	h.send(surfacesReadyMsg{})
	h.loop.Flush()
}

func (h *harness) lastQuery() jellyfin.Query {
	return h.catalog.Queries[len(h.catalog.Queries)-1]
}

func TestStartup(t *testing.T) {
	Convey("Given a signed in user", t, func() {
		h := newHarness()
		b := h.bubble

		Convey("The feed waits for the player", func() {
			So(b.state, ShouldEqual, loadingState)
			So(h.loop.Pending(), ShouldEqual, 0)
			So(b.View(), ShouldContainSubstring, "Starting the player")

			msg := b.openSurfaces()()
			So(h.pool.Opened, ShouldBeTrue)
			So(msg, ShouldResemble, surfacesReadyMsg{})
		})

		Convey("Once the player is up the first page plays", func() {
			h.start()

			So(b.state, ShouldEqual, feedState)
			So(b.feed.Len(), ShouldEqual, 3)
			So(b.feed.Active(), ShouldEqual, 0)
			So(h.lastQuery().UserID, ShouldEqual, "u1")
			So(h.pool.All[0].Media().Title, ShouldEqual, "Video 0")
			So(b.View(), ShouldContainSubstring, "Video 0")
			So(b.View(), ShouldContainSubstring, "1/3")
		})

		Convey("A player that does not start is an error that can be retried", func() {
			h.send(surfacesReadyMsg{err: errors.New("mpv not found")})
			So(b.state, ShouldEqual, errorState)
			So(b.View(), ShouldContainSubstring, "mpv not found")

			So(h.send(runes("r")), ShouldNotBeNil)
			So(b.state, ShouldEqual, loadingState)
		})

		Convey("An empty library says so", func() {
			h.catalog.Pages = nil
			h.start()
			So(b.feed.Empty(), ShouldBeTrue)
			So(b.View(), ShouldContainSubstring, "No videos found")
		})
	})
}

func TestFeedKeys(t *testing.T) {
	Convey("Given a playing feed", t, func() {
		h := newHarness()
		h.start()
		b := h.bubble

		Convey("Down and j swipe forward, up and k swipe back", func() {
			h.send(down)
			So(b.feed.Active(), ShouldEqual, 1)
			h.send(runes("j"))
			So(b.feed.Active(), ShouldEqual, 2)
			h.send(runes("k"))
			So(b.feed.Active(), ShouldEqual, 1)
		})

		Convey("f likes the active video", func() {
			h.send(runes("f"))
			So(b.feed.Items()[0].UserData.IsFavorite, ShouldBeTrue)

			h.loop.Flush()
			So(h.catalog.Favorites, ShouldResemble, []fake.FavoriteCall{{ItemID: "v0", Favorite: true}})
		})

		Convey("Number keys jump to a fraction of the video", func() {
			h.send(runes("5"))
			So(h.pool.All[0].Seeks, ShouldResemble, []float64{30})
		})

		Convey("o opens the video in the web client", func() {
			h.send(runes("o"))
			So(h.opened, ShouldResemble, []string{"https://media.example.com/web/v0"})
		})

		Convey("A new server address switches the catalog", func() {
			So(h.store.Update(func(p *prefs.Preferences) {
				p.ServerURL = "https://other.example.com"
			}), ShouldBeNil)
			h.loop.Flush()
			So(h.connected, ShouldNotBeNil)

			h.send(runes("o"))
			So(h.opened, ShouldResemble, []string{"https://other.example.com/web/v0"})

			h.send(runes("L"))
			h.loop.Flush()
			So(b.librariesC.Items(), ShouldHaveLength, 2)
		})

		Convey("Changing playback options keeps the catalog", func() {
			So(h.store.Update(func(p *prefs.Preferences) {
				p.MaxBitrate = 2_000_000
			}), ShouldBeNil)
			h.loop.Flush()
			So(h.connected, ShouldBeNil)
		})

		Convey("q quits", func() {
			So(h.send(runes("q")), ShouldNotBeNil)
		})

		Convey("Quitting releases every surface", func() {
			b.shutdown()
			So(h.pool.InUse(), ShouldEqual, 0)
		})
	})
}

func TestPickers(t *testing.T) {
	Convey("Given a playing feed", t, func() {
		h := newHarness()
		h.start()
		b := h.bubble

		Convey("Filters are toggled, saved and reload the feed", func() {
			h.send(runes("F"))
			So(b.state, ShouldEqual, filtersState)

			h.send(runes(" "))
			h.send(enter)
			So(b.state, ShouldEqual, feedState)
			So(h.store.Get().Filters.Selected, ShouldResemble, []jellyfin.Filter{jellyfin.IsUnplayed})

			h.loop.Drain()
			h.loop.Flush()
			So(h.lastQuery().Filters, ShouldResemble, []jellyfin.Filter{jellyfin.IsUnplayed})
			So(h.lastQuery().StartIndex, ShouldEqual, 0)
		})

		Convey("Escape leaves the filters untouched", func() {
			h.send(runes("F"))
			h.send(runes(" "))
			h.send(esc)
			So(b.state, ShouldEqual, feedState)
			So(h.store.Get().Filters.Selected, ShouldBeEmpty)
		})

		Convey("A new sort mode reloads the feed", func() {
			h.send(runes("s"))
			So(b.state, ShouldEqual, sortState)
			h.send(down)
			h.send(enter)
			So(h.store.Get().Filters.Sorting, ShouldEqual, jellyfin.DateDesc)

			queries := len(h.catalog.Queries)
			h.loop.Drain()
			h.loop.Flush()
			So(len(h.catalog.Queries), ShouldEqual, queries+1)
			So(h.lastQuery().Sort, ShouldEqual, jellyfin.DateDesc)
		})

		Convey("Libraries are fetched and one can be picked", func() {
			h.catalog.Libs = []jellyfin.Library{{ID: "lib1", Name: "Clips"}}
			h.send(runes("L"))
			So(b.state, ShouldEqual, librariesState)
			So(h.loop.Pending(), ShouldEqual, 1)

			h.loop.Flush()
			So(b.librariesC.Items(), ShouldHaveLength, 2)

			h.send(down)
			h.send(enter)
			So(h.store.Get().LibraryID, ShouldEqual, "lib1")

			h.loop.Drain()
			h.loop.Flush()
			So(h.lastQuery().LibraryID, ShouldEqual, "lib1")
		})

		Convey("A failed library fetch goes back to the feed", func() {
			h.catalog.LibsErr = errors.New("boom")
			h.send(runes("L"))
			h.loop.Flush()
			So(b.state, ShouldEqual, feedState)
		})

		Convey("Saving the same configuration does not reload", func() {
			queries := len(h.catalog.Queries)
			h.send(runes("s"))
			h.send(enter)
			h.loop.Drain()
			So(h.loop.Pending(), ShouldEqual, 0)
			So(len(h.catalog.Queries), ShouldEqual, queries)
		})
	})
}

func TestSignOut(t *testing.T) {
	Convey("Signing out elsewhere stops the feed", t, func() {
		h := newHarness()
		h.start()

		So(h.store.Reset(), ShouldBeNil)
		h.loop.Drain()
		So(h.bubble.state, ShouldEqual, errorState)
		So(h.bubble.lastError, ShouldEqual, errSignedOut)

		h.send(runes("r"))
		So(h.bubble.state, ShouldEqual, errorState)
	})
}

package feed

import (
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jellytok/jellytok/internal/fake"
	"github.com/jellytok/jellytok/jellyfin"
	"github.com/jellytok/jellytok/loop"
	"github.com/jellytok/jellytok/playback"
	"github.com/jellytok/jellytok/player"
	"github.com/jellytok/jellytok/stream"
	. "github.com/smartystreets/goconvey/convey"
)

func page(prefix string, start, n int) []*jellyfin.Item {
	items := make([]*jellyfin.Item, n)
	for i := range items {
		id := fmt.Sprintf("%s%d", prefix, start+i)
		items[i] = &jellyfin.Item{ID: id, Name: id, RunTimeTicks: 600_000_000}
	}
	return items
}

type harness struct {
	loop    *loop.Manual
	catalog *fake.Catalog
	pool    *fake.Pool
	feed    *Controller
}

func newHarness() *harness {
	h := &harness{
		loop: loop.NewManual(time.Unix(1_700_000_000, 0)),
		catalog: &fake.Catalog{Pages: map[int][]*jellyfin.Item{
			0:  page("a", 0, 20),
			20: page("a", 20, 20),
			40: page("a", 40, 7),
		}},
		pool: &fake.Pool{Limit: 3},
	}
	h.feed = New(Options{
		Loop:     h.loop,
		Catalog:  h.catalog,
		Surfaces: h.pool,
		Stream:   stream.Options{BaseURL: "https://media.example.com", Token: "tok"},
	})
	return h
}

// surface finds the surface currently holding the item with the given id.
func (h *harness) surface(id string) *fake.Surface {
	for _, s := range h.pool.All {
		if s.Loaded() && s.Media().Title == id {
			return s
		}
	}
	return nil
}

func (h *harness) emit(id string, ev player.Event) {
	h.surface(id).Emit(ev)
	h.loop.Drain()
}

func (h *harness) attached() []int {
	var indices []int
	for i := 0; i < h.feed.Len(); i++ {
		if s, ok := h.feed.Session(i); ok && s.Attached() {
			indices = append(indices, i)
		}
	}
	sort.Ints(indices)
	return indices
}

func TestShouldLoad(t *testing.T) {
	Convey("The load window is the active item and its neighbours", t, func() {
		So(ShouldLoad(5, 20), ShouldResemble, []int{4, 5, 6})
		So(ShouldLoad(0, 20), ShouldResemble, []int{0, 1})
		So(ShouldLoad(19, 20), ShouldResemble, []int{18, 19})
		So(ShouldLoad(0, 1), ShouldResemble, []int{0})
		So(ShouldLoad(0, 0), ShouldBeEmpty)
	})
}

func TestConfigEqual(t *testing.T) {
	Convey("Filter order and duplicates do not matter", t, func() {
		a := Config{LibraryID: "lib", Filters: []jellyfin.Filter{jellyfin.IsFavorite, jellyfin.IsUnplayed}}
		b := Config{LibraryID: "lib", Filters: []jellyfin.Filter{jellyfin.IsUnplayed, jellyfin.IsFavorite, jellyfin.IsFavorite}}
		So(a.Equal(b), ShouldBeTrue)

		b.Sort = jellyfin.DateAsc
		So(a.Equal(b), ShouldBeFalse)
	})
}

func TestPagination(t *testing.T) {
	Convey("Given a feed being configured", t, func() {
		h := newHarness()
		h.feed.Reconfigure(Config{UserID: "u", LibraryID: "lib"})

		Convey("The first page is fetched once", func() {
			So(h.loop.Pending(), ShouldEqual, 1)
			So(h.feed.Loading(), ShouldBeTrue)
			So(h.feed.LoadPage(0, true), ShouldBeFalse)
			So(h.loop.Pending(), ShouldEqual, 1)

			h.loop.Flush()
			So(h.catalog.Queries, ShouldHaveLength, 1)
			So(h.catalog.Queries[0].StartIndex, ShouldEqual, 0)
			So(h.catalog.Queries[0].Limit, ShouldEqual, DefaultPageSize)
			So(h.catalog.Queries[0].LibraryID, ShouldEqual, "lib")
		})

		Convey("The first item becomes active", func() {
			h.loop.Flush()
			So(h.feed.Len(), ShouldEqual, 20)
			So(h.feed.Active(), ShouldEqual, 0)
			So(h.attached(), ShouldResemble, []int{0, 1})

			s, ok := h.feed.ActiveSession()
			So(ok, ShouldBeTrue)
			So(s.Item().ID, ShouldEqual, "a0")
			So(s.State(), ShouldEqual, playback.Loading)

			h.emit("a0", player.Event{Kind: player.Loaded})
			So(s.State(), ShouldEqual, playback.Playing)
		})

		Convey("Moving near the end fetches the next page once", func() {
			h.loop.Flush()
			h.feed.SetActive(14)
			So(h.loop.Pending(), ShouldEqual, 0)

			h.feed.SetActive(15)
			So(h.loop.Pending(), ShouldEqual, 1)
			So(h.feed.InFlight(), ShouldBeTrue)

			h.feed.Next()
			h.feed.Next()
			So(h.loop.Pending(), ShouldEqual, 1)

			h.loop.Flush()
			So(h.feed.Len(), ShouldEqual, 40)
			So(h.catalog.Queries[1].StartIndex, ShouldEqual, 20)
			So(h.feed.Active(), ShouldEqual, 17)

			Convey("A short page ends pagination for good", func() {
				h.feed.SetActive(36)
				h.loop.Flush()
				So(h.feed.Len(), ShouldEqual, 47)
				So(h.feed.HasMore(), ShouldBeFalse)

				h.feed.SetActive(46)
				So(h.loop.Pending(), ShouldEqual, 0)
				So(h.feed.LoadPage(47, false), ShouldBeFalse)
				So(h.catalog.Queries, ShouldHaveLength, 3)
			})
		})

		Convey("An item at the end of the window is attached once its page arrives", func() {
			h.loop.Flush()
			h.feed.SetActive(19)
			So(h.attached(), ShouldResemble, []int{18, 19})

			h.loop.Flush()
			So(h.attached(), ShouldResemble, []int{18, 19, 20})
		})

		Convey("A failed fetch leaves an empty feed", func() {
			h.catalog.ItemsErr = errors.New("boom")
			h.loop.Flush()
			So(h.feed.Err(), ShouldNotBeNil)
			So(h.feed.Empty(), ShouldBeTrue)
			So(h.feed.Active(), ShouldEqual, -1)
			So(h.pool.InUse(), ShouldEqual, 0)

			Convey("and reloading recovers", func() {
				h.catalog.ItemsErr = nil
				h.feed.Reload()
				h.loop.Flush()
				So(h.feed.Err(), ShouldBeNil)
				So(h.feed.Len(), ShouldEqual, 20)
			})
		})
	})
}

func TestWindow(t *testing.T) {
	Convey("Given a loaded feed", t, func() {
		h := newHarness()
		h.feed.Reconfigure(Config{UserID: "u"})
		h.loop.Flush()

		Convey("Only the load window is ever attached", func() {
			for i := 0; i < 12; i++ {
				h.feed.Next()
				h.loop.Flush()
				active := h.feed.Active()
				So(h.attached(), ShouldResemble, ShouldLoad(active, h.feed.Len()))
				So(h.pool.InUse(), ShouldBeLessThanOrEqualTo, 3)
			}

			h.feed.SetActive(2)
			So(h.attached(), ShouldResemble, []int{1, 2, 3})
			So(h.pool.InUse(), ShouldEqual, 3)
		})

		Convey("The previous item is paused and rewound", func() {
			h.emit("a0", player.Event{Kind: player.Loaded})
			h.emit("a0", player.Event{Kind: player.TimeUpdate, Position: 20})
			first, _ := h.feed.Session(0)
			So(first.State(), ShouldEqual, playback.Playing)

			h.feed.Next()
			So(first.State(), ShouldEqual, playback.Paused)
			So(first.Position(), ShouldEqual, 0.0)
			So(first.Attached(), ShouldBeTrue)

			second, _ := h.feed.Session(1)
			So(second.Active(), ShouldBeTrue)
			So(first.Active(), ShouldBeFalse)

			h.loop.Flush()
			So(h.catalog.PausedReports(), ShouldEqual, 1)

			Convey("and restarts from the beginning when shown again", func() {
				h.feed.Prev()
				So(first.State(), ShouldEqual, playback.Playing)
				So(first.Position(), ShouldEqual, 0.0)
			})
		})

		Convey("Out of range moves are ignored", func() {
			h.feed.Prev()
			So(h.feed.Active(), ShouldEqual, 0)
			h.feed.SetActive(99)
			So(h.feed.Active(), ShouldEqual, 0)
		})
	})
}

func TestReconfigure(t *testing.T) {
	Convey("Given a feed with a page in flight", t, func() {
		h := newHarness()
		h.feed.Reconfigure(Config{UserID: "u", Sort: jellyfin.Shuffle})
		h.loop.Flush()
		h.feed.SetActive(16)
		So(h.loop.Pending(), ShouldEqual, 1)

		Convey("Changing the sort discards the window", func() {
			h.feed.Reconfigure(Config{UserID: "u", Sort: jellyfin.DateAsc})
			So(h.feed.Len(), ShouldEqual, 0)
			So(h.pool.InUse(), ShouldEqual, 0)
			So(h.loop.Pending(), ShouldEqual, 2)

			h.catalog.Pages = map[int][]*jellyfin.Item{0: page("b", 0, 20), 20: page("b", 20, 20)}

			Convey("and shows the first item of the new first page", func() {
				h.loop.Complete(1)
				h.loop.Complete(0)

				So(h.feed.Len(), ShouldEqual, 20)
				So(h.feed.Active(), ShouldEqual, 0)
				s, _ := h.feed.ActiveSession()
				So(s.Item().ID, ShouldEqual, "b0")
				So(h.feed.Items()[19].ID, ShouldEqual, "b19")
			})

			Convey("even when the stale page arrives first", func() {
				h.loop.Complete(0)
				So(h.feed.Len(), ShouldEqual, 0)
				So(h.feed.Loading(), ShouldBeTrue)

				h.loop.Complete(0)
				So(h.feed.Items()[0].ID, ShouldEqual, "b0")
				So(h.catalog.Queries[len(h.catalog.Queries)-1].Sort, ShouldEqual, jellyfin.DateAsc)
			})
		})

		Convey("Direct play failures survive a reset", func() {
			h.feed.Failures().Mark("a16")
			h.feed.Reconfigure(Config{UserID: "u", Sort: jellyfin.DateDesc})
			So(h.feed.Failures().Has("a16"), ShouldBeTrue)
		})

		Convey("Close releases everything and drops late pages", func() {
			h.feed.Close()
			So(h.pool.InUse(), ShouldEqual, 0)
			h.loop.Flush()
			So(h.feed.Len(), ShouldEqual, 20)
			So(h.attached(), ShouldBeEmpty)
		})
	})
}

func TestStreamOptions(t *testing.T) {
	Convey("Given a feed playing adaptively", t, func() {
		h := newHarness()
		h.feed.Reconfigure(Config{UserID: "u"})
		h.loop.Flush()
		h.feed.SetActive(3)

		s, _ := h.feed.ActiveSession()
		So(s.Source().Kind, ShouldEqual, stream.Adaptive)

		Convey("Enabling direct play reloads the window", func() {
			opts := stream.Options{BaseURL: "https://media.example.com", Token: "tok", DirectPlayFirst: true}
			h.feed.SetStreamOptions(opts)

			s, _ := h.feed.ActiveSession()
			So(s.Source().Kind, ShouldEqual, stream.Direct)
			So(h.feed.Active(), ShouldEqual, 3)
			So(h.attached(), ShouldResemble, []int{2, 3, 4})
			So(h.pool.InUse(), ShouldEqual, 3)

			Convey("and a direct failure sticks to the item", func() {
				h.emit("a3", player.Event{Kind: player.Error, Reason: "codec"})
				So(h.feed.Failures().Has("a3"), ShouldBeTrue)
				So(s.Source().Kind, ShouldEqual, stream.Adaptive)

				h.feed.SetActive(10)
				h.feed.SetActive(3)
				s, _ := h.feed.ActiveSession()
				So(s.Source().Kind, ShouldEqual, stream.Adaptive)
			})
		})
	})
}

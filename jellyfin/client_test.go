package jellyfin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

type recorded struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   map[string]any
}

func newServer(handler func(w http.ResponseWriter, r *http.Request)) (*httptest.Server, *[]recorded) {
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, query: r.URL.Query(), header: r.Header.Clone()}
		_ = json.NewDecoder(r.Body).Decode(&rec.body)
		calls = append(calls, rec)
		handler(w, r)
	}))
	return srv, &calls
}

func TestAuthenticate(t *testing.T) {
	Convey("Given a server that accepts the credentials", t, func() {
		srv, calls := newServer(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"User":{"Id":"u1","Name":"alice"},"AccessToken":"tok"}`))
		})
		Reset(srv.Close)

		client := New(srv.URL+"/", "", "device-1")
		user, err := client.Authenticate(context.Background(), "alice", "secret")

		So(err, ShouldBeNil)
		So(user, ShouldResemble, &User{ID: "u1", Name: "alice", AccessToken: "tok"})
		So(client.Token, ShouldEqual, "tok")

		call := (*calls)[0]
		So(call.method, ShouldEqual, http.MethodPost)
		So(call.path, ShouldEqual, "/Users/AuthenticateByName")
		So(call.body["Username"], ShouldEqual, "alice")
		So(call.body["Pw"], ShouldEqual, "secret")

		Convey("The identification header is sent and no token header", func() {
			auth := call.header.Get("X-Emby-Authorization")
			So(auth, ShouldStartWith, "MediaBrowser ")
			So(auth, ShouldContainSubstring, `Client="JellyTok"`)
			So(auth, ShouldContainSubstring, `DeviceId="device-1"`)
			So(call.header.Get("X-Emby-Token"), ShouldBeEmpty)
		})
	})

	Convey("Given a server that rejects the credentials", t, func() {
		for _, code := range []int{http.StatusUnauthorized, http.StatusInternalServerError} {
			srv, _ := newServer(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(code)
			})

			_, err := New(srv.URL, "", "d").Authenticate(context.Background(), "a", "b")
			So(errors.Is(err, ErrAuthentication), ShouldBeTrue)
			srv.Close()
		}
	})
}

func TestItems(t *testing.T) {
	Convey("Given a page of items", t, func() {
		srv, calls := newServer(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"Items":[{"Id":"i1","Name":"Clip","RunTimeTicks":7200000000,"ProductionYear":2021,
				"SeriesName":"Show","ImageTags":{"Primary":"tag1"},
				"MediaSources":[{"Id":"ms1","Container":"mkv","SupportsDirectStream":true,"SupportsTranscoding":true}],
				"UserData":{"IsFavorite":true,"Played":false,"PlaybackPositionTicks":0}}],"TotalRecordCount":1}`))
		})
		Reset(srv.Close)

		client := New(srv.URL, "tok", "d")
		items, err := client.Items(context.Background(), Query{
			UserID:     "u1",
			LibraryID:  "lib",
			Filters:    []Filter{IsUnplayed, IsFavorite, IsUnplayed},
			Sort:       DateDesc,
			StartIndex: 40,
		})

		So(err, ShouldBeNil)
		So(items, ShouldHaveLength, 1)
		item := items[0]
		So(item.ID, ShouldEqual, "i1")
		So(item.Runtime(), ShouldEqual, 720.0)
		So(item.Subtitle(), ShouldEqual, "Show • 2021")
		So(item.UserData.IsFavorite, ShouldBeTrue)
		So(item.MediaSources[0].Container, ShouldEqual, "mkv")

		call := (*calls)[0]
		So(call.path, ShouldEqual, "/Users/u1/Items")
		So(call.header.Get("X-Emby-Token"), ShouldEqual, "tok")
		So(call.query.Get("ParentId"), ShouldEqual, "lib")
		So(call.query.Get("StartIndex"), ShouldEqual, "40")
		So(call.query.Get("Limit"), ShouldEqual, "20")
		So(call.query.Get("Recursive"), ShouldEqual, "true")
		So(call.query.Get("Filters"), ShouldEqual, "IsUnplayed,IsFavorite")
		So(call.query.Get("SortBy"), ShouldEqual, "DateCreated")
		So(call.query.Get("SortOrder"), ShouldEqual, "Descending")
		So(strings.Split(call.query.Get("IncludeItemTypes"), ","), ShouldContain, "Episode")
	})
}

func TestQueryValues(t *testing.T) {
	Convey("Sort modes map to server parameters", t, func() {
		So(Query{Sort: Shuffle}.Values().Get("SortBy"), ShouldEqual, "Random")
		So(Query{}.Values().Get("SortBy"), ShouldEqual, "Random")
		So(Query{Sort: DateAsc}.Values().Get("SortOrder"), ShouldEqual, "Ascending")
	})

	Convey("An empty filter set sends no Filters parameter", t, func() {
		_, ok := Query{}.Values()["Filters"]
		So(ok, ShouldBeFalse)
	})
}

func TestSetFavorite(t *testing.T) {
	Convey("Given a catalog", t, func() {
		srv, calls := newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		Reset(srv.Close)
		client := New(srv.URL, "tok", "d")

		Convey("Favoriting posts", func() {
			So(client.SetFavorite(context.Background(), "u1", "i1", true), ShouldBeNil)
			So((*calls)[0].method, ShouldEqual, http.MethodPost)
			So((*calls)[0].path, ShouldEqual, "/Users/u1/FavoriteItems/i1")
		})

		Convey("Unfavoriting deletes", func() {
			So(client.SetFavorite(context.Background(), "u1", "i1", false), ShouldBeNil)
			So((*calls)[0].method, ShouldEqual, http.MethodDelete)
		})
	})

	Convey("A failing server surfaces a status error", t, func() {
		srv, _ := newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		Reset(srv.Close)

		err := New(srv.URL, "tok", "d").SetFavorite(context.Background(), "u1", "i1", true)
		var status *StatusError
		So(errors.As(err, &status), ShouldBeTrue)
		So(status.Code, ShouldEqual, http.StatusBadGateway)
	})
}

func TestReportProgress(t *testing.T) {
	Convey("Progress is posted as JSON with ticks", t, func() {
		srv, calls := newServer(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		Reset(srv.Close)

		err := New(srv.URL, "tok", "d").ReportProgress(context.Background(), Progress{
			ItemID:        "i1",
			MediaSourceID: "ms1",
			PositionTicks: TicksFromSeconds(1.5),
			IsPaused:      true,
		})

		So(err, ShouldBeNil)
		call := (*calls)[0]
		So(call.path, ShouldEqual, "/Sessions/Playing/Progress")
		So(call.body["ItemId"], ShouldEqual, "i1")
		So(call.body["PositionTicks"], ShouldEqual, float64(15_000_000))
		So(call.body["IsPaused"], ShouldEqual, true)
	})
}

func TestURLs(t *testing.T) {
	Convey("Given a client", t, func() {
		client := New("https://media.example.com/", "tok", "d")

		Convey("Image URLs carry the tag and quality", func() {
			u, err := url.Parse(client.ImageURL("i1", "tag1"))
			So(err, ShouldBeNil)
			So(u.Path, ShouldEqual, "/Items/i1/Images/Primary")
			So(u.Query().Get("tag"), ShouldEqual, "tag1")
			So(u.Query().Get("quality"), ShouldEqual, "90")
		})

		Convey("No tag means no image", func() {
			So(client.ImageURL("i1", ""), ShouldBeEmpty)
		})
	})
}

func TestTicks(t *testing.T) {
	Convey("Ticks convert at ten million per second", t, func() {
		So(Ticks(7_200_000_000).Seconds(), ShouldEqual, 720.0)
		So(TicksFromSeconds(360), ShouldEqual, Ticks(3_600_000_000))
		So(TicksFromSeconds(-1), ShouldEqual, Ticks(0))
	})
}

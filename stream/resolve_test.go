package stream

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/jellytok/jellytok/jellyfin"
	. "github.com/smartystreets/goconvey/convey"
)

func parse(raw string) *url.URL {
	u, err := url.Parse(raw)
	So(err, ShouldBeNil)
	return u
}

func TestResolve(t *testing.T) {
	Convey("Given an item with a media source", t, func() {
		item := &jellyfin.Item{
			ID:           "item1",
			MediaSources: []jellyfin.MediaSource{{ID: "ms1", Container: "MOV,mp4,m4a"}},
		}
		opts := Options{BaseURL: "https://media.example.com/", Token: "tok"}

		Convey("Direct play first resolves a direct stream", func() {
			opts.DirectPlayFirst = true
			src := Resolve(item, opts, false)

			So(src.Kind, ShouldEqual, Direct)
			u := parse(src.URL)
			So(u.Host, ShouldEqual, "media.example.com")
			So(u.Path, ShouldEqual, "/Videos/item1/stream.mov")
			q := u.Query()
			So(q.Get("MediaSourceId"), ShouldEqual, "ms1")
			So(q.Get("api_key"), ShouldEqual, "tok")
			So(q.Get("AllowVideoStreamCopy"), ShouldEqual, "true")
			So(q.Get("AllowAudioStreamCopy"), ShouldEqual, "true")
			So(q.Get("static"), ShouldEqual, "true")
			_, forced := q["AudioCodec"]
			So(forced, ShouldBeFalse)

			Convey("The audio codec knob is honoured", func() {
				opts.ForceAudioCodec = "aac"
				src := Resolve(item, opts, false)
				So(parse(src.URL).Query().Get("AudioCodec"), ShouldEqual, "aac")
				So(src.AudioCodec, ShouldEqual, "aac")
			})

			Convey("A sticky failure forces adaptive", func() {
				So(Resolve(item, opts, true).Kind, ShouldEqual, Adaptive)
			})
		})

		Convey("Without direct play first it is always adaptive", func() {
			for _, failed := range []bool{false, true} {
				src := Resolve(item, opts, failed)
				So(src.Kind, ShouldEqual, Adaptive)
			}
		})

		Convey("Adaptive sources carry session and bitrate parameters", func() {
			opts.Now = func() time.Time { return time.UnixMilli(5_000_000_000_000) }
			opts.MaxBitrate = 8_000_000
			src := Resolve(item, opts, false)

			u := parse(src.URL)
			So(u.Path, ShouldEqual, "/Videos/item1/master.m3u8")
			q := u.Query()
			So(q.Get("MediaSourceId"), ShouldEqual, "ms1")
			So(q.Get("VideoBitrate"), ShouldEqual, "8000000")
			So(q.Get("api_key"), ShouldEqual, "tok")
			So(q.Get("PlaySessionId"), ShouldEqual, src.PlaySessionID)
			So(q.Get("AllowVideoStreamCopy"), ShouldEqual, "true")
			So(src.MaxBitrate, ShouldEqual, 8_000_000)
		})

		Convey("A missing bitrate preference uses the default ceiling", func() {
			src := Resolve(item, opts, false)
			So(parse(src.URL).Query().Get("VideoBitrate"), ShouldEqual, strconv.Itoa(DefaultMaxBitrate))
		})

		Convey("Play session ids are strictly increasing", func() {
			frozen := time.UnixMilli(6_000_000_000_000)
			opts.Now = func() time.Time { return frozen }
			a, _ := strconv.ParseInt(Resolve(item, opts, false).PlaySessionID, 10, 64)
			b, _ := strconv.ParseInt(Resolve(item, opts, false).PlaySessionID, 10, 64)
			So(b, ShouldBeGreaterThan, a)
		})
	})

	Convey("Given an item without media sources", t, func() {
		item := &jellyfin.Item{ID: "bare"}
		opts := Options{BaseURL: "http://host", Token: "tok", DirectPlayFirst: true}

		Convey("The item id stands in for the media source id", func() {
			src := Resolve(item, opts, false)
			So(src.MediaSourceID, ShouldEqual, "bare")
			So(parse(src.URL).Path, ShouldEqual, "/Videos/bare/stream")
			So(parse(src.URL).Query().Get("MediaSourceId"), ShouldEqual, "bare")
		})
	})
}

func TestFailures(t *testing.T) {
	Convey("Failures are sticky per item", t, func() {
		f := NewFailures()
		So(f.Has("a"), ShouldBeFalse)
		f.Mark("a")
		f.Mark("a")
		So(f.Has("a"), ShouldBeTrue)
		So(f.Has("b"), ShouldBeFalse)
		So(f.Len(), ShouldEqual, 1)
	})
}

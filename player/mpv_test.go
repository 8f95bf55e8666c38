package player

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func raw(s string) rawEvent {
	var r rawEvent
	So(json.Unmarshal([]byte(s), &r), ShouldBeNil)
	return r
}

func TestBuildArgs(t *testing.T) {
	Convey("Given surface options", t, func() {
		opts := Options{Loop: true, ExtraArgs: []string{"--hwdec=auto", "--input-ipc-server=/tmp/other"}}
		args := buildArgs(opts, "/tmp/jellytok-1.sock")

		Convey("The surface starts idle and paused on our socket", func() {
			So(args, ShouldContain, "--input-ipc-server=/tmp/jellytok-1.sock")
			So(args, ShouldContain, "--idle=yes")
			So(args, ShouldContain, "--pause=yes")
		})

		Convey("Looping is applied per file", func() {
			So(args, ShouldContain, "--loop-file=inf")
			opts.Loop = false
			So(buildArgs(opts, "s"), ShouldNotContain, "--loop-file=inf")
		})

		Convey("Extra arguments are appended but cannot move the socket", func() {
			So(args, ShouldContain, "--hwdec=auto")
			So(args, ShouldNotContain, "--input-ipc-server=/tmp/other")
		})
	})
}

func TestTranslate(t *testing.T) {
	Convey("mpv messages map to surface events", t, func() {
		ev, ok := translate(raw(`{"event":"file-loaded"}`))
		So(ok, ShouldBeTrue)
		So(ev.Kind, ShouldEqual, Loaded)

		ev, ok = translate(raw(`{"event":"property-change","id":1,"name":"time-pos","data":12.5}`))
		So(ok, ShouldBeTrue)
		So(ev.Kind, ShouldEqual, TimeUpdate)
		So(ev.Position, ShouldEqual, 12.5)

		ev, ok = translate(raw(`{"event":"property-change","id":2,"name":"duration","data":720}`))
		So(ok, ShouldBeTrue)
		So(ev.Kind, ShouldEqual, DurationChanged)
		So(ev.Duration, ShouldEqual, 720.0)

		ev, ok = translate(raw(`{"event":"property-change","id":3,"name":"eof-reached","data":true}`))
		So(ok, ShouldBeTrue)
		So(ev.Kind, ShouldEqual, Ended)

		ev, ok = translate(raw(`{"event":"end-file","reason":"eof"}`))
		So(ok, ShouldBeTrue)
		So(ev.Kind, ShouldEqual, Ended)

		ev, ok = translate(raw(`{"event":"end-file","reason":"error","file_error":"loading failed"}`))
		So(ok, ShouldBeTrue)
		So(ev.Kind, ShouldEqual, Error)
		So(ev.Reason, ShouldEqual, "loading failed")
	})

	Convey("Uninteresting messages are dropped", t, func() {
		for _, s := range []string{
			`{"event":"end-file","reason":"stop"}`,
			`{"event":"property-change","name":"time-pos","data":null}`,
			`{"event":"property-change","name":"eof-reached","data":false}`,
			`{"event":"playback-restart"}`,
		} {
			_, ok := translate(raw(s))
			So(ok, ShouldBeFalse)
		}
	})
}

func TestDispatchThrottle(t *testing.T) {
	Convey("Given a listener with a sink", t, func() {
		el := &eventListener{lastPos: -1}
		var got []Event
		el.setSink(func(ev Event) { got = append(got, ev) })

		Convey("Small forward steps are coalesced", func() {
			for _, pos := range []float64{0, 0.1, 0.2, 0.3, 0.4, 0.6} {
				el.dispatch(Event{Kind: TimeUpdate, Position: pos})
			}
			So(len(got), ShouldEqual, 3)
			So(got[1].Position, ShouldEqual, 0.3)
		})

		Convey("Backward jumps always pass", func() {
			el.dispatch(Event{Kind: TimeUpdate, Position: 10})
			el.dispatch(Event{Kind: TimeUpdate, Position: 9.9})
			So(got, ShouldHaveLength, 2)
		})

		Convey("A nil sink drops events", func() {
			el.setSink(nil)
			el.dispatch(Event{Kind: Loaded})
			So(got, ShouldBeEmpty)
		})
	})
}

func TestSanitize(t *testing.T) {
	Convey("Media targets", t, func() {
		u, err := sanitizeMediaTarget(" https://host/Videos/1/master.m3u8?api_key=x ")
		So(err, ShouldBeNil)
		So(u, ShouldEqual, "https://host/Videos/1/master.m3u8?api_key=x")

		for _, bad := range []string{"", "--script=evil.lua", "file:///etc/passwd", "http://host/\nx"} {
			_, err := sanitizeMediaTarget(bad)
			So(err, ShouldNotBeNil)
		}
	})

	Convey("Titles lose control characters", t, func() {
		So(sanitizeTitle(" a\tb\nc\x00 "), ShouldEqual, "a b c")
	})
}

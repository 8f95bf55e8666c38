package loop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestManual(t *testing.T) {
	Convey("Given a manual loop", t, func() {
		m := NewManual(time.Unix(0, 0))
		var log []string

		Convey("Posted callbacks run in order when drained", func() {
			m.Post(func() { log = append(log, "a") })
			m.Post(func() {
				log = append(log, "b")
				m.Post(func() { log = append(log, "c") })
			})
			So(log, ShouldBeEmpty)
			m.Drain()
			So(log, ShouldResemble, []string{"a", "b", "c"})
		})

		Convey("Tasks can complete out of order", func() {
			for _, name := range []string{"first", "second"} {
				m.Go(func(ctx context.Context) func() {
					return func() { log = append(log, name) }
				})
			}
			So(m.Pending(), ShouldEqual, 2)
			m.Complete(1)
			m.Complete(0)
			So(log, ShouldResemble, []string{"second", "first"})
		})

		Convey("After fires once at its deadline", func() {
			m.After(300*time.Millisecond, func() { log = append(log, "fired") })
			m.Advance(299 * time.Millisecond)
			So(log, ShouldBeEmpty)
			m.Advance(time.Millisecond)
			So(log, ShouldResemble, []string{"fired"})
			m.Advance(time.Second)
			So(log, ShouldHaveLength, 1)
			So(m.Timers(), ShouldEqual, 0)
		})

		Convey("Every fires on each period until stopped", func() {
			timer := m.Every(time.Second, func() { log = append(log, "tick") })
			m.Advance(3500 * time.Millisecond)
			So(log, ShouldHaveLength, 3)
			timer.Stop()
			m.Advance(5 * time.Second)
			So(log, ShouldHaveLength, 3)
		})

		Convey("A stopped After never fires", func() {
			timer := m.After(time.Second, func() { log = append(log, "fired") })
			timer.Stop()
			m.Advance(2 * time.Second)
			So(log, ShouldBeEmpty)
		})
	})
}

func TestReal(t *testing.T) {
	Convey("Given a real loop draining into a channel", t, func() {
		calls := make(chan func(), 16)
		l := New(func(fn func()) { calls <- fn })
		Reset(l.Close)

		run := func() {
			select {
			case fn := <-calls:
				fn()
			case <-time.After(2 * time.Second):
				t.Fatal("timed out waiting for callback")
			}
		}

		Convey("Post preserves order", func() {
			var got []int
			for i := 0; i < 5; i++ {
				l.Post(func() { got = append(got, i) })
			}
			for i := 0; i < 5; i++ {
				run()
			}
			So(got, ShouldResemble, []int{0, 1, 2, 3, 4})
		})

		Convey("Go posts its continuation", func() {
			done := false
			l.Go(func(ctx context.Context) func() {
				return func() { done = true }
			})
			run()
			So(done, ShouldBeTrue)
		})

		Convey("Close lets running work finish", func() {
			var cancelled atomic.Bool
			started := make(chan struct{})
			l.Go(func(ctx context.Context) func() {
				close(started)
				time.Sleep(20 * time.Millisecond)
				cancelled.Store(ctx.Err() != nil)
				return nil
			})
			<-started
			l.Close()
			So(cancelled.Load(), ShouldBeFalse)

			Convey("and work started afterwards never runs", func() {
				ran := false
				l.Go(func(ctx context.Context) func() {
					ran = true
					return nil
				})
				So(ran, ShouldBeFalse)
			})
		})

		Convey("A timer stopped before its callback runs does not fire", func() {
			fired := false
			timer := l.After(time.Millisecond, func() { fired = true })
			time.Sleep(20 * time.Millisecond)
			timer.Stop()
			run()
			So(fired, ShouldBeFalse)
		})
	})
}

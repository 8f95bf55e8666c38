// Package loop serialises the feed's state onto a single event loop.
//
// Every callback handed to a Loop runs on the loop goroutine, one at a time,
// so the feed controller and playback sessions never need locks. Blocking
// work is started with Go and its continuation is posted back.
package loop

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a scheduled callback.
type Timer interface {
	// Stop cancels the timer. Called on the loop, it guarantees the callback will not run afterwards.
	Stop()
}

// Loop schedules callbacks onto a single goroutine.
type Loop interface {
	Now() time.Time

	// Post queues fn. It never blocks and preserves order.
	Post(fn func())

	// Go runs work off the loop. A non-nil continuation it returns is posted back.
	Go(work func(ctx context.Context) func())

	After(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// Sink delivers callbacks to the goroutine that owns the loop, for example
// by sending them to a bubbletea program as messages.
type Sink func(fn func())

// Real is the production Loop.
type Real struct {
	sink   Sink
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
	done   chan struct{}
	work   sync.WaitGroup
}

// CloseGrace bounds how long Close waits for work started with Go.
const CloseGrace = 2 * time.Second

// New starts a loop that forwards posted callbacks to sink in order.
func New(sink Sink) *Real {
	ctx, cancel := context.WithCancel(context.Background())
	l := &Real{
		sink:   sink,
		ctx:    ctx,
		cancel: cancel,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go l.pump()
	return l
}

func (l *Real) Now() time.Time {
	return time.Now()
}

func (l *Real) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// pump hands queued callbacks to the sink. The sink may block, so it runs on its own goroutine.
func (l *Real) pump() {
	defer close(l.done)

	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.wake:
		}

		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				l.mu.Unlock()
				break
			}
			batch := l.queue
			l.queue = nil
			l.mu.Unlock()

			for _, fn := range batch {
				if l.ctx.Err() != nil {
					return
				}
				l.sink(fn)
			}
		}
	}
}

func (l *Real) Go(work func(ctx context.Context) func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.work.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.work.Done()
		if cont := work(l.ctx); cont != nil {
			l.Post(cont)
		}
	}()
}

type realTimer struct {
	stopped atomic.Bool
	stop    func()
}

func (t *realTimer) Stop() {
	if t.stopped.CompareAndSwap(false, true) {
		t.stop()
	}
}

func (l *Real) After(d time.Duration, fn func()) Timer {
	t := &realTimer{}
	timer := time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	t.stop = func() { timer.Stop() }
	return t
}

func (l *Real) Every(d time.Duration, fn func()) Timer {
	t := &realTimer{}
	ticker := time.NewTicker(d)
	quit := make(chan struct{})
	t.stop = func() {
		ticker.Stop()
		close(quit)
	}

	go func() {
		for {
			select {
			case <-quit:
				return
			case <-l.ctx.Done():
				return
			case <-ticker.C:
				l.Post(func() {
					if !t.stopped.Load() {
						fn()
					}
				})
			}
		}
	}()

	return t
}

// Close stops delivering callbacks. Running work gets CloseGrace to finish,
// so a final progress report can still reach the server, and is then cancelled.
func (l *Real) Close() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		l.work.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(CloseGrace):
	}

	l.cancel()
	<-l.done
}

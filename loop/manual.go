package loop

import (
	"context"
	"sort"
	"time"
)

// Manual is a deterministic Loop for tests. Nothing runs until the test
// drains posted callbacks, completes pending work or advances the clock.
type Manual struct {
	now    time.Time
	posted []func()
	tasks  []*Task
	timers []*manualTimer
	seq    int
}

// NewManual returns a manual loop whose clock starts at start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Time {
	return m.now
}

func (m *Manual) Post(fn func()) {
	m.posted = append(m.posted, fn)
}

// Task is work started with Go that has not completed yet.
type Task struct {
	work func(ctx context.Context) func()
	done bool
}

func (m *Manual) Go(work func(ctx context.Context) func()) {
	m.tasks = append(m.tasks, &Task{work: work})
}

// Pending is the number of uncompleted tasks.
func (m *Manual) Pending() int {
	return len(m.tasks)
}

// Complete runs the i-th pending task, posts its continuation and drains.
// Completing tasks out of order simulates responses arriving out of order.
func (m *Manual) Complete(i int) {
	task := m.tasks[i]
	m.tasks = append(m.tasks[:i:i], m.tasks[i+1:]...)
	if cont := task.work(context.Background()); cont != nil {
		m.Post(cont)
	}
	m.Drain()
}

// Flush completes pending tasks in order, including tasks they start, until none remain.
func (m *Manual) Flush() {
	for guard := 0; len(m.tasks) > 0 && guard < 10_000; guard++ {
		m.Complete(0)
	}
}

// Drain runs posted callbacks, including ones they post, until the queue is empty.
func (m *Manual) Drain() {
	for len(m.posted) > 0 {
		fn := m.posted[0]
		m.posted = m.posted[1:]
		fn()
	}
}

type manualTimer struct {
	at      time.Time
	every   time.Duration
	fn      func()
	seq     int
	stopped bool
}

func (t *manualTimer) Stop() {
	t.stopped = true
}

func (m *Manual) schedule(d, every time.Duration, fn func()) *manualTimer {
	m.seq++
	t := &manualTimer{at: m.now.Add(d), every: every, fn: fn, seq: m.seq}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) After(d time.Duration, fn func()) Timer {
	return m.schedule(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Timer {
	return m.schedule(d, d, fn)
}

// Timers is the number of live timers.
func (m *Manual) Timers() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in deadline order
// and draining after each one.
func (m *Manual) Advance(d time.Duration) {
	target := m.now.Add(d)
	m.Drain()

	for {
		due := m.nextDue(target)
		if due == nil {
			break
		}

		m.now = due.at
		if due.every > 0 {
			due.at = due.at.Add(due.every)
		} else {
			due.stopped = true
		}
		due.fn()
		m.Drain()
	}

	m.now = target
	m.prune()
}

func (m *Manual) nextDue(target time.Time) *manualTimer {
	var live []*manualTimer
	for _, t := range m.timers {
		if !t.stopped && !t.at.After(target) {
			live = append(live, t)
		}
	}
	if len(live) == 0 {
		return nil
	}

	sort.Slice(live, func(i, j int) bool {
		if live[i].at.Equal(live[j].at) {
			return live[i].seq < live[j].seq
		}
		return live[i].at.Before(live[j].at)
	})
	return live[0]
}

func (m *Manual) prune() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
}

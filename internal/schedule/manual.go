package schedule

import (
	"sync"
	"time"
)

// Manual is a Scheduler driven by an explicit virtual clock. Callbacks only
// run inside Advance, on the caller's goroutine.
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTimer
}

type manualTimer struct {
	m       *Manual
	due     time.Duration
	seq     uint64
	f       func()
	stopped bool
}

func NewManual() *Manual {
	return &Manual{}
}

func (m *Manual) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTimer{m: m, due: m.now + d, seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.m.mu.Lock()
	defer t.m.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending counts callbacks that have neither run nor been stopped.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every callback that comes
// due in order. Callbacks scheduled while advancing run too if they fall
// inside the window.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := -1
		for i, t := range m.tasks {
			if t.stopped || t.due > target {
				continue
			}
			if next < 0 || t.due < m.tasks[next].due || (t.due == m.tasks[next].due && t.seq < m.tasks[next].seq) {
				next = i
			}
		}
		if next < 0 {
			m.now = target
			m.tasks = compact(m.tasks)
			m.mu.Unlock()
			return
		}
		t := m.tasks[next]
		t.stopped = true
		m.now = t.due
		m.mu.Unlock()

		t.f()
	}
}

func compact(tasks []*manualTimer) []*manualTimer {
	out := tasks[:0]
	for _, t := range tasks {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

// Package schedule provides cancelable timers and debouncers whose stale
// callbacks are recognised by a monotonic generation id and ignored.
package schedule

import (
	"sync"
	"time"
)

// Timer is a pending callback that can be stopped.
type Timer interface {
	Stop() bool
}

// Scheduler runs a function once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

// Real returns a scheduler backed by time.AfterFunc.
func Real() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type lockedScheduler struct {
	inner Scheduler
	mu    sync.Locker
}

// Locked wraps a scheduler so every callback runs while holding mu. This is
// how timer callbacks join the owner's serialized control flow.
func Locked(inner Scheduler, mu sync.Locker) Scheduler {
	return lockedScheduler{inner: inner, mu: mu}
}

func (s lockedScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.inner.AfterFunc(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		f()
	})
}

// Debouncer runs fn once the trigger has been quiet for delay. Each Trigger
// supersedes the previous one: its timer is stopped, and if the old callback
// already fired concurrently its generation no longer matches and it is
// dropped.
//
// A Debouncer is not safe for concurrent use; callers serialize access, for
// example by scheduling through Locked.
type Debouncer struct {
	sched Scheduler
	delay time.Duration
	fn    func()

	gen   uint64
	timer Timer
}

func NewDebouncer(sched Scheduler, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{sched: sched, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.stop()
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Pending reports whether a callback is scheduled.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

// Cancel drops a pending callback without running it.
func (d *Debouncer) Cancel() {
	d.stop()
}

// Flush runs a pending callback immediately. It reports whether anything was
// pending.
func (d *Debouncer) Flush() bool {
	if d.timer == nil {
		return false
	}
	d.stop()
	d.fn()
	return true
}

func (d *Debouncer) stop() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	if gen != d.gen {
		return
	}
	d.timer = nil
	d.gen++
	d.fn()
}

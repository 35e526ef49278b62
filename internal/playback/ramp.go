package playback

import (
	"time"

	"github.com/ivlev/screencut/internal/schedule"
)

const (
	RampDuration = 300 * time.Millisecond
	RampTickRate = 60 // Hz
)

// Ramp eases a value from one rate to another with smoothstep over
// RampDuration, emitting a sample RampTickRate times a second. Starting a new
// ramp or cancelling bumps the generation, so ticks of an older ramp that are
// already queued do nothing.
type Ramp struct {
	sched schedule.Scheduler
	emit  func(float64)

	gen    uint64
	timer  schedule.Timer
	from   float64
	to     float64
	step   int
	steps  int
	active bool
}

func NewRamp(sched schedule.Scheduler, emit func(float64)) *Ramp {
	return &Ramp{
		sched: sched,
		emit:  emit,
		steps: int(RampDuration * RampTickRate / time.Second),
	}
}

func (r *Ramp) Active() bool {
	return r.active
}

func (r *Ramp) Target() float64 {
	return r.to
}

// Start begins (or redirects) a ramp from the current rate.
func (r *Ramp) Start(from, to float64) {
	r.Cancel()
	r.from, r.to = from, to
	r.step = 0
	r.active = true
	r.schedule()
}

func (r *Ramp) Cancel() {
	r.gen++
	r.active = false
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Ramp) schedule() {
	gen := r.gen
	r.timer = r.sched.AfterFunc(time.Second/RampTickRate, func() { r.tick(gen) })
}

func (r *Ramp) tick(gen uint64) {
	if gen != r.gen || !r.active {
		return
	}
	r.timer = nil
	r.step++
	t := float64(r.step) / float64(r.steps)
	if t >= 1 {
		r.active = false
		r.gen++
		r.emit(r.to)
		return
	}
	r.emit(r.from + (r.to-r.from)*Smoothstep(t))
	if r.active {
		r.schedule()
	}
}

// Smoothstep is the ease-in-out curve t²(3-2t) on [0, 1].
func Smoothstep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}

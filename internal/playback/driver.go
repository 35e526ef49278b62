// Package playback drives a host player across an edited timeline: it skips
// disabled segments and eases the playback rate between segment speeds.
package playback

import (
	"math"

	"github.com/ivlev/screencut/internal/schedule"
	"github.com/ivlev/screencut/internal/timeline"
)

const (
	// rateTolerance is the smallest rate difference worth ramping for.
	rateTolerance = 0.01

	boundarySlack = 0.001
)

// Player is the host media player. Times are source times in seconds.
type Player interface {
	Seek(sourceTime float64)
	Play(rate float64)
	SetRate(rate float64)
	Pause()
}

// Timeline is the segment lookup the driver needs.
type Timeline interface {
	SourceDuration() float64
	Segments() []timeline.Segment
	SegmentAt(t float64) (int, timeline.Segment, bool)
	NextEnabled(t float64) (timeline.Segment, bool)
}

// State is a read-only view of the driver.
type State struct {
	CurrentSourceTime float64
	IsPlaying         bool
	Rate              float64
	TargetRate        float64
	Ramping           bool
}

// skip remembers an in-flight jump over a disabled range so the periodic
// and boundary paths do not both act on it.
type skip struct {
	active   bool
	from, to float64
}

// Driver is not safe for concurrent use. Position updates, boundary
// callbacks, and transport calls must be serialized by the owner, and the
// scheduler should run ramp ticks under the same lock (schedule.Locked).
type Driver struct {
	tl     Timeline
	player Player
	ramp   *Ramp

	current float64
	playing bool
	rate    float64
	target  float64
	skip    skip
}

func NewDriver(tl Timeline, player Player, sched schedule.Scheduler) *Driver {
	d := &Driver{tl: tl, player: player, rate: 1.0, target: 1.0}
	d.ramp = NewRamp(sched, d.applyRate)
	return d
}

func (d *Driver) State() State {
	return State{
		CurrentSourceTime: d.current,
		IsPlaying:         d.playing,
		Rate:              d.rate,
		TargetRate:        d.target,
		Ramping:           d.ramp.Active(),
	}
}

// BoundaryTimes lists the start times of disabled segments. The host should
// call OnBoundary when playback crosses one of them exactly.
func (d *Driver) BoundaryTimes() []float64 {
	var times []float64
	for _, seg := range d.tl.Segments() {
		if !seg.IsEnabled {
			times = append(times, seg.StartTime)
		}
	}
	return times
}

// OnPosition handles a periodic position report from the player.
func (d *Driver) OnPosition(t float64) {
	d.current = t
	if !d.playing {
		return
	}
	if d.skip.active {
		if t >= d.skip.from && t < d.skip.to {
			// the seek has not landed yet
			return
		}
		d.skip = skip{}
	}
	d.evaluate(t)
}

// OnBoundary handles the player reaching a watched boundary time. A boundary
// behind the current position is stale: the periodic path already moved past
// it.
func (d *Driver) OnBoundary(t float64) {
	if !d.playing || t < d.current-boundarySlack {
		return
	}
	if d.skip.active && t >= d.skip.from && t < d.skip.to {
		return
	}
	if _, seg, ok := d.tl.SegmentAt(t); ok && !seg.IsEnabled {
		d.current = t
		d.skipOver(seg)
	}
}

// Seek moves the playhead on user request.
func (d *Driver) Seek(t float64) {
	t = math.Max(0, math.Min(d.tl.SourceDuration(), t))
	d.ramp.Cancel()
	d.skip = skip{}
	d.current = t
	d.player.Seek(t)
	if d.playing {
		d.evaluate(t)
	}
}

// TogglePlayback pauses or resumes. Resuming inside a disabled segment jumps
// to the next enabled one; at the end of the clip it starts over. It reports
// whether playback is running afterwards.
func (d *Driver) TogglePlayback() bool {
	if d.playing {
		d.stop()
		return false
	}

	t := d.current
	if t >= d.tl.SourceDuration() {
		t = 0
	}
	_, seg, ok := d.tl.SegmentAt(t)
	if !ok {
		return false
	}
	if !seg.IsEnabled {
		next, ok := d.tl.NextEnabled(seg.EndTime)
		if !ok {
			return false
		}
		seg, t = next, next.StartTime
	}
	if t != d.current {
		d.player.Seek(t)
	}

	d.current = t
	d.playing = true
	d.skip = skip{}
	d.rate, d.target = seg.Speed, seg.Speed
	d.player.Play(seg.Speed)
	return true
}

func (d *Driver) evaluate(t float64) {
	_, seg, ok := d.tl.SegmentAt(t)
	if !ok {
		if t >= d.tl.SourceDuration() {
			d.stop()
		}
		return
	}
	if !seg.IsEnabled {
		d.skipOver(seg)
		return
	}
	d.retarget(seg.Speed)
}

func (d *Driver) skipOver(seg timeline.Segment) {
	d.ramp.Cancel()
	next, ok := d.tl.NextEnabled(seg.EndTime)
	if !ok {
		d.stop()
		return
	}
	d.skip = skip{active: true, from: seg.StartTime, to: next.StartTime}
	d.current = next.StartTime
	d.player.Seek(next.StartTime)
	d.target = next.Speed
	d.applyRate(next.Speed)
}

func (d *Driver) retarget(speed float64) {
	d.target = speed
	if d.ramp.Active() {
		if math.Abs(d.ramp.Target()-speed) > rateTolerance {
			d.ramp.Start(d.rate, speed)
		}
		return
	}
	if math.Abs(d.rate-speed) > rateTolerance {
		d.ramp.Start(d.rate, speed)
	}
}

func (d *Driver) applyRate(rate float64) {
	if !d.playing {
		d.ramp.Cancel()
		return
	}
	d.rate = rate
	d.player.SetRate(rate)
}

func (d *Driver) stop() {
	d.ramp.Cancel()
	d.playing = false
	d.skip = skip{}
	d.player.Pause()
}

package telemetry

import (
	"math"
	"sync"
	"time"
)

const (
	MaxMoveRate = 120.0 // Hz
	MaxKeyRate  = 4.0   // Hz
)

// Recorder accumulates events from a single capture producer. Moves and key
// presses arriving faster than their rate limits are dropped so memory and
// clustering cost stay bounded; clicks, releases, and scrolls are always
// kept. Append never blocks on anything but a short critical section.
type Recorder struct {
	mu       sync.Mutex
	width    float64
	height   float64
	started  time.Time
	now      func() time.Time
	events   []CursorEvent
	lastMove float64
	lastKey  float64
	frozen   bool
}

func NewRecorder(captureWidth, captureHeight float64) *Recorder {
	return &Recorder{
		width:    captureWidth,
		height:   captureHeight,
		now:      time.Now,
		lastMove: math.Inf(-1),
		lastKey:  math.Inf(-1),
	}
}

// Start marks time zero for Track.
func (r *Recorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = r.now()
}

// Track stamps an event with the time elapsed since Start and appends it.
func (r *Recorder) Track(typ EventType, x, y float64, button MouseButton) bool {
	ts := r.now().Sub(r.started).Seconds()
	return r.Append(CursorEvent{Timestamp: ts, X: x, Y: y, Type: typ, Button: button})
}

// Append adds an event with an explicit timestamp. It reports whether the
// event was kept.
func (r *Recorder) Append(ev CursorEvent) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return false
	}
	switch ev.Type {
	case EventMove:
		if ev.Timestamp-r.lastMove < 1/MaxMoveRate {
			return false
		}
		r.lastMove = ev.Timestamp
	case EventKeyDown:
		if ev.Timestamp-r.lastKey < 1/MaxKeyRate {
			return false
		}
		r.lastKey = ev.Timestamp
	}
	r.events = append(r.events, ev)
	return true
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Freeze stops recording and hands the log over as metadata.
func (r *Recorder) Freeze() *Metadata {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
	return &Metadata{
		Version:       metadataVersion,
		CaptureWidth:  r.width,
		CaptureHeight: r.height,
		Events:        append([]CursorEvent(nil), r.events...),
	}
}

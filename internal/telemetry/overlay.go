package telemetry

import (
	"iter"
	"math"
	"sort"

	"github.com/ivlev/screencut/internal/zoom"
)

// ClickPulse is the state of the click ring drawn around the cursor.
type ClickPulse struct {
	Active    bool    `json:"active"`
	Age       float64 `json:"age"`
	Intensity float64 `json:"intensity"`
	Radius    float64 `json:"radius"`
}

// Keyframe is the overlay state for one frame. Position, zoom focus and
// click radius are in pixels of the recording. Time is the frame's place on
// the timeline being sampled; SourceTime is the recording time it shows.
type Keyframe struct {
	Frame      int            `json:"frame"`
	Time       float64        `json:"time"`
	SourceTime float64        `json:"sourceTime"`
	Visible    bool           `json:"visible"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Scale      float64        `json:"scale"`
	Click      ClickPulse     `json:"click"`
	Zoom       zoom.Transform `json:"zoom"`
}

type sample struct {
	t, x, y float64
}

// Overlay resamples an irregular event log onto a regular frame grid. It is
// immutable once prepared, so Frames can be iterated any number of times and
// from any goroutine.
type Overlay struct {
	settings Settings
	width    float64
	height   float64
	fps      float64
	duration float64
	points   []sample
	clicks   []sample
	regions  []zoom.Region
}

// OverlayOptions describe the frame the overlay is drawn on.
type OverlayOptions struct {
	Duration float64 // source duration, seconds
	FPS      float64
	// Width and Height of the recording in pixels. Zero falls back to the
	// capture size.
	Width  float64
	Height float64
}

// PrepareOverlay indexes the event log for resampling, with every sample
// scaled from capture units to recording pixels so it shares a space with
// the zoom regions. It returns nil when cursor tracking is disabled or there
// is nothing to draw on.
func PrepareOverlay(meta *Metadata, settings Settings, regions []zoom.Region, opts OverlayOptions) *Overlay {
	if meta == nil || !settings.Enabled || opts.Duration <= 0 || opts.FPS <= 0 {
		return nil
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = meta.CaptureWidth, meta.CaptureHeight
	}
	sx, sy := meta.ScaleTo(width, height)

	o := &Overlay{
		settings: settings.Normalize(),
		width:    width,
		height:   height,
		fps:      opts.FPS,
		duration: opts.Duration,
		regions:  append([]zoom.Region(nil), regions...),
	}
	for _, ev := range meta.Events {
		x, y := meta.TopLeft(ev.X, ev.Y)
		s := sample{t: ev.Timestamp, x: x * sx, y: y * sy}
		o.points = append(o.points, s)
		if ev.Type == EventClick {
			o.clicks = append(o.clicks, s)
		}
	}
	sort.SliceStable(o.points, func(i, j int) bool { return o.points[i].t < o.points[j].t })
	sort.SliceStable(o.clicks, func(i, j int) bool { return o.clicks[i].t < o.clicks[j].t })
	return o
}

func (o *Overlay) FrameCount() int {
	return int(math.Ceil(o.duration * o.fps))
}

func (o *Overlay) FPS() float64 {
	return o.fps
}

// Size is the pixel frame positions are expressed in.
func (o *Overlay) Size() (float64, float64) {
	return o.width, o.height
}

// Frames yields one keyframe per frame of the source-time grid, lazily.
func (o *Overlay) Frames() iter.Seq[Keyframe] {
	return func(yield func(Keyframe) bool) {
		n := o.FrameCount()
		for i := 0; i < n; i++ {
			k := o.At(float64(i) / o.fps)
			k.Frame = i
			if !yield(k) {
				return
			}
		}
	}
}

// At computes the overlay state at source time t.
func (o *Overlay) At(t float64) Keyframe {
	k := Keyframe{
		Time:       t,
		SourceTime: t,
		Scale:      o.settings.Size,
		Zoom:       zoom.TransformAt(o.regions, t, o.width, o.height),
	}
	if len(o.points) > 0 {
		// nothing is drawn before tracking started
		k.Visible = t >= o.points[0].t
		k.X, k.Y = o.positionAt(t)
	}
	k.Click = o.pulseAt(t)
	return k
}

func (o *Overlay) positionAt(t float64) (float64, float64) {
	i := sort.Search(len(o.points), func(i int) bool { return o.points[i].t > t })
	if i == 0 {
		return o.points[0].x, o.points[0].y
	}
	if i == len(o.points) {
		last := o.points[len(o.points)-1]
		return last.x, last.y
	}
	prev, next := o.points[i-1], o.points[i]
	span := next.t - prev.t
	if span <= 0 {
		return next.x, next.y
	}
	f := (t - prev.t) / span
	return lerp(prev.x, next.x, f), lerp(prev.y, next.y, f)
}

// pulseAt finds the latest click at or before t. The ring grows with an
// ease-out curve to MaxRadius and fades linearly over the effect duration.
func (o *Overlay) pulseAt(t float64) ClickPulse {
	if !o.settings.Click.Enabled || len(o.clicks) == 0 {
		return ClickPulse{}
	}
	i := sort.Search(len(o.clicks), func(i int) bool { return o.clicks[i].t > t })
	if i == 0 {
		return ClickPulse{}
	}
	age := t - o.clicks[i-1].t
	dur := o.settings.Click.Duration
	if age >= dur {
		return ClickPulse{}
	}
	p := age / dur
	return ClickPulse{
		Active:    true,
		Age:       age,
		Intensity: 1 - p,
		Radius:    o.settings.Click.MaxRadius * o.settings.Size * easeOutCubic(p),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

package zoom

import (
	"math"

	"github.com/google/uuid"
)

const (
	MinLevel    = 1.1
	MaxLevel    = 4.0
	MinDuration = 0.3

	DefaultLevel = 2.0
)

// Region magnifies a focus-centred crop of the source for a source-time
// interval. Focus is in source pixels with a top-left origin.
type Region struct {
	ID        string  `json:"id" yaml:"id"`
	StartTime float64 `json:"startTime" yaml:"start"`
	EndTime   float64 `json:"endTime" yaml:"end"`
	ZoomLevel float64 `json:"zoomLevel" yaml:"zoom"`
	FocusX    float64 `json:"focusX" yaml:"focus_x"`
	FocusY    float64 `json:"focusY" yaml:"focus_y"`
	IsEnabled bool    `json:"isEnabled" yaml:"enabled"`
}

func (r Region) Duration() float64 {
	return r.EndTime - r.StartTime
}

func (r Region) Contains(t float64) bool {
	return t >= r.StartTime && t < r.EndTime
}

// Bounds describes the source the regions live in.
type Bounds struct {
	Duration float64
	Width    float64
	Height   float64
}

// NewRegion creates an enabled region centred on the source.
func NewRegion(b Bounds, start, end, level float64) Region {
	return b.Clamp(Region{
		ID:        uuid.New().String(),
		StartTime: start,
		EndTime:   end,
		ZoomLevel: level,
		FocusX:    b.Width / 2,
		FocusY:    b.Height / 2,
		IsEnabled: true,
	})
}

// Clamp returns r adjusted to satisfy every region invariant: ordered times
// inside the clip, at least MinDuration long when the clip allows it, a zoom
// level in [MinLevel, MaxLevel], and a focus that keeps the crop rectangle
// inside the source.
func (b Bounds) Clamp(r Region) Region {
	r.ZoomLevel = ClampLevel(r.ZoomLevel)

	if r.EndTime < r.StartTime {
		r.StartTime, r.EndTime = r.EndTime, r.StartTime
	}
	r.StartTime = math.Max(0, r.StartTime)
	if b.Duration > 0 {
		r.StartTime = math.Min(r.StartTime, b.Duration)
		r.EndTime = math.Min(r.EndTime, b.Duration)
	}
	if r.EndTime-r.StartTime < MinDuration {
		r.EndTime = r.StartTime + MinDuration
		if b.Duration > 0 && r.EndTime > b.Duration {
			r.EndTime = b.Duration
			r.StartTime = math.Max(0, b.Duration-MinDuration)
		}
	}

	r.FocusX, r.FocusY = ClampFocus(r.FocusX, r.FocusY, r.ZoomLevel, b.Width, b.Height)
	return r
}

func ClampLevel(level float64) float64 {
	if math.IsNaN(level) {
		return DefaultLevel
	}
	return math.Max(MinLevel, math.Min(MaxLevel, level))
}

// ClampFocus keeps a crop of size/level centred at (x, y) within [0, size].
func ClampFocus(x, y, level, width, height float64) (float64, float64) {
	return clampAxis(x, width, level), clampAxis(y, height, level)
}

func clampAxis(v, size, level float64) float64 {
	if size <= 0 {
		return 0
	}
	half := size / level / 2
	if math.IsNaN(v) {
		return size / 2
	}
	return math.Max(half, math.Min(size-half, v))
}

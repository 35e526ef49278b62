package renderer

import (
	"math"
	"sort"

	"github.com/ivlev/screencut/internal/zoom"
)

// transitionSamples is how many points approximate each eased ramp in the
// piecewise-linear ffmpeg expression.
const transitionSamples = 4

// Keyframe is a camera state at an output timestamp.
type Keyframe struct {
	Time float64
	zoom.Transform
}

// CameraKeyframes samples the zoom camera at every point where its motion
// changes, densely enough that linear interpolation between consecutive
// keyframes follows the eased transitions closely. Regions must already be
// in output time. Returns nil when no enabled region exists.
func CameraKeyframes(regions []zoom.Region, duration, width, height float64) []Keyframe {
	var times []float64
	for _, r := range regions {
		if !r.IsEnabled {
			continue
		}
		ramp := math.Min(zoom.TransitionDuration, r.Duration()/4)
		for k := 0; k <= transitionSamples; k++ {
			step := ramp * float64(k) / transitionSamples
			times = append(times, r.StartTime+step, r.EndTime-step)
		}
	}
	if len(times) == 0 {
		return nil
	}
	times = append(times, 0, duration)
	sort.Float64s(times)

	keyframes := make([]Keyframe, 0, len(times))
	last := math.Inf(-1)
	for _, t := range times {
		t = math.Max(0, math.Min(duration, t))
		if t-last < 1e-6 {
			continue
		}
		last = t
		keyframes = append(keyframes, Keyframe{Time: t, Transform: zoom.TransformAt(regions, t, width, height)})
	}
	return keyframes
}

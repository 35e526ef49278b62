package zoom

import "math"

// TransitionDuration is how long a region takes to ease in and out.
const TransitionDuration = 0.25

// Transform is the camera state at one instant: magnification and the
// source point at the centre of the crop.
type Transform struct {
	Scale  float64 `json:"scale"`
	FocusX float64 `json:"focusX"`
	FocusY float64 `json:"focusY"`
}

// Identity is the unzoomed view of a width x height source.
func Identity(width, height float64) Transform {
	return Transform{Scale: 1.0, FocusX: width / 2, FocusY: height / 2}
}

// TransformAt computes the camera state at time t. The region added last
// wins when several enabled regions cover t. Regions shorter than two
// transitions ramp over a quarter of their length each way.
func TransformAt(regions []Region, t, width, height float64) Transform {
	base := Identity(width, height)
	var active *Region
	for i := len(regions) - 1; i >= 0; i-- {
		if regions[i].IsEnabled && regions[i].Contains(t) {
			active = &regions[i]
			break
		}
	}
	if active == nil {
		return base
	}

	ramp := math.Min(TransitionDuration, active.Duration()/4)
	k := 1.0
	if ramp > 0 {
		k = math.Min(1, math.Min((t-active.StartTime)/ramp, (active.EndTime-t)/ramp))
	}
	k = easeInOutCubic(math.Max(0, k))

	return Transform{
		Scale:  lerp(base.Scale, active.ZoomLevel, k),
		FocusX: lerp(base.FocusX, active.FocusX, k),
		FocusY: lerp(base.FocusY, active.FocusY, k),
	}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

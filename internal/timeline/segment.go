package timeline

import (
	"math"

	"github.com/google/uuid"
)

const (
	MinSpeed = 0.25
	MaxSpeed = 32.0

	// MinSplitGap is the smallest allowed distance between two split points
	// and between a split point and either end of the clip.
	MinSplitGap = 0.05

	// splitResolution is the grid split points are rounded onto (seconds).
	splitResolution = 0.01

	containSlack = 1e-9
)

// Segment is a maximal source-time interval sharing one speed and one
// enabled state.
type Segment struct {
	ID        string  `json:"id"`
	StartTime float64 `json:"startTime"`
	EndTime   float64 `json:"endTime"`
	Speed     float64 `json:"speed"`
	IsEnabled bool    `json:"isEnabled"`
}

func newSegment(start, end float64) Segment {
	return Segment{
		ID:        uuid.New().String(),
		StartTime: start,
		EndTime:   end,
		Speed:     1.0,
		IsEnabled: true,
	}
}

func (s Segment) Duration() float64 {
	return s.EndTime - s.StartTime
}

// OutputDuration is how long the segment lasts on the edited timeline.
func (s Segment) OutputDuration() float64 {
	return s.Duration() / s.Speed
}

// Contains reports whether t lies in the half-open range [StartTime, EndTime).
func (s Segment) Contains(t float64) bool {
	return t >= s.StartTime && t < s.EndTime
}

// ClampSpeed limits a playback speed to [MinSpeed, MaxSpeed].
func ClampSpeed(speed float64) float64 {
	return math.Max(MinSpeed, math.Min(MaxSpeed, speed))
}

func roundSplit(t float64) float64 {
	return math.Round(t/splitResolution) * splitResolution
}

package timeline

import "math"

// RemapEntry is the linear source→output transform of one enabled segment.
type RemapEntry struct {
	SourceStart  float64 `json:"sourceStart"`
	SourceEnd    float64 `json:"sourceEnd"`
	Speed        float64 `json:"speed"`
	OutputOffset float64 `json:"outputOffset"`
}

func (e RemapEntry) OutputDuration() float64 {
	return (e.SourceEnd - e.SourceStart) / e.Speed
}

func (e RemapEntry) OutputEnd() float64 {
	return e.OutputOffset + e.OutputDuration()
}

// ToOutput maps a source time inside the entry onto the output timeline.
func (e RemapEntry) ToOutput(sourceTime float64) float64 {
	return e.OutputOffset + (sourceTime-e.SourceStart)/e.Speed
}

// ToSource maps an output time inside the entry back to source time.
func (e RemapEntry) ToSource(outputTime float64) float64 {
	return e.SourceStart + (outputTime-e.OutputOffset)*e.Speed
}

// RemapTable lists the enabled segments of a timeline with their output
// offsets. Any source-time indexed data is retargeted through it.
type RemapTable []RemapEntry

// Interval is a closed time range.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func (iv Interval) Duration() float64 {
	return iv.End - iv.Start
}

func (rt RemapTable) TotalOutputDuration() float64 {
	if len(rt) == 0 {
		return 0
	}
	return rt[len(rt)-1].OutputEnd()
}

// SourceToOutput maps a source time onto the output timeline. It reports
// false when the time falls inside a removed (disabled) range. A time sitting
// exactly on the end of an entry maps to that entry's output end.
func (rt RemapTable) SourceToOutput(sourceTime float64) (float64, bool) {
	for _, e := range rt {
		if sourceTime >= e.SourceStart && sourceTime < e.SourceEnd {
			return e.ToOutput(sourceTime), true
		}
	}
	for _, e := range rt {
		if math.Abs(sourceTime-e.SourceEnd) < containSlack {
			return e.OutputEnd(), true
		}
	}
	return 0, false
}

// MapInterval clips a source-time interval against every enabled segment and
// returns the surviving pieces in output time. Pieces that touch on the
// output timeline are merged.
func (rt RemapTable) MapInterval(start, end float64) []Interval {
	var out []Interval
	for _, e := range rt {
		lo := math.Max(start, e.SourceStart)
		hi := math.Min(end, e.SourceEnd)
		if hi-lo <= containSlack {
			continue
		}
		piece := Interval{Start: e.ToOutput(lo), End: e.ToOutput(hi)}
		if n := len(out); n > 0 && math.Abs(out[n-1].End-piece.Start) < 1e-6 {
			out[n-1].End = piece.End
			continue
		}
		out = append(out, piece)
	}
	return out
}

package telemetry

import (
	"fmt"
	"iter"
	"math"

	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// RemapKeyframes samples the overlay on the output frame grid. Output frame
// i sits at i/fps; it is mapped back through the table to the recording time
// that plays there, so fast segments skip source frames and slow ones repeat
// positions instead of changing the frame rate.
func RemapKeyframes(o *Overlay, table timeline.RemapTable) iter.Seq[Keyframe] {
	return func(yield func(Keyframe) bool) {
		total := table.TotalOutputDuration()
		if o == nil || total <= 0 {
			return
		}
		n := int(math.Ceil(total*o.fps - 1e-9))
		for i := 0; i < n; i++ {
			out := float64(i) / o.fps
			k := o.At(outputToSource(table, out))
			k.Frame = i
			k.Time = out
			if !yield(k) {
				return
			}
		}
	}
}

func outputToSource(table timeline.RemapTable, out float64) float64 {
	for _, e := range table {
		if out < e.OutputEnd() {
			return math.Max(e.SourceStart, e.ToSource(out))
		}
	}
	last := table[len(table)-1]
	return last.SourceEnd
}

// RemapRegions converts enabled zoom regions to output time. A region that
// spans a cut is clipped; if the cut leaves separate pieces on the output,
// each becomes its own region. Pieces shorter than zoom.MinDuration on the
// output are dropped.
func RemapRegions(regions []zoom.Region, table timeline.RemapTable) []zoom.Region {
	var out []zoom.Region
	for _, r := range regions {
		if !r.IsEnabled {
			continue
		}
		i := 0
		for _, piece := range table.MapInterval(r.StartTime, r.EndTime) {
			if piece.Duration() < zoom.MinDuration-1e-9 {
				continue
			}
			cp := r
			cp.StartTime, cp.EndTime = piece.Start, piece.End
			if i > 0 {
				cp.ID = fmt.Sprintf("%s#%d", r.ID, i)
			}
			i++
			out = append(out, cp)
		}
	}
	return out
}

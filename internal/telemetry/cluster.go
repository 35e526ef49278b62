package telemetry

import (
	"math"
	"sort"

	"github.com/ivlev/screencut/internal/zoom"
)

const (
	// Key presses closer together than keyBurstGap form one typing burst;
	// a burst needs minBurstKeys presses to count as an interaction.
	keyBurstGap  = 1.0
	minBurstKeys = 3

	// Regions open a little before the first interaction and linger after
	// the last one.
	regionLeadIn  = 0.5
	regionHoldOut = 1.0
)

// interaction is a time span of user activity with the summed positions of
// its samples, so merged clusters keep a weighted centroid.
type interaction struct {
	start, end float64
	sumX, sumY float64
	samples    int
}

func (a *interaction) absorb(b interaction) {
	a.end = math.Max(a.end, b.end)
	a.sumX += b.sumX
	a.sumY += b.sumY
	a.samples += b.samples
}

func (a interaction) centroid() (float64, float64) {
	return a.sumX / float64(a.samples), a.sumY / float64(a.samples)
}

// AutoZoomOptions tune region synthesis.
type AutoZoomOptions struct {
	Level       float64
	Sensitivity Sensitivity
}

// SynthesizeRegions clusters clicks and typing bursts by temporal proximity
// and returns non-overlapping zoom regions focused on each cluster's
// centroid, in time order.
func SynthesizeRegions(meta *Metadata, sourceDuration float64, opts AutoZoomOptions) []zoom.Region {
	if meta == nil || sourceDuration <= 0 {
		return nil
	}
	bounds := zoom.Bounds{Duration: sourceDuration, Width: meta.CaptureWidth, Height: meta.CaptureHeight}

	clusters := mergeByGap(collectInteractions(meta), opts.Sensitivity.MergeGap())

	var regions []zoom.Region
	var weights []interaction
	for _, c := range clusters {
		start := math.Max(0, c.start-regionLeadIn)
		end := math.Min(sourceDuration, c.end+regionHoldOut)
		if n := len(regions); n > 0 && start < regions[n-1].EndTime {
			// padding made neighbours overlap; fold into the previous region
			weights[n-1].absorb(c)
			x, y := weights[n-1].centroid()
			regions[n-1].EndTime = math.Max(regions[n-1].EndTime, end)
			regions[n-1].FocusX, regions[n-1].FocusY = meta.TopLeft(x, y)
			regions[n-1] = bounds.Clamp(regions[n-1])
			continue
		}
		r := zoom.NewRegion(bounds, start, end, opts.Level)
		x, y := c.centroid()
		r.FocusX, r.FocusY = meta.TopLeft(x, y)
		regions = append(regions, bounds.Clamp(r))
		weights = append(weights, c)
	}
	return regions
}

func collectInteractions(meta *Metadata) []interaction {
	var out []interaction
	var burst *interaction
	lastKey := math.Inf(-1)

	closeBurst := func() {
		if burst != nil && burst.samples >= minBurstKeys {
			out = append(out, *burst)
		}
		burst = nil
	}

	for _, ev := range meta.Events {
		switch ev.Type {
		case EventClick:
			out = append(out, interaction{start: ev.Timestamp, end: ev.Timestamp, sumX: ev.X, sumY: ev.Y, samples: 1})
		case EventKeyDown:
			if burst != nil && ev.Timestamp-lastKey > keyBurstGap {
				closeBurst()
			}
			if burst == nil {
				burst = &interaction{start: ev.Timestamp, end: ev.Timestamp}
			}
			burst.end = ev.Timestamp
			burst.sumX += ev.X
			burst.sumY += ev.Y
			burst.samples++
			lastKey = ev.Timestamp
		}
	}
	closeBurst()

	sort.SliceStable(out, func(i, j int) bool { return out[i].start < out[j].start })
	return out
}

func mergeByGap(items []interaction, gap float64) []interaction {
	var merged []interaction
	for _, it := range items {
		if n := len(merged); n > 0 && it.start-merged[n-1].end <= gap {
			merged[n-1].absorb(it)
			continue
		}
		merged = append(merged, it)
	}
	return merged
}

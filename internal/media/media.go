// Package media holds the contracts the editor uses to reach decoding,
// composition and encoding, plus ffmpeg-backed implementations of them.
package media

import (
	"context"
	"errors"

	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// ErrAssetUnavailable is returned when source media or an export destination
// cannot be reached.
var ErrAssetUnavailable = errors.New("media asset unavailable")

// Asset is what the editor needs to know about a recording.
type Asset struct {
	Path     string
	Width    int
	Height   int
	Duration float64
	HasAudio bool
}

type AssetLoader interface {
	Load(ctx context.Context, path string) (Asset, error)
}

// Composition is a renderable timeline: which source ranges play, at what
// speed, and what is drawn on top.
type Composition struct {
	Asset   Asset
	Table   timeline.RemapTable
	Regions []zoom.Region // output time
	Overlay *telemetry.Overlay
}

// Compose builds a composition from the editing state. Zoom regions are given
// in source time and moved onto the output timeline here.
func Compose(asset Asset, segments []timeline.Segment, regions []zoom.Region, overlay *telemetry.Overlay) *Composition {
	table := timeline.BuildRemapTable(segments)
	return &Composition{
		Asset:   asset,
		Table:   table,
		Regions: telemetry.RemapRegions(regions, table),
		Overlay: overlay,
	}
}

// Duration is the length of the edited output.
func (c *Composition) Duration() float64 {
	return c.Table.TotalOutputDuration()
}

type ExportOptions struct {
	Destination string
	Width       int
	Height      int
	FPS         int
	Encoder     string
	Quality     int
	Cursor      telemetry.Settings
}

// Progress receives the completed fraction of an export, in [0, 1].
type Progress func(fraction float64)

type Exporter interface {
	Export(ctx context.Context, comp *Composition, opts ExportOptions, progress Progress) error
}

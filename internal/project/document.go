// Package project reads and writes the persisted editing state of a project.
package project

import (
	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// CurrentVersion is the document version written by this build.
//
//	1: segments, split points, playhead
//	2: zoom regions, cursor settings
//	3: appearance.showThumbnails
const CurrentVersion = 3

// Appearance holds the frame styling around the recording.
type Appearance struct {
	Padding        float64 `json:"padding"`
	CornerRadius   float64 `json:"cornerRadius"`
	ShadowRadius   float64 `json:"shadowRadius"`
	ShadowOpacity  float64 `json:"shadowOpacity"`
	Background     string  `json:"background"`
	ShowThumbnails bool    `json:"showThumbnails"`
}

func DefaultAppearance() Appearance {
	return Appearance{
		Padding:        48,
		CornerRadius:   12,
		ShadowRadius:   24,
		ShadowOpacity:  0.35,
		Background:     "gradient:midnight",
		ShowThumbnails: true,
	}
}

// Document is everything about a project that survives save and load.
type Document struct {
	Version      int                `json:"version"`
	SplitPoints  []float64          `json:"splitPoints"`
	Segments     []timeline.Segment `json:"segments"`
	ZoomRegions  []zoom.Region      `json:"zoomRegions"`
	PlayheadTime float64            `json:"playheadTime"`
	Appearance   Appearance         `json:"appearance"`
	Cursor       telemetry.Settings `json:"cursor"`
}

// DefaultDocument is the state of a project nobody has edited yet.
func DefaultDocument() Document {
	return Document{
		Version:    CurrentVersion,
		Appearance: DefaultAppearance(),
		Cursor:     telemetry.DefaultSettings(),
	}
}

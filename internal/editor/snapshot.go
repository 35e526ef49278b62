package editor

import (
	"github.com/ivlev/screencut/internal/project"
	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// Snapshot is one undo step: the complete editable state. The slices are
// owned by the snapshot and never shared with the live state.
type Snapshot struct {
	SplitPoints []float64
	Segments    []timeline.Segment
	ZoomRegions []zoom.Region
	Appearance  project.Appearance
	Cursor      telemetry.Settings
	Playhead    float64
}

func (s *Session) capture() Snapshot {
	return Snapshot{
		SplitPoints: s.store.SplitPoints(),
		Segments:    s.store.Segments(),
		ZoomRegions: s.zoom.Regions(),
		Appearance:  s.appearance,
		Cursor:      s.cursor,
		Playhead:    s.playhead,
	}
}

// restore runs inside history.Undo/Redo. Downstream work happens as for any
// edit; the history engine ignores the commit this would otherwise cause.
func (s *Session) restore(snap Snapshot) {
	s.store.Restore(snap.SplitPoints, snap.Segments)
	s.zoom.Replace(snap.ZoomRegions)
	s.appearance = snap.Appearance
	s.cursor = snap.Cursor
	s.playhead = s.clampTime(snap.Playhead)
	s.driver.Seek(s.playhead)
	s.changed(ChangeEditable, true)
}

func (s *Session) document() project.Document {
	return project.Document{
		Version:      project.CurrentVersion,
		SplitPoints:  s.store.SplitPoints(),
		Segments:     s.store.Segments(),
		ZoomRegions:  s.zoom.Regions(),
		PlayheadTime: s.playhead,
		Appearance:   s.appearance,
		Cursor:       s.cursor,
	}
}

func (s *Session) applyDocument(doc project.Document) {
	s.store.Restore(doc.SplitPoints, doc.Segments)
	s.zoom.Replace(doc.ZoomRegions)
	s.appearance = doc.Appearance
	s.cursor = doc.Cursor.Normalize()
	s.playhead = s.clampTime(doc.PlayheadTime)
}

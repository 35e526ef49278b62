package editor

import (
	"github.com/ivlev/screencut/internal/media"
	"github.com/ivlev/screencut/internal/playback"
	"github.com/ivlev/screencut/internal/project"
	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// View is a copy of the session state at one instant.
type View struct {
	Asset          media.Asset
	OutputDuration float64
	SplitPoints    []float64
	Segments       []timeline.Segment
	ZoomRegions    []zoom.Region
	Appearance     project.Appearance
	Cursor         telemetry.Settings
	Playhead       float64
	Playback       playback.State
	CanUndo        bool
	CanRedo        bool
	Exporting      bool
	HasOverlay     bool
	Thumbnails     []string
}

func (s *Session) View() View {
	s.lock()
	defer s.unlock()
	return View{
		Asset:          s.asset,
		OutputDuration: s.mapper.TotalOutputDuration(),
		SplitPoints:    s.store.SplitPoints(),
		Segments:       s.store.Segments(),
		ZoomRegions:    s.zoom.Regions(),
		Appearance:     s.appearance,
		Cursor:         s.cursor,
		Playhead:       s.playhead,
		Playback:       s.driver.State(),
		CanUndo:        s.history.CanUndo(),
		CanRedo:        s.history.CanRedo(),
		Exporting:      s.exporting,
		HasOverlay:     s.overlay != nil,
		Thumbnails:     append([]string(nil), s.thumbnails...),
	}
}

// Mapper returns the time mapper for the current segments. Mappers are
// immutable; a new one replaces it after every segment edit.
func (s *Session) Mapper() *timeline.Mapper {
	s.lock()
	defer s.unlock()
	return s.mapper
}

// Overlay returns the prepared cursor overlay, or nil when there is none.
func (s *Session) Overlay() *telemetry.Overlay {
	s.lock()
	defer s.unlock()
	return s.overlay
}

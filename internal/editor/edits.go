package editor

import (
	"github.com/ivlev/screencut/internal/project"
	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/zoom"
)

// Segment edits. Invalid input is a no-op reported as false.

func (s *Session) AddSplit(t float64) bool {
	return s.edit(ChangeSegments, func() bool { return s.store.AddSplit(t) })
}

func (s *Session) RemoveSplit(index int) bool {
	return s.edit(ChangeSegments, func() bool { return s.store.RemoveSplit(index) })
}

func (s *Session) ToggleSegment(id string) bool {
	return s.edit(ChangeSegments, func() bool { return s.store.ToggleSegment(id) })
}

func (s *Session) SetSpeed(speed float64, id string) bool {
	return s.edit(ChangeSegments, func() bool { return s.store.SetSpeed(speed, id) })
}

// Zoom region edits. Every edit re-clamps the region it touches.

// AddZoom creates a region centred on the source.
func (s *Session) AddZoom(start, end, level float64) (zoom.Region, bool) {
	var added zoom.Region
	ok := s.edit(ChangeZoom, func() bool {
		added = s.zoom.Add(zoom.NewRegion(s.zoom.Bounds(), start, end, level))
		return true
	})
	return added, ok
}

func (s *Session) UpdateZoom(r zoom.Region) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.Update(r) })
}

func (s *Session) MoveZoom(id string, delta float64) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.Move(id, delta) })
}

func (s *Session) RetimeZoom(id string, start, end float64) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.Retime(id, start, end) })
}

func (s *Session) SetZoomLevel(id string, level float64) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.SetLevel(id, level) })
}

func (s *Session) SetZoomFocus(id string, x, y float64) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.SetFocus(id, x, y) })
}

func (s *Session) ToggleZoom(id string) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.Toggle(id) })
}

func (s *Session) DuplicateZoom(id string) (zoom.Region, bool) {
	var dup zoom.Region
	ok := s.edit(ChangeZoom, func() bool {
		var ok bool
		dup, ok = s.zoom.Duplicate(id)
		return ok
	})
	return dup, ok
}

func (s *Session) RemoveZoom(id string) bool {
	return s.edit(ChangeZoom, func() bool { return s.zoom.Remove(id) })
}

// GenerateAutoZoom adds regions synthesized from the cursor log using the
// current auto-zoom settings. It returns how many were added.
func (s *Session) GenerateAutoZoom() int {
	n := 0
	s.edit(ChangeZoom, func() bool {
		if s.meta == nil {
			return false
		}
		regions := telemetry.SynthesizeRegions(s.meta, s.asset.Duration, telemetry.AutoZoomOptions{
			Level:       s.cursor.AutoZoom.Level,
			Sensitivity: s.cursor.AutoZoom.Sensitivity,
		})
		sx, sy := s.meta.ScaleTo(float64(s.asset.Width), float64(s.asset.Height))
		for _, r := range regions {
			r.FocusX *= sx
			r.FocusY *= sy
			s.zoom.Add(r)
		}
		n = len(regions)
		return n > 0
	})
	return n
}

// Settings.

func (s *Session) SetAppearance(a project.Appearance) bool {
	return s.edit(ChangeAppearance, func() bool {
		if a == s.appearance {
			return false
		}
		thumbs := a.ShowThumbnails != s.appearance.ShowThumbnails
		s.appearance = a
		if thumbs {
			s.rebuildThumbnails()
		}
		return true
	})
}

// SetCursorSettings normalizes and applies cursor settings. Disabling the
// cursor clears the overlay.
func (s *Session) SetCursorSettings(c telemetry.Settings) bool {
	c = c.Normalize()
	return s.edit(ChangeCursor, func() bool {
		if c == s.cursor {
			return false
		}
		s.cursor = c
		return true
	})
}

// SetPlayhead moves the playhead, clamped to the clip. It is saved with the
// project but is not an undo step.
func (s *Session) SetPlayhead(t float64) {
	s.lock()
	defer s.unlock()
	s.setPlayhead(t)
}

func (s *Session) setPlayhead(t float64) {
	t = s.clampTime(t)
	s.driver.Seek(t)
	if t == s.playhead {
		return
	}
	s.playhead = t
	if s.persister != nil {
		s.persister.Schedule()
	}
	s.queue(Change{Kind: ChangePlayhead})
}

// Undo reverts the most recent batch of edits. Pending edits are committed
// first, so nothing is lost.
func (s *Session) Undo() bool {
	s.lock()
	defer s.unlock()
	return s.history.Undo()
}

func (s *Session) Redo() bool {
	s.lock()
	defer s.unlock()
	return s.history.Redo()
}

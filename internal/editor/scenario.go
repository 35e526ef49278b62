package editor

import (
	"fmt"

	"github.com/ivlev/screencut/internal/zoom"
)

// ExportScenario writes the zoom regions to a YAML scenario file.
func (s *Session) ExportScenario(path string) error {
	s.lock()
	defer s.unlock()
	if err := zoom.WriteScenario(s.zoom, path); err != nil {
		return fmt.Errorf("failed to write zoom scenario: %w", err)
	}
	return nil
}

// ImportScenario adds the regions of a scenario file, rescaled to this
// recording's size. It returns how many regions were added.
func (s *Session) ImportScenario(path string) (int, error) {
	sc, err := zoom.ReadScenario(path)
	if err != nil {
		return 0, err
	}

	n := 0
	s.edit(ChangeZoom, func() bool {
		b := s.zoom.Bounds()
		sx, sy := 1.0, 1.0
		if sc.Width > 0 && sc.Height > 0 {
			sx, sy = b.Width/sc.Width, b.Height/sc.Height
		}
		for _, r := range sc.Regions {
			r.ID = ""
			r.FocusX *= sx
			r.FocusY *= sy
			s.zoom.Add(r)
			n++
		}
		return n > 0
	})
	return n, nil
}

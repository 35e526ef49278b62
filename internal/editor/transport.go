package editor

// The host player reports through these; each call is serialized with edits
// so the driver always sees a consistent segment list.

// OnPosition forwards a periodic position report from the player.
func (s *Session) OnPosition(t float64) {
	s.lock()
	defer s.unlock()
	s.driver.OnPosition(t)
	s.syncPlayhead()
}

// OnBoundary forwards the player crossing one of BoundaryTimes.
func (s *Session) OnBoundary(t float64) {
	s.lock()
	defer s.unlock()
	s.driver.OnBoundary(t)
	s.syncPlayhead()
}

// BoundaryTimes lists the instants the host should watch for. They change
// whenever segments do.
func (s *Session) BoundaryTimes() []float64 {
	s.lock()
	defer s.unlock()
	return s.driver.BoundaryTimes()
}

// TogglePlayback pauses or resumes and reports whether playback now runs.
func (s *Session) TogglePlayback() bool {
	s.lock()
	defer s.unlock()
	playing := s.driver.TogglePlayback()
	s.syncPlayhead()
	s.queue(Change{Kind: ChangePlayback})
	if !playing && s.persister != nil {
		s.persister.Schedule()
	}
	return playing
}

// syncPlayhead follows the driver. Positions reported during playback are
// not saved; the playhead is persisted when playback pauses.
func (s *Session) syncPlayhead() {
	t := s.clampTime(s.driver.State().CurrentSourceTime)
	if t != s.playhead {
		s.playhead = t
		s.queue(Change{Kind: ChangePlayhead})
	}
}

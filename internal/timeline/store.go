package timeline

import (
	"math"
	"sort"
)

// Store holds the ordered segment list of one clip. Segments are always
// derived from the split point list: [0] ++ splits ++ [duration] turned into
// adjacent intervals, so they stay contiguous and cover the whole clip.
//
// Mutators never fail loudly. They return false and leave the store untouched
// when their input is invalid.
type Store struct {
	duration float64
	splits   []float64
	segments []Segment
}

// NewStore creates a store with a single enabled segment spanning the clip.
func NewStore(sourceDuration float64) *Store {
	s := &Store{duration: math.Max(0, sourceDuration)}
	s.rebuild(nil)
	return s
}

func (s *Store) SourceDuration() float64 {
	return s.duration
}

// SplitPoints returns a copy of the sorted split point list.
func (s *Store) SplitPoints() []float64 {
	return append([]float64(nil), s.splits...)
}

// Segments returns a copy of the segment list in timeline order.
func (s *Store) Segments() []Segment {
	return append([]Segment(nil), s.segments...)
}

func (s *Store) Len() int {
	return len(s.segments)
}

// Segment looks a segment up by id.
func (s *Store) Segment(id string) (Segment, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.segments[i], true
	}
	return Segment{}, false
}

// SegmentAt returns the segment whose half-open range contains t.
func (s *Store) SegmentAt(t float64) (int, Segment, bool) {
	for i, seg := range s.segments {
		if seg.Contains(t) {
			return i, seg, true
		}
	}
	return -1, Segment{}, false
}

// NextEnabled returns the first enabled segment starting at or after t.
func (s *Store) NextEnabled(t float64) (Segment, bool) {
	for _, seg := range s.segments {
		if seg.IsEnabled && seg.StartTime >= t-containSlack {
			return seg, true
		}
	}
	return Segment{}, false
}

// AddSplit inserts a split point at t, rounded to 0.01s.
func (s *Store) AddSplit(t float64) bool {
	if math.IsNaN(t) {
		return false
	}
	t = roundSplit(t)
	if t <= MinSplitGap || t >= s.duration-MinSplitGap {
		return false
	}
	for _, p := range s.splits {
		if math.Abs(t-p) < MinSplitGap-containSlack {
			return false
		}
	}

	old := s.segments
	s.splits = append(s.splits, t)
	sort.Float64s(s.splits)
	s.rebuild(old)
	return true
}

// RemoveSplit drops the split point at index. No old segment contains the
// merged range, so it comes back enabled at speed 1.0.
func (s *Store) RemoveSplit(index int) bool {
	if index < 0 || index >= len(s.splits) {
		return false
	}
	old := s.segments
	s.splits = append(s.splits[:index:index], s.splits[index+1:]...)
	s.rebuild(old)
	return true
}

func (s *Store) ToggleSegment(id string) bool {
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.segments[i].IsEnabled = !s.segments[i].IsEnabled
	return true
}

// SetEnabled sets the enabled flag of one segment.
func (s *Store) SetEnabled(id string, enabled bool) bool {
	i := s.indexOf(id)
	if i < 0 || s.segments[i].IsEnabled == enabled {
		return false
	}
	s.segments[i].IsEnabled = enabled
	return true
}

// SetSpeed changes the speed of one segment, clamped to [MinSpeed, MaxSpeed].
func (s *Store) SetSpeed(speed float64, id string) bool {
	if math.IsNaN(speed) {
		return false
	}
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	speed = ClampSpeed(speed)
	if s.segments[i].Speed == speed {
		return false
	}
	s.segments[i].Speed = speed
	return true
}

// Restore replaces the split list and segment attributes in one step, as used
// when loading a project or an undo snapshot. The split list is normalised
// (sorted, deduplicated, interior, minimum gap) and segments are rebuilt from
// it, inheriting speed, enabled flag, and id from the supplied segments.
func (s *Store) Restore(splits []float64, segments []Segment) {
	cleaned := make([]float64, 0, len(splits))
	sorted := append([]float64(nil), splits...)
	sort.Float64s(sorted)
	for _, p := range sorted {
		if math.IsNaN(p) || p <= MinSplitGap || p >= s.duration-MinSplitGap {
			continue
		}
		if n := len(cleaned); n > 0 && p-cleaned[n-1] < MinSplitGap-containSlack {
			continue
		}
		cleaned = append(cleaned, p)
	}
	s.splits = cleaned
	s.rebuild(segments)
}

// rebuild regenerates segments from the split list. Every new interval
// inherits speed and enabled flag from the old segment that fully contained
// it; an old segment matching the interval exactly also hands over its id.
func (s *Store) rebuild(old []Segment) {
	if s.duration <= 0 {
		s.segments = nil
		return
	}
	bounds := make([]float64, 0, len(s.splits)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, s.splits...)
	bounds = append(bounds, s.duration)

	segments := make([]Segment, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		start, end := bounds[i], bounds[i+1]
		seg := newSegment(start, end)
		for _, prev := range old {
			if prev.StartTime <= start+containSlack && prev.EndTime >= end-containSlack {
				seg.Speed = ClampSpeed(prev.Speed)
				seg.IsEnabled = prev.IsEnabled
				if prev.ID != "" && math.Abs(prev.StartTime-start) < containSlack && math.Abs(prev.EndTime-end) < containSlack {
					seg.ID = prev.ID
				}
				break
			}
		}
		segments = append(segments, seg)
	}
	s.segments = segments
}

func (s *Store) indexOf(id string) int {
	for i, seg := range s.segments {
		if seg.ID == id {
			return i
		}
	}
	return -1
}

// RemapTable builds the per-segment source→output transform over the
// enabled segments, in timeline order.
func (s *Store) RemapTable() RemapTable {
	return BuildRemapTable(s.segments)
}

// BuildRemapTable lays the enabled segments end to end on the output
// timeline.
func BuildRemapTable(segments []Segment) RemapTable {
	table := make(RemapTable, 0, len(segments))
	offset := 0.0
	for _, seg := range segments {
		if !seg.IsEnabled {
			continue
		}
		table = append(table, RemapEntry{
			SourceStart:  seg.StartTime,
			SourceEnd:    seg.EndTime,
			Speed:        seg.Speed,
			OutputOffset: offset,
		})
		offset += seg.OutputDuration()
	}
	return table
}

// Mapper returns a time mapper over the current segment state.
func (s *Store) Mapper() *Mapper {
	return NewMapper(s.RemapTable(), s.duration)
}

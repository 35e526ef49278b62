package timeline

import (
	"math"
	"testing"
)

func checkCoverage(t *testing.T, s *Store) {
	t.Helper()
	segs := s.Segments()
	if len(segs) == 0 {
		t.Fatal("Expected at least one segment")
	}
	if segs[0].StartTime != 0 {
		t.Errorf("First segment starts at %f, expected 0", segs[0].StartTime)
	}
	for i := 1; i < len(segs); i++ {
		if segs[i].StartTime != segs[i-1].EndTime {
			t.Errorf("Gap or overlap between segment %d and %d: %f vs %f", i-1, i, segs[i-1].EndTime, segs[i].StartTime)
		}
	}
	if last := segs[len(segs)-1]; last.EndTime != s.SourceDuration() {
		t.Errorf("Last segment ends at %f, expected %f", last.EndTime, s.SourceDuration())
	}
}

func TestNewStore(t *testing.T) {
	s := NewStore(10.0)
	if s.Len() != 1 {
		t.Fatalf("Expected 1 segment, got %d", s.Len())
	}
	seg := s.Segments()[0]
	if seg.Speed != 1.0 || !seg.IsEnabled {
		t.Errorf("Expected enabled segment at 1.0x, got %+v", seg)
	}
	checkCoverage(t, s)
}

func TestAddSplit(t *testing.T) {
	tests := []struct {
		name   string
		at     float64
		wantOK bool
	}{
		{"interior", 4.0, true},
		{"rounded", 4.004, true},
		{"near start", 0.05, false},
		{"at start", 0, false},
		{"near end", 9.95, false},
		{"past end", 12, false},
		{"nan", math.NaN(), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(10.0)
			ok := s.AddSplit(tt.at)
			if ok != tt.wantOK {
				t.Fatalf("AddSplit(%f) = %v, expected %v", tt.at, ok, tt.wantOK)
			}
			want := 1
			if tt.wantOK {
				want = 2
			}
			if s.Len() != want {
				t.Errorf("Expected %d segments, got %d", want, s.Len())
			}
			checkCoverage(t, s)
		})
	}
}

func TestAddSplitRejectsNearExisting(t *testing.T) {
	s := NewStore(10.0)
	s.AddSplit(4.0)
	if s.AddSplit(4.03) {
		t.Error("Split within 0.05s of an existing split should be rejected")
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 segments, got %d", s.Len())
	}
	if !s.AddSplit(4.05) {
		t.Error("Split exactly 0.05s away should be accepted")
	}
}

func TestAddSplitInheritsAttributes(t *testing.T) {
	s := NewStore(10.0)
	s.AddSplit(4.0)
	second := s.Segments()[1]
	s.SetSpeed(2.0, second.ID)
	s.ToggleSegment(second.ID)
	firstID := s.Segments()[0].ID

	if !s.AddSplit(7.0) {
		t.Fatal("AddSplit(7.0) rejected")
	}
	segs := s.Segments()
	if len(segs) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(segs))
	}
	for _, seg := range segs[1:] {
		if seg.Speed != 2.0 || seg.IsEnabled {
			t.Errorf("Expected inherited speed 2.0 and disabled, got %+v", seg)
		}
	}
	if segs[0].ID != firstID {
		t.Error("Untouched segment should keep its id")
	}
	checkCoverage(t, s)
}

func TestRemoveSplit(t *testing.T) {
	s := NewStore(10.0)
	s.AddSplit(3.0)
	s.AddSplit(6.0)

	if s.RemoveSplit(5) {
		t.Error("Out of range index should be rejected")
	}
	if s.RemoveSplit(-1) {
		t.Error("Negative index should be rejected")
	}
	if !s.RemoveSplit(0) {
		t.Fatal("RemoveSplit(0) rejected")
	}
	if got := s.SplitPoints(); len(got) != 1 || got[0] != 6.0 {
		t.Errorf("Expected split points [6], got %v", got)
	}
	checkCoverage(t, s)
}

func TestSetSpeedClamps(t *testing.T) {
	s := NewStore(10.0)
	id := s.Segments()[0].ID

	tests := []struct {
		in, want float64
	}{
		{2.0, 2.0},
		{100, MaxSpeed},
		{0.01, MinSpeed},
		{-3, MinSpeed},
	}
	for _, tt := range tests {
		s.SetSpeed(tt.in, id)
		if got := s.Segments()[0].Speed; got != tt.want {
			t.Errorf("SetSpeed(%f): expected %f, got %f", tt.in, tt.want, got)
		}
	}
	if s.SetSpeed(2.0, "missing") {
		t.Error("Unknown id should be rejected")
	}
}

func TestRestoreNormalisesSplits(t *testing.T) {
	s := NewStore(10.0)
	s.AddSplit(5.0)
	saved := s.Segments()
	saved[1].Speed = 4.0
	saved[1].IsEnabled = false

	other := NewStore(10.0)
	other.Restore([]float64{5.0, 5.01, -1, 9.99}, saved)

	if got := other.SplitPoints(); len(got) != 1 || got[0] != 5.0 {
		t.Fatalf("Expected split points [5], got %v", got)
	}
	seg := other.Segments()[1]
	if seg.ID != saved[1].ID || seg.Speed != 4.0 || seg.IsEnabled {
		t.Errorf("Restored segment mismatch: %+v", seg)
	}
	checkCoverage(t, other)
}

func TestSegmentAtAndNextEnabled(t *testing.T) {
	s := NewStore(10.0)
	s.AddSplit(4.0)
	s.AddSplit(6.0)
	s.ToggleSegment(s.Segments()[1].ID)

	i, seg, ok := s.SegmentAt(4.0)
	if !ok || i != 1 || seg.IsEnabled {
		t.Errorf("Expected disabled segment 1 at 4.0, got %d %+v", i, seg)
	}
	if _, _, ok := s.SegmentAt(10.0); ok {
		t.Error("Clip end is outside every half-open segment")
	}
	next, ok := s.NextEnabled(seg.EndTime)
	if !ok || next.StartTime != 6.0 {
		t.Errorf("Expected next enabled at 6.0, got %+v", next)
	}
}

package renderer

import (
	"math"
	"strings"
	"testing"

	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

func TestCameraKeyframes(t *testing.T) {
	regions := []zoom.Region{
		{ID: "a", StartTime: 2, EndTime: 4, ZoomLevel: 2, FocusX: 960, FocusY: 540, IsEnabled: true},
	}

	keyframes := CameraKeyframes(regions, 6, 1920, 1080)
	if len(keyframes) == 0 {
		t.Fatal("Expected keyframes")
	}
	if keyframes[0].Time != 0 || keyframes[len(keyframes)-1].Time != 6 {
		t.Errorf("Keyframes should span the output, got %v..%v", keyframes[0].Time, keyframes[len(keyframes)-1].Time)
	}

	tests := []struct {
		time      float64
		wantScale float64
	}{
		{0, 1.0},
		{2.25, 2.0},
		{3.0, 2.0},
		{6, 1.0},
	}
	for _, tt := range tests {
		found := false
		for _, kf := range keyframes {
			if math.Abs(kf.Time-tt.time) < 1e-9 {
				found = true
				if math.Abs(kf.Scale-tt.wantScale) > 1e-9 {
					t.Errorf("At %.2f: expected scale %.2f, got %.4f", tt.time, tt.wantScale, kf.Scale)
				}
			}
		}
		if tt.time != 3.0 && !found {
			t.Errorf("Expected a keyframe at %.2f", tt.time)
		}
	}

	for i := 1; i < len(keyframes); i++ {
		if keyframes[i].Time <= keyframes[i-1].Time {
			t.Fatalf("Keyframes not strictly ordered at %d", i)
		}
	}
}

func TestCameraKeyframesWithoutRegions(t *testing.T) {
	disabled := []zoom.Region{{StartTime: 1, EndTime: 2, ZoomLevel: 2, IsEnabled: false}}
	if kf := CameraKeyframes(disabled, 5, 100, 100); kf != nil {
		t.Errorf("Expected nil keyframes, got %d", len(kf))
	}
}

func TestGenerateZoomPanFilter(t *testing.T) {
	keyframes := []Keyframe{
		{Time: 0, Transform: zoom.Identity(1920, 1080)},
		{Time: 2, Transform: zoom.Transform{Scale: 2, FocusX: 480, FocusY: 270}},
	}

	filter := GenerateZoomPanFilter(keyframes, 30, 1920, 1080, 1280, 720)

	for _, want := range []string{"zoompan", "z='", "x='", "y='", "s=1280x720", "fps=30"} {
		if !strings.Contains(filter, want) {
			t.Errorf("Filter should contain %q: %s", want, filter)
		}
	}
	if strings.Count(filter, "(") != strings.Count(filter, ")") {
		t.Errorf("Unbalanced parentheses: %s", filter)
	}

	t.Logf("Generated filter: %s", filter)
}

func TestBuildExpressionSingleKeyframe(t *testing.T) {
	expr := buildExpression([]Keyframe{{Transform: zoom.Transform{Scale: 1.5}}}, 30, func(kf Keyframe) float64 { return kf.Scale })
	if expr != "1.500000" {
		t.Errorf("Expected constant expression, got %s", expr)
	}
}

func TestBuildExportGraph(t *testing.T) {
	store := timeline.NewStore(10)
	store.AddSplit(4)
	store.AddSplit(6)
	segs := store.Segments()
	store.ToggleSegment(segs[1].ID)
	store.SetSpeed(2, segs[2].ID)

	g := BuildExportGraph(GraphParams{
		Table:        store.RemapTable(),
		SourceWidth:  1920,
		SourceHeight: 1080,
		Width:        1280,
		Height:       720,
		FPS:          30,
		HasAudio:     true,
	})

	if g.Video != "[vout]" || g.Audio != "[acat]" {
		t.Errorf("Unexpected outputs %q %q", g.Video, g.Audio)
	}
	for _, want := range []string{
		"trim=start=0.000000:end=4.000000",
		"trim=start=6.000000:end=10.000000,setpts=(PTS-STARTPTS)/2.000000",
		"atempo=2.000000",
		"concat=n=2:v=1:a=1",
		"scale=1280:720",
	} {
		if !strings.Contains(g.Filter, want) {
			t.Errorf("Graph should contain %q:\n%s", want, g.Filter)
		}
	}
	if strings.Contains(g.Filter, "end=6.000000") {
		t.Errorf("Disabled segment leaked into the graph:\n%s", g.Filter)
	}
}

func TestBuildExportGraphSingleSegmentWithZoom(t *testing.T) {
	store := timeline.NewStore(5)
	g := BuildExportGraph(GraphParams{
		Table:        store.RemapTable(),
		Regions:      []zoom.Region{{StartTime: 1, EndTime: 3, ZoomLevel: 2, FocusX: 500, FocusY: 500, IsEnabled: true}},
		SourceWidth:  1000,
		SourceHeight: 1000,
		Width:        1000,
		Height:       1000,
		FPS:          25,
	})

	if strings.Contains(g.Filter, "concat") {
		t.Errorf("A single segment needs no concat:\n%s", g.Filter)
	}
	if !strings.Contains(g.Filter, "[v0]zoompan=") {
		t.Errorf("Expected zoompan on the only segment:\n%s", g.Filter)
	}
	if g.Audio != "" {
		t.Errorf("Expected no audio output, got %q", g.Audio)
	}
}

func TestAtempoChain(t *testing.T) {
	tests := []struct {
		speed float64
		want  string
	}{
		{1, "atempo=1.000000"},
		{1.5, "atempo=1.500000"},
		{4, "atempo=2.0,atempo=2.000000"},
		{0.25, "atempo=0.5,atempo=0.500000"},
		{32, "atempo=2.0,atempo=2.0,atempo=2.0,atempo=2.0,atempo=2.000000"},
	}
	for _, tt := range tests {
		if got := atempoChain(tt.speed); got != tt.want {
			t.Errorf("atempoChain(%v) = %s, want %s", tt.speed, got, tt.want)
		}
	}
}

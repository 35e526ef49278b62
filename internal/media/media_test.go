package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

func TestParseProbe(t *testing.T) {
	data := []byte(`{
		"streams": [
			{"codec_type": "video", "width": 2880, "height": 1800},
			{"codec_type": "audio"}
		],
		"format": {"duration": "12.480000"}
	}`)

	asset, err := parseProbe(data)
	if err != nil {
		t.Fatalf("parseProbe failed: %v", err)
	}
	if asset.Width != 2880 || asset.Height != 1800 || asset.Duration != 12.48 || !asset.HasAudio {
		t.Errorf("Unexpected asset %+v", asset)
	}
}

func TestParseProbeFailures(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `{`},
		{"no video", `{"streams": [{"codec_type": "audio"}], "format": {"duration": "3"}}`},
		{"no duration", `{"streams": [{"codec_type": "video", "width": 10, "height": 10}], "format": {"duration": "N/A"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseProbe([]byte(tt.data)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestFFprobeMissingFile(t *testing.T) {
	_, err := FFprobe{}.Load(context.Background(), filepath.Join(t.TempDir(), "gone.mov"))
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("Expected ErrAssetUnavailable, got %v", err)
	}
}

func cutComposition() *Composition {
	store := timeline.NewStore(10)
	store.AddSplit(4)
	store.AddSplit(6)
	store.ToggleSegment(store.Segments()[1].ID)

	regions := []zoom.Region{
		{ID: "z", StartTime: 3, EndTime: 7, ZoomLevel: 2, FocusX: 960, FocusY: 540, IsEnabled: true},
	}
	asset := Asset{Path: "/tmp/in.mov", Width: 1920, Height: 1080, Duration: 10}
	return Compose(asset, store.Segments(), regions, nil)
}

func TestCompose(t *testing.T) {
	comp := cutComposition()

	if comp.Duration() != 8 {
		t.Errorf("Expected output duration 8, got %v", comp.Duration())
	}
	if len(comp.Regions) != 1 {
		t.Fatalf("Expected the region to survive as one piece, got %+v", comp.Regions)
	}
	if r := comp.Regions[0]; r.StartTime != 3 || r.EndTime != 5 {
		t.Errorf("Expected region remapped to [3, 5], got [%v, %v]", r.StartTime, r.EndTime)
	}
}

func TestExporterArgs(t *testing.T) {
	comp := cutComposition()
	args, err := FFmpegExporter{}.Args(comp, ExportOptions{
		Destination: "/tmp/out.mp4",
		Width:       1280,
		Height:      720,
		FPS:         30,
		Encoder:     "libx264",
	})
	if err != nil {
		t.Fatalf("Args failed: %v", err)
	}

	joined := strings.Join(args, " ")
	for _, want := range []string{"-progress pipe:1", "-i /tmp/in.mov", "-map [vout]", "-c:v libx264", "-crf 23"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Args should contain %q: %s", want, joined)
		}
	}
	if strings.Contains(joined, "-c:a") {
		t.Error("An asset without audio should not map audio")
	}
	if args[len(args)-1] != "/tmp/out.mp4" {
		t.Errorf("Destination should be last, got %s", args[len(args)-1])
	}
}

func TestExporterArgsAllDisabled(t *testing.T) {
	store := timeline.NewStore(5)
	store.ToggleSegment(store.Segments()[0].ID)
	comp := Compose(Asset{Path: "x", Width: 10, Height: 10, Duration: 5}, store.Segments(), nil, nil)

	if _, err := (FFmpegExporter{}).Args(comp, ExportOptions{}); err == nil {
		t.Error("Expected an error when nothing is enabled")
	}
}

func TestQualityArgs(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    []string
	}{
		{"h264_videotoolbox", 75, []string{"-b:v", "7500k"}},
		{"h264_nvenc", 0, []string{"-cq", "28"}},
		{"libx264", 18, []string{"-crf", "18", "-preset", "medium"}},
	}
	for _, tt := range tests {
		if got := qualityArgs(tt.encoder, tt.quality); !slices.Equal(got, tt.want) {
			t.Errorf("qualityArgs(%s, %d) = %v, want %v", tt.encoder, tt.quality, got, tt.want)
		}
	}
}

func TestExportMissingSource(t *testing.T) {
	comp := cutComposition()
	comp.Asset.Path = filepath.Join(t.TempDir(), "missing.mov")

	err := FFmpegExporter{}.Export(context.Background(), comp, ExportOptions{Destination: filepath.Join(t.TempDir(), "out.mp4")}, nil)
	if !errors.Is(err, ErrAssetUnavailable) {
		t.Errorf("Expected ErrAssetUnavailable, got %v", err)
	}
}

func TestReadProgress(t *testing.T) {
	stream := strings.Join([]string{
		"frame=10",
		"out_time_us=2000000",
		"progress=continue",
		"out_time_us=garbage",
		"out_time_ms=6000000",
		"out_time_us=9000000",
		"progress=end",
	}, "\n")

	var got []float64
	readProgress(strings.NewReader(stream), 8, func(f float64) { got = append(got, f) })

	want := []float64{0.25, 0.75, 1, 1}
	if !slices.Equal(got, want) {
		t.Errorf("Expected progress %v, got %v", want, got)
	}
}

func TestWriteOverlayTrack(t *testing.T) {
	meta := &telemetry.Metadata{
		Version:       1,
		CaptureWidth:  1920,
		CaptureHeight: 1080,
		Events: []telemetry.CursorEvent{
			{Timestamp: 0, X: 100, Y: 100, Type: telemetry.EventMove},
			{Timestamp: 9, X: 200, Y: 200, Type: telemetry.EventMove},
		},
	}
	comp := cutComposition()
	comp.Overlay = telemetry.PrepareOverlay(meta, telemetry.DefaultSettings(), nil, telemetry.OverlayOptions{Duration: 10, FPS: 10})

	path := OverlayPath(filepath.Join(t.TempDir(), "out.mp4"))
	if !strings.HasSuffix(path, "out.overlay.json") {
		t.Errorf("Unexpected overlay path %s", path)
	}
	if err := WriteOverlayTrack(path, comp, telemetry.DefaultSettings()); err != nil {
		t.Fatalf("WriteOverlayTrack failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var track overlayTrack
	if err := json.Unmarshal(data, &track); err != nil {
		t.Fatalf("Track is not valid JSON: %v", err)
	}
	// 8s of output at 10 fps
	if len(track.Keyframes) != 80 {
		t.Fatalf("Expected 80 keyframes, got %d", len(track.Keyframes))
	}
	if k := track.Keyframes[40]; k.Frame != 40 || k.Time != 4 || k.SourceTime != 6 {
		t.Errorf("Expected frame 40 at 4s showing 6s, got %+v", k)
	}
	if track.Width != 1920 || track.Height != 1080 {
		t.Errorf("Unexpected track size %dx%d", track.Width, track.Height)
	}
}

func TestThumbnailTimes(t *testing.T) {
	store := timeline.NewStore(10)
	store.AddSplit(5)
	store.ToggleSegment(store.Segments()[0].ID)

	times := ThumbnailTimes(store.Mapper(), 10, 5)
	if len(times) != 5 {
		t.Fatalf("Expected 5 times, got %d", len(times))
	}
	for i, tm := range times {
		if tm < 5 || tm > 10 {
			t.Errorf("Thumbnail %d at %.3f falls in the removed range", i, tm)
		}
	}
	if math.Abs(times[0]-5.5) > 1e-6 {
		t.Errorf("Expected first thumbnail at 5.5, got %v", times[0])
	}

	store.ToggleSegment(store.Segments()[1].ID)
	if got := ThumbnailTimes(store.Mapper(), 10, 5); got != nil {
		t.Errorf("Expected no thumbnails for an empty output, got %v", got)
	}
}

type fakeFrames struct {
	calls atomic.Int32
	fail  float64
}

func (f *fakeFrames) Frame(ctx context.Context, t float64) (image.Image, error) {
	f.calls.Add(1)
	if t == f.fail {
		return nil, fmt.Errorf("decode failed at %v", t)
	}
	img := image.NewRGBA(image.Rect(0, 0, 400, 200))
	img.Set(0, 0, color.RGBA{R: uint8(t), A: 255})
	return img, nil
}

func TestThumbnailGenerator(t *testing.T) {
	src := &fakeFrames{fail: -1}
	g := ThumbnailGenerator{Source: src, Width: 100, Workers: 2}

	thumbs, err := g.Generate(context.Background(), []float64{1, 2, 3})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(thumbs) != 3 {
		t.Fatalf("Expected 3 thumbnails, got %d", len(thumbs))
	}
	for i, th := range thumbs {
		if th.Index != i || th.SourceTime != float64(i+1) {
			t.Errorf("Thumbnail %d out of order: %+v", i, th)
		}
		if b := th.Image.Bounds(); b.Dx() != 100 || b.Dy() != 50 {
			t.Errorf("Expected 100x50, got %dx%d", b.Dx(), b.Dy())
		}
	}

	paths, err := SaveThumbnails(t.TempDir(), thumbs)
	if err != nil {
		t.Fatalf("SaveThumbnails failed: %v", err)
	}
	if filepath.Base(paths[2]) != "thumb_002.png" {
		t.Errorf("Unexpected thumbnail name %s", paths[2])
	}
}

func TestThumbnailGeneratorFailure(t *testing.T) {
	g := ThumbnailGenerator{Source: &fakeFrames{fail: 2}, Width: 100, Workers: 1}
	if _, err := g.Generate(context.Background(), []float64{1, 2, 3}); err == nil {
		t.Error("Expected the frame error to abort generation")
	}
}

func TestScaleKeepsSmallImages(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	if Scale(img, 100) != image.Image(img) {
		t.Error("Images narrower than the target should be returned as is")
	}
}

package media

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ivlev/screencut/internal/renderer"
	"github.com/ivlev/screencut/internal/system"
	"github.com/ivlev/screencut/internal/telemetry"
)

// FFmpegExporter renders a composition with a single ffmpeg invocation.
// The cursor overlay is written next to the video as a keyframe track on the
// output timeline.
type FFmpegExporter struct {
	Binary string
}

func (e FFmpegExporter) Export(ctx context.Context, comp *Composition, opts ExportOptions, progress Progress) error {
	if _, err := os.Stat(comp.Asset.Path); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	if err := os.MkdirAll(filepath.Dir(opts.Destination), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}

	args, err := e.Args(comp, opts)
	if err != nil {
		return err
	}

	if comp.Overlay != nil && opts.Cursor.Enabled {
		if err := WriteOverlayTrack(OverlayPath(opts.Destination), comp, opts.Cursor); err != nil {
			return err
		}
	}

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	readProgress(stdout, comp.Duration(), progress)

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg export error: %v, output: %s", err, tail(stderr.String(), 2000))
	}
	if progress != nil {
		progress(1)
	}
	return nil
}

// Args builds the ffmpeg command line for an export.
func (e FFmpegExporter) Args(comp *Composition, opts ExportOptions) ([]string, error) {
	if len(comp.Table) == 0 {
		return nil, fmt.Errorf("nothing to export: every segment is disabled")
	}

	graph := renderer.BuildExportGraph(renderer.GraphParams{
		Table:        comp.Table,
		Regions:      comp.Regions,
		SourceWidth:  comp.Asset.Width,
		SourceHeight: comp.Asset.Height,
		Width:        opts.Width,
		Height:       opts.Height,
		FPS:          opts.FPS,
		HasAudio:     comp.Asset.HasAudio,
	})

	args := []string{
		"-y",
		"-hide_banner",
		"-nostats",
		"-progress", "pipe:1",
		"-i", comp.Asset.Path,
		"-filter_complex", graph.Filter,
		"-map", graph.Video,
	}
	if graph.Audio != "" {
		args = append(args, "-map", graph.Audio, "-c:a", "aac", "-b:a", "192k")
	}
	args = append(args, "-c:v", opts.Encoder, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(opts.Encoder, opts.Quality)...)
	args = append(args, opts.Destination)
	return args, nil
}

func qualityArgs(encoder string, quality int) []string {
	if quality <= 0 {
		quality = system.DefaultQuality(encoder)
	}
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox ignores -q:v on some versions, bitrate it is.
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", strconv.Itoa(quality)}
	default:
		return []string{"-crf", strconv.Itoa(quality), "-preset", "medium"}
	}
}

// readProgress consumes ffmpeg's -progress key=value stream.
func readProgress(r io.Reader, total float64, progress Progress) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), "=")
		if !ok || progress == nil {
			continue
		}
		switch key {
		case "out_time_us", "out_time_ms":
			// both are microseconds
			us, err := strconv.ParseInt(value, 10, 64)
			if err != nil || total <= 0 {
				continue
			}
			f := float64(us) / 1e6 / total
			progress(max(0, min(1, f)))
		case "progress":
			if value == "end" {
				progress(1)
			}
		}
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// OverlayPath is where the cursor track of an export is written.
func OverlayPath(destination string) string {
	return strings.TrimSuffix(destination, filepath.Ext(destination)) + ".overlay.json"
}

type overlayTrack struct {
	FPS       float64              `json:"fps"`
	Width     int                  `json:"width"`
	Height    int                  `json:"height"`
	Settings  telemetry.Settings   `json:"settings"`
	Keyframes []telemetry.Keyframe `json:"keyframes"`
}

// WriteOverlayTrack samples the composition's overlay on the output frame
// grid and saves it.
func WriteOverlayTrack(path string, comp *Composition, settings telemetry.Settings) error {
	track := overlayTrack{
		FPS:      comp.Overlay.FPS(),
		Width:    comp.Asset.Width,
		Height:   comp.Asset.Height,
		Settings: settings,
	}
	for kf := range telemetry.RemapKeyframes(comp.Overlay, comp.Table) {
		track.Keyframes = append(track.Keyframes, kf)
	}

	data, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("failed to encode overlay track: %w", err)
	}
	if err := system.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrAssetUnavailable, err)
	}
	return nil
}

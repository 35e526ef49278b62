package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os/exec"
	"path/filepath"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/screencut/internal/system"
	"github.com/ivlev/screencut/internal/timeline"
)

// FrameSource decodes single frames of a recording.
type FrameSource interface {
	Frame(ctx context.Context, sourceTime float64) (image.Image, error)
}

// FFmpegFrames grabs one PNG frame per call through an image2pipe.
type FFmpegFrames struct {
	Binary string
	Path   string
}

func (f FFmpegFrames) Frame(ctx context.Context, sourceTime float64) (image.Image, error) {
	bin := f.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin,
		"-v", "error",
		"-ss", fmt.Sprintf("%f", sourceTime),
		"-i", f.Path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame error at %.3fs: %v, output: %s", sourceTime, err, stderr.String())
	}
	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("failed to decode frame at %.3fs: %w", sourceTime, err)
	}
	return img, nil
}

type Thumbnail struct {
	Index      int
	SourceTime float64
	Image      image.Image
}

// ThumbnailTimes spreads n samples evenly over the edited output and maps
// each back to the source frame that plays there. Sample i sits at the
// middle of its slot.
func ThumbnailTimes(m *timeline.Mapper, sourceDuration float64, n int) []float64 {
	if n <= 0 || m.TotalOutputDuration() <= 0 {
		return nil
	}
	times := make([]float64, n)
	for i := range times {
		f := (float64(i) + 0.5) / float64(n)
		times[i] = m.OutputFractionToSource(f) * sourceDuration
	}
	return times
}

// ThumbnailGenerator extracts and downscales frames in parallel.
type ThumbnailGenerator struct {
	Source  FrameSource
	Width   int
	Workers int
}

// Generate returns one thumbnail per time, in order. The first failure or a
// cancelled ctx aborts the whole batch.
func (g ThumbnailGenerator) Generate(ctx context.Context, times []float64) ([]Thumbnail, error) {
	workers := g.Workers
	if workers <= 0 {
		workers = system.WorkerBudget(len(times))
	}

	thumbs := make([]Thumbnail, len(times))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, t := range times {
		eg.Go(func() error {
			img, err := g.Source.Frame(ctx, t)
			if err != nil {
				return err
			}
			thumbs[i] = Thumbnail{Index: i, SourceTime: t, Image: Scale(img, g.Width)}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return thumbs, nil
}

// Scale resizes img to width, keeping its aspect ratio. Images already
// narrower than width are returned unchanged.
func Scale(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || b.Dx() <= width {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// SaveThumbnails writes thumbnails as numbered PNGs into dir.
func SaveThumbnails(dir string, thumbs []Thumbnail) ([]string, error) {
	paths := make([]string, len(thumbs))
	for i, th := range thumbs {
		var buf bytes.Buffer
		if err := png.Encode(&buf, th.Image); err != nil {
			return nil, fmt.Errorf("failed to encode thumbnail %d: %w", i, err)
		}
		path := filepath.Join(dir, fmt.Sprintf("thumb_%03d.png", th.Index))
		if err := system.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
			return nil, err
		}
		paths[i] = path
	}
	return paths, nil
}

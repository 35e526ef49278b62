package editor

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ivlev/screencut/internal/media"
	"github.com/ivlev/screencut/internal/telemetry"
)

// Overlay and thumbnail rebuilds run off the lock. Each request takes a
// generation number; a result is applied only if no newer request was made
// in the meantime.

func (s *Session) rebuildOverlay() {
	s.overlayGen++
	gen := s.overlayGen
	if s.meta == nil || !s.cursor.Enabled {
		if s.overlay != nil {
			s.overlay = nil
			s.queue(Change{Kind: ChangeOverlay})
		}
		return
	}

	meta, settings, regions := s.meta, s.cursor, s.zoom.Regions()
	opts := telemetry.OverlayOptions{
		Duration: s.asset.Duration,
		FPS:      s.opts.OverlayFPS,
		Width:    float64(s.asset.Width),
		Height:   float64(s.asset.Height),
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		ov := telemetry.PrepareOverlay(meta, settings, regions, opts)

		s.lock()
		defer s.unlock()
		if gen != s.overlayGen {
			return
		}
		s.overlay = ov
		s.queue(Change{Kind: ChangeOverlay})
	}()
}

func (s *Session) rebuildThumbnails() {
	s.thumbGen++
	gen := s.thumbGen
	if s.thumbCancel != nil {
		s.thumbCancel()
		s.thumbCancel = nil
	}
	if !s.appearance.ShowThumbnails || s.opts.Frames == nil || s.opts.ThumbnailDir == "" {
		if s.thumbnails != nil {
			s.thumbnails = nil
			s.queue(Change{Kind: ChangeThumbnails})
		}
		return
	}

	times := media.ThumbnailTimes(s.mapper, s.asset.Duration, s.opts.ThumbnailCount)
	if len(times) == 0 {
		if s.thumbnails != nil {
			s.thumbnails = nil
			s.queue(Change{Kind: ChangeThumbnails})
		}
		return
	}
	generator := media.ThumbnailGenerator{
		Source: s.opts.Frames(s.asset),
		Width:  s.opts.ThumbnailWidth,
	}
	// each generation writes its own directory so a stale run never
	// overwrites files of a newer one
	dir := filepath.Join(s.opts.ThumbnailDir, uuid.NewString())

	ctx, cancel := context.WithCancel(context.Background())
	s.thumbCancel = cancel
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		defer cancel()
		thumbs, err := generator.Generate(ctx, times)
		var paths []string
		if err == nil {
			paths, err = media.SaveThumbnails(dir, thumbs)
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Printf("[!] Thumbnail generation failed: %v", err)
			}
			os.RemoveAll(dir)
			return
		}

		s.lock()
		if gen != s.thumbGen {
			s.unlock()
			os.RemoveAll(dir)
			return
		}
		old := s.thumbnailDir
		s.thumbnails, s.thumbnailDir = paths, dir
		s.queue(Change{Kind: ChangeThumbnails})
		s.unlock()

		if old != "" {
			os.RemoveAll(old)
		}
	}()
}

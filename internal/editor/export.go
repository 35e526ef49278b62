package editor

import (
	"context"
	"fmt"
	"log"

	"github.com/ivlev/screencut/internal/media"
)

// Export renders the current edit. Only one export runs at a time; the busy
// flag is cleared however the export ends.
func (s *Session) Export(ctx context.Context, opts media.ExportOptions, progress media.Progress) error {
	s.lock()
	if s.opts.Exporter == nil {
		s.unlock()
		return fmt.Errorf("no exporter configured")
	}
	if s.exporting {
		s.unlock()
		return ErrExportInProgress
	}
	s.exporting = true
	comp := media.Compose(s.asset, s.store.Segments(), s.zoom.Regions(), s.overlay)
	opts.Cursor = s.cursor
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = s.asset.Width, s.asset.Height
	}
	s.queue(Change{Kind: ChangeExport})
	s.unlock()

	defer func() {
		s.lock()
		s.exporting = false
		s.queue(Change{Kind: ChangeExport})
		s.unlock()
	}()

	log.Printf("[*] Exporting %.2fs to %s", comp.Duration(), opts.Destination)
	if err := s.opts.Exporter.Export(ctx, comp, opts, progress); err != nil {
		log.Printf("[!] Export failed: %v", err)
		return fmt.Errorf("export failed: %w", err)
	}
	log.Printf("[+++] Exported %s", opts.Destination)
	return nil
}

// Exporting reports whether an export is running.
func (s *Session) Exporting() bool {
	s.lock()
	defer s.unlock()
	return s.exporting
}

// Package editor owns the state of the project being edited and is the only
// place it is mutated. Every mutation is serialized by one lock, records
// undo history, schedules a save, and notifies listeners of what changed.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"sync"
	"time"

	"github.com/ivlev/screencut/internal/history"
	"github.com/ivlev/screencut/internal/media"
	"github.com/ivlev/screencut/internal/playback"
	"github.com/ivlev/screencut/internal/project"
	"github.com/ivlev/screencut/internal/schedule"
	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

var ErrExportInProgress = errors.New("export already in progress")

// Options wire a session to its files and collaborators. Zero values pick
// sensible defaults except for MediaPath and Loader.
type Options struct {
	MediaPath    string
	MetadataPath string
	StatePath    string
	ThumbnailDir string

	Loader   media.AssetLoader
	Exporter media.Exporter
	// Frames opens a frame source for thumbnails. Nil disables thumbnails.
	Frames func(asset media.Asset) media.FrameSource
	Player playback.Player

	Scheduler      schedule.Scheduler
	CursorDefaults telemetry.Settings
	SaveDelay      time.Duration
	BatchWindow    time.Duration
	OverlayFPS     float64
	ThumbnailCount int
	ThumbnailWidth int
}

func (o *Options) setDefaults() {
	if o.Scheduler == nil {
		o.Scheduler = schedule.Real()
	}
	if o.CursorDefaults == (telemetry.Settings{}) {
		o.CursorDefaults = telemetry.DefaultSettings()
	}
	if o.SaveDelay <= 0 {
		o.SaveDelay = project.SaveDelay
	}
	if o.BatchWindow <= 0 {
		o.BatchWindow = history.DefaultBatchWindow
	}
	if o.OverlayFPS <= 0 {
		o.OverlayFPS = 60
	}
	if o.ThumbnailCount <= 0 {
		o.ThumbnailCount = 12
	}
	if o.ThumbnailWidth <= 0 {
		o.ThumbnailWidth = 160
	}
	if o.Player == nil {
		o.Player = nopPlayer{}
	}
}

type Session struct {
	mu   sync.Mutex
	opts Options

	asset      media.Asset
	store      *timeline.Store
	mapper     *timeline.Mapper
	zoom       *zoom.List
	appearance project.Appearance
	cursor     telemetry.Settings
	playhead   float64
	meta       *telemetry.Metadata

	overlay    *telemetry.Overlay
	overlayGen uint64

	thumbnails   []string
	thumbnailDir string
	thumbGen     uint64
	thumbCancel  context.CancelFunc

	history   *history.Engine[Snapshot]
	persister *project.Persister
	driver    *playback.Driver

	exporting bool

	listeners []Listener
	queued    []Change
	bg        sync.WaitGroup
}

// Open loads the recording and its saved state. A recording that cannot be
// loaded is an error; a damaged or missing state file or cursor log is
// logged and replaced by defaults.
func Open(ctx context.Context, opts Options) (*Session, error) {
	opts.setDefaults()

	asset, err := opts.Loader.Load(ctx, opts.MediaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load recording: %w", err)
	}

	s := &Session{opts: opts, asset: asset}
	sched := schedule.Locked(opts.Scheduler, sessionLocker{s})

	s.store = timeline.NewStore(asset.Duration)
	s.zoom = zoom.NewList(zoom.Bounds{
		Duration: asset.Duration,
		Width:    float64(asset.Width),
		Height:   float64(asset.Height),
	})
	s.history = history.New(sched, opts.BatchWindow, s.capture, s.restore)
	s.driver = playback.NewDriver(s.store, opts.Player, sched)

	base := project.DefaultDocument()
	base.Cursor = opts.CursorDefaults
	doc := base
	if opts.StatePath != "" {
		loaded, err := project.Load(opts.StatePath, base)
		switch {
		case err == nil:
			doc = loaded
		case errors.Is(err, os.ErrNotExist):
		default:
			log.Printf("[!] Ignoring saved state of %s: %v", opts.MediaPath, err)
		}
		s.persister = project.NewPersister(sched, opts.StatePath, opts.SaveDelay, s.document)
	}

	if opts.MetadataPath != "" {
		meta, err := telemetry.LoadMetadata(opts.MetadataPath)
		switch {
		case err == nil:
			s.meta = meta
		case errors.Is(err, os.ErrNotExist):
		default:
			log.Printf("[!] Ignoring cursor log %s: %v", opts.MetadataPath, err)
		}
	}

	s.mu.Lock()
	s.applyDocument(doc)
	s.mapper = s.store.Mapper()
	s.history.Reset()
	s.rebuildOverlay()
	s.rebuildThumbnails()
	s.driver.Seek(s.playhead)
	s.queued = nil
	s.mu.Unlock()

	log.Printf("[*] Opened %s: %.2fs, %dx%d, %d segments", opts.MediaPath, asset.Duration, asset.Width, asset.Height, s.store.Len())
	return s, nil
}

// OnChange registers a listener. Listeners run on the goroutine that made the
// change, after the session lock is released.
func (s *Session) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// lock and unlock bracket every access to session state. unlock delivers the
// changes queued while the lock was held.
func (s *Session) lock() {
	s.mu.Lock()
}

func (s *Session) unlock() {
	changes := s.queued
	s.queued = nil
	listeners := s.listeners
	s.mu.Unlock()

	for _, c := range changes {
		for _, l := range listeners {
			l(c)
		}
	}
}

type sessionLocker struct{ s *Session }

func (l sessionLocker) Lock()   { l.s.lock() }
func (l sessionLocker) Unlock() { l.s.unlock() }

func (s *Session) queue(c Change) {
	if n := len(s.queued); n > 0 && s.queued[n-1].Restored == c.Restored {
		s.queued[n-1].Kind |= c.Kind
		return
	}
	s.queued = append(s.queued, c)
}

// changed runs the downstream work of a state change: remapping, overlay and
// thumbnail rebuilds, persistence, notification.
func (s *Session) changed(kind ChangeKind, restored bool) {
	if kind&ChangeSegments != 0 {
		s.mapper = s.store.Mapper()
		s.rebuildThumbnails()
	}
	if kind&(ChangeSegments|ChangeZoom|ChangeCursor) != 0 {
		s.rebuildOverlay()
	}
	if kind&ChangeEditable != 0 && s.persister != nil {
		s.persister.Schedule()
	}
	s.queue(Change{Kind: kind, Restored: restored})
}

// edit applies an undoable mutation. fn reports whether it changed anything;
// rejected edits leave history and listeners untouched.
func (s *Session) edit(kind ChangeKind, fn func() bool) bool {
	s.lock()
	defer s.unlock()
	if !fn() {
		return false
	}
	s.history.Commit()
	s.changed(kind, false)
	return true
}

func (s *Session) clampTime(t float64) float64 {
	if math.IsNaN(t) {
		return 0
	}
	return math.Max(0, math.Min(s.asset.Duration, t))
}

// Close writes pending state and stops background work.
func (s *Session) Close() error {
	s.lock()
	s.history.Flush()
	s.overlayGen++
	s.thumbGen++
	if s.thumbCancel != nil {
		s.thumbCancel()
	}
	var err error
	if s.persister != nil {
		err = s.persister.Flush()
	}
	s.unlock()

	s.bg.Wait()
	return err
}

// Wait blocks until background overlay, thumbnail and save work has settled.
func (s *Session) Wait() {
	s.bg.Wait()
	if s.persister != nil {
		s.persister.Wait()
	}
}

// Save writes the state now instead of waiting for the save delay.
func (s *Session) Save() error {
	s.lock()
	defer s.unlock()
	if s.persister == nil {
		return nil
	}
	s.persister.Schedule()
	return s.persister.Flush()
}

type nopPlayer struct{}

func (nopPlayer) Seek(float64)    {}
func (nopPlayer) Play(float64)    {}
func (nopPlayer) SetRate(float64) {}
func (nopPlayer) Pause()          {}

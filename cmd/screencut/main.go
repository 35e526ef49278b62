package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/screencut/internal/config"
	"github.com/ivlev/screencut/internal/editor"
	"github.com/ivlev/screencut/internal/media"
	"github.com/ivlev/screencut/internal/storage"
	"github.com/ivlev/screencut/internal/system"
	"github.com/ivlev/screencut/internal/telemetry"
)

func main() {
	configPtr := flag.String("config", filepath.Join(config.DefaultDataDir(), "config.yaml"), "Path to the YAML config")
	envPtr := flag.String("env", ".env", "Path to a .env file with SCREENCUT_* variables")
	projectPtr := flag.String("project", "", "Project id or path to a recording (default: latest recording in -recordings)")
	recordingsPtr := flag.String("recordings", "recordings", "Directory searched for the latest recording")
	cmdPtr := flag.String("cmd", "info", "Command: list, info, split, unsplit, speed, toggle, autozoom, zoom-export, zoom-import, export")
	atPtr := flag.Float64("at", 0, "Source time in seconds (split)")
	indexPtr := flag.Int("index", 0, "Split point index (unsplit) or segment index (speed, toggle)")
	valuePtr := flag.Float64("value", 1, "Playback speed (speed)")
	sensitivityPtr := flag.String("sensitivity", "", "Auto-zoom sensitivity: fine, balanced, coarse")
	scenarioPtr := flag.String("scenario", "", "YAML zoom scenario (zoom-export, zoom-import)")
	outputPtr := flag.String("output", "", "Exported video path (default: next to the recording)")
	widthPtr := flag.Int("width", 0, "Export width (0 - source)")
	heightPtr := flag.Int("height", 0, "Export height (0 - source)")
	fpsPtr := flag.Int("fps", 0, "Export FPS (0 - from config)")
	qualityPtr := flag.Int("quality", 0, "Quality (0 - auto, x264: CRF 1-51, VideoToolbox: bitrate = Q*100kbit/s)")

	flag.Parse()

	cfg, err := config.Load(*configPtr, *envPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}
	if *fpsPtr > 0 {
		cfg.Export.FPS = *fpsPtr
	}
	if *widthPtr > 0 && *heightPtr > 0 {
		cfg.Export.Width, cfg.Export.Height = *widthPtr, *heightPtr
	}
	if *qualityPtr > 0 {
		cfg.Export.Quality = *qualityPtr
	}
	if *sensitivityPtr != "" {
		cfg.Cursor.AutoZoom.Sensitivity = telemetry.Sensitivity(*sensitivityPtr)
		cfg.Cursor = cfg.Cursor.Normalize()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry, err := storage.Open(cfg.RegistryPath, cfg.ProjectsDir)
	if err != nil {
		log.Fatalf("[-] Registry error: %v", err)
	}
	defer registry.Close()

	if *cmdPtr == "list" {
		listProjects(ctx, registry)
		return
	}

	ref := *projectPtr
	if ref == "" {
		latest, err := system.FindLatestRecording(*recordingsPtr)
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a recording into %s/ or pass -project", err, *recordingsPtr)
		}
		ref = latest
		fmt.Printf("[*] Selected recording: %s\n", ref)
	}
	proj, err := registry.Resolve(ctx, ref)
	if err != nil {
		log.Fatalf("[-] Project error: %v", err)
	}

	session, err := editor.Open(ctx, editor.Options{
		MediaPath:    proj.MediaPath,
		MetadataPath: proj.MetadataPath,
		StatePath:    proj.StatePath,
		ThumbnailDir: proj.ThumbnailDir,
		Loader:       media.FFprobe{Binary: cfg.FFprobePath},
		Exporter:     media.FFmpegExporter{Binary: cfg.FFmpegPath},
		Frames: func(a media.Asset) media.FrameSource {
			return media.FFmpegFrames{Binary: cfg.FFmpegPath, Path: a.Path}
		},
		CursorDefaults: cfg.Cursor,
		SaveDelay:      cfg.SaveDelay,
		BatchWindow:    cfg.BatchWindow,
		OverlayFPS:     cfg.OverlayFPS,
		ThumbnailCount: cfg.Thumbnails.Count,
		ThumbnailWidth: cfg.Thumbnails.Width,
	})
	if err != nil {
		log.Fatalf("[-] Failed to open project: %v", err)
	}

	if err := run(ctx, session, cfg, proj, *cmdPtr, *atPtr, *indexPtr, *valuePtr, *scenarioPtr, *outputPtr); err != nil {
		session.Close()
		log.Fatalf("[-] %v", err)
	}

	session.Wait()
	if err := session.Close(); err != nil {
		log.Fatalf("[-] Failed to save project: %v", err)
	}
	if err := registry.Touch(ctx, proj.ID); err != nil {
		log.Printf("[!] %v", err)
	}
}

func run(ctx context.Context, s *editor.Session, cfg *config.Config, proj *storage.Project, cmd string, at float64, index int, value float64, scenario, output string) error {
	switch cmd {
	case "info":
		printInfo(s, proj)
	case "split":
		if !s.AddSplit(at) {
			return fmt.Errorf("cannot split at %.2fs: outside the clip or too close to another split", at)
		}
		fmt.Printf("[+++] Split at %.2fs\n", at)
	case "unsplit":
		if !s.RemoveSplit(index) {
			return fmt.Errorf("no split point #%d", index)
		}
		fmt.Printf("[+++] Removed split #%d\n", index)
	case "speed", "toggle":
		segs := s.View().Segments
		if index < 0 || index >= len(segs) {
			return fmt.Errorf("no segment #%d (have %d)", index, len(segs))
		}
		id := segs[index].ID
		var changed bool
		if cmd == "speed" {
			changed = s.SetSpeed(value, id)
		} else {
			changed = s.ToggleSegment(id)
		}
		if !changed {
			fmt.Printf("[*] Segment #%d unchanged\n", index)
			return nil
		}
		fmt.Printf("[+++] Segment #%d updated\n", index)
	case "autozoom":
		n := s.GenerateAutoZoom()
		fmt.Printf("[+++] Added %d zoom regions\n", n)
	case "zoom-export":
		if scenario == "" {
			return fmt.Errorf("-scenario is required")
		}
		if err := s.ExportScenario(scenario); err != nil {
			return err
		}
		fmt.Printf("[+++] Zoom scenario written to %s\n", scenario)
	case "zoom-import":
		if scenario == "" {
			return fmt.Errorf("-scenario is required")
		}
		n, err := s.ImportScenario(scenario)
		if err != nil {
			return err
		}
		fmt.Printf("[+++] Imported %d zoom regions\n", n)
	case "export":
		return export(ctx, s, cfg, proj, output)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func export(ctx context.Context, s *editor.Session, cfg *config.Config, proj *storage.Project, output string) error {
	if output == "" {
		base := strings.TrimSuffix(filepath.Base(proj.MediaPath), filepath.Ext(proj.MediaPath))
		clean := strings.ReplaceAll(base, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		output = filepath.Join(filepath.Dir(proj.MediaPath), fmt.Sprintf("%s_edit_%s.mp4", clean, timestamp))
	}

	encoder := cfg.Export.Encoder
	if encoder == "" {
		encoder = system.GetBestH264Encoder(ctx)
		if encoder != "libx264" {
			fmt.Printf("[*] Hardware encoder detected: %s\n", encoder)
		}
	}

	start := time.Now()
	last := -1
	err := s.Export(ctx, media.ExportOptions{
		Destination: output,
		Width:       cfg.Export.Width,
		Height:      cfg.Export.Height,
		FPS:         cfg.Export.FPS,
		Encoder:     encoder,
		Quality:     cfg.Export.Quality,
	}, func(f float64) {
		if pct := int(f * 100); pct/10 != last/10 {
			last = pct
			fmt.Printf("[>] %d%%\n", pct)
		}
	})
	if err != nil {
		return err
	}
	fmt.Printf("[+++] Done in %s! Result: %s\n", time.Since(start).Round(time.Millisecond), output)
	return nil
}

func printInfo(s *editor.Session, proj *storage.Project) {
	v := s.View()
	fmt.Printf("Project:    %s (%s)\n", proj.Name, proj.ID)
	fmt.Printf("Recording:  %s\n", proj.MediaPath)
	fmt.Printf("Source:     %dx%d, %.2fs, audio: %v\n", v.Asset.Width, v.Asset.Height, v.Asset.Duration, v.Asset.HasAudio)
	fmt.Printf("Output:     %.2fs\n", v.OutputDuration)
	fmt.Printf("Playhead:   %.2fs\n", v.Playhead)
	fmt.Printf("Cursor:     enabled=%v style=%s overlay=%v\n", v.Cursor.Enabled, v.Cursor.Style, v.HasOverlay)
	fmt.Println("Segments:")
	for i, seg := range v.Segments {
		state := "on "
		if !seg.IsEnabled {
			state = "off"
		}
		fmt.Printf("  #%-2d %s [%7.2f, %7.2f) x%.2f\n", i, state, seg.StartTime, seg.EndTime, seg.Speed)
	}
	if len(v.SplitPoints) > 0 {
		fmt.Printf("Splits:     %v\n", v.SplitPoints)
	}
	fmt.Println("Zoom regions:")
	for _, r := range v.ZoomRegions {
		fmt.Printf("  [%7.2f, %7.2f) x%.2f at (%.0f, %.0f) enabled=%v\n", r.StartTime, r.EndTime, r.ZoomLevel, r.FocusX, r.FocusY, r.IsEnabled)
	}
}

func listProjects(ctx context.Context, r *storage.Registry) {
	projects, err := r.List(ctx)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}
	if len(projects) == 0 {
		fmt.Println("[*] No projects yet")
		return
	}
	for _, p := range projects {
		fmt.Printf("%s  %-24s  %s  %s\n", p.ID, p.Name, p.UpdatedAt.Local().Format("2006-01-02 15:04"), p.MediaPath)
	}
}

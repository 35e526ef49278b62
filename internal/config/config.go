// Package config loads application settings. Sources are applied in order,
// each overriding the previous: built-in defaults, a YAML file, a .env file
// and the process environment (SCREENCUT_*), then command-line flags, which
// the caller applies last.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/ivlev/screencut/internal/telemetry"
)

type Export struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	FPS     int    `yaml:"fps"`
	Encoder string `yaml:"encoder"` // empty picks the best available
	Quality int    `yaml:"quality"` // 0 picks the encoder default
}

type Thumbnails struct {
	Count int `yaml:"count"`
	Width int `yaml:"width"`
}

type Config struct {
	DataDir      string `yaml:"data_dir"`
	ProjectsDir  string `yaml:"projects_dir"`
	RegistryPath string `yaml:"registry"`
	FFmpegPath   string `yaml:"ffmpeg"`
	FFprobePath  string `yaml:"ffprobe"`

	Export     Export             `yaml:"export"`
	Thumbnails Thumbnails         `yaml:"thumbnails"`
	Cursor     telemetry.Settings `yaml:"cursor"`
	OverlayFPS float64            `yaml:"overlay_fps"`

	SaveDelay   time.Duration `yaml:"save_delay"`
	BatchWindow time.Duration `yaml:"undo_batch_window"`
}

// Default returns the built-in configuration rooted at dataDir.
func Default(dataDir string) *Config {
	return &Config{
		DataDir:      dataDir,
		ProjectsDir:  filepath.Join(dataDir, "projects"),
		RegistryPath: filepath.Join(dataDir, "screencut.db"),
		FFmpegPath:   "ffmpeg",
		FFprobePath:  "ffprobe",
		Export: Export{
			FPS: 30,
		},
		Thumbnails: Thumbnails{Count: 12, Width: 160},
		Cursor:     telemetry.DefaultSettings(),
		OverlayFPS: 60,
		SaveDelay:  300 * time.Millisecond,
		// matches history.DefaultBatchWindow
		BatchWindow: 500 * time.Millisecond,
	}
}

// DefaultDataDir is ~/.screencut, or ./.screencut when there is no home.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".screencut"
	}
	return filepath.Join(home, ".screencut")
}

// Load builds the configuration from defaults, the YAML file at path and
// the environment. A missing file is not an error. envFile may be empty.
func Load(path, envFile string) (*Config, error) {
	cfg := Default(DefaultDataDir())

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	cfg.Cursor = cfg.Cursor.Normalize()
	return cfg, cfg.Validate()
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	dataDir := c.DataDir
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	// derived paths follow a relocated data dir unless set explicitly
	if c.DataDir != dataDir {
		def := Default(dataDir)
		if c.ProjectsDir == def.ProjectsDir {
			c.ProjectsDir = filepath.Join(c.DataDir, "projects")
		}
		if c.RegistryPath == def.RegistryPath {
			c.RegistryPath = filepath.Join(c.DataDir, "screencut.db")
		}
	}
	return nil
}

// ApplyEnv overrides settings from SCREENCUT_* variables.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v, ok := lookup(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = d
		}
	}

	if v, ok := lookup("SCREENCUT_DATA_DIR"); ok && v != "" {
		c.DataDir = v
		c.ProjectsDir = filepath.Join(v, "projects")
		c.RegistryPath = filepath.Join(v, "screencut.db")
	}
	str("SCREENCUT_PROJECTS_DIR", &c.ProjectsDir)
	str("SCREENCUT_REGISTRY", &c.RegistryPath)
	str("SCREENCUT_FFMPEG", &c.FFmpegPath)
	str("SCREENCUT_FFPROBE", &c.FFprobePath)
	str("SCREENCUT_ENCODER", &c.Export.Encoder)
	num("SCREENCUT_FPS", &c.Export.FPS)
	num("SCREENCUT_QUALITY", &c.Export.Quality)
	num("SCREENCUT_THUMBNAILS", &c.Thumbnails.Count)
	dur("SCREENCUT_SAVE_DELAY", &c.SaveDelay)
	dur("SCREENCUT_UNDO_WINDOW", &c.BatchWindow)

	if v, ok := lookup("SCREENCUT_AUTOZOOM_SENSITIVITY"); ok && v != "" {
		c.Cursor.AutoZoom.Sensitivity = telemetry.Sensitivity(v)
	}
	if v, ok := lookup("SCREENCUT_CURSOR"); ok && v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("SCREENCUT_CURSOR: %w", err))
		} else {
			c.Cursor.Enabled = enabled
		}
	}
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	if c.Export.FPS <= 0 || c.Export.FPS > 240 {
		return fmt.Errorf("export fps must be in 1..240, got %d", c.Export.FPS)
	}
	if c.Export.Width < 0 || c.Export.Height < 0 || c.Export.Width%2 != 0 || c.Export.Height%2 != 0 {
		return fmt.Errorf("export size must be even, got %dx%d", c.Export.Width, c.Export.Height)
	}
	if c.Thumbnails.Count < 0 {
		return fmt.Errorf("thumbnail count must not be negative")
	}
	if c.SaveDelay <= 0 || c.BatchWindow <= 0 {
		return fmt.Errorf("save delay and undo batch window must be positive")
	}
	return nil
}

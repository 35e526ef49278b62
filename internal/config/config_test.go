package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ivlev/screencut/internal/telemetry"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default(t.TempDir())
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if cfg.Cursor != telemetry.DefaultSettings() {
		t.Errorf("Default cursor settings differ: %+v", cfg.Cursor)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "screencut.yaml")
	data := `
data_dir: ` + dir + `
export:
  fps: 60
  encoder: libx264
  width: 1280
  height: 720
cursor:
  style: ring
  size: 2
  auto_zoom:
    sensitivity: coarse
save_delay: 1s
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Default("/unused")
	if err := cfg.loadFile(path); err != nil {
		t.Fatalf("loadFile failed: %v", err)
	}

	if cfg.Export.FPS != 60 || cfg.Export.Encoder != "libx264" || cfg.Export.Width != 1280 {
		t.Errorf("Export settings not loaded: %+v", cfg.Export)
	}
	if cfg.Cursor.Style != telemetry.StyleRing || cfg.Cursor.Size != 2 {
		t.Errorf("Cursor settings not loaded: %+v", cfg.Cursor)
	}
	if cfg.Cursor.AutoZoom.Sensitivity != telemetry.SensitivityCoarse {
		t.Errorf("Expected coarse sensitivity, got %q", cfg.Cursor.AutoZoom.Sensitivity)
	}
	if !cfg.Cursor.Click.Enabled || cfg.Cursor.Click.Duration != 0.4 {
		t.Errorf("Fields absent from the file should keep defaults: %+v", cfg.Cursor.Click)
	}
	if cfg.SaveDelay != time.Second {
		t.Errorf("Expected save delay 1s, got %v", cfg.SaveDelay)
	}
	if cfg.ProjectsDir != filepath.Join(dir, "projects") {
		t.Errorf("Projects dir should follow data_dir, got %s", cfg.ProjectsDir)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default("/data")
	if err := cfg.loadFile(filepath.Join(t.TempDir(), "none.yaml")); err != nil {
		t.Errorf("A missing config file is not an error: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"SCREENCUT_DATA_DIR":             "/srv/sc",
		"SCREENCUT_FPS":                  "24",
		"SCREENCUT_ENCODER":              "h264_nvenc",
		"SCREENCUT_SAVE_DELAY":           "750ms",
		"SCREENCUT_AUTOZOOM_SENSITIVITY": "fine",
		"SCREENCUT_CURSOR":               "false",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default("/data")
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.RegistryPath != filepath.Join("/srv/sc", "screencut.db") {
		t.Errorf("Registry should follow the data dir, got %s", cfg.RegistryPath)
	}
	if cfg.Export.FPS != 24 || cfg.Export.Encoder != "h264_nvenc" {
		t.Errorf("Export env not applied: %+v", cfg.Export)
	}
	if cfg.SaveDelay != 750*time.Millisecond {
		t.Errorf("Expected 750ms, got %v", cfg.SaveDelay)
	}
	if cfg.Cursor.Enabled || cfg.Cursor.AutoZoom.Sensitivity != telemetry.SensitivityFine {
		t.Errorf("Cursor env not applied: %+v", cfg.Cursor)
	}
}

func TestApplyEnvErrors(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "SCREENCUT_FPS" {
			return "fast", true
		}
		return "", false
	}
	if err := Default("/data").ApplyEnv(lookup); err == nil {
		t.Error("Expected an error for a non-numeric fps")
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("SCREENCUT_QUALITY=19\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SCREENCUT_DATA_DIR", dir)
	t.Cleanup(func() { os.Unsetenv("SCREENCUT_QUALITY") })

	cfg, err := Load("", envFile)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Export.Quality != 19 {
		t.Errorf("Expected quality from .env, got %d", cfg.Export.Quality)
	}
	if cfg.DataDir != dir {
		t.Errorf("Expected data dir %s, got %s", dir, cfg.DataDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero fps", func(c *Config) { c.Export.FPS = 0 }},
		{"odd width", func(c *Config) { c.Export.Width = 1281; c.Export.Height = 720 }},
		{"negative thumbnails", func(c *Config) { c.Thumbnails.Count = -1 }},
		{"zero save delay", func(c *Config) { c.SaveDelay = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/data")
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected a validation error")
			}
		})
	}
}

package telemetry

import (
	"math"

	"github.com/ivlev/screencut/internal/zoom"
)

type CursorStyle string

const (
	StyleArrow CursorStyle = "arrow"
	StyleDot   CursorStyle = "dot"
	StyleRing  CursorStyle = "ring"
)

// Sensitivity controls how eagerly interactions are merged into one
// auto-zoom region. Coarser sensitivity merges across longer gaps.
type Sensitivity string

const (
	SensitivityFine     Sensitivity = "fine"
	SensitivityBalanced Sensitivity = "balanced"
	SensitivityCoarse   Sensitivity = "coarse"
)

// MergeGap is the largest pause (seconds) between two interactions that
// still lands them in the same region.
func (s Sensitivity) MergeGap() float64 {
	switch s {
	case SensitivityFine:
		return 1.0
	case SensitivityCoarse:
		return 3.5
	default:
		return 2.0
	}
}

type ClickEffect struct {
	Enabled   bool    `json:"enabled" yaml:"enabled"`
	Duration  float64 `json:"duration" yaml:"duration"`
	MaxRadius float64 `json:"maxRadius" yaml:"max_radius"`
	Color     string  `json:"color" yaml:"color"`
}

type AutoZoom struct {
	Enabled     bool        `json:"enabled" yaml:"enabled"`
	Level       float64     `json:"level" yaml:"level"`
	Sensitivity Sensitivity `json:"sensitivity" yaml:"sensitivity"`
}

// Settings configure the cursor overlay and auto-zoom.
type Settings struct {
	Enabled  bool        `json:"enabled" yaml:"enabled"`
	Style    CursorStyle `json:"style" yaml:"style"`
	Size     float64     `json:"size" yaml:"size"`
	Click    ClickEffect `json:"clickEffect" yaml:"click_effect"`
	AutoZoom AutoZoom    `json:"autoZoom" yaml:"auto_zoom"`
}

func DefaultSettings() Settings {
	return Settings{
		Enabled: true,
		Style:   StyleArrow,
		Size:    1.0,
		Click: ClickEffect{
			Enabled:   true,
			Duration:  0.4,
			MaxRadius: 36,
			Color:     "#FFFFFF",
		},
		AutoZoom: AutoZoom{
			Enabled:     false,
			Level:       zoom.DefaultLevel,
			Sensitivity: SensitivityBalanced,
		},
	}
}

// Normalize clamps every numeric field into its supported range and replaces
// unknown enum values with defaults.
func (s Settings) Normalize() Settings {
	def := DefaultSettings()
	switch s.Style {
	case StyleArrow, StyleDot, StyleRing:
	default:
		s.Style = def.Style
	}
	s.Size = clampOr(s.Size, 0.5, 3.0, def.Size)
	s.Click.Duration = clampOr(s.Click.Duration, 0.1, 2.0, def.Click.Duration)
	s.Click.MaxRadius = clampOr(s.Click.MaxRadius, 4, 200, def.Click.MaxRadius)
	if s.Click.Color == "" {
		s.Click.Color = def.Click.Color
	}
	s.AutoZoom.Level = zoom.ClampLevel(s.AutoZoom.Level)
	switch s.AutoZoom.Sensitivity {
	case SensitivityFine, SensitivityBalanced, SensitivityCoarse:
	default:
		s.AutoZoom.Sensitivity = def.AutoZoom.Sensitivity
	}
	return s
}

func clampOr(v, lo, hi, fallback float64) float64 {
	if math.IsNaN(v) || v == 0 {
		return fallback
	}
	return math.Max(lo, math.Min(hi, v))
}

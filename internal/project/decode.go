package project

import (
	"encoding/json"
	"fmt"

	"github.com/ivlev/screencut/internal/telemetry"
	"github.com/ivlev/screencut/internal/timeline"
	"github.com/ivlev/screencut/internal/zoom"
)

// The raw* types mirror Document with every field optional, so a save
// written by an older build decodes field by field onto defaults instead of
// zeroing whatever it does not mention.

type rawDocument struct {
	Version      *int           `json:"version"`
	SplitPoints  []float64      `json:"splitPoints"`
	Segments     []rawSegment   `json:"segments"`
	ZoomRegions  []rawRegion    `json:"zoomRegions"`
	PlayheadTime *float64       `json:"playheadTime"`
	Appearance   *rawAppearance `json:"appearance"`
	Cursor       *rawCursor     `json:"cursor"`
}

type rawSegment struct {
	ID        string   `json:"id"`
	StartTime *float64 `json:"startTime"`
	EndTime   *float64 `json:"endTime"`
	Speed     *float64 `json:"speed"`
	IsEnabled *bool    `json:"isEnabled"`
}

type rawRegion struct {
	ID        string   `json:"id"`
	StartTime *float64 `json:"startTime"`
	EndTime   *float64 `json:"endTime"`
	ZoomLevel *float64 `json:"zoomLevel"`
	FocusX    *float64 `json:"focusX"`
	FocusY    *float64 `json:"focusY"`
	IsEnabled *bool    `json:"isEnabled"`
}

type rawAppearance struct {
	Padding        *float64 `json:"padding"`
	CornerRadius   *float64 `json:"cornerRadius"`
	ShadowRadius   *float64 `json:"shadowRadius"`
	ShadowOpacity  *float64 `json:"shadowOpacity"`
	Background     *string  `json:"background"`
	ShowThumbnails *bool    `json:"showThumbnails"`
}

type rawCursor struct {
	Enabled  *bool        `json:"enabled"`
	Style    *string      `json:"style"`
	Size     *float64     `json:"size"`
	Click    *rawClick    `json:"clickEffect"`
	AutoZoom *rawAutoZoom `json:"autoZoom"`
}

type rawClick struct {
	Enabled   *bool    `json:"enabled"`
	Duration  *float64 `json:"duration"`
	MaxRadius *float64 `json:"maxRadius"`
	Color     *string  `json:"color"`
}

type rawAutoZoom struct {
	Enabled     *bool    `json:"enabled"`
	Level       *float64 `json:"level"`
	Sensitivity *string  `json:"sensitivity"`
}

// Decode parses a saved document. Fields absent from data keep the values
// in base, which normally comes from DefaultDocument with the engine's
// configured cursor defaults applied.
func Decode(data []byte, base Document) (Document, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return base, fmt.Errorf("failed to decode project state: %w", err)
	}

	doc := base
	doc.Version = CurrentVersion
	if raw.Version != nil && *raw.Version > CurrentVersion {
		return base, fmt.Errorf("project state version %d is newer than supported version %d", *raw.Version, CurrentVersion)
	}
	if raw.SplitPoints != nil {
		doc.SplitPoints = raw.SplitPoints
	}
	if raw.Segments != nil {
		doc.Segments = make([]timeline.Segment, 0, len(raw.Segments))
		for _, rs := range raw.Segments {
			if rs.StartTime == nil || rs.EndTime == nil {
				continue
			}
			doc.Segments = append(doc.Segments, timeline.Segment{
				ID:        rs.ID,
				StartTime: *rs.StartTime,
				EndTime:   *rs.EndTime,
				Speed:     orFloat(rs.Speed, 1.0),
				IsEnabled: orBool(rs.IsEnabled, true),
			})
		}
	}
	if raw.ZoomRegions != nil {
		doc.ZoomRegions = make([]zoom.Region, 0, len(raw.ZoomRegions))
		for _, rr := range raw.ZoomRegions {
			if rr.StartTime == nil || rr.EndTime == nil {
				continue
			}
			doc.ZoomRegions = append(doc.ZoomRegions, zoom.Region{
				ID:        rr.ID,
				StartTime: *rr.StartTime,
				EndTime:   *rr.EndTime,
				ZoomLevel: orFloat(rr.ZoomLevel, zoom.DefaultLevel),
				FocusX:    orFloat(rr.FocusX, 0),
				FocusY:    orFloat(rr.FocusY, 0),
				IsEnabled: orBool(rr.IsEnabled, true),
			})
		}
	}
	if raw.PlayheadTime != nil {
		doc.PlayheadTime = *raw.PlayheadTime
	}
	if a := raw.Appearance; a != nil {
		setFloat(&doc.Appearance.Padding, a.Padding)
		setFloat(&doc.Appearance.CornerRadius, a.CornerRadius)
		setFloat(&doc.Appearance.ShadowRadius, a.ShadowRadius)
		setFloat(&doc.Appearance.ShadowOpacity, a.ShadowOpacity)
		setString(&doc.Appearance.Background, a.Background)
		setBool(&doc.Appearance.ShowThumbnails, a.ShowThumbnails)
	}
	if c := raw.Cursor; c != nil {
		applyCursor(&doc.Cursor, c)
	}
	return doc, nil
}

func applyCursor(s *telemetry.Settings, c *rawCursor) {
	setBool(&s.Enabled, c.Enabled)
	if c.Style != nil {
		s.Style = telemetry.CursorStyle(*c.Style)
	}
	setFloat(&s.Size, c.Size)
	if ce := c.Click; ce != nil {
		setBool(&s.Click.Enabled, ce.Enabled)
		setFloat(&s.Click.Duration, ce.Duration)
		setFloat(&s.Click.MaxRadius, ce.MaxRadius)
		setString(&s.Click.Color, ce.Color)
	}
	if az := c.AutoZoom; az != nil {
		setBool(&s.AutoZoom.Enabled, az.Enabled)
		setFloat(&s.AutoZoom.Level, az.Level)
		if az.Sensitivity != nil {
			s.AutoZoom.Sensitivity = telemetry.Sensitivity(*az.Sensitivity)
		}
	}
	*s = s.Normalize()
}

func orFloat(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orBool(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

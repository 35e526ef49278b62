// Package telemetry turns captured pointer and keyboard events into
// auto-zoom regions and a per-frame cursor overlay track.
package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ivlev/screencut/internal/system"
)

type EventType string

const (
	EventMove    EventType = "move"
	EventClick   EventType = "click"
	EventRelease EventType = "release"
	EventScroll  EventType = "scroll"
	EventKeyDown EventType = "keyDown"
)

type MouseButton string

const (
	ButtonLeft  MouseButton = "left"
	ButtonRight MouseButton = "right"
	ButtonOther MouseButton = "other"
)

// CursorEvent is one captured input sample. Timestamp is seconds since
// tracking started; X and Y are screen coordinates with a bottom-left origin.
type CursorEvent struct {
	Timestamp float64     `json:"timestamp"`
	X         float64     `json:"x"`
	Y         float64     `json:"y"`
	Type      EventType   `json:"type"`
	Button    MouseButton `json:"button,omitempty"`
}

const metadataVersion = 1

// Metadata is the frozen event log of one capture. Once written it is only
// ever read.
type Metadata struct {
	Version       int           `json:"version"`
	CaptureWidth  float64       `json:"captureWidth"`
	CaptureHeight float64       `json:"captureHeight"`
	Events        []CursorEvent `json:"events"`
}

// TopLeft converts a capture point to the top-left origin used by zoom
// regions and the overlay.
func (m *Metadata) TopLeft(x, y float64) (float64, float64) {
	return x, m.CaptureHeight - y
}

// ScaleTo returns the factors that take capture units to a frame of the
// given size. The log may be in points while the recording is in pixels.
func (m *Metadata) ScaleTo(width, height float64) (float64, float64) {
	if m.CaptureWidth <= 0 || m.CaptureHeight <= 0 || width <= 0 || height <= 0 {
		return 1, 1
	}
	return width / m.CaptureWidth, height / m.CaptureHeight
}

// SaveMetadata writes the metadata file atomically.
func SaveMetadata(path string, m *Metadata) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode cursor metadata: %w", err)
	}
	return system.WriteFileAtomic(path, data, 0644)
}

// LoadMetadata reads a metadata file and sorts its events by time.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode cursor metadata: %w", err)
	}
	sort.SliceStable(m.Events, func(i, j int) bool {
		return m.Events[i].Timestamp < m.Events[j].Timestamp
	})
	return &m, nil
}

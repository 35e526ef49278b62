package editor

import "strings"

// ChangeKind is a bit set naming which parts of the session changed.
type ChangeKind uint

const (
	ChangeSegments ChangeKind = 1 << iota
	ChangeZoom
	ChangeAppearance
	ChangeCursor
	ChangePlayhead
	ChangeOverlay
	ChangeThumbnails
	ChangeExport
	ChangePlayback

	// ChangeEditable covers everything an undo snapshot restores.
	ChangeEditable = ChangeSegments | ChangeZoom | ChangeAppearance | ChangeCursor | ChangePlayhead
)

var changeNames = []string{"segments", "zoom", "appearance", "cursor", "playhead", "overlay", "thumbnails", "export", "playback"}

func (k ChangeKind) String() string {
	var parts []string
	for i, name := range changeNames {
		if k&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Change is delivered to listeners after the session lock is released.
// Restored is set when the change came from undo or redo.
type Change struct {
	Kind     ChangeKind
	Restored bool
}

type Listener func(Change)

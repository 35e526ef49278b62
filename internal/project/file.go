package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ivlev/screencut/internal/system"
)

// Load reads the document at path and decodes it onto base.
func Load(path string, base Document) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read project state: %w", err)
	}
	return Decode(data, base)
}

// Save writes doc to path atomically.
func Save(path string, doc Document) error {
	doc.Version = CurrentVersion
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project state: %w", err)
	}
	if err := system.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("failed to save project state: %w", err)
	}
	return nil
}

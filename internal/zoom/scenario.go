package zoom

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a portable YAML description of a project's zoom regions, used
// to move hand-tuned zooms between recordings of the same flow.
type Scenario struct {
	Version        string   `yaml:"version"`
	SourceDuration float64  `yaml:"source_duration"`
	Width          float64  `yaml:"width"`
	Height         float64  `yaml:"height"`
	Regions        []Region `yaml:"regions"`
}

// WriteScenario writes the regions of l to a YAML file.
func WriteScenario(l *List, path string) error {
	b := l.Bounds()
	data, err := yaml.Marshal(&Scenario{
		Version:        "1.0",
		SourceDuration: b.Duration,
		Width:          b.Width,
		Height:         b.Height,
		Regions:        l.Regions(),
	})
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadScenario reads a scenario written by WriteScenario.
func ReadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse zoom scenario: %w", err)
	}
	return &scenario, nil
}

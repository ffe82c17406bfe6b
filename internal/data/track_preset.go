package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// TrackPreset is a named generator tuning loaded from track_presets.yaml.
type TrackPreset struct {
	Name        string  `yaml:"name"`
	Note        string  `yaml:"note"`
	NormCenter  float64 `yaml:"norm_center"`
	PCount      int     `yaml:"p_count"`
	MinD        float64 `yaml:"min_d"`
	MaxTries    int     `yaml:"max_tries"`
	MaxCross    int     `yaml:"max_cross"`
	MaxStraight int     `yaml:"max_straight"`
	Randomness  float64 `yaml:"randomness"`
}

type trackPresetFile struct {
	Presets []TrackPreset `yaml:"presets"`
}

// TrackPresetTable provides preset lookups by name.
type TrackPresetTable struct {
	presets map[string]*TrackPreset
}

// LoadTrackPresetTable loads track_presets.yaml. Duplicate or empty names are rejected.
func LoadTrackPresetTable(path string) (*TrackPresetTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read track presets %s: %w", path, err)
	}
	var file trackPresetFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse track presets: %w", err)
	}

	t := &TrackPresetTable{
		presets: make(map[string]*TrackPreset, len(file.Presets)),
	}
	for i := range file.Presets {
		p := &file.Presets[i]
		if p.Name == "" {
			return nil, fmt.Errorf("track preset #%d has no name", i)
		}
		if _, dup := t.presets[p.Name]; dup {
			return nil, fmt.Errorf("duplicate track preset %q", p.Name)
		}
		t.presets[p.Name] = p
	}
	return t, nil
}

// Get returns the preset with the given name, or nil if none.
func (t *TrackPresetTable) Get(name string) *TrackPreset {
	return t.presets[name]
}

// Count returns the number of presets loaded.
func (t *TrackPresetTable) Count() int {
	return len(t.presets)
}

// Names returns the preset names in sorted order.
func (t *TrackPresetTable) Names() []string {
	names := make([]string, 0, len(t.presets))
	for name := range t.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

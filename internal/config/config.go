package config

import (
	"fmt"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Terrain    TerrainConfig    `toml:"terrain"`
	Track      TrackConfig      `toml:"track"`
	Generation GenerationConfig `toml:"generation"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Name string `toml:"name"`
}

// TerrainConfig mirrors the heightmap settings the track grid is laid on.
type TerrainConfig struct {
	GridSize int     `toml:"grid_size"` // heightmap vertices per side
	Size     float64 `toml:"size"`      // world units between heightmap vertices
	Border   int     `toml:"border"`    // tiles kept free along each terrain edge
}

type TrackConfig struct {
	GridSize    int     `toml:"grid_size"` // 0 = derive from terrain
	TileSize    float64 `toml:"tile_size"` // world units per track tile
	NormCenter  float64 `toml:"norm_center"`
	PCount      int     `toml:"p_count"`
	MinD        float64 `toml:"min_d"`
	MaxTries    int     `toml:"max_tries"`
	MaxCross    int     `toml:"max_cross"`
	MaxStraight int     `toml:"max_straight"`
	Randomness  float64 `toml:"randomness"`
}

type GenerationConfig struct {
	PresetsPath   string `toml:"presets_path"`
	DefaultPreset string `toml:"default_preset"` // empty = use [track] tuning
	ScriptsDir    string `toml:"scripts_dir"`
	RelaxRounds   int    `toml:"relax_rounds"` // scripted relaxations after a failed generation
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// TrackGridSize returns the track grid side: the configured value, or the
// number of tiles that fit on the terrain minus the border on both sides.
func (c *Config) TrackGridSize() int {
	if c.Track.GridSize > 0 {
		return c.Track.GridSize
	}
	if c.Track.TileSize <= 0 {
		return 0
	}
	tiles := int(math.Floor(float64(c.Terrain.GridSize-1) * c.Terrain.Size / c.Track.TileSize))
	return tiles - 2*c.Terrain.Border
}

// Defaults returns the built-in configuration used under any config file.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Name: "circuitrace",
		},
		Terrain: TerrainConfig{
			GridSize: 129,
			Size:     2,
			Border:   2,
		},
		Track: TrackConfig{
			TileSize:    10,
			NormCenter:  0.6,
			PCount:      7,
			MinD:        0.25,
			MaxTries:    50,
			MaxCross:    2,
			MaxStraight: 5,
			Randomness:  0.15,
		},
		Generation: GenerationConfig{
			PresetsPath: "data/yaml/track_presets.yaml",
			ScriptsDir:  "scripts",
			RelaxRounds: 3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/circuitrace/server/internal/core/event"
	"gopkg.in/yaml.v3"
)

const trioTOML = `
[track]
grid_size = 10
norm_center = 0.5
p_count = 3
min_d = 0.1
max_tries = 10
max_cross = 0
max_straight = 4
randomness = 0.0

[generation]
presets_path = ""
default_preset = ""
scripts_dir = ""

[logging]
level = "error"
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.toml")
	if err := os.WriteFile(path, []byte(trioTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun_ASCII(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-config", writeConfig(t), "-seed", "7", "-count", "2"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	s := out.String()
	for _, want := range []string{"seed 7 ", "seed 8 ", "tiles 6", "@@@"} {
		if !strings.Contains(s, want) {
			t.Errorf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRun_YAML(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-config", writeConfig(t), "-seed", "3", "-format", "yaml"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	var doc struct {
		Circuits []struct {
			Seed     uint64 `yaml:"seed"`
			GridSize int    `yaml:"grid_size"`
			Stats    struct {
				Length int `yaml:"length"`
			} `yaml:"stats"`
			Ring  [][2]int `yaml:"ring"`
			Tiles []struct {
				X    int    `yaml:"x"`
				Y    int    `yaml:"y"`
				Code string `yaml:"code"`
			} `yaml:"tiles"`
		} `yaml:"circuits"`
	}
	if err := yaml.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out.String())
	}
	if len(doc.Circuits) != 1 {
		t.Fatalf("circuits = %d, want 1", len(doc.Circuits))
	}
	c := doc.Circuits[0]
	if c.Seed != 3 || c.GridSize != 10 {
		t.Errorf("seed/grid = %d/%d, want 3/10", c.Seed, c.GridSize)
	}
	if len(c.Ring) != 3 {
		t.Errorf("ring = %v, want 3 keypoints", c.Ring)
	}
	if c.Stats.Length != len(c.Tiles) || len(c.Tiles) != 6 {
		t.Errorf("stats length %d, tiles %d, want 6", c.Stats.Length, len(c.Tiles))
	}
}

func TestParseFlags_Rejects(t *testing.T) {
	for _, args := range [][]string{
		{"-count", "0"},
		{"-format", "svg"},
		{"-bogus"},
	} {
		if _, err := parseFlags(args); err == nil {
			t.Errorf("parseFlags(%v) accepted", args)
		}
	}
}

func TestSubscribeSummary(t *testing.T) {
	bus := event.NewBus()
	s := subscribeSummary(bus)
	event.Emit(bus, event.GenerationFailed{Round: 0})
	event.Emit(bus, event.TuningRelaxed{Round: 1})
	event.Emit(bus, event.CircuitBuilt{Attempts: 4, Rounds: 1})
	event.Emit(bus, event.GenerationFailed{Round: 3, Final: true})
	bus.Flush()

	if *s != (summary{built: 1, failed: 1, relaxations: 1, attempts: 4}) {
		t.Errorf("summary = %+v", *s)
	}
}

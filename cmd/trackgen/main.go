// trackgen builds race circuits with the server's track configuration and
// prints them, for tuning presets without starting a room.
//
// Usage:
//
//	go run ./cmd/trackgen -preset twisty -seed 42 -count 3 -format ascii
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/circuitrace/server/internal/circuit"
	"github.com/circuitrace/server/internal/config"
	"github.com/circuitrace/server/internal/core/event"
	"github.com/circuitrace/server/internal/data"
	"github.com/circuitrace/server/internal/scripting"
	"github.com/circuitrace/server/internal/track"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	preset     string
	seed       uint64
	count      int
	format     string
	noScripts  bool
}

func parseFlags(args []string) (options, error) {
	opts := options{configPath: "config/server.toml"}
	if p := os.Getenv("CIRCUITRACE_CONFIG"); p != "" {
		opts.configPath = p
	}

	fs := flag.NewFlagSet("trackgen", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", opts.configPath, "server config file")
	fs.StringVar(&opts.preset, "preset", "", "tuning preset (default: config default_preset)")
	fs.Uint64Var(&opts.seed, "seed", uint64(time.Now().UnixNano()), "seed of the first circuit")
	fs.IntVar(&opts.count, "count", 1, "number of circuits, seeds increase by one")
	fs.StringVar(&opts.format, "format", "ascii", "output format: ascii or yaml")
	fs.BoolVar(&opts.noScripts, "no-scripts", false, "disable Lua tuning relaxation")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.count < 1 {
		return opts, fmt.Errorf("count must be positive, got %d", opts.count)
	}
	if opts.format != "ascii" && opts.format != "yaml" {
		return opts, fmt.Errorf("unknown format %q", opts.format)
	}
	return opts, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}

	// 1. Load config
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Load presets and scripts
	var presets *data.TrackPresetTable
	if cfg.Generation.PresetsPath != "" {
		presets, err = data.LoadTrackPresetTable(cfg.Generation.PresetsPath)
		if err != nil {
			return fmt.Errorf("load track presets: %w", err)
		}
		log.Debug("track presets loaded", zap.Int("count", presets.Count()), zap.Strings("names", presets.Names()))
	}

	var relaxer circuit.Relaxer
	if !opts.noScripts && cfg.Generation.ScriptsDir != "" {
		engine, err := scripting.NewEngine(cfg.Generation.ScriptsDir, log)
		if err != nil {
			return fmt.Errorf("init scripting: %w", err)
		}
		defer engine.Close()
		relaxer = engine
	}

	// 4. Build circuits
	builder := circuit.NewBuilder(cfg, presets, relaxer, log)
	bus := event.NewBus()
	builder.SetEventBus(bus)
	sum := subscribeSummary(bus)
	reqs := make([]circuit.Request, opts.count)
	for i := range reqs {
		seed := opts.seed + uint64(i)
		reqs[i] = circuit.Request{
			Room:   fmt.Sprintf("preview-%d", seed),
			Seed:   seed,
			Preset: opts.preset,
		}
	}
	circuits, err := builder.BuildMany(context.Background(), reqs)
	bus.Flush()
	log.Info("batch done",
		zap.Int("built", sum.built),
		zap.Int("failed", sum.failed),
		zap.Int("relaxations", sum.relaxations),
		zap.Int("attempts", sum.attempts),
	)
	if err != nil {
		return err
	}

	// 5. Print
	if opts.format == "yaml" {
		return writeYAML(out, circuits)
	}
	for _, c := range circuits {
		writeASCII(out, c)
	}
	return nil
}

type summary struct {
	built       int
	failed      int
	relaxations int
	attempts    int
}

func subscribeSummary(bus *event.Bus) *summary {
	s := &summary{}
	event.Subscribe(bus, func(e event.CircuitBuilt) {
		s.built++
		s.attempts += e.Attempts
	})
	event.Subscribe(bus, func(e event.GenerationFailed) {
		if e.Final {
			s.failed++
		}
	})
	event.Subscribe(bus, func(event.TuningRelaxed) {
		s.relaxations++
	})
	return s
}

func writeASCII(out io.Writer, c *circuit.Circuit) {
	preset := c.Preset
	if preset == "" {
		preset = "[track]"
	}
	fmt.Fprintf(out, "seed %d  preset %s  grid %d  tiles %d  turns %d  crossings %d  longest straight %d  attempts %d  relaxed %d\n",
		c.Seed, preset, c.GridSize, c.Stats.Length, c.Stats.Turns, c.Stats.Crossings,
		c.Stats.LongestStraight, c.Result.Attempts, c.Rounds)
	fmt.Fprintln(out, strings.TrimRight(circuit.Render(c), "\n"))
	fmt.Fprintln(out)
}

type yamlTuning struct {
	NormCenter  float64 `yaml:"norm_center"`
	PCount      int     `yaml:"p_count"`
	MinD        float64 `yaml:"min_d"`
	MaxTries    int     `yaml:"max_tries"`
	MaxCross    int     `yaml:"max_cross"`
	MaxStraight int     `yaml:"max_straight"`
	Randomness  float64 `yaml:"randomness"`
}

type yamlCircuit struct {
	Seed     uint64          `yaml:"seed"`
	Preset   string          `yaml:"preset,omitempty"`
	GridSize int             `yaml:"grid_size"`
	Rounds   int             `yaml:"relax_rounds"`
	Tuning   yamlTuning      `yaml:"tuning"`
	Stats    track.LoopStats `yaml:"stats"`
	Ring     [][2]int        `yaml:"ring,flow"`
	Tiles    []track.Tile    `yaml:"tiles"`
}

func writeYAML(out io.Writer, circuits []*circuit.Circuit) error {
	docs := make([]yamlCircuit, len(circuits))
	for i, c := range circuits {
		t := c.Tuning
		ring := make([][2]int, len(c.Result.Ring))
		for j, k := range c.Result.Ring {
			ring[j] = [2]int{k.X, k.Y}
		}
		docs[i] = yamlCircuit{
			Seed:     c.Seed,
			Preset:   c.Preset,
			GridSize: c.GridSize,
			Rounds:   c.Rounds,
			Tuning: yamlTuning{
				NormCenter:  t.NormCenter,
				PCount:      t.PCount,
				MinD:        t.MinD,
				MaxTries:    t.MaxTries,
				MaxCross:    t.MaxCross,
				MaxStraight: t.MaxStraight,
				Randomness:  t.Randomness,
			},
			Stats: c.Stats,
			Ring:  ring,
			Tiles: c.Result.Tiles,
		}
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"circuits": docs}); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}

	return zapCfg.Build()
}

package circuit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/circuitrace/server/internal/config"
	"github.com/circuitrace/server/internal/core/event"
	"github.com/circuitrace/server/internal/data"
	"github.com/circuitrace/server/internal/track"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// seedMix decorrelates the two PCG words derived from one request seed.
const seedMix = 0x9e3779b97f4a7c15

// ErrUnknownPreset is returned when a request names a preset that is not loaded.
var ErrUnknownPreset = errors.New("unknown track preset")

// Relaxer loosens a tuning after a failed generation. round starts at 1.
type Relaxer interface {
	RelaxTuning(t track.Tuning, round int) (track.Tuning, bool)
}

// Request asks for one circuit, typically on room creation.
type Request struct {
	Room   string
	Seed   uint64
	Preset string // empty = configured default
}

// Circuit is a generated track together with how it was produced.
type Circuit struct {
	Room     string
	Seed     uint64
	Preset   string
	GridSize int
	Tuning   track.Tuning
	Rounds   int // relaxation rounds applied before success
	Result   *track.Result
	Stats    track.LoopStats
}

// Builder turns room requests into circuits. It is safe for concurrent use.
type Builder struct {
	cfg     *config.Config
	presets *data.TrackPresetTable
	relaxer Relaxer
	events  *event.Bus
	log     *zap.Logger
}

// NewBuilder creates a builder. presets and relaxer may be nil; without a
// relaxer a failed generation is final.
func NewBuilder(cfg *config.Config, presets *data.TrackPresetTable, relaxer Relaxer, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{cfg: cfg, presets: presets, relaxer: relaxer, log: log}
}

// SetEventBus makes the builder emit circuit lifecycle events on bus.
func (b *Builder) SetEventBus(bus *event.Bus) {
	b.events = bus
}

// Tuning resolves the tuning for a preset name: the named preset, else the
// configured default preset, else the [track] section.
func (b *Builder) Tuning(preset string) (track.Tuning, string, error) {
	name := preset
	if name == "" {
		name = b.cfg.Generation.DefaultPreset
	}
	if name == "" {
		return FromConfig(b.cfg.Track), "", nil
	}
	if b.presets == nil {
		return track.Tuning{}, "", fmt.Errorf("%w: %q (no presets loaded)", ErrUnknownPreset, name)
	}
	p := b.presets.Get(name)
	if p == nil {
		return track.Tuning{}, "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return FromPreset(p), name, nil
}

// Build generates one circuit. After a generation failure it asks the relaxer
// for a looser tuning, up to the configured number of rounds, and stops early
// if ctx is done.
func (b *Builder) Build(ctx context.Context, req Request) (*Circuit, error) {
	tuning, preset, err := b.Tuning(req.Preset)
	if err != nil {
		return nil, err
	}
	gridSize := b.cfg.TrackGridSize()
	rng := rand.New(rand.NewPCG(req.Seed, req.Seed^seedMix))
	log := b.log.With(zap.String("room", req.Room), zap.Uint64("seed", req.Seed))

	for round := 0; ; round++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := track.NewGenerator(tuning, log).Generate(rng, gridSize)
		if err == nil {
			stats, err := track.Analyze(res.Tiles)
			if err != nil {
				return nil, fmt.Errorf("room %s: %w", req.Room, err)
			}
			log.Info("circuit built",
				zap.String("preset", preset),
				zap.Int("grid", gridSize),
				zap.Int("rounds", round),
				zap.Int("attempts", res.Attempts),
				zap.Int("tiles", stats.Length),
				zap.Int("crossings", stats.Crossings),
			)
			if b.events != nil {
				event.Emit(b.events, event.CircuitBuilt{
					Room:     req.Room,
					Seed:     req.Seed,
					Preset:   preset,
					Attempts: res.Attempts,
					Rounds:   round,
					Stats:    stats,
				})
			}
			return &Circuit{
				Room:     req.Room,
				Seed:     req.Seed,
				Preset:   preset,
				GridSize: gridSize,
				Tuning:   tuning,
				Rounds:   round,
				Result:   res,
				Stats:    stats,
			}, nil
		}
		if !errors.Is(err, track.ErrGenerationFailed) || b.relaxer == nil || round >= b.cfg.Generation.RelaxRounds {
			b.emitFailed(req, round, err, true)
			return nil, fmt.Errorf("room %s: %w", req.Room, err)
		}

		relaxed, ok := b.relaxer.RelaxTuning(tuning, round+1)
		if !ok || relaxed == tuning {
			b.emitFailed(req, round, err, true)
			return nil, fmt.Errorf("room %s: %w", req.Room, err)
		}
		b.emitFailed(req, round, err, false)
		log.Warn("circuit generation failed, relaxing tuning",
			zap.Int("round", round+1),
			zap.Error(err),
		)
		tuning = relaxed
		if b.events != nil {
			event.Emit(b.events, event.TuningRelaxed{Room: req.Room, Seed: req.Seed, Round: round + 1, Tuning: relaxed})
		}
	}
}

func (b *Builder) emitFailed(req Request, round int, err error, final bool) {
	if b.events == nil {
		return
	}
	event.Emit(b.events, event.GenerationFailed{Room: req.Room, Seed: req.Seed, Round: round, Err: err, Final: final})
}

// BuildMany builds one circuit per request concurrently. Results keep the
// request order; the first error cancels the remaining builds.
func (b *Builder) BuildMany(ctx context.Context, reqs []Request) ([]*Circuit, error) {
	out := make([]*Circuit, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i, req := range reqs {
		g.Go(func() error {
			c, err := b.Build(ctx, req)
			if err != nil {
				return err
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FromConfig converts the [track] section into generator tuning.
func FromConfig(c config.TrackConfig) track.Tuning {
	return track.Tuning{
		NormCenter:  c.NormCenter,
		PCount:      c.PCount,
		MinD:        c.MinD,
		MaxTries:    c.MaxTries,
		MaxCross:    c.MaxCross,
		MaxStraight: c.MaxStraight,
		Randomness:  c.Randomness,
	}
}

// FromPreset converts a preset into generator tuning.
func FromPreset(p *data.TrackPreset) track.Tuning {
	return track.Tuning{
		NormCenter:  p.NormCenter,
		PCount:      p.PCount,
		MinD:        p.MinD,
		MaxTries:    p.MaxTries,
		MaxCross:    p.MaxCross,
		MaxStraight: p.MaxStraight,
		Randomness:  p.Randomness,
	}
}

package track

import (
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
)

// Result is a generated circuit.
type Result struct {
	Tiles     []Tile
	Keypoints []Coord
	Ring      []Coord
	Crossings int
	Attempts  int
}

// Generator builds closed circuits from a fixed tuning. It keeps no state
// between calls; concurrent Generate calls are safe as long as each one gets its
// own random source.
type Generator struct {
	tuning Tuning
	log    *zap.Logger
}

// NewGenerator returns a generator for t. A nil logger disables logging.
func NewGenerator(t Tuning, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{tuning: t, log: log}
}

// Tuning returns the generator parameters.
func (g *Generator) Tuning() Tuning {
	return g.tuning
}

// Generate runs up to MaxTries attempts of sample, order and stitch on a
// gridSize grid and returns the first complete loop. When every attempt fails it
// returns an error wrapping both ErrGenerationFailed and the last attempt error.
func (g *Generator) Generate(rng *rand.Rand, gridSize int) (*Result, error) {
	if err := g.tuning.Validate(gridSize); err != nil {
		return nil, err
	}

	occ := NewOccupancy(gridSize)
	var lastErr error
	for attempt := 1; attempt <= g.tuning.MaxTries; attempt++ {
		res, err := g.attempt(rng, occ)
		if err == nil {
			res.Attempts = attempt
			g.log.Debug("track generated",
				zap.Int("grid", gridSize),
				zap.Int("attempt", attempt),
				zap.Int("tiles", len(res.Tiles)),
				zap.Int("crossings", res.Crossings),
			)
			return res, nil
		}
		lastErr = err
		g.log.Debug("track attempt failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrGenerationFailed, g.tuning.MaxTries, lastErr)
}

func (g *Generator) attempt(rng *rand.Rand, occ *Occupancy) (*Result, error) {
	t := g.tuning

	points := SampleKeypoints(rng, occ.Size(), t)
	if len(points) < t.PCount {
		return nil, fmt.Errorf("%w: %d of %d keypoints", ErrSamplingExhausted, len(points), t.PCount)
	}

	ring, err := OrderRing(rng, points, t)
	if err != nil {
		return nil, err
	}

	occ.Reset(ring)
	var (
		steps     []Step
		crossings int
		entry     Heading
	)
	for i := range ring {
		req := SegmentRequest{
			From:      ring[i],
			To:        ring[(i+1)%len(ring)],
			Entry:     entry,
			Crossings: crossings,
		}
		if i == len(ring)-1 {
			req.Exit = leadingRun(steps)
		}
		seg, err := FindSegment(rng, occ, req, t)
		if err != nil {
			return nil, fmt.Errorf("segment %d %v->%v: %w", i, req.From, req.To, err)
		}
		occ.Mark(seg.Steps, seg.Turns)
		steps = append(steps, seg.Steps...)
		crossings = seg.Crossings
		entry = seg.Heading
	}

	tiles, err := Classify(steps)
	if err != nil {
		return nil, err
	}
	return &Result{
		Tiles:     tiles,
		Keypoints: points,
		Ring:      ring,
		Crossings: crossings,
	}, nil
}

// leadingRun returns the direction of the first step and how many steps in a
// row share it.
func leadingRun(steps []Step) Heading {
	if len(steps) == 0 {
		return Heading{}
	}
	h := Heading{Dir: steps[0].Dir}
	for _, s := range steps {
		if s.Dir != h.Dir {
			break
		}
		h.Run++
	}
	return h
}

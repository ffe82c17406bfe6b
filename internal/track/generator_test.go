package track

import (
	"errors"
	"math"
	"slices"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"
)

// checkLoop asserts the loop properties every successful result must have.
func checkLoop(t *testing.T, res *Result, tuning Tuning) LoopStats {
	t.Helper()
	stats, err := Analyze(res.Tiles)
	if err != nil {
		t.Fatalf("result is not a valid loop: %v", err)
	}
	if stats.Crossings > tuning.MaxCross {
		t.Errorf("loop has %d crossings, limit %d", stats.Crossings, tuning.MaxCross)
	}
	if stats.Crossings != res.Crossings {
		t.Errorf("measured %d crossings, generator reported %d", stats.Crossings, res.Crossings)
	}
	if stats.LongestStraight > tuning.MaxStraight {
		t.Errorf("straight run %d exceeds %d", stats.LongestStraight, tuning.MaxStraight)
	}
	if c := CountCrossings(res.Ring); c > tuning.MaxCross {
		t.Errorf("ring has %d crossings, limit %d", c, tuning.MaxCross)
	}

	onLoop := make(map[Coord]bool, len(res.Tiles))
	for _, tl := range res.Tiles {
		onLoop[Coord{tl.X, tl.Y}] = true
	}
	for _, k := range res.Ring {
		if !onLoop[k] {
			t.Errorf("keypoint %v is not on the loop", k)
		}
	}
	return stats
}

func TestGenerate_SeedTrio(t *testing.T) {
	tuning := Tuning{
		NormCenter:  0.5,
		PCount:      3,
		MinD:        0.1,
		MaxTries:    10,
		MaxCross:    0,
		MaxStraight: 3,
		Randomness:  0,
	}
	gen := NewGenerator(tuning, zaptest.NewLogger(t))

	for seed := uint64(1); seed <= 6; seed++ {
		res, err := gen.Generate(newRand(seed), 10)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if res.Attempts != 1 {
			t.Errorf("seed %d: took %d attempts, want 1", seed, res.Attempts)
		}
		stats := checkLoop(t, res, tuning)
		if stats.Length != 6 {
			t.Errorf("seed %d: loop length %d, want the minimal 6", seed, stats.Length)
		}
	}
}

func TestGenerate_Scenario(t *testing.T) {
	tuning := baseTuning()
	gen := NewGenerator(tuning, zaptest.NewLogger(t))

	successes := 0
	for seed := uint64(1); seed <= 8; seed++ {
		res, err := gen.Generate(newRand(seed), 20)
		if err != nil {
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("seed %d: unexpected error %v", seed, err)
			}
			continue
		}
		successes++
		stats := checkLoop(t, res, tuning)

		if len(res.Keypoints) != tuning.PCount {
			t.Errorf("seed %d: %d keypoints, want %d", seed, len(res.Keypoints), tuning.PCount)
		}
		perimeter := 0.0
		for i, p := range res.Ring {
			q := res.Ring[(i+1)%len(res.Ring)]
			perimeter += math.Hypot(float64(p.X-q.X), float64(p.Y-q.Y))
		}
		if float64(stats.Length) < perimeter || float64(stats.Length) > 4*perimeter {
			t.Errorf("seed %d: loop length %d outside [%.1f, %.1f]", seed, stats.Length, perimeter, 4*perimeter)
		}
	}
	if successes == 0 {
		t.Fatal("no seed produced a track")
	}
}

func TestGenerate_RandomnessKeepsInvariants(t *testing.T) {
	tuning := baseTuning()
	tuning.Randomness = 0.35
	gen := NewGenerator(tuning, nil)

	for seed := uint64(100); seed < 106; seed++ {
		res, err := gen.Generate(newRand(seed), 24)
		if err != nil {
			continue
		}
		checkLoop(t, res, tuning)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	tuning := baseTuning()
	tuning.Randomness = 0.2
	gen := NewGenerator(tuning, nil)

	a, errA := gen.Generate(newRand(77), 20)
	b, errB := gen.Generate(newRand(77), 20)
	if (errA == nil) != (errB == nil) {
		t.Fatalf("same seed, different outcome: %v / %v", errA, errB)
	}
	if errA != nil {
		return
	}
	if !slices.Equal(a.Tiles, b.Tiles) {
		t.Fatal("same seed produced different tiles")
	}
	if !slices.Equal(a.Ring, b.Ring) || a.Attempts != b.Attempts {
		t.Fatal("same seed produced a different ring or attempt count")
	}
}

func TestGenerate_ConcurrentCallsMatchSequential(t *testing.T) {
	gen := NewGenerator(baseTuning(), nil)
	const n = 6

	type outcome struct {
		tiles []Tile
		err   error
	}
	sequential := make([]outcome, n)
	for i := range sequential {
		res, err := gen.Generate(newRand(uint64(i+1)), 20)
		if err == nil {
			sequential[i].tiles = res.Tiles
		}
		sequential[i].err = err
	}

	concurrent := make([]outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := gen.Generate(newRand(uint64(i+1)), 20)
			if err == nil {
				concurrent[i].tiles = res.Tiles
			}
			concurrent[i].err = err
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if (sequential[i].err == nil) != (concurrent[i].err == nil) {
			t.Fatalf("seed %d: outcome differs: %v / %v", i+1, sequential[i].err, concurrent[i].err)
		}
		if !slices.Equal(sequential[i].tiles, concurrent[i].tiles) {
			t.Errorf("seed %d: concurrent tiles differ from sequential", i+1)
		}
	}
}

func TestGenerate_ImpossibleSeparationFails(t *testing.T) {
	tuning := baseTuning()
	tuning.MinD = 0.99
	tuning.MaxTries = 5
	gen := NewGenerator(tuning, zaptest.NewLogger(t))

	_, err := gen.Generate(newRand(1), 20)
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
	if !errors.Is(err, ErrSamplingExhausted) {
		t.Errorf("expected the last attempt error to be ErrSamplingExhausted, got %v", err)
	}
}

func TestGenerate_InvalidTuning(t *testing.T) {
	tests := []struct {
		name   string
		grid   int
		mutate func(*Tuning)
	}{
		{"small grid", 6, func(*Tuning) {}},
		{"too few points", 20, func(t *Tuning) { t.PCount = 2 }},
		{"zero norm center", 20, func(t *Tuning) { t.NormCenter = 0 }},
		{"no tries", 20, func(t *Tuning) { t.MaxTries = 0 }},
		{"negative cross", 20, func(t *Tuning) { t.MaxCross = -1 }},
		{"straight of one", 20, func(t *Tuning) { t.MaxStraight = 1 }},
		{"randomness above one", 20, func(t *Tuning) { t.Randomness = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tuning := baseTuning()
			tt.mutate(&tuning)
			_, err := NewGenerator(tuning, nil).Generate(newRand(1), tt.grid)
			if !errors.Is(err, ErrInvalidTuning) {
				t.Fatalf("expected ErrInvalidTuning, got %v", err)
			}
		})
	}
}

package track

import "fmt"

// LoopStats summarises a finished loop.
type LoopStats struct {
	Length          int `yaml:"length"`
	Turns           int `yaml:"turns"`
	Crossings       int `yaml:"crossings"`
	LongestStraight int `yaml:"longest_straight"`
}

// Analyze checks that tiles form one closed 4-connected loop whose codes match
// its geometry, and measures it. A cell visited twice counts as one crossing.
func Analyze(tiles []Tile) (LoopStats, error) {
	steps, err := StepsOf(tiles)
	if err != nil {
		return LoopStats{}, err
	}
	expect, err := Classify(steps)
	if err != nil {
		return LoopStats{}, err
	}
	for i := range tiles {
		if tiles[i].Code != expect[i].Code {
			return LoopStats{}, fmt.Errorf("%w: tile %d at (%d,%d) is %q, geometry says %q",
				ErrInvalidLoop, i, tiles[i].X, tiles[i].Y, tiles[i].Code, expect[i].Code)
		}
	}

	n := len(steps)
	stats := LoopStats{Length: n}

	seen := make(map[Coord]int, n)
	for _, s := range steps {
		seen[s.Pos]++
		if seen[s.Pos] > 1 {
			stats.Crossings++
		}
	}

	// Start the run scan right after a direction change so no run wraps.
	start := -1
	for i := 0; i < n; i++ {
		if steps[i].Dir != steps[(i+1)%n].Dir {
			stats.Turns++
			if start < 0 {
				start = (i + 1) % n
			}
		}
	}
	if start < 0 {
		return LoopStats{}, fmt.Errorf("%w: loop never turns", ErrInvalidLoop)
	}
	run := 0
	for k := 0; k < n; k++ {
		i := (start + k) % n
		if k > 0 && steps[i].Dir == steps[(i+n-1)%n].Dir {
			run++
		} else {
			run = 1
		}
		stats.LongestStraight = max(stats.LongestStraight, run)
	}
	return stats, nil
}

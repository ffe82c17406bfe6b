package track

import (
	"errors"
	"fmt"

	"github.com/jbeda/geom"
)

// Attempt-local failures. Each one makes the generator discard the attempt and
// start again from keypoint sampling.
var (
	ErrSamplingExhausted  = errors.New("keypoint sampling exhausted")
	ErrNoValidRing        = errors.New("no ring within crossing limit")
	ErrSegmentUnreachable = errors.New("segment target unreachable")
)

// ErrGenerationFailed is returned once every attempt has failed. It wraps the
// last attempt-local error.
var ErrGenerationFailed = errors.New("track generation failed")

// ErrInvalidTuning reports a tuning or grid size the generator cannot work with.
var ErrInvalidTuning = errors.New("invalid track tuning")

// ErrInvalidLoop reports a tile or step sequence that is not a closed 4-connected loop.
var ErrInvalidLoop = errors.New("invalid track loop")

// MinGridSize is the smallest grid that fits the seed keypoints with room to close a loop around them.
const MinGridSize = 7

// Coord is a cell on the track grid.
type Coord struct {
	X int
	Y int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Step returns the neighbouring cell in direction d.
func (c Coord) Step(d Direction) Coord {
	dx, dy := d.Delta()
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

func (c Coord) point() geom.Coord {
	return geom.Coord{X: float64(c.X), Y: float64(c.Y)}
}

func manhattan(a, b Coord) int {
	return abs(b.X-a.X) + abs(b.Y-a.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Direction is a unit move on the grid. The zero value means "no direction",
// used for the start of the very first segment.
type Direction uint8

const (
	NoDirection Direction = iota
	Up
	Down
	Left
	Right
)

var directionDelta = [...][2]int{
	NoDirection: {0, 0},
	Up:          {0, -1},
	Down:        {0, 1},
	Left:        {-1, 0},
	Right:       {1, 0},
}

var directionNames = [...]string{
	NoDirection: "none",
	Up:          "up",
	Down:        "down",
	Left:        "left",
	Right:       "right",
}

// searchOrder is the neighbour expansion order of the segment search.
var searchOrder = [4]Direction{Down, Left, Up, Right}

// Delta returns the (dx, dy) offset of d.
func (d Direction) Delta() (int, int) {
	if int(d) >= len(directionDelta) {
		return 0, 0
	}
	v := directionDelta[d]
	return v[0], v[1]
}

// Horizontal reports whether d moves along the x axis.
func (d Direction) Horizontal() bool {
	return d == Left || d == Right
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	case Right:
		return Left
	}
	return NoDirection
}

func (d Direction) String() string {
	if int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", uint8(d))
	}
	return directionNames[d]
}

// DirectionBetween returns the direction of a single move from a to b, or
// NoDirection when the cells are not 4-adjacent.
func DirectionBetween(a, b Coord) Direction {
	switch (Coord{X: b.X - a.X, Y: b.Y - a.Y}) {
	case Coord{X: 0, Y: -1}:
		return Up
	case Coord{X: 0, Y: 1}:
		return Down
	case Coord{X: -1, Y: 0}:
		return Left
	case Coord{X: 1, Y: 0}:
		return Right
	}
	return NoDirection
}

// Step is one element of a generated path: the cell and the direction of
// travel into it.
type Step struct {
	Pos Coord
	Dir Direction
}

// Tile is a classified track cell.
type Tile struct {
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
	Code string `yaml:"code"`
}

// Tuning holds the generator parameters. MaxTries bounds keypoint sampling,
// ring ordering and whole-pipeline retries alike.
type Tuning struct {
	NormCenter  float64 // fraction of the grid used as the dense sampling square
	PCount      int     // target keypoint count, seeds included
	MinD        float64 // minimum keypoint separation as a fraction of the grid size
	MaxTries    int
	MaxCross    int     // tolerated self-intersections of the ring and of the loop
	MaxStraight int     // longest run of moves in one direction
	Randomness  float64 // probability of shuffling the search frontier on push
}

// Validate checks the tuning against a grid size.
func (t Tuning) Validate(gridSize int) error {
	switch {
	case gridSize < MinGridSize:
		return fmt.Errorf("%w: grid size %d below %d", ErrInvalidTuning, gridSize, MinGridSize)
	case t.NormCenter <= 0 || t.NormCenter > 1:
		return fmt.Errorf("%w: norm center %v outside (0,1]", ErrInvalidTuning, t.NormCenter)
	case t.PCount < len(seedKeypoints):
		return fmt.Errorf("%w: point count %d below %d", ErrInvalidTuning, t.PCount, len(seedKeypoints))
	case t.MinD < 0 || t.MinD > 1:
		return fmt.Errorf("%w: min distance %v outside [0,1]", ErrInvalidTuning, t.MinD)
	case t.MaxTries < 1:
		return fmt.Errorf("%w: max tries %d", ErrInvalidTuning, t.MaxTries)
	case t.MaxCross < 0:
		return fmt.Errorf("%w: max cross %d", ErrInvalidTuning, t.MaxCross)
	case t.MaxStraight < 2:
		return fmt.Errorf("%w: max straight %d below 2", ErrInvalidTuning, t.MaxStraight)
	case t.Randomness < 0 || t.Randomness > 1:
		return fmt.Errorf("%w: randomness %v outside [0,1]", ErrInvalidTuning, t.Randomness)
	}
	return nil
}

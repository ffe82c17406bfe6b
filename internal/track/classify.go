package track

import "fmt"

var straightCodes = map[Direction]string{
	Up:    "s0",
	Left:  "s1",
	Down:  "s2",
	Right: "s3",
}

type turnKey struct {
	in  Direction
	out Direction
}

var turnCodes = map[turnKey]string{
	{Right, Down}: "t00",
	{Up, Right}:   "t01",
	{Left, Up}:    "t02",
	{Down, Left}:  "t03",
	{Up, Left}:    "t10",
	{Left, Down}:  "t11",
	{Down, Right}: "t12",
	{Right, Up}:   "t13",
}

// TileCode returns the model code of a cell entered in direction in and left in
// direction out.
func TileCode(in, out Direction) (string, error) {
	if in == out {
		if code, ok := straightCodes[in]; ok {
			return code, nil
		}
		return "", fmt.Errorf("%w: no straight piece for %s", ErrInvalidLoop, in)
	}
	if code, ok := turnCodes[turnKey{in: in, out: out}]; ok {
		return code, nil
	}
	return "", fmt.Errorf("%w: no turn piece for %s>%s", ErrInvalidLoop, in, out)
}

// Classify converts a closed path into tiles. Each cell is compared with the
// direction of the following step, wrapping from the last cell to the first.
func Classify(steps []Step) ([]Tile, error) {
	tiles := make([]Tile, len(steps))
	for i, s := range steps {
		next := steps[(i+1)%len(steps)]
		code, err := TileCode(s.Dir, next.Dir)
		if err != nil {
			return nil, fmt.Errorf("tile %d at %v: %w", i, s.Pos, err)
		}
		tiles[i] = Tile{X: s.Pos.X, Y: s.Pos.Y, Code: code}
	}
	return tiles, nil
}

// StepsOf recovers the path of a tile loop from the tile positions.
func StepsOf(tiles []Tile) ([]Step, error) {
	n := len(tiles)
	if n < 4 {
		return nil, fmt.Errorf("%w: %d tiles", ErrInvalidLoop, n)
	}
	steps := make([]Step, n)
	for i, tl := range tiles {
		prev := tiles[(i+n-1)%n]
		pos := Coord{X: tl.X, Y: tl.Y}
		dir := DirectionBetween(Coord{X: prev.X, Y: prev.Y}, pos)
		if dir == NoDirection {
			return nil, fmt.Errorf("%w: tile %d at %v not adjacent to its predecessor", ErrInvalidLoop, i, pos)
		}
		steps[i] = Step{Pos: pos, Dir: dir}
	}
	return steps, nil
}

// Reclassify derives the codes of an existing tile loop from its positions alone.
func Reclassify(tiles []Tile) ([]Tile, error) {
	steps, err := StepsOf(tiles)
	if err != nil {
		return nil, err
	}
	return Classify(steps)
}

package track

// CellState is the usage of a grid cell while segments are stitched together.
type CellState uint8

const (
	CellFree    CellState = 0 // unused
	CellUsed    CellState = 1 // traversed straight by exactly one segment
	CellCrossed CellState = 2 // traversed by two segments
	CellLocked  CellState = 3 // a turn; never entered again
)

// Occupancy tracks per-cell usage for one generation attempt. It is allocated
// once per Generate call and cleared with Reset between attempts.
type Occupancy struct {
	size       int
	cells      []CellState
	horizontal []bool // axis of the first traversal of a used cell
	near       []bool // inside the 3x3 block around a keypoint
	keypoint   []bool
}

// NewOccupancy allocates an empty size x size grid.
func NewOccupancy(size int) *Occupancy {
	n := size * size
	return &Occupancy{
		size:       size,
		cells:      make([]CellState, n),
		horizontal: make([]bool, n),
		near:       make([]bool, n),
		keypoint:   make([]bool, n),
	}
}

// Reset clears all usage and installs the keypoint masks for keypoints.
func (o *Occupancy) Reset(keypoints []Coord) {
	clear(o.cells)
	clear(o.horizontal)
	clear(o.near)
	clear(o.keypoint)
	for _, k := range keypoints {
		if !o.InBounds(k) {
			continue
		}
		o.keypoint[o.index(k)] = true
		for x := max(0, k.X-1); x <= min(o.size-1, k.X+1); x++ {
			for y := max(0, k.Y-1); y <= min(o.size-1, k.Y+1); y++ {
				o.near[x*o.size+y] = true
			}
		}
	}
}

// Size returns the grid side length.
func (o *Occupancy) Size() int {
	return o.size
}

// InBounds reports whether c lies on the grid.
func (o *Occupancy) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < o.size && c.Y < o.size
}

func (o *Occupancy) index(c Coord) int {
	return c.X*o.size + c.Y
}

// State returns the usage of c. Out-of-bounds cells report CellLocked.
func (o *Occupancy) State(c Coord) CellState {
	if !o.InBounds(c) {
		return CellLocked
	}
	return o.cells[o.index(c)]
}

// NearKeypoint reports whether c is a keypoint or one of its 8 neighbours.
func (o *Occupancy) NearKeypoint(c Coord) bool {
	return o.InBounds(c) && o.near[o.index(c)]
}

// IsKeypoint reports whether c is a keypoint.
func (o *Occupancy) IsKeypoint(c Coord) bool {
	return o.InBounds(c) && o.keypoint[o.index(c)]
}

// Crossable reports whether a move in direction d may cross c: the cell is used
// once and the move is perpendicular to its first traversal.
func (o *Occupancy) Crossable(c Coord, d Direction) bool {
	if o.State(c) != CellUsed {
		return false
	}
	return o.horizontal[o.index(c)] != d.Horizontal()
}

// Mark records a finished segment: path cells advance free -> used -> crossed
// and turn cells become locked.
func (o *Occupancy) Mark(steps []Step, turns []Coord) {
	for _, s := range steps {
		if !o.InBounds(s.Pos) {
			continue
		}
		i := o.index(s.Pos)
		switch o.cells[i] {
		case CellFree:
			o.cells[i] = CellUsed
			o.horizontal[i] = s.Dir.Horizontal()
		case CellUsed:
			o.cells[i] = CellCrossed
		}
	}
	for _, c := range turns {
		if o.InBounds(c) {
			o.cells[o.index(c)] = CellLocked
		}
	}
}

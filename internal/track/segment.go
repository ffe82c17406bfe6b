package track

import "math/rand/v2"

// Heading is a direction together with the number of consecutive moves already
// made in it.
type Heading struct {
	Dir Direction
	Run int
}

// SegmentRequest describes one edge of the ring to connect.
type SegmentRequest struct {
	From Coord
	To   Coord
	// Entry is how the loop arrived at From. Zero for the first segment.
	Entry Heading
	// Exit is the run that leaves To, known only when To is the loop start.
	Exit Heading
	// Crossings is the loop's crossing count before this segment.
	Crossings int
}

// Segment is a found path between two keypoints. Steps exclude From and end
// at To.
type Segment struct {
	Steps     []Step
	Turns     []Coord
	Crossings int
	Heading   Heading // direction and run on arrival at To
}

type pathNode struct {
	pos        Coord
	last       Step // previous path element, or From with the entry direction
	straight   int
	crossings  int
	onCrossing bool
	steps      []Step
	turns      []Coord
	dist       int
}

func nodeCloser(a, b *pathNode) bool {
	return a.dist < b.dist
}

// FindSegment searches occ for a 4-connected path from req.From to req.To.
//
// The path never revisits a cell, never runs more than t.MaxStraight moves in
// one direction (including the run carried in req.Entry and, at To, the run in
// req.Exit), never enters a locked or crossed cell, enters cells around
// keypoints only while they are free, and never passes through a keypoint other
// than req.To. A used cell may be crossed straight and perpendicular to its
// first traversal, which costs one crossing; the search never lets the total
// exceed t.MaxCross.
//
// The search is best-first on Manhattan distance to req.To, with the frontier
// shuffled instead of sorted on a push with probability t.Randomness. occ is
// only read; the caller marks the returned segment.
func FindSegment(rng *rand.Rand, occ *Occupancy, req SegmentRequest, t Tuning) (Segment, error) {
	size := occ.Size()
	visited := make([]bool, size*size)
	visited[occ.index(req.From)] = true

	frontier := NewFrontier(rng, t.Randomness, nodeCloser)
	frontier.Push(&pathNode{
		pos:       req.From,
		last:      Step{Pos: req.From, Dir: req.Entry.Dir},
		straight:  req.Entry.Run,
		crossings: req.Crossings,
		dist:      manhattan(req.From, req.To),
	})

	for frontier.Len() > 0 {
		cur, _ := frontier.Pop()
		if cur.pos == req.To {
			return Segment{
				Steps:     cur.steps,
				Turns:     cur.turns,
				Crossings: cur.crossings,
				Heading:   Heading{Dir: cur.last.Dir, Run: cur.straight},
			}, nil
		}

		for _, d := range searchOrder {
			if cur.onCrossing && d != cur.last.Dir {
				continue
			}
			next := cur.pos.Step(d)
			if !occ.InBounds(next) || visited[occ.index(next)] {
				continue
			}

			sameDir := d == cur.last.Dir
			straight := 1
			if sameDir {
				straight = cur.straight + 1
			}
			if straight > t.MaxStraight {
				continue
			}
			if next == req.To && d == req.Exit.Dir && straight+req.Exit.Run > t.MaxStraight {
				continue
			}
			if next != req.To && occ.IsKeypoint(next) {
				continue
			}

			crossing := false
			switch state := occ.State(next); {
			case state == CellLocked || state == CellCrossed:
				continue
			case state != CellFree && occ.NearKeypoint(next):
				continue
			case state == CellUsed:
				if !sameDir || !occ.Crossable(next, d) {
					continue
				}
				crossing = true
			}

			crossings := cur.crossings
			if crossing {
				crossings++
			}
			if crossings > t.MaxCross {
				continue
			}

			turns := cur.turns
			if cur.last.Dir != NoDirection && !sameDir {
				turns = append(turns[:len(turns):len(turns)], cur.last.Pos)
			}

			step := Step{Pos: next, Dir: d}
			visited[occ.index(next)] = true
			frontier.Push(&pathNode{
				pos:        next,
				last:       step,
				straight:   straight,
				crossings:  crossings,
				onCrossing: crossing,
				steps:      append(cur.steps[:len(cur.steps):len(cur.steps)], step),
				turns:      turns,
				dist:       manhattan(next, req.To),
			})
		}
	}
	return Segment{}, ErrSegmentUnreachable
}

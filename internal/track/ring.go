package track

import (
	"math/rand/v2"

	"github.com/jbeda/geom"
)

// OrderRing shuffles points until the closed polygon through them has at most
// t.MaxCross self-intersections. It gives up with ErrNoValidRing after
// t.MaxTries shuffles. The input slice is not modified.
func OrderRing(rng *rand.Rand, points []Coord, t Tuning) ([]Coord, error) {
	ring := make([]Coord, len(points))
	for i := 0; i < t.MaxTries; i++ {
		copy(ring, points)
		rng.Shuffle(len(ring), func(a, b int) {
			ring[a], ring[b] = ring[b], ring[a]
		})
		if CountCrossings(ring) <= t.MaxCross {
			return ring, nil
		}
	}
	return nil, ErrNoValidRing
}

// CountCrossings returns the number of properly intersecting edge pairs of the
// closed polygon ring. Edges sharing an endpoint never count.
func CountCrossings(ring []Coord) int {
	n := len(ring)
	count := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if (i+1)%n == j || (j+1)%n == i {
				continue
			}
			if segmentsCross(ring[i], ring[(i+1)%n], ring[j], ring[(j+1)%n]) {
				count++
			}
		}
	}
	return count
}

// segmentsCross reports whether p1p2 and p3p4 straddle each other.
func segmentsCross(p1, p2, p3, p4 Coord) bool {
	a1, a2, b1, b2 := p1.point(), p2.point(), p3.point(), p4.point()
	return ccw(a1, b1, b2) != ccw(a2, b1, b2) && ccw(a1, a2, b1) != ccw(a1, a2, b2)
}

// ccw reports whether a, b, c turn counter-clockwise. Collinear points do not.
func ccw(a, b, c geom.Coord) bool {
	ab := b.Minus(a)
	ac := c.Minus(a)
	return ac.Y*ab.X > ab.Y*ac.X
}

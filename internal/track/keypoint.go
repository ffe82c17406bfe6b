package track

import "math/rand/v2"

// seedKeypoints start every keypoint set. They sit along the top edge and are
// exempt from the separation rule, so even a heavily rejected sampling round
// still yields a loop.
var seedKeypoints = [...]Coord{{X: 3, Y: 0}, {X: 4, Y: 0}, {X: 5, Y: 0}}

// SampleKeypoints scatters up to t.PCount anchor cells on a gridSize grid.
//
// Candidates are drawn inside a square of side gridSize*NormCenter; a candidate
// in the outer half of that square along an axis is pushed outward by
// gridSize*(1-NormCenter) on that axis. A candidate closer than gridSize*MinD to
// any accepted point is rejected. Both the per-point and the overall rounds are
// bounded by t.MaxTries, so the result may hold fewer than t.PCount points.
func SampleKeypoints(rng *rand.Rand, gridSize int, t Tuning) []Coord {
	points := make([]Coord, 0, max(t.PCount, len(seedKeypoints)))
	points = append(points, seedKeypoints[:]...)

	span := float64(gridSize) * t.NormCenter
	shift := int(float64(gridSize) * (1 - t.NormCenter))
	minDist := float64(gridSize) * t.MinD

	for i := 0; i < t.MaxTries && len(points) < t.PCount; i++ {
		for j := 0; j < t.MaxTries; j++ {
			c := Coord{X: int(rng.Float64() * span), Y: int(rng.Float64() * span)}
			if float64(c.X) > span/2 {
				c.X += shift
			}
			if float64(c.Y) > span/2 {
				c.Y += shift
			}
			if c.X >= gridSize || c.Y >= gridSize || tooClose(points, c, minDist) {
				continue
			}
			points = append(points, c)
			break
		}
	}
	return points
}

func tooClose(points []Coord, c Coord, minDist float64) bool {
	p := c.point()
	for _, q := range points {
		if q.point().DistanceFrom(p) < minDist {
			return true
		}
	}
	return false
}

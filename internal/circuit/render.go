package circuit

import (
	"strings"

	"github.com/circuitrace/server/internal/track"
)

// Render draws the circuit as text, one row per grid line: '-' and '|' for
// straights, '+' for turns, '#' for crossings and '@' for keypoints.
func Render(c *Circuit) string {
	size := c.GridSize
	rows := make([][]byte, size)
	for y := range rows {
		rows[y] = []byte(strings.Repeat(".", size))
	}

	visits := make(map[track.Coord]int, len(c.Result.Tiles))
	for _, tl := range c.Result.Tiles {
		if tl.X < 0 || tl.Y < 0 || tl.X >= size || tl.Y >= size {
			continue
		}
		pos := track.Coord{X: tl.X, Y: tl.Y}
		visits[pos]++
		switch {
		case visits[pos] > 1:
			rows[tl.Y][tl.X] = '#'
		case tl.Code == "s1" || tl.Code == "s3":
			rows[tl.Y][tl.X] = '-'
		case tl.Code == "s0" || tl.Code == "s2":
			rows[tl.Y][tl.X] = '|'
		default:
			rows[tl.Y][tl.X] = '+'
		}
	}
	for _, k := range c.Result.Ring {
		if k.X >= 0 && k.Y >= 0 && k.X < size && k.Y < size {
			rows[k.Y][k.X] = '@'
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.Write(row)
		sb.WriteByte('\n')
	}
	return sb.String()
}

package track

import (
	"errors"
	"testing"
)

func tilesAt(cells ...Coord) []Tile {
	tiles := make([]Tile, len(cells))
	for i, c := range cells {
		tiles[i] = Tile{X: c.X, Y: c.Y}
	}
	return tiles
}

func TestAnalyze_Rectangle(t *testing.T) {
	tiles, err := Classify(rectLoop())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	stats, err := Analyze(tiles)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := LoopStats{Length: 6, Turns: 4, Crossings: 0, LongestStraight: 2}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestAnalyze_FigureEight(t *testing.T) {
	raw := tilesAt(
		Coord{2, 0}, Coord{2, 1}, Coord{2, 2}, Coord{2, 3}, Coord{2, 4},
		Coord{1, 4}, Coord{0, 4}, Coord{0, 3}, Coord{0, 2},
		Coord{1, 2}, Coord{2, 2}, Coord{3, 2}, Coord{4, 2},
		Coord{4, 1}, Coord{4, 0}, Coord{3, 0},
	)
	tiles, err := Reclassify(raw)
	if err != nil {
		t.Fatalf("Reclassify: %v", err)
	}
	stats, err := Analyze(tiles)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	want := LoopStats{Length: 16, Turns: 6, Crossings: 1, LongestStraight: 4}
	if stats != want {
		t.Fatalf("stats = %+v, want %+v", stats, want)
	}
}

func TestAnalyze_RejectsWrongCode(t *testing.T) {
	tiles, err := Classify(rectLoop())
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	tiles[0].Code = "s0"
	if _, err := Analyze(tiles); !errors.Is(err, ErrInvalidLoop) {
		t.Fatalf("expected ErrInvalidLoop, got %v", err)
	}
}

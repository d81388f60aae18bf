package coord

import (
	"math"
	"math/rand"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []Coord{
		{0, 0},
		{1, -1},
		{-1, 1},
		{math.MaxInt32, math.MinInt32},
		{math.MinInt32, math.MaxInt32},
		{math.MinInt32, math.MinInt32},
		{32768, -32769}, // outside the 16-bit halves of a packed machine word
	}
	for _, c := range cases {
		if got := Decode(Encode(c)); got != c {
			t.Errorf("Decode(Encode(%v)) = %v", c, got)
		}
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10000; i++ {
		c := Coord{X: int32(rng.Uint32()), Y: int32(rng.Uint32())}
		if got := Decode(Encode(c)); got != c {
			t.Fatalf("Decode(Encode(%v)) = %v", c, got)
		}
	}
}

func TestEncodeDistinct(t *testing.T) {
	seen := make(map[Key]Coord)
	for x := int32(-20); x <= 20; x++ {
		for y := int32(-20); y <= 20; y++ {
			c := Coord{x, y}
			k := Encode(c)
			if prev, dup := seen[k]; dup {
				t.Fatalf("key collision between %v and %v", prev, c)
			}
			seen[k] = c
		}
	}
}

func TestPixelToTileFloorsNegative(t *testing.T) {
	got := PixelToTile(Point{X: -0.5, Y: -33}, 16, 16)
	if got != (Coord{-1, -3}) {
		t.Errorf("PixelToTile = %v, want (-1,-3)", got)
	}
	if p := TileToPixel(Coord{-1, 2}, 16, 8); p != (Point{-16, 16}) {
		t.Errorf("TileToPixel = %v", p)
	}
}

func TestViewToTilesRoundsSizeUp(t *testing.T) {
	r := ViewToTiles(Rect{X: 8, Y: 0, W: 20, H: 16}, 16, 16)
	want := TileRect{MinX: 0, MinY: 0, MaxX: 2, MaxY: 1}
	if r != want {
		t.Errorf("ViewToTiles = %+v, want %+v", r, want)
	}
}

func TestTileRectHalfOpen(t *testing.T) {
	r := TileRect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}.Expand(2)
	if !r.Contains(Coord{11, 11}) {
		t.Error("edge tile inside the buffer should be contained")
	}
	if r.Contains(Coord{12, 0}) {
		t.Error("tile at the exclusive bound should not be contained")
	}
	if !r.Contains(Coord{-2, -2}) || r.Contains(Coord{-3, 0}) {
		t.Error("lower bound should be inclusive")
	}
}

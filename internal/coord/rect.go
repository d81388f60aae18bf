package coord

import "math"

// Point is a continuous world-unit position (pixels).
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned viewport rectangle in world units.
type Rect struct {
	X, Y, W, H float64
}

// TileRect is a half-open tile rectangle: Min inclusive, Max exclusive.
// int64 bounds so that expanding an int32-sized view never overflows.
type TileRect struct {
	MinX, MinY int64
	MaxX, MaxY int64
}

// Contains reports whether c lies inside the half-open rectangle.
func (r TileRect) Contains(c Coord) bool {
	x, y := int64(c.X), int64(c.Y)
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Expand grows every side by n tiles.
func (r TileRect) Expand(n int64) TileRect {
	return TileRect{MinX: r.MinX - n, MinY: r.MinY - n, MaxX: r.MaxX + n, MaxY: r.MaxY + n}
}

func (r TileRect) Empty() bool {
	return r.MinX >= r.MaxX || r.MinY >= r.MaxY
}

// Intersects reports whether two half-open rectangles overlap.
func (r TileRect) Intersects(o TileRect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// PixelToTile floors a world position to the tile that contains it.
func PixelToTile(p Point, tileW, tileH float64) Coord {
	return Coord{
		X: int32(math.Floor(p.X / tileW)),
		Y: int32(math.Floor(p.Y / tileH)),
	}
}

// TileToPixel returns the world position of a tile's top-left corner.
func TileToPixel(c Coord, tileW, tileH float64) Point {
	return Point{X: float64(c.X) * tileW, Y: float64(c.Y) * tileH}
}

// ViewToTiles converts a world-unit viewport into a tile rectangle. The
// origin is floored and the span is ceil(size/tile) tiles counted from it.
// When the origin is not tile aligned the last partially visible tile falls
// outside the span; the buffer margin is what covers it.
func ViewToTiles(r Rect, tileW, tileH float64) TileRect {
	origin := PixelToTile(Point{X: r.X, Y: r.Y}, tileW, tileH)
	w := int64(math.Ceil(r.W / tileW))
	h := int64(math.Ceil(r.H / tileH))
	return TileRect{
		MinX: int64(origin.X),
		MinY: int64(origin.Y),
		MaxX: int64(origin.X) + w,
		MaxY: int64(origin.Y) + h,
	}
}

package spatial

import "github.com/l1jgo/lazytile/internal/coord"

// DefaultCellSize keeps a typical screen-sized query to a handful of cells.
const DefaultCellSize = 32

type cellKey struct {
	cx int64
	cy int64
}

func toCellCoord(v, size int64) int64 {
	if v < 0 {
		return (v - size + 1) / size
	}
	return v / size
}

// Grid buckets entries into fixed-size square cells.
// Accessed only from the loop goroutine, no locks.
type Grid struct {
	cellSize int64
	cells    map[cellKey]map[coord.Key]*Entry
	entries  map[coord.Key]*Entry
}

func NewGrid(cellSize int) *Grid {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: int64(cellSize),
		cells:    make(map[cellKey]map[coord.Key]*Entry),
		entries:  make(map[coord.Key]*Entry, 256),
	}
}

func (g *Grid) key(c coord.Coord) cellKey {
	return cellKey{cx: toCellCoord(int64(c.X), g.cellSize), cy: toCellCoord(int64(c.Y), g.cellSize)}
}

func (g *Grid) InsertOrGet(c coord.Coord) *Set {
	k := coord.Encode(c)
	if e, ok := g.entries[k]; ok {
		return e.Set
	}
	e := &Entry{Coord: c, Set: NewSet()}
	g.entries[k] = e
	ck := g.key(c)
	cell := g.cells[ck]
	if cell == nil {
		cell = make(map[coord.Key]*Entry)
		g.cells[ck] = cell
	}
	cell[k] = e
	return e.Set
}

func (g *Grid) Get(c coord.Coord) (*Set, bool) {
	e, ok := g.entries[coord.Encode(c)]
	if !ok {
		return nil, false
	}
	return e.Set, true
}

func (g *Grid) BatchInsert(cs []coord.Coord) []*Set {
	out := make([]*Set, len(cs))
	for i, c := range cs {
		out[i] = g.InsertOrGet(c)
	}
	return out
}

// RangeQuery walks the cells overlapping r, or the occupied cells when there
// are fewer of those (a far zoomed-out view over sparse content).
func (g *Grid) RangeQuery(r coord.TileRect) []Entry {
	if r.Empty() || len(g.entries) == 0 {
		return nil
	}
	cx0 := toCellCoord(r.MinX, g.cellSize)
	cy0 := toCellCoord(r.MinY, g.cellSize)
	cx1 := toCellCoord(r.MaxX-1, g.cellSize)
	cy1 := toCellCoord(r.MaxY-1, g.cellSize)

	var out []Entry
	w, h := cx1-cx0+1, cy1-cy0+1
	occupied := int64(len(g.cells))
	if w > occupied || h > occupied || w*h > occupied {
		for ck, cell := range g.cells {
			if ck.cx < cx0 || ck.cx > cx1 || ck.cy < cy0 || ck.cy > cy1 {
				continue
			}
			out = appendCell(out, cell, r)
		}
		return out
	}
	for cx := cx0; cx <= cx1; cx++ {
		for cy := cy0; cy <= cy1; cy++ {
			if cell := g.cells[cellKey{cx: cx, cy: cy}]; cell != nil {
				out = appendCell(out, cell, r)
			}
		}
	}
	return out
}

func appendCell(out []Entry, cell map[coord.Key]*Entry, r coord.TileRect) []Entry {
	for _, e := range cell {
		if r.Contains(e.Coord) {
			out = append(out, *e)
		}
	}
	return out
}

func (g *Grid) RemoveWhere(c coord.Coord, pred func(Entry) bool) bool {
	k := coord.Encode(c)
	e, ok := g.entries[k]
	if !ok || (pred != nil && !pred(*e)) {
		return false
	}
	delete(g.entries, k)
	ck := g.key(c)
	if cell := g.cells[ck]; cell != nil {
		delete(cell, k)
		if len(cell) == 0 {
			delete(g.cells, ck)
		}
	}
	return true
}

func (g *Grid) Len() int { return len(g.entries) }

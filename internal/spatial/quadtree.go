package spatial

import "github.com/l1jgo/lazytile/internal/coord"

// leafCapacity is the number of entries a leaf holds before it splits.
const leafCapacity = 8

// quadNode covers the square [x0, x0+size) × [y0, y0+size). size is a power
// of two; a node of size 1 is always a leaf.
type quadNode struct {
	x0, y0 int64
	size   int64
	kids   *[4]*quadNode
	items  []*Entry
	count  int // entries at or below this node
}

func (n *quadNode) bounds() coord.TileRect {
	return coord.TileRect{MinX: n.x0, MinY: n.y0, MaxX: n.x0 + n.size, MaxY: n.y0 + n.size}
}

func (n *quadNode) contains(x, y int64) bool {
	return x >= n.x0 && x < n.x0+n.size && y >= n.y0 && y < n.y0+n.size
}

// quadrant: bit 0 = east half, bit 1 = south half.
func (n *quadNode) quadrant(x, y int64) int {
	half := n.size / 2
	q := 0
	if x >= n.x0+half {
		q |= 1
	}
	if y >= n.y0+half {
		q |= 2
	}
	return q
}

func (n *quadNode) child(q int) *quadNode {
	if n.kids[q] == nil {
		half := n.size / 2
		n.kids[q] = &quadNode{
			x0:   n.x0 + int64(q&1)*half,
			y0:   n.y0 + int64(q>>1)*half,
			size: half,
		}
	}
	return n.kids[q]
}

func (n *quadNode) insert(e *Entry) {
	n.count++
	if n.kids == nil {
		if len(n.items) < leafCapacity || n.size == 1 {
			n.items = append(n.items, e)
			return
		}
		n.split()
	}
	x, y := int64(e.Coord.X), int64(e.Coord.Y)
	n.child(n.quadrant(x, y)).insert(e)
}

func (n *quadNode) split() {
	items := n.items
	n.items = nil
	n.kids = &[4]*quadNode{}
	for _, it := range items {
		n.child(n.quadrant(int64(it.Coord.X), int64(it.Coord.Y))).insert(it)
	}
}

func (n *quadNode) remove(e *Entry) bool {
	if n.kids == nil {
		for i, it := range n.items {
			if it == e {
				n.items = append(n.items[:i], n.items[i+1:]...)
				n.count--
				return true
			}
		}
		return false
	}
	q := n.quadrant(int64(e.Coord.X), int64(e.Coord.Y))
	c := n.kids[q]
	if c == nil || !c.remove(e) {
		return false
	}
	n.count--
	if c.count == 0 {
		n.kids[q] = nil
	}
	if n.count <= leafCapacity {
		n.collapse()
	}
	return true
}

// collapse turns an internal node back into a leaf holding every entry
// beneath it.
func (n *quadNode) collapse() {
	items := make([]*Entry, 0, n.count)
	n.collect(&items)
	n.kids = nil
	n.items = items
}

func (n *quadNode) collect(out *[]*Entry) {
	if n.kids == nil {
		*out = append(*out, n.items...)
		return
	}
	for _, c := range n.kids {
		if c != nil {
			c.collect(out)
		}
	}
}

func (n *quadNode) query(r coord.TileRect, out []Entry) []Entry {
	if n == nil || n.count == 0 || !n.bounds().Intersects(r) {
		return out
	}
	if n.kids == nil {
		for _, it := range n.items {
			if r.Contains(it.Coord) {
				out = append(out, *it)
			}
		}
		return out
	}
	for _, c := range n.kids {
		out = c.query(r, out)
	}
	return out
}

// Quadtree is a region quadtree whose root doubles in size to cover points
// outside its bounds. A side map gives O(1) point lookup.
type Quadtree struct {
	root    *quadNode
	entries map[coord.Key]*Entry
}

func NewQuadtree() *Quadtree {
	return &Quadtree{entries: make(map[coord.Key]*Entry, 256)}
}

// cover grows the root until it contains (x, y).
func (q *Quadtree) cover(x, y int64) {
	if q.root == nil {
		q.root = &quadNode{x0: x, y0: y, size: 1}
		return
	}
	for !q.root.contains(x, y) {
		r := q.root
		parent := &quadNode{x0: r.x0, y0: r.y0, size: r.size * 2, count: r.count}
		qi := 0
		if x < r.x0 {
			parent.x0 = r.x0 - r.size
			qi |= 1
		}
		if y < r.y0 {
			parent.y0 = r.y0 - r.size
			qi |= 2
		}
		if r.count > 0 {
			parent.kids = &[4]*quadNode{}
			parent.kids[qi] = r
		}
		q.root = parent
	}
}

func (q *Quadtree) InsertOrGet(c coord.Coord) *Set {
	k := coord.Encode(c)
	if e, ok := q.entries[k]; ok {
		return e.Set
	}
	e := &Entry{Coord: c, Set: NewSet()}
	q.entries[k] = e
	q.cover(int64(c.X), int64(c.Y))
	q.root.insert(e)
	return e.Set
}

func (q *Quadtree) Get(c coord.Coord) (*Set, bool) {
	e, ok := q.entries[coord.Encode(c)]
	if !ok {
		return nil, false
	}
	return e.Set, true
}

func (q *Quadtree) BatchInsert(cs []coord.Coord) []*Set {
	out := make([]*Set, len(cs))
	for i, c := range cs {
		out[i] = q.InsertOrGet(c)
	}
	return out
}

func (q *Quadtree) RangeQuery(r coord.TileRect) []Entry {
	if r.Empty() || q.root == nil {
		return nil
	}
	return q.root.query(r, nil)
}

func (q *Quadtree) RemoveWhere(c coord.Coord, pred func(Entry) bool) bool {
	k := coord.Encode(c)
	e, ok := q.entries[k]
	if !ok || (pred != nil && !pred(*e)) {
		return false
	}
	delete(q.entries, k)
	q.root.remove(e)
	if q.root.count == 0 {
		q.root = nil
	}
	return true
}

func (q *Quadtree) Len() int { return len(q.entries) }

package spatial

import (
	"errors"
	"fmt"
	"sort"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

var ErrUnknownBackend = errors.New("unknown spatial index backend")

// Set is the descriptor set registered at one coordinate. Callers mutate it
// in place through the pointer returned by InsertOrGet.
type Set struct {
	m map[content.Descriptor]struct{}
}

func NewSet() *Set {
	return &Set{m: make(map[content.Descriptor]struct{}, 2)}
}

// Add reports whether d was not already present.
func (s *Set) Add(d content.Descriptor) bool {
	if _, ok := s.m[d]; ok {
		return false
	}
	s.m[d] = struct{}{}
	return true
}

// Remove reports whether d was present.
func (s *Set) Remove(d content.Descriptor) bool {
	if _, ok := s.m[d]; !ok {
		return false
	}
	delete(s.m, d)
	return true
}

func (s *Set) Has(d content.Descriptor) bool {
	_, ok := s.m[d]
	return ok
}

func (s *Set) Len() int { return len(s.m) }

// Descriptors returns the members sorted by kind then variant.
func (s *Set) Descriptors() []content.Descriptor {
	out := make([]content.Descriptor, 0, len(s.m))
	for d := range s.m {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return content.Less(out[i], out[j]) })
	return out
}

// Entry is one indexed coordinate and its descriptor set.
type Entry struct {
	Coord coord.Coord
	Set   *Set
}

// Index is a dynamic 2D index over coordinates that carry content.
// Not safe for concurrent use.
type Index interface {
	// InsertOrGet returns the set at c, creating the entry if needed.
	InsertOrGet(c coord.Coord) *Set
	// Get returns the set at c without creating it.
	Get(c coord.Coord) (*Set, bool)
	// BatchInsert is the bulk form of InsertOrGet. A coordinate repeated in
	// cs gets a single entry; the returned slice is parallel to cs.
	BatchInsert(cs []coord.Coord) []*Set
	// RangeQuery returns every entry inside the half-open rectangle.
	RangeQuery(r coord.TileRect) []Entry
	// RemoveWhere deletes the entry at c if pred accepts it.
	RemoveWhere(c coord.Coord, pred func(Entry) bool) bool
	// Len is the number of entries.
	Len() int
}

const (
	BackendQuadtree = "quadtree"
	BackendGrid     = "grid"
)

// New creates an index by backend name. cellSize only applies to the grid.
func New(backend string, cellSize int) (Index, error) {
	switch backend {
	case "", BackendQuadtree:
		return NewQuadtree(), nil
	case BackendGrid:
		return NewGrid(cellSize), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

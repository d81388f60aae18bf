package lazy

import (
	"sort"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

// Materialized is one live instance. It keeps the group that created it so
// re-registering its kind under another class cannot misroute the destroy.
type Materialized struct {
	Coord      coord.Coord
	Descriptor content.Descriptor
	Instance   content.Instance
	Group      content.Group
}

// ObjectTable holds the live instances per coordinate. At most one instance
// exists per (coordinate, descriptor).
type ObjectTable struct {
	byCoord map[coord.Key]map[content.Descriptor]*Materialized
	count   int
}

func NewObjectTable() *ObjectTable {
	return &ObjectTable{byCoord: make(map[coord.Key]map[content.Descriptor]*Materialized, 256)}
}

func (t *ObjectTable) Get(k coord.Key, d content.Descriptor) (*Materialized, bool) {
	m, ok := t.byCoord[k][d]
	return m, ok
}

// Put stores m. An instance already stored for the same descriptor is
// overwritten, so callers destroy it first.
func (t *ObjectTable) Put(m *Materialized) {
	k := coord.Encode(m.Coord)
	objs := t.byCoord[k]
	if objs == nil {
		objs = make(map[content.Descriptor]*Materialized, 2)
		t.byCoord[k] = objs
	}
	if _, dup := objs[m.Descriptor]; !dup {
		t.count++
	}
	objs[m.Descriptor] = m
}

// Remove deletes and returns the instance for (k, d).
func (t *ObjectTable) Remove(k coord.Key, d content.Descriptor) (*Materialized, bool) {
	objs := t.byCoord[k]
	m, ok := objs[d]
	if !ok {
		return nil, false
	}
	delete(objs, d)
	t.count--
	if len(objs) == 0 {
		delete(t.byCoord, k)
	}
	return m, true
}

// Take removes and returns every instance at k, ordered by descriptor.
func (t *ObjectTable) Take(k coord.Key) []*Materialized {
	objs := t.byCoord[k]
	if len(objs) == 0 {
		delete(t.byCoord, k)
		return nil
	}
	out := make([]*Materialized, 0, len(objs))
	for _, m := range objs {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return content.Less(out[i].Descriptor, out[j].Descriptor) })
	delete(t.byCoord, k)
	t.count -= len(out)
	return out
}

// Descriptors returns the descriptors live at k.
func (t *ObjectTable) Descriptors(k coord.Key) []content.Descriptor {
	objs := t.byCoord[k]
	out := make([]content.Descriptor, 0, len(objs))
	for d := range objs {
		out = append(out, d)
	}
	return out
}

// Coords returns the keys that have at least one instance.
func (t *ObjectTable) Coords() []coord.Key {
	out := make([]coord.Key, 0, len(t.byCoord))
	for k := range t.byCoord {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len is the number of coordinates with instances.
func (t *ObjectTable) Len() int { return len(t.byCoord) }

// Count is the total number of instances.
func (t *ObjectTable) Count() int { return t.count }

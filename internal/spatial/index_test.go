package spatial

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

func backends() map[string]func() Index {
	return map[string]func() Index{
		"quadtree": func() Index { return NewQuadtree() },
		"grid":     func() Index { return NewGrid(4) },
	}
}

func keysOf(entries []Entry) []coord.Key {
	out := make([]coord.Key, 0, len(entries))
	for _, e := range entries {
		out = append(out, coord.Encode(e.Coord))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestInsertOrGetReturnsSameSet(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			idx := mk()
			a := idx.InsertOrGet(coord.Coord{X: 3, Y: 4})
			a.Add(content.Descriptor{Kind: "tree", Variant: "a"})
			b := idx.InsertOrGet(coord.Coord{X: 3, Y: 4})
			if a != b {
				t.Fatal("InsertOrGet should return the existing set")
			}
			if !b.Has(content.Descriptor{Kind: "tree", Variant: "a"}) {
				t.Error("mutation through the handle should be visible")
			}
			if idx.Len() != 1 {
				t.Errorf("Len = %d, want 1", idx.Len())
			}
		})
	}
}

func TestBatchInsertDeduplicates(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			idx := mk()
			cs := []coord.Coord{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 1}}
			sets := idx.BatchInsert(cs)
			if idx.Len() != 2 {
				t.Fatalf("Len = %d, want 2", idx.Len())
			}
			if sets[0] != sets[2] {
				t.Error("repeated coordinate should map to one set")
			}
			got := idx.RangeQuery(coord.TileRect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10})
			if len(got) != 2 {
				t.Errorf("RangeQuery returned %d entries, want 2", len(got))
			}
		})
	}
}

func TestRangeQueryHalfOpen(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			idx := mk()
			for _, c := range []coord.Coord{{X: 0, Y: 0}, {X: 9, Y: 9}, {X: 10, Y: 5}, {X: 5, Y: 10}, {X: -1, Y: 0}} {
				idx.InsertOrGet(c)
			}
			got := keysOf(idx.RangeQuery(coord.TileRect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}))
			want := keysOf([]Entry{{Coord: coord.Coord{X: 0, Y: 0}}, {Coord: coord.Coord{X: 9, Y: 9}}})
			if len(got) != len(want) {
				t.Fatalf("got %v, want %v", got, want)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("got %v, want %v", got, want)
				}
			}
			if len(idx.RangeQuery(coord.TileRect{MinX: 5, MinY: 5, MaxX: 5, MaxY: 9})) != 0 {
				t.Error("empty rectangle should return nothing")
			}
		})
	}
}

func TestRemoveWhere(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			idx := mk()
			set := idx.InsertOrGet(coord.Coord{X: 2, Y: 2})
			set.Add(content.Descriptor{Kind: "tree", Variant: "a"})

			empty := func(e Entry) bool { return e.Set.Len() == 0 }
			if idx.RemoveWhere(coord.Coord{X: 2, Y: 2}, empty) {
				t.Fatal("non-empty entry should be kept")
			}
			set.Remove(content.Descriptor{Kind: "tree", Variant: "a"})
			if !idx.RemoveWhere(coord.Coord{X: 2, Y: 2}, empty) {
				t.Fatal("empty entry should be removed")
			}
			if _, ok := idx.Get(coord.Coord{X: 2, Y: 2}); ok {
				t.Error("removed entry still reachable by Get")
			}
			if len(idx.RangeQuery(coord.TileRect{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5})) != 0 {
				t.Error("removed entry still returned by RangeQuery")
			}
			if idx.RemoveWhere(coord.Coord{X: 7, Y: 7}, nil) {
				t.Error("removing a missing coordinate should report false")
			}
		})
	}
}

// Cross-check both backends against a linear scan over random content,
// including inserts and removals that force quadtree splits and collapses.
func TestRangeQueryMatchesLinearScan(t *testing.T) {
	for name, mk := range backends() {
		t.Run(name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(42))
			idx := mk()
			live := make(map[coord.Key]coord.Coord)
			for i := 0; i < 3000; i++ {
				c := coord.Coord{X: int32(rng.Intn(400) - 200), Y: int32(rng.Intn(400) - 200)}
				if rng.Intn(4) == 0 {
					idx.RemoveWhere(c, nil)
					delete(live, coord.Encode(c))
					continue
				}
				idx.InsertOrGet(c)
				live[coord.Encode(c)] = c
			}
			if idx.Len() != len(live) {
				t.Fatalf("Len = %d, want %d", idx.Len(), len(live))
			}
			for q := 0; q < 200; q++ {
				x, y := int64(rng.Intn(500)-250), int64(rng.Intn(500)-250)
				r := coord.TileRect{MinX: x, MinY: y, MaxX: x + int64(rng.Intn(120)), MaxY: y + int64(rng.Intn(120))}
				var want []Entry
				for _, c := range live {
					if r.Contains(c) {
						want = append(want, Entry{Coord: c})
					}
				}
				got := keysOf(idx.RangeQuery(r))
				wk := keysOf(want)
				if len(got) != len(wk) {
					t.Fatalf("query %+v: got %d entries, want %d", r, len(got), len(wk))
				}
				for i := range got {
					if got[i] != wk[i] {
						t.Fatalf("query %+v: mismatch at %d", r, i)
					}
				}
			}
		})
	}
}

func TestQuadtreeExtremeCoordinates(t *testing.T) {
	idx := NewQuadtree()
	far := []coord.Coord{{X: 2147483647, Y: -2147483648}, {X: -2147483648, Y: 2147483647}, {X: 0, Y: 0}}
	for _, c := range far {
		idx.InsertOrGet(c)
	}
	all := idx.RangeQuery(coord.TileRect{MinX: -1 << 40, MinY: -1 << 40, MaxX: 1 << 40, MaxY: 1 << 40})
	if len(all) != len(far) {
		t.Errorf("got %d entries, want %d", len(all), len(far))
	}
}

func TestNewBackend(t *testing.T) {
	if _, err := New("quadtree", 0); err != nil {
		t.Error(err)
	}
	if idx, err := New("grid", 16); err != nil || idx == nil {
		t.Error(err)
	}
	if _, err := New("rtree", 0); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}
}

func TestSetDescriptorsSorted(t *testing.T) {
	s := NewSet()
	s.Add(content.Descriptor{Kind: "tree", Variant: "b"})
	s.Add(content.Descriptor{Kind: "rock", Variant: "z"})
	s.Add(content.Descriptor{Kind: "tree", Variant: "a"})
	if s.Add(content.Descriptor{Kind: "tree", Variant: "a"}) {
		t.Error("duplicate Add should report false")
	}
	got := s.Descriptors()
	if got[0].Kind != "rock" || got[1].Variant != "a" || got[2].Variant != "b" {
		t.Errorf("Descriptors() = %v", got)
	}
}

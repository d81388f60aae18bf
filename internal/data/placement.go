package data

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"gopkg.in/yaml.v3"
)

// MaxBlockCells caps the tiles a single block entry may expand to.
const MaxBlockCells = 256 * 256

var (
	ErrBlockTooLarge   = errors.New("block too large")
	ErrBlockOutOfRange = errors.New("block leaves the coordinate range")
)

// PlacementEntry places one descriptor on a tile, or on every tile of a
// W×H block anchored at (X, Y) when W or H is above 1.
type PlacementEntry struct {
	X       int32  `yaml:"x"`
	Y       int32  `yaml:"y"`
	W       int32  `yaml:"w"`
	H       int32  `yaml:"h"`
	Kind    string `yaml:"kind"`
	Variant string `yaml:"variant"`
	Note    string `yaml:"note"`
}

// Placement is one expanded (coordinate, descriptor) pair.
type Placement struct {
	Coord      coord.Coord
	Descriptor content.Descriptor
}

// PlacementTable is the static content layout loaded at boot.
type PlacementTable struct {
	byCoord map[coord.Key][]content.Descriptor
	count   int
}

// LoadPlacementTable loads content_list.yaml.
func LoadPlacementTable(path string) (*PlacementTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content list: %w", err)
	}
	var entries []PlacementEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse content list: %w", err)
	}
	t := &PlacementTable{
		byCoord: make(map[coord.Key][]content.Descriptor, len(entries)),
	}
	for i := range entries {
		if err := t.add(&entries[i]); err != nil {
			return nil, fmt.Errorf("content list entry %d: %w", i, err)
		}
	}
	return t, nil
}

func (t *PlacementTable) add(e *PlacementEntry) error {
	d := content.NewDescriptor(e.Kind, e.Variant)
	if err := content.ValidateKind(d.Kind); err != nil {
		return err
	}
	w, h := e.W, e.H
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	if int64(e.X)+int64(w)-1 > math.MaxInt32 || int64(e.Y)+int64(h)-1 > math.MaxInt32 {
		return fmt.Errorf("%dx%d at (%d,%d): %w", w, h, e.X, e.Y, ErrBlockOutOfRange)
	}
	if int64(w)*int64(h) > MaxBlockCells {
		return fmt.Errorf("%dx%d = %d tiles, limit %d: %w", w, h, int64(w)*int64(h), MaxBlockCells, ErrBlockTooLarge)
	}
	for dy := int32(0); dy < h; dy++ {
		for dx := int32(0); dx < w; dx++ {
			k := coord.Encode(coord.Coord{X: e.X + dx, Y: e.Y + dy})
			if hasDescriptor(t.byCoord[k], d) {
				continue
			}
			t.byCoord[k] = append(t.byCoord[k], d)
			t.count++
		}
	}
	return nil
}

func hasDescriptor(ds []content.Descriptor, d content.Descriptor) bool {
	for _, x := range ds {
		if x == d {
			return true
		}
	}
	return false
}

// At returns the descriptors placed at c.
func (t *PlacementTable) At(c coord.Coord) []content.Descriptor {
	return t.byCoord[coord.Encode(c)]
}

// Placements returns every placement ordered by coordinate key, then
// descriptor.
func (t *PlacementTable) Placements() []Placement {
	keys := make([]coord.Key, 0, len(t.byCoord))
	for k := range t.byCoord {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Placement, 0, t.count)
	for _, k := range keys {
		ds := append([]content.Descriptor(nil), t.byCoord[k]...)
		sort.Slice(ds, func(i, j int) bool { return content.Less(ds[i], ds[j]) })
		for _, d := range ds {
			out = append(out, Placement{Coord: k.Coord(), Descriptor: d})
		}
	}
	return out
}

// Count returns the total number of expanded placements.
func (t *PlacementTable) Count() int {
	return t.count
}

// Coords returns how many distinct coordinates carry content.
func (t *PlacementTable) Coords() int {
	return len(t.byCoord)
}

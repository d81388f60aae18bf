package lazy

import (
	"fmt"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/spatial"
)

func isEmpty(e spatial.Entry) bool { return e.Set.Len() == 0 }

// AddContent registers d at c. Once initialized, c is refreshed so the new
// content appears if c is in view. Adding the same descriptor twice keeps a
// single instance.
func (m *Manager) AddContent(c coord.Coord, d content.Descriptor) error {
	d = d.Normalize()
	if err := content.ValidateKind(d.Kind); err != nil {
		return fmt.Errorf("add content at %s: %w", c, err)
	}
	m.index.InsertOrGet(c).Add(d)
	if m.state != stateInitialized {
		return nil
	}
	return m.RefreshCoord(c)
}

// AddContentBatch registers many placements with one index pass. Repeated
// coordinates share one entry. Nothing is registered if any kind is invalid.
func (m *Manager) AddContentBatch(items []Placement) error {
	if len(items) == 0 {
		return nil
	}
	coords := make([]coord.Coord, len(items))
	descs := make([]content.Descriptor, len(items))
	for i, it := range items {
		d := it.Descriptor.Normalize()
		if err := content.ValidateKind(d.Kind); err != nil {
			return fmt.Errorf("add content batch item %d at %s: %w", i, it.Coord, err)
		}
		coords[i] = it.Coord
		descs[i] = d
	}
	sets := m.index.BatchInsert(coords)
	for i, set := range sets {
		set.Add(descs[i])
	}
	if m.state != stateInitialized {
		return nil
	}
	return m.RefreshCoords(coords)
}

// RemoveContent unregisters d at c and destroys its instance if live.
// Removing something that is not registered is a no-op.
func (m *Manager) RemoveContent(c coord.Coord, d content.Descriptor) error {
	if !m.unregister(c, d.Normalize()) {
		return nil
	}
	if m.state != stateInitialized {
		return nil
	}
	return m.RefreshCoord(c)
}

// RemoveContentBatch unregisters many placements and then rebuilds the view
// with a full refresh.
func (m *Manager) RemoveContentBatch(items []Placement) error {
	removed := 0
	for _, it := range items {
		if m.unregister(it.Coord, it.Descriptor.Normalize()) {
			removed++
		}
	}
	if removed == 0 || m.state != stateInitialized {
		return nil
	}
	return m.Refresh()
}

// unregister drops d from the set at c and prunes the entry once empty.
func (m *Manager) unregister(c coord.Coord, d content.Descriptor) bool {
	set, ok := m.index.Get(c)
	if !ok || !set.Remove(d) {
		return false
	}
	if set.Len() == 0 {
		m.index.RemoveWhere(c, isEmpty)
	}
	return true
}

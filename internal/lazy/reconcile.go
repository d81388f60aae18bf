package lazy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/core/event"
	"go.uber.org/zap"
)

// bounds is the current view in tiles, expanded by the buffer margin.
func (m *Manager) bounds() coord.TileRect {
	return coord.ViewToTiles(m.view, m.tileW, m.tileH).Expand(m.buffer)
}

// Render reconciles the live instances with view: coordinates that left the
// buffered view are torn down, coordinates that entered it are materialized,
// and coordinates that stayed are not touched. A coordinate that fails to
// materialize stays inactive and does not hold back the rest of the view;
// the failures are joined into the returned error.
func (m *Manager) Render(view coord.Rect) error {
	if m.state != stateInitialized {
		m.log.Warn("not rendering before initialized")
		return nil
	}
	m.view = view
	bounds := m.bounds()

	visible := make(map[coord.Key]coord.Coord)
	for _, e := range m.index.RangeQuery(bounds) {
		visible[coord.Encode(e.Coord)] = e.Coord
	}

	vanished := 0
	for k := range m.active {
		if _, still := visible[k]; still {
			continue
		}
		m.teardown(k)
		delete(m.active, k)
		vanished++
	}

	fresh := make([]coord.Key, 0, len(visible))
	for k := range visible {
		if _, known := m.active[k]; !known {
			fresh = append(fresh, k)
		}
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i] < fresh[j] })
	var errs []error
	appeared := 0
	for _, k := range fresh {
		if err := m.sync(k); err != nil {
			errs = append(errs, err)
			continue
		}
		appeared++
	}

	event.Emit(m.bus, event.ViewportApplied{
		Bounds:   bounds,
		Appeared: appeared,
		Vanished: vanished,
		Active:   len(m.active),
	})
	return errors.Join(errs...)
}

// Refresh destroys every instance and rebuilds the current view from scratch.
func (m *Manager) Refresh() error {
	if m.state != stateInitialized {
		m.log.Warn("not refreshing before initialized")
		return nil
	}
	m.destroyAll()
	return m.Render(m.view)
}

// RefreshCoord recomputes a single coordinate against the current view.
func (m *Manager) RefreshCoord(c coord.Coord) error {
	return m.RefreshCoords([]coord.Coord{c})
}

// RefreshCoords recomputes only the given coordinates: all of them leave the
// active set before any is re-evaluated, so one that fails is retried by the
// next viewport pass instead of being skipped as already active. Instances
// whose descriptor is still registered survive, so adding content at a
// visible coordinate does not recreate its neighbours.
func (m *Manager) RefreshCoords(cs []coord.Coord) error {
	if m.state != stateInitialized {
		m.log.Warn("not refreshing coordinates before initialized", zap.Int("coords", len(cs)))
		return nil
	}
	if len(cs) == 0 {
		return nil
	}
	bounds := m.bounds()
	keys := make([]coord.Key, 0, len(cs))
	seen := make(map[coord.Key]struct{}, len(cs))
	for _, c := range cs {
		k := coord.Encode(c)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		delete(m.active, k)
		keys = append(keys, k)
	}

	var errs []error
	for _, k := range keys {
		c := coord.Decode(k)
		set, ok := m.index.Get(c)
		if !ok || set.Len() == 0 || !bounds.Contains(c) {
			m.teardown(k)
			continue
		}
		if err := m.sync(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type planned struct {
	d   content.Descriptor
	gen content.Generator
	g   content.Group
}

// sync makes the instances at k match the descriptors registered there and
// marks k active. Every missing descriptor is resolved before any generator
// runs; on failure the coordinate is torn down and left inactive so that the
// next pass retries it from a clean slate.
func (m *Manager) sync(k coord.Key) error {
	c := coord.Decode(k)
	set, ok := m.index.Get(c)
	if !ok {
		m.teardown(k)
		return nil
	}

	for _, d := range m.table.Descriptors(k) {
		if !set.Has(d) {
			if mat, ok := m.table.Remove(k, d); ok {
				m.destroy(mat)
			}
		}
	}

	var todo []planned
	for _, d := range set.Descriptors() {
		if _, live := m.table.Get(k, d); live {
			continue
		}
		gen, g, err := m.registry.Resolve(d)
		if err != nil {
			m.teardown(k)
			return fmt.Errorf("materialize %s at %s: %w", d, c, err)
		}
		todo = append(todo, planned{d: d, gen: gen, g: g})
	}

	for _, p := range todo {
		inst, err := p.gen(c, p.g, p.d.Variant)
		if err != nil {
			m.teardown(k)
			return fmt.Errorf("generate %s at %s: %w", p.d, c, err)
		}
		m.table.Put(&Materialized{Coord: c, Descriptor: p.d, Instance: inst, Group: p.g})
		event.Emit(m.bus, event.InstanceMaterialized{Coord: c, Descriptor: p.d})
	}
	m.active[k] = struct{}{}
	return nil
}

// teardown destroys every instance at k.
func (m *Manager) teardown(k coord.Key) {
	for _, mat := range m.table.Take(k) {
		m.destroy(mat)
	}
}

func (m *Manager) destroy(mat *Materialized) {
	if mat.Group != nil {
		mat.Group.Destroy(mat.Instance)
	}
	event.Emit(m.bus, event.InstanceDestroyed{Coord: mat.Coord, Descriptor: mat.Descriptor})
}

func (m *Manager) destroyAll() {
	for _, k := range m.table.Coords() {
		m.teardown(k)
	}
	m.active = make(map[coord.Key]struct{}, len(m.active))
}

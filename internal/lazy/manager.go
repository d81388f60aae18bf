// Package lazy materializes grid-anchored content only while its coordinate
// is inside the buffered viewport.
//
// A Manager owns the content registry, the spatial index of registered
// descriptors, the table of live instances and the set of active
// coordinates. Every method runs to completion on the caller's goroutine; the
// manager is driven from the loop goroutine and is not safe for concurrent
// use.
package lazy

import (
	"time"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/core/event"
	coresys "github.com/l1jgo/lazytile/internal/core/system"
	"github.com/l1jgo/lazytile/internal/spatial"
	"github.com/l1jgo/lazytile/internal/viewport"
	"go.uber.org/zap"
)

type state int

const (
	stateUninitialized state = iota
	stateInitialized
	stateDisposed
)

// Options configures a Manager. Zero values fall back to 1×1 tiles, no
// buffer, no throttle, a quadtree index and a no-op logger.
type Options struct {
	TileWidth  float64
	TileHeight float64
	Buffer     int           // margin in tiles around the view
	Throttle   time.Duration // minimum spacing of viewport passes
	Index      spatial.Index
	Groups     content.GroupFactory
	Bus        *event.Bus
	Log        *zap.Logger
}

// Placement is one descriptor at one coordinate.
type Placement struct {
	Coord      coord.Coord
	Descriptor content.Descriptor
}

// Stats is a snapshot of manager sizes.
type Stats struct {
	Entries   int // coordinates carrying content
	Active    int // coordinates in view
	Instances int // live instances
}

type Manager struct {
	registry *content.Registry
	index    spatial.Index
	table    *ObjectTable
	active   map[coord.Key]struct{}

	tileW, tileH float64
	buffer       int64
	throttle     time.Duration

	state   state
	view    coord.Rect
	tracker *viewport.Tracker
	bus     *event.Bus
	log     *zap.Logger
}

func NewManager(opts Options) *Manager {
	if opts.TileWidth <= 0 {
		opts.TileWidth = 1
	}
	if opts.TileHeight <= 0 {
		opts.TileHeight = 1
	}
	if opts.Buffer < 0 {
		opts.Buffer = 0
	}
	if opts.Index == nil {
		opts.Index = spatial.NewQuadtree()
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Manager{
		registry: content.NewRegistry(opts.Groups, opts.Log),
		index:    opts.Index,
		table:    NewObjectTable(),
		active:   make(map[coord.Key]struct{}, 256),
		tileW:    opts.TileWidth,
		tileH:    opts.TileHeight,
		buffer:   int64(opts.Buffer),
		throttle: opts.Throttle,
		bus:      opts.Bus,
		log:      opts.Log,
	}
}

// RegisterContentGenerator binds kind to gen and to the group of class.
// Allowed before and after Initialize.
func (m *Manager) RegisterContentGenerator(kind string, gen content.Generator, class string) error {
	return m.registry.Register(kind, gen, class)
}

// Registry exposes the kind/group bindings for inspection.
func (m *Manager) Registry() *content.Registry { return m.registry }

// Initialize subscribes to src and materializes its current view. A second
// call logs a warning and does nothing.
func (m *Manager) Initialize(src viewport.Source) error {
	switch m.state {
	case stateInitialized:
		m.log.Warn("lazy manager already initialized")
		return nil
	case stateDisposed:
		m.log.Warn("lazy manager disposed, not initializing")
		return nil
	}
	m.state = stateInitialized
	m.tracker = viewport.NewTracker(src, m, m.throttle)
	return m.tracker.Start()
}

// Tracker returns the viewport tracker created by Initialize, or nil.
func (m *Manager) Tracker() *viewport.Tracker { return m.tracker }

func (m *Manager) IsInitialized() bool { return m.state == stateInitialized }

// Dispose tears down the viewport subscription and destroys every instance.
// The manager cannot be initialized again.
func (m *Manager) Dispose() {
	if m.tracker != nil {
		m.tracker.Stop()
	}
	m.destroyAll()
	m.state = stateDisposed
}

// Phase puts viewport reconciliation after the tick's mutations.
func (m *Manager) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Update polls the throttled viewport stream once per tick.
func (m *Manager) Update(_ time.Duration) {
	if m.tracker == nil {
		return
	}
	if err := m.tracker.Poll(); err != nil {
		m.log.Error("viewport pass failed", zap.Error(err))
	}
}

// HasContent reports whether d is registered at c.
func (m *Manager) HasContent(c coord.Coord, d content.Descriptor) bool {
	set, ok := m.index.Get(c)
	return ok && set.Has(d.Normalize())
}

// ContentAt returns the descriptors registered at c, sorted.
func (m *Manager) ContentAt(c coord.Coord) []content.Descriptor {
	set, ok := m.index.Get(c)
	if !ok {
		return nil
	}
	return set.Descriptors()
}

// GetInstance returns the live instance for d at c.
func (m *Manager) GetInstance(c coord.Coord, d content.Descriptor) (content.Instance, bool) {
	mat, ok := m.table.Get(coord.Encode(c), d.Normalize())
	if !ok {
		return nil, false
	}
	return mat.Instance, true
}

// View returns the last viewport rectangle the manager rendered.
func (m *Manager) View() coord.Rect { return m.view }

func (m *Manager) Stats() Stats {
	return Stats{
		Entries:   m.index.Len(),
		Active:    len(m.active),
		Instances: m.table.Count(),
	}
}

package viewport

import (
	"sync"

	"github.com/l1jgo/lazytile/internal/coord"
)

// Source is a push stream of viewport rectangles in world units.
type Source interface {
	// Current returns the latest rectangle.
	Current() coord.Rect
	// Subscribe registers a listener for every subsequent change.
	Subscribe() *Subscription
}

// Subscription delivers rectangles on C. The channel holds one value; a slow
// reader sees the newest rectangle, never a backlog.
type Subscription struct {
	C     <-chan coord.Rect
	close func()
	once  sync.Once
}

// Close detaches the subscription from its source.
func (s *Subscription) Close() {
	s.once.Do(s.close)
}

// Camera is an in-process Source: a screen-sized window over the world with
// scroll and zoom. Mutations may come from the loop goroutine or from feed
// sessions, so state is guarded by a mutex.
type Camera struct {
	mu      sync.Mutex
	width   float64 // screen size in pixels
	height  float64
	scrollX float64
	scrollY float64
	zoom    float64
	minZoom float64
	maxZoom float64
	subs    map[uint64]chan coord.Rect
	nextSub uint64
}

func NewCamera(width, height, minZoom, maxZoom float64) *Camera {
	if minZoom <= 0 {
		minZoom = 1
	}
	if maxZoom < minZoom {
		maxZoom = minZoom
	}
	return &Camera{
		width:   width,
		height:  height,
		zoom:    clamp(1, minZoom, maxZoom),
		minZoom: minZoom,
		maxZoom: maxZoom,
		subs:    make(map[uint64]chan coord.Rect),
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// worldView must be called with mu held.
func (c *Camera) worldView() coord.Rect {
	return coord.Rect{X: c.scrollX, Y: c.scrollY, W: c.width / c.zoom, H: c.height / c.zoom}
}

func (c *Camera) Current() coord.Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.worldView()
}

func (c *Camera) Zoom() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *Camera) Subscribe() *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	ch := make(chan coord.Rect, 1)
	c.subs[id] = ch
	return &Subscription{
		C: ch,
		close: func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		},
	}
}

// publish must be called with mu held.
func (c *Camera) publish() {
	view := c.worldView()
	for _, ch := range c.subs {
		select {
		case ch <- view:
			continue
		default:
		}
		// Replace the unread stale value with the newest one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- view:
		default:
		}
	}
}

func (c *Camera) SetScroll(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollX, c.scrollY = x, y
	c.publish()
}

// Pan scrolls by a world-unit delta.
func (c *Camera) Pan(dx, dy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollX += dx
	c.scrollY += dy
	c.publish()
}

// CenterOn scrolls so that the world point (x, y) is in the middle of the view.
func (c *Camera) CenterOn(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	view := c.worldView()
	c.scrollX = x - view.W/2
	c.scrollY = y - view.H/2
	c.publish()
}

// SetZoom clamps zoom to [minZoom, maxZoom].
func (c *Camera) SetZoom(zoom float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = clamp(zoom, c.minZoom, c.maxZoom)
	c.publish()
}

// Resize changes the screen size, e.g. after a window resize.
func (c *Camera) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.publish()
}

// SetView moves the camera to a world rectangle computed elsewhere (a remote
// camera on the feed). Zoom is derived from the width and clamped, so the
// resulting view can be larger or smaller than r.
func (c *Camera) SetView(r coord.Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollX, c.scrollY = r.X, r.Y
	if r.W > 0 {
		c.zoom = clamp(c.width/r.W, c.minZoom, c.maxZoom)
	}
	c.publish()
}

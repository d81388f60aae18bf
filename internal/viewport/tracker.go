package viewport

import (
	"time"

	"github.com/l1jgo/lazytile/internal/coord"
)

// Renderer consumes delivered viewport rectangles.
type Renderer interface {
	Render(view coord.Rect) error
}

// Tracker throttles a Source into a Renderer. It never blocks: Poll drains
// whatever arrived since the previous call, so it is driven once per loop
// tick from the same goroutine that owns the renderer.
//
// Throttling is leading edge with a trailing flush: the first rectangle after
// a quiet period is delivered at once, later ones inside the window collapse
// into the newest, which is delivered when the window ends. Intermediate
// rectangles are dropped on purpose.
type Tracker struct {
	src      Source
	sink     Renderer
	interval time.Duration
	now      func() time.Time

	sub       *Subscription
	last      time.Time
	delivered bool
	pending   *coord.Rect
}

func NewTracker(src Source, sink Renderer, interval time.Duration) *Tracker {
	return &Tracker{src: src, sink: sink, interval: interval, now: time.Now}
}

// SetClock replaces the time source. For tests.
func (t *Tracker) SetClock(now func() time.Time) {
	t.now = now
}

// Start subscribes and delivers the source's current rectangle immediately.
func (t *Tracker) Start() error {
	if t.sub != nil {
		return nil
	}
	t.sub = t.src.Subscribe()
	return t.deliver(t.src.Current())
}

// Stop detaches from the source. Pending rectangles are discarded.
func (t *Tracker) Stop() {
	if t.sub == nil {
		return
	}
	t.sub.Close()
	t.sub = nil
	t.pending = nil
}

func (t *Tracker) Running() bool { return t.sub != nil }

// Poll drains the subscription and delivers at most what the throttle allows.
func (t *Tracker) Poll() error {
	if t.sub == nil {
		return nil
	}
	for {
		select {
		case r := <-t.sub.C:
			if t.interval <= 0 {
				if err := t.deliver(r); err != nil {
					return err
				}
				continue
			}
			t.pending = &r
		default:
			return t.flush()
		}
	}
}

func (t *Tracker) flush() error {
	if t.pending == nil {
		return nil
	}
	if t.delivered && t.now().Sub(t.last) < t.interval {
		return nil
	}
	r := *t.pending
	t.pending = nil
	return t.deliver(r)
}

func (t *Tracker) deliver(r coord.Rect) error {
	t.last = t.now()
	t.delivered = true
	return t.sink.Render(r)
}

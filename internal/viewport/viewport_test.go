package viewport

import (
	"testing"
	"time"

	"github.com/l1jgo/lazytile/internal/coord"
)

type recorder struct {
	got []coord.Rect
}

func (r *recorder) Render(v coord.Rect) error {
	r.got = append(r.got, v)
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCameraWorldViewAndZoomClamp(t *testing.T) {
	cam := NewCamera(800, 600, 0.5, 2)
	if v := cam.Current(); v != (coord.Rect{W: 800, H: 600}) {
		t.Fatalf("initial view = %+v", v)
	}
	cam.SetZoom(4)
	if cam.Zoom() != 2 {
		t.Errorf("zoom should clamp to 2, got %v", cam.Zoom())
	}
	if v := cam.Current(); v.W != 400 || v.H != 300 {
		t.Errorf("zoomed view = %+v", v)
	}
	cam.SetZoom(0.1)
	if cam.Zoom() != 0.5 {
		t.Errorf("zoom should clamp to 0.5, got %v", cam.Zoom())
	}
	cam.CenterOn(0, 0)
	if v := cam.Current(); v.X != -800 || v.Y != -600 {
		t.Errorf("centered view = %+v", v)
	}
}

func TestSubscriptionKeepsNewest(t *testing.T) {
	cam := NewCamera(100, 100, 1, 1)
	sub := cam.Subscribe()
	defer sub.Close()
	cam.SetScroll(1, 1)
	cam.SetScroll(2, 2)
	cam.Pan(1, 0)
	select {
	case v := <-sub.C:
		if v.X != 3 || v.Y != 2 {
			t.Errorf("expected newest view (3,2), got %+v", v)
		}
	default:
		t.Fatal("no view delivered")
	}
	select {
	case v := <-sub.C:
		t.Fatalf("unexpected backlog %+v", v)
	default:
	}
}

func TestSubscriptionClose(t *testing.T) {
	cam := NewCamera(100, 100, 1, 1)
	sub := cam.Subscribe()
	sub.Close()
	sub.Close()
	cam.SetScroll(5, 5)
	select {
	case v := <-sub.C:
		t.Fatalf("closed subscription received %+v", v)
	default:
	}
}

func TestTrackerStartDeliversCurrent(t *testing.T) {
	cam := NewCamera(100, 100, 1, 1)
	cam.SetScroll(10, 20)
	rec := &recorder{}
	tr := NewTracker(cam, rec, time.Second)
	if err := tr.Start(); err != nil {
		t.Fatal(err)
	}
	if len(rec.got) != 1 || rec.got[0].X != 10 || rec.got[0].Y != 20 {
		t.Fatalf("Start should deliver the current view, got %+v", rec.got)
	}
}

func TestTrackerThrottle(t *testing.T) {
	cam := NewCamera(100, 100, 1, 1)
	rec := &recorder{}
	clk := &fakeClock{t: time.Unix(0, 0)}
	tr := NewTracker(cam, rec, 100*time.Millisecond)
	tr.SetClock(clk.now)
	if err := tr.Start(); err != nil {
		t.Fatal(err)
	}

	// Inside the window: dropped until it ends.
	clk.advance(10 * time.Millisecond)
	cam.SetScroll(1, 0)
	_ = tr.Poll()
	cam.SetScroll(2, 0)
	_ = tr.Poll()
	if len(rec.got) != 1 {
		t.Fatalf("throttled views delivered early: %+v", rec.got)
	}

	// Window over: the newest pending view is flushed, even with no new event.
	clk.advance(100 * time.Millisecond)
	_ = tr.Poll()
	if len(rec.got) != 2 || rec.got[1].X != 2 {
		t.Fatalf("expected trailing delivery of x=2, got %+v", rec.got)
	}

	// Nothing pending: nothing delivered.
	clk.advance(time.Second)
	_ = tr.Poll()
	if len(rec.got) != 2 {
		t.Fatalf("unexpected delivery: %+v", rec.got)
	}

	// Quiet period over: leading edge goes through at once.
	cam.SetScroll(9, 0)
	_ = tr.Poll()
	if len(rec.got) != 3 || rec.got[2].X != 9 {
		t.Fatalf("expected leading delivery of x=9, got %+v", rec.got)
	}
}

func TestTrackerUnthrottled(t *testing.T) {
	cam := NewCamera(100, 100, 1, 1)
	rec := &recorder{}
	tr := NewTracker(cam, rec, 0)
	_ = tr.Start()
	cam.SetScroll(1, 0)
	_ = tr.Poll()
	cam.SetScroll(2, 0)
	_ = tr.Poll()
	if len(rec.got) != 3 {
		t.Fatalf("expected every view delivered, got %+v", rec.got)
	}
}

func TestTrackerStop(t *testing.T) {
	cam := NewCamera(100, 100, 1, 1)
	rec := &recorder{}
	tr := NewTracker(cam, rec, 0)
	_ = tr.Start()
	tr.Stop()
	if tr.Running() {
		t.Error("tracker should not be running after Stop")
	}
	cam.SetScroll(5, 5)
	_ = tr.Poll()
	if len(rec.got) != 1 {
		t.Fatalf("stopped tracker delivered %+v", rec.got)
	}
}

package event

import (
	"testing"

	"github.com/l1jgo/lazytile/internal/coord"
)

func TestBusDeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []InstanceDestroyed
	Subscribe(b, func(ev InstanceDestroyed) { got = append(got, ev) })

	Emit(b, InstanceDestroyed{Coord: coord.Coord{X: 1, Y: 2}})
	if b.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", b.Pending())
	}
	b.DispatchAll()
	if len(got) != 0 {
		t.Fatal("event delivered before buffers swapped")
	}

	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 || got[0].Coord != (coord.Coord{X: 1, Y: 2}) {
		t.Fatalf("got %+v", got)
	}

	// next tick: front buffer was cleared by the swap
	b.SwapBuffers()
	b.DispatchAll()
	if len(got) != 1 {
		t.Fatalf("event delivered twice: %+v", got)
	}
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	made, destroyed := 0, 0
	Subscribe(b, func(InstanceMaterialized) { made++ })
	Subscribe(b, func(InstanceDestroyed) { destroyed++ })
	Emit(b, InstanceMaterialized{})
	Emit(b, InstanceMaterialized{})
	Emit(b, InstanceDestroyed{})
	b.SwapBuffers()
	b.DispatchAll()
	if made != 2 || destroyed != 1 {
		t.Errorf("made=%d destroyed=%d", made, destroyed)
	}
}

func TestEmitNilBus(t *testing.T) {
	var b *Bus
	Emit(b, ViewportApplied{})
}

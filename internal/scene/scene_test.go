package scene

import (
	"testing"

	"github.com/l1jgo/lazytile/internal/coord"
)

func TestPoolGroupReusesHiddenSprites(t *testing.T) {
	s := New(nil)
	g := s.GroupFactory()(ClassPooled).(*PoolGroup)

	h1 := g.Spawn(coord.Coord{X: 1, Y: 1}, "tree_a", 1)
	g.Destroy(h1)
	if sp, _ := s.Sprite(h1); sp.Visible {
		t.Fatal("destroyed pooled sprite should be hidden")
	}
	if g.Idle() != 1 {
		t.Fatalf("Idle = %d, want 1", g.Idle())
	}

	h2 := g.Spawn(coord.Coord{X: 5, Y: 5}, "tree_b", 2)
	if h2 != h1 {
		t.Error("pooled group should reuse the hidden sprite")
	}
	sp, _ := s.Sprite(h2)
	if !sp.Visible || sp.Coord != (coord.Coord{X: 5, Y: 5}) || sp.Texture != "tree_b" {
		t.Errorf("reused sprite not reset: %+v", sp)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	// hiding twice must not put the handle in the idle list twice
	g.Destroy(h2)
	g.Destroy(h2)
	if g.Idle() != 1 {
		t.Errorf("Idle = %d after double destroy, want 1", g.Idle())
	}
}

func TestDestroyGroupFreesOnFlush(t *testing.T) {
	s := New(nil)
	g := s.GroupFactory()("sprite").(*DestroyGroup)

	h := g.Spawn(coord.Coord{}, "rock", 0)
	if !s.Alive(h) {
		t.Fatal("spawned sprite should be alive")
	}
	g.Destroy(h)
	if !s.Alive(h) {
		t.Fatal("sprite should stay allocated until the queue is flushed")
	}
	if n := s.FlushDestroyQueue(); n != 1 {
		t.Fatalf("flushed %d, want 1", n)
	}
	if s.Alive(h) {
		t.Error("sprite should be gone after flush")
	}

	h2 := g.Spawn(coord.Coord{}, "rock", 0)
	if h2.Index() != h.Index() || h2.Generation() == h.Generation() {
		t.Errorf("expected slot reuse with a new generation: old=%x new=%x", h, h2)
	}
	if s.Alive(h) {
		t.Error("stale handle must not alias the reused slot")
	}
}

func TestVisibleCount(t *testing.T) {
	s := New(nil)
	pooled := s.GroupFactory()(ClassPooled).(*PoolGroup)
	hard := s.GroupFactory()("sprite").(*DestroyGroup)
	a := pooled.Spawn(coord.Coord{}, "a", 0)
	hard.Spawn(coord.Coord{}, "b", 0)
	pooled.Destroy(a)
	if s.VisibleCount() != 1 {
		t.Errorf("VisibleCount = %d, want 1", s.VisibleCount())
	}
}

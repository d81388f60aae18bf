package scene

import (
	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
)

// PoolGroup recycles sprites: Destroy hides them (kill-and-hide) and Spawn
// reuses a hidden one before allocating.
type PoolGroup struct {
	scene *Scene
	class string
	idle  []Handle
}

func (g *PoolGroup) Spawn(c coord.Coord, texture string, depth float64) Handle {
	for len(g.idle) > 0 {
		h := g.idle[len(g.idle)-1]
		g.idle = g.idle[:len(g.idle)-1]
		sp, ok := g.scene.sprites[h]
		if !ok {
			continue
		}
		*sp = Sprite{Coord: c, Texture: texture, Depth: depth, Class: g.class, Visible: true}
		return h
	}
	return g.scene.create(&Sprite{Coord: c, Texture: texture, Depth: depth, Class: g.class, Visible: true})
}

func (g *PoolGroup) Destroy(inst content.Instance) {
	h, ok := inst.(Handle)
	if !ok {
		return
	}
	sp, ok := g.scene.sprites[h]
	if !ok || !sp.Visible {
		return
	}
	sp.Visible = false
	g.idle = append(g.idle, h)
}

// Idle is the number of hidden sprites waiting for reuse.
func (g *PoolGroup) Idle() int { return len(g.idle) }

// DestroyGroup frees sprites at the end of the tick.
type DestroyGroup struct {
	scene *Scene
	class string
}

func (g *DestroyGroup) Spawn(c coord.Coord, texture string, depth float64) Handle {
	return g.scene.create(&Sprite{Coord: c, Texture: texture, Depth: depth, Class: g.class, Visible: true})
}

func (g *DestroyGroup) Destroy(inst content.Instance) {
	h, ok := inst.(Handle)
	if !ok || !g.scene.Alive(h) {
		return
	}
	if sp := g.scene.sprites[h]; !sp.Visible {
		return // already queued
	}
	g.scene.MarkForDestruction(h)
}

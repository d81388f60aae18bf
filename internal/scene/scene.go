package scene

import (
	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"go.uber.org/zap"
)

// ClassPooled selects the kill-and-hide group. Every other class gets a
// group that hard-destroys its instances.
const ClassPooled = "pooled"

// Sprite is the drawable state of one handle.
type Sprite struct {
	Coord   coord.Coord
	Texture string
	Depth   float64
	Class   string
	Visible bool
}

// Spawner is implemented by every group this scene hands out. Generators
// receive a content.Group and assert it to Spawner to create sprites.
type Spawner interface {
	Spawn(c coord.Coord, texture string, depth float64) Handle
}

// Scene is a headless stand-in for the render engine: it owns sprites and a
// deferred destruction queue flushed once per tick.
// Accessed only from the loop goroutine, no locks.
type Scene struct {
	pool         *handlePool
	sprites      map[Handle]*Sprite
	destroyQueue []Handle
	log          *zap.Logger
}

func New(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		pool:         newHandlePool(),
		sprites:      make(map[Handle]*Sprite, 256),
		destroyQueue: make([]Handle, 0, 64),
		log:          log,
	}
}

func (s *Scene) create(sp *Sprite) Handle {
	h := s.pool.create()
	s.sprites[h] = sp
	return h
}

// Alive reports whether h refers to a sprite that has not been destroyed.
func (s *Scene) Alive(h Handle) bool {
	_, ok := s.sprites[h]
	return ok && s.pool.alive(h)
}

func (s *Scene) Sprite(h Handle) (*Sprite, bool) {
	sp, ok := s.sprites[h]
	return sp, ok
}

// Len is the number of allocated sprites, hidden pooled ones included.
func (s *Scene) Len() int { return len(s.sprites) }

// VisibleCount is the number of sprites currently shown.
func (s *Scene) VisibleCount() int {
	n := 0
	for _, sp := range s.sprites {
		if sp.Visible {
			n++
		}
	}
	return n
}

// MarkForDestruction queues h for end-of-tick cleanup.
func (s *Scene) MarkForDestruction(h Handle) {
	if sp, ok := s.sprites[h]; ok {
		sp.Visible = false
	}
	s.destroyQueue = append(s.destroyQueue, h)
}

// FlushDestroyQueue destroys all queued sprites and frees their handles.
func (s *Scene) FlushDestroyQueue() int {
	n := len(s.destroyQueue)
	for _, h := range s.destroyQueue {
		delete(s.sprites, h)
		s.pool.destroy(h)
	}
	s.destroyQueue = s.destroyQueue[:0]
	return n
}

// GroupFactory returns the factory the content registry uses to create one
// group per class.
func (s *Scene) GroupFactory() content.GroupFactory {
	return func(class string) content.Group {
		s.log.Debug("建立群組", zap.String("class", class))
		if class == ClassPooled {
			return &PoolGroup{scene: s, class: class}
		}
		return &DestroyGroup{scene: s, class: class}
	}
}

package scripting

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/l1jgo/lazytile/internal/content"
	"github.com/l1jgo/lazytile/internal/coord"
	"github.com/l1jgo/lazytile/internal/scene"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrNoSpawner is returned when a script generator is handed a group that
// cannot create sprites.
var ErrNoSpawner = errors.New("group is not a sprite spawner")

// Sprite is what a Lua generator describes for one coordinate.
type Sprite struct {
	Texture string
	Depth   float64
}

type scriptGen struct {
	class string
	fn    *lua.LFunction
	file  string
}

// Engine wraps a single gopher-lua VM holding the generator scripts.
// Single-goroutine access only (loop goroutine).
type Engine struct {
	vm         *lua.LState
	generators map[string]scriptGen
	loading    string
	log        *zap.Logger
}

// NewEngine creates a Lua engine and loads every script under
// scriptsDir/generators. A missing directory yields an engine with no kinds.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, generators: make(map[string]scriptGen), log: log}
	vm.SetGlobal("generator", vm.NewFunction(e.luaGenerator))

	if err := e.loadDir(filepath.Join(scriptsDir, "generators")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load generator scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		e.loading = path
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	e.loading = ""
	return nil
}

// luaGenerator implements generator(kind, class, fn) for scripts.
func (e *Engine) luaGenerator(L *lua.LState) int {
	kind := L.CheckString(1)
	class := L.CheckString(2)
	fn := L.CheckFunction(3)
	if err := content.ValidateKind(kind); err != nil {
		L.RaiseError("generator %q: %s", kind, err.Error())
		return 0
	}
	if old, dup := e.generators[kind]; dup {
		e.log.Warn("lua generator redefined",
			zap.String("kind", kind),
			zap.String("old_file", old.file),
			zap.String("new_file", e.loading),
		)
	}
	e.generators[kind] = scriptGen{class: class, fn: fn, file: e.loading}
	return 0
}

// Kinds returns the kinds defined by scripts, sorted.
func (e *Engine) Kinds() []string {
	out := make([]string, 0, len(e.generators))
	for k := range e.generators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Class returns the group class a script declared for kind.
func (e *Engine) Class(kind string) (string, bool) {
	g, ok := e.generators[kind]
	return g.class, ok
}

// Generate calls the Lua generator for kind with {x, y, variant}. The script
// returns either a texture string or a table {texture=, depth=}.
func (e *Engine) Generate(kind string, c coord.Coord, variant string) (Sprite, error) {
	g, ok := e.generators[kind]
	if !ok {
		return Sprite{}, fmt.Errorf("lua generator %q: %w", kind, content.ErrGeneratorNotFound)
	}

	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(c.X))
	t.RawSetString("y", lua.LNumber(c.Y))
	t.RawSetString("variant", lua.LString(variant))

	if err := e.vm.CallByParam(lua.P{
		Fn:      g.fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		return Sprite{}, fmt.Errorf("lua generator %q at %s: %w", kind, c, err)
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)

	switch v := result.(type) {
	case lua.LString:
		return Sprite{Texture: string(v)}, nil
	case *lua.LTable:
		return Sprite{
			Texture: lua.LVAsString(v.RawGetString("texture")),
			Depth:   float64(lua.LVAsNumber(v.RawGetString("depth"))),
		}, nil
	}
	return Sprite{}, fmt.Errorf("lua generator %q at %s returned %s", kind, c, result.Type())
}

// Registrar is satisfied by the lazy manager.
type Registrar interface {
	RegisterContentGenerator(kind string, gen content.Generator, class string) error
}

// Bind registers every script kind with r. The produced generators spawn a
// sprite through the group they are given and return its handle.
func (e *Engine) Bind(r Registrar) error {
	for _, kind := range e.Kinds() {
		kind := kind
		gen := func(c coord.Coord, g content.Group, variant string) (content.Instance, error) {
			sp, ok := g.(scene.Spawner)
			if !ok {
				return nil, fmt.Errorf("lua generator %q: %w", kind, ErrNoSpawner)
			}
			s, err := e.Generate(kind, c, variant)
			if err != nil {
				return nil, err
			}
			return sp.Spawn(c, s.Texture, s.Depth), nil
		}
		if err := r.RegisterContentGenerator(kind, gen, e.generators[kind].class); err != nil {
			return fmt.Errorf("bind lua generator %q: %w", kind, err)
		}
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}

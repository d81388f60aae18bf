package content

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/l1jgo/lazytile/internal/coord"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrReservedSeparator = errors.New("kind contains reserved separator " + Separator)
	ErrEmptyKind         = errors.New("empty kind")
	ErrNilGenerator      = errors.New("nil generator")
	ErrGeneratorNotFound = errors.New("generator not found")
	ErrGroupNotFound     = errors.New("generator group not found")
)

// Instance is an opaque handle produced by a generator and owned by the
// render collaborator.
type Instance any

// Group destroys or recycles instances of one class.
type Group interface {
	Destroy(inst Instance)
}

// GroupFactory creates the group for a class. Called at most once per class.
type GroupFactory func(class string) Group

// Generator materializes the content identified by variant at c.
type Generator func(c coord.Coord, g Group, variant string) (Instance, error)

type binding struct {
	gen   Generator
	class string
}

// Registry maps kinds to generators and classes to groups.
// Accessed only from the loop goroutine, no locks.
type Registry struct {
	bindings map[string]binding
	groups   map[string]Group
	newGroup GroupFactory
	log      *zap.Logger
}

func NewRegistry(newGroup GroupFactory, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		bindings: make(map[string]binding),
		groups:   make(map[string]Group),
		newGroup: newGroup,
		log:      log,
	}
}

// ValidateKind rejects kinds that cannot round-trip through the serialized
// "kind:variant" form.
func ValidateKind(kind string) error {
	if kind == "" {
		return ErrEmptyKind
	}
	if strings.Contains(kind, Separator) {
		return fmt.Errorf("kind %q: %w", kind, ErrReservedSeparator)
	}
	return nil
}

// Register binds kind to gen and to the group for class. Registering the
// same kind twice logs a warning and replaces the previous binding.
func (r *Registry) Register(kind string, gen Generator, class string) error {
	kind = norm.NFC.String(kind)
	if err := ValidateKind(kind); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	if gen == nil {
		return fmt.Errorf("register %q: %w", kind, ErrNilGenerator)
	}
	if prev, dup := r.bindings[kind]; dup {
		r.log.Warn("generator kind already registered, replacing",
			zap.String("kind", kind),
			zap.String("old_class", prev.class),
			zap.String("new_class", class),
		)
	}
	r.bindings[kind] = binding{gen: gen, class: class}
	if _, ok := r.groups[class]; !ok && r.newGroup != nil {
		r.groups[class] = r.newGroup(class)
	}
	return nil
}

// Resolve returns the generator and group bound to d.Kind.
func (r *Registry) Resolve(d Descriptor) (Generator, Group, error) {
	b, ok := r.bindings[d.Kind]
	if !ok {
		return nil, nil, fmt.Errorf("kind %q: %w", d.Kind, ErrGeneratorNotFound)
	}
	g, ok := r.groups[b.class]
	if !ok || g == nil {
		return nil, nil, fmt.Errorf("kind %q class %q: %w", d.Kind, b.class, ErrGroupNotFound)
	}
	return b.gen, g, nil
}

func (r *Registry) Has(kind string) bool {
	_, ok := r.bindings[norm.NFC.String(kind)]
	return ok
}

// Kinds returns the registered kinds, sorted.
func (r *Registry) Kinds() []string {
	out := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Classes returns the classes that have a group, sorted.
func (r *Registry) Classes() []string {
	out := make([]string, 0, len(r.groups))
	for c := range r.groups {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

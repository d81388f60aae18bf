package content

import (
	"errors"
	"testing"

	"github.com/l1jgo/lazytile/internal/coord"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type nopGroup struct{ class string }

func (nopGroup) Destroy(Instance) {}

func nopGen(c coord.Coord, _ Group, v string) (Instance, error) { return v, nil }

func newTestRegistry(t *testing.T) (*Registry, *observer.ObservedLogs, *int) {
	t.Helper()
	core, logs := observer.New(zapcore.WarnLevel)
	created := 0
	reg := NewRegistry(func(class string) Group {
		created++
		return nopGroup{class: class}
	}, zap.New(core))
	return reg, logs, &created
}

func TestRegisterRejectsSeparator(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	err := reg.Register("tree:oak", nopGen, "sprite")
	if !errors.Is(err, ErrReservedSeparator) {
		t.Fatalf("expected ErrReservedSeparator, got %v", err)
	}
	if reg.Has("tree:oak") {
		t.Error("rejected kind must not be registered")
	}
}

func TestRegisterRejectsEmptyAndNil(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	if err := reg.Register("", nopGen, "sprite"); !errors.Is(err, ErrEmptyKind) {
		t.Errorf("expected ErrEmptyKind, got %v", err)
	}
	if err := reg.Register("tree", nil, "sprite"); !errors.Is(err, ErrNilGenerator) {
		t.Errorf("expected ErrNilGenerator, got %v", err)
	}
}

func TestDuplicateRegistrationWarnsAndReplaces(t *testing.T) {
	reg, logs, _ := newTestRegistry(t)
	if err := reg.Register("tree", nopGen, "sprite"); err != nil {
		t.Fatal(err)
	}
	second := func(c coord.Coord, _ Group, v string) (Instance, error) { return "second", nil }
	if err := reg.Register("tree", second, "pooled"); err != nil {
		t.Fatalf("duplicate registration should not fail: %v", err)
	}
	if logs.FilterMessage("generator kind already registered, replacing").Len() != 1 {
		t.Errorf("expected one duplicate warning, got %v", logs.All())
	}

	gen, g, err := reg.Resolve(Descriptor{Kind: "tree", Variant: "a"})
	if err != nil {
		t.Fatal(err)
	}
	inst, _ := gen(coord.Coord{}, g, "a")
	if inst != "second" {
		t.Errorf("expected replaced generator, got %v", inst)
	}
	if g.(nopGroup).class != "pooled" {
		t.Errorf("expected group of new class, got %q", g.(nopGroup).class)
	}
}

func TestGroupCreatedOncePerClass(t *testing.T) {
	reg, _, created := newTestRegistry(t)
	for _, kind := range []string{"tree", "rock", "bush"} {
		if err := reg.Register(kind, nopGen, "sprite"); err != nil {
			t.Fatal(err)
		}
	}
	if err := reg.Register("label", nopGen, "text"); err != nil {
		t.Fatal(err)
	}
	if *created != 2 {
		t.Errorf("expected 2 groups, got %d", *created)
	}
	_, g1, _ := reg.Resolve(Descriptor{Kind: "tree"})
	_, g2, _ := reg.Resolve(Descriptor{Kind: "rock"})
	if g1 != g2 {
		t.Error("kinds with the same class should share a group")
	}
	if got := reg.Classes(); len(got) != 2 || got[0] != "sprite" || got[1] != "text" {
		t.Errorf("Classes() = %v", got)
	}
}

func TestResolveUnknownKind(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	_, _, err := reg.Resolve(Descriptor{Kind: "ghost", Variant: "a"})
	if !errors.Is(err, ErrGeneratorNotFound) {
		t.Fatalf("expected ErrGeneratorNotFound, got %v", err)
	}
}

func TestResolveWithoutGroupFactory(t *testing.T) {
	reg := NewRegistry(nil, nil)
	if err := reg.Register("tree", nopGen, "sprite"); err != nil {
		t.Fatal(err)
	}
	_, _, err := reg.Resolve(Descriptor{Kind: "tree"})
	if !errors.Is(err, ErrGroupNotFound) {
		t.Fatalf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestDescriptorParse(t *testing.T) {
	d, ok := ParseDescriptor("tree:oak:tall")
	if !ok || d.Kind != "tree" || d.Variant != "oak:tall" {
		t.Errorf("ParseDescriptor = %+v, %v", d, ok)
	}
	if d.String() != "tree:oak:tall" {
		t.Errorf("String() = %q", d.String())
	}
	if _, ok := ParseDescriptor("tree"); ok {
		t.Error("descriptor without separator should not parse")
	}
}

func TestDescriptorNormalizesToNFC(t *testing.T) {
	composed := NewDescriptor("caf\u00e9", "a")
	decomposed := NewDescriptor("cafe\u0301", "a")
	if composed != decomposed {
		t.Errorf("canonically equivalent kinds should be equal: %q vs %q", composed.Kind, decomposed.Kind)
	}
}

package content

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Separator joins kind and variant when a descriptor is serialized
// (database rows, feed packets, Lua). Kinds may not contain it.
const Separator = ":"

// Descriptor identifies one piece of content at a coordinate: Kind selects
// the registered generator, Variant is the instance key within that kind.
type Descriptor struct {
	Kind    string
	Variant string
}

// NewDescriptor builds a descriptor with NFC-normalized identifiers.
func NewDescriptor(kind, variant string) Descriptor {
	return Descriptor{Kind: norm.NFC.String(kind), Variant: norm.NFC.String(variant)}
}

// Normalize returns d with both identifiers in NFC form.
func (d Descriptor) Normalize() Descriptor {
	return NewDescriptor(d.Kind, d.Variant)
}

func (d Descriptor) String() string {
	return d.Kind + Separator + d.Variant
}

// ParseDescriptor splits on the first separator. The variant may itself
// contain the separator.
func ParseDescriptor(s string) (Descriptor, bool) {
	kind, variant, ok := strings.Cut(s, Separator)
	if !ok {
		return Descriptor{}, false
	}
	return NewDescriptor(kind, variant), true
}

// Less orders descriptors by kind then variant.
func Less(a, b Descriptor) bool {
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	return a.Variant < b.Variant
}

package coord

import "fmt"

// Coord is a discrete grid cell. The declared domain is the full signed
// 32-bit range on each axis.
type Coord struct {
	X int32
	Y int32
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Key encodes X in the upper 32 bits and Y in the lower 32 bits, the same
// packing ecs-style generational ids use for index/generation.
type Key uint64

// Encode packs a coordinate into a Key. Total and injective over int32×int32.
func Encode(c Coord) Key {
	return Key(uint64(uint32(c.X))<<32 | uint64(uint32(c.Y)))
}

// Decode reverses Encode.
func Decode(k Key) Coord {
	return Coord{X: int32(uint32(k >> 32)), Y: int32(uint32(k))}
}

func (k Key) Coord() Coord { return Decode(k) }

func (k Key) String() string { return Decode(k).String() }

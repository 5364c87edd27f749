// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"math/rand/v2"
	"sync/atomic"
)

// AssetID is the opaque 64-bit identifier that links a CPU-side asset to its GPU mirror.
// The zero value means "no asset".
type AssetID uint64

// Path is a filesystem path stored in the renderer parameter bag.
type Path string

// Size is an unsigned count stored in the renderer parameter bag (mip levels, buffer sides).
type Size uint64

// assetSeed is the base of the process-wide identifier sequence, seeded once at start-up.
var assetSeed = rand.Uint64() | 1

// assetCounter is incremented for every generated identifier.
var assetCounter atomic.Uint64

// NewAssetID returns a new process-unique, non-zero AssetID.
// Identifiers are generated by mixing a random seed with a monotonic counter,
// so two calls in the same process never collide.
//
// Returns:
//   - AssetID: the generated identifier
func NewAssetID() AssetID {
	for {
		n := assetCounter.Add(1)
		id := AssetID(mix64(assetSeed + n*0x9e3779b97f4a7c15))
		if id != 0 {
			return id
		}
	}
}

// mix64 is the splitmix64 finalizer. It is a bijection, so distinct counters give distinct ids.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Layout describes interleaved vertex or instance data as an ordered list of attribute widths.
type Layout []uint32

// Size returns the number of attributes in the layout.
func (l Layout) Size() uint32 {
	return uint32(len(l))
}

// Stride returns the sum of all attribute widths, in floats.
func (l Layout) Stride() uint32 {
	var stride uint32
	for _, w := range l {
		stride += w
	}
	return stride
}

// Clone returns a deep copy of the layout.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// Equal reports whether two layouts have identical attribute widths.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

// Package bitset implements the fixed-width bit vectors that encode clades,
// rootsplits, subsplits and parent-child subsplits (PCSS).
//
// A clade over n taxa is an n-bit vector; a subsplit is the 2n-bit
// concatenation of two disjoint clades; a PCSS key is the 3n-bit
// concatenation of a parent subsplit and a child clade. All values are
// treated as immutable once built: every operation returns a fresh Bitset.
//
// Ordering is bit-lexicographic with bit 0 most significant, so two
// traversals that discover the same clade in different child orders always
// canonicalize to the identical key.
package bitset

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"

	bb "github.com/bits-and-blooms/bitset"
)

// Bitset is an immutable fixed-length bit vector.
//
// The zero value is not usable; construct with New, FromString or one of the
// combinators. Mutating methods (Set) are reserved for construction and must
// not be called on values that have been shared.
type Bitset struct {
	b *bb.BitSet
}

// New returns an all-zero Bitset of the given length in bits.
func New(size int) Bitset {
	if size <= 0 {
		panic(fmt.Sprintf("bitset: invalid size %d", size))
	}
	return Bitset{b: bb.New(uint(size))}
}

// Parse parses a bit string such as "01101", rejecting empty input and any
// character other than '0' or '1'. Use it for bit strings from untrusted
// sources, such as deserialized snapshots.
func Parse(s string) (Bitset, error) {
	if len(s) == 0 {
		return Bitset{}, fmt.Errorf("bitset: empty bit string")
	}
	bs := New(len(s))
	for i, c := range s {
		switch c {
		case '1':
			bs.Set(i)
		case '0':
		default:
			return Bitset{}, fmt.Errorf("bitset: invalid bit character %q", c)
		}
	}
	return bs, nil
}

// FromString is Parse for trusted literals; it panics on invalid input.
// Intended for tests and fixtures.
func FromString(s string) Bitset {
	bs, err := Parse(s)
	if err != nil {
		panic(err.Error())
	}
	return bs
}

// Size returns the length of the bitset in bits.
func (bs Bitset) Size() int { return int(bs.b.Len()) }

// Set sets bit i. Construction only; see the type comment.
func (bs Bitset) Set(i int) {
	if i < 0 || i >= bs.Size() {
		panic(fmt.Sprintf("bitset: set %d out of range [0,%d)", i, bs.Size()))
	}
	bs.b.Set(uint(i))
}

// Test reports whether bit i is set.
func (bs Bitset) Test(i int) bool { return bs.b.Test(uint(i)) }

// Count returns the number of set bits (popcount).
func (bs Bitset) Count() int { return int(bs.b.Count()) }

// None reports whether no bit is set.
func (bs Bitset) None() bool { return bs.b.None() }

// Clone returns a copy that is safe to mutate during construction.
func (bs Bitset) Clone() Bitset { return Bitset{b: bs.b.Clone()} }

// Union returns the bitwise OR of bs and other.
func (bs Bitset) Union(other Bitset) Bitset {
	mustSameSize(bs, other)
	return Bitset{b: bs.b.Union(other.b)}
}

// Intersection returns the bitwise AND of bs and other.
func (bs Bitset) Intersection(other Bitset) Bitset {
	mustSameSize(bs, other)
	return Bitset{b: bs.b.Intersection(other.b)}
}

// Disjoint reports whether bs and other share no set bit.
func (bs Bitset) Disjoint(other Bitset) bool {
	return bs.Intersection(other).None()
}

// Complement returns the bitwise NOT of bs within its fixed length.
func (bs Bitset) Complement() Bitset { return Bitset{b: bs.b.Complement()} }

// Equal reports bit-for-bit equality. Bitsets of different lengths are never
// equal.
func (bs Bitset) Equal(other Bitset) bool {
	return bs.b.Len() == other.b.Len() && bs.b.Equal(other.b)
}

// Compare orders bitsets bit-lexicographically: at the first differing
// position, the bitset with the 0 bit is the smaller one. It returns -1, 0,
// or +1. Comparing bitsets of different lengths panics, since that is always
// a logic error in this package's usage.
func (bs Bitset) Compare(other Bitset) int {
	mustSameSize(bs, other)
	wa, wb := bs.b.Bytes(), other.b.Bytes()
	for i := range wa {
		// Bit-reverse so that lower positions compare as more significant.
		ra, rb := bits.Reverse64(wa[i]), bits.Reverse64(wb[i])
		if ra != rb {
			if ra < rb {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Min returns the lexicographically smaller of a and b.
func Min(a, b Bitset) Bitset {
	if b.Compare(a) < 0 {
		return b
	}
	return a
}

// Minorize returns the canonical rootsplit orientation of a clade: the chunk
// that does not contain taxon 0. A split and its complement therefore map to
// the same key.
func (bs Bitset) Minorize() Bitset {
	if bs.Test(0) {
		return bs.Complement()
	}
	return bs
}

// SingletonIndex returns the position of the single set bit, if the bitset
// has popcount exactly one. A singleton clade is a leaf and terminates the
// subsplit recursion.
func (bs Bitset) SingletonIndex() (int, bool) {
	if bs.Count() != 1 {
		return 0, false
	}
	i, ok := bs.b.NextSet(0)
	if !ok {
		return 0, false
	}
	return int(i), true
}

// Key returns a compact byte-string form suitable for use as a map key.
// Length is part of the key, so clades, subsplits and PCSS keys never
// collide with each other.
func (bs Bitset) Key() string {
	words := bs.b.Bytes()
	buf := make([]byte, 4+8*len(words))
	binary.LittleEndian.PutUint32(buf, uint32(bs.b.Len()))
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[4+8*i:], w)
	}
	return string(buf)
}

// FromKey reconstructs a Bitset from the string produced by Key.
func FromKey(key string) (Bitset, error) {
	if len(key) < 4 {
		return Bitset{}, fmt.Errorf("bitset: key too short (%d bytes)", len(key))
	}
	size := binary.LittleEndian.Uint32([]byte(key[:4]))
	words := (size + 63) / 64
	if len(key) != int(4+8*words) {
		return Bitset{}, fmt.Errorf("bitset: key length %d does not match size %d", len(key), size)
	}
	bs := New(int(size))
	raw := []byte(key[4:])
	dst := bs.b.Bytes()
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(raw[8*i:])
	}
	return bs, nil
}

// String renders the bits as a 0/1 string, bit 0 first.
func (bs Bitset) String() string {
	var sb strings.Builder
	sb.Grow(bs.Size())
	for i := 0; i < bs.Size(); i++ {
		if bs.Test(i) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Words exposes the backing words for serialization. The returned slice must
// not be modified.
func (bs Bitset) Words() []uint64 { return bs.b.Bytes() }

// FromWords builds a Bitset of the given bit length from backing words.
func FromWords(size int, words []uint64) (Bitset, error) {
	bs := New(size)
	dst := bs.b.Bytes()
	if len(words) != len(dst) {
		return Bitset{}, fmt.Errorf("bitset: got %d words, want %d for size %d", len(words), len(dst), size)
	}
	copy(dst, words)
	if size%64 != 0 && len(dst) > 0 {
		// Keep tail bits beyond the logical length zeroed so that Equal,
		// Count and Key stay well defined.
		dst[len(dst)-1] &= (1 << (uint(size) % 64)) - 1
	}
	return bs, nil
}

func mustSameSize(a, b Bitset) {
	if a.b.Len() != b.b.Len() {
		panic(fmt.Sprintf("bitset: size mismatch %d vs %d", a.b.Len(), b.b.Len()))
	}
}

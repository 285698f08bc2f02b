package bitset

import (
	"fmt"
	"strings"
)

// Subsplit and PCSS encoding.
//
// A subsplit bitset is the concatenation of two equally sized clade chunks.
// For PCSS parents the chunk order is semantic: chunk 0 is the sister clade
// and chunk 1 is the focal clade being refined. Rotate swaps the two roles.
// The order-free canonical form (SubsplitOf) puts the lexicographically
// smaller chunk first.

// Concat returns the concatenation a‖b.
func Concat(a, b Bitset) Bitset {
	out := New(a.Size() + b.Size())
	copyInto(out, a, 0, false)
	copyInto(out, b, a.Size(), false)
	return out
}

// SubsplitOf returns the canonical subsplit of two disjoint clades: the
// lexicographically smaller chunk first. Both orientations of the same pair
// produce an identical bitset.
func SubsplitOf(a, b Bitset) Bitset {
	mustSameSize(a, b)
	if !a.Disjoint(b) {
		panic(fmt.Sprintf("bitset: subsplit chunks overlap: %s vs %s", a, b))
	}
	if b.Compare(a) < 0 {
		a, b = b, a
	}
	return Concat(a, b)
}

// ParentSubsplit returns the order-significant sister‖focal subsplit used as
// a PCSS parent key. The complemented flags complement the respective chunk
// within the taxon set, which is how "pointing up" virtual root placements
// reuse precomputed subtree clades.
func ParentSubsplit(sister Bitset, sisterComp bool, focal Bitset, focalComp bool) Bitset {
	mustSameSize(sister, focal)
	n := sister.Size()
	out := New(2 * n)
	copyInto(out, sister, 0, sisterComp)
	copyInto(out, focal, n, focalComp)
	return out
}

// Chunk extracts the i-th clade chunk of a bitset made of equally sized
// chunks of the given width.
func (bs Bitset) Chunk(i, width int) Bitset {
	if width <= 0 || bs.Size()%width != 0 || i < 0 || (i+1)*width > bs.Size() {
		panic(fmt.Sprintf("bitset: invalid chunk %d of width %d in size %d", i, width, bs.Size()))
	}
	out := New(width)
	for p, ok := bs.b.NextSet(uint(i * width)); ok && int(p) < (i+1)*width; p, ok = bs.b.NextSet(p + 1) {
		out.Set(int(p) - i*width)
	}
	return out
}

// Rotate swaps the two chunks of a subsplit bitset.
func (bs Bitset) Rotate() Bitset {
	if bs.Size()%2 != 0 {
		panic(fmt.Sprintf("bitset: rotate on odd size %d", bs.Size()))
	}
	half := bs.Size() / 2
	return Concat(bs.Chunk(1, half), bs.Chunk(0, half))
}

// PCSS is a parent-child subsplit pair: one conditional edge of the model,
// refining the parent's focal clade by one child clade.
type PCSS struct {
	// Parent is the sister‖focal subsplit (2n bits).
	Parent Bitset
	// Child is the canonical (lexicographically smaller) chunk of the focal
	// clade's refinement (n bits).
	Child Bitset
}

// NewPCSS builds a PCSS and validates its structural invariants: the child
// must be a non-empty proper subset of the focal chunk.
func NewPCSS(parent, child Bitset) (PCSS, error) {
	if parent.Size() != 2*child.Size() {
		return PCSS{}, fmt.Errorf("bitset: parent size %d does not match child size %d", parent.Size(), child.Size())
	}
	focal := parent.Chunk(1, child.Size())
	if child.None() {
		return PCSS{}, fmt.Errorf("bitset: empty PCSS child")
	}
	if !child.Intersection(focal).Equal(child) {
		return PCSS{}, fmt.Errorf("bitset: PCSS child %s not contained in focal clade %s", child, focal)
	}
	if child.Count() >= focal.Count() {
		return PCSS{}, fmt.Errorf("bitset: PCSS child %s does not properly refine focal clade %s", child, focal)
	}
	return PCSS{Parent: parent, Child: child}, nil
}

// Key returns the 3n-bit map key parent‖child.
func (p PCSS) Key() string { return Concat(p.Parent, p.Child).Key() }

// String renders the PCSS as sister|focal|child bit strings.
func (p PCSS) String() string {
	n := p.Child.Size()
	var sb strings.Builder
	sb.WriteString(p.Parent.Chunk(0, n).String())
	sb.WriteByte('|')
	sb.WriteString(p.Parent.Chunk(1, n).String())
	sb.WriteByte('|')
	sb.WriteString(p.Child.String())
	return sb.String()
}

// copyInto copies src (optionally complemented within its length) into dst
// starting at offset.
func copyInto(dst, src Bitset, offset int, complement bool) {
	if complement {
		src = src.Complement()
	}
	for p, ok := src.b.NextSet(0); ok; p, ok = src.b.NextSet(p + 1) {
		dst.Set(offset + int(p))
	}
}

// Package tree provides the immutable binary-tree topologies consumed by the
// subsplit network: leaves identified by taxon index, internal nodes binary
// except for an optional trifurcation at the root (the standard encoding of
// an unrooted tree).
//
// Nodes are values in the functional sense: constructors canonicalize child
// order, structural hashing and equality are built in, and transformations
// such as Unroot return new topologies instead of mutating shared ones.
package tree

import (
	"fmt"
	"math/bits"
)

// Node is an immutable topology node. Leaves carry a taxon index in [0, n);
// internal nodes carry two (or, at a trifurcating root, three) children
// ordered by their maximum leaf index.
type Node struct {
	children  []*Node
	leafID    uint32
	maxLeafID uint32
	leafCount int
	hash      uint64
}

// Leaf returns the leaf node for the given taxon index.
func Leaf(id uint32) *Node {
	return &Node{
		leafID:    id,
		maxLeafID: id,
		leafCount: 1,
		hash:      mixHash(id),
	}
}

// Join returns an internal node over the given children, ordered by their
// maximum leaf index. Children must have disjoint leaf sets; a tie in the
// maximum leaf index means a taxon appears twice, which is an invariant
// violation.
func Join(children ...*Node) *Node {
	if len(children) < 2 {
		panic("tree: join needs at least two children")
	}
	ordered := make([]*Node, len(children))
	copy(ordered, children)
	// Insertion sort by max leaf index; child counts are 2 or 3.
	for i := 1; i < len(ordered); i++ {
		for j := i; j > 0 && ordered[j].maxLeafID < ordered[j-1].maxLeafID; j-- {
			ordered[j], ordered[j-1] = ordered[j-1], ordered[j]
		}
	}
	n := &Node{children: ordered}
	var h uint64
	for i, c := range ordered {
		if i > 0 && c.maxLeafID == ordered[i-1].maxLeafID {
			panic(fmt.Sprintf("tree: duplicate taxon %d across sibling subtrees", c.maxLeafID))
		}
		n.leafCount += c.leafCount
		h ^= c.hash
	}
	n.maxLeafID = ordered[len(ordered)-1].maxLeafID
	// Rotate after XOR so identical leaf sets in differently shaped subtrees
	// do not collide.
	n.hash = bits.RotateLeft64(h, 1)
	return n
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool { return len(n.children) == 0 }

// Children returns the node's children. Callers must not modify the slice.
func (n *Node) Children() []*Node { return n.children }

// LeafID returns the taxon index of a leaf node.
func (n *Node) LeafID() uint32 {
	if !n.IsLeaf() {
		panic("tree: LeafID on internal node")
	}
	return n.leafID
}

// MaxLeafID returns the maximum taxon index in the node's subtree.
func (n *Node) MaxLeafID() uint32 { return n.maxLeafID }

// LeafCount returns the number of leaves in the node's subtree.
func (n *Node) LeafCount() int { return n.leafCount }

// Hash returns the structural hash of the subtree.
func (n *Node) Hash() uint64 { return n.hash }

// Equal reports structural equality of two topologies.
func (n *Node) Equal(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil || n.hash != other.hash || len(n.children) != len(other.children) {
		return false
	}
	if n.IsLeaf() {
		return n.leafID == other.leafID
	}
	for i, c := range n.children {
		if !c.Equal(other.children[i]) {
			return false
		}
	}
	return true
}

// PreOrder visits the subtree parent-first.
func (n *Node) PreOrder(f func(*Node)) {
	f(n)
	for _, c := range n.children {
		c.PreOrder(f)
	}
}

// PostOrder visits the subtree children-first.
func (n *Node) PostOrder(f func(*Node)) {
	for _, c := range n.children {
		c.PostOrder(f)
	}
	f(n)
}

// LevelOrder visits the subtree breadth-first.
func (n *Node) LevelOrder(f func(*Node)) {
	queue := []*Node{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		f(cur)
		queue = append(queue, cur.children...)
	}
}

// mixHash is a 32-bit integer mixer (Stack Overflow's multiplicative hash)
// spread into the 64-bit hash space.
func mixHash(x uint32) uint64 {
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = ((x >> 16) ^ x) * 0x45d9f3b
	x = (x >> 16) ^ x
	return uint64(x) | uint64(x)<<32
}

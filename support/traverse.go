package support

import (
	"fmt"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// The virtual-rooting traversal.
//
// Every edge of the unrooted topology can serve as a root. Rather than
// re-deriving each of the 2n-3 rooted views from scratch, the traversal
// walks the tree once and emits every distinct (parent subsplit, child)
// pair exactly once, tagged with the region of rooting edges it is visible
// from. Which clade plays the sister role for a given refinement depends
// only on which neighborhood of the edge contains the virtual root, so the
// regions below partition the rooting edges exactly.

type regionKind uint8

const (
	// regionEdge: the single rooting on the tagged node's own edge.
	regionEdge regionKind = iota
	// regionSubtree: every rooting inside the tagged node's subtree,
	// including its own edge.
	regionSubtree
	// regionOutside: every rooting outside both tagged subtrees.
	regionOutside
)

type region struct {
	kind regionKind
	a, b *tree.Node
}

func edgeOnly(n *tree.Node) region   { return region{kind: regionEdge, a: n} }
func inSubtree(n *tree.Node) region  { return region{kind: regionSubtree, a: n} }
func outside(n, s *tree.Node) region { return region{kind: regionOutside, a: n, b: s} }

// regionPositions resolves a region to the rooting-edge positions it covers.
func (a *arena) regionPositions(reg region) []int {
	switch reg.kind {
	case regionEdge:
		return []int{a.pos[reg.a]}
	case regionSubtree:
		return a.subtreePositions(reg.a)
	default:
		excluded := make([]bool, a.nonRoot)
		for _, p := range a.subtreePositions(reg.a) {
			excluded[p] = true
		}
		for _, p := range a.subtreePositions(reg.b) {
			excluded[p] = true
		}
		out := make([]int, 0, a.nonRoot)
		for p := 0; p < a.nonRoot; p++ {
			if !excluded[p] {
				out = append(out, p)
			}
		}
		return out
	}
}

type emitFunc func(parent, child bitset.Bitset, reg region)

// visitPCSS emits every PCSS of the topology exactly once. The topology must
// be trifurcating at the root (canonical unrooted form).
func (a *arena) visitPCSS(emit emitFunc) error {
	ch := a.topology.Children()
	if len(ch) != 3 {
		return fmt.Errorf("support: topology root has %d children, want a trifurcation", len(ch))
	}
	for i := 0; i < 3; i++ {
		a.visitRootTriple(ch[i], ch[(i+1)%3], ch[(i+2)%3], emit)
	}
	for _, c := range ch {
		a.visitBelow(c, emit)
	}
	return nil
}

// visitRootTriple handles node2, a direct child of the root trifurcation,
// with node0 and node1 its two co-children.
func (a *arena) visitRootTriple(node0, node1, node2 *tree.Node, emit emitFunc) {
	// Virtual root on node2's edge, subsplit pointing up.
	emit(
		bitset.ParentSubsplit(a.clade(node2, false), false, a.clade(node2, false), true),
		a.minChild(node0, false, node1, false),
		edgeOnly(node2),
	)
	if node2.IsLeaf() {
		return
	}
	c0, c1 := node2.Children()[0], node2.Children()[1]
	down := a.clade(node2, false)
	// Virtual root in node1.
	emit(bitset.ParentSubsplit(a.clade(node0, false), false, down, false),
		a.minChild(c0, false, c1, false), inSubtree(node1))
	// Virtual root in node0.
	emit(bitset.ParentSubsplit(a.clade(node1, false), false, down, false),
		a.minChild(c0, false, c1, false), inSubtree(node0))
	// Virtual root on node2's edge, subsplit pointing down.
	emit(bitset.ParentSubsplit(down, true, down, false),
		a.minChild(c0, false, c1, false), edgeOnly(node2))
	// Virtual root in c0.
	emit(bitset.ParentSubsplit(a.clade(c1, false), false, down, true),
		a.minChild(node0, false, node1, false), inSubtree(c0))
	// Virtual root in c1.
	emit(bitset.ParentSubsplit(a.clade(c0, false), false, down, true),
		a.minChild(node0, false, node1, false), inSubtree(c1))
}

// visitBelow recurses through the internal structure under a root child,
// presenting every deeper node together with its parent and sister.
func (a *arena) visitBelow(n *tree.Node, emit emitFunc) {
	if n.IsLeaf() {
		return
	}
	c0, c1 := n.Children()[0], n.Children()[1]
	a.visitInternalNode(n, c1, c0, emit)
	a.visitBelow(c0, emit)
	a.visitInternalNode(n, c0, c1, emit)
	a.visitBelow(c1, emit)
}

// visitInternalNode handles one node with a grandparent: parent is its
// parent vertex and sister the other child of that vertex.
func (a *arena) visitInternalNode(parent, sister, node *tree.Node, emit emitFunc) {
	// Virtual root on node's edge, subsplit pointing up.
	emit(
		bitset.ParentSubsplit(a.clade(node, false), false, a.clade(node, false), true),
		a.minChild(parent, true, sister, false),
		edgeOnly(node),
	)
	if node.IsLeaf() {
		return
	}
	c0, c1 := node.Children()[0], node.Children()[1]
	down := a.clade(node, false)
	// Virtual root up the tree.
	emit(bitset.ParentSubsplit(a.clade(sister, false), false, down, false),
		a.minChild(c0, false, c1, false), outside(node, sister))
	// Virtual root in sister.
	emit(bitset.ParentSubsplit(a.clade(parent, false), true, down, false),
		a.minChild(c0, false, c1, false), inSubtree(sister))
	// Virtual root on node's edge, subsplit pointing down.
	emit(bitset.ParentSubsplit(down, true, down, false),
		a.minChild(c0, false, c1, false), edgeOnly(node))
	// Virtual root in c0.
	emit(bitset.ParentSubsplit(a.clade(c1, false), false, down, true),
		a.minChild(sister, false, parent, true), inSubtree(c0))
	// Virtual root in c1.
	emit(bitset.ParentSubsplit(a.clade(c0, false), false, down, true),
		a.minChild(sister, false, parent, true), inSubtree(c1))
}

// minChild canonicalizes a refinement by returning the lexicographically
// smaller of the two (possibly complemented) child clades.
func (a *arena) minChild(n0 *tree.Node, comp0 bool, n1 *tree.Node, comp1 bool) bitset.Bitset {
	return bitset.Min(a.clade(n0, comp0), a.clade(n1, comp1))
}

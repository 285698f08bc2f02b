// Package support builds the shared parameterization of a subsplit network
// over a collection of topologies: it enumerates the rootsplit and
// parent-child subsplit (PCSS) keys implied by every virtual rooting of each
// topology, aggregates weighted counts, and assigns every distinct key a
// stable slot in a flat parameter vector.
package support

import (
	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// arena precomputes, in one post-order pass, the clade bitset of every
// node's subtree, indexed by canonical node position. Every later emission
// is a pure function of these bitsets; nothing is recomputed per rooting.
type arena struct {
	taxa     int
	pos      map[*tree.Node]int
	clades   []bitset.Bitset
	nonRoot  int // number of non-root nodes == number of rooting edges
	topology *tree.Node
}

func newArena(t *tree.Node) *arena {
	n := t.LeafCount()
	pos, total := tree.Positions(t)
	clades := make([]bitset.Bitset, total)
	t.PostOrder(func(node *tree.Node) {
		c := bitset.New(n)
		if node.IsLeaf() {
			c.Set(int(node.LeafID()))
		} else {
			for _, child := range node.Children() {
				c = c.Union(clades[pos[child]])
			}
		}
		clades[pos[node]] = c
	})
	return &arena{
		taxa:     n,
		pos:      pos,
		clades:   clades,
		nonRoot:  total - 1,
		topology: t,
	}
}

// clade returns the subtree clade of a node, complemented when the virtual
// root lies on the far side of the node's edge.
func (a *arena) clade(node *tree.Node, complemented bool) bitset.Bitset {
	c := a.clades[a.pos[node]]
	if complemented {
		return c.Complement()
	}
	return c
}

// rootsplitAt returns the canonical rootsplit for the rooting edge above the
// given node.
func (a *arena) rootsplitAt(node *tree.Node) bitset.Bitset {
	return a.clades[a.pos[node]].Minorize()
}

// subtreePositions returns the rooting-edge positions inside the subtree of
// the given node, including the node's own edge.
func (a *arena) subtreePositions(node *tree.Node) []int {
	var out []int
	node.PreOrder(func(d *tree.Node) {
		out = append(out, a.pos[d])
	})
	return out
}

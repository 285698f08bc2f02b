package support

import (
	"fmt"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// UnrootedRepresentationOf returns, for each of the 2n-3 virtual rootings of
// the topology, the ordered slot sequence describing the tree as rooted on
// that edge: the rooting's rootsplit slot first, then one PCSS slot per
// internal edge of that rooted view. Keys absent from the indexer map to the
// out-of-sample sentinel.
//
// Rootings are indexed by canonical node position of the edge's child node.
func (m *Maps) UnrootedRepresentationOf(t *tree.Node) ([][]int, error) {
	a, err := m.arenaFor(t)
	if err != nil {
		return nil, err
	}
	reps := make([][]int, a.nonRoot)
	t.PreOrder(func(n *tree.Node) {
		if n == t {
			return
		}
		p := a.pos[n]
		reps[p] = append(reps[p], m.IndexOf(a.rootsplitAt(n).Key()))
	})
	err = a.visitPCSS(func(parent, child bitset.Bitset, reg region) {
		idx := m.IndexOf(bitset.Concat(parent, child).Key())
		for _, p := range a.regionPositions(reg) {
			reps[p] = append(reps[p], idx)
		}
	})
	if err != nil {
		return nil, err
	}
	return reps, nil
}

// RootedRepresentationOf returns the single slot sequence of a topology that
// is taken as genuinely rooted (bifurcating root): the rootsplit slot for
// the root edge followed by one PCSS slot per internal edge, in pre-order.
func (m *Maps) RootedRepresentationOf(t *tree.Node) ([]int, error) {
	if len(t.Children()) != 2 {
		return nil, fmt.Errorf("support: rooted topology has %d root children, want 2", len(t.Children()))
	}
	a, err := m.arenaFor(t)
	if err != nil {
		return nil, err
	}
	rep := []int{m.IndexOf(a.rootsplitAt(t.Children()[0]).Key())}
	var walk func(n *tree.Node, sister *tree.Node)
	walk = func(n, sister *tree.Node) {
		if n.IsLeaf() {
			return
		}
		c0, c1 := n.Children()[0], n.Children()[1]
		parent := bitset.ParentSubsplit(a.clade(sister, false), false, a.clade(n, false), false)
		child := a.minChild(c0, false, c1, false)
		rep = append(rep, m.IndexOf(bitset.Concat(parent, child).Key()))
		walk(c0, c1)
		walk(c1, c0)
	}
	walk(t.Children()[0], t.Children()[1])
	walk(t.Children()[1], t.Children()[0])
	return rep, nil
}

func (m *Maps) arenaFor(t *tree.Node) (*arena, error) {
	if t.LeafCount() != m.taxa {
		return nil, fmt.Errorf("support: topology has %d taxa, indexer was built over %d", t.LeafCount(), m.taxa)
	}
	return newArena(t), nil
}

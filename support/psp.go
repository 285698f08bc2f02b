package support

import (
	"fmt"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// PSPIndexer assigns integer slots to the distinct edge splits observed in a
// topology collection and translates between the branches of a concrete
// topology and those split slots. Variational consumers use this to move
// per-branch quantities (branch lengths, gradients) into a shared
// split-indexed parameter space and back.
type PSPIndexer struct {
	taxa   int
	splits []bitset.Bitset
	index  map[string]int
}

// BuildPSPIndexer collects every distinct minorized edge split of the
// topology multiset, in first-seen order.
func BuildPSPIndexer(tc *tree.TopologyCounter) (*PSPIndexer, error) {
	if tc.Len() == 0 {
		return nil, ErrNoTopologies
	}
	p := &PSPIndexer{taxa: tc.TaxonCount(), index: make(map[string]int)}
	for _, e := range tc.Entries() {
		a := newArena(e.Topology)
		e.Topology.PreOrder(func(n *tree.Node) {
			if n == e.Topology {
				return
			}
			split := a.rootsplitAt(n)
			key := split.Key()
			if _, ok := p.index[key]; !ok {
				p.index[key] = len(p.splits)
				p.splits = append(p.splits, split)
			}
		})
	}
	return p, nil
}

// Len returns the number of distinct splits.
func (p *PSPIndexer) Len() int { return len(p.splits) }

// Sentinel returns the reserved slot for splits outside the collection.
func (p *PSPIndexer) Sentinel() int { return len(p.splits) }

// Splits returns the indexed splits in slot order. Callers must not modify
// the slice.
func (p *PSPIndexer) Splits() []bitset.Bitset { return p.splits }

// BranchRepresentationOf maps each branch of the topology (by canonical node
// position of the branch's child node) to its split slot. Unobserved splits
// map to the sentinel.
func (p *PSPIndexer) BranchRepresentationOf(t *tree.Node) ([]int, error) {
	if t.LeafCount() != p.taxa {
		return nil, fmt.Errorf("support: topology has %d taxa, PSP indexer was built over %d", t.LeafCount(), p.taxa)
	}
	a := newArena(t)
	rep := make([]int, a.nonRoot)
	t.PreOrder(func(n *tree.Node) {
		if n == t {
			return
		}
		idx, ok := p.index[a.rootsplitAt(n).Key()]
		if !ok {
			idx = p.Sentinel()
		}
		rep[a.pos[n]] = idx
	})
	return rep, nil
}

// Strings returns the bit-string form of every split, in slot order.
func (p *PSPIndexer) Strings() []string {
	out := make([]string, len(p.splits))
	for i, s := range p.splits {
		out[i] = s.String()
	}
	return out
}

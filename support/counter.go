package support

import (
	"errors"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// ErrNoTopologies is returned when building counters or maps from an empty
// topology multiset.
var ErrNoTopologies = errors.New("support: no topologies loaded")

// RootsplitCounter aggregates weighted rootsplit occurrence counts in
// first-seen order.
type RootsplitCounter struct {
	keys   []bitset.Bitset
	counts map[string]float64
}

// NewRootsplitCounter returns an empty counter.
func NewRootsplitCounter() *RootsplitCounter {
	return &RootsplitCounter{counts: make(map[string]float64)}
}

func (rc *RootsplitCounter) add(split bitset.Bitset, weight float64) {
	key := split.Key()
	if _, ok := rc.counts[key]; !ok {
		rc.keys = append(rc.keys, split)
	}
	rc.counts[key] += weight
}

// Keys returns the distinct rootsplits in first-seen order.
func (rc *RootsplitCounter) Keys() []bitset.Bitset { return rc.keys }

// Count returns the weighted count of a rootsplit.
func (rc *RootsplitCounter) Count(split bitset.Bitset) float64 {
	return rc.counts[split.Key()]
}

// Len returns the number of distinct rootsplits.
func (rc *RootsplitCounter) Len() int { return len(rc.keys) }

// PCSSCounter aggregates weighted child counts grouped by parent subsplit,
// both levels in first-seen order.
type PCSSCounter struct {
	parents  []bitset.Bitset
	children map[string]*childCounter
}

type childCounter struct {
	keys   []bitset.Bitset
	counts map[string]float64
}

// NewPCSSCounter returns an empty counter.
func NewPCSSCounter() *PCSSCounter {
	return &PCSSCounter{children: make(map[string]*childCounter)}
}

func (pc *PCSSCounter) add(parent, child bitset.Bitset, weight float64) {
	pkey := parent.Key()
	cc, ok := pc.children[pkey]
	if !ok {
		cc = &childCounter{counts: make(map[string]float64)}
		pc.children[pkey] = cc
		pc.parents = append(pc.parents, parent)
	}
	ckey := child.Key()
	if _, ok := cc.counts[ckey]; !ok {
		cc.keys = append(cc.keys, child)
	}
	cc.counts[ckey] += weight
}

// Parents returns the distinct parent subsplits in first-seen order.
func (pc *PCSSCounter) Parents() []bitset.Bitset { return pc.parents }

// Children returns the distinct children of a parent in first-seen order.
func (pc *PCSSCounter) Children(parent bitset.Bitset) []bitset.Bitset {
	cc, ok := pc.children[parent.Key()]
	if !ok {
		return nil
	}
	return cc.keys
}

// Count returns the weighted count of a parent-child pair.
func (pc *PCSSCounter) Count(parent, child bitset.Bitset) float64 {
	cc, ok := pc.children[parent.Key()]
	if !ok {
		return 0
	}
	return cc.counts[child.Key()]
}

// TotalChildren returns the number of distinct PCSS pairs.
func (pc *PCSSCounter) TotalChildren() int {
	total := 0
	for _, cc := range pc.children {
		total += len(cc.keys)
	}
	return total
}

// CountRootsplits enumerates every rootsplit of every topology in the
// counter and accumulates weighted counts. Each edge of a topology induces
// exactly one rootsplit, so each distinct rootsplit is counted once per
// topology occurrence, never once per virtual rooting.
func CountRootsplits(tc *tree.TopologyCounter) (*RootsplitCounter, error) {
	if tc.Len() == 0 {
		return nil, ErrNoTopologies
	}
	rc := NewRootsplitCounter()
	for _, e := range tc.Entries() {
		a := newArena(e.Topology)
		w := float64(e.Count)
		e.Topology.PreOrder(func(n *tree.Node) {
			if n == e.Topology {
				return
			}
			rc.add(a.rootsplitAt(n), w)
		})
	}
	return rc, nil
}

// CountPCSS enumerates every PCSS of every topology and accumulates weighted
// counts grouped by parent subsplit. Topologies must be trifurcating at the
// root; the traversal emits each PCSS exactly once per topology.
func CountPCSS(tc *tree.TopologyCounter) (*PCSSCounter, error) {
	if tc.Len() == 0 {
		return nil, ErrNoTopologies
	}
	pc := NewPCSSCounter()
	for _, e := range tc.Entries() {
		a := newArena(e.Topology)
		w := float64(e.Count)
		err := a.visitPCSS(func(parent, child bitset.Bitset, _ region) {
			pc.add(parent, child, w)
		})
		if err != nil {
			return nil, err
		}
	}
	return pc, nil
}

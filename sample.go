package sbn

import (
	"fmt"
	"math"
	"time"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/internal/numeric"
	"github.com/subsplit/sbn/support"
	"github.com/subsplit/sbn/tree"
)

// SampleTopology draws one topology from the trained distribution: a
// rootsplit from the leading block, then recursive refinement of each clade
// by a child drawn from its parent's block until every clade is a single
// taxon. With rooted false the drawn tree is returned in canonical unrooted
// form.
func (in *Instance) SampleTopology(rooted bool) (*tree.Node, error) {
	if in.maps == nil {
		return nil, ErrMapsNotAvailable
	}
	start := time.Now()

	rootIdx, err := in.sampleIndex(in.maps.RootsplitRange())
	if err != nil {
		return nil, err
	}
	split := in.maps.Entries()[rootIdx].Rootsplit
	comp := split.Complement()

	// The root joins the two chunks of the rootsplit; each side sees the
	// other as its sister clade.
	left, err := in.sampleSubtree(bitset.ParentSubsplit(comp, false, split, false))
	if err != nil {
		return nil, err
	}
	right, err := in.sampleSubtree(bitset.ParentSubsplit(split, false, comp, false))
	if err != nil {
		return nil, err
	}
	t := tree.Join(left, right)
	if !rooted {
		t, err = tree.Unroot(t)
		if err != nil {
			return nil, err
		}
	}

	in.opts.metrics.ObserveSample(rooted, time.Since(start))
	return t, nil
}

// sampleSubtree draws the subtree over the focal clade of the sister‖focal
// parent subsplit. A singleton focal clade is a leaf; otherwise a child
// clade is drawn from the parent's block and both halves of the refinement
// recurse.
func (in *Instance) sampleSubtree(parent bitset.Bitset) (*tree.Node, error) {
	focal := parent.Chunk(1, in.maps.TaxonCount())
	if i, ok := focal.SingletonIndex(); ok {
		return tree.Leaf(uint32(i)), nil
	}

	block, ok := in.maps.RangeOf(parent)
	if !ok {
		return nil, fmt.Errorf("sbn: sampled subsplit %s has no child block", parent)
	}
	idx, err := in.sampleIndex(block)
	if err != nil {
		return nil, err
	}
	child := in.maps.Entries()[idx].PCSS.Child
	rest := focal.Intersection(child.Complement())

	left, err := in.sampleSubtree(bitset.Concat(rest, child))
	if err != nil {
		return nil, err
	}
	right, err := in.sampleSubtree(bitset.Concat(child, rest))
	if err != nil {
		return nil, err
	}
	return tree.Join(left, right), nil
}

// sampleIndex draws one slot from a parameter block by inverse CDF over the
// block's normalized probabilities.
func (in *Instance) sampleIndex(block support.Range) (int, error) {
	if block.Empty() || block.Start < 0 || block.End > len(in.params) {
		return 0, &RangeError{Start: block.Start, End: block.End, Len: len(in.params)}
	}
	probs := make([]float64, block.Len())
	if lse := numeric.SoftmaxFromLog(probs, in.params[block.Start:block.End]); math.IsInf(lse, -1) {
		return 0, fmt.Errorf("sbn: parameter block [%d,%d) has zero total mass", block.Start, block.End)
	}
	u := in.opts.rng.Float64()
	acc := 0.0
	for i, p := range probs {
		acc += p
		if u < acc {
			return block.Start + i, nil
		}
	}
	// Floating point slack can leave acc fractionally below 1.
	return block.End - 1, nil
}

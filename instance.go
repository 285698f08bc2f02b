package sbn

import (
	"fmt"

	"github.com/subsplit/sbn/internal/numeric"
	"github.com/subsplit/sbn/support"
	"github.com/subsplit/sbn/tree"
)

// Instance is a subsplit Bayesian network over a fixed taxon set. The
// lifecycle is load, process, train, then sample or score:
//
//	LoadTopologies -> ProcessLoadedTrees -> TrainSimpleAverage /
//	TrainExpectationMaximization -> SampleTopology / CalculateProbabilities
type Instance struct {
	name string
	opts options

	logger  *Logger
	counter *tree.TopologyCounter

	maps *support.Maps
	psp  *support.PSPIndexer

	// params is the flat log-domain parameter vector, one slot per indexer
	// entry. After training every block is log-normalized.
	params []float64
}

// New creates an empty instance.
func New(name string, optFns ...Option) *Instance {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Instance{
		name:    name,
		opts:    opts,
		logger:  opts.logger.WithInstance(name),
		counter: tree.NewTopologyCounter(),
	}
}

// Name returns the instance name.
func (in *Instance) Name() string { return in.name }

// LoadTopologies adds topologies to the working collection. Each input is
// canonicalized to its unrooted form first, so a rooted topology and any
// rerooting of it count as the same unrooted tree. Loading after
// ProcessLoadedTrees is allowed; the maps are stale until the next
// ProcessLoadedTrees call, and training on stale maps fails with
// ErrMapsStale.
func (in *Instance) LoadTopologies(topologies []*tree.Node) error {
	for i, t := range topologies {
		if expected := in.counter.TaxonCount(); expected != 0 && t.LeafCount() != expected {
			return &ErrTaxonCountMismatch{Expected: expected, Actual: t.LeafCount()}
		}
		u, err := tree.Unroot(t)
		if err != nil {
			return fmt.Errorf("sbn: topology %d: %w", i, err)
		}
		in.counter.Add(u)
	}
	in.logger.Debug("topologies loaded",
		"added", len(topologies),
		"distinct", in.counter.Len(),
		"total", in.counter.Total())
	return nil
}

// ProcessLoadedTrees builds the subsplit maps and the PSP indexer from the
// loaded collection and allocates a fresh parameter vector. Parameters start
// log-uniform within each block; call a training method to fit them.
func (in *Instance) ProcessLoadedTrees() error {
	if in.counter.Len() == 0 {
		return ErrNoTreesLoaded
	}
	maps, err := support.Build(in.counter)
	if err != nil {
		return fmt.Errorf("sbn: building subsplit maps: %w", err)
	}
	psp, err := support.BuildPSPIndexer(in.counter)
	if err != nil {
		return fmt.Errorf("sbn: building PSP indexer: %w", err)
	}
	in.maps = maps
	in.psp = psp
	in.params = make([]float64, maps.Len())
	for _, block := range in.blocks() {
		numeric.NormalizeLogInPlace(in.params[block.Start:block.End])
	}
	in.logger.WithTaxa(maps.TaxonCount()).WithTopologies(in.counter.Len()).Info("processed loaded trees",
		"rootsplits", maps.RootsplitCount(),
		"parameters", maps.Len())
	return nil
}

// TaxonCount returns the number of taxa, or zero before loading.
func (in *Instance) TaxonCount() int {
	if in.maps != nil {
		return in.maps.TaxonCount()
	}
	return in.counter.TaxonCount()
}

// TopologyCount returns the number of distinct loaded topologies.
func (in *Instance) TopologyCount() int { return in.counter.Len() }

// Maps returns the subsplit indexer, or nil before ProcessLoadedTrees.
func (in *Instance) Maps() *support.Maps { return in.maps }

// PSPIndexer returns the primary split pair indexer, or nil before
// ProcessLoadedTrees.
func (in *Instance) PSPIndexer() *support.PSPIndexer { return in.psp }

// Params returns a copy of the log-domain parameter vector.
func (in *Instance) Params() ([]float64, error) {
	if in.maps == nil {
		return nil, ErrMapsNotAvailable
	}
	out := make([]float64, len(in.params))
	copy(out, in.params)
	return out, nil
}

// PrettyIndexer returns the human-readable identity of every parameter
// slot, in index order.
func (in *Instance) PrettyIndexer() ([]string, error) {
	if in.maps == nil {
		return nil, ErrMapsNotAvailable
	}
	return in.maps.Strings(), nil
}

// blocks returns the normalization ranges of the parameter vector: the
// rootsplit block followed by every parent's child block.
func (in *Instance) blocks() []support.Range {
	blocks := make([]support.Range, 0, 1+len(in.maps.Parents()))
	blocks = append(blocks, in.maps.RootsplitRange())
	for _, parent := range in.maps.Parents() {
		r, ok := in.maps.RangeOf(parent)
		if !ok {
			panic("sbn: indexer parent without a child block")
		}
		blocks = append(blocks, r)
	}
	return blocks
}

// representations returns the per-rooting slot sequences of every distinct
// loaded topology, in counter order. A sentinel slot means the maps were
// built before this topology was loaded; training must not proceed, since
// the sentinel is not a valid parameter index.
func (in *Instance) representations() ([][][]int, error) {
	entries := in.counter.Entries()
	sentinel := in.maps.Sentinel()
	reps := make([][][]int, len(entries))
	for i, e := range entries {
		r, err := in.maps.UnrootedRepresentationOf(e.Topology)
		if err != nil {
			return nil, err
		}
		for _, rooting := range r {
			for _, idx := range rooting {
				if idx == sentinel {
					return nil, fmt.Errorf("sbn: topology %s is outside the built support: %w", e.Topology, ErrMapsStale)
				}
			}
		}
		reps[i] = r
	}
	return reps, nil
}

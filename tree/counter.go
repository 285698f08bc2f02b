package tree

// TopologyCounter is a multiset of topologies keyed by structural equality.
// Iteration order is first-insertion order, which keeps everything built
// from a counter (indexer slots, parameter blocks) stable for a given input.
type TopologyCounter struct {
	entries []TopologyCount
	byHash  map[uint64][]int
}

// TopologyCount is one distinct topology with its multiplicity.
type TopologyCount struct {
	Topology *Node
	Count    int
}

// NewTopologyCounter returns an empty counter.
func NewTopologyCounter() *TopologyCounter {
	return &TopologyCounter{byHash: make(map[uint64][]int)}
}

// Add increments the multiplicity of the topology by one.
func (tc *TopologyCounter) Add(t *Node) { tc.AddWeighted(t, 1) }

// AddWeighted increments the multiplicity of the topology by weight.
func (tc *TopologyCounter) AddWeighted(t *Node, weight int) {
	if weight <= 0 {
		panic("tree: non-positive topology weight")
	}
	for _, i := range tc.byHash[t.Hash()] {
		if tc.entries[i].Topology.Equal(t) {
			tc.entries[i].Count += weight
			return
		}
	}
	tc.byHash[t.Hash()] = append(tc.byHash[t.Hash()], len(tc.entries))
	tc.entries = append(tc.entries, TopologyCount{Topology: t, Count: weight})
}

// Entries returns the distinct topologies in insertion order. Callers must
// not modify the slice.
func (tc *TopologyCounter) Entries() []TopologyCount { return tc.entries }

// Len returns the number of distinct topologies.
func (tc *TopologyCounter) Len() int { return len(tc.entries) }

// Total returns the summed multiplicity.
func (tc *TopologyCounter) Total() int {
	total := 0
	for _, e := range tc.entries {
		total += e.Count
	}
	return total
}

// TaxonCount returns the number of taxa, or zero for an empty counter.
func (tc *TopologyCounter) TaxonCount() int {
	if len(tc.entries) == 0 {
		return 0
	}
	return tc.entries[0].Topology.LeafCount()
}

package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopologyCounterDeduplicates(t *testing.T) {
	tops := ExampleTopologies()
	tc := NewTopologyCounter()
	tc.Add(tops[0])
	tc.Add(tops[1]) // same tree in a different child order
	tc.Add(tops[2])

	assert.Equal(t, 2, tc.Len())
	assert.Equal(t, 3, tc.Total())
	assert.Equal(t, 4, tc.TaxonCount())

	entries := tc.Entries()
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Topology.Equal(tops[0]))
	assert.Equal(t, 2, entries[0].Count)
	assert.Equal(t, 1, entries[1].Count)
}

func TestTopologyCounterWeighted(t *testing.T) {
	tc := NewTopologyCounter()
	tc.AddWeighted(ExampleTopologies()[0], 5)
	tc.Add(ExampleTopologies()[1])

	assert.Equal(t, 1, tc.Len())
	assert.Equal(t, 6, tc.Total())
	assert.Panics(t, func() { tc.AddWeighted(ExampleTopologies()[0], 0) })
}

func TestTopologyCounterInsertionOrderIsStable(t *testing.T) {
	tops := FiveTaxonTopologies()
	tc := NewTopologyCounter()
	for _, top := range tops {
		tc.Add(top)
	}
	for i, e := range tc.Entries() {
		assert.True(t, e.Topology.Equal(tops[i]), "entry %d", i)
	}
}

func TestEmptyTopologyCounter(t *testing.T) {
	tc := NewTopologyCounter()
	assert.Equal(t, 0, tc.Len())
	assert.Equal(t, 0, tc.Total())
	assert.Equal(t, 0, tc.TaxonCount())
}

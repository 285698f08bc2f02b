package sbn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subsplit/sbn/tree"
)

func TestCalculateProbabilitiesAcceptsRootedQueries(t *testing.T) {
	inst := trainedMixture(t)

	rooted := tree.Join(tree.Leaf(0), tree.Join(tree.Leaf(1), tree.Join(tree.Leaf(2), tree.Leaf(3))))
	probs, err := inst.CalculateProbabilities([]*tree.Node{quartet(), rooted})
	require.NoError(t, err)
	assert.InDelta(t, probs[0], probs[1], 1e-12, "rooted and unrooted forms of the same tree must score alike")
}

func TestCalculateProbabilitiesTaxonMismatch(t *testing.T) {
	inst := trainedMixture(t)
	_, err := inst.CalculateProbabilities(tree.FiveTaxonTopologies()[:1])
	assert.Error(t, err)
}

func TestCalculateProbabilitiesEmptyBatch(t *testing.T) {
	inst := trainedMixture(t)
	probs, err := inst.CalculateProbabilities(nil)
	require.NoError(t, err)
	assert.Empty(t, probs)
}

func TestOutOfSupportScoresZero(t *testing.T) {
	// A support built from one topology admits no other: any other tree hits
	// an unseen key in every virtual rooting.
	inst := processed(t, []*tree.Node{quartet()})
	require.NoError(t, inst.TrainSimpleAverage())

	probs, err := inst.CalculateProbabilities([]*tree.Node{quartetAlt(), quartetThird()})
	require.NoError(t, err)
	assert.Equal(t, 0.0, probs[0])
	assert.Equal(t, 0.0, probs[1])
}

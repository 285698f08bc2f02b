package sbn

import (
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subsplit/sbn/tree"
)

func quartet() *tree.Node {
	return tree.Join(tree.Leaf(0), tree.Leaf(1), tree.Join(tree.Leaf(2), tree.Leaf(3)))
}

func quartetAlt() *tree.Node {
	return tree.Join(tree.Leaf(0), tree.Leaf(2), tree.Join(tree.Leaf(1), tree.Leaf(3)))
}

func quartetThird() *tree.Node {
	return tree.Join(tree.Leaf(0), tree.Leaf(3), tree.Join(tree.Leaf(1), tree.Leaf(2)))
}

// processed returns an instance loaded and processed with the given
// topologies, deterministic under seed.
func processed(t *testing.T, tops []*tree.Node, opts ...Option) *Instance {
	t.Helper()
	inst := New("test", append([]Option{WithSeed(7)}, opts...)...)
	require.NoError(t, inst.LoadTopologies(tops))
	require.NoError(t, inst.ProcessLoadedTrees())
	return inst
}

func TestLifecycleGuards(t *testing.T) {
	inst := New("empty")
	assert.ErrorIs(t, inst.ProcessLoadedTrees(), ErrNoTreesLoaded)
	assert.ErrorIs(t, inst.TrainSimpleAverage(), ErrMapsNotAvailable)

	_, err := inst.TrainExpectationMaximization(0, 10, 0)
	assert.ErrorIs(t, err, ErrMapsNotAvailable)
	_, err = inst.SampleTopology(false)
	assert.ErrorIs(t, err, ErrMapsNotAvailable)
	_, err = inst.CalculateProbabilities([]*tree.Node{quartet()})
	assert.ErrorIs(t, err, ErrMapsNotAvailable)
	_, err = inst.Params()
	assert.ErrorIs(t, err, ErrMapsNotAvailable)
	_, err = inst.PrettyIndexer()
	assert.ErrorIs(t, err, ErrMapsNotAvailable)
}

func TestLoadTopologiesTaxonMismatch(t *testing.T) {
	inst := New("mismatch")
	require.NoError(t, inst.LoadTopologies([]*tree.Node{quartet()}))

	err := inst.LoadTopologies(tree.FiveTaxonTopologies()[:1])
	var mismatch *ErrTaxonCountMismatch
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, 4, mismatch.Expected)
	assert.Equal(t, 5, mismatch.Actual)
}

func TestLoadTopologiesCanonicalizes(t *testing.T) {
	inst := New("canonical")
	rooted := tree.Join(tree.Leaf(0), tree.Join(tree.Leaf(1), tree.Join(tree.Leaf(2), tree.Leaf(3))))
	require.NoError(t, inst.LoadTopologies([]*tree.Node{quartet(), rooted}))
	// Both are the same unrooted tree.
	assert.Equal(t, 1, inst.TopologyCount())
}

func TestProcessLoadedTrees(t *testing.T) {
	inst := processed(t, []*tree.Node{quartet()})

	assert.Equal(t, "test", inst.Name())
	assert.Equal(t, 4, inst.TaxonCount())
	require.NotNil(t, inst.Maps())
	require.NotNil(t, inst.PSPIndexer())
	assert.Equal(t, 15, inst.Maps().Len())

	pretty, err := inst.PrettyIndexer()
	require.NoError(t, err)
	assert.Len(t, pretty, 15)
	assert.Contains(t, pretty, "0111")
	assert.Contains(t, pretty, "1000|0111|0011")

	// Before training, every block is log-uniform.
	params, err := inst.Params()
	require.NoError(t, err)
	require.Len(t, params, 15)
	for i := 0; i < 5; i++ {
		assert.InDelta(t, -math.Log(5), params[i], 1e-12)
	}
	for i := 5; i < 15; i++ {
		assert.InDelta(t, 0, params[i], 1e-12, "single-child block %d", i)
	}
}

func TestParamsReturnsCopy(t *testing.T) {
	inst := processed(t, []*tree.Node{quartet()})
	params, err := inst.Params()
	require.NoError(t, err)
	params[0] = 42
	again, err := inst.Params()
	require.NoError(t, err)
	assert.NotEqual(t, 42.0, again[0])
}

func TestRangeErrorMessage(t *testing.T) {
	err := &RangeError{Start: 3, End: 3, Len: 15}
	assert.Contains(t, err.Error(), "[3,3)")
	assert.False(t, errors.Is(err, ErrNoTreesLoaded))
}

func TestLoggerConstructors(t *testing.T) {
	assert.NotNil(t, NewLogger(nil))
	assert.NotNil(t, NewTextLogger(slog.LevelDebug))
	assert.NotNil(t, NewJSONLogger(slog.LevelInfo))
	l := NoopLogger().WithInstance("x").WithTaxa(4).WithTopologies(2)
	assert.NotNil(t, l)
	l.Info("discarded")
}

func TestBasicMetrics(t *testing.T) {
	var m BasicMetrics
	m.ObserveTraining("simple-average", 1, time.Millisecond)
	m.ObserveTraining("expectation-maximization", 10, time.Millisecond)
	m.ObserveSample(false, time.Microsecond)
	m.ObserveScoring(3, time.Microsecond)

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TrainingRuns)
	assert.Equal(t, int64(11), snap.TrainingIterations)
	assert.Equal(t, int64(1), snap.Samples)
	assert.Equal(t, int64(3), snap.ScoredTopologies)
}

func TestMetricsCollectorWiring(t *testing.T) {
	var m BasicMetrics
	inst := processed(t, []*tree.Node{quartet()}, WithMetrics(&m))
	require.NoError(t, inst.TrainSimpleAverage())
	_, err := inst.SampleTopology(false)
	require.NoError(t, err)
	_, err = inst.CalculateProbabilities([]*tree.Node{quartet()})
	require.NoError(t, err)

	snap := m.Snapshot()
	assert.Equal(t, int64(1), snap.TrainingRuns)
	assert.Equal(t, int64(1), snap.Samples)
	assert.Equal(t, int64(1), snap.ScoredTopologies)
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	// Nil and non-positive option values keep the defaults rather than
	// breaking the instance.
	inst := processed(t, []*tree.Node{quartet()},
		WithLogger(nil), WithMetrics(nil), WithRNG(nil),
		WithParallelism(0), WithSnapshotCodec(nil), WithCompression(nil))
	require.NoError(t, inst.TrainSimpleAverage())
	_, err := inst.SampleTopology(false)
	assert.NoError(t, err)
}

package support

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// quartet returns the canonical unrooted topology (0,1,(2,3)).
func quartet() *tree.Node {
	return tree.Join(tree.Leaf(0), tree.Leaf(1), tree.Join(tree.Leaf(2), tree.Leaf(3)))
}

func counterOf(t *testing.T, tops ...*tree.Node) *tree.TopologyCounter {
	t.Helper()
	tc := tree.NewTopologyCounter()
	for _, top := range tops {
		tc.Add(top)
	}
	return tc
}

// pcssSlot resolves a "sister|focal|child" triple to its parameter slot.
func pcssSlot(t *testing.T, m *Maps, triple string) int {
	t.Helper()
	parts := strings.Split(triple, "|")
	require.Len(t, parts, 3)
	parent := bitset.Concat(bitset.FromString(parts[0]), bitset.FromString(parts[1]))
	idx := m.IndexOf(bitset.Concat(parent, bitset.FromString(parts[2])).Key())
	require.NotEqual(t, m.Sentinel(), idx, "PCSS %s not in support", triple)
	return idx
}

func rootsplitSlot(t *testing.T, m *Maps, bits string) int {
	t.Helper()
	idx := m.IndexOf(bitset.FromString(bits).Key())
	require.NotEqual(t, m.Sentinel(), idx, "rootsplit %s not in support", bits)
	return idx
}

func TestBuildSingleQuartet(t *testing.T) {
	m, err := Build(counterOf(t, quartet()))
	require.NoError(t, err)

	// 2n-3 = 5 edges, each a distinct rootsplit; 10 distinct PCSS, each its
	// own single-child parent block.
	assert.Equal(t, 4, m.TaxonCount())
	assert.Equal(t, 5, m.RootsplitCount())
	assert.Equal(t, 15, m.Len())
	assert.Equal(t, 15, m.Sentinel())
	assert.Equal(t, Range{Start: 0, End: 5}, m.RootsplitRange())
	assert.Len(t, m.Parents(), 10)
	for _, parent := range m.Parents() {
		r, ok := m.RangeOf(parent)
		require.True(t, ok)
		assert.Equal(t, 1, r.Len())
	}

	rootsplits := make(map[string]bool)
	for _, e := range m.Entries()[:5] {
		assert.Equal(t, KindRootsplit, e.Kind)
		rootsplits[e.Rootsplit.String()] = true
	}
	assert.Equal(t, map[string]bool{
		"0111": true, "0100": true, "0010": true, "0001": true, "0011": true,
	}, rootsplits)

	assert.Equal(t, m.Sentinel(), m.IndexOf(bitset.FromString("0110").Key()))
	assert.Len(t, m.Strings(), 15)
}

func TestBuildEmptyCounter(t *testing.T) {
	_, err := Build(tree.NewTopologyCounter())
	assert.ErrorIs(t, err, ErrNoTopologies)
}

// TestUnrootedRepresentationQuartet pins down the full virtual-rooting
// decomposition of (0,1,(2,3)). Rooting positions 0..3 are the leaf edges by
// taxon index; position 4 is the edge above the (2,3) cherry. Every rooted
// view has one rootsplit and two PCSS.
func TestUnrootedRepresentationQuartet(t *testing.T) {
	top := quartet()
	m, err := Build(counterOf(t, top))
	require.NoError(t, err)

	reps, err := m.UnrootedRepresentationOf(top)
	require.NoError(t, err)
	require.Len(t, reps, 5)

	expected := []struct {
		rootsplit string
		pcss      []string
	}{
		{"0111", []string{"0100|0011|0001", "1000|0111|0011"}},
		{"0100", []string{"1000|0011|0001", "0100|1011|0011"}},
		{"0010", []string{"0001|1100|0100", "0010|1101|0001"}},
		{"0001", []string{"0010|1100|0100", "0001|1110|0010"}},
		{"0011", []string{"0011|1100|0100", "1100|0011|0001"}},
	}
	for p, want := range expected {
		rep := reps[p]
		require.Len(t, rep, 3, "rooting %d", p)
		assert.Equal(t, rootsplitSlot(t, m, want.rootsplit), rep[0], "rooting %d rootsplit", p)

		wantSlots := []int{pcssSlot(t, m, want.pcss[0]), pcssSlot(t, m, want.pcss[1])}
		gotSlots := append([]int(nil), rep[1:]...)
		sort.Ints(wantSlots)
		sort.Ints(gotSlots)
		assert.Equal(t, wantSlots, gotSlots, "rooting %d PCSS", p)
	}
}

// TestUnrootedRepresentationFiveTaxon pins down the decomposition of the
// 5-taxon topology (0,1,((2,3),4)). Positions 0..4 are the leaf edges by
// taxon index; position 5 is the (2,3) cherry edge and position 6 the edge
// above the {2,3,4} clade. Every rooted view has one rootsplit and three
// PCSS.
func TestUnrootedRepresentationFiveTaxon(t *testing.T) {
	top := tree.FiveTaxonTopologies()[0]
	m, err := Build(counterOf(t, top))
	require.NoError(t, err)

	reps, err := m.UnrootedRepresentationOf(top)
	require.NoError(t, err)
	require.Len(t, reps, 7)

	expected := []struct {
		rootsplit string
		pcss      []string
	}{
		{"01111", []string{"10000|01111|00111", "01000|00111|00001", "00001|00110|00010"}},
		{"01000", []string{"01000|10111|00111", "10000|00111|00001", "00001|00110|00010"}},
		{"00100", []string{"00100|11011|00010", "00010|11001|00001", "00001|11000|01000"}},
		{"00010", []string{"00010|11101|00100", "00100|11001|00001", "00001|11000|01000"}},
		{"00001", []string{"00001|11110|00110", "11000|00110|00010", "00110|11000|01000"}},
		{"00110", []string{"11001|00110|00010", "00110|11001|00001", "00001|11000|01000"}},
		{"00111", []string{"11000|00111|00001", "00001|00110|00010", "00111|11000|01000"}},
	}
	for p, want := range expected {
		rep := reps[p]
		require.Len(t, rep, 4, "rooting %d", p)
		assert.Equal(t, rootsplitSlot(t, m, want.rootsplit), rep[0], "rooting %d rootsplit", p)

		wantSlots := make([]int, 0, len(want.pcss))
		for _, triple := range want.pcss {
			wantSlots = append(wantSlots, pcssSlot(t, m, triple))
		}
		gotSlots := append([]int(nil), rep[1:]...)
		sort.Ints(wantSlots)
		sort.Ints(gotSlots)
		assert.Equal(t, wantSlots, gotSlots, "rooting %d PCSS", p)
	}
}

func TestRootedRepresentationQuartet(t *testing.T) {
	m, err := Build(counterOf(t, quartet()))
	require.NoError(t, err)

	// (0,(1,(2,3))) is the quartet rooted on taxon 0's edge, so its rooted
	// representation must equal the unrooted representation at position 0.
	rooted := tree.Join(tree.Leaf(0), tree.Join(tree.Leaf(1), tree.Join(tree.Leaf(2), tree.Leaf(3))))
	rep, err := m.RootedRepresentationOf(rooted)
	require.NoError(t, err)

	want := []int{
		rootsplitSlot(t, m, "0111"),
		pcssSlot(t, m, "1000|0111|0011"),
		pcssSlot(t, m, "0100|0011|0001"),
	}
	assert.Equal(t, want, rep)

	_, err = m.RootedRepresentationOf(quartet())
	assert.Error(t, err, "trifurcating root is not a rooted topology")
}

func TestRepresentationRejectsTaxonMismatch(t *testing.T) {
	m, err := Build(counterOf(t, quartet()))
	require.NoError(t, err)
	_, err = m.UnrootedRepresentationOf(tree.FiveTaxonTopologies()[0])
	assert.Error(t, err)
}

// Every rooting of every in-support topology must resolve fully: one
// rootsplit plus n-2 PCSS per rooting, no sentinels.
func TestRepresentationPartition(t *testing.T) {
	tops := tree.FiveTaxonTopologies()
	m, err := Build(counterOf(t, tops...))
	require.NoError(t, err)

	for _, top := range tops {
		reps, err := m.UnrootedRepresentationOf(top)
		require.NoError(t, err)
		require.Len(t, reps, 7)
		for p, rep := range reps {
			assert.Len(t, rep, 4, "%s rooting %d", top, p)
			for _, idx := range rep {
				assert.Less(t, idx, m.Sentinel(), "%s rooting %d", top, p)
			}
		}
	}
}

func TestFiveTaxonRootsplitUnion(t *testing.T) {
	m, err := Build(counterOf(t, tree.FiveTaxonTopologies()...))
	require.NoError(t, err)
	assert.Equal(t, 12, m.RootsplitCount())

	// Rootsplit block plus parent blocks tile [0, M) with no gap or overlap.
	covered := make([]int, m.Len())
	for i := 0; i < m.RootsplitRange().End; i++ {
		covered[i]++
	}
	for _, parent := range m.Parents() {
		r, ok := m.RangeOf(parent)
		require.True(t, ok)
		for i := r.Start; i < r.End; i++ {
			covered[i]++
		}
	}
	for i, c := range covered {
		assert.Equal(t, 1, c, "slot %d", i)
	}
}

func TestCountersAreWeighted(t *testing.T) {
	tc := tree.NewTopologyCounter()
	tc.AddWeighted(quartet(), 3)

	rc, err := CountRootsplits(tc)
	require.NoError(t, err)
	assert.Equal(t, 5, rc.Len())
	for _, split := range rc.Keys() {
		assert.Equal(t, 3.0, rc.Count(split))
	}

	pc, err := CountPCSS(tc)
	require.NoError(t, err)
	assert.Equal(t, 10, pc.TotalChildren())
	for _, parent := range pc.Parents() {
		for _, child := range pc.Children(parent) {
			assert.Equal(t, 3.0, pc.Count(parent, child))
		}
	}
}

func TestFromEntriesRoundTrip(t *testing.T) {
	m, err := Build(counterOf(t, tree.FiveTaxonTopologies()...))
	require.NoError(t, err)

	back, err := FromEntries(m.TaxonCount(), m.Entries())
	require.NoError(t, err)
	assert.Equal(t, m.RootsplitCount(), back.RootsplitCount())
	assert.Equal(t, m.Len(), back.Len())
	assert.Equal(t, m.Strings(), back.Strings())
	for i, e := range m.Entries() {
		if e.Kind == KindRootsplit {
			assert.Equal(t, i, back.IndexOf(e.Rootsplit.Key()))
		} else {
			assert.Equal(t, i, back.IndexOf(e.PCSS.Key()))
		}
	}
	for _, parent := range m.Parents() {
		want, _ := m.RangeOf(parent)
		got, ok := back.RangeOf(parent)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestFromEntriesRejectsMisordered(t *testing.T) {
	m, err := Build(counterOf(t, quartet()))
	require.NoError(t, err)
	entries := append([]Entry(nil), m.Entries()...)

	// Rootsplit after the PCSS blocks began.
	bad := append(append([]Entry(nil), entries[5:]...), entries[:5]...)
	_, err = FromEntries(4, bad)
	assert.Error(t, err)

	_, err = FromEntries(4, nil)
	assert.ErrorIs(t, err, ErrNoTopologies)
}

func TestCoverage(t *testing.T) {
	m, err := Build(counterOf(t, quartet()))
	require.NoError(t, err)

	cov, err := m.CoverageOf([]*tree.Node{quartet()})
	require.NoError(t, err)
	assert.Equal(t, uint64(0), cov.OutOfSample)
	assert.Equal(t, 1.0, cov.InSupportFraction())
	assert.Equal(t, uint64(15), cov.SlotCardinality())

	other := tree.Join(tree.Leaf(0), tree.Leaf(3), tree.Join(tree.Leaf(1), tree.Leaf(2)))
	cov, err = m.CoverageOf([]*tree.Node{other})
	require.NoError(t, err)
	assert.Greater(t, cov.OutOfSample, uint64(0))
	assert.Less(t, cov.InSupportFraction(), 1.0)

	// Zero occurrences counts as fully in support.
	assert.Equal(t, 1.0, (&Coverage{Observed: cov.Observed}).InSupportFraction())
}

func TestPSPIndexer(t *testing.T) {
	tops := tree.FiveTaxonTopologies()
	p, err := BuildPSPIndexer(counterOf(t, tops...))
	require.NoError(t, err)

	// The distinct edge splits are exactly the distinct rootsplits.
	assert.Equal(t, 12, p.Len())
	assert.Equal(t, 12, p.Sentinel())
	assert.Len(t, p.Strings(), 12)

	rep, err := p.BranchRepresentationOf(tops[0])
	require.NoError(t, err)
	require.Len(t, rep, 7)

	splits := p.Splits()
	// Leaf branches carry the singleton splits, minorized.
	assert.Equal(t, "01111", splits[rep[0]].String())
	assert.Equal(t, "01000", splits[rep[1]].String())
	assert.Equal(t, "00001", splits[rep[4]].String())
	// Internal branches: the (2,3) cherry and the ((2,3),4) clade.
	assert.Equal(t, "00110", splits[rep[5]].String())
	assert.Equal(t, "00111", splits[rep[6]].String())

	_, err = p.BranchRepresentationOf(quartet())
	assert.Error(t, err)

	_, err = BuildPSPIndexer(tree.NewTopologyCounter())
	assert.ErrorIs(t, err, ErrNoTopologies)
}

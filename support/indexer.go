package support

import (
	"fmt"

	"github.com/subsplit/sbn/bitset"
	"github.com/subsplit/sbn/tree"
)

// Range is a half-open index interval [Start, End) into the parameter
// vector.
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int { return r.End - r.Start }

// Empty reports whether the range covers no indices.
func (r Range) Empty() bool { return r.End <= r.Start }

// EntryKind discriminates the two kinds of parameter slots.
type EntryKind uint8

const (
	// KindRootsplit marks a slot in the leading rootsplit block.
	KindRootsplit EntryKind = iota
	// KindPCSS marks a slot inside some parent subsplit's child block.
	KindPCSS
)

// Entry is the resolved identity of one parameter slot: a tagged variant
// decided once at build time instead of re-derived from the numeric index.
type Entry struct {
	Kind      EntryKind
	Rootsplit bitset.Bitset // set when Kind == KindRootsplit
	PCSS      bitset.PCSS   // set when Kind == KindPCSS
}

// String renders the entry the way diagnostics and golden tests expect:
// plain bits for a rootsplit, sister|focal|child for a PCSS.
func (e Entry) String() string {
	if e.Kind == KindRootsplit {
		return e.Rootsplit.String()
	}
	return e.PCSS.String()
}

// Maps is the master indexer of a subsplit network: a bijection from
// observed rootsplit and PCSS keys to slots of the flat parameter vector.
//
// Indices [0, R) are the distinct rootsplits; indices [R, M) are PCSS slots
// partitioned into contiguous per-parent blocks. Index M itself (one past
// the end) is the reserved out-of-sample sentinel for keys that were never
// observed.
type Maps struct {
	taxa       int
	rootsplits int
	entries    []Entry
	index      map[string]int
	parents    []bitset.Bitset
	ranges     map[string]Range
}

// Build constructs the indexer from a topology multiset. It fails with
// ErrNoTopologies when nothing has been loaded.
func Build(tc *tree.TopologyCounter) (*Maps, error) {
	rc, err := CountRootsplits(tc)
	if err != nil {
		return nil, err
	}
	pc, err := CountPCSS(tc)
	if err != nil {
		return nil, err
	}
	return BuildFromCounters(tc.TaxonCount(), rc, pc)
}

// BuildFromCounters constructs the indexer from pre-aggregated counters.
func BuildFromCounters(taxa int, rc *RootsplitCounter, pc *PCSSCounter) (*Maps, error) {
	if rc.Len() == 0 {
		return nil, ErrNoTopologies
	}
	m := &Maps{
		taxa:       taxa,
		rootsplits: rc.Len(),
		index:      make(map[string]int, rc.Len()+pc.TotalChildren()),
		ranges:     make(map[string]Range, len(pc.Parents())),
	}
	for _, split := range rc.Keys() {
		m.index[split.Key()] = len(m.entries)
		m.entries = append(m.entries, Entry{Kind: KindRootsplit, Rootsplit: split})
	}
	for _, parent := range pc.Parents() {
		start := len(m.entries)
		for _, child := range pc.Children(parent) {
			pcss, err := bitset.NewPCSS(parent, child)
			if err != nil {
				return nil, fmt.Errorf("support: invalid observed PCSS: %w", err)
			}
			m.index[pcss.Key()] = len(m.entries)
			m.entries = append(m.entries, Entry{Kind: KindPCSS, PCSS: pcss})
		}
		m.parents = append(m.parents, parent)
		m.ranges[parent.Key()] = Range{Start: start, End: len(m.entries)}
	}
	return m, nil
}

// FromEntries reconstructs an indexer from its resolved slot identities, as
// recorded in a persisted snapshot. Entries must be in build order: the
// rootsplit block first, then PCSS slots with each parent's children
// contiguous.
func FromEntries(taxa int, entries []Entry) (*Maps, error) {
	if len(entries) == 0 {
		return nil, ErrNoTopologies
	}
	m := &Maps{
		taxa:   taxa,
		index:  make(map[string]int, len(entries)),
		ranges: make(map[string]Range),
	}
	blockStart := -1
	var blockParent bitset.Bitset
	closeBlock := func(end int) {
		if blockStart >= 0 {
			m.parents = append(m.parents, blockParent)
			m.ranges[blockParent.Key()] = Range{Start: blockStart, End: end}
		}
	}
	for i, e := range entries {
		switch e.Kind {
		case KindRootsplit:
			if i != m.rootsplits {
				return nil, fmt.Errorf("support: rootsplit entry at slot %d after PCSS block start", i)
			}
			m.rootsplits++
			m.index[e.Rootsplit.Key()] = i
		case KindPCSS:
			pkey := e.PCSS.Parent.Key()
			if blockStart < 0 || blockParent.Key() != pkey {
				if _, seen := m.ranges[pkey]; seen {
					return nil, fmt.Errorf("support: parent block split at slot %d", i)
				}
				closeBlock(i)
				blockStart, blockParent = i, e.PCSS.Parent
			}
			m.index[e.PCSS.Key()] = i
		default:
			return nil, fmt.Errorf("support: unknown entry kind %d at slot %d", e.Kind, i)
		}
		m.entries = append(m.entries, e)
	}
	closeBlock(len(entries))
	if m.rootsplits == 0 {
		return nil, fmt.Errorf("support: no rootsplit entries")
	}
	if len(m.index) != len(entries) {
		return nil, fmt.Errorf("support: duplicate keys among %d entries", len(entries))
	}
	return m, nil
}

// TaxonCount returns the number of taxa the indexer was built over.
func (m *Maps) TaxonCount() int { return m.taxa }

// RootsplitCount returns R, the size of the leading rootsplit block.
func (m *Maps) RootsplitCount() int { return m.rootsplits }

// Len returns M, the parameter vector length.
func (m *Maps) Len() int { return len(m.entries) }

// Sentinel returns the reserved out-of-sample index, numerically equal to
// Len.
func (m *Maps) Sentinel() int { return len(m.entries) }

// Entries returns the resolved slot identities. Callers must not modify the
// slice.
func (m *Maps) Entries() []Entry { return m.entries }

// IndexOf returns the slot of a rootsplit or PCSS key, or the sentinel when
// the key was never observed.
func (m *Maps) IndexOf(key string) int {
	if i, ok := m.index[key]; ok {
		return i
	}
	return m.Sentinel()
}

// RootsplitRange returns the index range of the rootsplit block.
func (m *Maps) RootsplitRange() Range { return Range{Start: 0, End: m.rootsplits} }

// Parents returns the distinct parent subsplits in block order. Callers
// must not modify the slice.
func (m *Maps) Parents() []bitset.Bitset { return m.parents }

// RangeOf returns the child block of a parent subsplit.
func (m *Maps) RangeOf(parent bitset.Bitset) (Range, bool) {
	r, ok := m.ranges[parent.Key()]
	return r, ok
}

// Strings returns the human-readable form of every slot, in index order.
func (m *Maps) Strings() []string {
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.String()
	}
	return out
}

package support

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/subsplit/sbn/tree"
)

// Coverage reports which parameter slots a set of query topologies touches,
// and how often they fall outside the trained support. Out-of-support keys
// are expected for query sets drawn from a different topology collection;
// they are not errors, but the fraction is a useful diagnostic before
// scoring.
type Coverage struct {
	// Observed holds the slots touched by at least one virtual rooting.
	Observed *roaring.Bitmap
	// OutOfSample counts key occurrences that mapped to the sentinel.
	OutOfSample uint64
	// Total counts all key occurrences across rootings.
	Total uint64
}

// CoverageOf computes slot coverage for the given topologies.
func (m *Maps) CoverageOf(topologies []*tree.Node) (*Coverage, error) {
	cov := &Coverage{Observed: roaring.New()}
	sentinel := m.Sentinel()
	for _, t := range topologies {
		reps, err := m.UnrootedRepresentationOf(t)
		if err != nil {
			return nil, err
		}
		for _, rep := range reps {
			for _, idx := range rep {
				cov.Total++
				if idx == sentinel {
					cov.OutOfSample++
					continue
				}
				cov.Observed.Add(uint32(idx))
			}
		}
	}
	return cov, nil
}

// InSupportFraction returns the fraction of key occurrences resolved to a
// real slot. An empty coverage reports 1.
func (c *Coverage) InSupportFraction() float64 {
	if c.Total == 0 {
		return 1
	}
	return 1 - float64(c.OutOfSample)/float64(c.Total)
}

// SlotCardinality returns the number of distinct slots touched.
func (c *Coverage) SlotCardinality() uint64 {
	return c.Observed.GetCardinality()
}

package sbn

import (
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/subsplit/sbn/internal/numeric"
	"github.com/subsplit/sbn/tree"
)

// CalculateProbabilities scores query topologies under the trained model.
// The probability of an unrooted topology is the sum over its 2n-3 virtual
// rootings of the product of conditional probabilities along the rooted
// view. Rootings touching any key outside the trained support contribute
// zero; a topology entirely outside the support scores zero.
//
// Queries are canonicalized to unrooted form before scoring, so rooted
// inputs are accepted. Batches are scored in parallel.
func (in *Instance) CalculateProbabilities(topologies []*tree.Node) ([]float64, error) {
	if in.maps == nil {
		return nil, ErrMapsNotAvailable
	}
	start := time.Now()

	unrooted := make([]*tree.Node, len(topologies))
	for i, t := range topologies {
		u, err := tree.Unroot(t)
		if err != nil {
			return nil, err
		}
		unrooted[i] = u
	}

	if cov, err := in.maps.CoverageOf(unrooted); err == nil {
		in.logger.Debug("query coverage",
			"in_support_fraction", cov.InSupportFraction(),
			"distinct_slots", cov.SlotCardinality(),
			"out_of_sample", cov.OutOfSample)
	}

	// Conditional probabilities need each slot's block normalizer; after
	// training these are all zero, but scoring should not depend on the
	// caller having trained immediately beforehand.
	norms := in.blockLogNormalizers()
	sentinel := in.maps.Sentinel()

	probs := make([]float64, len(unrooted))
	var g errgroup.Group
	g.SetLimit(in.opts.parallelism)
	for i, t := range unrooted {
		i, t := i, t
		g.Go(func() error {
			reps, err := in.maps.UnrootedRepresentationOf(t)
			if err != nil {
				return err
			}
			logLiks := make([]float64, 0, len(reps))
			for _, rooting := range reps {
				ll := 0.0
				for _, idx := range rooting {
					if idx == sentinel || math.IsInf(in.params[idx], -1) {
						ll = numeric.NegInf
						break
					}
					ll += in.params[idx] - norms[idx]
				}
				if !math.IsInf(ll, -1) {
					logLiks = append(logLiks, ll)
				}
			}
			if total := numeric.LogSumExp(logLiks); !math.IsInf(total, -1) {
				probs[i] = math.Exp(total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	in.opts.metrics.ObserveScoring(len(topologies), time.Since(start))
	return probs, nil
}

// blockLogNormalizers returns, per slot, the log total mass of the slot's
// block. Normalized blocks yield zeros.
func (in *Instance) blockLogNormalizers() []float64 {
	norms := make([]float64, len(in.params))
	for _, block := range in.blocks() {
		lse := numeric.LogSumExp(in.params[block.Start:block.End])
		for i := block.Start; i < block.End; i++ {
			norms[i] = lse
		}
	}
	return norms
}

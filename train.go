package sbn

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/subsplit/sbn/internal/numeric"
	"github.com/subsplit/sbn/tree"
)

// TrainSimpleAverage fits the parameters by counting: every virtual rooting
// of every loaded topology contributes its rootsplit and PCSS slots with the
// topology's weight, and each block is then normalized. This is the
// closed-form maximum of the per-rooting averaged likelihood and needs no
// iteration.
func (in *Instance) TrainSimpleAverage() error {
	if in.maps == nil {
		return ErrMapsNotAvailable
	}
	start := time.Now()

	reps, err := in.representations()
	if err != nil {
		return err
	}
	counts := make([]float64, in.maps.Len())
	for i, e := range in.counter.Entries() {
		w := float64(e.Count)
		for _, rooting := range reps[i] {
			for _, idx := range rooting {
				counts[idx] += w
			}
		}
	}
	for i, c := range counts {
		if c > 0 {
			in.params[i] = math.Log(c)
		} else {
			in.params[i] = numeric.NegInf
		}
	}
	for _, block := range in.blocks() {
		numeric.NormalizeLogInPlace(in.params[block.Start:block.End])
	}

	in.opts.metrics.ObserveTraining("simple-average", 1, time.Since(start))
	in.logger.Info("trained by simple average",
		"parameters", len(in.params),
		"duration", time.Since(start))
	return nil
}

// TrainExpectationMaximization fits the parameters by EM, treating the
// rooting edge of each unrooted topology as a latent variable. alpha is a
// Dirichlet smoothing pseudocount added to every slot in the M-step, maxIter
// bounds the iteration count, and a positive epsilon stops early once the
// score improves by less than epsilon.
//
// The returned history holds the per-iteration score, the marginal
// log-likelihood of the loaded collection under the parameters entering the
// iteration. With alpha zero it is non-decreasing.
func (in *Instance) TrainExpectationMaximization(alpha float64, maxIter int, epsilon float64) ([]float64, error) {
	if in.maps == nil {
		return nil, ErrMapsNotAvailable
	}
	if alpha < 0 {
		return nil, fmt.Errorf("sbn: negative EM alpha %v", alpha)
	}
	if maxIter < 1 {
		return nil, fmt.Errorf("sbn: EM maxIter %d, want at least 1", maxIter)
	}
	start := time.Now()

	reps, err := in.representations()
	if err != nil {
		return nil, err
	}
	entries := in.counter.Entries()

	// Renormalize up front so the first reported score is a true
	// log-likelihood even if the caller tampered with the parameters.
	for _, block := range in.blocks() {
		numeric.NormalizeLogInPlace(in.params[block.Start:block.End])
	}

	scores := make([]float64, 0, maxIter)
	for iter := 0; iter < maxIter; iter++ {
		counts, score, err := in.expectationStep(entries, reps)
		if err != nil {
			return scores, err
		}
		for i, c := range counts {
			if c+alpha > 0 {
				in.params[i] = math.Log(c + alpha)
			} else {
				in.params[i] = numeric.NegInf
			}
		}
		for _, block := range in.blocks() {
			numeric.NormalizeLogInPlace(in.params[block.Start:block.End])
		}

		scores = append(scores, score)
		in.logger.Debug("EM iteration", "iter", iter, "score", score)
		in.checkNormalization(iter)
		if n := len(scores); n > 1 {
			improvement := scores[n-1] - scores[n-2]
			if improvement < 0 && alpha == 0 {
				in.logger.Warn("EM score decreased", "iter", iter, "delta", improvement)
			}
			if epsilon > 0 && math.Abs(improvement) < epsilon {
				break
			}
		}
	}

	in.opts.metrics.ObserveTraining("expectation-maximization", len(scores), time.Since(start))
	in.logger.Info("trained by expectation maximization",
		"iterations", len(scores),
		"final_score", scores[len(scores)-1],
		"duration", time.Since(start))
	return scores, nil
}

// checkNormalization recomputes every block's probability mass and warns if
// one drifted from 1. A failure here means a bug in the M-step, not bad
// input, so it is surfaced loudly but does not abort training.
func (in *Instance) checkNormalization(iter int) {
	for _, block := range in.blocks() {
		total := 0.0
		for i := block.Start; i < block.End; i++ {
			total += math.Exp(in.params[i])
		}
		if math.Abs(total-1) > 1e-9 {
			in.logger.Warn("parameter block drifted from normalization",
				"iter", iter, "start", block.Start, "end", block.End, "mass", total)
		}
	}
}

// expectationStep computes expected slot counts under the current
// parameters, with the rooting responsibilities of each topology given by a
// softmax over its per-rooting log-likelihoods. Topology entries are split
// into contiguous chunks scored in parallel; per-chunk accumulators are
// merged in chunk order so results are deterministic for a given
// parallelism.
func (in *Instance) expectationStep(entries []tree.TopologyCount, reps [][][]int) ([]float64, float64, error) {
	workers := in.opts.parallelism
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		workers = 1
	}

	chunkCounts := make([][]float64, workers)
	chunkScores := make([]float64, workers)
	var g errgroup.Group
	for c := 0; c < workers; c++ {
		lo := c * len(entries) / workers
		hi := (c + 1) * len(entries) / workers
		counts := make([]float64, in.maps.Len())
		chunkCounts[c] = counts
		scoreDst := &chunkScores[c]
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				w := float64(entries[i].Count)
				rootings := reps[i]
				logLiks := make([]float64, len(rootings))
				for r, rooting := range rootings {
					ll := 0.0
					for _, idx := range rooting {
						ll += in.params[idx]
					}
					logLiks[r] = ll
				}
				total := numeric.LogSumExp(logLiks)
				if math.IsInf(total, -1) {
					return fmt.Errorf("sbn: topology %d has zero likelihood under current parameters", i)
				}
				*scoreDst += w * total
				for r, rooting := range rootings {
					resp := math.Exp(logLiks[r] - total)
					if resp == 0 {
						continue
					}
					for _, idx := range rooting {
						counts[idx] += w * resp
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	counts := chunkCounts[0]
	score := chunkScores[0]
	for c := 1; c < workers; c++ {
		for i, v := range chunkCounts[c] {
			counts[i] += v
		}
		score += chunkScores[c]
	}
	return counts, score, nil
}

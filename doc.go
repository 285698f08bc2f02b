// Package sbn implements a subsplit Bayesian network: a generative
// probability distribution over unrooted phylogenetic tree topologies.
//
// An Instance is loaded with a collection of observed topologies, builds a
// compact shared parameterization over their recursive bipartitions
// (rootsplits and parent-child subsplits), and can then be trained, sampled
// from, and used to score arbitrary topologies:
//
//	inst := sbn.New("example", sbn.WithSeed(42))
//	if err := inst.LoadTopologies(trees); err != nil { ... }
//	if err := inst.ProcessLoadedTrees(); err != nil { ... }
//	if err := inst.TrainSimpleAverage(); err != nil { ... }
//	topology, err := inst.SampleTopology(false)
//	probs, err := inst.CalculateProbabilities(queries)
//
// The parameterization is O(taxa)-sized per observed split yet supports all
// 2n-3 virtual rootings of each unrooted topology simultaneously; training
// by expectation-maximization treats the rooting edge as a latent variable.
//
// Instances are not safe for concurrent use: training mutates the parameter
// vector and sampling draws from a per-instance random generator. Callers
// needing concurrent sampling must serialize access or use one instance per
// goroutine.
package sbn

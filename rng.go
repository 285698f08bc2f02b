package sbn

import (
	"math/rand"
	"time"
)

// RNG is the random source used for sampling. It wraps math/rand so a run
// can be reproduced from its seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a generator from an explicit seed.
func NewRNG(seed int64) *RNG {
	return &RNG{rand: rand.New(rand.NewSource(seed)), seed: seed}
}

func newTimeSeededRNG() *RNG {
	return NewRNG(time.Now().UnixNano())
}

// Seed returns the seed the generator was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Float64 returns a uniform draw from [0,1).
func (r *RNG) Float64() float64 { return r.rand.Float64() }

package demand

import (
	"math/rand"
)

// Sampler draws Poisson demand from a seeded generator by inverse transform
// over the distribution's PMF. A fixed seed reproduces the same sequence.
type Sampler struct {
	dist *Poisson
	rng  *rand.Rand
}

// NewSampler creates a sampler with its own generator seeded by seed.
func NewSampler(dist *Poisson, seed int64) *Sampler {
	return &Sampler{
		dist: dist,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next demand sample.
func (s *Sampler) Next() int {
	u := s.rng.Float64()

	k := 0
	acc := s.dist.PMF(0)
	for acc <= u {
		k++
		p := s.dist.PMF(k)
		// cumulative sum stalled below u from rounding, far in the tail
		if p == 0 && float64(k) > s.dist.Mean() {
			break
		}
		acc += p
	}
	return k
}

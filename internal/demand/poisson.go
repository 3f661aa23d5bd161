// ============================================================================
// Newsboy-DP Demand Model - Poisson demand law
// ============================================================================
//
// Package: internal/demand
// File: poisson.go
// Purpose: Stationary Poisson demand shared read-only by the cost model,
//          the solver and the simulator
//
// Evaluation:
//   pmf(k) = exp(-λ + k·ln λ - lnΓ(k+1))
//   Evaluated in the log domain (distuv.Poisson.LogProb) so λ and k in the
//   hundreds stay finite.
//
// Tables:
//   The model pre-computes pmf(0..support) once. Every entry is checked for
//   finiteness at construction; a non-finite entry means the parameters are
//   numerically degenerate and the model is rejected.
//
// ============================================================================

package demand

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrInvalidMean is returned for a zero, negative or non-finite mean
	ErrInvalidMean = errors.New("demand: mean must be finite and positive")
	// ErrNonFinite is returned when a probability evaluates to NaN or Inf
	ErrNonFinite = errors.New("demand: probability is not finite")
	// ErrInvalidSupport is returned for a negative truncation bound
	ErrInvalidSupport = errors.New("demand: support must be non-negative")
)

// Poisson is an immutable stationary Poisson demand distribution.
type Poisson struct {
	law     distuv.Poisson
	support int
	pmf     []float64 // pmf[k] for k = 0..support
	cdf     []float64 // cdf[k] = Σ pmf[0..k]
}

// NewPoisson builds the distribution with a pre-computed table on 0..support.
func NewPoisson(mean float64, support int) (*Poisson, error) {
	if !(mean > 0) || math.IsInf(mean, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidMean, mean)
	}
	if support < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSupport, support)
	}

	p := &Poisson{
		law:     distuv.Poisson{Lambda: mean},
		support: support,
		pmf:     make([]float64, support+1),
		cdf:     make([]float64, support+1),
	}

	acc := 0.0
	for k := 0; k <= support; k++ {
		v := p.eval(k)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: pmf(%d) with mean %v", ErrNonFinite, k, mean)
		}
		acc += v
		p.pmf[k] = v
		p.cdf[k] = acc
	}

	return p, nil
}

func (p *Poisson) eval(k int) float64 {
	return math.Exp(p.law.LogProb(float64(k)))
}

// Mean returns λ.
func (p *Poisson) Mean() float64 { return p.law.Lambda }

// Support returns the largest tabulated demand value.
func (p *Poisson) Support() int { return p.support }

// PMF returns P(D = k). Negative k has probability zero. Values beyond the
// tabulated support are evaluated directly.
func (p *Poisson) PMF(k int) float64 {
	if k < 0 {
		return 0
	}
	if k <= p.support {
		return p.pmf[k]
	}
	return p.eval(k)
}

// CDF returns P(D <= k).
func (p *Poisson) CDF(k int) float64 {
	if k < 0 {
		return 0
	}
	if k <= p.support {
		return p.cdf[k]
	}
	acc := p.cdf[p.support]
	for j := p.support + 1; j <= k; j++ {
		acc += p.eval(j)
	}
	return acc
}

// Quantile returns the smallest k with CDF(k) >= q. It returns -1 when q is
// not reached inside the tabulated support.
func (p *Poisson) Quantile(q float64) int {
	for k, c := range p.cdf {
		if c >= q {
			return k
		}
	}
	return -1
}

// TailMass returns P(D > support), the probability dropped by every sum
// truncated at the support bound.
func (p *Poisson) TailMass() float64 {
	tail := 1 - p.cdf[p.support]
	if tail < 0 {
		return 0
	}
	return tail
}

// ============================================================================
// Newsboy-DP Stage Cost Evaluator
// ============================================================================
//
// Package: internal/costmodel
// File: cost.go
// Purpose: Expected and realized single-stage cost of an ordering decision
//
// Expected cost (analytic, over the demand law):
//   s        = max(0, inventory + order)
//   holding  = h · Σ_{d=0..s}        (s - d) · pmf(d)
//   shortage = p · Σ_{d=s+1..bound}  (d - s) · pmf(d)
//   ordering = K + c · order   when order > 0, else 0
//
//   bound is the demand support of the distribution (2M by default).
//
// Realized cost (one demand outcome, used by the simulator):
//   after = inventory + order - demand
//   cost  = h · max(0, after) + p · max(0, -after) + ordering
//
// ============================================================================

package costmodel

import (
	"errors"
	"fmt"
	"math"

	"github.com/ChuLiYu/newsboy-dp/internal/demand"
)

// ErrNegativeRate is returned when any cost rate is negative.
var ErrNegativeRate = errors.New("costmodel: cost rates must be non-negative")

// Rates holds the per-stage cost coefficients.
type Rates struct {
	UnitOrder  float64 `yaml:"unit_order"`  // c: per unit ordered
	Holding    float64 `yaml:"holding"`     // h: per unit left over
	Shortage   float64 `yaml:"shortage"`    // p: per unit short
	FixedOrder float64 `yaml:"fixed_order"` // K: per order placed
}

// Validate rejects negative or non-finite rates.
func (r Rates) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"unit_order", r.UnitOrder},
		{"holding", r.Holding},
		{"shortage", r.Shortage},
		{"fixed_order", r.FixedOrder},
	}
	for _, f := range fields {
		if f.value < 0 || math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s = %v", ErrNegativeRate, f.name, f.value)
		}
	}
	return nil
}

// Evaluator computes stage costs against one demand distribution. It is
// read-only after construction and safe for concurrent use.
type Evaluator struct {
	dist  *demand.Poisson
	rates Rates
	bound int

	// inventory cost (holding + shortage) per post-order level 0..cached-1
	levelCost []float64
}

// NewEvaluator caches the expected inventory cost for post-order levels
// 0..maxLevel. Levels above maxLevel are evaluated on demand.
func NewEvaluator(dist *demand.Poisson, rates Rates, maxLevel int) (*Evaluator, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	if maxLevel < 0 {
		maxLevel = 0
	}

	e := &Evaluator{
		dist:  dist,
		rates: rates,
		bound: dist.Support(),
	}

	e.levelCost = make([]float64, maxLevel+1)
	for s := range e.levelCost {
		e.levelCost[s] = e.inventoryCost(s)
	}
	return e, nil
}

// Rates returns the configured coefficients.
func (e *Evaluator) Rates() Rates { return e.rates }

func (e *Evaluator) inventoryCost(s int) float64 {
	holding := 0.0
	for d := 0; d <= s; d++ {
		holding += float64(s-d) * e.dist.PMF(d)
	}
	holding *= e.rates.Holding

	shortage := 0.0
	for d := s + 1; d <= e.bound; d++ {
		shortage += float64(d-s) * e.dist.PMF(d)
	}
	shortage *= e.rates.Shortage

	return holding + shortage
}

// ExpectedInventoryCost returns expected holding plus shortage cost at
// post-order level s (clamped to zero).
func (e *Evaluator) ExpectedInventoryCost(s int) float64 {
	if s < 0 {
		s = 0
	}
	if s < len(e.levelCost) {
		return e.levelCost[s]
	}
	return e.inventoryCost(s)
}

// OrderCost is K + c·order for a positive order, zero otherwise.
func (e *Evaluator) OrderCost(order int) float64 {
	if order <= 0 {
		return 0
	}
	return e.rates.FixedOrder + e.rates.UnitOrder*float64(order)
}

// ExpectedStageCost returns the expected cost of ordering order units from
// inventoryBefore.
func (e *Evaluator) ExpectedStageCost(inventoryBefore, order int) float64 {
	return e.ExpectedInventoryCost(inventoryBefore+order) + e.OrderCost(order)
}

// RealizedCost returns the cost of one stage for a known demand outcome.
func (e *Evaluator) RealizedCost(inventoryBefore, order, demanded int) float64 {
	after := inventoryBefore + order - demanded
	holding := e.rates.Holding * float64(max(0, after))
	shortage := e.rates.Shortage * float64(max(0, -after))
	return holding + shortage + e.OrderCost(order)
}

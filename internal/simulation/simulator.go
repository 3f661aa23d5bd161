// ============================================================================
// Newsboy-DP Forward Simulator
// ============================================================================
//
// Package: internal/simulation
// File: simulator.go
// Purpose: Replay a demand sequence against a solved policy table
//
// Flow:
//   1. Draw exactly T demands from the Source up front (immutable afterwards)
//   2. For t = 0..T-1:
//        order  = Policy[t][inventory]
//        after  = inventory + order - demand[t]
//        cost   = realized stage cost
//        inventory = after   (shortfall is carried as backlog)
//   3. Sum the stage costs
//
// Single goroutine; only the finished policy table is read.
//
// ============================================================================

package simulation

import (
	"errors"
	"fmt"

	"github.com/ChuLiYu/newsboy-dp/internal/costmodel"
	"github.com/ChuLiYu/newsboy-dp/internal/policy"
	"github.com/ChuLiYu/newsboy-dp/pkg/types"
)

// ErrNegativeDemand is returned when a source yields a negative sample.
var ErrNegativeDemand = errors.New("simulation: negative demand sample")

// Source produces demand samples. demand.Sampler is the seeded Poisson
// implementation; SliceSource replays a fixed sequence.
type Source interface {
	Next() int
}

// SliceSource replays a fixed sequence, wrapping around at the end.
type SliceSource struct {
	values []int
	pos    int
}

// NewSliceSource returns a source over values. An empty slice yields zeros.
func NewSliceSource(values []int) *SliceSource {
	return &SliceSource{values: append([]int(nil), values...)}
}

// Next returns the next value of the sequence.
func (s *SliceSource) Next() int {
	if len(s.values) == 0 {
		return 0
	}
	v := s.values[s.pos%len(s.values)]
	s.pos++
	return v
}

// Simulator replays policies from one solved table.
type Simulator struct {
	table *policy.Table
	eval  *costmodel.Evaluator
}

// New binds the simulator to a solved table and the cost rates used to
// price each realized stage.
func New(table *policy.Table, eval *costmodel.Evaluator) *Simulator {
	return &Simulator{table: table, eval: eval}
}

// Draw takes the demand sequence for one run, one sample per decision stage.
func (s *Simulator) Draw(src Source) ([]int, error) {
	demands := make([]int, s.table.Horizon())
	for t := range demands {
		d := src.Next()
		if d < 0 {
			return nil, fmt.Errorf("%w: stage %d got %d", ErrNegativeDemand, t, d)
		}
		demands[t] = d
	}
	return demands, nil
}

// Run draws T demands from src and replays the policy from initial inventory.
func (s *Simulator) Run(src Source, initial int) (types.Trajectory, error) {
	demands, err := s.Draw(src)
	if err != nil {
		return types.Trajectory{}, err
	}
	return s.Replay(demands, initial)
}

// Replay runs the policy against a given demand sequence of length T.
func (s *Simulator) Replay(demands []int, initial int) (types.Trajectory, error) {
	if len(demands) != s.table.Horizon() {
		return types.Trajectory{}, fmt.Errorf("simulation: need %d demands, got %d", s.table.Horizon(), len(demands))
	}

	traj := types.Trajectory{Steps: make([]types.Step, 0, len(demands))}
	inventory := initial

	for t, d := range demands {
		order, err := s.table.Order(t, inventory)
		if err != nil {
			return types.Trajectory{}, fmt.Errorf("simulation stage %d: %w", t, err)
		}

		cost := s.eval.RealizedCost(inventory, order, d)
		after := inventory + order - d

		traj.Steps = append(traj.Steps, types.Step{
			Stage:           t,
			InventoryBefore: inventory,
			Order:           order,
			Demand:          d,
			InventoryAfter:  after,
			Cost:            cost,
		})
		traj.TotalCost += cost
		inventory = after
	}

	return traj, nil
}

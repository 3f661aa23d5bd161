package simulation

import (
	"testing"

	"github.com/ChuLiYu/newsboy-dp/internal/costmodel"
	"github.com/ChuLiYu/newsboy-dp/internal/demand"
	"github.com/ChuLiYu/newsboy-dp/internal/policy"
	"github.com/ChuLiYu/newsboy-dp/internal/solver"
	"github.com/ChuLiYu/newsboy-dp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultRates = costmodel.Rates{UnitOrder: 1, Holding: 2, Shortage: 10}

type fixture struct {
	dist  *demand.Poisson
	eval  *costmodel.Evaluator
	table *policy.Table
}

func newFixture(t *testing.T, horizon, capacity int, mean float64) fixture {
	t.Helper()

	dist, err := demand.NewPoisson(mean, 2*capacity)
	require.NoError(t, err)
	eval, err := costmodel.NewEvaluator(dist, defaultRates, capacity)
	require.NoError(t, err)
	s, err := solver.New(solver.Config{Horizon: horizon, Capacity: capacity, Workers: 4}, dist, eval)
	require.NoError(t, err)
	table, err := s.Solve()
	require.NoError(t, err)

	return fixture{dist: dist, eval: eval, table: table}
}

func TestSliceSource(t *testing.T) {
	src := NewSliceSource([]int{3, 1, 4})
	assert.Equal(t, []int{3, 1, 4, 3, 1}, []int{src.Next(), src.Next(), src.Next(), src.Next(), src.Next()})

	empty := NewSliceSource(nil)
	assert.Equal(t, 0, empty.Next())
}

func TestReplay_FollowsPolicyAndCostFormula(t *testing.T) {
	f := newFixture(t, 5, 30, 8)
	sim := New(f.table, f.eval)

	demands := []int{8, 12, 0, 20, 5}
	traj, err := sim.Replay(demands, 0)
	require.NoError(t, err)
	require.Len(t, traj.Steps, 5)

	inventory := 0
	total := 0.0
	for i, step := range traj.Steps {
		want, err := f.table.Order(i, inventory)
		require.NoError(t, err)

		assert.Equal(t, i, step.Stage)
		assert.Equal(t, inventory, step.InventoryBefore)
		assert.Equal(t, want, step.Order)
		assert.Equal(t, demands[i], step.Demand)

		after := inventory + want - demands[i]
		assert.Equal(t, after, step.InventoryAfter)
		cost := 2*float64(max(0, after)) + 10*float64(max(0, -after))
		if want > 0 {
			cost += float64(want)
		}
		assert.InDelta(t, cost, step.Cost, 1e-12)

		total += step.Cost
		inventory = after
	}
	assert.InDelta(t, total, traj.TotalCost, 1e-9)
}

func TestReplay_CarriesBacklog(t *testing.T) {
	f := newFixture(t, 2, 30, 8)
	sim := New(f.table, f.eval)

	traj, err := sim.Replay([]int{25, 0}, 0)
	require.NoError(t, err)

	first := traj.Steps[0]
	assert.Less(t, first.InventoryAfter, 0)
	assert.Equal(t, first.InventoryAfter, traj.Steps[1].InventoryBefore)
}

func TestReplay_OutOfRangeInventoryFails(t *testing.T) {
	f := newFixture(t, 2, 10, 3)
	sim := New(f.table, f.eval)

	_, err := sim.Replay([]int{40, 0}, 0)
	assert.ErrorIs(t, err, policy.ErrInventoryOutOfRange)

	_, err = sim.Replay([]int{0, 0}, 11)
	assert.ErrorIs(t, err, policy.ErrInventoryOutOfRange)
}

func TestReplay_WrongLength(t *testing.T) {
	f := newFixture(t, 3, 10, 3)
	_, err := New(f.table, f.eval).Replay([]int{1, 2}, 0)
	assert.Error(t, err)
}

func TestRun_NegativeDemandRejected(t *testing.T) {
	f := newFixture(t, 3, 10, 3)
	_, err := New(f.table, f.eval).Run(NewSliceSource([]int{1, -2, 3}), 0)
	assert.ErrorIs(t, err, ErrNegativeDemand)
}

func TestRun_SeededSourceReproducible(t *testing.T) {
	f := newFixture(t, 10, 40, 12)
	sim := New(f.table, f.eval)

	a, err := sim.Run(demand.NewSampler(f.dist, 42), 0)
	require.NoError(t, err)
	b, err := sim.Run(demand.NewSampler(f.dist, 42), 0)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Greater(t, a.TotalCost, 0.0)
}

func TestRun_ReferenceScenarioReproducible(t *testing.T) {
	if testing.Short() {
		t.Skip("full 30-stage solve")
	}

	f := newFixture(t, 30, 100, 20)
	sim := New(f.table, f.eval)

	runs := make([]types.Trajectory, 2)
	for i := range runs {
		traj, err := sim.Run(demand.NewSampler(f.dist, 42), 0)
		require.NoError(t, err)
		require.Len(t, traj.Steps, 30)
		runs[i] = traj
	}
	assert.Equal(t, runs[0], runs[1])

	// from an empty shelf the first order reaches the stage-0 base stock
	assert.Equal(t, 24, runs[0].Steps[0].Order)
}

func TestSummarize(t *testing.T) {
	traj := types.Trajectory{
		Steps: []types.Step{
			{InventoryBefore: 0, Order: 10, Demand: 8, InventoryAfter: 2, Cost: 14},
			{InventoryBefore: 2, Order: 5, Demand: 9, InventoryAfter: -2, Cost: 25},
		},
		TotalCost: 39,
	}

	st := Summarize(traj)
	assert.InDelta(t, 19.5, st.Mean, 1e-12)
	assert.InDelta(t, 7.7781745930520225, st.StdDev, 1e-9)
	assert.Equal(t, 25.0, st.Max)
	assert.InDelta(t, 15.0/17.0, st.FillRate, 1e-12)
	assert.Equal(t, 0.5, st.StockoutPct)

	assert.Equal(t, Stats{}, Summarize(types.Trajectory{}))
}

package solver

// ============================================================================
// Solver 測試檔案
// 職責：驗證邊界條件、訂貨上下限、分割互斥、決定性與報童問題臨界分位
// ============================================================================

import (
	"sync"
	"testing"
	"time"

	"github.com/ChuLiYu/newsboy-dp/internal/costmodel"
	"github.com/ChuLiYu/newsboy-dp/internal/demand"
	"github.com/ChuLiYu/newsboy-dp/internal/policy"
	"github.com/ChuLiYu/newsboy-dp/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"
)

var defaultRates = costmodel.Rates{UnitOrder: 1, Holding: 2, Shortage: 10, FixedOrder: 0}

func solve(t *testing.T, cfg Config, mean float64, rates costmodel.Rates, opts ...Option) *policy.Table {
	t.Helper()

	dist, err := demand.NewPoisson(mean, 2*cfg.Capacity)
	require.NoError(t, err)
	eval, err := costmodel.NewEvaluator(dist, rates, cfg.Capacity)
	require.NoError(t, err)
	s, err := New(cfg, dist, eval, opts...)
	require.NoError(t, err)

	table, err := s.Solve()
	require.NoError(t, err)
	return table
}

// ============================================================================
// 配置驗證
// ============================================================================

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Horizon: 30, Capacity: 100, Workers: 8}, false},
		{"zero capacity", Config{Horizon: 1, Capacity: 0, Workers: 1}, false},
		{"zero horizon", Config{Horizon: 0, Capacity: 10, Workers: 1}, true},
		{"negative capacity", Config{Horizon: 1, Capacity: -1, Workers: 1}, true},
		{"no workers", Config{Horizon: 1, Capacity: 10, Workers: 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_RejectsNarrowSupport(t *testing.T) {
	dist, err := demand.NewPoisson(5, 5)
	require.NoError(t, err)
	eval, err := costmodel.NewEvaluator(dist, defaultRates, 10)
	require.NoError(t, err)

	_, err = New(Config{Horizon: 1, Capacity: 10, Workers: 1}, dist, eval)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(Config{Horizon: 1, Capacity: 10, Workers: 1}, nil, eval)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

// ============================================================================
// 分割
// ============================================================================

func TestPartition_DisjointAndCovering(t *testing.T) {
	for _, capacity := range []int{0, 1, 3, 10, 100} {
		for _, workers := range []int{1, 2, 3, 7, 8, 16, 500} {
			levels := types.Range{Lo: -capacity, Hi: capacity + 1}
			parts := Partition(levels, workers)

			require.NotEmpty(t, parts)
			assert.LessOrEqual(t, len(parts), workers)

			owner := make(map[int]int)
			for w, r := range parts {
				assert.Greater(t, r.Len(), 0, "M=%d W=%d range %d empty", capacity, workers, w)
				for inv := r.Lo; inv < r.Hi; inv++ {
					prev, taken := owner[inv]
					require.False(t, taken, "M=%d W=%d inventory %d in ranges %d and %d", capacity, workers, inv, prev, w)
					owner[inv] = w
				}
			}
			assert.Len(t, owner, levels.Len(), "M=%d W=%d", capacity, workers)
			assert.Equal(t, levels.Lo, parts[0].Lo)
			assert.Equal(t, levels.Hi, parts[len(parts)-1].Hi)
		}
	}
}

func TestPartition_LastAbsorbsRemainder(t *testing.T) {
	parts := Partition(types.Range{Lo: -100, Hi: 101}, 8)

	require.Len(t, parts, 8)
	for _, r := range parts[:7] {
		assert.Equal(t, 25, r.Len())
	}
	assert.Equal(t, 26, parts[7].Len())
}

func TestPartition_Empty(t *testing.T) {
	assert.Nil(t, Partition(types.Range{Lo: 0, Hi: 0}, 4))
}

// ============================================================================
// 逆向歸納性質
// ============================================================================

func TestSolve_TerminalBoundary(t *testing.T) {
	cfg := Config{Horizon: 4, Capacity: 15, Workers: 3}
	table := solve(t, cfg, 6, defaultRates)

	for inv := -15; inv <= 15; inv++ {
		v, err := table.Value(4, inv)
		require.NoError(t, err)
		assert.Equal(t, 0.0, v, "V[T][%d]", inv)
	}
}

func TestSolve_OrderBounds(t *testing.T) {
	cfg := Config{Horizon: 5, Capacity: 20, Workers: 4}
	table := solve(t, cfg, 8, costmodel.Rates{UnitOrder: 1, Holding: 2, Shortage: 10, FixedOrder: 5})

	for stage := 0; stage < 5; stage++ {
		for inv := -20; inv <= 20; inv++ {
			q, err := table.Order(stage, inv)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, q, 0)
			assert.LessOrEqual(t, q, 20-max(0, inv), "stage %d inventory %d", stage, inv)
		}
	}
}

func TestSolve_ValuesNonDecreasingBackward(t *testing.T) {
	cfg := Config{Horizon: 6, Capacity: 20, Workers: 4}
	table := solve(t, cfg, 8, defaultRates)

	// more stages remaining never costs less with non-negative rates
	for stage := 0; stage < 6; stage++ {
		now, err := table.Value(stage, 0)
		require.NoError(t, err)
		later, err := table.Value(stage+1, 0)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, now, later, "stage %d", stage)
	}
}

func TestSolve_TieBreakPicksSmallestOrder(t *testing.T) {
	// every order costs exactly zero: the first candidate must win
	cfg := Config{Horizon: 3, Capacity: 10, Workers: 2}
	table := solve(t, cfg, 4, costmodel.Rates{})

	for stage := 0; stage < 3; stage++ {
		for inv := -10; inv <= 10; inv++ {
			q, err := table.Order(stage, inv)
			require.NoError(t, err)
			assert.Equal(t, 0, q)
		}
	}
}

func TestSolve_DeterministicAcrossWorkerCounts(t *testing.T) {
	base := Config{Horizon: 6, Capacity: 25, Workers: 1}
	rates := costmodel.Rates{UnitOrder: 1, Holding: 2, Shortage: 10, FixedOrder: 3}
	reference := solve(t, base, 10, rates)

	for _, workers := range []int{2, 3, 8, 51} {
		cfg := base
		cfg.Workers = workers
		table := solve(t, cfg, 10, rates)

		for stage := 0; stage <= base.Horizon; stage++ {
			for inv := -25; inv <= 25; inv++ {
				want, err := reference.Value(stage, inv)
				require.NoError(t, err)
				got, err := table.Value(stage, inv)
				require.NoError(t, err)
				require.Equal(t, want, got, "workers=%d V[%d][%d]", workers, stage, inv)

				if stage < base.Horizon {
					wantQ, _ := reference.Order(stage, inv)
					gotQ, _ := table.Order(stage, inv)
					require.Equal(t, wantQ, gotQ, "workers=%d policy[%d][%d]", workers, stage, inv)
				}
			}
		}
	}
}

func TestSolve_RepeatedRunsIdentical(t *testing.T) {
	cfg := Config{Horizon: 4, Capacity: 15, Workers: 8}
	a := solve(t, cfg, 6, defaultRates)
	b := solve(t, cfg, 6, defaultRates)

	for stage := 0; stage < 4; stage++ {
		for inv := -15; inv <= 15; inv++ {
			va, _ := a.Value(stage, inv)
			vb, _ := b.Value(stage, inv)
			assert.Equal(t, va, vb)
		}
	}
}

// ============================================================================
// 報童問題（T = 1）
// ============================================================================

func TestSolve_NewsvendorCriticalFractile(t *testing.T) {
	tests := []struct {
		name     string
		rates    costmodel.Rates
		fractile float64
		want     int
	}{
		// p/(p+h) = 10/12
		{"no purchase cost", costmodel.Rates{Holding: 2, Shortage: 10}, 10.0 / 12.0, 24},
		// (p-c)/(p+h) = 9/12
		{"unit purchase cost", costmodel.Rates{UnitOrder: 1, Holding: 2, Shortage: 10}, 9.0 / 12.0, 23},
	}

	ref := distuv.Poisson{Lambda: 20}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// smallest s whose Poisson CDF reaches the fractile
			s := 0
			for ref.CDF(float64(s)) < tt.fractile {
				s++
			}
			require.Equal(t, tt.want, s)

			table := solve(t, Config{Horizon: 1, Capacity: 100, Workers: 8}, 20, tt.rates)
			q, err := table.Order(0, 0)
			require.NoError(t, err)
			assert.Equal(t, s, q)

			// from above the fractile nothing is ordered
			q, err = table.Order(0, s+5)
			require.NoError(t, err)
			assert.Equal(t, 0, q)
		})
	}
}

func TestSolve_NewsvendorValue(t *testing.T) {
	table := solve(t, Config{Horizon: 1, Capacity: 100, Workers: 8}, 20, costmodel.Rates{Holding: 2, Shortage: 10})

	v, err := table.Value(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 13.85120888482091, v, 1e-9)
}

// ============================================================================
// 端到端情境與單調性
// ============================================================================

func TestSolve_ReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("full 30-stage solve")
	}

	table := solve(t, Config{Horizon: 30, Capacity: 100, Workers: 8}, 20, defaultRates)

	v, err := table.Value(0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1019.0700365765533, v, 1e-6)

	q, err := table.Order(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 24, q)
}

func TestSolve_MoreCapacityNeverHurts(t *testing.T) {
	small := solve(t, Config{Horizon: 3, Capacity: 22, Workers: 4}, 20, defaultRates)
	large := solve(t, Config{Horizon: 3, Capacity: 30, Workers: 4}, 20, defaultRates)

	vs, err := small.Value(0, 0)
	require.NoError(t, err)
	vl, err := large.Value(0, 0)
	require.NoError(t, err)

	assert.LessOrEqual(t, vl, vs)
	assert.InDelta(t, 119.18145089859064, vs, 1e-6)
	assert.InDelta(t, 105.18963052085012, vl, 1e-6)
}

// ============================================================================
// Recorder
// ============================================================================

type countingRecorder struct {
	mu     sync.Mutex
	stages []int
	ranges int
}

func (r *countingRecorder) RecordStage(stage int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stage)
}

func (r *countingRecorder) RecordRange(int, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ranges++
}

func TestSolve_RecorderSeesStagesBackToFront(t *testing.T) {
	rec := &countingRecorder{}
	solve(t, Config{Horizon: 4, Capacity: 5, Workers: 3}, 3, defaultRates, WithRecorder(rec))

	assert.Equal(t, []int{3, 2, 1, 0}, rec.stages)
	assert.Equal(t, 4*3, rec.ranges)
}

// ============================================================================
// Newsboy-DP Solver - 逆向歸納（Backward Induction）求解器
// ============================================================================
//
// Package: internal/solver
// 文件: solver.go
// 功能: 自最後階段往第一階段逐階段計算最小期望成本與最佳訂貨量
//
// 遞推:
//   V[T][i] = 0
//   V[t][i] = min_{q=0..M-max(0,i)}  c(i, q) + Σ_{j=-M..M, s-j>=0} pmf(s-j)·V[t+1][j]
//   其中 s = i + q，c(i, q) 為 costmodel 的期望階段成本
//   同分時取最小的 q（遞增列舉 + 嚴格小於比較）
//
// 並行:
//   [-M, M] 切成 W 個連續且互不重疊的區間，每個區間一個任務。
//   每個階段提交 W 個任務後收回 W 個結果（屏障），才進入 t-1。
//   每個任務只寫入 policy.Table.Rows 交給它的子切片，因此寫入不需要鎖；
//   讀取的 V[t+1] 在屏障之前已完整寫入，之後不再變動。
//
// 決定性:
//   每一格的計算順序與分割方式無關，1 個 worker 與 N 個 worker 的結果逐位元相同。
//
// ============================================================================

package solver

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/ChuLiYu/newsboy-dp/internal/costmodel"
	"github.com/ChuLiYu/newsboy-dp/internal/demand"
	"github.com/ChuLiYu/newsboy-dp/internal/policy"
	"github.com/ChuLiYu/newsboy-dp/internal/worker"
	"github.com/ChuLiYu/newsboy-dp/pkg/types"
)

var log = slog.Default()

var (
	// ErrInvalidConfig 求解參數不合法
	ErrInvalidConfig = errors.New("solver: invalid configuration")
	// ErrNonFiniteCost 最小成本為 NaN 或 Inf，屬於數值缺陷
	ErrNonFiniteCost = errors.New("solver: non-finite expected cost")
)

// Config 求解器配置
type Config struct {
	Horizon  int // T：決策階段數
	Capacity int // M：庫存上限，狀態空間為 [-M, M]
	Workers  int // 每個階段的並行區間數
}

// Validate 檢查配置
func (c Config) Validate() error {
	if c.Horizon < 1 {
		return fmt.Errorf("%w: horizon %d < 1", ErrInvalidConfig, c.Horizon)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("%w: capacity %d < 0", ErrInvalidConfig, c.Capacity)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d < 1", ErrInvalidConfig, c.Workers)
	}
	return nil
}

// Recorder receives timing observations from a solve. metrics.Collector
// implements it.
type Recorder interface {
	RecordStage(stage int, d time.Duration)
	RecordRange(workerID int, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) RecordStage(int, time.Duration) {}
func (nopRecorder) RecordRange(int, time.Duration) {}

// Option 調整 Solver
type Option func(*Solver)

// WithRecorder 設定計時觀測者
func WithRecorder(r Recorder) Option {
	return func(s *Solver) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Solver 逆向歸納求解器
type Solver struct {
	cfg      Config
	dist     *demand.Poisson
	eval     *costmodel.Evaluator
	recorder Recorder
}

// New 建立求解器
func New(cfg Config, dist *demand.Poisson, eval *costmodel.Evaluator, opts ...Option) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dist == nil || eval == nil {
		return nil, fmt.Errorf("%w: demand model and cost evaluator are required", ErrInvalidConfig)
	}
	if dist.Support() < cfg.Capacity {
		return nil, fmt.Errorf("%w: demand support %d below capacity %d", ErrInvalidConfig, dist.Support(), cfg.Capacity)
	}

	s := &Solver{
		cfg:      cfg,
		dist:     dist,
		eval:     eval,
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Partition 將 levels 切成最多 workers 個連續、互不重疊的區間。
// 前 n-1 個區間長度為 len/n，最後一個吸收餘數。
func Partition(levels types.Range, workers int) []types.Range {
	total := levels.Len()
	if total == 0 {
		return nil
	}
	if workers > total {
		workers = total
	}
	if workers < 1 {
		workers = 1
	}

	per := total / workers
	parts := make([]types.Range, 0, workers)
	for w := 0; w < workers; w++ {
		lo := levels.Lo + w*per
		hi := lo + per
		if w == workers-1 {
			hi = levels.Hi
		}
		parts = append(parts, types.Range{Lo: lo, Hi: hi})
	}
	return parts
}

// Solve 執行完整的逆向歸納，回傳填滿的 policy.Table
func (s *Solver) Solve() (*policy.Table, error) {
	start := time.Now()

	table := policy.NewTable(s.cfg.Horizon, s.cfg.Capacity)
	parts := Partition(table.Levels(), s.cfg.Workers)

	pool := worker.NewPool(len(parts), func(task worker.Task) error {
		return s.solveRange(table, task)
	})
	if err := pool.Start(len(parts)); err != nil {
		return nil, fmt.Errorf("failed to start worker pool: %w", err)
	}
	defer pool.Stop()

	for t := s.cfg.Horizon - 1; t >= 0; t-- {
		stageStart := time.Now()

		for _, r := range parts {
			if err := pool.Submit(worker.Task{Stage: t, Range: r}); err != nil {
				return nil, fmt.Errorf("stage %d: submit: %w", t, err)
			}
		}

		// barrier: every range of stage t must land before t-1 starts
		var stageErr error
		for range parts {
			result, err := pool.ReceiveResult()
			if err != nil {
				return nil, fmt.Errorf("stage %d: receive: %w", t, err)
			}
			s.recorder.RecordRange(result.WorkerID, result.Duration)
			if result.Err != nil && stageErr == nil {
				stageErr = result.Err
			}
		}
		if stageErr != nil {
			return nil, fmt.Errorf("stage %d: %w", t, stageErr)
		}

		elapsed := time.Since(stageStart)
		s.recorder.RecordStage(t, elapsed)
		log.Debug("stage solved", "stage", t, "ranges", len(parts), "duration", elapsed)
	}

	v, _ := table.Value(0, 0)
	log.Info("backward induction complete",
		"horizon", s.cfg.Horizon,
		"capacity", s.cfg.Capacity,
		"workers", pool.GetWorkerCount(),
		"value", v,
		"duration", time.Since(start))

	return table, nil
}

// solveRange 計算單一階段中一個庫存區間的最佳值與訂貨量
func (s *Solver) solveRange(table *policy.Table, task worker.Task) error {
	values, orders, err := table.Rows(task.Stage, task.Range)
	if err != nil {
		return err
	}
	next := table.ValueRow(task.Stage + 1)
	capacity := s.cfg.Capacity

	for idx := range values {
		inv := task.Range.Lo + idx

		minCost := math.Inf(1)
		bestOrder := 0
		maxOrder := capacity - max(0, inv)

		for order := 0; order <= maxOrder; order++ {
			current := s.eval.ExpectedStageCost(inv, order)
			total := current + s.continuation(next, inv+order)
			if total < minCost {
				minCost = total
				bestOrder = order
			}
		}

		if math.IsInf(minCost, 0) || math.IsNaN(minCost) {
			return fmt.Errorf("%w: stage %d inventory %d", ErrNonFiniteCost, task.Stage, inv)
		}
		values[idx] = minCost
		orders[idx] = bestOrder
	}
	return nil
}

// continuation 期望後續成本：Σ_{j=-M..min(s,M)} pmf(s-j)·V[t+1][j]
func (s *Solver) continuation(next []float64, level int) float64 {
	capacity := s.cfg.Capacity
	upper := min(level, capacity)

	sum := 0.0
	for j := -capacity; j <= upper; j++ {
		sum += s.dist.PMF(level-j) * next[j+capacity]
	}
	return sum
}

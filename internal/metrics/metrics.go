// ============================================================================
// Newsboy-DP Metrics - Prometheus 監控指標
// ============================================================================
//
// Package: internal/metrics
// 文件: metrics.go
// 功能: 收集求解與模擬的計時、成本指標，支援 Prometheus 抓取
//
// 指標分類:
//
//   1. 計數器 (Counter)：
//      - newsboy_stages_solved_total: 已完成的逆向歸納階段數
//
//   2. 分佈 (Histogram)：
//      - newsboy_stage_duration_seconds: 單一階段（一個波次）耗時
//      - newsboy_worker_range_duration_seconds{worker}: 單一區間任務耗時
//      - newsboy_simulation_stage_cost: 模擬中每階段實現成本
//
//   3. 瞬時值 (Gauge)：
//      - newsboy_solve_duration_seconds: 最近一次完整求解耗時
//      - newsboy_simulation_duration_seconds: 最近一次模擬耗時
//      - newsboy_expected_cost: V[0][0]
//      - newsboy_simulation_total_cost: 最近一次模擬總成本
//
// 查詢示例:
//
//   # 各 worker 的區間耗時差異（分割是否均衡）
//   histogram_quantile(0.95, sum by (worker, le) (newsboy_worker_range_duration_seconds_bucket))
//
// HTTP 端點:
//   metrics.enabled 時由 run 命令在 /metrics 暴露
//
// ============================================================================

package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ChuLiYu/newsboy-dp/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector Prometheus 指標收集器
type Collector struct {
	// 求解指標
	stagesSolved  prometheus.Counter
	stageDuration prometheus.Histogram
	rangeDuration *prometheus.HistogramVec
	solveDuration prometheus.Gauge
	expectedCost  prometheus.Gauge

	// 模擬指標
	simDuration  prometheus.Gauge
	simTotalCost prometheus.Gauge
	simStageCost prometheus.Histogram
}

// NewCollector 創建新的指標收集器並註冊到 reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		stagesSolved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsboy_stages_solved_total",
			Help: "Total number of backward induction stages solved",
		}),
		stageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsboy_stage_duration_seconds",
			Help:    "Wall time of one backward induction stage",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		rangeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newsboy_worker_range_duration_seconds",
			Help:    "Wall time of one inventory range task",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		}, []string{"worker"}),
		solveDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsboy_solve_duration_seconds",
			Help: "Wall time of the last complete solve",
		}),
		expectedCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsboy_expected_cost",
			Help: "Expected optimal cost from stage 0 at inventory 0",
		}),
		simDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsboy_simulation_duration_seconds",
			Help: "Wall time of the last simulation",
		}),
		simTotalCost: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "newsboy_simulation_total_cost",
			Help: "Realized total cost of the last simulation",
		}),
		simStageCost: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsboy_simulation_stage_cost",
			Help:    "Realized cost per simulated stage",
			Buckets: prometheus.LinearBuckets(0, 10, 15),
		}),
	}

	reg.MustRegister(
		c.stagesSolved,
		c.stageDuration,
		c.rangeDuration,
		c.solveDuration,
		c.expectedCost,
		c.simDuration,
		c.simTotalCost,
		c.simStageCost,
	)

	return c
}

// RecordStage 記錄一個階段完成
func (c *Collector) RecordStage(_ int, d time.Duration) {
	c.stagesSolved.Inc()
	c.stageDuration.Observe(d.Seconds())
}

// RecordRange 記錄一個區間任務耗時
func (c *Collector) RecordRange(workerID int, d time.Duration) {
	c.rangeDuration.WithLabelValues(strconv.Itoa(workerID)).Observe(d.Seconds())
}

// RecordSolve 記錄完整求解結果
func (c *Collector) RecordSolve(d time.Duration, expectedCost float64) {
	c.solveDuration.Set(d.Seconds())
	c.expectedCost.Set(expectedCost)
}

// RecordSimulation 記錄一次模擬
func (c *Collector) RecordSimulation(traj types.Trajectory, d time.Duration) {
	c.simDuration.Set(d.Seconds())
	c.simTotalCost.Set(traj.TotalCost)
	for _, step := range traj.Steps {
		c.simStageCost.Observe(step.Cost)
	}
}

// Handler 回傳 gatherer 的 /metrics handler
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// StartServer 啟動 Prometheus metrics HTTP 伺服器（阻塞）
func StartServer(port int, g prometheus.Gatherer) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	addr := fmt.Sprintf(":%d", port)
	return http.ListenAndServe(addr, mux)
}

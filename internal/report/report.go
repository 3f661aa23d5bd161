// Package report renders solve and simulation results for the console.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ChuLiYu/newsboy-dp/internal/policy"
	"github.com/ChuLiYu/newsboy-dp/internal/simulation"
	"github.com/ChuLiYu/newsboy-dp/pkg/types"
)

// Run is everything printed after one solve + simulate cycle.
type Run struct {
	ExpectedCost float64 // V[0][0]
	TailMass     float64 // demand probability beyond the truncation bound
	Trajectory   types.Trajectory
	Stats        simulation.Stats
	SolveTime    time.Duration
	SimTime      time.Duration
}

// WriteRun prints the expected cost, one line per simulated stage, the
// realized total and the two timings.
func WriteRun(w io.Writer, r Run) error {
	p := &printer{w: w}

	p.printf("DP value is %.6g\n", r.ExpectedCost)
	p.printf("Multi-Stage Newsboy Model Simulation Results (Poisson, Parallel):\n")
	for _, step := range r.Trajectory.Steps {
		p.printf("Stage %d: Inventory=%.1f, Order=%d, Demand=%.1f, Cost=%.2f\n",
			step.Stage+1, float64(step.InventoryBefore), step.Order, float64(step.Demand), step.Cost)
	}
	p.printf("Total Cost: %.2f\n", r.Trajectory.TotalCost)
	p.printf("Stage Cost: mean=%.2f stddev=%.2f max=%.2f\n", r.Stats.Mean, r.Stats.StdDev, r.Stats.Max)
	p.printf("Service: fill rate=%.1f%% stockout stages=%.1f%%\n", r.Stats.FillRate*100, r.Stats.StockoutPct*100)
	p.printf("Demand Tail Beyond Support: %.3g\n", r.TailMass)
	p.printf("Dynamic Programming Time: %.2f ms\n", ms(r.SolveTime))
	p.printf("Simulation Time: %.2f ms\n", ms(r.SimTime))

	return p.err
}

// WritePolicy prints the base-stock summary of every decision stage.
func WritePolicy(w io.Writer, summary []policy.StageSummary) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	p := &printer{w: tw}

	p.printf("STAGE\tORDER-UP-TO\tNO-ORDER-FROM\tEXPECTED-COST\n")
	for _, s := range summary {
		p.printf("%d\t%d\t%d\t%.2f\n", s.Stage+1, s.OrderUpTo, s.NoOrderFrom, s.ExpectedCost)
	}
	if p.err != nil {
		return p.err
	}
	return tw.Flush()
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// printer keeps the first write error
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

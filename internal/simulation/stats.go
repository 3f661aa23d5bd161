package simulation

import (
	"github.com/ChuLiYu/newsboy-dp/pkg/types"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the realized stage costs of one trajectory.
type Stats struct {
	Mean        float64
	StdDev      float64
	Max         float64
	FillRate    float64 // share of demand served from stock on hand
	StockoutPct float64 // share of stages ending short
}

// Summarize computes cost and service statistics of a trajectory.
func Summarize(traj types.Trajectory) Stats {
	n := len(traj.Steps)
	if n == 0 {
		return Stats{}
	}

	costs := make([]float64, n)
	demanded, served := 0, 0
	stockouts := 0
	for i, step := range traj.Steps {
		costs[i] = step.Cost

		available := max(0, step.InventoryBefore+step.Order)
		demanded += step.Demand
		served += min(available, step.Demand)
		if step.InventoryAfter < 0 {
			stockouts++
		}
	}

	st := Stats{
		Max:         floats.Max(costs),
		StockoutPct: float64(stockouts) / float64(n),
		FillRate:    1,
	}
	if n > 1 {
		st.Mean, st.StdDev = stat.MeanStdDev(costs, nil)
	} else {
		st.Mean = costs[0]
	}
	if demanded > 0 {
		st.FillRate = float64(served) / float64(demanded)
	}
	return st
}

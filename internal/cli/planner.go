package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/ChuLiYu/newsboy-dp/internal/costmodel"
	"github.com/ChuLiYu/newsboy-dp/internal/demand"
	"github.com/ChuLiYu/newsboy-dp/internal/metrics"
	"github.com/ChuLiYu/newsboy-dp/internal/policy"
	"github.com/ChuLiYu/newsboy-dp/internal/report"
	"github.com/ChuLiYu/newsboy-dp/internal/simulation"
	"github.com/ChuLiYu/newsboy-dp/internal/solver"
)

// planner wires the demand model, cost model and solver for one config
type planner struct {
	cfg       *Config
	dist      *demand.Poisson
	eval      *costmodel.Evaluator
	collector *metrics.Collector
}

func newPlanner(cfg *Config, collector *metrics.Collector) (*planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dist, err := demand.NewPoisson(cfg.Model.DemandMean, cfg.Support())
	if err != nil {
		return nil, fmt.Errorf("failed to build demand model: %w", err)
	}

	eval, err := costmodel.NewEvaluator(dist, cfg.Cost, cfg.Model.Capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to build cost model: %w", err)
	}

	return &planner{cfg: cfg, dist: dist, eval: eval, collector: collector}, nil
}

// solve runs backward induction and returns the table and its wall time
func (p *planner) solve() (*policy.Table, time.Duration, error) {
	opts := []solver.Option{}
	if p.collector != nil {
		opts = append(opts, solver.WithRecorder(p.collector))
	}

	s, err := solver.New(solver.Config{
		Horizon:  p.cfg.Model.Horizon,
		Capacity: p.cfg.Model.Capacity,
		Workers:  p.cfg.Solver.Workers,
	}, p.dist, p.eval, opts...)
	if err != nil {
		return nil, 0, err
	}

	start := time.Now()
	table, err := s.Solve()
	if err != nil {
		return nil, 0, fmt.Errorf("solve failed: %w", err)
	}
	elapsed := time.Since(start)

	if p.collector != nil {
		v, _ := table.Value(0, 0)
		p.collector.RecordSolve(elapsed, v)
	}
	return table, elapsed, nil
}

// run solves, simulates with the seeded Poisson source and writes the report
func (p *planner) run(out io.Writer) error {
	table, solveTime, err := p.solve()
	if err != nil {
		return err
	}
	expected, err := table.Value(0, 0)
	if err != nil {
		return err
	}

	sim := simulation.New(table, p.eval)
	simStart := time.Now()
	traj, err := sim.Run(demand.NewSampler(p.dist, p.cfg.Simulation.Seed), p.cfg.Simulation.InitialInventory)
	if err != nil {
		return fmt.Errorf("simulation failed: %w", err)
	}
	simTime := time.Since(simStart)

	if p.collector != nil {
		p.collector.RecordSimulation(traj, simTime)
	}

	return report.WriteRun(out, report.Run{
		ExpectedCost: expected,
		TailMass:     p.dist.TailMass(),
		Trajectory:   traj,
		Stats:        simulation.Summarize(traj),
		SolveTime:    solveTime,
		SimTime:      simTime,
	})
}

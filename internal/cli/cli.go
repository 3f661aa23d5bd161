// ============================================================================
// Newsboy-DP CLI - Command Line Interface
// ============================================================================
//
// Package: internal/cli
// File: cli.go
// Purpose: Cobra command tree for the multi-stage newsboy planner
//
// Command Structure:
//   newsboy                        # Root command (same as run)
//   ├── run                        # Solve, simulate, print report
//   │   ├── --workers              # Override solver.workers
//   │   └── --seed                 # Override simulation.seed
//   ├── policy                     # Solve and print base-stock summary
//   ├── status                     # Show effective configuration
//   ├── --config, -c               # YAML config (default: built-in values)
//   └── --version
//
// Configuration Management:
//   Without --config the planner runs the built-in model:
//   T=30, M=100, λ=20, c=1, h=2, p=10, K=0, 8 workers, seed 42.
//   A YAML file overrides any subset of these (see config.go).
//   The configuration is validated before any computation starts.
//
// run Command:
//   1. Load and validate config
//   2. Start Metrics HTTP server (if enabled)
//   3. Backward induction over all stages
//   4. Replay the policy against the seeded demand sequence
//   5. Print the report to stdout
//   6. If metrics are enabled, keep serving until SIGINT/SIGTERM
//
// ============================================================================

package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ChuLiYu/newsboy-dp/internal/metrics"
	"github.com/ChuLiYu/newsboy-dp/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var configFile string

func BuildCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "newsboy",
		Short: "Newsboy-DP: multi-stage inventory planning under Poisson demand",
		Long: `Newsboy-DP computes an optimal ordering policy with:
- finite-horizon backward induction
- parallel per-stage evaluation over inventory ranges
- seeded forward simulation of the resulting policy
- Prometheus metrics`,
		Version:       "1.0.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanner(cmd.OutOrStdout(), 0, nil)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (default: built-in model)")

	rootCmd.AddCommand(buildRunCommand())
	rootCmd.AddCommand(buildPolicyCommand())
	rootCmd.AddCommand(buildStatusCommand())

	return rootCmd
}

func buildRunCommand() *cobra.Command {
	var workers int
	var seed int64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Solve the policy and simulate it",
		Long:  "Run backward induction, replay the policy against a seeded Poisson demand path and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			var seedOverride *int64
			if cmd.Flags().Changed("seed") {
				seedOverride = &seed
			}
			return runPlanner(cmd.OutOrStdout(), workers, seedOverride)
		},
	}

	cmd.Flags().IntVar(&workers, "workers", 0, "override solver.workers")
	cmd.Flags().Int64Var(&seed, "seed", 0, "override simulation.seed")

	return cmd
}

func runPlanner(out io.Writer, workers int, seed *int64) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if workers > 0 {
		cfg.Solver.Workers = workers
	}
	if seed != nil {
		cfg.Simulation.Seed = *seed
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	p, err := newPlanner(cfg, collector)
	if err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		go func() {
			log.Printf("Starting metrics server on :%d\n", cfg.Metrics.Port)
			if err := metrics.StartServer(cfg.Metrics.Port, reg); err != nil {
				log.Printf("Metrics server error: %v\n", err)
			}
		}()
	}

	if err := p.run(out); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		log.Println("Metrics available until interrupted (Ctrl+C)")
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
	}
	return nil
}

func buildPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Solve and print the per-stage base-stock levels",
		Long:  "Run backward induction and print, per stage, the order-up-to level from an empty shelf and the inventory at which ordering stops",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPolicy(cmd.OutOrStdout())
		},
	}
	return cmd
}

func showPolicy(out io.Writer) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p, err := newPlanner(cfg, nil)
	if err != nil {
		return err
	}

	table, _, err := p.solve()
	if err != nil {
		return err
	}

	summary, err := table.Summarize()
	if err != nil {
		return err
	}
	return report.WritePolicy(out, summary)
}

func buildStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show effective configuration status",
		Long:  "Display the model, cost and solver parameters together with the single-stage critical fractile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(cmd.OutOrStdout())
		},
	}
	return cmd
}

func showStatus(out io.Writer) error {
	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p, err := newPlanner(cfg, nil)
	if err != nil {
		return err
	}

	source := configFile
	if source == "" {
		source = "(built-in defaults)"
	}

	c := cfg.Cost
	fractile := 0.0
	if c.Holding+c.Shortage > 0 {
		fractile = (c.Shortage - c.UnitOrder) / (c.Holding + c.Shortage)
	}

	fmt.Fprintln(out, "Newsboy-DP Configuration")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Model:")
	fmt.Fprintf(out, "  ├─ Config File:      %s\n", source)
	fmt.Fprintf(out, "  ├─ Horizon (T):      %d\n", cfg.Model.Horizon)
	fmt.Fprintf(out, "  ├─ Capacity (M):     %d\n", cfg.Model.Capacity)
	fmt.Fprintf(out, "  ├─ Demand Mean:      %g\n", cfg.Model.DemandMean)
	fmt.Fprintf(out, "  └─ Demand Support:   %d (tail mass %.3g)\n", cfg.Support(), p.dist.TailMass())
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Cost:")
	fmt.Fprintf(out, "  ├─ Unit Order (c):   %g\n", c.UnitOrder)
	fmt.Fprintf(out, "  ├─ Fixed Order (K):  %g\n", c.FixedOrder)
	fmt.Fprintf(out, "  ├─ Holding (h):      %g\n", c.Holding)
	fmt.Fprintf(out, "  └─ Shortage (p):     %g\n", c.Shortage)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Single-Stage Newsvendor:")
	fmt.Fprintf(out, "  ├─ Critical Fractile: %.4f\n", fractile)
	fmt.Fprintf(out, "  └─ Poisson Quantile:  %d\n", p.dist.Quantile(fractile))
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Solver:")
	fmt.Fprintf(out, "  ├─ Workers:          %d\n", cfg.Solver.Workers)
	fmt.Fprintf(out, "  ├─ Seed:             %d\n", cfg.Simulation.Seed)
	fmt.Fprintf(out, "  └─ Initial Stock:    %d\n", cfg.Simulation.InitialInventory)
	fmt.Fprintln(out)
	if cfg.Metrics.Enabled {
		fmt.Fprintf(out, "Metrics: enabled on http://localhost:%d/metrics\n", cfg.Metrics.Port)
	} else {
		fmt.Fprintln(out, "Metrics: disabled")
	}
	return nil
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"bmssp/pkg/bench"
	"bmssp/pkg/metrics"
)

var benchFlags struct {
	config      string
	count       int
	startSize   uint32
	stepEvery   int
	stepSize    uint32
	density     float64
	seed        uint64
	source      uint32
	verify      bool
	workers     int
	metricsFile string
}

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Compare Dijkstra and BMSSP on a series of random graphs",
	Long: `Generates a series of random directed graphs, runs Dijkstra and then BMSSP
from the same source on each, and prints timings, the faster algorithm and
the first vertex where the results diverge, if any.

Settings come from DefaultConfig, then --config (YAML), then flags.`,
	Args: cobra.NoArgs,
	RunE: runBench,
}

func init() {
	f := benchCmd.Flags()
	f.StringVar(&benchFlags.config, "config", "", "YAML config file")
	f.IntVar(&benchFlags.count, "count", 0, "Number of graphs")
	f.Uint32Var(&benchFlags.startSize, "start-size", 0, "Initial vertex count")
	f.IntVar(&benchFlags.stepEvery, "step-every", 0, "Grow the graph every N graphs")
	f.Uint32Var(&benchFlags.stepSize, "step-size", 0, "Vertices added per growth step")
	f.Float64Var(&benchFlags.density, "density", 0, "Edge density in [0, 1]")
	f.Uint64Var(&benchFlags.seed, "seed", 0, "Random seed")
	f.Uint32Var(&benchFlags.source, "source", 0, "Source vertex")
	f.BoolVar(&benchFlags.verify, "verify", false, "Also check results against Bellman-Ford")
	f.IntVar(&benchFlags.workers, "workers", 0, "Concurrent graph generators")
	f.StringVar(&benchFlags.metricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	rootCmd.AddCommand(benchCmd)
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg := bench.DefaultConfig()
	if benchFlags.config != "" {
		loaded, err := bench.LoadConfig(benchFlags.config)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("count") {
		cfg.Count = benchFlags.count
	}
	if flags.Changed("start-size") {
		cfg.StartSize = benchFlags.startSize
	}
	if flags.Changed("step-every") {
		cfg.StepEvery = benchFlags.stepEvery
	}
	if flags.Changed("step-size") {
		cfg.StepSize = benchFlags.stepSize
	}
	if flags.Changed("density") {
		cfg.Density = benchFlags.density
	}
	if flags.Changed("seed") {
		cfg.Seed = benchFlags.seed
	}
	if flags.Changed("source") {
		cfg.Source = benchFlags.source
	}
	if flags.Changed("verify") {
		cfg.VerifyOracle = benchFlags.verify
	}
	if flags.Changed("workers") {
		cfg.Workers = benchFlags.workers
	}

	reg := prometheus.NewRegistry()
	runner, err := bench.NewRunner(cfg, slog.Default(), metrics.New(reg))
	if err != nil {
		return err
	}

	report, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}
	if err := report.WriteText(cmd.OutOrStdout()); err != nil {
		return err
	}

	if benchFlags.metricsFile != "" {
		if err := prometheus.WriteToTextfile(benchFlags.metricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	if n := report.Mismatches(); n > 0 {
		return fmt.Errorf("%d of %d graphs disagreed", n, len(report.Results))
	}
	return nil
}

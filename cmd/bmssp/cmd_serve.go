package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"bmssp/pkg/api"
	"bmssp/pkg/metrics"
	"bmssp/pkg/routing"
	"bmssp/pkg/sssp"
)

var serveFlags struct {
	osm        osmFlags
	port       int
	corsOrigin string
	algorithm  string
	workers    int
	maxSnap    float64
	timeout    time.Duration
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve route queries over an OSM road network",
	Long: `Loads an OSM extract and answers POST /api/v1/route with the shortest
driving route between two coordinates, computed by BMSSP or Dijkstra.
Prometheus metrics are exposed on GET /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	serveFlags.osm.register(serveCmd)
	f.IntVar(&serveFlags.port, "port", 8080, "HTTP port")
	f.StringVar(&serveFlags.corsOrigin, "cors-origin", "", "CORS allowed origin (empty = same-origin)")
	f.StringVar(&serveFlags.algorithm, "algorithm", string(sssp.AlgorithmBmssp), "Shortest-path algorithm: bmssp or dijkstra")
	f.IntVar(&serveFlags.workers, "workers", 0, "Pooled solvers (0 = number of CPUs)")
	f.Float64Var(&serveFlags.maxSnap, "max-snap", routing.DefaultMaxSnapMeters, "Maximum snapping distance in meters")
	f.DurationVar(&serveFlags.timeout, "request-timeout", 30*time.Second, "Per-request time limit")
	_ = serveCmd.MarkFlagRequired("osm")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := slog.Default()
	start := time.Now()

	g, err := serveFlags.osm.load(cmd.Context(), logger)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	opts := []routing.EngineOption{
		routing.WithAlgorithm(sssp.Algorithm(serveFlags.algorithm)),
		routing.WithMaxSnapMeters(serveFlags.maxSnap),
		routing.WithLogger(logger),
	}
	if serveFlags.workers > 0 {
		opts = append(opts, routing.WithWorkers(serveFlags.workers))
	}
	engine, err := routing.NewEngine(g, opts...)
	if err != nil {
		return err
	}
	logger.Info("engine ready",
		slog.String("algorithm", string(engine.Algorithm())),
		slog.Int("segments", engine.Snapper().Len()),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)

	p := sssp.DeriveParams(int(g.NumNodes))
	stats := api.StatsResponse{
		NumNodes:  g.NumNodes,
		NumEdges:  g.NumEdges,
		Algorithm: string(engine.Algorithm()),
		K:         p.K,
		T:         p.T,
		Levels:    p.Levels,
	}

	cfg := api.DefaultConfig(fmt.Sprintf(":%d", serveFlags.port))
	cfg.CORSOrigin = serveFlags.corsOrigin
	cfg.RequestTimeout = serveFlags.timeout
	cfg.WriteTimeout = serveFlags.timeout + 5*time.Second

	srv := api.NewServer(cfg, api.NewHandlers(engine, stats, m, logger), reg)
	return api.ListenAndServe(srv, logger)
}

package sssp

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"bmssp/pkg/graph"
)

// Package-level tracer and meter for shortest-path runs.
var (
	tracer = otel.Tracer("bmssp.sssp")
	meter  = otel.Meter("bmssp.sssp")
)

var (
	runLatency     metric.Float64Histogram
	runTotal       metric.Int64Counter
	runRelaxations metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the instruments. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		runLatency, err = meter.Float64Histogram(
			"sssp_run_duration_seconds",
			metric.WithDescription("Duration of shortest-path runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runTotal, err = meter.Int64Counter(
			"sssp_run_total",
			metric.WithDescription("Total number of shortest-path runs"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		runRelaxations, err = meter.Int64Histogram(
			"sssp_run_relaxations",
			metric.WithDescription("Edge relaxations per run"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordRunMetrics records the instruments for a finished run.
func recordRunMetrics(ctx context.Context, st Stats) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("algorithm", string(st.Algorithm)))
	runLatency.Record(ctx, st.Elapsed.Seconds(), attrs)
	runTotal.Add(ctx, 1, attrs)
	runRelaxations.Record(ctx, int64(st.Relaxations), attrs)
}

// startRunSpan creates a span for one run.
func startRunSpan(ctx context.Context, alg Algorithm, g *graph.Graph, p Params) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Solver.Run",
		trace.WithAttributes(
			attribute.String("sssp.algorithm", string(alg)),
			attribute.Int("graph.node_count", int(g.NumNodes)),
			attribute.Int("graph.edge_count", int(g.NumEdges)),
			attribute.Int("sssp.k", p.K),
			attribute.Int("sssp.t", p.T),
			attribute.Int("sssp.levels", p.Levels),
		),
	)
}

// setRunSpanResult sets the result attributes on a run span.
func setRunSpanResult(span trace.Span, st Stats) {
	span.SetAttributes(
		attribute.Int("sssp.reached", st.Reached),
		attribute.Int64("sssp.relaxations", int64(st.Relaxations)),
		attribute.Int("sssp.frames", st.Frames),
		attribute.Int("sssp.max_depth", st.MaxDepth),
	)
}

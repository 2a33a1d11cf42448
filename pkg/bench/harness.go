package bench

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"bmssp/pkg/graph"
	"bmssp/pkg/metrics"
	"bmssp/pkg/sssp"
)

// Divergence is the first vertex where two distance tables disagree.
type Divergence struct {
	Vertex uint32
	Want   float64
	Got    float64
}

// Result is the outcome for one graph.
type Result struct {
	Index    int
	Vertices uint32
	Edges    uint32

	Dijkstra time.Duration
	Bmssp    time.Duration
	Stats    sssp.Stats // BMSSP counters

	// Divergence is nil when BMSSP matched Dijkstra on every vertex.
	Divergence *Divergence
	// OracleDivergence is set when the oracle was consulted and disagreed
	// with Dijkstra or BMSSP.
	OracleChecked    bool
	OracleDivergence *Divergence

	// Distance tables, kept only for graphs up to Config.PrintLimit.
	DijkstraDist []float64
	BmsspDist    []float64
}

// Match reports whether every check on this graph passed.
func (r Result) Match() bool {
	return r.Divergence == nil && r.OracleDivergence == nil
}

// Faster names the algorithm with the lower elapsed time. Ties go to Dijkstra.
func (r Result) Faster() sssp.Algorithm {
	if r.Bmssp < r.Dijkstra {
		return sssp.AlgorithmBmssp
	}
	return sssp.AlgorithmDijkstra
}

// Report is the outcome of a session.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Config   Config
	Results  []Result
}

// Mismatches counts graphs where any check failed.
func (r *Report) Mismatches() int {
	n := 0
	for _, res := range r.Results {
		if !res.Match() {
			n++
		}
	}
	return n
}

// Runner executes benchmark sessions.
type Runner struct {
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewRunner validates cfg and returns a Runner. m may be nil.
func NewRunner(cfg Config, logger *slog.Logger, m *metrics.Metrics) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{cfg: cfg, logger: logger, metrics: m}, nil
}

// Run generates every graph of the session, then times both algorithms on
// each, one graph at a time, from the configured source.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
		Config:  r.cfg,
	}
	logger := r.logger.With(slog.String("run_id", report.RunID))
	logger.Info("benchmark started",
		slog.Int("graphs", r.cfg.Count),
		slog.Float64("density", r.cfg.Density),
		slog.Uint64("seed", r.cfg.Seed),
	)

	graphs, err := r.generate(ctx)
	if err != nil {
		return nil, err
	}

	solverOpts := []sssp.Option{sssp.WithPrecision(r.cfg.Precision), sssp.WithLogger(logger)}
	solver := sssp.NewSolver(solverOpts...)

	for i, g := range graphs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res, err := r.runOne(ctx, solver, i, g, solverOpts)
		if err != nil {
			return nil, fmt.Errorf("graph %d: %w", i, err)
		}
		report.Results = append(report.Results, res)
		r.metrics.ObserveComparison(res.Match())

		logger.Debug("graph done",
			slog.Int("index", i),
			slog.Int("vertices", int(res.Vertices)),
			slog.Duration("dijkstra", res.Dijkstra),
			slog.Duration("bmssp", res.Bmssp),
			slog.Bool("match", res.Match()),
		)
	}

	report.Finished = time.Now()
	logger.Info("benchmark finished",
		slog.Int("graphs", len(report.Results)),
		slog.Int("mismatches", report.Mismatches()),
		slog.Duration("elapsed", report.Finished.Sub(report.Started)),
	)
	return report, nil
}

// generate builds the session's graphs concurrently. Graph i uses seed
// Seed+i, so the series does not depend on scheduling.
func (r *Runner) generate(ctx context.Context) ([]*graph.Graph, error) {
	graphs := make([]*graph.Graph, r.cfg.Count)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.cfg.Workers, 1))
	for i := range graphs {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			gr, err := graph.Random(r.cfg.SizeOf(i), r.cfg.Density, r.cfg.Seed+uint64(i))
			if err != nil {
				return fmt.Errorf("generate graph %d: %w", i, err)
			}
			graphs[i] = gr
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

func (r *Runner) runOne(ctx context.Context, s *sssp.Solver, i int, g *graph.Graph, opts []sssp.Option) (Result, error) {
	res := Result{Index: i, Vertices: g.NumNodes, Edges: g.NumEdges}
	if err := s.Attach(g); err != nil {
		return res, err
	}

	var err error
	res.Dijkstra, err = s.RunDijkstra(ctx, r.cfg.Source)
	if err != nil {
		return res, err
	}
	r.metrics.ObserveRun(string(sssp.AlgorithmDijkstra), res.Dijkstra)
	dijkstra := s.Dist()

	res.Bmssp, err = s.RunBmssp(ctx, r.cfg.Source)
	if err != nil {
		return res, err
	}
	r.metrics.ObserveRun(string(sssp.AlgorithmBmssp), res.Bmssp)
	res.Stats = s.Stats()
	bmssp := s.Dist()

	res.Divergence = firstDivergence(dijkstra, bmssp, r.cfg.Tolerance)

	if r.cfg.VerifyOracle {
		oracle, _, err := sssp.BellmanFord(g, r.cfg.Source, opts...)
		if err != nil {
			return res, err
		}
		res.OracleChecked = true
		res.OracleDivergence = firstDivergence(oracle, dijkstra, r.cfg.Tolerance)
		if res.OracleDivergence == nil {
			res.OracleDivergence = firstDivergence(oracle, bmssp, r.cfg.Tolerance)
		}
	}

	if g.NumNodes <= r.cfg.PrintLimit {
		res.DijkstraDist = dijkstra
		res.BmsspDist = bmssp
	}
	return res, nil
}

// firstDivergence returns the lowest vertex whose distances differ by more
// than tol, or nil. Two infinite distances are equal.
func firstDivergence(want, got []float64, tol float64) *Divergence {
	for v := range want {
		a, b := want[v], got[v]
		if a == b {
			continue
		}
		if math.IsInf(a, 0) || math.IsInf(b, 0) || math.Abs(a-b) > tol {
			return &Divergence{Vertex: uint32(v), Want: a, Got: b}
		}
	}
	return nil
}

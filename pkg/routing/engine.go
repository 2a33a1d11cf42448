package routing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"bmssp/pkg/graph"
	"bmssp/pkg/sssp"
)

// ErrNoRoute is returned when no route exists between the two points.
var ErrNoRoute = errors.New("no route found")

// LatLng represents a geographic coordinate.
type LatLng struct {
	Lat float64
	Lng float64
}

// Segment represents a road segment in the route result.
type Segment struct {
	DistanceMeters float64
	Geometry       []LatLng
}

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalDistanceMeters float64
	Segments            []Segment

	Algorithm  sssp.Algorithm
	SourceNode uint32
	TargetNode uint32
	Compute    time.Duration // time spent in the shortest-path run
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end LatLng) (*RouteResult, error)
}

type engineConfig struct {
	algorithm  sssp.Algorithm
	workers    int
	maxSnap    float64
	logger     *slog.Logger
	solverOpts []sssp.Option
}

// EngineOption configures an Engine.
type EngineOption func(*engineConfig)

// WithAlgorithm selects the shortest-path routine. The default is BMSSP.
func WithAlgorithm(alg sssp.Algorithm) EngineOption {
	return func(c *engineConfig) { c.algorithm = alg }
}

// WithWorkers sets how many queries may run at once. Each worker owns a
// Solver with its own distance table.
func WithWorkers(n int) EngineOption {
	return func(c *engineConfig) { c.workers = n }
}

// WithMaxSnapMeters sets the snapping radius.
func WithMaxSnapMeters(m float64) EngineOption {
	return func(c *engineConfig) { c.maxSnap = m }
}

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSolverOptions passes options to every Solver the engine creates.
func WithSolverOptions(opts ...sssp.Option) EngineOption {
	return func(c *engineConfig) { c.solverOpts = append(c.solverOpts, opts...) }
}

// Engine implements Router with single-source shortest paths from the
// snapped start point.
type Engine struct {
	g       *graph.Graph
	rev     *graph.Graph // for path walk-back
	snapper *Snapper
	alg     sssp.Algorithm
	logger  *slog.Logger

	solvers chan *sssp.Solver
}

// NewEngine creates a routing engine over g, which must carry coordinates.
func NewEngine(g *graph.Graph, opts ...EngineOption) (*Engine, error) {
	cfg := engineConfig{
		algorithm: sssp.AlgorithmBmssp,
		workers:   runtime.NumCPU(),
		maxSnap:   DefaultMaxSnapMeters,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.algorithm != sssp.AlgorithmBmssp && cfg.algorithm != sssp.AlgorithmDijkstra {
		return nil, fmt.Errorf("routing: unknown algorithm %q", cfg.algorithm)
	}
	cfg.workers = max(cfg.workers, 1)

	snapper, err := NewSnapper(g, cfg.maxSnap)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}

	solverOpts := append([]sssp.Option{sssp.WithLogger(cfg.logger)}, cfg.solverOpts...)
	solvers := make(chan *sssp.Solver, cfg.workers)
	for range cfg.workers {
		s := sssp.NewSolver(solverOpts...)
		if err := s.Attach(g); err != nil {
			return nil, fmt.Errorf("routing: %w", err)
		}
		solvers <- s
	}

	return &Engine{
		g:       g,
		rev:     graph.Reverse(g),
		snapper: snapper,
		alg:     cfg.algorithm,
		logger:  cfg.logger,
		solvers: solvers,
	}, nil
}

// Algorithm returns the shortest-path routine used for queries.
func (e *Engine) Algorithm() sssp.Algorithm { return e.alg }

// Snapper returns the engine's spatial index.
func (e *Engine) Snapper() *Snapper { return e.snapper }

// Route computes the shortest path between two points.
//
// The start point is snapped onto an edge u→v and the search starts at v,
// after the remaining part of that edge. The end point is snapped onto an
// edge u'→v' and reached through u'. When both points lie on the same edge
// in travel order, the direct stretch is also a candidate.
func (e *Engine) Route(ctx context.Context, start, end LatLng) (*RouteResult, error) {
	// Step 1: Snap points to nearest road segments.
	startSnap, err := e.snapper.Snap(start.Lat, start.Lng)
	if err != nil {
		return nil, err
	}
	endSnap, err := e.snapper.Snap(end.Lat, end.Lng)
	if err != nil {
		return nil, err
	}

	// Step 2: Borrow a solver.
	var s *sssp.Solver
	select {
	case s = <-e.solvers:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { e.solvers <- s }()

	// Step 3: Shortest paths from the head of the start edge.
	source := startSnap.NodeV
	target := endSnap.NodeU
	head := e.g.Weight[startSnap.EdgeIdx] * (1 - startSnap.Ratio)
	tail := e.g.Weight[endSnap.EdgeIdx] * endSnap.Ratio

	elapsed, err := s.Run(ctx, e.alg, source)
	if err != nil {
		return nil, err
	}

	best := math.Inf(1)
	var nodes []uint32
	if d := s.Distance(target); !math.IsInf(d, 1) {
		best = head + d + tail
		nodes = e.tracePath(s.Distance, source, target)
	}

	direct := false
	if startSnap.EdgeIdx == endSnap.EdgeIdx && endSnap.Ratio >= startSnap.Ratio {
		if d := e.g.Weight[startSnap.EdgeIdx] * (endSnap.Ratio - startSnap.Ratio); d <= best {
			best = d
			direct = true
		}
	}
	if math.IsInf(best, 1) {
		return nil, ErrNoRoute
	}

	// Step 4: Build geometry from the snapped points and the node path.
	geometry := []LatLng{e.pointOn(startSnap)}
	if !direct {
		for _, v := range nodes {
			geometry = append(geometry, LatLng{Lat: e.g.NodeLat[v], Lng: e.g.NodeLon[v]})
		}
	}
	geometry = append(geometry, e.pointOn(endSnap))

	e.logger.Debug("route computed",
		slog.String("algorithm", string(e.alg)),
		slog.Uint64("source", uint64(source)),
		slog.Uint64("target", uint64(target)),
		slog.Float64("meters", best),
		slog.Duration("compute", elapsed),
	)

	return &RouteResult{
		TotalDistanceMeters: best,
		Segments: []Segment{
			{
				DistanceMeters: best,
				Geometry:       geometry,
			},
		},
		Algorithm:  e.alg,
		SourceNode: source,
		TargetNode: target,
		Compute:    elapsed,
	}, nil
}

// tracePath recovers a node path from source to target by walking edges
// that are tight under dist, backwards from target. Breadth-first order
// keeps the walk finite on zero-weight cycles.
func (e *Engine) tracePath(dist func(uint32) float64, source, target uint32) []uint32 {
	if source == target {
		return []uint32{source}
	}

	next := map[uint32]uint32{target: target}
	queue := []uint32{target}
	for len(queue) > 0 {
		x := queue[0]
		queue = queue[1:]
		dx := dist(x)

		start, end := e.rev.EdgesFrom(x)
		for i := start; i < end; i++ {
			p := e.rev.Head[i]
			if _, seen := next[p]; seen {
				continue
			}
			dp := dist(p)
			if math.IsInf(dp, 1) || math.Abs(dp+e.rev.Weight[i]-dx) > 1e-6*max(1, dx) {
				continue
			}
			next[p] = x
			if p == source {
				path := []uint32{source}
				for v := source; v != target; {
					v = next[v]
					path = append(path, v)
				}
				return path
			}
			queue = append(queue, p)
		}
	}
	return nil
}

// pointOn interpolates the snapped position along its edge.
func (e *Engine) pointOn(r SnapResult) LatLng {
	uLat, uLon := e.g.NodeLat[r.NodeU], e.g.NodeLon[r.NodeU]
	vLat, vLon := e.g.NodeLat[r.NodeV], e.g.NodeLon[r.NodeV]
	return LatLng{
		Lat: uLat + (vLat-uLat)*r.Ratio,
		Lng: uLon + (vLon-uLon)*r.Ratio,
	}
}

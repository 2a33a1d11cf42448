package sssp

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"bmssp/pkg/graph"
)

// noParent marks a vertex without a parent in the pivot relaxation forest.
const noParent int32 = -1

// Solver computes single-source shortest-path distances over an attached
// graph, with either Dijkstra or BMSSP. The distance table is owned by the
// Solver and reused across runs; read it with Dist or Distance after a run.
// A Solver is not safe for concurrent use.
type Solver struct {
	cfg    config
	round  rounder
	logger *slog.Logger

	g      *graph.Graph
	params Params
	dist   []float64
	stats  Stats
	depth  int

	// Pivot forest scratch, indexed by vertex. Entries are restored through
	// the visited list after each search.
	parent []int32
	layer  []int32
	inW    []bool
	mark   []uint32
	stamp  uint32

	// Base case scratch.
	heap  MinHeap
	final []bool
}

// NewSolver returns a Solver with no graph attached.
func NewSolver(opts ...Option) *Solver {
	cfg := buildConfig(opts)
	return &Solver{
		cfg:    cfg,
		round:  newRounder(cfg.precision),
		logger: cfg.logger,
	}
}

// Attach validates g, derives the recursion parameters and sizes the
// distance table and scratch buffers. Any previous results are discarded.
func (s *Solver) Attach(g *graph.Graph) error {
	if g == nil || g.NumNodes == 0 {
		return ErrEmptyGraph
	}
	if err := g.Validate(); err != nil {
		return fmt.Errorf("attach graph: %w", err)
	}

	n := int(g.NumNodes)
	s.g = g
	s.params = DeriveParams(n)
	s.dist = make([]float64, n)
	for i := range s.dist {
		s.dist[i] = math.Inf(1)
	}
	s.parent = make([]int32, n)
	for i := range s.parent {
		s.parent[i] = noParent
	}
	s.layer = make([]int32, n)
	s.inW = make([]bool, n)
	s.mark = make([]uint32, n)
	s.stamp = 0
	s.final = make([]bool, n)
	s.heap = MinHeap{items: make([]Pair, 0, 64)}
	s.stats = Stats{}

	s.logger.Debug("graph attached",
		slog.Int("vertices", n),
		slog.Int("edges", int(g.NumEdges)),
		slog.Int("k", s.params.K),
		slog.Int("t", s.params.T),
		slog.Int("levels", s.params.Levels),
	)
	return nil
}

// Graph returns the attached graph, or nil.
func (s *Solver) Graph() *graph.Graph { return s.g }

// Params returns the recursion parameters derived at Attach.
func (s *Solver) Params() Params { return s.params }

// Precision returns the number of decimal places distances are rounded to,
// or a negative value when rounding is disabled.
func (s *Solver) Precision() int { return s.cfg.precision }

// Stats returns the counters of the most recent run.
func (s *Solver) Stats() Stats { return s.stats }

// Dist returns a copy of the distance table. Unreachable vertices are +Inf.
func (s *Solver) Dist() []float64 {
	out := make([]float64, len(s.dist))
	copy(out, s.dist)
	return out
}

// Distance returns the current distance of v.
func (s *Solver) Distance(v uint32) float64 {
	return s.dist[v]
}

// RunDijkstra computes distances from source with a binary-heap Dijkstra and
// returns the elapsed time.
func (s *Solver) RunDijkstra(ctx context.Context, source uint32) (time.Duration, error) {
	return s.run(ctx, AlgorithmDijkstra, source)
}

// RunBmssp computes distances from source with the bounded multi-source
// recursion and returns the elapsed time.
func (s *Solver) RunBmssp(ctx context.Context, source uint32) (time.Duration, error) {
	return s.run(ctx, AlgorithmBmssp, source)
}

// Run dispatches to RunDijkstra or RunBmssp.
func (s *Solver) Run(ctx context.Context, alg Algorithm, source uint32) (time.Duration, error) {
	switch alg {
	case AlgorithmDijkstra, AlgorithmBmssp:
		return s.run(ctx, alg, source)
	default:
		return 0, fmt.Errorf("sssp: unknown algorithm %q", alg)
	}
}

func (s *Solver) run(ctx context.Context, alg Algorithm, source uint32) (time.Duration, error) {
	if s.g == nil {
		return 0, ErrNotAttached
	}
	if source >= s.g.NumNodes {
		return 0, fmt.Errorf("%w: %d not in [0, %d)", ErrSourceOutOfRange, source, s.g.NumNodes)
	}
	// A run is not interruptible once started.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	ctx, span := startRunSpan(ctx, alg, s.g, s.params)
	defer span.End()

	s.resetDist(source)
	s.stats = Stats{Algorithm: alg, Source: source}
	s.depth = 0

	start := time.Now()
	switch alg {
	case AlgorithmDijkstra:
		s.dijkstra(source)
	case AlgorithmBmssp:
		s.bmssp(s.params.Levels, math.Inf(1), []uint32{source})
	}
	elapsed := time.Since(start)

	s.stats.Elapsed = elapsed
	for _, d := range s.dist {
		if !math.IsInf(d, 1) {
			s.stats.Reached++
		}
	}

	setRunSpanResult(span, s.stats)
	recordRunMetrics(ctx, s.stats)
	s.logger.Debug("sssp run complete",
		slog.String("algorithm", string(alg)),
		slog.Uint64("source", uint64(source)),
		slog.Duration("elapsed", elapsed),
		slog.Int("reached", s.stats.Reached),
		slog.Uint64("relaxations", s.stats.Relaxations),
	)
	return elapsed, nil
}

func (s *Solver) resetDist(source uint32) {
	for i := range s.dist {
		s.dist[i] = math.Inf(1)
	}
	s.dist[source] = 0
}

// dijkstra is the baseline: a lazy-deletion binary-heap Dijkstra.
func (s *Solver) dijkstra(source uint32) {
	h := &s.heap
	h.Reset()
	h.Push(source, 0)

	for h.Len() > 0 {
		item := h.Pop()
		u := item.Vertex
		if item.Dist > s.dist[u] {
			continue // stale entry
		}

		start, end := s.g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := s.g.Head[e]
			nd := s.round.round(item.Dist + s.g.Weight[e])
			s.stats.Relaxations++
			if nd < s.dist[v] {
				s.dist[v] = nd
				h.Push(v, nd)
			}
		}
	}
}

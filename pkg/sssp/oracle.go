package sssp

import (
	"fmt"
	"math"

	"bmssp/pkg/graph"
)

// NoPredecessor marks the source and unreachable vertices in a predecessor table.
const NoPredecessor = math.MaxUint32

// BellmanFord computes distances and predecessors from source by relaxing
// every edge up to n-1 times. It is O(V·E) and meant as a reference for
// checking the faster routines, so it applies the same rounding policy as a
// Solver built with the same options.
func BellmanFord(g *graph.Graph, source uint32, opts ...Option) (dist []float64, pred []uint32, err error) {
	if g == nil || g.NumNodes == 0 {
		return nil, nil, ErrEmptyGraph
	}
	if err := g.Validate(); err != nil {
		return nil, nil, fmt.Errorf("bellman-ford: %w", err)
	}
	if source >= g.NumNodes {
		return nil, nil, fmt.Errorf("%w: %d not in [0, %d)", ErrSourceOutOfRange, source, g.NumNodes)
	}

	round := newRounder(buildConfig(opts).precision)
	n := g.NumNodes
	dist = make([]float64, n)
	pred = make([]uint32, n)
	for i := range dist {
		dist[i] = math.Inf(1)
		pred[i] = NoPredecessor
	}
	dist[source] = 0

	for iter := uint32(1); iter < n; iter++ {
		changed := false
		for u := uint32(0); u < n; u++ {
			du := dist[u]
			if math.IsInf(du, 1) {
				continue
			}
			start, end := g.EdgesFrom(u)
			for e := start; e < end; e++ {
				v := g.Head[e]
				if nd := round.round(du + g.Weight[e]); nd < dist[v] {
					dist[v] = nd
					pred[v] = u
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
	return dist, pred, nil
}

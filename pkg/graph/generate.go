package graph

import (
	"fmt"
	"math/rand/v2"
)

// Weight range used by Random. Weights are drawn uniformly from [MinRandomWeight, MaxRandomWeight).
const (
	MinRandomWeight = 1.0
	MaxRandomWeight = 100.0
)

// Random generates a directed graph with n vertices. It makes
// ⌊density·n·(n-1)⌋ attempts to add an edge between two uniformly chosen
// vertices; self loops and repeated (u, v) pairs are skipped, so the
// resulting edge count is at most the number of attempts.
// The same seed always produces the same graph.
func Random(n uint32, density float64, seed uint64) (*Graph, error) {
	if density < 0 || density > 1 {
		return nil, fmt.Errorf("graph: density %v outside [0, 1]", density)
	}
	if n == 0 {
		return &Graph{FirstOut: []uint32{0}}, nil
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	attempts := int(density * float64(n) * float64(n-1))

	adj := make([][]Arc, n)
	seen := make(map[uint64]struct{}, attempts)
	for range attempts {
		from := rng.Uint32N(n)
		to := rng.Uint32N(n)
		w := MinRandomWeight + rng.Float64()*(MaxRandomWeight-MinRandomWeight)
		if from == to {
			continue
		}
		key := uint64(from)<<32 | uint64(to)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		adj[from] = append(adj[from], Arc{To: to, Weight: w})
	}
	return FromAdjacency(adj)
}

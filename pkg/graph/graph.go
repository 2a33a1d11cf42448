package graph

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNegativeWeight is returned when an edge carries a negative or NaN weight.
	ErrNegativeWeight = errors.New("graph: negative or NaN edge weight")
	// ErrDanglingEdge is returned when an edge endpoint is not a vertex of the graph.
	ErrDanglingEdge = errors.New("graph: edge endpoint out of range")
	// ErrMalformed is returned when the CSR arrays are inconsistent.
	ErrMalformed = errors.New("graph: malformed CSR arrays")
)

// Graph is an immutable directed graph in CSR (Compressed Sparse Row) format.
// Vertices are dense ids 0..NumNodes-1.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []float64 // len: NumEdges; nonnegative edge weight

	// Optional coordinates, set for graphs built from map data.
	NodeLat []float64
	NodeLon []float64
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// OutDegree returns the number of edges leaving u.
func (g *Graph) OutDegree(u uint32) uint32 {
	return g.FirstOut[u+1] - g.FirstOut[u]
}

// HasCoordinates reports whether every node carries a lat/lon pair.
func (g *Graph) HasCoordinates() bool {
	return g.NumNodes > 0 && len(g.NodeLat) == int(g.NumNodes) && len(g.NodeLon) == int(g.NumNodes)
}

// Validate checks the CSR invariants and that no weight is negative or NaN.
func (g *Graph) Validate() error {
	if len(g.FirstOut) != int(g.NumNodes)+1 {
		return fmt.Errorf("%w: len(FirstOut)=%d, want %d", ErrMalformed, len(g.FirstOut), g.NumNodes+1)
	}
	if len(g.Head) != int(g.NumEdges) || len(g.Weight) != int(g.NumEdges) {
		return fmt.Errorf("%w: %d heads, %d weights, want %d", ErrMalformed, len(g.Head), len(g.Weight), g.NumEdges)
	}
	if g.FirstOut[0] != 0 || g.FirstOut[g.NumNodes] != g.NumEdges {
		return fmt.Errorf("%w: FirstOut bounds [%d, %d]", ErrMalformed, g.FirstOut[0], g.FirstOut[g.NumNodes])
	}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		if end < start {
			return fmt.Errorf("%w: FirstOut not monotonic at %d", ErrMalformed, u)
		}
		for e := start; e < end; e++ {
			if g.Head[e] >= g.NumNodes {
				return fmt.Errorf("%w: edge %d->%d", ErrDanglingEdge, u, g.Head[e])
			}
			if w := g.Weight[e]; math.IsNaN(w) || w < 0 {
				return fmt.Errorf("%w: edge %d->%d has weight %v", ErrNegativeWeight, u, g.Head[e], w)
			}
		}
	}
	return nil
}

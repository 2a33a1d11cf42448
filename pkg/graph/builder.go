package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/osm"

	osmparser "bmssp/pkg/osm"
)

// Edge is a directed weighted edge between dense vertex ids.
type Edge struct {
	From   uint32
	To     uint32
	Weight float64
}

// Arc is an adjacency-list entry: the target vertex and the edge weight.
type Arc struct {
	To     uint32
	Weight float64
}

// Build creates a CSR Graph with numNodes vertices from an edge list.
// Edges leaving the same vertex keep their input order.
func Build(numNodes uint32, edges []Edge) (*Graph, error) {
	for i, e := range edges {
		if e.From >= numNodes || e.To >= numNodes {
			return nil, fmt.Errorf("edge %d (%d->%d): %w", i, e.From, e.To, ErrDanglingEdge)
		}
		if math.IsNaN(e.Weight) || e.Weight < 0 {
			return nil, fmt.Errorf("edge %d (%d->%d) weight %v: %w", i, e.From, e.To, e.Weight, ErrNegativeWeight)
		}
	}

	numEdges := uint32(len(edges))
	firstOut := make([]uint32, numNodes+1)
	head := make([]uint32, numEdges)
	weight := make([]float64, numEdges)

	// Count edges per node.
	for _, e := range edges {
		firstOut[e.From+1]++
	}
	// Prefix sum.
	for i := uint32(1); i <= numNodes; i++ {
		firstOut[i] += firstOut[i-1]
	}

	// Place edges into CSR order.
	pos := make([]uint32, numNodes)
	copy(pos, firstOut[:numNodes])
	for _, e := range edges {
		idx := pos[e.From]
		head[idx] = e.To
		weight[idx] = e.Weight
		pos[e.From]++
	}

	return &Graph{
		NumNodes: numNodes,
		NumEdges: numEdges,
		FirstOut: firstOut,
		Head:     head,
		Weight:   weight,
	}, nil
}

// FromAdjacency creates a CSR Graph from per-vertex adjacency lists.
// Vertex i is adj[i]; the number of vertices is len(adj).
func FromAdjacency(adj [][]Arc) (*Graph, error) {
	var edges []Edge
	for u, arcs := range adj {
		for _, a := range arcs {
			edges = append(edges, Edge{From: uint32(u), To: a.To, Weight: a.Weight})
		}
	}
	return Build(uint32(len(adj)), edges)
}

// BuildOSM creates a CSR Graph from parsed OSM edges. OSM node ids are
// remapped to dense ids in order of first appearance; weights are meters.
func BuildOSM(result *osmparser.ParseResult) *Graph {
	raw := result.Edges
	if len(raw) == 0 {
		return &Graph{FirstOut: []uint32{0}}
	}

	// Collect all unique node IDs and build a compact mapping.
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID

	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}

	edges := make([]Edge, len(raw))
	for i, e := range raw {
		edges[i] = Edge{
			From:   addNode(e.FromNodeID),
			To:     addNode(e.ToNodeID),
			Weight: e.Meters,
		}
	}

	// Sort edges by source node, then target, so adjacency order is
	// independent of way order in the extract.
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	numNodes := uint32(len(nodeIDs))
	g, err := Build(numNodes, edges)
	if err != nil {
		// Parser weights are haversine distances and ids come from nodeSet.
		panic(fmt.Sprintf("graph: inconsistent OSM parse result: %v", err))
	}

	g.NodeLat = make([]float64, numNodes)
	g.NodeLon = make([]float64, numNodes)
	for id, idx := range nodeSet {
		g.NodeLat[idx] = result.NodeLat[id]
		g.NodeLon[idx] = result.NodeLon[id]
	}
	return g
}

// Reverse returns the transpose of g: every edge u→v becomes v→u with the
// same weight. Coordinates are shared with g.
func Reverse(g *Graph) *Graph {
	edges := make([]Edge, 0, g.NumEdges)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			edges = append(edges, Edge{From: g.Head[e], To: u, Weight: g.Weight[e]})
		}
	}
	rev, err := Build(g.NumNodes, edges)
	if err != nil {
		panic(fmt.Sprintf("graph: reverse of invalid graph: %v", err))
	}
	rev.NodeLat = g.NodeLat
	rev.NodeLon = g.NodeLon
	return rev
}

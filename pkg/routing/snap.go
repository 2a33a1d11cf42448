package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"bmssp/pkg/geo"
	"bmssp/pkg/graph"
)

// DefaultMaxSnapMeters is how far a query point may be from the nearest road.
const DefaultMaxSnapMeters = 500.0

var (
	// ErrPointTooFar is returned when the query point is too far from any road.
	ErrPointTooFar = errors.New("point too far from road")
	// ErrNoCoordinates is returned when snapping over a graph without coordinates.
	ErrNoCoordinates = errors.New("graph has no node coordinates")
)

// SnapResult represents a point snapped to a road segment.
type SnapResult struct {
	EdgeIdx uint32  // index into the graph's edge arrays
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Ratio   float64 // 0.0 = at NodeU, 1.0 = at NodeV
	Dist    float64 // distance in meters from query point to snapped point
}

// Nearest returns whichever edge endpoint the snapped point is closer to.
func (r SnapResult) Nearest() uint32 {
	if r.Ratio < 0.5 {
		return r.NodeU
	}
	return r.NodeV
}

// Snapper finds the nearest road segment to a coordinate. Edges are indexed
// by their bounding boxes in an R-tree.
type Snapper struct {
	tree    rtree.RTreeG[uint32]
	g       *graph.Graph
	tail    []uint32 // source node of each edge
	maxDist float64
}

// NewSnapper builds the spatial index over every edge of g. maxMeters ≤ 0
// selects DefaultMaxSnapMeters.
func NewSnapper(g *graph.Graph, maxMeters float64) (*Snapper, error) {
	if !g.HasCoordinates() {
		return nil, ErrNoCoordinates
	}
	if maxMeters <= 0 {
		maxMeters = DefaultMaxSnapMeters
	}

	s := &Snapper{
		g:       g,
		tail:    make([]uint32, g.NumEdges),
		maxDist: maxMeters,
	}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			s.tail[e] = u
			uLat, uLon := g.NodeLat[u], g.NodeLon[u]
			vLat, vLon := g.NodeLat[v], g.NodeLon[v]
			s.tree.Insert(
				[2]float64{math.Min(uLon, vLon), math.Min(uLat, vLat)},
				[2]float64{math.Max(uLon, vLon), math.Max(uLat, vLat)},
				e,
			)
		}
	}
	return s, nil
}

// Len returns the number of indexed edges.
func (s *Snapper) Len() int { return s.tree.Len() }

// MaxDistance returns the snapping radius in meters.
func (s *Snapper) MaxDistance() float64 { return s.maxDist }

// Snap finds the nearest road segment to the given lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	minLat, minLon, maxLat, maxLon := geo.Expand(lat, lng, s.maxDist)

	bestDist := math.Inf(1)
	var best SnapResult
	s.tree.Search(
		[2]float64{minLon, minLat},
		[2]float64{maxLon, maxLat},
		func(_, _ [2]float64, e uint32) bool {
			u := s.tail[e]
			v := s.g.Head[e]
			d, ratio := geo.PointToSegmentDist(
				lat, lng,
				s.g.NodeLat[u], s.g.NodeLon[u],
				s.g.NodeLat[v], s.g.NodeLon[v],
			)
			// Equal distances resolve to the lower edge index so results do
			// not depend on tree layout.
			if d < bestDist || (d == bestDist && e < best.EdgeIdx) {
				bestDist = d
				best = SnapResult{EdgeIdx: e, NodeU: u, NodeV: v, Ratio: ratio, Dist: d}
			}
			return true
		},
	)

	if bestDist > s.maxDist {
		return SnapResult{}, ErrPointTooFar
	}
	return best, nil
}

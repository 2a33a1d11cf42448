package routing

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bmssp/pkg/graph"
	osmparser "bmssp/pkg/osm"
	"bmssp/pkg/sssp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// buildGridGraph creates a small road network.
//
//	10 ---100--- 20 ---200--- 30
//	|                          |
//	300                       400
//	|                          |
//	40 ---500--- 50 ---600--- 60
//
// All edges bidirectional. Weights in meters.
func buildGridGraph(t *testing.T) *graph.Graph {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 10, ToNodeID: 20, Meters: 100},
			{FromNodeID: 20, ToNodeID: 10, Meters: 100},
			{FromNodeID: 20, ToNodeID: 30, Meters: 200},
			{FromNodeID: 30, ToNodeID: 20, Meters: 200},
			{FromNodeID: 10, ToNodeID: 40, Meters: 300},
			{FromNodeID: 40, ToNodeID: 10, Meters: 300},
			{FromNodeID: 30, ToNodeID: 60, Meters: 400},
			{FromNodeID: 60, ToNodeID: 30, Meters: 400},
			{FromNodeID: 40, ToNodeID: 50, Meters: 500},
			{FromNodeID: 50, ToNodeID: 40, Meters: 500},
			{FromNodeID: 50, ToNodeID: 60, Meters: 600},
			{FromNodeID: 60, ToNodeID: 50, Meters: 600},
		},
		NodeLat: map[osm.NodeID]float64{10: 1.300, 20: 1.300, 30: 1.300, 40: 1.301, 50: 1.301, 60: 1.301},
		NodeLon: map[osm.NodeID]float64{10: 103.800, 20: 103.801, 30: 103.802, 40: 103.800, 50: 103.801, 60: 103.802},
	}
	return graph.BuildOSM(result)
}

// buildOneWayGraph creates a one-way triangle A→B→C→A with 1000 m edges and
// a separate one-way street D→E.
func buildOneWayGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := graph.Build(5, []graph.Edge{
		{From: 0, To: 1, Weight: 1000},
		{From: 1, To: 2, Weight: 1000},
		{From: 2, To: 0, Weight: 1000},
		{From: 3, To: 4, Weight: 1000},
	})
	require.NoError(t, err)
	g.NodeLat = []float64{1.0, 1.0, 1.01, 1.1, 1.1}
	g.NodeLon = []float64{103.0, 103.01, 103.005, 103.0, 103.01}
	return g
}

func newTestEngine(t *testing.T, g *graph.Graph, opts ...EngineOption) *Engine {
	t.Helper()
	eng, err := NewEngine(g, append([]EngineOption{WithLogger(quietLogger()), WithWorkers(2)}, opts...)...)
	require.NoError(t, err)
	return eng
}

func TestRouteEndToEnd(t *testing.T) {
	g := buildGridGraph(t)

	for _, alg := range []sssp.Algorithm{sssp.AlgorithmBmssp, sssp.AlgorithmDijkstra} {
		eng := newTestEngine(t, g, WithAlgorithm(alg))
		assert.Equal(t, alg, eng.Algorithm())

		// From node 10 to node 60.
		result, err := eng.Route(context.Background(),
			LatLng{Lat: 1.300, Lng: 103.800},
			LatLng{Lat: 1.301, Lng: 103.802},
		)
		require.NoError(t, err, "algorithm %s", alg)

		assert.InDelta(t, 700.0, result.TotalDistanceMeters, 1e-6)
		require.Len(t, result.Segments, 1)
		geom := result.Segments[0].Geometry
		require.GreaterOrEqual(t, len(geom), 4)
		assert.InDelta(t, 1.300, geom[0].Lat, 1e-9)
		assert.InDelta(t, 103.800, geom[0].Lng, 1e-9)
		assert.InDelta(t, 1.301, geom[len(geom)-1].Lat, 1e-9)
		assert.InDelta(t, 103.802, geom[len(geom)-1].Lng, 1e-9)
		assert.Equal(t, alg, result.Algorithm)
	}
}

func TestRouteSameEdge(t *testing.T) {
	eng := newTestEngine(t, buildOneWayGraph(t))
	ctx := context.Background()

	// Along the edge in travel order: the direct stretch wins.
	result, err := eng.Route(ctx, LatLng{Lat: 1.0, Lng: 103.002}, LatLng{Lat: 1.0, Lng: 103.008})
	require.NoError(t, err)
	assert.InDelta(t, 600.0, result.TotalDistanceMeters, 1e-6)
	assert.Len(t, result.Segments[0].Geometry, 2)

	// Against travel order: around the triangle through B, C and A.
	result, err = eng.Route(ctx, LatLng{Lat: 1.0, Lng: 103.008}, LatLng{Lat: 1.0, Lng: 103.002})
	require.NoError(t, err)
	assert.InDelta(t, 2400.0, result.TotalDistanceMeters, 1e-6)
	assert.Equal(t, uint32(1), result.SourceNode)
	assert.Equal(t, uint32(0), result.TargetNode)
	assert.Len(t, result.Segments[0].Geometry, 5)
}

func TestRouteNoRoute(t *testing.T) {
	eng := newTestEngine(t, buildOneWayGraph(t))

	_, err := eng.Route(context.Background(), LatLng{Lat: 1.1, Lng: 103.008}, LatLng{Lat: 1.1, Lng: 103.002})
	assert.ErrorIs(t, err, ErrNoRoute)
}

func TestRoutePointTooFar(t *testing.T) {
	eng := newTestEngine(t, buildOneWayGraph(t))

	_, err := eng.Route(context.Background(), LatLng{Lat: 2.0, Lng: 104.0}, LatLng{Lat: 1.0, Lng: 103.002})
	assert.ErrorIs(t, err, ErrPointTooFar)

	_, err = eng.Route(context.Background(), LatLng{Lat: 1.0, Lng: 103.002}, LatLng{Lat: -5.0, Lng: 10.0})
	assert.ErrorIs(t, err, ErrPointTooFar)
}

func TestRouteCanceled(t *testing.T) {
	eng := newTestEngine(t, buildOneWayGraph(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.Route(ctx, LatLng{Lat: 1.0, Lng: 103.002}, LatLng{Lat: 1.0, Lng: 103.008})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewEngineErrors(t *testing.T) {
	g, err := graph.Build(2, []graph.Edge{{From: 0, To: 1, Weight: 1}})
	require.NoError(t, err)

	_, err = NewEngine(g, WithLogger(quietLogger()))
	assert.ErrorIs(t, err, ErrNoCoordinates)

	_, err = NewEngine(buildOneWayGraph(t), WithAlgorithm("astar"))
	assert.ErrorContains(t, err, "unknown algorithm")
}

func TestSnapper(t *testing.T) {
	g := buildOneWayGraph(t)
	s, err := NewSnapper(g, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())
	assert.Equal(t, DefaultMaxSnapMeters, s.MaxDistance())

	r, err := s.Snap(1.0005, 103.003)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), r.EdgeIdx)
	assert.Equal(t, uint32(0), r.NodeU)
	assert.Equal(t, uint32(1), r.NodeV)
	assert.InDelta(t, 0.3, r.Ratio, 1e-6)
	assert.InDelta(t, 55.6, r.Dist, 1.0)
	assert.Equal(t, uint32(0), r.Nearest())

	r, err = s.Snap(1.1, 103.009)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), r.EdgeIdx)
	assert.Equal(t, uint32(4), r.Nearest())

	tight, err := NewSnapper(g, 10)
	require.NoError(t, err)
	_, err = tight.Snap(1.0005, 103.003)
	assert.ErrorIs(t, err, ErrPointTooFar)
}

func BenchmarkRoute(b *testing.B) {
	result := &osmparser.ParseResult{
		NodeLat: map[osm.NodeID]float64{},
		NodeLon: map[osm.NodeID]float64{},
	}
	// 30×30 bidirectional grid, ~111 m spacing.
	const side = 30
	id := func(r, c int) osm.NodeID { return osm.NodeID(r*side + c + 1) }
	for r := range side {
		for c := range side {
			result.NodeLat[id(r, c)] = 1.3 + float64(r)*0.001
			result.NodeLon[id(r, c)] = 103.8 + float64(c)*0.001
			if c+1 < side {
				result.Edges = append(result.Edges,
					osmparser.RawEdge{FromNodeID: id(r, c), ToNodeID: id(r, c+1), Meters: 111},
					osmparser.RawEdge{FromNodeID: id(r, c+1), ToNodeID: id(r, c), Meters: 111})
			}
			if r+1 < side {
				result.Edges = append(result.Edges,
					osmparser.RawEdge{FromNodeID: id(r, c), ToNodeID: id(r+1, c), Meters: 111},
					osmparser.RawEdge{FromNodeID: id(r+1, c), ToNodeID: id(r, c), Meters: 111})
			}
		}
	}
	g := graph.BuildOSM(result)
	eng, err := NewEngine(g, WithLogger(quietLogger()), WithWorkers(1))
	require.NoError(b, err)

	ctx := context.Background()
	start := LatLng{Lat: 1.3002, Lng: 103.8001}
	end := LatLng{Lat: 1.3271, Lng: 103.8285}
	for b.Loop() {
		_, _ = eng.Route(ctx, start, end)
	}
}

package osm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"bmssp/pkg/geo"
)

// minEdgeMeters is the smallest weight given to a road segment. Duplicate
// consecutive nodes in a way would otherwise produce zero-length edges.
const minEdgeMeters = 0.001

// RawEdge represents a directed road segment parsed from OSM data.
type RawEdge struct {
	FromNodeID osm.NodeID
	ToNodeID   osm.NodeID
	Meters     float64 // great-circle length of the segment
}

// ParseResult holds the output of parsing an OSM PBF file.
type ParseResult struct {
	Edges   []RawEdge
	NodeLat map[osm.NodeID]float64
	NodeLon map[osm.NodeID]float64
}

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// drivable reports whether a way with these tags carries car traffic.
func drivable(tags osm.Tags) bool {
	if !carHighways[tags.Find("highway")] || tags.Find("area") == "yes" {
		return false
	}
	switch tags.Find("access") {
	case "no", "private":
		return false
	}
	return tags.Find("motor_vehicle") != "no"
}

// travelDirections returns whether a way may be driven along (forward) and
// against (backward) its node order.
func travelDirections(tags osm.Tags) (forward, backward bool) {
	forward, backward = true, true
	// Motorways and roundabouts are oneway unless tagged otherwise.
	if hw := tags.Find("highway"); hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}
	switch tags.Find("oneway") {
	case "yes", "true", "1":
		forward, backward = true, false
	case "-1", "reverse":
		forward, backward = false, true
	case "no":
		forward, backward = true, true
	case "reversible":
		// Direction changes with time of day.
		forward, backward = false, false
	}
	return forward, backward
}

// road is a drivable way reduced to its node sequence and directions.
type road struct {
	nodes    []osm.NodeID
	forward  bool
	backward bool
}

// roadFromWay keeps w when it is drivable in at least one direction and has
// a segment.
func roadFromWay(w *osm.Way) (road, bool) {
	if len(w.Nodes) < 2 || !drivable(w.Tags) {
		return road{}, false
	}
	fwd, bwd := travelDirections(w.Tags)
	if !fwd && !bwd {
		return road{}, false
	}
	return road{nodes: w.Nodes.NodeIDs(), forward: fwd, backward: bwd}, true
}

// segmentMeters is the weight of the segment between two coordinates:
// its great-circle length, never below minEdgeMeters.
func segmentMeters(aLat, aLon, bLat, bLon float64) float64 {
	return max(geo.Haversine(aLat, aLon, bLat, bLon), minEdgeMeters)
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only edges with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// keeps reports whether a segment survives the filter. A zero box keeps
// everything.
func (b BBox) keeps(aLat, aLon, bLat, bLon float64) bool {
	return b.IsZero() || (b.Contains(aLat, aLon) && b.Contains(bLat, bLon))
}

// ParseOptions configures the OSM parser.
type ParseOptions struct {
	BBox   BBox         // if non-zero, filter edges to this bounding box
	Logger *slog.Logger // defaults to slog.Default()
}

// Parse reads an OSM PBF extract and returns directed, meter-weighted edges
// for the drivable road network. Ways are read first to learn which nodes
// matter, then the reader is rewound to collect their coordinates.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*ParseResult, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}

	roads, wanted, err := scanRoads(ctx, rs)
	if err != nil {
		return nil, err
	}
	logger.Info("osm roads scanned", slog.Int("ways", len(roads)), slog.Int("referenced_nodes", len(wanted)))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind for node scan: %w", err)
	}
	result, err := scanCoords(ctx, rs, wanted)
	if err != nil {
		return nil, err
	}
	logger.Info("osm coordinates scanned", slog.Int("coordinates", len(result.NodeLat)))

	missing, outside := result.addRoads(roads, opt.BBox)
	if missing > 0 {
		logger.Warn("skipped edges with missing node coordinates", slog.Int("count", missing))
	}
	if outside > 0 {
		logger.Info("filtered edges outside bounding box", slog.Int("count", outside))
	}
	logger.Info("osm edges built", slog.Int("directed_edges", len(result.Edges)))
	return result, nil
}

// scanRoads collects every drivable way and the set of nodes they use.
func scanRoads(ctx context.Context, r io.Reader) ([]road, map[osm.NodeID]struct{}, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	var roads []road
	wanted := make(map[osm.NodeID]struct{})
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		rd, ok := roadFromWay(w)
		if !ok {
			continue
		}
		for _, id := range rd.nodes {
			wanted[id] = struct{}{}
		}
		roads = append(roads, rd)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan ways: %w", err)
	}
	return roads, wanted, nil
}

// scanCoords records the coordinates of the wanted nodes.
func scanCoords(ctx context.Context, r io.Reader, wanted map[osm.NodeID]struct{}) (*ParseResult, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	result := &ParseResult{
		NodeLat: make(map[osm.NodeID]float64, len(wanted)),
		NodeLon: make(map[osm.NodeID]float64, len(wanted)),
	}
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := wanted[n.ID]; ok {
			result.NodeLat[n.ID] = n.Lat
			result.NodeLon[n.ID] = n.Lon
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan nodes: %w", err)
	}
	return result, nil
}

// addRoads turns consecutive node pairs of each road into directed edges.
// It returns how many segments lacked coordinates and how many the box
// filtered out.
func (r *ParseResult) addRoads(roads []road, box BBox) (missing, outside int) {
	for _, rd := range roads {
		for i := 1; i < len(rd.nodes); i++ {
			a, b := rd.nodes[i-1], rd.nodes[i]
			aLat, okA := r.NodeLat[a]
			bLat, okB := r.NodeLat[b]
			if !okA || !okB {
				missing++
				continue
			}
			aLon, bLon := r.NodeLon[a], r.NodeLon[b]
			if !box.keeps(aLat, aLon, bLat, bLon) {
				outside++
				continue
			}

			m := segmentMeters(aLat, aLon, bLat, bLon)
			if rd.forward {
				r.Edges = append(r.Edges, RawEdge{FromNodeID: a, ToNodeID: b, Meters: m})
			}
			if rd.backward {
				r.Edges = append(r.Edges, RawEdge{FromNodeID: b, ToNodeID: a, Meters: m})
			}
		}
	}
	return missing, outside
}

// ParseFile opens path and parses it with Parse.
func ParseFile(ctx context.Context, path string, opts ...ParseOptions) (*ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm extract: %w", err)
	}
	defer f.Close()

	result, err := Parse(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return result, nil
}

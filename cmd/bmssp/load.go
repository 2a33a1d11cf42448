package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"bmssp/pkg/graph"
	osmparser "bmssp/pkg/osm"
)

// osmFlags select and filter an OSM extract.
type osmFlags struct {
	path      string
	bbox      string
	singapore bool
	kl        bool
	keepAll   bool
}

func (f *osmFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "osm", "", "Path to .osm.pbf file")
	cmd.Flags().StringVar(&f.bbox, "bbox", "", "Bounding box filter: minLat,minLng,maxLat,maxLng (e.g. 1.15,103.6,1.48,104.1)")
	cmd.Flags().BoolVar(&f.singapore, "singapore", false, "Shortcut for --bbox 1.15,103.6,1.48,104.1 (Singapore bounding box)")
	cmd.Flags().BoolVar(&f.kl, "kl", false, "Shortcut for --bbox 2.75,101.2,3.5,102.0 (Selangor + Kuala Lumpur bounding box)")
	cmd.Flags().BoolVar(&f.keepAll, "all-components", false, "Keep every component instead of only the largest")
}

func (f *osmFlags) bboxFilter() (osmparser.BBox, error) {
	switch {
	case f.kl:
		return osmparser.BBox{MinLat: 2.75, MaxLat: 3.5, MinLng: 101.2, MaxLng: 102.0}, nil
	case f.singapore:
		return osmparser.BBox{MinLat: 1.15, MaxLat: 1.48, MinLng: 103.6, MaxLng: 104.1}, nil
	case f.bbox != "":
		var b osmparser.BBox
		if _, err := fmt.Sscanf(f.bbox, "%f,%f,%f,%f", &b.MinLat, &b.MinLng, &b.MaxLat, &b.MaxLng); err != nil {
			return b, fmt.Errorf("invalid bbox format (expected minLat,minLng,maxLat,maxLng): %w", err)
		}
		return b, nil
	}
	return osmparser.BBox{}, nil
}

// load parses the extract, builds the graph and keeps the largest weakly
// connected component unless told otherwise.
func (f *osmFlags) load(ctx context.Context, logger *slog.Logger) (*graph.Graph, error) {
	bbox, err := f.bboxFilter()
	if err != nil {
		return nil, err
	}
	start := time.Now()

	result, err := osmparser.ParseFile(ctx, f.path, osmparser.ParseOptions{BBox: bbox, Logger: logger})
	if err != nil {
		return nil, err
	}
	g := graph.BuildOSM(result)
	logger.Info("graph built", slog.Int("nodes", int(g.NumNodes)), slog.Int("edges", int(g.NumEdges)))

	if !f.keepAll && g.NumNodes > 0 {
		nodes := graph.LargestComponent(g)
		logger.Info("largest component",
			slog.Int("nodes", len(nodes)),
			slog.String("share", fmt.Sprintf("%.1f%%", float64(len(nodes))/float64(g.NumNodes)*100)),
		)
		g = graph.FilterToComponent(g, nodes)
	}
	if g.NumNodes == 0 {
		return nil, fmt.Errorf("no roads found in %s", f.path)
	}

	logger.Info("graph ready",
		slog.Int("nodes", int(g.NumNodes)),
		slog.Int("edges", int(g.NumEdges)),
		slog.Duration("elapsed", time.Since(start).Round(time.Millisecond)),
	)
	return g, nil
}

package main

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/spf13/cobra"

	"bmssp/pkg/graph"
	"bmssp/pkg/routing"
	"bmssp/pkg/sssp"
)

var runFlags struct {
	osm       osmFlags
	nodes     uint32
	density   float64
	seed      uint64
	source    uint32
	lat, lng  float64
	algorithm string
	precision int
	top       int
	verify    bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute distances from one source",
	Long: `Computes single-source distances on a random graph, or on an OSM road
network with --osm. The source is a vertex id (--source) or, for OSM graphs,
the road vertex nearest to --lat/--lng.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	f := runCmd.Flags()
	runFlags.osm.register(runCmd)
	f.Uint32Var(&runFlags.nodes, "nodes", 1000, "Vertex count of the random graph")
	f.Float64Var(&runFlags.density, "density", 0.01, "Edge density of the random graph")
	f.Uint64Var(&runFlags.seed, "seed", 1, "Random seed")
	f.Uint32Var(&runFlags.source, "source", 0, "Source vertex id")
	f.Float64Var(&runFlags.lat, "lat", math.NaN(), "Source latitude (OSM graphs)")
	f.Float64Var(&runFlags.lng, "lng", math.NaN(), "Source longitude (OSM graphs)")
	f.StringVar(&runFlags.algorithm, "algorithm", "both", "dijkstra, bmssp or both")
	f.IntVar(&runFlags.precision, "precision", sssp.DefaultPrecision, "Decimal places kept in distances; negative disables rounding")
	f.IntVar(&runFlags.top, "top", 10, "Print the N farthest reached vertices")
	f.BoolVar(&runFlags.verify, "verify", false, "Check results against Bellman-Ford")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	var algs []sssp.Algorithm
	switch runFlags.algorithm {
	case "both":
		algs = []sssp.Algorithm{sssp.AlgorithmDijkstra, sssp.AlgorithmBmssp}
	case string(sssp.AlgorithmDijkstra), string(sssp.AlgorithmBmssp):
		algs = []sssp.Algorithm{sssp.Algorithm(runFlags.algorithm)}
	default:
		return fmt.Errorf("unknown --algorithm %q", runFlags.algorithm)
	}

	var g *graph.Graph
	var err error
	if runFlags.osm.path != "" {
		g, err = runFlags.osm.load(ctx, logger)
	} else {
		g, err = graph.Random(runFlags.nodes, runFlags.density, runFlags.seed)
	}
	if err != nil {
		return err
	}

	source := runFlags.source
	if !math.IsNaN(runFlags.lat) || !math.IsNaN(runFlags.lng) {
		snapper, err := routing.NewSnapper(g, 0)
		if err != nil {
			return err
		}
		snap, err := snapper.Snap(runFlags.lat, runFlags.lng)
		if err != nil {
			return err
		}
		source = snap.Nearest()
		logger.Info("source snapped", slog.Uint64("vertex", uint64(source)), slog.Float64("meters", snap.Dist))
	}

	opts := []sssp.Option{sssp.WithPrecision(runFlags.precision), sssp.WithLogger(logger)}
	s := sssp.NewSolver(opts...)
	if err := s.Attach(g); err != nil {
		return err
	}
	p := s.Params()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "graph: %d vertices, %d edges (k=%d t=%d levels=%d)\n", g.NumNodes, g.NumEdges, p.K, p.T, p.Levels)

	var results [][]float64
	for _, alg := range algs {
		elapsed, err := s.Run(ctx, alg, source)
		if err != nil {
			return err
		}
		st := s.Stats()
		fmt.Fprintf(out, "%-8s %10d µs  reached %d  relaxations %d", alg, elapsed.Microseconds(), st.Reached, st.Relaxations)
		if alg == sssp.AlgorithmBmssp {
			fmt.Fprintf(out, "  frames %d  base cases %d  pulls %d  depth %d", st.Frames, st.BaseCases, st.Pulls, st.MaxDepth)
		}
		fmt.Fprintln(out)
		results = append(results, s.Dist())
	}

	if len(results) == 2 {
		for v := range results[0] {
			if results[0][v] != results[1][v] && math.Abs(results[0][v]-results[1][v]) > 1e-6 {
				return fmt.Errorf("results diverge at vertex %d: dijkstra %v, bmssp %v", v, results[0][v], results[1][v])
			}
		}
		fmt.Fprintln(out, "results identical")
	}

	if runFlags.verify {
		want, _, err := sssp.BellmanFord(g, source, opts...)
		if err != nil {
			return err
		}
		for i, got := range results {
			for v := range want {
				if want[v] != got[v] && math.Abs(want[v]-got[v]) > 1e-6 {
					return fmt.Errorf("%s disagrees with bellman-ford at vertex %d: %v vs %v", algs[i], v, got[v], want[v])
				}
			}
		}
		fmt.Fprintln(out, "bellman-ford agrees")
	}

	printFarthest(cmd, results[len(results)-1], runFlags.top)
	return nil
}

func printFarthest(cmd *cobra.Command, dist []float64, n int) {
	if n <= 0 {
		return
	}
	type entry struct {
		v uint32
		d float64
	}
	var reached []entry
	for v, d := range dist {
		if !math.IsInf(d, 1) {
			reached = append(reached, entry{uint32(v), d})
		}
	}
	sort.Slice(reached, func(i, j int) bool {
		if reached[i].d != reached[j].d {
			return reached[i].d > reached[j].d
		}
		return reached[i].v < reached[j].v
	})
	out := cmd.OutOrStdout()
	for _, e := range reached[:min(n, len(reached))] {
		fmt.Fprintf(out, "  vertex %-8d %v\n", e.v, e.d)
	}
}

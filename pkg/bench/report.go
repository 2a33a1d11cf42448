package bench

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
)

const rule = "========================================"

// WriteText prints the report in the console layout used by the bench
// command: one block per graph, then a summary line.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "       BENCHMARK: DIJKSTRA vs BMSSP     ")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "run %s, density %v, seed %d\n", r.RunID, r.Config.Density, r.Config.Seed)

	for _, res := range r.Results {
		fmt.Fprintf(&b, "\n--- Test %d (vertices: %d, edges: %d) ---\n", res.Index+1, res.Vertices, res.Edges)
		fmt.Fprintf(&b, "Dijkstra: %s\n", formatMicros(res.Dijkstra))
		fmt.Fprintf(&b, "BMSSP:    %s\n", formatMicros(res.Bmssp))

		if d := res.Divergence; d != nil {
			fmt.Fprintf(&b, "[DIVERGENCE] vertex %d -> dijkstra: %s | bmssp: %s\n", d.Vertex, formatDist(d.Want), formatDist(d.Got))
		}
		if d := res.OracleDivergence; d != nil {
			fmt.Fprintf(&b, "[ORACLE] vertex %d -> bellman-ford: %s | got: %s\n", d.Vertex, formatDist(d.Want), formatDist(d.Got))
		}
		if res.Match() {
			fmt.Fprintln(&b, "[OK] identical results.")
			fmt.Fprintf(&b, ">> %s was faster.\n", res.Faster())
		} else {
			fmt.Fprintln(&b, "[FAIL] the algorithms disagree.")
		}

		if res.DijkstraDist != nil {
			fmt.Fprintf(&b, "Distances (dijkstra): %s\n", formatDists(res.DijkstraDist))
			fmt.Fprintf(&b, "Distances (bmssp):    %s\n", formatDists(res.BmsspDist))
		}
	}

	fmt.Fprintf(&b, "\n%d graphs, %d mismatches, %s total\n",
		len(r.Results), r.Mismatches(), r.Finished.Sub(r.Started).Round(time.Millisecond))
	_, err := io.WriteString(w, b.String())
	return err
}

func formatMicros(d time.Duration) string {
	return strconv.FormatInt(d.Microseconds(), 10) + " µs"
}

func formatDist(d float64) string {
	if math.IsInf(d, 1) {
		return "INF"
	}
	return strconv.FormatFloat(d, 'g', -1, 64)
}

func formatDists(ds []float64) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = formatDist(d)
	}
	return strings.Join(parts, " ")
}

package sssp

import "time"

// Algorithm names a shortest-path routine.
type Algorithm string

const (
	AlgorithmDijkstra Algorithm = "dijkstra"
	AlgorithmBmssp    Algorithm = "bmssp"
)

// Stats are counters collected during the most recent run.
type Stats struct {
	Algorithm     Algorithm
	Source        uint32
	Elapsed       time.Duration
	Relaxations   uint64 // edge relaxations attempted
	Reached       int    // vertices with a finite distance
	Frames        int    // recursion frames entered (BMSSP)
	BaseCases     int    // base case invocations (BMSSP)
	PivotSearches int    // pivot searches (BMSSP)
	Pulls         int    // frontier pulls (BMSSP)
	MaxDepth      int    // deepest recursion level reached, counted from the top (BMSSP)
}

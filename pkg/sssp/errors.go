package sssp

import "errors"

var (
	// ErrEmptyGraph is returned when attaching a nil graph or one with no vertices.
	ErrEmptyGraph = errors.New("sssp: graph has no vertices")
	// ErrNotAttached is returned when a run is requested before Attach.
	ErrNotAttached = errors.New("sssp: no graph attached")
	// ErrSourceOutOfRange is returned when the source is not a vertex of the graph.
	ErrSourceOutOfRange = errors.New("sssp: source vertex out of range")
)

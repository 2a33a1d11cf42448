package graph

import (
	"testing"
)

func TestUnionFind(t *testing.T) {
	uf := NewUnionFind(5)

	for i := range uint32(5) {
		if uf.Find(i) != i {
			t.Errorf("Find(%d) = %d, want %d", i, uf.Find(i), i)
		}
	}

	uf.Union(0, 1)
	if uf.Find(0) != uf.Find(1) {
		t.Error("0 and 1 should be in same set")
	}

	uf.Union(2, 3)
	if uf.Find(0) == uf.Find(2) {
		t.Error("0 and 2 should be in different sets")
	}

	if !uf.Union(1, 3) {
		t.Error("Union(1, 3) should merge two sets")
	}
	if uf.Union(0, 2) {
		t.Error("Union(0, 2) should report already merged")
	}
	if got := uf.Size(3); got != 4 {
		t.Errorf("Size(3) = %d, want 4", got)
	}
}

func twoComponentGraph(t *testing.T) *Graph {
	t.Helper()
	// Component 1: triangle 0 -> 1 -> 2 -> 0
	// Component 2: isolated pair 3 -> 4
	g, err := Build(5, []Edge{
		{From: 0, To: 1, Weight: 100},
		{From: 1, To: 2, Weight: 200},
		{From: 2, To: 0, Weight: 300},
		{From: 3, To: 4, Weight: 400},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	g.NodeLat = []float64{1.0, 1.1, 1.2, 2.0, 2.1}
	g.NodeLon = []float64{103.0, 103.1, 103.2, 104.0, 104.1}
	return g
}

func TestLargestComponent(t *testing.T) {
	g := twoComponentGraph(t)
	nodes := LargestComponent(g)

	if len(nodes) != 3 {
		t.Fatalf("LargestComponent has %d nodes, want 3", len(nodes))
	}
	for i, want := range []uint32{0, 1, 2} {
		if nodes[i] != want {
			t.Errorf("nodes[%d] = %d, want %d", i, nodes[i], want)
		}
	}
}

func TestFilterToComponent(t *testing.T) {
	g := twoComponentGraph(t)
	filtered := FilterToComponent(g, LargestComponent(g))

	if filtered.NumNodes != 3 {
		t.Fatalf("filtered NumNodes = %d, want 3", filtered.NumNodes)
	}
	if filtered.NumEdges != 3 {
		t.Fatalf("filtered NumEdges = %d, want 3", filtered.NumEdges)
	}
	if err := filtered.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !filtered.HasCoordinates() {
		t.Fatal("coordinates should be carried over")
	}

	var total float64
	for _, w := range filtered.Weight {
		total += w
	}
	if total != 600 {
		t.Errorf("total weight = %v, want 600", total)
	}
}

func TestFilterToComponentEmptyGraph(t *testing.T) {
	g := &Graph{}
	nodes := LargestComponent(g)
	if nodes != nil {
		t.Errorf("expected nil for empty graph, got %v", nodes)
	}

	filtered := FilterToComponent(g, nil)
	if filtered.NumNodes != 0 || filtered.NumEdges != 0 {
		t.Errorf("expected empty graph, got %d nodes, %d edges", filtered.NumNodes, filtered.NumEdges)
	}
}

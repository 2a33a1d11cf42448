package sssp

import (
	"math"
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedPairs(ps []Pair) []Pair {
	out := append([]Pair(nil), ps...)
	sort.Slice(out, func(i, j int) bool { return out[i].less(out[j]) })
	return out
}

func TestFrontierInsertSplitPull(t *testing.T) {
	f := NewFrontier(2, 10)
	f.Insert(1, 3.0)
	f.Insert(2, 1.0)
	f.Insert(3, 2.0) // forces a split

	require.Equal(t, 3, f.Len())

	bound, pulled := f.Pull()
	assert.Equal(t, []Pair{{Vertex: 2, Dist: 1.0}, {Vertex: 3, Dist: 2.0}}, sortedPairs(pulled))
	assert.LessOrEqual(t, bound, 3.0)
	assert.Greater(t, bound, 2.0)

	bound, pulled = f.Pull()
	assert.Equal(t, 10.0, bound)
	assert.Equal(t, []Pair{{Vertex: 1, Dist: 3.0}}, pulled)
	assert.Equal(t, 0, f.Len())
}

func TestFrontierBatchPrependPulledFirst(t *testing.T) {
	f := NewFrontier(2, 100)
	f.Insert(10, 5.0)
	f.Insert(11, 6.0)
	f.Insert(12, 7.0)

	f.BatchPrepend([]Pair{{Vertex: 20, Dist: 1.0}, {Vertex: 21, Dist: 2.0}})

	bound, pulled := f.Pull()
	assert.Equal(t, []Pair{{Vertex: 20, Dist: 1.0}, {Vertex: 21, Dist: 2.0}}, sortedPairs(pulled))
	assert.Equal(t, 5.0, bound)
}

func TestFrontierEmpty(t *testing.T) {
	f := NewFrontier(4, 42)

	bound, pulled := f.Pull()
	assert.Equal(t, 42.0, bound)
	assert.Empty(t, pulled)

	f.BatchPrepend(nil)
	assert.Equal(t, 0, f.Len())
	assert.Equal(t, 42.0, f.MinDist())
}

func TestFrontierInsertKeepsBest(t *testing.T) {
	f := NewFrontier(3, 100)

	f.Insert(7, 5.0)
	f.Insert(7, 5.0)
	f.Insert(7, 9.0)
	d, ok := f.Lookup(7)
	require.True(t, ok)
	assert.Equal(t, 5.0, d)
	assert.Equal(t, 1, f.Len())

	f.Insert(7, 2.5)
	d, _ = f.Lookup(7)
	assert.Equal(t, 2.5, d)
	assert.Equal(t, 1, f.Len())

	_, pulled := f.Pull()
	assert.Equal(t, []Pair{{Vertex: 7, Dist: 2.5}}, pulled)
}

func TestFrontierBatchPrependDedupAndResidents(t *testing.T) {
	f := NewFrontier(4, 100)
	f.Insert(1, 10.0)
	f.Insert(2, 3.0)

	f.BatchPrepend([]Pair{
		{Vertex: 5, Dist: 2.0},
		{Vertex: 5, Dist: 1.5}, // duplicate keeps the lower value
		{Vertex: 1, Dist: 2.5}, // improves a resident
		{Vertex: 2, Dist: 3.0}, // not strictly better, dropped
	})

	assert.Equal(t, 3, f.Len())
	d, _ := f.Lookup(5)
	assert.Equal(t, 1.5, d)
	d, _ = f.Lookup(1)
	assert.Equal(t, 2.5, d)
	d, _ = f.Lookup(2)
	assert.Equal(t, 3.0, d)

	_, pulled := f.Pull()
	assert.Equal(t, []Pair{{Vertex: 5, Dist: 1.5}, {Vertex: 1, Dist: 2.5}, {Vertex: 2, Dist: 3.0}}, sortedPairs(pulled))
}

func TestFrontierBatchPrependAboveFrontIsInserted(t *testing.T) {
	f := NewFrontier(2, 100)
	f.BatchPrepend([]Pair{{Vertex: 1, Dist: 4.0}, {Vertex: 2, Dist: 5.0}})
	// 9.0 is above the front D0 block, so it must not jump ahead of 4.0 and 5.0.
	f.BatchPrepend([]Pair{{Vertex: 3, Dist: 9.0}, {Vertex: 4, Dist: 1.0}})

	bound, pulled := f.Pull()
	assert.Equal(t, []Pair{{Vertex: 4, Dist: 1.0}, {Vertex: 1, Dist: 4.0}}, sortedPairs(pulled))
	assert.Equal(t, 5.0, bound)

	_, pulled = f.Pull()
	assert.Equal(t, []Pair{{Vertex: 2, Dist: 5.0}, {Vertex: 3, Dist: 9.0}}, sortedPairs(pulled))
}

func TestFrontierPullNudgesOnTies(t *testing.T) {
	f := NewFrontier(1, 100)
	f.Insert(1, 5.0)
	f.Insert(2, 5.0)

	bound, pulled := f.Pull()
	require.Len(t, pulled, 1)
	assert.Equal(t, uint32(1), pulled[0].Vertex)
	assert.Greater(t, bound, 5.0)
	assert.Equal(t, math.Nextafter(5.0, math.Inf(1)), bound)
}

func TestFrontierAboveBoundGoesToSentinel(t *testing.T) {
	f := NewFrontier(2, 10)
	f.Insert(1, 50.0)
	f.Insert(2, 1.0)

	bound, pulled := f.Pull()
	assert.Equal(t, 10.0, bound)
	assert.Len(t, pulled, 2)
}

// TestFrontierCompleteness drives random Insert and BatchPrepend sequences
// and checks that draining with Pull returns every vertex exactly once with
// its best distance, under non-decreasing boundaries that separate each batch
// from what stays behind.
func TestFrontierCompleteness(t *testing.T) {
	for _, m := range []int{1, 2, 3, 8, 32} {
		for seed := uint64(1); seed <= 5; seed++ {
			rng := rand.New(rand.NewPCG(seed, uint64(m)))
			const bound = 1000.0
			f := NewFrontier(m, bound)
			want := make(map[uint32]float64)

			for range 300 {
				v := rng.Uint32N(120)
				if rng.IntN(4) == 0 {
					// A batch strictly below everything resident.
					low := math.Inf(1)
					for _, d := range want {
						low = min(low, d)
					}
					if math.IsInf(low, 1) {
						low = bound
					}
					var batch []Pair
					for range 1 + rng.IntN(2*m+1) {
						bv := rng.Uint32N(120)
						bd := low * rng.Float64() * 0.99
						batch = append(batch, Pair{Vertex: bv, Dist: bd})
					}
					f.BatchPrepend(batch)
					for _, p := range batch {
						if cur, ok := want[p.Vertex]; !ok || p.Dist < cur {
							want[p.Vertex] = p.Dist
						}
					}
					continue
				}
				d := rng.Float64() * bound * 0.999
				f.Insert(v, d)
				if cur, ok := want[v]; !ok || d < cur {
					want[v] = d
				}
			}
			require.Equal(t, len(want), f.Len(), "m=%d seed=%d", m, seed)

			got := make(map[uint32]float64)
			last := math.Inf(-1)
			for f.Len() > 0 {
				b, pulled := f.Pull()
				require.NotEmpty(t, pulled)
				require.LessOrEqual(t, len(pulled), m)
				require.GreaterOrEqual(t, b, last, "boundaries must not decrease")
				last = b
				for _, p := range pulled {
					_, dup := got[p.Vertex]
					require.False(t, dup, "vertex %d pulled twice", p.Vertex)
					require.Less(t, p.Dist, b)
					got[p.Vertex] = p.Dist
				}
				if f.Len() > 0 {
					require.GreaterOrEqual(t, f.MinDist(), b)
				}
			}
			assert.Equal(t, want, got, "m=%d seed=%d", m, seed)
		}
	}
}

func TestSelectSmallest(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for n := 1; n <= 40; n++ {
		for m := 0; m <= n; m++ {
			a := make([]Pair, n)
			for i := range a {
				a[i] = Pair{Vertex: uint32(i), Dist: float64(rng.IntN(5))}
			}
			want := sortedPairs(a)
			selectSmallest(a, m)
			assert.ElementsMatch(t, want[:m], a[:m], "n=%d m=%d", n, m)
		}
	}
}

func TestChunkByMedian(t *testing.T) {
	a := make([]Pair, 23)
	for i := range a {
		a[i] = Pair{Vertex: uint32(i), Dist: float64((i * 7) % 23)}
	}
	chunks := chunkByMedian(a, 4, nil)

	total := 0
	prevMax := math.Inf(-1)
	for _, c := range chunks {
		require.NotEmpty(t, c)
		require.LessOrEqual(t, len(c), 4)
		assert.Greater(t, minPair(c).Dist, prevMax)
		prevMax = maxPair(c).Dist
		total += len(c)
	}
	assert.Equal(t, 23, total)
}

func TestMinHeapOrder(t *testing.T) {
	var h MinHeap
	h.Push(3, 2.0)
	h.Push(1, 2.0)
	h.Push(2, 0.5)
	h.Push(4, 9.0)

	var got []uint32
	for h.Len() > 0 {
		got = append(got, h.Pop().Vertex)
	}
	assert.Equal(t, []uint32{2, 1, 3, 4}, got)
}

func BenchmarkFrontierInsertPull(b *testing.B) {
	rng := rand.New(rand.NewPCG(1, 2))
	vals := make([]float64, 4096)
	for i := range vals {
		vals[i] = rng.Float64() * 1e6
	}
	for b.Loop() {
		f := NewFrontier(64, math.Inf(1))
		for i, d := range vals {
			f.Insert(uint32(i), d)
		}
		for f.Len() > 0 {
			f.Pull()
		}
	}
}

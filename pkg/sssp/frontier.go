package sssp

import (
	"math"

	"github.com/google/btree"
)

const noBlock int32 = -1

// btreeDegree is the fan-out of the boundary index.
const btreeDegree = 16

type blockKind uint8

const (
	blockFree blockKind = iota
	blockD0
	blockD1
)

// block is a bounded, unordered group of pairs. D1 blocks carry an upper
// boundary key; every pair in a D1 block is ≤ its key and > the key of the
// preceding D1 block.
type block struct {
	items []Pair
	upper Pair
	kind  blockKind
}

// slot locates a resident vertex: block handle and index within the block.
type slot struct {
	blk int32
	idx int32
}

// boundary is a D1 index entry. Keys are (distance, vertex) pairs, which are
// unique across the index, so equal distances never collide.
type boundary struct {
	upper Pair
	blk   int32
}

func boundaryLess(a, b boundary) bool { return a.upper.less(b.upper) }

// Frontier is the bounded block structure that feeds a recursion frame.
// It supports Insert of single pairs, BatchPrepend of pairs smaller than
// everything resident, and Pull of the M smallest resident pairs together
// with a boundary separating them from the rest.
//
// Blocks live in an arena addressed by int32 handles. D0 holds prepended
// blocks, front last; D1 holds blocks indexed by boundary key, ending with a
// sentinel block keyed by the structure's bound. A Frontier is not safe for
// concurrent use.
type Frontier struct {
	m     int
	bound float64

	blocks   []block
	free     []int32
	d0       []int32
	d1       *btree.BTreeG[boundary]
	sentinel int32

	where map[uint32]slot
	size  int

	scratch []Pair
}

// NewFrontier returns an empty Frontier with block size m (at least 1) and
// global bound bound.
func NewFrontier(m int, bound float64) *Frontier {
	f := &Frontier{
		m:     max(m, 1),
		bound: bound,
		d1:    btree.NewG[boundary](btreeDegree, boundaryLess),
		where: make(map[uint32]slot),
	}
	f.reset()
	return f
}

// Len returns the number of resident vertices.
func (f *Frontier) Len() int { return f.size }

// BlockSize returns M.
func (f *Frontier) BlockSize() int { return f.m }

// Bound returns the global bound B.
func (f *Frontier) Bound() float64 { return f.bound }

// Lookup returns the recorded distance of v, if resident.
func (f *Frontier) Lookup(v uint32) (float64, bool) {
	s, ok := f.where[v]
	if !ok {
		return 0, false
	}
	return f.blocks[s.blk].items[s.idx].Dist, true
}

// Insert records (v, d). It is a no-op when v is already resident with a
// distance ≤ d; otherwise the stale entry is dropped. Pairs above the bound
// land in the sentinel block.
func (f *Frontier) Insert(v uint32, d float64) {
	if s, ok := f.where[v]; ok {
		if f.blocks[s.blk].items[s.idx].Dist <= d {
			return
		}
		f.evict(v, s)
	}

	p := Pair{Vertex: v, Dist: d}
	target := f.sentinel
	f.d1.AscendGreaterOrEqual(boundary{upper: p}, func(b boundary) bool {
		target = b.blk
		return false
	})
	f.push(target, p)
	if len(f.blocks[target].items) > f.m {
		f.split(target)
	}
}

// BatchPrepend adds pairs that are expected to be smaller than every
// resident pair. Duplicate vertices keep their lowest distance, and entries
// not strictly better than a resident entry are dropped. Entries above the
// minimum of the front D0 block are routed through Insert instead, so a
// caller can never break the D0 ordering.
func (f *Frontier) BatchPrepend(batch []Pair) {
	if len(batch) == 0 {
		return
	}

	pos := make(map[uint32]int, len(batch))
	items := make([]Pair, 0, len(batch))
	for _, p := range batch {
		if i, ok := pos[p.Vertex]; ok {
			if p.Dist < items[i].Dist {
				items[i].Dist = p.Dist
			}
			continue
		}
		pos[p.Vertex] = len(items)
		items = append(items, p)
	}

	kept := items[:0]
	for _, p := range items {
		if s, ok := f.where[p.Vertex]; ok {
			if f.blocks[s.blk].items[s.idx].Dist <= p.Dist {
				continue
			}
			f.evict(p.Vertex, s)
		}
		kept = append(kept, p)
	}

	if h := f.frontD0(); h != noBlock {
		floor := minPair(f.blocks[h].items).Dist
		low := kept[:0]
		for _, p := range kept {
			if p.Dist > floor {
				f.Insert(p.Vertex, p.Dist)
				continue
			}
			low = append(low, p)
		}
		kept = low
	}
	if len(kept) == 0 {
		return
	}

	chunks := chunkByMedian(kept, (f.m+1)/2, nil)
	for i := len(chunks) - 1; i >= 0; i-- {
		h := f.newBlock(blockD0, Pair{})
		for _, p := range chunks[i] {
			f.push(h, p)
		}
		f.d0 = append(f.d0, h)
	}
}

// Pull removes and returns up to M of the smallest resident pairs, in no
// particular order, along with a boundary: every returned pair is below it
// and every pair left behind is at or above it, except pairs tied with the
// largest returned distance, which the boundary is nudged past. When
// everything fits in one batch the structure is emptied and the boundary is
// B. Pull on an empty structure returns (B, nil).
func (f *Frontier) Pull() (float64, []Pair) {
	if f.size == 0 {
		return f.bound, nil
	}

	// Whole blocks from the front of each sequence until more than M pairs
	// are collected from it, or it runs out.
	cand := f.scratch[:0]
	n0 := 0
	for i := len(f.d0) - 1; i >= 0 && n0 <= f.m; i-- {
		items := f.blocks[f.d0[i]].items
		cand = append(cand, items...)
		n0 += len(items)
	}
	n1 := 0
	f.d1.Ascend(func(b boundary) bool {
		items := f.blocks[b.blk].items
		cand = append(cand, items...)
		n1 += len(items)
		return n1 <= f.m
	})
	defer func() { f.scratch = cand[:0] }()

	if f.size <= f.m {
		out := make([]Pair, len(cand))
		copy(out, cand)
		f.reset()
		return f.bound, out
	}

	selectSmallest(cand, f.m)
	out := make([]Pair, f.m)
	copy(out, cand[:f.m])

	next := minPair(cand[f.m:]).Dist
	if top := maxPair(out).Dist; next <= top {
		next = math.Nextafter(top, math.Inf(1))
	}
	for _, p := range out {
		f.evict(p.Vertex, f.where[p.Vertex])
	}
	return next, out
}

// MinDist returns the smallest resident distance, or B when empty.
func (f *Frontier) MinDist() float64 {
	best := f.bound
	if f.size == 0 {
		return best
	}
	if h := f.frontD0(); h != noBlock {
		best = min(best, minPair(f.blocks[h].items).Dist)
	}
	f.d1.Ascend(func(b boundary) bool {
		items := f.blocks[b.blk].items
		if len(items) == 0 {
			return true
		}
		best = min(best, minPair(items).Dist)
		return false
	})
	return best
}

// reset drops every block and leaves a single empty sentinel.
func (f *Frontier) reset() {
	f.blocks = f.blocks[:0]
	f.free = f.free[:0]
	f.d0 = f.d0[:0]
	f.d1.Clear(false)
	clear(f.where)
	f.size = 0

	f.sentinel = f.newBlock(blockD1, Pair{Vertex: math.MaxUint32, Dist: f.bound})
	f.d1.ReplaceOrInsert(boundary{upper: f.blocks[f.sentinel].upper, blk: f.sentinel})
}

func (f *Frontier) newBlock(kind blockKind, upper Pair) int32 {
	var h int32
	if n := len(f.free); n > 0 {
		h = f.free[n-1]
		f.free = f.free[:n-1]
	} else {
		h = int32(len(f.blocks))
		f.blocks = append(f.blocks, block{})
	}
	b := &f.blocks[h]
	b.items = b.items[:0]
	b.upper = upper
	b.kind = kind
	return h
}

func (f *Frontier) freeBlock(h int32) {
	b := &f.blocks[h]
	b.items = b.items[:0]
	b.kind = blockFree
	f.free = append(f.free, h)
}

func (f *Frontier) push(h int32, p Pair) {
	b := &f.blocks[h]
	f.where[p.Vertex] = slot{blk: h, idx: int32(len(b.items))}
	b.items = append(b.items, p)
	f.size++
}

// evict removes v, located at s, by swapping the block's last pair into its
// place. Emptied D1 blocks other than the sentinel leave the index; emptied
// D0 blocks are discarded lazily when they reach the front.
func (f *Frontier) evict(v uint32, s slot) {
	b := &f.blocks[s.blk]
	last := int32(len(b.items) - 1)
	if s.idx != last {
		moved := b.items[last]
		b.items[s.idx] = moved
		f.where[moved.Vertex] = s
	}
	b.items = b.items[:last]
	delete(f.where, v)
	f.size--

	if last == 0 && b.kind == blockD1 && s.blk != f.sentinel {
		f.d1.Delete(boundary{upper: b.upper})
		f.freeBlock(s.blk)
	}
}

// split moves the smaller half of an oversized D1 block into a new block
// keyed by that half's maximum. The split block keeps its key.
func (f *Frontier) split(h int32) {
	items := f.blocks[h].items
	half := (len(items) + 1) / 2
	selectSmallest(items, half)
	upper := maxPair(items[:half])

	nb := f.newBlock(blockD1, upper)
	for i, p := range f.blocks[h].items[:half] {
		f.blocks[nb].items = append(f.blocks[nb].items, p)
		f.where[p.Vertex] = slot{blk: nb, idx: int32(i)}
	}

	b := &f.blocks[h]
	n := copy(b.items, b.items[half:])
	b.items = b.items[:n]
	for i, p := range b.items {
		f.where[p.Vertex] = slot{blk: h, idx: int32(i)}
	}

	f.d1.ReplaceOrInsert(boundary{upper: upper, blk: nb})
}

// frontD0 returns the first non-empty D0 block, discarding empty ones.
func (f *Frontier) frontD0() int32 {
	for n := len(f.d0); n > 0; n = len(f.d0) {
		h := f.d0[n-1]
		if len(f.blocks[h].items) > 0 {
			return h
		}
		f.d0 = f.d0[:n-1]
		f.freeBlock(h)
	}
	return noBlock
}

// chunkByMedian splits a into ascending chunks of at most size pairs by
// recursive median selection. Pairs inside a chunk are unordered.
func chunkByMedian(a []Pair, size int, out [][]Pair) [][]Pair {
	if len(a) <= size {
		return append(out, a)
	}
	mid := len(a) / 2
	selectSmallest(a, mid)
	out = chunkByMedian(a[:mid], size, out)
	return chunkByMedian(a[mid:], size, out)
}

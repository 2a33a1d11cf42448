package sssp

// Pair is a (vertex, distance) entry. Pairs are totally ordered by distance,
// then vertex id; a vertex appears at most once in any collection, so no two
// pairs compare equal.
type Pair struct {
	Vertex uint32
	Dist   float64
}

func (p Pair) less(q Pair) bool {
	if p.Dist != q.Dist {
		return p.Dist < q.Dist
	}
	return p.Vertex < q.Vertex
}

// selectSmallest reorders a so that a[:m] holds its m smallest pairs in no
// particular order and every pair in a[m:] is larger. Expected linear time.
func selectSmallest(a []Pair, m int) {
	if m <= 0 || m >= len(a) {
		return
	}
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi)
		switch {
		case p == m:
			return
		case p < m:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

// partition arranges a[lo..hi] around a median-of-three pivot and returns the
// pivot's final index.
func partition(a []Pair, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if a[mid].less(a[lo]) {
		a[mid], a[lo] = a[lo], a[mid]
	}
	if a[hi].less(a[lo]) {
		a[hi], a[lo] = a[lo], a[hi]
	}
	if a[mid].less(a[hi]) {
		a[mid], a[hi] = a[hi], a[mid]
	}
	// a[hi] is now the median of the three.
	pivot := a[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if a[j].less(pivot) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

// maxPair returns the largest pair of a non-empty slice.
func maxPair(a []Pair) Pair {
	best := a[0]
	for _, p := range a[1:] {
		if best.less(p) {
			best = p
		}
	}
	return best
}

// minPair returns the smallest pair of a non-empty slice.
func minPair(a []Pair) Pair {
	best := a[0]
	for _, p := range a[1:] {
		if p.less(best) {
			best = p
		}
	}
	return best
}

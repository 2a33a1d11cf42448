package sssp

// baseCase runs a Dijkstra from the single source src, bounded by bound,
// until K+1 vertices are finalized. If the search settles K or fewer it
// returns (bound, everything settled). Otherwise the largest settled distance
// becomes the new bound B' and only vertices strictly below it are returned.
//
// When the first K+1 settled vertices all share the source's distance, B'
// would exclude the source itself, so the search continues until a strictly
// larger distance is settled.
func (s *Solver) baseCase(bound float64, src uint32) (float64, []uint32) {
	s.stats.BaseCases++
	k := s.params.K

	h := &s.heap
	h.Reset()
	h.Push(src, s.dist[src])

	var settled []uint32
	defer func() {
		for _, v := range settled {
			s.final[v] = false
		}
	}()

	srcDist := s.dist[src]
	top := srcDist
	for h.Len() > 0 {
		item := h.Pop()
		u := item.Vertex
		if item.Dist > s.dist[u] || s.final[u] {
			continue
		}
		s.final[u] = true
		settled = append(settled, u)
		top = max(top, item.Dist)
		s.relaxBounded(u, bound)
		if len(settled) > k && top > srcDist {
			break
		}
	}

	if len(settled) <= k || top == srcDist {
		return bound, settled
	}

	out := make([]uint32, 0, len(settled)-1)
	for _, v := range settled {
		if s.dist[v] < top {
			out = append(out, v)
		}
	}
	return top, out
}

// relaxBounded pushes neighbors of u whose distance does not get worse and
// stays below bound.
func (s *Solver) relaxBounded(u uint32, bound float64) {
	du := s.dist[u]
	start, end := s.g.EdgesFrom(u)
	for e := start; e < end; e++ {
		v := s.g.Head[e]
		nd := s.round.round(du + s.g.Weight[e])
		s.stats.Relaxations++
		if s.final[v] || nd > s.dist[v] || nd >= bound {
			continue
		}
		s.dist[v] = nd
		s.heap.Push(v, nd)
	}
}

package sssp

// findPivots runs up to K rounds of layered relaxation from frontier,
// restricted to distances below bound. It returns the visited set W in
// discovery order and the pivots: frontier vertices that root a relaxation
// tree of at least K vertices. When W grows beyond K·|frontier| the whole
// frontier is returned as pivots.
func (s *Solver) findPivots(bound float64, frontier []uint32) (pivots, visited []uint32) {
	s.stats.PivotSearches++
	k := s.params.K

	visited = make([]uint32, 0, len(frontier)*(k+1))
	defer func() { s.clearForest(visited) }()
	for _, v := range frontier {
		if !s.inW[v] {
			s.inW[v] = true
			visited = append(visited, v)
		}
	}

	layer := append([]uint32(nil), frontier...)
	var next []uint32
	for round := int32(1); round <= int32(k) && len(layer) > 0; round++ {
		s.nextStamp()
		next = next[:0]
		for _, u := range layer {
			du := s.dist[u]
			start, end := s.g.EdgesFrom(u)
			for e := start; e < end; e++ {
				v := s.g.Head[e]
				cand := s.round.round(du + s.g.Weight[e])
				s.stats.Relaxations++
				if cand > s.dist[v] || cand >= bound {
					continue
				}
				// Equal-distance edges may only re-parent within the current
				// round; this keeps tie edges from closing cycles across layers.
				if cand < s.dist[v] || s.parent[v] == noParent || s.layer[v] == round {
					s.parent[v] = int32(u)
					s.layer[v] = round
				}
				if s.mark[v] != s.stamp {
					s.mark[v] = s.stamp
					next = append(next, v)
				}
				if !s.inW[v] {
					s.inW[v] = true
					visited = append(visited, v)
				}
				s.dist[v] = cand
			}
		}

		if len(visited) > k*len(frontier) {
			pivots = append([]uint32(nil), frontier...)
			return pivots, visited
		}
		layer, next = next, layer
	}

	children := make(map[uint32][]uint32)
	for _, v := range visited {
		if p := s.parent[v]; p != noParent {
			children[uint32(p)] = append(children[uint32(p)], v)
		}
	}

	stack := make([]uint32, 0, k)
	for _, root := range frontier {
		if s.parent[root] != noParent {
			continue
		}
		count := 0
		stack = append(stack[:0], root)
		for len(stack) > 0 && count < k {
			x := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			count++
			stack = append(stack, children[x]...)
		}
		if count >= k {
			pivots = append(pivots, root)
		}
	}
	return pivots, visited
}

// clearForest restores the forest scratch of every visited vertex.
func (s *Solver) clearForest(visited []uint32) {
	for _, v := range visited {
		s.parent[v] = noParent
		s.layer[v] = 0
		s.inW[v] = false
	}
}

func (s *Solver) nextStamp() {
	s.stamp++
	if s.stamp == 0 {
		clear(s.mark)
		s.stamp = 1
	}
}

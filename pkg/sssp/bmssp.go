package sssp

import "fmt"

// bmssp settles every vertex whose shortest path from frontier stays below
// bound, or as many as the level's settle limit allows. It returns the bound
// actually reached and the settled vertices: every vertex below that bound,
// plus any tied at it that a deeper call already completed. Vertices
// returned are complete: their distances are final.
func (s *Solver) bmssp(level int, bound float64, frontier []uint32) (float64, []uint32) {
	s.stats.Frames++
	s.depth++
	s.stats.MaxDepth = max(s.stats.MaxDepth, s.depth)
	defer func() { s.depth-- }()

	if level == 0 {
		if len(frontier) != 1 {
			panic(fmt.Sprintf("sssp: base case needs exactly one source, got %d", len(frontier)))
		}
		return s.baseCase(bound, frontier[0])
	}

	pivots, visited := s.findPivots(bound, frontier)

	d := NewFrontier(s.params.blockSize(level), bound)
	for _, p := range pivots {
		d.Insert(p, s.dist[p])
	}

	limit := s.params.settleLimit(level)
	done := make(map[uint32]struct{})
	var settled []uint32
	reached := bound
	sub := make([]uint32, 0, d.BlockSize())
	var batch []Pair

	for len(settled) < limit {
		pullBound, pulled := d.Pull()
		s.stats.Pulls++
		if len(pulled) == 0 {
			reached = bound
			break
		}

		sub = sub[:0]
		for _, p := range pulled {
			sub = append(sub, p.Vertex)
		}
		subBound, subSettled := s.bmssp(level-1, pullBound, sub)
		reached = subBound

		batch = batch[:0]
		for _, u := range subSettled {
			if _, ok := done[u]; ok {
				continue
			}
			done[u] = struct{}{}
			settled = append(settled, u)

			du := s.dist[u]
			start, end := s.g.EdgesFrom(u)
			for e := start; e < end; e++ {
				v := s.g.Head[e]
				nd := s.round.round(du + s.g.Weight[e])
				s.stats.Relaxations++
				if nd > s.dist[v] {
					continue
				}
				// A settled vertex has already propagated this distance.
				if _, ok := done[v]; ok && nd == s.dist[v] {
					continue
				}
				s.dist[v] = nd
				switch {
				case nd >= pullBound && nd < bound:
					d.Insert(v, nd)
				case nd >= subBound && nd < pullBound:
					batch = append(batch, Pair{Vertex: v, Dist: nd})
				}
			}
		}

		// Pulled vertices the recursion could not settle are retried.
		for _, p := range pulled {
			if _, ok := done[p.Vertex]; ok {
				continue
			}
			if dv := s.dist[p.Vertex]; dv >= subBound && dv < pullBound {
				batch = append(batch, Pair{Vertex: p.Vertex, Dist: dv})
			}
		}
		d.BatchPrepend(batch)
	}

	// A tie at a pull boundary can leave a pair resident just below it; never
	// claim more than what is still pending. Vertices the recursion already
	// returned stay in the result even at the lowered bound, so every frame
	// returns at least one vertex of its frontier.
	if d.Len() > 0 {
		reached = min(reached, d.MinDist())
	}

	for _, x := range visited {
		if s.dist[x] >= reached {
			continue
		}
		if _, ok := done[x]; !ok {
			done[x] = struct{}{}
			settled = append(settled, x)
		}
	}
	return reached, settled
}

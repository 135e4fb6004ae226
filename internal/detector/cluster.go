package detector

// labelKind is the tagged state of a point during clustering. An explicit
// variant avoids overloading a sentinel id for both "not yet labeled" and
// "confirmed noise".
type labelKind uint8

const (
	labelUnassigned labelKind = iota
	labelNoise
	labelClustered
)

// pointState is per-point scratch state owned by a single clustering run.
type pointState struct {
	visited bool
	kind    labelKind
	cluster int
}

// clusterObservations partitions observations into tiles with a DBSCAN-style
// density scan: points within eps of a core point share a tile. Neighbor
// queries are brute force, O(n^2) per frame, which is fine for the tens of
// pips a frame carries.
//
// Two properties the callers rely on:
//
//   - Determinism: cluster ids are allocated in input-order scan and the
//     frontier is FIFO, so identical input and tunables always produce the
//     identical grouping.
//   - No observation is dropped: points DBSCAN would leave as noise are
//     promoted to one-member tiles afterwards, because a valid domino face
//     may carry a single pip. With minPts = 1 the promotion path is almost
//     unreachable (every point is its own core), but it must hold for any
//     configured minPts.
//
// Output order: clusters in creation order, then promoted singletons in
// original point order.
func clusterObservations(observations []DotObservation, eps float64, minPts int) []Tile {
	if len(observations) == 0 {
		return nil
	}
	if minPts < 1 {
		minPts = 1
	}

	n := len(observations)
	epsSq := eps * eps
	state := make([]pointState, n)

	// Neighborhood test is inclusive: two points exactly eps apart are
	// neighbors. Squared distances avoid the square root.
	neighborsOf := func(i int) []int {
		var neighbors []int
		pi := observations[i]
		for j := 0; j < n; j++ {
			dx := observations[j].X - pi.X
			dy := observations[j].Y - pi.Y
			if dx*dx+dy*dy <= epsSq {
				neighbors = append(neighbors, j)
			}
		}
		return neighbors
	}

	clusterCount := 0
	enqueued := make([]bool, n)

	for i := 0; i < n; i++ {
		if state[i].visited {
			continue
		}
		state[i].visited = true

		seedNeighbors := neighborsOf(i)
		if len(seedNeighbors) < minPts {
			state[i].kind = labelNoise
			continue
		}

		c := clusterCount
		clusterCount++
		state[i].kind = labelClustered
		state[i].cluster = c

		// Expand from the seed's neighborhood. Each point enters the
		// frontier at most once; re-discovering an enqueued point is a
		// no-op, so expansion order cannot change final connectivity.
		for j := range enqueued {
			enqueued[j] = false
		}
		enqueued[i] = true
		frontier := make([]int, 0, len(seedNeighbors))
		for _, q := range seedNeighbors {
			if !enqueued[q] {
				enqueued[q] = true
				frontier = append(frontier, q)
			}
		}

		for len(frontier) > 0 {
			q := frontier[0]
			frontier = frontier[1:]

			if !state[q].visited {
				state[q].visited = true
				qNeighbors := neighborsOf(q)
				if len(qNeighbors) >= minPts {
					for _, m := range qNeighbors {
						if !enqueued[m] {
							enqueued[m] = true
							frontier = append(frontier, m)
						}
					}
				}
			}

			// Border points keep the first cluster that reaches them;
			// noise reached by a core point is reclaimed.
			if state[q].kind == labelUnassigned || state[q].kind == labelNoise {
				state[q].kind = labelClustered
				state[q].cluster = c
			}
		}
	}

	// Group clustered points by ascending cluster id, preserving the input
	// order of members within each tile.
	members := make([][]DotObservation, clusterCount)
	for i, s := range state {
		if s.kind == labelClustered {
			members[s.cluster] = append(members[s.cluster], observations[i])
		}
	}

	tiles := make([]Tile, 0, clusterCount)
	for _, m := range members {
		if len(m) > 0 {
			tiles = append(tiles, Tile{Members: m})
		}
	}

	// Singleton promotion: remaining noise becomes one-member tiles.
	for i, s := range state {
		if s.kind == labelNoise {
			tiles = append(tiles, Tile{Members: []DotObservation{observations[i]}})
		}
	}

	return tiles
}

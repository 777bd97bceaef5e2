package decompose

// unionFind is a disjoint-set forest over provisional labels.
type unionFind struct {
	parent []int
}

func (u *unionFind) add() int {
	u.parent = append(u.parent, len(u.parent))
	return len(u.parent) - 1
}

func (u *unionFind) find(a int) int {
	for u.parent[a] != a {
		u.parent[a] = u.parent[u.parent[a]]
		a = u.parent[a]
	}
	return a
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	// the smaller root wins so label order follows raster order
	if ra < rb {
		u.parent[rb] = ra
	} else {
		u.parent[ra] = rb
	}
}

// offset is a neighbor displacement.
type offset struct{ dx, dy, dz int }

// backwardOffsets returns the neighbors already visited in raster order
// (x fastest, then y, then z) for the given connectivity.
func backwardOffsets(c Connectivity) []offset {
	var out []offset
	for dz := -1; dz <= 0; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dz == 0 && (dy > 0 || (dy == 0 && dx >= 0)) {
					continue
				}
				n := abs(dx) + abs(dy) + abs(dz)
				switch {
				case c == Connectivity6 && n > 1:
					continue
				case c == Connectivity18 && n > 2:
					continue
				}
				out = append(out, offset{dx, dy, dz})
			}
		}
	}
	return out
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

// label assigns component ids 1..n to the foreground voxels of g. Ids are
// ordered by the raster position of each component's first voxel; the result
// holds 0 for background.
func label(g *grid, c Connectivity) ([]int, int) {
	w, h, d := g.dims[0], g.dims[1], g.dims[2]
	labels := make([]int, len(g.data))
	for i := range labels {
		labels[i] = -1
	}

	neighbors := backwardOffsets(c)
	uf := &unionFind{}

	for z := 0; z < d; z++ {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := g.index(x, y, z)
				if g.data[i] == 0 {
					continue
				}
				current := -1
				for _, o := range neighbors {
					nx, ny, nz := x+o.dx, y+o.dy, z+o.dz
					if nx < 0 || ny < 0 || nz < 0 || nx >= w || ny >= h {
						continue
					}
					nl := labels[g.index(nx, ny, nz)]
					if nl < 0 {
						continue
					}
					if current < 0 {
						current = nl
					} else {
						uf.union(current, nl)
					}
				}
				if current < 0 {
					current = uf.add()
				}
				labels[i] = current
			}
		}
	}

	// compact roots into 1..n in first-seen order
	ids := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		if l < 0 {
			continue
		}
		root := uf.find(l)
		id, ok := ids[root]
		if !ok {
			id = len(ids) + 1
			ids[root] = id
		}
		out[i] = id
	}
	return out, len(ids)
}

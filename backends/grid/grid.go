package grid

// gridCell is one walkable floor surface: the top of a walkable span.
type gridCell struct {
	x, z   int32
	y      int32 // floor height in CellHeight units
	region int32
}

// navGrid is the compact walkable-surface representation built from a
// filtered heightfield: only walkable floors survive, addressed per column
// so stacked floors (bridges, overhangs) keep distinct cells.
type navGrid struct {
	width, depth int
	bmin         [3]float32
	cs, ch       float32
	cells        []gridCell
	columns      [][]int32 // len width*depth, indices into cells, by y
}

var cardinal = [4][2]int32{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

func buildNavGrid(hf *heightfield) *navGrid {
	g := &navGrid{
		width:   hf.width,
		depth:   hf.depth,
		bmin:    hf.bmin,
		cs:      hf.cs,
		ch:      hf.ch,
		columns: make([][]int32, hf.width*hf.depth),
	}

	for z := 0; z < hf.depth; z++ {
		for x := 0; x < hf.width; x++ {
			for _, s := range hf.columns[x+z*hf.width] {
				if !s.walkable {
					continue
				}

				idx := int32(len(g.cells))
				g.cells = append(g.cells, gridCell{x: int32(x), z: int32(z), y: s.smax})
				g.columns[x+z*hf.width] = append(g.columns[x+z*hf.width], idx)
			}
		}
	}

	return g
}

// cellAt returns the index of the cell in column (x, z) whose floor is
// closest to y within climb, or -1.
func (g *navGrid) cellAt(x, z, y, climb int32) int32 {
	if x < 0 || z < 0 || x >= int32(g.width) || z >= int32(g.depth) {
		return -1
	}

	best := int32(-1)
	bestDiff := climb + 1

	for _, ci := range g.columns[x+z*int32(g.width)] {
		diff := abs32(g.cells[ci].y - y)
		if diff < bestDiff {
			best = ci
			bestDiff = diff
		}
	}

	return best
}

// neighbor returns the connected cell one step in the given cardinal
// direction, or -1 if the step exceeds climb.
func (g *navGrid) neighbor(ci int32, dir int, climb int32) int32 {
	c := g.cells[ci]

	return g.cellAt(c.x+cardinal[dir][0], c.z+cardinal[dir][1], c.y, climb)
}

// worldPos returns the world-space center of a cell's floor.
func (g *navGrid) worldPos(ci int32) [3]float32 {
	c := g.cells[ci]

	return [3]float32{
		g.bmin[0] + (float32(c.x)+0.5)*g.cs,
		g.bmin[1] + float32(c.y)*g.ch,
		g.bmin[2] + (float32(c.z)+0.5)*g.cs,
	}
}

// erode removes every cell closer than radius steps to a non-walkable
// boundary, shrinking the surface by the agent radius. Distance is a
// multi-source BFS over cell connectivity.
func (g *navGrid) erode(radius int, climb int32) {
	if radius <= 0 {
		return
	}

	dist := make([]int32, len(g.cells))
	for i := range dist {
		dist[i] = int32(len(g.cells) + 1)
	}

	queue := make([]int32, 0, len(g.cells))

	for ci := range g.cells {
		for dir := 0; dir < 4; dir++ {
			if g.neighbor(int32(ci), dir, climb) < 0 {
				dist[ci] = 0
				queue = append(queue, int32(ci))

				break
			}
		}
	}

	for len(queue) > 0 {
		ci := queue[0]
		queue = queue[1:]

		for dir := 0; dir < 4; dir++ {
			ni := g.neighbor(ci, dir, climb)
			if ni >= 0 && dist[ni] > dist[ci]+1 {
				dist[ni] = dist[ci] + 1
				queue = append(queue, ni)
			}
		}
	}

	keep := func(ci int32) bool { return dist[ci] >= int32(radius) }
	g.compact(keep)
}

// buildRegions flood-fills connected cells into regions, culls regions
// smaller than minArea, and merges regions smaller than mergeArea into an
// adjacent region. Returns the number of surviving regions.
func (g *navGrid) buildRegions(minArea, mergeArea int, climb int32) int {
	for i := range g.cells {
		g.cells[i].region = 0
	}

	var regions []int // area per region id, index 0 unused
	regions = append(regions, 0)

	queue := make([]int32, 0, 64)

	for ci := range g.cells {
		if g.cells[ci].region != 0 {
			continue
		}

		id := int32(len(regions))
		regions = append(regions, 0)

		g.cells[ci].region = id
		queue = append(queue[:0], int32(ci))
		area := 0

		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			area++

			for dir := 0; dir < 4; dir++ {
				ni := g.neighbor(cur, dir, climb)
				if ni >= 0 && g.cells[ni].region == 0 {
					g.cells[ni].region = id
					queue = append(queue, ni)
				}
			}
		}

		regions[id] = area
	}

	// Merge undersized regions into a touching neighbor region.
	merge := make(map[int32]int32)

	for ci := range g.cells {
		id := g.cells[ci].region
		if regions[id] >= mergeArea || merge[id] != 0 {
			continue
		}

		for dir := 0; dir < 4; dir++ {
			ni := g.neighbor(int32(ci), dir, climb)
			if ni >= 0 && g.cells[ni].region != id {
				merge[id] = resolveMerge(merge, g.cells[ni].region)

				break
			}
		}
	}

	for i := range g.cells {
		if to := resolveMerge(merge, g.cells[i].region); to != g.cells[i].region {
			regions[to] += 1
			regions[g.cells[i].region] -= 1
			g.cells[i].region = to
		}
	}

	// Cull regions still under the minimum area.
	g.compact(func(ci int32) bool {
		return regions[g.cells[ci].region] >= minArea
	})

	seen := make(map[int32]bool)
	for _, c := range g.cells {
		seen[c.region] = true
	}

	return len(seen)
}

func resolveMerge(merge map[int32]int32, id int32) int32 {
	for {
		to, ok := merge[id]
		if !ok || to == id {
			return id
		}
		id = to
	}
}

// compact drops cells failing keep and rebuilds the column index.
func (g *navGrid) compact(keep func(int32) bool) {
	remap := make([]int32, len(g.cells))
	kept := g.cells[:0]

	for ci := range g.cells {
		if keep(int32(ci)) {
			remap[ci] = int32(len(kept))
			kept = append(kept, g.cells[ci])
		} else {
			remap[ci] = -1
		}
	}

	g.cells = kept

	for col := range g.columns {
		out := g.columns[col][:0]
		for _, ci := range g.columns[col] {
			if remap[ci] >= 0 {
				out = append(out, remap[ci])
			}
		}
		g.columns[col] = out
	}
}

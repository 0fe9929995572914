package grid

import (
	"container/heap"
	"math"

	"github.com/weiihann/navbench/harness"
)

// FindPath implements harness.NavMesh. Both endpoints are snapped to the
// nearest walkable cell within halfExtents; failure to snap, or no route
// between the snapped cells, yields an empty path and no error. The cell
// path is smoothed by line-of-sight string pulling and, when detail
// sampling is configured, resampled against grid heights.
func (m *NavMesh) FindPath(start, end, halfExtents [3]float32) (harness.Path, error) {
	startCell := m.snap(start, halfExtents)
	endCell := m.snap(end, halfExtents)

	if startCell < 0 || endCell < 0 {
		return harness.Path{}, nil
	}

	cells := m.astar(startCell, endCell)
	if cells == nil {
		return harness.Path{}, nil
	}

	points := m.smooth(cells)

	if m.cfg.DetailSampleDist > 0 {
		points = m.resample(points)
	}

	return points, nil
}

// snap finds the walkable cell whose floor center is nearest to p within
// the half-extents box, or -1.
func (m *NavMesh) snap(p, halfExtents [3]float32) int32 {
	g := m.grid

	x0 := clampInt(int((p[0]-halfExtents[0]-g.bmin[0])/g.cs), 0, g.width-1)
	x1 := clampInt(int((p[0]+halfExtents[0]-g.bmin[0])/g.cs), 0, g.width-1)
	z0 := clampInt(int((p[2]-halfExtents[2]-g.bmin[2])/g.cs), 0, g.depth-1)
	z1 := clampInt(int((p[2]+halfExtents[2]-g.bmin[2])/g.cs), 0, g.depth-1)

	// Reject points whose box lies entirely outside the grid.
	if p[0]+halfExtents[0] < g.bmin[0] || p[2]+halfExtents[2] < g.bmin[2] ||
		p[0]-halfExtents[0] > g.bmin[0]+float32(g.width)*g.cs ||
		p[2]-halfExtents[2] > g.bmin[2]+float32(g.depth)*g.cs {
		return -1
	}

	best := int32(-1)
	bestDist := float32(math.MaxFloat32)

	for z := z0; z <= z1; z++ {
		for x := x0; x <= x1; x++ {
			for _, ci := range g.columns[x+z*g.width] {
				pos := g.worldPos(ci)

				dy := pos[1] - p[1]
				if dy < -halfExtents[1] || dy > halfExtents[1] {
					continue
				}

				dx := pos[0] - p[0]
				dz := pos[2] - p[2]

				d := dx*dx + dy*dy + dz*dz
				if d < bestDist {
					best = ci
					bestDist = d
				}
			}
		}
	}

	return best
}

// astar runs 8-connected A* over the cell grid and returns the cell chain
// from start to end, or nil when no route exists. Diagonal steps are only
// taken when both adjacent cardinal steps exist, so routes never cut
// corners through unwalkable cells.
func (m *NavMesh) astar(start, end int32) []int32 {
	g := m.grid
	climb := int32(m.cfg.WalkableClimb)

	if start == end {
		return []int32{start}
	}

	gScore := map[int32]float32{start: 0}
	cameFrom := map[int32]int32{}
	inOpen := map[int32]*pqItem{}
	closed := map[int32]bool{}

	open := &priorityQueue{}
	heap.Init(open)

	startItem := &pqItem{cell: start, priority: m.heuristic(start, end)}
	heap.Push(open, startItem)
	inOpen[start] = startItem

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pqItem).cell
		delete(inOpen, cur)

		if cur == end {
			return reconstruct(cameFrom, cur)
		}

		closed[cur] = true

		neighbors := [8]int32{-1, -1, -1, -1, -1, -1, -1, -1}
		for dir := 0; dir < 4; dir++ {
			neighbors[dir] = g.neighbor(cur, dir, climb)
		}

		// Diagonals: -x-z, -x+z, +x-z, +x+z via the two cardinal steps.
		diag := [4][2]int{{0, 2}, {0, 3}, {1, 2}, {1, 3}}
		for i, d := range diag {
			if neighbors[d[0]] >= 0 && neighbors[d[1]] >= 0 {
				neighbors[4+i] = g.neighbor(neighbors[d[0]], d[1], climb)
			}
		}

		for i, ni := range neighbors {
			if ni < 0 || closed[ni] {
				continue
			}

			stepCost := g.cs
			if i >= 4 {
				stepCost = g.cs * math.Sqrt2
			}
			stepCost += abs32f(g.cells[ni].y-g.cells[cur].y) * g.ch

			tentative := gScore[cur] + stepCost

			if prev, ok := gScore[ni]; ok && tentative >= prev {
				continue
			}

			gScore[ni] = tentative
			cameFrom[ni] = cur

			f := tentative + m.heuristic(ni, end)

			if item, ok := inOpen[ni]; ok {
				item.priority = f
				heap.Fix(open, item.index)
			} else {
				item := &pqItem{cell: ni, priority: f}
				heap.Push(open, item)
				inOpen[ni] = item
			}
		}
	}

	return nil
}

// heuristic is the octile distance between two cells in world units.
func (m *NavMesh) heuristic(a, b int32) float32 {
	g := m.grid

	dx := float64(abs32(g.cells[a].x - g.cells[b].x))
	dz := float64(abs32(g.cells[a].z - g.cells[b].z))
	dy := float64(abs32(g.cells[a].y - g.cells[b].y))

	lo, hi := dx, dz
	if lo > hi {
		lo, hi = hi, lo
	}

	return float32(hi+(math.Sqrt2-1)*lo)*g.cs + float32(dy)*g.ch
}

func reconstruct(cameFrom map[int32]int32, cur int32) []int32 {
	path := []int32{cur}

	for {
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}

		path = append(path, prev)
		cur = prev
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	return path
}

// smooth string-pulls the cell chain: from each kept point, walk forward
// to the furthest cell still reachable along a straight walkable line.
func (m *NavMesh) smooth(cells []int32) harness.Path {
	g := m.grid
	points := harness.Path{g.worldPos(cells[0])}

	i := 0
	for i < len(cells)-1 {
		j := len(cells) - 1
		for j > i+1 && !m.walkableLine(cells[i], cells[j]) {
			j--
		}

		points = append(points, g.worldPos(cells[j]))
		i = j
	}

	return points
}

// walkableLine samples the straight segment between two cell centers at
// half-cell steps, requiring a floor within climb of the running height at
// every sample.
func (m *NavMesh) walkableLine(from, to int32) bool {
	g := m.grid
	climb := int32(m.cfg.WalkableClimb)

	a := g.worldPos(from)
	b := g.worldPos(to)

	dx := b[0] - a[0]
	dz := b[2] - a[2]

	dist := float32(math.Sqrt(float64(dx*dx + dz*dz)))
	if dist == 0 {
		return true
	}

	steps := int(dist/(g.cs/2)) + 1
	y := g.cells[from].y

	for s := 1; s <= steps; s++ {
		t := float32(s) / float32(steps)

		x := int32((a[0] + dx*t - g.bmin[0]) / g.cs)
		z := int32((a[2] + dz*t - g.bmin[2]) / g.cs)

		ci := g.cellAt(x, z, y, climb)
		if ci < 0 {
			return false
		}

		y = g.cells[ci].y
	}

	return true
}

// resample inserts grid-height samples along each smoothed segment every
// DetailSampleDist world units, keeping only samples that deviate from the
// straight segment by more than DetailSampleMaxError.
func (m *NavMesh) resample(points harness.Path) harness.Path {
	g := m.grid
	climb := int32(m.cfg.WalkableClimb)

	out := harness.Path{points[0]}

	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]

		dx := b[0] - a[0]
		dy := b[1] - a[1]
		dz := b[2] - a[2]

		dist := float32(math.Sqrt(float64(dx*dx + dz*dz)))
		samples := int(dist / m.cfg.DetailSampleDist)

		for s := 1; s <= samples; s++ {
			t := float32(s) / float32(samples+1)

			px := a[0] + dx*t
			pz := a[2] + dz*t
			py := a[1] + dy*t

			x := int32((px - g.bmin[0]) / g.cs)
			z := int32((pz - g.bmin[2]) / g.cs)

			ci := g.cellAt(x, z, int32((py-g.bmin[1])/g.ch), climb)
			if ci < 0 {
				continue
			}

			gy := g.bmin[1] + float32(g.cells[ci].y)*g.ch
			if float32(math.Abs(float64(gy-py))) > m.cfg.DetailSampleMaxError {
				out = append(out, [3]float32{px, gy, pz})
			}
		}

		out = append(out, b)
	}

	return out
}

func abs32f(v int32) float32 {
	if v < 0 {
		v = -v
	}

	return float32(v)
}

// pqItem is one open-list entry in the A* search.
type pqItem struct {
	cell     int32
	priority float32
	index    int
}

type priorityQueue []*pqItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool { return pq[i].priority < pq[j].priority }

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	item := x.(*pqItem)
	item.index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*pq = old[:n-1]

	return item
}

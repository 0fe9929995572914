// Package grid implements a compact voxel-native walkable-surface engine:
// triangle rasterization into a 2.5D column heightfield, walkability
// filtering, radius erosion, region building, and grid A* queries.
package grid

import (
	"fmt"
	"math"
	"sort"

	"github.com/weiihann/navbench/harness"
	"github.com/weiihann/navbench/scene"
)

func init() {
	harness.Register("grid", func() harness.Backend { return New() })
}

// Backend builds grid navmeshes. It is stateless; every Build call is
// independent.
type Backend struct{}

// New returns the grid backend.
func New() *Backend { return &Backend{} }

// Name implements harness.Backend.
func (b *Backend) Name() string { return "grid" }

// Build rasterizes the triangle buffer into a heightfield, filters it down
// to the walkable surface, and returns a queryable navmesh. Fails when no
// walkable surface survives filtering.
func (b *Backend) Build(buf *scene.TriangleBuffer, opts harness.Options) (harness.NavMesh, error) {
	cfg := AdaptOptions(opts)

	if buf.TriangleCount() == 0 {
		return nil, fmt.Errorf("grid: empty triangle buffer")
	}

	bmin, bmax := buf.Bounds()
	hf := newHeightfield(bmin, bmax, cfg.CellSize, cfg.CellHeight)

	walkableThr := float32(math.Cos(float64(cfg.WalkableSlopeDeg) * math.Pi / 180))

	for i := 0; i < buf.TriangleCount(); i++ {
		tri := buf.Triangle(i)
		hf.rasterizeTriangle(tri[0], tri[1], tri[2], triWalkable(tri, walkableThr))
	}

	climb := int32(cfg.WalkableClimb)

	hf.filterLowHangingWalkable(climb)
	hf.filterLedgeSpans(int32(cfg.WalkableHeight), climb)
	hf.filterLowHeightSpans(int32(cfg.WalkableHeight))

	g := buildNavGrid(hf)
	g.erode(cfg.WalkableRadius, climb)
	regions := g.buildRegions(cfg.MinRegionArea, cfg.MergeRegionArea, climb)

	if len(g.cells) == 0 {
		return nil, fmt.Errorf("grid: no walkable surface after filtering")
	}

	return &NavMesh{cfg: cfg, grid: g, regions: regions}, nil
}

// triWalkable tests the triangle's slope against the walkable threshold.
// The test uses the absolute y component of the normal so winding does not
// matter.
func triWalkable(tri [3][3]float32, thr float32) bool {
	e1 := [3]float32{tri[1][0] - tri[0][0], tri[1][1] - tri[0][1], tri[1][2] - tri[0][2]}
	e2 := [3]float32{tri[2][0] - tri[0][0], tri[2][1] - tri[0][1], tri[2][2] - tri[0][2]}

	nx := e1[1]*e2[2] - e1[2]*e2[1]
	ny := e1[2]*e2[0] - e1[0]*e2[2]
	nz := e1[0]*e2[1] - e1[1]*e2[0]

	len2 := nx*nx + ny*ny + nz*nz
	if len2 == 0 {
		return false
	}

	return float32(math.Abs(float64(ny)))/float32(math.Sqrt(float64(len2))) >= thr
}

// NavMesh is a built grid navmesh handle.
type NavMesh struct {
	cfg     Config
	grid    *navGrid
	regions int
}

// Stats implements harness.NavMesh. Nodes counts surviving regions and
// DataBytes approximates the cell storage.
func (m *NavMesh) Stats() harness.BuildStats {
	const cellBytes = 16

	return harness.BuildStats{
		Nodes:     m.regions,
		DataBytes: len(m.grid.cells) * cellBytes,
	}
}

// Contours returns the boundary outline of every region as world-space
// rings, each split into runs of at most MaxVertsPerPoly vertices, for the
// visualization layer.
func (m *NavMesh) Contours() [][][3]float32 {
	rings := m.traceBoundaries()

	var out [][][3]float32

	for _, ring := range rings {
		for len(ring) > m.cfg.MaxVertsPerPoly {
			out = append(out, ring[:m.cfg.MaxVertsPerPoly])
			ring = ring[m.cfg.MaxVertsPerPoly-1:]
		}

		if len(ring) >= 2 {
			out = append(out, ring)
		}
	}

	return out
}

// boundaryEdge is a directed edge along cell-corner grid points, tagged
// with the floor height of the cell it borders.
type boundaryEdge struct {
	from, to int32 // corner index: cx + cz*(width+1)
	y        int32
}

// traceBoundaries collects the directed boundary edges of every region and
// chains them into closed rings, dropping collinear interior corners.
func (m *NavMesh) traceBoundaries() [][][3]float32 {
	g := m.grid
	cornerW := int32(g.width + 1)

	byRegion := make(map[int32][]boundaryEdge)

	for ci := range g.cells {
		c := g.cells[ci]
		climb := int32(m.cfg.WalkableClimb)

		corner := func(dx, dz int32) int32 {
			return (c.x + dx) + (c.z+dz)*cornerW
		}

		for dir := 0; dir < 4; dir++ {
			ni := g.neighbor(int32(ci), dir, climb)
			if ni >= 0 && g.cells[ni].region == c.region {
				continue
			}

			var e boundaryEdge
			switch dir {
			case 0: // -x, interior to the east
				e = boundaryEdge{from: corner(0, 1), to: corner(0, 0)}
			case 1: // +x
				e = boundaryEdge{from: corner(1, 0), to: corner(1, 1)}
			case 2: // -z
				e = boundaryEdge{from: corner(0, 0), to: corner(1, 0)}
			case 3: // +z
				e = boundaryEdge{from: corner(1, 1), to: corner(0, 1)}
			}
			e.y = c.y

			byRegion[c.region] = append(byRegion[c.region], e)
		}
	}

	ids := make([]int32, 0, len(byRegion))
	for id := range byRegion {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var rings [][][3]float32

	for _, id := range ids {
		rings = append(rings, chainEdges(byRegion[id], g, cornerW)...)
	}

	return rings
}

func chainEdges(edges []boundaryEdge, g *navGrid, cornerW int32) [][][3]float32 {
	next := make(map[int32][]int)
	for i, e := range edges {
		next[e.from] = append(next[e.from], i)
	}

	used := make([]bool, len(edges))

	var rings [][][3]float32

	for start := range edges {
		if used[start] {
			continue
		}

		var chain []boundaryEdge

		cur := start
		for !used[cur] {
			used[cur] = true
			chain = append(chain, edges[cur])

			cands := next[edges[cur].to]
			cur = -1
			for _, cand := range cands {
				if !used[cand] {
					cur = cand

					break
				}
			}
			if cur < 0 {
				break
			}
		}

		if len(chain) < 3 {
			continue
		}

		ring := cornersToWorld(chain, g, cornerW)
		if len(ring) >= 3 {
			rings = append(rings, ring)
		}
	}

	return rings
}

// cornersToWorld converts a chained edge loop into world-space points,
// keeping only corners where the outline changes direction.
func cornersToWorld(chain []boundaryEdge, g *navGrid, cornerW int32) [][3]float32 {
	toWorld := func(corner, y int32) [3]float32 {
		cx := corner % cornerW
		cz := corner / cornerW

		return [3]float32{
			g.bmin[0] + float32(cx)*g.cs,
			g.bmin[1] + float32(y)*g.ch,
			g.bmin[2] + float32(cz)*g.cs,
		}
	}

	dir := func(e boundaryEdge) [2]int32 {
		return [2]int32{e.to%cornerW - e.from%cornerW, e.to/cornerW - e.from/cornerW}
	}

	var ring [][3]float32

	for i, e := range chain {
		prev := chain[(i+len(chain)-1)%len(chain)]
		if dir(prev) != dir(e) || prev.to != e.from {
			ring = append(ring, toWorld(e.from, e.y))
		}
	}

	return ring
}

// Package octnav wraps the octree-go navigation engine as the second
// backend under comparison. The engine is world-unit native: agent
// dimensions stay in meters and the canonical cell size becomes the octree
// leaf size.
package octnav

import (
	"fmt"
	"math"

	"github.com/o0olele/octree-go/builder"
	"github.com/o0olele/octree-go/geometry"
	"github.com/o0olele/octree-go/math32"
	"github.com/o0olele/octree-go/octree"
	"github.com/o0olele/octree-go/query"

	"github.com/weiihann/navbench/harness"
	"github.com/weiihann/navbench/scene"
)

func init() {
	harness.Register("octree", func() harness.Backend { return New() })
}

// Config is the octree engine's native parameter encoding. Everything is
// world units; the linear (unsquared) fields distinguish it from the grid
// engine's voxel-native encoding.
type Config struct {
	AgentRadius float64
	AgentHeight float64
	LeafSize    float32 // octree leaf size and voxel step
	StepSize    float32 // pathfinder graph sampling step
	// MinRegionSize passes through linearly; the engine has no region
	// area concept, so it only toggles graph pruning.
	MinRegionSize float32
	UsePrune      bool
}

// AdaptOptions maps canonical options onto the octree engine's world-unit
// encoding. No squaring and no cell scaling happen here: those transforms
// belong to the grid engine, and applying them to this backend would skew
// the comparison.
func AdaptOptions(o harness.Options) Config {
	return Config{
		AgentRadius:   float64(o.AgentRadius),
		AgentHeight:   float64(o.AgentHeight),
		LeafSize:      o.CellSize,
		StepSize:      o.AgentClimb,
		MinRegionSize: o.MinRegionSize,
		UsePrune:      o.MinRegionSize > 0,
	}
}

// DeriveMaxDepth returns the octree depth needed to reach the leaf size
// over the longest bounds extent, ceil(log2(extent / leaf)), clamped to
// [4, 10].
func DeriveMaxDepth(size [3]float32, leaf float32) uint8 {
	longest := max3(size[0], size[1], size[2])
	if leaf <= 0 || longest <= leaf {
		return 4
	}

	depth := int(math.Ceil(math.Log2(float64(longest / leaf))))

	if depth < 4 {
		depth = 4
	}
	if depth > 10 {
		depth = 10
	}

	return uint8(depth)
}

// Backend builds octree navmeshes.
type Backend struct{}

// New returns the octree backend.
func New() *Backend { return &Backend{} }

// Name implements harness.Backend.
func (b *Backend) Name() string { return "octree" }

// Build feeds the triangle buffer into an octree-go builder and wraps the
// produced navigation data in a query handle. Builder bounds are the
// buffer bounds padded by the agent height so near-boundary queries can
// still snap.
func (b *Backend) Build(buf *scene.TriangleBuffer, opts harness.Options) (harness.NavMesh, error) {
	cfg := AdaptOptions(opts)

	if buf.TriangleCount() == 0 {
		return nil, fmt.Errorf("octree: empty triangle buffer")
	}

	bmin, bmax := buf.Bounds()
	pad := float32(cfg.AgentHeight)

	bounds := geometry.AABB{
		Min: math32.Vector3{X: bmin[0] - pad, Y: bmin[1] - pad, Z: bmin[2] - pad},
		Max: math32.Vector3{X: bmax[0] + pad, Y: bmax[1] + pad, Z: bmax[2] + pad},
	}

	size := bounds.Size()
	depth := DeriveMaxDepth([3]float32{size.X, size.Y, size.Z}, cfg.LeafSize)

	nb := builder.NewBuilder(bounds, depth, cfg.LeafSize, cfg.StepSize)
	nb.SetUseVoxel(true)
	nb.SetUsePrune(cfg.UsePrune)
	// Sequential build keeps the harness single-threaded so timing stays
	// comparable with the grid engine.
	nb.SetParallel(false)

	for i := 0; i < buf.TriangleCount(); i++ {
		tri := buf.Triangle(i)
		nb.AddTriangle(geometry.Triangle{
			A: math32.Vector3{X: tri[0][0], Y: tri[0][1], Z: tri[0][2]},
			B: math32.Vector3{X: tri[1][0], Y: tri[1][1], Z: tri[1][2]},
			C: math32.Vector3{X: tri[2][0], Y: tri[2][1], Z: tri[2][2]},
		})
	}

	agent := octree.NewAgent(float32(cfg.AgentRadius), float32(cfg.AgentHeight))

	navData, err := nb.Build(agent)
	if err != nil {
		return nil, fmt.Errorf("octree build: %w", err)
	}

	q, err := query.NewNavigationQuery(navData)
	if err != nil {
		return nil, fmt.Errorf("octree query setup: %w", err)
	}
	q.SetAgent(agent)

	return &NavMesh{query: q, navData: navData, bounds: bounds}, nil
}

// NavMesh is a built octree navmesh handle.
type NavMesh struct {
	query   *query.NavigationQuery
	navData *builder.NavigationData
	bounds  geometry.AABB
}

// FindPath implements harness.NavMesh. The engine snaps endpoints to its
// node graph internally without an extents bound, so the half-extents
// contract is approximated: an endpoint whose extents box lies outside the
// navigation bounds cannot snap and yields an empty path.
func (m *NavMesh) FindPath(start, end, halfExtents [3]float32) (harness.Path, error) {
	if !m.withinBounds(start, halfExtents) || !m.withinBounds(end, halfExtents) {
		return harness.Path{}, nil
	}

	native := m.query.FindPath(
		math32.Vector3{X: start[0], Y: start[1], Z: start[2]},
		math32.Vector3{X: end[0], Y: end[1], Z: end[2]},
	)

	return projectPath(native), nil
}

// Stats implements harness.NavMesh using the engine's own artifact counts.
func (m *NavMesh) Stats() harness.BuildStats {
	return harness.BuildStats{
		Nodes:     m.navData.GetNodeCount(),
		DataBytes: m.navData.GetDataSize(),
	}
}

func (m *NavMesh) withinBounds(p, halfExtents [3]float32) bool {
	return p[0]+halfExtents[0] >= m.bounds.Min.X && p[0]-halfExtents[0] <= m.bounds.Max.X &&
		p[1]+halfExtents[1] >= m.bounds.Min.Y && p[1]-halfExtents[1] <= m.bounds.Max.Y &&
		p[2]+halfExtents[2] >= m.bounds.Min.Z && p[2]-halfExtents[2] <= m.bounds.Max.Z
}

// projectPath maps the engine's native point sequence into the normalized
// representation, dropping per-point metadata.
func projectPath(native []math32.Vector3) harness.Path {
	path := make(harness.Path, 0, len(native))
	for _, p := range native {
		path = append(path, [3]float32{p.X, p.Y, p.Z})
	}

	return path
}

func max3(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}

	return a
}

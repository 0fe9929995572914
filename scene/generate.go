package scene

import (
	"fmt"
	mrand "math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// Config controls procedural test-scene generation.
type Config struct {
	GroundSize  float32 // side length of the square ground slab
	Obstacles   int     // number of box obstacles scattered on the slab
	ObstacleMin float32 // smallest obstacle footprint
	ObstacleMax float32 // largest obstacle footprint
	Seed        int64
}

// Summary contains statistics about a generated scene.
type Summary struct {
	Nodes     int
	Triangles int
}

// Generator produces deterministic test scenes from a Config: a flat
// ground slab, a scatter of tall box obstacles, and one walkable ramp.
// The same seed always yields the same scene graph.
type Generator struct {
	cfg Config
	rng *mrand.Rand
}

// NewGenerator creates a Generator from the given Config.
func NewGenerator(cfg Config) *Generator {
	return &Generator{
		cfg: cfg,
		rng: mrand.New(mrand.NewSource(cfg.Seed)),
	}
}

// Generate builds the scene graph and returns its root and a Summary.
func (g *Generator) Generate() (*Node, Summary) {
	var summary Summary

	root := NewNode("root")
	summary.Nodes++

	half := g.cfg.GroundSize / 2

	ground := NewNode("ground")
	ground.Mesh = quadMesh(g.cfg.GroundSize, g.cfg.GroundSize)
	root.AddChild(ground)
	summary.Nodes++
	summary.Triangles += len(ground.Mesh.Indices) / 3

	for i := 0; i < g.cfg.Obstacles; i++ {
		span := g.cfg.ObstacleMax - g.cfg.ObstacleMin
		w := g.cfg.ObstacleMin + g.rng.Float32()*span
		d := g.cfg.ObstacleMin + g.rng.Float32()*span
		h := 2 + g.rng.Float32()*2

		box := NewNode(fmt.Sprintf("obstacle-%d", i))
		box.Mesh = BoxMesh(w, h, d)
		// Keep obstacles away from the slab rim so erosion does not
		// disconnect the walkable ring around them.
		box.Translation = mgl32.Vec3{
			(g.rng.Float32()*2 - 1) * (half - g.cfg.ObstacleMax),
			h / 2,
			(g.rng.Float32()*2 - 1) * (half - g.cfg.ObstacleMax),
		}
		root.AddChild(box)
		summary.Nodes++
		summary.Triangles += len(box.Mesh.Indices) / 3
	}

	ramp := NewNode("ramp")
	ramp.Mesh = quadMesh(half/2, half/2)
	ramp.Translation = mgl32.Vec3{half / 2, half / 8, 0}
	ramp.Rotation = mgl32.QuatRotate(mgl32.DegToRad(-15), mgl32.Vec3{0, 0, 1})
	root.AddChild(ramp)
	summary.Nodes++
	summary.Triangles += len(ramp.Mesh.Indices) / 3

	return root, summary
}

// quadMesh returns a flat two-triangle quad in the xz plane, centered at
// the origin, as a non-indexed triangle list.
func quadMesh(width, depth float32) *Mesh {
	hw, hd := width/2, depth/2

	return &Mesh{
		Positions: []float32{
			-hw, 0, -hd,
			-hw, 0, hd,
			hw, 0, hd,

			-hw, 0, -hd,
			hw, 0, hd,
			hw, 0, -hd,
		},
	}
}

// BoxMesh returns an indexed axis-aligned box centered at the origin.
func BoxMesh(width, height, depth float32) *Mesh {
	hw, hh, hd := width/2, height/2, depth/2

	return &Mesh{
		Positions: []float32{
			-hw, -hh, -hd,
			hw, -hh, -hd,
			hw, hh, -hd,
			-hw, hh, -hd,
			-hw, -hh, hd,
			hw, -hh, hd,
			hw, hh, hd,
			-hw, hh, hd,
		},
		Indices: []uint32{
			0, 2, 1, 0, 3, 2, // back
			4, 5, 6, 4, 6, 7, // front
			0, 1, 5, 0, 5, 4, // bottom
			3, 6, 2, 3, 7, 6, // top
			0, 4, 7, 0, 7, 3, // left
			1, 2, 6, 1, 6, 5, // right
		},
	}
}

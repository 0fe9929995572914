package scene

import (
	"math"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func triangleMesh() *Mesh {
	return &Mesh{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			0, 0, 1,
		},
	}
}

func TestExtractSiblingOffsets(t *testing.T) {
	root := NewNode("root")

	a := NewNode("a")
	a.Mesh = triangleMesh()
	root.AddChild(a)

	b := NewNode("b")
	b.Mesh = triangleMesh()
	root.AddChild(b)

	buf := Extract(root)

	if buf.VertexCount() != 6 {
		t.Errorf("vertex count = %d, want 6", buf.VertexCount())
	}

	want := []uint32{0, 1, 2, 3, 4, 5}
	if !reflect.DeepEqual(buf.Indices, want) {
		t.Errorf("indices = %v, want %v (offset accumulation across siblings)", buf.Indices, want)
	}
}

func TestExtractParentTranslation(t *testing.T) {
	root := NewNode("root")

	parent := NewNode("parent")
	parent.Translation = mgl32.Vec3{10, 0, 0}
	root.AddChild(parent)

	child := NewNode("child")
	child.Mesh = triangleMesh()
	parent.AddChild(child)

	buf := Extract(root)

	if buf.VertexCount() != 3 {
		t.Fatalf("vertex count = %d, want 3", buf.VertexCount())
	}

	localX := []float32{0, 1, 0}
	for i := 0; i < 3; i++ {
		got := buf.Positions[i*3]
		want := localX[i] + 10
		if math.Abs(float64(got-want)) > 1e-5 {
			t.Errorf("vertex %d x = %v, want %v", i, got, want)
		}
	}
}

func TestExtractIndexedMesh(t *testing.T) {
	root := NewNode("root")

	a := NewNode("a")
	a.Mesh = triangleMesh()
	root.AddChild(a)

	quad := NewNode("quad")
	quad.Mesh = &Mesh{
		Positions: []float32{
			0, 0, 0,
			1, 0, 0,
			1, 0, 1,
			0, 0, 1,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	root.AddChild(quad)

	buf := Extract(root)

	if buf.VertexCount() != 7 {
		t.Errorf("vertex count = %d, want 7", buf.VertexCount())
	}

	want := []uint32{0, 1, 2, 3, 4, 5, 3, 5, 6}
	if !reflect.DeepEqual(buf.Indices, want) {
		t.Errorf("indices = %v, want %v", buf.Indices, want)
	}
}

func TestExtractSkipsMeshlessNodes(t *testing.T) {
	root := NewNode("root")
	root.AddChild(NewNode("empty"))

	group := NewNode("group")
	root.AddChild(group)

	leaf := NewNode("leaf")
	leaf.Mesh = triangleMesh()
	group.AddChild(leaf)

	buf := Extract(root)

	if buf.VertexCount() != 3 {
		t.Errorf("vertex count = %d, want 3", buf.VertexCount())
	}
	if buf.TriangleCount() != 1 {
		t.Errorf("triangle count = %d, want 1", buf.TriangleCount())
	}
}

func TestExtractScale(t *testing.T) {
	root := NewNode("root")

	n := NewNode("scaled")
	n.Mesh = triangleMesh()
	n.Scale = mgl32.Vec3{2, 2, 2}
	root.AddChild(n)

	buf := Extract(root)

	if got := buf.Positions[3]; math.Abs(float64(got-2)) > 1e-5 {
		t.Errorf("scaled vertex x = %v, want 2", got)
	}
}

func TestExtractDeterministic(t *testing.T) {
	build := func() *Node {
		gen := NewGenerator(Config{
			GroundSize:  20,
			Obstacles:   5,
			ObstacleMin: 1,
			ObstacleMax: 2,
			Seed:        42,
		})
		root, _ := gen.Generate()

		return root
	}

	first := Extract(build())
	second := Extract(build())

	if !reflect.DeepEqual(first.Positions, second.Positions) {
		t.Error("positions differ between identical runs")
	}
	if !reflect.DeepEqual(first.Indices, second.Indices) {
		t.Error("indices differ between identical runs")
	}
}

func TestTriangleBufferInvariants(t *testing.T) {
	gen := NewGenerator(Config{
		GroundSize:  20,
		Obstacles:   3,
		ObstacleMin: 1,
		ObstacleMax: 2,
		Seed:        7,
	})
	root, summary := gen.Generate()
	buf := Extract(root)

	if len(buf.Indices)%3 != 0 {
		t.Errorf("index count %d is not a multiple of 3", len(buf.Indices))
	}
	if buf.TriangleCount() != summary.Triangles {
		t.Errorf("triangle count = %d, summary says %d", buf.TriangleCount(), summary.Triangles)
	}

	verts := uint32(buf.VertexCount())
	for i, idx := range buf.Indices {
		if idx >= verts {
			t.Fatalf("index %d at %d out of range (%d vertices)", idx, i, verts)
		}
	}
}

func TestBounds(t *testing.T) {
	buf := &TriangleBuffer{
		Positions: []float32{
			-1, 0, 2,
			3, -4, 0,
			0, 5, -6,
		},
	}

	bmin, bmax := buf.Bounds()

	if bmin != [3]float32{-1, -4, -6} {
		t.Errorf("bmin = %v, want [-1 -4 -6]", bmin)
	}
	if bmax != [3]float32{3, 5, 2} {
		t.Errorf("bmax = %v, want [3 5 2]", bmax)
	}
}

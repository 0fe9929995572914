// Package scene models a renderable scene graph and flattens it into the
// world-space triangle soup consumed by navmesh generation.
package scene

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh holds a node's local-space geometry. Positions are flat x,y,z
// triples. Indices reference position triples; a nil index list means the
// mesh is a flat non-indexed triangle list.
type Mesh struct {
	Positions []float32
	Indices   []uint32
}

// Node is one element of the scene graph. A node may carry a mesh; nodes
// without one only contribute their transform to descendants. Use NewNode
// to get an identity transform; the zero value has a degenerate scale.
type Node struct {
	Name        string
	Mesh        *Mesh
	Translation mgl32.Vec3
	Rotation    mgl32.Quat
	Scale       mgl32.Vec3
	Children    []*Node
}

// NewNode returns a node with an identity transform and no mesh.
func NewNode(name string) *Node {
	return &Node{
		Name:     name,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// AddChild appends child to n's children and returns it.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)

	return child
}

func (n *Node) localTransform() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Translation.X(), n.Translation.Y(), n.Translation.Z())
	r := n.Rotation.Mat4()
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())

	return t.Mul4(r).Mul4(s)
}

// TriangleBuffer is a flat world-space triangle soup. Positions are x,y,z
// triples in traversal order; Indices are triples referencing positions and
// are globally valid against the concatenated position buffer. Immutable
// once produced by Extract.
type TriangleBuffer struct {
	Positions []float32
	Indices   []uint32
}

// VertexCount returns the number of position triples.
func (b *TriangleBuffer) VertexCount() int { return len(b.Positions) / 3 }

// TriangleCount returns the number of index triples.
func (b *TriangleBuffer) TriangleCount() int { return len(b.Indices) / 3 }

// Triangle returns the three corner positions of triangle i.
func (b *TriangleBuffer) Triangle(i int) [3][3]float32 {
	var tri [3][3]float32
	for c := 0; c < 3; c++ {
		idx := b.Indices[i*3+c] * 3
		tri[c] = [3]float32{b.Positions[idx], b.Positions[idx+1], b.Positions[idx+2]}
	}

	return tri
}

// Bounds returns the axis-aligned bounds of all positions. A buffer with no
// positions yields zero bounds.
func (b *TriangleBuffer) Bounds() (bmin, bmax [3]float32) {
	if len(b.Positions) < 3 {
		return bmin, bmax
	}

	bmin = [3]float32{b.Positions[0], b.Positions[1], b.Positions[2]}
	bmax = bmin

	for i := 3; i+2 < len(b.Positions); i += 3 {
		for c := 0; c < 3; c++ {
			v := b.Positions[i+c]
			if v < bmin[c] {
				bmin[c] = v
			}
			if v > bmax[c] {
				bmax[c] = v
			}
		}
	}

	return bmin, bmax
}

// Extract flattens the scene graph rooted at root into one triangle buffer.
// Traversal is depth-first pre-order, parent before children, siblings in
// stored order, so repeated runs on the same scene yield identical buffers.
// Every local vertex is transformed by the node's accumulated world
// transform; meshes without an index list get synthesized indices
// 0..vertexCount-1. Nodes without a mesh are skipped.
func Extract(root *Node) *TriangleBuffer {
	buf := &TriangleBuffer{}
	extractNode(root, mgl32.Ident4(), buf)

	return buf
}

func extractNode(n *Node, parent mgl32.Mat4, buf *TriangleBuffer) {
	world := parent.Mul4(n.localTransform())

	if n.Mesh != nil && len(n.Mesh.Positions) >= 3 {
		// Indices appended below are offset by the vertex count so far,
		// which makes traversal order the sole source of index validity.
		base := uint32(len(buf.Positions) / 3)

		for i := 0; i+2 < len(n.Mesh.Positions); i += 3 {
			p := world.Mul4x1(mgl32.Vec4{
				n.Mesh.Positions[i],
				n.Mesh.Positions[i+1],
				n.Mesh.Positions[i+2],
				1,
			})
			buf.Positions = append(buf.Positions, p.X(), p.Y(), p.Z())
		}

		if len(n.Mesh.Indices) > 0 {
			for _, idx := range n.Mesh.Indices {
				buf.Indices = append(buf.Indices, base+idx)
			}
		} else {
			count := uint32(len(n.Mesh.Positions) / 3)
			for i := uint32(0); i < count; i++ {
				buf.Indices = append(buf.Indices, base+i)
			}
		}
	}

	for _, child := range n.Children {
		extractNode(child, world, buf)
	}
}

package octnav

import (
	"testing"

	"github.com/o0olele/octree-go/geometry"
	"github.com/o0olele/octree-go/math32"

	"github.com/weiihann/navbench/harness"
)

func TestAdaptOptionsIsLinear(t *testing.T) {
	o := harness.DefaultOptions()
	o.MinRegionSize = 8

	cfg := AdaptOptions(o)

	if cfg.MinRegionSize != 8 {
		t.Errorf("MinRegionSize = %v, want 8 unchanged (no squaring on this backend)", cfg.MinRegionSize)
	}
	if !cfg.UsePrune {
		t.Error("positive region size should enable pruning")
	}
}

func TestAdaptOptionsWorldUnits(t *testing.T) {
	o := harness.DefaultOptions()
	o.AgentRadius = 0.6
	o.AgentHeight = 2.0
	o.CellSize = 0.3
	o.AgentClimb = 0.9

	cfg := AdaptOptions(o)

	if cfg.AgentRadius != 0.6 {
		t.Errorf("AgentRadius = %v, want 0.6 (world units, not voxels)", cfg.AgentRadius)
	}
	if cfg.AgentHeight != 2.0 {
		t.Errorf("AgentHeight = %v, want 2.0", cfg.AgentHeight)
	}
	if cfg.LeafSize != 0.3 {
		t.Errorf("LeafSize = %v, want 0.3 (canonical cell size)", cfg.LeafSize)
	}
	if cfg.StepSize != 0.9 {
		t.Errorf("StepSize = %v, want 0.9 (agent climb)", cfg.StepSize)
	}
}

func TestAdaptOptionsZeroRegionDisablesPrune(t *testing.T) {
	o := harness.DefaultOptions()
	o.MinRegionSize = 0

	if cfg := AdaptOptions(o); cfg.UsePrune {
		t.Error("zero region size should disable pruning")
	}
}

func TestDeriveMaxDepth(t *testing.T) {
	tests := []struct {
		name string
		size [3]float32
		leaf float32
		want uint8
	}{
		{name: "typical scene", size: [3]float32{24, 8, 24}, leaf: 0.3, want: 7},
		{name: "clamped low", size: [3]float32{2, 2, 2}, leaf: 1, want: 4},
		{name: "clamped high", size: [3]float32{10000, 10, 10000}, leaf: 0.1, want: 10},
		{name: "degenerate leaf", size: [3]float32{10, 10, 10}, leaf: 0, want: 4},
		{name: "exact power of two", size: [3]float32{32, 1, 1}, leaf: 1, want: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveMaxDepth(tt.size, tt.leaf); got != tt.want {
				t.Errorf("DeriveMaxDepth(%v, %v) = %d, want %d", tt.size, tt.leaf, got, tt.want)
			}
		})
	}
}

func TestFindPathOutsideBoundsIsEmpty(t *testing.T) {
	// Bounds only: an endpoint whose extents box misses the navigation
	// bounds returns before the engine query is ever consulted.
	mesh := &NavMesh{bounds: geometry.AABB{
		Min: math32.Vector3{X: -12, Y: -1, Z: -12},
		Max: math32.Vector3{X: 12, Y: 5, Z: 12},
	}}

	halfExtents := [3]float32{2, 4, 2}

	tests := []struct {
		name       string
		start, end [3]float32
	}{
		{name: "end far outside", start: [3]float32{0, 0, 0}, end: [3]float32{500, 0, 500}},
		{name: "start far outside", start: [3]float32{-500, 0, 0}, end: [3]float32{0, 0, 0}},
		{name: "outside on y", start: [3]float32{0, 0, 0}, end: [3]float32{0, 100, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := mesh.FindPath(tt.start, tt.end, halfExtents)
			if err != nil {
				t.Fatalf("FindPath returned error: %v", err)
			}
			if len(path) != 0 {
				t.Errorf("path has %d points, want empty", len(path))
			}
		})
	}
}

func TestProjectPath(t *testing.T) {
	native := []math32.Vector3{
		{X: 1, Y: 2, Z: 3},
		{X: 4, Y: 5, Z: 6},
	}

	path := projectPath(native)

	if len(path) != 2 {
		t.Fatalf("path has %d points, want 2", len(path))
	}
	if path[0] != [3]float32{1, 2, 3} || path[1] != [3]float32{4, 5, 6} {
		t.Errorf("path = %v", path)
	}

	if got := projectPath(nil); len(got) != 0 {
		t.Errorf("nil native path projected to %d points, want 0", len(got))
	}
}

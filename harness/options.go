package harness

import "math"

// Options is the canonical generation parameter set, the single source of
// truth both backends' native configurations are derived from. World-unit
// agent fields carry pre-derived voxel-unit counterparts so that each
// backend receives values computed exactly once from the same source.
type Options struct {
	CellSize   float32 // xz voxel size, world units
	CellHeight float32 // y voxel size, world units

	AgentRadius float32 // world units
	AgentClimb  float32
	AgentHeight float32

	// Voxel-unit counterparts, each ceil(world / CellHeight). Filled by
	// DeriveVoxelFields and never recomputed per backend.
	WalkableRadius int
	WalkableClimb  int
	WalkableHeight int

	AgentMaxSlopeDeg float32

	MinRegionSize   float32 // linear region size; backends square if needed
	MergeRegionSize float32

	MaxEdgeLen             float32 // world units
	MaxSimplificationError float32 // voxel units
	DetailSampleDist       float32 // multiplier of CellSize
	DetailSampleMaxError   float32 // multiplier of CellHeight

	MaxVertsPerPoly int
}

// DefaultOptions returns the canonical defaults with voxel fields derived.
func DefaultOptions() Options {
	return DeriveVoxelFields(Options{
		CellSize:               0.3,
		CellHeight:             0.2,
		AgentRadius:            0.6,
		AgentClimb:             0.9,
		AgentHeight:            2.0,
		AgentMaxSlopeDeg:       45,
		MinRegionSize:          8,
		MergeRegionSize:        20,
		MaxEdgeLen:             12,
		MaxSimplificationError: 1.3,
		DetailSampleDist:       6,
		DetailSampleMaxError:   1,
		MaxVertsPerPoly:        6,
	})
}

// DeriveVoxelFields fills the voxel-unit agent fields from their world
// counterparts as ceil(world / CellHeight). Call once after assembling
// world-unit options; both backends consume the stored results.
func DeriveVoxelFields(o Options) Options {
	o.WalkableRadius = ceilDiv(o.AgentRadius, o.CellHeight)
	o.WalkableClimb = ceilDiv(o.AgentClimb, o.CellHeight)
	o.WalkableHeight = ceilDiv(o.AgentHeight, o.CellHeight)

	return o
}

func ceilDiv(world, cell float32) int {
	// Divide in float32 so e.g. 0.6/0.2 lands on exactly 3 before the ceil.
	return int(math.Ceil(float64(world / cell)))
}

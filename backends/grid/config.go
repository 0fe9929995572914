package grid

import "github.com/weiihann/navbench/harness"

// Config is the grid engine's native parameter encoding. Agent dimensions,
// edge length, and region areas are in voxel units; detail thresholds are
// in world units after cell scaling.
type Config struct {
	CellSize   float32
	CellHeight float32

	WalkableSlopeDeg float32
	WalkableHeight   int // voxels
	WalkableClimb    int // voxels
	WalkableRadius   int // voxels

	MaxEdgeLen             int // voxels
	MaxSimplificationError float32

	MinRegionArea   int // cells
	MergeRegionArea int // cells

	MaxVertsPerPoly int

	DetailSampleDist     float32 // world units, 0 disables resampling
	DetailSampleMaxError float32 // world units
}

// AdaptOptions maps the canonical option set onto the grid engine's native
// units. This is where the engine's algebraic transforms live, applied
// exactly once: region sizes become areas (size squared), edge length is
// divided into cells, and the detail sampling thresholds are scaled by the
// cell dimensions, with sampling distances under 0.9 disabling resampling.
func AdaptOptions(o harness.Options) Config {
	cfg := Config{
		CellSize:               o.CellSize,
		CellHeight:             o.CellHeight,
		WalkableSlopeDeg:       o.AgentMaxSlopeDeg,
		WalkableHeight:         o.WalkableHeight,
		WalkableClimb:          o.WalkableClimb,
		WalkableRadius:         o.WalkableRadius,
		MaxEdgeLen:             int(o.MaxEdgeLen / o.CellSize),
		MaxSimplificationError: o.MaxSimplificationError,
		MinRegionArea:          int(sqr(o.MinRegionSize)),
		MergeRegionArea:        int(sqr(o.MergeRegionSize)),
		MaxVertsPerPoly:        o.MaxVertsPerPoly,
		DetailSampleMaxError:   o.CellHeight * o.DetailSampleMaxError,
	}

	if o.DetailSampleDist >= 0.9 {
		cfg.DetailSampleDist = o.CellSize * o.DetailSampleDist
	}

	return cfg
}

func sqr(v float32) float32 { return v * v }

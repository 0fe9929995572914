package grid

import "math"

// span is one solid vertical interval in a heightfield column, in
// CellHeight units. walkable marks spans whose top surface passed the
// slope test.
type span struct {
	smin, smax int32
	walkable   bool
}

// heightfield is a 2.5D column grid the triangle soup is rasterized into.
// Column (x, z) covers the world rectangle
// [bmin+x*cs, bmin+(x+1)*cs) x [bmin+z*cs, bmin+(z+1)*cs).
type heightfield struct {
	width, depth int
	bmin         [3]float32
	cs, ch       float32
	columns      [][]span // len width*depth, spans sorted by smin
}

func newHeightfield(bmin, bmax [3]float32, cs, ch float32) *heightfield {
	width := int(math.Ceil(float64((bmax[0]-bmin[0])/cs))) + 1
	depth := int(math.Ceil(float64((bmax[2]-bmin[2])/cs))) + 1

	return &heightfield{
		width:   width,
		depth:   depth,
		bmin:    bmin,
		cs:      cs,
		ch:      ch,
		columns: make([][]span, width*depth),
	}
}

// addSpan inserts [smin, smax) into column (x, z), merging any overlapping
// or touching spans. When merging, the walkable flag of the span whose top
// is flush with the merged top wins.
func (hf *heightfield) addSpan(x, z int, smin, smax int32, walkable bool) {
	if x < 0 || z < 0 || x >= hf.width || z >= hf.depth {
		return
	}

	col := hf.columns[x+z*hf.width]
	merged := span{smin: smin, smax: smax, walkable: walkable}
	out := col[:0]

	for _, s := range col {
		if s.smax < merged.smin || s.smin > merged.smax {
			out = append(out, s)

			continue
		}

		if s.smin < merged.smin {
			merged.smin = s.smin
		}
		if s.smax > merged.smax {
			merged.smax = s.smax
			merged.walkable = s.walkable
		} else if s.smax == merged.smax {
			merged.walkable = merged.walkable || s.walkable
		}
	}

	// Keep the column sorted by smin.
	pos := len(out)
	for i, s := range out {
		if s.smin > merged.smin {
			pos = i

			break
		}
	}

	out = append(out, span{})
	copy(out[pos+1:], out[pos:])
	out[pos] = merged

	hf.columns[x+z*hf.width] = out
}

// rasterizeTriangle clips the triangle against every column it overlaps
// and records the clipped fragment's vertical extent as a solid span.
func (hf *heightfield) rasterizeTriangle(v0, v1, v2 [3]float32, walkable bool) {
	minX := min3(v0[0], v1[0], v2[0])
	maxX := max3(v0[0], v1[0], v2[0])
	minZ := min3(v0[2], v1[2], v2[2])
	maxZ := max3(v0[2], v1[2], v2[2])

	x0 := clampInt(int((minX-hf.bmin[0])/hf.cs), 0, hf.width-1)
	x1 := clampInt(int((maxX-hf.bmin[0])/hf.cs), 0, hf.width-1)
	z0 := clampInt(int((minZ-hf.bmin[2])/hf.cs), 0, hf.depth-1)
	z1 := clampInt(int((maxZ-hf.bmin[2])/hf.cs), 0, hf.depth-1)

	poly := make([][3]float32, 0, 9)
	scratch := make([][3]float32, 0, 9)

	for z := z0; z <= z1; z++ {
		cz0 := hf.bmin[2] + float32(z)*hf.cs
		cz1 := cz0 + hf.cs

		for x := x0; x <= x1; x++ {
			cx0 := hf.bmin[0] + float32(x)*hf.cs
			cx1 := cx0 + hf.cs

			poly = append(poly[:0], v0, v1, v2)
			poly = clipPoly(poly, scratch, 0, cx0, false)
			poly = clipPoly(poly, scratch, 0, cx1, true)
			poly = clipPoly(poly, scratch, 2, cz0, false)
			poly = clipPoly(poly, scratch, 2, cz1, true)

			if len(poly) < 3 {
				continue
			}

			ymin, ymax := poly[0][1], poly[0][1]
			for _, p := range poly[1:] {
				if p[1] < ymin {
					ymin = p[1]
				}
				if p[1] > ymax {
					ymax = p[1]
				}
			}

			smin := int32(math.Floor(float64((ymin - hf.bmin[1]) / hf.ch)))
			smax := int32(math.Ceil(float64((ymax - hf.bmin[1]) / hf.ch)))

			if smin < 0 {
				smin = 0
			}
			if smax <= smin {
				smax = smin + 1
			}

			hf.addSpan(x, z, smin, smax, walkable)
		}
	}
}

// clipPoly clips a convex polygon against the axis-aligned plane
// axis = bound, keeping coordinates >= bound (upper=false) or <= bound
// (upper=true).
func clipPoly(poly, scratch [][3]float32, axis int, bound float32, upper bool) [][3]float32 {
	if len(poly) == 0 {
		return poly
	}

	out := scratch[:0]

	inside := func(p [3]float32) bool {
		if upper {
			return p[axis] <= bound
		}

		return p[axis] >= bound
	}

	prev := poly[len(poly)-1]
	prevIn := inside(prev)

	for _, cur := range poly {
		curIn := inside(cur)

		if curIn != prevIn {
			t := (bound - prev[axis]) / (cur[axis] - prev[axis])
			out = append(out, [3]float32{
				prev[0] + (cur[0]-prev[0])*t,
				prev[1] + (cur[1]-prev[1])*t,
				prev[2] + (cur[2]-prev[2])*t,
			})
		}

		if curIn {
			out = append(out, cur)
		}

		prev, prevIn = cur, curIn
	}

	return append(poly[:0], out...)
}

// filterLowHangingWalkable lets an agent step onto a non-walkable span
// whose top is within climb of a walkable span directly below it, matching
// how stairs and curbs rasterize.
func (hf *heightfield) filterLowHangingWalkable(climb int32) {
	for i, col := range hf.columns {
		for j := 1; j < len(col); j++ {
			if col[j-1].walkable && !col[j].walkable && col[j].smax-col[j-1].smax <= climb {
				col[j].walkable = true
			}
		}
		hf.columns[i] = col
	}
}

// filterLowHeightSpans clears the walkable flag of spans without
// walkableHeight of clearance below the next span up.
func (hf *heightfield) filterLowHeightSpans(walkableHeight int32) {
	const maxClearance = int32(math.MaxInt32)

	for _, col := range hf.columns {
		for j := range col {
			if !col[j].walkable {
				continue
			}

			ceiling := maxClearance
			if j+1 < len(col) {
				ceiling = col[j+1].smin
			}

			if ceiling != maxClearance && ceiling-col[j].smax < walkableHeight {
				col[j].walkable = false
			}
		}
	}
}

// filterLedgeSpans clears spans at the edge of a drop taller than climb:
// a span is a ledge if some horizontal neighbor column has no floor within
// climb of its top.
func (hf *heightfield) filterLedgeSpans(walkableHeight, climb int32) {
	dirs := [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

	ledge := make([]bool, 0, 8)

	for z := 0; z < hf.depth; z++ {
		for x := 0; x < hf.width; x++ {
			col := hf.columns[x+z*hf.width]
			ledge = ledge[:0]

			for _, s := range col {
				isLedge := false

				if s.walkable {
					for _, d := range dirs {
						nx, nz := x+d[0], z+d[1]
						if nx < 0 || nz < 0 || nx >= hf.width || nz >= hf.depth {
							isLedge = true

							break
						}

						if !hf.hasFloorNear(nx, nz, s.smax, climb) {
							isLedge = true

							break
						}
					}
				}

				ledge = append(ledge, isLedge)
			}

			for j := range col {
				if ledge[j] {
					col[j].walkable = false
				}
			}
		}
	}
}

// hasFloorNear reports whether column (x, z) has a span top within climb
// of the given height.
func (hf *heightfield) hasFloorNear(x, z int, top, climb int32) bool {
	for _, s := range hf.columns[x+z*hf.width] {
		if abs32(s.smax-top) <= climb {
			return true
		}
	}

	return false
}

func min3(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}

	return a
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}

	return v
}

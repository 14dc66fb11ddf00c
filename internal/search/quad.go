package search

import (
	"math"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen"
)

// A quad candidate is the 2x2 block of structure regions meeting at a
// region corner. All four member positions come from the 48-bit layer.
const regionBlocks = 512

// afkRadius is the radius in blocks within which structure spawners are
// simultaneously loaded.
const afkRadius = 128

// QuadAt resolves the four candidate positions of the quad anchored at
// region (rx, rz), i.e. regions (rx,rz) through (rx+1,rz+1).
func QuadAt(seed48 int64, kind int, rx, rz int32) ([4]gen.Pos, bool) {
	var ps [4]gen.Pos
	i := 0
	for dz := int32(0); dz <= 1; dz++ {
		for dx := int32(0); dx <= 1; dx++ {
			p, ok := gen.CheckStructure(seed48, kind, rx+dx, rz+dz)
			if !ok {
				return ps, false
			}
			ps[i] = p
			i++
		}
	}
	return ps, true
}

// afkCenter is the midpoint of the quad's bounding box, the natural AFK
// candidate for four spawners.
func afkCenter(ps [4]gen.Pos) gen.Pos {
	minX, maxX := ps[0].X, ps[0].X
	minZ, maxZ := ps[0].Z, ps[0].Z
	for _, p := range ps[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}
	return gen.Pos{X: (minX + maxX) / 2, Z: (minZ + maxZ) / 2}
}

func maxDistTo(c gen.Pos, ps [4]gen.Pos) float64 {
	var worst float64
	for _, p := range ps {
		dx := float64(p.X - c.X)
		dz := float64(p.Z - c.Z)
		if d := math.Sqrt(dx*dx + dz*dz); d > worst {
			worst = d
		}
	}
	return worst
}

// QuadHutOK applies the sub-tag's geometric predicate to a hut quad.
//
// Every sub-tag measures the hut positions against the AFK center: "barely"
// only needs them inside the sphere, "normal" reserves 6 blocks of headroom
// for a fall damage chute, "classic" keeps normal's radius and also confines
// each hut to the 2x2 chunks at the shared region corner, and "ideal"
// tightens the radius by 12 blocks without the corner confinement, so an
// ideal quad is always a normal one but not necessarily a classic one.
func QuadHutOK(kind filter.Kind, ps [4]gen.Pos, rx, rz int32) (gen.Pos, bool) {
	c := afkCenter(ps)
	r := maxDistTo(c, ps)

	switch kind {
	case filter.FQhBarely:
		return c, r <= afkRadius
	case filter.FQhNormal:
		return c, r <= afkRadius-6
	case filter.FQhClassic:
		// Shared corner of the four regions.
		cornerX := (rx + 1) * regionBlocks
		cornerZ := (rz + 1) * regionBlocks
		for _, p := range ps {
			if abs32(p.X-cornerX) > 32 || abs32(p.Z-cornerZ) > 32 {
				return c, false
			}
		}
		return c, r <= afkRadius-6
	case filter.FQhIdeal:
		return c, r <= afkRadius-12
	}
	return c, false
}

// monumentSpan is the footprint edge of an ocean monument in blocks.
const monumentSpan = 58

// QuadMonumentOK checks that at least minFrac of the combined monument area
// lies within the AFK sphere around the quad's center. The overlap is
// integrated on a 2-block sample grid.
func QuadMonumentOK(ps [4]gen.Pos, minFrac float64) (gen.Pos, bool) {
	c := afkCenter(ps)

	var inside, total int
	for _, p := range ps {
		for dz := int32(0); dz < monumentSpan; dz += 2 {
			for dx := int32(0); dx < monumentSpan; dx += 2 {
				total++
				x := float64(p.X + dx - monumentSpan/2)
				z := float64(p.Z + dz - monumentSpan/2)
				ddx := x - float64(c.X)
				ddz := z - float64(c.Z)
				if ddx*ddx+ddz*ddz <= afkRadius*afkRadius {
					inside++
				}
			}
		}
	}
	return c, float64(inside) >= minFrac*float64(total)
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

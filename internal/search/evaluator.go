package search

import (
	"sync/atomic"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen"
)

// Evaluator tests seeds against a fixed condition list. It owns a
// LayerStack and is therefore bound to one worker; the condition slice is
// shared read-only across workers.
type Evaluator struct {
	MC    int
	Conds []filter.Condition
	LS    *gen.LayerStack
}

func NewEvaluator(mc int, conds []filter.Condition) *Evaluator {
	return &Evaluator{MC: mc, Conds: conds, LS: gen.NewLayerStack(mc)}
}

// TestSeed evaluates every condition against the seed. Cat48 conditions run
// first so a 48-bit mismatch rejects the seed before any full-seed
// generation happens. Failures of any kind, including cancellation,
// collapse to false.
func (e *Evaluator) TestSeed(seed int64, cancel *atomic.Bool) bool {
	var st State
	if !e.Test48(seed, &st, cancel) {
		return false
	}
	return e.TestFull(seed, &st, cancel)
}

// Test48 evaluates only the Cat48 conditions. Only the low 48 bits of the
// seed are consulted, so a pass holds for the seed's whole family block.
// Matched positions are recorded into st for later conditions.
func (e *Evaluator) Test48(seed int64, st *State, cancel *atomic.Bool) bool {
	e.LS.ApplySeed(seed)
	for i := range e.Conds {
		c := &e.Conds[i]
		if filter.Infos[c.Type].Cat != filter.Cat48 {
			continue
		}
		if cancel != nil && cancel.Load() {
			return false
		}
		if !e.testCond(seed, c, st, cancel) {
			return false
		}
	}
	return true
}

// TestFull evaluates the CatFull conditions, consuming positions recorded
// by an earlier Test48 pass over the same condition list.
func (e *Evaluator) TestFull(seed int64, st *State, cancel *atomic.Bool) bool {
	e.LS.ApplySeed(seed)
	for i := range e.Conds {
		c := &e.Conds[i]
		if filter.Infos[c.Type].Cat == filter.Cat48 {
			continue
		}
		if cancel != nil && cancel.Load() {
			return false
		}
		if !e.testCond(seed, c, st, cancel) {
			return false
		}
	}
	return true
}

// testCond evaluates one condition and, on success, records its effective
// center position under the condition's save id.
func (e *Evaluator) testCond(seed int64, c *filter.Condition, st *State, cancel *atomic.Bool) bool {
	x1, z1, x2, z2 := c.BlockArea()
	if c.Relative != 0 {
		rel, ok := st.Get(c.Relative)
		if !ok {
			// Broken references are rejected at config time; an unmatched
			// source here means the evaluation already failed.
			return false
		}
		x1 += rel.X
		x2 += rel.X
		z1 += rel.Z
		z2 += rel.Z
	}

	pos, ok := e.testCondArea(seed, c, x1, z1, x2, z2, cancel)
	if !ok {
		return false
	}
	st.Set(c.Save, pos)
	return true
}

func (e *Evaluator) testCondArea(seed int64, c *filter.Condition, x1, z1, x2, z2 int32, cancel *atomic.Bool) (gen.Pos, bool) {
	seed48 := seed & ((int64(1) << 48) - 1)
	info := &filter.Infos[c.Type]

	switch {
	case c.Type >= filter.FQhIdeal && c.Type <= filter.FQhBarely:
		return e.testQuadHut(seed48, c.Type, x1, z1, x2, z2)

	case c.Type == filter.FQm95 || c.Type == filter.FQm90:
		frac := 0.90
		if c.Type == filter.FQm95 {
			frac = 0.95
		}
		return e.testQuadMonument(seed48, frac, x1, z1, x2, z2)

	case filter.IsBiomeFilter(c.Type):
		ok, err := e.LS.BiomeFilterCheck(c, x1, z1, x2, z2, cancel)
		if err != nil || !ok {
			return gen.Pos{}, false
		}
		return gen.Pos{X: (x1 + x2) / 2, Z: (z1 + z2) / 2}, true

	case c.Type == filter.FTemps:
		return e.testTemps(seed, c, cancel)

	case c.Type == filter.FSlime:
		return testSlime(seed, c.Count, x1, z1, x2, z2)

	case c.Type == filter.FSpawn:
		p := e.LS.Spawn()
		if p.X < x1 || p.X > x2 || p.Z < z1 || p.Z > z2 {
			return gen.Pos{}, false
		}
		return p, true

	case c.Type == filter.FStronghold:
		return e.testStronghold(c.Count, x1, z1, x2, z2, cancel)

	case info.StructType != filter.StructNone:
		return e.testStructures(seed48, c, info, x1, z1, x2, z2, cancel)
	}
	return gen.Pos{}, false
}

// testQuadHut scans the quad anchors whose AFK sphere can intersect the
// area and applies the sub-tag predicate.
func (e *Evaluator) testQuadHut(seed48 int64, kind filter.Kind, x1, z1, x2, z2 int32) (gen.Pos, bool) {
	rx1 := floorDiv(x1, regionBlocks) - 1
	rz1 := floorDiv(z1, regionBlocks) - 1
	rx2 := floorDiv(x2, regionBlocks)
	rz2 := floorDiv(z2, regionBlocks)

	for rz := rz1; rz <= rz2; rz++ {
		for rx := rx1; rx <= rx2; rx++ {
			ps, ok := QuadAt(seed48, filter.SwampHut, rx, rz)
			if !ok {
				continue
			}
			c, ok := QuadHutOK(kind, ps, rx, rz)
			if !ok || c.X < x1 || c.X > x2 || c.Z < z1 || c.Z > z2 {
				continue
			}
			return c, true
		}
	}
	return gen.Pos{}, false
}

func (e *Evaluator) testQuadMonument(seed48 int64, frac float64, x1, z1, x2, z2 int32) (gen.Pos, bool) {
	rx1 := floorDiv(x1, regionBlocks) - 1
	rz1 := floorDiv(z1, regionBlocks) - 1
	rx2 := floorDiv(x2, regionBlocks)
	rz2 := floorDiv(z2, regionBlocks)

	for rz := rz1; rz <= rz2; rz++ {
		for rx := rx1; rx <= rx2; rx++ {
			ps, ok := QuadAt(seed48, filter.Monument, rx, rz)
			if !ok {
				continue
			}
			c, ok := QuadMonumentOK(ps, frac)
			if !ok || c.X < x1 || c.X > x2 || c.Z < z1 || c.Z > z2 {
				continue
			}
			return c, true
		}
	}
	return gen.Pos{}, false
}

// testStructures counts structure instances inside the area, rejecting
// early once the remaining regions cannot reach the required count. Regions
// are scanned row by row and the scan stops at the match that reaches the
// count; the recorded position is the lexicographically smallest (x, z) of
// the matches counted up to then.
func (e *Evaluator) testStructures(seed48 int64, c *filter.Condition, info *filter.Info, x1, z1, x2, z2 int32, cancel *atomic.Bool) (gen.Pos, bool) {
	sc, ok := gen.StructConfig(info.StructType)
	if !ok {
		return gen.Pos{}, false
	}
	need := c.Count
	if need < 1 {
		need = 1
	}
	full := info.Cat == filter.CatFull

	regBlocks := sc.RegionSize * 16
	rx1 := floorDiv(x1, regBlocks)
	rz1 := floorDiv(z1, regBlocks)
	rx2 := floorDiv(x2, regBlocks)
	rz2 := floorDiv(z2, regBlocks)

	remaining := int64(rx2-rx1+1) * int64(rz2-rz1+1)
	var found int32
	var best gen.Pos
	haveBest := false

	for rz := rz1; rz <= rz2; rz++ {
		if cancel != nil && cancel.Load() {
			return gen.Pos{}, false
		}
		for rx := rx1; rx <= rx2; rx++ {
			remaining--
			if int64(need-found) > remaining+1 {
				return gen.Pos{}, false
			}
			p, ok := gen.CheckStructure(seed48, info.StructType, rx, rz)
			if !ok || p.X < x1 || p.X > x2 || p.Z < z1 || p.Z > z2 {
				continue
			}
			if full && !e.LS.ViableStructurePos(info.StructType, p) {
				continue
			}
			found++
			if !haveBest || p.X < best.X || (p.X == best.X && p.Z < best.Z) {
				best = p
				haveBest = true
			}
			if found >= need {
				return best, true
			}
		}
	}
	return gen.Pos{}, false
}

func (e *Evaluator) testTemps(seed int64, c *filter.Condition, cancel *atomic.Bool) (gen.Pos, bool) {
	// Temperature categories sample the 1:1024 grid directly in condition
	// units; relative translation does not apply at this scale.
	var counts [gen.TempCount]int32
	for cz := c.Z1; cz <= c.Z2; cz++ {
		if cancel != nil && cancel.Load() {
			return gen.Pos{}, false
		}
		for cx := c.X1; cx <= c.X2; cx++ {
			counts[gen.TempCategoryAt(seed, cx, cz)]++
		}
	}
	for i, req := range c.Temps {
		if req > 0 && counts[i] < req {
			return gen.Pos{}, false
		}
	}
	x1, z1, x2, z2 := c.BlockArea()
	return gen.Pos{X: (x1 + x2) / 2, Z: (z1 + z2) / 2}, true
}

func testSlime(seed int64, count int32, x1, z1, x2, z2 int32) (gen.Pos, bool) {
	need := count
	if need < 1 {
		need = 1
	}
	cx1 := floorDiv(x1, 16)
	cz1 := floorDiv(z1, 16)
	cx2 := floorDiv(x2, 16)
	cz2 := floorDiv(z2, 16)

	var found int32
	var first gen.Pos
	haveFirst := false
	for cz := cz1; cz <= cz2; cz++ {
		for cx := cx1; cx <= cx2; cx++ {
			if !gen.IsSlimeChunk(seed, cx, cz) {
				continue
			}
			found++
			if !haveFirst {
				first = gen.Pos{X: cx*16 + 8, Z: cz*16 + 8}
				haveFirst = true
			}
			if found >= need {
				return first, true
			}
		}
	}
	return gen.Pos{}, false
}

func (e *Evaluator) testStronghold(count int32, x1, z1, x2, z2 int32, cancel *atomic.Bool) (gen.Pos, bool) {
	need := count
	if need < 1 {
		need = 1
	}
	var found int32
	var first gen.Pos
	haveFirst := false
	it := e.LS.Strongholds()
	for {
		if cancel != nil && cancel.Load() {
			return gen.Pos{}, false
		}
		p, ok := it.Next()
		if !ok {
			return gen.Pos{}, false
		}
		if p.X < x1 || p.X > x2 || p.Z < z1 || p.Z > z2 {
			continue
		}
		found++
		if !haveFirst {
			first = p
			haveFirst = true
		}
		if found >= need {
			return first, true
		}
	}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

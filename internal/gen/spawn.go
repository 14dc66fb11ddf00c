package gen

import "math"

// Spawn estimates the world spawn: the first grass-capable biome on an
// outward spiral from the origin, sampled at the 1:4 layer.
func (ls *LayerStack) Spawn() Pos {
	for ring := int32(0); ring <= 64; ring++ {
		for dz := -ring; dz <= ring; dz++ {
			for dx := -ring; dx <= ring; dx++ {
				if dx > -ring && dx < ring && dz > -ring && dz < ring {
					continue
				}
				if grassCapable(river4(ls.seed, dx, dz)) {
					return Pos{X: dx*4 + 2, Z: dz*4 + 2}
				}
			}
		}
	}
	return Pos{X: 8, Z: 8}
}

// Stronghold ring layout: counts per ring, 128 total.
var strongholdRings = [8]int32{3, 6, 10, 15, 21, 28, 36, 9}

// StrongholdIter lazily produces stronghold positions, nearest ring first.
type StrongholdIter struct {
	rnd  javaRandom
	ring int
	idx  int32
	base float64 // starting angle of the current ring
}

// Strongholds returns an iterator over the seed's strongholds (≤128).
func (ls *LayerStack) Strongholds() *StrongholdIter {
	it := &StrongholdIter{rnd: newJavaRandom(ls.seed)}
	it.base = it.rnd.nextDouble() * 2 * math.Pi
	return it
}

// Next returns the next stronghold position. ok=false after the last one.
func (it *StrongholdIter) Next() (Pos, bool) {
	for it.ring < len(strongholdRings) && it.idx >= strongholdRings[it.ring] {
		it.ring++
		it.idx = 0
		it.base = it.rnd.nextDouble() * 2 * math.Pi
	}
	if it.ring >= len(strongholdRings) {
		return Pos{}, false
	}

	n := strongholdRings[it.ring]
	angle := it.base + 2*math.Pi*float64(it.idx)/float64(n)
	distChunks := float64(4+6*it.ring)*32 + (it.rnd.nextDouble()-0.5)*32*2.5

	p := Pos{
		X: int32(math.Round(math.Cos(angle)*distChunks))*16 + 8,
		Z: int32(math.Round(math.Sin(angle)*distChunks))*16 + 8,
	}
	it.idx++
	return p, true
}

package gen

import (
	"errors"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"seedscout.gg/internal/filter"
)

// ErrCanceled is returned by area generation when the run's cancel flag is
// set mid-generation.
var ErrCanceled = errors.New("generation canceled")

// Pos is a block position.
type Pos struct {
	X, Z int32
}

// BiomeMap holds the biome ids of a rectangular area at one layer scale.
// Cell (i,j) covers the blocks of layer cell (X+i, Z+j).
type BiomeMap struct {
	X, Z, W, H int32
	ID         []int32
}

func (m *BiomeMap) At(i, j int32) int32 { return m.ID[j*m.W+i] }

// Layer salts keep the value-noise fields of the stacked layers independent.
const (
	saltOceanTemp = 0x2ec5b05e
	saltTemp      = 0x1b39c3a7
	saltRain      = 0x66a5c2d4
	saltOceanMask = 0x0d5e9b11
	saltMushroom  = 0x7c52f14d
	saltRare      = 0x4af1d2c9
	saltRiver     = 0x2f8e0a37
	saltVoronoi   = 0x63215e88
	saltSpecial   = 0x19fc6b02
)

const tileCacheSize = 256

type tileKey struct {
	seed       int64
	layer      int
	x, z, w, h int32
}

// LayerStack is the per-worker handle onto the world generator. ApplySeed
// rebinds it to a new seed without reallocating the tile cache, so a worker
// reuses one stack for its whole item.
type LayerStack struct {
	MC     int
	seed   int64
	seed48 int64

	tiles *lru.Cache[tileKey, []int32]
}

func NewLayerStack(mc int) *LayerStack {
	tiles, _ := lru.New[tileKey, []int32](tileCacheSize)
	return &LayerStack{MC: mc, tiles: tiles}
}

func (ls *LayerStack) ApplySeed(seed int64) {
	ls.seed = seed
	ls.seed48 = seed & mask48
}

func (ls *LayerStack) Seed() int64 { return ls.seed }

// GenArea generates the biome map for w*h cells of the given layer starting
// at cell (x,z). The cancel flag is polled per row.
func (ls *LayerStack) GenArea(layer int, x, z, w, h int32, cancel *atomic.Bool) (BiomeMap, error) {
	m := BiomeMap{X: x, Z: z, W: w, H: h}

	// The ocean temperature layer depends only on the 48-bit seed, so its
	// tiles stay valid across every seed of a family block.
	key := tileKey{seed: ls.seed, layer: layer, x: x, z: z, w: w, h: h}
	if layer == filter.LayerOceanTemp256 {
		key.seed = ls.seed48
	}
	if ids, ok := ls.tiles.Get(key); ok {
		m.ID = ids
		return m, nil
	}

	ids := make([]int32, w*h)
	for j := int32(0); j < h; j++ {
		if cancel != nil && cancel.Load() {
			return m, ErrCanceled
		}
		for i := int32(0); i < w; i++ {
			ids[j*w+i] = ls.biomeAt(layer, x+i, z+j)
		}
	}
	m.ID = ids
	ls.tiles.Add(key, ids)
	return m, nil
}

func (ls *LayerStack) biomeAt(layer int, x, z int32) int32 {
	switch layer {
	case filter.LayerOceanTemp256:
		return oceanTemp256(ls.seed48, x, z)
	case filter.LayerBiome256:
		return biome256(ls.seed, x, z)
	case filter.LayerRare64:
		return rare64(ls.seed, x, z)
	case filter.LayerShore16:
		return shore16(ls.seed, x, z)
	case filter.LayerRiverMix4:
		return river4(ls.seed, x, z)
	default:
		return voronoi1(ls.seed, x, z)
	}
}

// oceanTemp256 is the only layer sourced purely from the low 48 bits.
func oceanTemp256(seed48 int64, x, z int32) int32 {
	t := fractal2(seed48+saltOceanTemp, x, z, 8)
	switch {
	case t < 0.15:
		return BiomeFrozenOcean
	case t < 0.40:
		return BiomeColdOcean
	case t < 0.60:
		return BiomeOcean
	case t < 0.82:
		return BiomeLukewarmOcean
	default:
		return BiomeWarmOcean
	}
}

// biome256 is the base biome layer at scale 1:256.
func biome256(seed int64, x, z int32) int32 {
	ocean := fractal2(seed+saltOceanMask, x, z, 12)
	if ocean < 0.34 {
		if ocean < 0.20 {
			// Mushroom islands surface very rarely in deep ocean.
			if hash2(seed+saltMushroom, x>>2, z>>2)%512 == 0 {
				return BiomeMushroomFields
			}
			return BiomeDeepOcean
		}
		return oceanTemp256(seed&mask48, x, z)
	}

	temp := fractal2(seed+saltTemp, x, z, 16)
	rain := fractal2(seed+saltRain, x, z, 16)
	return selectLand(temp, rain, hash2(seed+saltSpecial, x, z))
}

// selectLand maps temperature/rainfall to a land biome.
//
//	Temp\Rain    | dry            | medium       | wet
//	freezing     | snowy tundra   | snowy tundra | snowy taiga
//	cold         | mountains      | taiga        | taiga
//	mild         | plains         | forest       | swamp / dark forest
//	warm         | savanna        | plains       | jungle
//	hot          | desert         | badlands     | jungle
func selectLand(temp, rain float64, h uint64) int32 {
	switch {
	case temp < 0.22:
		if rain > 0.62 {
			return BiomeSnowyTaiga
		}
		return BiomeSnowyTundra
	case temp < 0.40:
		if rain < 0.30 {
			return BiomeMountains
		}
		return BiomeTaiga
	case temp < 0.62:
		switch {
		case rain < 0.32:
			return BiomePlains
		case rain < 0.58:
			if h%5 == 0 {
				return BiomeBirchForest
			}
			return BiomeForest
		case rain < 0.74:
			return BiomeDarkForest
		default:
			return BiomeSwamp
		}
	case temp < 0.80:
		switch {
		case rain < 0.35:
			return BiomeSavanna
		case rain < 0.60:
			return BiomePlains
		default:
			return BiomeJungle
		}
	default:
		switch {
		case rain < 0.40:
			return BiomeDesert
		case rain < 0.55:
			return BiomeBadlands
		default:
			return BiomeJungle
		}
	}
}

// rare64 refines biome256 with rare modified variants at scale 1:64.
func rare64(seed int64, x, z int32) int32 {
	b := biome256(seed, floorDiv32(x, 4), floorDiv32(z, 4))
	if isOcean(b) || b == BiomeMushroomFields {
		return b
	}
	if hash2(seed+saltRare, x, z)%57 == 0 {
		switch b {
		case BiomePlains:
			return BiomeSunflowerPlains
		case BiomeDesert:
			return BiomeDesertLakes
		case BiomeForest, BiomeBirchForest:
			return BiomeFlowerForest
		case BiomeSwamp:
			return BiomeSwampHills
		case BiomeJungle:
			return BiomeBambooJungle
		}
	}
	return b
}

// shore16 inserts shoreline biomes on land/ocean transitions at scale 1:16.
func shore16(seed int64, x, z int32) int32 {
	b := rare64(seed, floorDiv32(x, 4), floorDiv32(z, 4))
	if isOcean(b) {
		return b
	}
	if b == BiomeMushroomFields {
		if oceanNeighbor64(seed, x, z) {
			return BiomeMushroomShore
		}
		return b
	}
	if oceanNeighbor64(seed, x, z) {
		switch {
		case b == BiomeMountains || b == BiomeStoneShore:
			return BiomeStoneShore
		case isSnowy(b):
			return BiomeSnowyBeach
		default:
			return BiomeBeach
		}
	}
	return b
}

func oceanNeighbor64(seed int64, x, z int32) bool {
	cx := floorDiv32(x, 4)
	cz := floorDiv32(z, 4)
	for _, d := range [4][2]int32{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		if isOcean(rare64(seed, cx+d[0], cz+d[1])) {
			return true
		}
	}
	return false
}

// river4 carves rivers into the shore layer at scale 1:4.
func river4(seed int64, x, z int32) int32 {
	b := shore16(seed, floorDiv32(x, 4), floorDiv32(z, 4))
	if isOcean(b) {
		return b
	}
	rv := noise2(seed+saltRiver, x, z, 16)
	if rv > 0.494 && rv < 0.506 {
		if isSnowy(b) {
			return BiomeFrozenRiver
		}
		return BiomeRiver
	}
	return b
}

// voronoi1 jitters the 1:4 layer down to block resolution.
func voronoi1(seed int64, x, z int32) int32 {
	best := int64(1) << 62
	bx, bz := floorDiv32(x, 4), floorDiv32(z, 4)
	px, pz := bx, bz
	for dz := int32(-1); dz <= 1; dz++ {
		for dx := int32(-1); dx <= 1; dx++ {
			cx, cz := bx+dx, bz+dz
			h := hash2(seed+saltVoronoi, cx, cz)
			jx := cx*4 + int32(h&3)
			jz := cz*4 + int32((h>>2)&3)
			ddx := int64(x - jx)
			ddz := int64(z - jz)
			d := ddx*ddx + ddz*ddz
			if d < best {
				best = d
				px, pz = cx, cz
			}
		}
	}
	return river4(seed, px, pz)
}

// TempCategoryAt samples the temperature category of a 1:1024 cell. About
// one in 13 warm, lush or cold cells reads as the "special" variant of its
// category; oceanic and freezing cells are never special.
func TempCategoryAt(seed int64, x, z int32) int {
	b := biome256(seed, x*4+2, z*4+2)
	cat := tempCategory(b)
	if cat == TempWarm || cat == TempLush || cat == TempCold {
		if hash2(seed+saltSpecial, x, z)%13 == 0 {
			switch cat {
			case TempWarm:
				return TempSpecialWarm
			case TempLush:
				return TempSpecialLush
			default:
				return TempSpecialCold
			}
		}
	}
	return cat
}

package gen

import "seedscout.gg/internal/filter"

// StructureConfig describes the region grid of one structure kind.
// Placement is the standard salted region LCG: the low 48 bits of the world
// seed fully determine every candidate position.
type StructureConfig struct {
	Salt       int64
	RegionSize int32 // in chunks
	ChunkRange int32 // placement range within the region, in chunks
	Triangular bool  // averaged rolls, biases toward the region center
}

var structConfigs = map[int]StructureConfig{
	filter.DesertPyramid: {Salt: 14357617, RegionSize: 32, ChunkRange: 24},
	filter.Igloo:         {Salt: 14357618, RegionSize: 32, ChunkRange: 24},
	filter.JunglePyramid: {Salt: 14357619, RegionSize: 32, ChunkRange: 24},
	filter.SwampHut:      {Salt: 14357620, RegionSize: 32, ChunkRange: 24},
	filter.OceanRuin:     {Salt: 14357621, RegionSize: 20, ChunkRange: 12},
	filter.Village:       {Salt: 10387312, RegionSize: 32, ChunkRange: 24},
	filter.Monument:      {Salt: 10387313, RegionSize: 32, ChunkRange: 27, Triangular: true},
	filter.Mansion:       {Salt: 10387319, RegionSize: 80, ChunkRange: 60, Triangular: true},
	filter.Shipwreck:     {Salt: 165745295, RegionSize: 24, ChunkRange: 20},
	filter.Outpost:       {Salt: 165745296, RegionSize: 32, ChunkRange: 24},
	filter.RuinedPortal:  {Salt: 34222645, RegionSize: 40, ChunkRange: 25},
	filter.Treasure:      {Salt: 10387320, RegionSize: 1, ChunkRange: 1},
}

// StructConfig exposes the placement grid of a structure kind.
func StructConfig(kind int) (StructureConfig, bool) {
	sc, ok := structConfigs[kind]
	return sc, ok
}

// CheckStructure returns the candidate position of the given structure kind
// in region (regX, regZ), or ok=false when the region has none. Only the low
// 48 bits of the seed are read.
func CheckStructure(seed48 int64, kind int, regX, regZ int32) (Pos, bool) {
	sc, ok := structConfigs[kind]
	if !ok {
		return Pos{}, false
	}
	seed48 &= mask48

	if kind == filter.Treasure {
		// Per-chunk probability roll rather than a region grid.
		s := seed48 + int64(regX)*341873128712 + int64(regZ)*132897987541 + sc.Salt
		r := newJavaRandom(s)
		if r.nextFloat() >= 0.01 {
			return Pos{}, false
		}
		return Pos{X: regX*16 + 9, Z: regZ*16 + 9}, true
	}

	s := seed48 + int64(regX)*341873128712 + int64(regZ)*132897987541 + sc.Salt
	r := newJavaRandom(s)

	var cx, cz int32
	if sc.Triangular {
		cx = (r.nextInt(sc.ChunkRange) + r.nextInt(sc.ChunkRange)) / 2
		cz = (r.nextInt(sc.ChunkRange) + r.nextInt(sc.ChunkRange)) / 2
	} else {
		cx = r.nextInt(sc.ChunkRange)
		cz = r.nextInt(sc.ChunkRange)
	}

	return Pos{
		X: (regX*sc.RegionSize+cx)*16 + 8,
		Z: (regZ*sc.RegionSize+cz)*16 + 8,
	}, true
}

// StructureVariant rolls the full-seed variant of a structure at a candidate
// position. ok=false means the kind has no variants.
func StructureVariant(seed int64, kind int, p Pos) (int, bool) {
	h := hash2(seed, p.X, p.Z)
	switch kind {
	case filter.Village:
		// Abandoned (zombie) villages.
		if h%50 < 1 {
			return 1, true
		}
		return 0, true
	case filter.RuinedPortal:
		return int(h % 10), true
	case filter.Shipwreck:
		return int(h % 20), true
	default:
		return 0, false
	}
}

// viableBiome reports whether a structure kind may generate in the biome,
// sampled at the 1:4 layer with the full seed.
func viableBiome(kind int, biome int32) bool {
	switch kind {
	case filter.SwampHut:
		return biome == BiomeSwamp || biome == BiomeSwampHills
	case filter.DesertPyramid:
		return biome == BiomeDesert || biome == BiomeDesertLakes
	case filter.JunglePyramid:
		return biome == BiomeJungle || biome == BiomeBambooJungle
	case filter.Igloo:
		return biome == BiomeSnowyTundra || biome == BiomeSnowyTaiga
	case filter.Monument:
		return biome == BiomeDeepOcean
	case filter.Village, filter.Outpost:
		switch biome {
		case BiomePlains, BiomeDesert, BiomeSavanna, BiomeTaiga, BiomeSnowyTundra:
			return true
		}
		return false
	case filter.Mansion:
		return biome == BiomeDarkForest
	case filter.OceanRuin:
		return isOcean(biome)
	case filter.Shipwreck:
		return isOcean(biome) || biome == BiomeBeach || biome == BiomeSnowyBeach
	case filter.Treasure:
		return biome == BiomeBeach || biome == BiomeSnowyBeach
	case filter.RuinedPortal:
		return true
	default:
		return false
	}
}

// ViableStructurePos confirms a 48-bit candidate against the full seed's
// biomes.
func (ls *LayerStack) ViableStructurePos(kind int, p Pos) bool {
	b := river4(ls.seed, floorDiv32(p.X, 4), floorDiv32(p.Z, 4))
	return viableBiome(kind, b)
}

// Package filter holds the static catalogue of seed filters and the
// condition records a search is compiled into.
package filter

// Seed source category. Cat48 filters depend only on the low 48 bits of a
// seed; CatFull filters need the full 64 bits.
const (
	CatNone = iota
	Cat48
	CatFull
)

// Minecraft versions, ordered.
const (
	MC1_0 = iota
	MC1_3
	MC1_4
	MC1_7
	MC1_8
	MC1_9
	MC1_11
	MC1_13
	MC1_14
	MC1_16
	MCCount
)

var mcNames = [MCCount]string{"1.0", "1.3", "1.4", "1.7", "1.8", "1.9", "1.11", "1.13", "1.14", "1.16"}

func MCString(mc int) string {
	if mc < 0 || mc >= MCCount {
		return ""
	}
	return mcNames[mc]
}

func ParseMC(s string) (int, bool) {
	for i, n := range mcNames {
		if n == s {
			return i, true
		}
	}
	return -1, false
}

// Structure kinds understood by the generator adapter.
const (
	StructNone = iota
	DesertPyramid
	JunglePyramid
	SwampHut
	Igloo
	Monument
	Village
	Outpost
	Mansion
	Treasure
	OceanRuin
	Shipwreck
	RuinedPortal
)

// Generator layers referenced by biome filters. Values are scales.
const (
	LayerVoronoi1     = 1
	LayerRiverMix4    = 4
	LayerShore16      = 16
	LayerRare64       = 64
	LayerBiome256     = 256
	LayerOceanTemp256 = 257 // scale 256, but sourced from the 48-bit layer
)

// Kind is an index into the filter table.
type Kind int32

const (
	FSelect Kind = iota
	FQhIdeal
	FQhClassic
	FQhNormal
	FQhBarely
	FQm95
	FQm90
	FBiome
	FBiome4River
	FBiome16Shore
	FBiome64Rare
	FBiome256Biome
	FBiome256OTemp
	FTemps
	FSlime
	FSpawn
	FStronghold
	FDesert
	FJungle
	FHut
	FIgloo
	FMonument
	FVillage
	FOutpost
	FMansion
	FTreasure
	FRuins
	FShipwreck
	FPortal
	KindCount
)

// Info describes one filter kind.
type Info struct {
	Cat        int  // seed source category
	Coord      bool // requires a coordinate entry
	Area       bool // requires an area entry
	Layer      int  // associated generator layer (biome filters)
	StructType int  // structure kind (structure filters)
	Step       int  // blocks per coordinate unit
	Count      int  // default multiplicity
	MCMin      int  // minimum version
	Name       string
	Desc       string
}

// Infos is the compile-time filter table.
var Infos = [KindCount]Info{
	FSelect: {Cat: CatNone, MCMin: MC1_0},

	FQhIdeal: {Cat: Cat48, Coord: true, Area: true, StructType: SwampHut, Step: 512, MCMin: MC1_4,
		Name: "Quad-hut (ideal)",
		Desc: "The lower 48-bits provide potential for four swamp huts in spawning range, in one of the best configurations that exist."},
	FQhClassic: {Cat: Cat48, Coord: true, Area: true, StructType: SwampHut, Step: 512, MCMin: MC1_4,
		Name: "Quad-hut (classic)",
		Desc: "The lower 48-bits provide potential for four swamp huts in spawning range, in one of the \"classic\" configurations, checking the nearest 2x2 chunk corners of each region."},
	FQhNormal: {Cat: Cat48, Coord: true, Area: true, StructType: SwampHut, Step: 512, MCMin: MC1_4,
		Name: "Quad-hut (normal)",
		Desc: "The lower 48-bits provide potential for four swamp huts within 128 blocks of a single AFK location, including a vertical tolerance for a fall damage chute."},
	FQhBarely: {Cat: Cat48, Coord: true, Area: true, StructType: SwampHut, Step: 512, MCMin: MC1_4,
		Name: "Quad-hut (barely)",
		Desc: "The lower 48-bits provide potential for four swamp huts in any configuration with bounding boxes within 128 blocks of a single AFK location."},
	FQm95: {Cat: Cat48, Coord: true, Area: true, StructType: Monument, Step: 512, MCMin: MC1_8,
		Name: "Quad-ocean-monument (>95%)",
		Desc: "The lower 48-bits provide potential for 95% of the area of four ocean monuments to be within 128 blocks of an AFK location."},
	FQm90: {Cat: Cat48, Coord: true, Area: true, StructType: Monument, Step: 512, MCMin: MC1_8,
		Name: "Quad-ocean-monument (>90%)",
		Desc: "The lower 48-bits provide potential for 90% of the area of four ocean monuments to be within 128 blocks of an AFK location."},

	FBiome: {Cat: CatFull, Coord: true, Area: true, Layer: LayerVoronoi1, Step: 1, MCMin: MC1_0,
		Name: "Biome filter 1:1",
		Desc: "Only seeds with the included (+) biomes in the specified area, discarding those with biomes that are explicitly excluded (-)."},
	FBiome4River: {Cat: CatFull, Coord: true, Area: true, Layer: LayerRiverMix4, Step: 4, MCMin: MC1_0,
		Name: "Biome filter 1:4 RIVER",
		Desc: "Biome filter at layer RIVER with scale 1:4."},
	FBiome16Shore: {Cat: CatFull, Coord: true, Area: true, Layer: LayerShore16, Step: 16, MCMin: MC1_0,
		Name: "Biome filter 1:16 SHORE",
		Desc: "Biome filter at layer SHORE with scale 1:16."},
	FBiome64Rare: {Cat: CatFull, Coord: true, Area: true, Layer: LayerRare64, Step: 64, MCMin: MC1_7,
		Name: "Biome filter 1:64 RARE",
		Desc: "Biome filter at layer RARE_BIOME with scale 1:64."},
	FBiome256Biome: {Cat: CatFull, Coord: true, Area: true, Layer: LayerBiome256, Step: 256, MCMin: MC1_0,
		Name: "Biome filter 1:256 BIOME",
		Desc: "Biome filter at layer BIOME with scale 1:256."},
	FBiome256OTemp: {Cat: Cat48, Coord: true, Area: true, Layer: LayerOceanTemp256, Step: 256, MCMin: MC1_13,
		Name: "Biome filter 1:256 O.TEMP",
		Desc: "Biome filter at layer OCEAN TEMPERATURE with scale 1:256. This generation layer depends only on the lower 48-bits of the seed."},

	FTemps: {Cat: CatFull, Coord: true, Area: true, Step: 1024, MCMin: MC1_7,
		Name: "Temperature categories",
		Desc: "Checks that the area has a minimum of all the required temperature categories."},

	FSlime:      {Cat: CatFull, Coord: true, Area: true, Step: 16, Count: 1, MCMin: MC1_0, Name: "Slime chunk"},
	FSpawn:      {Cat: CatFull, Coord: true, Area: true, Step: 1, MCMin: MC1_0, Name: "Spawn"},
	FStronghold: {Cat: CatFull, Coord: true, Area: true, Step: 1, Count: 1, MCMin: MC1_0, Name: "Stronghold"},

	FDesert:    {Cat: CatFull, Coord: true, Area: true, StructType: DesertPyramid, Step: 1, Count: 1, MCMin: MC1_3, Name: "Desert pyramid"},
	FJungle:    {Cat: CatFull, Coord: true, Area: true, StructType: JunglePyramid, Step: 1, Count: 1, MCMin: MC1_3, Name: "Jungle temple"},
	FHut:       {Cat: CatFull, Coord: true, Area: true, StructType: SwampHut, Step: 1, Count: 1, MCMin: MC1_4, Name: "Swamp hut"},
	FIgloo:     {Cat: CatFull, Coord: true, Area: true, StructType: Igloo, Step: 1, Count: 1, MCMin: MC1_9, Name: "Igloo"},
	FMonument:  {Cat: CatFull, Coord: true, Area: true, StructType: Monument, Step: 1, Count: 1, MCMin: MC1_8, Name: "Ocean monument"},
	FVillage:   {Cat: CatFull, Coord: true, Area: true, StructType: Village, Step: 1, Count: 1, MCMin: MC1_0, Name: "Village"},
	FOutpost:   {Cat: CatFull, Coord: true, Area: true, StructType: Outpost, Step: 1, Count: 1, MCMin: MC1_14, Name: "Pillager outpost"},
	FMansion:   {Cat: CatFull, Coord: true, Area: true, StructType: Mansion, Step: 1, Count: 1, MCMin: MC1_11, Name: "Woodland mansion"},
	FTreasure:  {Cat: CatFull, Coord: true, Area: true, StructType: Treasure, Step: 1, Count: 1, MCMin: MC1_13, Name: "Buried treasure"},
	FRuins:     {Cat: CatFull, Coord: true, Area: true, StructType: OceanRuin, Step: 1, Count: 1, MCMin: MC1_13, Name: "Ocean ruins"},
	FShipwreck: {Cat: CatFull, Coord: true, Area: true, StructType: Shipwreck, Step: 1, Count: 1, MCMin: MC1_13, Name: "Shipwreck"},
	FPortal:    {Cat: CatFull, Coord: true, Area: true, StructType: RuinedPortal, Step: 1, Count: 1, MCMin: MC1_16, Name: "Ruined portal"},
}

// IsBiomeFilter reports whether k is one of the biome mask filters.
func IsBiomeFilter(k Kind) bool { return k >= FBiome && k <= FBiome256OTemp }

// IsQuad reports whether k is a quad-hut or quad-monument filter.
func IsQuad(k Kind) bool { return k >= FQhIdeal && k <= FQm90 }

package gen

// IsSlimeChunk reports whether chunk (cx, cz) spawns slimes for the seed.
// The hash is Java's, reduced through the Java LCG.
func IsSlimeChunk(seed int64, cx, cz int32) bool {
	s := seed +
		int64(cx*cx*4987142) +
		int64(cx*5947611) +
		int64(cz*cz)*4392871 +
		int64(cz*389711)
	s ^= 987234911
	r := newJavaRandom(s)
	return r.nextInt(10) == 0
}

// ShadowSeed returns the seed whose temperature noise mirrors the given
// seed's, producing a structurally related world. The involution pairs
// seeds around the generator's temperature offset.
func ShadowSeed(seed int64) int64 {
	return -7379792620528906219 - seed
}

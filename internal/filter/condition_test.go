package filter

import (
	"bytes"
	"testing"
)

func TestCondition_BinaryRoundTrip(t *testing.T) {
	c := Condition{
		Type: FBiome4River,
		X1:   -64, Z1: -32, X2: 17, Z2: 99,
		Save: 7, Relative: 3,
		BiomeFind:  1 << 14,
		BiomeFindM: 1 << 1,
		BiomeExcl:  1 << 2,
		BiomeExclM: 1 << 6,
		Temps:      [9]int32{0, 1, 2, 3, 4, 5, 6, 7, 8},
		Count:      4,
	}
	raw, err := c.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(raw) != CondBytes {
		t.Fatalf("encoded %d bytes, want %d", len(raw), CondBytes)
	}

	var got Condition
	if err := got.UnmarshalBinary(raw); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != c {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, c)
	}

	// Re-encoding must be byte identical.
	raw2, err := got.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if !bytes.Equal(raw, raw2) {
		t.Fatalf("re-encode differs")
	}
}

func TestCondition_UnmarshalRejectsBadSize(t *testing.T) {
	var c Condition
	if err := c.UnmarshalBinary(make([]byte, CondBytes-1)); err == nil {
		t.Fatalf("expected short record to fail")
	}
	if err := c.UnmarshalBinary(make([]byte, CondBytes+4)); err == nil {
		t.Fatalf("expected long record to fail")
	}
}

func TestCondition_UnmarshalRejectsBadVersion(t *testing.T) {
	c := Condition{Type: FSlime, Save: 1}
	raw, _ := c.MarshalBinary()
	raw[0] = 0xFF
	var got Condition
	if err := got.UnmarshalBinary(raw); err == nil {
		t.Fatalf("expected unknown format version to fail")
	}
}

func TestBlockArea(t *testing.T) {
	tests := []struct {
		name           string
		c              Condition
		x1, z1, x2, z2 int32
	}{
		{"unit step", Condition{Type: FSpawn, X1: -3, Z1: -3, X2: 2, Z2: 2}, -3, -3, 2, 2},
		{"chunk step", Condition{Type: FSlime, X1: 0, Z1: 0, X2: 0, Z2: 0}, 0, 0, 15, 15},
		{"region step", Condition{Type: FQhIdeal, X1: -1, Z1: -1, X2: 0, Z2: 0}, -512, -512, 511, 511},
		{"negative area", Condition{Type: FSlime, X1: -2, Z1: -2, X2: -1, Z2: -1}, -32, -32, -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x1, z1, x2, z2 := tt.c.BlockArea()
			if x1 != tt.x1 || z1 != tt.z1 || x2 != tt.x2 || z2 != tt.z2 {
				t.Fatalf("got (%d,%d)..(%d,%d), want (%d,%d)..(%d,%d)",
					x1, z1, x2, z2, tt.x1, tt.z1, tt.x2, tt.z2)
			}
		})
	}
}

func TestFilterTable(t *testing.T) {
	// The Cat48 set is exactly the quad filters plus the ocean temperature
	// layer.
	want48 := map[Kind]bool{
		FQhIdeal: true, FQhClassic: true, FQhNormal: true, FQhBarely: true,
		FQm95: true, FQm90: true, FBiome256OTemp: true,
	}
	for k := FSelect; k < KindCount; k++ {
		is48 := Infos[k].Cat == Cat48
		if is48 != want48[k] {
			t.Fatalf("kind %d: Cat48=%v, want %v", k, is48, want48[k])
		}
	}

	steps := map[Kind]int{
		FQhIdeal: 512, FQm90: 512, FBiome: 1, FBiome4River: 4,
		FBiome16Shore: 16, FBiome64Rare: 64, FBiome256Biome: 256,
		FBiome256OTemp: 256, FTemps: 1024, FSlime: 16, FVillage: 1,
	}
	for k, step := range steps {
		if Infos[k].Step != step {
			t.Fatalf("kind %d: step %d, want %d", k, Infos[k].Step, step)
		}
	}
}

package filter

import (
	"strings"
	"testing"
)

func TestValidateConditions(t *testing.T) {
	slime := func(save, rel int32) Condition {
		return Condition{Type: FSlime, Save: save, Relative: rel, X1: 0, Z1: 0, X2: 3, Z2: 3}
	}

	tests := []struct {
		name    string
		mc      int
		conds   []Condition
		wantErr string
	}{
		{"empty list", MC1_16, nil, ""},
		{"single", MC1_16, []Condition{slime(1, 0)}, ""},
		{"relative chain", MC1_16, []Condition{slime(1, 0), slime(2, 1)}, ""},
		{"save zero", MC1_16, []Condition{slime(0, 0)}, "invalid ID"},
		{"save too large", MC1_16, []Condition{slime(100, 0)}, "invalid ID"},
		{"duplicate save", MC1_16, []Condition{slime(5, 0), slime(5, 0)}, "more than one"},
		{"forward reference", MC1_16, []Condition{slime(1, 2), slime(2, 0)}, "broken reference"},
		{"self reference", MC1_16, []Condition{slime(1, 1)}, "broken reference"},
		{"bad type", MC1_16, []Condition{{Type: KindCount, Save: 1}}, "invalid filter type"},
		{"select type", MC1_16, []Condition{{Type: FSelect, Save: 1}}, "invalid filter type"},
		{"version too old", MC1_0, []Condition{{Type: FPortal, Save: 1, X2: 1, Z2: 1}}, "minimum Minecraft version"},
		{"empty area", MC1_16, []Condition{{Type: FSlime, Save: 1, X1: 2, X2: 1, Z1: 0, Z2: 0}}, "empty area"},
		{"one by one area", MC1_16, []Condition{{Type: FSlime, Save: 1}}, ""},
		{
			"biome contradiction", MC1_16,
			[]Condition{{Type: FBiome, Save: 1, X2: 1, Z2: 1, BiomeFind: 1 << 6, BiomeExcl: 1 << 6}},
			"contradicting",
		},
		{
			"biome modified contradiction", MC1_16,
			[]Condition{{Type: FBiome, Save: 1, X2: 1, Z2: 1, BiomeFindM: 1 << 1, BiomeExclM: 1 << 1}},
			"contradicting",
		},
		{
			"temps overflow", MC1_16,
			[]Condition{{Type: FTemps, Save: 1, X2: 1, Z2: 1, Temps: [9]int32{3, 2, 0, 0, 0, 0, 0, 0, 0}}},
			"too many restrictions",
		},
		{
			"temps exact fit", MC1_16,
			[]Condition{{Type: FTemps, Save: 1, X2: 1, Z2: 1, Temps: [9]int32{2, 2, 0, 0, 0, 0, 0, 0, 0}}},
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConditions(tt.mc, tt.conds)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

package filter

import "fmt"

// ValidateConditions checks a condition list before a search starts. Any
// returned error corresponds to a configuration the evaluator would treat as
// a programmer error at run time.
func ValidateConditions(mc int, conds []Condition) error {
	seen := [100]bool{}
	for i := range conds {
		c := &conds[i]
		if c.Save < 1 || c.Save > 99 {
			return fmt.Errorf("condition with invalid ID [%02d]", c.Save)
		}
		if c.Relative != 0 && (c.Relative < 1 || c.Relative > 99 || !seen[c.Relative]) {
			return fmt.Errorf("condition [%02d] has a broken reference position: condition missing or out of order", c.Save)
		}
		if seen[c.Save] {
			return fmt.Errorf("more than one condition with ID [%02d]", c.Save)
		}
		seen[c.Save] = true

		if c.Type <= FSelect || c.Type >= KindCount {
			return fmt.Errorf("invalid filter type %d in condition [%02d]", c.Type, c.Save)
		}
		info := &Infos[c.Type]
		if mc < info.MCMin {
			return fmt.Errorf("condition [%02d] requires a minimum Minecraft version of %s", c.Save, MCString(info.MCMin))
		}
		if info.Area && (c.X1 > c.X2 || c.Z1 > c.Z2) {
			return fmt.Errorf("condition [%02d] has an empty area", c.Save)
		}
		if IsBiomeFilter(c.Type) {
			if c.BiomeExcl&c.BiomeFind != 0 || c.BiomeExclM&c.BiomeFindM != 0 {
				return fmt.Errorf("biome filter condition [%02d] has contradicting flags for include and exclude", c.Save)
			}
		}
		if c.Type == FTemps {
			w := int64(c.X2-c.X1) + 1
			h := int64(c.Z2-c.Z1) + 1
			var total int64
			for _, t := range c.Temps {
				total += int64(t)
			}
			if total > w*h {
				return fmt.Errorf("temperature condition [%02d] has too many restrictions (%d) for the area (%d x %d)", c.Save, total, w, h)
			}
		}
	}
	return nil
}

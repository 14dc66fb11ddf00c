package gen

import (
	"sync/atomic"

	"seedscout.gg/internal/filter"
)

// BiomeFilterCheck generates the biome map of a condition's area at the
// condition's layer and tests the include/exclude masks: every included
// biome must appear somewhere in the area and no excluded biome may.
// The area is given in blocks; it is converted to layer cells here.
func (ls *LayerStack) BiomeFilterCheck(c *filter.Condition, x1, z1, x2, z2 int32, cancel *atomic.Bool) (bool, error) {
	info := &filter.Infos[c.Type]
	scale := int32(info.Step)
	cx1 := floorDiv32(x1, scale)
	cz1 := floorDiv32(z1, scale)
	cx2 := floorDiv32(x2, scale)
	cz2 := floorDiv32(z2, scale)

	m, err := ls.GenArea(info.Layer, cx1, cz1, cx2-cx1+1, cz2-cz1+1, cancel)
	if err != nil {
		return false, err
	}

	var found, foundM uint64
	for _, id := range m.ID {
		modified, bit, ok := BiomeBit(id)
		if !ok {
			continue
		}
		if modified {
			if c.BiomeExclM&bit != 0 {
				return false, nil
			}
			foundM |= bit
		} else {
			if c.BiomeExcl&bit != 0 {
				return false, nil
			}
			found |= bit
		}
	}
	return found&c.BiomeFind == c.BiomeFind && foundM&c.BiomeFindM == c.BiomeFindM, nil
}

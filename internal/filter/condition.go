package filter

import (
	"encoding/binary"
	"fmt"
)

// Condition is one entry of a search's condition list. Coordinates are in
// units of the filter's Step; area bounds are inclusive.
type Condition struct {
	Type Kind

	X1, Z1, X2, Z2 int32

	// Save is the condition's identifier (1..99, unique per search).
	// Relative is 0 for absolute coordinates, or the Save of an earlier
	// condition whose matched position becomes this condition's origin.
	Save     int32
	Relative int32

	// Biome bitsets, indexed by biome id. The M variants cover the
	// "modified" biome range (ids 128+, bit = id-128).
	BiomeFind  uint64
	BiomeFindM uint64
	BiomeExcl  uint64
	BiomeExclM uint64

	// Required counts per temperature category (FTemps).
	Temps [9]int32

	// Required multiplicity for structure and positional filters.
	Count int32
}

// CondFormatV1 is the wire format version of the encoded condition record.
// It is independent of the application version.
const CondFormatV1 = 1

// CondBytes is the exact encoded size of one condition record.
const CondBytes = 4 + 4 + 4*4 + 4 + 4 + 4*8 + 9*4 + 4

// MarshalBinary encodes the condition as a fixed-size little-endian record
// with explicit field widths and no padding.
func (c *Condition) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, CondBytes)
	p32 := func(v int32) { b = binary.LittleEndian.AppendUint32(b, uint32(v)) }
	p64 := func(v uint64) { b = binary.LittleEndian.AppendUint64(b, v) }

	p32(CondFormatV1)
	p32(int32(c.Type))
	p32(c.X1)
	p32(c.Z1)
	p32(c.X2)
	p32(c.Z2)
	p32(c.Save)
	p32(c.Relative)
	p64(c.BiomeFind)
	p64(c.BiomeFindM)
	p64(c.BiomeExcl)
	p64(c.BiomeExclM)
	for _, t := range c.Temps {
		p32(t)
	}
	p32(c.Count)
	return b, nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary. The input must
// be exactly CondBytes long.
func (c *Condition) UnmarshalBinary(b []byte) error {
	if len(b) != CondBytes {
		return fmt.Errorf("condition record is %d bytes, want %d", len(b), CondBytes)
	}
	off := 0
	g32 := func() int32 {
		v := int32(binary.LittleEndian.Uint32(b[off:]))
		off += 4
		return v
	}
	g64 := func() uint64 {
		v := binary.LittleEndian.Uint64(b[off:])
		off += 8
		return v
	}

	if ver := g32(); ver != CondFormatV1 {
		return fmt.Errorf("unsupported condition format version %d", ver)
	}
	c.Type = Kind(g32())
	c.X1 = g32()
	c.Z1 = g32()
	c.X2 = g32()
	c.Z2 = g32()
	c.Save = g32()
	c.Relative = g32()
	c.BiomeFind = g64()
	c.BiomeFindM = g64()
	c.BiomeExcl = g64()
	c.BiomeExclM = g64()
	for i := range c.Temps {
		c.Temps[i] = g32()
	}
	c.Count = g32()
	return nil
}

// BlockArea returns the condition's area in block coordinates. Bounds are
// inclusive in condition units, so the block area spans
// (x1*step, z1*step) .. ((x2+1)*step-1, (z2+1)*step-1).
func (c *Condition) BlockArea() (x1, z1, x2, z2 int32) {
	step := int32(Infos[c.Type].Step)
	if step <= 0 {
		step = 1
	}
	return c.X1 * step, c.Z1 * step, (c.X2+1)*step - 1, (c.Z2+1)*step - 1
}

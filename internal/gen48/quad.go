package gen48

import (
	"sync/atomic"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/search"
)

// quadSource filters the 48-bit space down to prefixes that admit a quad
// constellation of the requested structure somewhere in the generator area.
// Each anchor region of the window is probed directly with the salted
// 48-bit seed through the evaluator's quad predicates.
type quadSource struct {
	kind    int
	qkind   filter.Kind
	frac    float64
	salt    int64
	regions [][2]int32

	next   int64
	done   bool
	cancel *atomic.Bool
}

func newQuadSource(s Settings, conds []filter.Condition, kind int, from int64, cancel *atomic.Bool) *quadSource {
	q := &quadSource{kind: kind, salt: s.Salt, cancel: cancel}
	if from > 0 {
		q.next = from & (int64(seedSpace48) - 1)
	}

	switch {
	case kind == filter.Monument:
		q.frac = 0.90
		if s.QMArea >= 95 {
			q.frac = 0.95
		}
	case s.Qual <= 0:
		q.qkind = filter.FQhIdeal
	case s.Qual == 1:
		q.qkind = filter.FQhClassic
	case s.Qual == 2:
		q.qkind = filter.FQhNormal
	default:
		q.qkind = filter.FQhBarely
	}

	x1, z1, x2, z2 := quadArea(s, conds, kind)
	for rz := z1 - 1; rz <= z2; rz++ {
		for rx := x1 - 1; rx <= x2; rx++ {
			q.regions = append(q.regions, [2]int32{rx, rz})
		}
	}
	return q
}

// quadArea picks the region window to probe: the manual override, the first
// matching quad condition's area, or the four regions around the origin.
func quadArea(s Settings, conds []filter.Condition, kind int) (x1, z1, x2, z2 int32) {
	if s.ManualArea {
		return s.X1, s.Z1, s.X2, s.Z2
	}
	for i := range conds {
		c := &conds[i]
		isHut := c.Type >= filter.FQhIdeal && c.Type <= filter.FQhBarely
		isMon := c.Type == filter.FQm95 || c.Type == filter.FQm90
		if (kind == filter.SwampHut && isHut) || (kind == filter.Monument && isMon) {
			return c.X1, c.Z1, c.X2, c.Z2
		}
	}
	return -1, -1, 0, 0
}

func (q *quadSource) Bounds() (uint64, uint64) {
	// The fraction of prefixes admitting a quad is not known in closed
	// form; only the trivial bounds are available.
	return 0, seedSpace48
}

func (q *quadSource) admits(seed48 int64) bool {
	probe := (seed48 + q.salt) & (int64(seedSpace48) - 1)
	for _, r := range q.regions {
		ps, ok := search.QuadAt(probe, q.kind, r[0], r[1])
		if !ok {
			continue
		}
		if q.kind == filter.Monument {
			if _, ok := search.QuadMonumentOK(ps, q.frac); ok {
				return true
			}
		} else if _, ok := search.QuadHutOK(q.qkind, ps, r[0], r[1]); ok {
			return true
		}
	}
	return false
}

func (q *quadSource) Next() (int64, bool) {
	for !q.done {
		if q.cancel != nil && q.cancel.Load() {
			return 0, false
		}
		s := q.next
		if uint64(s) >= seedSpace48-1 {
			q.done = true
		}
		q.next = s + 1
		if q.admits(s) {
			return s, true
		}
	}
	return 0, false
}

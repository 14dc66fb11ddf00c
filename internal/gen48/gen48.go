// Package gen48 produces the stream of 48-bit seed prefixes a search
// examines. Sources emit candidates in ascending order so a search can be
// resumed deterministically from a progress cursor.
package gen48

import (
	"sync/atomic"

	"seedscout.gg/internal/filter"
)

// Gen48 modes.
const (
	ModeAuto = iota
	ModeQuad
	ModeMonument48
	ModeList48
	ModeNone
)

// Settings selects and parameterises the candidate source.
type Settings struct {
	Mode   int
	Qual   int   // quad-hut quality class (0=ideal .. 3=barely)
	QMArea int   // quad-monument minimum overlap percentage
	Salt   int64 // alternative structure salt offset

	ManualArea     bool
	X1, Z1, X2, Z2 int32 // region units, used when ManualArea is set

	List48Path string
}

// DefaultSettings mirrors a fresh search setup.
func DefaultSettings() Settings {
	return Settings{Mode: ModeAuto, Qual: 3, QMArea: 90}
}

// Source is a stream of 48-bit seed candidates.
//
// Next returns candidates in strictly ascending order and reports ok=false
// once the stream is exhausted or the cancel flag is set. Bounds returns
// lower and upper bounds on the total candidate count for progress display.
type Source interface {
	Bounds() (lo, hi uint64)
	Next() (seed48 int64, ok bool)
}

const seedSpace48 = uint64(1) << 48

// Resolve picks the source for the settings and condition list. Auto mode
// selects the most selective source the conditions admit.
func Resolve(s Settings, conds []filter.Condition, from int64, cancel *atomic.Bool) (Source, error) {
	mode := s.Mode
	if mode == ModeAuto {
		mode = ModeNone
		for i := range conds {
			switch {
			case conds[i].Type >= filter.FQhIdeal && conds[i].Type <= filter.FQhBarely:
				mode = ModeQuad
			case conds[i].Type == filter.FQm95 || conds[i].Type == filter.FQm90:
				if mode != ModeQuad {
					mode = ModeMonument48
				}
			}
		}
	}

	switch mode {
	case ModeQuad:
		return newQuadSource(s, conds, filter.SwampHut, from, cancel), nil
	case ModeMonument48:
		return newQuadSource(s, conds, filter.Monument, from, cancel), nil
	case ModeList48:
		return newListSource(s.List48Path, from, cancel)
	default:
		return newRangeSource(from, cancel), nil
	}
}

// rangeSource enumerates the full 48-bit space.
type rangeSource struct {
	next   int64
	done   bool
	cancel *atomic.Bool
}

func newRangeSource(from int64, cancel *atomic.Bool) *rangeSource {
	if from < 0 {
		from = 0
	}
	return &rangeSource{next: from & (int64(seedSpace48) - 1), cancel: cancel}
}

func (r *rangeSource) Bounds() (uint64, uint64) { return seedSpace48, seedSpace48 }

func (r *rangeSource) Next() (int64, bool) {
	if r.done || (r.cancel != nil && r.cancel.Load()) {
		return 0, false
	}
	s := r.next
	if uint64(s) >= seedSpace48-1 {
		r.done = true
	}
	r.next = s + 1
	return s, true
}

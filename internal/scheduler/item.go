// Package scheduler splits the candidate stream into work items, dispatches
// them to a worker pool, and reassembles completions into monotonic
// progress.
package scheduler

import (
	"math"
	"sync/atomic"

	"seedscout.gg/internal/gen48"
	"seedscout.gg/internal/search"
)

// Search modes. Fixed for the duration of a run.
const (
	ModeIncremental  = 0
	ModeFamilyBlocks = 1
	ModeList         = 2
)

// SearchConfig is the run configuration owned by the controller and shared
// read-only with the scheduler.
type SearchConfig struct {
	Mode         int
	StartSeed    int64
	Threads      int
	StopOnResult bool
	SeedListPath string
}

// Item kinds.
const (
	ItemFullRange = iota
	ItemPrefix48
)

// Family-block fan-out: the 2^16 upper seeds of one 48-bit prefix split
// into 128 items of 0x200 seeds each.
const (
	familyItemsPerPrefix = 128
	familyBlockSize      = 0x200
)

// DefaultItemSize is the number of seeds per work item.
const DefaultItemSize = 1024

// DefaultQueueSize bounds the number of outstanding items.
const DefaultQueueSize = 1024

// Item is one unit of work, owned by exactly one worker once dispatched.
type Item struct {
	ID   uint64
	Kind int

	// FullRange: seeds SeedBase .. SeedBase+Count-1 (or the explicit Seeds
	// slice in list mode). Prefix48: seeds Seed48 | (Upper+j)<<48.
	SeedBase int64
	Count    int
	Seeds    []int64
	Seed48   int64
	Upper    int32

	// Cursor is the first candidate not yet covered once this item and all
	// items before it have completed.
	Cursor int64
}

// itemGen produces items in stream order. It runs on the controller
// goroutine only.
type itemGen struct {
	mode     int
	itemSize int
	nextID   uint64
	cancel   *atomic.Bool

	total uint64 // upper-bound item count for progress

	// Incremental.
	cursor    int64
	exhausted bool

	// FamilyBlocks.
	src        gen48.Source
	pre        *search.Evaluator // Cat48 pre-filter over prefixes
	prefix     int64
	upperNext  int32
	havePrefix bool

	// List.
	seeds []int64
	lidx  int
}

func newItemGen(cfg SearchConfig, itemSize int, src gen48.Source, pre *search.Evaluator, seeds []int64, cancel *atomic.Bool) *itemGen {
	g := &itemGen{mode: cfg.Mode, itemSize: itemSize, cancel: cancel}
	switch cfg.Mode {
	case ModeFamilyBlocks:
		g.src = src
		g.pre = pre
		_, hi := src.Bounds()
		g.total = boundedMul(hi, familyItemsPerPrefix)
	case ModeList:
		g.seeds = seeds
		g.total = uint64(len(seeds)+itemSize-1) / uint64(itemSize)
	default:
		g.cursor = cfg.StartSeed
		remaining := uint64(math.MaxInt64-cfg.StartSeed) + 1
		g.total = (remaining + uint64(itemSize) - 1) / uint64(itemSize)
	}
	return g
}

func boundedMul(a, b uint64) uint64 {
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}

// next returns the next item. ok=false once the stream is exhausted or the
// run is canceled.
func (g *itemGen) next() (Item, bool) {
	if g.cancel.Load() {
		return Item{}, false
	}
	switch g.mode {
	case ModeFamilyBlocks:
		return g.nextFamily()
	case ModeList:
		return g.nextList()
	default:
		return g.nextIncremental()
	}
}

func (g *itemGen) nextIncremental() (Item, bool) {
	if g.exhausted {
		return Item{}, false
	}
	count := g.itemSize
	remaining := uint64(math.MaxInt64-g.cursor) + 1
	if uint64(count) >= remaining {
		count = int(remaining)
		g.exhausted = true
	}
	it := Item{
		ID:       g.nextID,
		Kind:     ItemFullRange,
		SeedBase: g.cursor,
		Count:    count,
	}
	if g.exhausted {
		it.Cursor = math.MaxInt64
	} else {
		g.cursor += int64(count)
		it.Cursor = g.cursor
	}
	g.nextID++
	return it, true
}

func (g *itemGen) nextList() (Item, bool) {
	if g.lidx >= len(g.seeds) {
		return Item{}, false
	}
	end := g.lidx + g.itemSize
	if end > len(g.seeds) {
		end = len(g.seeds)
	}
	batch := g.seeds[g.lidx:end]
	g.lidx = end
	it := Item{
		ID:       g.nextID,
		Kind:     ItemFullRange,
		SeedBase: batch[0],
		Count:    len(batch),
		Seeds:    batch,
		Cursor:   batch[len(batch)-1] + 1,
	}
	g.nextID++
	return it, true
}

// nextFamily pulls 48-bit prefixes from the Gen48 source, keeps those whose
// Cat48 conditions hold, and fans each out into upper-range items. Only the
// CatFull conditions remain for the workers.
func (g *itemGen) nextFamily() (Item, bool) {
	for {
		if !g.havePrefix {
			for {
				p, ok := g.src.Next()
				if !ok {
					return Item{}, false
				}
				var st search.State
				if g.pre.Test48(p, &st, g.cancel) {
					g.prefix = p
					g.upperNext = 0
					g.havePrefix = true
					break
				}
				if g.cancel.Load() {
					return Item{}, false
				}
			}
		}

		upper := g.upperNext
		g.upperNext += familyBlockSize
		last := g.upperNext >= familyItemsPerPrefix*familyBlockSize
		if last {
			g.havePrefix = false
		}

		it := Item{
			ID:     g.nextID,
			Kind:   ItemPrefix48,
			Seed48: g.prefix,
			Upper:  upper,
			Count:  familyBlockSize,
			Cursor: g.prefix,
		}
		if last {
			it.Cursor = g.prefix + 1
		}
		g.nextID++
		return it, true
	}
}

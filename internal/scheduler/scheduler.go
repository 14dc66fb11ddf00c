package scheduler

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen48"
	"seedscout.gg/internal/search"
)

// Hooks receive the scheduler's boundary events. All hooks run on the
// controller goroutine; a nil hook is skipped.
type Hooks struct {
	// OnProgress reports the monotonic cursor: every candidate strictly
	// below seed has been fully evaluated.
	OnProgress func(done, total uint64, seed int64)
	// OnResults delivers hit seeds in report order. Returning true stops
	// the search (result cap reached).
	OnResults func(seeds []int64) (stop bool)
	// OnFinished fires exactly once, after the pool has drained.
	OnFinished func(complete bool)
}

// doneMsg is a worker's completion report for one item.
type doneMsg struct {
	id       uint64
	cursor   int64
	canceled bool
	hits     []int64
}

type windowSlot struct {
	valid  bool
	cursor int64
}

// Scheduler owns the candidate stream and the completion window. One
// scheduler runs one search.
type Scheduler struct {
	cfg       SearchConfig
	mc        int
	conds     []filter.Condition
	itemSize  int
	queueSize int

	cancel *atomic.Bool
	hooks  Hooks

	gen    *itemGen
	window []windowSlot
	lastID uint64
	doneCt uint64
}

// Options tune the item granularity and window depth.
type Options struct {
	ItemSize  int
	QueueSize int
}

// New validates the configuration and builds a scheduler. The condition
// list is validated here so a broken reference never reaches a worker.
func New(cfg SearchConfig, mc int, conds []filter.Condition, g48 gen48.Settings, opts Options, cancel *atomic.Bool, hooks Hooks) (*Scheduler, error) {
	if err := filter.ValidateConditions(mc, conds); err != nil {
		return nil, err
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}
	if opts.ItemSize <= 0 {
		opts.ItemSize = DefaultItemSize
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}

	s := &Scheduler{
		cfg:       cfg,
		mc:        mc,
		conds:     conds,
		itemSize:  opts.ItemSize,
		queueSize: opts.QueueSize,
		cancel:    cancel,
		hooks:     hooks,
		window:    make([]windowSlot, opts.QueueSize),
	}

	var src gen48.Source
	var pre *search.Evaluator
	var seeds []int64
	switch cfg.Mode {
	case ModeFamilyBlocks:
		var err error
		src, err = gen48.Resolve(g48, conds, cfg.StartSeed, cancel)
		if err != nil {
			return nil, err
		}
		pre = search.NewEvaluator(mc, conds)
	case ModeList:
		var err error
		seeds, err = gen48.ReadSeedList(cfg.SeedListPath)
		if err != nil {
			return nil, fmt.Errorf("seed list: %w", err)
		}
	}
	s.gen = newItemGen(cfg, opts.ItemSize, src, pre, seeds, cancel)
	return s, nil
}

// Run executes the search to completion, cancellation, or result cap. It
// blocks the calling goroutine, which becomes the controller.
func (s *Scheduler) Run() {
	work := make(chan Item, s.queueSize)
	// Completion messages are blocking-queued: a worker cannot outrun the
	// controller's result handling.
	done := make(chan doneMsg)

	var wg sync.WaitGroup
	for w := 0; w < s.cfg.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ev := search.NewEvaluator(s.mc, s.conds)
			for it := range work {
				done <- s.runItem(ev, it)
			}
		}()
	}

	active := 0
	submit := func() bool {
		it, ok := s.gen.next()
		if !ok {
			return false
		}
		work <- it
		active++
		return true
	}

	// Pre-fill the queue.
	for i := 0; i < s.queueSize; i++ {
		if !submit() {
			break
		}
	}

	for active > 0 {
		msg := <-done
		active--

		if len(msg.hits) > 0 {
			stop := false
			if s.hooks.OnResults != nil {
				stop = s.hooks.OnResults(msg.hits)
			}
			if stop || s.cfg.StopOnResult {
				s.cancel.Store(true)
			}
		}

		if msg.canceled {
			// The item did not run to completion; the window must not
			// advance past it.
			continue
		}
		s.complete(msg, submit)
	}

	close(work)
	wg.Wait()

	if s.hooks.OnFinished != nil {
		s.hooks.OnFinished(!s.cancel.Load())
	}
}

// complete records an item completion and advances the contiguous prefix of
// the window, refilling the queue by as many items as it advanced.
func (s *Scheduler) complete(msg doneMsg, submit func() bool) {
	if msg.id < s.lastID {
		return
	}
	idx := msg.id - s.lastID
	if idx != 0 {
		if idx < uint64(len(s.window)) {
			s.window[idx] = windowSlot{valid: true, cursor: msg.cursor}
		}
		return
	}

	// The head item finished: find the longest contiguous run of completed
	// slots, advance, shift, and refill.
	k := uint64(1)
	cursor := msg.cursor
	for k < uint64(len(s.window)) && s.window[k].valid {
		cursor = s.window[k].cursor
		k++
	}
	s.lastID += k
	s.doneCt += k
	copy(s.window, s.window[k:])
	for i := uint64(len(s.window)) - k; i < uint64(len(s.window)); i++ {
		s.window[i] = windowSlot{}
	}

	for i := uint64(0); i < k; i++ {
		if !submit() {
			break
		}
	}

	if s.hooks.OnProgress != nil {
		s.hooks.OnProgress(s.doneCt, s.gen.total, cursor)
	}
}

// runItem evaluates every seed of one item. Cancellation is polled between
// seeds; a canceled item reports the hits it found but does not complete.
func (s *Scheduler) runItem(ev *search.Evaluator, it Item) doneMsg {
	var hits []int64

	switch it.Kind {
	case ItemPrefix48:
		// The prefix passed its Cat48 conditions when the item was
		// generated; rebuild the positional state, then run only the
		// CatFull conditions per seed.
		var base search.State
		if !ev.Test48(it.Seed48, &base, s.cancel) {
			return doneMsg{id: it.ID, canceled: s.cancel.Load(), cursor: it.Cursor}
		}
		for j := 0; j < it.Count; j++ {
			if s.cancel.Load() {
				return doneMsg{id: it.ID, canceled: true, hits: hits}
			}
			seed := it.Seed48 | int64(it.Upper+int32(j))<<48
			st := base
			if ev.TestFull(seed, &st, s.cancel) {
				hits = append(hits, seed)
			}
		}

	default:
		for j := 0; j < it.Count; j++ {
			if s.cancel.Load() {
				return doneMsg{id: it.ID, canceled: true, hits: hits}
			}
			seed := it.SeedBase + int64(j)
			if it.Seeds != nil {
				seed = it.Seeds[j]
			}
			if ev.TestSeed(seed, s.cancel) {
				hits = append(hits, seed)
			}
		}
	}

	return doneMsg{id: it.ID, cursor: it.Cursor, hits: hits}
}

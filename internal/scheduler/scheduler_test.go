package scheduler

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/gen48"
)

func writeSeedList(t *testing.T, seeds []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seeds.txt")
	var buf []byte
	for _, s := range seeds {
		buf = append(buf, s...)
		buf = append(buf, '\n')
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write seed list: %v", err)
	}
	return path
}

type capture struct {
	hits     []int64
	cursors  []int64
	finished bool
	complete bool
}

func (c *capture) hooks(stopAfter int) Hooks {
	return Hooks{
		OnProgress: func(done, total uint64, seed int64) {
			c.cursors = append(c.cursors, seed)
		},
		OnResults: func(seeds []int64) bool {
			c.hits = append(c.hits, seeds...)
			return stopAfter > 0 && len(c.hits) >= stopAfter
		},
		OnFinished: func(complete bool) {
			c.finished = true
			c.complete = complete
		},
	}
}

func TestList_EmptyCompletesImmediately(t *testing.T) {
	path := writeSeedList(t, nil)
	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeList, Threads: 4, SeedListPath: path},
		filter.MC1_16, nil, gen48.DefaultSettings(),
		Options{ItemSize: 16, QueueSize: 8}, &atomic.Bool{}, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Run()
	if !rec.finished || !rec.complete {
		t.Fatalf("empty list should finish complete")
	}
	if len(rec.hits) != 0 {
		t.Fatalf("empty list produced hits")
	}
}

func TestList_NoConditionsMatchesEverySeed(t *testing.T) {
	path := writeSeedList(t, []string{"5", "-3", "12", "7", "5"})
	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeList, Threads: 3, SeedListPath: path},
		filter.MC1_16, nil, gen48.DefaultSettings(),
		Options{ItemSize: 2, QueueSize: 4}, &atomic.Bool{}, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Run()
	if !rec.complete {
		t.Fatalf("run should complete")
	}
	// An empty condition list matches everything; the duplicate stays in
	// the stream (the sink de-duplicates, not the scheduler).
	if len(rec.hits) != 5 {
		t.Fatalf("got %d hits, want 5", len(rec.hits))
	}
	seen := map[int64]int{}
	for _, h := range rec.hits {
		seen[h]++
	}
	for _, want := range []int64{5, -3, 12, 7} {
		if seen[want] == 0 {
			t.Fatalf("missing hit %d", want)
		}
	}
}

func TestIncremental_Int64BoundaryTerminates(t *testing.T) {
	start := int64(math.MaxInt64 - 4999)
	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeIncremental, StartSeed: start, Threads: 4},
		filter.MC1_16, nil, gen48.DefaultSettings(),
		Options{ItemSize: 64, QueueSize: 16}, &atomic.Bool{}, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	done := make(chan struct{})
	go func() { s.Run(); close(done) }()
	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("incremental search did not terminate at the int64 boundary")
	}
	if !rec.complete {
		t.Fatalf("boundary run should complete")
	}
	if len(rec.hits) != 5000 {
		t.Fatalf("got %d hits, want 5000", len(rec.hits))
	}
	if last := rec.cursors[len(rec.cursors)-1]; last != math.MaxInt64 {
		t.Fatalf("final cursor %d, want MaxInt64", last)
	}
}

func TestIncremental_StartAtBoundary(t *testing.T) {
	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeIncremental, StartSeed: math.MaxInt64, Threads: 1},
		filter.MC1_16, nil, gen48.DefaultSettings(),
		Options{ItemSize: 16, QueueSize: 4}, &atomic.Bool{}, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Run()
	if len(rec.hits) != 1 || rec.hits[0] != math.MaxInt64 {
		t.Fatalf("boundary start should test exactly MaxInt64, got %v", rec.hits)
	}
}

func TestProgress_CursorMonotonic(t *testing.T) {
	seeds := make([]string, 0, 3000)
	for i := 0; i < 3000; i++ {
		seeds = append(seeds, itoa(int64(i*3)))
	}
	path := writeSeedList(t, seeds)

	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeList, Threads: 8, SeedListPath: path},
		filter.MC1_16, nil, gen48.DefaultSettings(),
		Options{ItemSize: 8, QueueSize: 32}, &atomic.Bool{}, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Run()

	if len(rec.cursors) == 0 {
		t.Fatalf("no progress events")
	}
	for i := 1; i < len(rec.cursors); i++ {
		if rec.cursors[i] < rec.cursors[i-1] {
			t.Fatalf("cursor went backwards: %d after %d", rec.cursors[i], rec.cursors[i-1])
		}
	}
	if last := rec.cursors[len(rec.cursors)-1]; last != int64(2999*3)+1 {
		t.Fatalf("final cursor %d, want %d", last, int64(2999*3)+1)
	}
}

func TestStopOnResult(t *testing.T) {
	start := int64(math.MaxInt64 - 1_000_000)
	cancel := &atomic.Bool{}
	var rec capture
	opts := Options{ItemSize: 8, QueueSize: 8}
	s, err := New(
		SearchConfig{Mode: ModeIncremental, StartSeed: start, Threads: 4, StopOnResult: true},
		filter.MC1_16, nil, gen48.DefaultSettings(), opts, cancel, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Run()

	if len(rec.hits) == 0 {
		t.Fatalf("expected at least one hit")
	}
	// After the first hit only already-dispatched items may report: the
	// hit count is bounded by the outstanding window.
	if max := opts.QueueSize * opts.ItemSize; len(rec.hits) > max {
		t.Fatalf("%d hits exceed the dispatched bound %d", len(rec.hits), max)
	}
	if !cancel.Load() {
		t.Fatalf("stop-on-result must set the cancel flag")
	}
	if rec.complete {
		t.Fatalf("stopped run must not report complete")
	}
}

func TestCancel_AbortsPromptly(t *testing.T) {
	cancel := &atomic.Bool{}
	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeIncremental, StartSeed: 0, Threads: 8},
		filter.MC1_16,
		[]filter.Condition{{Type: filter.FSlime, Save: 1, X1: -16, Z1: -16, X2: 16, Z2: 16, Count: 3}},
		gen48.DefaultSettings(),
		Options{ItemSize: 128, QueueSize: 64}, cancel, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan struct{})
	go func() { s.Run(); close(done) }()
	time.Sleep(50 * time.Millisecond)
	cancel.Store(true)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("cancellation took more than 2s to drain")
	}
	if rec.complete {
		t.Fatalf("aborted run must not report complete")
	}
}

func TestFamilyBlocks_FanOut(t *testing.T) {
	// One 48-bit prefix from a list; the trivially-true Cat48 condition
	// admits it, so the scheduler fans out 128 upper-range items covering
	// all 2^16 family seeds.
	prefix := int64(123456789)
	listPath := writeSeedList(t, []string{itoa(prefix)})

	g48 := gen48.DefaultSettings()
	g48.Mode = gen48.ModeList48
	g48.List48Path = listPath

	conds := []filter.Condition{
		// No include and no exclude bits: passes for every seed, but keeps
		// the condition list in the Cat48 category.
		{Type: filter.FBiome256OTemp, Save: 1, X1: -1, Z1: -1, X2: 0, Z2: 0},
	}

	var rec capture
	s, err := New(
		SearchConfig{Mode: ModeFamilyBlocks, Threads: 8},
		filter.MC1_16, conds, g48,
		Options{ItemSize: 1024, QueueSize: 256}, &atomic.Bool{}, rec.hooks(0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Run()

	if !rec.complete {
		t.Fatalf("family run should complete")
	}
	if len(rec.hits) != 1<<16 {
		t.Fatalf("got %d hits, want %d", len(rec.hits), 1<<16)
	}
	mask := (int64(1) << 48) - 1
	uppers := map[int64]bool{}
	for _, h := range rec.hits {
		if h&mask != prefix {
			t.Fatalf("hit %d does not share the prefix", h)
		}
		uppers[int64(uint64(h)>>48)] = true
	}
	if len(uppers) != 1<<16 {
		t.Fatalf("family blocks covered %d upper values, want %d", len(uppers), 1<<16)
	}
	if last := rec.cursors[len(rec.cursors)-1]; last != prefix+1 {
		t.Fatalf("final cursor %d, want %d", last, prefix+1)
	}
}

func TestNew_RejectsInvalidConditions(t *testing.T) {
	_, err := New(
		SearchConfig{Mode: ModeIncremental, Threads: 1},
		filter.MC1_16,
		[]filter.Condition{{Type: filter.FSlime, Save: 1, Relative: 9, X2: 1, Z2: 1}},
		gen48.DefaultSettings(), Options{}, &atomic.Bool{}, Hooks{})
	if err == nil {
		t.Fatalf("broken reference must be rejected before the run starts")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

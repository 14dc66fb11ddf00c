// Package searchctl drives searches: it owns the scheduler, the result
// sink, and the session snapshot, and publishes boundary events to
// subscribers.
package searchctl

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"seedscout.gg/internal/filter"
	"seedscout.gg/internal/results"
	"seedscout.gg/internal/scheduler"
	"seedscout.gg/internal/session"
)

// Event is one boundary signal. Subscribers receive exactly the concrete
// types below.
type Event interface{ event() }

// ProgressEvent carries the monotonic resume cursor.
type ProgressEvent struct {
	Done  uint64
	Total uint64
	Seed  int64
}

// ResultsEvent reports newly accepted hits.
type ResultsEvent struct {
	Added int
	Seeds []int64
}

// FinishedEvent fires once per run after the pool has drained.
type FinishedEvent struct {
	Complete   bool
	CapReached bool
}

// SelectedSeedEvent mirrors a UI seed selection to other subscribers.
type SelectedSeedEvent struct {
	Seed int64
}

func (ProgressEvent) event()     {}
func (ResultsEvent) event()      {}
func (FinishedEvent) event()     {}
func (SelectedSeedEvent) event() {}

// Options tunes a run beyond the session configuration.
type Options struct {
	ItemSize   int
	QueueSize  int
	MaxResults int

	// AutosavePath + AutosaveCycle enable periodic session snapshots.
	AutosavePath  string
	AutosaveCycle int // minutes
}

// Subscription is one event consumer. Events are delivered blocking: the
// producer cannot outrun the consumer. Close releases the controller from
// the subscription; pending deliveries are dropped.
type Subscription struct {
	C    chan Event
	done chan struct{}
}

func (s *Subscription) Close() { close(s.done) }

// Done is closed once the subscription is released.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Controller is safe for concurrent use. One search runs at a time.
type Controller struct {
	log *log.Logger

	mu      sync.Mutex
	cur     session.Session
	cursor  int64
	running bool
	cancel  *atomic.Bool
	sink    *results.Sink
	saver   *session.Autosaver
	runDone chan struct{}
	subs    []*Subscription
}

func New(logger *log.Logger) *Controller {
	return &Controller{log: logger, sink: results.NewSink(0)}
}

// Subscribe registers an event consumer.
func (c *Controller) Subscribe() *Subscription {
	sub := &Subscription{C: make(chan Event), done: make(chan struct{})}
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return sub
}

func (c *Controller) publish(e Event) {
	c.mu.Lock()
	subs := append([]*Subscription(nil), c.subs...)
	c.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub.C <- e:
		case <-sub.done:
			c.drop(sub)
		}
	}
}

func (c *Controller) drop(sub *Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, s := range c.subs {
		if s == sub {
			c.subs = append(c.subs[:i], c.subs[i+1:]...)
			return
		}
	}
}

// SetSession replaces the configuration and results. Rejected while a
// search is running.
func (c *Controller) SetSession(s *session.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return fmt.Errorf("search is running")
	}
	c.cur = *s
	c.cursor = s.Search.StartSeed
	c.sink.Clear()
	c.sink.Add(s.Results)
	return nil
}

// Session snapshots the current state, with the progress cursor folded into
// the start seed so a save can be resumed without missing candidates.
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.cur
	s.Search.StartSeed = c.cursor
	s.Conds = append([]filter.Condition(nil), c.cur.Conds...)
	s.Results = c.sink.Seeds()
	return &s
}

// Results returns the current hits in insertion order.
func (c *Controller) Results() []int64 { return c.sink.Seeds() }

// Running reports whether a search is active.
func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// SelectSeed publishes a seed selection to subscribers.
func (c *Controller) SelectSeed(seed int64) {
	c.publish(SelectedSeedEvent{Seed: seed})
}

// Start validates the configuration and launches the search on its own
// controller goroutine. It returns immediately; completion is signalled by
// a FinishedEvent.
func (c *Controller) Start(opts Options) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("search is already running")
	}

	cancel := &atomic.Bool{}
	sink := c.sink
	if opts.MaxResults > 0 {
		sink = results.NewSink(opts.MaxResults)
		sink.Add(c.sink.Seeds())
		c.sink = sink
	}

	hooks := scheduler.Hooks{
		OnProgress: func(done, total uint64, seed int64) {
			c.mu.Lock()
			c.cursor = seed
			c.mu.Unlock()
			c.publish(ProgressEvent{Done: done, Total: total, Seed: seed})
		},
		OnResults: func(seeds []int64) bool {
			added, capped := sink.Add(seeds)
			if added > 0 {
				c.publish(ResultsEvent{Added: added, Seeds: seeds})
			}
			return capped
		},
	}

	sched, err := scheduler.New(c.cur.Search, c.cur.MC, c.cur.Conds, c.cur.Gen48,
		scheduler.Options{ItemSize: opts.ItemSize, QueueSize: opts.QueueSize}, cancel, hooks)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	c.cancel = cancel
	c.running = true
	c.runDone = make(chan struct{})
	done := c.runDone

	if opts.AutosavePath != "" && opts.AutosaveCycle > 0 {
		c.saver = session.NewAutosaver(opts.AutosavePath, opts.AutosaveCycle, c.Session, c.log)
		c.saver.Start()
	}
	c.mu.Unlock()

	go func() {
		defer close(done)
		sched.Run()

		c.mu.Lock()
		c.running = false
		if c.saver != nil {
			c.saver.Stop()
			c.saver = nil
		}
		capped := sink.CapReached()
		c.mu.Unlock()

		if capped && c.log != nil {
			c.log.Printf("result cap reached, search stopped")
		}
		c.publish(FinishedEvent{Complete: !cancel.Load(), CapReached: capped})
	}()
	return nil
}

// Stop requests cancellation. Workers finish their current seed and exit;
// the FinishedEvent carries the final state.
func (c *Controller) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel.Store(true)
	}
}

// Wait blocks until the current run has fully drained.
func (c *Controller) Wait() {
	c.mu.Lock()
	done := c.runDone
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}

// Package trigger coalesces re-runs of graph entry points fired by file changes.
package trigger

import (
	"context"
	"slices"
	"sync"
)

// RunFunc runs the graph named entry.
type RunFunc func(ctx context.Context, entry string) error

// Coalescer runs entry points one at a time through a single lane, so graphs
// that share tasks never execute concurrently. A fire for an entry that is
// already queued is dropped, which collapses any number of fires arriving
// during a run into one follow-up run.
type Coalescer struct {
	run     RunFunc
	onError func(entry string, err error)

	mu      sync.Mutex
	covers  map[string][]string
	queue   []string
	current string
	busy    bool
	wg      sync.WaitGroup
}

// New creates a Coalescer. onError receives the error of every failed run and may be nil.
func New(run RunFunc, onError func(entry string, err error)) *Coalescer {
	return &Coalescer{
		run:     run,
		onError: onError,
		covers:  make(map[string][]string),
	}
}

// Cover records that a run of entry also does the work of covered. A fire for
// covered is dropped while entry is queued, and queuing entry removes covered
// from the queue.
func (c *Coalescer) Cover(entry, covered string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.covers[entry] = append(c.covers[entry], covered)
}

// Fire requests a run of entry. It never blocks on the run itself. The lane
// stops once ctx is canceled and drops whatever is still queued.
func (c *Coalescer) Fire(ctx context.Context, entry string) {
	c.mu.Lock()
	if c.absorbed(entry) {
		c.mu.Unlock()
		return
	}
	c.queue = slices.DeleteFunc(c.queue, func(queued string) bool {
		return slices.Contains(c.covers[entry], queued)
	})
	c.queue = append(c.queue, entry)
	if c.busy {
		c.mu.Unlock()
		return
	}
	c.busy = true
	c.wg.Add(1)
	c.mu.Unlock()

	go c.loop(ctx)
}

// absorbed reports whether a queued run already does the work of entry.
// Callers must hold c.mu.
func (c *Coalescer) absorbed(entry string) bool {
	for _, queued := range c.queue {
		if queued == entry || slices.Contains(c.covers[queued], entry) {
			return true
		}
	}
	return false
}

func (c *Coalescer) loop(ctx context.Context) {
	defer c.wg.Done()
	first := true
	for {
		c.mu.Lock()
		if len(c.queue) == 0 || (!first && ctx.Err() != nil) {
			c.queue = nil
			c.current = ""
			c.busy = false
			c.mu.Unlock()
			return
		}
		entry := c.queue[0]
		c.queue = c.queue[1:]
		c.current = entry
		c.mu.Unlock()
		first = false

		if err := c.run(ctx, entry); err != nil && c.onError != nil {
			c.onError(entry, err)
		}
	}
}

// Running reports whether entry is currently running.
func (c *Coalescer) Running(entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy && c.current == entry
}

// Wait blocks until no run is in flight.
func (c *Coalescer) Wait() {
	c.wg.Wait()
}

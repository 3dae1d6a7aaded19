// Package gallerytest provides test doubles for the gallery engine.
package gallerytest

import (
	"sort"
	"sync"
	"time"

	"lightbox/internal/gallery"
)

// ManualClock is a gallery.Clock whose time only moves when Advance is called.
// Due callbacks run synchronously on the goroutine calling Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Duration
	seq    uint64
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Duration
	seq      uint64
	f        func()
	stopped  bool
}

// NewManualClock returns a clock at simulated time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// AfterFunc schedules f to run once simulated time reaches now+d.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) gallery.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &manualTimer{clock: c, deadline: c.now + d, seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Stop cancels the timer. It reports whether the timer was still pending.
func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	if t.stopped {
		return false
	}
	t.stopped = true
	t.clock.remove(t)
	return true
}

// Advance moves simulated time forward by d, firing every timer that falls
// due in deadline order, including timers armed by callbacks along the way.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.Slice(c.timers, func(i, j int) bool {
			if c.timers[i].deadline == c.timers[j].deadline {
				return c.timers[i].seq < c.timers[j].seq
			}
			return c.timers[i].deadline < c.timers[j].deadline
		})
		if len(c.timers) == 0 || c.timers[0].deadline > target {
			c.now = target
			c.mu.Unlock()
			return
		}
		next := c.timers[0]
		c.timers = c.timers[1:]
		next.stopped = true
		c.now = next.deadline
		c.mu.Unlock()

		next.f()
	}
}

// Pending returns the number of armed timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// Now returns the elapsed simulated time.
func (c *ManualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// remove must be called with mu held.
func (c *ManualClock) remove(t *manualTimer) {
	for i, other := range c.timers {
		if other == t {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return
		}
	}
}

package ui

import (
	"sync"
	"time"
)

// DefaultResizeDuration is how long the terminal must stay one size before
// slides are re-scaled.
const DefaultResizeDuration = 150 * time.Millisecond

// ResizeDebouncer coalesces a burst of terminal resizes into one
// resizeSettledMsg on the bus, carrying the last size seen.
type ResizeDebouncer struct {
	mu     sync.Mutex
	bus    *EventBus
	delay  time.Duration
	timer  *time.Timer
	gen    uint64
	width  int
	height int
}

// NewResizeDebouncer creates a debouncer that reports through bus.
func NewResizeDebouncer(bus *EventBus, delay time.Duration) *ResizeDebouncer {
	return &ResizeDebouncer{bus: bus, delay: delay}
}

// Resize records the new size and restarts the quiet period.
func (d *ResizeDebouncer) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.width, d.height = width, height
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() { d.settle(gen) })
}

// settle posts the size unless a later Resize or Cancel superseded gen.
func (d *ResizeDebouncer) settle(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	msg := resizeSettledMsg{width: d.width, height: d.height}
	d.mu.Unlock()

	d.bus.Send(msg)
}

// Cancel drops any pending resize.
func (d *ResizeDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

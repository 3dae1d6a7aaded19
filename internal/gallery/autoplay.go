package gallery

import (
	"sync"
	"time"
)

// Timer is a cancellable one-shot timer.
type Timer interface {
	Stop() bool
}

// Clock schedules deferred callbacks. RealClock is backed by time.AfterFunc;
// tests substitute a manual clock to advance simulated time.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall clock.
var RealClock Clock = realClock{}

// AutoplayScheduler calls tick every interval while Running.
// At most one timer is armed at any time.
type AutoplayScheduler struct {
	mu       sync.Mutex
	clock    Clock
	tick     func()
	interval time.Duration
	timer    Timer
	running  bool
	gen      uint64
}

// NewAutoplayScheduler creates a stopped scheduler. A nil clock means RealClock.
func NewAutoplayScheduler(clock Clock, tick func()) *AutoplayScheduler {
	if clock == nil {
		clock = RealClock
	}
	return &AutoplayScheduler{
		clock: clock,
		tick:  tick,
	}
}

// Start begins ticking every interval. Starting a running scheduler is a no-op.
func (s *AutoplayScheduler) Start(interval time.Duration) {
	if interval <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.interval = interval
	s.gen++
	s.arm(s.gen)
}

// Stop cancels the pending tick. Stopping a stopped scheduler is a no-op.
func (s *AutoplayScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Running reports whether the scheduler is in the Running state.
func (s *AutoplayScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Interval returns the interval of the current (or last) run.
func (s *AutoplayScheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// arm must be called with mu held.
func (s *AutoplayScheduler) arm(gen uint64) {
	s.timer = s.clock.AfterFunc(s.interval, func() {
		s.fire(gen)
	})
}

func (s *AutoplayScheduler) fire(gen uint64) {
	s.mu.Lock()
	if !s.running || gen != s.gen {
		// Stopped (or restarted) after this timer was armed.
		s.mu.Unlock()
		return
	}
	s.arm(gen)
	tick := s.tick
	s.mu.Unlock()

	if tick != nil {
		tick()
	}
}

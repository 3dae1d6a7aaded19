package gallery_test

import (
	"sync/atomic"
	"testing"
	"time"

	"lightbox/internal/gallery"
	"lightbox/internal/gallery/gallerytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(t *testing.T) (*gallery.AutoplayScheduler, *gallerytest.ManualClock, *atomic.Int32) {
	t.Helper()
	clock := gallerytest.NewManualClock()
	var ticks atomic.Int32
	s := gallery.NewAutoplayScheduler(clock, func() { ticks.Add(1) })
	t.Cleanup(s.Stop)
	return s, clock, &ticks
}

func TestSchedulerTicksEveryInterval(t *testing.T) {
	s, clock, ticks := newScheduler(t)
	s.Start(time.Second)
	require.True(t, s.Running())
	assert.Equal(t, time.Second, s.Interval())

	clock.Advance(999 * time.Millisecond)
	assert.Equal(t, int32(0), ticks.Load())

	clock.Advance(time.Millisecond)
	assert.Equal(t, int32(1), ticks.Load())

	clock.Advance(3 * time.Second)
	assert.Equal(t, int32(4), ticks.Load())
	assert.Equal(t, 1, clock.Pending(), "one timer armed at a time")
}

func TestSchedulerDoubleStart(t *testing.T) {
	s, clock, ticks := newScheduler(t)
	s.Start(time.Second)
	s.Start(time.Second)

	assert.Equal(t, 1, clock.Pending())
	clock.Advance(2 * time.Second)
	assert.Equal(t, int32(2), ticks.Load())
}

func TestSchedulerStop(t *testing.T) {
	s, clock, ticks := newScheduler(t)
	s.Start(time.Second)
	s.Stop()
	s.Stop()

	assert.False(t, s.Running())
	assert.Equal(t, 0, clock.Pending())
	clock.Advance(5 * time.Second)
	assert.Equal(t, int32(0), ticks.Load())
}

func TestSchedulerRestartIsClean(t *testing.T) {
	s, clock, ticks := newScheduler(t)
	s.Start(time.Second)
	clock.Advance(500 * time.Millisecond)
	s.Stop()
	s.Start(time.Second)

	assert.Equal(t, 1, clock.Pending())
	// The first run would have fired at 1s; the restarted one fires at 1.5s.
	clock.Advance(600 * time.Millisecond)
	assert.Equal(t, int32(0), ticks.Load())
	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, int32(1), ticks.Load())
}

func TestSchedulerIgnoresNonPositiveInterval(t *testing.T) {
	s, clock, _ := newScheduler(t)
	s.Start(0)
	assert.False(t, s.Running())
	assert.Equal(t, 0, clock.Pending())
}

func TestSchedulerStopFromTick(t *testing.T) {
	clock := gallerytest.NewManualClock()
	var (
		s     *gallery.AutoplayScheduler
		ticks int
	)
	s = gallery.NewAutoplayScheduler(clock, func() {
		ticks++
		s.Stop()
	})
	s.Start(time.Second)

	clock.Advance(5 * time.Second)
	assert.Equal(t, 1, ticks)
	assert.Equal(t, 0, clock.Pending())
}

func TestSchedulerRealClock(t *testing.T) {
	var ticks atomic.Int32
	s := gallery.NewAutoplayScheduler(nil, func() { ticks.Add(1) })
	s.Start(5 * time.Millisecond)
	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	s.Stop()

	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	assert.LessOrEqual(t, ticks.Load(), after+1, "at most one tick already in flight at Stop")
}

package gallery_test

import (
	"errors"
	"testing"
	"time"
	"unsafe"

	"lightbox/internal/gallery"
	"lightbox/internal/gallery/gallerytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLightbox(t *testing.T, n int) (*gallery.Lightbox, *gallerytest.ManualClock, *int) {
	t.Helper()
	clock := gallerytest.NewManualClock()
	closed := new(int)
	opts := gallery.SlideshowOptions()
	opts.Clock = clock
	opts.SlideInterval = time.Second
	opts.OnClose = func() { *closed++ }
	lb := gallery.NewLightbox(records(n), opts)
	t.Cleanup(lb.Close)
	return lb, clock, closed
}

func TestLightboxOpenClose(t *testing.T) {
	lb, clock, closed := newLightbox(t, 5)
	require.False(t, lb.IsOpen())
	assert.Nil(t, lb.Session())

	s, err := lb.Open(3)
	require.NoError(t, err)
	assert.True(t, lb.IsOpen())
	assert.Same(t, s, lb.Session())
	assert.Equal(t, 3, s.Index())
	assert.Equal(t, gallery.VariantModal, s.Variant())
	assert.Equal(t, "4 of 5", s.Counter())

	require.True(t, s.HandleKey("Escape"))
	assert.False(t, lb.IsOpen())
	assert.False(t, s.KeysRegistered())
	assert.Equal(t, 1, *closed)
	assert.Equal(t, 0, clock.Pending())

	lb.Close()
	assert.Equal(t, 1, *closed, "nothing left to close")
}

func TestLightboxReopenIsFresh(t *testing.T) {
	lb, clock, _ := newLightbox(t, 5)

	first, err := lb.Open(1)
	require.NoError(t, err)
	require.True(t, first.Play())
	require.True(t, first.Next())
	lb.Close()

	second, err := lb.Open(0)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Equal(t, 0, second.Index())
	assert.False(t, second.IsPlaying(), "autoplay state does not survive a close")
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(5 * time.Second)
	assert.Equal(t, 2, first.Index(), "closed session never moves again")
}

func TestLightboxOpenReplacesSession(t *testing.T) {
	lb, _, closed := newLightbox(t, 5)

	first, err := lb.Open(0)
	require.NoError(t, err)
	second, err := lb.Open(4)
	require.NoError(t, err)

	assert.False(t, first.IsOpen())
	assert.Same(t, second, lb.Session())
	assert.Equal(t, 0, *closed, "a replaced session is unmounted, not closed")

	// Closing the replaced session later must not clear the live one.
	first.Close()
	assert.Same(t, second, lb.Session())
}

func TestLightboxOpenOutOfRange(t *testing.T) {
	lb, _, _ := newLightbox(t, 3)
	_, err := lb.Open(3)
	var oor *gallery.OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.False(t, lb.IsOpen())
}

func TestLightboxSetImages(t *testing.T) {
	lb, _, _ := newLightbox(t, 5)
	s, err := lb.Open(4)
	require.NoError(t, err)

	lb.SetImages(records(2))
	assert.Equal(t, 2, lb.Len())
	assert.Len(t, lb.Records(), 2)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Index())

	lb.Close()
	lb.SetImages(records(4))
	assert.Equal(t, 4, lb.Len())
	assert.Equal(t, 2, s.Len(), "closed session keeps its images")
}

func TestLightboxSlidesEncodedOnce(t *testing.T) {
	lb, _, _ := newLightbox(t, 3)
	first := lb.Slides()
	require.Len(t, first, 3)
	require.True(t, first[0].Valid)

	again := lb.Slides()
	assert.Same(t, unsafe.StringData(first[0].URI), unsafe.StringData(again[0].URI))

	s, err := lb.Open(0)
	require.NoError(t, err)
	cur, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, unsafe.StringData(first[0].URI), unsafe.StringData(cur.URI), "open reuses the grid slides")

	lb.SetImages(records(2))
	reloaded := lb.Slides()
	require.Len(t, reloaded, 2)
	assert.NotSame(t, unsafe.StringData(first[0].URI), unsafe.StringData(reloaded[0].URI))
	cur, ok = s.Current()
	require.True(t, ok)
	assert.Same(t, unsafe.StringData(reloaded[0].URI), unsafe.StringData(cur.URI))
}

func TestLightboxForcesModal(t *testing.T) {
	lb := gallery.NewLightbox(records(2), gallery.DefaultOptions())
	s, err := lb.Open(0)
	require.NoError(t, err)
	defer lb.Close()
	assert.Equal(t, gallery.VariantModal, s.Variant())
	assert.True(t, s.KeyMap().Close.Enabled())
}

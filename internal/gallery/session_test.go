package gallery_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"lightbox/internal/gallery"
	"lightbox/internal/gallery/gallerytest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func records(n int) []gallery.ImageRecord {
	out := make([]gallery.ImageRecord, n)
	for i := range out {
		out[i] = gallery.ImageRecord{
			ID:       fmt.Sprintf("img-%d", i),
			Payload:  gallery.Encoded{Data: pngHeader, MIMEType: "image/png"},
			AltText:  fmt.Sprintf("Photo %c", 'A'+i),
			Filename: fmt.Sprintf("%02d.png", i),
			Order:    i,
		}
	}
	return out
}

// indexLog records OnIndexChange calls.
type indexLog struct {
	mu      sync.Mutex
	indices []int
}

func (l *indexLog) record(i int) {
	l.mu.Lock()
	l.indices = append(l.indices, i)
	l.mu.Unlock()
}

func (l *indexLog) get() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.indices...)
}

func mount(t *testing.T, n int, opts gallery.Options) (*gallery.Session, *gallerytest.ManualClock, *indexLog) {
	t.Helper()
	clock := gallerytest.NewManualClock()
	log := &indexLog{}
	opts.Clock = clock
	opts.OnIndexChange = log.record
	s, err := gallery.Mount(records(n), opts)
	require.NoError(t, err)
	t.Cleanup(s.Unmount)
	return s, clock, log
}

func TestArrowRightWrapsAround(t *testing.T) {
	s, _, log := mount(t, 3, gallery.DefaultOptions())

	require.True(t, s.HandleKey("ArrowRight"))
	require.True(t, s.HandleKey("ArrowRight"))
	assert.Equal(t, 2, s.Index())

	require.True(t, s.HandleKey("ArrowRight"))
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, []int{1, 2, 0}, log.get())

	require.True(t, s.HandleKey("left"))
	assert.Equal(t, 2, s.Index())
}

func TestEmptyCollectionIsSafe(t *testing.T) {
	s, clock, log := mount(t, 0, gallery.HeroOptions())

	_, ok := s.Current()
	assert.False(t, ok, "empty collection renders the placeholder")
	assert.False(t, s.Next())
	assert.False(t, s.Previous())
	assert.NoError(t, s.GoTo(3))
	assert.False(t, s.Play())
	assert.False(t, s.IsPlaying())
	assert.False(t, s.IsLoading())
	assert.False(t, s.ShowNavigation())
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, "", s.Counter())
	assert.Equal(t, 0, clock.Pending())
	assert.Empty(t, log.get())
}

func TestThumbnailClickScrollsStrip(t *testing.T) {
	s, _, log := mount(t, 6, gallery.DefaultOptions())
	strip := s.Thumbnails()
	before := strip.Requests()

	require.NoError(t, s.GoTo(4))
	assert.Equal(t, 4, s.Index())
	assert.Equal(t, []int{4}, log.get())
	assert.Equal(t, before+1, strip.Requests())

	// 6*64 + 5*16 = 464 wide in a 448 viewport: max offset 16.
	assert.Equal(t, 16.0, strip.Target())
}

func TestGoToOutOfRangeLeavesIndex(t *testing.T) {
	s, _, log := mount(t, 6, gallery.DefaultOptions())
	require.NoError(t, s.GoTo(2))

	err := s.GoTo(6)
	var oor *gallery.OutOfRangeError
	require.True(t, errors.As(err, &oor))
	assert.Equal(t, 2, s.Index())
	assert.Equal(t, []int{2}, log.get())
}

func TestGoToSameIndexDoesNotNotify(t *testing.T) {
	s, _, log := mount(t, 3, gallery.DefaultOptions())
	require.NoError(t, s.GoTo(0))
	assert.Empty(t, log.get())
}

func TestSingleImageIsStatic(t *testing.T) {
	opts := gallery.HeroOptions()
	s, clock, log := mount(t, 1, opts)

	assert.False(t, s.ShowNavigation())
	assert.False(t, s.Next())
	assert.False(t, s.Previous())
	assert.False(t, s.IsPlaying(), "autoplay needs more than one image")
	assert.False(t, s.TogglePlay())
	assert.Equal(t, 0, clock.Pending())
	assert.False(t, s.Thumbnails().Visible())
	assert.Equal(t, "", s.Counter())
	assert.Empty(t, log.get())
}

func TestMountRejectsInitialIndex(t *testing.T) {
	opts := gallery.DefaultOptions()
	opts.InitialIndex = 5
	_, err := gallery.Mount(records(3), opts)
	var oor *gallery.OutOfRangeError
	require.True(t, errors.As(err, &oor))

	// Nothing to index into, nothing to reject.
	s, err := gallery.Mount(nil, opts)
	require.NoError(t, err)
	s.Unmount()
}

func TestMountInitialState(t *testing.T) {
	opts := gallery.SlideshowOptions()
	opts.InitialIndex = 2
	s, _, _ := mount(t, 4, opts)

	assert.Equal(t, 2, s.Index())
	assert.True(t, s.IsOpen())
	assert.True(t, s.IsLoading())
	assert.True(t, s.KeysRegistered())
	assert.False(t, s.IsPlaying(), "slideshow starts paused")
	assert.Equal(t, gallery.VariantModal, s.Variant())
	assert.NotEmpty(t, s.ID())

	slide, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Photo C", slide.Alt)

	s.MarkLoaded()
	assert.False(t, s.IsLoading())
}

func TestCounterFormats(t *testing.T) {
	inline, _, _ := mount(t, 3, gallery.DefaultOptions())
	assert.Equal(t, "1 / 3", inline.Counter())

	modal, _, _ := mount(t, 3, gallery.SlideshowOptions())
	require.True(t, modal.Next())
	assert.Equal(t, "2 of 3", modal.Counter())

	single, _, _ := mount(t, 1, gallery.SlideshowOptions())
	assert.Equal(t, "1 of 1", single.Counter())
}

func TestAutoplayAdvancesSession(t *testing.T) {
	opts := gallery.HeroOptions()
	opts.SlideInterval = time.Second
	s, clock, log := mount(t, 3, opts)
	require.True(t, s.IsPlaying())
	require.True(t, s.AutoplayRunning())

	clock.Advance(time.Second)
	assert.Equal(t, 1, s.Index())
	clock.Advance(2 * time.Second)
	assert.Equal(t, 0, s.Index())
	assert.Equal(t, []int{1, 2, 0}, log.get())
}

func TestManualNavigationKeepsAutoplay(t *testing.T) {
	opts := gallery.HeroOptions()
	opts.SlideInterval = time.Second
	s, clock, _ := mount(t, 4, opts)

	clock.Advance(500 * time.Millisecond)
	require.True(t, s.Next())
	assert.True(t, s.IsPlaying())

	clock.Advance(500 * time.Millisecond)
	assert.Equal(t, 2, s.Index())
}

func TestSpaceTogglesAutoplay(t *testing.T) {
	opts := gallery.DefaultOptions()
	opts.SlideInterval = time.Second
	s, clock, _ := mount(t, 3, opts)
	require.False(t, s.IsPlaying())

	require.True(t, s.HandleKey(" "))
	assert.True(t, s.IsPlaying())
	assert.Equal(t, 1, clock.Pending())

	require.True(t, s.HandleKey("space"))
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 0, clock.Pending())

	clock.Advance(3 * time.Second)
	assert.Equal(t, 0, s.Index())
}

func TestPauseThenPlayRestartsInterval(t *testing.T) {
	opts := gallery.HeroOptions()
	opts.SlideInterval = time.Second
	s, clock, _ := mount(t, 3, opts)

	clock.Advance(900 * time.Millisecond)
	s.Pause()
	require.True(t, s.Play())
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(900 * time.Millisecond)
	assert.Equal(t, 0, s.Index())
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, 1, s.Index())
}

func TestTeardownStopsAutoplay(t *testing.T) {
	for _, teardown := range []struct {
		name string
		fn   func(*gallery.Session)
	}{
		{"close", (*gallery.Session).Close},
		{"unmount", (*gallery.Session).Unmount},
	} {
		t.Run(teardown.name, func(t *testing.T) {
			opts := gallery.HeroOptions()
			opts.SlideInterval = time.Second
			s, clock, log := mount(t, 3, opts)

			teardown.fn(s)
			assert.False(t, s.IsOpen())
			assert.False(t, s.IsPlaying())
			assert.False(t, s.KeysRegistered())
			assert.Equal(t, 0, clock.Pending())

			clock.Advance(10 * time.Second)
			assert.Empty(t, log.get())
		})
	}
}

func TestClosedSessionIgnoresInput(t *testing.T) {
	s, _, log := mount(t, 3, gallery.SlideshowOptions())
	s.Close()

	assert.False(t, s.Next())
	assert.False(t, s.Previous())
	assert.NoError(t, s.GoTo(2))
	assert.False(t, s.Play())
	assert.False(t, s.HandleKey("right"))

	s.PointerDown(100, 100)
	s.PointerMove(20, 100)
	assert.Equal(t, gallery.SwipeNone, s.PointerUp(20))
	assert.Equal(t, 0, s.Index())
	assert.Empty(t, log.get())
}

func TestEscapeClosesModalOnly(t *testing.T) {
	closed := 0
	opts := gallery.SlideshowOptions()
	opts.OnClose = func() { closed++ }
	modal, _, _ := mount(t, 3, opts)

	require.True(t, modal.HandleKey("esc"))
	assert.False(t, modal.IsOpen())
	assert.Equal(t, 1, closed)

	modal.Close()
	assert.Equal(t, 1, closed, "closing twice fires once")

	inline, _, _ := mount(t, 3, gallery.DefaultOptions())
	assert.False(t, inline.HandleKey("Escape"))
	assert.True(t, inline.IsOpen())
}

func TestUnmountDoesNotFireOnClose(t *testing.T) {
	closed := 0
	opts := gallery.SlideshowOptions()
	opts.OnClose = func() { closed++ }
	s, _, _ := mount(t, 3, opts)

	s.Unmount()
	s.Close()
	assert.Equal(t, 0, closed)
}

func TestUnknownKeyNotConsumed(t *testing.T) {
	s, _, _ := mount(t, 3, gallery.DefaultOptions())
	assert.False(t, s.HandleKey("x"))
	assert.False(t, s.HandleKey("up"))
}

func TestSwipeNavigation(t *testing.T) {
	s, _, log := mount(t, 3, gallery.DefaultOptions())

	s.PointerDown(200, 100)
	s.PointerMove(150, 102)
	assert.True(t, s.Gesture().Dragging)
	assert.Equal(t, gallery.SwipeLeft, s.PointerUp(140))
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, gallery.GestureState{}, s.Gesture())

	s.PointerDown(100, 100)
	s.PointerMove(130, 100)
	assert.Equal(t, gallery.SwipeNone, s.PointerUp(130), "30px is not a swipe")
	assert.Equal(t, 1, s.Index())

	s.PointerDown(100, 100)
	s.PointerMove(100, 160)
	assert.Equal(t, gallery.SwipeNone, s.PointerUp(100), "vertical scroll")

	s.PointerDown(100, 100)
	s.PointerMove(170, 100)
	assert.Equal(t, gallery.SwipeRight, s.PointerUp(170))
	assert.Equal(t, 0, s.Index())

	s.PointerDown(100, 100)
	s.PointerMove(170, 100)
	require.Equal(t, gallery.SwipeRight, s.PointerUp(170))
	assert.Equal(t, 2, s.Index(), "swiping right from the first image wraps")
	assert.Equal(t, []int{1, 0, 2}, log.get())
}

func TestPointerCancelDropsGesture(t *testing.T) {
	s, _, _ := mount(t, 3, gallery.DefaultOptions())
	s.PointerDown(200, 100)
	s.PointerMove(100, 100)
	s.PointerCancel()
	assert.Equal(t, gallery.SwipeNone, s.PointerUp(100))
	assert.Equal(t, 0, s.Index())
}

func TestSetImagesClampsIndex(t *testing.T) {
	opts := gallery.DefaultOptions()
	opts.InitialIndex = 4
	s, _, log := mount(t, 5, opts)

	s.SetImages(records(2))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 1, s.Index())
	assert.Equal(t, []int{1}, log.get())

	s.SetImages(nil)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Index())
	assert.False(t, s.IsLoading())
	_, ok := s.Current()
	assert.False(t, ok)

	s.SetImages(records(3))
	assert.True(t, s.IsLoading())
	assert.True(t, s.ShowNavigation())
}

func TestSetImagesStopsAndResumesAutoplay(t *testing.T) {
	opts := gallery.HeroOptions()
	opts.SlideInterval = time.Second
	s, clock, _ := mount(t, 3, opts)

	s.SetImages(records(1))
	assert.False(t, s.IsPlaying())
	assert.Equal(t, 0, clock.Pending())

	s.SetImages(records(4))
	assert.True(t, s.IsPlaying(), "auto-slide resumes once there is something to show")
	clock.Advance(time.Second)
	assert.Equal(t, 1, s.Index())
}

func TestSetImagesAfterUnmount(t *testing.T) {
	s, _, _ := mount(t, 3, gallery.DefaultOptions())
	s.Unmount()
	s.SetImages(records(5))
	assert.Equal(t, 3, s.Len())
}

func TestSlidesReturnsCopy(t *testing.T) {
	s, _, _ := mount(t, 2, gallery.DefaultOptions())
	slides := s.Slides()
	slides[0].Alt = "changed"

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Photo A", cur.Alt)
}

func TestCustomKeyMap(t *testing.T) {
	keys := gallery.DefaultKeyMap(gallery.VariantInline)
	keys.Next.SetKeys("l")
	opts := gallery.DefaultOptions()
	opts.Keys = &keys
	s, _, _ := mount(t, 3, opts)

	assert.False(t, s.HandleKey("right"))
	assert.True(t, s.HandleKey("l"))
	assert.Equal(t, 1, s.Index())
}

func TestConcurrentNavigation(t *testing.T) {
	opts := gallery.HeroOptions()
	opts.SlideInterval = time.Millisecond
	s, clock, _ := mount(t, 7, opts)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				switch (i + j) % 4 {
				case 0:
					s.Next()
				case 1:
					s.Previous()
				case 2:
					s.TogglePlay()
				default:
					_ = s.GoTo(j % 7)
				}
			}
		}(i)
	}
	for i := 0; i < 50; i++ {
		clock.Advance(time.Millisecond)
	}
	wg.Wait()

	idx := s.Index()
	assert.True(t, idx >= 0 && idx < 7)
	s.Pause()
	assert.Equal(t, 0, clock.Pending())
}

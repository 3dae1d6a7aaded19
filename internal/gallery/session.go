package gallery

import (
	"fmt"
	"sync"
	"time"

	"lightbox/internal/logging"

	"github.com/google/uuid"
)

// Variant selects the presentation shell a session serves.
type Variant int

const (
	// VariantInline is the embedded slider; always open while mounted.
	VariantInline Variant = iota
	// VariantModal is the full-screen lightbox with an open/close lifecycle.
	VariantModal
)

func (v Variant) String() string {
	if v == VariantModal {
		return "modal"
	}
	return "inline"
}

// Call-site interval defaults.
const (
	DefaultSliderInterval    = 6 * time.Second
	DefaultHeroInterval      = 5 * time.Second
	DefaultSlideshowInterval = 3 * time.Second
)

// Options configure a session at mount time.
type Options struct {
	Variant      Variant
	InitialIndex int

	AutoSlide     bool
	SlideInterval time.Duration

	MinSwipeDistance float64
	DragThreshold    float64

	ThumbnailWidth float64
	ThumbnailGap   float64
	StripViewport  float64

	// Keys overrides DefaultKeyMap(Variant).
	Keys *KeyMap

	// Clock defaults to RealClock.
	Clock Clock

	// OnIndexChange runs after every index change, outside the session lock.
	// Autoplay changes arrive on the timer goroutine.
	OnIndexChange func(index int)
	// OnClose runs once when a modal session is closed.
	OnClose func()
}

// DefaultOptions is the inline property slider: no autoplay.
func DefaultOptions() Options {
	return Options{
		Variant:          VariantInline,
		SlideInterval:    DefaultSliderInterval,
		MinSwipeDistance: DefaultMinSwipeDistance,
		DragThreshold:    DefaultDragThreshold,
		ThumbnailWidth:   DefaultThumbnailWidth,
		ThumbnailGap:     DefaultThumbnailGap,
		StripViewport:    DefaultStripViewport,
	}
}

// HeroOptions is the inline hero slideshow: autoplay on, dots instead of
// thumbnails are left to the shell.
func HeroOptions() Options {
	o := DefaultOptions()
	o.AutoSlide = true
	o.SlideInterval = DefaultHeroInterval
	return o
}

// SlideshowOptions is the modal event slideshow, started paused.
func SlideshowOptions() Options {
	o := DefaultOptions()
	o.Variant = VariantModal
	o.SlideInterval = DefaultSlideshowInterval
	return o
}

// Session is one mounted (or opened) gallery. All state dies with it: a
// closed session never comes back, and a reopen builds a new one.
type Session struct {
	mu sync.Mutex

	id   string
	opts Options

	slides  []Slide
	index   int
	playing bool
	open    bool
	loading bool
	torn    bool

	gesture  *GestureRecognizer
	autoplay *AutoplayScheduler
	keys     *KeyboardBindings
	strip    *ThumbnailStrip
}

// Mount creates an open session over records. An InitialIndex outside the
// collection is an *OutOfRangeError; on an empty collection it is ignored.
func Mount(records []ImageRecord, opts Options) (*Session, error) {
	return mountSlides(Normalize(records), opts)
}

func mountSlides(slides []Slide, opts Options) (*Session, error) {
	index := 0
	if len(slides) > 0 {
		i, err := GoTo(opts.InitialIndex, len(slides))
		if err != nil {
			return nil, fmt.Errorf("mount gallery: %w", err)
		}
		index = i
	}

	if opts.SlideInterval <= 0 {
		opts.SlideInterval = DefaultSliderInterval
	}
	keyMap := DefaultKeyMap(opts.Variant)
	if opts.Keys != nil {
		keyMap = *opts.Keys
	}

	s := &Session{
		id:      uuid.NewString(),
		opts:    opts,
		slides:  slides,
		index:   index,
		open:    true,
		loading: len(slides) > 0,
		gesture: NewGestureRecognizer(opts.DragThreshold, opts.MinSwipeDistance),
		keys:    NewKeyboardBindings(keyMap),
		strip:   NewThumbnailStrip(len(slides), opts.ThumbnailWidth, opts.ThumbnailGap, opts.StripViewport),
	}
	s.autoplay = NewAutoplayScheduler(opts.Clock, s.autoTick)

	s.keys.Register()
	if s.strip.ScrollIntoView(index) {
		s.strip.Settle()
	}
	if opts.AutoSlide && len(slides) > 1 {
		s.playLocked()
	}

	logging.Session("session %s mounted: variant=%s images=%d index=%d autoplay=%v",
		s.id, opts.Variant, len(slides), index, s.playing)
	logging.AuditWithSession(s.id).SessionMount(opts.Variant.String(), len(slides), index)
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Variant returns the shell this session serves.
func (s *Session) Variant() Variant { return s.opts.Variant }

// Len returns the number of images.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slides)
}

// Index returns the current index (0 for an empty collection).
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the slide at the current index.
func (s *Session) Current() (Slide, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.slides) == 0 {
		return Slide{}, false
	}
	return s.slides[s.index], true
}

// Slides returns a copy of the normalized collection.
func (s *Session) Slides() []Slide {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Slide, len(s.slides))
	copy(out, s.slides)
	return out
}

// IsPlaying reports the autoplay state.
func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// IsOpen reports whether the session is open. Inline sessions are open until
// unmounted.
func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// IsLoading reports whether the current image is still awaiting first paint.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// MarkLoaded clears the loading flag once the shell has painted an image.
func (s *Session) MarkLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		s.loading = false
		logging.SessionDebug("session %s: first image painted", s.id)
	}
}

// ShowNavigation reports whether arrows, counters and indicators render.
func (s *Session) ShowNavigation() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slides) > 1
}

// Counter renders the position label: "3 of 8" for the modal, "3 / 8" for
// the inline slider (empty when there is nothing to navigate).
func (s *Session) Counter() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.slides)
	if s.opts.Variant == VariantModal {
		if n == 0 {
			return ""
		}
		return fmt.Sprintf("%d of %d", s.index+1, n)
	}
	if n <= 1 {
		return ""
	}
	return fmt.Sprintf("%d / %d", s.index+1, n)
}

// Thumbnails returns the session's thumbnail strip.
func (s *Session) Thumbnails() *ThumbnailStrip { return s.strip }

// KeyMap returns the bindings in effect.
func (s *Session) KeyMap() KeyMap { return s.keys.KeyMap() }

// KeysRegistered reports whether keyboard bindings are live.
func (s *Session) KeysRegistered() bool { return s.keys.Registered() }

// Gesture returns the transient gesture state.
func (s *Session) Gesture() GestureState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gesture.State()
}

// AutoplayRunning reports whether the scheduler has a live timer.
func (s *Session) AutoplayRunning() bool { return s.autoplay.Running() }

// Next advances one image, wrapping at the end. No-op for ≤1 images or a
// closed session. It reports whether the index changed.
func (s *Session) Next() bool {
	s.mu.Lock()
	idx, changed := s.stepLocked(Next)
	s.mu.Unlock()

	if changed {
		logging.NavigationDebug("session %s: next -> %d", s.id, idx)
		s.notifyIndex(idx)
	}
	return changed
}

// Previous goes back one image, wrapping at the start.
func (s *Session) Previous() bool {
	s.mu.Lock()
	idx, changed := s.stepLocked(Previous)
	s.mu.Unlock()

	if changed {
		logging.NavigationDebug("session %s: previous -> %d", s.id, idx)
		s.notifyIndex(idx)
	}
	return changed
}

// GoTo jumps to index, as a thumbnail or grid click does, and scrolls the
// thumbnail strip to it. Out-of-range indices are reported, never clamped;
// an empty or closed session ignores the call.
func (s *Session) GoTo(index int) error {
	s.mu.Lock()
	if s.torn || len(s.slides) == 0 {
		s.mu.Unlock()
		return nil
	}
	i, err := GoTo(index, len(s.slides))
	if err != nil {
		s.mu.Unlock()
		logging.NavigationWarn("session %s: %v", s.id, err)
		return err
	}
	changed := i != s.index
	s.index = i
	s.strip.ScrollIntoView(i)
	s.mu.Unlock()

	if changed {
		logging.NavigationDebug("session %s: goto -> %d", s.id, i)
		s.notifyIndex(i)
	}
	return nil
}

// Play starts autoplay. Only an open session with more than one image plays.
func (s *Session) Play() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playLocked()
}

// Pause stops autoplay without touching the index.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pauseLocked()
}

// TogglePlay flips Running/Stopped and returns the new playing state.
func (s *Session) TogglePlay() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.playing {
		s.pauseLocked()
	} else {
		s.playLocked()
	}
	logging.AutoplayDebug("session %s: toggle -> playing=%v", s.id, s.playing)
	return s.playing
}

// PointerDown starts a gesture (touchstart / mousedown).
func (s *Session) PointerDown(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn {
		return
	}
	s.gesture.Start(x, y)
}

// PointerMove feeds a gesture (touchmove / mousemove).
func (s *Session) PointerMove(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.torn {
		return
	}
	s.gesture.Move(x, y)
}

// PointerUp completes a gesture (touchend / mouseup) and applies the swipe.
func (s *Session) PointerUp(x float64) Swipe {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return SwipeNone
	}
	swipe := s.gesture.End(x)

	var (
		idx     int
		changed bool
	)
	switch swipe {
	case SwipeLeft:
		idx, changed = s.stepLocked(Next)
	case SwipeRight:
		idx, changed = s.stepLocked(Previous)
	}
	s.mu.Unlock()

	if swipe != SwipeNone {
		logging.GestureDebug("session %s: %s", s.id, swipe)
	}
	if changed {
		s.notifyIndex(idx)
	}
	return swipe
}

// PointerCancel abandons the in-flight gesture (touchcancel / mouseleave).
func (s *Session) PointerCancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gesture.Cancel()
}

// HandleKey dispatches a key name. It reports whether the key was consumed,
// which the host uses to suppress default handling (space must not scroll).
func (s *Session) HandleKey(name string) bool {
	action := s.keys.Resolve(name)
	switch action {
	case ActionPrevious:
		s.Previous()
	case ActionNext:
		s.Next()
	case ActionClose:
		s.Close()
	case ActionToggleAutoplay:
		s.TogglePlay()
	default:
		return false
	}
	logging.KeyboardDebug("session %s: key %q -> %s", s.id, name, action)
	return true
}

// SetImages replaces the collection (e.g. after a reload). The index is
// clamped into the new range and autoplay stops once ≤1 image remains.
func (s *Session) SetImages(records []ImageRecord) {
	s.setSlides(Normalize(records))
}

func (s *Session) setSlides(slides []Slide) {
	s.mu.Lock()
	if s.torn {
		s.mu.Unlock()
		return
	}
	prevLen := len(s.slides)
	prevIdx := s.index

	s.slides = slides
	n := len(slides)
	s.strip.SetCount(n)
	switch {
	case n == 0:
		s.index = 0
	case s.index >= n:
		s.index = n - 1
	}
	if n <= 1 {
		s.pauseLocked()
	} else if prevLen <= 1 && s.opts.AutoSlide {
		s.playLocked()
	}
	if prevLen == 0 && n > 0 {
		s.loading = true
	}
	if n == 0 {
		s.loading = false
	}
	idx := s.index
	changed := n > 0 && idx != prevIdx
	if changed {
		s.strip.ScrollIntoView(idx)
	}
	s.mu.Unlock()

	logging.Session("session %s: images %d -> %d", s.id, prevLen, n)
	if changed {
		s.notifyIndex(idx)
	}
}

// Close tears the session down and, for the modal variant, fires OnClose.
// Timers are cancelled and key bindings removed before Close returns.
// Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	torn := s.teardownLocked()
	s.mu.Unlock()

	if !torn {
		return
	}
	logging.Session("session %s closed", s.id)
	logging.AuditWithSession(s.id).SessionEnd(true)
	if s.opts.Variant == VariantModal && s.opts.OnClose != nil {
		s.opts.OnClose()
	}
}

// Unmount tears the session down without firing OnClose.
func (s *Session) Unmount() {
	s.mu.Lock()
	torn := s.teardownLocked()
	s.mu.Unlock()

	if torn {
		logging.Session("session %s unmounted", s.id)
		logging.AuditWithSession(s.id).SessionEnd(false)
	}
}

func (s *Session) autoTick() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	idx, changed := s.stepLocked(Next)
	s.mu.Unlock()

	if changed {
		logging.AutoplayDebug("session %s: autoplay -> %d", s.id, idx)
		s.notifyIndex(idx)
	}
}

// stepLocked applies a wraparound step. Must be called with mu held.
func (s *Session) stepLocked(step func(current, length int) int) (int, bool) {
	if s.torn || !s.open || len(s.slides) <= 1 {
		return s.index, false
	}
	next := step(s.index, len(s.slides))
	if next == s.index {
		return next, false
	}
	s.index = next
	s.strip.ScrollIntoView(next)
	return next, true
}

func (s *Session) playLocked() bool {
	if s.torn || !s.open || len(s.slides) <= 1 {
		return false
	}
	if !s.playing {
		s.playing = true
		s.autoplay.Start(s.opts.SlideInterval)
		logging.Autoplay("session %s: autoplay started every %s", s.id, s.opts.SlideInterval)
		logging.AuditWithSession(s.id).AutoplayChange(true, s.opts.SlideInterval)
	}
	return true
}

func (s *Session) pauseLocked() {
	if !s.playing {
		return
	}
	s.playing = false
	s.autoplay.Stop()
	logging.Autoplay("session %s: autoplay stopped", s.id)
	logging.AuditWithSession(s.id).AutoplayChange(false, 0)
}

// teardownLocked reports whether this call performed the teardown.
func (s *Session) teardownLocked() bool {
	if s.torn {
		return false
	}
	s.torn = true
	s.open = false
	s.playing = false
	s.autoplay.Stop()
	s.keys.Unregister()
	s.gesture.Cancel()
	return true
}

func (s *Session) notifyIndex(idx int) {
	if s.opts.OnIndexChange != nil {
		s.opts.OnIndexChange(idx)
	}
}

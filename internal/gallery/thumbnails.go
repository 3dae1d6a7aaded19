package gallery

import (
	"math"
	"sync"

	"lightbox/internal/logging"

	"github.com/charmbracelet/harmonica"
)

// Default strip geometry, in the same units as the viewport width.
const (
	DefaultThumbnailWidth = 64.0
	DefaultThumbnailGap   = 16.0
	DefaultStripViewport  = 448.0

	// ScrollIndicatorThreshold is the thumbnail count above which the strip
	// shows a fade hinting at more content.
	ScrollIndicatorThreshold = 6
)

const settleEpsilon = 0.5

// ThumbnailStrip is the horizontal strip of previews. Only its own offset
// scrolls; the page around it never moves.
type ThumbnailStrip struct {
	mu sync.Mutex

	itemWidth     float64
	gap           float64
	viewportWidth float64
	count         int

	offset   float64
	velocity float64
	target   float64
	spring   harmonica.Spring
	requests int
}

// NewThumbnailStrip creates a strip for count thumbnails. Non-positive
// geometry falls back to the defaults.
func NewThumbnailStrip(count int, itemWidth, gap, viewportWidth float64) *ThumbnailStrip {
	if itemWidth <= 0 {
		itemWidth = DefaultThumbnailWidth
	}
	if gap < 0 {
		gap = DefaultThumbnailGap
	}
	if viewportWidth <= 0 {
		viewportWidth = DefaultStripViewport
	}
	return &ThumbnailStrip{
		itemWidth:     itemWidth,
		gap:           gap,
		viewportWidth: viewportWidth,
		count:         count,
		spring:        harmonica.NewSpring(harmonica.FPS(60), 6.0, 1.0),
	}
}

// Visible reports whether the strip is rendered at all.
func (t *ThumbnailStrip) Visible() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count > 1
}

// ShowScrollIndicator reports whether the strip should hint at overflow.
func (t *ThumbnailStrip) ShowScrollIndicator() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count > ScrollIndicatorThreshold
}

// SetCount updates the number of thumbnails and re-clamps the offset.
func (t *ThumbnailStrip) SetCount(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.count = n
	t.clampLocked()
}

// SetViewportWidth updates the visible width and re-clamps the offset.
func (t *ThumbnailStrip) SetViewportWidth(w float64) {
	if w <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.viewportWidth = w
	t.clampLocked()
}

// SetItemWidth updates the thumbnail width and gap.
func (t *ThumbnailStrip) SetItemWidth(w, gap float64) {
	if w <= 0 || gap < 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.itemWidth = w
	t.gap = gap
	t.clampLocked()
}

// ContentWidth is the total width of all thumbnails and gaps.
func (t *ThumbnailStrip) ContentWidth() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.contentWidthLocked()
}

// ItemBounds returns the [start, end) span of thumbnail i.
func (t *ThumbnailStrip) ItemBounds(i int) (float64, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	start := float64(i) * (t.itemWidth + t.gap)
	return start, start + t.itemWidth
}

// ScrollIntoView sets the scroll target so thumbnail i is centred in the
// viewport. It returns false, changing nothing, when the strip is hidden,
// everything already fits, or i is not a thumbnail.
func (t *ThumbnailStrip) ScrollIntoView(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count <= 1 || i < 0 || i >= t.count {
		return false
	}
	if t.contentWidthLocked() <= t.viewportWidth {
		return false
	}
	start := float64(i) * (t.itemWidth + t.gap)
	t.target = clamp(start+t.itemWidth/2-t.viewportWidth/2, 0, t.maxOffsetLocked())
	t.requests++
	logging.ThumbnailsDebug("scroll to %d: target=%.1f offset=%.1f", i, t.target, t.offset)
	return true
}

// Step advances the smooth-scroll animation by one frame and reports whether
// the strip is still moving.
func (t *ThumbnailStrip) Step() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.offset == t.target && t.velocity == 0 {
		return false
	}
	t.offset, t.velocity = t.spring.Update(t.offset, t.velocity, t.target)
	if math.Abs(t.offset-t.target) < settleEpsilon && math.Abs(t.velocity) < settleEpsilon {
		t.offset = t.target
		t.velocity = 0
		return false
	}
	return true
}

// Settle jumps straight to the scroll target.
func (t *ThumbnailStrip) Settle() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.offset = t.target
	t.velocity = 0
}

// Offset is the current scroll position.
func (t *ThumbnailStrip) Offset() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.offset
}

// Target is where the strip is scrolling to.
func (t *ThumbnailStrip) Target() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target
}

// Requests counts applied scroll-into-view requests.
func (t *ThumbnailStrip) Requests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.requests
}

// VisibleRange returns the first and last thumbnail indices that intersect
// the viewport at the current offset. Both are -1 for a hidden strip.
func (t *ThumbnailStrip) VisibleRange() (first, last int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count <= 1 {
		return -1, -1
	}
	pitch := t.itemWidth + t.gap
	first = int(math.Floor(t.offset / pitch))
	// The gap after an item does not count as the item.
	if t.offset-float64(first)*pitch >= t.itemWidth {
		first++
	}
	last = int(math.Ceil((t.offset+t.viewportWidth)/pitch)) - 1
	if first < 0 {
		first = 0
	}
	if last >= t.count {
		last = t.count - 1
	}
	return first, last
}

func (t *ThumbnailStrip) contentWidthLocked() float64 {
	if t.count <= 0 {
		return 0
	}
	return float64(t.count)*t.itemWidth + float64(t.count-1)*t.gap
}

func (t *ThumbnailStrip) maxOffsetLocked() float64 {
	return math.Max(0, t.contentWidthLocked()-t.viewportWidth)
}

func (t *ThumbnailStrip) clampLocked() {
	max := t.maxOffsetLocked()
	t.target = clamp(t.target, 0, max)
	t.offset = clamp(t.offset, 0, max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

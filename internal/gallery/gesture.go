package gallery

import "math"

// Default gesture thresholds, in pointer units (CSS pixels for touch/mouse).
const (
	DefaultDragThreshold    = 10.0
	DefaultMinSwipeDistance = 50.0
)

// Swipe is the discrete intent produced by a completed gesture.
type Swipe int

const (
	SwipeNone Swipe = iota
	// SwipeLeft moves content left: advance to the next image.
	SwipeLeft
	// SwipeRight moves content right: go back to the previous image.
	SwipeRight
)

func (s Swipe) String() string {
	switch s {
	case SwipeLeft:
		return "swipe_left"
	case SwipeRight:
		return "swipe_right"
	default:
		return "none"
	}
}

// GestureState is the transient pointer state of one swipe attempt.
type GestureState struct {
	StartX   float64
	StartY   float64
	Active   bool
	Dragging bool
}

// GestureRecognizer turns pointer-down, pointer-move(s), pointer-up into at
// most one Swipe. The same algorithm serves touch and mouse coordinates.
type GestureRecognizer struct {
	DragThreshold    float64
	MinSwipeDistance float64

	state GestureState
}

// NewGestureRecognizer creates a recognizer. Non-positive thresholds fall back
// to the defaults.
func NewGestureRecognizer(dragThreshold, minSwipeDistance float64) *GestureRecognizer {
	if dragThreshold <= 0 {
		dragThreshold = DefaultDragThreshold
	}
	if minSwipeDistance <= 0 {
		minSwipeDistance = DefaultMinSwipeDistance
	}
	return &GestureRecognizer{
		DragThreshold:    dragThreshold,
		MinSwipeDistance: minSwipeDistance,
	}
}

// Start records the origin of a new gesture and clears any prior drag flag.
func (g *GestureRecognizer) Start(x, y float64) {
	g.state = GestureState{StartX: x, StartY: y, Active: true}
}

// Move marks the gesture as a horizontal drag once horizontal travel beats
// both vertical travel and the drag threshold. Vertical scrolls never qualify.
func (g *GestureRecognizer) Move(x, y float64) {
	if !g.state.Active {
		return
	}
	dx := math.Abs(x - g.state.StartX)
	dy := math.Abs(y - g.state.StartY)
	if dx > dy && dx > g.DragThreshold {
		g.state.Dragging = true
	}
}

// End finishes the gesture at x and returns the resulting intent. State is
// always reset, whatever the outcome.
func (g *GestureRecognizer) End(x float64) Swipe {
	st := g.state
	g.state = GestureState{}

	if !st.Active || !st.Dragging {
		return SwipeNone
	}
	delta := x - st.StartX
	if math.Abs(delta) <= g.MinSwipeDistance {
		return SwipeNone
	}
	if delta < 0 {
		return SwipeLeft
	}
	return SwipeRight
}

// Cancel drops the in-flight gesture (pointer left the surface, touchcancel).
func (g *GestureRecognizer) Cancel() {
	g.state = GestureState{}
}

// State returns a copy of the transient state.
func (g *GestureRecognizer) State() GestureState {
	return g.state
}

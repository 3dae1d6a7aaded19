package ui

import (
	"testing"
	"time"

	"lightbox/internal/gallery"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestResizeDebouncer_SingleResize(t *testing.T) {
	bus := NewEventBus()
	rd := NewResizeDebouncer(bus, 30*time.Millisecond)

	rd.Resize(80, 24)
	assert.Empty(t, bus.Pending(), "nothing posted before the window settles")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []tea.Msg{resizeSettledMsg{width: 80, height: 24}}, bus.Pending())
}

func TestResizeDebouncer_BurstPostsLastSize(t *testing.T) {
	bus := NewEventBus()
	rd := NewResizeDebouncer(bus, 30*time.Millisecond)

	for _, size := range [][2]int{{80, 24}, {100, 30}, {120, 40}} {
		rd.Resize(size[0], size[1])
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []tea.Msg{resizeSettledMsg{width: 120, height: 40}}, bus.Pending())
}

func TestResizeDebouncer_Cancel(t *testing.T) {
	bus := NewEventBus()
	rd := NewResizeDebouncer(bus, 30*time.Millisecond)

	rd.Resize(80, 24)
	rd.Cancel()

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, bus.Pending())

	rd.Resize(90, 20)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []tea.Msg{resizeSettledMsg{width: 90, height: 20}}, bus.Pending(), "usable after cancel")
}

func TestViewer_ResizeSettlesThroughBus(t *testing.T) {
	m := newTestSlider(t, 2, gallery.DefaultOptions(), testViewerOptions())
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	bus := m.Bus()
	bus.Pending()

	m.Update(tea.WindowSizeMsg{Width: 90, Height: 28})
	m.Update(tea.WindowSizeMsg{Width: 110, Height: 32})

	time.Sleep(DefaultResizeDuration + 100*time.Millisecond)
	var settled []tea.Msg
	for _, msg := range bus.Pending() {
		if _, ok := msg.(resizeSettledMsg); ok {
			settled = append(settled, msg)
		}
	}
	assert.Equal(t, []tea.Msg{resizeSettledMsg{width: 110, height: 32}}, settled)
}

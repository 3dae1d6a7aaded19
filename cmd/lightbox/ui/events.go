package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Session callbacks and the watcher run on their own goroutines; they reach
// the program through an EventBus that one pending command drains.

type indexChangedMsg struct{ index int }

type closedMsg struct{}

type frameMsg struct{}

type resizeSettledMsg struct{ width, height int }

type slideRenderedMsg struct {
	key     uint64
	content string
	drawn   bool
}

type thumbsRenderedMsg struct{}

// ImagesReloadedMsg reports a directory reload pushed into the session.
type ImagesReloadedMsg struct {
	Images int
	Err    error
}

// EventBus carries messages from background goroutines into the program.
type EventBus struct {
	ch chan tea.Msg
}

// NewEventBus creates a bus with a small buffer.
func NewEventBus() *EventBus {
	return &EventBus{ch: make(chan tea.Msg, 32)}
}

// Send posts msg without blocking. When the buffer is full the message is
// dropped; every view reads live session state anyway.
func (b *EventBus) Send(msg tea.Msg) {
	select {
	case b.ch <- msg:
	default:
	}
}

// Wait returns a command that delivers the next message.
func (b *EventBus) Wait() tea.Cmd {
	return func() tea.Msg {
		return <-b.ch
	}
}

// Pending drains queued messages without blocking.
func (b *EventBus) Pending() []tea.Msg {
	var out []tea.Msg
	for {
		select {
		case msg := <-b.ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

const frameInterval = time.Second / 60

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

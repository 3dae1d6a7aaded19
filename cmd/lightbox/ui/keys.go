package ui

import (
	"lightbox/internal/gallery"

	"github.com/charmbracelet/bubbles/key"
)

// UIKeyMap holds shell bindings that sit outside the gallery session.
type UIKeyMap struct {
	Quit      key.Binding
	Info      key.Binding
	Help      key.Binding
	InfoUp    key.Binding
	InfoDown  key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Open      key.Binding
	Slideshow key.Binding
}

// DefaultUIKeyMap returns the shell bindings.
func DefaultUIKeyMap() UIKeyMap {
	return UIKeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Info: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "details"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		InfoUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "scroll details"),
		),
		InfoDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdn", "scroll details"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "right"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Slideshow: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "start slideshow"),
		),
	}
}

// viewerHelp joins the session bindings with the shell's.
type viewerHelp struct {
	gallery gallery.KeyMap
	ui      UIKeyMap
}

func (h viewerHelp) ShortHelp() []key.Binding {
	return append(h.gallery.ShortHelp(), h.ui.Info, h.ui.Quit)
}

func (h viewerHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		h.gallery.ShortHelp(),
		{h.ui.Info, h.ui.InfoUp, h.ui.InfoDown, h.ui.Help, h.ui.Quit},
	}
}

// gridHelp lists the grid bindings.
type gridHelp struct {
	ui UIKeyMap
}

func (h gridHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.ui.Open, h.ui.Slideshow, h.ui.Quit}
}

func (h gridHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{h.ui.Up, h.ui.Down, h.ui.Left, h.ui.Right},
		{h.ui.Open, h.ui.Slideshow, h.ui.Help, h.ui.Quit},
	}
}

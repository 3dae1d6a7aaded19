package gallery

import (
	"sync"

	"github.com/charmbracelet/bubbles/key"
)

// Action is a controller operation triggered by a key.
type Action int

const (
	ActionNone Action = iota
	ActionPrevious
	ActionNext
	ActionClose
	ActionToggleAutoplay
)

func (a Action) String() string {
	switch a {
	case ActionPrevious:
		return "previous"
	case ActionNext:
		return "next"
	case ActionClose:
		return "close"
	case ActionToggleAutoplay:
		return "toggle_autoplay"
	default:
		return "none"
	}
}

// KeyMap holds the gallery bindings. Keys are matched by name, so both
// terminal names ("left") and DOM key values ("ArrowLeft") resolve.
type KeyMap struct {
	Previous key.Binding
	Next     key.Binding
	Close    key.Binding
	Autoplay key.Binding
}

// DefaultKeyMap returns the bindings for the given variant. Close is only
// enabled for the modal lightbox.
func DefaultKeyMap(variant Variant) KeyMap {
	km := KeyMap{
		Previous: key.NewBinding(
			key.WithKeys("left", "ArrowLeft"),
			key.WithHelp("←", "previous"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "ArrowRight"),
			key.WithHelp("→", "next"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "Escape"),
			key.WithHelp("esc", "close"),
		),
		Autoplay: key.NewBinding(
			key.WithKeys(" ", "space", "Space"),
			key.WithHelp("space", "play/pause"),
		),
	}
	if variant != VariantModal {
		km.Close.SetEnabled(false)
	}
	return km
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Previous, k.Next, k.Autoplay, k.Close}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type keyName string

func (k keyName) String() string { return string(k) }

// KeyboardBindings resolves key names to actions while registered.
type KeyboardBindings struct {
	mu         sync.Mutex
	keys       KeyMap
	registered bool
}

// NewKeyboardBindings creates unregistered bindings.
func NewKeyboardBindings(keys KeyMap) *KeyboardBindings {
	return &KeyboardBindings{keys: keys}
}

// Register activates the bindings (open/mount).
func (b *KeyboardBindings) Register() {
	b.mu.Lock()
	b.registered = true
	b.mu.Unlock()
}

// Unregister deactivates the bindings (close/unmount).
func (b *KeyboardBindings) Unregister() {
	b.mu.Lock()
	b.registered = false
	b.mu.Unlock()
}

// Registered reports whether the bindings are active.
func (b *KeyboardBindings) Registered() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.registered
}

// KeyMap returns the bindings.
func (b *KeyboardBindings) KeyMap() KeyMap {
	return b.keys
}

// Resolve maps a key name to an action. Unregistered bindings resolve nothing.
func (b *KeyboardBindings) Resolve(name string) Action {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.registered {
		return ActionNone
	}
	k := keyName(name)
	switch {
	case key.Matches(k, b.keys.Previous):
		return ActionPrevious
	case key.Matches(k, b.keys.Next):
		return ActionNext
	case key.Matches(k, b.keys.Close):
		return ActionClose
	case key.Matches(k, b.keys.Autoplay):
		return ActionToggleAutoplay
	}
	return ActionNone
}

package ui

import (
	"fmt"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// SliderModel is the inline slider (or, with ViewerOptions.Hero, the hero
// slideshow). The session lives as long as the program.
type SliderModel struct {
	session  *gallery.Session
	viewer   *Viewer
	bus      *EventBus
	keys     UIKeyMap
	quitting bool
}

// NewSliderModel mounts an inline session over records.
func NewSliderModel(records []gallery.ImageRecord, opts gallery.Options, styles Styles, vopts ViewerOptions) (*SliderModel, error) {
	if vopts.Bus == nil {
		vopts.Bus = NewEventBus()
	}
	opts.Variant = gallery.VariantInline

	s, err := gallery.Mount(records, WireOptions(opts, vopts.Bus))
	if err != nil {
		return nil, fmt.Errorf("slider: %w", err)
	}
	logging.UI("slider ready: %d images, hero=%v", s.Len(), vopts.Hero)

	return &SliderModel{
		session: s,
		viewer:  NewViewer(s, styles, vopts),
		bus:     vopts.Bus,
		keys:    DefaultUIKeyMap(),
	}, nil
}

// Session returns the mounted session.
func (m *SliderModel) Session() *gallery.Session { return m.session }

// Bus returns the bus background work reports through.
func (m *SliderModel) Bus() *EventBus { return m.bus }

// Close stops the viewer's timers and unmounts the session. Calling it again
// is a no-op.
func (m *SliderModel) Close() {
	m.viewer.Close()
	m.session.Unmount()
}

// Init implements tea.Model.
func (m *SliderModel) Init() tea.Cmd {
	return tea.Batch(m.viewer.Init(), m.bus.Wait())
}

// Update implements tea.Model.
func (m *SliderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if isBusMsg(msg) {
		cmds = append(cmds, m.bus.Wait())
	}

	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Quit) {
		m.quitting = true
		m.Close()
		return m, tea.Quit
	}

	cmds = append(cmds, m.viewer.Update(msg))
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m *SliderModel) View() string {
	if m.quitting {
		return ""
	}
	return m.viewer.View()
}

package ui

import (
	"fmt"
	"strings"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// LightboxModel is the event gallery: a grid of tiles that opens a modal
// slideshow. Closing the slideshow returns to the grid.
type LightboxModel struct {
	lightbox *gallery.Lightbox
	viewer   *Viewer // nil while the grid is showing

	styles Styles
	vopts  ViewerOptions
	bus    *EventBus
	cache  *RenderCache
	keys   UIKeyMap
	help   help.Model

	width, height int
	cursor        int
	top           int // first visible grid row

	tilesPending bool
	err          error
	quitting     bool
}

// NewLightboxModel creates a closed lightbox over records.
func NewLightboxModel(records []gallery.ImageRecord, opts gallery.Options, styles Styles, vopts ViewerOptions) *LightboxModel {
	if vopts.Bus == nil {
		vopts.Bus = NewEventBus()
	}
	if vopts.Cache == nil {
		vopts.Cache = NewRenderCache(256)
	}
	vopts.Hero = false

	return &LightboxModel{
		lightbox: gallery.NewLightbox(records, WireOptions(opts, vopts.Bus)),
		styles:   styles,
		vopts:    vopts,
		bus:      vopts.Bus,
		cache:    vopts.Cache,
		keys:     DefaultUIKeyMap(),
		help:     help.New(),
	}
}

// Lightbox returns the underlying open/close lifecycle.
func (m *LightboxModel) Lightbox() *gallery.Lightbox { return m.lightbox }

// Bus returns the bus background work reports through.
func (m *LightboxModel) Bus() *EventBus { return m.bus }

// Cursor returns the selected grid tile.
func (m *LightboxModel) Cursor() int { return m.cursor }

// IsOpen reports whether the slideshow is showing.
func (m *LightboxModel) IsOpen() bool { return m.viewer != nil }

// Init implements tea.Model.
func (m *LightboxModel) Init() tea.Cmd {
	return m.bus.Wait()
}

// Update implements tea.Model.
func (m *LightboxModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if isBusMsg(msg) {
		cmds = append(cmds, m.bus.Wait())
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.scrollToCursor()
		if m.viewer != nil {
			cmds = append(cmds, m.viewer.Update(msg))
		}
		cmds = append(cmds, m.ensureTiles())

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.closeViewer()
			m.lightbox.Close()
			return m, tea.Quit
		}
		if m.viewer != nil {
			cmds = append(cmds, m.viewer.Update(msg))
			if !m.lightbox.IsOpen() {
				m.closeViewer()
				cmds = append(cmds, m.ensureTiles())
			}
			break
		}
		cmds = append(cmds, m.handleGridKey(msg))

	case tea.MouseMsg:
		if m.viewer != nil {
			cmds = append(cmds, m.viewer.Update(msg))
			break
		}
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i := m.tileAt(msg.X, msg.Y); i >= 0 {
				m.cursor = i
				cmds = append(cmds, m.open(i))
			}
		}

	case closedMsg:
		if m.viewer != nil && !m.lightbox.IsOpen() {
			m.closeViewer()
			cmds = append(cmds, m.ensureTiles())
		}

	case ImagesReloadedMsg:
		if n := m.lightbox.Len(); m.cursor >= n {
			m.cursor = max(n-1, 0)
		}
		m.scrollToCursor()
		m.tilesPending = false
		if m.viewer != nil {
			cmds = append(cmds, m.viewer.Update(msg))
		} else {
			cmds = append(cmds, m.ensureTiles())
		}

	case tilesRenderedMsg:
		m.tilesPending = false

	default:
		if m.viewer != nil {
			cmds = append(cmds, m.viewer.Update(msg))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *LightboxModel) handleGridKey(msg tea.KeyMsg) tea.Cmd {
	n := m.lightbox.Len()
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case n == 0:
		return nil
	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.cursor < n-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cursor-cols >= 0 {
			m.cursor -= cols
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor+cols < n {
			m.cursor += cols
		}
	case key.Matches(msg, m.keys.Open):
		return m.open(m.cursor)
	case key.Matches(msg, m.keys.Slideshow):
		return m.open(0)
	}
	m.scrollToCursor()
	return nil
}

// open shows the slideshow at index over a fresh session.
func (m *LightboxModel) open(index int) tea.Cmd {
	s, err := m.lightbox.Open(index)
	if err != nil {
		m.err = err
		logging.UIWarn("open lightbox at %d: %v", index, err)
		return nil
	}
	m.err = nil
	m.viewer = NewViewer(s, m.styles, m.vopts)
	logging.UI("lightbox opened at %d of %d", index, s.Len())

	var cmds []tea.Cmd
	cmds = append(cmds, m.viewer.Init())
	if m.width > 0 && m.height > 0 {
		cmds = append(cmds, m.viewer.SetSize(m.width, m.height))
	}
	return tea.Batch(cmds...)
}

// closeViewer drops the slideshow and leaves the cursor on the image that
// was showing.
func (m *LightboxModel) closeViewer() {
	if m.viewer == nil {
		return
	}
	if n := m.lightbox.Len(); n > 0 {
		m.cursor = min(m.viewer.Session().Index(), n-1)
	}
	m.viewer.Close()
	m.viewer = nil
	m.scrollToCursor()
}

func (m *LightboxModel) columns() int {
	return GridColumns(m.width, m.vopts.GridColumns)
}

func (m *LightboxModel) visibleRows() int {
	h := m.height - HeaderHeight
	if m.vopts.ShowHelp {
		h -= HelpHeight
	}
	if rows := h / TileHeight; rows > 0 {
		return rows
	}
	return 1
}

func (m *LightboxModel) scrollToCursor() {
	row := m.cursor / m.columns()
	rows := m.visibleRows()
	if row < m.top {
		m.top = row
	}
	if row >= m.top+rows {
		m.top = row - rows + 1
	}
}

// tileAt maps a cell to a grid index, or -1.
func (m *LightboxModel) tileAt(x, y int) int {
	if y < HeaderHeight || x < 0 {
		return -1
	}
	pitch := TileWidth + TileGap
	col := x / pitch
	if x-col*pitch >= TileWidth || col >= m.columns() {
		return -1
	}
	row := (y-HeaderHeight)/TileHeight + m.top
	if row-m.top >= m.visibleRows() {
		return -1
	}
	i := row*m.columns() + col
	if i >= m.lightbox.Len() {
		return -1
	}
	return i
}

type tilesRenderedMsg struct{}

func tileKey(i int, s gallery.Slide, dark bool) uint64 {
	return ComputeKey("tile", s.Record.ID, s.Filename, len(s.URI), i, dark)
}

// ensureTiles renders missing grid tiles in one batch.
func (m *LightboxModel) ensureTiles() tea.Cmd {
	if m.viewer != nil || m.tilesPending || m.width == 0 {
		return nil
	}
	dark := m.styles.Theme.IsDark
	type job struct {
		key   uint64
		slide gallery.Slide
	}
	var jobs []job
	for i, s := range m.lightbox.Slides() {
		k := tileKey(i, s, dark)
		if _, ok := m.cache.Get(k); !ok {
			jobs = append(jobs, job{k, s})
		}
	}
	if len(jobs) == 0 {
		return nil
	}
	m.tilesPending = true

	styles, cache := m.styles, m.cache
	return func() tea.Msg {
		for _, j := range jobs {
			content, _ := RenderSlide(styles, j.slide, TileWidth-2, TileHeight-3)
			cache.Set(j.key, content)
		}
		return tilesRenderedMsg{}
	}
}

// View implements tea.Model.
func (m *LightboxModel) View() string {
	if m.quitting {
		return ""
	}
	if m.viewer != nil {
		return m.viewer.View()
	}
	return m.renderGrid()
}

func (m *LightboxModel) renderGrid() string {
	slides := m.lightbox.Slides()
	title := m.vopts.Title
	if title == "" {
		title = "lightbox"
	}
	header := fmt.Sprintf("%s · %d photos", title, len(slides))
	if m.err != nil {
		header += " · " + m.styles.Error.Render(m.err.Error())
	}
	parts := []string{m.styles.Header.Width(m.width).Render(truncateRunes(header, m.width-4))}

	if len(slides) == 0 {
		h := m.height - HeaderHeight - HelpHeight
		parts = append(parts, RenderPlaceholder(m.styles, "No images available", m.width, max(h, 1)))
	} else {
		parts = append(parts, m.renderTiles(slides))
	}

	if m.vopts.ShowHelp {
		parts = append(parts, m.help.View(gridHelp{ui: m.keys}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *LightboxModel) renderTiles(slides []gallery.Slide) string {
	cols := m.columns()
	dark := m.styles.Theme.IsDark
	inner := TileWidth - 2

	var rows []string
	for r := m.top; r < m.top+m.visibleRows(); r++ {
		var tiles []string
		for c := 0; c < cols; c++ {
			i := r*cols + c
			if i >= len(slides) {
				break
			}
			s := slides[i]
			img, ok := m.cache.Get(tileKey(i, s, dark))
			if !ok {
				img = lipgloss.Place(inner, TileHeight-3, lipgloss.Center, lipgloss.Center,
					m.styles.Muted.Render("·"))
			}
			caption := m.styles.Caption.Render(truncateRunes(s.Alt, inner))
			style := m.styles.Tile
			if i == m.cursor {
				style = m.styles.TileSelected
			}
			tile := style.Width(inner).Height(TileHeight - 2).Render(
				lipgloss.JoinVertical(lipgloss.Left, img, caption))
			if c > 0 {
				tiles = append(tiles, strings.Repeat(" ", TileGap))
			}
			tiles = append(tiles, tile)
		}
		if len(tiles) == 0 {
			break
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, tiles...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

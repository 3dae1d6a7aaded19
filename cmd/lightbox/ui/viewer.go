package ui

import (
	"fmt"
	"math"
	"strings"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ViewerOptions configure how a session is presented.
type ViewerOptions struct {
	Title       string
	Description string // markdown, shown in the details pane

	// Hero shows indicator dots instead of the thumbnail strip.
	Hero bool

	// InfoRatio is the details pane share of the width; 0 starts it hidden.
	InfoRatio float64

	// Terminal cells are converted to pixels for gesture thresholds.
	CellWidthPx  float64
	CellHeightPx float64

	ShowHelp bool

	// GridColumns fixes the lightbox grid width; 0 fits the terminal.
	GridColumns int

	Cache *RenderCache
	Bus   *EventBus
}

// DefaultViewerOptions returns the options used when nothing is configured.
func DefaultViewerOptions() ViewerOptions {
	return ViewerOptions{
		InfoRatio:    0.3,
		CellWidthPx:  8,
		CellHeightPx: 16,
		ShowHelp:     true,
	}
}

// WireOptions chains session callbacks into the bus so timer-driven changes
// reach the program.
func WireOptions(opts gallery.Options, bus *EventBus) gallery.Options {
	prevIndex := opts.OnIndexChange
	opts.OnIndexChange = func(i int) {
		if prevIndex != nil {
			prevIndex(i)
		}
		bus.Send(indexChangedMsg{index: i})
	}
	prevClose := opts.OnClose
	opts.OnClose = func() {
		if prevClose != nil {
			prevClose()
		}
		bus.Send(closedMsg{})
	}
	return opts
}

func isBusMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case indexChangedMsg, closedMsg, resizeSettledMsg, ImagesReloadedMsg:
		return true
	}
	return false
}

// Viewer draws one gallery session: the stage with arrows, the counter, the
// thumbnail strip (or hero dots), the details pane and the help bar.
type Viewer struct {
	session *gallery.Session
	styles  Styles
	opts    ViewerOptions
	cache   *RenderCache
	bus     *EventBus
	keys    UIKeyMap

	width, height int
	sized         bool
	layout        LayoutConfig
	showInfo      bool

	info    *InfoPane
	help    help.Model
	spinner spinner.Model
	resize  *ResizeDebouncer

	rendering     map[uint64]bool
	thumbsPending bool
	animating     bool
	dragging      bool
	status        string
}

// NewViewer creates a viewer for an already mounted session.
func NewViewer(session *gallery.Session, styles Styles, opts ViewerOptions) *Viewer {
	if opts.Cache == nil {
		opts.Cache = NewRenderCache(256)
	}
	if opts.Bus == nil {
		opts.Bus = NewEventBus()
	}
	if opts.CellWidthPx <= 0 {
		opts.CellWidthPx = 8
	}
	if opts.CellHeightPx <= 0 {
		opts.CellHeightPx = 16
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	return &Viewer{
		session:   session,
		styles:    styles,
		opts:      opts,
		cache:     opts.Cache,
		bus:       opts.Bus,
		keys:      DefaultUIKeyMap(),
		showInfo:  opts.InfoRatio > 0,
		info:      NewInfoPane(styles.Theme.IsDark),
		help:      help.New(),
		spinner:   sp,
		resize:    NewResizeDebouncer(opts.Bus, DefaultResizeDuration),
		rendering: make(map[uint64]bool),
	}
}

// Session returns the presented session.
func (v *Viewer) Session() *gallery.Session { return v.session }

// Init starts the loading spinner.
func (v *Viewer) Init() tea.Cmd {
	return v.spinner.Tick
}

// Close releases timers owned by the viewer. The session is closed by its owner.
func (v *Viewer) Close() {
	v.resize.Cancel()
}

// SetSize lays the viewer out. The first size renders at once; later
// resizes wait for the window to settle before images are re-scaled.
func (v *Viewer) SetSize(width, height int) tea.Cmd {
	first := !v.sized
	v.width, v.height = width, height
	v.sized = true
	v.updateLayout()
	if first {
		return v.afterChange()
	}
	v.resize.Resize(width, height)
	return v.animate()
}

// Update handles a message and returns follow-up work.
func (v *Viewer) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return v.SetSize(msg.Width, msg.Height)

	case resizeSettledMsg:
		if msg.width == v.width && msg.height == v.height {
			return v.ensureRender()
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case tea.MouseMsg:
		return v.handleMouse(msg)

	case indexChangedMsg:
		return v.afterChange()

	case ImagesReloadedMsg:
		if msg.Err != nil {
			v.status = "reload failed"
		} else {
			v.status = fmt.Sprintf("reloaded %d", msg.Images)
		}
		v.updateLayout()
		return v.afterChange()

	case frameMsg:
		if v.session.Thumbnails().Step() {
			return frameTick()
		}
		v.animating = false
		return nil

	case slideRenderedMsg:
		v.cache.Set(msg.key, msg.content)
		delete(v.rendering, msg.key)
		if msg.key == v.currentKey() {
			v.session.MarkLoaded()
			logging.UIDebug("slide %d painted (drawn=%v)", v.session.Index(), msg.drawn)
		}
		return nil

	case thumbsRenderedMsg:
		v.thumbsPending = false
		return nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd
	}
	return nil
}

func (v *Viewer) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, v.keys.Info):
		v.showInfo = !v.showInfo
		v.updateLayout()
		return v.ensureRender()
	case key.Matches(msg, v.keys.Help):
		v.help.ShowAll = !v.help.ShowAll
		return nil
	case key.Matches(msg, v.keys.InfoUp):
		v.info.ScrollUp()
		return nil
	case key.Matches(msg, v.keys.InfoDown):
		v.info.ScrollDown()
		return nil
	}

	if v.session.HandleKey(msg.String()) {
		return v.afterChange()
	}
	return nil
}

func (v *Viewer) handleMouse(msg tea.MouseMsg) tea.Cmd {
	stageTop := HeaderHeight
	stageW := v.layout.StageWidth()
	stageH := v.layout.StageHeight()
	navTop := stageTop + stageH + CounterHeight
	inStage := msg.Y >= stageTop && msg.Y < stageTop+stageH
	onImage := inStage && msg.X >= ArrowWidth && msg.X < ArrowWidth+stageW

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			v.cancelDrag()
			return nil
		}
		switch {
		case inStage && msg.X < ArrowWidth:
			if v.session.Previous() {
				return v.afterChange()
			}
		case inStage && msg.X >= ArrowWidth+stageW && msg.X < 2*ArrowWidth+stageW:
			if v.session.Next() {
				return v.afterChange()
			}
		case onImage:
			v.session.PointerDown(v.px(msg.X), v.py(msg.Y))
			v.dragging = true
		case v.layout.ShowStrip && msg.Y >= navTop && msg.Y < navTop+StripHeight:
			if i := v.thumbAt(msg.X); i >= 0 {
				if err := v.session.GoTo(i); err == nil {
					return v.afterChange()
				}
			}
		case v.layout.ShowDots && msg.Y == navTop:
			if i := v.dotAt(msg.X); i >= 0 {
				if err := v.session.GoTo(i); err == nil {
					return v.afterChange()
				}
			}
		}

	case tea.MouseActionMotion:
		switch {
		case !v.dragging:
		case onImage:
			v.session.PointerMove(v.px(msg.X), v.py(msg.Y))
		default:
			v.cancelDrag()
		}

	case tea.MouseActionRelease:
		if v.dragging {
			v.dragging = false
			if v.session.PointerUp(v.px(msg.X)) != gallery.SwipeNone {
				return v.afterChange()
			}
		}
	}
	return nil
}

// cancelDrag abandons a drag the pointer left or another button interrupted.
func (v *Viewer) cancelDrag() {
	if v.dragging {
		v.dragging = false
		v.session.PointerCancel()
	}
}

func (v *Viewer) px(x int) float64 { return float64(x) * v.opts.CellWidthPx }
func (v *Viewer) py(y int) float64 { return float64(y) * v.opts.CellHeightPx }

// thumbAt maps a column in the strip row to a thumbnail index, or -1.
func (v *Viewer) thumbAt(x int) int {
	local := x - 1 // left fade indicator
	if local < 0 || local >= v.layout.StripViewport() {
		return -1
	}
	stripX := int(math.Round(v.session.Thumbnails().Offset())) + local
	item := ThumbCellWidth + ThumbBorder
	pitch := item + ThumbCellGap
	i := stripX / pitch
	if stripX-i*pitch >= item || i >= v.session.Len() {
		return -1
	}
	return i
}

// dotAt maps a column in the dots row to an index, or -1.
func (v *Viewer) dotAt(x int) int {
	n := v.session.Len()
	total := 2*n - 1
	rel := x - (v.width-total)/2
	if n <= 1 || rel < 0 || rel >= total || rel%2 != 0 {
		return -1
	}
	return rel / 2
}

func (v *Viewer) updateLayout() {
	ratio := 0.0
	if v.showInfo {
		ratio = v.opts.InfoRatio
		if ratio <= 0 {
			ratio = DefaultViewerOptions().InfoRatio
		}
	}
	strip := v.session.Thumbnails()

	l := NewLayoutConfig(v.width, v.height, ratio)
	l.ShowStrip = !v.opts.Hero && strip.Visible()
	l.ShowDots = v.opts.Hero && v.session.ShowNavigation()
	l.ShowHelp = v.opts.ShowHelp
	v.layout = l

	strip.SetItemWidth(float64(ThumbCellWidth+ThumbBorder), float64(ThumbCellGap))
	strip.SetViewportWidth(float64(l.StripViewport()))
	if strip.ScrollIntoView(v.session.Index()) {
		strip.Settle()
	}

	v.info.SetSize(l.InfoWidth(), l.StageHeight())
	v.help.Width = v.width
	v.syncInfo()
}

// afterChange refreshes everything that follows the current index.
func (v *Viewer) afterChange() tea.Cmd {
	if v.layout.ShowStrip != (!v.opts.Hero && v.session.Thumbnails().Visible()) {
		v.updateLayout()
	}
	v.syncInfo()
	return tea.Batch(v.ensureRender(), v.ensureThumbs(), v.animate())
}

func (v *Viewer) syncInfo() {
	if v.layout.InfoWidth() == 0 {
		return
	}
	slide, ok := v.session.Current()
	if !ok {
		v.info.SetMarkdown(fmt.Sprintf("# %s\n\nNo images available\n", v.title()))
		return
	}
	v.info.SetMarkdown(SlideMarkdown(v.opts.Title, v.opts.Description, slide, v.session.Counter()))
}

func (v *Viewer) animate() tea.Cmd {
	strip := v.session.Thumbnails()
	if v.animating || strip.Offset() == strip.Target() {
		return nil
	}
	v.animating = true
	return frameTick()
}

func (v *Viewer) currentKey() uint64 {
	slide, ok := v.session.Current()
	if !ok {
		return 0
	}
	return ComputeKey("slide", slide.Record.ID, slide.Filename, len(slide.URI),
		v.session.Index(), v.layout.StageWidth(), v.layout.StageHeight(), v.styles.Theme.IsDark)
}

func thumbKey(i int, s gallery.Slide, dark bool) uint64 {
	return ComputeKey("thumb", s.Record.ID, s.Filename, len(s.URI), i, dark)
}

// ensureRender renders the current slide off the update loop.
func (v *Viewer) ensureRender() tea.Cmd {
	if !v.sized {
		return nil
	}
	slide, ok := v.session.Current()
	if !ok {
		return nil
	}
	k := v.currentKey()
	if _, hit := v.cache.Get(k); hit {
		v.session.MarkLoaded()
		return nil
	}
	if v.rendering[k] {
		return nil
	}
	v.rendering[k] = true

	styles := v.styles
	w, h := v.layout.StageWidth(), v.layout.StageHeight()
	return func() tea.Msg {
		timer := logging.StartTimer(logging.CategoryUI, "render "+slide.Filename)
		content, drawn := RenderSlide(styles, slide, w, h)
		timer.Stop()
		return slideRenderedMsg{key: k, content: content, drawn: drawn}
	}
}

// ensureThumbs renders missing thumbnails in one batch.
func (v *Viewer) ensureThumbs() tea.Cmd {
	if !v.sized || !v.layout.ShowStrip || v.thumbsPending {
		return nil
	}
	dark := v.styles.Theme.IsDark
	type job struct {
		key   uint64
		slide gallery.Slide
	}
	var jobs []job
	for i, s := range v.session.Slides() {
		k := thumbKey(i, s, dark)
		if _, ok := v.cache.Get(k); !ok {
			jobs = append(jobs, job{k, s})
		}
	}
	if len(jobs) == 0 {
		return nil
	}
	v.thumbsPending = true

	styles, cache := v.styles, v.cache
	return func() tea.Msg {
		for _, j := range jobs {
			content, _ := RenderSlide(styles, j.slide, ThumbCellWidth, ThumbCellHeight)
			cache.Set(j.key, content)
		}
		return thumbsRenderedMsg{}
	}
}

func (v *Viewer) title() string {
	if v.opts.Title != "" {
		return v.opts.Title
	}
	return "lightbox"
}

// View renders the viewer.
func (v *Viewer) View() string {
	if !v.sized {
		return v.spinner.View() + " Loading…"
	}

	parts := []string{v.renderHeader(), v.renderStage(), v.renderCounter()}
	if v.layout.ShowStrip {
		parts = append(parts, v.renderStrip())
	}
	if v.layout.ShowDots {
		parts = append(parts, v.renderDots())
	}
	if v.layout.ShowHelp {
		parts = append(parts, v.help.View(viewerHelp{gallery: v.session.KeyMap(), ui: v.keys}))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (v *Viewer) renderHeader() string {
	text := v.title()
	if v.status != "" {
		text += "  · " + v.status
	}
	return v.styles.Header.Width(v.width).Render(truncateRunes(text, v.width-4))
}

func (v *Viewer) renderStage() string {
	w, h := v.layout.StageWidth(), v.layout.StageHeight()

	var body string
	slide, ok := v.session.Current()
	switch {
	case !ok:
		body = RenderPlaceholder(v.styles, "No images available", w, h)
	default:
		if content, hit := v.cache.Get(v.currentKey()); hit {
			body = content
		} else {
			body = RenderPlaceholder(v.styles, v.spinner.View()+" Loading "+slide.Alt, w, h)
		}
	}
	body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, body)

	left, right := "", ""
	if v.session.ShowNavigation() {
		left = v.styles.Arrow.Render("‹")
		right = v.styles.Arrow.Render("›")
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.Place(ArrowWidth, h, lipgloss.Center, lipgloss.Center, left),
		body,
		lipgloss.Place(ArrowWidth, h, lipgloss.Center, lipgloss.Center, right),
	)

	if iw := v.layout.InfoWidth(); iw > 0 {
		pane := lipgloss.NewStyle().Width(iw).Height(h).MaxHeight(h).Render(v.info.View())
		row = lipgloss.JoinHorizontal(lipgloss.Top, row, pane)
	}
	return row
}

func (v *Viewer) renderCounter() string {
	var parts []string
	if v.session.ShowNavigation() {
		if v.session.IsPlaying() {
			parts = append(parts, v.styles.Playing.Render("▶ playing"))
		} else {
			parts = append(parts, v.styles.Paused.Render("⏸ paused"))
		}
	}
	if c := v.session.Counter(); c != "" {
		parts = append(parts, v.styles.Counter.Render(c))
	}
	if slide, ok := v.session.Current(); ok {
		caption := slide.Record.Caption
		if caption == "" {
			caption = slide.Alt
		}
		parts = append(parts, v.styles.Caption.Render(caption))
	}
	line := strings.Join(parts, " ")
	return lipgloss.NewStyle().MaxWidth(v.width).Render(line)
}

func (v *Viewer) renderStrip() string {
	slides := v.session.Slides()
	idx := v.session.Index()
	dark := v.styles.Theme.IsDark

	var boxes []string
	for i, s := range slides {
		content, ok := v.cache.Get(thumbKey(i, s, dark))
		if !ok {
			content = lipgloss.Place(ThumbCellWidth, ThumbCellHeight, lipgloss.Center, lipgloss.Center,
				v.styles.Muted.Render("·"))
		}
		style := v.styles.Thumb
		if i == idx {
			style = v.styles.ThumbActive
		}
		boxes = append(boxes, style.Width(ThumbCellWidth).Height(ThumbCellHeight).Render(content))
		if i < len(slides)-1 {
			boxes = append(boxes, strings.Repeat(" ", ThumbCellGap))
		}
	}
	full := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	strip := v.session.Thumbnails()
	off := int(math.Round(strip.Offset()))
	vp := v.layout.StripViewport()
	indicator := strip.ShowScrollIndicator()

	lines := strings.Split(full, "\n")
	mid := len(lines) / 2
	for i, line := range lines {
		cut := ansi.Cut(line, off, off+vp)
		if w := ansi.StringWidth(cut); w < vp {
			cut += strings.Repeat(" ", vp-w)
		}
		left, right := " ", " "
		if indicator && i == mid {
			if off > 0 {
				left = v.styles.FadeIndicator.Render("‹")
			}
			right = v.styles.FadeIndicator.Render("›")
		}
		lines[i] = left + cut + right
	}
	return strings.Join(lines, "\n")
}

func (v *Viewer) renderDots() string {
	n := v.session.Len()
	idx := v.session.Index()
	dots := make([]string, n)
	for i := range dots {
		if i == idx {
			dots[i] = v.styles.DotActive.Render("●")
		} else {
			dots[i] = v.styles.Dot.Render("○")
		}
	}
	return lipgloss.PlaceHorizontal(v.width, lipgloss.Center, strings.Join(dots, " "))
}

// Package ui layout constants for consistent spacing and dimensions
package ui

// Layout constants, in terminal cells
const (
	// Chrome
	HeaderHeight  = 1
	HelpHeight    = 1
	CounterHeight = 1

	// Stage
	ArrowWidth      = 3
	MinStageWidth   = 16
	MinStageHeight  = 4
	InfoPaneMinimum = 24

	// Thumbnail strip (cells); each thumbnail is bordered
	ThumbCellWidth  = 10
	ThumbCellHeight = 3
	ThumbCellGap    = 1
	ThumbBorder     = 2
	StripHeight     = ThumbCellHeight + ThumbBorder

	// Hero indicators
	DotsHeight = 1

	// Grid; tiles are bordered and carry one caption line
	TileWidth  = 22
	TileHeight = 6
	TileGap    = 1

	// Responsive breakpoints
	MinimumTerminalWidth  = 40
	MinimumTerminalHeight = 12
	CompactModeWidth      = 80
)

// LayoutConfig provides computed layout dimensions based on terminal size
type LayoutConfig struct {
	TerminalWidth  int
	TerminalHeight int
	InfoRatio      float64
	ShowStrip      bool
	ShowDots       bool
	ShowHelp       bool
	IsCompact      bool
}

// NewLayoutConfig creates a layout configuration for the given terminal size
func NewLayoutConfig(width, height int, infoRatio float64) LayoutConfig {
	return LayoutConfig{
		TerminalWidth:  width,
		TerminalHeight: height,
		InfoRatio:      infoRatio,
		IsCompact:      width < CompactModeWidth,
	}
}

// InfoWidth returns the caption pane width, 0 when hidden or compact.
func (l LayoutConfig) InfoWidth() int {
	if l.IsCompact || l.InfoRatio <= 0 {
		return 0
	}
	w := int(float64(l.TerminalWidth) * l.InfoRatio)
	if w < InfoPaneMinimum {
		return 0
	}
	return w
}

// StageWidth returns the image area width, excluding arrows.
func (l LayoutConfig) StageWidth() int {
	w := l.TerminalWidth - l.InfoWidth() - 2*ArrowWidth
	if w < MinStageWidth {
		return MinStageWidth
	}
	return w
}

// StageHeight returns the image area height after chrome.
func (l LayoutConfig) StageHeight() int {
	h := l.TerminalHeight - HeaderHeight - CounterHeight
	if l.ShowStrip {
		h -= StripHeight
	}
	if l.ShowDots {
		h -= DotsHeight
	}
	if l.ShowHelp {
		h -= HelpHeight
	}
	if h < MinStageHeight {
		return MinStageHeight
	}
	return h
}

// StripViewport returns the thumbnail strip width in cells.
func (l LayoutConfig) StripViewport() int {
	w := l.TerminalWidth - l.InfoWidth() - 2 // fade indicators
	if w < ThumbCellWidth {
		return ThumbCellWidth
	}
	return w
}

// GridColumns returns how many tiles fit per row, at least one.
func GridColumns(width, configured int) int {
	if configured > 0 {
		return configured
	}
	cols := (width + TileGap) / (TileWidth + TileGap)
	if cols < 1 {
		return 1
	}
	return cols
}

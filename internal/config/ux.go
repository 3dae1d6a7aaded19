package config

import "fmt"

// UIConfig holds terminal presentation settings.
type UIConfig struct {
	// Theme is "dark", "light" or "auto" (auto follows LIGHTBOX_DARK_MODE / the terminal)
	Theme string `json:"theme" yaml:"theme"`

	// InfoPaneRatio is the share of the width given to the caption pane (0 hides it)
	InfoPaneRatio float64 `json:"info_pane_ratio" yaml:"info_pane_ratio"`

	// CellWidthPx / CellHeightPx convert mouse cells to gesture pixels
	CellWidthPx  float64 `json:"cell_width_px" yaml:"cell_width_px"`
	CellHeightPx float64 `json:"cell_height_px" yaml:"cell_height_px"`

	// GridColumns is the masonry column count in lightbox mode (0 = fit to width)
	GridColumns int `json:"grid_columns,omitempty" yaml:"grid_columns,omitempty"`

	// ShowHelp renders the key help bar
	ShowHelp bool `json:"show_help" yaml:"show_help"`
}

// DefaultUIConfig returns sensible UI defaults.
func DefaultUIConfig() *UIConfig {
	return &UIConfig{
		Theme:         "auto",
		InfoPaneRatio: 0.3,
		CellWidthPx:   8,  // typical monospace cell
		CellHeightPx:  16, // ~2:1 cell aspect
		GridColumns:   0,
		ShowHelp:      true,
	}
}

// Validate checks the UI settings.
func (c *UIConfig) Validate() error {
	switch c.Theme {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("invalid ui.theme: %q (valid: auto, dark, light)", c.Theme)
	}
	if c.InfoPaneRatio < 0 || c.InfoPaneRatio >= 1 {
		return fmt.Errorf("invalid ui.info_pane_ratio: %v", c.InfoPaneRatio)
	}
	if c.CellWidthPx < 0 || c.CellHeightPx < 0 {
		return fmt.Errorf("invalid cell size: %vx%v", c.CellWidthPx, c.CellHeightPx)
	}
	return nil
}

// IsDark resolves the theme; auto defers to the caller's detection.
func (c *UIConfig) IsDark(detected bool) bool {
	switch c.Theme {
	case "dark":
		return true
	case "light":
		return false
	default:
		return detected
	}
}

// Package ui provides the terminal shells for lightbox: the inline slider,
// the hero slideshow and the grid-plus-lightbox event gallery.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	// Light Mode Colors (Default)
	LightBackground = lipgloss.Color("#f7f6f3") // warm paper
	LightForeground = lipgloss.Color("#1c2430") // slate
	LightPrimary    = lipgloss.Color("#1c2430")
	LightAccent     = lipgloss.Color("#c8963e") // brass
	LightSecondary  = lipgloss.Color("#e6e3dc")
	LightMuted      = lipgloss.Color("#8a8f98")
	LightBorder     = lipgloss.Color("#d8d4cb")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark Mode Colors
	DarkBackground = lipgloss.Color("#0f1318")
	DarkForeground = lipgloss.Color("#eeeeee")
	DarkPrimary    = lipgloss.Color("#c8963e") // brass (flipped)
	DarkAccent     = lipgloss.Color("#e8c27a")
	DarkSecondary  = lipgloss.Color("#1b222b")
	DarkMuted      = lipgloss.Color("#6b7480")
	DarkBorder     = lipgloss.Color("#2b3440")
	DarkCard       = lipgloss.Color("#161c23")

	// Semantic Colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#8BC34A")
	Warning     = lipgloss.Color("#FFC107")
	Info        = lipgloss.Color("#2196F3")
)

// Theme holds the current color scheme
type Theme struct {
	Background lipgloss.Color
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme
func LightTheme() Theme {
	return Theme{
		Background: LightBackground,
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Secondary:  LightSecondary,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme
func DarkTheme() Theme {
	return Theme{
		Background: DarkBackground,
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Secondary:  DarkSecondary,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// DetectDark guesses whether the terminal background is dark.
func DetectDark() bool {
	// Format is usually "foreground;background"
	if colorTerm := os.Getenv("COLORFGBG"); colorTerm != "" {
		parts := strings.Split(colorTerm, ";")
		if len(parts) == 2 {
			if bgIdx, err := strconv.Atoi(parts[1]); err == nil {
				if (bgIdx >= 0 && bgIdx <= 6) || bgIdx == 8 {
					return true
				}
			}
		}
	}
	return os.Getenv("LIGHTBOX_DARK_MODE") == "1"
}

// DetectTheme picks a theme from the environment, defaulting to light.
func DetectTheme() Theme {
	if DetectDark() {
		return DarkTheme()
	}
	return LightTheme()
}

// Styles holds all the styled components
type Styles struct {
	Theme Theme

	Header lipgloss.Style

	// Text
	Caption lipgloss.Style
	Muted   lipgloss.Style
	Counter lipgloss.Style

	// Navigation
	Arrow         lipgloss.Style
	Thumb         lipgloss.Style
	ThumbActive   lipgloss.Style
	Dot           lipgloss.Style
	DotActive     lipgloss.Style
	FadeIndicator lipgloss.Style

	// Grid
	Tile         lipgloss.Style
	TileSelected lipgloss.Style

	// Status
	Placeholder lipgloss.Style
	Error       lipgloss.Style
	Playing     lipgloss.Style
	Paused      lipgloss.Style
	Spinner     lipgloss.Style
}

// NewStyles creates a new Styles instance with the given theme
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Background(theme.Primary).
			Foreground(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		Caption: lipgloss.NewStyle().
			Foreground(theme.Foreground).
			Italic(true),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Counter: lipgloss.NewStyle().
			Background(theme.Secondary).
			Foreground(theme.Foreground).
			Padding(0, 1),

		Arrow: lipgloss.NewStyle().
			Foreground(theme.Accent).
			Bold(true),

		Thumb: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(theme.Border),

		ThumbActive: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(theme.Accent),

		Dot: lipgloss.NewStyle().
			Foreground(theme.Muted),

		DotActive: lipgloss.NewStyle().
			Foreground(theme.Accent),

		FadeIndicator: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Faint(true),

		Tile: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),

		TileSelected: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent),

		Placeholder: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(theme.Secondary).
			Align(lipgloss.Center, lipgloss.Center),

		Error: lipgloss.NewStyle().
			Foreground(Destructive).
			Bold(true),

		Playing: lipgloss.NewStyle().
			Foreground(Success).
			Bold(true),

		Paused: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Spinner: lipgloss.NewStyle().
			Foreground(theme.Accent),

	}
}

// DefaultStyles returns styles for the detected theme
func DefaultStyles() Styles {
	return NewStyles(DetectTheme())
}

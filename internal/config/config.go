package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"lightbox/internal/gallery"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the workspace-relative config location.
const DefaultPath = ".lightbox/config.yaml"

// Config holds all lightbox configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Slideshow behaviour
	Gallery GalleryConfig `yaml:"gallery"`

	// Thumbnail strip geometry
	Thumbnails ThumbnailConfig `yaml:"thumbnails"`

	// Image sources
	Source SourceConfig `yaml:"source"`

	// Terminal presentation
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// GalleryConfig configures navigation, gestures and autoplay.
type GalleryConfig struct {
	AutoSlide         bool    `yaml:"auto_slide"`
	SliderInterval    string  `yaml:"slider_interval"`    // inline property slider
	SlideshowInterval string  `yaml:"slideshow_interval"` // modal event slideshow
	HeroInterval      string  `yaml:"hero_interval"`      // inline hero
	MinSwipeDistance  float64 `yaml:"min_swipe_distance"` // px, strictly exceeded
	DragThreshold     float64 `yaml:"drag_threshold"`     // px before a drag is horizontal
}

// ThumbnailConfig configures the thumbnail strip.
type ThumbnailConfig struct {
	Width    float64 `yaml:"width"`
	Gap      float64 `yaml:"gap"`
	Viewport float64 `yaml:"viewport"`
}

// SourceConfig configures directory loading and the catalog.
type SourceConfig struct {
	DatabasePath   string `yaml:"database_path"`
	MaxConcurrency int    `yaml:"max_concurrency"`
	Watch          bool   `yaml:"watch"`
	WatchDebounce  string `yaml:"watch_debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "lightbox",
		Version: "0.3.0",

		Gallery: GalleryConfig{
			AutoSlide:         false,
			SliderInterval:    "6s",
			SlideshowInterval: "3s",
			HeroInterval:      "5s",
			MinSwipeDistance:  gallery.DefaultMinSwipeDistance,
			DragThreshold:     gallery.DefaultDragThreshold,
		},

		Thumbnails: ThumbnailConfig{
			Width:    gallery.DefaultThumbnailWidth,
			Gap:      gallery.DefaultThumbnailGap,
			Viewport: gallery.DefaultStripViewport,
		},

		Source: SourceConfig{
			DatabasePath:   ".lightbox/catalog.db",
			MaxConcurrency: 8,
			Watch:          false,
			WatchDebounce:  "250ms",
		},

		UI: *DefaultUIConfig(),

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults still honour the environment
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LIGHTBOX_AUTOPLAY"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Gallery.AutoSlide = b
		}
	}
	// One interval for every variant
	if v := os.Getenv("LIGHTBOX_INTERVAL"); v != "" {
		if _, err := time.ParseDuration(v); err == nil {
			c.Gallery.SliderInterval = v
			c.Gallery.SlideshowInterval = v
			c.Gallery.HeroInterval = v
		}
	}
	if path := os.Getenv("LIGHTBOX_DB"); path != "" {
		c.Source.DatabasePath = path
	}
	if v := os.Getenv("LIGHTBOX_DARK_MODE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				c.UI.Theme = "dark"
			} else {
				c.UI.Theme = "light"
			}
		}
	}
}

// GetSliderInterval returns the inline slider interval as a duration.
func (c *Config) GetSliderInterval() time.Duration {
	return parseInterval(c.Gallery.SliderInterval, gallery.DefaultSliderInterval)
}

// GetSlideshowInterval returns the modal slideshow interval as a duration.
func (c *Config) GetSlideshowInterval() time.Duration {
	return parseInterval(c.Gallery.SlideshowInterval, gallery.DefaultSlideshowInterval)
}

// GetHeroInterval returns the hero interval as a duration.
func (c *Config) GetHeroInterval() time.Duration {
	return parseInterval(c.Gallery.HeroInterval, gallery.DefaultHeroInterval)
}

// GetWatchDebounce returns the watcher debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	return parseInterval(c.Source.WatchDebounce, 250*time.Millisecond)
}

func parseInterval(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"gallery.slider_interval":    c.Gallery.SliderInterval,
		"gallery.slideshow_interval": c.Gallery.SlideshowInterval,
		"gallery.hero_interval":      c.Gallery.HeroInterval,
		"source.watch_debounce":      c.Source.WatchDebounce,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive, got %s", name, v)
		}
	}
	if c.Gallery.MinSwipeDistance < 0 {
		return fmt.Errorf("invalid gallery.min_swipe_distance: %v", c.Gallery.MinSwipeDistance)
	}
	if c.Gallery.DragThreshold < 0 {
		return fmt.Errorf("invalid gallery.drag_threshold: %v", c.Gallery.DragThreshold)
	}
	if c.Thumbnails.Width < 0 || c.Thumbnails.Gap < 0 || c.Thumbnails.Viewport < 0 {
		return fmt.Errorf("invalid thumbnails geometry: width=%v gap=%v viewport=%v",
			c.Thumbnails.Width, c.Thumbnails.Gap, c.Thumbnails.Viewport)
	}
	if c.Source.MaxConcurrency < 0 {
		return fmt.Errorf("invalid source.max_concurrency: %d", c.Source.MaxConcurrency)
	}
	return c.UI.Validate()
}

// GalleryOptions builds session options for a variant. The hero flag picks
// the hero preset for inline sessions.
func (c *Config) GalleryOptions(variant gallery.Variant, hero bool) gallery.Options {
	var opts gallery.Options
	switch {
	case variant == gallery.VariantModal:
		opts = gallery.SlideshowOptions()
		opts.SlideInterval = c.GetSlideshowInterval()
		opts.AutoSlide = c.Gallery.AutoSlide
	case hero:
		opts = gallery.HeroOptions()
		opts.SlideInterval = c.GetHeroInterval()
	default:
		opts = gallery.DefaultOptions()
		opts.SlideInterval = c.GetSliderInterval()
		opts.AutoSlide = c.Gallery.AutoSlide
	}

	if c.Gallery.MinSwipeDistance > 0 {
		opts.MinSwipeDistance = c.Gallery.MinSwipeDistance
	}
	if c.Gallery.DragThreshold > 0 {
		opts.DragThreshold = c.Gallery.DragThreshold
	}
	if c.Thumbnails.Width > 0 {
		opts.ThumbnailWidth = c.Thumbnails.Width
	}
	if c.Thumbnails.Gap >= 0 {
		opts.ThumbnailGap = c.Thumbnails.Gap
	}
	if c.Thumbnails.Viewport > 0 {
		opts.StripViewport = c.Thumbnails.Viewport
	}
	return opts
}

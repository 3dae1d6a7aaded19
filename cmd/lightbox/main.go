package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"lightbox/internal/config"
	"lightbox/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	autoplay   bool
	interval   time.Duration
	watch      bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "lightbox",
	Short: "lightbox - terminal photo galleries",
	Long: `lightbox shows directories of photos as an inline slider, a hero
slideshow or a full-screen lightbox over a grid.

Navigation works the same everywhere: arrow keys, mouse swipes on the
image, clicks on arrows, thumbnails or dots. Space toggles autoplay and
Esc closes the lightbox.

Galleries can also be imported into a local catalog and opened by slug.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws, err := resolveWorkspace()
		if err != nil {
			return err
		}
		if err := logging.Initialize(ws); err != nil {
			logger.Warn("file logging disabled", zap.Error(err))
		} else if err := logging.InitAudit(); err != nil {
			logger.Warn("audit journal disabled", zap.Error(err))
		}
		logging.Boot("lightbox %s started in %s", cmd.Name(), ws)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAudit()
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Args: cobra.MaximumNArgs(1),
	RunE: runSlider,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: <workspace>/"+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&autoplay, "autoplay", false, "Start autoplay (overrides gallery.auto_slide)")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", 0, "Autoplay interval for every variant")
	rootCmd.PersistentFlags().BoolVar(&watch, "watch", false, "Reload the directory when files change")

	sliderCmd.Flags().Bool("hero", false, "Hero slideshow: dots instead of thumbnails, autoplay on")
	rootCmd.Flags().AddFlagSet(sliderCmd.Flags())
	lightboxCmd.Flags().String("gallery", "", "Open a catalog gallery by slug instead of a directory")

	catalogImportCmd.Flags().String("slug", "", "Gallery slug (default: directory name)")
	catalogImportCmd.Flags().String("title", "", "Gallery title (default: slug)")
	catalogImportCmd.Flags().String("kind", "property", "Gallery kind: property or event")
	catalogImportCmd.Flags().String("description", "", "Markdown description")
	catalogImportCmd.Flags().Bool("featured", false, "Feature the gallery in related listings")
	catalogImportCmd.Flags().Bool("append", false, "Add to an existing gallery")
	catalogListCmd.Flags().String("kind", "", "Only list galleries of this kind")
	catalogFeaturedCmd.Flags().IntP("limit", "n", 3, "Number of galleries")
	catalogFeaturedCmd.Flags().String("exclude", "", "Slug to leave out")

	configInitCmd.Flags().Bool("force", false, "Overwrite an existing config")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogFeaturedCmd)

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)

	rootCmd.AddCommand(sliderCmd)
	rootCmd.AddCommand(lightboxCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRun is skipped on error
		logging.BootError("%v", err)
		logging.CloseAudit()
		logging.CloseAll()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the --workspace flag or the current directory.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	ws, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve workspace: %w", err)
	}
	return ws, nil
}

// resolveConfigPath returns the --config flag or the workspace default.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	ws, err := resolveWorkspace()
	if err != nil {
		return "", err
	}
	return filepath.Join(ws, config.DefaultPath), nil
}

// loadConfig loads and validates the config, then applies command-line
// overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if f := cmd.Flags().Lookup("autoplay"); f != nil && f.Changed {
		cfg.Gallery.AutoSlide = autoplay
	}
	if interval > 0 {
		cfg.Gallery.SliderInterval = interval.String()
		cfg.Gallery.SlideshowInterval = interval.String()
		cfg.Gallery.HeroInterval = interval.String()
	}
	if f := cmd.Flags().Lookup("watch"); f != nil && f.Changed {
		cfg.Source.Watch = watch
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	logging.BootDebug("config %s: auto_slide=%v watch=%v", path, cfg.Gallery.AutoSlide, cfg.Source.Watch)
	logger.Debug("config loaded", zap.String("path", path),
		zap.Bool("auto_slide", cfg.Gallery.AutoSlide),
		zap.String("theme", cfg.UI.Theme))
	return cfg, nil
}

// catalogPath resolves the catalog database against the workspace.
func catalogPath(cfg *config.Config) (string, error) {
	p := cfg.Source.DatabasePath
	if filepath.IsAbs(p) || p == ":memory:" {
		return p, nil
	}
	ws, err := resolveWorkspace()
	if err != nil {
		return "", err
	}
	return filepath.Join(ws, p), nil
}

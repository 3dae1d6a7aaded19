package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"lightbox/cmd/lightbox/ui"
	"lightbox/internal/config"
	"lightbox/internal/gallery"
	"lightbox/internal/logging"
	"lightbox/internal/source"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// sliderCmd shows a directory as the inline slider (or the hero)
var sliderCmd = &cobra.Command{
	Use:   "slider [dir]",
	Short: "Show a directory as an inline photo slider",
	Long: `Shows every image in a directory, ordered by file name. A "<name>.txt"
file next to an image becomes its caption.

With --hero the slider shows indicator dots instead of thumbnails and
autoplays from the start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSlider,
}

// lightboxCmd shows a grid that opens a full-screen slideshow
var lightboxCmd = &cobra.Command{
	Use:   "lightbox [dir]",
	Short: "Show a grid of photos that opens a full-screen slideshow",
	Long: `Shows a directory (or, with --gallery, a catalog gallery) as a grid.
Enter or a click opens the slideshow at that photo; "s" starts it from the
first photo. Esc returns to the grid.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLightbox,
}

func runSlider(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	hero, _ := cmd.Flags().GetBool("hero")

	dir := dirArg(args)
	records, err := loadRecords(ctx, cfg, dir)
	if err != nil {
		return err
	}

	vopts := viewerOptions(cfg, dirTitle(dir), "")
	vopts.Hero = hero
	model, err := ui.NewSliderModel(records, cfg.GalleryOptions(gallery.VariantInline, hero), newStyles(cfg), vopts)
	if err != nil {
		return err
	}
	defer model.Close()

	if cfg.Source.Watch {
		w, err := startWatcher(ctx, cfg, dir, model.Session(), model.Bus())
		if err != nil {
			return err
		}
		defer w.Stop()
	}
	return runProgram(ctx, model)
}

func runLightbox(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slug, _ := cmd.Flags().GetString("gallery")

	var (
		records []gallery.ImageRecord
		vopts   ui.ViewerOptions
		dir     string
	)
	if slug != "" {
		g, recs, related, err := loadCatalogGallery(ctx, cfg, slug)
		if err != nil {
			return err
		}
		records = recs
		vopts = viewerOptions(cfg, g.Title, galleryDescription(g, related))
		if cfg.Source.Watch {
			logger.Warn("--watch ignored for catalog galleries", zap.String("slug", slug))
			cfg.Source.Watch = false
		}
	} else {
		dir = dirArg(args)
		records, err = loadRecords(ctx, cfg, dir)
		if err != nil {
			return err
		}
		vopts = viewerOptions(cfg, dirTitle(dir), "")
	}

	model := ui.NewLightboxModel(records, cfg.GalleryOptions(gallery.VariantModal, false), newStyles(cfg), vopts)
	defer model.Lightbox().Close()

	if cfg.Source.Watch {
		w, err := startWatcher(ctx, cfg, dir, model.Lightbox(), model.Bus())
		if err != nil {
			return err
		}
		defer w.Stop()
	}
	return runProgram(ctx, model)
}

func dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

// dirTitle names a directory gallery after its folder.
func dirTitle(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(dir)
}

// loadRecords reads a gallery directory.
func loadRecords(ctx context.Context, cfg *config.Config, dir string) ([]gallery.ImageRecord, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	records, err := source.LoadDirWithOptions(ctx, abs, source.LoadOptions{Concurrency: cfg.Source.MaxConcurrency})
	if err != nil {
		return nil, err
	}
	logger.Info("gallery loaded", zap.String("dir", abs), zap.Int("images", len(records)))
	return records, nil
}

// loadCatalogGallery opens the catalog and reads one gallery plus a few
// related ones for the details pane.
func loadCatalogGallery(ctx context.Context, cfg *config.Config, slug string) (source.Gallery, []gallery.ImageRecord, []source.GalleryCover, error) {
	path, err := catalogPath(cfg)
	if err != nil {
		return source.Gallery{}, nil, nil, err
	}
	cat, err := source.OpenCatalog(path)
	if err != nil {
		return source.Gallery{}, nil, nil, err
	}
	defer cat.Close()

	g, err := cat.Gallery(ctx, slug)
	if err != nil {
		return source.Gallery{}, nil, nil, err
	}
	records, err := cat.Images(ctx, slug)
	if err != nil {
		return source.Gallery{}, nil, nil, err
	}
	related, err := cat.Featured(ctx, 3, slug)
	if err != nil {
		logger.Warn("related galleries unavailable", zap.Error(err))
		related = nil
	}
	logger.Info("catalog gallery loaded", zap.String("slug", slug), zap.Int("images", len(records)))
	return g, records, related, nil
}

// galleryDescription appends related galleries to the description markdown.
func galleryDescription(g source.Gallery, related []source.GalleryCover) string {
	desc := strings.TrimSpace(g.Description)
	if len(related) == 0 {
		return desc
	}
	var b strings.Builder
	b.WriteString(desc)
	b.WriteString("\n\n**More galleries**\n\n")
	for _, r := range related {
		fmt.Fprintf(&b, "- %s (%d photos)\n", r.Gallery.Title, r.Images)
	}
	return strings.TrimSpace(b.String())
}

func viewerOptions(cfg *config.Config, title, description string) ui.ViewerOptions {
	return ui.ViewerOptions{
		Title:        title,
		Description:  description,
		InfoRatio:    cfg.UI.InfoPaneRatio,
		CellWidthPx:  cfg.UI.CellWidthPx,
		CellHeightPx: cfg.UI.CellHeightPx,
		ShowHelp:     cfg.UI.ShowHelp,
		GridColumns:  cfg.UI.GridColumns,
	}
}

func newStyles(cfg *config.Config) ui.Styles {
	if cfg.UI.IsDark(ui.DetectDark()) {
		return ui.NewStyles(ui.DarkTheme())
	}
	return ui.NewStyles(ui.LightTheme())
}

// startWatcher reloads dir into target and reports each reload on the bus.
func startWatcher(ctx context.Context, cfg *config.Config, dir string, target source.Target, bus *ui.EventBus) (*source.Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	w, err := source.NewWatcher(abs, target, cfg.GetWatchDebounce())
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	w.OnReload(func(images int, err error) {
		bus.Send(ui.ImagesReloadedMsg{Images: images, Err: err})
	})
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return nil, fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	logger.Info("watching gallery directory", zap.String("dir", abs))
	return w, nil
}

func runProgram(ctx context.Context, model tea.Model) error {
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		logging.UI("program stopped by signal")
		return nil
	}
	return err
}

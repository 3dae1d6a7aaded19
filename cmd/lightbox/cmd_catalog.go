package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"lightbox/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// catalogCmd manages the local gallery catalog
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the local gallery catalog",
	Long: `The catalog keeps galleries and their images in a SQLite database
(source.database_path, default .lightbox/catalog.db). Catalog galleries open
with "lightbox lightbox --gallery <slug>".`,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a directory of images as a gallery",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogImport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List galleries, newest first",
	Args:  cobra.NoArgs,
	RunE:  runCatalogList,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <slug>",
	Short: "Show a gallery and its images",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured galleries, topped up with recent ones",
	Args:  cobra.NoArgs,
	RunE:  runCatalogFeatured,
}

// openCatalog loads the config and opens the catalog it points at.
func openCatalog(cmd *cobra.Command) (*source.Catalog, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	path, err := catalogPath(cfg)
	if err != nil {
		return nil, err
	}
	return source.OpenCatalog(path)
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	dir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	slug, _ := cmd.Flags().GetString("slug")
	title, _ := cmd.Flags().GetString("title")
	kind, _ := cmd.Flags().GetString("kind")
	description, _ := cmd.Flags().GetString("description")
	featured, _ := cmd.Flags().GetBool("featured")
	appendTo, _ := cmd.Flags().GetBool("append")

	if slug == "" {
		slug = slugify(filepath.Base(dir))
	}
	if title == "" {
		title = slug
	}
	switch source.Kind(kind) {
	case source.KindProperty, source.KindEvent:
	default:
		return fmt.Errorf("invalid kind %q (valid: property, event)", kind)
	}

	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	records, err := source.LoadDir(ctx, dir)
	if err != nil {
		return err
	}

	if appendTo {
		if _, err := cat.Gallery(ctx, slug); err != nil {
			return err
		}
	} else {
		if _, err := cat.CreateGallery(ctx, source.Gallery{
			Slug:        slug,
			Title:       title,
			Kind:        source.Kind(kind),
			Description: description,
			Featured:    featured,
		}); err != nil {
			return err
		}
	}

	n, err := cat.ImportRecords(ctx, slug, records)
	if err != nil {
		return err
	}
	logger.Info("catalog import", zap.String("slug", slug), zap.Int("images", n))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d images into %s\n", n, slug)
	return nil
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	kind, _ := cmd.Flags().GetString("kind")

	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	galleries, err := cat.Galleries(ctx, source.Kind(kind))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(galleries) == 0 {
		fmt.Fprintln(out, "No galleries in catalog")
		return nil
	}
	for _, g := range galleries {
		star := " "
		if g.Featured {
			star = "*"
		}
		fmt.Fprintf(out, "%s %-24s %-9s %s\n", star, g.Slug, g.Kind, g.Title)
	}
	return nil
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	slug := args[0]

	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	g, err := cat.Gallery(ctx, slug)
	if err != nil {
		return err
	}
	images, err := cat.Images(ctx, slug)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s, %s)\n", g.Title, g.Slug, g.Kind)
	if g.Description != "" {
		fmt.Fprintf(out, "%s\n", strings.TrimSpace(g.Description))
	}
	fmt.Fprintf(out, "%d images\n", len(images))
	for i, img := range images {
		line := fmt.Sprintf("%3d. %s", i+1, img.Filename)
		if img.Caption != "" {
			line += " - " + img.Caption
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func runCatalogFeatured(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	limit, _ := cmd.Flags().GetInt("limit")
	exclude, _ := cmd.Flags().GetString("exclude")

	cat, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer cat.Close()

	covers, err := cat.Featured(ctx, limit, exclude)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(covers) == 0 {
		fmt.Fprintln(out, "No galleries in catalog")
		return nil
	}
	for _, c := range covers {
		cover := "-"
		if c.Cover != nil {
			cover = c.Cover.Filename
		}
		fmt.Fprintf(out, "%-24s %3d photos  cover: %s\n", c.Gallery.Slug, c.Images, cover)
	}
	return nil
}

// slugify lowercases name and joins its words with dashes.
func slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

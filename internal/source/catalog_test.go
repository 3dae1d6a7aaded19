package source

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lightbox/internal/gallery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := OpenCatalog(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCatalog_ImagesInSortOrder(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	_, err := c.CreateGallery(ctx, Gallery{Slug: "lot-12", Title: "Lot 12", Kind: KindProperty})
	require.NoError(t, err)

	_, err = c.AddImage(ctx, "lot-12", CatalogImage{Data: jpegBytes, MIMEType: "image/jpeg", Caption: "back", Order: 2})
	require.NoError(t, err)
	_, err = c.AddImage(ctx, "lot-12", CatalogImage{Data: pngBytes, MIMEType: "image/png", AltText: "front", Order: 1})
	require.NoError(t, err)
	_, err = c.AddImage(ctx, "lot-12", CatalogImage{Data: gifBytes, MIMEType: "image/gif", Order: 0, Archived: true})
	require.NoError(t, err)

	records, err := c.Images(ctx, "lot-12")
	require.NoError(t, err)
	require.Len(t, records, 2)

	first, ok := records[0].Payload.(gallery.Encoded)
	require.True(t, ok)
	assert.Equal(t, pngBytes, first.Data)
	assert.Equal(t, "front", records[0].AltText)
	assert.Equal(t, "back", records[1].Caption)

	slides := gallery.Normalize(records)
	assert.True(t, slides[0].Valid)
	assert.Equal(t, "front", slides[0].Alt)
	assert.Equal(t, "back", slides[1].Alt)
}

func TestCatalog_UnknownSlug(t *testing.T) {
	c := openTestCatalog(t)

	_, err := c.Images(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrGalleryNotFound)

	_, err = c.AddImage(context.Background(), "nope", CatalogImage{Data: pngBytes, MIMEType: "image/png"})
	assert.ErrorIs(t, err, ErrGalleryNotFound)

	_, err = c.Gallery(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrGalleryNotFound)
}

func TestCatalog_DuplicateSlug(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)

	_, err := c.CreateGallery(ctx, Gallery{Slug: "dup", Title: "One"})
	require.NoError(t, err)
	_, err = c.CreateGallery(ctx, Gallery{Slug: "dup", Title: "Two"})
	assert.Error(t, err)

	_, err = c.CreateGallery(ctx, Gallery{Slug: "  "})
	assert.Error(t, err)
}

func TestCatalog_GalleriesByKind(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mustCreate(t, c, Gallery{Slug: "old-event", Kind: KindEvent, CreatedAt: base})
	mustCreate(t, c, Gallery{Slug: "new-event", Kind: KindEvent, CreatedAt: base.Add(time.Hour)})
	mustCreate(t, c, Gallery{Slug: "house", Kind: KindProperty, CreatedAt: base})
	mustCreate(t, c, Gallery{Slug: "gone", Kind: KindEvent, CreatedAt: base, Archived: true})

	events, err := c.Galleries(ctx, KindEvent)
	require.NoError(t, err)
	assert.Equal(t, []string{"new-event", "old-event"}, slugs(events))

	all, err := c.Galleries(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	g, err := c.Gallery(ctx, "gone")
	require.NoError(t, err)
	assert.True(t, g.Archived)
}

func TestCatalog_FeaturedTopsUpWithRecent(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mustCreate(t, c, Gallery{Slug: "featured-old", Featured: true, CreatedAt: base})
	mustCreate(t, c, Gallery{Slug: "featured-new", Featured: true, CreatedAt: base.Add(2 * time.Hour)})
	mustCreate(t, c, Gallery{Slug: "plain-old", CreatedAt: base.Add(time.Hour)})
	mustCreate(t, c, Gallery{Slug: "plain-new", CreatedAt: base.Add(3 * time.Hour)})
	mustCreate(t, c, Gallery{Slug: "archived", CreatedAt: base.Add(4 * time.Hour), Archived: true})

	_, err := c.AddImage(ctx, "plain-new", CatalogImage{Data: pngBytes, MIMEType: "image/png", Order: 1})
	require.NoError(t, err)
	_, err = c.AddImage(ctx, "plain-new", CatalogImage{Data: jpegBytes, MIMEType: "image/jpeg", Order: 0, Caption: "cover"})
	require.NoError(t, err)

	got, err := c.Featured(ctx, 3, "")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"featured-new", "featured-old", "plain-new"}, coverSlugs(got))

	require.NotNil(t, got[2].Cover)
	assert.Equal(t, "cover", got[2].Cover.Caption)
	assert.Equal(t, 2, got[2].Images)
	assert.Nil(t, got[0].Cover)

	// Enough featured: no top-up
	got, err = c.Featured(ctx, 1, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"featured-new"}, coverSlugs(got))

	// Excluding the current gallery
	got, err = c.Featured(ctx, 4, "featured-new")
	require.NoError(t, err)
	assert.Equal(t, []string{"featured-old", "plain-new", "plain-old"}, coverSlugs(got))

	got, err = c.Featured(ctx, 0, "")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCatalog_ImportRecords(t *testing.T) {
	ctx := context.Background()
	c := openTestCatalog(t)
	mustCreate(t, c, Gallery{Slug: "imported"})

	records := []gallery.ImageRecord{
		{ID: "1", Payload: gallery.Encoded{Data: pngBytes, MIMEType: "image/png"}, Filename: "a.png", Order: 0},
		{ID: "2", Payload: gallery.Ready{URI: "https://example.com/x.jpg"}, Filename: "remote.jpg", Order: 1},
		{ID: "3", Payload: gallery.Encoded{Data: gifBytes, MIMEType: "image/gif"}, Filename: "c.gif", Caption: "party", Order: 2},
	}
	n, err := c.ImportRecords(ctx, "imported", records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := c.Images(ctx, "imported")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a.png", got[0].Filename)
	assert.Equal(t, "party", got[1].Caption)
}

func mustCreate(t *testing.T, c *Catalog, g Gallery) {
	t.Helper()
	if g.Title == "" {
		g.Title = g.Slug
	}
	_, err := c.CreateGallery(context.Background(), g)
	require.NoError(t, err)
}

func slugs(gs []Gallery) []string {
	out := make([]string, len(gs))
	for i, g := range gs {
		out[i] = g.Slug
	}
	return out
}

func coverSlugs(cs []GalleryCover) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Gallery.Slug
	}
	return out
}

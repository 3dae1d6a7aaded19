package source

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrGalleryNotFound is returned for an unknown slug.
var ErrGalleryNotFound = errors.New("gallery not found")

// Kind distinguishes the two gallery families the site publishes.
type Kind string

const (
	KindProperty Kind = "property" // listing photo slider
	KindEvent    Kind = "event"    // title-issuing event slideshow
)

// Gallery is one catalog entry.
type Gallery struct {
	ID          string
	Slug        string
	Title       string
	Kind        Kind
	Description string // markdown
	Featured    bool
	Archived    bool // hidden from listings, still found by slug
	CreatedAt   time.Time
}

// GalleryCover is a gallery plus its first active image, for listings.
type GalleryCover struct {
	Gallery Gallery
	Cover   *gallery.ImageRecord
	Images  int
}

// CatalogImage is an image row ready for insertion. Data is the raw bytes;
// the catalog stores it base64-encoded.
type CatalogImage struct {
	Data     []byte
	MIMEType string
	AltText  string
	Caption  string
	Filename string
	Order    int
	Archived bool // stored but never shown
}

// Catalog stores galleries and their images in SQLite.
type Catalog struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// OpenCatalog opens (creating if needed) the catalog database at path.
func OpenCatalog(path string) (*Catalog, error) {
	if dir := filepath.Dir(path); dir != "" && path != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	c := &Catalog{db: db, dbPath: path}
	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Source("catalog opened at %s", path)
	return c, nil
}

func (c *Catalog) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS galleries (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		kind TEXT NOT NULL DEFAULT 'property',
		description TEXT NOT NULL DEFAULT '',
		featured INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS images (
		id TEXT PRIMARY KEY,
		gallery_id TEXT NOT NULL REFERENCES galleries(id) ON DELETE CASCADE,
		sort_order INTEGER NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL,
		data TEXT NOT NULL,
		alt_text TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		filename TEXT NOT NULL DEFAULT '',
		active INTEGER NOT NULL DEFAULT 1,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_images_gallery ON images(gallery_id, sort_order);
	CREATE INDEX IF NOT EXISTS idx_galleries_listing ON galleries(active, featured, created_at);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize catalog schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Close()
}

// CreateGallery inserts g. An empty ID is generated and a zero CreatedAt is
// set to now.
func (c *Catalog) CreateGallery(ctx context.Context, g Gallery) (Gallery, error) {
	if strings.TrimSpace(g.Slug) == "" {
		return Gallery{}, fmt.Errorf("create gallery: slug required")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.Kind == "" {
		g.Kind = KindProperty
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO galleries (id, slug, title, kind, description, featured, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Slug, g.Title, string(g.Kind), g.Description,
		boolInt(g.Featured), boolInt(!g.Archived), g.CreatedAt.UnixNano())
	logging.AuditWithCategory(logging.CategorySource).CatalogOp(logging.AuditCatalogCreate, g.Slug, 0, err)
	if err != nil {
		return Gallery{}, fmt.Errorf("create gallery %s: %w", g.Slug, err)
	}
	return g, nil
}

// AddImage appends an image to the gallery with the given slug.
func (c *Catalog) AddImage(ctx context.Context, slug string, img CatalogImage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	galleryID, err := c.galleryIDLocked(ctx, slug)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO images (id, gallery_id, sort_order, mime_type, data, alt_text, caption, filename, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, galleryID, img.Order, img.MIMEType, base64.StdEncoding.EncodeToString(img.Data),
		img.AltText, img.Caption, img.Filename, boolInt(!img.Archived), time.Now().UnixNano())
	logging.AuditWithCategory(logging.CategorySource).CatalogOp(logging.AuditCatalogAdd, slug, 1, err)
	if err != nil {
		return "", fmt.Errorf("add image to %s: %w", slug, err)
	}
	return id, nil
}

// ImportRecords adds directory-loaded records to a gallery, keeping their order.
func (c *Catalog) ImportRecords(ctx context.Context, slug string, records []gallery.ImageRecord) (int, error) {
	n := 0
	for _, rec := range records {
		enc, ok := rec.Payload.(gallery.Encoded)
		if !ok || len(enc.Data) == 0 {
			logging.SourceWarn("catalog import: skipping %s without image data", rec.Filename)
			continue
		}
		if _, err := c.AddImage(ctx, slug, CatalogImage{
			Data:     enc.Data,
			MIMEType: enc.MIMEType,
			AltText:  rec.AltText,
			Caption:  rec.Caption,
			Filename: rec.Filename,
			Order:    rec.Order,
		}); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Gallery looks up a gallery by slug.
func (c *Catalog) Gallery(ctx context.Context, slug string) (Gallery, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row := c.db.QueryRowContext(ctx,
		`SELECT id, slug, title, kind, description, featured, active, created_at
		 FROM galleries WHERE slug = ?`, slug)
	g, err := scanGallery(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Gallery{}, fmt.Errorf("%w: %s", ErrGalleryNotFound, slug)
	}
	return g, err
}

// Images returns the active images of a gallery in display order, ready to
// mount. Rows keep their stored base64 form until normalization.
func (c *Catalog) Images(ctx context.Context, slug string) ([]gallery.ImageRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	galleryID, err := c.galleryIDLocked(ctx, slug)
	if err != nil {
		return nil, err
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT id, mime_type, data, alt_text, caption, filename, sort_order
		 FROM images WHERE gallery_id = ? AND active = 1
		 ORDER BY sort_order ASC, created_at ASC`, galleryID)
	if err != nil {
		return nil, fmt.Errorf("query images for %s: %w", slug, err)
	}
	defer rows.Close()

	var records []gallery.ImageRecord
	for rows.Next() {
		rec, err := scanImage(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	logging.AuditWithCategory(logging.CategorySource).CatalogOp(logging.AuditCatalogQuery, slug, len(records), nil)
	return records, nil
}

// Galleries lists active galleries, newest first. An empty kind lists all.
func (c *Catalog) Galleries(ctx context.Context, kind Kind) ([]Gallery, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	query := `SELECT id, slug, title, kind, description, featured, active, created_at
		FROM galleries WHERE active = 1`
	var args []interface{}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list galleries: %w", err)
	}
	defer rows.Close()

	var out []Gallery
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Featured returns up to limit active galleries for a "related" strip:
// featured ones first (newest first), topped up with the most recent
// non-featured galleries when there are not enough. exclude drops one slug,
// typically the gallery being viewed.
func (c *Catalog) Featured(ctx context.Context, limit int, exclude string) ([]GalleryCover, error) {
	if limit <= 0 {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	const cols = `SELECT id, slug, title, kind, description, featured, active, created_at FROM galleries`

	featured, err := c.queryGalleriesLocked(ctx,
		cols+` WHERE active = 1 AND featured = 1 AND slug != ?
		 ORDER BY created_at DESC LIMIT ?`, exclude, limit)
	if err != nil {
		return nil, fmt.Errorf("query featured galleries: %w", err)
	}

	picked := featured
	if len(picked) < limit {
		seen := make(map[string]bool, len(picked))
		for _, g := range picked {
			seen[g.ID] = true
		}
		recent, err := c.queryGalleriesLocked(ctx,
			cols+` WHERE active = 1 AND slug != ?
			 ORDER BY featured DESC, created_at DESC`, exclude)
		if err != nil {
			return nil, fmt.Errorf("query recent galleries: %w", err)
		}
		for _, g := range recent {
			if len(picked) >= limit {
				break
			}
			if seen[g.ID] {
				continue
			}
			picked = append(picked, g)
		}
		logging.SourceDebug("featured: %d featured, topped up to %d", len(featured), len(picked))
	}

	out := make([]GalleryCover, 0, len(picked))
	for _, g := range picked {
		cover, count, err := c.coverLocked(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, GalleryCover{Gallery: g, Cover: cover, Images: count})
	}
	logging.AuditWithCategory(logging.CategorySource).CatalogOp(logging.AuditCatalogQuery, "featured", len(out), nil)
	return out, nil
}

func (c *Catalog) queryGalleriesLocked(ctx context.Context, query string, args ...interface{}) ([]Gallery, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Gallery
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (c *Catalog) coverLocked(ctx context.Context, galleryID string) (*gallery.ImageRecord, int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM images WHERE gallery_id = ? AND active = 1`, galleryID).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("count images: %w", err)
	}
	if count == 0 {
		return nil, 0, nil
	}

	row := c.db.QueryRowContext(ctx,
		`SELECT id, mime_type, data, alt_text, caption, filename, sort_order
		 FROM images WHERE gallery_id = ? AND active = 1
		 ORDER BY sort_order ASC, created_at ASC LIMIT 1`, galleryID)
	rec, err := scanImage(row)
	if err != nil {
		return nil, 0, err
	}
	return &rec, count, nil
}

func (c *Catalog) galleryIDLocked(ctx context.Context, slug string) (string, error) {
	var id string
	err := c.db.QueryRowContext(ctx, `SELECT id FROM galleries WHERE slug = ?`, slug).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrGalleryNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("lookup gallery %s: %w", slug, err)
	}
	return id, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanGallery(s scanner) (Gallery, error) {
	var (
		g                Gallery
		kind             string
		featured, active int
		createdAt        int64
	)
	if err := s.Scan(&g.ID, &g.Slug, &g.Title, &kind, &g.Description, &featured, &active, &createdAt); err != nil {
		return Gallery{}, err
	}
	g.Kind = Kind(kind)
	g.Featured = featured != 0
	g.Archived = active == 0
	g.CreatedAt = time.Unix(0, createdAt)
	return g, nil
}

func scanImage(s scanner) (gallery.ImageRecord, error) {
	var (
		rec      gallery.ImageRecord
		mimeType string
		data     string
	)
	if err := s.Scan(&rec.ID, &mimeType, &data, &rec.AltText, &rec.Caption, &rec.Filename, &rec.Order); err != nil {
		return gallery.ImageRecord{}, fmt.Errorf("scan image: %w", err)
	}
	rec.Payload = gallery.PayloadFromBase64(data, mimeType)
	return rec, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

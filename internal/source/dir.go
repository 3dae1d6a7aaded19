// Package source supplies gallery image records: from a directory on disk,
// from the SQLite catalog, and from a watcher that reloads a directory into a
// live session.
package source

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel file reads in LoadDir.
const DefaultConcurrency = 8

// recordNamespace scopes name-based record IDs.
var recordNamespace = uuid.MustParse("6f1c3c1e-8d3a-4a57-9a0e-5b0f3c9c2a41")

// LoadOptions tune LoadDir.
type LoadOptions struct {
	// Concurrency bounds parallel reads; <= 0 means DefaultConcurrency.
	Concurrency int
}

// LoadDir reads every supported image in dir, ordered by file name. A
// sidecar "<name>.txt" next to an image becomes its caption. IDs are stable
// across reloads of the same path.
func LoadDir(ctx context.Context, dir string) ([]gallery.ImageRecord, error) {
	return LoadDirWithOptions(ctx, dir, LoadOptions{})
}

// LoadDirWithOptions is LoadDir with explicit options.
func LoadDirWithOptions(ctx context.Context, dir string, opts LoadOptions) ([]gallery.ImageRecord, error) {
	timer := logging.StartTimer(logging.CategorySource, "LoadDir "+dir)
	defer timer.StopWithThreshold(500 * time.Millisecond)

	entries, err := os.ReadDir(dir)
	if err != nil {
		logging.AuditWithCategory(logging.CategorySource).SourceLoad(dir, 0, false, 0, err)
		return nil, fmt.Errorf("read gallery dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if mimeFromExtension(e.Name()) == "" {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	records := make([]gallery.ImageRecord, len(names))
	var (
		skipped   []string
		skippedMu sync.Mutex
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := readImage(dir, name)
			if err != nil {
				logging.SourceWarn("skipping %s: %v", name, err)
				skippedMu.Lock()
				skipped = append(skipped, name)
				skippedMu.Unlock()
				return nil
			}
			rec.Order = i
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logging.AuditWithCategory(logging.CategorySource).SourceLoad(dir, 0, false, time.Since(start), err)
		return nil, fmt.Errorf("load gallery dir: %w", err)
	}

	out := records[:0]
	for _, rec := range records {
		if rec.ID != "" {
			out = append(out, rec)
		}
	}
	for i := range out {
		out[i].Order = i
	}

	logging.Source("loaded %d images from %s (%d skipped)", len(out), dir, len(skipped))
	logging.AuditWithCategory(logging.CategorySource).SourceLoad(dir, len(out), false, time.Since(start), nil)
	return out, nil
}

func readImage(dir, name string) (gallery.ImageRecord, error) {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return gallery.ImageRecord{}, err
	}

	mimeType := sniffMIME(name, data)
	if !gallery.IsSupportedMIME(mimeType) {
		return gallery.ImageRecord{}, fmt.Errorf("unsupported image type %q", mimeType)
	}

	stem := strings.TrimSuffix(name, filepath.Ext(name))
	caption := ""
	if b, err := os.ReadFile(filepath.Join(dir, stem+".txt")); err == nil {
		caption = strings.TrimSpace(string(b))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return gallery.ImageRecord{
		ID:       uuid.NewSHA1(recordNamespace, []byte(abs)).String(),
		Payload:  gallery.Encoded{Data: data, MIMEType: mimeType},
		Caption:  caption,
		Filename: name,
	}, nil
}

// sniffMIME prefers the content signature and falls back to the extension
// for formats the sniffer does not know, such as SVG.
func sniffMIME(name string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	return mimeFromExtension(name)
}

var extensionMIMEs = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
}

func mimeFromExtension(name string) string {
	return extensionMIMEs[strings.ToLower(filepath.Ext(name))]
}

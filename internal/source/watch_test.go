package source

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"lightbox/internal/gallery"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	mu    sync.Mutex
	calls [][]gallery.ImageRecord
}

func (r *recordingTarget) SetImages(records []gallery.ImageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, records)
}

func (r *recordingTarget) last() ([]gallery.ImageRecord, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil, 0
	}
	return r.calls[len(r.calls)-1], len(r.calls)
}

func TestWatcher_ReloadsIntoTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", pngBytes)

	target := &recordingTarget{}
	w, err := NewWatcher(dir, target, 50*time.Millisecond)
	require.NoError(t, err)

	reloaded := make(chan int, 8)
	w.OnReload(func(images int, err error) {
		if err == nil {
			reloaded <- images
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	writeFile(t, dir, "b.jpg", jpegBytes)
	writeFile(t, dir, "notes.md", []byte("not an image"))

	select {
	case n := <-reloaded:
		assert.Equal(t, 2, n)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after adding an image")
	}

	records, calls := target.last()
	require.Equal(t, 1, calls)
	require.Len(t, records, 2)
	assert.Equal(t, "b.jpg", records[1].Filename)

	require.NoError(t, os.Remove(filepath.Join(dir, "a.png")))
	select {
	case n := <-reloaded:
		assert.Equal(t, 1, n)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after removing an image")
	}

	stats := w.Stats()
	assert.GreaterOrEqual(t, stats.Reloads, 2)
	assert.Equal(t, 1, stats.LastImages)
}

func TestWatcher_ShrinkStopsSessionAutoplay(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.png", pngBytes)
	writeFile(t, dir, "b.png", pngBytes)

	records, err := LoadDir(context.Background(), dir)
	require.NoError(t, err)

	opts := gallery.HeroOptions()
	opts.SlideInterval = time.Hour
	s, err := gallery.Mount(records, opts)
	require.NoError(t, err)
	defer s.Unmount()
	require.True(t, s.IsPlaying())

	w, err := NewWatcher(dir, s, 20*time.Millisecond)
	require.NoError(t, err)
	reloaded := make(chan struct{}, 4)
	w.OnReload(func(int, error) { reloaded <- struct{}{} })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.Remove(filepath.Join(dir, "b.png")))
	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}

	assert.Equal(t, 1, s.Len())
	assert.False(t, s.IsPlaying())
	assert.False(t, s.AutoplayRunning())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), &recordingTarget{}, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultWatchDebounce, w.debounce)
	w.Stop()
}

func TestWatcher_StartMissingDir(t *testing.T) {
	w, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), &recordingTarget{}, 0)
	require.NoError(t, err)
	defer w.Stop()
	assert.Error(t, w.Start(context.Background()))
}

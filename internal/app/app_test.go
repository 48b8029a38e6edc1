package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/tutor/internal/config"
	"github.com/MrSnakeDoc/tutor/internal/httpserver"
	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/testutil"
)

func testConfig(paths testutil.SitePaths) *config.Config {
	return &config.Config{
		ListenPort:         ":0",
		ShutdownTimeout:    time.Second,
		RequestTimeout:     5 * time.Second,
		LogLevel:           "error",
		ContentDir:         paths.ContentDir,
		IndexFile:          paths.IndexFile,
		StaticDir:          paths.StaticDir,
		OutputDir:          paths.OutputDir,
		HighlightLanguages: config.DefaultHighlightLanguages,
		HighlightStyle:     "github",
		TOCMinLevel:        1,
		TOCMaxLevel:        6,
		WatchDebounce:      50 * time.Millisecond,
		MetricsEnabled:     true,
	}
}

func TestBuild_Once(t *testing.T) {
	paths := testutil.WriteSite(t, testutil.DefaultPages())
	a, err := New(testConfig(paths), logger.NewNop())
	require.NoError(t, err)

	require.NoError(t, a.Build(context.Background(), false))
	assert.FileExists(t, filepath.Join(paths.OutputDir, "index.html"))
	assert.FileExists(t, filepath.Join(paths.OutputDir, "tutorial", "a", "index.html"))
	assert.FileExists(t, filepath.Join(paths.OutputDir, "404.html"))
}

func TestBuild_WatchStopsWithContext(t *testing.T) {
	paths := testutil.WriteSite(t, testutil.DefaultPages())
	a, err := New(testConfig(paths), logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Build(ctx, true) }()

	page := testutil.Page{File: "c.md", Title: "Page C", Href: "c", Category: "Basics", CatIndex: 1, SubCatIndex: 3}
	assert.Eventually(t, func() bool {
		// the first build recreates the output dir, so write until the watcher is up
		_ = os.WriteFile(filepath.Join(paths.ContentDir, page.File), []byte(page.Markdown()), 0o644)
		_, err := os.Stat(filepath.Join(paths.OutputDir, "tutorial", "c", "index.html"))
		return err == nil
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch build did not stop")
	}
}

func TestBuild_WatchPicksUpLayoutEdits(t *testing.T) {
	paths := testutil.WriteSite(t, testutil.DefaultPages())
	cfg := testConfig(paths)
	cfg.LayoutFile = filepath.Join(paths.Root, "layout.html")
	require.NoError(t, os.WriteFile(cfg.LayoutFile, []byte("OLD {{.Title}}"), 0o644))

	a, err := New(cfg, logger.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Build(ctx, true) }()

	index := filepath.Join(paths.OutputDir, "index.html")
	assert.Eventually(t, func() bool {
		data, err := os.ReadFile(index)
		return err == nil && string(data) == "OLD Welcome"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(cfg.LayoutFile, []byte("NEW {{.Title}}"), 0o644)
		data, err := os.ReadFile(index)
		return err == nil && string(data) == "NEW Welcome"
	}, 5*time.Second, 100*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch build did not stop")
	}
}

func TestNew_BadLayout(t *testing.T) {
	paths := testutil.WriteSite(t, nil)
	cfg := testConfig(paths)
	cfg.LayoutFile = filepath.Join(paths.Root, "missing.html")

	_, err := New(cfg, logger.NewNop())
	assert.Error(t, err)
}

func TestDeps_MetricsToggle(t *testing.T) {
	paths := testutil.WriteSite(t, testutil.DefaultPages())

	cfg := testConfig(paths)
	a, err := New(cfg, logger.NewNop())
	require.NoError(t, err)
	router := httpserver.NewRouter(cfg, a.Deps())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	cfg = testConfig(paths)
	cfg.MetricsEnabled = false
	a, err = New(cfg, logger.NewNop())
	require.NoError(t, err)
	router = httpserver.NewRouter(cfg, a.Deps())
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

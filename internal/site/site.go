// Package site assembles rendered pages from content, menu, TOC and layout.
// The static builder and the HTTP handlers both go through a Site so the two
// output variants produce identical pages.
package site

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/tutor/internal/content"
	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/markdown"
	"github.com/MrSnakeDoc/tutor/internal/menu"
	"github.com/MrSnakeDoc/tutor/internal/metrics"
	"github.com/MrSnakeDoc/tutor/internal/render"
	"github.com/MrSnakeDoc/tutor/internal/toc"
)

const (
	NotFoundTitle       = "Page Not Found"
	NotFoundDescription = "The server cannot find the requested resource"
)

// Options locates the site sources.
type Options struct {
	ContentDir  string
	IndexFile   string
	StaticDir   string
	LayoutFile  string // reparsed by ReloadLayout; empty keeps the layout passed to New
	TOCMinLevel int
	TOCMaxLevel int
}

// Site holds the process-wide rendering setup. It carries no per-request
// state; content is reloaded by every call to LoadPages.
type Site struct {
	opts    Options
	loader  *content.Loader
	md      *markdown.Renderer
	layout  atomic.Pointer[render.Renderer]
	metrics metrics.Recorder
	log     logger.Logger
}

// New wires a Site. A nil recorder disables metrics.
func New(opts Options, md *markdown.Renderer, layout *render.Renderer, rec metrics.Recorder, log logger.Logger) *Site {
	if opts.TOCMinLevel == 0 {
		opts.TOCMinLevel = 1
	}
	if opts.TOCMaxLevel == 0 {
		opts.TOCMaxLevel = 6
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	s := &Site{
		opts:    opts,
		loader:  content.NewLoader(opts.ContentDir),
		md:      md,
		metrics: rec,
		log:     log,
	}
	s.layout.Store(layout)
	return s
}

// ReloadLayout parses the layout file again so edits show up in the next
// render. On error the previous layout stays in place.
func (s *Site) ReloadLayout() error {
	if s.opts.LayoutFile == "" {
		return nil
	}
	layout, err := render.New(s.opts.LayoutFile)
	if err != nil {
		return err
	}
	s.layout.Store(layout)
	return nil
}

// StaticDir returns the static assets directory.
func (s *Site) StaticDir() string { return s.opts.StaticDir }

// ContentDir returns the directory tutorial pages are loaded from.
func (s *Site) ContentDir() string { return s.opts.ContentDir }

// Languages lists the highlight languages that were registered.
func (s *Site) Languages() []string { return s.md.Languages() }

// Check reports the first source path that cannot be read.
func (s *Site) Check() error {
	for _, p := range []string{s.opts.ContentDir, s.opts.IndexFile, s.opts.StaticDir} {
		if _, err := os.Stat(p); err != nil {
			return err
		}
	}
	return nil
}

// LoadPages reads every content page. Files that fail to load are logged and
// left out; only an unreadable content directory or a cancelled context is
// returned as an error.
func (s *Site) LoadPages(ctx context.Context) ([]content.Page, error) {
	start := time.Now()
	pages, err := s.loader.LoadAll(ctx)
	if err != nil && pages == nil {
		return nil, err
	}

	skipped := unwrapAll(err)
	for _, e := range skipped {
		s.log.Warn("skipping content file", logger.Error(e))
	}
	s.metrics.ObserveContentLoad(time.Since(start), len(pages), len(skipped))

	s.log.Debug("content loaded",
		logger.String("dir", s.loader.Dir()),
		logger.Int("pages", len(pages)),
		logger.Int("skipped", len(skipped)),
		logger.Duration("elapsed", time.Since(start)))
	return pages, nil
}

// EntryData renders the index file for the entry page.
func (s *Site) EntryData() (render.Data, error) {
	index, err := content.ParseFile(s.opts.IndexFile)
	if err != nil {
		return render.Data{}, err
	}
	body, err := s.md.Render(index.Content)
	if err != nil {
		return render.Data{}, fmt.Errorf("%s: %w", index.FileName, err)
	}
	return render.Data{
		Title:        index.Frontmatter.Title,
		Description:  index.Frontmatter.Description,
		Content:      template.HTML(body),
		HighlightCSS: template.CSS(s.md.CSS()),
		EntryRoute:   true,
	}, nil
}

// TutorialData renders one content page with the menu and its table of contents.
func (s *Site) TutorialData(page content.Page, mainMenu []menu.Group) (render.Data, error) {
	body, err := s.md.Render(page.Content)
	if err != nil {
		return render.Data{}, fmt.Errorf("%s: %w", page.FileName, err)
	}
	entries := toc.ExtractLevels(body, s.opts.TOCMinLevel, s.opts.TOCMaxLevel)
	return render.Data{
		Title:         page.Frontmatter.Title,
		Description:   page.Frontmatter.Description,
		Content:       template.HTML(body),
		MainMenu:      mainMenu,
		TOC:           entries,
		TOCLength:     len(entries),
		HighlightCSS:  template.CSS(s.md.CSS()),
		TutorialRoute: true,
	}, nil
}

// NotFoundData is the fixed "page not found" view.
func (s *Site) NotFoundData() render.Data {
	return render.Data{
		Title:         NotFoundTitle,
		Description:   NotFoundDescription,
		NotFoundRoute: true,
	}
}

// Render writes data through the layout.
func (s *Site) Render(w io.Writer, data render.Data) error {
	return s.layout.Load().Render(w, data)
}

// RenderToFile writes data through the layout into path.
func (s *Site) RenderToFile(path string, data render.Data) error {
	return s.layout.Load().RenderToFile(path, data)
}

// unwrapAll flattens a joined error into its parts.
func unwrapAll(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

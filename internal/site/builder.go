package site

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/tutor/internal/content"
	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/menu"
	"github.com/MrSnakeDoc/tutor/internal/metrics"
)

// BuildReport summarizes one static build.
type BuildReport struct {
	ID       string
	Pages    int      // tutorial pages written
	Failed   []string // content files that could not be rendered
	Duration time.Duration
}

// Builder writes the whole site to an output directory.
type Builder struct {
	site   *Site
	outDir string
}

// NewBuilder creates a builder writing to outDir.
func NewBuilder(s *Site, outDir string) *Builder {
	return &Builder{site: s, outDir: outDir}
}

// OutDir returns the output directory.
func (b *Builder) OutDir() string { return b.outDir }

// Build recreates the output tree:
//
//	{out}/index.html
//	{out}/tutorial/{href}/index.html
//	{out}/404.html
//	{out}/static/**
//
// Reparsing the layout, preparing the directory, copying assets and loading
// content are fatal.
// A tutorial page that fails to render is logged and skipped. Failures of the
// entry or 404 page are returned once every step has finished.
func (b *Builder) Build(ctx context.Context) (*BuildReport, error) {
	start := time.Now()
	report := &BuildReport{ID: uuid.NewString()}
	log := b.site.log.With(logger.String("build_id", report.ID))

	log.Info("starting static build", logger.String("out", b.outDir))

	err := b.build(ctx, log, report)
	report.Duration = time.Since(start)
	b.site.metrics.ObserveBuild(report.Duration, err == nil)

	if err != nil {
		log.Error("build failed", logger.Error(err))
		return report, err
	}

	log.Info("static build finished",
		logger.Int("pages", report.Pages),
		logger.Int("failed", len(report.Failed)),
		logger.Duration("duration", report.Duration))
	return report, nil
}

func (b *Builder) build(ctx context.Context, log logger.Logger, report *BuildReport) error {
	if err := b.site.ReloadLayout(); err != nil {
		return err
	}
	if err := b.prepareOutput(); err != nil {
		return err
	}

	pages, err := b.site.LoadPages(ctx)
	if err != nil {
		return fmt.Errorf("failed to load content: %w", err)
	}
	mainMenu := menu.Build(pages)

	var g errgroup.Group
	g.Go(func() error {
		return b.writeEntry()
	})
	g.Go(func() error {
		b.writeTutorials(ctx, log, pages, mainMenu, report)
		return nil
	})
	g.Go(func() error {
		return b.writeNotFound()
	})
	return g.Wait()
}

// prepareOutput clears the output directory and copies the static assets.
func (b *Builder) prepareOutput() error {
	if err := os.RemoveAll(b.outDir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", b.outDir, err)
	}
	for _, dir := range []string{b.outDir, b.staticOut(), filepath.Join(b.outDir, "tutorial")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.CopyFS(b.staticOut(), os.DirFS(b.site.StaticDir())); err != nil {
		return fmt.Errorf("failed to copy static assets from %s: %w", b.site.StaticDir(), err)
	}
	return nil
}

func (b *Builder) staticOut() string { return filepath.Join(b.outDir, "static") }

func (b *Builder) writeEntry() error {
	data, err := b.site.EntryData()
	if err == nil {
		err = b.site.RenderToFile(filepath.Join(b.outDir, "index.html"), data)
	}
	if err != nil {
		b.site.metrics.IncPageRender(metrics.RouteEntry, metrics.ResultFailure)
		return fmt.Errorf("failed to write entry page: %w", err)
	}
	b.site.metrics.IncPageRender(metrics.RouteEntry, metrics.ResultSuccess)
	return nil
}

func (b *Builder) writeNotFound() error {
	if err := b.site.RenderToFile(filepath.Join(b.outDir, "404.html"), b.site.NotFoundData()); err != nil {
		b.site.metrics.IncPageRender(metrics.RouteNotFound, metrics.ResultFailure)
		return fmt.Errorf("failed to write 404 page: %w", err)
	}
	b.site.metrics.IncPageRender(metrics.RouteNotFound, metrics.ResultSuccess)
	return nil
}

// writeTutorials renders pages one after another. Only this goroutine touches
// report.Pages and report.Failed until the errgroup is done.
func (b *Builder) writeTutorials(ctx context.Context, log logger.Logger, pages []content.Page, mainMenu []menu.Group, report *BuildReport) {
	for _, page := range pages {
		if ctx.Err() != nil {
			log.Warn("build cancelled, remaining pages skipped", logger.Error(ctx.Err()))
			return
		}
		if err := b.writeTutorial(page, mainMenu); err != nil {
			log.Error("error processing page",
				logger.String("file", page.FileName),
				logger.String("href", page.Frontmatter.Href),
				logger.Error(err))
			report.Failed = append(report.Failed, page.FileName)
			b.site.metrics.IncPageRender(metrics.RouteTutorial, metrics.ResultFailure)
			continue
		}
		report.Pages++
		b.site.metrics.IncPageRender(metrics.RouteTutorial, metrics.ResultSuccess)
	}
}

func (b *Builder) writeTutorial(page content.Page, mainMenu []menu.Group) error {
	href := page.Frontmatter.Href
	if !isSafeHref(href) {
		return fmt.Errorf("href %q cannot be used as an output directory", href)
	}
	data, err := b.site.TutorialData(page, mainMenu)
	if err != nil {
		return err
	}
	return b.site.RenderToFile(filepath.Join(b.outDir, "tutorial", href, "index.html"), data)
}

// isSafeHref reports whether href is a single path segment.
func isSafeHref(href string) bool {
	if href == "" || href == "." || href == ".." {
		return false
	}
	return !strings.ContainsAny(href, `/\`)
}

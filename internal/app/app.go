package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/tutor/internal/config"
	"github.com/MrSnakeDoc/tutor/internal/httpserver"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/markdown"
	"github.com/MrSnakeDoc/tutor/internal/metrics"
	"github.com/MrSnakeDoc/tutor/internal/render"
	"github.com/MrSnakeDoc/tutor/internal/scheduler"
	"github.com/MrSnakeDoc/tutor/internal/site"
	"github.com/MrSnakeDoc/tutor/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	site    *site.Site
	metrics metrics.Recorder
	prom    *metrics.PrometheusRecorder // nil when metrics are disabled
}

// New builds the shared rendering pipeline. It fails only when a custom
// layout cannot be parsed.
func New(cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	layout, err := render.New(cfg.LayoutFile)
	if err != nil {
		return nil, err
	}

	var (
		rec  metrics.Recorder = metrics.NoopRecorder{}
		prom *metrics.PrometheusRecorder
	)
	if cfg.MetricsEnabled {
		prom = metrics.NewPrometheusRecorder()
		rec = prom
	}

	md := markdown.New(markdown.Options{
		Languages: cfg.HighlightLanguages,
		Style:     cfg.HighlightStyle,
	}, loggerClient)
	loggerClient.Debug("highlighter ready", logger.Strings("languages", md.Languages()))

	s := site.New(site.Options{
		ContentDir:  cfg.ContentDir,
		IndexFile:   cfg.IndexFile,
		StaticDir:   cfg.StaticDir,
		LayoutFile:  cfg.LayoutFile,
		TOCMinLevel: cfg.TOCMinLevel,
		TOCMaxLevel: cfg.TOCMaxLevel,
	}, md, layout, rec, loggerClient)

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		site:    s,
		metrics: rec,
		prom:    prom,
	}, nil
}

// Deps returns the dependencies handed to the HTTP routes.
func (a *App) Deps() deps.Deps {
	d := deps.Deps{
		Logger:       a.logger,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: a.cfg.AllowedHosts,
		AllowedCIDRS: a.cfg.AllowedCIDRS,
		TrustProxy:   a.cfg.TrustProxy,
		Site:         a.site,
		Metrics:      a.metrics,

		RateLimitBurst:  a.cfg.RateLimitBurst,
		RateLimitPerMin: a.cfg.RateLimitPerMin,
	}
	if a.prom != nil {
		d.MetricsHandler = a.prom.Handler()
	}
	return d
}

// Serve runs the dynamic site until SIGINT or SIGTERM.
func (a *App) Serve() error {
	a.logger.Infof("🚀 Starting tutor v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("tutor %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.site.Check(); err != nil {
		a.logger.Warn("content sources are not readable yet, pages will fail until they are",
			logger.Error(err))
	}

	server := httpserver.New(a.cfg, a.logger, a.Deps())

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ tutor stopped cleanly")
	return nil
}

// Build writes the static site once. With watch it keeps rebuilding on
// source changes until ctx is done; failed rebuilds are only logged.
func (a *App) Build(ctx context.Context, watch bool) error {
	builder := site.NewBuilder(a.site, a.cfg.OutputDir)

	_, err := builder.Build(ctx)
	if !watch {
		return err
	}

	watcher := scheduler.NewRebuildWatcher(builder, scheduler.WatchTargets{
		Dirs:   []string{a.cfg.ContentDir, a.cfg.StaticDir},
		Files:  []string{a.cfg.IndexFile, a.cfg.LayoutFile},
		Ignore: a.cfg.OutputDir,
	}, a.logger, a.cfg.WatchDebounce, nil)
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start rebuild watcher: %w", err)
	}

	<-ctx.Done()
	a.logger.Info("⏳ Stopping watcher...")
	watcher.Stop()
	return nil
}

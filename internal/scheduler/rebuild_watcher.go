package scheduler

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/tutor/internal/logger"
	"github.com/MrSnakeDoc/tutor/internal/site"
)

// Builder is the part of site.Builder the watcher drives.
type Builder interface {
	Build(ctx context.Context) (*site.BuildReport, error)
}

// WatchTargets lists what the watcher observes. Dirs are watched recursively,
// Files through their parent directory. Events below Ignore are dropped.
type WatchTargets struct {
	Dirs   []string
	Files  []string
	Ignore string
}

// RebuildWatcher reruns the static build whenever a source changes
type RebuildWatcher struct {
	builder       Builder
	targets       WatchTargets
	logger        logger.Logger
	debounce      time.Duration
	watcher       *fsnotify.Watcher
	files         map[string]struct{}
	stopCh        chan struct{}
	stopOnce      sync.Once
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewRebuildWatcher creates a watcher. manualTrigger may be nil.
func NewRebuildWatcher(
	builder Builder,
	targets WatchTargets,
	log logger.Logger,
	debounce time.Duration,
	manualTrigger chan struct{},
) *RebuildWatcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &RebuildWatcher{
		builder:       builder,
		targets:       targets,
		logger:        log,
		debounce:      debounce,
		files:         make(map[string]struct{}),
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start registers the watches and begins the event loop. It does not build;
// callers run the initial build themselves.
func (rw *RebuildWatcher) Start(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	rw.watcher = w

	if err := rw.addTargets(); err != nil {
		_ = w.Close()
		rw.watcher = nil
		return err
	}

	rw.logger.Info("watching for changes",
		logger.Strings("dirs", rw.targets.Dirs),
		logger.Strings("files", rw.targets.Files),
		logger.Duration("debounce", rw.debounce))

	go rw.loop(ctx)
	return nil
}

func (rw *RebuildWatcher) addTargets() error {
	for _, dir := range rw.targets.Dirs {
		if err := rw.addRecursive(dir); err != nil {
			return err
		}
	}
	for _, file := range rw.targets.Files {
		if file == "" {
			continue
		}
		abs, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", file, err)
		}
		rw.files[abs] = struct{}{}
		if err := rw.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
		}
	}
	return nil
}

// Stop ends the event loop and waits for a running rebuild to finish.
func (rw *RebuildWatcher) Stop() {
	rw.stopOnce.Do(func() {
		close(rw.stopCh)
		if rw.watcher != nil {
			<-rw.done
			if err := rw.watcher.Close(); err != nil {
				rw.logger.Warn("failed to close file watcher", logger.Error(err))
			}
		}
	})
}

// Rebuild runs one build and logs its outcome.
func (rw *RebuildWatcher) Rebuild(ctx context.Context) {
	report, err := rw.builder.Build(ctx)
	if err != nil {
		rw.logger.Error("rebuild failed", logger.Error(err))
		return
	}
	rw.logger.Info("rebuild finished",
		logger.String("build_id", report.ID),
		logger.Int("pages", report.Pages),
		logger.Duration("duration", report.Duration))
}

func (rw *RebuildWatcher) loop(ctx context.Context) {
	defer close(rw.done)

	timer := time.NewTimer(rw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-rw.watcher.Events:
			if !ok {
				return
			}
			if !rw.relevant(ev) {
				continue
			}
			rw.logger.Debug("change detected",
				logger.String("path", ev.Name),
				logger.String("op", ev.Op.String()))
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := rw.addRecursive(ev.Name); err != nil {
						rw.logger.Warn("failed to watch new directory", logger.Error(err))
					}
				}
			}
			timer.Reset(rw.debounce)
		case err, ok := <-rw.watcher.Errors:
			if !ok {
				return
			}
			rw.logger.Error("file watcher error", logger.Error(err))
		case <-timer.C:
			rw.Rebuild(ctx)
		case <-rw.manualTrigger:
			rw.logger.Info("manual rebuild triggered")
			rw.Rebuild(ctx)
		case <-rw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// relevant filters out chmod noise, the build output and siblings of
// watched files.
func (rw *RebuildWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	if rw.targets.Ignore != "" {
		if ignore, err := filepath.Abs(rw.targets.Ignore); err == nil && within(abs, ignore) {
			return false
		}
	}
	if _, ok := rw.files[abs]; ok {
		return true
	}
	for _, dir := range rw.targets.Dirs {
		if d, err := filepath.Abs(dir); err == nil && within(abs, d) {
			return true
		}
	}
	return false
}

func (rw *RebuildWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := rw.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func within(path, dir string) bool {
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

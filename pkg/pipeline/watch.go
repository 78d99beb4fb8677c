package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/opactx/opactx/pkg/config"
	"github.com/opactx/opactx/pkg/telemetry"
)

// watchDebounce coalesces bursts of filesystem events (editors often
// write several) into a single rebuild.
const watchDebounce = 250 * time.Millisecond

// Watch rebuilds on changes to the project's inputs: the configuration
// file, the schema file, the intent directory and the policy directory.
// rebuild is invoked once at start and once per change burst; its errors
// are logged, not fatal, so a broken edit keeps the watcher alive. Watch
// returns when ctx is cancelled.
func Watch(ctx context.Context, log *telemetry.Logger, opts Options, rebuild func() error) error {
	if log == nil {
		log = telemetry.Nop()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for _, dir := range watchDirs(opts) {
		if err := watcher.Add(dir); err != nil {
			log.WithError(err).WithField("dir", dir).Warn("cannot watch directory")
		}
	}

	runOnce := func() {
		if err := rebuild(); err != nil {
			log.WithError(err).Error("build failed")
		}
	}
	runOnce()

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantChange(event, opts) {
				continue
			}
			log.WithField("path", event.Name).Debug("change detected")
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watch error")
		case <-pending:
			runOnce()
		}
	}
}

// watchDirs lists the directories whose contents feed a build. The
// output directory is deliberately absent: watching it would rebuild on
// our own writes.
func watchDirs(opts Options) []string {
	cfg, err := config.Load(opts.ProjectDir, opts.ConfigPath)
	if err != nil {
		return []string{opts.ProjectDir}
	}
	dirs := map[string]bool{
		opts.ProjectDir: true,
		filepath.Join(opts.ProjectDir, cfg.ContextDir):               true,
		filepath.Dir(filepath.Join(opts.ProjectDir, cfg.SchemaPath)): true,
		filepath.Join(opts.ProjectDir, PolicyDirName):                true,
	}
	out := make([]string, 0, len(dirs))
	for dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			out = append(out, dir)
		}
	}
	return out
}

// relevantChange filters events down to input files, ignoring build
// output and editor temp files.
func relevantChange(event fsnotify.Event, opts Options) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch filepath.Ext(name) {
	case ".yaml", ".yml", ".json", ".rego", ".star":
	default:
		return false
	}
	// Ignore generated output.
	rel, err := filepath.Rel(opts.ProjectDir, event.Name)
	if err == nil {
		if strings.HasPrefix(rel, "build"+string(filepath.Separator)) ||
			strings.HasPrefix(rel, "dist"+string(filepath.Separator)) {
			return false
		}
	}
	return true
}

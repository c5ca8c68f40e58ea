package app

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// watchDebounce coalesces the event bursts editors produce on save.
const watchDebounce = 500 * time.Millisecond

// watch re-runs the pipeline whenever its definition changes, until the
// context is cancelled. Definition errors do not end the loop; they are
// logged and the watcher waits for the next change.
func (a *App) watch(ctx context.Context) error {
	a.logger.Info("👀 Watch mode enabled.", "path", a.config.PipelinePath)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(a.config.PipelinePath); err != nil {
		return err
	}

	runOnce := func() {
		rep, err := a.RunOnce(ctx, uuid.NewString())
		switch {
		case err != nil:
			a.logger.Error("Run failed.", "error", err)
		case !rep.Success:
			a.logger.Warn("Run finished with failures, waiting for changes...")
		default:
			a.logger.Info("Run passed, waiting for changes...")
		}
	}
	runOnce()

	var debounce *time.Timer
	var debounceC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch mode terminated.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			a.logger.Debug("Pipeline change detected.", "file", event.Name, "op", event.Op.String())
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				debounceC = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Warn("Watcher error.", "error", err)

		case <-debounceC:
			runOnce()
		}
	}
}

package layout

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bnema/wayosk/internal/logger"
)

const watchDebounce = 150 * time.Millisecond

// Watch calls onChange with the layout name whenever a layout file in dir is
// written, created, removed or renamed. It blocks until ctx is cancelled.
func Watch(ctx context.Context, dir string, onChange func(name string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Ext(event.Name) != fileExt {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			name := strings.TrimSuffix(filepath.Base(event.Name), fileExt)
			if t, ok := timers[name]; ok {
				t.Stop()
			}
			timers[name] = time.AfterFunc(watchDebounce, func() { onChange(name) })

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("Layout watcher: %v", err)
		}
	}
}

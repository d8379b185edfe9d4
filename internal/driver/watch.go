package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeFunc receives the sorted set of .vw files touched since the last
// call. Removed files are included; the callback decides what to do.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher re-runs a callback when sources under a local directory change.
// Bursts of events are coalesced for Debounce.
type Watcher struct {
	Root     string
	Debounce time.Duration
	OnChange ChangeFunc
	// OnError gets watcher errors; nil drops them.
	OnError func(error)
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()
	if err := addTree(fw, w.Root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = 150 * time.Millisecond
	}
	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				// новые каталоги тоже надо слушать
				if isDir(ev.Name) {
					if err := addTree(fw, ev.Name); err != nil {
						w.reportErr(err)
					}
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, SourceExt) || ev.Op == fsnotify.Chmod {
				continue
			}
			pending[ev.Name] = struct{}{}
			timer.Reset(debounce)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.reportErr(err)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			slices.Sort(changed)
			clear(pending)
			w.OnChange(ctx, changed)
		}
	}
}

func (w *Watcher) reportErr(err error) {
	if w.OnError != nil {
		w.OnError(err)
	}
}

func addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

package grantling

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watch starts evicting cached templates when their backing files change.
// It watches the engine's template directory (recursively) and drops the
// cache entry whose name matches the changed path, so the next load
// re-reads and re-parses the file. The returned stop function releases
// the watcher.
//
// Watching only makes sense with the stock file loader; engines with a
// custom loader should call Invalidate themselves.
func (e *Engine) Watch() (stop func(), err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(e.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				e.handleWatchEvent(watcher, event)
			case werr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				e.warn(werr)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			watcher.Close()
		})
	}, nil
}

func (e *Engine) handleWatchEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
			watcher.Add(event.Name)
			return
		}
	}

	rel, err := filepath.Rel(e.dir, event.Name)
	if err != nil {
		return
	}
	e.Invalidate(filepath.ToSlash(rel))
}

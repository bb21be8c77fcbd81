package watcher

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/toastate/voicestage/internal/tlogger"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher reports changed paths below a set of watched roots.
type Watcher struct {
	fsw     *fsnotify.Watcher
	ignored []string
	changes chan string
	done    chan struct{}
}

// StartWatcher watches every directory below each path. A path that is a file
// is watched through its parent directory; a missing path is skipped. Changes
// to ignored paths, or below them, are not reported.
func StartWatcher(paths []string, ignored ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsw:     fsw,
		changes: make(chan string, 100),
		done:    make(chan struct{}),
	}
	for _, p := range ignored {
		if p != "" {
			w.ignored = append(w.ignored, filepath.Clean(p))
		}
	}

	for _, p := range paths {
		err := w.addTree(p)
		if err != nil {
			fsw.Close()
			return nil, err
		}
	}

	go w.loop()

	return w, nil
}

// Changes delivers the name of every changed file.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

func (w *Watcher) Close() error {
	err := w.fsw.Close()
	<-w.done
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)
	defer close(w.changes)

	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 || w.isIgnored(event.Name) {
				continue
			}
			tlogger.Debug("msg", "Detected change", "path", event.Name, "op", event.Op.String())

			if event.Op&fsnotify.Create != 0 {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						tlogger.Warn("msg", "Could not watch new directory", "path", event.Name, "err", err)
					}
				}
			}

			select {
			case w.changes <- event.Name:
			default:
				// buffer full, a rebuild is pending anyway
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			tlogger.Warn("msg", "Watcher error", "err", err)
		}
	}
}

func (w *Watcher) isIgnored(name string) bool {
	name = filepath.Clean(name)
	for _, p := range w.ignored {
		if name == p || strings.HasPrefix(name, p+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(root string) error {
	fi, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			tlogger.Warn("msg", "Not watching missing path", "path", root)
			return nil
		}
		return err
	}
	if !fi.IsDir() {
		return w.fsw.Add(filepath.Dir(root))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.fsw.Add(path)
		}
		return nil
	})
}

// Package assets watches shader source files on disk so applications can
// hot-reload shaders without restarting.
package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/vetro/containers"
	"github.com/spaghettifunk/vetro/core"
)

const defaultQueueSize = 256

// ShaderWatcher collects filesystem change events for shader sources into
// a queue. The backend is single-thread affine, so the watcher never
// reloads anything itself: the owning thread drains pending paths with
// Poll and performs the reloads there.
type ShaderWatcher struct {
	fsnotify   *fsnotify.Watcher
	extensions map[string]struct{}

	mutex   sync.Mutex
	pending *containers.RingQueue[string]
	queued  map[string]struct{}

	done     chan struct{}
	isClosed bool
}

// NewShaderWatcher creates a watcher that reports files with the given
// extensions (".vert", ".frag", ...). With none given it defaults to the
// common GLSL ones.
func NewShaderWatcher(extensions ...string) (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if len(extensions) == 0 {
		extensions = []string{".vert", ".frag", ".glsl"}
	}
	extSet := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		extSet[ext] = struct{}{}
	}

	w := &ShaderWatcher{
		fsnotify:   fsWatch,
		extensions: extSet,
		pending:    containers.NewRingQueue[string](defaultQueueSize),
		queued:     make(map[string]struct{}),
		done:       make(chan struct{}),
	}
	go w.start()
	return w, nil
}

// Add starts watching the named file or directory (non-recursively).
func (w *ShaderWatcher) Add(name string) error {
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	return w.fsnotify.Add(name)
}

// AddRecursive starts watching the named directory and all
// sub-directories.
func (w *ShaderWatcher) AddRecursive(name string) error {
	if w.isClosed {
		return errors.New("watcher already closed")
	}
	return filepath.Walk(name, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

// Remove stops watching the named file or directory.
func (w *ShaderWatcher) Remove(name string) error {
	return w.fsnotify.Remove(name)
}

func (w *ShaderWatcher) start() {
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					w.fsnotify.Add(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.enqueue(e.Name)
			}
			if e.Op&fsnotify.Remove != 0 {
				w.fsnotify.Remove(e.Name)
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *ShaderWatcher) enqueue(path string) {
	if _, watched := w.extensions[filepath.Ext(path)]; !watched {
		return
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	// An editor saving a file often fires several events; one pending
	// reload per path is enough.
	if _, dup := w.queued[path]; dup {
		return
	}
	if err := w.pending.Enqueue(path); err != nil {
		core.LogWarn("dropping shader change event for %s: %s", path, err.Error())
		return
	}
	w.queued[path] = struct{}{}
}

// Poll drains and returns the paths changed since the last call. Call it
// from the thread that owns the backend, typically once per frame.
func (w *ShaderWatcher) Poll() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	var paths []string
	for !w.pending.IsEmpty() {
		path, err := w.pending.Dequeue()
		if err != nil {
			break
		}
		delete(w.queued, path)
		paths = append(paths, path)
	}
	return paths
}

// Close stops the watcher. Pending paths can still be drained with Poll.
func (w *ShaderWatcher) Close() error {
	if w.isClosed {
		return nil
	}
	w.isClosed = true
	close(w.done)
	return nil
}

// Package watcher implements a debounced, coalesced filesystem watch over a
// set of discovery roots, driving registry re-discovery on fsnotify events.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/kb-labs/registry-host/domain/ports"
)

// DefaultDebounce is the quiet period after the last event before a change
// callback fires, per spec.md §4.8's 300-500ms guidance.
const DefaultDebounce = 400 * time.Millisecond

var buildOutputDirs = map[string]bool{
	"dist": true, "build": true, "out": true, "target": true, ".cache": true,
}

// Watcher implements ports.Watcher on fsnotify, recursively watching each
// root and filtering events down to the files discovery actually cares
// about: manifests, package.json, .kb/plugins/**, lockfiles, and workspace
// descriptors.
type Watcher struct {
	Debounce time.Duration

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Watcher with the default debounce window.
func New() *Watcher {
	return &Watcher{Debounce: DefaultDebounce}
}

// Start implements ports.Watcher. onChange is invoked at most once per
// debounce window; if a call is already running when new events arrive, a
// redo flag is set so exactly one more run follows, never a queue of them.
func (w *Watcher) Start(ctx context.Context, roots []string, onChange ports.ChangeFunc) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	for _, root := range roots {
		if err := addRecursive(fsw, root); err != nil {
			slog.Warn("watcher: failed to watch root", "root", root, "error", err)
		}
	}
	w.fsw = fsw

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go w.loop(runCtx, onChange)
	return nil
}

// Close implements ports.Watcher.
func (w *Watcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	if w.done != nil {
		<-w.done
	}
	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}

func (w *Watcher) loop(ctx context.Context, onChange ports.ChangeFunc) {
	defer close(w.done)

	var (
		mu       sync.Mutex
		timer    *time.Timer
		running  bool
		needsRedo bool
	)

	fire := func() {
		mu.Lock()
		if running {
			needsRedo = true
			mu.Unlock()
			return
		}
		running = true
		mu.Unlock()

		runOnce := func() {
			onChange(ctx)
			mu.Lock()
			running = false
			redo := needsRedo
			needsRedo = false
			mu.Unlock()
			if redo {
				fire()
			}
		}
		go runOnce()
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !relevant(event.Name) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(w.Debounce, fire)
			} else {
				timer.Reset(w.Debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher: fsnotify error", "error", err)
		}
	}
}

// relevant reports whether a changed path matches one of the discovery
// input patterns and isn't inside an ignored directory.
func relevant(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "" {
			continue
		}
		if part == "node_modules" && !strings.Contains(path, "/.kb/") {
			return false
		}
		if buildOutputDirs[part] {
			return false
		}
		if strings.HasPrefix(part, ".") && part != ".kb" {
			return false
		}
	}

	base := filepath.Base(path)
	switch {
	case base == "package.json":
		return true
	case base == "pnpm-workspace.yaml" || base == "pnpm-lock.yaml":
		return true
	case base == "package-lock.json" || base == "yarn.lock":
		return true
	case strings.Contains(filepath.ToSlash(path), "/.kb/plugins/"):
		return true
	case isManifestFile(base):
		return true
	default:
		return false
	}
}

func isManifestFile(base string) bool {
	if !strings.HasPrefix(base, "manifest.") {
		return false
	}
	for _, ext := range []string{".ts", ".js", ".mjs", ".cjs", ".yaml", ".yml", ".json"} {
		if strings.HasSuffix(base, ".v2"+ext) || strings.HasSuffix(base, ".v3"+ext) || strings.HasSuffix(base, ext) {
			return true
		}
	}
	return false
}

// addRecursive registers root and every non-ignored subdirectory with fsw.
func addRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort: skip unreadable subtrees
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name != root && name != "." && strings.HasPrefix(name, ".") && name != ".kb" {
			return filepath.SkipDir
		}
		if buildOutputDirs[name] || (name == "node_modules" && !strings.Contains(path, ".kb")) {
			return filepath.SkipDir
		}
		return fsw.Add(path)
	})
}

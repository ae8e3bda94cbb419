package site

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports debounced changes below content trees and of single files.
type Watcher struct {
	watcher  *fsnotify.Watcher
	onChange func(changed []string)
	debounce time.Duration

	mu       sync.Mutex
	trees    []string
	files    map[string]bool
	pending  map[string]bool
	timer    *time.Timer
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewWatcher(debounce time.Duration, onChange func(changed []string)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &Watcher{
		watcher:  watcher,
		onChange: onChange,
		debounce: debounce,
		files:    make(map[string]bool),
		pending:  make(map[string]bool),
		stopChan: make(chan struct{}),
	}, nil
}

// AddTree watches root and every folder below it. fsnotify is not recursive,
// folders created later are added as they appear.
func (w *Watcher) AddTree(root string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	w.mu.Lock()
	w.trees = append(w.trees, absRoot)
	w.mu.Unlock()

	return w.addDirs(absRoot)
}

// AddFile watches a single file through its parent folder, which survives
// editors that replace the file on save.
func (w *Watcher) AddFile(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	w.mu.Lock()
	w.files[absPath] = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(absPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}
	return nil
}

func (w *Watcher) Start(ctx context.Context) {
	slog.Info("Starting content watcher", "debounce", w.debounce)
	go w.watchLoop(ctx)
}

func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stopChan)

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()

		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Content watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if !w.isRelevant(name) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create && w.inTree(name) {
		if err := w.addDirs(name); err != nil {
			slog.Debug("Failed to watch new path", "path", name, "error", err)
		}
	}

	slog.Debug("Content change detected", "path", name, "op", event.Op.String())
	w.schedule(name)
}

func (w *Watcher) schedule(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[name] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.fire)
}

func (w *Watcher) fire() {
	w.mu.Lock()
	changed := make([]string, 0, len(w.pending))
	for name := range w.pending {
		changed = append(changed, name)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()

	select {
	case <-w.stopChan:
		return
	default:
	}

	sort.Strings(changed)
	w.onChange(changed)
}

func (w *Watcher) isRelevant(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.files[name] {
		return true
	}
	return w.inTreeLocked(name)
}

func (w *Watcher) inTree(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inTreeLocked(name)
}

func (w *Watcher) inTreeLocked(name string) bool {
	for _, root := range w.trees {
		if name == root || strings.HasPrefix(name, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) addDirs(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// Package inbox watches drop directories for résumé files and extracts each one
// as it arrives.
package inbox

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches inbox directories and invokes callbacks once a file stops changing.
type Watcher struct {
	roots      []string
	extensions []string
	recursive  bool
	ignored    []string
	onFile     func(path string)
	onRemove   func(path string)
	debounce   time.Duration
	logger     *zap.Logger

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	pending map[string]*time.Timer
	done    chan struct{}
	started bool
	stop    sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDebounce sets how long a file must be quiet before it is handed over.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// WithIgnore excludes a directory tree, typically the output directory when it
// lives inside an inbox.
func WithIgnore(dir string) Option {
	return func(w *Watcher) {
		if dir != "" {
			w.ignored = append(w.ignored, filepath.Clean(dir))
		}
	}
}

// WithRemoveHandler sets a callback for files deleted from an inbox.
func WithRemoveHandler(fn func(path string)) Option {
	return func(w *Watcher) { w.onRemove = fn }
}

// NewWatcher creates a watcher over roots. Only files whose extension is in
// extensions are reported (empty = all); onFile is called for each new or changed file.
func NewWatcher(roots, extensions []string, recursive bool, onFile func(path string), opts ...Option) *Watcher {
	w := &Watcher{
		roots:      append([]string(nil), roots...),
		extensions: extensions,
		recursive:  recursive,
		onFile:     onFile,
		debounce:   defaultDebounce,
		logger:     zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start creates missing roots, registers them with fsnotify and processes events
// until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fsw = fsw
	for _, root := range w.roots {
		if err := w.addTreeLocked(root, true); err != nil {
			_ = fsw.Close()
			w.fsw = nil
			return err
		}
	}
	w.started = true
	w.logger.Debug("inbox watcher started",
		zap.Strings("roots", w.roots),
		zap.Strings("extensions", w.extensions),
		zap.Bool("recursive", w.recursive),
	)
	go w.run(ctx, fsw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("inbox watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := filepath.Clean(ev.Name)
	if w.isIgnored(path) {
		return
	}
	w.logger.Debug("inbox event", zap.String("op", ev.Op.String()), zap.String("path", path))
	switch {
	case ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if ev.Has(fsnotify.Create) && w.recursive {
				w.addNewDirectory(path)
			}
			return
		}
		if w.matches(path) {
			w.schedule(path)
		}
	case ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename):
		w.cancel(path)
		if w.matches(path) && w.onRemove != nil {
			w.onRemove(path)
		}
	}
}

// addNewDirectory watches a directory created after Start and reports the files
// that were moved in with it.
func (w *Watcher) addNewDirectory(dir string) {
	w.mu.Lock()
	if w.fsw == nil {
		w.mu.Unlock()
		return
	}
	if err := w.addTreeLocked(dir, false); err != nil {
		w.logger.Debug("inbox failed to watch new directory", zap.String("path", dir), zap.Error(err))
	}
	w.mu.Unlock()
	w.syncDirectory(dir)
}

func (w *Watcher) addTreeLocked(root string, create bool) error {
	root = filepath.Clean(root)
	if create {
		if err := os.MkdirAll(root, 0755); err != nil {
			return err
		}
	}
	if !w.recursive {
		return w.fsw.Add(root)
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.isIgnored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *Watcher) isIgnored(path string) bool {
	for _, dir := range w.ignored {
		if inDir(dir, path) {
			return true
		}
	}
	return false
}

func inDir(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) matches(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	return matchExtension(path, w.extensions)
}

func matchExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// schedule (re)starts the quiet-period timer for path.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.started {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.logger.Debug("inbox file ready", zap.String("path", path))
		if w.onFile != nil {
			w.onFile(path)
		}
	})
}

func (w *Watcher) cancel(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) syncDirectory(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if w.isIgnored(path) || (!w.recursive && path != root) {
				return filepath.SkipDir
			}
			return nil
		}
		if w.matches(path) && w.onFile != nil {
			w.onFile(path)
		}
		return nil
	})
}

// SyncExisting reports every matching file already present in the roots.
// Call it after Start so files dropped before the watcher ran are not missed.
func (w *Watcher) SyncExisting() {
	w.mu.Lock()
	roots := append([]string(nil), w.roots...)
	w.mu.Unlock()
	for _, root := range roots {
		w.syncDirectory(filepath.Clean(root))
	}
}

// Directories returns a copy of the watched roots.
func (w *Watcher) Directories() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// Stop stops the watcher, drops pending files and releases resources.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	_ = w.fsw.Close()
	w.fsw = nil
	w.started = false
	w.mu.Unlock()
	w.stop.Do(func() { close(w.done) })
}

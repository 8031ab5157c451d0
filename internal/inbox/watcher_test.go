package inbox

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) add(path string) {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatcher_DebounceAndExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	var got recorder
	w := NewWatcher([]string{dir}, []string{".pdf", ".txt"}, true, got.add, WithDebounce(100*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	cv := filepath.Join(dir, "cv.txt")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(cv, []byte("draft"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "photo.gif"), []byte("GIF89a"), 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(got.snapshot()) >= 1 })
	time.Sleep(300 * time.Millisecond)

	paths := got.snapshot()
	if len(paths) != 1 || paths[0] != cv {
		t.Errorf("callbacks = %v, want exactly [%s]", paths, cv)
	}
}

func TestWatcher_newSubdirectory(t *testing.T) {
	dir := t.TempDir()
	var got recorder
	w := NewWatcher([]string{dir}, []string{".txt"}, true, got.add, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	sub := filepath.Join(dir, "batch")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the new directory.
	time.Sleep(200 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(sub, "a.txt"), []byte("a"), 0600); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool {
		for _, p := range got.snapshot() {
			if p == filepath.Join(sub, "a.txt") {
				return true
			}
		}
		return false
	})
}

func TestWatcher_SyncExistingSkipsIgnored(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{filepath.Join(dir, "cv.txt"), filepath.Join(out, "cv.txt.txt"), filepath.Join(dir, ".hidden.txt")} {
		if err := os.WriteFile(p, []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}
	var got recorder
	w := NewWatcher([]string{dir}, []string{".txt"}, true, got.add, WithIgnore(out))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	w.SyncExisting()

	paths := got.snapshot()
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "cv.txt") {
		t.Errorf("synced = %v", paths)
	}
}

func TestWatcher_StartCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "inbox", "new")
	w := NewWatcher([]string{root}, nil, false, nil)
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	w.Stop()
	w.Stop()
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		t.Errorf("root not created: %v", err)
	}
	if dirs := w.Directories(); len(dirs) != 1 || dirs[0] != root {
		t.Errorf("Directories() = %v", dirs)
	}
}

func TestMatchExtension(t *testing.T) {
	tests := []struct {
		path       string
		extensions []string
		want       bool
	}{
		{"/a/cv.pdf", []string{".pdf"}, true},
		{"/a/CV.PDF", []string{".pdf"}, true},
		{"/a/cv.pdf", []string{"pdf"}, true},
		{"/a/cv.md", []string{".pdf"}, false},
		{"/a/cv", nil, true},
		{"/a/cv", []string{}, true},
	}
	for _, tt := range tests {
		if got := matchExtension(tt.path, tt.extensions); got != tt.want {
			t.Errorf("matchExtension(%q, %v) = %v, want %v", tt.path, tt.extensions, got, tt.want)
		}
	}
}

func TestInDir(t *testing.T) {
	tests := []struct {
		dir  string
		path string
		want bool
	}{
		{"/tmp/a", "/tmp/a", true},
		{"/tmp/a", "/tmp/a/b.txt", true},
		{"/tmp/a", "/tmp/b", false},
		{"/tmp/a", "/tmp/a/../b", false},
	}
	for _, tt := range tests {
		if got := inDir(tt.dir, tt.path); got != tt.want {
			t.Errorf("inDir(%q, %q) = %v, want %v", tt.dir, tt.path, got, tt.want)
		}
	}
}

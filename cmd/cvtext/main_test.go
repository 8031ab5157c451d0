package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/cvtext/internal/extract"
	"github.com/hyperjump/cvtext/internal/models"
	"github.com/hyperjump/cvtext/internal/storage"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_prefersCwdConfigWhenDefaultPath(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yaml", `
debug: true
extract:
  workers: 2
`)
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = os.Chdir(origWd) }()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}

	cfg, resolved, err := loadConfig(defaultConfigPath)
	if err != nil {
		t.Fatal(err)
	}
	// On macOS, cwd can be /private/var/... while t.TempDir() is /var/...; compare canonical paths.
	resolvedCanon, _ := filepath.EvalSymlinks(resolved)
	configPathCanon, _ := filepath.EvalSymlinks(configPath)
	if resolvedCanon != configPathCanon {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if !cfg.Debug {
		t.Error("debug should be true from cwd config.yaml")
	}
	if cfg.Extract.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Extract.Workers)
	}
}

func TestLoadConfig_usesExplicitPath(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "cvtext.yaml", `
ocr:
  language: "deu"
`)
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if resolved != configPath {
		t.Errorf("resolved path = %s, want %s", resolved, configPath)
	}
	if cfg.OCR.Language != "deu" {
		t.Errorf("language = %q, want deu", cfg.OCR.Language)
	}
}

func TestLoadConfig_missingFileUsesDefaults(t *testing.T) {
	cfg, _, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Extract.MaxFileSize != extract.MaxSize {
		t.Errorf("max file size = %d, want %d", cfg.Extract.MaxFileSize, extract.MaxSize)
	}
	if cfg.Extract.Workers <= 0 {
		t.Errorf("workers = %d, want > 0", cfg.Extract.Workers)
	}
}

func TestExtractFiles_keepsOrderAndIsolatesFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeFile(t, dir, "a.txt", "Jane Doe\r\nEngineer"),
		writeFile(t, dir, "b.xyz", "whatever"),
		writeFile(t, dir, "c.txt", "   \n\t "),
		writeFile(t, dir, "d.txt", "John Smith"),
	}
	ex := extract.NewExtractor()
	results := extractFiles(context.Background(), ex, paths, "", 2)
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.File != paths[i] {
			t.Errorf("results[%d].File = %s, want %s", i, r.File, paths[i])
		}
	}
	if results[0].Text != "Jane Doe Engineer" || results[0].Failed() {
		t.Errorf("a.txt: %+v", results[0])
	}
	if results[1].ErrorKind != "UnsupportedType" {
		t.Errorf("b.xyz kind = %q, want UnsupportedType", results[1].ErrorKind)
	}
	if results[2].ErrorKind != "EmptyContent" {
		t.Errorf("c.txt kind = %q, want EmptyContent", results[2].ErrorKind)
	}
	if results[3].Text != "John Smith" {
		t.Errorf("d.txt text = %q", results[3].Text)
	}
}

func TestNewResult_failureCarriesNoText(t *testing.T) {
	out := extract.Outcome{
		Text:   "ignored",
		Format: models.FormatPDF,
		Err:    extract.ErrCorruptOrProtectedFile,
	}
	r := newResult("cv.pdf", out, 0)
	if !r.Failed() || r.Text != "" || r.Strategy != "" {
		t.Errorf("unexpected result %+v", r)
	}
	if r.ErrorKind != "CorruptOrProtectedFile" {
		t.Errorf("kind = %q", r.ErrorKind)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	full := append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...)
	root.SetArgs(full)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExtractCommand_json(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cv.txt", "Jane  Doe\n\nGo developer")

	out, err := runCLI(t, "extract", "--json", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var results []models.ExtractionResult
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("invalid json %q: %v", out, err)
	}
	if len(results) != 1 || results[0].Text != "Jane Doe Go developer" {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestExtractCommand_failureSetsError(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "cv.txt", "Jane Doe")
	bad := writeFile(t, dir, "cv.exe", "MZ")

	out, err := runCLI(t, "extract", good, bad)
	if !errors.Is(err, errFailed) {
		t.Fatalf("err = %v, want errFailed", err)
	}
	if !strings.Contains(out, "Jane Doe") {
		t.Errorf("good file text missing from output %q", out)
	}
	if !strings.Contains(out, "UnsupportedType") {
		t.Errorf("failure kind missing from output %q", out)
	}
}

func TestExtractCommand_declaredType(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "upload.bin", "Jane Doe")

	out, err := runCLI(t, "extract", "--type", "text/plain", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if strings.TrimSpace(out) != "Jane Doe" {
		t.Errorf("output = %q", out)
	}
}

func TestFormatsCommand(t *testing.T) {
	out, err := runCLI(t, "formats")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"application/pdf", ".docx", "image/png"} {
		if !strings.Contains(out, want) {
			t.Errorf("formats output missing %q", want)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "cvtext "+version) {
		t.Errorf("version output = %q", out)
	}
}

func TestCollectStatus(t *testing.T) {
	dir := t.TempDir()
	journalPath := filepath.Join(dir, "cvtext.db")
	journal, err := storage.NewSQLiteJournal(journalPath)
	if err != nil {
		t.Fatal(err)
	}
	defer journal.Close()
	ctx := context.Background()
	for _, e := range []*models.JournalEntry{
		{ID: "a", Path: "/inbox/a.pdf", ContentHash: "1", Format: "pdf", Strategy: "pdf-text"},
		{ID: "b", Path: "/inbox/b.doc", ContentHash: "2", Format: "legacy_doc", ErrorKind: "CorruptOrProtectedFile"},
	} {
		if err := journal.Record(ctx, e); err != nil {
			t.Fatal(err)
		}
	}
	outDir := filepath.Join(dir, "out")
	if err := os.Mkdir(outDir, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, outDir, "a.pdf.txt", "Jane Doe\n")

	status, err := collectStatus(ctx, journal, journalPath, outDir, 1)
	if err != nil {
		t.Fatal(err)
	}
	if status.Succeeded != 1 || status.Failed != 1 {
		t.Errorf("counts = %d / %d, want 1 / 1", status.Succeeded, status.Failed)
	}
	if status.OutputFiles != 1 || status.OutputBytes != int64(len("Jane Doe\n")) {
		t.Errorf("output stats = %d files / %d bytes", status.OutputFiles, status.OutputBytes)
	}
	if len(status.Recent) != 1 {
		t.Errorf("recent = %d entries, want 1", len(status.Recent))
	}
}

package inbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/cvtext/internal/extract"
	"github.com/hyperjump/cvtext/internal/fileid"
	"github.com/hyperjump/cvtext/internal/models"
	"github.com/hyperjump/cvtext/internal/storage"
)

// Processor extracts inbox files and writes each text to outDir as <file>.txt,
// so cv.pdf becomes cv.pdf.txt. Failures are logged with their kind and leave no output.
//
// With inbox roots configured, the output tree mirrors the source path below its
// root, so alice/cv.pdf and bob/cv.pdf never share an output file. Calls for the
// same output path are serialized.
type Processor struct {
	extractor *extract.Extractor
	outDir    string
	logger    *zap.Logger
	journal   storage.Journal
	roots     []outputRoot

	mu    sync.Mutex
	locks map[string]*pathLock
}

// outputRoot maps an inbox root to its subdirectory of outDir.
type outputRoot struct {
	dir    string
	prefix string
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithJournal records every outcome and skips files whose content is unchanged
// since their last recorded extraction.
func WithJournal(j storage.Journal) ProcessorOption {
	return func(p *Processor) { p.journal = j }
}

// WithRoots sets the inbox roots that output paths are made relative to. A single
// root maps straight onto outDir; several roots each get a subdirectory named
// after the root, suffixed -2, -3 and so on when two roots share a name.
func WithRoots(roots ...string) ProcessorOption {
	return func(p *Processor) {
		p.roots = p.roots[:0]
		seen := make(map[string]int, len(roots))
		for _, root := range roots {
			dir := absPath(root)
			prefix := ""
			if len(roots) > 1 {
				prefix = filepath.Base(dir)
				seen[prefix]++
				if n := seen[prefix]; n > 1 {
					prefix += "-" + strconv.Itoa(n)
				}
			}
			p.roots = append(p.roots, outputRoot{dir: dir, prefix: prefix})
		}
	}
}

// NewProcessor returns a processor writing into outDir. A nil logger discards logs.
func NewProcessor(extractor *extract.Extractor, outDir string, logger *zap.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		extractor: extractor,
		outDir:    outDir,
		logger:    logger,
		locks:     make(map[string]*pathLock),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OutputPath returns where the text for src is written. Files outside every
// configured root are named by their base name alone.
func (p *Processor) OutputPath(src string) string {
	abs := absPath(src)
	for _, root := range p.roots {
		if rel, err := filepath.Rel(root.dir, abs); err == nil && rel != "." && inDir(root.dir, abs) {
			return filepath.Join(p.outDir, root.prefix, rel+".txt")
		}
	}
	return filepath.Join(p.outDir, filepath.Base(src)+".txt")
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// lock serializes work on one output path and returns the unlock func.
func (p *Processor) lock(dst string) func() {
	p.mu.Lock()
	l := p.locks[dst]
	if l == nil {
		l = &pathLock{}
		p.locks[dst] = l
	}
	l.refs++
	p.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, dst)
		}
		p.mu.Unlock()
	}
}

// Process extracts src and writes its text. The returned error is the extraction
// or write failure; callers in watch mode only log it.
func (p *Processor) Process(ctx context.Context, src string) error {
	defer p.lock(p.OutputPath(src))()

	file, err := extract.ReadSource(src, "")
	if err != nil {
		p.logger.Warn("inbox read failed", zap.String("path", src), zap.Error(err))
		return err
	}
	id := fileid.PathID(src)
	hash := fileid.ContentHash(file.Data)
	if p.unchanged(ctx, id, hash, src) {
		p.logger.Debug("inbox file unchanged, skipped", zap.String("path", src))
		return nil
	}

	out := p.extractor.ExtractResult(ctx, file)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	entry := &models.JournalEntry{
		ID:          id,
		Path:        src,
		ContentHash: hash,
		Format:      out.Format.String(),
	}
	if out.Err != nil {
		p.logger.Warn("inbox extraction failed",
			zap.String("path", src),
			zap.Stringer("kind", extract.KindOf(out.Err)),
			zap.Error(out.Err),
		)
		// A file rewritten into something unreadable must not keep its old text.
		p.removeOutput(src)
		entry.ErrorKind = extract.KindOf(out.Err).String()
		entry.Error = out.Err.Error()
		p.record(ctx, entry)
		return out.Err
	}

	dst, err := p.write(src, out.Text)
	if err != nil {
		return err
	}
	entry.Strategy = out.Strategy
	entry.Chars = len(out.Text)
	entry.OutputPath = dst
	p.record(ctx, entry)
	p.logger.Info("inbox file extracted",
		zap.String("path", src),
		zap.String("output", dst),
		zap.Stringer("format", out.Format),
		zap.String("strategy", out.Strategy),
	)
	return nil
}

func (p *Processor) write(src, text string) (string, error) {
	dst := p.OutputPath(src)
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp output: %w", err)
	}
	tmp := f.Name()
	_, err = f.WriteString(text + "\n")
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(tmp, 0644)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}
	return dst, nil
}

// unchanged reports whether the journal already holds an outcome for this exact
// content. A recorded success only counts while its output file still exists.
func (p *Processor) unchanged(ctx context.Context, id, hash, src string) bool {
	if p.journal == nil {
		return false
	}
	entry, err := p.journal.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.logger.Warn("journal lookup failed", zap.String("path", src), zap.Error(err))
		}
		return false
	}
	if entry.ContentHash != hash {
		return false
	}
	if entry.Failed() {
		return true
	}
	_, err = os.Stat(p.OutputPath(src))
	return err == nil
}

func (p *Processor) record(ctx context.Context, entry *models.JournalEntry) {
	if p.journal == nil {
		return
	}
	if err := p.journal.Record(ctx, entry); err != nil {
		p.logger.Warn("journal record failed", zap.String("path", entry.Path), zap.Error(err))
	}
}

func (p *Processor) removeOutput(src string) {
	dst := p.OutputPath(src)
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("inbox remove output failed", zap.String("output", dst), zap.Error(err))
	}
}

// Remove deletes the output and journal entry for a source file that left the inbox.
func (p *Processor) Remove(src string) {
	defer p.lock(p.OutputPath(src))()
	p.removeOutput(src)
	if p.journal != nil {
		if err := p.journal.Delete(context.Background(), fileid.PathID(src)); err != nil {
			p.logger.Warn("journal delete failed", zap.String("path", src), zap.Error(err))
		}
	}
}

// Package extract turns uploaded résumé documents into normalized plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/cvtext/internal/models"
	"github.com/hyperjump/cvtext/internal/ocr"
)

// DefaultMaxTextLength caps the characters returned for one document.
const DefaultMaxTextLength = 100000

// Extractor runs the validate, classify, decode and normalize pipeline.
// It holds only configuration and is safe for concurrent use.
type Extractor struct {
	maxSize       int64
	maxTextLength int
	ocrEngine     ocr.Engine
	ocrLanguage   string
	logger        *zap.Logger
	chains        map[models.LogicalFormat][]Strategy
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger; attempts are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMaxSize overrides the upload size ceiling (bytes).
func WithMaxSize(n int64) Option {
	return func(e *Extractor) { e.maxSize = n }
}

// WithMaxTextLength caps the returned text; 0 or less disables the cap.
func WithMaxTextLength(n int) Option {
	return func(e *Extractor) { e.maxTextLength = n }
}

// WithOCR sets the engine and language used for raster images.
func WithOCR(engine ocr.Engine, lang string) Option {
	return func(e *Extractor) {
		e.ocrEngine = engine
		if lang != "" {
			e.ocrLanguage = lang
		}
	}
}

// WithStrategies replaces the decoding chain for one format.
func WithStrategies(format models.LogicalFormat, chain ...Strategy) Option {
	return func(e *Extractor) { e.chains[format] = chain }
}

// NewExtractor returns an Extractor with the default limits and a Tesseract engine
// (unavailable unless built with the tesseract tag).
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxSize:       MaxSize,
		maxTextLength: DefaultMaxTextLength,
		ocrEngine:     ocr.NewTesseract(""),
		ocrLanguage:   ocr.DefaultLanguage,
		logger:        zap.NewNop(),
		chains:        make(map[models.LogicalFormat][]Strategy),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Outcome is the full result of one extraction. Text is set only when Err is nil.
type Outcome struct {
	Text     string
	Format   models.LogicalFormat
	Strategy string
	Err      error
}

// Extract returns the normalized text of file, or an *Error describing why none
// could be produced. A cancelled ctx returns ctx.Err().
func (e *Extractor) Extract(ctx context.Context, file models.SourceFile) (string, error) {
	out := e.ExtractResult(ctx, file)
	return out.Text, out.Err
}

// ExtractResult is Extract with the detected format and winning strategy reported.
func (e *Extractor) ExtractResult(ctx context.Context, file models.SourceFile) Outcome {
	id := uuid.NewString()
	logger := e.logger.With(zap.String("extraction_id", id), zap.String("filename", file.Filename))
	start := time.Now()

	out := e.run(ctx, file, logger)
	if out.Err != nil {
		out.Text = ""
		logger.Info("extraction failed",
			zap.Stringer("format", out.Format),
			zap.Stringer("kind", KindOf(out.Err)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(out.Err),
		)
		return out
	}
	logger.Info("extraction succeeded",
		zap.Stringer("format", out.Format),
		zap.String("strategy", out.Strategy),
		zap.Int("chars", len(out.Text)),
		zap.Duration("duration", time.Since(start)),
	)
	return out
}

func (e *Extractor) run(ctx context.Context, file models.SourceFile, logger *zap.Logger) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{Err: err}
	}
	format, err := validate(file, e.maxSize)
	if err != nil {
		return Outcome{Err: err}
	}
	out := Outcome{Format: format}
	e.checkDeclaredType(file, format, logger)

	chain := e.decoderFor(format)
	if chain == nil {
		out.Err = newError(KindUnsupportedType, nil, "no decoder for %s", format)
		return out
	}
	raw, used, attempts, err := runChain(ctx, chain, file.Data, logger)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			out.Err = ctxErr
			return out
		}
		out.Err = decodeFailure(format, attempts, err)
		return out
	}
	out.Strategy = used

	text := Normalize(raw)
	if text == "" {
		out.Err = newError(KindEmptyContent, nil, "%s contained only whitespace or unsupported characters", format)
		return out
	}
	out.Text = truncateText(text, e.maxTextLength)
	return out
}

// decoderFor selects the strategy chain for a format. Every format has a case.
func (e *Extractor) decoderFor(format models.LogicalFormat) []Strategy {
	if chain, ok := e.chains[format]; ok {
		return chain
	}
	switch format {
	case models.FormatPDF:
		return []Strategy{
			{Name: "pdf-text-layer", Decode: extractPDF},
			{Name: "pdf-content-stream", Decode: extractPDFContentStreams},
		}
	case models.FormatLegacyDoc:
		return legacyDocStrategies()
	case models.FormatModernDoc:
		return modernDocStrategies()
	case models.FormatOpenDocText, models.FormatRichText, models.FormatPlainText,
		models.FormatDelimitedText, models.FormatMarkupText:
		return []Strategy{{Name: "plain-text", Decode: extractPlain}}
	case models.FormatRasterImage:
		return []Strategy{ocrStrategy(e.ocrEngine, e.ocrLanguage)}
	default:
		return nil
	}
}

// decodeFailure converts an exhausted chain into a typed error. Images always fail as
// unreadable; word-processor files as corrupt; other formats report EmptyContent when
// some strategy parsed the file but found no text.
func decodeFailure(format models.LogicalFormat, attempts []DecodeAttempt, err error) error {
	switch format {
	case models.FormatRasterImage:
		return newError(KindUnreadableImage, err, "no text recognized")
	case models.FormatLegacyDoc, models.FormatModernDoc:
		return newError(KindCorruptOrProtectedFile, err, "all %d strategies failed", len(attempts))
	}
	for _, a := range attempts {
		if errors.Is(a.Err, errNoText) {
			return newError(KindEmptyContent, nil, "%s has no text", format)
		}
	}
	return newError(KindCorruptOrProtectedFile, err, "cannot decode %s", format)
}

// checkDeclaredType logs when the content sniffs as a different format than declared.
// Classification still follows the declared metadata.
func (e *Extractor) checkDeclaredType(file models.SourceFile, format models.LogicalFormat, logger *zap.Logger) {
	if len(file.Data) == 0 {
		return
	}
	detected := mimetype.Detect(file.Data)
	sniffed, ok := Classify(detected.String(), "")
	if !ok || sniffed == format || (isTextFormat(sniffed) && isTextFormat(format)) {
		return
	}
	logger.Warn("declared type does not match content",
		zap.String("declared", file.MediaType),
		zap.Stringer("declared_format", format),
		zap.String("detected", detected.String()),
	)
}

func isTextFormat(f models.LogicalFormat) bool {
	switch f {
	case models.FormatPlainText, models.FormatDelimitedText, models.FormatMarkupText, models.FormatRichText:
		return true
	}
	return false
}

// ReadSource reads path into a SourceFile. When mediaType is empty it is looked
// up from the extension in the system MIME table; unknown extensions stay empty
// and are classified by filename.
func ReadSource(path, mediaType string) (models.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.SourceFile{}, fmt.Errorf("read file: %w", err)
	}
	if mediaType == "" {
		mediaType = mime.TypeByExtension(filepath.Ext(path))
	}
	return models.SourceFile{
		Data:      data,
		MediaType: mediaType,
		Filename:  filepath.Base(path),
		Size:      int64(len(data)),
	}, nil
}

// ExtractFile reads path with ReadSource and extracts it.
func (e *Extractor) ExtractFile(ctx context.Context, path, mediaType string) Outcome {
	file, err := ReadSource(path, mediaType)
	if err != nil {
		return Outcome{Err: err}
	}
	return e.ExtractResult(ctx, file)
}

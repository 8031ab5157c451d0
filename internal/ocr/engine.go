// Package ocr provides optical character recognition engines for raster images.
package ocr

import (
	"context"
	"errors"
)

// DefaultLanguage is the recognition profile used when none is configured.
const DefaultLanguage = "eng"

// ErrUnavailable is returned by Acquire when no OCR engine is compiled in.
var ErrUnavailable = errors.New("ocr engine unavailable")

// Engine hands out recognition sessions. Every Acquire returns a fresh, unshared
// instance; the caller must Close it on every path.
type Engine interface {
	Acquire(ctx context.Context) (Session, error)
}

// Session is one engine instance used for exactly one recognition.
type Session interface {
	SetLanguage(lang string) error
	Recognize(ctx context.Context, image []byte) (string, error)
	Close() error
}

// Recognize runs the full session lifecycle for a single image: acquire, load the
// language model, recognize, release. The session is closed even when a step fails.
func Recognize(ctx context.Context, engine Engine, lang string, image []byte) (text string, err error) {
	if engine == nil {
		return "", ErrUnavailable
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	s, err := engine.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
			text = ""
		}
	}()
	if err := s.SetLanguage(lang); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Recognize(ctx, image)
}

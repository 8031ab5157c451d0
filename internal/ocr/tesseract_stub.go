//go:build !tesseract

package ocr

import (
	"context"
)

// Tesseract stub when built without the tesseract tag (see tesseract.go).
type Tesseract struct{}

// NewTesseract returns an engine whose Acquire always fails with ErrUnavailable.
func NewTesseract(_ string) *Tesseract {
	return &Tesseract{}
}

// Available reports whether this build can run OCR.
func (t *Tesseract) Available() bool { return false }

// Acquire fails: build with -tags tesseract and libtesseract installed to enable OCR.
func (t *Tesseract) Acquire(_ context.Context) (Session, error) {
	return nil, ErrUnavailable
}

//go:build tesseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract creates a new gosseract client for every session. Requires the
// tesseract and leptonica libraries at build and run time.
type Tesseract struct {
	tessdataPrefix string
}

// NewTesseract returns an engine. tessdataPrefix may be empty to use TESSDATA_PREFIX.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{tessdataPrefix: tessdataPrefix}
}

// Available reports whether this build can run OCR.
func (t *Tesseract) Available() bool { return true }

// Acquire creates a client. Language data is loaded lazily by the first recognition.
func (t *Tesseract) Acquire(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := gosseract.NewClient()
	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	return &tesseractSession{client: client}, nil
}

type tesseractSession struct {
	client *gosseract.Client
}

func (s *tesseractSession) SetLanguage(lang string) error {
	if err := s.client.SetLanguage(lang); err != nil {
		return fmt.Errorf("set language %q: %w", lang, err)
	}
	return nil
}

func (s *tesseractSession) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := s.client.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := s.client.Text()
	if err != nil {
		return "", fmt.Errorf("recognize: %w", err)
	}
	return text, nil
}

func (s *tesseractSession) Close() error {
	return s.client.Close()
}

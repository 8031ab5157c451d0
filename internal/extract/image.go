package extract

import (
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/hyperjump/cvtext/internal/ocr"
)

var ocrImageTypes = []string{"image/jpeg", "image/png", "image/webp", "image/tiff", "image/bmp"}

// ocrStrategy recognizes text in a raster image with a session acquired from engine
// for this call only. Content that does not sniff as a supported image is rejected
// before any engine is acquired.
func ocrStrategy(engine ocr.Engine, lang string) Strategy {
	return Strategy{
		Name: "ocr",
		Decode: func(ctx context.Context, content []byte) (string, error) {
			if !isRasterImage(content) {
				return "", fmt.Errorf("content is %s, not a supported image", mimetype.Detect(content))
			}
			return ocr.Recognize(ctx, engine, lang, content)
		},
	}
}

func isRasterImage(content []byte) bool {
	m := mimetype.Detect(content)
	for _, t := range ocrImageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}

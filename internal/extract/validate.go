package extract

import (
	"github.com/hyperjump/cvtext/internal/models"
)

// MaxSize is the largest accepted upload, in bytes.
const MaxSize int64 = 10 * 1024 * 1024

// Validate checks the size ceiling and format support before any decoding.
// The size check runs first so oversized files are rejected regardless of type.
func Validate(file models.SourceFile) (models.LogicalFormat, error) {
	return validate(file, MaxSize)
}

func validate(file models.SourceFile, maxSize int64) (models.LogicalFormat, error) {
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	if n := file.Len(); n > maxSize {
		return models.FormatUnknown, newError(KindFileTooLarge, nil, "%d bytes (max %d)", n, maxSize)
	}
	format, ok := Classify(file.MediaType, file.Filename)
	if !ok {
		return models.FormatUnknown, newError(KindUnsupportedType, nil, "media type %q, filename %q", file.MediaType, file.Filename)
	}
	return format, nil
}

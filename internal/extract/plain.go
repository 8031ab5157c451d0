package extract

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// binarySampleSize is how many leading bytes looksBinary inspects.
const binarySampleSize = 1000

// binaryThreshold is the share of control bytes above which content counts as binary.
const binaryThreshold = 0.15

// extractPlain decodes content as text. A byte order mark selects UTF-8 or UTF-16;
// without one the content must already be valid UTF-8.
func extractPlain(_ context.Context, content []byte) (string, error) {
	return decodeText(content)
}

func decodeText(content []byte) (string, error) {
	switch {
	case bytes.HasPrefix(content, bomUTF8):
		content = content[len(bomUTF8):]
	case bytes.HasPrefix(content, bomUTF16LE), bytes.HasPrefix(content, bomUTF16BE):
		out, err := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder().Bytes(content)
		if err != nil {
			return "", fmt.Errorf("decode UTF-16: %w", err)
		}
		return string(out), nil
	}
	if !utf8.Valid(content) {
		return "", fmt.Errorf("invalid UTF-8 at byte %d", invalidUTF8Offset(content))
	}
	return string(content), nil
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// extractRawText is the last resort for word-processor files: it accepts the bytes
// only when they decode as text and do not look like a binary container.
func extractRawText(ctx context.Context, content []byte) (string, error) {
	if looksBinary(content) {
		return "", fmt.Errorf("content is binary")
	}
	return extractPlain(ctx, content)
}

// looksBinary reports whether content starts with a known container signature
// or carries too many control bytes to be text.
func looksBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	for _, magic := range [][]byte{
		[]byte("%PDF-"),
		[]byte("PK\x03\x04"),
		{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1},
	} {
		if bytes.HasPrefix(content, magic) {
			return true
		}
	}
	if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) {
		return false
	}
	sample := content
	if len(sample) > binarySampleSize {
		sample = sample[:binarySampleSize]
	}
	control := 0
	for _, c := range sample {
		if c < 0x20 && c != '\n' && c != '\r' && c != '\t' && c != '\f' {
			control++
		}
	}
	return float64(control)/float64(len(sample)) > binaryThreshold
}

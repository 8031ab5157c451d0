package extract

import (
	"strings"
	"unicode"
)

// Normalize makes decoder output safe for downstream consumers: line endings are
// unified, every whitespace run (Unicode spaces such as NBSP included) becomes a
// single space, other characters outside printable ASCII are dropped, and the
// result is trimmed. Normalize is idempotent.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case r < 0x20 || r >= 0x7f:
			// Non-ASCII and control characters are removed without breaking words.
		default:
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
	}
	return b.String()
}

// truncateText cuts normalized text to at most max characters, backing up to the
// last space so no word is split. max <= 0 disables truncation.
func truncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := text[:max]
	if i := strings.LastIndexByte(cut, ' '); i > 0 && text[max] != ' ' {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ")
}

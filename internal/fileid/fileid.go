// Package fileid derives stable identifiers for inbox files.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// PathID returns a stable journal key for path. Same cleaned path, same ID.
func PathID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}

// ContentHash returns the hex SHA-256 of data. The journal uses it to tell a
// rewritten file from a touched one.
func ContentHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

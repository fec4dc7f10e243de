// Package fileid derives stable source IDs for summarized files, so a file
// edited in a watched directory replaces its earlier summary.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
)

const prefix = "src:"

// SourceID returns a stable source ID for the given absolute path.
// Same path always yields the same ID.
func SourceID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:16])
}

// Resolve makes path absolute and returns it with its source ID.
func Resolve(path string) (abs, id string, err error) {
	abs, err = filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return abs, SourceID(abs), nil
}

// IsSourceID reports whether s looks like an ID produced by SourceID.
func IsSourceID(s string) bool {
	return strings.HasPrefix(s, prefix) && len(s) == len(prefix)+32
}

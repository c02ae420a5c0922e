package db

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const KEY_LENGTH = 32

// ComputeKey derives the stable catalog identity for a filesystem path.
// The path is resolved to its canonical absolute form (symlinks followed
// when possible), case and separator normalized, and digested. The key
// tracks the path, not the file content - moving a file changes its key,
// rewriting it in place does not.
func ComputeKey(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	normalized := strings.ToLower(filepath.ToSlash(filepath.Clean(abs)))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:KEY_LENGTH]
}

package objfs

import (
	"fmt"
	"strings"
)

// pathSeparator indicates nested structure in object keys.
const pathSeparator = "/"

// ensureTrailingSeparator appends the path separator if not already present.
// Empty input is returned unchanged.
func ensureTrailingSeparator(path string) string {
	if path == "" || strings.HasSuffix(path, pathSeparator) {
		return path
	}
	return path + pathSeparator
}

// stripSuffixIfPresent removes one occurrence of suffix from the end of s.
func stripSuffixIfPresent(s, suffix string) string {
	return strings.TrimSuffix(s, suffix)
}

// joinPath concatenates a parent path and a child name with the separator.
func joinPath(parent, child string) string {
	if parent == "" {
		return child
	}
	return strings.TrimSuffix(parent, pathSeparator) + pathSeparator + child
}

// childName returns child with the parent prefix removed.
// Fails if child does not start with parent.
func childName(child, parent string) (string, error) {
	if !strings.HasPrefix(child, parent) {
		return "", fmt.Errorf("%w: parent %q child %q", ErrInvalidPrefix, parent, child)
	}
	return child[len(parent):], nil
}

// stripRootPrefix removes the normalized root key prefix if present,
// otherwise removes a single leading separator if present, otherwise
// returns the path unchanged. Idempotent.
//
// Example: "s3://bucket/my-path/file" and "/my-path/file" both become
// "my-path/file"; "my-path/file" is returned unaltered.
func (fs *FileSystem) stripRootPrefix(path string) string {
	stripped := strings.TrimPrefix(path, fs.root)
	if stripped != path {
		return stripped
	}
	return strings.TrimPrefix(path, pathSeparator)
}

// isRoot reports whether path denotes the filesystem root.
func (fs *FileSystem) isRoot(path string) bool {
	if ensureTrailingSeparator(path) == fs.root {
		return true
	}
	return fs.stripRootPrefix(path) == ""
}

// parentOf returns the parent of path. ok is false for the root, which
// has no parent. A single-segment path parents to the root (empty string).
func (fs *FileSystem) parentOf(path string) (parent string, ok bool) {
	if fs.isRoot(path) {
		return "", false
	}
	p := strings.TrimSuffix(path, pathSeparator)
	idx := strings.LastIndex(p, pathSeparator)
	if idx < 0 {
		return "", true
	}
	return p[:idx], true
}

// folderMarkerKey converts a key to its folder marker form: one trailing
// separator is stripped, then the backend's folder suffix is appended.
// The trailing separator is stripped first because it is not part of the
// object key itself.
func (fs *FileSystem) folderMarkerKey(key string) string {
	key = stripSuffixIfPresent(key, pathSeparator)
	return key + fs.driver.FolderSuffix()
}

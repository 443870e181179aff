package objfs

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/3leaps/objfs/pkg/backend"
)

// ChildEntry is one merged listing result: a child name relative to the
// listed directory and whether it is a directory. Names are unique within
// one listing; order is unspecified.
type ChildEntry struct {
	Name        string
	IsDirectory bool
}

// ListChildren lists the entries under path. Names are logical: folder
// suffixes are stripped. With recursive true all descendants are returned,
// otherwise only immediate children.
//
// Returns ErrNotFound if path does not currently resolve to a directory,
// or if the backend reports no keys under it at all.
//
// Directories under a flat object store can be encoded two ways: as marker
// objects carrying the folder suffix (created through this system), or as
// common prefixes of other keys (created by other tools). Both sources are
// merged into one name-keyed set; on a name collision the directory
// interpretation wins. Directories known only from common prefixes get
// their marker materialized as a side effect, so later probes are cheap.
func (fs *FileSystem) ListChildren(ctx context.Context, path string, recursive bool) ([]ChildEntry, error) {
	const op = "list"

	if !fs.IsDirectory(ctx, path) {
		return nil, &PathError{Op: op, Path: path, Err: ErrNotFound}
	}

	prefix := fs.stripRootPrefix(path)
	prefix = ensureTrailingSeparator(prefix)
	if prefix == pathSeparator {
		prefix = ""
	}

	chunk, err := fs.driver.GetObjectListing(ctx, backend.ListingOptions{
		Prefix:    prefix,
		Recursive: recursive,
		PageSize:  fs.pageSize,
	})
	if err != nil {
		return nil, &PathError{Op: op, Path: path, Err: err}
	}
	if chunk == nil {
		return nil, &PathError{Op: op, Path: path, Err: ErrNotFound}
	}

	suffix := fs.driver.FolderSuffix()
	children := make(map[string]bool)

	for chunk != nil {
		for _, obj := range chunk.ObjectNames() {
			child, err := childName(obj, prefix)
			if err != nil {
				return nil, &PathError{Op: op, Path: path, Err: err}
			}
			isDir := strings.HasSuffix(child, suffix)
			child = stripSuffixIfPresent(child, suffix)
			// A derivation equal to the listed path itself is empty; drop it.
			if child == "" {
				continue
			}
			children[child] = children[child] || isDir
		}

		for _, commonPrefix := range chunk.CommonPrefixes() {
			child, err := childName(commonPrefix, prefix)
			if err != nil {
				return nil, &PathError{Op: op, Path: path, Err: err}
			}
			// Keep only the immediate child segment.
			if idx := strings.Index(child, pathSeparator); idx != -1 {
				child = child[:idx]
			}
			if child == "" {
				continue
			}
			if _, ok := children[child]; !ok {
				// This directory was not created through this system.
				// Materialize its marker so later probes are stat hits.
				if err := fs.createMarker(ctx, commonPrefix); err != nil {
					fs.log.Warn("failed to self-heal marker for common prefix",
						zap.String("prefix", commonPrefix), zap.Error(err))
				}
				children[child] = true
			}
		}

		chunk, err = chunk.NextChunk(ctx)
		if err != nil {
			return nil, &PathError{Op: op, Path: path, Err: err}
		}
	}

	entries := make([]ChildEntry, 0, len(children))
	for name, isDir := range children {
		entries = append(entries, ChildEntry{Name: name, IsDirectory: isDir})
	}
	return entries, nil
}

// List returns the logical names of path's immediate children.
func (fs *FileSystem) List(ctx context.Context, path string) ([]string, error) {
	return fs.listNames(ctx, path, false)
}

// ListRecursive returns the logical names of all of path's descendants.
func (fs *FileSystem) ListRecursive(ctx context.Context, path string) ([]string, error) {
	return fs.listNames(ctx, path, true)
}

func (fs *FileSystem) listNames(ctx context.Context, path string, recursive bool) ([]string, error) {
	entries, err := fs.ListChildren(ctx, path, recursive)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

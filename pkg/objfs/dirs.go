package objfs

import (
	"context"

	"go.uber.org/zap"

	"github.com/3leaps/objfs/pkg/backend"
)

// IsDirectory reports whether path is a directory. The root is always a
// directory.
//
// Backend failures during the probe read as "not a directory" (fail-open);
// the swallowed error is logged. See probeDirectory.
func (fs *FileSystem) IsDirectory(ctx context.Context, path string) bool {
	return fs.isRoot(path) || fs.probeDirectory(ctx, path) != nil
}

// IsFile reports whether path exists as a file. A path that is only a
// directory marker or common prefix is not a file.
func (fs *FileSystem) IsFile(ctx context.Context, path string) bool {
	status, err := fs.driver.GetObjectStatus(ctx, fs.stripRootPrefix(path))
	if err != nil {
		if !backend.IsNotFound(err) {
			fs.log.Warn("file stat failed, treating as missing",
				zap.String("path", path), zap.Error(err))
		}
		return false
	}
	return status != nil
}

// probeDirectory returns marker metadata for a non-root path, or nil if the
// path does not represent a directory.
//
// The marker object is checked first. If absent, a listing probe looks for
// any key under the path's prefix; when keys exist the directory was created
// outside this system, so the marker is materialized (self-heal) and
// re-statted, making repeated probes direct stat hits.
//
// Any backend I/O failure along the way is treated as "not a directory"
// rather than propagated. This is a deliberate policy: it hides backend
// outages behind a "does not exist" answer, so the discarded error is logged
// at Warn for operators.
func (fs *FileSystem) probeDirectory(ctx context.Context, path string) *backend.ObjectStatus {
	key := fs.stripRootPrefix(path)
	markerKey := fs.folderMarkerKey(key)

	status, err := fs.driver.GetObjectStatus(ctx, markerKey)
	if err == nil {
		return status
	}
	if !backend.IsNotFound(err) {
		fs.log.Warn("directory marker stat failed, probing listing instead",
			zap.String("path", path), zap.Error(err))
	}

	// Check if anything exists under <path>/.
	chunk, err := fs.driver.GetObjectListing(ctx, backend.ListingOptions{
		Prefix:    ensureTrailingSeparator(key),
		Recursive: true,
		PageSize:  fs.pageSize,
	})
	if err != nil {
		fs.log.Warn("directory probe listing failed, treating as not a directory",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	if chunk == nil || len(chunk.ObjectNames()) == 0 {
		return nil
	}

	// Keys share the prefix: this is a directory. Materialize the marker.
	if err := fs.createMarker(ctx, key); err != nil {
		fs.log.Warn("failed to self-heal directory marker",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	status, err = fs.driver.GetObjectStatus(ctx, markerKey)
	if err != nil {
		fs.log.Warn("marker stat failed after self-heal",
			zap.String("path", path), zap.Error(err))
		return nil
	}
	return status
}

// createMarker creates the zero-byte folder marker object for path.
// Idempotent: re-creating an existing marker overwrites it in place.
func (fs *FileSystem) createMarker(ctx context.Context, path string) error {
	return fs.driver.CreateEmptyObject(ctx, fs.folderMarkerKey(fs.stripRootPrefix(path)))
}

// MakeDirectories creates the directory at path.
//
// If path is already a directory this is a no-op. If path exists as a file
// the call fails with ErrAlreadyExists. With createParent false the parent
// must already be a directory (the root counts), else ErrMissingParent.
// With createParent true the parent chain is created least-specific first;
// ancestors created before a later failure are not rolled back.
func (fs *FileSystem) MakeDirectories(ctx context.Context, path string, createParent bool) error {
	const op = "mkdirs"

	if fs.IsDirectory(ctx, path) {
		return nil
	}
	if fs.IsFile(ctx, path) {
		fs.log.Error("cannot create directory over existing file", zap.String("path", path))
		return &PathError{Op: op, Path: path, Err: ErrAlreadyExists}
	}
	if !fs.parentExists(ctx, path) {
		if !createParent {
			fs.log.Error("cannot create directory, parent does not exist", zap.String("path", path))
			return &PathError{Op: op, Path: path, Err: ErrMissingParent}
		}
		parent, ok := fs.parentOf(fs.stripRootPrefix(path))
		if ok {
			if err := fs.MakeDirectories(ctx, parent, true); err != nil {
				return err
			}
		}
	}
	if err := fs.createMarker(ctx, path); err != nil {
		return &PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

// parentExists reports whether path's parent is a directory. The root is
// its own parent and always exists.
func (fs *FileSystem) parentExists(ctx context.Context, path string) bool {
	if fs.isRoot(path) {
		return true
	}
	parent, ok := fs.parentOf(fs.stripRootPrefix(path))
	if !ok {
		return false
	}
	return parent == "" || fs.IsDirectory(ctx, parent)
}

package objfs

import (
	"context"

	"go.uber.org/zap"
)

// DeleteDirectory deletes the directory at path.
//
// With recursive false the directory must be empty, else the call fails
// with ErrDirectoryNotEmpty and nothing is touched. With recursive true
// every descendant is deleted one at a time in listing order, aborting on
// the first failure; descendants already deleted stay deleted. On success
// the directory's own marker is deleted last.
func (fs *FileSystem) DeleteDirectory(ctx context.Context, path string, recursive bool) error {
	const op = "delete"

	if !recursive {
		children, err := fs.ListChildren(ctx, path, false)
		if err != nil {
			fs.log.Error("unable to delete directory, listing failed",
				zap.String("path", path), zap.Error(err))
			return err
		}
		if len(children) != 0 {
			fs.log.Error("unable to delete non-empty directory without recursive",
				zap.String("path", path), zap.Int("children", len(children)))
			return &PathError{Op: op, Path: path, Err: ErrDirectoryNotEmpty}
		}
	} else {
		children, err := fs.ListChildren(ctx, path, true)
		if err != nil {
			fs.log.Error("unable to delete directory, listing failed",
				zap.String("path", path), zap.Error(err))
			return err
		}
		base := fs.stripRootPrefix(path)
		for _, child := range children {
			key := joinPath(base, child.Name)
			if child.IsDirectory {
				key = fs.folderMarkerKey(key)
			}
			if err := fs.deleteObject(ctx, key); err != nil {
				fs.log.Error("failed to delete descendant, aborting delete",
					zap.String("path", path), zap.String("key", key), zap.Error(err))
				return &PathError{Op: op, Path: path, Err: err}
			}
		}
	}

	// Delete the directory's own marker.
	if err := fs.deleteObject(ctx, fs.folderMarkerKey(fs.stripRootPrefix(path))); err != nil {
		return &PathError{Op: op, Path: path, Err: err}
	}
	return nil
}

// RenameDirectory renames the directory at src to dst.
//
// The destination must not exist in any form. The destination marker is
// established first, then each immediate child is renamed into dst
// (recursing for subdirectories). The rename aborts on the first child
// failure, leaving a partially renamed tree: children already moved stay
// under dst, the rest stay under src, and no automatic repair runs. On
// full success the src subtree is deleted recursively.
func (fs *FileSystem) RenameDirectory(ctx context.Context, src, dst string) error {
	const op = "rename"

	children, err := fs.ListChildren(ctx, src, false)
	if err != nil {
		fs.log.Error("failed to list directory, aborting rename",
			zap.String("src", src), zap.Error(err))
		return err
	}
	if fs.IsFile(ctx, dst) || fs.IsDirectory(ctx, dst) {
		fs.log.Error("unable to rename, destination already exists",
			zap.String("src", src), zap.String("dst", dst))
		return &PathError{Op: op, Path: dst, Err: ErrAlreadyExists}
	}

	// Establish the destination by copying the source folder marker.
	srcMarker := fs.folderMarkerKey(fs.stripRootPrefix(src))
	dstMarker := fs.folderMarkerKey(fs.stripRootPrefix(dst))
	if err := fs.copyObject(ctx, srcMarker, dstMarker); err != nil {
		return &PathError{Op: op, Path: src, Err: err}
	}

	for _, child := range children {
		childSrc := joinPath(src, child.Name)
		childDst := joinPath(dst, child.Name)
		if child.IsDirectory {
			err = fs.RenameDirectory(ctx, childSrc, childDst)
		} else {
			err = fs.RenameFile(ctx, childSrc, childDst)
		}
		if err != nil {
			fs.log.Error("failed to rename child, aborting rename",
				zap.String("child", childSrc), zap.Error(err))
			return err
		}
	}

	// Delete src and everything under it.
	return fs.DeleteDirectory(ctx, src, true)
}

// RenameFile renames the file at src to dst.
//
// src must exist as a file and dst must not exist in any form. The rename
// is copy-then-delete-source; the backend offers no atomic move. A failure
// after the copy succeeds but before the source delete leaves both copies
// present - an accepted non-atomicity with no defined reconciliation.
func (fs *FileSystem) RenameFile(ctx context.Context, src, dst string) error {
	const op = "rename"

	if !fs.IsFile(ctx, src) {
		fs.log.Error("unable to rename, source missing or a directory",
			zap.String("src", src), zap.String("dst", dst))
		return &PathError{Op: op, Path: src, Err: ErrNotFound}
	}
	if fs.IsFile(ctx, dst) || fs.IsDirectory(ctx, dst) {
		fs.log.Error("unable to rename, destination already exists",
			zap.String("src", src), zap.String("dst", dst))
		return &PathError{Op: op, Path: dst, Err: ErrAlreadyExists}
	}

	if err := fs.copyObject(ctx, fs.stripRootPrefix(src), fs.stripRootPrefix(dst)); err != nil {
		return &PathError{Op: op, Path: src, Err: err}
	}
	if err := fs.deleteObject(ctx, fs.stripRootPrefix(src)); err != nil {
		return &PathError{Op: op, Path: src, Err: err}
	}
	return nil
}

// deleteObject deletes one backend key, honoring the mutation rate limit.
func (fs *FileSystem) deleteObject(ctx context.Context, key string) error {
	if err := fs.waitMutation(ctx); err != nil {
		return err
	}
	return fs.driver.DeleteObject(ctx, key)
}

// copyObject copies one backend key, honoring the mutation rate limit.
func (fs *FileSystem) copyObject(ctx context.Context, srcKey, dstKey string) error {
	if err := fs.waitMutation(ctx); err != nil {
		return err
	}
	return fs.driver.CopyObject(ctx, srcKey, dstKey)
}

// waitMutation blocks until the mutation rate limiter allows a request.
// Returns immediately if rate limiting is disabled.
func (fs *FileSystem) waitMutation(ctx context.Context) error {
	if fs.limiter == nil {
		return nil
	}
	return fs.limiter.Wait(ctx)
}

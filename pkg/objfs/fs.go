// Package objfs emulates a hierarchical file system - directories,
// recursive listing, rename, delete - on top of a flat object store that
// natively supports only put/get/stat/delete/list-by-prefix.
//
// Directories are encoded as zero-byte marker objects carrying the
// backend's folder suffix. Directories created by other tools are inferred
// from common-prefix listings and lazily converted into markers
// (self-healing). Multi-object operations (mkdirs, rename, recursive
// delete) are not atomic: they abort on the first failing step with no
// rollback, and the resulting partial state is a defined outcome.
//
// All operations are synchronous and blocking on backend I/O. Nothing
// guards concurrent mutation of the same subtree by multiple callers; the
// backend provides no cross-object transactional guarantee. Retry and
// deadline policy belongs to the backend driver or the caller's context.
package objfs

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/3leaps/objfs/pkg/backend"
)

// FileSystem presents a directory hierarchy over a backend.Driver.
type FileSystem struct {
	driver    backend.Driver
	root      string // normalized root key with trailing separator
	pageSize  int
	blockSize int64
	log       *zap.Logger
	limiter   *rate.Limiter
}

// New creates a FileSystem over driver.
func New(driver backend.Driver, cfg Config) *FileSystem {
	fs := &FileSystem{
		driver:    driver,
		root:      ensureTrailingSeparator(driver.RootKey()),
		pageSize:  cfg.pageSize(),
		blockSize: cfg.blockSize(),
		log:       cfg.logger(),
	}
	if cfg.MutationRate > 0 {
		fs.limiter = rate.NewLimiter(rate.Limit(cfg.MutationRate), 1)
	}
	return fs
}

// Close releases the underlying driver.
func (fs *FileSystem) Close() error {
	return fs.driver.Close()
}

// Create opens an upload stream for a new file at path, ensuring the
// parent directory chain exists first.
func (fs *FileSystem) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	parent, ok := fs.parentOf(fs.stripRootPrefix(path))
	if ok {
		if err := fs.MakeDirectories(ctx, parent, true); err != nil {
			return nil, err
		}
	}
	w, err := fs.driver.CreateObject(ctx, fs.stripRootPrefix(path))
	if err != nil {
		return nil, &PathError{Op: "create", Path: path, Err: err}
	}
	return w, nil
}

// DeleteFile deletes the file at path.
func (fs *FileSystem) DeleteFile(ctx context.Context, path string) error {
	if err := fs.deleteObject(ctx, fs.stripRootPrefix(path)); err != nil {
		return &PathError{Op: "delete", Path: path, Err: err}
	}
	return nil
}

// FileSize returns the size in bytes of the file at path.
// Fails with ErrNotFound when the key does not exist.
func (fs *FileSystem) FileSize(ctx context.Context, path string) (int64, error) {
	status, err := fs.stat(ctx, "size", path)
	if err != nil {
		return 0, err
	}
	return status.SizeBytes, nil
}

// ModificationTime returns the last-modified time of the file at path.
// Fails with ErrNotFound when the key does not exist.
func (fs *FileSystem) ModificationTime(ctx context.Context, path string) (time.Time, error) {
	status, err := fs.stat(ctx, "mtime", path)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(status.LastModifiedMs).UTC(), nil
}

// BlockSize returns the reported block size for path. Object stores have
// no block concept, so this is the configured fallback value.
func (fs *FileSystem) BlockSize(path string) int64 {
	_ = path
	return fs.blockSize
}

func (fs *FileSystem) stat(ctx context.Context, op, path string) (*backend.ObjectStatus, error) {
	status, err := fs.driver.GetObjectStatus(ctx, fs.stripRootPrefix(path))
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, &PathError{Op: op, Path: path, Err: ErrNotFound}
		}
		return nil, &PathError{Op: op, Path: path, Err: err}
	}
	return status, nil
}

package objfs

import (
	"go.uber.org/zap"

	"github.com/3leaps/objfs/pkg/backend"
)

// DefaultBlockSize is the fallback block size reported for files when the
// backend has no better value. Object stores have no native block concept;
// this exists purely for size reporting in callers that expect one.
const DefaultBlockSize = 512 * 1024 * 1024

// Config configures a FileSystem.
//
// All values are threaded explicitly; the package reads no ambient global
// state.
type Config struct {
	// PageSize bounds listing pages. Zero means the maximum (1000);
	// values over 1000 are clamped to 1000.
	PageSize int

	// BlockSize is the reported block size for files. Zero uses
	// DefaultBlockSize.
	BlockSize int64

	// MutationRate caps backend mutations (deletes and copies) per second
	// during recursive operations. Zero means unlimited.
	MutationRate float64

	// Logger receives structured operational logs, including the backend
	// errors that directory probing deliberately swallows. Nil uses a
	// no-op logger.
	Logger *zap.Logger
}

func (c Config) pageSize() int {
	return backend.ClampPageSize(c.PageSize, backend.MaxPageSize)
}

func (c Config) blockSize() int64 {
	if c.BlockSize > 0 {
		return c.BlockSize
	}
	return DefaultBlockSize
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}

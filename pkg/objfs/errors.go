package objfs

import (
	"errors"
	"fmt"

	"github.com/3leaps/objfs/pkg/backend"
)

// Sentinel errors for filesystem operations.
var (
	// ErrNotFound indicates the path does not exist, or does not resolve
	// to the kind of entry the operation requires.
	ErrNotFound = errors.New("no such file or directory")

	// ErrAlreadyExists indicates the path already exists in a conflicting
	// form (a file where a directory is wanted, or an occupied rename
	// destination).
	ErrAlreadyExists = errors.New("path already exists")

	// ErrDirectoryNotEmpty indicates a non-recursive delete hit a
	// directory with children.
	ErrDirectoryNotEmpty = errors.New("directory not empty")

	// ErrInvalidPrefix indicates a listed key did not share the prefix of
	// the directory being listed.
	ErrInvalidPrefix = errors.New("invalid prefix")

	// ErrMissingParent indicates a directory create without createParent
	// found no parent directory.
	ErrMissingParent = errors.New("parent directory does not exist")
)

// PathError records an operation, the path it failed on, and the cause.
type PathError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *PathError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PathError) Unwrap() error {
	return e.Err
}

// IsNotFound returns true if the error indicates a missing path.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, backend.ErrNotFound)
}

// IsAlreadyExists returns true if the error indicates a conflicting path.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsDirectoryNotEmpty returns true if the error indicates a non-empty directory.
func IsDirectoryNotEmpty(err error) bool {
	return errors.Is(err, ErrDirectoryNotEmpty)
}

// IsMissingParent returns true if the error indicates a missing parent directory.
func IsMissingParent(err error) bool {
	return errors.Is(err, ErrMissingParent)
}

// IsBackendIO returns true if the error originated in the backend driver.
func IsBackendIO(err error) bool {
	var de *backend.DriverError
	return errors.As(err, &de)
}

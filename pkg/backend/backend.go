// Package backend defines the capability contract for flat object stores.
//
// A Driver exposes the primitive operations the filesystem emulation layer
// is built on: put/get/stat/delete plus paginated prefix listing. Drivers
// implement no directory or move semantics of their own - those are
// synthesized above this interface.
//
// Authentication uses SDK default credential chains - drivers should not
// implement custom auth logic.
package backend

import (
	"context"
	"io"
)

// ObjectStatus is an immutable metadata snapshot for a single object.
type ObjectStatus struct {
	// SizeBytes is the object content length in bytes.
	SizeBytes int64

	// LastModifiedMs is the UTC last-modified time in milliseconds.
	LastModifiedMs int64
}

// ListingChunk is one page of a paginated listing.
//
// Chunks form a finite, forward-only, non-restartable sequence: each call
// to NextChunk consumes the cursor and returns the following page, or
// (nil, nil) when the listing is exhausted.
type ListingChunk interface {
	// ObjectNames returns the object keys in this page, in backend order.
	ObjectNames() []string

	// CommonPrefixes returns the delimiter-based key groupings in this
	// page. Empty for recursive (delimiter-less) listings.
	CommonPrefixes() []string

	// NextChunk fetches the next page. Returns (nil, nil) when done.
	NextChunk(ctx context.Context) (ListingChunk, error)
}

// ListingOptions configures a GetObjectListing call.
type ListingOptions struct {
	// Prefix filters results to keys starting with this value.
	Prefix string

	// Recursive requests a delimiter-less listing that descends
	// arbitrarily deep. When false the listing is delimiter-bounded and
	// reports immediate children plus common prefixes.
	Recursive bool

	// PageSize limits the number of keys per page. Zero uses the driver
	// default. Values over MaxPageSize are clamped.
	PageSize int
}

// MaxPageSize is the hard cap on listing page size, matching the limit
// shared by S3-compatible stores.
const MaxPageSize = 1000

// Driver is the pluggable object-store capability set.
//
// Implementations should be safe for concurrent use. Single-object
// operations report failure through the returned error; callers decide
// whether a failure aborts a multi-step operation.
type Driver interface {
	// CreateEmptyObject creates a zero-byte object under key. Used to
	// persist folder markers. Overwriting an existing marker is allowed.
	CreateEmptyObject(ctx context.Context, key string) error

	// CreateObject opens an upload stream for new object content. The
	// object becomes visible when the returned writer is closed.
	CreateObject(ctx context.Context, key string) (io.WriteCloser, error)

	// CopyObject copies one object to another key, server-side when the
	// backend supports it.
	CopyObject(ctx context.Context, srcKey, dstKey string) error

	// DeleteObject deletes a single object by key.
	DeleteObject(ctx context.Context, key string) error

	// GetObjectStatus returns metadata for key, or an error wrapping
	// ErrNotFound when the key does not exist.
	GetObjectStatus(ctx context.Context, key string) (*ObjectStatus, error)

	// GetObjectListing begins a paginated listing and returns the first
	// chunk. A (nil, nil) return means no keys share the prefix at all.
	GetObjectListing(ctx context.Context, opts ListingOptions) (ListingChunk, error)

	// FolderSuffix returns the backend-specific reserved suffix that
	// identifies folder marker objects.
	FolderSuffix() string

	// RootKey returns the canonical root path including scheme and
	// bucket/container identifier, e.g. "s3://bucket".
	RootKey() string

	// Close releases any resources held by the driver.
	Close() error
}

// ClampPageSize applies defaults and the hard cap to a page size value.
// If requested is <= 0, driverDefault is used. The result never exceeds
// MaxPageSize.
func ClampPageSize(requested, driverDefault int) int {
	if requested <= 0 {
		requested = driverDefault
	}
	if requested > MaxPageSize || requested <= 0 {
		return MaxPageSize
	}
	return requested
}

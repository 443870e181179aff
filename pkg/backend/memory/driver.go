// Package memory implements an in-memory object-store driver.
//
// The driver mimics S3 listing semantics (lexicographic order, delimiter
// grouping into common prefixes, page-size truncation) and is the test
// backbone for the filesystem emulation layer. It is also handy for local
// experimentation without credentials.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/3leaps/objfs/pkg/backend"
)

const backendName = "memory"

// DefaultPageSize is the listing page size used when none is requested.
const DefaultPageSize = 1000

// Hooks allow tests to inject failures ahead of individual operations.
// A nil hook or a nil return lets the operation proceed.
type Hooks struct {
	BeforeStat   func(key string) error
	BeforePut    func(key string) error
	BeforeCopy   func(srcKey, dstKey string) error
	BeforeDelete func(key string) error
	BeforeList   func(prefix string) error
}

// Config configures a memory driver.
type Config struct {
	// Bucket names the simulated bucket. Required.
	Bucket string

	// FolderSuffix is the marker suffix. Defaults to "/".
	FolderSuffix string

	// PageSize is the default listing page size. Defaults to 1000.
	PageSize int
}

// Validate checks that required configuration is present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Bucket) == "" {
		return fmt.Errorf("memory config: bucket name is required")
	}
	return nil
}

type object struct {
	data  []byte
	modMs int64
}

// Driver implements backend.Driver against a process-local key space.
type Driver struct {
	mu      sync.RWMutex
	objects map[string]object

	bucket       string
	folderSuffix string
	pageSize     int

	hooks Hooks
}

var _ backend.Driver = (*Driver)(nil)

// New creates a memory driver.
func New(cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	suffix := cfg.FolderSuffix
	if suffix == "" {
		suffix = "/"
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Driver{
		objects:      make(map[string]object),
		bucket:       cfg.Bucket,
		folderSuffix: suffix,
		pageSize:     pageSize,
	}, nil
}

// SetHooks installs failure-injection hooks. Intended for tests.
func (d *Driver) SetHooks(h Hooks) { d.hooks = h }

// Keys returns all stored keys in sorted order. Intended for tests.
func (d *Driver) Keys() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	keys := make([]string, 0, len(d.objects))
	for k := range d.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Contents returns the stored bytes for key and whether it exists.
// Intended for tests.
func (d *Driver) Contents(key string) ([]byte, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	obj, ok := d.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), obj.data...), true
}

func (d *Driver) FolderSuffix() string { return d.folderSuffix }

func (d *Driver) RootKey() string { return "memory://" + d.bucket }

func (d *Driver) Close() error { return nil }

func (d *Driver) CreateEmptyObject(ctx context.Context, key string) error {
	_ = ctx
	if d.hooks.BeforePut != nil {
		if err := d.hooks.BeforePut(key); err != nil {
			return d.wrapError("CreateEmptyObject", key, err)
		}
	}
	d.put(key, nil)
	return nil
}

func (d *Driver) CreateObject(ctx context.Context, key string) (io.WriteCloser, error) {
	_ = ctx
	if d.hooks.BeforePut != nil {
		if err := d.hooks.BeforePut(key); err != nil {
			return nil, d.wrapError("CreateObject", key, err)
		}
	}
	return &objectWriter{driver: d, key: key}, nil
}

func (d *Driver) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	_ = ctx
	if d.hooks.BeforeCopy != nil {
		if err := d.hooks.BeforeCopy(srcKey, dstKey); err != nil {
			return d.wrapError("CopyObject", srcKey, err)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	src, ok := d.objects[srcKey]
	if !ok {
		return d.wrapError("CopyObject", srcKey, backend.ErrNotFound)
	}
	d.objects[dstKey] = object{
		data:  append([]byte(nil), src.data...),
		modMs: time.Now().UnixMilli(),
	}
	return nil
}

func (d *Driver) DeleteObject(ctx context.Context, key string) error {
	_ = ctx
	if d.hooks.BeforeDelete != nil {
		if err := d.hooks.BeforeDelete(key); err != nil {
			return d.wrapError("DeleteObject", key, err)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, key)
	return nil
}

func (d *Driver) GetObjectStatus(ctx context.Context, key string) (*backend.ObjectStatus, error) {
	_ = ctx
	if d.hooks.BeforeStat != nil {
		if err := d.hooks.BeforeStat(key); err != nil {
			return nil, d.wrapError("GetObjectStatus", key, err)
		}
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	obj, ok := d.objects[key]
	if !ok {
		return nil, d.wrapError("GetObjectStatus", key, backend.ErrNotFound)
	}
	return &backend.ObjectStatus{
		SizeBytes:      int64(len(obj.data)),
		LastModifiedMs: obj.modMs,
	}, nil
}

func (d *Driver) GetObjectListing(ctx context.Context, opts backend.ListingOptions) (backend.ListingChunk, error) {
	_ = ctx
	if d.hooks.BeforeList != nil {
		if err := d.hooks.BeforeList(opts.Prefix); err != nil {
			return nil, d.wrapError("GetObjectListing", opts.Prefix, err)
		}
	}

	entries := d.collectEntries(opts.Prefix, opts.Recursive)
	if len(entries) == 0 {
		return nil, nil
	}

	pageSize := backend.ClampPageSize(opts.PageSize, d.pageSize)
	return newChunk(entries, pageSize), nil
}

func (d *Driver) put(key string, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.objects[key] = object{
		data:  append([]byte(nil), data...),
		modMs: time.Now().UnixMilli(),
	}
}

// listEntry is either an object key or a common prefix, kept in one sorted
// sequence so pagination splits both kinds the way S3 does.
type listEntry struct {
	name     string
	isPrefix bool
}

func (d *Driver) collectEntries(prefix string, recursive bool) []listEntry {
	d.mu.RLock()
	keys := make([]string, 0, len(d.objects))
	for k := range d.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	d.mu.RUnlock()
	sort.Strings(keys)

	if recursive {
		entries := make([]listEntry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, listEntry{name: k})
		}
		return entries
	}

	var entries []listEntry
	seenPrefixes := map[string]struct{}{}
	for _, k := range keys {
		remainder := k[len(prefix):]
		idx := strings.Index(remainder, "/")
		if idx == -1 {
			entries = append(entries, listEntry{name: k})
			continue
		}
		cp := prefix + remainder[:idx+1]
		if _, ok := seenPrefixes[cp]; ok {
			continue
		}
		seenPrefixes[cp] = struct{}{}
		entries = append(entries, listEntry{name: cp, isPrefix: true})
	}
	return entries
}

func (d *Driver) wrapError(op, key string, err error) error {
	return &backend.DriverError{
		Op:      op,
		Backend: backendName,
		Bucket:  d.bucket,
		Key:     key,
		Err:     err,
	}
}

// objectWriter buffers writes and publishes the object on Close.
type objectWriter struct {
	driver *Driver
	key    string
	buf    bytes.Buffer
	closed bool
}

func (w *objectWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fmt.Errorf("write to closed object writer for %s", w.key)
	}
	return w.buf.Write(p)
}

func (w *objectWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	w.driver.put(w.key, w.buf.Bytes())
	return nil
}

// chunk implements backend.ListingChunk over a pre-collected entry slice.
type chunk struct {
	objects  []string
	prefixes []string
	rest     []listEntry
	pageSize int
}

func newChunk(entries []listEntry, pageSize int) *chunk {
	page := entries
	var rest []listEntry
	if len(entries) > pageSize {
		page = entries[:pageSize]
		rest = entries[pageSize:]
	}

	c := &chunk{rest: rest, pageSize: pageSize}
	for _, e := range page {
		if e.isPrefix {
			c.prefixes = append(c.prefixes, e.name)
		} else {
			c.objects = append(c.objects, e.name)
		}
	}
	return c
}

func (c *chunk) ObjectNames() []string    { return c.objects }
func (c *chunk) CommonPrefixes() []string { return c.prefixes }

func (c *chunk) NextChunk(ctx context.Context) (backend.ListingChunk, error) {
	_ = ctx
	if len(c.rest) == 0 {
		return nil, nil
	}
	return newChunk(c.rest, c.pageSize), nil
}

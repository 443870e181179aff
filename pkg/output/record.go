// Package output provides JSONL output for listing and find results.
//
// Output is structured as typed record envelopes containing entries,
// errors, and a final summary. Each line is a self-contained JSON
// object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants define the envelope types for JSONL output.
// These follow the pattern: objfs.<type>.v<version>
const (
	// TypeEntry identifies filesystem entry records.
	TypeEntry = "objfs.entry.v1"

	// TypeError identifies error records.
	TypeError = "objfs.error.v1"

	// TypeSummary identifies final summary records.
	TypeSummary = "objfs.summary.v1"
)

// Record is the envelope for all JSONL output.
//
// Each line of JSONL output contains a Record with a type-specific
// payload in the Data field. The type field determines how to
// interpret the Data payload.
type Record struct {
	// Type identifies the record type (e.g., "objfs.entry.v1").
	Type string `json:"type"`

	// TS is the timestamp when the record was created (RFC3339Nano).
	TS time.Time `json:"ts"`

	// JobID is the correlation ID for this invocation.
	JobID string `json:"job_id"`

	// Provider identifies the storage provider (e.g., "s3", "memory").
	Provider string `json:"provider"`

	// Data contains the type-specific payload as raw JSON.
	Data json.RawMessage `json:"data"`
}

// EntryRecord is the data payload for filesystem entries.
type EntryRecord struct {
	// Path is the full logical path from the bucket root.
	Path string `json:"path"`

	// IsDirectory reports whether the entry is a directory.
	IsDirectory bool `json:"is_directory"`

	// Size is the file size in bytes. Omitted for directories and for
	// listings that skipped metadata enrichment.
	Size *int64 `json:"size,omitempty"`

	// ModTime is the last-modified time. Omitted like Size.
	ModTime *time.Time `json:"mod_time,omitempty"`
}

// ErrorRecord is the data payload for errors.
//
// Errors are emitted as records rather than failing the whole walk,
// allowing partial results when some objects fail to stat.
type ErrorRecord struct {
	// Code is a machine-readable error code.
	Code string `json:"code"`

	// Message is a human-readable error description.
	Message string `json:"message"`

	// Path is the path related to this error, if applicable.
	Path string `json:"path,omitempty"`

	// Details contains additional error context.
	Details any `json:"details,omitempty"`
}

// Error codes for ErrorRecord.
const (
	// ErrCodeAccessDenied indicates permission failure.
	ErrCodeAccessDenied = "ACCESS_DENIED"

	// ErrCodeNotFound indicates the path or bucket was not found.
	ErrCodeNotFound = "NOT_FOUND"

	// ErrCodeTimeout indicates an operation timed out.
	ErrCodeTimeout = "TIMEOUT"

	// ErrCodeThrottled indicates rate limiting.
	ErrCodeThrottled = "THROTTLED"

	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal = "INTERNAL"
)

// SummaryRecord is the data payload for final summaries.
//
// A summary record is emitted once at the end of a walk with aggregate
// statistics.
type SummaryRecord struct {
	// EntriesFound is the total number of entries seen.
	EntriesFound int64 `json:"entries_found"`

	// EntriesMatched is the number of entries passing patterns and filters.
	EntriesMatched int64 `json:"entries_matched"`

	// BytesTotal is the cumulative size of matched files in bytes, when
	// metadata enrichment ran.
	BytesTotal int64 `json:"bytes_total"`

	// Duration is the total walk duration.
	Duration time.Duration `json:"duration_ns"`

	// DurationHuman is a human-readable duration string.
	DurationHuman string `json:"duration"`

	// Errors is the count of errors encountered.
	Errors int64 `json:"errors"`

	// Root is the directory the walk started from.
	Root string `json:"root,omitempty"`
}

// Writer errors.
var (
	// ErrWriterClosed is returned when writing to a closed writer.
	ErrWriterClosed = errors.New("writer is closed")
)

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

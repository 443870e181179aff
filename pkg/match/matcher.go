// Package match provides glob matching and metadata filters for object
// store paths, with prefix derivation so listings can be scoped to the
// static part of a pattern.
package match

import (
	"errors"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Glob metacharacters that can be escaped with backslash in patterns.
const globEscapable = `*?[]{}\`

// Matcher evaluates glob patterns against paths relative to a listing
// root.
//
//   - Include patterns: path must match at least one
//   - Exclude patterns: path must not match any
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes      []string
	excludes      []string
	prefixes      []string
	includeHidden bool
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns that paths must match (at least one).
	// Required.
	Includes []string

	// Excludes are glob patterns that paths must not match (any).
	Excludes []string

	// IncludeHidden controls whether paths with a dot-prefixed segment
	// are matched. Default false.
	IncludeHidden bool
}

var (
	// ErrNoIncludes is returned when no include patterns are provided.
	ErrNoIncludes = errors.New("at least one include pattern is required")

	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a Matcher from the given configuration.
//
// Patterns are normalized to handle Windows-style backslash separators
// while preserving escape sequences for literal glob metacharacters.
func New(cfg Config) (*Matcher, error) {
	if len(cfg.Includes) == 0 {
		return nil, ErrNoIncludes
	}

	includes, err := normalizeAll(cfg.Includes)
	if err != nil {
		return nil, err
	}
	excludes, err := normalizeAll(cfg.Excludes)
	if err != nil {
		return nil, err
	}

	return &Matcher{
		includes:      includes,
		excludes:      excludes,
		prefixes:      DerivePrefixes(includes),
		includeHidden: cfg.IncludeHidden,
	}, nil
}

func normalizeAll(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		normalized := NormalizePattern(r)
		if !doublestar.ValidatePattern(normalized) {
			return nil, &PatternError{Pattern: r, Err: ErrInvalidPattern}
		}
		out = append(out, normalized)
	}
	return out, nil
}

// Match returns true if the path matches the include/exclude patterns.
//
// Paths are matched as-is. Object store keys are opaque strings where
// any character is valid, so no normalization is applied here.
func (m *Matcher) Match(path string) bool {
	if !m.includeHidden && IsHidden(path) {
		return false
	}

	matched := false
	for _, inc := range m.includes {
		if matchPattern(inc, path) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	for _, exc := range m.excludes {
		if matchPattern(exc, path) {
			return false
		}
	}
	return true
}

// Prefixes returns the deduplicated static prefixes derived from the
// include patterns. Walks can be scoped to these instead of the full
// tree. An empty string in the result means at least one pattern needs
// an unscoped walk.
func (m *Matcher) Prefixes() []string {
	return m.prefixes
}

// HasEmptyPrefix returns true if any prefix is empty, meaning a full
// walk is required.
func (m *Matcher) HasEmptyPrefix() bool {
	for _, p := range m.prefixes {
		if p == "" {
			return true
		}
	}
	return false
}

func matchPattern(pattern, path string) bool {
	matched, err := doublestar.Match(pattern, path)
	if err != nil {
		// Patterns were validated at construction time.
		return false
	}
	return matched
}

// NormalizePattern converts a user-provided glob pattern to canonical
// form: unescaped backslashes become forward slashes (Windows compat),
// while escape sequences for glob metacharacters (\*, \?, \[) are
// preserved.
func NormalizePattern(pattern string) string {
	if pattern == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(pattern))

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\\' {
			if i+1 < len(runes) && strings.ContainsRune(globEscapable, runes[i+1]) {
				result.WriteRune('\\')
				result.WriteRune(runes[i+1])
				i++
				continue
			}
			result.WriteRune('/')
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// IsHidden returns true if any path segment starts with a dot.
func IsHidden(path string) bool {
	if path == "" {
		return false
	}
	for _, seg := range strings.Split(path, "/") {
		if seg != "" && strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

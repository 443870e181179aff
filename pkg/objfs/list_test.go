package objfs

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/objfs/pkg/backend/memory"
)

func sortEntries(entries []ChildEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
}

func TestListChildrenMergesMarkersAndCommonPrefixes(t *testing.T) {
	ctx := context.Background()
	fs, driver := newTestFS(t, Config{}, memory.Config{FolderSuffix: "_$folder$"})

	// d1 was created through this system (marker object); d2 only exists
	// as a common prefix of another tool's key.
	putFile(t, driver, "a_$folder$", "")
	putFile(t, driver, "a/f1", "1")
	putFile(t, driver, "a/d1_$folder$", "")
	putFile(t, driver, "a/d2/nested.bin", "2")

	entries, err := fs.ListChildren(ctx, "a", false)
	require.NoError(t, err)
	sortEntries(entries)

	assert.Equal(t, []ChildEntry{
		{Name: "d1", IsDirectory: true},
		{Name: "d2", IsDirectory: true},
		{Name: "f1", IsDirectory: false},
	}, entries)

	// The common-prefix discovery self-healed d2's marker.
	_, ok := driver.Contents("a/d2_$folder$")
	assert.True(t, ok)
}

func TestListChildrenDirectoryWins(t *testing.T) {
	ctx := context.Background()
	fs, driver := newTestFS(t, Config{}, memory.Config{FolderSuffix: "_$folder$"})

	// Both a data object and a marker under the same logical name: the
	// directory interpretation takes precedence.
	putFile(t, driver, "a_$folder$", "")
	putFile(t, driver, "a/n", "data")
	putFile(t, driver, "a/n_$folder$", "")

	entries, err := fs.ListChildren(ctx, "a", false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ChildEntry{Name: "n", IsDirectory: true}, entries[0])
}

func TestListChildrenDiscardsEmptyDerivations(t *testing.T) {
	ctx := context.Background()
	fs, driver := newTestFS(t, Config{}, memory.Config{})

	// The directory's own marker ("a/") derives to an empty child name
	// and must not appear in the result.
	require.NoError(t, fs.MakeDirectories(ctx, "a", true))
	putFile(t, driver, "a/f1", "1")

	entries, err := fs.ListChildren(ctx, "a", false)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "f1", entries[0].Name)
}

func TestListChildrenRecursive(t *testing.T) {
	ctx := context.Background()
	fs, driver := newTestFS(t, Config{}, memory.Config{})

	require.NoError(t, fs.MakeDirectories(ctx, "a/d1", true))
	putFile(t, driver, "a/f1", "1")
	putFile(t, driver, "a/d1/f2", "2")

	entries, err := fs.ListChildren(ctx, "a", true)
	require.NoError(t, err)
	sortEntries(entries)

	assert.Equal(t, []ChildEntry{
		{Name: "d1", IsDirectory: true},
		{Name: "d1/f2", IsDirectory: false},
		{Name: "f1", IsDirectory: false},
	}, entries)
}

func TestListChildrenRoot(t *testing.T) {
	ctx := context.Background()
	fs, driver := newTestFS(t, Config{}, memory.Config{})

	putFile(t, driver, "f1", "1")
	require.NoError(t, fs.MakeDirectories(ctx, "d1", true))

	entries, err := fs.ListChildren(ctx, "", false)
	require.NoError(t, err)
	sortEntries(entries)

	assert.Equal(t, []ChildEntry{
		{Name: "d1", IsDirectory: true},
		{Name: "f1", IsDirectory: false},
	}, entries)
}

func TestListChildrenNotADirectory(t *testing.T) {
	ctx := context.Background()
	fs, driver := newTestFS(t, Config{}, memory.Config{})

	putFile(t, driver, "plain-file", "1")

	_, err := fs.ListChildren(ctx, "plain-file", false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	_, err = fs.ListChildren(ctx, "never-existed", false)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestListChildrenPaginates(t *testing.T) {
	ctx := context.Background()
	// Page size of 7 forces multiple chunks for 25 entries.
	fs, driver := newTestFS(t, Config{PageSize: 7}, memory.Config{PageSize: 7})

	require.NoError(t, fs.MakeDirectories(ctx, "big", true))
	want := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		name := string(rune('a'+i/5)) + string(rune('0'+i%5))
		putFile(t, driver, "big/"+name, "x")
		want = append(want, name)
	}

	entries, err := fs.ListChildren(ctx, "big", false)
	require.NoError(t, err)
	require.Len(t, entries, 25)

	got := make([]string, 0, len(entries))
	for _, e := range entries {
		got = append(got, e.Name)
	}
	sort.Strings(got)
	sort.Strings(want)
	assert.Equal(t, want, got)
}

package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/objfs/pkg/backend/memory"
)

// resetCmdState isolates the package-level flag and driver state that
// command RunE functions read.
func resetCmdState(t *testing.T) {
	t.Helper()

	origReadOnly := readOnly
	origDrivers := memoryDrivers
	t.Cleanup(func() {
		readOnly = origReadOnly
		memoryDrivers = origDrivers
		lsRecursive, lsLong, lsJSON = false, false, false
		mkdirParents = false
		rmRecursive = false
		statJSON = false
	})

	readOnly = false
	memoryDrivers = map[string]*memory.Driver{}
	lsRecursive, lsLong, lsJSON = false, false, false
	mkdirParents = false
	rmRecursive = false
	statJSON = false
}

// captureStdout runs fn with os.Stdout redirected to a buffer.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	runErr := fn()
	require.NoError(t, w.Close())

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r)
	require.NoError(t, err)
	return buf.String(), runErr
}

func newTestCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	return cmd
}

func TestCommandFlagShorthands(t *testing.T) {
	tests := []struct {
		cmd       *cobra.Command
		shorthand string
		want      string
	}{
		{mkdirCmd, "p", "parents"},
		{rmCmd, "r", "recursive"},
		{lsCmd, "R", "recursive"},
		{lsCmd, "l", "long"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd.Name()+" -"+tt.shorthand, func(t *testing.T) {
			f := tt.cmd.Flags().ShorthandLookup(tt.shorthand)
			require.NotNil(t, f)
			assert.Equal(t, tt.want, f.Name)
		})
	}

	// The shared backend flags stay long-form only so they cannot shadow
	// the conventional mkdir -p and rm -r shorthands.
	for _, cmd := range []*cobra.Command{mkdirCmd, rmCmd, lsCmd, findCmd} {
		for _, name := range []string{"region", "profile"} {
			f := cmd.Flags().Lookup(name)
			require.NotNil(t, f, "%s --%s", cmd.Name(), name)
			assert.Empty(t, f.Shorthand, "%s --%s", cmd.Name(), name)
		}
	}
}

func TestMkdirTouchLsRoundtrip(t *testing.T) {
	resetCmdState(t)

	mkdirParents = true
	require.NoError(t, runMkdir(newTestCmd(), []string{"memory://bkt/a/b/"}))

	require.NoError(t, runTouch(newTestCmd(), []string{"memory://bkt/a/b/report.csv"}))

	out, err := captureStdout(t, func() error {
		return runLs(newTestCmd(), []string{"memory://bkt/a/b/"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "report.csv")

	lsRecursive = true
	out, err = captureStdout(t, func() error {
		return runLs(newTestCmd(), []string{"memory://bkt/a/"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "b/")
	assert.Contains(t, out, "b/report.csv")
}

func TestRmDirectoryRequiresRecursive(t *testing.T) {
	resetCmdState(t)

	mkdirParents = true
	require.NoError(t, runMkdir(newTestCmd(), []string{"memory://bkt/data/"}))
	require.NoError(t, runTouch(newTestCmd(), []string{"memory://bkt/data/f.txt"}))

	err := runRm(newTestCmd(), []string{"memory://bkt/data/"})
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, exitCodeFor(err))
	assert.Contains(t, err.Error(), "not empty")

	rmRecursive = true
	require.NoError(t, runRm(newTestCmd(), []string{"memory://bkt/data/"}))
}

func TestMvFile(t *testing.T) {
	resetCmdState(t)

	mkdirParents = true
	require.NoError(t, runMkdir(newTestCmd(), []string{"memory://bkt/src/"}))
	require.NoError(t, runTouch(newTestCmd(), []string{"memory://bkt/src/a.txt"}))

	require.NoError(t, runMv(newTestCmd(), []string{"memory://bkt/src/a.txt", "memory://bkt/src/b.txt"}))

	out, err := captureStdout(t, func() error {
		return runLs(newTestCmd(), []string{"memory://bkt/src/"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "b.txt")
	assert.NotContains(t, out, "a.txt")
}

func TestMvRejectsCrossBucket(t *testing.T) {
	resetCmdState(t)

	err := runMv(newTestCmd(), []string{"memory://one/x", "memory://two/x"})
	require.Error(t, err)
	assert.Equal(t, foundry.ExitInvalidArgument, exitCodeFor(err))
}

func TestMutatingCommandsHonorReadOnly(t *testing.T) {
	resetCmdState(t)
	readOnly = true

	for name, run := range map[string]func() error{
		"mkdir": func() error { return runMkdir(newTestCmd(), []string{"memory://bkt/d/"}) },
		"touch": func() error { return runTouch(newTestCmd(), []string{"memory://bkt/f"}) },
		"rm":    func() error { return runRm(newTestCmd(), []string{"memory://bkt/f"}) },
		"mv":    func() error { return runMv(newTestCmd(), []string{"memory://bkt/a", "memory://bkt/b"}) },
	} {
		t.Run(name, func(t *testing.T) {
			err := run()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "readonly mode")
		})
	}
}

func TestStatFile(t *testing.T) {
	resetCmdState(t)

	mkdirParents = true
	require.NoError(t, runMkdir(newTestCmd(), []string{"memory://bkt/d/"}))
	require.NoError(t, runTouch(newTestCmd(), []string{"memory://bkt/d/f.bin"}))

	out, err := captureStdout(t, func() error {
		return runStat(newTestCmd(), []string{"memory://bkt/d/f.bin"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "file")

	out, err = captureStdout(t, func() error {
		return runStat(newTestCmd(), []string{"memory://bkt/d/"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "directory")

	err = runStat(newTestCmd(), []string{"memory://bkt/d/missing"})
	require.Error(t, err)
	assert.Equal(t, foundry.ExitFileNotFound, exitCodeFor(err))
}

func TestFindPatterns(t *testing.T) {
	resetCmdState(t)

	mkdirParents = true
	require.NoError(t, runMkdir(newTestCmd(), []string{"memory://bkt/logs/2026/"}))
	require.NoError(t, runTouch(newTestCmd(), []string{"memory://bkt/logs/2026/app.gz"}))
	require.NoError(t, runTouch(newTestCmd(), []string{"memory://bkt/logs/2026/app.txt"}))

	origIncludes := findIncludes
	t.Cleanup(func() { findIncludes, findExcludes, findJSON, findLong = origIncludes, nil, false, false })
	findIncludes, findExcludes, findJSON, findLong = nil, nil, false, false

	out, err := captureStdout(t, func() error {
		return runFind(newTestCmd(), []string{"memory://bkt/logs/**/*.gz"})
	})
	require.NoError(t, err)
	assert.Contains(t, out, "logs/2026/app.gz")
	assert.NotContains(t, out, "app.txt")
}

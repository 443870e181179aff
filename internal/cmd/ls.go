package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/match"
	"github.com/3leaps/objfs/pkg/objfs"
)

var lsCmd = &cobra.Command{
	Use:   "ls <uri>",
	Short: "List directory contents",
	Long: `List the entries of a directory.

Directories materialized as marker objects and directories inferred from
shared key prefixes are both reported; a name that is both a file and a
directory is reported as a directory.

Examples:
  objfs ls s3://bucket/
  objfs ls s3://bucket/data/ --recursive
  objfs ls s3://bucket/data/ --long
  objfs ls s3://bucket/data/ --json`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

var (
	lsRecursive bool
	lsLong      bool
	lsJSON      bool
)

func init() {
	rootCmd.AddCommand(lsCmd)
	addBackendFlags(lsCmd)

	lsCmd.Flags().BoolVarP(&lsRecursive, "recursive", "R", false, "List all descendants, not just immediate children")
	lsCmd.Flags().BoolVarP(&lsLong, "long", "l", false, "Long format: type, size, modification time")
	lsCmd.Flags().BoolVar(&lsJSON, "json", false, "Emit entries as JSON")
}

// lsEntry is one row of ls output.
type lsEntry struct {
	Name        string     `json:"name"`
	IsDirectory bool       `json:"is_directory"`
	Size        *int64     `json:"size,omitempty"`
	ModTime     *time.Time `json:"mod_time,omitempty"`
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.IsPattern() {
		return exitError(foundry.ExitInvalidArgument, "ls does not accept glob patterns", fmt.Errorf("use 'objfs find' for pattern matching"))
	}

	fs, err := openFileSystem(ctx, parsed)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	children, err := fs.ListChildren(ctx, parsed.Key, lsRecursive)
	if err != nil {
		if objfs.IsNotFound(err) {
			return exitError(foundry.ExitFileNotFound, "No such directory", err)
		}
		observability.CLILogger.Error("Listing failed", zap.String("path", parsed.Key), zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Listing failed", err)
	}

	sort.Slice(children, func(i, j int) bool { return children[i].Name < children[j].Name })

	entries := make([]lsEntry, 0, len(children))
	for _, c := range children {
		e := lsEntry{Name: c.Name, IsDirectory: c.IsDirectory}
		if lsLong && !c.IsDirectory {
			if err := enrichEntry(ctx, fs, parsed.Key, &e); err != nil {
				observability.CLILogger.Warn("Failed to stat entry",
					zap.String("name", c.Name), zap.Error(err))
			}
		}
		entries = append(entries, e)
	}

	if lsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if lsLong {
		return printLong(entries)
	}

	for _, e := range entries {
		name := e.Name
		if e.IsDirectory {
			name += "/"
		}
		fmt.Println(name)
	}
	return nil
}

func enrichEntry(ctx context.Context, fs *objfs.FileSystem, dir string, e *lsEntry) error {
	full := joinPath(dir, e.Name)
	size, err := fs.FileSize(ctx, full)
	if err != nil {
		return err
	}
	mtime, err := fs.ModificationTime(ctx, full)
	if err != nil {
		return err
	}
	e.Size = &size
	e.ModTime = &mtime
	return nil
}

func printLong(entries []lsEntry) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "TYPE\tSIZE\tMODIFIED\tNAME"); err != nil {
		return err
	}
	for _, e := range entries {
		kind, size, mtime, name := "file", "-", "-", e.Name
		if e.IsDirectory {
			kind = "dir"
			name += "/"
		}
		if e.Size != nil {
			size = match.FormatSize(*e.Size)
		}
		if e.ModTime != nil {
			mtime = e.ModTime.UTC().Format(time.RFC3339)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", kind, size, mtime, name); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// joinPath joins a directory prefix and a child name with a single slash.
func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	if dir[len(dir)-1] == '/' {
		return dir + name
	}
	return dir + "/" + name
}

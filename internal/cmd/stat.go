package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/match"
	"github.com/3leaps/objfs/pkg/objfs"
)

var statCmd = &cobra.Command{
	Use:   "stat <uri>",
	Short: "Show file or directory status",
	Long: `Report whether a path is a file or a directory, and for files the
size, modification time and block size.

Examples:
  objfs stat s3://bucket/data/report.csv
  objfs stat s3://bucket/data/ --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStat,
}

var statJSON bool

func init() {
	rootCmd.AddCommand(statCmd)
	addBackendFlags(statCmd)

	statCmd.Flags().BoolVar(&statJSON, "json", false, "Emit status as JSON")
}

type statResult struct {
	Path      string     `json:"path"`
	Type      string     `json:"type"`
	Size      *int64     `json:"size,omitempty"`
	ModTime   *time.Time `json:"mod_time,omitempty"`
	BlockSize int64      `json:"block_size"`
}

func runStat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}

	fs, err := openFileSystem(ctx, parsed)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	res := statResult{Path: parsed.Key, BlockSize: fs.BlockSize(parsed.Key)}

	switch {
	case fs.IsDirectory(ctx, parsed.Key):
		res.Type = "directory"
	case fs.IsFile(ctx, parsed.Key):
		res.Type = "file"
		size, err := fs.FileSize(ctx, parsed.Key)
		if err != nil {
			return exitError(foundry.ExitExternalServiceUnavailable, "Failed to stat file", err)
		}
		mtime, err := fs.ModificationTime(ctx, parsed.Key)
		if err != nil {
			return exitError(foundry.ExitExternalServiceUnavailable, "Failed to stat file", err)
		}
		res.Size = &size
		res.ModTime = &mtime
	default:
		return exitError(foundry.ExitFileNotFound, "No such file or directory", objfs.ErrNotFound)
	}

	if statJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("Path:       %s\n", parsed.String())
	fmt.Printf("Type:       %s\n", res.Type)
	if res.Size != nil {
		fmt.Printf("Size:       %s (%d bytes)\n", match.FormatSize(*res.Size), *res.Size)
	}
	if res.ModTime != nil {
		fmt.Printf("Modified:   %s\n", res.ModTime.UTC().Format(time.RFC3339))
	}
	fmt.Printf("Block size: %s\n", match.FormatSize(res.BlockSize))
	return nil
}

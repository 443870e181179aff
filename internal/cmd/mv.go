package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/objfs"
)

var mvCmd = &cobra.Command{
	Use:   "mv <src-uri> <dst-uri>",
	Short: "Rename a file or directory",
	Long: `Rename a file or directory within one bucket.

Object stores have no native rename: each object is copied to its new
key and the original deleted. Directory renames walk the whole subtree
and abort on the first failing copy, leaving already-moved objects at
the destination; rerun to resume.

Examples:
  objfs mv s3://bucket/data/a.csv s3://bucket/data/b.csv
  objfs mv s3://bucket/staging/ s3://bucket/archive/2026/`,
	Args: cobra.ExactArgs(2),
	RunE: runMv,
}

func init() {
	rootCmd.AddCommand(mvCmd)
	addBackendFlags(mvCmd)
}

func runMv(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := guardReadOnly("mv"); err != nil {
		return err
	}

	src, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid source URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid source URI", err)
	}
	dst, err := ParseURI(args[1])
	if err != nil {
		observability.CLILogger.Error("Invalid destination URI", zap.String("uri", args[1]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid destination URI", err)
	}
	if src.Provider != dst.Provider || src.Bucket != dst.Bucket {
		return exitError(foundry.ExitInvalidArgument, "mv requires source and destination in the same bucket",
			fmt.Errorf("%s vs %s", src.Provider+"://"+src.Bucket, dst.Provider+"://"+dst.Bucket))
	}
	if src.Key == "" || dst.Key == "" {
		return exitError(foundry.ExitInvalidArgument, "mv refuses the bucket root", fmt.Errorf("specify file or directory paths"))
	}

	fs, err := openFileSystem(ctx, src)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	rename := fs.RenameFile
	if fs.IsDirectory(ctx, src.Key) {
		rename = fs.RenameDirectory
	}

	if err := rename(ctx, src.Key, dst.Key); err != nil {
		switch {
		case objfs.IsNotFound(err):
			return exitError(foundry.ExitFileNotFound, "No such file or directory", err)
		case objfs.IsAlreadyExists(err):
			return exitError(foundry.ExitInvalidArgument, "Destination already exists", err)
		default:
			observability.CLILogger.Error("Rename failed",
				zap.String("src", src.Key), zap.String("dst", dst.Key), zap.Error(err))
			return exitError(foundry.ExitFileWriteError, "Failed to rename", err)
		}
	}

	observability.CLILogger.Info("Renamed",
		zap.String("job_id", jobID),
		zap.String("src", src.String()),
		zap.String("dst", dst.String()))
	return nil
}

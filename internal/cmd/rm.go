package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/objfs"
)

var rmCmd = &cobra.Command{
	Use:   "rm <uri>",
	Short: "Delete a file or directory",
	Long: `Delete a file, or a directory with --recursive.

A non-recursive delete of a directory succeeds only when it is empty.
Recursive deletes proceed deepest-first and abort on the first failing
object, leaving the remainder of the tree intact; rerun to resume.

Examples:
  objfs rm s3://bucket/data/old.csv
  objfs rm --recursive s3://bucket/data/2023/`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

var rmRecursive bool

func init() {
	rootCmd.AddCommand(rmCmd)
	addBackendFlags(rmCmd)

	rmCmd.Flags().BoolVarP(&rmRecursive, "recursive", "r", false, "Delete directory contents recursively")
}

func runRm(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := guardReadOnly("rm"); err != nil {
		return err
	}

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.Key == "" {
		return exitError(foundry.ExitInvalidArgument, "rm refuses the bucket root", fmt.Errorf("specify a file or directory path"))
	}

	fs, err := openFileSystem(ctx, parsed)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	if fs.IsDirectory(ctx, parsed.Key) {
		if err := fs.DeleteDirectory(ctx, parsed.Key, rmRecursive); err != nil {
			if objfs.IsDirectoryNotEmpty(err) {
				return exitError(foundry.ExitInvalidArgument, "Directory not empty (use --recursive)", err)
			}
			observability.CLILogger.Error("Delete failed", zap.String("path", parsed.Key), zap.Error(err))
			return exitError(foundry.ExitFileWriteError, "Failed to delete directory", err)
		}
	} else {
		if err := fs.DeleteFile(ctx, parsed.Key); err != nil {
			if objfs.IsNotFound(err) {
				return exitError(foundry.ExitFileNotFound, "No such file", err)
			}
			observability.CLILogger.Error("Delete failed", zap.String("path", parsed.Key), zap.Error(err))
			return exitError(foundry.ExitFileWriteError, "Failed to delete file", err)
		}
	}

	observability.CLILogger.Info("Deleted",
		zap.String("job_id", jobID),
		zap.String("path", parsed.String()),
		zap.Bool("recursive", rmRecursive))
	return nil
}

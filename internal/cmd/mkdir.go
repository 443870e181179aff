package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/objfs"
)

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <uri>",
	Short: "Create a directory",
	Long: `Create a directory as a zero-byte marker object.

Without --parents the parent directory must already exist. With
--parents the whole missing chain is created, like mkdir -p.

Examples:
  objfs mkdir s3://bucket/data/2026/
  objfs mkdir --parents s3://bucket/a/b/c/`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

var mkdirParents bool

func init() {
	rootCmd.AddCommand(mkdirCmd)
	addBackendFlags(mkdirCmd)

	mkdirCmd.Flags().BoolVarP(&mkdirParents, "parents", "p", false, "Create missing parent directories")
}

func runMkdir(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := guardReadOnly("mkdir"); err != nil {
		return err
	}

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.Key == "" {
		return exitError(foundry.ExitInvalidArgument, "mkdir requires a directory path", fmt.Errorf("the bucket root always exists"))
	}

	fs, err := openFileSystem(ctx, parsed)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	if err := fs.MakeDirectories(ctx, parsed.Key, mkdirParents); err != nil {
		switch {
		case objfs.IsAlreadyExists(err):
			return exitError(foundry.ExitInvalidArgument, "Path already exists as a file", err)
		case objfs.IsMissingParent(err):
			return exitError(foundry.ExitInvalidArgument, "Parent directory does not exist (use --parents)", err)
		default:
			observability.CLILogger.Error("mkdir failed", zap.String("path", parsed.Key), zap.Error(err))
			return exitError(foundry.ExitFileWriteError, "Failed to create directory", err)
		}
	}

	observability.CLILogger.Info("Directory created",
		zap.String("job_id", jobID),
		zap.String("path", parsed.String()))
	return nil
}

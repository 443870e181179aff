package cmd

import (
	"fmt"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
)

var touchCmd = &cobra.Command{
	Use:   "touch <uri>",
	Short: "Create an empty file",
	Long: `Create a zero-byte file, creating missing parent directories first.

Examples:
  objfs touch s3://bucket/data/_SUCCESS
  objfs touch memory://bucket/dir/placeholder`,
	Args: cobra.ExactArgs(1),
	RunE: runTouch,
}

func init() {
	rootCmd.AddCommand(touchCmd)
	addBackendFlags(touchCmd)
}

func runTouch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if err := guardReadOnly("touch"); err != nil {
		return err
	}

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid URI", err)
	}
	if parsed.Key == "" || parsed.IsPrefix() {
		return exitError(foundry.ExitInvalidArgument, "touch requires a file path", fmt.Errorf("use 'objfs mkdir' for directories"))
	}

	fs, err := openFileSystem(ctx, parsed)
	if err != nil {
		observability.CLILogger.Error("Failed to open backend", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
	}
	defer func() { _ = fs.Close() }()

	w, err := fs.Create(ctx, parsed.Key)
	if err != nil {
		observability.CLILogger.Error("Create failed", zap.String("path", parsed.Key), zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to create file", err)
	}
	if err := w.Close(); err != nil {
		observability.CLILogger.Error("Upload failed", zap.String("path", parsed.Key), zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to finalize file", err)
	}

	observability.CLILogger.Info("File created",
		zap.String("job_id", jobID),
		zap.String("path", parsed.String()))
	return nil
}

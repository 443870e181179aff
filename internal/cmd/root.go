// Package cmd implements the objfs command line interface.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/config"
	"github.com/3leaps/objfs/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "objfs",
	Short: "Filesystem semantics over flat object storage",
	Long: `objfs emulates a hierarchical filesystem (directories, recursive
listing, rename, delete) on top of a flat object store that only
understands put/get/stat/delete/list-by-prefix.

Directories are encoded as zero-byte marker objects. Implicit
directories discovered through shared key prefixes are materialized on
first sight.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionInfo holds build-time version details, set by main.
var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version: "dev",
	Commit:  "HEAD",
}

// SetVersionInfo records build metadata for version output.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
	rootCmd.Version = version
}

var (
	logLevel string
	debug    bool
	readOnly bool

	appConfig *config.Config

	// jobID tags every log line of one invocation.
	jobID string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&readOnly, "readonly", false, "refuse all mutating operations")

	cobra.OnInitialize(initApp)
}

func initApp() {
	cfg, err := config.Load(rootCmd.Context())
	if err != nil {
		fmt.Fprintf(os.Stderr, "objfs: config: %v\n", err)
		os.Exit(foundry.ExitInvalidArgument)
	}
	appConfig = cfg

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	observability.InitCLILogger(level, debug)

	jobID = uuid.NewString()

	if !readOnly && strings.EqualFold(os.Getenv("OBJFS_READONLY"), "true") {
		readOnly = true
	}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	defer observability.Sync()

	if err := rootCmd.Execute(); err != nil {
		observability.CLILogger.Error("Command failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		fmt.Fprintf(os.Stderr, "objfs: %v\n", err)
		return exitCodeFor(err)
	}
	return 0
}

// exitError creates an error that causes the CLI to exit with the
// given foundry code.
func exitError(code int, message string, err error) error {
	return &codedError{code: code, message: message, err: err}
}

type codedError struct {
	code    int
	message string
	err     error
}

func (e *codedError) Error() string {
	if e.err == nil {
		return e.message
	}
	return fmt.Sprintf("%s: %v", e.message, e.err)
}

func (e *codedError) Unwrap() error { return e.err }

func exitCodeFor(err error) int {
	var coded *codedError
	if errors.As(err, &coded) {
		return coded.code
	}
	return 1
}

// guardReadOnly rejects mutating commands when readonly mode is on.
func guardReadOnly(operation string) error {
	if readOnly {
		return exitError(foundry.ExitInvalidArgument,
			"readonly mode enabled: refusing "+operation,
			fmt.Errorf("disable --readonly or unset OBJFS_READONLY"))
	}
	return nil
}

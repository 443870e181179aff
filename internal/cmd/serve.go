package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/internal/server"
	"github.com/3leaps/objfs/internal/server/handlers"
	"github.com/3leaps/objfs/pkg/backend"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the operational HTTP endpoints",
	Long: `Run an HTTP server exposing health probes and version information.

Endpoints:
  /health          full health report with per-checker detail
  /health/live     liveness probe
  /health/ready    readiness probe (verifies backend reachability)
  /health/startup  startup probe
  /version         build metadata

When a backend bucket is configured, readiness performs a bounded
listing of the bucket root so orchestrators see credential and
connectivity failures.

Examples:
  objfs serve
  objfs serve --host 0.0.0.0 --port 9090
  OBJFS_BUCKET=my-bucket objfs serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Bind host (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Bind port (overrides config)")
}

// configHealthChecker reports whether configuration loaded.
type configHealthChecker struct{}

func (configHealthChecker) CheckHealth(ctx context.Context) error {
	_ = ctx
	if appConfig == nil {
		return errors.New("configuration not loaded")
	}
	return nil
}

// backendHealthChecker verifies the object store answers a minimal
// listing of the bucket root.
type backendHealthChecker struct {
	driver backend.Driver
}

func (c backendHealthChecker) CheckHealth(ctx context.Context) error {
	_, err := c.driver.GetObjectListing(ctx, backend.ListingOptions{PageSize: 1})
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_ = args

	host := appConfig.Server.Host
	if serveHost != "" {
		host = serveHost
	}
	port := appConfig.Server.Port
	if servePort != 0 {
		port = servePort
	}

	handlers.InitHealthManager(versionInfo.Version)
	manager := handlers.GetHealthManager()
	manager.RegisterChecker("config", configHealthChecker{})

	if appConfig.Backend.Bucket != "" {
		uri := &ObjectURI{Provider: appConfig.Backend.Driver, Bucket: appConfig.Backend.Bucket}
		driver, err := newDriver(ctx, uri)
		if err != nil {
			observability.CLILogger.Error("Failed to open backend", zap.Error(err))
			return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage backend", err)
		}
		defer func() { _ = driver.Close() }()
		manager.RegisterChecker("backend", backendHealthChecker{driver: driver})
	} else {
		observability.CLILogger.Warn("No backend bucket configured; readiness skips the backend probe")
	}

	srv := server.New(host, port, server.WithVersion(server.VersionInfo{
		Version:   versionInfo.Version,
		Commit:    versionInfo.Commit,
		BuildDate: versionInfo.BuildDate,
	}))

	errCh := make(chan error, 1)
	go func() {
		observability.CLILogger.Info("Server starting",
			zap.String("job_id", jobID),
			zap.String("addr", srv.Addr()),
			zap.String("version", versionInfo.Version))
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		if err != nil {
			observability.CLILogger.Error("Server failed", zap.Error(err))
			return exitError(foundry.ExitExternalServiceUnavailable, "Server failed", err)
		}
		return nil

	case sig := <-sigCh:
		observability.CLILogger.Info("Shutting down", zap.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- srv.Shutdown(shutdownCtx) }()

		select {
		case err := <-done:
			if err != nil {
				return exitError(foundry.ExitExternalServiceUnavailable, "Graceful shutdown failed", err)
			}
			observability.CLILogger.Info("Server stopped")
			return nil
		case <-sigCh:
			// Second signal forces immediate exit.
			return exitError(foundry.ExitSignalInt, "Forced shutdown", errors.New("received second signal during shutdown"))
		}
	}
}

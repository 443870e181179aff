package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/objfs/internal/config"
	"github.com/3leaps/objfs/internal/observability"
	"github.com/3leaps/objfs/pkg/backend"
	"github.com/3leaps/objfs/pkg/backend/memory"
	"github.com/3leaps/objfs/pkg/backend/s3"
	"github.com/3leaps/objfs/pkg/objfs"
)

// Backend flags shared by the storage commands.
var (
	flagRegion       string
	flagProfile      string
	flagEndpoint     string
	flagFolderSuffix string
)

// addBackendFlags registers the shared backend flags on a command.
func addBackendFlags(cmd *cobra.Command) {
	// No shorthands here: -r and -p belong to rm --recursive and
	// mkdir --parents.
	cmd.Flags().StringVar(&flagRegion, "region", "", "AWS region")
	cmd.Flags().StringVar(&flagProfile, "profile", "", "AWS profile")
	cmd.Flags().StringVar(&flagEndpoint, "endpoint", "", "Custom S3 endpoint")
	cmd.Flags().StringVar(&flagFolderSuffix, "folder-suffix", "", `folder marker suffix (default "/")`)
}

// memoryDrivers caches in-memory buckets per process so consecutive
// operations in one invocation see each other's writes.
var memoryDrivers = map[string]*memory.Driver{}

func newDriver(ctx context.Context, uri *ObjectURI) (backend.Driver, error) {
	cfg := appConfig
	if cfg == nil {
		cfg = &config.Config{}
	}

	suffix := flagFolderSuffix
	if suffix == "" {
		suffix = cfg.Backend.FolderSuffix
	}

	switch uri.Provider {
	case "memory":
		if d, ok := memoryDrivers[uri.Bucket]; ok {
			return d, nil
		}
		d, err := memory.New(memory.Config{
			Bucket:       uri.Bucket,
			FolderSuffix: suffix,
			PageSize:     cfg.Backend.PageSize,
		})
		if err != nil {
			return nil, err
		}
		memoryDrivers[uri.Bucket] = d
		return d, nil

	case "s3":
		region := flagRegion
		if region == "" {
			region = cfg.Backend.Region
		}
		profile := flagProfile
		if profile == "" {
			profile = cfg.Backend.Profile
		}
		endpoint := flagEndpoint
		if endpoint == "" {
			endpoint = cfg.Backend.Endpoint
		}
		return s3.New(ctx, s3.Config{
			Bucket:          uri.Bucket,
			Region:          region,
			Endpoint:        endpoint,
			Profile:         profile,
			AccessKeyID:     cfg.Backend.AccessKeyID,
			SecretAccessKey: cfg.Backend.SecretAccessKey,
			// S3-compatible services behind custom endpoints need
			// path-style URLs.
			ForcePathStyle: cfg.Backend.ForcePathStyle || endpoint != "",
			FolderSuffix:   suffix,
			PageSize:       cfg.Backend.PageSize,
		})

	default:
		return nil, fmt.Errorf("unsupported provider %q", uri.Provider)
	}
}

// openFileSystem builds the emulation layer over the URI's backend.
func openFileSystem(ctx context.Context, uri *ObjectURI) (*objfs.FileSystem, error) {
	driver, err := newDriver(ctx, uri)
	if err != nil {
		return nil, err
	}

	fsCfg := objfs.Config{
		Logger: observability.CLILogger.With(zap.String("job_id", jobID)),
	}
	if appConfig != nil {
		fsCfg.PageSize = appConfig.Backend.PageSize
		fsCfg.BlockSize = appConfig.FS.BlockSize
		fsCfg.MutationRate = appConfig.FS.MutationRate
	}
	return objfs.New(driver, fsCfg), nil
}

// Package blob selects the archive storage driver from configuration.
package blob

import (
	"context"
	"fmt"

	"healthops/internal/config"
	coreblob "healthops/internal/core/blob"
	"healthops/internal/infrastructure/blob/afs"
	"healthops/internal/infrastructure/blob/s3"
)

// Open returns the store named by cfg.Driver.
func Open(ctx context.Context, cfg config.ArchiveConfig) (coreblob.Store, error) {
	switch coreblob.Driver(cfg.Driver) {
	case coreblob.DriverFilesystem, "":
		return afs.NewFS(cfg.Dir)
	case coreblob.DriverMemory:
		return afs.NewMemory(), nil
	case coreblob.DriverS3:
		return s3.New(ctx, s3.Config{
			Region:    cfg.Region,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
			Endpoint:  cfg.Endpoint,
			PathStyle: cfg.PathStyle,
		})
	default:
		return nil, fmt.Errorf("unsupported archive driver %q", cfg.Driver)
	}
}

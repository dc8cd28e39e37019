package cmd

import (
	"context"
	"fmt"

	"github.com/oneconcern/gitbin/pkg/config"
	"github.com/oneconcern/gitbin/pkg/remote"
	"github.com/oneconcern/gitbin/pkg/remote/gcs"
	"github.com/oneconcern/gitbin/pkg/remote/localfs"
	"github.com/oneconcern/gitbin/pkg/remote/sthree"
	"github.com/oneconcern/gitbin/pkg/status"
	"go.uber.org/zap"
)

// openRemote builds the remote selected by the configuration
func openRemote(ctx context.Context, cfg *config.Config, l *zap.Logger) (remote.Remote, error) {
	if err := cfg.ValidateRemote(); err != nil {
		return nil, err
	}

	switch cfg.Remote {
	case config.RemoteS3:
		settings := sthree.Settings{
			Region:    cfg.S3.Region,
			AccessKey: cfg.S3.Key,
			SecretKey: cfg.S3.SecretKey,
			Endpoint:  cfg.S3.Endpoint,
			Insecure:  cfg.Insecure(),
		}
		s3, err := sthree.New(
			sthree.Bucket(cfg.S3.Bucket),
			sthree.Prefix(cfg.RemotePrefix),
			sthree.AWSConfig(settings.Config()),
			sthree.Logger(l),
		)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case config.RemoteGCS:
		return gcs.New(ctx, cfg.GCS.Bucket,
			gcs.Prefix(cfg.RemotePrefix),
			gcs.CredentialsFile(cfg.GCS.Credentials),
			gcs.Logger(l),
		)
	case config.RemoteLocal:
		local, err := localfs.NewDir(cfg.LocalRemote, localfs.Logger(l))
		if err != nil {
			return nil, err
		}
		return local, nil
	default:
		return nil, status.ErrConfiguration.Wrap(fmt.Errorf("unsupported remote %q", cfg.Remote))
	}
}

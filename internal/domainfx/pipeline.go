package domainfx

import (
	"context"

	docker "github.com/docker/docker/client"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/ostanin/volback/internal/configfx"
	"github.com/ostanin/volback/pkg/bundle"
	"github.com/ostanin/volback/pkg/domain"
	"github.com/ostanin/volback/pkg/notify"
	"github.com/ostanin/volback/pkg/staging"
	"github.com/ostanin/volback/pkg/storage"
	"github.com/ostanin/volback/pkg/transfer"
)

func NewCron() *cron.Cron {
	return cron.New()
}

func StagingManager(config *configfx.Config) *staging.Manager {
	return staging.New(config.Backup.Root)
}

func BundleManager() *bundle.Manager {
	return bundle.New()
}

func VolumeArchiver(
	config *configfx.Config,
	logger *logrus.Logger,
	dockerClient *docker.Client,
) *domain.VolumeArchiver {
	return domain.NewVolumeArchiver(logger, dockerClient, config.Backup.Image)
}

func Uploader(
	config *configfx.Config,
	logger *logrus.Logger,
	minioClient *minio.Client,
) *transfer.S3 {
	return transfer.NewS3(logger, minioClient, config.S3.Bucket)
}

func Pipeline(
	config *configfx.Config,
	logger *logrus.Logger,
	stagingManager *staging.Manager,
	archiver *domain.VolumeArchiver,
	bundleManager *bundle.Manager,
	uploader *transfer.S3,
	notifier *notify.Telegram,
	runs *storage.RunRepository,
) *domain.Pipeline {
	return domain.NewPipeline(
		logger,
		stagingManager,
		archiver,
		bundleManager,
		uploader,
		notifier,
		runs,
		config.Backup.RetentionDays,
	)
}

// RunPipeline runs one backup pipeline and shuts the process down with the
// run's exit code. With a configured cron schedule it instead re-runs the
// same single-run entry point on that schedule and stays up.
func RunPipeline(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	config *configfx.Config,
	logger *logrus.Logger,
	pipeline *domain.Pipeline,
	c *cron.Cron,
) error {
	if spec := config.Backup.Schedule; spec != "" {
		err := c.AddFunc(spec, func() {
			pipeline.Run(context.Background())
		})
		if err != nil {
			return errors.Wrapf(err, "invalid cron spec %q", spec)
		}

		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				logger.WithField("spec", spec).Info("Starting scheduled backups")
				c.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				c.Stop()
				return nil
			},
		})

		return nil
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				code := pipeline.Run(context.Background())

				if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.WithError(err).Error("Unable to shutdown")
				}
			}()
			return nil
		},
	})

	return nil
}

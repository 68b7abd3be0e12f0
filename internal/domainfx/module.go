package domainfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewCron),
	fx.Provide(StagingManager),
	fx.Provide(BundleManager),
	fx.Provide(VolumeArchiver),
	fx.Provide(Uploader),
	fx.Provide(Pipeline),
	fx.Invoke(RunPipeline),
)

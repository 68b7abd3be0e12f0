package s3fx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(MinioClient),
)

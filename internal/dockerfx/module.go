package dockerfx

import (
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(DockerClient),
	fx.Invoke(CloseDockerClient),
)

package dockerfx

import (
	"context"
	"time"

	docker "github.com/docker/docker/client"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.uber.org/fx"

	"github.com/ostanin/volback/internal/configfx"
)

func DockerClient(config *configfx.Config, logger *logrus.Logger) (*docker.Client, error) {
	logger.WithField("host", config.Docker.Host).Debug("Connecting to docker via")

	client, err := docker.NewClient(config.Docker.Host, config.Docker.Version, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create docker client")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = client.Ping(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to ping docker")
	}

	return client, nil
}

func CloseDockerClient(lc fx.Lifecycle, client *docker.Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}

package domain

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"path"
	"time"

	"github.com/docker/distribution/reference"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	volumetypes "github.com/docker/docker/api/types/volume"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ostanin/volback/pkg/appcontext"
)

const (
	// mount targets inside the archiver container
	volumeMountTarget  = "/__volume__"
	stagingMountTarget = "/__backup__"
)

type dockerClient interface {
	VolumeList(
		ctx context.Context,
		filter filters.Args,
	) (volumetypes.VolumesListOKBody, error)

	ContainerCreate(
		ctx context.Context,
		config *container.Config,
		hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig,
		containerName string,
	) (container.ContainerCreateCreatedBody, error)

	ContainerStart(
		ctx context.Context,
		containerID string,
		options types.ContainerStartOptions,
	) error

	ContainerWait(
		ctx context.Context,
		containerID string,
	) (int64, error)

	ContainerRemove(
		ctx context.Context,
		containerID string,
		options types.ContainerRemoveOptions,
	) error

	ImagePull(
		ctx context.Context,
		ref string,
		options types.ImagePullOptions,
	) (io.ReadCloser, error)
}

// VolumeArchiver discovers volumes managed by the docker daemon and archives
// each of them into a staging directory using an ephemeral container running
// tar over a read-only mount of the volume.
type VolumeArchiver struct {
	logger logrus.FieldLogger

	docker dockerClient
	image  string
}

func NewVolumeArchiver(logger logrus.FieldLogger, docker dockerClient, image string) *VolumeArchiver {
	return &VolumeArchiver{
		logger: logger,
		docker: docker,
		image:  image,
	}
}

// ListVolumes returns the names of all volumes known to the daemon, in the
// order the daemon reports them.
func (a *VolumeArchiver) ListVolumes(ctx context.Context) ([]string, error) {
	body, err := a.docker.VolumeList(ctx, filters.NewArgs())
	if err != nil {
		return nil, errors.Wrap(err, "unable to list volumes")
	}

	names := make([]string, 0, len(body.Volumes))
	for _, v := range body.Volumes {
		if v == nil {
			continue
		}
		names = append(names, v.Name)
	}

	return names, nil
}

// ArchiveVolume writes a compressed tar of the volume's contents to
// <stagingDir>/<name>.tar.gz. A non-zero exit status of the archiver
// container is an error.
func (a *VolumeArchiver) ArchiveVolume(ctx context.Context, name, stagingDir string) error {
	ctx = appcontext.WithVolume(ctx, name)
	logger := appcontext.LoggerFromContext(a.logger, ctx)

	ref, err := reference.ParseNormalizedNamed(a.image)
	if err != nil {
		return errors.Wrapf(err, "invalid archiver image %q", a.image)
	}

	err = a.pullImage(ctx, ref)
	if err != nil {
		return errors.Wrap(err, "unable to pull archiver image")
	}

	c, err := a.docker.ContainerCreate(
		ctx,
		&container.Config{
			Image: ref.String(),
			Cmd: []string{
				"tar", "-czf", path.Join(stagingMountTarget, name+".tar.gz"),
				"-C", volumeMountTarget, ".",
			},
		},
		&container.HostConfig{
			Mounts: []mount.Mount{
				{Type: mount.TypeVolume, Source: name, Target: volumeMountTarget, ReadOnly: true},
				{Type: mount.TypeBind, Source: stagingDir, Target: stagingMountTarget},
			},
		},
		&network.NetworkingConfig{},
		a.containerName(name),
	)
	if err != nil {
		return errors.Wrap(err, "unable to create archiver container")
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		if err := a.docker.ContainerRemove(ctx, c.ID, types.ContainerRemoveOptions{Force: true}); err != nil {
			logger.WithError(err).Error("Unable to remove archiver container")
		}

		cancel()
	}()

	logger = appcontext.LoggerFromContext(a.logger, appcontext.WithContainerId(ctx, c.ID))
	logger.Debug("Starting archiver container")

	err = a.docker.ContainerStart(ctx, c.ID, types.ContainerStartOptions{})
	if err != nil {
		return errors.Wrap(err, "unable to start archiver container")
	}

	status, err := a.docker.ContainerWait(ctx, c.ID)
	if err != nil {
		return errors.Wrap(err, "unable to wait for archiver container")
	}

	if status != 0 {
		return errors.Errorf("archiver container exited with status %d", status)
	}

	return nil
}

func (a *VolumeArchiver) pullImage(ctx context.Context, ref reference.Named) error {
	img, err := a.docker.ImagePull(ctx, ref.String(), types.ImagePullOptions{})
	if err != nil {
		return err
	}
	defer img.Close()

	_, err = io.Copy(ioutil.Discard, img)
	if err != nil {
		return err
	}

	return nil
}

func (a *VolumeArchiver) containerName(volume string) string {
	return fmt.Sprintf("volback-%s-%d", volume, time.Now().Unix())
}

package domain

import (
	"context"
	"io"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	volumetypes "github.com/docker/docker/api/types/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// region dockerClientMock
type dockerClientMock struct {
	mock.Mock
}

func (m *dockerClientMock) VolumeList(
	ctx context.Context,
	filter filters.Args,
) (volumetypes.VolumesListOKBody, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(volumetypes.VolumesListOKBody), args.Error(1)
}

func (m *dockerClientMock) ContainerCreate(
	ctx context.Context,
	config *container.Config,
	hostConfig *container.HostConfig,
	networkingConfig *network.NetworkingConfig,
	containerName string,
) (container.ContainerCreateCreatedBody, error) {
	args := m.Called(ctx, config, hostConfig, networkingConfig, containerName)
	return args.Get(0).(container.ContainerCreateCreatedBody), args.Error(1)
}

func (m *dockerClientMock) ContainerStart(
	ctx context.Context,
	containerID string,
	options types.ContainerStartOptions,
) error {
	args := m.Called(ctx, containerID, options)
	return args.Error(0)
}

func (m *dockerClientMock) ContainerWait(
	ctx context.Context,
	containerID string,
) (int64, error) {
	args := m.Called(ctx, containerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *dockerClientMock) ContainerRemove(
	ctx context.Context,
	containerID string,
	options types.ContainerRemoveOptions,
) error {
	args := m.Called(ctx, containerID, options)
	return args.Error(0)
}

func (m *dockerClientMock) ImagePull(
	ctx context.Context,
	ref string,
	options types.ImagePullOptions,
) (io.ReadCloser, error) {
	args := m.Called(ctx, ref, options)

	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}

	return nil, args.Error(1)
}

// endregion

func TestVolumeArchiver_ListVolumes(t *testing.T) {
	dockerClient := &dockerClientMock{}

	dockerClient.On("VolumeList", mock.Anything, mock.Anything).
		Return(volumetypes.VolumesListOKBody{
			Volumes: []*types.Volume{
				{Name: "pg-data"},
				nil,
				{Name: "redis-data"},
			},
		}, nil)

	a := NewVolumeArchiver(discardLogger(), dockerClient, "alpine:3.20")

	names, err := a.ListVolumes(context.Background())

	assert.Nil(t, err)
	assert.Equal(t, []string{"pg-data", "redis-data"}, names)
}

func TestVolumeArchiver_ListVolumes_Error(t *testing.T) {
	dockerClient := &dockerClientMock{}

	dockerClient.On("VolumeList", mock.Anything, mock.Anything).
		Return(volumetypes.VolumesListOKBody{}, context.DeadlineExceeded)

	a := NewVolumeArchiver(discardLogger(), dockerClient, "alpine:3.20")

	names, err := a.ListVolumes(context.Background())

	assert.NotNil(t, err)
	assert.Nil(t, names)
}

func TestVolumeArchiver_ArchiveVolume(t *testing.T) {
	dockerClient := &dockerClientMock{}

	ctx := context.Background()
	containerId := "some-id"

	dockerClient.On("ImagePull", ctx, mock.Anything, mock.Anything).
		Return(ioutil.NopCloser(strings.NewReader("some response")), nil)

	dockerClient.On("ContainerCreate", ctx,
		&container.Config{
			Image: "docker.io/library/alpine:3.20",
			Cmd: []string{
				"tar", "-czf", "/__backup__/pg-data.tar.gz",
				"-C", "/__volume__", ".",
			},
		},
		&container.HostConfig{
			Mounts: []mount.Mount{
				{Type: mount.TypeVolume, Source: "pg-data", Target: "/__volume__", ReadOnly: true},
				{Type: mount.TypeBind, Source: "/backups/2025-08-24", Target: "/__backup__"},
			},
		}, mock.Anything, mock.Anything,
	).Return(container.ContainerCreateCreatedBody{ID: containerId}, nil)

	dockerClient.On("ContainerStart", ctx, containerId, mock.Anything).
		Return(nil)

	dockerClient.On("ContainerWait", ctx, containerId).
		Return(int64(0), nil)

	dockerClient.On("ContainerRemove", mock.Anything, containerId, mock.Anything).
		Return(nil)

	a := NewVolumeArchiver(discardLogger(), dockerClient, "alpine:3.20")

	err := a.ArchiveVolume(ctx, "pg-data", "/backups/2025-08-24")

	assert.Nil(t, err)
	dockerClient.AssertCalled(t, "ContainerRemove", mock.Anything, containerId, mock.Anything)
}

func TestVolumeArchiver_ArchiveVolume_NonZeroStatus(t *testing.T) {
	dockerClient := &dockerClientMock{}

	ctx := context.Background()
	containerId := "some-id"

	dockerClient.On("ImagePull", ctx, mock.Anything, mock.Anything).
		Return(ioutil.NopCloser(strings.NewReader("some response")), nil)

	dockerClient.On("ContainerCreate", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(container.ContainerCreateCreatedBody{ID: containerId}, nil)

	dockerClient.On("ContainerStart", ctx, containerId, mock.Anything).
		Return(nil)

	dockerClient.On("ContainerWait", ctx, containerId).
		Return(int64(2), nil)

	dockerClient.On("ContainerRemove", mock.Anything, containerId, mock.Anything).
		Return(nil)

	a := NewVolumeArchiver(discardLogger(), dockerClient, "alpine:3.20")

	err := a.ArchiveVolume(ctx, "pg-data", "/backups/2025-08-24")

	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "status 2")

	// the finished container is removed even on failure
	dockerClient.AssertCalled(t, "ContainerRemove", mock.Anything, containerId, mock.Anything)
}

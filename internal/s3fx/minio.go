package s3fx

import (
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ostanin/volback/internal/configfx"
)

func MinioClient(config *configfx.Config, logger *logrus.Logger) (*minio.Client, error) {
	endpoint, secure := parseEndpoint(config.S3.Endpoint)

	logger.WithField("endpoint", endpoint).Debug("Connecting to object storage")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.S3.AccessKeyId, config.S3.SecretAccessKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Unable to create object storage client")
	}

	return client, nil
}

// parseEndpoint strips an optional scheme from the configured endpoint.
// minio wants a bare host; a plain-http endpoint must say so explicitly.
func parseEndpoint(endpoint string) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, true
	}
}

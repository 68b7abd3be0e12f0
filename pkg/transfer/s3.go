package transfer

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// S3 uploads bundle archives to an S3-compatible bucket and issues
// presigned download links over the uploaded objects.
type S3 struct {
	logger logrus.FieldLogger

	client *minio.Client
	bucket string
}

func NewS3(logger logrus.FieldLogger, client *minio.Client, bucket string) *S3 {
	return &S3{
		logger: logger,
		client: client,
		bucket: bucket,
	}
}

func (s *S3) Upload(ctx context.Context, localPath, key string) error {
	info, err := s.client.FPutObject(ctx, s.bucket, key, localPath, minio.PutObjectOptions{
		ContentType: "application/gzip",
	})
	if err != nil {
		return errors.Wrapf(err, "unable to upload %s", key)
	}

	s.logger.WithFields(logrus.Fields{"key": key, "size": info.Size}).Info("Bundle uploaded")

	return nil
}

func (s *S3) Presign(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", errors.Wrapf(err, "unable to presign %s", key)
	}

	return u.String(), nil
}

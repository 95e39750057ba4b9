package publish

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/roach88/ikvmbuild/internal/model"
)

// S3Uploader uploads artifacts to an S3-compatible bucket.
type S3Uploader struct {
	client     *minio.Client
	bucketName string
	region     string
	initOnce   sync.Once
	initErr    error
}

// NewS3Uploader creates an uploader from the publish configuration.
func NewS3Uploader(cfg model.PublishConfig) (*S3Uploader, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("publish endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("publish access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("publish bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Uploader{
		client:     client,
		bucketName: bucket,
		region:     region,
	}, nil
}

func (u *S3Uploader) ensureBucket(ctx context.Context) error {
	u.initOnce.Do(func() {
		exists, err := u.client.BucketExists(ctx, u.bucketName)
		if err != nil {
			u.initErr = err
			return
		}
		if exists {
			return
		}
		u.initErr = u.client.MakeBucket(ctx, u.bucketName, minio.MakeBucketOptions{Region: u.region})
	})
	return u.initErr
}

// Upload stores the local file under key.
func (u *S3Uploader) Upload(ctx context.Context, key, file string) error {
	if err := u.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	_, err := u.client.FPutObject(ctx, u.bucketName, key, file, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	return err
}

// ObjectKey joins the key prefix, build id and file name.
func ObjectKey(prefix, buildID, name string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		return path.Join(buildID, name)
	}
	return path.Join(prefix, buildID, name)
}

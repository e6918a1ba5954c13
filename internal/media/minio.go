package media

import (
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
	BaseURL   string
}

// MinioStore uploads to MinIO or any S3 compatible server.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	prefix  string
	baseURL string
}

func NewMinioClient(cfg MinioConfig) (*minio.Client, error) {
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
}

// NewMinioStore creates the bucket if it does not exist yet.
func NewMinioStore(ctx context.Context, client *minio.Client, cfg MinioConfig) (*MinioStore, error) {
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = joinURL(client.EndpointURL().String(), cfg.Bucket)
	}

	return &MinioStore{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		baseURL: baseURL,
	}, nil
}

func (s *MinioStore) Upload(ctx context.Context, key string, body io.ReadSeeker, size int64,
	opts Options) (Result, error) {
	objectKey := path.Join(s.prefix, key)

	info, err := s.client.PutObject(ctx, s.bucket, objectKey, body, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	if err != nil {
		return Result{}, err
	}

	return Result{Key: objectKey, URL: joinURL(s.baseURL, objectKey), Size: info.Size}, nil
}

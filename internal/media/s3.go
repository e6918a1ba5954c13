package media

import (
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type S3Config struct {
	Region   string
	Endpoint string
	Bucket   string
	Prefix   string
	// BaseURL overrides the object location reported by S3, e.g. a CDN in front of the bucket.
	BaseURL string
}

// S3Store uploads through the S3 transfer manager, which switches to multipart uploads for
// large bodies.
type S3Store struct {
	uploader *manager.Uploader
	bucket   string
	prefix   string
	baseURL  string
}

func NewS3Store(client manager.UploadAPIClient, cfg S3Config) *S3Store {
	return &S3Store{
		uploader: manager.NewUploader(client),
		bucket:   cfg.Bucket,
		prefix:   cfg.Prefix,
		baseURL:  cfg.BaseURL,
	}
}

// NewS3Client builds a client from the default credential chain.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *S3Store) Upload(ctx context.Context, key string, body io.ReadSeeker, size int64,
	opts Options) (Result, error) {
	objectKey := path.Join(s.prefix, key)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey),
		Body:   body,
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}

	out, err := s.uploader.Upload(ctx, input)
	if err != nil {
		return Result{}, err
	}

	url := out.Location
	if s.baseURL != "" {
		url = joinURL(s.baseURL, objectKey)
	}

	return Result{Key: objectKey, URL: url, Size: size}, nil
}

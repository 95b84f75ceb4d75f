package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/templui/coachflow/internal/config"
)

// Archive keeps immutable copies of released content.
type Archive interface {
	Save(ctx context.Context, path string, body io.Reader) error
}

// S3Archive writes to S3-compatible storage (AWS S3, MinIO, R2, ...).
type S3Archive struct {
	client *s3.Client
	bucket string
	prefix string
}

type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string // Optional: for S3-compatible services
	Prefix    string
}

// New returns nil when no bucket is configured; archiving is optional.
func New(ctx context.Context, c *cfg.Config) (Archive, error) {
	if c.S3Bucket == "" {
		slog.Info("card archive disabled (no S3_BUCKET)")
		return nil, nil
	}

	slog.Info("initializing S3 archive",
		"bucket", c.S3Bucket,
		"region", c.S3Region,
		"endpoint", c.S3Endpoint,
	)
	archive, err := NewS3Archive(ctx, S3Config{
		Region:    c.S3Region,
		Bucket:    c.S3Bucket,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Endpoint:  c.S3Endpoint,
		Prefix:    c.S3Prefix,
	})
	if err != nil {
		return nil, err
	}
	return archive, nil
}

func NewS3Archive(ctx context.Context, c S3Config) (*S3Archive, error) {
	var opts []func(*config.LoadOptions) error
	opts = append(opts, config.WithRegion(c.Region))

	if c.AccessKey != "" && c.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKey, c.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if c.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true // Required for MinIO and some S3-compatible services
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	archive := &S3Archive{
		client: client,
		bucket: c.Bucket,
		prefix: c.Prefix,
	}

	if err := archive.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return archive, nil
}

func (a *S3Archive) ensureBucket(ctx context.Context) error {
	_, err := a.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = a.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %q does not exist and could not be created: %w", a.bucket, err)
	}

	slog.Info("created S3 bucket", "bucket", a.bucket)
	return nil
}

func (a *S3Archive) Save(ctx context.Context, path string, body io.Reader) error {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(a.key(path)),
		Body:        body,
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}

	return nil
}

func (a *S3Archive) key(path string) string {
	if a.prefix == "" {
		return path
	}
	return a.prefix + "/" + path
}

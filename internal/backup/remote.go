package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/mmynk/kinship/internal/metrics"
)

// ObjectAPI is the subset of the S3 client Remote uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Remote stores archives in an S3 bucket.
type Remote struct {
	client ObjectAPI
	bucket string
	prefix string
}

// NewRemote wraps an existing client.
func NewRemote(client ObjectAPI, bucket, prefix string) *Remote {
	return &Remote{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// NewS3Remote loads the default AWS configuration for region and returns a
// Remote writing to bucket.
func NewS3Remote(ctx context.Context, region, bucket, prefix string) (*Remote, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewRemote(s3.NewFromConfig(cfg), bucket, prefix), nil
}

// Key returns the object key for an archive name.
func (r *Remote) Key(name string) string {
	if r.prefix == "" {
		return name
	}
	return path.Join(r.prefix, name)
}

// Upload stores data under name and returns the object key.
func (r *Remote) Upload(ctx context.Context, name string, data []byte) (key string, err error) {
	defer func() { metrics.Backups.WithLabelValues("upload", metrics.Result(err)).Inc() }()

	key = r.Key(name)
	_, err = r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	slog.Info("Backup uploaded", "bucket", r.bucket, "key", key, "bytes", len(data))
	return key, nil
}

// Download fetches the archive stored under name.
func (r *Remote) Download(ctx context.Context, name string) (data []byte, err error) {
	defer func() { metrics.Backups.WithLabelValues("download", metrics.Result(err)).Inc() }()

	key := r.Key(name)
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err = io.ReadAll(io.LimitReader(out.Body, maxEntrySize*4))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

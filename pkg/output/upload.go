package output

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-parallel-pathtracer/pkg/config"
	"github.com/df07/go-parallel-pathtracer/pkg/core"
)

// UploadTimeout bounds a single object upload
const UploadTimeout = 10 * time.Second

// S3Uploader publishes rendered images to an S3-compatible bucket
type S3Uploader struct {
	client s3iface.S3API
	bucket string
	prefix string
	logger core.Logger
}

// NewS3Uploader creates an uploader from the upload section of the run configuration
func NewS3Uploader(cfg config.UploadConfig, logger core.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("upload bucket not configured")
	}

	s3Config := &aws.Config{
		Region: aws.String(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		s3Config.Credentials = credentials.NewStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}
	if cfg.Endpoint != "" {
		// Custom endpoints (MinIO, R2) need path-style addressing
		s3Config.Endpoint = aws.String(cfg.Endpoint)
		s3Config.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(s3Config)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}

	return newS3UploaderWithClient(s3.New(sess), cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3UploaderWithClient(client s3iface.S3API, bucket, prefix string, logger core.Logger) *S3Uploader {
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &S3Uploader{client: client, bucket: bucket, prefix: prefix, logger: logger}
}

// Key returns the object key for a local render file: <prefix>/<scene>/<file>
func (u *S3Uploader) Key(sceneName, filename string) string {
	return path.Join(u.prefix, sceneName, filepath.Base(filename))
}

// Upload puts data under key as a PNG object
func (u *S3Uploader) Upload(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	_, err := u.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("image/png"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	u.logger.Printf("Uploaded %s to s3://%s (%d bytes)\n", key, u.bucket, size)
	return nil
}

// UploadFile reads a saved render from disk and uploads it, returning its key
func (u *S3Uploader) UploadFile(ctx context.Context, sceneName, filename string) (string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}

	key := u.Key(sceneName, filename)
	if err := u.Upload(ctx, key, data); err != nil {
		return "", err
	}
	return key, nil
}

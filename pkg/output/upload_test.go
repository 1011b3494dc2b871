package output

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/df07/go-parallel-pathtracer/pkg/config"
)

// mockS3 records PutObject calls; other S3API methods are not used
type mockS3 struct {
	s3iface.S3API
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (m *mockS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("upload context has no deadline")
	}
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	m.inputs = append(m.inputs, input)
	m.bodies = append(m.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	mock := &mockS3{}
	uploader := newS3UploaderWithClient(mock, "renders-bucket", "renders", nil)

	data := []byte("fake png bytes")
	if err := uploader.Upload(context.Background(), "renders/random/render_1.png", data); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	if len(mock.inputs) != 1 {
		t.Fatalf("Expected 1 PutObject call, got %d", len(mock.inputs))
	}
	input := mock.inputs[0]
	if aws.StringValue(input.Bucket) != "renders-bucket" {
		t.Errorf("Expected bucket renders-bucket, got %s", aws.StringValue(input.Bucket))
	}
	if aws.StringValue(input.ContentType) != "image/png" {
		t.Errorf("Expected content type image/png, got %s", aws.StringValue(input.ContentType))
	}
	if aws.Int64Value(input.ContentLength) != int64(len(data)) {
		t.Errorf("Expected content length %d, got %d", len(data), aws.Int64Value(input.ContentLength))
	}
	if string(mock.bodies[0]) != string(data) {
		t.Errorf("Uploaded body mismatch: %q", mock.bodies[0])
	}
}

func TestS3Uploader_UploadFile(t *testing.T) {
	mock := &mockS3{}
	uploader := newS3UploaderWithClient(mock, "bucket", "renders", nil)

	filename := filepath.Join(t.TempDir(), "render_20240101_000000.png")
	if err := os.WriteFile(filename, []byte("png"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	key, err := uploader.UploadFile(context.Background(), "spheregrid", filename)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if key != "renders/spheregrid/render_20240101_000000.png" {
		t.Errorf("Unexpected key %s", key)
	}

	if _, err := uploader.UploadFile(context.Background(), "x", filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestS3Uploader_UploadError(t *testing.T) {
	mock := &mockS3{err: errors.New("access denied")}
	uploader := newS3UploaderWithClient(mock, "bucket", "", nil)

	err := uploader.Upload(context.Background(), "k.png", []byte("x"))
	if err == nil || !errors.Is(err, mock.err) {
		t.Errorf("Expected wrapped upload error, got %v", err)
	}
}

func TestNewS3Uploader(t *testing.T) {
	if _, err := NewS3Uploader(config.UploadConfig{}, nil); err == nil {
		t.Error("Expected error without bucket")
	}

	uploader, err := NewS3Uploader(config.UploadConfig{
		Bucket:          "bucket",
		Region:          "us-east-1",
		Endpoint:        "http://localhost:9000",
		Prefix:          "renders",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	}, nil)
	if err != nil {
		t.Fatalf("NewS3Uploader failed: %v", err)
	}
	if got := uploader.Key("random", "/tmp/out/render_1.png"); got != "renders/random/render_1.png" {
		t.Errorf("Unexpected key %s", got)
	}
}

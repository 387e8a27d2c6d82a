package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"docmanager/internal/config"
)

// minioStore implements BlobStore using an S3-compatible backend (MinIO, AWS S3, etc.).
// It is safe for concurrent use by multiple goroutines.
type minioStore struct {
	client *minio.Client
	bucket string
	guard  *containerGuard
}

// NewMinIO creates an S3-compatible blob store. No request is made until the first upload,
// which creates the bucket if it is missing.
func NewMinIO(cfg config.MinIOConfig, bucket string) (BlobStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ms := &minioStore{client: cli, bucket: bucket}
	ms.guard = &containerGuard{ensure: ms.ensureBucket}
	return ms, nil
}

func (m *minioStore) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		code := minio.ToErrorResponse(err).Code
		if code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

// Upload streams the object into the bucket and returns its URL.
func (m *minioStore) Upload(ctx context.Context, name string, r io.Reader, opt PutObjectOptions) (string, error) {
	if err := m.guard.do(ctx); err != nil {
		return "", err
	}
	_, err := m.client.PutObject(ctx, m.bucket, name, r, opt.Size, minio.PutObjectOptions{
		ContentType: opt.ContentType,
	})
	if err != nil {
		return "", err
	}
	return m.URL(name), nil
}

// Download returns the object content. GetObject is lazy, so Stat is used to surface a missing key.
func (m *minioStore) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapMinioError(err)
	}
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, mapMinioError(err)
	}
	return obj, nil
}

// Delete removes an object by key. S3 deletes are already idempotent; a missing bucket is treated the same way.
func (m *minioStore) Delete(ctx context.Context, name string) error {
	err := m.client.RemoveObject(ctx, m.bucket, name, minio.RemoveObjectOptions{})
	if err != nil && !errors.Is(mapMinioError(err), ErrObjectNotFound) {
		return err
	}
	return nil
}

func (m *minioStore) URL(name string) string {
	base := strings.TrimSuffix(m.client.EndpointURL().String(), "/")
	return base + "/" + m.bucket + "/" + url.PathEscape(name)
}

func mapMinioError(err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%w: %w", ErrObjectNotFound, err)
	}
	return err
}

// Package media stores generated thumbnail images on an S3-compatible
// object host and hands out URLs for display and download.
package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("media-host")

// presignExpiry bounds download links. Long enough for a browser to
// start the transfer, short enough that shared links go stale.
const presignExpiry = 15 * time.Minute

// Host abstracts the object store so services and tests do not depend
// on a running MinIO instance.
type Host interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DownloadURL(ctx context.Context, storedURL, key, filename string) (string, error)
}

// Config holds object store connection settings.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool

	// PublicBaseURL overrides the URL prefix for stored objects, for
	// deployments where the bucket sits behind a CDN or reverse proxy.
	// Empty means scheme://endpoint/bucket.
	PublicBaseURL string
}

// MinioHost stores objects in a single MinIO (or S3-compatible) bucket.
type MinioHost struct {
	client   *minio.Client
	endpoint string
	bucket   string
	baseURL  string
	useSSL   bool
	logger   *slog.Logger
}

// NewMinioHost creates a media host. Call EnsureBucket before first use.
func NewMinioHost(cfg Config, logger *slog.Logger) (*MinioHost, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}

	return &MinioHost{
		client:   client,
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		baseURL:  cfg.PublicBaseURL,
		useSSL:   cfg.UseSSL,
		logger:   logger,
	}, nil
}

// EnsureBucket creates the configured bucket if it does not exist.
func (h *MinioHost) EnsureBucket(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "media.ensure_bucket")
	defer span.End()
	span.SetAttributes(attribute.String("media.bucket", h.bucket))

	exists, err := h.client.BucketExists(ctx, h.bucket)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("check bucket existence: %w", err)
	}

	if !exists {
		if err := h.client.MakeBucket(ctx, h.bucket, minio.MakeBucketOptions{}); err != nil {
			span.RecordError(err)
			return fmt.Errorf("create bucket: %w", err)
		}
		h.logger.Info("created media bucket", "bucket", h.bucket)
	}

	return nil
}

// Upload stores an object and returns its public URL.
func (h *MinioHost) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, span := tracer.Start(ctx, "media.upload")
	defer span.End()
	span.SetAttributes(
		attribute.String("media.bucket", h.bucket),
		attribute.String("media.key", key),
		attribute.Int("media.size", len(data)),
	)

	_, err := h.client.PutObject(ctx, h.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("upload object: %w", err)
	}

	return h.publicURL(key), nil
}

// Delete removes an object. Missing objects are not an error; delete
// is called on best-effort cleanup paths.
func (h *MinioHost) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "media.delete")
	defer span.End()
	span.SetAttributes(
		attribute.String("media.bucket", h.bucket),
		attribute.String("media.key", key),
	)

	if err := h.client.RemoveObject(ctx, h.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete object: %w", err)
	}

	return nil
}

// DownloadURL returns a URL that makes browsers save the image instead
// of rendering it. Stored URLs on hosts with an /upload/ path segment
// get the attachment flag spliced in; everything else falls back to a
// presigned URL with a content-disposition override.
func (h *MinioHost) DownloadURL(ctx context.Context, storedURL, key, filename string) (string, error) {
	if transformed, ok := AttachmentURL(storedURL); ok {
		return transformed, nil
	}

	ctx, span := tracer.Start(ctx, "media.presign")
	defer span.End()
	span.SetAttributes(
		attribute.String("media.bucket", h.bucket),
		attribute.String("media.key", key),
	)

	params := make(url.Values)
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", filename))

	presigned, err := h.client.PresignedGetObject(ctx, h.bucket, key, presignExpiry, params)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("presign object: %w", err)
	}

	return presigned.String(), nil
}

func (h *MinioHost) publicURL(key string) string {
	if h.baseURL != "" {
		return fmt.Sprintf("%s/%s", h.baseURL, key)
	}
	scheme := "http"
	if h.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, h.endpoint, h.bucket, key)
}

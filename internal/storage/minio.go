package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"family-directory-go/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO issues presigned upload URLs against an S3-compatible bucket.
type MinIO struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
	presignTTL    time.Duration
}

func NewMinIO(cfg config.MediaConfig) (*MinIO, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	publicBaseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicBaseURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicBaseURL = scheme + "://" + cfg.Endpoint + "/" + cfg.Bucket
	}

	return &MinIO{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: publicBaseURL,
		presignTTL:    cfg.PresignTTL,
	}, nil
}

// PresignUpload returns a PUT URL valid for the configured TTL plus the
// public URL the object will be reachable at afterwards.
func (m *MinIO) PresignUpload(ctx context.Context, objectName, contentType string) (string, string, error) {
	uploadURL, err := m.client.PresignedPutObject(ctx, m.bucket, objectName, m.presignTTL)
	if err != nil {
		return "", "", fmt.Errorf("presign upload: %w", err)
	}

	publicURL := m.publicBaseURL + "/" + escapePath(objectName)
	return uploadURL.String(), publicURL, nil
}

func escapePath(objectName string) string {
	parts := strings.Split(objectName, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

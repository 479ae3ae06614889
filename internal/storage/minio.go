package storage

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/tpo-cell/backend/internal/config"
)

// MinIOClient stores student, alumni and event documents in one bucket.
type MinIOClient struct {
	client      *minio.Client
	bucket      string
	publicURL   string
	presignHost string
	presignSSL  bool
}

func NewMinIOClient(ctx context.Context, cfg *config.Config) (*MinIOClient, error) {
	minioCfg := cfg.MinIO
	client, err := minio.New(minioCfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(minioCfg.AccessKey, minioCfg.SecretKey, ""),
		Secure: minioCfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, minioCfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, minioCfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("[Storage] Bucket %s created", minioCfg.Bucket)
	}

	return &MinIOClient{
		client:      client,
		bucket:      minioCfg.Bucket,
		publicURL:   strings.TrimRight(minioCfg.PublicURL, "/"),
		presignHost: minioCfg.PresignHost,
		presignSSL:  minioCfg.PresignUseSSL,
	}, nil
}

func (m *MinIOClient) PresignPut(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedPutObject(ctx, m.bucket, objectKey, expiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return m.browserURL(presignedURL), nil
}

func (m *MinIOClient) PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	presignedURL, err := m.client.PresignedGetObject(ctx, m.bucket, objectKey, expiry, make(url.Values))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return m.browserURL(presignedURL), nil
}

// browserURL swaps the internal endpoint for the host browsers can reach.
func (m *MinIOClient) browserURL(u *url.URL) string {
	if m.presignHost == "" || u.Host == m.presignHost {
		return u.String()
	}
	u.Host = m.presignHost
	if m.presignSSL {
		u.Scheme = "https"
	} else {
		u.Scheme = "http"
	}
	return u.String()
}

func (m *MinIOClient) ObjectExists(ctx context.Context, objectKey string) (bool, error) {
	_, err := m.client.StatObject(ctx, m.bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (m *MinIOClient) DeleteObject(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *MinIOClient) PublicURL(objectKey string) string {
	return fmt.Sprintf("%s/%s", m.publicURL, objectKey)
}
